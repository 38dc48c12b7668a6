package pipeline

import (
	"encoding/csv"
	"fmt"
	"net/url"
	"os"
)

// CareersLink builds a search-engine URL that jumps to careers pages for
// a recipient.
func CareersLink(recipient string) string {
	q := fmt.Sprintf("%s careers OR jobs site:greenhouse.io OR site:lever.co OR site:workday.com", recipient)
	return "https://www.google.com/search?q=" + url.QueryEscape(q)
}

// AddCareersLinks reads a top-recipients CSV and writes an enriched copy
// with a "Careers Search" column appended per recipient.
func AddCareersLinks(inCSV, outCSV string) error {
	in, err := os.Open(inCSV)
	if err != nil {
		return fmt.Errorf("failed to open recipients file: %w", err)
	}
	defer in.Close()

	records, err := csv.NewReader(in).ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read recipients file: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("recipients file %s has no header", inCSV)
	}

	out, err := os.Create(outCSV)
	if err != nil {
		return fmt.Errorf("failed to create enriched file: %w", err)
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	defer writer.Flush()

	if err := writer.Write(append(records[0], "Careers Search")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, record := range records[1:] {
		link := ""
		if len(record) > 0 && record[0] != "" {
			link = CareersLink(record[0])
		}
		if err := writer.Write(append(record, link)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	fmt.Printf("💾 Wrote %s (%d recipients)\n", outCSV, len(records)-1)
	return nil
}
