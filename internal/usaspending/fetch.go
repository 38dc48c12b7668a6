package usaspending

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/feldmangn/nih-awards-tracker/internal/model"
)

// bodyPrefixLimit caps how much of a failing response body is kept for
// diagnosis.
const bodyPrefixLimit = 2000

// ExtractionError is a fatal failure of one agency's transaction fetch.
// It carries the request payload and a response-body prefix so a bad
// filter or schema change can be diagnosed from the log alone.
type ExtractionError struct {
	Agency  string
	Status  int
	Payload string
	Body    string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("transaction search failed for %s: status %d, payload %s, body %s",
		e.Agency, e.Status, e.Payload, e.Body)
}

// transactionPage mirrors the search endpoint's response envelope.
type transactionPage struct {
	Results      []model.Record `json:"results"`
	PageMetadata struct {
		HasNext bool `json:"hasNext"`
	} `json:"page_metadata"`
}

// FetchTransactions pulls every transaction page for one agency within
// the inclusive date window. Pages are requested in increasing order and
// rows appended in response order; the loop stops when the server reports
// no next page, returns an empty page, or the configured page cap is hit.
// A short delay between pages keeps the crawl inside informal rate
// limits.
func (c *Client) FetchTransactions(ctx context.Context, agency model.AgencyFilter, start, end string) ([]model.Record, error) {
	var rows []model.Record
	page := 1
	printedCols := false

	for {
		payload := map[string]interface{}{
			"fields": c.cfg.Fields,
			"filters": map[string]interface{}{
				"time_period":      []map[string]string{{"start_date": start, "end_date": end}},
				"agencies":         []map[string]string{agency.PayloadBlock()},
				"award_type_codes": c.cfg.AwardTypeCodes,
			},
			"page":  page,
			"limit": c.cfg.PageLimit,
			"sort":  c.cfg.SortField,
			"order": c.cfg.SortOrder,
		}
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling search payload: %w", err)
		}

		resp, err := c.do(ctx, http.MethodPost, c.cfg.TransactionURL, body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			prefix, _ := io.ReadAll(io.LimitReader(resp.Body, bodyPrefixLimit))
			resp.Body.Close()
			return nil, &ExtractionError{
				Agency:  agency.Label(),
				Status:  resp.StatusCode,
				Payload: string(body),
				Body:    string(prefix),
			}
		}

		var data transactionPage
		err = json.NewDecoder(resp.Body).Decode(&data)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decoding transaction page %d: %w", page, err)
		}

		if len(data.Results) > 0 && !printedCols {
			fmt.Printf("➡️ [%s] First page returned %d rows\n", agency.Label(), len(data.Results))
			printedCols = true
		}
		rows = append(rows, data.Results...)

		if !data.PageMetadata.HasNext || len(data.Results) == 0 {
			break
		}
		page++
		if c.cfg.MaxPages > 0 && page > c.cfg.MaxPages {
			break
		}
		if err := sleepCtx(ctx, c.cfg.PageDelay); err != nil {
			return rows, err
		}
	}

	if len(rows) == 0 {
		fmt.Printf("➡️ [%s] No transactions found in window\n", agency.Label())
	}
	return rows, nil
}
