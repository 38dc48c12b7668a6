package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	nonWordRe    = regexp.MustCompile(`[^\w\s-]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// slugAliases shortens well-known agency names for nicer filenames.
var slugAliases = [][2]string{
	{"national-institutes-of-health", "nih"},
	{"advanced-research-projects-agency-for-health", "arpa-h"},
	{"department-of-health-and-human-services", "hhs"},
	{"department-of-defense", "dod"},
}

// Slugify turns an agency name into a short slug for filenames.
func Slugify(s string) string {
	if s == "" {
		return "unknown"
	}
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "&", "and")
	s = nonWordRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(strings.TrimSpace(s), "-")
	for _, alias := range slugAliases {
		s = strings.ReplaceAll(s, alias[0], alias[1])
	}
	return s
}

// DateWindow returns the inclusive lookback window ending today, as
// ISO dates.
func DateWindow(lastNDays int) (start, end string) {
	now := time.Now()
	return now.AddDate(0, 0, -lastNDays).Format("2006-01-02"), now.Format("2006-01-02")
}

// Stringify renders a JSON-decoded value as a plain string. Numbers are
// formatted without an exponent so identifiers survive the float round
// trip; nil becomes the empty string.
func Stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// Numeric safely converts supported types to float64.
func Numeric(v interface{}) float64 {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case float64:
		return val
	case float32:
		return float64(val)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return f
		}
		return 0
	default:
		return 0
	}
}
