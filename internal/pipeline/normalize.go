package pipeline

import (
	"strconv"
	"strings"
	"time"

	"github.com/feldmangn/nih-awards-tracker/internal/model"
	"github.com/feldmangn/nih-awards-tracker/internal/usaspending"
	"github.com/feldmangn/nih-awards-tracker/pkg/utils"
)

// Row is one normalized award transaction in the fixed output schema.
// Every output row has exactly these columns, in this order; values the
// source never populated stay "" (strings) or false (booleans) so the
// schema is stable across agencies and runs.
type Row struct {
	AwardID             string  `json:"Award Id"`
	RecipientName       string  `json:"Recipient Name"`
	ActionDate          string  `json:"Action Date"`
	AwardAmount         float64 `json:"Award Amount"`
	PIID                string  `json:"Piid"`
	PopStateCode        string  `json:"Place Of Performance State Code"`
	PopCityName         string  `json:"Place Of Performance City Name"`
	PopZIPCode          string  `json:"Place Of Performance ZIP Code"`
	PopCountyName       string  `json:"Place Of Performance County Name"`
	PSCCode             string  `json:"Product Or Service Code (Psc)"`
	PSCDescription      string  `json:"Psc Description"`
	NAICSCode           string  `json:"Naics Code"`
	NAICSDescription    string  `json:"Naics Description"`
	SetAside            string  `json:"Type Of Set Aside"`
	SetAsideDescription string  `json:"Type Of Set Aside Description"`
	BusinessSize        string  `json:"Contracting Officer Business Size Determination"`
	LastModifiedDate    string  `json:"Last Modified Date"`
	IsSmallBusiness     bool    `json:"Is Small Business"`
	Is8aSetAside        bool    `json:"Is 8a Set-Aside"`
}

// Columns returns the fixed output schema header, in order.
func Columns() []string {
	return []string{
		"Award Id",
		"Recipient Name",
		"Action Date",
		"Award Amount",
		"Piid",
		"Place Of Performance State Code",
		"Place Of Performance City Name",
		"Place Of Performance ZIP Code",
		"Place Of Performance County Name",
		"Product Or Service Code (Psc)",
		"Psc Description",
		"Naics Code",
		"Naics Description",
		"Type Of Set Aside",
		"Type Of Set Aside Description",
		"Contracting Officer Business Size Determination",
		"Last Modified Date",
		"Is Small Business",
		"Is 8a Set-Aside",
	}
}

// record renders the row as a CSV record matching Columns.
func (r Row) record() []string {
	return []string{
		r.AwardID,
		r.RecipientName,
		r.ActionDate,
		strconv.FormatFloat(r.AwardAmount, 'f', -1, 64),
		r.PIID,
		r.PopStateCode,
		r.PopCityName,
		r.PopZIPCode,
		r.PopCountyName,
		r.PSCCode,
		r.PSCDescription,
		r.NAICSCode,
		r.NAICSDescription,
		r.SetAside,
		r.SetAsideDescription,
		r.BusinessSize,
		r.LastModifiedDate,
		strconv.FormatBool(r.IsSmallBusiness),
		strconv.FormatBool(r.Is8aSetAside),
	}
}

// NormalizeRow maps one raw transaction plus its award detail onto the
// fixed schema, deriving the classification flags.
func NormalizeRow(rec model.Record, det usaspending.AwardDetail) Row {
	return Row{
		AwardID:             utils.Stringify(rec["Award ID"]),
		RecipientName:       utils.Stringify(rec["Recipient Name"]),
		ActionDate:          parseActionDate(utils.Stringify(rec["Action Date"])),
		AwardAmount:         utils.Numeric(rec["Transaction Amount"]),
		PIID:                det.PIID,
		PopStateCode:        utils.Stringify(rec["pop_state_code"]),
		PopCityName:         det.PopCity,
		PopZIPCode:          det.PopZip,
		PopCountyName:       det.PopCounty,
		PSCCode:             utils.Stringify(rec["product_or_service_code"]),
		PSCDescription:      utils.Stringify(rec["product_or_service_description"]),
		NAICSCode:           utils.Stringify(rec["naics_code"]),
		NAICSDescription:    utils.Stringify(rec["naics_description"]),
		SetAside:            det.SetAside,
		SetAsideDescription: det.SetAsideDescription,
		BusinessSize:        det.BusinessSize,
		LastModifiedDate:    det.LastModified,
		IsSmallBusiness:     isSmallBusiness(det.BusinessSize),
		Is8aSetAside:        is8a(det.SetAside) || is8a(det.SetAsideDescription),
	}
}

// NormalizeAll normalizes every transaction, preserving fetch order.
// details may be nil when enrichment was skipped; rows then keep empty
// enrichment columns.
func NormalizeAll(rows []model.Record, details []usaspending.AwardDetail) []Row {
	out := make([]Row, 0, len(rows))
	for i, rec := range rows {
		var det usaspending.AwardDetail
		if i < len(details) {
			det = details[i]
		}
		out = append(out, NormalizeRow(rec, det))
	}
	return out
}

// parseActionDate coerces the action date to an ISO calendar date;
// unparseable values become the empty string rather than failing the row.
func parseActionDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// isSmallBusiness is true iff the contracting officer's determination,
// trimmed and uppercased, equals exactly "SMALL BUSINESS".
func isSmallBusiness(s string) bool {
	return strings.ToUpper(strings.TrimSpace(s)) == "SMALL BUSINESS"
}

// is8a is true iff the value contains "8(A" case-insensitively, which
// matches "8(a) Set-Aside Program" and its code forms.
func is8a(s string) bool {
	return strings.Contains(strings.ToUpper(s), "8(A")
}
