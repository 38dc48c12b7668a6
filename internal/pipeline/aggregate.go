package pipeline

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RecipientTotal is one aggregate row: a recipient and its summed award
// amount over the window. Sums use decimal arithmetic so re-runs produce
// identical totals regardless of accumulation order.
type RecipientTotal struct {
	RecipientName string          `json:"Recipient Name"`
	AwardAmount   decimal.Decimal `json:"Award Amount"`
}

// TopRecipients groups normalized rows by recipient name and sums the
// award amounts, sorted descending by total. A missing recipient name is
// its own group. Recomputed fresh from the full row set on every run.
func TopRecipients(rows []Row) []RecipientTotal {
	sums := make(map[string]decimal.Decimal)
	for _, row := range rows {
		sums[row.RecipientName] = sums[row.RecipientName].Add(decimal.NewFromFloat(row.AwardAmount))
	}

	totals := make([]RecipientTotal, 0, len(sums))
	for name, total := range sums {
		totals = append(totals, RecipientTotal{RecipientName: name, AwardAmount: total})
	}

	sort.SliceStable(totals, func(i, j int) bool {
		cmp := totals[i].AwardAmount.Cmp(totals[j].AwardAmount)
		if cmp != 0 {
			return cmp > 0
		}
		return totals[i].RecipientName < totals[j].RecipientName
	})
	return totals
}
