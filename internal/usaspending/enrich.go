package usaspending

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/feldmangn/nih-awards-tracker/internal/model"
	"github.com/feldmangn/nih-awards-tracker/pkg/utils"
)

// AwardDetail holds the supplementary per-award fields absent from the
// transaction search response. A zero value means the lookup failed or
// was skipped; missing enrichment degrades to empty columns, never a
// failed run.
type AwardDetail struct {
	PIID                string
	PopCity             string
	PopZip              string
	PopCounty           string
	SetAside            string
	SetAsideDescription string
	BusinessSize        string
	LastModified        string
}

// ResolveAwardID picks the identifier used for the detail lookup:
// generated_internal_id, then internal_id, then the Award ID itself,
// coerced to string. Empty when none resolve.
func ResolveAwardID(rec model.Record) string {
	for _, key := range []string{"generated_internal_id", "internal_id", "Award ID"} {
		if id := utils.Stringify(rec[key]); id != "" {
			return id
		}
	}
	return ""
}

// FetchAwardDetail looks up one award with light client-side retries:
// an increasing base sleep plus random jitter before each attempt, retry
// on the retryable status set, and an empty detail on any other non-200
// or on exhaustion. It never returns an error.
func (c *Client) FetchAwardDetail(ctx context.Context, awardID string) AwardDetail {
	if awardID == "" {
		return AwardDetail{}
	}
	url := fmt.Sprintf(c.cfg.AwardDetailURL, awardID)

	for attempt := 1; attempt <= c.cfg.DetailTries; attempt++ {
		delay := c.cfg.DetailSleepBase*time.Duration(attempt) + jitter(c.cfg.DetailJitterMax)
		if err := sleepCtx(ctx, delay); err != nil {
			return AwardDetail{}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return AwardDetail{}
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			continue
		}
		if resp.StatusCode == http.StatusOK {
			var raw map[string]interface{}
			err := json.NewDecoder(resp.Body).Decode(&raw)
			resp.Body.Close()
			if err != nil {
				return AwardDetail{}
			}
			return parseDetail(raw)
		}
		resp.Body.Close()
		if c.cfg.Retry.Retryable(resp.StatusCode) {
			continue
		}
		return AwardDetail{}
	}
	return AwardDetail{}
}

// EnrichTransactions runs the detail lookup for every transaction, in
// order, returning details aligned by index. Every DetailPauseEvery-th
// lookup sleeps an extra pause as a rate-limiting courtesy.
func (c *Client) EnrichTransactions(ctx context.Context, rows []model.Record) []AwardDetail {
	details := make([]AwardDetail, len(rows))
	for i, rec := range rows {
		details[i] = c.FetchAwardDetail(ctx, ResolveAwardID(rec))

		if c.cfg.DetailPauseEvery > 0 && (i+1)%c.cfg.DetailPauseEvery == 0 {
			fmt.Printf("🔎 Enriched %d/%d awards, pausing briefly\n", i+1, len(rows))
			if err := sleepCtx(ctx, c.cfg.DetailPause); err != nil {
				return details
			}
		}
	}
	return details
}

// parseDetail maps the award detail response onto AwardDetail, checking
// the nested place_of_performance block for location fields the top
// level omits.
func parseDetail(raw map[string]interface{}) AwardDetail {
	pop, _ := raw["place_of_performance"].(map[string]interface{})

	zip := firstString(raw, pop, "pop_zip5", "location_zip5", "zip5")
	if zip == "" {
		zip = firstString(raw, pop, "pop_zip4", "zip4")
	}
	if len(zip) > 5 {
		zip = zip[:5]
	}

	return AwardDetail{
		PIID:                utils.Stringify(raw["piid"]),
		PopCity:             firstString(raw, pop, "pop_city_name", "city_name"),
		PopZip:              zip,
		PopCounty:           firstString(raw, pop, "pop_county_name", "county_name"),
		SetAside:            utils.Stringify(raw["type_set_aside"]),
		SetAsideDescription: utils.Stringify(raw["type_set_aside_description"]),
		BusinessSize:        utils.Stringify(raw["contracting_officers_determination_of_business_size"]),
		LastModified:        utils.Stringify(raw["last_modified_date"]),
	}
}

// firstString returns the first non-empty value for any key, checking
// the top-level object before the nested one.
func firstString(top, nested map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v := utils.Stringify(top[key]); v != "" {
			return v
		}
	}
	for _, key := range keys {
		if nested == nil {
			break
		}
		if v := utils.Stringify(nested[key]); v != "" {
			return v
		}
	}
	return ""
}

// jitter returns a random duration in [0, max).
func jitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max)))
}
