package usaspending

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feldmangn/nih-awards-tracker/internal/model"
)

func TestResolveAwardID(t *testing.T) {
	tests := []struct {
		name     string
		rec      model.Record
		expected string
	}{
		{
			"generated_internal_id preferred",
			model.Record{"generated_internal_id": "CONT_AWD_1", "internal_id": "2", "Award ID": "3"},
			"CONT_AWD_1",
		},
		{
			"internal_id fallback",
			model.Record{"internal_id": float64(98765), "Award ID": "3"},
			"98765",
		},
		{
			"award id last resort",
			model.Record{"Award ID": "HHSN263201800029I"},
			"HHSN263201800029I",
		},
		{
			"empty strings skipped",
			model.Record{"generated_internal_id": "", "internal_id": "77"},
			"77",
		},
		{"nothing resolves", model.Record{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveAwardID(tt.rec))
		})
	}
}

func TestFetchAwardDetail(t *testing.T) {
	t.Run("successful lookup with nested place of performance", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/awards/CONT_AWD_1/", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"piid":                       "75N95022C00021",
				"type_set_aside":             "8AN",
				"type_set_aside_description": "8(a) Sole Source",
				"contracting_officers_determination_of_business_size": "SMALL BUSINESS",
				"last_modified_date": "2026-08-15",
				"place_of_performance": map[string]interface{}{
					"city_name":   "BETHESDA",
					"county_name": "MONTGOMERY",
					"zip4":        "208920001",
				},
			})
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL))
		det := client.FetchAwardDetail(context.Background(), "CONT_AWD_1")

		assert.Equal(t, "75N95022C00021", det.PIID)
		assert.Equal(t, "BETHESDA", det.PopCity)
		assert.Equal(t, "MONTGOMERY", det.PopCounty)
		assert.Equal(t, "20892", det.PopZip, "zip truncated to 5 digits")
		assert.Equal(t, "8AN", det.SetAside)
		assert.Equal(t, "SMALL BUSINESS", det.BusinessSize)
		assert.Equal(t, "2026-08-15", det.LastModified)
	})

	t.Run("top-level zip5 wins over nested", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"pop_zip5": "02139",
				"place_of_performance": map[string]interface{}{
					"zip5": "99999",
				},
			})
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL))
		assert.Equal(t, "02139", client.FetchAwardDetail(context.Background(), "X").PopZip)
	})

	t.Run("retries then succeeds", func(t *testing.T) {
		var calls int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"piid": "P-1"})
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL))
		det := client.FetchAwardDetail(context.Background(), "X")

		assert.Equal(t, "P-1", det.PIID)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhaustion degrades to empty detail", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL))
		assert.Equal(t, AwardDetail{}, client.FetchAwardDetail(context.Background(), "X"))
	})

	t.Run("404 gives up immediately", func(t *testing.T) {
		var calls int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL))
		assert.Equal(t, AwardDetail{}, client.FetchAwardDetail(context.Background(), "X"))
		assert.Equal(t, 1, calls)
	})

	t.Run("empty id skips the network", func(t *testing.T) {
		client := NewClient(testConfig("http://127.0.0.1:1"))
		assert.Equal(t, AwardDetail{}, client.FetchAwardDetail(context.Background(), ""))
	})
}

func TestEnrichTransactionsAlignment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /awards/{id}/ echoes the id back as the piid
		id := r.URL.Path[len("/awards/") : len(r.URL.Path)-1]
		if id == "A-2" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"piid": fmt.Sprintf("piid-%s", id)})
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.DetailTries = 2
	client := NewClient(cfg)

	rows := []model.Record{
		{"generated_internal_id": "A-1"},
		{"generated_internal_id": "A-2"},
		{"generated_internal_id": "A-3"},
	}
	details := client.EnrichTransactions(context.Background(), rows)

	require.Len(t, details, 3)
	assert.Equal(t, "piid-A-1", details[0].PIID)
	assert.Equal(t, AwardDetail{}, details[1], "failed lookup leaves an empty slot, not a shifted one")
	assert.Equal(t, "piid-A-3", details[2].PIID)
}
