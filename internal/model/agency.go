package model

import (
	"fmt"
	"strings"
)

// Valid agency tiers accepted by the USAspending search API.
const (
	TierToptier = "toptier"
	TierSubtier = "subtier"
)

// AgencyFilter selects one awarding agency by tier and exact name.
type AgencyFilter struct {
	Tier string `json:"tier"` // "toptier" or "subtier"
	Name string `json:"name"`
}

// Validate rejects an invalid tier before any network call is made.
func (f AgencyFilter) Validate() error {
	tier := strings.ToLower(strings.TrimSpace(f.Tier))
	if tier != TierToptier && tier != TierSubtier {
		return fmt.Errorf("tier must be %q or %q, got: %q", TierToptier, TierSubtier, f.Tier)
	}
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("agency name is required")
	}
	return nil
}

// Label returns the "tier/name" form used in logs and tracking rows.
func (f AgencyFilter) Label() string {
	return fmt.Sprintf("%s/%s", strings.ToLower(strings.TrimSpace(f.Tier)), f.Name)
}

// PayloadBlock returns the "agencies" filter block for the search payload.
func (f AgencyFilter) PayloadBlock() map[string]string {
	return map[string]string{
		"type": "awarding",
		"tier": strings.ToLower(strings.TrimSpace(f.Tier)),
		"name": f.Name,
	}
}
