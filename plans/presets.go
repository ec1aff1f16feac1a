/*
Package plans provides preset compensation plan documents.

These builders produce JSON plan definitions for the common agency
setups: a tiered producer plan, a CSR activity-pay plan, and an
agency-wide bonus-volume plan. They construct JSON strings directly so
the documents flow through the same factory parsing and validation as
admin-authored plans.

USAGE:

	jsonStr := plans.StandardProducerJSON("producer-standard", "Standard Producer")
	plan, err := factory.ParsePlan(jsonStr)
*/
package plans

import (
	"encoding/json"
)

// StandardProducerJSON is the default SALES team-type plan: tiered
// per-app payout on auto business plus a flat percent of health premium
// with a value-policy override.
func StandardProducerJSON(id, name string) string {
	pj := map[string]interface{}{
		"id":             id,
		"name":           name,
		"scope":          "TEAM_TYPE",
		"team_type":      "SALES",
		"effective_from": "2025-01-01",
		"rules": []map[string]interface{}{
			{
				"name":          "Auto app tiers",
				"display_order": 1,
				"payout_type":   "FLAT_PER_UNIT",
				"tier_mode":     "TIERS",
				"tier_basis":    "auto_apps",
				"bucket":        "auto_apps",
				"tiers": []map[string]interface{}{
					{"min": 0, "max": 19, "rate": 10},
					{"min": 20, "max": 30, "rate": 25},
					{"min": 31, "rate": 40},
				},
			},
			{
				"name":          "Health premium percent",
				"display_order": 2,
				"payout_type":   "PERCENT_OF_METRIC",
				"tier_mode":     "NONE",
				"base_rate":     0.03,
				"bucket":        "health_premium",
				"apply_scope":   map[string]interface{}{"lobs": []string{"health"}},
				"flag_overrides": []map[string]interface{}{
					{"flag": "is_value_health", "percent": 0.2},
				},
			},
			{
				"name":          "New business bonus",
				"display_order": 3,
				"payout_type":   "FLAT_LUMP_SUM",
				"tier_mode":     "NONE",
				"base_rate":     250,
				"bucket":        "total_apps",
				"min_threshold": 15,
			},
		},
	}
	b, _ := json.MarshalIndent(pj, "", "  ")
	return string(b)
}

// CSRActivityJSON is the default CS team-type plan: pure activity pay,
// no product scoping, no tiers.
func CSRActivityJSON(id, name string) string {
	pj := map[string]interface{}{
		"id":             id,
		"name":           name,
		"scope":          "TEAM_TYPE",
		"team_type":      "CS",
		"effective_from": "2025-01-01",
		"rules": []map[string]interface{}{
			{
				"name":          "Service activity pay",
				"display_order": 1,
				"payout_type":   "ACTIVITY_PAY",
				"activity_pay": []map[string]interface{}{
					{"activity": "quotes", "amount": 2},
					{"activity": "reviews", "amount": 5},
					{"activity": "cross_sells", "amount": 15},
				},
			},
		},
	}
	b, _ := json.MarshalIndent(pj, "", "  ")
	return string(b)
}

// AgencyBonusVolumeJSON is an agency-scoped plan paying a tiered percent
// of total written premium.
func AgencyBonusVolumeJSON(id, name, agencyID string) string {
	pj := map[string]interface{}{
		"id":             id,
		"name":           name,
		"scope":          "AGENCY",
		"agency_id":      agencyID,
		"effective_from": "2025-01-01",
		"rules": []map[string]interface{}{
			{
				"name":          "Bonus volume",
				"display_order": 1,
				"payout_type":   "PERCENT_OF_METRIC",
				"tier_mode":     "TIERS",
				"tier_basis":    "total_premium",
				"bucket":        "total_premium",
				"tiers": []map[string]interface{}{
					{"min": 0, "max": 25000, "rate": 0.01},
					{"min": 25001, "max": 75000, "rate": 0.02},
					{"min": 75001, "rate": 0.03},
				},
			},
		},
	}
	b, _ := json.MarshalIndent(pj, "", "  ")
	return string(b)
}
