package factory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracktowin/comp-engine/comp"
	"github.com/tracktowin/comp-engine/factory"
	"github.com/tracktowin/comp-engine/plans"
)

const producerDoc = `{
  "id": "producer-standard",
  "name": "Standard Producer Plan",
  "scope": "TEAM_TYPE",
  "team_type": "SALES",
  "effective_from": "2025-01-01",
  "rules": [
    {
      "name": "Auto app tiers",
      "display_order": 1,
      "payout_type": "FLAT_PER_UNIT",
      "tier_mode": "TIERS",
      "tier_basis": "auto_apps",
      "bucket": "auto_apps",
      "tiers": [
        {"min": 0, "max": 19, "rate": 10},
        {"min": 20, "max": 30, "rate": 25},
        {"min": 31, "rate": 40}
      ]
    },
    {
      "name": "Health premium",
      "display_order": 2,
      "payout_type": "PERCENT_OF_METRIC",
      "base_rate": 0.03,
      "apply_scope": {"lobs": ["health"]},
      "flag_overrides": [{"flag": "is_value_health", "percent": 0.2}]
    }
  ]
}`

func TestParsePlan_FullDocument(t *testing.T) {
	plan, err := factory.ParsePlan(producerDoc)
	require.NoError(t, err)

	assert.Equal(t, comp.PlanID("producer-standard"), plan.ID)
	assert.Equal(t, comp.ScopeTeamType, plan.Scope)
	assert.Equal(t, comp.TeamTypeSales, plan.TargetTeamType)
	assert.Equal(t, "2025-01-01", plan.EffectiveFrom.Format("2006-01-02"))
	require.Len(t, plan.Rules, 2)

	tiered := plan.Rules[0]
	assert.Equal(t, comp.PayoutFlatPerUnit, tiered.PayoutType)
	assert.True(t, tiered.Tiered())
	require.Len(t, tiered.Tiers, 3)
	assert.Nil(t, tiered.Tiers[2].Max, "last tier is open-ended")

	pct := plan.Rules[1]
	// tier_mode omitted defaults to NONE.
	assert.Equal(t, comp.TierModeNone, pct.TierMode)
	assert.True(t, pct.BaseRate.Equal(decimal.NewFromFloat(0.03)))
	require.Len(t, pct.FlagOverrides, 1)
	assert.Equal(t, "is_value_health", pct.FlagOverrides[0].FlagField)
	assert.Equal(t, []comp.LobID{"health"}, pct.Scope.LobIDs)
}

func TestParsePlan_GeneratedRuleIDs(t *testing.T) {
	// Rules without an explicit id get deterministic plan-derived ids.
	plan, err := factory.ParsePlan(producerDoc)
	require.NoError(t, err)
	assert.Equal(t, comp.RuleID("producer-standard-rule-1"), plan.Rules[0].ID)
	assert.Equal(t, comp.RuleID("producer-standard-rule-2"), plan.Rules[1].ID)
}

func TestParsePlan_RejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"not json":   `{nope`,
		"missing id": `{"name": "x", "scope": "TEAM_TYPE", "team_type": "SALES", "rules": []}`,
		"overlapping tiers": `{
			"id": "p", "scope": "TEAM_TYPE", "team_type": "SALES",
			"rules": [{"name": "r", "payout_type": "FLAT_PER_UNIT", "tier_mode": "TIERS",
				"tier_basis": "total_apps",
				"tiers": [{"min": 0, "max": 50, "rate": 1}, {"min": 40, "max": 100, "rate": 2}]}]
		}`,
		"percent above one": `{
			"id": "p", "scope": "TEAM_TYPE", "team_type": "SALES",
			"rules": [{"name": "r", "payout_type": "PERCENT_OF_METRIC", "base_rate": 14, "bucket": "total_premium"}]
		}`,
		"duplicate display order": `{
			"id": "p", "scope": "TEAM_TYPE", "team_type": "SALES",
			"rules": [
				{"name": "a", "display_order": 1, "payout_type": "FLAT_PER_UNIT", "base_rate": 1, "bucket": "total_apps"},
				{"name": "b", "display_order": 1, "payout_type": "FLAT_PER_UNIT", "base_rate": 2, "bucket": "total_apps"}
			]
		}`,
		"two scope targets": `{
			"id": "p", "scope": "TEAM_TYPE", "team_type": "SALES", "agency_id": "a1", "rules": []
		}`,
		"scope target mismatch": `{
			"id": "p", "scope": "PERSON", "team_type": "SALES", "rules": []
		}`,
		"activity rule with threshold": `{
			"id": "p", "scope": "TEAM_TYPE", "team_type": "CS",
			"rules": [{"name": "r", "payout_type": "ACTIVITY_PAY", "min_threshold": 5,
				"activity_pay": [{"activity": "quotes", "amount": 2}]}]
		}`,
		"flag overrides on flat rule": `{
			"id": "p", "scope": "TEAM_TYPE", "team_type": "SALES",
			"rules": [{"name": "r", "payout_type": "FLAT_PER_UNIT", "base_rate": 10, "bucket": "total_apps",
				"flag_overrides": [{"flag": "x", "percent": 0.5}]}]
		}`,
		"bad effective_from": `{
			"id": "p", "scope": "TEAM_TYPE", "team_type": "SALES",
			"effective_from": "June 1st", "rules": []
		}`,
	}

	for name, doc := range cases {
		_, err := factory.ParsePlan(doc)
		assert.Error(t, err, name)
	}
}

func TestParsePlan_SortsRulesByDisplayOrder(t *testing.T) {
	doc := `{
		"id": "p", "scope": "TEAM_TYPE", "team_type": "SALES",
		"rules": [
			{"id": "second", "name": "b", "display_order": 2, "payout_type": "FLAT_PER_UNIT", "base_rate": 1, "bucket": "total_apps"},
			{"id": "first", "name": "a", "display_order": 1, "payout_type": "FLAT_PER_UNIT", "base_rate": 1, "bucket": "total_apps"}
		]
	}`
	plan, err := factory.ParsePlan(doc)
	require.NoError(t, err)
	assert.Equal(t, comp.RuleID("first"), plan.Rules[0].ID)
	assert.Equal(t, comp.RuleID("second"), plan.Rules[1].ID)
}

func TestToDocument_RoundTrip(t *testing.T) {
	plan, err := factory.ParsePlan(producerDoc)
	require.NoError(t, err)

	doc := factory.ToDocument(*plan)
	assert.Equal(t, "producer-standard", doc.ID)
	assert.Equal(t, "2025-01-01", doc.EffectiveFrom)
	require.Len(t, doc.Rules, 2)
	require.Len(t, doc.Rules[0].Tiers, 3)
	assert.Nil(t, doc.Rules[0].Tiers[2].Max)
	require.NotNil(t, doc.Rules[1].ApplyScope)
	assert.Equal(t, []string{"health"}, doc.Rules[1].ApplyScope.Lobs)

	// A converted document parses back to an equivalent plan.
	reparsed, err := factory.NewPlanFactory().FromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, reparsed.ID)
	require.Len(t, reparsed.Rules, len(plan.Rules))
	for i := range plan.Rules {
		assert.Equal(t, plan.Rules[i].ID, reparsed.Rules[i].ID)
		assert.Equal(t, plan.Rules[i].PayoutType, reparsed.Rules[i].PayoutType)
	}
}

// =============================================================================
// PRESETS
// =============================================================================

func TestPresets_AllParse(t *testing.T) {
	docs := map[string]string{
		"producer": plans.StandardProducerJSON("producer-standard", "Standard Producer"),
		"csr":      plans.CSRActivityJSON("csr-activity", "CSR Activity Pay"),
		"agency":   plans.AgencyBonusVolumeJSON("agency-bonus", "Agency Volume Bonus", "agency-1"),
	}
	for name, doc := range docs {
		plan, err := factory.ParsePlan(doc)
		require.NoError(t, err, name)
		assert.NotEmpty(t, plan.Rules, name)
	}
}

func TestPresets_ProducerShape(t *testing.T) {
	plan, err := factory.ParsePlan(plans.StandardProducerJSON("producer-standard", "Standard Producer"))
	require.NoError(t, err)

	assert.Equal(t, comp.ScopeTeamType, plan.Scope)
	assert.Equal(t, comp.TeamTypeSales, plan.TargetTeamType)
	require.Len(t, plan.Rules, 3)
	assert.True(t, plan.Rules[0].Tiered())
	assert.NotEmpty(t, plan.Rules[1].FlagOverrides)
	assert.Equal(t, comp.PayoutFlatLumpSum, plan.Rules[2].PayoutType)
}

func TestPresets_CSRShape(t *testing.T) {
	plan, err := factory.ParsePlan(plans.CSRActivityJSON("csr-activity", "CSR Activity Pay"))
	require.NoError(t, err)

	assert.Equal(t, comp.TeamTypeService, plan.TargetTeamType)
	require.Len(t, plan.Rules, 1)
	assert.Equal(t, comp.PayoutActivity, plan.Rules[0].PayoutType)
	assert.Len(t, plan.Rules[0].ActivityItems, 3)
}
