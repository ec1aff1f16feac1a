/*
Package factory provides JSON to Go plan conversion.

PURPOSE:

	Converts discriminated JSON plan documents into validated comp.Plan
	values. This enables plan configuration without code changes - an
	agency admin builds the plan in the UI, the document lands here, and
	the factory produces the typed rule blocks the engine evaluates.

WHY JSON?
  - Non-developers can modify plans
  - Easy integration with the plan-builder UI
  - Version control for plan definitions
  - Database storage of plan configs

JSON SCHEMA:

	{
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
	      "tiers": [
	        {"min": 0, "max": 19, "rate": 10},
	        {"min": 20, "max": 30, "rate": 25},
	        {"min": 31, "rate": 40}
	      ],
	      "apply_scope": {"lobs": ["auto"]}
	    },
	    {
	      "name": "Health premium",
	      "display_order": 2,
	      "payout_type": "PERCENT_OF_METRIC",
	      "tier_mode": "NONE",
	      "base_rate": 0.03,
	      "bucket": "health_premium",
	      "flag_overrides": [{"flag": "is_value_health", "percent": 0.2}]
	    }
	  ]
	}

VALIDATION:

	Parsing is the save-time validation boundary: tier sets violating the
	non-overlap/ordering invariant, duplicate display orders, percent
	rates outside [0,1], and invalid payout-type/tier-mode combinations
	are all rejected here with structured errors, before a document can
	ever reach the evaluator.

USAGE:

	plan, err := factory.ParsePlan(jsonString)

SEE ALSO:
  - comp/rule.go: Plan and RuleBlock types + Validate
  - plans/: Preset plan document builders
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tracktowin/comp-engine/comp"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PlanJSON is the JSON representation of a compensation plan.
type PlanJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Scope    string `json:"scope"`
	PersonID string `json:"person_id,omitempty"`
	RoleID   string `json:"role_id,omitempty"`
	TeamID   string `json:"team_id,omitempty"`
	AgencyID string `json:"agency_id,omitempty"`
	TeamType string `json:"team_type,omitempty"`

	EffectiveFrom string     `json:"effective_from,omitempty"` // YYYY-MM-DD
	Rules         []RuleJSON `json:"rules"`
}

// RuleJSON is one rule block document, discriminated by payout_type and
// tier_mode.
type RuleJSON struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`

	PayoutType string `json:"payout_type"`
	TierMode   string `json:"tier_mode,omitempty"` // default NONE

	TierBasis    string   `json:"tier_basis,omitempty"`
	BaseRate     *float64 `json:"base_rate,omitempty"`
	MinThreshold *float64 `json:"min_threshold,omitempty"`

	Bucket     string          `json:"bucket,omitempty"`
	ApplyScope *ApplyScopeJSON `json:"apply_scope,omitempty"`

	FlagOverrides []FlagOverrideJSON `json:"flag_overrides,omitempty"`
	Tiers         []TierJSON         `json:"tiers,omitempty"`
	ActivityPay   []ActivityPayJSON  `json:"activity_pay,omitempty"`
}

// ApplyScopeJSON selects products by union of criteria.
type ApplyScopeJSON struct {
	Products     []string `json:"products,omitempty"`
	Lobs         []string `json:"lobs,omitempty"`
	ProductTypes []string `json:"product_types,omitempty"`
	Categories   []string `json:"categories,omitempty"`
	Bucket       string   `json:"bucket,omitempty"`
}

type TierJSON struct {
	Min  float64  `json:"min"`
	Max  *float64 `json:"max,omitempty"` // omitted = open-ended
	Rate float64  `json:"rate"`
}

type FlagOverrideJSON struct {
	Flag    string  `json:"flag"`
	Percent float64 `json:"percent"`
}

type ActivityPayJSON struct {
	Activity string  `json:"activity"`
	Amount   float64 `json:"amount"`
}

// =============================================================================
// PLAN FACTORY
// =============================================================================

type PlanFactory struct{}

func NewPlanFactory() *PlanFactory { return &PlanFactory{} }

// ParsePlan converts a JSON plan document into a validated comp.Plan.
func ParsePlan(jsonStr string) (*comp.Plan, error) {
	return NewPlanFactory().ParsePlan(jsonStr)
}

// ParsePlan converts and validates a plan document. Any invariant
// violation (tier overlap, duplicate display order, bad combination)
// is returned as a structured comp error.
func (f *PlanFactory) ParsePlan(jsonStr string) (*comp.Plan, error) {
	var pj PlanJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("invalid plan JSON: %w", err)
	}
	return f.FromDocument(pj)
}

// FromDocument converts an already-unmarshaled document.
func (f *PlanFactory) FromDocument(pj PlanJSON) (*comp.Plan, error) {
	if pj.ID == "" {
		return nil, fmt.Errorf("%w: missing plan id", comp.ErrInvalidPlan)
	}

	plan := &comp.Plan{
		ID:             comp.PlanID(pj.ID),
		Name:           pj.Name,
		Scope:          comp.PlanScope(pj.Scope),
		TargetPersonID: comp.PersonID(pj.PersonID),
		TargetRoleID:   comp.RoleID(pj.RoleID),
		TargetTeamID:   comp.TeamID(pj.TeamID),
		TargetAgencyID: comp.AgencyID(pj.AgencyID),
		TargetTeamType: comp.TeamType(pj.TeamType),
	}

	if pj.EffectiveFrom != "" {
		t, err := time.Parse("2006-01-02", pj.EffectiveFrom)
		if err != nil {
			return nil, fmt.Errorf("%w: bad effective_from %q", comp.ErrInvalidPlan, pj.EffectiveFrom)
		}
		plan.EffectiveFrom = t
	}

	for i, rj := range pj.Rules {
		rule, err := f.ruleFromJSON(pj.ID, i, rj)
		if err != nil {
			return nil, err
		}
		plan.Rules = append(plan.Rules, rule)
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	plan.SortRules()
	return plan, nil
}

func (f *PlanFactory) ruleFromJSON(planID string, idx int, rj RuleJSON) (comp.RuleBlock, error) {
	id := rj.ID
	if id == "" {
		id = fmt.Sprintf("%s-rule-%d", planID, idx+1)
	}

	rule := comp.RuleBlock{
		ID:           comp.RuleID(id),
		Name:         rj.Name,
		DisplayOrder: rj.DisplayOrder,
		PayoutType:   comp.PayoutType(rj.PayoutType),
		TierMode:     comp.TierMode(rj.TierMode),
		TierBasis:    comp.BucketName(rj.TierBasis),
		Bucket:       comp.BucketName(rj.Bucket),
	}

	// Defaults: untiered unless stated, display order from position.
	if rule.TierMode == "" {
		rule.TierMode = comp.TierModeNone
	}
	if rule.DisplayOrder == 0 {
		rule.DisplayOrder = idx + 1
	}

	if rj.BaseRate != nil {
		rule.BaseRate = decimal.NewFromFloat(*rj.BaseRate)
	}
	if rj.MinThreshold != nil {
		d := decimal.NewFromFloat(*rj.MinThreshold)
		rule.MinThreshold = &d
	}

	if rj.ApplyScope != nil {
		rule.Scope = comp.RuleScope{BucketID: comp.BucketName(rj.ApplyScope.Bucket)}
		for _, p := range rj.ApplyScope.Products {
			rule.Scope.ProductIDs = append(rule.Scope.ProductIDs, comp.ProductID(p))
		}
		for _, l := range rj.ApplyScope.Lobs {
			rule.Scope.LobIDs = append(rule.Scope.LobIDs, comp.LobID(l))
		}
		for _, t := range rj.ApplyScope.ProductTypes {
			rule.Scope.ProductTypes = append(rule.Scope.ProductTypes, comp.ProductType(t))
		}
		for _, c := range rj.ApplyScope.Categories {
			rule.Scope.PremiumCategories = append(rule.Scope.PremiumCategories, comp.PremiumCategory(c))
		}
	}

	for _, oj := range rj.FlagOverrides {
		rule.FlagOverrides = append(rule.FlagOverrides, comp.FlagOverride{
			FlagField: oj.Flag,
			Percent:   decimal.NewFromFloat(oj.Percent),
		})
	}

	for _, tj := range rj.Tiers {
		t := comp.Tier{
			Min:  decimal.NewFromFloat(tj.Min),
			Rate: decimal.NewFromFloat(tj.Rate),
		}
		if tj.Max != nil {
			max := decimal.NewFromFloat(*tj.Max)
			t.Max = &max
		}
		rule.Tiers = append(rule.Tiers, t)
	}

	for _, aj := range rj.ActivityPay {
		rule.ActivityItems = append(rule.ActivityItems, comp.ActivityPayItem{
			ActivityName: aj.Activity,
			Amount:       decimal.NewFromFloat(aj.Amount),
		})
	}

	return rule, rule.Validate()
}

// =============================================================================
// SERIALIZATION - Plan back to its document form (for storage/API echo)
// =============================================================================

// ToDocument converts a comp.Plan back into its JSON document form.
func ToDocument(plan comp.Plan) PlanJSON {
	pj := PlanJSON{
		ID:       string(plan.ID),
		Name:     plan.Name,
		Scope:    string(plan.Scope),
		PersonID: string(plan.TargetPersonID),
		RoleID:   string(plan.TargetRoleID),
		TeamID:   string(plan.TargetTeamID),
		AgencyID: string(plan.TargetAgencyID),
		TeamType: string(plan.TargetTeamType),
	}
	if !plan.EffectiveFrom.IsZero() {
		pj.EffectiveFrom = plan.EffectiveFrom.Format("2006-01-02")
	}
	for _, r := range plan.Rules {
		pj.Rules = append(pj.Rules, ruleToJSON(r))
	}
	return pj
}

func ruleToJSON(r comp.RuleBlock) RuleJSON {
	rj := RuleJSON{
		ID:           string(r.ID),
		Name:         r.Name,
		DisplayOrder: r.DisplayOrder,
		PayoutType:   string(r.PayoutType),
		TierMode:     string(r.TierMode),
		TierBasis:    string(r.TierBasis),
		Bucket:       string(r.Bucket),
	}
	if !r.BaseRate.IsZero() {
		v, _ := r.BaseRate.Float64()
		rj.BaseRate = &v
	}
	if r.MinThreshold != nil {
		v, _ := r.MinThreshold.Float64()
		rj.MinThreshold = &v
	}
	if !r.Scope.IsEmpty() {
		as := &ApplyScopeJSON{Bucket: string(r.Scope.BucketID)}
		for _, p := range r.Scope.ProductIDs {
			as.Products = append(as.Products, string(p))
		}
		for _, l := range r.Scope.LobIDs {
			as.Lobs = append(as.Lobs, string(l))
		}
		for _, t := range r.Scope.ProductTypes {
			as.ProductTypes = append(as.ProductTypes, string(t))
		}
		for _, c := range r.Scope.PremiumCategories {
			as.Categories = append(as.Categories, string(c))
		}
		rj.ApplyScope = as
	}
	for _, o := range r.FlagOverrides {
		p, _ := o.Percent.Float64()
		rj.FlagOverrides = append(rj.FlagOverrides, FlagOverrideJSON{Flag: o.FlagField, Percent: p})
	}
	for _, t := range r.Tiers {
		min, _ := t.Min.Float64()
		rate, _ := t.Rate.Float64()
		tj := TierJSON{Min: min, Rate: rate}
		if t.Max != nil {
			max, _ := t.Max.Float64()
			tj.Max = &max
		}
		rj.Tiers = append(rj.Tiers, tj)
	}
	for _, a := range r.ActivityItems {
		amt, _ := a.Amount.Float64()
		rj.ActivityPay = append(rj.ActivityPay, ActivityPayJSON{Activity: a.ActivityName, Amount: amt})
	}
	return rj
}
