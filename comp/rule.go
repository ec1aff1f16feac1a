/*
rule.go - Compensation plans and rule blocks

PURPOSE:

	A Plan is a named compensation policy targeting exactly one scope
	(person, role, team, agency, or team type) and carrying an ordered
	list of RuleBlocks. Each rule block is one payout rule:

	  FLAT_PER_UNIT      rate x unit count   ($25 per auto app)
	  PERCENT_OF_METRIC  rate x premium sum  (3% of health premium)
	  FLAT_LUMP_SUM      rate once           ($500 if threshold met)
	  ACTIVITY_PAY       sum of amount x activity count

	Flat/percent/lump rules can be untiered (a single base rate) or
	tiered (the rate comes from a bracket lookup on a driving bucket).

DISCRIMINATED CONFIGURATION:

	Rule blocks arrive as discriminated JSON documents (payout_type +
	tier_mode tags). The struct here keeps the discriminators as typed
	constants and enforces the valid combinations in Validate(), the same
	way reconciliation actions are dispatched on typed constants elsewhere
	in this codebase. Invalid combinations are rejected at save time; the
	evaluator re-checks as defense-in-depth.

SEE ALSO:
  - tier.go: Tier invariants
  - payout.go: Rule evaluation
  - factory/: JSON document parsing
*/
package comp

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DISCRIMINATORS
// =============================================================================

type PayoutType string

const (
	PayoutFlatPerUnit     PayoutType = "FLAT_PER_UNIT"
	PayoutPercentOfMetric PayoutType = "PERCENT_OF_METRIC"
	PayoutFlatLumpSum     PayoutType = "FLAT_LUMP_SUM"
	PayoutActivity        PayoutType = "ACTIVITY_PAY"
)

type TierMode string

const (
	TierModeNone  TierMode = "NONE"
	TierModeTiers TierMode = "TIERS"
)

// =============================================================================
// RULE SCOPE - Which products a rule block applies to
// =============================================================================

// RuleScope selects the sold products a rule cares about. The scope is
// the UNION of all populated criteria: explicit products, plus products
// in any listed LoB, plus products of any listed type, plus products
// whose LoB category is listed, plus members of a named custom bucket.
// An empty scope means the rule applies to every product.
type RuleScope struct {
	ProductIDs        []ProductID
	LobIDs            []LobID
	ProductTypes      []ProductType
	PremiumCategories []PremiumCategory
	BucketID          BucketName // named custom bucket membership
}

// IsEmpty reports whether no criterion is populated.
func (s RuleScope) IsEmpty() bool {
	return len(s.ProductIDs) == 0 && len(s.LobIDs) == 0 &&
		len(s.ProductTypes) == 0 && len(s.PremiumCategories) == 0 &&
		s.BucketID == ""
}

// =============================================================================
// FLAG OVERRIDES - Per-record rate substitution for percent rules
// =============================================================================

// FlagOverride substitutes a different percent for records carrying a
// boolean flag (e.g. "is_value_health" -> 20%). Overrides force the
// evaluator off the aggregate path onto per-record iteration.
type FlagOverride struct {
	FlagField string
	Percent   decimal.Decimal
}

// ActivityPayItem pays a fixed amount per occurrence of a named activity.
type ActivityPayItem struct {
	ActivityName string
	Amount       decimal.Decimal
}

// =============================================================================
// RULE BLOCK
// =============================================================================

// RuleBlock is one payout rule within a plan.
type RuleBlock struct {
	ID   RuleID
	Name string

	// DisplayOrder defines evaluation and display sequence. Unique within
	// a plan; rewritten transactionally by the storage layer on reorder.
	DisplayOrder int

	PayoutType PayoutType
	TierMode   TierMode

	// TierBasis names the bucket driving tier lookup. Required iff
	// TierMode == TIERS.
	TierBasis BucketName

	// BaseRate is the payout value when TierMode == NONE: dollars per
	// unit, a percent fraction, or the lump-sum amount.
	BaseRate decimal.Decimal

	// MinThreshold gates the rule: if the gating metric is below it the
	// rule pays $0. Optional.
	MinThreshold *decimal.Decimal

	// Bucket names the metric the rule is keyed on. When empty, the
	// metric is derived from Scope (count or premium sum of in-scope
	// records depending on PayoutType).
	Bucket BucketName

	Scope RuleScope

	FlagOverrides []FlagOverride

	Tiers []Tier

	// ActivityItems is the distinct ACTIVITY_PAY shape: no tiers, no
	// thresholds, just amount x activity count per named activity.
	ActivityItems []ActivityPayItem
}

// Tiered reports whether the rule uses bracket lookup.
func (r RuleBlock) Tiered() bool { return r.TierMode == TierModeTiers }

// Validate enforces the payout-type/tier-mode contract. Called at plan
// save time and again by the evaluator as defense-in-depth.
func (r RuleBlock) Validate() error {
	wrap := func(reason error) error {
		return &RuleError{RuleID: r.ID, RuleName: r.Name, Reason: reason}
	}

	switch r.PayoutType {
	case PayoutFlatPerUnit, PayoutPercentOfMetric, PayoutFlatLumpSum:
		switch r.TierMode {
		case TierModeTiers:
			if r.TierBasis == "" {
				return wrap(fmt.Errorf("%w: tier_basis required with tiers", ErrInvalidRule))
			}
			if len(r.Tiers) == 0 {
				return wrap(fmt.Errorf("%w: tiered rule has no tiers", ErrInvalidRule))
			}
			if err := ValidateTiers(r.Tiers); err != nil {
				return wrap(err)
			}
		case TierModeNone:
			if r.BaseRate.IsNegative() {
				return wrap(fmt.Errorf("%w: negative base rate", ErrInvalidRule))
			}
		default:
			return wrap(fmt.Errorf("%w: unknown tier mode %q", ErrInvalidRule, r.TierMode))
		}
	case PayoutActivity:
		if len(r.ActivityItems) == 0 {
			return wrap(fmt.Errorf("%w: activity rule has no items", ErrInvalidRule))
		}
		if r.TierMode == TierModeTiers || len(r.Tiers) > 0 {
			return wrap(fmt.Errorf("%w: activity rules cannot be tiered", ErrInvalidRule))
		}
		if r.MinThreshold != nil {
			return wrap(fmt.Errorf("%w: activity rules cannot be gated", ErrInvalidRule))
		}
	default:
		return wrap(fmt.Errorf("%w: unknown payout type %q", ErrInvalidRule, r.PayoutType))
	}

	if r.PayoutType == PayoutPercentOfMetric {
		if err := validatePercent(r); err != nil {
			return wrap(err)
		}
	} else if len(r.FlagOverrides) > 0 {
		// Overrides substitute percents per record; meaningless elsewhere.
		return wrap(fmt.Errorf("%w: flag overrides only apply to percent rules", ErrInvalidRule))
	}

	return nil
}

// validatePercent checks all percent rates live in [0,1].
func validatePercent(r RuleBlock) error {
	one := decimal.NewFromInt(1)
	inRange := func(d decimal.Decimal) bool {
		return !d.IsNegative() && d.LessThanOrEqual(one)
	}
	if r.TierMode == TierModeNone && !inRange(r.BaseRate) {
		return ErrPercentOutOfRange
	}
	for _, t := range r.Tiers {
		if !inRange(t.Rate) {
			return ErrPercentOutOfRange
		}
	}
	for _, o := range r.FlagOverrides {
		if !inRange(o.Percent) {
			return ErrPercentOutOfRange
		}
	}
	return nil
}

// =============================================================================
// PLAN - Named compensation policy with exactly one scope
// =============================================================================

type PlanScope string

const (
	ScopePerson   PlanScope = "PERSON"
	ScopeRole     PlanScope = "ROLE"
	ScopeTeam     PlanScope = "TEAM"
	ScopeAgency   PlanScope = "AGENCY"
	ScopeTeamType PlanScope = "TEAM_TYPE"
)

// Plan is a compensation policy. Exactly one target field - the one
// matching Scope - is meaningful; the rest must be zero.
type Plan struct {
	ID   PlanID
	Name string

	Scope          PlanScope
	TargetPersonID PersonID
	TargetRoleID   RoleID
	TargetTeamID   TeamID
	TargetAgencyID AgencyID
	TargetTeamType TeamType

	// EffectiveFrom is the plan-level default date; assignments may
	// start later.
	EffectiveFrom time.Time

	// Rules sorted ascending by DisplayOrder.
	Rules []RuleBlock
}

// Validate checks scope-target exclusivity, display-order uniqueness,
// and every rule block.
func (p Plan) Validate() error {
	wrap := func(reason error) error { return &PlanError{PlanID: p.ID, Reason: reason} }

	populated := 0
	if p.TargetPersonID != "" {
		populated++
	}
	if p.TargetRoleID != "" {
		populated++
	}
	if p.TargetTeamID != "" {
		populated++
	}
	if p.TargetAgencyID != "" {
		populated++
	}
	if p.TargetTeamType != "" {
		populated++
	}
	if populated != 1 {
		return wrap(fmt.Errorf("%w: exactly one scope target required, got %d", ErrInvalidPlan, populated))
	}

	var scopeOK bool
	switch p.Scope {
	case ScopePerson:
		scopeOK = p.TargetPersonID != ""
	case ScopeRole:
		scopeOK = p.TargetRoleID != ""
	case ScopeTeam:
		scopeOK = p.TargetTeamID != ""
	case ScopeAgency:
		scopeOK = p.TargetAgencyID != ""
	case ScopeTeamType:
		scopeOK = p.TargetTeamType != ""
	default:
		return wrap(fmt.Errorf("%w: unknown scope %q", ErrInvalidPlan, p.Scope))
	}
	if !scopeOK {
		return wrap(fmt.Errorf("%w: target does not match scope %s", ErrInvalidPlan, p.Scope))
	}

	seen := make(map[int]RuleID, len(p.Rules))
	for _, r := range p.Rules {
		if other, dup := seen[r.DisplayOrder]; dup {
			return wrap(fmt.Errorf("%w: rules %s and %s share display order %d",
				ErrInvalidPlan, other, r.ID, r.DisplayOrder))
		}
		seen[r.DisplayOrder] = r.ID
		if err := r.Validate(); err != nil {
			return wrap(err)
		}
	}
	return nil
}

// SortRules orders rules ascending by DisplayOrder in place.
func (p *Plan) SortRules() {
	sort.Slice(p.Rules, func(i, j int) bool {
		return p.Rules[i].DisplayOrder < p.Rules[j].DisplayOrder
	})
}
