/*
tier.go - Tier sets and bracket-rate tier resolution

PURPOSE:

	A tiered rule maps a metric value (app count, premium sum) to a payout
	rate via ordered [min, max] brackets:

	  [ {0, 19, $10}, {20, 30, $25}, {31, null, $40} ]

	25 apps falls in the 20-30 bracket, so ALL 25 apps pay $25 each:
	bracket-rate billing, not progressive marginal billing. This is a
	deliberate simplicity choice matching flat sales-tier commission plans.

INVARIANTS (enforced at save time, re-checked at evaluation time):
  - min >= 0, max >= min when set, rate >= 0
  - tiers sorted ascending by min, no two tiers overlap
  - at most one open-ended tier (max = null) and it must be last

NO MATCH:

	A value below every tier's min resolves to no tier. That is not an
	error: the rule simply pays $0 for the evaluation.
*/
package comp

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// TIER - One [min, max] bracket mapped to a rate
// =============================================================================

// Tier is a single bracket. Min and Max are inclusive; a nil Max means
// open-ended. Rate is a dollar amount for flat rules or a fraction in
// [0,1] for percent rules.
type Tier struct {
	Min  decimal.Decimal
	Max  *decimal.Decimal // nil = open-ended
	Rate decimal.Decimal
}

// Matches reports whether value falls within [Min, Max].
func (t Tier) Matches(value decimal.Decimal) bool {
	if value.LessThan(t.Min) {
		return false
	}
	if t.Max != nil && value.GreaterThan(*t.Max) {
		return false
	}
	return true
}

// Label renders the bracket bounds for audit strings: "20-30" or "31+".
func (t Tier) Label() string {
	if t.Max == nil {
		return t.Min.String() + "+"
	}
	return t.Min.String() + "-" + t.Max.String()
}

// =============================================================================
// VALIDATION - Reject bad tier sets before they can compute a wrong payout
// =============================================================================

// ValidateTiers checks the full tier-set invariant. Returns a *TierError
// identifying the first offending tier.
func ValidateTiers(tiers []Tier) error {
	for i, t := range tiers {
		if t.Min.IsNegative() {
			return &TierError{Index: i, Reason: ErrInvalidTier}
		}
		if t.Max != nil && t.Max.LessThan(t.Min) {
			return &TierError{Index: i, Reason: ErrInvalidTier}
		}
		if t.Rate.IsNegative() {
			return &TierError{Index: i, Reason: ErrInvalidTier}
		}
		if t.Max == nil && i != len(tiers)-1 {
			return &TierError{Index: i, Reason: ErrOpenTierNotLast}
		}
	}

	for i := 1; i < len(tiers); i++ {
		prev, cur := tiers[i-1], tiers[i]
		if cur.Min.LessThanOrEqual(prev.Min) {
			return &TierError{Index: i, Reason: ErrTierOrder}
		}
		// prev is open-ended and not last: already rejected above.
		if prev.Max != nil && cur.Min.LessThanOrEqual(*prev.Max) {
			return &TierError{Index: i, Reason: ErrTierOverlap}
		}
	}
	return nil
}

// =============================================================================
// RESOLUTION
// =============================================================================

// ResolveTier returns the single tier matching value, or (nil, false) if
// the value is below every tier. Given a valid tier set at most one tier
// can match, so the first hit wins.
func ResolveTier(tiers []Tier, value decimal.Decimal) (*Tier, bool) {
	for i := range tiers {
		if tiers[i].Matches(value) {
			return &tiers[i], true
		}
	}
	return nil, false
}
