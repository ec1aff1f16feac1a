/*
errors.go - Centralized error types for the compensation engine

PURPOSE:

	All error types in one place for consistency and discoverability.
	Two classes matter here:

	1. Configuration errors (bad tier sets, missing fields for a payout
	   type, unresolvable bucket names). Ideally caught at plan-save time
	   by the factory; if they reach evaluation anyway the offending rule
	   contributes $0 with a diagnostic detail and the rest of the plan
	   still evaluates.

	2. Data errors (no effective plan, no records in period). These are
	   NOT failures: they produce a legitimate zero total.

USAGE:

	if errors.Is(err, comp.ErrTierOverlap) {
	    // reject the plan document at save time
	}

SEE ALSO:
  - tier.go: Produces tier validation errors
  - rule.go: Produces rule validation errors
  - engine.go: Degrades rule errors to $0 breakdown entries
*/
package comp

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrTierOverlap is returned when two tiers in a rule block overlap.
	ErrTierOverlap = errors.New("tiers overlap")

	// ErrTierOrder is returned when tiers are not sorted ascending by min.
	ErrTierOrder = errors.New("tiers not sorted ascending by min")

	// ErrOpenTierNotLast is returned when an open-ended tier (max=null)
	// is not the last tier, or more than one exists.
	ErrOpenTierNotLast = errors.New("open-ended tier must be the single last tier")

	// ErrInvalidTier is returned for malformed single tiers (negative min,
	// max < min, negative rate).
	ErrInvalidTier = errors.New("invalid tier")

	// ErrInvalidRule is returned when a rule block's fields don't satisfy
	// its payout type / tier mode combination.
	ErrInvalidRule = errors.New("invalid rule configuration")

	// ErrInvalidPlan is returned for plan-level problems (scope target
	// mismatch, duplicate display orders).
	ErrInvalidPlan = errors.New("invalid plan")

	// ErrUnknownBucket is returned when a rule references a bucket that
	// the aggregation did not produce and no custom definition covers.
	ErrUnknownBucket = errors.New("unknown bucket")

	// ErrPercentOutOfRange is returned when a percent rate is outside [0,1].
	ErrPercentOutOfRange = errors.New("percent rate outside [0,1]")

	// ErrPlanNotFound is returned when a referenced plan doesn't exist.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrPersonNotFound is returned when a referenced person doesn't exist.
	ErrPersonNotFound = errors.New("person not found")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TierError pinpoints a tier validation failure within a rule block.
type TierError struct {
	Index  int // offending tier position
	Reason error
}

func (e *TierError) Error() string {
	return fmt.Sprintf("tier %d: %v", e.Index, e.Reason)
}

func (e *TierError) Unwrap() error { return e.Reason }

// RuleError wraps a configuration problem with the rule that caused it.
type RuleError struct {
	RuleID   RuleID
	RuleName string
	Reason   error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %q (%s): %v", e.RuleName, e.RuleID, e.Reason)
}

func (e *RuleError) Unwrap() error { return e.Reason }

// PlanError wraps a plan-level configuration problem.
type PlanError struct {
	PlanID PlanID
	Reason error
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("plan %s: %v", e.PlanID, e.Reason)
}

func (e *PlanError) Unwrap() error { return e.Reason }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConfigError returns true for errors an admin can fix by editing the
// plan document. These get rejected at save time and degraded to $0
// entries at evaluation time.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrTierOverlap) ||
		errors.Is(err, ErrTierOrder) ||
		errors.Is(err, ErrOpenTierNotLast) ||
		errors.Is(err, ErrInvalidTier) ||
		errors.Is(err, ErrInvalidRule) ||
		errors.Is(err, ErrInvalidPlan) ||
		errors.Is(err, ErrUnknownBucket) ||
		errors.Is(err, ErrPercentOutOfRange)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPlanNotFound) ||
		errors.Is(err, ErrPersonNotFound)
}
