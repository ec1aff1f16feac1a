/*
engine.go - Full-plan compensation evaluation

PURPOSE:

	The orchestrator. For a person and a period it:
	1. Resolves the effective plan assignment (as of the period end)
	2. Aggregates buckets ONCE, reusing them across every rule block
	3. Evaluates the plan's rule blocks in display order
	4. Sums payouts into a total with an ordered breakdown

ERROR POSTURE:

	A full-plan evaluation never propagates a config error: a single
	misconfigured rule (bad tiers, unknown bucket) degrades to a $0
	breakdown entry carrying the diagnostic, and the rest of the plan
	still pays out. Missing plan / empty period are legitimate zero
	results, not failures. Infrastructure errors (store failures) are the
	only errors the engine returns.

CONCURRENCY:

	Evaluation is a pure read-only computation; evaluating different
	people concurrently is safe without locks. Rule blocks inside one
	plan share only the immutable aggregation snapshot.
*/
package comp

import (
	"context"
	"time"
)

// Engine evaluates compensation plans. All dependencies are read-only
// store interfaces; construct once and share across goroutines.
type Engine struct {
	People      PersonStore
	Records     RecordStore
	Plans       PlanStore
	Assignments AssignmentStore
	Catalog     CatalogStore

	// Clock is overridable for deterministic tests. Defaults to time.Now.
	Clock func() time.Time
}

func (e *Engine) now() time.Time {
	if e.Clock != nil {
		return e.Clock()
	}
	return time.Now().UTC()
}

// Evaluate computes the total payout and per-rule breakdown for a
// person over a period. Always returns a complete EvaluationResult on
// success; only store/infrastructure failures produce an error.
func (e *Engine) Evaluate(ctx context.Context, personID PersonID, period Period) (*EvaluationResult, error) {
	if !period.IsValid() {
		return nil, ErrInvalidPeriod
	}

	person, err := e.People.GetPerson(ctx, personID)
	if err != nil {
		return nil, err
	}

	result := &EvaluationResult{
		PersonID:    personID,
		Period:      period,
		Total:       ZeroMoney(),
		EvaluatedAt: e.now(),
	}

	// Effective plan as of the period end: the plan in force when the
	// period closes governs the whole period's payout.
	resolver := &PlanAssignmentResolver{Assignments: e.Assignments, Plans: e.Plans}
	plan, _, err := resolver.EffectivePlan(ctx, *person, period.End)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		// No active assignment: zero total, empty breakdown.
		return result, nil
	}
	result.PlanID = plan.ID
	result.PlanName = plan.Name

	// One scan of the period's records, shared by every rule block.
	aggregator := &BucketAggregator{Records: e.Records, Catalog: e.Catalog}
	agg, err := aggregator.Aggregate(ctx, *person, period)
	if err != nil {
		return nil, err
	}

	catalog, err := e.Catalog.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	defs, err := e.Catalog.BucketDefs(ctx, person.AgencyID)
	if err != nil {
		return nil, err
	}

	plan.SortRules()
	evaluator := &PayoutEvaluator{}
	for _, rule := range plan.Rules {
		rr := evaluator.Evaluate(rule, agg, catalog, defs)

		entry := BreakdownEntry{
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Payout:   rr.Payout,
			Detail:   rr.Detail,
		}
		if rr.Err != nil {
			entry.Err = rr.Err.Error()
		}
		result.Breakdown = append(result.Breakdown, entry)
		result.Total = result.Total.Add(rr.Payout)
	}

	return result, nil
}
