/*
assignment.go - Plan assignments and point-in-time precedence

PURPOSE:

	People can hold multiple simultaneous plan assignments: an inherited
	TEAM_TYPE default, an agency plan, and an explicit PERSON override may
	all be live at once. This file picks THE single effective plan for an
	evaluation date.

PRECEDENCE (most to least specific):

	PERSON > ROLE > TEAM > AGENCY > TEAM_TYPE

	Within one scope level, the assignment with the latest
	effectiveFrom <= asOf wins. Assignments with effectiveFrom > asOf are
	not yet active and are ignored entirely - a PERSON override effective
	March 1 does not shadow the TEAM_TYPE default when evaluating February.

NO ASSIGNMENT:

	If nothing is active the resolver returns nil, and downstream
	evaluation yields a zero total with an empty breakdown. Not an error.
*/
package comp

import (
	"context"
	"sort"
	"time"
)

// =============================================================================
// PLAN ASSIGNMENT - Dated link between a person and a plan
// =============================================================================

type PlanAssignment struct {
	ID            string
	PersonID      PersonID
	PlanID        PlanID
	EffectiveFrom time.Time
}

// ActiveAt reports whether the assignment has taken effect by asOf.
func (pa PlanAssignment) ActiveAt(asOf time.Time) bool {
	return !pa.EffectiveFrom.After(asOf)
}

// =============================================================================
// RESOLVER
// =============================================================================

// PlanAssignmentResolver picks the effective plan for a person at a date.
type PlanAssignmentResolver struct {
	Assignments AssignmentStore
	Plans       PlanStore
}

// candidate pairs an active assignment with its resolved plan.
type candidate struct {
	assignment PlanAssignment
	plan       Plan
}

// EffectivePlan returns the single winning plan and its assignment as of
// asOf, or (nil, nil, nil) when no assignment is active. Assignments to
// plans whose scope does not actually match the person are skipped as
// defense against stale links (e.g. the person moved teams after being
// assigned a TEAM plan).
func (r *PlanAssignmentResolver) EffectivePlan(ctx context.Context, person Person, asOf time.Time) (*Plan, *PlanAssignment, error) {
	assignments, err := r.Assignments.AssignmentsForPerson(ctx, person.ID)
	if err != nil {
		return nil, nil, err
	}

	var candidates []candidate
	for _, a := range assignments {
		if !a.ActiveAt(asOf) {
			continue
		}
		plan, err := r.Plans.GetPlan(ctx, a.PlanID)
		if err != nil {
			if IsNotFound(err) {
				continue // dangling assignment, skip
			}
			return nil, nil, err
		}
		if !PlanMatchesPerson(*plan, person) {
			continue
		}
		candidates = append(candidates, candidate{assignment: a, plan: *plan})
	}

	if len(candidates) == 0 {
		return nil, nil, nil
	}

	// Most specific scope first; within a scope, latest start first.
	// Assignment id breaks exact ties deterministically.
	sort.Slice(candidates, func(i, j int) bool {
		ri, rj := ScopeRank(candidates[i].plan.Scope), ScopeRank(candidates[j].plan.Scope)
		if ri != rj {
			return ri < rj
		}
		fi, fj := candidates[i].assignment.EffectiveFrom, candidates[j].assignment.EffectiveFrom
		if !fi.Equal(fj) {
			return fi.After(fj)
		}
		return candidates[i].assignment.ID < candidates[j].assignment.ID
	})

	winner := candidates[0]
	return &winner.plan, &winner.assignment, nil
}
