/*
store.go - Persistence interfaces consumed by the engine

PURPOSE:

	Defines the read-side contract between the engine and storage. The
	engine is a pure computation over already-persisted facts: it needs
	records in a range, the plan/assignment graph, and catalog reference
	data. It never writes.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite store (also carries the write side
    used by the HTTP layer: sales entry, plan CRUD, atomic reorder,
    idempotent default seeding).
  - comp/store: In-memory implementation for tests and dev.

FACTS ARE IMMUTABLE:

	SoldProduct and ActivityRecord rows are created by entry surfaces and
	never mutated by the engine. Evaluating twice over the same snapshot
	must yield identical results.
*/
package comp

import (
	"context"
	"time"
)

// RecordStore serves the raw facts the aggregator scans.
type RecordStore interface {
	// SoldProductsInRange returns sales for a person with SoldAt in
	// [from, to], both inclusive.
	SoldProductsInRange(ctx context.Context, personID PersonID, from, to time.Time) ([]SoldProduct, error)

	// ActivitiesInRange returns activity records for a person with
	// OccurredAt in [from, to], both inclusive.
	ActivitiesInRange(ctx context.Context, personID PersonID, from, to time.Time) ([]ActivityRecord, error)
}

// PlanStore serves validated plan documents.
type PlanStore interface {
	// GetPlan returns a plan with rules sorted by display order.
	// Returns ErrPlanNotFound when absent.
	GetPlan(ctx context.Context, id PlanID) (*Plan, error)

	ListPlans(ctx context.Context) ([]Plan, error)
}

// AssignmentStore serves the dated person-to-plan links.
type AssignmentStore interface {
	// AssignmentsForPerson returns ALL assignments for a person,
	// including ones not yet effective. The resolver filters by date.
	AssignmentsForPerson(ctx context.Context, personID PersonID) ([]PlanAssignment, error)
}

// CatalogStore serves product reference data and custom bucket definitions.
type CatalogStore interface {
	GetCatalog(ctx context.Context) (*Catalog, error)

	// BucketDefs returns the custom bucket definitions for an agency.
	BucketDefs(ctx context.Context, agencyID AgencyID) ([]BucketDef, error)
}

// PersonStore serves the organizational read model.
type PersonStore interface {
	// GetPerson returns ErrPersonNotFound when absent.
	GetPerson(ctx context.Context, id PersonID) (*Person, error)
}
