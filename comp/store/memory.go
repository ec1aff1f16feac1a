// Package store provides in-memory implementations of the comp store
// interfaces, used by tests and local development.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tracktowin/comp-engine/comp"
)

// =============================================================================
// MEMORY STORE - Implements every comp store interface
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	people      map[comp.PersonID]comp.Person
	plans       map[comp.PlanID]comp.Plan
	assignments map[comp.PersonID][]comp.PlanAssignment
	products    map[comp.PersonID][]comp.SoldProduct
	activities  map[comp.PersonID][]comp.ActivityRecord
	catalog     *comp.Catalog
	bucketDefs  map[comp.AgencyID][]comp.BucketDef
}

func NewMemory() *Memory {
	return &Memory{
		people:      make(map[comp.PersonID]comp.Person),
		plans:       make(map[comp.PlanID]comp.Plan),
		assignments: make(map[comp.PersonID][]comp.PlanAssignment),
		products:    make(map[comp.PersonID][]comp.SoldProduct),
		activities:  make(map[comp.PersonID][]comp.ActivityRecord),
		catalog:     comp.NewCatalog(),
		bucketDefs:  make(map[comp.AgencyID][]comp.BucketDef),
	}
}

// Compile-time interface checks.
var (
	_ comp.PersonStore     = (*Memory)(nil)
	_ comp.PlanStore       = (*Memory)(nil)
	_ comp.AssignmentStore = (*Memory)(nil)
	_ comp.RecordStore     = (*Memory)(nil)
	_ comp.CatalogStore    = (*Memory)(nil)
)

// =============================================================================
// WRITE SIDE (test/dev setup)
// =============================================================================

func (m *Memory) PutPerson(p comp.Person) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.people[p.ID] = p
}

// PutPlan validates before storing, mirroring the save-time validation
// boundary of the production store.
func (m *Memory) PutPlan(p comp.Plan) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p.SortRules()
	m.plans[p.ID] = p
	return nil
}

func (m *Memory) PutAssignment(a comp.PlanAssignment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[a.PersonID] = append(m.assignments[a.PersonID], a)
}

func (m *Memory) AddSoldProduct(sp comp.SoldProduct) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[sp.PersonID] = append(m.products[sp.PersonID], sp)
}

func (m *Memory) AddActivity(ar comp.ActivityRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities[ar.PersonID] = append(m.activities[ar.PersonID], ar)
}

func (m *Memory) PutLob(l comp.LineOfBusiness) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalog.AddLob(l)
}

func (m *Memory) PutProduct(p comp.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalog.AddProduct(p)
}

func (m *Memory) PutBucketDef(d comp.BucketDef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bucketDefs[d.AgencyID] = append(m.bucketDefs[d.AgencyID], d)
}

// =============================================================================
// READ SIDE (engine interfaces)
// =============================================================================

func (m *Memory) GetPerson(_ context.Context, id comp.PersonID) (*comp.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.people[id]
	if !ok {
		return nil, comp.ErrPersonNotFound
	}
	return &p, nil
}

func (m *Memory) GetPlan(_ context.Context, id comp.PlanID) (*comp.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.plans[id]
	if !ok {
		return nil, comp.ErrPlanNotFound
	}
	return &p, nil
}

func (m *Memory) ListPlans(_ context.Context) ([]comp.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	plans := make([]comp.Plan, 0, len(m.plans))
	for _, p := range m.plans {
		plans = append(plans, p)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].ID < plans[j].ID })
	return plans, nil
}

func (m *Memory) AssignmentsForPerson(_ context.Context, personID comp.PersonID) ([]comp.PlanAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]comp.PlanAssignment, len(m.assignments[personID]))
	copy(out, m.assignments[personID])
	return out, nil
}

func (m *Memory) SoldProductsInRange(_ context.Context, personID comp.PersonID, from, to time.Time) ([]comp.SoldProduct, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	period := comp.Period{Start: from, End: to}
	var out []comp.SoldProduct
	for _, sp := range m.products[personID] {
		if period.Contains(sp.SoldAt) {
			out = append(out, sp)
		}
	}
	return out, nil
}

func (m *Memory) ActivitiesInRange(_ context.Context, personID comp.PersonID, from, to time.Time) ([]comp.ActivityRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	period := comp.Period{Start: from, End: to}
	var out []comp.ActivityRecord
	for _, ar := range m.activities[personID] {
		if period.Contains(ar.OccurredAt) {
			out = append(out, ar)
		}
	}
	return out, nil
}

func (m *Memory) GetCatalog(_ context.Context) (*comp.Catalog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	// Shallow copy: catalog maps are only ever appended to via Put*.
	c := comp.NewCatalog()
	for id, l := range m.catalog.Lobs {
		c.Lobs[id] = l
	}
	for id, p := range m.catalog.Products {
		c.Products[id] = p
	}
	return c, nil
}

func (m *Memory) BucketDefs(_ context.Context, agencyID comp.AgencyID) ([]comp.BucketDef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]comp.BucketDef, len(m.bucketDefs[agencyID]))
	copy(out, m.bucketDefs[agencyID])
	return out, nil
}
