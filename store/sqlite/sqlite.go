/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:

	Implements all persistence interfaces (PersonStore, RecordStore,
	PlanStore, AssignmentStore, CatalogStore) plus the write side used by
	the HTTP layer. In production the same patterns apply to PostgreSQL -
	only minor SQL dialect differences.

KEY TABLES:

	people:            Organizational read model (person + team/role/agency)
	lobs, products:    Product catalog reference data
	bucket_defs:       Per-agency custom bucket definitions
	sold_products:     Immutable sale facts (premium, flags, raw-new)
	activity_records:  Immutable activity facts
	plans:             Plan documents (config_json, validated on save)
	plan_assignments:  Dated person-to-plan links

FACTS ARE IMMUTABLE:

	sold_products and activity_records receive INSERTs only. The engine
	derives payouts from them; nothing here rewrites history.

ATOMIC REORDER:

	ReorderRules rewrites ALL display_order values of a plan inside one
	SQL transaction, so two rule blocks can never momentarily share an
	order value under concurrent edits.

IDEMPOTENT SEEDING:

	SeedDefaults inserts the preset default plans and team-type default
	assignments only where absent. It is an explicit admin/migration
	action, never a hidden per-evaluation side effect.

WAL MODE:

	SQLite is opened with WAL for better concurrency: multiple readers
	don't block, single writer at a time, better crash recovery.

USAGE:

	store, err := sqlite.New("./data/comp.db")
	if err != nil {
	    log.Fatal(err)
	}
	defer store.Close()

SEE ALSO:
  - comp/store.go: Interface definitions
  - comp/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/tracktowin/comp-engine/comp"
	"github.com/tracktowin/comp-engine/factory"
	"github.com/tracktowin/comp-engine/plans"
)

const dateFormat = "2006-01-02"

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Compile-time interface checks.
var (
	_ comp.PersonStore     = (*Store)(nil)
	_ comp.RecordStore     = (*Store)(nil)
	_ comp.PlanStore       = (*Store)(nil)
	_ comp.AssignmentStore = (*Store)(nil)
	_ comp.CatalogStore    = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- People (organizational read model)
	CREATE TABLE IF NOT EXISTS people (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		agency_id TEXT NOT NULL,
		team_id TEXT,
		role_id TEXT,
		team_type TEXT NOT NULL,
		hired_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_people_agency ON people(agency_id);
	CREATE INDEX IF NOT EXISTS idx_people_team_type ON people(team_type);

	-- Product catalog
	CREATE TABLE IF NOT EXISTS lobs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lob_id TEXT NOT NULL,
		product_type TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_products_lob ON products(lob_id);

	-- Custom bucket definitions (per agency)
	CREATE TABLE IF NOT EXISTS bucket_defs (
		id TEXT NOT NULL,
		agency_id TEXT NOT NULL,
		name TEXT NOT NULL,
		metric TEXT NOT NULL,
		includes_lobs_json TEXT NOT NULL,
		includes_products_json TEXT NOT NULL,
		PRIMARY KEY (id, agency_id)
	);

	-- Sold products (immutable facts, INSERT only)
	CREATE TABLE IF NOT EXISTS sold_products (
		id TEXT PRIMARY KEY,
		person_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		lob_id TEXT NOT NULL,
		sold_at TEXT NOT NULL,
		premium TEXT NOT NULL,
		raw_new INTEGER NOT NULL DEFAULT 0,
		flags_json TEXT,
		created_at TEXT NOT NULL
	);

	-- Hot path: one scan per (person, period)
	CREATE INDEX IF NOT EXISTS idx_sold_products_person_date
		ON sold_products(person_id, sold_at);

	-- Activity records (immutable facts, INSERT only)
	CREATE TABLE IF NOT EXISTS activity_records (
		id TEXT PRIMARY KEY,
		person_id TEXT NOT NULL,
		name TEXT NOT NULL,
		count INTEGER NOT NULL,
		occurred_at TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_activity_person_date
		ON activity_records(person_id, occurred_at);

	-- Plans (validated documents)
	CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		scope TEXT NOT NULL,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Plan assignments
	CREATE TABLE IF NOT EXISTS plan_assignments (
		id TEXT PRIMARY KEY,
		person_id TEXT NOT NULL,
		plan_id TEXT NOT NULL,
		effective_from TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(person_id, plan_id, effective_from)
	);

	CREATE INDEX IF NOT EXISTS idx_assignments_person
		ON plan_assignments(person_id, effective_from);
	`

	_, err := s.db.Exec(schema)
	return err
}

func nowStamp() string { return time.Now().UTC().Format(time.RFC3339) }

// =============================================================================
// PEOPLE
// =============================================================================

func (s *Store) SavePerson(ctx context.Context, p comp.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hired := ""
	if !p.HiredAt.IsZero() {
		hired = p.HiredAt.Format(dateFormat)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO people (id, name, email, agency_id, team_id, role_id, team_type, hired_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, email=excluded.email, agency_id=excluded.agency_id,
			team_id=excluded.team_id, role_id=excluded.role_id,
			team_type=excluded.team_type, hired_at=excluded.hired_at`,
		p.ID, p.Name, p.Email, p.AgencyID, p.TeamID, p.RoleID, p.TeamType, hired, nowStamp())
	return err
}

func (s *Store) GetPerson(ctx context.Context, id comp.PersonID) (*comp.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, agency_id, team_id, role_id, team_type, hired_at
		FROM people WHERE id = ?`, id)
	return scanPerson(row)
}

func (s *Store) ListPeople(ctx context.Context) ([]comp.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, agency_id, team_id, role_id, team_type, hired_at
		FROM people ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var people []comp.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		people = append(people, *p)
	}
	return people, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (*comp.Person, error) {
	var p comp.Person
	var email, teamID, roleID, hired sql.NullString
	err := row.Scan(&p.ID, &p.Name, &email, &p.AgencyID, &teamID, &roleID, &p.TeamType, &hired)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, comp.ErrPersonNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Email = email.String
	p.TeamID = comp.TeamID(teamID.String)
	p.RoleID = comp.RoleID(roleID.String)
	if hired.String != "" {
		p.HiredAt, _ = time.Parse(dateFormat, hired.String)
	}
	return &p, nil
}

// =============================================================================
// CATALOG
// =============================================================================

func (s *Store) SaveLob(ctx context.Context, l comp.LineOfBusiness) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lobs (id, name, category) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, category=excluded.category`,
		l.ID, l.Name, l.Category)
	return err
}

func (s *Store) SaveProduct(ctx context.Context, p comp.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, lob_id, product_type) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, lob_id=excluded.lob_id,
			product_type=excluded.product_type`,
		p.ID, p.Name, p.LobID, p.Type)
	return err
}

func (s *Store) GetCatalog(ctx context.Context) (*comp.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	catalog := comp.NewCatalog()

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, category FROM lobs`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l comp.LineOfBusiness
		if err := rows.Scan(&l.ID, &l.Name, &l.Category); err != nil {
			return nil, err
		}
		catalog.AddLob(l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := s.db.QueryContext(ctx, `SELECT id, name, lob_id, product_type FROM products`)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var p comp.Product
		if err := prows.Scan(&p.ID, &p.Name, &p.LobID, &p.Type); err != nil {
			return nil, err
		}
		catalog.AddProduct(p)
	}
	return catalog, prows.Err()
}

func (s *Store) SaveBucketDef(ctx context.Context, d comp.BucketDef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lobsJSON, _ := json.Marshal(d.IncludesLobs)
	productsJSON, _ := json.Marshal(d.IncludesProducts)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bucket_defs (id, agency_id, name, metric, includes_lobs_json, includes_products_json)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id, agency_id) DO UPDATE SET
			name=excluded.name, metric=excluded.metric,
			includes_lobs_json=excluded.includes_lobs_json,
			includes_products_json=excluded.includes_products_json`,
		d.ID, d.AgencyID, d.Name, d.Metric, string(lobsJSON), string(productsJSON))
	return err
}

func (s *Store) BucketDefs(ctx context.Context, agencyID comp.AgencyID) ([]comp.BucketDef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, agency_id, name, metric, includes_lobs_json, includes_products_json
		FROM bucket_defs WHERE agency_id = ?`, agencyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []comp.BucketDef
	for rows.Next() {
		var d comp.BucketDef
		var lobsJSON, productsJSON string
		if err := rows.Scan(&d.ID, &d.AgencyID, &d.Name, &d.Metric, &lobsJSON, &productsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(lobsJSON), &d.IncludesLobs); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(productsJSON), &d.IncludesProducts); err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	return defs, rows.Err()
}

// =============================================================================
// FACTS - Sold products and activities (INSERT only)
// =============================================================================

func (s *Store) AddSoldProduct(ctx context.Context, sp comp.SoldProduct) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sp.ID == "" {
		sp.ID = uuid.NewString()
	}
	flagsJSON, _ := json.Marshal(sp.Flags)
	rawNew := 0
	if sp.RawNew {
		rawNew = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sold_products (id, person_id, product_id, lob_id, sold_at, premium, raw_new, flags_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sp.ID, sp.PersonID, sp.ProductID, sp.LobID, sp.SoldAt.Format(dateFormat),
		sp.Premium.String(), rawNew, string(flagsJSON), nowStamp())
	return sp.ID, err
}

func (s *Store) SoldProductsInRange(ctx context.Context, personID comp.PersonID, from, to time.Time) ([]comp.SoldProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, person_id, product_id, lob_id, sold_at, premium, raw_new, flags_json
		FROM sold_products
		WHERE person_id = ? AND sold_at >= ? AND sold_at <= ?
		ORDER BY sold_at, id`,
		personID, from.Format(dateFormat), to.Format(dateFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []comp.SoldProduct
	for rows.Next() {
		var sp comp.SoldProduct
		var soldAt, premium string
		var rawNew int
		var flagsJSON sql.NullString
		if err := rows.Scan(&sp.ID, &sp.PersonID, &sp.ProductID, &sp.LobID, &soldAt, &premium, &rawNew, &flagsJSON); err != nil {
			return nil, err
		}
		sp.SoldAt, _ = time.Parse(dateFormat, soldAt)
		sp.Premium, err = decimal.NewFromString(premium)
		if err != nil {
			return nil, fmt.Errorf("sold product %s: bad premium %q", sp.ID, premium)
		}
		sp.RawNew = rawNew != 0
		if flagsJSON.String != "" && flagsJSON.String != "null" {
			if err := json.Unmarshal([]byte(flagsJSON.String), &sp.Flags); err != nil {
				return nil, err
			}
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

func (s *Store) AddActivity(ctx context.Context, ar comp.ActivityRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ar.ID == "" {
		ar.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_records (id, person_id, name, count, occurred_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ar.ID, ar.PersonID, ar.Name, ar.Count, ar.OccurredAt.Format(dateFormat), nowStamp())
	return ar.ID, err
}

func (s *Store) ActivitiesInRange(ctx context.Context, personID comp.PersonID, from, to time.Time) ([]comp.ActivityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, person_id, name, count, occurred_at
		FROM activity_records
		WHERE person_id = ? AND occurred_at >= ? AND occurred_at <= ?
		ORDER BY occurred_at, id`,
		personID, from.Format(dateFormat), to.Format(dateFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []comp.ActivityRecord
	for rows.Next() {
		var ar comp.ActivityRecord
		var occurredAt string
		if err := rows.Scan(&ar.ID, &ar.PersonID, &ar.Name, &ar.Count, &occurredAt); err != nil {
			return nil, err
		}
		ar.OccurredAt, _ = time.Parse(dateFormat, occurredAt)
		out = append(out, ar)
	}
	return out, rows.Err()
}

// =============================================================================
// PLANS - Documents validated on save
// =============================================================================

// SavePlan validates and stores a plan document. Validation failures
// (tier overlap, duplicate display order) reject the save.
func (s *Store) SavePlan(ctx context.Context, configJSON string) (*comp.Plan, error) {
	plan, err := factory.ParsePlan(configJSON)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowStamp()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plans (id, name, scope, config_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, scope=excluded.scope,
			config_json=excluded.config_json, updated_at=excluded.updated_at`,
		plan.ID, plan.Name, plan.Scope, configJSON, now, now)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *Store) GetPlan(ctx context.Context, id comp.PlanID) (*comp.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getPlanLocked(ctx, id)
}

func (s *Store) getPlanLocked(ctx context.Context, id comp.PlanID) (*comp.Plan, error) {
	var configJSON string
	err := s.db.QueryRowContext(ctx, `SELECT config_json FROM plans WHERE id = ?`, id).Scan(&configJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, comp.ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return factory.ParsePlan(configJSON)
}

func (s *Store) ListPlans(ctx context.Context) ([]comp.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT config_json FROM plans ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []comp.Plan
	for rows.Next() {
		var configJSON string
		if err := rows.Scan(&configJSON); err != nil {
			return nil, err
		}
		plan, err := factory.ParsePlan(configJSON)
		if err != nil {
			continue // skip documents that no longer parse
		}
		out = append(out, *plan)
	}
	return out, rows.Err()
}

// ReorderRules rewrites every rule's display order in one transaction.
// orderedRuleIDs must contain exactly the plan's rule ids in the new
// sequence; orders are rewritten 1..n together so no two rules ever
// share an order value mid-edit.
func (s *Store) ReorderRules(ctx context.Context, planID comp.PlanID, orderedRuleIDs []string) (*comp.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.getPlanLocked(ctx, planID)
	if err != nil {
		return nil, err
	}
	if len(orderedRuleIDs) != len(plan.Rules) {
		return nil, fmt.Errorf("%w: reorder lists %d rules, plan has %d",
			comp.ErrInvalidPlan, len(orderedRuleIDs), len(plan.Rules))
	}

	byID := make(map[comp.RuleID]*comp.RuleBlock, len(plan.Rules))
	for i := range plan.Rules {
		byID[plan.Rules[i].ID] = &plan.Rules[i]
	}
	for i, id := range orderedRuleIDs {
		rule, ok := byID[comp.RuleID(id)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown rule %s in reorder", comp.ErrInvalidPlan, id)
		}
		rule.DisplayOrder = i + 1
	}
	plan.SortRules()
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	doc, err := json.MarshalIndent(factory.ToDocument(*plan), "", "  ")
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE plans SET config_json = ?, updated_at = ? WHERE id = ?`,
		string(doc), nowStamp(), planID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return plan, nil
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

func (s *Store) SaveAssignment(ctx context.Context, a comp.PlanAssignment) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveAssignmentLocked(ctx, a)
}

func (s *Store) saveAssignmentLocked(ctx context.Context, a comp.PlanAssignment) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO plan_assignments (id, person_id, plan_id, effective_from, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(person_id, plan_id, effective_from) DO NOTHING`,
		a.ID, a.PersonID, a.PlanID, a.EffectiveFrom.Format(dateFormat), nowStamp())
	return a.ID, err
}

func (s *Store) AssignmentsForPerson(ctx context.Context, personID comp.PersonID) ([]comp.PlanAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, person_id, plan_id, effective_from
		FROM plan_assignments WHERE person_id = ?
		ORDER BY effective_from, id`, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []comp.PlanAssignment
	for rows.Next() {
		var a comp.PlanAssignment
		var from string
		if err := rows.Scan(&a.ID, &a.PersonID, &a.PlanID, &from); err != nil {
			return nil, err
		}
		a.EffectiveFrom, _ = time.Parse(dateFormat, from)
		out = append(out, a)
	}
	return out, rows.Err()
}

// =============================================================================
// DEFAULT SEEDING - Explicit and idempotent
// =============================================================================

// SeedDefaults inserts the preset default plans and, for every person,
// an assignment to their team-type default plan. Safe to invoke
// repeatedly: existing plans are left untouched and duplicate
// assignments are suppressed by the uniqueness constraint.
func (s *Store) SeedDefaults(ctx context.Context) error {
	defaults := map[comp.TeamType]string{
		comp.TeamTypeSales:   plans.StandardProducerJSON("producer-standard", "Standard Producer Plan"),
		comp.TeamTypeService: plans.CSRActivityJSON("csr-activity", "CSR Activity Plan"),
	}

	seeded := make(map[comp.TeamType]*comp.Plan, len(defaults))
	for teamType, doc := range defaults {
		plan, err := factory.ParsePlan(doc)
		if err != nil {
			return err
		}
		seeded[teamType] = plan

		s.mu.Lock()
		var exists int
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM plans WHERE id = ?`, plan.ID).Scan(&exists)
		if err == nil && exists == 0 {
			now := nowStamp()
			_, err = s.db.ExecContext(ctx, `
				INSERT INTO plans (id, name, scope, config_json, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				plan.ID, plan.Name, plan.Scope, doc, now, now)
		}
		s.mu.Unlock()
		if err != nil {
			return err
		}
	}

	people, err := s.ListPeople(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range people {
		plan, ok := seeded[p.TeamType]
		if !ok {
			continue
		}
		// Assignments start when the preset plan does, so editing a
		// preset's effective date keeps the two in step.
		if _, err := s.saveAssignmentLocked(ctx, comp.PlanAssignment{
			PersonID:      p.ID,
			PlanID:        plan.ID,
			EffectiveFrom: plan.EffectiveFrom,
		}); err != nil {
			return err
		}
	}
	return nil
}
