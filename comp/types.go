/*
Package comp provides the compensation rule-evaluation engine.

PURPOSE:

	This package contains the domain types and algorithms for computing
	commission payouts: given a person, a time period, and a configured
	compensation plan, it produces a total payout plus an auditable
	per-rule breakdown.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A dollar quantity backed by decimal.Decimal
  - Person / Agency / Team / Role: The organizational read model
  - Product / LineOfBusiness / Catalog: What gets sold
  - SoldProduct / ActivityRecord: Immutable facts the engine aggregates
  - EvaluationResult: Total + ordered breakdown, purely derived

DESIGN PRINCIPLES:
 1. Immutability: Sold-product and activity facts are never mutated here
 2. Precision: decimal.Decimal for all premium/rate/payout math
 3. Type Safety: Strong typing for ids prevents mixing person/plan ids
 4. Auditability: Every breakdown entry carries a human-readable detail
    string sufficient to reconstruct the number

USAGE:

	engine := &comp.Engine{...}
	result, _ := engine.Evaluate(ctx, "person-1", comp.Month(2025, time.March))
	for _, entry := range result.Breakdown {
	    fmt.Printf("%s: %s (%s)\n", entry.RuleName, entry.Payout, entry.Detail)
	}

SEE ALSO:
  - rule.go: Plan and rule-block definitions
  - engine.go: Full-plan evaluation
  - bucket.go: Metric aggregation from raw records
*/
package comp

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Dollar amounts with decimal precision
// =============================================================================

// Money is a dollar amount. A thin wrapper over decimal.Decimal so that
// payout math never touches binary floating point.
type Money struct {
	Value decimal.Decimal
}

func NewMoney(v float64) Money                 { return Money{Value: decimal.NewFromFloat(v)} }
func NewMoneyFromInt(v int) Money              { return Money{Value: decimal.NewFromInt(int64(v))} }
func MoneyFromDecimal(d decimal.Decimal) Money { return Money{Value: d} }

func ZeroMoney() Money { return Money{Value: decimal.Zero} }

func (m Money) Add(o Money) Money           { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money           { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Mul(s decimal.Decimal) Money { return Money{Value: m.Value.Mul(s)} }
func (m Money) Neg() Money                  { return Money{Value: m.Value.Neg()} }
func (m Money) IsZero() bool                { return m.Value.IsZero() }
func (m Money) IsNegative() bool            { return m.Value.IsNegative() }
func (m Money) Equal(o Money) bool          { return m.Value.Equal(o.Value) }

// String renders with two decimal places: "$625.00".
func (m Money) String() string { return "$" + m.Value.StringFixed(2) }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type PersonID string
type AgencyID string
type TeamID string
type RoleID string
type PlanID string
type RuleID string
type ProductID string
type LobID string

// TeamType is the coarse org classification used for default plans.
type TeamType string

const (
	TeamTypeSales   TeamType = "SALES"
	TeamTypeService TeamType = "CS"
)

// =============================================================================
// ORGANIZATION - Read-only inputs to the engine
// =============================================================================

// Person is immutable for the duration of an evaluation. Admin actions
// that move people between teams happen outside the engine.
type Person struct {
	ID       PersonID
	Name     string
	Email    string
	AgencyID AgencyID // primary agency
	TeamID   TeamID
	RoleID   RoleID
	TeamType TeamType
	HiredAt  time.Time
}

type Agency struct {
	ID   AgencyID
	Name string
}

type Team struct {
	ID       TeamID
	AgencyID AgencyID
	Name     string
	Type     TeamType
}

type Role struct {
	ID   RoleID
	Name string
}

// =============================================================================
// PRODUCT CATALOG
// =============================================================================

// ProductType is the coarse product classification (personal vs commercial
// lines, etc.). Rule apply-scopes can target whole types.
type ProductType string

const (
	ProductPersonal   ProductType = "PERSONAL"
	ProductCommercial ProductType = "COMMERCIAL"
	ProductLifeHealth ProductType = "LIFE_HEALTH"
)

// PremiumCategory groups lines of business for reporting and rule scoping
// (e.g. all P&C lines vs all life/health lines).
type PremiumCategory string

const (
	CategoryPC     PremiumCategory = "P_AND_C"
	CategoryLife   PremiumCategory = "LIFE"
	CategoryHealth PremiumCategory = "HEALTH"
)

type LineOfBusiness struct {
	ID       LobID
	Name     string
	Category PremiumCategory
}

type Product struct {
	ID    ProductID
	Name  string
	LobID LobID
	Type  ProductType
}

// Catalog is the product reference data snapshot used by one evaluation.
type Catalog struct {
	Products map[ProductID]Product
	Lobs     map[LobID]LineOfBusiness
}

func NewCatalog() *Catalog {
	return &Catalog{
		Products: make(map[ProductID]Product),
		Lobs:     make(map[LobID]LineOfBusiness),
	}
}

func (c *Catalog) AddLob(l LineOfBusiness) { c.Lobs[l.ID] = l }
func (c *Catalog) AddProduct(p Product)    { c.Products[p.ID] = p }

// CategoryOf returns the premium category for a product, via its LoB.
func (c *Catalog) CategoryOf(id ProductID) (PremiumCategory, bool) {
	p, ok := c.Products[id]
	if !ok {
		return "", false
	}
	lob, ok := c.Lobs[p.LobID]
	if !ok {
		return "", false
	}
	return lob.Category, true
}

// =============================================================================
// FACTS - Atomic records aggregated into buckets
// =============================================================================

// SoldProduct is a single sale: one application for one product, with its
// premium and any per-record boolean value flags. Created by sales entry
// outside the engine; never mutated here.
type SoldProduct struct {
	ID        string
	PersonID  PersonID
	ProductID ProductID
	LobID     LobID
	SoldAt    time.Time
	Premium   decimal.Decimal

	// RawNew marks brand-new business (vs rewrite/renewal).
	RawNew bool

	// Flags are per-record value attributes, e.g. "is_value_health".
	// Flag overrides on percent rules key off these.
	Flags map[string]bool
}

func (sp SoldProduct) HasFlag(name string) bool {
	return sp.Flags != nil && sp.Flags[name]
}

// ActivityRecord is a logged activity (calls, quotes, reviews) with a count.
type ActivityRecord struct {
	ID         string
	PersonID   PersonID
	Name       string
	Count      int
	OccurredAt time.Time
}

// =============================================================================
// EVALUATION RESULT - Computed payout, not persisted by the engine
// =============================================================================

// BreakdownEntry is one rule block's contribution to the total.
type BreakdownEntry struct {
	RuleID   RuleID
	RuleName string
	Payout   Money

	// Detail is a human-readable audit string sufficient to reconstruct
	// the payout without re-running the engine, e.g.
	// "tier 20-30 at $25.00/unit x 25 units = $625.00".
	Detail string

	// Err is set when the rule was skipped due to invalid configuration.
	// The rule contributes $0 but never aborts the evaluation.
	Err string
}

// EvaluationResult is the complete outcome of evaluating a person's
// effective plan over a period. Always complete: a missing plan or empty
// period yields a zero total, never an error.
type EvaluationResult struct {
	PersonID PersonID
	Period   Period

	PlanID   PlanID
	PlanName string

	Total     Money
	Breakdown []BreakdownEntry

	EvaluatedAt time.Time
}
