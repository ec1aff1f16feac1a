package comp_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tracktowin/comp-engine/comp"
	"github.com/tracktowin/comp-engine/comp/store"
)

// producerPlan is a three-rule SALES plan exercising tiers, per-record
// overrides, and a gated lump sum together.
func producerPlan() comp.Plan {
	return comp.Plan{
		ID:             "producer-standard",
		Name:           "Standard Producer",
		Scope:          comp.ScopeTeamType,
		TargetTeamType: comp.TeamTypeSales,
		EffectiveFrom:  day(2025, 1, 1),
		Rules: []comp.RuleBlock{
			{
				ID:           "auto-tiers",
				Name:         "Auto Production",
				DisplayOrder: 1,
				PayoutType:   comp.PayoutFlatPerUnit,
				TierMode:     comp.TierModeTiers,
				TierBasis:    "auto_apps",
				Bucket:       "auto_apps",
				Tiers:        standardAppTiers(),
			},
			{
				ID:           "health-pct",
				Name:         "Health Commission",
				DisplayOrder: 2,
				PayoutType:   comp.PayoutPercentOfMetric,
				TierMode:     comp.TierModeNone,
				BaseRate:     d(0.03),
				Scope:        comp.RuleScope{LobIDs: []comp.LobID{"health"}},
				FlagOverrides: []comp.FlagOverride{
					{FlagField: "is_value_health", Percent: d(0.20)},
				},
			},
			{
				ID:           "volume-bonus",
				Name:         "Volume Bonus",
				DisplayOrder: 3,
				PayoutType:   comp.PayoutFlatLumpSum,
				TierMode:     comp.TierModeNone,
				BaseRate:     d(250),
				Bucket:       "total_apps",
				MinThreshold: dp(15),
			},
		},
	}
}

func engineFixture(t *testing.T) (*comp.Engine, *store.Memory, comp.Person) {
	t.Helper()
	m := store.NewMemory()
	seedCatalog(m)
	alice := fixturePerson()
	m.PutPerson(alice)
	engine := &comp.Engine{
		People:      m,
		Records:     m,
		Plans:       m,
		Assignments: m,
		Catalog:     m,
		Clock:       func() time.Time { return day(2025, 7, 1) },
	}
	return engine, m, alice
}

// =============================================================================
// FULL-PLAN EVALUATION
// =============================================================================

func TestEngine_EvaluateFullPlan(t *testing.T) {
	// GIVEN: The standard producer plan, 25 auto apps (just one-unit
	//        sales), one flagged $200 and one plain $300 health sale
	// WHEN: Evaluating June
	// THEN: auto tier 20-30 pays 25x$25=$625, health pays $49, total 27
	//       apps clears the 15-app bonus gate for $250 -> $924 total

	engine, m, alice := engineFixture(t)
	mustPutPlan(t, m, producerPlan())
	m.PutAssignment(comp.PlanAssignment{ID: "a1", PersonID: alice.ID, PlanID: "producer-standard", EffectiveFrom: day(2025, 1, 1)})

	for i := 0; i < 25; i++ {
		m.AddSoldProduct(sale("auto-"+string(rune('a'+i)), "auto-personal", "auto", day(2025, 6, 1+i%28), 100))
	}
	flagged := sale("h1", "health-individual", "health", day(2025, 6, 10), 200)
	flagged.Flags = map[string]bool{"is_value_health": true}
	m.AddSoldProduct(flagged)
	m.AddSoldProduct(sale("h2", "health-individual", "health", day(2025, 6, 12), 300))

	result, err := engine.Evaluate(context.Background(), alice.ID, comp.Month(2025, 6))
	if err != nil {
		t.Fatal(err)
	}

	if result.PlanID != "producer-standard" {
		t.Errorf("plan = %s", result.PlanID)
	}
	if len(result.Breakdown) != 3 {
		t.Fatalf("breakdown has %d entries, want 3", len(result.Breakdown))
	}

	wantPayouts := []struct {
		rule   comp.RuleID
		amount float64
	}{
		{"auto-tiers", 625},
		{"health-pct", 49},
		{"volume-bonus", 250},
	}
	for i, want := range wantPayouts {
		entry := result.Breakdown[i]
		if entry.RuleID != want.rule {
			t.Errorf("breakdown[%d] = %s, want %s (display order)", i, entry.RuleID, want.rule)
		}
		if !entry.Payout.Equal(money(want.amount)) {
			t.Errorf("%s payout = %s, want %v", want.rule, entry.Payout, want.amount)
		}
		if entry.Err != "" {
			t.Errorf("%s unexpected error: %s", want.rule, entry.Err)
		}
	}
	if !result.Total.Equal(money(924)) {
		t.Errorf("total = %s, want $924.00", result.Total)
	}
}

func TestEngine_BreakdownFollowsDisplayOrder(t *testing.T) {
	// Rules stored out of order still evaluate and report in ascending
	// display order.
	engine, m, alice := engineFixture(t)
	plan := producerPlan()
	plan.Rules[0], plan.Rules[2] = plan.Rules[2], plan.Rules[0]
	mustPutPlan(t, m, plan)
	m.PutAssignment(comp.PlanAssignment{ID: "a1", PersonID: alice.ID, PlanID: plan.ID, EffectiveFrom: day(2025, 1, 1)})

	result, err := engine.Evaluate(context.Background(), alice.ID, comp.Month(2025, 6))
	if err != nil {
		t.Fatal(err)
	}
	got := []comp.RuleID{}
	for _, e := range result.Breakdown {
		got = append(got, e.RuleID)
	}
	want := []comp.RuleID{"auto-tiers", "health-pct", "volume-bonus"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("breakdown order = %v, want %v", got, want)
		}
	}
}

func TestEngine_MisconfiguredRuleDoesNotBlockOthers(t *testing.T) {
	// GIVEN: A plan whose middle rule references a bucket that does not
	//        exist
	// WHEN: Evaluating
	// THEN: That rule degrades to a $0 entry with a diagnostic and the
	//       remaining rules still pay

	engine, m, alice := engineFixture(t)
	plan := comp.Plan{
		ID:             "partly-broken",
		Name:           "Partly Broken",
		Scope:          comp.ScopeTeamType,
		TargetTeamType: comp.TeamTypeSales,
		EffectiveFrom:  day(2025, 1, 1),
		Rules: []comp.RuleBlock{
			{ID: "good-1", Name: "Good One", DisplayOrder: 1, PayoutType: comp.PayoutFlatPerUnit,
				TierMode: comp.TierModeNone, BaseRate: d(10), Bucket: "total_apps"},
			{ID: "broken", Name: "Broken", DisplayOrder: 2, PayoutType: comp.PayoutFlatPerUnit,
				TierMode: comp.TierModeNone, BaseRate: d(10), Bucket: "no_such_bucket"},
			{ID: "good-2", Name: "Good Two", DisplayOrder: 3, PayoutType: comp.PayoutFlatPerUnit,
				TierMode: comp.TierModeNone, BaseRate: d(5), Bucket: "total_apps"},
		},
	}
	mustPutPlan(t, m, plan)
	m.PutAssignment(comp.PlanAssignment{ID: "a1", PersonID: alice.ID, PlanID: plan.ID, EffectiveFrom: day(2025, 1, 1)})
	m.AddSoldProduct(sale("s1", "auto-personal", "auto", day(2025, 6, 5), 100))
	m.AddSoldProduct(sale("s2", "auto-personal", "auto", day(2025, 6, 6), 100))

	result, err := engine.Evaluate(context.Background(), alice.ID, comp.Month(2025, 6))
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Breakdown) != 3 {
		t.Fatalf("breakdown has %d entries, want 3", len(result.Breakdown))
	}
	broken := result.Breakdown[1]
	if broken.Err == "" || !strings.Contains(broken.Err, "no_such_bucket") {
		t.Errorf("broken rule should carry a diagnostic, got %q", broken.Err)
	}
	if !broken.Payout.IsZero() {
		t.Errorf("broken rule payout = %s, want $0.00", broken.Payout)
	}
	// 2 apps x $10 + 2 apps x $5.
	if !result.Total.Equal(money(30)) {
		t.Errorf("total = %s, want $30.00", result.Total)
	}
}

func TestEngine_NoPlanIsZeroResult(t *testing.T) {
	engine, _, alice := engineFixture(t)

	result, err := engine.Evaluate(context.Background(), alice.ID, comp.Month(2025, 6))
	if err != nil {
		t.Fatal(err)
	}
	if !result.Total.IsZero() || len(result.Breakdown) != 0 || result.PlanID != "" {
		t.Errorf("no assignment should yield an empty zero result, got %+v", result)
	}
}

func TestEngine_PlanResolvedAtPeriodEnd(t *testing.T) {
	// An assignment effective mid-period governs that period: the plan in
	// force at period END applies to the whole period.
	engine, m, alice := engineFixture(t)
	mustPutPlan(t, m, producerPlan())
	m.PutAssignment(comp.PlanAssignment{ID: "a1", PersonID: alice.ID, PlanID: "producer-standard", EffectiveFrom: day(2025, 6, 15)})
	m.AddSoldProduct(sale("s1", "auto-personal", "auto", day(2025, 6, 2), 100))

	result, err := engine.Evaluate(context.Background(), alice.ID, comp.Month(2025, 6))
	if err != nil {
		t.Fatal(err)
	}
	if result.PlanID != "producer-standard" {
		t.Errorf("mid-period assignment should govern the period, got plan %q", result.PlanID)
	}
	// The June 2 sale counts even though it predates the assignment.
	if !result.Breakdown[0].Payout.Equal(money(10)) {
		t.Errorf("auto payout = %s, want $10.00 (1 app in 0-19 tier)", result.Breakdown[0].Payout)
	}
}

func TestEngine_Idempotent(t *testing.T) {
	// Evaluation is a pure read: repeating it gives identical numbers.
	engine, m, alice := engineFixture(t)
	mustPutPlan(t, m, producerPlan())
	m.PutAssignment(comp.PlanAssignment{ID: "a1", PersonID: alice.ID, PlanID: "producer-standard", EffectiveFrom: day(2025, 1, 1)})
	m.AddSoldProduct(sale("s1", "auto-personal", "auto", day(2025, 6, 5), 100))

	first, err := engine.Evaluate(context.Background(), alice.ID, comp.Month(2025, 6))
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.Evaluate(context.Background(), alice.ID, comp.Month(2025, 6))
	if err != nil {
		t.Fatal(err)
	}
	if !first.Total.Equal(second.Total) {
		t.Errorf("totals differ: %s vs %s", first.Total, second.Total)
	}
	if len(first.Breakdown) != len(second.Breakdown) {
		t.Fatalf("breakdown lengths differ")
	}
	for i := range first.Breakdown {
		if !first.Breakdown[i].Payout.Equal(second.Breakdown[i].Payout) {
			t.Errorf("entry %d differs", i)
		}
	}
}

func TestEngine_UnknownPerson(t *testing.T) {
	engine, _, _ := engineFixture(t)
	_, err := engine.Evaluate(context.Background(), "nobody", comp.Month(2025, 6))
	if !comp.IsNotFound(err) {
		t.Errorf("got %v, want a not-found error", err)
	}
}

func TestEngine_InvalidPeriod(t *testing.T) {
	engine, _, alice := engineFixture(t)
	bad := comp.Period{Start: day(2025, 6, 30), End: day(2025, 6, 1)}
	if _, err := engine.Evaluate(context.Background(), alice.ID, bad); err != comp.ErrInvalidPeriod {
		t.Errorf("got %v, want ErrInvalidPeriod", err)
	}
}
