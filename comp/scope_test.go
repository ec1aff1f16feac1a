package comp_test

import (
	"testing"
	"time"

	"github.com/tracktowin/comp-engine/comp"
)

// =============================================================================
// FIXTURES
// =============================================================================

func fixtureCatalog() *comp.Catalog {
	c := comp.NewCatalog()
	c.AddLob(comp.LineOfBusiness{ID: "auto", Name: "Auto", Category: comp.CategoryPC})
	c.AddLob(comp.LineOfBusiness{ID: "home", Name: "Home", Category: comp.CategoryPC})
	c.AddLob(comp.LineOfBusiness{ID: "health", Name: "Health", Category: comp.CategoryHealth})
	c.AddLob(comp.LineOfBusiness{ID: "life", Name: "Life", Category: comp.CategoryLife})
	c.AddProduct(comp.Product{ID: "auto-personal", Name: "Auto (Personal)", LobID: "auto", Type: comp.ProductPersonal})
	c.AddProduct(comp.Product{ID: "auto-commercial", Name: "Auto (Commercial)", LobID: "auto", Type: comp.ProductCommercial})
	c.AddProduct(comp.Product{ID: "home-personal", Name: "Home (Personal)", LobID: "home", Type: comp.ProductPersonal})
	c.AddProduct(comp.Product{ID: "health-individual", Name: "Health (Individual)", LobID: "health", Type: comp.ProductLifeHealth})
	c.AddProduct(comp.Product{ID: "term-life", Name: "Term Life", LobID: "life", Type: comp.ProductLifeHealth})
	return c
}

func containsProduct(set comp.ProductSet, id comp.ProductID) bool {
	return set.Contains(comp.SoldProduct{ProductID: id})
}

func fixturePerson() comp.Person {
	return comp.Person{
		ID:       "alice",
		Name:     "Alice",
		AgencyID: "agency-1",
		TeamID:   "team-1",
		RoleID:   "producer",
		TeamType: comp.TeamTypeSales,
		HiredAt:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

// =============================================================================
// PLAN SCOPE - EXACTLY ONE BRANCH
// =============================================================================

func TestPlanMatchesPerson_SingleBranchOnly(t *testing.T) {
	// GIVEN: A person on team-1 with role producer in agency-1, team type SALES
	// WHEN: Matching plans of each scope kind
	// THEN: Only the plan's own branch is consulted - a ROLE plan for a
	//       different role does not match even though the agency would

	p := fixturePerson()

	cases := []struct {
		name string
		plan comp.Plan
		want bool
	}{
		{"person match", comp.Plan{Scope: comp.ScopePerson, TargetPersonID: "alice"}, true},
		{"person mismatch", comp.Plan{Scope: comp.ScopePerson, TargetPersonID: "bob"}, false},
		{"role match", comp.Plan{Scope: comp.ScopeRole, TargetRoleID: "producer"}, true},
		{"role mismatch", comp.Plan{Scope: comp.ScopeRole, TargetRoleID: "csr"}, false},
		{"team match", comp.Plan{Scope: comp.ScopeTeam, TargetTeamID: "team-1"}, true},
		{"team mismatch", comp.Plan{Scope: comp.ScopeTeam, TargetTeamID: "team-2"}, false},
		{"agency match", comp.Plan{Scope: comp.ScopeAgency, TargetAgencyID: "agency-1"}, true},
		{"agency mismatch", comp.Plan{Scope: comp.ScopeAgency, TargetAgencyID: "agency-2"}, false},
		{"team type match", comp.Plan{Scope: comp.ScopeTeamType, TargetTeamType: comp.TeamTypeSales}, true},
		{"team type mismatch", comp.Plan{Scope: comp.ScopeTeamType, TargetTeamType: comp.TeamTypeService}, false},
	}

	for _, tc := range cases {
		if got := comp.PlanMatchesPerson(tc.plan, p); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestScopeRank_PrecedenceOrder(t *testing.T) {
	// PERSON beats ROLE beats TEAM beats AGENCY beats TEAM_TYPE.
	order := []comp.PlanScope{
		comp.ScopePerson, comp.ScopeRole, comp.ScopeTeam, comp.ScopeAgency, comp.ScopeTeamType,
	}
	for i := 1; i < len(order); i++ {
		if comp.ScopeRank(order[i-1]) >= comp.ScopeRank(order[i]) {
			t.Errorf("%s should outrank %s", order[i-1], order[i])
		}
	}
}

// =============================================================================
// APPLY SCOPE - UNION OF CRITERIA
// =============================================================================

func TestApplicableProducts_EmptyScopeMatchesAll(t *testing.T) {
	set := comp.ApplicableProducts(comp.RuleScope{}, fixtureCatalog(), nil)
	if !set.All {
		t.Fatal("empty scope should match every product")
	}
	if !containsProduct(set, "auto-personal") || !containsProduct(set, "term-life") {
		t.Error("all-set should contain any product")
	}
}

func TestApplicableProducts_UnionOfCriteria(t *testing.T) {
	// GIVEN: A scope naming the home lob AND the LIFE_HEALTH product type
	// WHEN: Resolving applicable products
	// THEN: The result is the UNION - home products plus all life/health
	//       products - not the intersection

	scope := comp.RuleScope{
		LobIDs:       []comp.LobID{"home"},
		ProductTypes: []comp.ProductType{comp.ProductLifeHealth},
	}
	set := comp.ApplicableProducts(scope, fixtureCatalog(), nil)

	for _, id := range []comp.ProductID{"home-personal", "health-individual", "term-life"} {
		if !containsProduct(set, id) {
			t.Errorf("union should contain %s", id)
		}
	}
	for _, id := range []comp.ProductID{"auto-personal", "auto-commercial"} {
		if containsProduct(set, id) {
			t.Errorf("union should not contain %s", id)
		}
	}
}

func TestApplicableProducts_ByPremiumCategory(t *testing.T) {
	scope := comp.RuleScope{PremiumCategories: []comp.PremiumCategory{comp.CategoryPC}}
	set := comp.ApplicableProducts(scope, fixtureCatalog(), nil)

	if !containsProduct(set, "auto-personal") || !containsProduct(set, "home-personal") {
		t.Error("P&C category should cover auto and home products")
	}
	if containsProduct(set, "health-individual") {
		t.Error("P&C category should exclude health products")
	}
}

func TestApplicableProducts_ByCustomBucket(t *testing.T) {
	// A scope keyed to a custom bucket definition resolves to its members.
	defs := []comp.BucketDef{{
		ID:           "core-pc",
		AgencyID:     "agency-1",
		Name:         "Core P&C",
		Metric:       comp.MetricApps,
		IncludesLobs: []comp.LobID{"auto"},
	}}
	scope := comp.RuleScope{BucketID: "core-pc"}
	set := comp.ApplicableProducts(scope, fixtureCatalog(), defs)

	if !containsProduct(set, "auto-personal") || !containsProduct(set, "auto-commercial") {
		t.Error("bucket scope should include member products")
	}
	if containsProduct(set, "home-personal") {
		t.Error("bucket scope should exclude non-members")
	}
}

func TestApplicableProducts_ExplicitProductIDs(t *testing.T) {
	scope := comp.RuleScope{ProductIDs: []comp.ProductID{"term-life"}}
	set := comp.ApplicableProducts(scope, fixtureCatalog(), nil)
	if !containsProduct(set, "term-life") || containsProduct(set, "auto-personal") {
		t.Error("explicit product scope should contain only the named products")
	}
}
