package comp

// =============================================================================
// PLAN SCOPE MATCHING - Does this plan apply to this person?
// =============================================================================

// PlanMatchesPerson fires exactly one comparison branch based on the
// plan's scope. There is no fallback or inheritance across branches: a
// PERSON-scoped plan matches only its person, a TEAM_TYPE-scoped plan
// matches every person of that type regardless of team/role/agency.
func PlanMatchesPerson(plan Plan, person Person) bool {
	switch plan.Scope {
	case ScopePerson:
		return plan.TargetPersonID == person.ID
	case ScopeRole:
		return plan.TargetRoleID == person.RoleID
	case ScopeTeam:
		return plan.TargetTeamID == person.TeamID
	case ScopeAgency:
		return plan.TargetAgencyID == person.AgencyID
	case ScopeTeamType:
		return plan.TargetTeamType == person.TeamType
	default:
		return false
	}
}

// ScopeRank orders plan scopes most-specific first for assignment
// precedence: PERSON > ROLE > TEAM > AGENCY > TEAM_TYPE.
func ScopeRank(scope PlanScope) int {
	switch scope {
	case ScopePerson:
		return 0
	case ScopeRole:
		return 1
	case ScopeTeam:
		return 2
	case ScopeAgency:
		return 3
	case ScopeTeamType:
		return 4
	default:
		return 5
	}
}

// =============================================================================
// RULE APPLY-SCOPE - Which products a rule block activates for
// =============================================================================

// ProductSet is a resolved apply-scope. All=true means the rule had no
// selectors and applies to every product.
type ProductSet struct {
	All bool
	IDs map[ProductID]bool
}

// Contains tests a sold product against the resolved set.
func (ps ProductSet) Contains(sp SoldProduct) bool {
	return ps.All || ps.IDs[sp.ProductID]
}

// ApplicableProducts resolves a rule's scope to a concrete product set
// against the catalog. The result is the UNION of every populated
// criterion, never an intersection: explicitly selected products are
// always included, plus all products in listed LoBs, of listed types,
// in listed premium categories, and members of the named bucket.
func ApplicableProducts(scope RuleScope, catalog *Catalog, defs []BucketDef) ProductSet {
	if scope.IsEmpty() {
		return ProductSet{All: true}
	}

	ids := make(map[ProductID]bool)
	for _, pid := range scope.ProductIDs {
		ids[pid] = true
	}

	lobs := make(map[LobID]bool, len(scope.LobIDs))
	for _, l := range scope.LobIDs {
		lobs[l] = true
	}
	types := make(map[ProductType]bool, len(scope.ProductTypes))
	for _, t := range scope.ProductTypes {
		types[t] = true
	}
	categories := make(map[PremiumCategory]bool, len(scope.PremiumCategories))
	for _, c := range scope.PremiumCategories {
		categories[c] = true
	}

	for _, p := range catalog.Products {
		if lobs[p.LobID] || types[p.Type] {
			ids[p.ID] = true
			continue
		}
		if len(categories) > 0 {
			if cat, ok := catalog.CategoryOf(p.ID); ok && categories[cat] {
				ids[p.ID] = true
			}
		}
	}

	if scope.BucketID != "" {
		for _, def := range defs {
			if def.ID == scope.BucketID {
				for pid := range def.Members(catalog) {
					ids[pid] = true
				}
			}
		}
	}

	return ProductSet{IDs: ids}
}
