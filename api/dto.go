/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:

	Defines the JSON structures for API communication. These types
	decouple the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:

	Validation is done in handlers and the plan factory, not in DTOs.
	DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/plan.go: PlanJSON document type
*/
package api

import (
	"github.com/tracktowin/comp-engine/comp"
	"github.com/tracktowin/comp-engine/factory"
)

// =============================================================================
// PEOPLE
// =============================================================================

type PersonDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	AgencyID string `json:"agency_id"`
	TeamID   string `json:"team_id,omitempty"`
	RoleID   string `json:"role_id,omitempty"`
	TeamType string `json:"team_type"`
	HiredAt  string `json:"hired_at,omitempty"`
}

type CreatePersonRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	AgencyID string `json:"agency_id"`
	TeamID   string `json:"team_id"`
	RoleID   string `json:"role_id"`
	TeamType string `json:"team_type"`
	HiredAt  string `json:"hired_at"` // YYYY-MM-DD
}

func personDTO(p comp.Person) PersonDTO {
	dto := PersonDTO{
		ID:       string(p.ID),
		Name:     p.Name,
		Email:    p.Email,
		AgencyID: string(p.AgencyID),
		TeamID:   string(p.TeamID),
		RoleID:   string(p.RoleID),
		TeamType: string(p.TeamType),
	}
	if !p.HiredAt.IsZero() {
		dto.HiredAt = p.HiredAt.Format("2006-01-02")
	}
	return dto
}

// =============================================================================
// PLANS & ASSIGNMENTS
// =============================================================================

// PlanDTO echoes the stored document form.
type PlanDTO struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Scope  string           `json:"scope"`
	Config factory.PlanJSON `json:"config"`
}

// CreatePlanRequest carries a full plan document.
type CreatePlanRequest struct {
	Config factory.PlanJSON `json:"config"`
}

// ReorderRequest lists rule ids in their new display sequence.
type ReorderRequest struct {
	RuleIDs []string `json:"rule_ids"`
}

type AssignmentDTO struct {
	ID            string `json:"id"`
	PersonID      string `json:"person_id"`
	PlanID        string `json:"plan_id"`
	EffectiveFrom string `json:"effective_from"`
}

type CreateAssignmentRequest struct {
	PersonID      string `json:"person_id"`
	PlanID        string `json:"plan_id"`
	EffectiveFrom string `json:"effective_from"` // YYYY-MM-DD
}

// =============================================================================
// FACT ENTRY
// =============================================================================

type SoldProductRequest struct {
	ProductID string          `json:"product_id"`
	LobID     string          `json:"lob_id"`
	SoldAt    string          `json:"sold_at"` // YYYY-MM-DD
	Premium   float64         `json:"premium"`
	RawNew    bool            `json:"raw_new"`
	Flags     map[string]bool `json:"flags,omitempty"`
}

type ActivityRequest struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	OccurredAt string `json:"occurred_at"` // YYYY-MM-DD
}

// =============================================================================
// CATALOG
// =============================================================================

type LobRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type ProductRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	LobID string `json:"lob_id"`
	Type  string `json:"type"`
}

type BucketDefRequest struct {
	ID               string   `json:"id"`
	AgencyID         string   `json:"agency_id"`
	Name             string   `json:"name"`
	Metric           string   `json:"metric"` // apps | premium
	IncludesLobs     []string `json:"includes_lobs,omitempty"`
	IncludesProducts []string `json:"includes_products,omitempty"`
}

// =============================================================================
// EVALUATION
// =============================================================================

type BreakdownEntryDTO struct {
	RuleID   string `json:"rule_id"`
	RuleName string `json:"rule_name"`
	Payout   string `json:"payout"`
	Detail   string `json:"detail"`
	Error    string `json:"error,omitempty"`
}

type EvaluationDTO struct {
	PersonID    string              `json:"person_id"`
	PeriodStart string              `json:"period_start"`
	PeriodEnd   string              `json:"period_end"`
	PlanID      string              `json:"plan_id,omitempty"`
	PlanName    string              `json:"plan_name,omitempty"`
	Total       string              `json:"total"`
	Breakdown   []BreakdownEntryDTO `json:"breakdown"`
	EvaluatedAt string              `json:"evaluated_at"`
}

func evaluationDTO(r *comp.EvaluationResult) EvaluationDTO {
	dto := EvaluationDTO{
		PersonID:    string(r.PersonID),
		PeriodStart: r.Period.Start.Format("2006-01-02"),
		PeriodEnd:   r.Period.End.Format("2006-01-02"),
		PlanID:      string(r.PlanID),
		PlanName:    r.PlanName,
		Total:       r.Total.Value.StringFixed(2),
		Breakdown:   []BreakdownEntryDTO{},
		EvaluatedAt: r.EvaluatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	for _, e := range r.Breakdown {
		dto.Breakdown = append(dto.Breakdown, BreakdownEntryDTO{
			RuleID:   string(e.RuleID),
			RuleName: e.RuleName,
			Payout:   e.Payout.Value.StringFixed(2),
			Detail:   e.Detail,
			Error:    e.Err,
		})
	}
	return dto
}

// DashboardDTO backs the "win the day" progress widget: earned vs
// target for a single day plus the contributing breakdown.
type DashboardDTO struct {
	PersonID  string              `json:"person_id"`
	Date      string              `json:"date"`
	Points    string              `json:"points"`
	Target    string              `json:"target"`
	PlanName  string              `json:"plan_name,omitempty"`
	Breakdown []BreakdownEntryDTO `json:"breakdown"`
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
