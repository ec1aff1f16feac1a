/*
handlers.go - HTTP API handlers for the compensation engine

PURPOSE:

	Exposes the engine via REST. Handles HTTP request/response, JSON
	serialization, and delegates to the domain logic.

ENDPOINTS:

	People:
	  GET    /api/people                      List people
	  POST   /api/people                      Create person
	  GET    /api/people/{id}                 Get person
	  GET    /api/people/{id}/compensation    Evaluate a period
	  GET    /api/people/{id}/dashboard       Win-the-day progress
	  GET    /api/people/{id}/assignments     List plan assignments
	  POST   /api/people/{id}/sales           Record a sold product
	  POST   /api/people/{id}/activities      Record an activity

	Plans:
	  GET    /api/plans                       List plans
	  POST   /api/plans                       Create/replace plan document
	  GET    /api/plans/{id}                  Get plan
	  PUT    /api/plans/{id}/order            Atomic rule reorder

	Catalog:
	  GET    /api/catalog                     Products + LoBs
	  POST   /api/catalog/lobs                Upsert line of business
	  POST   /api/catalog/products            Upsert product
	  POST   /api/catalog/buckets             Upsert custom bucket def

	Admin:
	  POST   /api/assignments                 Assign plan to person
	  POST   /api/admin/seed-defaults         Idempotent default seeding

ERROR HANDLING:

	Errors are returned as JSON with appropriate HTTP status:
	- 400: Validation errors, invalid input, bad plan documents
	- 404: Resource not found
	- 500: Internal errors

	A full evaluation itself never 500s on bad plan config: misconfigured
	rules surface inside the breakdown as $0 entries with diagnostics.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tracktowin/comp-engine/comp"
	"github.com/tracktowin/comp-engine/factory"
	"github.com/tracktowin/comp-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Engine *comp.Engine
}

// NewHandler creates a handler wired to the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store: store,
		Engine: &comp.Engine{
			People:      store,
			Records:     store,
			Plans:       store,
			Assignments: store,
			Catalog:     store,
		},
	}
}

// =============================================================================
// PEOPLE
// =============================================================================

func (h *Handler) ListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := h.Store.ListPeople(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list people", err)
		return
	}
	dtos := make([]PersonDTO, len(people))
	for i, p := range people {
		dtos[i] = personDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req CreatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" || req.AgencyID == "" || req.TeamType == "" {
		writeError(w, http.StatusBadRequest, "id, name, agency_id and team_type are required", nil)
		return
	}

	person := comp.Person{
		ID:       comp.PersonID(req.ID),
		Name:     req.Name,
		Email:    req.Email,
		AgencyID: comp.AgencyID(req.AgencyID),
		TeamID:   comp.TeamID(req.TeamID),
		RoleID:   comp.RoleID(req.RoleID),
		TeamType: comp.TeamType(req.TeamType),
	}
	if req.HiredAt != "" {
		t, err := time.Parse("2006-01-02", req.HiredAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid hired_at date", err)
			return
		}
		person.HiredAt = t
	}

	if err := h.Store.SavePerson(r.Context(), person); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save person", err)
		return
	}
	writeJSON(w, http.StatusCreated, personDTO(person))
}

func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id := comp.PersonID(chi.URLParam(r, "id"))
	person, err := h.Store.GetPerson(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if comp.IsNotFound(err) {
			status = http.StatusNotFound
		}
		writeError(w, status, "person lookup failed", err)
		return
	}
	writeJSON(w, http.StatusOK, personDTO(*person))
}

// =============================================================================
// EVALUATION
// =============================================================================

// EvaluateCompensation runs the engine for ?start=YYYY-MM-DD&end=YYYY-MM-DD.
func (h *Handler) EvaluateCompensation(w http.ResponseWriter, r *http.Request) {
	id := comp.PersonID(chi.URLParam(r, "id"))

	period, err := parsePeriod(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid period", err)
		return
	}

	result, err := h.Engine.Evaluate(r.Context(), id, period)
	if err != nil {
		status := http.StatusInternalServerError
		if comp.IsNotFound(err) {
			status = http.StatusNotFound
		}
		writeError(w, status, "evaluation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, evaluationDTO(result))
}

// Dashboard evaluates a single day for the "win the day" widget.
// ?date=YYYY-MM-DD (default today), ?target=150 (default 100).
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	id := comp.PersonID(chi.URLParam(r, "id"))

	day := time.Now().UTC()
	if d := r.URL.Query().Get("date"); d != "" {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date", err)
			return
		}
		day = t
	}

	target := decimal.NewFromInt(100)
	if t := r.URL.Query().Get("target"); t != "" {
		d, err := decimal.NewFromString(t)
		if err != nil || d.IsNegative() {
			writeError(w, http.StatusBadRequest, "invalid target", err)
			return
		}
		target = d
	}

	result, err := h.Engine.Evaluate(r.Context(), id, comp.Day(day))
	if err != nil {
		status := http.StatusInternalServerError
		if comp.IsNotFound(err) {
			status = http.StatusNotFound
		}
		writeError(w, status, "evaluation failed", err)
		return
	}

	dto := DashboardDTO{
		PersonID:  string(result.PersonID),
		Date:      result.Period.Start.Format("2006-01-02"),
		Points:    result.Total.Value.StringFixed(2),
		Target:    target.StringFixed(2),
		PlanName:  result.PlanName,
		Breakdown: evaluationDTO(result).Breakdown,
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// FACT ENTRY
// =============================================================================

func (h *Handler) AddSoldProduct(w http.ResponseWriter, r *http.Request) {
	personID := comp.PersonID(chi.URLParam(r, "id"))

	var req SoldProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	soldAt, err := time.Parse("2006-01-02", req.SoldAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sold_at date", err)
		return
	}
	if req.Premium < 0 {
		writeError(w, http.StatusBadRequest, "premium cannot be negative", nil)
		return
	}

	id, err := h.Store.AddSoldProduct(r.Context(), comp.SoldProduct{
		PersonID:  personID,
		ProductID: comp.ProductID(req.ProductID),
		LobID:     comp.LobID(req.LobID),
		SoldAt:    soldAt,
		Premium:   decimal.NewFromFloat(req.Premium),
		RawNew:    req.RawNew,
		Flags:     req.Flags,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to record sale", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) AddActivity(w http.ResponseWriter, r *http.Request) {
	personID := comp.PersonID(chi.URLParam(r, "id"))

	var req ActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	occurredAt, err := time.Parse("2006-01-02", req.OccurredAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid occurred_at date", err)
		return
	}
	if req.Name == "" || req.Count <= 0 {
		writeError(w, http.StatusBadRequest, "name and a positive count are required", nil)
		return
	}

	id, err := h.Store.AddActivity(r.Context(), comp.ActivityRecord{
		PersonID:   personID,
		Name:       req.Name,
		Count:      req.Count,
		OccurredAt: occurredAt,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to record activity", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// =============================================================================
// PLANS
// =============================================================================

func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.ListPlans(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list plans", err)
		return
	}
	dtos := make([]PlanDTO, len(list))
	for i, p := range list {
		dtos[i] = PlanDTO{ID: string(p.ID), Name: p.Name, Scope: string(p.Scope), Config: factory.ToDocument(p)}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	doc, err := json.MarshalIndent(req.Config, "", "  ")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid plan document", err)
		return
	}

	// SavePlan is the validation boundary: overlapping tiers, duplicate
	// display orders etc. are rejected here with 400.
	plan, err := h.Store.SavePlan(r.Context(), string(doc))
	if err != nil {
		status := http.StatusInternalServerError
		if comp.IsConfigError(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "failed to save plan", err)
		return
	}
	writeJSON(w, http.StatusCreated, PlanDTO{
		ID: string(plan.ID), Name: plan.Name, Scope: string(plan.Scope), Config: factory.ToDocument(*plan),
	})
}

func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	id := comp.PlanID(chi.URLParam(r, "id"))
	plan, err := h.Store.GetPlan(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if comp.IsNotFound(err) {
			status = http.StatusNotFound
		}
		writeError(w, status, "plan lookup failed", err)
		return
	}
	writeJSON(w, http.StatusOK, PlanDTO{
		ID: string(plan.ID), Name: plan.Name, Scope: string(plan.Scope), Config: factory.ToDocument(*plan),
	})
}

// ReorderPlan rewrites the plan's rule display orders atomically.
func (h *Handler) ReorderPlan(w http.ResponseWriter, r *http.Request) {
	id := comp.PlanID(chi.URLParam(r, "id"))

	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	plan, err := h.Store.ReorderRules(r.Context(), id, req.RuleIDs)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case comp.IsNotFound(err):
			status = http.StatusNotFound
		case comp.IsConfigError(err):
			status = http.StatusBadRequest
		}
		writeError(w, status, "reorder failed", err)
		return
	}
	writeJSON(w, http.StatusOK, PlanDTO{
		ID: string(plan.ID), Name: plan.Name, Scope: string(plan.Scope), Config: factory.ToDocument(*plan),
	})
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	from, err := time.Parse("2006-01-02", req.EffectiveFrom)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid effective_from date", err)
		return
	}

	// Referenced plan must exist; dangling assignments are skipped by the
	// resolver but there is no reason to accept them.
	if _, err := h.Store.GetPlan(r.Context(), comp.PlanID(req.PlanID)); err != nil {
		status := http.StatusInternalServerError
		if comp.IsNotFound(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "plan lookup failed", err)
		return
	}

	id, err := h.Store.SaveAssignment(r.Context(), comp.PlanAssignment{
		PersonID:      comp.PersonID(req.PersonID),
		PlanID:        comp.PlanID(req.PlanID),
		EffectiveFrom: from,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save assignment", err)
		return
	}
	writeJSON(w, http.StatusCreated, AssignmentDTO{
		ID: id, PersonID: req.PersonID, PlanID: req.PlanID, EffectiveFrom: req.EffectiveFrom,
	})
}

func (h *Handler) GetAssignments(w http.ResponseWriter, r *http.Request) {
	id := comp.PersonID(chi.URLParam(r, "id"))
	assignments, err := h.Store.AssignmentsForPerson(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list assignments", err)
		return
	}
	dtos := make([]AssignmentDTO, len(assignments))
	for i, a := range assignments {
		dtos[i] = AssignmentDTO{
			ID:            a.ID,
			PersonID:      string(a.PersonID),
			PlanID:        string(a.PlanID),
			EffectiveFrom: a.EffectiveFrom.Format("2006-01-02"),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// CATALOG
// =============================================================================

func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.Store.GetCatalog(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load catalog", err)
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

func (h *Handler) CreateLob(w http.ResponseWriter, r *http.Request) {
	var req LobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}
	l := comp.LineOfBusiness{ID: comp.LobID(req.ID), Name: req.Name, Category: comp.PremiumCategory(req.Category)}
	if err := h.Store.SaveLob(r.Context(), l); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save lob", err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.ID == "" || req.LobID == "" {
		writeError(w, http.StatusBadRequest, "id and lob_id are required", nil)
		return
	}
	p := comp.Product{ID: comp.ProductID(req.ID), Name: req.Name, LobID: comp.LobID(req.LobID), Type: comp.ProductType(req.Type)}
	if err := h.Store.SaveProduct(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save product", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) CreateBucketDef(w http.ResponseWriter, r *http.Request) {
	var req BucketDefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.ID == "" || req.AgencyID == "" {
		writeError(w, http.StatusBadRequest, "id and agency_id are required", nil)
		return
	}

	def := comp.BucketDef{
		ID:       comp.BucketName(req.ID),
		AgencyID: comp.AgencyID(req.AgencyID),
		Name:     req.Name,
		Metric:   comp.BucketMetric(req.Metric),
	}
	for _, l := range req.IncludesLobs {
		def.IncludesLobs = append(def.IncludesLobs, comp.LobID(l))
	}
	for _, p := range req.IncludesProducts {
		def.IncludesProducts = append(def.IncludesProducts, comp.ProductID(p))
	}

	if err := h.Store.SaveBucketDef(r.Context(), def); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save bucket", err)
		return
	}
	writeJSON(w, http.StatusCreated, def)
}

// =============================================================================
// ADMIN
// =============================================================================

// SeedDefaults runs the explicit, idempotent default-plan seed.
func (h *Handler) SeedDefaults(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.SeedDefaults(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "seeding failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "seeded"})
}

// =============================================================================
// HELPERS
// =============================================================================

func parsePeriod(start, end string) (comp.Period, error) {
	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		return comp.Period{}, err
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		return comp.Period{}, err
	}
	p := comp.Period{Start: s, End: e}
	if !p.IsValid() {
		return comp.Period{}, comp.ErrInvalidPeriod
	}
	return p, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
