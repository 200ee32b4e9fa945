package handlers

import (
	"context"
	"net/http"

	"github.com/brewvote/server/internal/api/problem"
	"github.com/brewvote/server/internal/auth"
	"github.com/brewvote/server/internal/domain/events"
	"github.com/brewvote/server/internal/domain/shortcodes"
	"github.com/google/uuid"
)

// AdminGateway is implemented by *events.Gateway.
type AdminGateway interface {
	Dashboard(ctx context.Context, principal auth.Principal, eventID uuid.UUID) (events.Dashboard, error)
	SetResultsVisible(ctx context.Context, principal auth.Principal, eventID uuid.UUID, visible bool) error
	DeleteBeer(ctx context.Context, principal auth.Principal, eventID, beerID uuid.UUID) error
	AddEventAdmin(ctx context.Context, principal auth.Principal, eventID, adminID uuid.UUID) error
	RemoveEventAdmin(ctx context.Context, principal auth.Principal, eventID, adminID uuid.UUID) (events.RemovalResult, error)
	MintVoterCodes(ctx context.Context, principal auth.Principal, eventID uuid.UUID, count int) ([]shortcodes.ShortCode, error)
}

// PrintService is implemented by *events.PrintSheet.
type PrintService interface {
	Print(ctx context.Context, principal auth.Principal, eventCode string, codes []string) (events.PrintPage, error)
}

// AdminEventsHandler serves the event admin API. Authorization is left to
// the gateway, which sees the principal attached by the identity middleware.
type AdminEventsHandler struct {
	gateway AdminGateway
	sheets  PrintService
	env     string
}

func NewAdminEventsHandler(gateway AdminGateway, sheets PrintService, env string) *AdminEventsHandler {
	return &AdminEventsHandler{gateway: gateway, sheets: sheets, env: env}
}

func (h *AdminEventsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r, h.env)
	if !ok {
		return
	}

	d, err := h.gateway.Dashboard(r.Context(), auth.PrincipalFromContext(r.Context()), eventID)
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"event":            toEventView(d.Event),
		"beers":            toBeerViews(d.Beers),
		"assigned_admins":  toAdminViews(d.AssignedAdmins),
		"all_admins":       toAdminViews(d.AllAdmins),
		"current_admin_id": d.CurrentAdminID,
	})
}

func (h *AdminEventsHandler) SetResultsVisible(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r, h.env)
	if !ok || !parseForm(w, r, h.env) {
		return
	}
	form := visibilityForm{ResultsVisible: r.PostForm.Get("results_visible")}
	if !check(w, r, form, h.env) {
		return
	}

	visible := parseVisible(form.ResultsVisible)
	if err := h.gateway.SetResultsVisible(r.Context(), auth.PrincipalFromContext(r.Context()), eventID, visible); err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results_visible": visible})
}

func (h *AdminEventsHandler) DeleteBeer(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r, h.env)
	if !ok || !parseForm(w, r, h.env) {
		return
	}
	form := beerForm{BeerID: r.PostForm.Get("beerId")}
	if !check(w, r, form, h.env) {
		return
	}

	if err := h.gateway.DeleteBeer(r.Context(), auth.PrincipalFromContext(r.Context()), eventID, optionalUUID(form.BeerID)); err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}
	writeSuccess(w)
}

func (h *AdminEventsHandler) AddAdmin(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r, h.env)
	if !ok || !parseForm(w, r, h.env) {
		return
	}
	form := adminForm{AdminID: r.PostForm.Get("adminId")}
	if !check(w, r, form, h.env) {
		return
	}

	if err := h.gateway.AddEventAdmin(r.Context(), auth.PrincipalFromContext(r.Context()), eventID, optionalUUID(form.AdminID)); err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}
	writeSuccess(w)
}

// RemoveAdmin answers 303 to /admin when the caller removed themselves, since
// they can no longer see this event.
func (h *AdminEventsHandler) RemoveAdmin(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r, h.env)
	if !ok || !parseForm(w, r, h.env) {
		return
	}
	form := adminForm{AdminID: r.PostForm.Get("adminId")}
	if !check(w, r, form, h.env) {
		return
	}

	result, err := h.gateway.RemoveEventAdmin(r.Context(), auth.PrincipalFromContext(r.Context()), eventID, optionalUUID(form.AdminID))
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}
	if result.SelfRemoved {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	writeSuccess(w)
}

func (h *AdminEventsHandler) MintVoterCodes(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r, h.env)
	if !ok || !parseForm(w, r, h.env) {
		return
	}
	form := voterCodesForm{Count: parseCount(r.PostForm.Get("count"))}
	if !check(w, r, form, h.env) {
		return
	}

	codes, err := h.gateway.MintVoterCodes(r.Context(), auth.PrincipalFromContext(r.Context()), eventID, form.Count)
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"codes": codeStrings(codes)})
}

func (h *AdminEventsHandler) Print(w http.ResponseWriter, r *http.Request) {
	codes := splitCodes(r.URL.Query().Get("codes"))

	page, err := h.sheets.Print(r.Context(), auth.PrincipalFromContext(r.Context()), r.PathValue("code"), codes)
	if err != nil {
		problem.FromError(w, r, err, h.env)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"event_name":  page.EventName,
		"logo_url":    page.LogoURL,
		"event_code":  page.EventCode,
		"voter_codes": page.VoterCodes,
	})
}
