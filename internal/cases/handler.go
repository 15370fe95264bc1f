package cases

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/collection-management/internal/auth"
	"github.com/frahmantamala/collection-management/internal/transport"
	"github.com/frahmantamala/collection-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, identity *auth.Identity, filter ListFilter) ([]*Case, int64, error)
	Get(ctx context.Context, identity *auth.Identity, caseID string) (*Case, error)
	UpdateStatus(ctx context.Context, identity *auth.Identity, caseID string, dto UpdateStatusDTO) error
	Transfer(ctx context.Context, identity *auth.Identity, caseID string, dto TransferDTO) error
	CreateActivity(ctx context.Context, identity *auth.Identity, caseID string, dto CreateActivityDTO) (*Activity, error)
	ListActivities(ctx context.Context, identity *auth.Identity, caseID string) ([]*Activity, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return identity, true
}

// ListCases handles GET /cases
func (h *Handler) ListCases(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := ListFilter{
		Status:     q.Get("status"),
		Department: q.Get("department"),
		Search:     q.Get("q"),
	}
	if v := q.Get("debt_group"); v != "" {
		g, err := strconv.Atoi(v)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid debt_group")
			return
		}
		filter.DebtGroup = g
	}
	if v := q.Get("page"); v != "" {
		filter.Page, _ = strconv.Atoi(v)
	}
	if v := q.Get("per_page"); v != "" {
		filter.PerPage, _ = strconv.Atoi(v)
	}

	list, total, err := h.Service.List(r.Context(), identity, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]any{
		"cases":    list,
		"total":    total,
		"page":     filter.Page,
		"per_page": filter.PerPage,
	})
}

// GetCase handles GET /cases/{caseID}
func (h *Handler) GetCase(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	c, err := h.Service.Get(r.Context(), identity, chi.URLParam(r, "caseID"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

// UpdateStatus handles PATCH /cases/{caseID}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var dto UpdateStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.UpdateStatus(r.Context(), identity, chi.URLParam(r, "caseID"), dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TransferCase handles POST /cases/{caseID}/transfer
func (h *Handler) TransferCase(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var dto TransferDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.Transfer(r.Context(), identity, chi.URLParam(r, "caseID"), dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateActivity handles POST /cases/{caseID}/activities
func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var dto CreateActivityDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	activity, err := h.Service.CreateActivity(r.Context(), identity, chi.URLParam(r, "caseID"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, activity)
}

// ListActivities handles GET /cases/{caseID}/activities
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	activities, err := h.Service.ListActivities(r.Context(), identity, chi.URLParam(r, "caseID"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"activities": activities})
}
