package delegation

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
	CreateDelegations(ctx context.Context, actor *auth.Identity, dto CreateDelegationsDTO) ([]*Delegation, error)
	Revoke(ctx context.Context, actor *auth.Identity, delegationID int64) error
	List(ctx context.Context, identity *auth.Identity, filter ListFilter) ([]*Delegation, error)
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

// CreateDelegations handles POST /delegations
func (h *Handler) CreateDelegations(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateDelegationsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreateDelegations(r.Context(), identity, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, map[string]any{"delegations": created})
}

// ListDelegations handles GET /delegations
func (h *Handler) ListDelegations(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()
	filter := ListFilter{
		DelegatedBy: q.Get("delegated_by"),
		DelegatedTo: q.Get("delegated_to"),
		Status:      q.Get("status"),
		CaseID:      q.Get("case_id"),
	}

	list, err := h.Service.List(r.Context(), identity, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"delegations": list})
}

// RevokeDelegation handles PATCH /delegations/{delegationID}/revoke
func (h *Handler) RevokeDelegation(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "delegationID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid delegation id")
		return
	}

	if err := h.Service.Revoke(r.Context(), identity, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
