package employee

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/collection-management/internal/auth"
	"github.com/frahmantamala/collection-management/internal/transport"
	"github.com/frahmantamala/collection-management/pkg/logger"
)

type ServiceAPI interface {
	GetByEmployeeCode(ctx context.Context, employeeCode string) (*Employee, error)
	ListEmployees(ctx context.Context, department string) ([]*Employee, error)
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

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	e, err := h.Service.GetByEmployeeCode(r.Context(), identity.EmployeeCode)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	profile := Profile{
		Employee:    *e,
		Permissions: identity.EffectivePermissions(),
	}
	h.WriteJSON(w, http.StatusOK, profile)
}

// ListEmployees handles GET /employees?department=
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	department := r.URL.Query().Get("department")

	employees, err := h.Service.ListEmployees(r.Context(), department)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"employees": employees})
}
