package report

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/collection-management/internal/auth"
	"github.com/frahmantamala/collection-management/internal/cases"
	"github.com/frahmantamala/collection-management/internal/transport"
	"github.com/frahmantamala/collection-management/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/xuri/excelize/v2"
)

type ServiceAPI interface {
	ExportCases(ctx context.Context, identity *auth.Identity, filter cases.ListFilter) (*excelize.File, string, error)
	Summary(ctx context.Context, identity *auth.Identity) (*Summary, error)
	ListAllowlist(ctx context.Context) ([]*AllowlistEntry, error)
	AddAllowlistEntry(ctx context.Context, employeeCode, addedBy string) (*AllowlistEntry, error)
	RemoveAllowlistEntry(ctx context.Context, employeeCode string) error
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

// ExportCases handles GET /reports/cases/export
func (h *Handler) ExportCases(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()
	filter := cases.ListFilter{
		Status:     q.Get("status"),
		Department: q.Get("department"),
	}
	if v := q.Get("debt_group"); v != "" {
		g, err := strconv.Atoi(v)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid debt_group")
			return
		}
		filter.DebtGroup = g
	}

	workbook, filename, err := h.Service.ExportCases(r.Context(), identity, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := workbook.Write(w); err != nil {
		h.Logger.Error("failed to stream export workbook", "error", err)
	}
}

// Summary handles GET /reports/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summary, err := h.Service.Summary(r.Context(), identity)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, summary)
}

// ListAllowlist handles GET /reports/allowlist
func (h *Handler) ListAllowlist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.ListAllowlist(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"allowlist": entries})
}

// AddAllowlistEntry handles POST /reports/allowlist
func (h *Handler) AddAllowlistEntry(w http.ResponseWriter, r *http.Request) {
	var body struct {
		EmployeeCode string `json:"employee_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	addedBy := ""
	if identity, ok := auth.IdentityFromContext(r.Context()); ok && identity != nil {
		addedBy = identity.EmployeeCode
	}

	entry, err := h.Service.AddAllowlistEntry(r.Context(), body.EmployeeCode, addedBy)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, entry)
}

// RemoveAllowlistEntry handles DELETE /reports/allowlist/{employeeCode}
func (h *Handler) RemoveAllowlistEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.RemoveAllowlistEntry(r.Context(), chi.URLParam(r, "employeeCode")); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
