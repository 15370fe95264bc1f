package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/collection-management/internal/auth"
	"github.com/frahmantamala/collection-management/internal/cases"
	"github.com/frahmantamala/collection-management/internal/delegation"
	"github.com/frahmantamala/collection-management/internal/employee"
	"github.com/frahmantamala/collection-management/internal/permission"
	"github.com/frahmantamala/collection-management/internal/report"
	"github.com/frahmantamala/collection-management/internal/transport/middleware"
	"github.com/frahmantamala/collection-management/internal/transport/swagger"
	"github.com/go-chi/chi"
)

type Handlers struct {
	Auth       *auth.Handler
	Employee   *employee.Handler
	Cases      *cases.Handler
	Delegation *delegation.Handler
	Report     *report.Handler
	Permission *permission.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, authz *auth.Authorizer, allowedOrigins []string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		// Everything below requires an authenticated, active identity.
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.Employee.GetCurrentUser)
			pr.Get("/employees", h.Employee.ListEmployees)

			// Case visibility is data-dependent: the scope filter inside the
			// service decides breadth, so routes only require authentication.
			pr.Route("/cases", func(cr chi.Router) {
				cr.Get("/", h.Cases.ListCases)
				cr.Get("/{caseID}", h.Cases.GetCase)
				cr.Patch("/{caseID}/status", h.Cases.UpdateStatus)
				cr.Get("/{caseID}/activities", h.Cases.ListActivities)
				cr.Post("/{caseID}/activities", h.Cases.CreateActivity)

				cr.Group(func(tr chi.Router) {
					tr.Use(authz.Require(
						[]string{auth.PermTransferCases},
						[]auth.Role{auth.RoleManager, auth.RoleDeputyManager, auth.RoleAdministrator},
					))
					tr.Post("/{caseID}/transfer", h.Cases.TransferCase)
				})
			})

			// Delegation actor rules depend on who owns the named cases, so
			// the service enforces them; routes stay open to any authenticated
			// caller.
			pr.Route("/delegations", func(dr chi.Router) {
				dr.Post("/", h.Delegation.CreateDelegations)
				dr.Get("/", h.Delegation.ListDelegations)
				dr.Patch("/{delegationID}/revoke", h.Delegation.RevokeDelegation)
			})

			pr.Route("/reports", func(rr chi.Router) {
				rr.Get("/cases/export", h.Report.ExportCases)
				rr.Get("/summary", h.Report.Summary)

				rr.Group(func(ar chi.Router) {
					ar.Use(authz.Require(
						[]string{auth.PermManageAllowlist},
						[]auth.Role{auth.RoleAdministrator},
					))
					ar.Get("/allowlist", h.Report.ListAllowlist)
					ar.Post("/allowlist", h.Report.AddAllowlistEntry)
					ar.Delete("/allowlist/{employeeCode}", h.Report.RemoveAllowlistEntry)
				})
			})

			// Permission management requires the full set, not any-of.
			pr.Group(func(ar chi.Router) {
				ar.Use(authz.RequireAll(
					[]string{auth.PermAdmin, auth.PermManagePermissions},
					nil,
				))
				ar.Route("/permissions", func(pmr chi.Router) {
					pmr.Get("/", h.Permission.ListPermissions)
					pmr.Post("/", h.Permission.CreatePermission)
					pmr.Delete("/{permissionID}", h.Permission.DeletePermission)
				})
				ar.Post("/users/{employeeCode}/permissions", h.Permission.GrantPermission)
				ar.Delete("/users/{employeeCode}/permissions/{permissionID}", h.Permission.RevokePermission)
			})
		})
	})
}
