package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/adportal/adportal/internal/auth"
	"github.com/adportal/adportal/internal/department"
	"github.com/adportal/adportal/internal/directory"
	"github.com/adportal/adportal/internal/employee"
	"github.com/adportal/adportal/internal/sync"
	"github.com/adportal/adportal/internal/transfer"
	"github.com/adportal/adportal/internal/transport/middleware"
	"github.com/adportal/adportal/internal/transport/swagger"
	"github.com/go-chi/chi"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth       *auth.Handler
	Department *department.Handler
	Employee   *employee.Handler
	Sync       *sync.Handler
	Transfer   *transfer.Handler
	Directory  *directory.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, pingDirectory DirectoryPinger, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, pingDirectory)

	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestLogger)
	router.Use(middleware.RecoveryMiddleware(logger))

	// OpenAPI spec and Swagger UI live outside the API prefix
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
		})

		// Everything below requires a valid token and an active user.
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.Middleware)

			pr.Post("/auth/logout", h.Auth.Logout)
			pr.Get("/employees/me", h.Employee.GetMyProfile)
			pr.Get("/departments", h.Department.GetDepartments)

			// Operator surface: sync, transfers, department catalog
			pr.Group(func(sr chi.Router) {
				sr.Use(h.Auth.RequireStaff)

				sr.Post("/sync", h.Sync.RunSync)

				sr.Route("/transfers", func(tr chi.Router) {
					tr.Post("/", h.Transfer.CreateTransfer)
					tr.Get("/", h.Transfer.ListTransfers)
				})

				sr.Post("/departments", h.Department.CreateDepartment)
				sr.Delete("/departments/{id}", h.Department.DeleteDepartment)
			})

			// Directory administration is superuser-only; the directory's
			// own ACLs still apply on top.
			pr.Group(func(ar chi.Router) {
				ar.Use(h.Auth.RequireSuperuser)

				ar.Route("/directory/persons", func(dr chi.Router) {
					dr.Get("/", h.Directory.ListPersons)
					dr.Post("/", h.Directory.CreatePerson)
					dr.Post("/password", h.Directory.SetPassword)
					dr.Post("/delete", h.Directory.DeletePerson)
				})
			})
		})
	})
}
