package rest

import (
	"net/http"

	"github.com/frahmantamala/expensehub/internal/audit"
	"github.com/frahmantamala/expensehub/internal/auth"
	"github.com/frahmantamala/expensehub/internal/company"
	"github.com/frahmantamala/expensehub/internal/exchangerate"
	"github.com/frahmantamala/expensehub/internal/expense"
	"github.com/frahmantamala/expensehub/internal/notification"
	"github.com/frahmantamala/expensehub/internal/policy"
	"github.com/frahmantamala/expensehub/internal/project"
	"github.com/frahmantamala/expensehub/internal/report"
	"github.com/frahmantamala/expensehub/internal/storage"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"github.com/frahmantamala/expensehub/internal/transport"
	"github.com/frahmantamala/expensehub/internal/transport/middleware"
	"github.com/frahmantamala/expensehub/internal/transport/swagger"
	"github.com/frahmantamala/expensehub/internal/user"
	"github.com/go-chi/chi"
)

// Handlers is everything the router mounts.
type Handlers struct {
	Base         *transport.BaseHandler
	Health       *HealthHandler
	Auth         *auth.Handler
	Company      *company.Handler
	User         *user.Handler
	Project      *project.Handler
	Policy       *policy.Handler
	Expense      *expense.Handler
	Audit        *audit.Handler
	ExchangeRate *exchangerate.Handler
	Storage      *storage.Handler
	Notification *notification.Handler
	Report       *report.Handler
}

type Options struct {
	AllowedOrigins string
	// OpenAPIPath is the file served at /openapi.yml.
	OpenAPIPath string
}

func RegisterAllRoutes(router chi.Router, h Handlers, opts Options) {
	admin := h.Auth.RequireRole(tenant.RoleAdmin)
	deciders := h.Auth.RequireRole(tenant.RoleManager, tenant.RoleAdmin)

	router.Use(middleware.RequestID)
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.RecoveryMiddleware(h.Base))

	router.Get("/health", h.Health.healthCheckHandler)
	router.Get("/ping", h.Health.pingHandler)

	if opts.OpenAPIPath != "" {
		router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, opts.OpenAPIPath)
		})
		router.Handle("/swagger/*", swagger.Handler("/openapi.yml"))
	}

	router.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/logout", h.Auth.Logout)
		r.Post("/company/create", h.Company.CreateCompany)
		// the signed token is the credential for uploads
		r.Put("/uploads/*", h.Storage.Upload)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.SessionMiddleware)

			pr.Get("/auth/session", h.Auth.Session)
			pr.Get("/company", h.Company.GetCompany)
			pr.Get("/users/me", h.User.GetCurrentUser)
			pr.Get("/notifications", h.Notification.ListNotifications)
			pr.Post("/uploads/sign", h.Storage.SignUpload)
			pr.Get("/receipts/{id}/file", h.Expense.DownloadReceipt)

			pr.Route("/projects", func(pjr chi.Router) {
				pjr.Get("/", h.Project.ListProjects)
				pjr.Get("/{id}", h.Project.GetProject)
				pjr.With(admin).Post("/", h.Project.CreateProject)
				pjr.With(admin).Patch("/{id}", h.Project.UpdateProject)
				pjr.With(admin).Delete("/{id}", h.Project.DeleteProject)
			})

			pr.Get("/policy", h.Policy.GetPolicy)
			pr.With(admin).Put("/policy", h.Policy.UpdatePolicy)

			pr.Route("/expenses", func(er chi.Router) {
				er.Post("/", h.Expense.CreateExpense)
				er.Get("/", h.Expense.ListExpenses)
				er.With(deciders).Get("/export", h.Expense.ExportExpenses)
				er.Get("/{id}", h.Expense.GetExpense)
				er.Patch("/{id}", h.Expense.UpdateExpense)
				er.Delete("/{id}", h.Expense.DeleteExpense)
				er.With(deciders).Post("/{id}/approve", h.Expense.DecideExpense)
			})

			pr.Route("/members", func(mr chi.Router) {
				mr.Use(admin)
				mr.Get("/", h.User.ListMembers)
				mr.Post("/", h.User.AddMember)
				mr.Patch("/{id}", h.User.UpdateMember)
				mr.Delete("/{id}", h.User.RemoveMember)
			})

			pr.With(admin).Get("/audit-logs", h.Audit.ListAuditLogs)

			pr.Get("/exchange-rates", h.ExchangeRate.ListSnapshots)
			pr.Get("/exchange-rates/latest", h.ExchangeRate.LatestSnapshot)
			pr.With(admin).Post("/exchange-rates", h.ExchangeRate.CaptureRates)

			pr.With(deciders).Get("/reports/summary", h.Report.GetSummary)
		})
	})
}
