package cmd

import (
	"fmt"
	"log/slog"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/frahmantamala/expensehub/internal/audit"
	auditPostgres "github.com/frahmantamala/expensehub/internal/audit/postgres"
	"github.com/frahmantamala/expensehub/internal/auth"
	authPostgres "github.com/frahmantamala/expensehub/internal/auth/postgres"
	"github.com/frahmantamala/expensehub/internal/company"
	companyPostgres "github.com/frahmantamala/expensehub/internal/company/postgres"
	"github.com/frahmantamala/expensehub/internal/core/events"
	"github.com/frahmantamala/expensehub/internal/exchangerate"
	ratePostgres "github.com/frahmantamala/expensehub/internal/exchangerate/postgres"
	"github.com/frahmantamala/expensehub/internal/expense"
	expensePostgres "github.com/frahmantamala/expensehub/internal/expense/postgres"
	"github.com/frahmantamala/expensehub/internal/mailer"
	"github.com/frahmantamala/expensehub/internal/notification"
	"github.com/frahmantamala/expensehub/internal/policy"
	policyPostgres "github.com/frahmantamala/expensehub/internal/policy/postgres"
	"github.com/frahmantamala/expensehub/internal/project"
	projectPostgres "github.com/frahmantamala/expensehub/internal/project/postgres"
	"github.com/frahmantamala/expensehub/internal/report"
	reportPostgres "github.com/frahmantamala/expensehub/internal/report/postgres"
	"github.com/frahmantamala/expensehub/internal/storage"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"github.com/frahmantamala/expensehub/internal/transport"
	"github.com/frahmantamala/expensehub/internal/transport/middleware"
	"github.com/frahmantamala/expensehub/internal/transport/rest"
	"github.com/frahmantamala/expensehub/internal/user"
	userPostgres "github.com/frahmantamala/expensehub/internal/user/postgres"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// App is the wired HTTP application.
type App struct {
	Router *chi.Mux
	Bus    *events.EventBus
}

// NewApp wires every service over db. The report repository reads through
// rdb, which must share db's connection pool.
func NewApp(cfg *internal.Config, db *gorm.DB, rdb *sqlx.DB, log *slog.Logger) (*App, error) {
	base := transport.NewBaseHandler(log)
	base.OnServerError = middleware.ReportServerErrors

	client := tenant.NewClient(db)
	bus := events.NewEventBus(log)

	inbox := notification.NewInbox(notification.DefaultLimit, log)
	inbox.Subscribe(bus)

	mail, err := mailer.NewLogMailer(cfg.Mail.From, cfg.Mail.SimulatedLatency, log)
	if err != nil {
		return nil, fmt.Errorf("failed to init mailer: %w", err)
	}

	store, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}
	publicURL := cfg.Storage.PublicBaseURL
	if publicURL == "" {
		publicURL = cfg.Server.BaseURL
	}
	signer := storage.NewSigner(cfg.Security.UploadSecret, cfg.Storage.UploadTTL, cfg.Storage.MaxSizeBytes, publicURL)

	auditService := audit.NewService(auditPostgres.NewAuditRepository(client), log)
	authService := auth.NewService(
		authPostgres.NewRepository(db),
		auth.NewJWTTokenGenerator(cfg.Security.SessionSecret, cfg.Security.SessionTTL),
		cfg.Security.SessionTTL,
		log,
	)
	companyService := company.NewService(companyPostgres.NewCompanyRepository(db), cfg.Security.BCryptCost, log)
	userService := user.NewService(userPostgres.NewUserRepository(db), auditService, mail, cfg.Security.BCryptCost, log)
	projectService := project.NewService(projectPostgres.NewProjectRepository(client), auditService, log)
	policyService := policy.NewService(policyPostgres.NewPolicyRepository(client), auditService, log)
	rateService := exchangerate.NewService(ratePostgres.NewExchangeRateRepository(client), auditService, log)
	expenseService := expense.NewService(
		expensePostgres.NewExpenseRepository(client),
		projectService,
		policyService,
		store,
		auditService,
		bus,
		log,
	)
	reportService := report.NewService(reportPostgres.NewReportRepository(rdb), rateService, log)

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Handlers{
		Base:         base,
		Health:       rest.NewHealthHandler(base, sqlDB),
		Auth:         auth.NewHandler(base, authService, cfg.Security.CookieSecure),
		Company:      company.NewHandler(base, companyService),
		User:         user.NewHandler(base, userService),
		Project:      project.NewHandler(base, projectService),
		Policy:       policy.NewHandler(base, policyService),
		Expense:      expense.NewHandler(base, expenseService),
		Audit:        audit.NewHandler(base, auditService),
		ExchangeRate: exchangerate.NewHandler(base, rateService),
		Storage:      storage.NewHandler(base, signer, store),
		Notification: notification.NewHandler(base, inbox),
		Report:       report.NewHandler(base, reportService),
	}, rest.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		OpenAPIPath:    "./api/openapi.yml",
	})

	return &App{Router: router, Bus: bus}, nil
}
