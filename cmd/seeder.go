package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/frahmantamala/expensehub/internal/audit"
	auditPostgres "github.com/frahmantamala/expensehub/internal/audit/postgres"
	"github.com/frahmantamala/expensehub/internal/auth"
	"github.com/frahmantamala/expensehub/internal/company"
	companyPostgres "github.com/frahmantamala/expensehub/internal/company/postgres"
	userDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/user"
	"github.com/frahmantamala/expensehub/internal/project"
	projectPostgres "github.com/frahmantamala/expensehub/internal/project/postgres"
	"github.com/frahmantamala/expensehub/internal/tenant"
	userPostgres "github.com/frahmantamala/expensehub/internal/user/postgres"
	"github.com/frahmantamala/expensehub/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const seedPassword = "password"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with a demo company",
	Long:  `Create the Acme demo company with an admin, a manager, an employee and one project. Safe to re-run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		logger.Init(cfg.Environment, cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

		db, rdb, err := initDB(cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()

		return seed(cmd.Context(), db, cfg.Security.BCryptCost)
	},
}

func seed(ctx context.Context, db *gorm.DB, bcryptCost int) error {
	log := logger.LoggerWrapper()
	companies := company.NewService(companyPostgres.NewCompanyRepository(db), bcryptCost, log)

	onboarded, err := companies.Onboard(ctx, company.CreateCompanyDTO{
		CompanyName:   "Acme",
		AdminName:     "Acme Admin",
		AdminEmail:    "admin@acme.test",
		AdminPassword: seedPassword,
	})
	if errors.Is(err, internal.ErrEmailTaken) {
		fmt.Println("demo company already seeded")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to seed company: %w", err)
	}
	fmt.Println("Seeded company:", onboarded.Company.Name, "admin:", onboarded.Admin.Email)

	admin := tenant.Scope{CompanyID: onboarded.Company.ID, UserID: onboarded.Admin.ID, Role: tenant.RoleAdmin, Email: onboarded.Admin.Email}
	client := tenant.NewClient(db)
	members := userPostgres.NewUserRepository(db)

	hash, err := auth.HashPassword(seedPassword, bcryptCost)
	if err != nil {
		return err
	}
	for _, m := range []struct {
		email, name string
		role        tenant.Role
	}{
		{"manager@acme.test", "Maya Manager", tenant.RoleManager},
		{"employee@acme.test", "Eli Employee", tenant.RoleEmployee},
	} {
		u := &userDatamodel.User{Email: m.email, Name: m.name, PasswordHash: hash, IsActive: true}
		if _, err := members.AddMember(ctx, admin, u, m.role); err != nil {
			return fmt.Errorf("failed to seed %s: %w", m.email, err)
		}
		fmt.Println("Seeded member:", m.email, m.role)
	}

	auditService := audit.NewService(auditPostgres.NewAuditRepository(client), log)
	projects := project.NewService(projectPostgres.NewProjectRepository(client), auditService, log)
	if _, err := projects.Create(ctx, admin, project.CreateProjectDTO{Name: "Website", Description: "Marketing site rebuild"}); err != nil {
		return fmt.Errorf("failed to seed project: %w", err)
	}
	fmt.Println("Seeded project: Website")
	fmt.Println("All demo users use password:", seedPassword)
	return nil
}
