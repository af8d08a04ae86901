package company

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/frahmantamala/expensehub/internal/audit"
	"github.com/frahmantamala/expensehub/internal/auth"
	"github.com/frahmantamala/expensehub/internal/core/common/validation"
	companyDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/company"
	policyDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/policy"
	userDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/user"
	"github.com/frahmantamala/expensehub/internal/policy"
	"github.com/frahmantamala/expensehub/internal/tenant"
)

var ErrCompanyNotFound = errors.New("company not found")

// OnboardRows is everything onboarding writes. The repository fills in ids.
type OnboardRows struct {
	Company *companyDatamodel.Company
	Admin   *userDatamodel.User
	Policy  *policyDatamodel.ApprovalPolicy
	Audit   audit.Entry
}

type RepositoryAPI interface {
	// Onboard writes rows in one transaction; any failure leaves nothing behind.
	Onboard(ctx context.Context, rows OnboardRows) error
	GetByID(ctx context.Context, id int64) (*companyDatamodel.Company, error)
}

type Service struct {
	repo       RepositoryAPI
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Onboard creates the company, its first admin, the ADMIN membership, the
// default approval policy and an audit entry atomically.
func (s *Service) Onboard(ctx context.Context, dto CreateCompanyDTO) (*Onboarded, error) {
	dto.Normalize()
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(dto.AdminPassword, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	rows := OnboardRows{
		Company: &companyDatamodel.Company{Name: dto.CompanyName, BaseCurrency: dto.BaseCurrency},
		Admin:   &userDatamodel.User{Email: dto.AdminEmail, Name: dto.AdminName, PasswordHash: hash, IsActive: true},
		Policy:  policy.ToDataModel(policy.Default()),
		Audit: audit.Entry{
			Action:     audit.ActionCompanyCreate,
			EntityType: audit.EntityCompany,
			Metadata:   map[string]any{"name": dto.CompanyName, "adminEmail": dto.AdminEmail},
		},
	}
	if err := s.repo.Onboard(ctx, rows); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			s.logger.Warn("onboarding rejected", "email", dto.AdminEmail, "error", err)
			return nil, err
		}
		s.logger.Error("onboarding failed", "company", dto.CompanyName, "error", err)
		return nil, internal.NewInternalError("failed to create company", err)
	}

	s.logger.Info("company onboarded", "company_id", rows.Company.ID, "admin_id", rows.Admin.ID)
	return &Onboarded{
		Company: FromDataModel(rows.Company),
		Admin:   Admin{ID: rows.Admin.ID, Email: rows.Admin.Email, Name: rows.Admin.Name},
	}, nil
}

func (s *Service) Get(ctx context.Context, scope tenant.Scope) (*Company, error) {
	row, err := s.repo.GetByID(ctx, scope.CompanyID)
	if err != nil {
		if errors.Is(err, ErrCompanyNotFound) {
			return nil, internal.ErrCompanyNotFound
		}
		return nil, internal.NewInternalError("failed to load company", err)
	}
	return FromDataModel(row), nil
}
