package report

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/frahmantamala/expensehub/internal/exchangerate"
	"github.com/frahmantamala/expensehub/internal/tenant"
)

var ErrCompanyNotFound = errors.New("company not found")

// RepositoryAPI reads aggregates straight from SQL. Every method takes the
// company id explicitly since these queries bypass the tenant wrapper.
type RepositoryAPI interface {
	ProjectTotals(ctx context.Context, companyID int64, filter Filter) ([]Row, error)
	BaseCurrency(ctx context.Context, companyID int64) (string, error)
}

type RateLookup interface {
	Latest(ctx context.Context, scope tenant.Scope) (*exchangerate.Snapshot, error)
}

type Service struct {
	repo   RepositoryAPI
	rates  RateLookup
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, rates RateLookup, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		rates:  rates,
		logger: logger,
	}
}

func (s *Service) Summary(ctx context.Context, scope tenant.Scope, filter Filter) (*Summary, error) {
	if !scope.Role.CanDecide() {
		return nil, internal.ErrInsufficientRole
	}

	base, err := s.repo.BaseCurrency(ctx, scope.CompanyID)
	if err != nil {
		if errors.Is(err, ErrCompanyNotFound) {
			return nil, internal.ErrCompanyNotFound
		}
		s.logger.Error("failed to load company currency", "company_id", scope.CompanyID, "error", err)
		return nil, internal.NewInternalError("failed to build report", err)
	}

	rows, err := s.repo.ProjectTotals(ctx, scope.CompanyID, filter)
	if err != nil {
		s.logger.Error("failed to aggregate expenses", "company_id", scope.CompanyID, "error", err)
		return nil, internal.NewInternalError("failed to build report", err)
	}

	snap, err := s.rates.Latest(ctx, scope)
	switch {
	case errors.Is(err, internal.ErrRateSnapshotNotFound):
		snap = nil
	case err != nil:
		return nil, err
	}

	return build(base, rows, snap), nil
}
