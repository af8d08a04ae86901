package exchangerate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/frahmantamala/expensehub/internal/audit"
	"github.com/frahmantamala/expensehub/internal/core/common/validation"
	rateDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/exchangerate"
	"github.com/frahmantamala/expensehub/internal/tenant"
)

type RepositoryAPI interface {
	Create(ctx context.Context, scope tenant.Scope, row *rateDatamodel.Snapshot) error
	Latest(ctx context.Context, scope tenant.Scope) (*rateDatamodel.Snapshot, error)
	List(ctx context.Context, scope tenant.Scope, limit, offset int) ([]rateDatamodel.Snapshot, int64, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, scope tenant.Scope, e audit.Entry)
}

type Service struct {
	repo   RepositoryAPI
	audit  AuditRecorder
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, auditor AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		audit:  auditor,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) Capture(ctx context.Context, scope tenant.Scope, dto CaptureRatesDTO) (*Snapshot, error) {
	dto.Normalize()
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	rates, appErr := dto.ParseRates()
	if appErr != nil {
		return nil, appErr
	}
	delete(rates, dto.BaseCurrency)

	snap := &Snapshot{BaseCurrency: dto.BaseCurrency, Rates: rates, CapturedAt: s.now().UTC()}
	row := ToDataModel(snap)
	if err := s.repo.Create(ctx, scope, row); err != nil {
		s.logger.Error("failed to store exchange rates", "company_id", scope.CompanyID, "error", err)
		return nil, internal.NewInternalError("failed to store exchange rates", err)
	}
	snap.ID = row.ID

	s.logger.Info("exchange rates captured", "company_id", scope.CompanyID, "base", snap.BaseCurrency, "currencies", len(rates))
	s.audit.Record(ctx, scope, audit.Entry{
		Action:     audit.ActionRatesCapture,
		EntityType: audit.EntityExchangeRate,
		EntityID:   row.ID,
		Metadata:   map[string]any{"baseCurrency": snap.BaseCurrency, "currencies": len(rates)},
	})
	return snap, nil
}

// Latest returns ErrRateSnapshotNotFound when the company has none.
func (s *Service) Latest(ctx context.Context, scope tenant.Scope) (*Snapshot, error) {
	row, err := s.repo.Latest(ctx, scope)
	if errors.Is(err, tenant.ErrNotFound) {
		return nil, internal.ErrRateSnapshotNotFound
	}
	if err != nil {
		return nil, internal.NewInternalError("failed to load exchange rates", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) List(ctx context.Context, scope tenant.Scope, limit, offset int) ([]*Snapshot, int64, error) {
	rows, total, err := s.repo.List(ctx, scope, limit, offset)
	if err != nil {
		return nil, 0, internal.NewInternalError("failed to list exchange rates", err)
	}
	out := make([]*Snapshot, 0, len(rows))
	for i := range rows {
		out = append(out, FromDataModel(&rows[i]))
	}
	return out, total, nil
}
