package audit

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/expensehub/internal"
	auditDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/audit"
	"github.com/frahmantamala/expensehub/internal/tenant"
)

type RepositoryAPI interface {
	Append(ctx context.Context, scope tenant.Scope, row *auditDatamodel.AuditLog) error
	List(ctx context.Context, scope tenant.Scope, filter Filter) ([]auditDatamodel.AuditLog, int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Write appends e through store, inside whatever transaction store is bound to.
func Write(ctx context.Context, store *tenant.Store, e Entry) error {
	return store.AuditLogs().Create(ctx, ToDataModel(e))
}

func (s *Service) Log(ctx context.Context, scope tenant.Scope, e Entry) error {
	if err := s.repo.Append(ctx, scope, ToDataModel(e)); err != nil {
		return internal.NewInternalError("failed to write audit log", err)
	}
	return nil
}

// Record is Log for callers whose own work has already committed: a failed
// audit write is logged and otherwise ignored.
func (s *Service) Record(ctx context.Context, scope tenant.Scope, e Entry) {
	if err := s.Log(ctx, scope, e); err != nil {
		s.logger.Error("audit write failed",
			"action", e.Action,
			"entity_type", e.EntityType,
			"entity_id", e.EntityID,
			"company_id", scope.CompanyID,
			"error", err)
	}
}

func (s *Service) List(ctx context.Context, scope tenant.Scope, filter Filter) ([]Log, int64, error) {
	rows, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		s.logger.Error("failed to list audit logs", "company_id", scope.CompanyID, "error", err)
		return nil, 0, internal.NewInternalError("failed to list audit logs", err)
	}

	logs := make([]Log, 0, len(rows))
	for i := range rows {
		logs = append(logs, FromDataModel(&rows[i]))
	}
	return logs, total, nil
}
