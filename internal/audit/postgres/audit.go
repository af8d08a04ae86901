package postgres

import (
	"context"

	"github.com/frahmantamala/expensehub/internal/audit"
	auditDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/audit"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"gorm.io/gorm"
)

type AuditRepository struct {
	client *tenant.Client
}

func NewAuditRepository(client *tenant.Client) audit.RepositoryAPI {
	return &AuditRepository{client: client}
}

func (r *AuditRepository) Append(ctx context.Context, scope tenant.Scope, row *auditDatamodel.AuditLog) error {
	return r.client.For(scope).AuditLogs().Create(ctx, row)
}

func (r *AuditRepository) List(ctx context.Context, scope tenant.Scope, filter audit.Filter) ([]auditDatamodel.AuditLog, int64, error) {
	logs := r.client.For(scope).AuditLogs()
	query := func() *gorm.DB {
		q := logs.Query(ctx)
		if filter.Action != "" {
			q = q.Where("audit_logs.action = ?", filter.Action)
		}
		if filter.EntityType != "" {
			q = q.Where("audit_logs.entity_type = ?", filter.EntityType)
		}
		if filter.EntityID > 0 {
			q = q.Where("audit_logs.entity_id = ?", filter.EntityID)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []auditDatamodel.AuditLog
	q := query().Order("audit_logs.id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
