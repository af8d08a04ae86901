package postgres

import (
	"context"
	"errors"

	rateDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/exchangerate"
	"github.com/frahmantamala/expensehub/internal/exchangerate"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"gorm.io/gorm"
)

type ExchangeRateRepository struct {
	client *tenant.Client
}

func NewExchangeRateRepository(client *tenant.Client) exchangerate.RepositoryAPI {
	return &ExchangeRateRepository{client: client}
}

func (r *ExchangeRateRepository) Create(ctx context.Context, scope tenant.Scope, row *rateDatamodel.Snapshot) error {
	return r.client.For(scope).ExchangeRates().Create(ctx, row)
}

func (r *ExchangeRateRepository) Latest(ctx context.Context, scope tenant.Scope) (*rateDatamodel.Snapshot, error) {
	var row rateDatamodel.Snapshot
	err := r.client.For(scope).ExchangeRates().Query(ctx).
		Order("exchange_rate_snapshots.captured_at DESC").
		Order("exchange_rate_snapshots.id DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tenant.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *ExchangeRateRepository) List(ctx context.Context, scope tenant.Scope, limit, offset int) ([]rateDatamodel.Snapshot, int64, error) {
	rates := r.client.For(scope).ExchangeRates()
	total, err := rates.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	var rows []rateDatamodel.Snapshot
	err = rates.Query(ctx).
		Order("exchange_rate_snapshots.captured_at DESC").
		Order("exchange_rate_snapshots.id DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	return rows, total, err
}
