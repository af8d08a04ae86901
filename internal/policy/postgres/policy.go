package postgres

import (
	"context"

	policyDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/policy"
	"github.com/frahmantamala/expensehub/internal/policy"
	"github.com/frahmantamala/expensehub/internal/tenant"
)

type PolicyRepository struct {
	client *tenant.Client
}

func NewPolicyRepository(client *tenant.Client) policy.RepositoryAPI {
	return &PolicyRepository{client: client}
}

func (r *PolicyRepository) Get(ctx context.Context, scope tenant.Scope) (*policyDatamodel.ApprovalPolicy, error) {
	var row policyDatamodel.ApprovalPolicy
	if err := r.client.For(scope).Policies().First(ctx, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

// Save overwrites the company's policy row, creating it on first use.
func (r *PolicyRepository) Save(ctx context.Context, scope tenant.Scope, row *policyDatamodel.ApprovalPolicy) error {
	return r.client.For(scope).Transaction(ctx, func(tx *tenant.Store) error {
		n, err := tx.Policies().Updates(ctx, map[string]any{
			"approval_type":           row.ApprovalType,
			"threshold_percent":       row.ThresholdPercent,
			"employee_spending_cap":   row.EmployeeSpendingCap,
			"large_expense_threshold": row.LargeExpenseThreshold,
			"require_ceo_for_large":   row.RequireCeoForLarge,
		})
		if err != nil || n > 0 {
			return err
		}
		return tx.Policies().Create(ctx, row)
	})
}
