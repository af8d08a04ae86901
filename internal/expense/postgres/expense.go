package postgres

import (
	"context"

	approvalDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/approval"
	expenseDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/expense"
	receiptDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/receipt"
	"github.com/frahmantamala/expensehub/internal/expense"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"gorm.io/gorm"
)

type ExpenseRepository struct {
	client *tenant.Client
}

func NewExpenseRepository(client *tenant.Client) expense.RepositoryAPI {
	return &ExpenseRepository{client: client}
}

func (r *ExpenseRepository) List(ctx context.Context, scope tenant.Scope, filter expense.Filter) ([]expenseDatamodel.Expense, int64, error) {
	expenses := r.client.For(scope).Expenses()
	query := func() *gorm.DB {
		q := expenses.Query(ctx)
		if filter.Status != "" {
			q = q.Where("expenses.status = ?", filter.Status)
		}
		if filter.ProjectID > 0 {
			q = q.Where("expenses.project_id = ?", filter.ProjectID)
		}
		if filter.EmployeeID > 0 {
			q = q.Where("expenses.employee_id = ?", filter.EmployeeID)
		}
		if filter.From != nil {
			q = q.Where("expenses.expense_date >= ?", *filter.From)
		}
		if filter.To != nil {
			q = q.Where("expenses.expense_date <= ?", *filter.To)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []expenseDatamodel.Expense
	q := query().Order("expenses.created_at DESC").Order("expenses.id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, scope tenant.Scope, id int64) (*expenseDatamodel.Expense, error) {
	var row expenseDatamodel.Expense
	if err := r.client.For(scope).Expenses().First(ctx, &row, "id = ?", id); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *ExpenseRepository) Receipts(ctx context.Context, scope tenant.Scope, expenseID int64) ([]receiptDatamodel.ReceiptFile, error) {
	var rows []receiptDatamodel.ReceiptFile
	err := r.client.For(scope).Receipts().Find(ctx, &rows, "expense_id = ?", expenseID)
	return rows, err
}

func (r *ExpenseRepository) Approvals(ctx context.Context, scope tenant.Scope, expenseID int64) ([]approvalDatamodel.Approval, error) {
	var rows []approvalDatamodel.Approval
	err := r.client.For(scope).Approvals().Find(ctx, &rows, "expense_id = ?", expenseID)
	return rows, err
}

func (r *ExpenseRepository) GetReceipt(ctx context.Context, scope tenant.Scope, id int64) (*receiptDatamodel.ReceiptFile, error) {
	var row receiptDatamodel.ReceiptFile
	if err := r.client.For(scope).Receipts().First(ctx, &row, "id = ?", id); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *ExpenseRepository) Create(ctx context.Context, scope tenant.Scope, row *expenseDatamodel.Expense, receipts []receiptDatamodel.ReceiptFile) error {
	return r.client.For(scope).Transaction(ctx, func(tx *tenant.Store) error {
		if err := tx.Expenses().Create(ctx, row); err != nil {
			return err
		}
		for i := range receipts {
			receipts[i].ExpenseID = row.ID
			if err := tx.Receipts().Create(ctx, &receipts[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdatePending only touches the caller's own PENDING expense.
func (r *ExpenseRepository) UpdatePending(ctx context.Context, scope tenant.Scope, id int64, values map[string]any) error {
	n, err := r.client.For(scope).Expenses().Updates(ctx, values,
		"id = ? AND employee_id = ? AND status = ?", id, scope.UserID, expense.StatusPending)
	if err != nil {
		return err
	}
	if n == 0 {
		return expense.ErrStatusChanged
	}
	return nil
}

// DeletePending removes the caller's own PENDING expense and its receipt
// rows, returning the storage keys that were released.
func (r *ExpenseRepository) DeletePending(ctx context.Context, scope tenant.Scope, id int64) ([]string, error) {
	var keys []string
	err := r.client.For(scope).Transaction(ctx, func(tx *tenant.Store) error {
		var receipts []receiptDatamodel.ReceiptFile
		if err := tx.Receipts().Find(ctx, &receipts, "expense_id = ?", id); err != nil {
			return err
		}
		if _, err := tx.Receipts().Delete(ctx, "expense_id = ?", id); err != nil {
			return err
		}
		n, err := tx.Expenses().Delete(ctx, "id = ? AND employee_id = ? AND status = ?", id, scope.UserID, expense.StatusPending)
		if err != nil {
			return err
		}
		if n == 0 {
			return expense.ErrStatusChanged
		}
		for _, rc := range receipts {
			keys = append(keys, rc.StorageKey)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Decide moves a PENDING expense to status and records the approval row in
// the same transaction. A concurrent decision makes the status update match
// nothing, and the whole transaction rolls back.
func (r *ExpenseRepository) Decide(ctx context.Context, scope tenant.Scope, id int64, status string, approval *approvalDatamodel.Approval) error {
	return r.client.For(scope).Transaction(ctx, func(tx *tenant.Store) error {
		n, err := tx.Expenses().Updates(ctx, map[string]any{
			"status":     status,
			"decided_at": approval.DecidedAt,
		}, "id = ? AND status = ?", id, expense.StatusPending)
		if err != nil {
			return err
		}
		if n == 0 {
			return expense.ErrStatusChanged
		}
		return tx.Approvals().Create(ctx, approval)
	})
}
