// Package tenant is the only path to tenant-owned rows. A Store is bound to one
// company; every read it issues runs against a derived table that already
// excludes other companies, and every write is filtered or stamped with the
// bound company before it reaches the database.
package tenant

import (
	"context"

	approvalDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/approval"
	auditDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/audit"
	rateDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/exchangerate"
	expenseDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/expense"
	membershipDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/membership"
	policyDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/policy"
	projectDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/project"
	receiptDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/receipt"
	"gorm.io/gorm"
)

type Client struct {
	db *gorm.DB
}

func NewClient(db *gorm.DB) *Client {
	return &Client{db: db}
}

// For binds the client to scope.
func (c *Client) For(scope Scope) *Store {
	return &Store{db: c.db, scope: scope}
}

type Store struct {
	db    *gorm.DB
	scope Scope
}

func (s *Store) Scope() Scope {
	return s.scope
}

// Transaction runs fn against a Store bound to the same scope and a single DB transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	if !s.scope.Valid() {
		return ErrNoScope
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, scope: s.scope})
	})
}

func (s *Store) Projects() *Table[projectDatamodel.Project] {
	return newTable(s, s.byCompany, func(_ context.Context, row *projectDatamodel.Project) error {
		row.CompanyID = s.scope.CompanyID
		return nil
	}, "id", "company_id", "created_at")
}

func (s *Store) Memberships() *Table[membershipDatamodel.Membership] {
	return newTable(s, s.byCompany, func(_ context.Context, row *membershipDatamodel.Membership) error {
		row.CompanyID = s.scope.CompanyID
		return nil
	}, "id", "company_id", "user_id", "created_at")
}

func (s *Store) Policies() *Table[policyDatamodel.ApprovalPolicy] {
	return newTable(s, s.byCompany, func(_ context.Context, row *policyDatamodel.ApprovalPolicy) error {
		row.CompanyID = s.scope.CompanyID
		return nil
	}, "id", "company_id")
}

func (s *Store) ExchangeRates() *Table[rateDatamodel.Snapshot] {
	return newTable(s, s.byCompany, func(_ context.Context, row *rateDatamodel.Snapshot) error {
		row.CompanyID = s.scope.CompanyID
		return nil
	}, "id", "company_id")
}

func (s *Store) AuditLogs() *Table[auditDatamodel.AuditLog] {
	return newTable(s, s.byCompany, func(_ context.Context, row *auditDatamodel.AuditLog) error {
		row.CompanyID = s.scope.CompanyID
		row.ActorID = s.scope.UserID
		return nil
	}, "id", "company_id", "actor_id", "created_at")
}

// Expenses are owned through their project; creating one requires the
// project to be visible in this scope.
func (s *Store) Expenses() *Table[expenseDatamodel.Expense] {
	t := newTable(s, s.byProject, func(ctx context.Context, row *expenseDatamodel.Expense) error {
		if err := s.requireProject(ctx, row.ProjectID); err != nil {
			return err
		}
		row.EmployeeID = s.scope.UserID
		return nil
	}, "id", "employee_id", "created_at")
	t.beforeUpdate = func(ctx context.Context, values map[string]any) error {
		if projectID, ok := values["project_id"]; ok {
			id, _ := projectID.(int64)
			return s.requireProject(ctx, id)
		}
		return nil
	}
	return t
}

func (s *Store) Receipts() *Table[receiptDatamodel.ReceiptFile] {
	return newTable(s, s.byExpense, func(ctx context.Context, row *receiptDatamodel.ReceiptFile) error {
		return s.requireExpense(ctx, row.ExpenseID)
	}, "id", "expense_id", "created_at")
}

func (s *Store) Approvals() *Table[approvalDatamodel.Approval] {
	return newTable(s, s.byExpense, func(ctx context.Context, row *approvalDatamodel.Approval) error {
		if err := s.requireExpense(ctx, row.ExpenseID); err != nil {
			return err
		}
		row.ManagerID = s.scope.UserID
		return nil
	}, "id", "expense_id", "manager_id")
}

func (s *Store) requireProject(ctx context.Context, projectID int64) error {
	var p projectDatamodel.Project
	return s.Projects().First(ctx, &p, "id = ?", projectID)
}

func (s *Store) requireExpense(ctx context.Context, expenseID int64) error {
	var e expenseDatamodel.Expense
	return s.Expenses().First(ctx, &e, "id = ?", expenseID)
}

func (s *Store) byCompany(db *gorm.DB) *gorm.DB {
	return db.Where("company_id = ?", s.scope.CompanyID)
}

func (s *Store) byProject(db *gorm.DB) *gorm.DB {
	return db.Where("project_id IN (?)", s.projectIDs(db))
}

func (s *Store) byExpense(db *gorm.DB) *gorm.DB {
	expenseIDs := db.Session(&gorm.Session{NewDB: true}).
		Model(&expenseDatamodel.Expense{}).
		Select("id").
		Where("project_id IN (?)", s.projectIDs(db))
	return db.Where("expense_id IN (?)", expenseIDs)
}

func (s *Store) projectIDs(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&projectDatamodel.Project{}).
		Select("id").
		Where("company_id = ?", s.scope.CompanyID)
}
