// Package datamodel lists the persisted row types.
package datamodel

import (
	"github.com/frahmantamala/expensehub/internal/core/datamodel/approval"
	"github.com/frahmantamala/expensehub/internal/core/datamodel/audit"
	"github.com/frahmantamala/expensehub/internal/core/datamodel/company"
	"github.com/frahmantamala/expensehub/internal/core/datamodel/exchangerate"
	"github.com/frahmantamala/expensehub/internal/core/datamodel/expense"
	"github.com/frahmantamala/expensehub/internal/core/datamodel/membership"
	"github.com/frahmantamala/expensehub/internal/core/datamodel/policy"
	"github.com/frahmantamala/expensehub/internal/core/datamodel/project"
	"github.com/frahmantamala/expensehub/internal/core/datamodel/receipt"
	"github.com/frahmantamala/expensehub/internal/core/datamodel/user"
)

// Models is the AutoMigrate set used by tests; production schema lives in db/migrations.
func Models() []any {
	return []any{
		&company.Company{},
		&user.User{},
		&membership.Membership{},
		&project.Project{},
		&expense.Expense{},
		&receipt.ReceiptFile{},
		&approval.Approval{},
		&policy.ApprovalPolicy{},
		&exchangerate.Snapshot{},
		&audit.AuditLog{},
	}
}
