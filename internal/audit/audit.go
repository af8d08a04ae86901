package audit

import (
	"time"

	auditDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/audit"
	"gorm.io/datatypes"
)

const (
	ActionCompanyCreate  = "company.create"
	ActionMemberAdd      = "member.add"
	ActionMemberUpdate   = "member.update"
	ActionMemberRemove   = "member.remove"
	ActionProjectCreate  = "project.create"
	ActionProjectUpdate  = "project.update"
	ActionProjectDelete  = "project.delete"
	ActionExpenseCreate  = "expense.create"
	ActionExpenseUpdate  = "expense.update"
	ActionExpenseDelete  = "expense.delete"
	ActionExpenseApprove = "expense.approve"
	ActionExpenseReject  = "expense.reject"
	ActionPolicyUpdate   = "policy.update"
	ActionRatesCapture   = "exchange_rate.capture"
)

const (
	EntityCompany      = "company"
	EntityMembership   = "membership"
	EntityProject      = "project"
	EntityExpense      = "expense"
	EntityPolicy       = "policy"
	EntityExchangeRate = "exchange_rate"
)

// Entry is one audit record before the tenant columns are stamped.
type Entry struct {
	Action     string
	EntityType string
	EntityID   int64
	Metadata   map[string]any
}

type Log struct {
	ID         int64          `json:"id"`
	ActorID    int64          `json:"actorId"`
	Action     string         `json:"action"`
	EntityType string         `json:"entityType"`
	EntityID   int64          `json:"entityId"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

type Filter struct {
	Action     string
	EntityType string
	EntityID   int64
	Limit      int
	Offset     int
}

func ToDataModel(e Entry) *auditDatamodel.AuditLog {
	row := &auditDatamodel.AuditLog{
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
	}
	if len(e.Metadata) > 0 {
		row.Metadata = datatypes.JSONMap(e.Metadata)
	}
	return row
}

func FromDataModel(row *auditDatamodel.AuditLog) Log {
	return Log{
		ID:         row.ID,
		ActorID:    row.ActorID,
		Action:     row.Action,
		EntityType: row.EntityType,
		EntityID:   row.EntityID,
		Metadata:   map[string]any(row.Metadata),
		CreatedAt:  row.CreatedAt,
	}
}
