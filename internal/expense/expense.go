package expense

import (
	"time"

	approvalDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/approval"
	expenseDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/expense"
	receiptDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/receipt"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusEscalated = "ESCALATED"
)

const (
	DecisionApprove = "APPROVE"
	DecisionReject  = "REJECT"
)

type Expense struct {
	ID          int64      `json:"id"`
	ProjectID   int64      `json:"projectId"`
	EmployeeID  int64      `json:"employeeId"`
	Amount      int64      `json:"amount"`
	Currency    string     `json:"currency"`
	Description string     `json:"description"`
	ExpenseDate time.Time  `json:"expenseDate"`
	Status      string     `json:"status"`
	DecidedAt   *time.Time `json:"decidedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Receipts    []Receipt  `json:"receipts,omitempty"`
	Approvals   []Approval `json:"approvals,omitempty"`
}

type Receipt struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	MimeType  string    `json:"mimeType"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

type Approval struct {
	ID        int64     `json:"id"`
	ManagerID int64     `json:"managerId"`
	Decision  string    `json:"decision"`
	Note      string    `json:"note,omitempty"`
	DecidedAt time.Time `json:"decidedAt"`
}

// Filter narrows List and Export. Zero values are ignored.
type Filter struct {
	Status     string
	ProjectID  int64
	EmployeeID int64
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// Editable reports whether the submitter may still change or withdraw the expense.
func (e *Expense) Editable() bool {
	return e.Status == StatusPending
}

func FromDataModel(row *expenseDatamodel.Expense) *Expense {
	return &Expense{
		ID:          row.ID,
		ProjectID:   row.ProjectID,
		EmployeeID:  row.EmployeeID,
		Amount:      row.Amount,
		Currency:    row.Currency,
		Description: row.Description,
		ExpenseDate: row.ExpenseDate,
		Status:      row.Status,
		DecidedAt:   row.DecidedAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func ReceiptFromDataModel(row *receiptDatamodel.ReceiptFile) Receipt {
	return Receipt{
		ID:        row.ID,
		Key:       row.StorageKey,
		URL:       row.URL,
		MimeType:  row.MimeType,
		Size:      row.SizeBytes,
		CreatedAt: row.CreatedAt,
	}
}

func ApprovalFromDataModel(row *approvalDatamodel.Approval) Approval {
	return Approval{
		ID:        row.ID,
		ManagerID: row.ManagerID,
		Decision:  row.Decision,
		Note:      row.Note,
		DecidedAt: row.DecidedAt,
	}
}
