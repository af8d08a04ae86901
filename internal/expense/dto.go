package expense

import (
	"strings"
	"time"

	"github.com/frahmantamala/expensehub/internal/core/common/validation"
)

type ReceiptDTO struct {
	Key      string `json:"key" validate:"required,max=255"`
	MimeType string `json:"mimeType" validate:"required"`
	Size     int64  `json:"size" validate:"gte=0"`
}

// CreateExpenseDTO is the submission body. Amount is in minor units, so a
// fractional or quoted JSON value fails to decode into it.
type CreateExpenseDTO struct {
	ProjectID   int64        `json:"projectId" validate:"required,gt=0"`
	Amount      int64        `json:"amount" validate:"gt=0"`
	Currency    string       `json:"currency" validate:"required,iso4217"`
	Description string       `json:"description" validate:"required,max=500"`
	ExpenseDate string       `json:"expenseDate" validate:"required,datetime=2006-01-02,notfuture"`
	Receipts    []ReceiptDTO `json:"receipts" validate:"max=10,dive"`
}

func (dto *CreateExpenseDTO) Normalize() {
	dto.Currency = strings.ToUpper(strings.TrimSpace(dto.Currency))
	dto.Description = strings.TrimSpace(dto.Description)
	dto.ExpenseDate = strings.TrimSpace(dto.ExpenseDate)
	for i := range dto.Receipts {
		dto.Receipts[i].Key = strings.TrimSpace(dto.Receipts[i].Key)
		dto.Receipts[i].MimeType = strings.ToLower(strings.TrimSpace(dto.Receipts[i].MimeType))
	}
}

// Date parses ExpenseDate; call it only after validation.
func (dto CreateExpenseDTO) Date() time.Time {
	d, _ := time.Parse(validation.DateLayout, dto.ExpenseDate)
	return d
}

// UpdateExpenseDTO changes only the fields that are present.
type UpdateExpenseDTO struct {
	ProjectID   *int64  `json:"projectId" validate:"omitempty,gt=0"`
	Amount      *int64  `json:"amount" validate:"omitempty,gt=0"`
	Currency    *string `json:"currency" validate:"omitempty,iso4217"`
	Description *string `json:"description" validate:"omitempty,min=1,max=500"`
	ExpenseDate *string `json:"expenseDate" validate:"omitempty,datetime=2006-01-02,notfuture"`
}

func (dto *UpdateExpenseDTO) Normalize() {
	if dto.Currency != nil {
		c := strings.ToUpper(strings.TrimSpace(*dto.Currency))
		dto.Currency = &c
	}
	if dto.Description != nil {
		d := strings.TrimSpace(*dto.Description)
		dto.Description = &d
	}
	if dto.ExpenseDate != nil {
		d := strings.TrimSpace(*dto.ExpenseDate)
		dto.ExpenseDate = &d
	}
}

func (dto UpdateExpenseDTO) Values() map[string]any {
	values := map[string]any{}
	if dto.ProjectID != nil {
		values["project_id"] = *dto.ProjectID
	}
	if dto.Amount != nil {
		values["amount"] = *dto.Amount
	}
	if dto.Currency != nil {
		values["currency"] = *dto.Currency
	}
	if dto.Description != nil {
		values["description"] = *dto.Description
	}
	if dto.ExpenseDate != nil {
		d, _ := time.Parse(validation.DateLayout, *dto.ExpenseDate)
		values["expense_date"] = d
	}
	return values
}

type DecideDTO struct {
	Decision string `json:"decision" validate:"required,oneof=APPROVE REJECT"`
	Note     string `json:"note" validate:"max=1000"`
}

func (dto *DecideDTO) Normalize() {
	dto.Decision = strings.ToUpper(strings.TrimSpace(dto.Decision))
	dto.Note = strings.TrimSpace(dto.Note)
}
