package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeExpenseCreated = "expense.created"
	EventTypeExpenseDecided = "expense.decided"
)

type ExpenseCreatedEvent struct {
	BaseEvent
	CompanyID   int64  `json:"company_id"`
	ExpenseID   int64  `json:"expense_id"`
	EmployeeID  int64  `json:"employee_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

func NewExpenseCreatedEvent(companyID, expenseID, employeeID, amount int64, currency, description string) *ExpenseCreatedEvent {
	return &ExpenseCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeExpenseCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"company_id":  companyID,
				"expense_id":  expenseID,
				"employee_id": employeeID,
				"amount":      amount,
				"currency":    currency,
			},
		},
		CompanyID:   companyID,
		ExpenseID:   expenseID,
		EmployeeID:  employeeID,
		Amount:      amount,
		Currency:    currency,
		Description: description,
	}
}

type ExpenseDecidedEvent struct {
	BaseEvent
	CompanyID  int64  `json:"company_id"`
	ExpenseID  int64  `json:"expense_id"`
	EmployeeID int64  `json:"employee_id"`
	ManagerID  int64  `json:"manager_id"`
	Status     string `json:"status"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	Note       string `json:"note"`
}

func NewExpenseDecidedEvent(companyID, expenseID, employeeID, managerID, amount int64, currency, status, note string) *ExpenseDecidedEvent {
	return &ExpenseDecidedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeExpenseDecided,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"company_id":  companyID,
				"expense_id":  expenseID,
				"employee_id": employeeID,
				"manager_id":  managerID,
				"status":      status,
			},
		},
		CompanyID:  companyID,
		ExpenseID:  expenseID,
		EmployeeID: employeeID,
		ManagerID:  managerID,
		Status:     status,
		Amount:     amount,
		Currency:   currency,
		Note:       note,
	}
}
