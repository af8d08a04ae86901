package expense

import "time"

type Expense struct {
	ID          int64      `gorm:"primaryKey"`
	ProjectID   int64      `gorm:"column:project_id;not null;index"`
	EmployeeID  int64      `gorm:"column:employee_id;not null;index"`
	Amount      int64      `gorm:"column:amount;not null"`
	Currency    string     `gorm:"column:currency;size:3;not null"`
	Description string     `gorm:"column:description;not null"`
	ExpenseDate time.Time  `gorm:"column:expense_date;not null"`
	Status      string     `gorm:"column:status;size:16;not null;default:PENDING;index"`
	DecidedAt   *time.Time `gorm:"column:decided_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Expense) TableName() string {
	return "expenses"
}
