package approval

import "time"

type Approval struct {
	ID        int64     `gorm:"primaryKey"`
	ExpenseID int64     `gorm:"column:expense_id;not null;index"`
	ManagerID int64     `gorm:"column:manager_id;not null"`
	Decision  string    `gorm:"column:decision;size:16;not null"`
	Note      string    `gorm:"column:note"`
	DecidedAt time.Time `gorm:"column:decided_at;not null"`
}

func (Approval) TableName() string {
	return "approvals"
}
