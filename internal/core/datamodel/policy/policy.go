package policy

import "time"

type ApprovalPolicy struct {
	ID                    int64     `gorm:"primaryKey"`
	CompanyID             int64     `gorm:"column:company_id;not null;uniqueIndex"`
	ApprovalType          string    `gorm:"column:approval_type;size:16;not null;default:MAJORITY"`
	ThresholdPercent      *int      `gorm:"column:threshold_percent"`
	EmployeeSpendingCap   *int64    `gorm:"column:employee_spending_cap"`
	LargeExpenseThreshold *int64    `gorm:"column:large_expense_threshold"`
	RequireCeoForLarge    bool      `gorm:"column:require_ceo_for_large;not null;default:false"`
	UpdatedAt             time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ApprovalPolicy) TableName() string {
	return "approval_policies"
}
