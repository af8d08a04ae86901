package policy

import (
	"time"

	policyDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/policy"
)

const (
	ApprovalTypeMajority   = "MAJORITY"
	ApprovalTypePercentage = "PERCENTAGE"
)

// Policy is a company's approval configuration. ApprovalType and
// ThresholdPercent are stored for clients; a single manager decision is
// final regardless of their value.
type Policy struct {
	ApprovalType          string    `json:"approvalType"`
	ThresholdPercent      *int      `json:"thresholdPercent"`
	EmployeeSpendingCap   *int64    `json:"employeeSpendingCap"`
	LargeExpenseThreshold *int64    `json:"largeExpenseThreshold"`
	RequireCeoForLarge    bool      `json:"requireCeoForLarge"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// Default is the policy every new company starts with.
func Default() *Policy {
	return &Policy{ApprovalType: ApprovalTypeMajority}
}

// ExceedsCap reports whether amount is above the employee spending cap.
func (p *Policy) ExceedsCap(amount int64) bool {
	return p.EmployeeSpendingCap != nil && amount > *p.EmployeeSpendingCap
}

// RequiresAdmin reports whether deciding amount is reserved for admins.
func (p *Policy) RequiresAdmin(amount int64) bool {
	return p.RequireCeoForLarge && p.LargeExpenseThreshold != nil && amount > *p.LargeExpenseThreshold
}

func ToDataModel(p *Policy) *policyDatamodel.ApprovalPolicy {
	return &policyDatamodel.ApprovalPolicy{
		ApprovalType:          p.ApprovalType,
		ThresholdPercent:      p.ThresholdPercent,
		EmployeeSpendingCap:   p.EmployeeSpendingCap,
		LargeExpenseThreshold: p.LargeExpenseThreshold,
		RequireCeoForLarge:    p.RequireCeoForLarge,
	}
}

func FromDataModel(p *policyDatamodel.ApprovalPolicy) *Policy {
	return &Policy{
		ApprovalType:          p.ApprovalType,
		ThresholdPercent:      p.ThresholdPercent,
		EmployeeSpendingCap:   p.EmployeeSpendingCap,
		LargeExpenseThreshold: p.LargeExpenseThreshold,
		RequireCeoForLarge:    p.RequireCeoForLarge,
		UpdatedAt:             p.UpdatedAt,
	}
}
