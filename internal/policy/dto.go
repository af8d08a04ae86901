package policy

// UpdatePolicyDTO replaces the whole policy; omitted optional fields are cleared.
type UpdatePolicyDTO struct {
	ApprovalType          string `json:"approvalType" validate:"required,oneof=MAJORITY PERCENTAGE"`
	ThresholdPercent      *int   `json:"thresholdPercent" validate:"omitempty,min=1,max=100"`
	EmployeeSpendingCap   *int64 `json:"employeeSpendingCap" validate:"omitempty,min=1"`
	LargeExpenseThreshold *int64 `json:"largeExpenseThreshold" validate:"omitempty,min=1"`
	RequireCeoForLarge    bool   `json:"requireCeoForLarge"`
}

func (d UpdatePolicyDTO) ToPolicy() *Policy {
	p := &Policy{
		ApprovalType:          d.ApprovalType,
		ThresholdPercent:      d.ThresholdPercent,
		EmployeeSpendingCap:   d.EmployeeSpendingCap,
		LargeExpenseThreshold: d.LargeExpenseThreshold,
		RequireCeoForLarge:    d.RequireCeoForLarge,
	}
	if p.ApprovalType != ApprovalTypePercentage {
		p.ThresholdPercent = nil
	}
	return p
}
