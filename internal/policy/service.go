package policy

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/frahmantamala/expensehub/internal/audit"
	"github.com/frahmantamala/expensehub/internal/core/common/validation"
	policyDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/policy"
	"github.com/frahmantamala/expensehub/internal/tenant"
)

type RepositoryAPI interface {
	Get(ctx context.Context, scope tenant.Scope) (*policyDatamodel.ApprovalPolicy, error)
	Save(ctx context.Context, scope tenant.Scope, row *policyDatamodel.ApprovalPolicy) error
}

type AuditRecorder interface {
	Record(ctx context.Context, scope tenant.Scope, e audit.Entry)
}

type Service struct {
	repo   RepositoryAPI
	audit  AuditRecorder
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, auditor AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		audit:  auditor,
		logger: logger,
	}
}

// Get returns the company policy, or the default one when none was stored.
func (s *Service) Get(ctx context.Context, scope tenant.Scope) (*Policy, error) {
	row, err := s.repo.Get(ctx, scope)
	if errors.Is(err, tenant.ErrNotFound) {
		return Default(), nil
	}
	if err != nil {
		s.logger.Error("failed to load policy", "company_id", scope.CompanyID, "error", err)
		return nil, internal.NewInternalError("failed to load approval policy", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, scope tenant.Scope, dto UpdatePolicyDTO) (*Policy, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	if dto.ApprovalType == ApprovalTypePercentage && dto.ThresholdPercent == nil {
		return nil, internal.NewValidationFieldError("thresholdPercent",
			"thresholdPercent is required for PERCENTAGE approval", internal.ErrCodeValidationFailed)
	}
	if dto.RequireCeoForLarge && dto.LargeExpenseThreshold == nil {
		return nil, internal.NewValidationFieldError("largeExpenseThreshold",
			"largeExpenseThreshold is required when requireCeoForLarge is set", internal.ErrCodeValidationFailed)
	}

	p := dto.ToPolicy()
	if err := s.repo.Save(ctx, scope, ToDataModel(p)); err != nil {
		s.logger.Error("failed to save policy", "company_id", scope.CompanyID, "error", err)
		return nil, internal.NewInternalError("failed to save approval policy", err)
	}

	s.logger.Info("approval policy updated", "company_id", scope.CompanyID, "approval_type", p.ApprovalType)
	s.audit.Record(ctx, scope, audit.Entry{
		Action:     audit.ActionPolicyUpdate,
		EntityType: audit.EntityPolicy,
		EntityID:   scope.CompanyID,
		Metadata: map[string]any{
			"approvalType":          p.ApprovalType,
			"thresholdPercent":      p.ThresholdPercent,
			"employeeSpendingCap":   p.EmployeeSpendingCap,
			"largeExpenseThreshold": p.LargeExpenseThreshold,
			"requireCeoForLarge":    p.RequireCeoForLarge,
		},
	})

	return s.Get(ctx, scope)
}
