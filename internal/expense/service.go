package expense

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/frahmantamala/expensehub/internal/audit"
	"github.com/frahmantamala/expensehub/internal/core/common/validation"
	approvalDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/approval"
	expenseDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/expense"
	receiptDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/receipt"
	"github.com/frahmantamala/expensehub/internal/core/events"
	"github.com/frahmantamala/expensehub/internal/policy"
	"github.com/frahmantamala/expensehub/internal/project"
	"github.com/frahmantamala/expensehub/internal/storage"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"gorm.io/gorm"
)

// MaxExportRows bounds a single export.
const MaxExportRows = 10000

var (
	// ErrStatusChanged is returned by the repository when a conditional
	// write matched no PENDING row.
	ErrStatusChanged = errors.New("expense is no longer pending")
)

type RepositoryAPI interface {
	List(ctx context.Context, scope tenant.Scope, filter Filter) ([]expenseDatamodel.Expense, int64, error)
	GetByID(ctx context.Context, scope tenant.Scope, id int64) (*expenseDatamodel.Expense, error)
	Receipts(ctx context.Context, scope tenant.Scope, expenseID int64) ([]receiptDatamodel.ReceiptFile, error)
	Approvals(ctx context.Context, scope tenant.Scope, expenseID int64) ([]approvalDatamodel.Approval, error)
	GetReceipt(ctx context.Context, scope tenant.Scope, id int64) (*receiptDatamodel.ReceiptFile, error)
	Create(ctx context.Context, scope tenant.Scope, row *expenseDatamodel.Expense, receipts []receiptDatamodel.ReceiptFile) error
	UpdatePending(ctx context.Context, scope tenant.Scope, id int64, values map[string]any) error
	DeletePending(ctx context.Context, scope tenant.Scope, id int64) ([]string, error)
	Decide(ctx context.Context, scope tenant.Scope, id int64, status string, approval *approvalDatamodel.Approval) error
}

type ProjectLookup interface {
	Get(ctx context.Context, scope tenant.Scope, id int64) (*project.Project, error)
}

type PolicyLookup interface {
	Get(ctx context.Context, scope tenant.Scope) (*policy.Policy, error)
}

type ReceiptStore interface {
	Open(key string) (io.ReadCloser, error)
	Delete(key string) error
	Stat(key string) (int64, error)
	URL(key string) string
}

type AuditRecorder interface {
	Record(ctx context.Context, scope tenant.Scope, e audit.Entry)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo     RepositoryAPI
	projects ProjectLookup
	policies PolicyLookup
	store    ReceiptStore
	audit    AuditRecorder
	events   EventPublisher
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, projects ProjectLookup, policies PolicyLookup, store ReceiptStore, auditor AuditRecorder, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		projects: projects,
		policies: policies,
		store:    store,
		audit:    auditor,
		events:   publisher,
		logger:   logger,
	}
}

// Create submits a PENDING expense with its receipts in one transaction.
func (s *Service) Create(ctx context.Context, scope tenant.Scope, dto CreateExpenseDTO) (*Expense, error) {
	dto.Normalize()
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	if err := s.checkProject(ctx, scope, dto.ProjectID); err != nil {
		return nil, err
	}
	if err := s.checkCap(ctx, scope, dto.Amount); err != nil {
		return nil, err
	}

	receipts, err := s.receiptRows(scope, dto.Receipts)
	if err != nil {
		return nil, err
	}

	row := &expenseDatamodel.Expense{
		ProjectID:   dto.ProjectID,
		Amount:      dto.Amount,
		Currency:    dto.Currency,
		Description: dto.Description,
		ExpenseDate: dto.Date(),
		Status:      StatusPending,
	}
	if err := s.repo.Create(ctx, scope, row, receipts); err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return nil, internal.ErrProjectNotFound
		}
		return nil, s.mapError(err, "failed to create expense")
	}

	s.logger.Info("expense created",
		"expense_id", row.ID,
		"company_id", scope.CompanyID,
		"employee_id", row.EmployeeID,
		"amount", row.Amount,
		"currency", row.Currency)

	s.audit.Record(ctx, scope, audit.Entry{
		Action:     audit.ActionExpenseCreate,
		EntityType: audit.EntityExpense,
		EntityID:   row.ID,
		Metadata: map[string]any{
			"projectId": row.ProjectID,
			"amount":    row.Amount,
			"currency":  row.Currency,
			"receipts":  len(receipts),
		},
	})
	s.publish(ctx, events.NewExpenseCreatedEvent(scope.CompanyID, row.ID, row.EmployeeID, row.Amount, row.Currency, row.Description))

	e := FromDataModel(row)
	for i := range receipts {
		e.Receipts = append(e.Receipts, ReceiptFromDataModel(&receipts[i]))
	}
	return e, nil
}

// List returns one page. Employees only ever see their own expenses.
func (s *Service) List(ctx context.Context, scope tenant.Scope, filter Filter) ([]*Expense, int64, error) {
	if !scope.Role.CanDecide() {
		filter.EmployeeID = scope.UserID
	}

	rows, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		s.logger.Error("failed to list expenses", "company_id", scope.CompanyID, "error", err)
		return nil, 0, internal.NewInternalError("failed to list expenses", err)
	}

	out := make([]*Expense, 0, len(rows))
	for i := range rows {
		out = append(out, FromDataModel(&rows[i]))
	}
	return out, total, nil
}

// Get returns the expense with its receipts and decision history.
func (s *Service) Get(ctx context.Context, scope tenant.Scope, id int64) (*Expense, error) {
	row, err := s.visible(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	e := FromDataModel(row)

	receipts, err := s.repo.Receipts(ctx, scope, id)
	if err != nil {
		return nil, s.mapError(err, "failed to load receipts")
	}
	for i := range receipts {
		e.Receipts = append(e.Receipts, ReceiptFromDataModel(&receipts[i]))
	}

	approvals, err := s.repo.Approvals(ctx, scope, id)
	if err != nil {
		return nil, s.mapError(err, "failed to load approvals")
	}
	for i := range approvals {
		e.Approvals = append(e.Approvals, ApprovalFromDataModel(&approvals[i]))
	}
	return e, nil
}

// Update lets the submitter change a PENDING expense.
func (s *Service) Update(ctx context.Context, scope tenant.Scope, id int64, dto UpdateExpenseDTO) (*Expense, error) {
	dto.Normalize()
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	row, err := s.owned(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if dto.ProjectID != nil && *dto.ProjectID != row.ProjectID {
		if err := s.checkProject(ctx, scope, *dto.ProjectID); err != nil {
			return nil, err
		}
	}
	amount := row.Amount
	if dto.Amount != nil {
		amount = *dto.Amount
	}
	if err := s.checkCap(ctx, scope, amount); err != nil {
		return nil, err
	}

	values := dto.Values()
	if len(values) > 0 {
		if err := s.repo.UpdatePending(ctx, scope, id, values); err != nil {
			switch {
			case errors.Is(err, tenant.ErrNotFound):
				return nil, internal.ErrProjectNotFound
			case errors.Is(err, ErrStatusChanged):
				return nil, internal.ErrCannotModifyExpense
			}
			return nil, s.mapError(err, "failed to update expense")
		}
		s.audit.Record(ctx, scope, audit.Entry{
			Action:     audit.ActionExpenseUpdate,
			EntityType: audit.EntityExpense,
			EntityID:   id,
			Metadata:   values,
		})
	}

	return s.Get(ctx, scope, id)
}

// Delete withdraws a PENDING expense together with its receipt files.
func (s *Service) Delete(ctx context.Context, scope tenant.Scope, id int64) error {
	row, err := s.owned(ctx, scope, id)
	if err != nil {
		return err
	}

	keys, err := s.repo.DeletePending(ctx, scope, id)
	if err != nil {
		if errors.Is(err, ErrStatusChanged) {
			return internal.ErrCannotModifyExpense
		}
		return s.mapError(err, "failed to delete expense")
	}
	for _, key := range keys {
		if err := s.store.Delete(key); err != nil {
			s.logger.Warn("failed to remove receipt object", "key", key, "error", err)
		}
	}

	s.logger.Info("expense deleted", "expense_id", id, "company_id", scope.CompanyID)
	s.audit.Record(ctx, scope, audit.Entry{
		Action:     audit.ActionExpenseDelete,
		EntityType: audit.EntityExpense,
		EntityID:   id,
		Metadata:   map[string]any{"amount": row.Amount, "currency": row.Currency, "receipts": len(keys)},
	})
	return nil
}

// Decide approves or rejects a PENDING expense. The status change and the
// Approval row commit together; the audit entry and event follow.
func (s *Service) Decide(ctx context.Context, scope tenant.Scope, id int64, dto DecideDTO) (*Expense, error) {
	dto.Normalize()
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	if !scope.Role.CanDecide() {
		return nil, internal.ErrInsufficientRole
	}

	row, err := s.repo.GetByID(ctx, scope, id)
	if err != nil {
		return nil, s.mapError(err, "failed to get expense")
	}

	next, err := NextStatus(ctx, row.Status, dto.Decision)
	if err != nil {
		s.logger.Warn("decision on settled expense", "expense_id", id, "status", row.Status, "decision", dto.Decision)
		return nil, err
	}

	pol, err := s.policies.Get(ctx, scope)
	if err != nil {
		return nil, err
	}
	if pol.RequiresAdmin(row.Amount) && !scope.Role.IsAdmin() {
		return nil, internal.ErrElevatedApproval
	}

	approval := &approvalDatamodel.Approval{
		ExpenseID: id,
		Decision:  dto.Decision,
		Note:      dto.Note,
		DecidedAt: time.Now().UTC(),
	}
	if err := s.repo.Decide(ctx, scope, id, next, approval); err != nil {
		return nil, s.mapError(err, "failed to record decision")
	}

	s.logger.Info("expense decided",
		"expense_id", id,
		"manager_id", scope.UserID,
		"decision", dto.Decision,
		"status", next)

	action := audit.ActionExpenseApprove
	if dto.Decision == DecisionReject {
		action = audit.ActionExpenseReject
	}
	s.audit.Record(ctx, scope, audit.Entry{
		Action:     action,
		EntityType: audit.EntityExpense,
		EntityID:   id,
		Metadata: map[string]any{
			"from":     row.Status,
			"to":       next,
			"amount":   row.Amount,
			"currency": row.Currency,
			"note":     dto.Note,
		},
	})
	s.publish(ctx, events.NewExpenseDecidedEvent(scope.CompanyID, id, row.EmployeeID, scope.UserID, row.Amount, row.Currency, next, dto.Note))

	return s.Get(ctx, scope, id)
}

// ExportRows returns every expense matching filter, up to MaxExportRows.
func (s *Service) ExportRows(ctx context.Context, scope tenant.Scope, filter Filter) ([]*Expense, error) {
	filter.Limit = MaxExportRows
	filter.Offset = 0
	rows, _, err := s.List(ctx, scope, filter)
	return rows, err
}

// OpenReceipt streams a receipt file the caller is allowed to see.
func (s *Service) OpenReceipt(ctx context.Context, scope tenant.Scope, receiptID int64) (*Receipt, io.ReadCloser, error) {
	row, err := s.repo.GetReceipt(ctx, scope, receiptID)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return nil, nil, internal.ErrReceiptNotFound
		}
		return nil, nil, s.mapError(err, "failed to get receipt")
	}
	if _, err := s.visible(ctx, scope, row.ExpenseID); err != nil {
		if errors.Is(err, internal.ErrExpenseNotFound) {
			return nil, nil, internal.ErrReceiptNotFound
		}
		return nil, nil, err
	}

	f, err := s.store.Open(row.StorageKey)
	if err != nil {
		s.logger.Error("receipt object missing", "receipt_id", receiptID, "key", row.StorageKey, "error", err)
		return nil, nil, internal.ErrReceiptNotFound.WithCause(err)
	}
	r := ReceiptFromDataModel(row)
	return &r, f, nil
}

// visible hides other employees' expenses from employees.
func (s *Service) visible(ctx context.Context, scope tenant.Scope, id int64) (*expenseDatamodel.Expense, error) {
	row, err := s.repo.GetByID(ctx, scope, id)
	if err != nil {
		return nil, s.mapError(err, "failed to get expense")
	}
	if !scope.Role.CanDecide() && row.EmployeeID != scope.UserID {
		return nil, internal.ErrExpenseNotFound
	}
	return row, nil
}

func (s *Service) owned(ctx context.Context, scope tenant.Scope, id int64) (*expenseDatamodel.Expense, error) {
	row, err := s.visible(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if row.EmployeeID != scope.UserID {
		return nil, internal.ErrNotExpenseOwner
	}
	if row.Status != StatusPending {
		return nil, internal.ErrCannotModifyExpense
	}
	return row, nil
}

func (s *Service) checkProject(ctx context.Context, scope tenant.Scope, projectID int64) error {
	p, err := s.projects.Get(ctx, scope, projectID)
	if err != nil {
		return err
	}
	if !p.IsActive {
		return internal.ErrProjectInactive
	}
	return nil
}

func (s *Service) checkCap(ctx context.Context, scope tenant.Scope, amount int64) error {
	pol, err := s.policies.Get(ctx, scope)
	if err != nil {
		return err
	}
	if pol.ExceedsCap(amount) {
		return internal.ErrSpendingCapExceeded.WithDetails(map[string]any{
			"amount": amount,
			"cap":    *pol.EmployeeSpendingCap,
		})
	}
	return nil
}

// receiptRows accepts only keys the upload signer issued for this company
// whose objects were actually uploaded.
func (s *Service) receiptRows(scope tenant.Scope, in []ReceiptDTO) ([]receiptDatamodel.ReceiptFile, error) {
	seen := make(map[string]bool, len(in))
	rows := make([]receiptDatamodel.ReceiptFile, 0, len(in))
	for _, r := range in {
		if seen[r.Key] || !storage.OwnsKey(scope.CompanyID, r.Key) || !storage.AllowedType(r.MimeType) {
			return nil, internal.ErrInvalidReceipt.WithDetails(map[string]any{"key": r.Key})
		}
		seen[r.Key] = true

		size, err := s.store.Stat(r.Key)
		if err != nil {
			s.logger.Warn("receipt object not uploaded", "key", r.Key, "error", err)
			return nil, internal.ErrInvalidReceipt.WithDetails(map[string]any{"key": r.Key})
		}
		rows = append(rows, receiptDatamodel.ReceiptFile{
			StorageKey: r.Key,
			URL:        s.store.URL(r.Key),
			MimeType:   r.MimeType,
			SizeBytes:  size,
		})
	}
	return rows, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

func (s *Service) mapError(err error, msg string) error {
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, tenant.ErrNotFound):
		return internal.ErrExpenseNotFound
	case errors.Is(err, ErrStatusChanged):
		return internal.ErrInvalidExpenseStatus
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return internal.ErrInvalidReceipt
	}
	s.logger.Error(msg, "error", err)
	return internal.NewInternalError(msg, err)
}
