package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeBusinessRule ErrorType = "BUSINESS_RULE"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidBody        ErrorCode = "INVALID_BODY"
	ErrCodeInvalidID          ErrorCode = "INVALID_ID"
	ErrCodeInvalidAmount      ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidCurrency    ErrorCode = "INVALID_CURRENCY"
	ErrCodeInvalidDescription ErrorCode = "INVALID_DESCRIPTION"
	ErrCodeInvalidDate        ErrorCode = "INVALID_DATE"

	ErrCodeExpenseNotFound      ErrorCode = "EXPENSE_NOT_FOUND"
	ErrCodeInvalidExpenseStatus ErrorCode = "INVALID_EXPENSE_STATUS"
	ErrCodeCannotModifyExpense  ErrorCode = "CANNOT_MODIFY_EXPENSE"
	ErrCodeNotExpenseOwner      ErrorCode = "NOT_EXPENSE_OWNER"
	ErrCodeSpendingCapExceeded  ErrorCode = "SPENDING_CAP_EXCEEDED"
	ErrCodeElevatedApproval     ErrorCode = "ELEVATED_APPROVAL_REQUIRED"
	ErrCodeProjectNotFound      ErrorCode = "PROJECT_NOT_FOUND"
	ErrCodeProjectInactive      ErrorCode = "PROJECT_INACTIVE"
	ErrCodeProjectHasExpenses   ErrorCode = "PROJECT_HAS_EXPENSES"
	ErrCodeProjectNameTaken     ErrorCode = "PROJECT_NAME_TAKEN"
	ErrCodeReceiptNotFound      ErrorCode = "RECEIPT_NOT_FOUND"
	ErrCodeInvalidReceipt       ErrorCode = "INVALID_RECEIPT"
	ErrCodeUploadRejected       ErrorCode = "UPLOAD_REJECTED"
	ErrCodeUploadCompleted      ErrorCode = "UPLOAD_COMPLETED"
	ErrCodeCompanyNotFound      ErrorCode = "COMPANY_NOT_FOUND"
	ErrCodeEmailTaken           ErrorCode = "EMAIL_TAKEN"
	ErrCodeMemberNotFound       ErrorCode = "MEMBER_NOT_FOUND"
	ErrCodeAlreadyMember        ErrorCode = "ALREADY_MEMBER"
	ErrCodeSelfModification     ErrorCode = "SELF_MODIFICATION"
	ErrCodeRateSnapshotNotFound ErrorCode = "RATE_SNAPSHOT_NOT_FOUND"
	ErrCodeInsufficientRole     ErrorCode = "INSUFFICIENT_ROLE"
	ErrCodeUnauthorizedAccess   ErrorCode = "UNAUTHORIZED_ACCESS"
	ErrCodeInvalidCredentials   ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive         ErrorCode = "USER_INACTIVE"
	ErrCodeNoMembership         ErrorCode = "NO_MEMBERSHIP"
	ErrCodeInvalidToken         ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired         ErrorCode = "TOKEN_EXPIRED"
	ErrCodeSessionRequired      ErrorCode = "SESSION_REQUIRED"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// GetDetailedMessage joins field messages of a validation error.
func (e *AppError) GetDetailedMessage() string {
	if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
		messages := make([]string, len(validationErrors.Errors))
		for i, err := range validationErrors.Errors {
			messages[i] = err.Message
		}
		return strings.Join(messages, "; ")
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on code so sentinel errors survive WithCause copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Type == t.Type
}

// WithCause returns a copy carrying cause; sentinels stay untouched.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// WithDetails returns a copy carrying details.
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

// NewBusinessRuleError is a 400 whose code tells the client which rule was broken.
func NewBusinessRuleError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeBusinessRule,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

var (
	ErrExpenseNotFound      = NewNotFoundError("expense not found", ErrCodeExpenseNotFound)
	ErrInvalidExpenseStatus = NewBusinessRuleError("expense is not pending", ErrCodeInvalidExpenseStatus)
	ErrCannotModifyExpense  = NewBusinessRuleError("only pending expenses can be changed", ErrCodeCannotModifyExpense)
	ErrNotExpenseOwner      = NewForbiddenError("only the submitter can change this expense", ErrCodeNotExpenseOwner)
	ErrSpendingCapExceeded  = NewBusinessRuleError("amount exceeds the employee spending cap", ErrCodeSpendingCapExceeded)
	ErrElevatedApproval     = NewForbiddenError("an admin must decide expenses above the large expense threshold", ErrCodeElevatedApproval)

	ErrProjectNotFound    = NewNotFoundError("project not found", ErrCodeProjectNotFound)
	ErrProjectInactive    = NewBusinessRuleError("project is not active", ErrCodeProjectInactive)
	ErrProjectHasExpenses = NewBusinessRuleError("project still has expenses", ErrCodeProjectHasExpenses)
	ErrProjectNameTaken   = NewConflictError("a project with this name already exists", ErrCodeProjectNameTaken)

	ErrReceiptNotFound = NewNotFoundError("receipt not found", ErrCodeReceiptNotFound)
	ErrInvalidReceipt  = NewValidationError("receipt key was not issued for this company", ErrCodeInvalidReceipt)
	ErrUploadCompleted = NewConflictError("this upload URL has already been used", ErrCodeUploadCompleted)

	ErrCompanyNotFound  = NewNotFoundError("company not found", ErrCodeCompanyNotFound)
	ErrEmailTaken       = NewConflictError("email is already registered", ErrCodeEmailTaken)
	ErrMemberNotFound   = NewNotFoundError("member not found", ErrCodeMemberNotFound)
	ErrAlreadyMember    = NewConflictError("user is already a member of this company", ErrCodeAlreadyMember)
	ErrSelfModification = NewBusinessRuleError("you cannot change or remove your own membership", ErrCodeSelfModification)

	ErrRateSnapshotNotFound = NewNotFoundError("no exchange rate snapshot", ErrCodeRateSnapshotNotFound)

	ErrInsufficientRole   = NewForbiddenError("insufficient role", ErrCodeInsufficientRole)
	ErrInvalidCredentials = NewUnauthorizedError("invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("user account is inactive", ErrCodeUserInactive)
	ErrNoMembership       = NewForbiddenError("user has no company membership", ErrCodeNoMembership)
	ErrInvalidToken       = NewUnauthorizedError("invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("token has expired", ErrCodeTokenExpired)
	ErrSessionRequired    = NewUnauthorizedError("authentication required", ErrCodeSessionRequired)
)

// IsAppError unwraps err looking for an *AppError.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
