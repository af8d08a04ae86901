package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"reflect"
	"strings"
	"sync"
	"time"

	apperrors "github.com/frahmantamala/expensehub/internal"
	"github.com/go-playground/validator/v10"
)

// DateLayout is the calendar date format accepted by date-only fields.
const DateLayout = "2006-01-02"

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
			switch v := fl.Field().Interface().(type) {
			case time.Time:
				return !v.After(time.Now())
			case string:
				// unparseable dates are left to the datetime tag
				d, err := time.Parse(DateLayout, v)
				return err != nil || !d.After(time.Now())
			}
			return true
		})
		// single-label domains such as "admin@x" are accepted, unlike the built-in email tag
		_ = validate.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
			addr, err := mail.ParseAddress(fl.Field().String())
			return err == nil && addr.Name == "" && addr.Address == fl.Field().String()
		})
	})
	return validate
}

// Struct validates v using its `validate` tags and returns a field-level
// AppError, or nil.
func Struct(v interface{}) *apperrors.AppError {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(err.Error(), apperrors.ErrCodeValidationFailed)
	}

	out := make([]apperrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fieldPath(fe)
		out = append(out, apperrors.ValidationError{
			Field:   field,
			Message: message(field, fe),
			Code:    string(code(fe)),
		})
	}
	return apperrors.NewValidationError("Validation failed", apperrors.ErrCodeValidationFailed).
		WithDetails(apperrors.ValidationErrors{Errors: out})
}

// fieldPath drops the struct name prefix: "CreateExpenseDTO.receipts[0].key" -> "receipts[0].key".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte", "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte", "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must not exceed %s", field, fe.Param())
	case "email", "mailbox":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "iso4217":
		return fmt.Sprintf("%s must be an ISO 4217 currency code", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "notfuture":
		return fmt.Sprintf("%s cannot be in the future", field)
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func code(fe validator.FieldError) apperrors.ErrorCode {
	switch {
	case fe.Field() == "amount":
		return apperrors.ErrCodeInvalidAmount
	case fe.Tag() == "iso4217":
		return apperrors.ErrCodeInvalidCurrency
	case fe.Tag() == "notfuture", fe.Tag() == "datetime":
		return apperrors.ErrCodeInvalidDate
	case fe.Field() == "description":
		return apperrors.ErrCodeInvalidDescription
	default:
		return apperrors.ErrCodeValidationFailed
	}
}
