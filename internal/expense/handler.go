package expense

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/frahmantamala/expensehub/internal/core/common/validation"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"github.com/frahmantamala/expensehub/internal/transport"
	"github.com/frahmantamala/expensehub/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, scope tenant.Scope, dto CreateExpenseDTO) (*Expense, error)
	List(ctx context.Context, scope tenant.Scope, filter Filter) ([]*Expense, int64, error)
	Get(ctx context.Context, scope tenant.Scope, id int64) (*Expense, error)
	Update(ctx context.Context, scope tenant.Scope, id int64, dto UpdateExpenseDTO) (*Expense, error)
	Delete(ctx context.Context, scope tenant.Scope, id int64) error
	Decide(ctx context.Context, scope tenant.Scope, id int64, dto DecideDTO) (*Expense, error)
	ExportRows(ctx context.Context, scope tenant.Scope, filter Filter) ([]*Expense, error)
	OpenReceipt(ctx context.Context, scope tenant.Scope, receiptID int64) (*Receipt, io.ReadCloser, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.Scope(w, r)
	if !ok {
		return
	}

	var dto CreateExpenseDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	e, err := h.Service.Create(r.Context(), scope, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, e, "expense submitted")
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.Scope(w, r)
	if !ok {
		return
	}

	filter, appErr := parseFilter(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	page := transport.ParsePagination(r)
	filter.Limit = page.PageSize
	filter.Offset = page.Offset()

	items, total, err := h.Service.List(r.Context(), scope, filter)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, transport.NewPage(items, total, page), "")
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.Scope(w, r)
	if !ok {
		return
	}
	id, appErr := h.URLParamID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	e, err := h.Service.Get(r.Context(), scope, id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, e, "")
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.Scope(w, r)
	if !ok {
		return
	}
	id, appErr := h.URLParamID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	var dto UpdateExpenseDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	e, err := h.Service.Update(r.Context(), scope, id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, e, "expense updated")
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.Scope(w, r)
	if !ok {
		return
	}
	id, appErr := h.URLParamID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.Service.Delete(r.Context(), scope, id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, nil, "expense deleted")
}

func (h *Handler) DecideExpense(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.Scope(w, r)
	if !ok {
		return
	}
	id, appErr := h.URLParamID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	var dto DecideDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	e, err := h.Service.Decide(r.Context(), scope, id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, e, "expense "+e.Status)
}

// ExportExpenses renders the filtered list as xlsx (default), csv or pdf.
func (h *Handler) ExportExpenses(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.Scope(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = FormatXLSX
	}
	contentType, known := ContentType(format)
	if !known {
		h.WriteAppError(w, internal.NewValidationFieldError("format", "format must be one of: xlsx csv pdf", internal.ErrCodeValidationFailed))
		return
	}

	filter, appErr := parseFilter(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	rows, err := h.Service.ExportRows(r.Context(), scope, filter)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := Export(&buf, format, rows); err != nil {
		h.HandleServiceError(w, r, internal.NewInternalError("failed to render export", err))
		return
	}

	logger.From(r.Context()).Info("expenses exported", "format", format, "rows", len(rows))
	filename := fmt.Sprintf("expenses-%s.%s", time.Now().UTC().Format("20060102"), format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) DownloadReceipt(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.Scope(w, r)
	if !ok {
		return
	}
	id, appErr := h.URLParamID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	receipt, body, err := h.Service.OpenReceipt(r.Context(), scope, id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", receipt.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", path.Base(receipt.Key)))
	if receipt.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(receipt.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		logger.From(r.Context()).Warn("receipt download interrupted", "receipt_id", id, "error", err)
	}
}

func parseFilter(r *http.Request) (Filter, *internal.AppError) {
	q := r.URL.Query()
	var f Filter

	switch status := q.Get("status"); status {
	case "":
	case StatusPending, StatusApproved, StatusRejected, StatusEscalated:
		f.Status = status
	default:
		return f, internal.NewValidationFieldError("status", "status must be one of: PENDING APPROVED REJECTED ESCALATED", internal.ErrCodeValidationFailed)
	}

	if raw := q.Get("projectId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return f, internal.NewValidationFieldError("projectId", "projectId must be a positive integer", internal.ErrCodeInvalidID)
		}
		f.ProjectID = id
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		d, err := time.Parse(validation.DateLayout, raw)
		if err != nil {
			return f, internal.NewValidationFieldError(p.name, p.name+" must be a date formatted as 2006-01-02", internal.ErrCodeInvalidDate)
		}
		*p.dst = &d
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, internal.NewValidationFieldError("to", "to must not be before from", internal.ErrCodeInvalidDate)
	}
	return f, nil
}
