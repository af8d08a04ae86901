package report

import (
	"context"
	"net/http"
	"time"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/frahmantamala/expensehub/internal/core/common/validation"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"github.com/frahmantamala/expensehub/internal/transport"
)

type ServiceAPI interface {
	Summary(ctx context.Context, scope tenant.Scope, filter Filter) (*Summary, error)
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

// GetSummary handles GET /reports/summary?status=&from=&to=
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.Scope(w, r)
	if !ok {
		return
	}

	filter, appErr := parseFilter(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	summary, err := h.Service.Summary(r.Context(), scope, filter)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, summary, "")
}

func parseFilter(r *http.Request) (Filter, *internal.AppError) {
	q := r.URL.Query()
	f := Filter{Status: q.Get("status")}

	switch f.Status {
	case "", "PENDING", "APPROVED", "REJECTED", "ESCALATED":
	default:
		return f, internal.NewValidationFieldError("status", "status must be one of: PENDING APPROVED REJECTED ESCALATED", internal.ErrCodeValidationFailed)
	}

	if raw := q.Get("from"); raw != "" {
		d, err := time.Parse(validation.DateLayout, raw)
		if err != nil {
			return f, internal.NewValidationFieldError("from", "from must be a date formatted as 2006-01-02", internal.ErrCodeInvalidDate)
		}
		f.From = &d
	}
	if raw := q.Get("to"); raw != "" {
		d, err := time.Parse(validation.DateLayout, raw)
		if err != nil {
			return f, internal.NewValidationFieldError("to", "to must be a date formatted as 2006-01-02", internal.ErrCodeInvalidDate)
		}
		f.To = &d
	}
	return f, nil
}
