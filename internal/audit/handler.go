package audit

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"github.com/frahmantamala/expensehub/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, scope tenant.Scope, filter Filter) ([]Log, int64, error)
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

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.Scope(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page := transport.ParsePagination(r)
	filter := Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entityType"),
		Limit:      page.PageSize,
		Offset:     page.Offset(),
	}
	if raw := q.Get("entityId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.WriteAppError(w, internal.NewValidationFieldError("entityId", "entityId must be a positive integer", internal.ErrCodeInvalidID))
			return
		}
		filter.EntityID = id
	}

	logs, total, err := h.Service.List(r.Context(), scope, filter)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, transport.NewPage(logs, total, page), "")
}
