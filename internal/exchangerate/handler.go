package exchangerate

import (
	"context"
	"net/http"

	"github.com/frahmantamala/expensehub/internal/tenant"
	"github.com/frahmantamala/expensehub/internal/transport"
)

type ServiceAPI interface {
	Capture(ctx context.Context, scope tenant.Scope, dto CaptureRatesDTO) (*Snapshot, error)
	Latest(ctx context.Context, scope tenant.Scope) (*Snapshot, error)
	List(ctx context.Context, scope tenant.Scope, limit, offset int) ([]*Snapshot, int64, error)
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

func (h *Handler) CaptureRates(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.Scope(w, r)
	if !ok {
		return
	}

	var dto CaptureRatesDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	snap, err := h.Service.Capture(r.Context(), scope, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, snap, "exchange rates captured")
}

func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.Scope(w, r)
	if !ok {
		return
	}

	page := transport.ParsePagination(r)
	snaps, total, err := h.Service.List(r.Context(), scope, page.PageSize, page.Offset())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, transport.NewPage(snaps, total, page), "")
}

func (h *Handler) LatestSnapshot(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.Scope(w, r)
	if !ok {
		return
	}

	snap, err := h.Service.Latest(r.Context(), scope)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, snap, "")
}
