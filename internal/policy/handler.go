package policy

import (
	"context"
	"net/http"

	"github.com/frahmantamala/expensehub/internal/tenant"
	"github.com/frahmantamala/expensehub/internal/transport"
)

type ServiceAPI interface {
	Get(ctx context.Context, scope tenant.Scope) (*Policy, error)
	Update(ctx context.Context, scope tenant.Scope, dto UpdatePolicyDTO) (*Policy, error)
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

func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.Scope(w, r)
	if !ok {
		return
	}

	p, err := h.Service.Get(r.Context(), scope)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, p, "")
}

func (h *Handler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.Scope(w, r)
	if !ok {
		return
	}

	var dto UpdatePolicyDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	p, err := h.Service.Update(r.Context(), scope, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, p, "approval policy updated")
}
