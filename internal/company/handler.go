package company

import (
	"context"
	"net/http"

	"github.com/frahmantamala/expensehub/internal/tenant"
	"github.com/frahmantamala/expensehub/internal/transport"
)

type ServiceAPI interface {
	Onboard(ctx context.Context, dto CreateCompanyDTO) (*Onboarded, error)
	Get(ctx context.Context, scope tenant.Scope) (*Company, error)
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

func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var dto CreateCompanyDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	out, err := h.Service.Onboard(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, out, "company created")
}

func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.Scope(w, r)
	if !ok {
		return
	}

	c, err := h.Service.Get(r.Context(), scope)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, c, "")
}
