package notification

import (
	"net/http"

	"github.com/frahmantamala/expensehub/internal/tenant"
	"github.com/frahmantamala/expensehub/internal/transport"
)

type InboxAPI interface {
	List(scope tenant.Scope) []Notification
}

type Handler struct {
	*transport.BaseHandler
	Inbox InboxAPI
}

func NewHandler(baseHandler *transport.BaseHandler, inbox InboxAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Inbox:       inbox,
	}
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.Scope(w, r)
	if !ok {
		return
	}
	h.WriteSuccess(w, http.StatusOK, h.Inbox.List(scope), "")
}
