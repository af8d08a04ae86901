package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/frahmantamala/expensehub/internal/transport"
	"github.com/frahmantamala/expensehub/pkg/logger"
	"github.com/getsentry/sentry-go"
)

// RecoveryMiddleware turns a panic into a 500 envelope and forwards it to
// Sentry. Without a configured DSN the Sentry hub drops the event.
func RecoveryMiddleware(base *transport.BaseHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hub := sentry.GetHubFromContext(r.Context())
			if hub == nil {
				hub = sentry.CurrentHub().Clone()
				r = r.WithContext(sentry.SetHubOnContext(r.Context(), hub))
			}
			hub.Scope().SetRequest(r)
			if id := internal.RequestIDFromContext(r.Context()); id != "" {
				hub.Scope().SetTag("request_id", id)
			}

			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.From(r.Context()).Error("panic recovered",
						"error", rec,
						"method", r.Method,
						"url", r.URL.String(),
						"stack", string(debug.Stack()))
					hub.RecoverWithContext(r.Context(), rec)

					base.WriteJSON(w, http.StatusInternalServerError, transport.InternalErrorResponse(r))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// ReportServerErrors is installed as BaseHandler.OnServerError and sends
// errors that became a 500 to Sentry.
func ReportServerErrors(err error, r *http.Request) {
	appErr, ok := internal.IsAppError(err)
	if ok && appErr.StatusCode < http.StatusInternalServerError {
		return
	}
	if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
		hub.CaptureException(err)
	}
}
