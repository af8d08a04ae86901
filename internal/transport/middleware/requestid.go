package middleware

import (
	"net/http"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/frahmantamala/expensehub/pkg/logger"
	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
)

// RequestID tags the request with chi's request id and a trace id that is
// taken from X-Trace-ID when the caller sent one.
func RequestID(next http.Handler) http.Handler {
	return middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}
		reqID := middleware.GetReqID(r.Context())

		ctx := internal.ContextWithRequestID(r.Context(), reqID)
		ctx = logger.With(ctx, "request_id", reqID, "trace_id", traceID)

		w.Header().Set("X-Trace-ID", traceID)
		w.Header().Set(middleware.RequestIDHeader, reqID)

		next.ServeHTTP(w, r.WithContext(ctx))
	}))
}
