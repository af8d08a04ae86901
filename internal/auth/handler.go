package auth

import (
	"net/http"
	"time"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"github.com/frahmantamala/expensehub/internal/transport"
	"github.com/frahmantamala/expensehub/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service      ServiceAPI
	CookieSecure bool
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI, cookieSecure bool) *Handler {
	return &Handler{
		BaseHandler:  baseHandler,
		Service:      svc,
		CookieSecure: cookieSecure,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	session, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(h.Service.SessionTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	h.WriteSuccess(w, http.StatusOK, session, "logged in")
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	h.WriteSuccess(w, http.StatusOK, nil, "logged out")
}

func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	scope, ok := tenant.ScopeFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrSessionRequired)
		return
	}

	view, err := h.Service.CurrentSession(r.Context(), scope)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, view, "")
}

func (h *Handler) token(r *http.Request) string {
	if token := h.ExtractTokenFromHeader(r); token != "" {
		return token
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// SessionMiddleware resolves the caller's session into a tenant.Scope on the
// request context. Browser page requests without a session are sent to the
// login page; API requests get a 401 envelope.
func (h *Handler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.token(r)
		if token == "" {
			h.unauthenticated(w, r, internal.ErrSessionRequired)
			return
		}

		scope, err := h.Service.ResolveSession(r.Context(), token)
		if err != nil {
			logger.From(r.Context()).Warn("session rejected", "path", r.URL.Path, "error", err)
			h.unauthenticated(w, r, err)
			return
		}

		ctx := tenant.WithScope(r.Context(), scope)
		ctx = logger.With(ctx, "user_id", scope.UserID, "company_id", scope.CompanyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) unauthenticated(w http.ResponseWriter, r *http.Request, err error) {
	if transport.WantsHTML(r) {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	if appErr, ok := internal.IsAppError(err); ok && appErr.StatusCode < http.StatusInternalServerError {
		h.WriteAppError(w, appErr)
		return
	}
	h.HandleServiceError(w, r, err)
}

// RequireRole lets the request through only when the resolved role is one of roles.
func (h *Handler) RequireRole(roles ...tenant.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, ok := tenant.ScopeFromContext(r.Context())
			if !ok {
				h.unauthenticated(w, r, internal.ErrSessionRequired)
				return
			}

			for _, role := range roles {
				if scope.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.From(r.Context()).Warn("role check failed", "role", scope.Role, "required", roles, "path", r.URL.Path)
			if transport.WantsHTML(r) {
				http.Redirect(w, r, "/login?error=forbidden", http.StatusFound)
				return
			}
			h.WriteAppError(w, internal.ErrInsufficientRole)
		})
	}
}
