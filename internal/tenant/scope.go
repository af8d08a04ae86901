package tenant

import (
	"context"
	"errors"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
)

func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return r, true
	}
	return "", false
}

// CanDecide reports whether the role may approve or reject expenses.
func (r Role) CanDecide() bool {
	return r == RoleAdmin || r == RoleManager
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Scope identifies who is acting and inside which company.
type Scope struct {
	CompanyID int64
	UserID    int64
	Role      Role
	Email     string
}

func (s Scope) Valid() bool {
	return s.CompanyID > 0 && s.UserID > 0
}

var (
	ErrNotFound = errors.New("tenant: record not found")
	ErrNoScope  = errors.New("tenant: missing company scope")
)

type ctxKey struct{}

func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func ScopeFromContext(ctx context.Context) (Scope, bool) {
	if ctx == nil {
		return Scope{}, false
	}
	s, ok := ctx.Value(ctxKey{}).(Scope)
	return s, ok && s.Valid()
}
