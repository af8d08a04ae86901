package auth

import (
	"context"
	"errors"
	"time"

	coreUser "github.com/frahmantamala/expensehub/internal/core/user"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"github.com/golang-jwt/jwt/v5"
)

const SessionCookieName = "session"

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (*Session, error)
	ResolveSession(ctx context.Context, token string) (tenant.Scope, error)
	CurrentSession(ctx context.Context, scope tenant.Scope) (*SessionView, error)
	SessionTTL() time.Duration
}

// RepositoryAPI reads accounts before any company is known, so it works on
// the global users and memberships tables instead of a tenant store.
type RepositoryAPI interface {
	GetUserByEmail(ctx context.Context, email string) (*coreUser.User, error)
	GetUserByID(ctx context.Context, id int64) (*coreUser.User, error)
	ListMemberships(ctx context.Context, userID int64) ([]coreUser.Membership, error)
	GetMembership(ctx context.Context, userID, companyID int64) (*coreUser.Membership, error)
}

type TokenGeneratorAPI interface {
	GenerateSessionToken(scope tenant.Scope) (token string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims carries the resolved membership so requests need no extra lookup to
// learn the company.
type Claims struct {
	UserID    int64  `json:"userId"`
	CompanyID int64  `json:"companyId"`
	Role      string `json:"role"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

func (c *Claims) Scope() tenant.Scope {
	role, _ := tenant.ParseRole(c.Role)
	return tenant.Scope{
		CompanyID: c.CompanyID,
		UserID:    c.UserID,
		Role:      role,
		Email:     c.Email,
	}
}

type JWTTokenGenerator struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      SessionUser `json:"user"`
	CompanyID int64       `json:"companyId"`
	Role      tenant.Role `json:"role"`
}

type SessionUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type SessionView struct {
	User      SessionUser `json:"user"`
	CompanyID int64       `json:"companyId"`
	Role      tenant.Role `json:"role"`
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrMembershipNotFound = errors.New("membership not found")
)
