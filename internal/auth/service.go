package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/frahmantamala/expensehub/internal/core/common/validation"
	coreUser "github.com/frahmantamala/expensehub/internal/core/user"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Service is the main auth service with dependencies
type Service struct {
	repo           RepositoryAPI
	tokenGenerator TokenGeneratorAPI
	ttl            time.Duration
	logger         *slog.Logger
}

func NewService(repo RepositoryAPI, tokenGen TokenGeneratorAPI, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		ttl:            ttl,
		logger:         logger,
	}
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		Secret: []byte(secret),
		TTL:    ttl,
		Issuer: "expensehub",
	}
}

func (s *Service) SessionTTL() time.Duration {
	return s.ttl
}

// Authenticate checks credentials and pins the session to one membership:
// the requested company when given, otherwise the user's first membership.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*Session, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	email := coreUser.NormalizeEmail(dto.Email)
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.Warn("login failed: unknown email", "email", email)
			return nil, internal.ErrInvalidCredentials
		}
		return nil, internal.NewInternalError("failed to load user", err)
	}

	if err := VerifyPassword(u.PasswordHash, dto.Password); err != nil {
		s.logger.Warn("login failed: wrong password", "user_id", u.ID)
		return nil, internal.ErrInvalidCredentials
	}

	if !u.IsActive {
		s.logger.Warn("login failed: inactive user", "user_id", u.ID)
		return nil, internal.ErrUserInactive
	}

	memberships, err := s.repo.ListMemberships(ctx, u.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load memberships", err)
	}

	m, ok := pickMembership(memberships, dto.CompanyID)
	if !ok {
		s.logger.Warn("login failed: no usable membership", "user_id", u.ID, "requested_company_id", dto.CompanyID)
		return nil, internal.ErrNoMembership
	}

	role, ok := tenant.ParseRole(m.Role)
	if !ok {
		return nil, internal.NewInternalError("membership has unknown role", fmt.Errorf("role %q", m.Role))
	}

	scope := tenant.Scope{CompanyID: m.CompanyID, UserID: u.ID, Role: role, Email: u.Email}
	token, expiresAt, err := s.tokenGenerator.GenerateSessionToken(scope)
	if err != nil {
		return nil, internal.NewInternalError("failed to sign session", err)
	}

	s.logger.Info("user logged in", "user_id", u.ID, "company_id", m.CompanyID, "role", role)

	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      SessionUser{ID: u.ID, Email: u.Email, Name: u.Name},
		CompanyID: m.CompanyID,
		Role:      role,
	}, nil
}

func pickMembership(memberships []coreUser.Membership, companyID int64) (coreUser.Membership, bool) {
	if len(memberships) == 0 {
		return coreUser.Membership{}, false
	}
	if companyID == 0 {
		return memberships[0], true
	}
	for _, m := range memberships {
		if m.CompanyID == companyID {
			return m, true
		}
	}
	return coreUser.Membership{}, false
}

// ResolveSession validates the token and re-reads the membership so that a
// removed member or a changed role takes effect on the next request.
func (s *Service) ResolveSession(ctx context.Context, token string) (tenant.Scope, error) {
	claims, err := s.tokenGenerator.ValidateToken(token)
	if err != nil {
		return tenant.Scope{}, err
	}

	m, err := s.repo.GetMembership(ctx, claims.UserID, claims.CompanyID)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			return tenant.Scope{}, internal.ErrInvalidToken
		}
		return tenant.Scope{}, internal.NewInternalError("failed to load membership", err)
	}

	scope := claims.Scope()
	if role, ok := tenant.ParseRole(m.Role); ok {
		scope.Role = role
	}
	return scope, nil
}

func (s *Service) CurrentSession(ctx context.Context, scope tenant.Scope) (*SessionView, error) {
	u, err := s.repo.GetUserByID(ctx, scope.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, internal.ErrInvalidToken
		}
		return nil, internal.NewInternalError("failed to load user", err)
	}
	return &SessionView{
		User:      SessionUser{ID: u.ID, Email: u.Email, Name: u.Name},
		CompanyID: scope.CompanyID,
		Role:      scope.Role,
	}, nil
}

func (j *JWTTokenGenerator) GenerateSessionToken(scope tenant.Scope) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(j.TTL)

	claims := &Claims{
		UserID:    scope.UserID,
		CompanyID: scope.CompanyID,
		Role:      string(scope.Role),
		Email:     scope.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			Subject:   strconv.FormatInt(scope.UserID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 || claims.CompanyID == 0 {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// GeneratePassword returns a random password for invited members.
func GeneratePassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
