// Package user holds the account shape shared by login and member administration.
package user

import (
	"strings"
	"time"

	membershipDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/membership"
	userDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/user"
)

type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}

// Membership is one company a user belongs to.
type Membership struct {
	ID        int64
	UserID    int64
	CompanyID int64
	Role      string
	CreatedAt time.Time
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
	}
}

func MembershipFromDataModel(m *membershipDatamodel.Membership) *Membership {
	return &Membership{
		ID:        m.ID,
		UserID:    m.UserID,
		CompanyID: m.CompanyID,
		Role:      m.Role,
		CreatedAt: m.CreatedAt,
	}
}

// NormalizeEmail is applied before every lookup and insert.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
