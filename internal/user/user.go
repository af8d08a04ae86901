package user

import (
	"time"

	"github.com/frahmantamala/expensehub/internal/tenant"
)

// MemberRow is a membership joined with its user.
type MemberRow struct {
	ID        int64
	UserID    int64
	Role      string
	CreatedAt time.Time
	Email     string
	Name      string
	IsActive  bool
}

// Member is one person's membership in the caller's company.
type Member struct {
	ID       int64       `json:"id"`
	UserID   int64       `json:"userId"`
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Role     tenant.Role `json:"role"`
	IsActive bool        `json:"isActive"`
	JoinedAt time.Time   `json:"joinedAt"`
}

// Profile is the caller's own view of themselves.
type Profile struct {
	ID        int64       `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	CompanyID int64       `json:"companyId"`
	Role      tenant.Role `json:"role"`
	JoinedAt  time.Time   `json:"joinedAt"`
}

func MemberFromRow(r *MemberRow) *Member {
	return &Member{
		ID:       r.ID,
		UserID:   r.UserID,
		Email:    r.Email,
		Name:     r.Name,
		Role:     tenant.Role(r.Role),
		IsActive: r.IsActive,
		JoinedAt: r.CreatedAt,
	}
}
