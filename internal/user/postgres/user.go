package postgres

import (
	"context"
	"errors"

	companyDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/company"
	membershipDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/membership"
	userDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/user"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"github.com/frahmantamala/expensehub/internal/user"
	"gorm.io/gorm"
)

const memberColumns = "memberships.id, memberships.user_id, memberships.role, memberships.created_at, users.email, users.name, users.is_active"

// UserRepository reads memberships through the tenant wrapper. Users are
// global rows, so account lookup and creation use the raw handle.
type UserRepository struct {
	db     *gorm.DB
	client *tenant.Client
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db, client: tenant.NewClient(db)}
}

func (r *UserRepository) members(ctx context.Context, scope tenant.Scope) *gorm.DB {
	return r.client.For(scope).Memberships().Query(ctx).
		Select(memberColumns).
		Joins("JOIN users ON users.id = memberships.user_id")
}

func (r *UserRepository) ListMembers(ctx context.Context, scope tenant.Scope) ([]user.MemberRow, error) {
	var rows []user.MemberRow
	err := r.members(ctx, scope).Order("memberships.id").Scan(&rows).Error
	return rows, err
}

func (r *UserRepository) GetMember(ctx context.Context, scope tenant.Scope, id int64) (*user.MemberRow, error) {
	return r.one(r.members(ctx, scope).Where("memberships.id = ?", id))
}

func (r *UserRepository) MemberByUser(ctx context.Context, scope tenant.Scope, userID int64) (*user.MemberRow, error) {
	return r.one(r.members(ctx, scope).Where("memberships.user_id = ?", userID))
}

func (r *UserRepository) one(q *gorm.DB) (*user.MemberRow, error) {
	var rows []user.MemberRow
	if err := q.Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, tenant.ErrNotFound
	}
	return &rows[0], nil
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where("email = ?", email).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *UserRepository) AddMember(ctx context.Context, scope tenant.Scope, u *userDatamodel.User, role tenant.Role) (int64, error) {
	m := &membershipDatamodel.Membership{Role: string(role)}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if u.ID == 0 {
			if err := tx.Create(u).Error; err != nil {
				return err
			}
		}
		m.UserID = u.ID
		return tenant.NewClient(tx).For(scope).Memberships().Create(ctx, m)
	})
	if err != nil {
		return 0, err
	}
	return m.ID, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, scope tenant.Scope, id int64, role tenant.Role) error {
	n, err := r.client.For(scope).Memberships().Updates(ctx, map[string]any{"role": string(role)}, "id = ?", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return tenant.ErrNotFound
	}
	return nil
}

func (r *UserRepository) RemoveMember(ctx context.Context, scope tenant.Scope, id int64) error {
	n, err := r.client.For(scope).Memberships().Delete(ctx, "id = ?", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return tenant.ErrNotFound
	}
	return nil
}

func (r *UserRepository) CompanyName(ctx context.Context, companyID int64) (string, error) {
	var c companyDatamodel.Company
	if err := r.db.WithContext(ctx).Select("name").Where("id = ?", companyID).Take(&c).Error; err != nil {
		return "", err
	}
	return c.Name, nil
}
