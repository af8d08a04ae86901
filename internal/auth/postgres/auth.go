package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/expensehub/internal/auth"
	membershipDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/membership"
	userDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/user"
	coreUser "github.com/frahmantamala/expensehub/internal/core/user"
	"gorm.io/gorm"
)

// Repository reads global account rows. Nothing here touches tenant-owned
// tables beyond the caller's own memberships.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auth.RepositoryAPI {
	return &Repository{db: db}
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*coreUser.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where("email = ?", email).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return coreUser.FromDataModel(&row), nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*coreUser.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return coreUser.FromDataModel(&row), nil
}

// ListMemberships returns the user's memberships oldest first, so index 0 is
// the membership a login without companyId resolves to.
func (r *Repository) ListMemberships(ctx context.Context, userID int64) ([]coreUser.Membership, error) {
	var rows []membershipDatamodel.Membership
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]coreUser.Membership, 0, len(rows))
	for i := range rows {
		out = append(out, *coreUser.MembershipFromDataModel(&rows[i]))
	}
	return out, nil
}

func (r *Repository) GetMembership(ctx context.Context, userID, companyID int64) (*coreUser.Membership, error) {
	var row membershipDatamodel.Membership
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = memberships.user_id AND users.is_active = ?", true).
		Where("memberships.user_id = ? AND memberships.company_id = ?", userID, companyID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, auth.ErrMembershipNotFound
	}
	if err != nil {
		return nil, err
	}
	return coreUser.MembershipFromDataModel(&row), nil
}
