package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/frahmantamala/expensehub/internal/audit"
	"github.com/frahmantamala/expensehub/internal/company"
	companyDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/company"
	membershipDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/membership"
	userDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/user"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"gorm.io/gorm"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) company.RepositoryAPI {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Onboard(ctx context.Context, rows company.OnboardRows) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rows.Company).Error; err != nil {
			return err
		}

		var taken int64
		if err := tx.Model(&userDatamodel.User{}).Where("email = ?", rows.Admin.Email).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return internal.ErrEmailTaken
		}
		if err := tx.Create(rows.Admin).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return internal.ErrEmailTaken
			}
			return err
		}

		// the new company's rows go through the tenant wrapper like any other
		store := tenant.NewClient(tx).For(tenant.Scope{
			CompanyID: rows.Company.ID,
			UserID:    rows.Admin.ID,
			Role:      tenant.RoleAdmin,
			Email:     rows.Admin.Email,
		})
		if err := store.Memberships().Create(ctx, &membershipDatamodel.Membership{
			UserID: rows.Admin.ID,
			Role:   string(tenant.RoleAdmin),
		}); err != nil {
			return err
		}
		if err := store.Policies().Create(ctx, rows.Policy); err != nil {
			return err
		}

		entry := rows.Audit
		entry.EntityID = rows.Company.ID
		return audit.Write(ctx, store, entry)
	})
}

func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*companyDatamodel.Company, error) {
	var row companyDatamodel.Company
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, company.ErrCompanyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
