// Package company onboards new tenants. Onboarding runs before any session
// exists, so it works on the raw database inside a single transaction.
package company

import (
	"time"

	companyDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/company"
)

type Company struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	BaseCurrency string    `json:"baseCurrency"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Admin struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Onboarded is what a successful onboarding returns.
type Onboarded struct {
	Company *Company `json:"company"`
	Admin   Admin    `json:"admin"`
}

func FromDataModel(c *companyDatamodel.Company) *Company {
	return &Company{
		ID:           c.ID,
		Name:         c.Name,
		BaseCurrency: c.BaseCurrency,
		CreatedAt:    c.CreatedAt,
	}
}
