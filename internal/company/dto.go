package company

import (
	"strings"

	coreUser "github.com/frahmantamala/expensehub/internal/core/user"
)

type CreateCompanyDTO struct {
	CompanyName   string `json:"companyName" validate:"required,max=120"`
	AdminName     string `json:"adminName" validate:"required,max=120"`
	AdminEmail    string `json:"adminEmail" validate:"required,mailbox"`
	AdminPassword string `json:"adminPassword" validate:"required,min=6,max=72"`
	BaseCurrency  string `json:"baseCurrency" validate:"omitempty,iso4217"`
}

func (dto *CreateCompanyDTO) Normalize() {
	dto.CompanyName = strings.TrimSpace(dto.CompanyName)
	dto.AdminName = strings.TrimSpace(dto.AdminName)
	dto.AdminEmail = coreUser.NormalizeEmail(dto.AdminEmail)
	dto.BaseCurrency = strings.ToUpper(strings.TrimSpace(dto.BaseCurrency))
	if dto.BaseCurrency == "" {
		dto.BaseCurrency = "USD"
	}
}
