package user

import (
	"strings"

	coreUser "github.com/frahmantamala/expensehub/internal/core/user"
)

// AddMemberDTO invites someone by e-mail. Unknown addresses get a new account.
type AddMemberDTO struct {
	Email string `json:"email" validate:"required,mailbox"`
	Name  string `json:"name" validate:"required,max=120"`
	Role  string `json:"role" validate:"required,oneof=ADMIN MANAGER EMPLOYEE"`
}

func (dto *AddMemberDTO) Normalize() {
	dto.Email = coreUser.NormalizeEmail(dto.Email)
	dto.Name = strings.TrimSpace(dto.Name)
	dto.Role = strings.ToUpper(strings.TrimSpace(dto.Role))
}

type UpdateMemberDTO struct {
	Role string `json:"role" validate:"required,oneof=ADMIN MANAGER EMPLOYEE"`
}

func (dto *UpdateMemberDTO) Normalize() {
	dto.Role = strings.ToUpper(strings.TrimSpace(dto.Role))
}
