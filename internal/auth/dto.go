package auth

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
// CompanyID picks a membership when the user belongs to several companies.
type LoginDTO struct {
	Email     string `json:"email" validate:"required,mailbox"`
	Password  string `json:"password" validate:"required"`
	CompanyID int64  `json:"companyId,omitempty" validate:"gte=0"`
}
