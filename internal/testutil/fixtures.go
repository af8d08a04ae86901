package testutil

import (
	companyDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/company"
	membershipDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/membership"
	policyDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/policy"
	projectDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/project"
	userDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/user"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Password is the plain password of every fixture user.
const Password = "secret"

// Company creates a company with a default policy and returns its id.
func Company(db *gorm.DB, name string) int64 {
	c := &companyDatamodel.Company{Name: name, BaseCurrency: "USD"}
	must(db.Create(c).Error)
	must(db.Create(&policyDatamodel.ApprovalPolicy{CompanyID: c.ID, ApprovalType: "MAJORITY"}).Error)
	return c.ID
}

// Member creates a user with the given role in company and returns its scope.
func Member(db *gorm.DB, companyID int64, email string, role tenant.Role) tenant.Scope {
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	must(err)
	u := &userDatamodel.User{Email: email, Name: email, PasswordHash: string(hash), IsActive: true}
	must(db.Create(u).Error)
	must(db.Create(&membershipDatamodel.Membership{UserID: u.ID, CompanyID: companyID, Role: string(role)}).Error)
	return tenant.Scope{CompanyID: companyID, UserID: u.ID, Role: role, Email: email}
}

// Project creates an active project in company and returns its id.
func Project(db *gorm.DB, companyID int64, name string) int64 {
	p := &projectDatamodel.Project{CompanyID: companyID, Name: name, IsActive: true}
	must(db.Create(p).Error)
	return p.ID
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
