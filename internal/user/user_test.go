package user_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/frahmantamala/expensehub/internal/audit"
	auditPostgres "github.com/frahmantamala/expensehub/internal/audit/postgres"
	userDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/user"
	"github.com/frahmantamala/expensehub/internal/mailer"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"github.com/frahmantamala/expensehub/internal/testutil"
	"github.com/frahmantamala/expensehub/internal/transport"
	"github.com/frahmantamala/expensehub/internal/user"
	"github.com/frahmantamala/expensehub/internal/user/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

type outbox struct {
	mu   sync.Mutex
	sent []mailer.Credentials
}

func (o *outbox) SendCredentials(_ context.Context, c mailer.Credentials) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, c)
	return nil
}

var _ = Describe("User", func() {
	var (
		ctx      context.Context
		db       *gorm.DB
		service  *user.Service
		auditSvc *audit.Service
		mail     *outbox
		admin    tenant.Scope
		employee tenant.Scope
		globex   tenant.Scope
	)

	BeforeEach(func() {
		var err error
		db, err = testutil.NewDB()
		Expect(err).ToNot(HaveOccurred())
		ctx = context.Background()

		acme := testutil.Company(db, "Acme")
		admin = testutil.Member(db, acme, "admin@acme.io", tenant.RoleAdmin)
		employee = testutil.Member(db, acme, "employee@acme.io", tenant.RoleEmployee)
		globex = testutil.Member(db, testutil.Company(db, "Globex"), "admin@globex.io", tenant.RoleAdmin)

		auditSvc = audit.NewService(auditPostgres.NewAuditRepository(tenant.NewClient(db)), testutil.Logger())
		mail = &outbox{}
		service = user.NewService(postgres.NewUserRepository(db), auditSvc, mail, bcrypt.MinCost, testutil.Logger())
	})

	memberID := func(scope tenant.Scope, userID int64) int64 {
		members, err := service.ListMembers(ctx, scope)
		Expect(err).ToNot(HaveOccurred())
		for _, m := range members {
			if m.UserID == userID {
				return m.ID
			}
		}
		Fail("member not found")
		return 0
	}

	It("should describe the caller", func() {
		p, err := service.Me(ctx, employee)
		Expect(err).ToNot(HaveOccurred())
		Expect(p.Email).To(Equal("employee@acme.io"))
		Expect(p.Role).To(Equal(tenant.RoleEmployee))
	})

	It("should list only the company's members", func() {
		members, err := service.ListMembers(ctx, admin)
		Expect(err).ToNot(HaveOccurred())
		Expect(members).To(HaveLen(2))
		for _, m := range members {
			Expect(m.Email).To(HaveSuffix("@acme.io"))
		}
	})

	Describe("AddMember", func() {
		It("should create an account and mail a usable password", func() {
			// When
			m, err := service.AddMember(ctx, admin, user.AddMemberDTO{Email: "New@Acme.io", Name: "Newbie", Role: "manager"})

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(m.Role).To(Equal(tenant.RoleManager))
			Expect(m.Email).To(Equal("new@acme.io"))
			Expect(mail.sent).To(HaveLen(1))
			Expect(mail.sent[0].CompanyName).To(Equal("Acme"))

			var u userDatamodel.User
			Expect(db.Where("email = ?", "new@acme.io").Take(&u).Error).To(Succeed())
			Expect(bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(mail.sent[0].Password))).To(Succeed())

			logs, _, err := auditSvc.List(ctx, admin, audit.Filter{Action: audit.ActionMemberAdd})
			Expect(err).ToNot(HaveOccurred())
			Expect(logs).To(HaveLen(1))
		})

		It("should add an existing account without mailing", func() {
			// When
			m, err := service.AddMember(ctx, globex, user.AddMemberDTO{Email: "employee@acme.io", Name: "x", Role: "EMPLOYEE"})

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(m.UserID).To(Equal(employee.UserID))
			Expect(mail.sent).To(BeEmpty())
		})

		It("should refuse a duplicate membership", func() {
			_, err := service.AddMember(ctx, admin, user.AddMemberDTO{Email: "employee@acme.io", Name: "x", Role: "EMPLOYEE"})
			Expect(err).To(MatchError(internal.ErrAlreadyMember))
		})

		It("should validate the role", func() {
			_, err := service.AddMember(ctx, admin, user.AddMemberDTO{Email: "a@acme.io", Name: "x", Role: "OWNER"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("UpdateRole and RemoveMember", func() {
		It("should promote another member", func() {
			m, err := service.UpdateRole(ctx, admin, memberID(admin, employee.UserID), user.UpdateMemberDTO{Role: "MANAGER"})
			Expect(err).ToNot(HaveOccurred())
			Expect(m.Role).To(Equal(tenant.RoleManager))
		})

		It("should refuse changing or removing yourself", func() {
			own := memberID(admin, admin.UserID)
			_, err := service.UpdateRole(ctx, admin, own, user.UpdateMemberDTO{Role: "EMPLOYEE"})
			Expect(err).To(MatchError(internal.ErrSelfModification))
			Expect(service.RemoveMember(ctx, admin, own)).To(MatchError(internal.ErrSelfModification))
		})

		It("should not touch another company's membership", func() {
			id := memberID(admin, employee.UserID)
			Expect(service.RemoveMember(ctx, globex, id)).To(MatchError(internal.ErrMemberNotFound))
			_, err := service.UpdateRole(ctx, globex, id, user.UpdateMemberDTO{Role: "ADMIN"})
			Expect(err).To(MatchError(internal.ErrMemberNotFound))
		})

		It("should remove a member", func() {
			Expect(service.RemoveMember(ctx, admin, memberID(admin, employee.UserID))).To(Succeed())
			members, err := service.ListMembers(ctx, admin)
			Expect(err).ToNot(HaveOccurred())
			Expect(members).To(HaveLen(1))
		})
	})

	Describe("Handler", func() {
		It("should return the current user", func() {
			h := user.NewHandler(transport.NewBaseHandler(testutil.Logger()), service)
			req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
			req = req.WithContext(tenant.WithScope(req.Context(), employee))
			rec := httptest.NewRecorder()

			h.GetCurrentUser(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"email":"employee@acme.io"`))
		})
	})
})
