package tenant_test

import (
	"context"
	"testing"
	"time"

	auditDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/audit"
	expenseDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/expense"
	projectDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/project"
	receiptDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/receipt"
	approvalDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/approval"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"github.com/frahmantamala/expensehub/internal/testutil"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestTenant(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Tenant Suite")
}

var _ = Describe("Tenant-scoped store", func() {
	var (
		ctx      context.Context
		db       *gorm.DB
		client   *tenant.Client
		acme     tenant.Scope
		globex   tenant.Scope
		acmeProj int64
		globProj int64
	)

	newExpense := func(projectID int64) *expenseDatamodel.Expense {
		return &expenseDatamodel.Expense{
			ProjectID:   projectID,
			Amount:      4500,
			Currency:    "USD",
			Description: "taxi",
			ExpenseDate: time.Now().Add(-time.Hour),
			Status:      "PENDING",
		}
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = testutil.NewDB()
		Expect(err).NotTo(HaveOccurred())
		client = tenant.NewClient(db)

		acmeID := testutil.Company(db, "Acme")
		globexID := testutil.Company(db, "Globex")
		acme = testutil.Member(db, acmeID, "emp@acme.test", tenant.RoleEmployee)
		globex = testutil.Member(db, globexID, "emp@globex.test", tenant.RoleEmployee)
		acmeProj = testutil.Project(db, acmeID, "Website")
		globProj = testutil.Project(db, globexID, "Website")
	})

	Describe("reads", func() {
		It("only returns rows of the bound company", func() {
			var projects []projectDatamodel.Project
			Expect(client.For(acme).Projects().Find(ctx, &projects)).To(Succeed())

			Expect(projects).To(HaveLen(1))
			Expect(projects[0].ID).To(Equal(acmeProj))
		})

		It("returns nothing when the caller filters on another company", func() {
			var projects []projectDatamodel.Project
			err := client.For(acme).Projects().Find(ctx, &projects, "company_id = ?", globex.CompanyID)

			Expect(err).NotTo(HaveOccurred())
			Expect(projects).To(BeEmpty())
		})

		It("cannot be widened with an OR clause", func() {
			Expect(client.For(globex).Expenses().Create(ctx, newExpense(globProj))).To(Succeed())

			var expenses []expenseDatamodel.Expense
			err := client.For(acme).Expenses().Query(ctx).
				Where("1 = 0").Or("1 = 1").
				Find(&expenses).Error

			Expect(err).NotTo(HaveOccurred())
			Expect(expenses).To(BeEmpty())
		})

		It("reports not found for another company's row", func() {
			var p projectDatamodel.Project
			err := client.For(acme).Projects().First(ctx, &p, "id = ?", globProj)

			Expect(err).To(MatchError(tenant.ErrNotFound))
		})

		It("refuses to run without a company", func() {
			var projects []projectDatamodel.Project
			err := client.For(tenant.Scope{}).Projects().Find(ctx, &projects)

			Expect(err).To(MatchError(tenant.ErrNoScope))
		})
	})

	Describe("creates", func() {
		It("stamps the company id regardless of the value supplied", func() {
			p := &projectDatamodel.Project{CompanyID: globex.CompanyID, Name: "Sneaky", IsActive: true}
			Expect(client.For(acme).Projects().Create(ctx, p)).To(Succeed())

			Expect(p.CompanyID).To(Equal(acme.CompanyID))
		})

		It("rejects an expense against another company's project", func() {
			err := client.For(acme).Expenses().Create(ctx, newExpense(globProj))

			Expect(err).To(MatchError(tenant.ErrNotFound))
			var n int64
			Expect(db.Model(&expenseDatamodel.Expense{}).Count(&n).Error).To(Succeed())
			Expect(n).To(BeZero())
		})

		It("stamps the submitting employee", func() {
			e := newExpense(acmeProj)
			e.EmployeeID = globex.UserID
			Expect(client.For(acme).Expenses().Create(ctx, e)).To(Succeed())

			Expect(e.EmployeeID).To(Equal(acme.UserID))
		})

		It("guards receipts and approvals through their expense", func() {
			foreign := newExpense(globProj)
			Expect(client.For(globex).Expenses().Create(ctx, foreign)).To(Succeed())

			err := client.For(acme).Receipts().Create(ctx, &receiptDatamodel.ReceiptFile{
				ExpenseID: foreign.ID, StorageKey: "k", URL: "u", MimeType: "image/png", SizeBytes: 1,
			})
			Expect(err).To(MatchError(tenant.ErrNotFound))

			err = client.For(acme).Approvals().Create(ctx, &approvalDatamodel.Approval{
				ExpenseID: foreign.ID, Decision: "APPROVE", DecidedAt: time.Now(),
			})
			Expect(err).To(MatchError(tenant.ErrNotFound))
		})

		It("stamps the audit actor", func() {
			row := &auditDatamodel.AuditLog{ActorID: 999, Action: "project.create", EntityType: "project", EntityID: acmeProj}
			Expect(client.For(acme).AuditLogs().Create(ctx, row)).To(Succeed())

			Expect(row.ActorID).To(Equal(acme.UserID))
			Expect(row.CompanyID).To(Equal(acme.CompanyID))
		})
	})

	Describe("updates and deletes", func() {
		It("does not touch other companies' rows", func() {
			n, err := client.For(acme).Projects().Updates(ctx, map[string]any{"name": "Hijacked"}, "id = ?", globProj)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())

			n, err = client.For(acme).Projects().Delete(ctx, "id = ?", globProj)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())

			var p projectDatamodel.Project
			Expect(db.First(&p, globProj).Error).To(Succeed())
			Expect(p.Name).To(Equal("Website"))
		})

		It("ignores attempts to move a row to another company", func() {
			_, err := client.For(acme).Projects().Updates(ctx, map[string]any{"company_id": globex.CompanyID, "name": "Renamed"}, "id = ?", acmeProj)
			Expect(err).NotTo(HaveOccurred())

			var p projectDatamodel.Project
			Expect(db.First(&p, acmeProj).Error).To(Succeed())
			Expect(p.CompanyID).To(Equal(acme.CompanyID))
			Expect(p.Name).To(Equal("Renamed"))
		})

		It("rejects moving an expense to another company's project", func() {
			e := newExpense(acmeProj)
			Expect(client.For(acme).Expenses().Create(ctx, e)).To(Succeed())

			_, err := client.For(acme).Expenses().Updates(ctx, map[string]any{"project_id": globProj}, "id = ?", e.ID)

			Expect(err).To(MatchError(tenant.ErrNotFound))
		})
	})

	Describe("transactions", func() {
		It("rolls back every write when fn fails", func() {
			store := client.For(acme)
			err := store.Transaction(ctx, func(tx *tenant.Store) error {
				if err := tx.Projects().Create(ctx, &projectDatamodel.Project{Name: "Temp", IsActive: true}); err != nil {
					return err
				}
				return tx.Expenses().Create(ctx, newExpense(globProj))
			})
			Expect(err).To(MatchError(tenant.ErrNotFound))

			n, err := store.Projects().Count(ctx, "name = ?", "Temp")
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
		})
	})
})
