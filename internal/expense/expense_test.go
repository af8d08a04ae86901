package expense_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/frahmantamala/expensehub/internal/audit"
	auditPostgres "github.com/frahmantamala/expensehub/internal/audit/postgres"
	approvalDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/approval"
	projectDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/project"
	"github.com/frahmantamala/expensehub/internal/core/events"
	"github.com/frahmantamala/expensehub/internal/expense"
	"github.com/frahmantamala/expensehub/internal/expense/postgres"
	"github.com/frahmantamala/expensehub/internal/policy"
	policyPostgres "github.com/frahmantamala/expensehub/internal/policy/postgres"
	"github.com/frahmantamala/expensehub/internal/project"
	projectPostgres "github.com/frahmantamala/expensehub/internal/project/postgres"
	"github.com/frahmantamala/expensehub/internal/storage"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"github.com/frahmantamala/expensehub/internal/testutil"
	"github.com/frahmantamala/expensehub/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestExpense(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Expense Suite")
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

func today() string {
	return time.Now().UTC().Format("2006-01-02")
}

var _ = Describe("Expense", func() {
	var (
		ctx       context.Context
		db        *gorm.DB
		service   *expense.Service
		policies  *policy.Service
		auditSvc  *audit.Service
		store     *storage.LocalStorage
		published *recordingPublisher

		acme      int64
		admin     tenant.Scope
		manager   tenant.Scope
		employee  tenant.Scope
		colleague tenant.Scope
		website   int64

		globex      int64
		globexAdmin tenant.Scope
		globexProj  int64
	)

	BeforeEach(func() {
		var err error
		db, err = testutil.NewDB()
		Expect(err).ToNot(HaveOccurred())
		ctx = context.Background()

		acme = testutil.Company(db, "Acme")
		admin = testutil.Member(db, acme, "admin@acme.io", tenant.RoleAdmin)
		manager = testutil.Member(db, acme, "manager@acme.io", tenant.RoleManager)
		employee = testutil.Member(db, acme, "employee@acme.io", tenant.RoleEmployee)
		colleague = testutil.Member(db, acme, "colleague@acme.io", tenant.RoleEmployee)
		website = testutil.Project(db, acme, "Website")

		globex = testutil.Company(db, "Globex")
		globexAdmin = testutil.Member(db, globex, "admin@globex.io", tenant.RoleAdmin)
		globexProj = testutil.Project(db, globex, "Secret")

		client := tenant.NewClient(db)
		auditSvc = audit.NewService(auditPostgres.NewAuditRepository(client), testutil.Logger())
		projects := project.NewService(projectPostgres.NewProjectRepository(client), auditSvc, testutil.Logger())
		policies = policy.NewService(policyPostgres.NewPolicyRepository(client), auditSvc, testutil.Logger())

		store, err = storage.NewLocalStorage(GinkgoT().TempDir())
		Expect(err).ToNot(HaveOccurred())
		published = &recordingPublisher{}

		service = expense.NewService(postgres.NewExpenseRepository(client), projects, policies, store, auditSvc, published, testutil.Logger())
	})

	submit := func(scope tenant.Scope, amount int64) *expense.Expense {
		e, err := service.Create(ctx, scope, expense.CreateExpenseDTO{
			ProjectID:   website,
			Amount:      amount,
			Currency:    "usd",
			Description: "Taxi to client",
			ExpenseDate: today(),
		})
		Expect(err).ToNot(HaveOccurred())
		return e
	}

	auditActions := func(id int64) []string {
		logs, _, err := auditSvc.List(ctx, admin, audit.Filter{EntityType: audit.EntityExpense, EntityID: id})
		Expect(err).ToNot(HaveOccurred())
		out := make([]string, 0, len(logs))
		for _, l := range logs {
			out = append(out, l.Action)
		}
		return out
	}

	Describe("Create", func() {
		It("should create a PENDING expense owned by the caller", func() {
			// When
			e := submit(employee, 4500)

			// Then
			Expect(e.Status).To(Equal(expense.StatusPending))
			Expect(e.EmployeeID).To(Equal(employee.UserID))
			Expect(e.Currency).To(Equal("USD"))
			Expect(auditActions(e.ID)).To(Equal([]string{audit.ActionExpenseCreate}))
			Expect(published.types()).To(Equal([]string{events.EventTypeExpenseCreated}))
		})

		DescribeTable("should reject invalid input",
			func(mutate func(*expense.CreateExpenseDTO), field string) {
				dto := expense.CreateExpenseDTO{ProjectID: website, Amount: 100, Currency: "USD", Description: "Lunch", ExpenseDate: today()}
				mutate(&dto)

				_, err := service.Create(ctx, employee, dto)

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(appErr.GetDetailedMessage()).To(ContainSubstring(field))
			},
			Entry("zero amount", func(d *expense.CreateExpenseDTO) { d.Amount = 0 }, "amount"),
			Entry("negative amount", func(d *expense.CreateExpenseDTO) { d.Amount = -5 }, "amount"),
			Entry("unknown currency", func(d *expense.CreateExpenseDTO) { d.Currency = "XYZ" }, "currency"),
			Entry("empty description", func(d *expense.CreateExpenseDTO) { d.Description = "   " }, "description"),
			Entry("long description", func(d *expense.CreateExpenseDTO) { d.Description = strings.Repeat("x", 501) }, "description"),
			Entry("future date", func(d *expense.CreateExpenseDTO) {
				d.ExpenseDate = time.Now().AddDate(0, 0, 2).Format("2006-01-02")
			}, "expenseDate"),
			Entry("malformed date", func(d *expense.CreateExpenseDTO) { d.ExpenseDate = "15/01/2024" }, "expenseDate"),
		)

		It("should not reveal another company's project", func() {
			// When
			_, err := service.Create(ctx, employee, expense.CreateExpenseDTO{
				ProjectID: globexProj, Amount: 100, Currency: "USD", Description: "Sneaky", ExpenseDate: today(),
			})

			// Then
			Expect(err).To(MatchError(internal.ErrProjectNotFound))
			var n int64
			Expect(db.Table("expenses").Count(&n).Error).To(Succeed())
			Expect(n).To(BeZero())
		})

		It("should refuse inactive projects", func() {
			// Given
			Expect(db.Model(&projectDatamodel.Project{}).Where("id = ?", website).Update("is_active", false).Error).To(Succeed())

			// When
			_, err := service.Create(ctx, employee, expense.CreateExpenseDTO{
				ProjectID: website, Amount: 100, Currency: "USD", Description: "Lunch", ExpenseDate: today(),
			})

			// Then
			Expect(err).To(MatchError(internal.ErrProjectInactive))
		})

		It("should enforce the employee spending cap", func() {
			// Given
			limit := int64(5000)
			_, err := policies.Update(ctx, admin, policy.UpdatePolicyDTO{ApprovalType: policy.ApprovalTypeMajority, EmployeeSpendingCap: &limit})
			Expect(err).ToNot(HaveOccurred())

			// When
			_, err = service.Create(ctx, employee, expense.CreateExpenseDTO{
				ProjectID: website, Amount: 5001, Currency: "USD", Description: "Hotel", ExpenseDate: today(),
			})

			// Then
			Expect(err).To(MatchError(internal.ErrSpendingCapExceeded))
			submit(employee, 5000)
		})

		Context("with receipts", func() {
			upload := func(companyID int64) string {
				key := fmt.Sprintf("receipts/%d/%d.png", companyID, time.Now().UnixNano())
				_, err := store.Put(key, bytes.NewReader([]byte("\x89PNG\r\n\x1a\n0000")))
				Expect(err).ToNot(HaveOccurred())
				return key
			}

			It("should attach uploaded receipts", func() {
				// Given
				key := upload(acme)

				// When
				e, err := service.Create(ctx, employee, expense.CreateExpenseDTO{
					ProjectID: website, Amount: 100, Currency: "USD", Description: "Lunch", ExpenseDate: today(),
					Receipts: []expense.ReceiptDTO{{Key: key, MimeType: "image/png", Size: 12}},
				})

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(e.Receipts).To(HaveLen(1))
				Expect(e.Receipts[0].Size).To(Equal(int64(12)))

				got, err := service.Get(ctx, employee, e.ID)
				Expect(err).ToNot(HaveOccurred())
				Expect(got.Receipts).To(HaveLen(1))
				Expect(got.Receipts[0].Key).To(Equal(key))
			})

			It("should refuse keys issued to another company", func() {
				// Given
				key := upload(globex)

				// When
				_, err := service.Create(ctx, employee, expense.CreateExpenseDTO{
					ProjectID: website, Amount: 100, Currency: "USD", Description: "Lunch", ExpenseDate: today(),
					Receipts: []expense.ReceiptDTO{{Key: key, MimeType: "image/png"}},
				})

				// Then
				Expect(err).To(MatchError(internal.ErrInvalidReceipt))
			})

			It("should refuse keys that were never uploaded", func() {
				// When
				_, err := service.Create(ctx, employee, expense.CreateExpenseDTO{
					ProjectID: website, Amount: 100, Currency: "USD", Description: "Lunch", ExpenseDate: today(),
					Receipts: []expense.ReceiptDTO{{Key: fmt.Sprintf("receipts/%d/missing.png", acme), MimeType: "image/png"}},
				})

				// Then
				Expect(err).To(MatchError(internal.ErrInvalidReceipt))
			})

			It("should stream a receipt only inside the company", func() {
				// Given
				key := upload(acme)
				e, err := service.Create(ctx, employee, expense.CreateExpenseDTO{
					ProjectID: website, Amount: 100, Currency: "USD", Description: "Lunch", ExpenseDate: today(),
					Receipts: []expense.ReceiptDTO{{Key: key, MimeType: "image/png"}},
				})
				Expect(err).ToNot(HaveOccurred())
				receiptID := e.Receipts[0].ID

				// When
				r, body, err := service.OpenReceipt(ctx, manager, receiptID)

				// Then
				Expect(err).ToNot(HaveOccurred())
				defer body.Close()
				data, _ := io.ReadAll(body)
				Expect(string(data)).To(HavePrefix("\x89PNG"))
				Expect(r.MimeType).To(Equal("image/png"))

				_, _, err = service.OpenReceipt(ctx, globexAdmin, receiptID)
				Expect(err).To(MatchError(internal.ErrReceiptNotFound))
				_, _, err = service.OpenReceipt(ctx, colleague, receiptID)
				Expect(err).To(MatchError(internal.ErrReceiptNotFound))
			})
		})
	})

	Describe("List and Get", func() {
		It("should show employees only their own expenses", func() {
			// Given
			mine := submit(employee, 100)
			submit(colleague, 200)

			// When
			own, total, err := service.List(ctx, employee, expense.Filter{})
			all, allTotal, err2 := service.List(ctx, manager, expense.Filter{})

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(err2).ToNot(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(own[0].ID).To(Equal(mine.ID))
			Expect(allTotal).To(Equal(int64(2)))
			Expect(all).To(HaveLen(2))

			_, err = service.Get(ctx, colleague, mine.ID)
			Expect(err).To(MatchError(internal.ErrExpenseNotFound))
		})

		It("should never list another company's expenses", func() {
			// Given
			submit(employee, 100)

			// When
			items, total, err := service.List(ctx, globexAdmin, expense.Filter{ProjectID: website})

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(total).To(BeZero())
			Expect(items).To(BeEmpty())
		})

		It("should filter by status and paginate", func() {
			// Given
			for i := 0; i < 3; i++ {
				submit(employee, int64(100+i))
			}
			decided := submit(employee, 999)
			_, err := service.Decide(ctx, manager, decided.ID, expense.DecideDTO{Decision: expense.DecisionReject})
			Expect(err).ToNot(HaveOccurred())

			// When
			page, total, err := service.List(ctx, manager, expense.Filter{Status: expense.StatusPending, Limit: 2})

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(total).To(Equal(int64(3)))
			Expect(page).To(HaveLen(2))
		})
	})

	Describe("Update and Delete", func() {
		It("should let the owner change a pending expense", func() {
			// Given
			e := submit(employee, 100)
			amount := int64(250)

			// When
			got, err := service.Update(ctx, employee, e.ID, expense.UpdateExpenseDTO{Amount: &amount})

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(got.Amount).To(Equal(int64(250)))
			Expect(auditActions(e.ID)).To(ContainElement(audit.ActionExpenseUpdate))
		})

		It("should refuse changes by anyone but the owner", func() {
			// Given
			e := submit(employee, 100)
			amount := int64(1)

			// When
			_, err := service.Update(ctx, manager, e.ID, expense.UpdateExpenseDTO{Amount: &amount})

			// Then
			Expect(err).To(MatchError(internal.ErrNotExpenseOwner))
			Expect(service.Delete(ctx, colleague, e.ID)).To(MatchError(internal.ErrExpenseNotFound))
		})

		It("should refuse moving an expense into another company's project", func() {
			// Given
			e := submit(employee, 100)

			// When
			_, err := service.Update(ctx, employee, e.ID, expense.UpdateExpenseDTO{ProjectID: &globexProj})

			// Then
			Expect(err).To(MatchError(internal.ErrProjectNotFound))
		})

		It("should refuse edits and deletion once decided", func() {
			// Given
			e := submit(employee, 100)
			_, err := service.Decide(ctx, manager, e.ID, expense.DecideDTO{Decision: expense.DecisionApprove})
			Expect(err).ToNot(HaveOccurred())
			desc := "changed"

			// When
			_, err = service.Update(ctx, employee, e.ID, expense.UpdateExpenseDTO{Description: &desc})

			// Then
			Expect(err).To(MatchError(internal.ErrCannotModifyExpense))
			Expect(service.Delete(ctx, employee, e.ID)).To(MatchError(internal.ErrCannotModifyExpense))
		})

		It("should delete a pending expense with its receipts", func() {
			// Given
			key := fmt.Sprintf("receipts/%d/r.pdf", acme)
			_, err := store.Put(key, strings.NewReader("%PDF-1.4"))
			Expect(err).ToNot(HaveOccurred())
			e, err := service.Create(ctx, employee, expense.CreateExpenseDTO{
				ProjectID: website, Amount: 100, Currency: "USD", Description: "Lunch", ExpenseDate: today(),
				Receipts: []expense.ReceiptDTO{{Key: key, MimeType: "application/pdf"}},
			})
			Expect(err).ToNot(HaveOccurred())

			// When
			Expect(service.Delete(ctx, employee, e.ID)).To(Succeed())

			// Then
			_, err = service.Get(ctx, employee, e.ID)
			Expect(err).To(MatchError(internal.ErrExpenseNotFound))
			var n int64
			Expect(db.Table("receipt_files").Count(&n).Error).To(Succeed())
			Expect(n).To(BeZero())
			_, err = store.Stat(key)
			Expect(err).To(HaveOccurred())
			Expect(auditActions(e.ID)).To(ContainElement(audit.ActionExpenseDelete))
		})
	})

	Describe("Decide", func() {
		It("should approve, record the approval and audit it", func() {
			// Given
			e := submit(employee, 4500)

			// When
			got, err := service.Decide(ctx, manager, e.ID, expense.DecideDTO{Decision: "approve", Note: "ok"})

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(got.Status).To(Equal(expense.StatusApproved))
			Expect(got.DecidedAt).ToNot(BeNil())
			Expect(got.Approvals).To(HaveLen(1))
			Expect(got.Approvals[0].ManagerID).To(Equal(manager.UserID))
			Expect(got.Approvals[0].Decision).To(Equal(expense.DecisionApprove))
			Expect(auditActions(e.ID)).To(ContainElement(audit.ActionExpenseApprove))
			Expect(published.types()).To(ContainElement(events.EventTypeExpenseDecided))
		})

		It("should only decide PENDING expenses", func() {
			// Given
			e := submit(employee, 100)
			_, err := service.Decide(ctx, manager, e.ID, expense.DecideDTO{Decision: expense.DecisionReject})
			Expect(err).ToNot(HaveOccurred())

			// When
			_, err = service.Decide(ctx, admin, e.ID, expense.DecideDTO{Decision: expense.DecisionApprove})

			// Then
			Expect(err).To(MatchError(internal.ErrInvalidExpenseStatus))
			got, err := service.Get(ctx, admin, e.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(got.Status).To(Equal(expense.StatusRejected))
			Expect(got.Approvals).To(HaveLen(1))
		})

		It("should roll back a decision that lost the race", func() {
			// Given
			e := submit(employee, 100)
			repo := postgres.NewExpenseRepository(tenant.NewClient(db))
			first := &approvalDatamodel.Approval{ExpenseID: e.ID, Decision: expense.DecisionApprove, DecidedAt: time.Now()}
			second := &approvalDatamodel.Approval{ExpenseID: e.ID, Decision: expense.DecisionReject, DecidedAt: time.Now()}
			Expect(repo.Decide(ctx, manager, e.ID, expense.StatusApproved, first)).To(Succeed())

			// When
			err := repo.Decide(ctx, admin, e.ID, expense.StatusRejected, second)

			// Then
			Expect(err).To(MatchError(expense.ErrStatusChanged))
			var approvals int64
			Expect(db.Table("approvals").Where("expense_id = ?", e.ID).Count(&approvals).Error).To(Succeed())
			Expect(approvals).To(Equal(int64(1)))
		})

		It("should refuse employees", func() {
			e := submit(employee, 100)
			_, err := service.Decide(ctx, colleague, e.ID, expense.DecideDTO{Decision: expense.DecisionApprove})
			Expect(err).To(MatchError(internal.ErrInsufficientRole))
		})

		It("should not decide another company's expense", func() {
			e := submit(employee, 100)
			_, err := service.Decide(ctx, globexAdmin, e.ID, expense.DecideDTO{Decision: expense.DecisionApprove})
			Expect(err).To(MatchError(internal.ErrExpenseNotFound))
		})

		It("should reserve large expenses for admins when the policy says so", func() {
			// Given
			threshold := int64(10000)
			_, err := policies.Update(ctx, admin, policy.UpdatePolicyDTO{
				ApprovalType: policy.ApprovalTypeMajority, LargeExpenseThreshold: &threshold, RequireCeoForLarge: true,
			})
			Expect(err).ToNot(HaveOccurred())
			e := submit(employee, 20000)

			// When
			_, err = service.Decide(ctx, manager, e.ID, expense.DecideDTO{Decision: expense.DecisionApprove})

			// Then
			Expect(err).To(MatchError(internal.ErrElevatedApproval))
			got, err := service.Decide(ctx, admin, e.ID, expense.DecideDTO{Decision: expense.DecisionApprove})
			Expect(err).ToNot(HaveOccurred())
			Expect(got.Status).To(Equal(expense.StatusApproved))
		})
	})

	Describe("NextStatus", func() {
		DescribeTable("transitions",
			func(from, decision, to string, ok bool) {
				got, err := expense.NextStatus(ctx, from, decision)
				if !ok {
					Expect(err).To(MatchError(internal.ErrInvalidExpenseStatus))
					return
				}
				Expect(err).ToNot(HaveOccurred())
				Expect(got).To(Equal(to))
			},
			Entry("approve pending", expense.StatusPending, expense.DecisionApprove, expense.StatusApproved, true),
			Entry("reject pending", expense.StatusPending, expense.DecisionReject, expense.StatusRejected, true),
			Entry("approve approved", expense.StatusApproved, expense.DecisionApprove, "", false),
			Entry("reject approved", expense.StatusApproved, expense.DecisionReject, "", false),
			Entry("approve rejected", expense.StatusRejected, expense.DecisionApprove, "", false),
			Entry("approve escalated", expense.StatusEscalated, expense.DecisionApprove, "", false),
		)
	})

	Describe("Handler", func() {
		var router http.Handler

		BeforeEach(func() {
			h := expense.NewHandler(transport.NewBaseHandler(testutil.Logger()), service)
			r := chi.NewRouter()
			as := func(next http.HandlerFunc) http.HandlerFunc {
				return func(w http.ResponseWriter, req *http.Request) {
					var scope tenant.Scope
					switch req.Header.Get("X-As") {
					case "manager":
						scope = manager
					default:
						scope = employee
					}
					next(w, req.WithContext(tenant.WithScope(req.Context(), scope)))
				}
			}
			r.Post("/api/expenses", as(h.CreateExpense))
			r.Get("/api/expenses", as(h.ListExpenses))
			r.Get("/api/expenses/export", as(h.ExportExpenses))
			r.Post("/api/expenses/{id}/approve", as(h.DecideExpense))
			router = r
		})

		do := func(method, target, as, body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, target, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-As", as)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			return rec
		}

		It("should report a non-numeric amount as a field error", func() {
			// When
			rec := do(http.MethodPost, "/api/expenses", "employee",
				fmt.Sprintf(`{"projectId":%d,"amount":"lots","currency":"USD","description":"x","expenseDate":"%s"}`, website, today()))

			// Then
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			var body map[string]any
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["success"]).To(BeFalse())
			Expect(rec.Body.String()).To(ContainSubstring(`"field":"amount"`))
		})

		It("should report a fractional amount as a field error", func() {
			rec := do(http.MethodPost, "/api/expenses", "employee",
				fmt.Sprintf(`{"projectId":%d,"amount":45.5,"currency":"USD","description":"x","expenseDate":"%s"}`, website, today()))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring(`"field":"amount"`))
		})

		It("should submit, decide and list through HTTP", func() {
			// Given
			rec := do(http.MethodPost, "/api/expenses", "employee",
				fmt.Sprintf(`{"projectId":%d,"amount":4500,"currency":"USD","description":"Taxi","expenseDate":"%s"}`, website, today()))
			Expect(rec.Code).To(Equal(http.StatusCreated))
			var created struct {
				Data expense.Expense `json:"data"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &created)).To(Succeed())

			// When
			rec = do(http.MethodPost, fmt.Sprintf("/api/expenses/%d/approve", created.Data.ID), "manager", `{"decision":"APPROVE"}`)

			// Then
			Expect(rec.Code).To(Equal(http.StatusOK))
			rec = do(http.MethodGet, "/api/expenses?status=APPROVED&pageSize=500", "manager", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			var page struct {
				Data transport.PageResult `json:"data"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &page)).To(Succeed())
			Expect(page.Data.Total).To(Equal(int64(1)))
			Expect(page.Data.PageSize).To(Equal(transport.MaxPageSize))
		})

		It("should reject an unknown status filter", func() {
			rec := do(http.MethodGet, "/api/expenses?status=PAID", "manager", "")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		DescribeTable("should export",
			func(format, contentType, magic string) {
				submit(employee, 4500)

				rec := do(http.MethodGet, "/api/expenses/export?format="+format, "manager", "")

				Expect(rec.Code).To(Equal(http.StatusOK))
				Expect(rec.Header().Get("Content-Type")).To(HavePrefix(contentType))
				Expect(rec.Header().Get("Content-Disposition")).To(ContainSubstring("." + format))
				Expect(rec.Body.String()).To(HavePrefix(magic))
			},
			Entry("xlsx", "xlsx", "application/vnd.openxmlformats", "PK"),
			Entry("csv", "csv", "text/csv", "ID,Date,Project"),
			Entry("pdf", "pdf", "application/pdf", "%PDF"),
		)
	})
})
