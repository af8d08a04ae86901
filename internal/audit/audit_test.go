package audit_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/frahmantamala/expensehub/internal/audit"
	"github.com/frahmantamala/expensehub/internal/audit/postgres"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"github.com/frahmantamala/expensehub/internal/testutil"
	"github.com/frahmantamala/expensehub/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAudit(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Audit Suite")
}

var _ = Describe("Audit", func() {
	var (
		ctx     context.Context
		service *audit.Service
		acme    tenant.Scope
		globex  tenant.Scope
	)

	BeforeEach(func() {
		db, err := testutil.NewDB()
		Expect(err).ToNot(HaveOccurred())
		ctx = context.Background()

		acme = testutil.Member(db, testutil.Company(db, "Acme"), "admin@acme.io", tenant.RoleAdmin)
		globex = testutil.Member(db, testutil.Company(db, "Globex"), "admin@globex.io", tenant.RoleAdmin)
		service = audit.NewService(postgres.NewAuditRepository(tenant.NewClient(db)), testutil.Logger())
	})

	Describe("Log and List", func() {
		It("should stamp the actor and return newest first", func() {
			// Given
			Expect(service.Log(ctx, acme, audit.Entry{Action: audit.ActionProjectCreate, EntityType: audit.EntityProject, EntityID: 1})).To(Succeed())
			Expect(service.Log(ctx, acme, audit.Entry{
				Action: audit.ActionExpenseCreate, EntityType: audit.EntityExpense, EntityID: 7,
				Metadata: map[string]any{"amount": 4500},
			})).To(Succeed())

			// When
			logs, total, err := service.List(ctx, acme, audit.Filter{})

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
			Expect(logs[0].Action).To(Equal(audit.ActionExpenseCreate))
			Expect(logs[0].ActorID).To(Equal(acme.UserID))
			Expect(logs[0].Metadata).To(HaveKeyWithValue("amount", BeNumerically("==", 4500)))
			Expect(logs[1].Action).To(Equal(audit.ActionProjectCreate))
		})

		It("should filter by entity and never show another company's rows", func() {
			// Given
			service.Record(ctx, acme, audit.Entry{Action: audit.ActionExpenseCreate, EntityType: audit.EntityExpense, EntityID: 1})
			service.Record(ctx, acme, audit.Entry{Action: audit.ActionExpenseApprove, EntityType: audit.EntityExpense, EntityID: 1})
			service.Record(ctx, acme, audit.Entry{Action: audit.ActionExpenseCreate, EntityType: audit.EntityExpense, EntityID: 2})
			service.Record(ctx, globex, audit.Entry{Action: audit.ActionExpenseCreate, EntityType: audit.EntityExpense, EntityID: 1})

			// When
			logs, total, err := service.List(ctx, acme, audit.Filter{EntityType: audit.EntityExpense, EntityID: 1})

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
			Expect(logs).To(HaveLen(2))
			for _, l := range logs {
				Expect(l.ActorID).To(Equal(acme.UserID))
			}
		})

		It("should page results while reporting the full total", func() {
			for i := int64(1); i <= 5; i++ {
				service.Record(ctx, acme, audit.Entry{Action: audit.ActionProjectUpdate, EntityType: audit.EntityProject, EntityID: i})
			}

			logs, total, err := service.List(ctx, acme, audit.Filter{Limit: 2, Offset: 2})

			Expect(err).ToNot(HaveOccurred())
			Expect(total).To(Equal(int64(5)))
			Expect(logs).To(HaveLen(2))
			Expect(logs[0].EntityID).To(Equal(int64(3)))
		})
	})

	Describe("Handler", func() {
		It("should return a paginated envelope", func() {
			service.Record(ctx, acme, audit.Entry{Action: audit.ActionPolicyUpdate, EntityType: audit.EntityPolicy, EntityID: 1})
			handler := audit.NewHandler(transport.NewBaseHandler(testutil.Logger()), service)

			req := httptest.NewRequest(http.MethodGet, "/api/audit-logs?action=policy.update&pageSize=10", nil)
			req = req.WithContext(tenant.WithScope(req.Context(), acme))
			rec := httptest.NewRecorder()
			handler.ListAuditLogs(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			var resp struct {
				Success bool `json:"success"`
				Data    struct {
					Items    []audit.Log `json:"items"`
					Total    int64       `json:"total"`
					PageSize int         `json:"pageSize"`
				} `json:"data"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Success).To(BeTrue())
			Expect(resp.Data.Total).To(Equal(int64(1)))
			Expect(resp.Data.PageSize).To(Equal(10))
			Expect(resp.Data.Items[0].Action).To(Equal(audit.ActionPolicyUpdate))
		})

		It("should reject a malformed entityId", func() {
			handler := audit.NewHandler(transport.NewBaseHandler(testutil.Logger()), service)
			req := httptest.NewRequest(http.MethodGet, "/api/audit-logs?entityId=abc", nil)
			req = req.WithContext(tenant.WithScope(req.Context(), acme))
			rec := httptest.NewRecorder()

			handler.ListAuditLogs(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
