package notification_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/frahmantamala/expensehub/internal/core/events"
	"github.com/frahmantamala/expensehub/internal/notification"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"github.com/frahmantamala/expensehub/internal/testutil"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestNotification(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notification Suite")
}

var _ = Describe("Inbox", func() {
	var (
		ctx      context.Context
		bus      *events.EventBus
		inbox    *notification.Inbox
		manager  tenant.Scope
		employee tenant.Scope
	)

	BeforeEach(func() {
		ctx = context.Background()
		bus = events.NewEventBus(testutil.Logger())
		inbox = notification.NewInbox(3, testutil.Logger())
		inbox.Subscribe(bus)

		manager = tenant.Scope{CompanyID: 1, UserID: 10, Role: tenant.RoleManager}
		employee = tenant.Scope{CompanyID: 1, UserID: 20, Role: tenant.RoleEmployee}
	})

	It("should tell managers about a new expense and not the employee", func() {
		// When
		Expect(bus.PublishSync(ctx, events.NewExpenseCreatedEvent(1, 5, employee.UserID, 4500, "USD", "Taxi"))).To(Succeed())

		// Then
		feed := inbox.List(manager)
		Expect(feed).To(HaveLen(1))
		Expect(feed[0].ExpenseID).To(Equal(int64(5)))
		Expect(feed[0].Message).To(ContainSubstring("45.00 USD"))
		Expect(inbox.List(employee)).To(BeEmpty())
	})

	It("should tell the owner about a decision after an async publish", func() {
		// When
		Expect(bus.Publish(ctx, events.NewExpenseDecidedEvent(1, 5, employee.UserID, manager.UserID, 4500, "USD", "REJECTED", "no receipt"))).To(Succeed())
		bus.Wait()

		// Then
		feed := inbox.List(employee)
		Expect(feed).To(HaveLen(1))
		Expect(feed[0].Type).To(Equal(events.EventTypeExpenseDecided))
		Expect(feed[0].Message).To(ContainSubstring("rejected: no receipt"))
	})

	It("should keep feeds apart between companies", func() {
		// Given
		other := tenant.Scope{CompanyID: 2, UserID: 10, Role: tenant.RoleManager}

		// When
		Expect(bus.PublishSync(ctx, events.NewExpenseCreatedEvent(1, 5, employee.UserID, 100, "USD", "Lunch"))).To(Succeed())

		// Then
		Expect(inbox.List(other)).To(BeEmpty())
	})

	It("should cap each feed and list newest first", func() {
		// Given
		base := time.Now()
		for i := 0; i < 5; i++ {
			inbox.Push(fmt.Sprintf("company:%d:user:%d", employee.CompanyID, employee.UserID), notification.Notification{
				ID:        fmt.Sprint(i),
				ExpenseID: int64(i),
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			})
		}

		// When
		feed := inbox.List(employee)

		// Then
		Expect(feed).To(HaveLen(3))
		Expect(feed[0].ExpenseID).To(Equal(int64(4)))
		Expect(feed[2].ExpenseID).To(Equal(int64(2)))
	})
})
