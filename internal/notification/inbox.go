// Package notification keeps a short, process-local feed of expense activity
// per user and per company manager group. Feeds are lost on restart.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/frahmantamala/expensehub/internal/core/events"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"github.com/frahmantamala/expensehub/pkg/money"
)

const DefaultLimit = 50

type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	ExpenseID int64     `json:"expenseId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Inbox struct {
	mu     sync.Mutex
	limit  int
	feeds  map[string][]Notification
	logger *slog.Logger
}

func NewInbox(limit int, logger *slog.Logger) *Inbox {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Inbox{
		limit:  limit,
		feeds:  make(map[string][]Notification),
		logger: logger,
	}
}

func managersKey(companyID int64) string {
	return fmt.Sprintf("company:%d:managers", companyID)
}

func userKey(companyID, userID int64) string {
	return fmt.Sprintf("company:%d:user:%d", companyID, userID)
}

// Push appends n to the feed, dropping the oldest entries past the limit.
func (i *Inbox) Push(key string, n Notification) {
	i.mu.Lock()
	defer i.mu.Unlock()

	feed := append(i.feeds[key], n)
	if len(feed) > i.limit {
		feed = append([]Notification(nil), feed[len(feed)-i.limit:]...)
	}
	i.feeds[key] = feed
}

// List returns the caller's notifications newest first. Managers and admins
// also see their company's manager feed.
func (i *Inbox) List(scope tenant.Scope) []Notification {
	i.mu.Lock()
	out := append([]Notification(nil), i.feeds[userKey(scope.CompanyID, scope.UserID)]...)
	if scope.Role.CanDecide() {
		out = append(out, i.feeds[managersKey(scope.CompanyID)]...)
	}
	i.mu.Unlock()

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	if len(out) > i.limit {
		out = out[:i.limit]
	}
	return out
}

// Subscribe feeds the inbox from expense events on bus.
func (i *Inbox) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeExpenseCreated, i.onExpenseCreated)
	bus.Subscribe(events.EventTypeExpenseDecided, i.onExpenseDecided)
}

func (i *Inbox) onExpenseCreated(_ context.Context, event events.Event) error {
	e, ok := event.(*events.ExpenseCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}
	i.Push(managersKey(e.CompanyID), Notification{
		ID:        e.EventID(),
		Type:      e.EventType(),
		Message:   fmt.Sprintf("New expense #%d awaiting approval: %s (%s)", e.ExpenseID, money.Format(e.Amount, e.Currency), e.Description),
		ExpenseID: e.ExpenseID,
		CreatedAt: e.OccurredAt(),
	})
	i.logger.Debug("notification queued", "event_type", e.EventType(), "expense_id", e.ExpenseID)
	return nil
}

func (i *Inbox) onExpenseDecided(_ context.Context, event events.Event) error {
	e, ok := event.(*events.ExpenseDecidedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}
	msg := fmt.Sprintf("Your expense #%d of %s was %s", e.ExpenseID, money.Format(e.Amount, e.Currency), strings.ToLower(e.Status))
	if e.Note != "" {
		msg += ": " + e.Note
	}
	i.Push(userKey(e.CompanyID, e.EmployeeID), Notification{
		ID:        e.EventID(),
		Type:      e.EventType(),
		Message:   msg,
		ExpenseID: e.ExpenseID,
		CreatedAt: e.OccurredAt(),
	})
	i.logger.Debug("notification queued", "event_type", e.EventType(), "expense_id", e.ExpenseID)
	return nil
}
