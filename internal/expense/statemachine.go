package expense

import (
	"context"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/looplab/fsm"
)

// newStateMachine declares the decision transitions. APPROVED and REJECTED
// are terminal; nothing transitions into ESCALATED.
func newStateMachine(status string) *fsm.FSM {
	return fsm.NewFSM(
		status,
		fsm.Events{
			{Name: DecisionApprove, Src: []string{StatusPending}, Dst: StatusApproved},
			{Name: DecisionReject, Src: []string{StatusPending}, Dst: StatusRejected},
		},
		fsm.Callbacks{},
	)
}

// NextStatus returns the status decision moves an expense in current to.
func NextStatus(ctx context.Context, current, decision string) (string, error) {
	m := newStateMachine(current)
	if err := m.Event(ctx, decision); err != nil {
		return "", internal.ErrInvalidExpenseStatus.WithCause(err)
	}
	return m.Current(), nil
}
