package fsmhelper

import "fmt"

// BudgetState is the lifecycle of a [RetryBudget].
type BudgetState uint8

const (
	// BudgetNotArmed means no budgeted call has been issued yet.
	BudgetNotArmed BudgetState = iota
	// BudgetRemaining means at least one retry is left.
	BudgetRemaining
	// BudgetExhausted means the budget was armed and is used up.
	BudgetExhausted
)

// String returns the state name.
func (s BudgetState) String() string {
	switch s {
	case BudgetNotArmed:
		return "not-armed"
	case BudgetRemaining:
		return "remaining"
	case BudgetExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("BudgetState(%d)", uint8(s))
	}
}

// RetryBudget counts the retries left for the last budgeted call. Only
// [RetryBudget.Decrement] lowers the counter.
type RetryBudget struct {
	state     BudgetState
	remaining int
}

// Arm seeds the budget with n retries. n <= 0 leaves it exhausted.
func (b *RetryBudget) Arm(n int) {
	if n <= 0 {
		b.state, b.remaining = BudgetExhausted, 0
		return
	}

	b.state, b.remaining = BudgetRemaining, n
}

// Disarm returns the budget to [BudgetNotArmed].
func (b *RetryBudget) Disarm() {
	b.state, b.remaining = BudgetNotArmed, 0
}

// State returns the current lifecycle state.
func (b *RetryBudget) State() BudgetState { return b.state }

// CanRetry reports whether another retry is allowed.
func (b *RetryBudget) CanRetry() bool {
	return b.state == BudgetRemaining && b.remaining > 0
}

// Retries returns the retries left, or -1 when the budget is not armed.
func (b *RetryBudget) Retries() int {
	if b.state == BudgetNotArmed {
		return -1
	}

	return b.remaining
}

// Decrement consumes one retry and returns the retries left. It is a no-op
// unless [RetryBudget.CanRetry] holds.
func (b *RetryBudget) Decrement() int {
	if !b.CanRetry() {
		return b.Retries()
	}

	b.remaining--
	if b.remaining == 0 {
		b.state = BudgetExhausted
	}

	return b.remaining
}
