package engine

// TurnTimer is the per-turn countdown. One instance is shared and
// re-armed for whichever player currently holds the turn. The timer
// never reads a clock: an external driver feeds it elapsed time through
// Tick, so engine and driver stay on one execution context.
type TurnTimer struct {
	budget    float64
	remaining float64
	running   bool
	onExpire  func()
}

// NewTurnTimer creates a stopped timer with the given per-turn budget in
// seconds. onExpire fires exactly once per arm cycle when the countdown
// reaches zero; it never fires on Stop.
func NewTurnTimer(budget float64, onExpire func()) *TurnTimer {
	return &TurnTimer{budget: budget, onExpire: onExpire}
}

// Start resets the remaining time to the full budget and begins counting.
func (t *TurnTimer) Start() {
	t.Reset()
	t.running = true
}

// Reset restores the remaining time to the full budget without changing
// whether the timer is running.
func (t *TurnTimer) Reset() {
	t.remaining = t.budget
}

// Stop halts the countdown without firing the expiry callback.
func (t *TurnTimer) Stop() {
	t.running = false
}

// Tick advances the countdown by elapsed seconds. On reaching zero the
// timer stops itself and fires the expiry callback once.
func (t *TurnTimer) Tick(elapsed float64) {
	if !t.running {
		return
	}
	t.remaining -= elapsed
	if t.remaining > 0 {
		return
	}
	t.remaining = 0
	t.Stop()
	if t.onExpire != nil {
		t.onExpire()
	}
}

// Expired reports whether the remaining time has run out. Pure query;
// phase logic uses it to pick the voluntary or forced action path.
func (t *TurnTimer) Expired() bool {
	return t.remaining <= 0
}
