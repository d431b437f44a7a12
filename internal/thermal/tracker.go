package thermal

// Decision is the tracker's verdict for one component in one cycle.
type Decision int

const (
	NoAlert Decision = iota
	AlertRaised
	AlertCleared
	StillAlerting
	StillNormal
)

func (d Decision) String() string {
	switch d {
	case NoAlert:
		return "no_alert"
	case AlertRaised:
		return "alert_raised"
	case AlertCleared:
		return "alert_cleared"
	case StillAlerting:
		return "still_alerting"
	case StillNormal:
		return "still_normal"
	default:
		return "unknown"
	}
}

// IsTransition reports whether the decision changed the alerting state.
func (d Decision) IsTransition() bool {
	return d == AlertRaised || d == AlertCleared
}

// Transition pairs a reading with the alert decision it produced.
type Transition struct {
	Reading  Reading
	Decision Decision
}

// State is the persisted critical-state for one component key.
type State struct {
	ConsecutiveCritical int
	Alerting            bool
}

// Thresholds holds the per-kind critical temperatures. All storage
// devices share the single SSD threshold.
type Thresholds struct {
	CPU float64
	GPU float64
	SSD float64
}

// For returns the critical threshold for a component class.
func (t Thresholds) For(c Component) float64 {
	switch c {
	case CPU:
		return t.CPU
	case GPU:
		return t.GPU
	default:
		return t.SSD
	}
}

const defaultConfirmations = 2

// Tracker keeps per-component critical-state across cycles. Each
// component is independent; a storage device gets an entry on first
// appearance and keeps it for the process lifetime, even if the device
// later disappears from snapshots.
//
// Tracker is not safe for concurrent use; the poll loop is its only
// writer.
type Tracker struct {
	thresholds    Thresholds
	confirmations int
	states        map[string]State
}

func NewTracker(thresholds Thresholds, confirmations int) *Tracker {
	if confirmations < 1 {
		confirmations = defaultConfirmations
	}

	return &Tracker{
		thresholds:    thresholds,
		confirmations: confirmations,
		states: map[string]State{
			"cpu": {},
			"gpu": {},
		},
	}
}

// Observe advances the component's state by one cycle and returns the
// decision for it.
func (t *Tracker) Observe(r Reading) Decision {
	key := r.Key()
	next, decision := transition(t.states[key], r.TemperatureC, t.thresholds.For(r.Component), t.confirmations)
	t.states[key] = next

	return decision
}

// StateFor returns a copy of the persisted state for a component key.
func (t *Tracker) StateFor(key string) State {
	return t.states[key]
}

// transition is the pure per-cycle state machine.
//
// A missing reading is "unknown", never critical: it resets the streak
// and clears an active alert. A critical reading extends the streak and
// raises once the streak reaches the confirmation count; the count
// exists to reject single-cycle spikes. A non-critical reading resets.
func transition(prev State, temp *float64, threshold float64, confirmations int) (State, Decision) {
	if temp == nil {
		if prev.Alerting {
			return State{}, AlertCleared
		}
		return State{}, NoAlert
	}

	if *temp >= threshold {
		next := State{
			ConsecutiveCritical: prev.ConsecutiveCritical + 1,
			Alerting:            prev.Alerting,
		}
		if prev.Alerting {
			return next, StillAlerting
		}
		if next.ConsecutiveCritical >= confirmations {
			next.Alerting = true
			return next, AlertRaised
		}
		return next, NoAlert
	}

	if prev.Alerting {
		return State{}, AlertCleared
	}
	return State{}, StillNormal
}
