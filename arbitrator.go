package docchat

import "time"

// DefaultFallbackTimeout is how long a request may stream without any event
// before the fallback request is issued.
const DefaultFallbackTimeout = 7 * time.Second

// ArbiterState indicates the current state of an Arbitrator.
type ArbiterState int

const (
	ArbiterIdle     ArbiterState = iota // Before Arm().
	ArbiterArmed                        // Timer running.
	ArbiterDisarmed                     // An event arrived first. Terminal.
	ArbiterFired                        // The timer won. Terminal.
)

// Arbitrator races a single timer against the first stream event of a
// request. Whichever resolves first wins and the arbitrator never changes
// state again.
//
// An Arbitrator is owned by one goroutine: the one that selects on C() and
// calls Disarm or Fire.
type Arbitrator struct {
	timer *time.Timer
	state ArbiterState
}

// Arm starts the timer. Arming a non-idle arbitrator is a no-op.
func (a *Arbitrator) Arm(d time.Duration) {
	if a.state != ArbiterIdle {
		return
	}
	a.timer = time.NewTimer(d)
	a.state = ArbiterArmed
}

// C returns the timer channel while armed and nil otherwise, so a select on
// it never fires once the race is decided.
func (a *Arbitrator) C() <-chan time.Time {
	if a.state != ArbiterArmed {
		return nil
	}
	return a.timer.C
}

// Disarm records that an event arrived. It returns true if this call
// decided the race.
func (a *Arbitrator) Disarm() bool {
	if a.state != ArbiterArmed {
		return false
	}
	a.timer.Stop()
	a.state = ArbiterDisarmed
	return true
}

// Fire records that the fallback won. It returns true if this call decided
// the race; it is also used to escalate early when the stream ends before
// producing any event.
func (a *Arbitrator) Fire() bool {
	if a.state != ArbiterArmed {
		return false
	}
	a.timer.Stop()
	a.state = ArbiterFired
	return true
}

// State returns the current state.
func (a *Arbitrator) State() ArbiterState { return a.state }
