package validation

import (
	"time"

	"ceremony/internal/domain"
)

// Transition names a scheduled step of the ceremony.
type Transition int

const (
	// ExtraBump swaps failed required flips for decoded extras.
	ExtraBump Transition = iota
	// FinalizeShort marks short flips that never decoded as failed.
	FinalizeShort
	// ShortDeadline auto-submits short answers or fails the ceremony.
	ShortDeadline
	// Reveal arms the short answer reveal.
	Reveal
	// LongDeadline auto-submits long answers or fails the ceremony.
	LongDeadline
	// FinalizeLong marks long flips that never decoded as failed.
	FinalizeLong
)

var transitionNames = [...]string{
	"extra-bump", "finalize-short", "short-deadline", "reveal", "long-deadline", "finalize-long",
}

func (t Transition) String() string {
	if int(t) < len(transitionNames) {
		return transitionNames[t]
	}
	return "unknown"
}

// Transitions lists every scheduled step.
var Transitions = []Transition{ExtraBump, FinalizeShort, ShortDeadline, Reveal, LongDeadline, FinalizeLong}

// Schedule holds the ceremony offsets and retry intervals. Offsets are
// relative to the validation start; ShortLead is subtracted from the end of
// the short session.
type Schedule struct {
	ExtraBump       time.Duration
	FinalizeShort   time.Duration
	ShortLead       time.Duration
	FinalizeLongGap time.Duration

	// Floor is the minimum delay for transitions that use one.
	Floor time.Duration

	HashPoll       time.Duration
	LongPollWindow time.Duration
	KeyRetry       time.Duration
}

// DefaultSchedule returns the production offsets.
func DefaultSchedule() Schedule {
	return Schedule{
		ExtraBump:       35 * time.Second,
		FinalizeShort:   90 * time.Second,
		ShortLead:       10 * time.Second,
		FinalizeLongGap: 120 * time.Second,
		Floor:           5 * time.Second,
		HashPoll:        5 * time.Second,
		LongPollWindow:  time.Minute,
		KeyRetry:        time.Second,
	}
}

// Target returns the absolute instant of t and the floor applied to its
// delay. Finalize steps and the reveal use no floor.
func (s Schedule) Target(t Transition, timing domain.Timing) (time.Time, time.Duration) {
	start := timing.ValidationStart
	switch t {
	case ExtraBump:
		return start.Add(s.ExtraBump), s.Floor
	case FinalizeShort:
		return start.Add(s.FinalizeShort), 0
	case ShortDeadline:
		return start.Add(timing.ShortSession - s.ShortLead), s.Floor
	case Reveal:
		return start.Add(timing.ShortSession), 0
	case LongDeadline:
		return start.Add(timing.ShortSession - s.ShortLead + timing.LongSession), s.Floor
	case FinalizeLong:
		return start.Add(timing.ShortSession + s.FinalizeLongGap), 0
	}
	return start, 0
}

// Delay is max(target - now, floor) for transition t.
func (s Schedule) Delay(t Transition, timing domain.Timing, now time.Time) time.Duration {
	target, floor := s.Target(t, timing)
	d := target.Sub(now)
	if d < floor {
		d = floor
	}
	return d
}

// keepPollingLong reports whether long hashes that are not ready yet should
// be polled again rather than fetched with backoff.
func (s Schedule) keepPollingLong(timing domain.Timing, now time.Time) bool {
	return now.Before(timing.ShortEnd().Add(s.LongPollWindow))
}
