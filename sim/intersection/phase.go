package intersection

import (
	"fmt"

	"github.com/adaptive-signal/adaptive-signal/sim"
)

// DefaultMaxRepeat bounds how many consecutive greens longest-queue may give one approach.
const DefaultMaxRepeat = 3

// ValidPhasePolicies is the set of recognized phase policy names.
var ValidPhasePolicies = map[string]bool{"": true, "round-robin": true, "longest-queue": true}

// PhasePolicy picks the approach that receives the next green.
// It only chooses who is served; the green duration is always decided by sim.DecideGreenTime.
type PhasePolicy interface {
	Next(state sim.StateSnapshot) (index int, reason string)
}

// RoundRobin serves approaches in DirectionOrder.
type RoundRobin struct {
	counter int
}

// Next implements PhasePolicy for RoundRobin.
func (rr *RoundRobin) Next(state sim.StateSnapshot) (int, string) {
	n := len(state.QueueLengths)
	if n == 0 {
		panic("RoundRobin.Next: empty state")
	}
	idx := rr.counter % n
	rr.counter++
	return idx, fmt.Sprintf("round-robin[%d]", rr.counter-1)
}

// LongestQueue serves the approach with the most queued vehicles.
// Ties go to the lowest index. After maxRepeat consecutive greens the current
// approach is skipped in favour of the next longest, so no queue starves.
type LongestQueue struct {
	maxRepeat int
	last      int
	repeats   int
}

// Next implements PhasePolicy for LongestQueue.
func (lq *LongestQueue) Next(state sim.StateSnapshot) (int, string) {
	if len(state.QueueLengths) == 0 {
		panic("LongestQueue.Next: empty state")
	}
	best, second := -1, -1
	for i, q := range state.QueueLengths {
		switch {
		case best == -1 || q > state.QueueLengths[best]:
			second = best
			best = i
		case second == -1 || q > state.QueueLengths[second]:
			second = i
		}
	}

	reason := fmt.Sprintf("longest-queue(q=%d)", state.QueueLengths[best])
	if best == lq.last && lq.repeats >= lq.maxRepeat && second != -1 {
		best = second
		reason = fmt.Sprintf("longest-queue-repeat-limit(q=%d)", state.QueueLengths[best])
	}
	if best == lq.last {
		lq.repeats++
	} else {
		lq.last, lq.repeats = best, 1
	}
	return best, reason
}

// NewPhasePolicy creates a phase policy by name.
// An empty string defaults to round-robin. maxRepeat <= 0 uses DefaultMaxRepeat.
// Panics on unrecognized names.
func NewPhasePolicy(name string, maxRepeat int) PhasePolicy {
	if !ValidPhasePolicies[name] {
		panic(fmt.Sprintf("unknown phase policy %q", name))
	}
	if maxRepeat <= 0 {
		maxRepeat = DefaultMaxRepeat
	}
	switch name {
	case "", "round-robin":
		return &RoundRobin{}
	case "longest-queue":
		return &LongestQueue{maxRepeat: maxRepeat, last: -1}
	default:
		panic(fmt.Sprintf("unhandled phase policy %q", name))
	}
}
