package intersection

import (
	"fmt"

	"github.com/adaptive-signal/adaptive-signal/sim"
	"github.com/adaptive-signal/adaptive-signal/sim/trace"
	"github.com/adaptive-signal/adaptive-signal/sim/workload"
)

// Config describes the simulated intersection and the synthetic traffic fed to it.
type Config struct {
	Directions     []string // approach identifiers; round robin serves them in this order
	Lanes          int      // lanes per approach (> 0)
	Cycles         int      // number of decisions to run (> 0)
	Alpha          float64  // EMA smoothing factor, (0, 1]
	ArrivalRate    float64  // mean vehicles per second per approach (>= 0)
	ArrivalCV      float64  // headway coefficient of variation (gamma/weibull only)
	ArrivalProcess string   // "poisson" (default), "gamma" or "weibull"
	SaturationFlow float64  // vehicles per second of green per lane (> 0)
	LostTime       int      // clearance seconds between phases (>= 0)
	PhasePolicy    string   // "round-robin" (default) or "longest-queue"
	MaxRepeat      int      // longest-queue: consecutive greens per approach (0 = DefaultMaxRepeat)
	Seed           int64
	TraceLevel     string // "none" (default) or "decisions"
}

// DefaultConfig returns a four-way, three-lane intersection under moderate Poisson load.
func DefaultConfig() Config {
	return Config{
		Directions:     []string{"right", "down", "left", "up"},
		Lanes:          sim.DefaultLanes,
		Cycles:         100,
		Alpha:          sim.DefaultAlpha,
		ArrivalRate:    0.15,
		ArrivalCV:      1.0,
		ArrivalProcess: "poisson",
		SaturationFlow: 0.5,
		LostTime:       4,
		PhasePolicy:    "round-robin",
		Seed:           42,
		TraceLevel:     string(trace.TraceLevelNone),
	}
}

// Validate checks that every field is in range.
func (c Config) Validate() error {
	if len(c.Directions) == 0 {
		return fmt.Errorf("at least one direction is required")
	}
	seen := make(map[string]bool, len(c.Directions))
	for _, d := range c.Directions {
		if d == "" {
			return fmt.Errorf("direction names must be non-empty")
		}
		if seen[d] {
			return fmt.Errorf("duplicate direction %q", d)
		}
		seen[d] = true
	}
	if c.Lanes <= 0 {
		return fmt.Errorf("lanes must be positive, got %d", c.Lanes)
	}
	if c.Cycles <= 0 {
		return fmt.Errorf("cycles must be positive, got %d", c.Cycles)
	}
	if !(c.Alpha > 0 && c.Alpha <= 1) {
		return fmt.Errorf("alpha must be in (0, 1], got %v", c.Alpha)
	}
	if c.ArrivalRate < 0 {
		return fmt.Errorf("arrival rate must be non-negative, got %v", c.ArrivalRate)
	}
	if !workload.ValidArrivalProcesses[c.ArrivalProcess] {
		return fmt.Errorf("unknown arrival process %q", c.ArrivalProcess)
	}
	if c.SaturationFlow <= 0 {
		return fmt.Errorf("saturation flow must be positive, got %v", c.SaturationFlow)
	}
	if c.LostTime < 0 {
		return fmt.Errorf("lost time must be non-negative, got %d", c.LostTime)
	}
	if !ValidPhasePolicies[c.PhasePolicy] {
		return fmt.Errorf("unknown phase policy %q", c.PhasePolicy)
	}
	if c.MaxRepeat < 0 {
		return fmt.Errorf("max repeat must be non-negative, got %d", c.MaxRepeat)
	}
	if !trace.IsValidTraceLevel(c.TraceLevel) {
		return fmt.Errorf("unknown trace level %q", c.TraceLevel)
	}
	return nil
}
