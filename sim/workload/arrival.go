// Package workload generates synthetic vehicle arrivals for the intersection harness.
// Times are in ticks of one millisecond of simulated signal time.
package workload

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// TicksPerSecond converts signal-time seconds (the unit of green time) to ticks.
const TicksPerSecond = 1000

// ValidArrivalProcesses is the set of recognized arrival process names.
var ValidArrivalProcesses = map[string]bool{"": true, "poisson": true, "gamma": true, "weibull": true}

// ArrivalSampler generates inter-arrival times for one approach.
type ArrivalSampler interface {
	// SampleIAT returns the next inter-arrival time in ticks.
	// Always returns a positive value (>= 1).
	SampleIAT(rng *rand.Rand) int64
}

// PoissonSampler generates exponentially-distributed inter-arrival times (CV=1).
type PoissonSampler struct {
	ratePerTick float64 // vehicles per tick
}

func (s *PoissonSampler) SampleIAT(rng *rand.Rand) int64 {
	return atLeastOneTick(rng.ExpFloat64() / s.ratePerTick)
}

// GammaSampler generates Gamma-distributed inter-arrival times.
// CV > 1 produces platoon-like bursts, CV < 1 more regular headways.
type GammaSampler struct {
	shape float64 // 1/CV²
	scale float64 // CV²/rate in ticks
}

func (s *GammaSampler) SampleIAT(rng *rand.Rand) int64 {
	return atLeastOneTick(gammaRand(rng, s.shape, s.scale))
}

// gammaRand samples from Gamma(shape, scale) using Marsaglia-Tsang's method.
// For shape >= 1: direct method.
// For shape < 1: Gamma(shape) = Gamma(shape+1) * U^(1/shape).
func gammaRand(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1.0 {
		// Ahrens-Dieter boost
		u := rng.Float64()
		return gammaRand(rng, shape+1.0, scale) * math.Pow(u, 1.0/shape)
	}

	// Marsaglia-Tsang for shape >= 1
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)

	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1.0 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()

		// squeeze test
		if u < 1.0-0.0331*(x*x)*(x*x) {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// WeibullSampler generates Weibull-distributed inter-arrival times.
type WeibullSampler struct {
	shape float64 // Weibull k
	scale float64 // Weibull λ in ticks
}

func (s *WeibullSampler) SampleIAT(rng *rand.Rand) int64 {
	u := rng.Float64()
	if u == 0 {
		u = math.SmallestNonzeroFloat64 // -ln(0) = +Inf
	}
	return atLeastOneTick(s.scale * math.Pow(-math.Log(u), 1.0/s.shape))
}

func atLeastOneTick(sample float64) int64 {
	if sample > math.MaxInt64/2 {
		return math.MaxInt64 / 2
	}
	iat := int64(sample)
	if iat < 1 {
		return 1
	}
	return iat
}

// NewArrivalSampler creates a sampler for process with mean rate vehiclesPerSecond.
// cv is the coefficient of variation of headways; it is ignored for poisson.
// An empty process name selects poisson.
func NewArrivalSampler(process string, vehiclesPerSecond, cv float64) (ArrivalSampler, error) {
	if !ValidArrivalProcesses[process] {
		return nil, fmt.Errorf("unknown arrival process %q", process)
	}
	if vehiclesPerSecond < 0 || math.IsNaN(vehiclesPerSecond) {
		return nil, fmt.Errorf("arrival rate must be non-negative, got %v", vehiclesPerSecond)
	}
	ratePerTick := vehiclesPerSecond / TicksPerSecond
	if ratePerTick < 1e-15 {
		ratePerTick = 1e-15
	}
	if cv <= 0 {
		cv = 1.0
	}

	switch process {
	case "gamma":
		shape := 1.0 / (cv * cv)
		scale := cv * cv / ratePerTick
		if shape < 0.01 {
			logrus.Warnf("gamma shape %.4f (CV=%.1f) is very small; falling back to poisson", shape, cv)
			return &PoissonSampler{ratePerTick: ratePerTick}, nil
		}
		return &GammaSampler{shape: shape, scale: scale}, nil
	case "weibull":
		k := weibullShapeFromCV(cv)
		scale := (1.0 / ratePerTick) / math.Gamma(1.0+1.0/k)
		return &WeibullSampler{shape: k, scale: scale}, nil
	default:
		return &PoissonSampler{ratePerTick: ratePerTick}, nil
	}
}

// weibullShapeFromCV finds k such that CV² = Γ(1+2/k)/Γ(1+1/k)² - 1 by bisection
// over k ∈ [0.1, 100], stopping once |CV(k) - target| < 0.001.
// Gives up after 100 iterations with a warning.
func weibullShapeFromCV(targetCV float64) float64 {
	lo, hi := 0.1, 100.0
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2.0
		cv := weibullCV(mid)
		if math.Abs(cv-targetCV) < 0.001 {
			return mid
		}
		// CV is monotonically decreasing in k
		if cv > targetCV {
			lo = mid
		} else {
			hi = mid
		}
	}
	logrus.Warnf("weibullShapeFromCV: bisection did not converge for CV=%.3f; using k=%.3f", targetCV, (lo+hi)/2.0)
	return (lo + hi) / 2.0
}

// weibullCV is the headway coefficient of variation of Weibull(k).
func weibullCV(k float64) float64 {
	g1 := math.Gamma(1.0 + 1.0/k)
	g2 := math.Gamma(1.0 + 2.0/k)
	return math.Sqrt(g2/(g1*g1) - 1.0)
}

// Stream turns a sampler into a continuous arrival process.
// The next pending arrival carries over between windows.
type Stream struct {
	sampler ArrivalSampler
	rng     *rand.Rand
	next    int64 // tick of the next pending arrival
	started bool
}

// NewStream creates a Stream starting at tick 0.
func NewStream(sampler ArrivalSampler, rng *rand.Rand) *Stream {
	return &Stream{sampler: sampler, rng: rng}
}

// Advance counts arrivals with a timestamp strictly before until.
func (s *Stream) Advance(until int64) int {
	if !s.started {
		s.next = s.sampler.SampleIAT(s.rng)
		s.started = true
	}
	n := 0
	for s.next < until {
		n++
		s.next += s.sampler.SampleIAT(s.rng)
	}
	return n
}
