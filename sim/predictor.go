package sim

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultDirections is the approach count of a four-way intersection.
	DefaultDirections = 4
	// DefaultAlpha is the EMA smoothing factor used when none is configured.
	DefaultAlpha = 0.3
	// emaBaseline seeds every direction so a cold predictor never forecasts zero.
	emaBaseline = 1.0
)

// ForecastProvider supplies per-direction arrival forecasts.
// Predict returns one value per direction for the given horizon (in cycles).
type ForecastProvider interface {
	Predict(horizon float64) []float64
}

// EmaPredictor keeps an exponential moving average of observed arrivals per direction.
//
// Thread-safety: NOT thread-safe. One Update per cycle from a single goroutine;
// callers sharing an instance across directions must serialize access.
type EmaPredictor struct {
	alpha float64
	ema   []float64
}

// NewEmaPredictor creates a predictor for the given number of directions.
// alpha must lie in (0, 1].
func NewEmaPredictor(directions int, alpha float64) (*EmaPredictor, error) {
	if directions < 0 {
		return nil, fmt.Errorf("directions must be non-negative, got %d", directions)
	}
	if !(alpha > 0 && alpha <= 1) {
		return nil, fmt.Errorf("alpha must be in (0, 1], got %v", alpha)
	}
	ema := make([]float64, directions)
	for i := range ema {
		ema[i] = emaBaseline
	}
	return &EmaPredictor{alpha: alpha, ema: ema}, nil
}

// Update blends one observation per direction into the running average.
// Entries beyond the predictor's direction count are ignored; directions
// without an observation keep their previous estimate.
func (p *EmaPredictor) Update(observed []float64) {
	n := min(len(p.ema), len(observed))
	for i := 0; i < n; i++ {
		p.ema[i] = p.alpha*observed[i] + (1-p.alpha)*p.ema[i]
	}
}

// UpdateCounts is Update for integer observations such as queue lengths.
func (p *EmaPredictor) UpdateCounts(observed []int) {
	obs := make([]float64, len(observed))
	for i, c := range observed {
		obs[i] = float64(c)
	}
	p.Update(obs)
}

// Predict returns the average scaled linearly by horizon. It does not
// extrapolate trends; horizon 1 returns the raw averages.
func (p *EmaPredictor) Predict(horizon float64) []float64 {
	return floats.ScaleTo(make([]float64, len(p.ema)), horizon, p.ema)
}

// State returns a copy of the current averages.
func (p *EmaPredictor) State() []float64 {
	out := make([]float64, len(p.ema))
	copy(out, p.ema)
	return out
}

// Alpha returns the smoothing factor.
func (p *EmaPredictor) Alpha() float64 { return p.alpha }

// Directions returns the number of tracked directions.
func (p *EmaPredictor) Directions() int { return len(p.ema) }

// ConstantForecast forecasts the same value for each of Directions approaches.
type ConstantForecast struct {
	Value      float64
	Directions int
}

// Predict implements ForecastProvider.
func (c ConstantForecast) Predict(horizon float64) []float64 {
	out := make([]float64, max(c.Directions, 0))
	for i := range out {
		out[i] = c.Value * horizon
	}
	return out
}

// SequenceForecast wraps a fixed per-direction forecast vector.
type SequenceForecast []float64

// Predict implements ForecastProvider.
func (s SequenceForecast) Predict(horizon float64) []float64 {
	return floats.ScaleTo(make([]float64, len(s)), horizon, s)
}
