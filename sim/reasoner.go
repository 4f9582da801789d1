package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// highDensityBoost scales the allocation for high-density forecasts.
const highDensityBoost = 1.2

var (
	// ErrForecastIndex is returned when the forecast has no entry for the requested direction.
	ErrForecastIndex = errors.New("forecast: direction index out of range")
	// ErrForecastValue is returned when the forecast entry is not a finite number.
	ErrForecastValue = errors.New("forecast: value is not a finite number")
)

// DensityLabel is the coarse classification of a forecast.
type DensityLabel string

const (
	DensityLow    DensityLabel = "low"
	DensityMedium DensityLabel = "medium"
	DensityHigh   DensityLabel = "high"
)

// ClassifyDensity labels a forecast against [low, high] thresholds.
// Boundary values belong to the outer bands, never to medium.
func ClassifyDensity(pred float64, thresholds [2]float64) DensityLabel {
	low, high := thresholds[0], thresholds[1]
	if pred <= low {
		return DensityLow
	}
	if pred >= high {
		return DensityHigh
	}
	return DensityMedium
}

// DecisionRecord is the green-time allocation for one direction in one cycle.
type DecisionRecord struct {
	GreenTime   int          // allocated green, always within [MinGreen, MaxGreen]
	Predicted   float64      // forecast used for the decision
	Label       DensityLabel // density band of Predicted
	Explanation string       // human-readable summary
}

// DecideGreenTime allocates a green time for directionIndex.
//
// The forecast is read at horizon 1, classified, and mapped to a base
// allocation by label. When cfg.CycleLimit is set the allocation is capped by
// it; this is a single-direction bound and does not sum green times across a
// full signal cycle. The result is finally clamped to [MinGreen, MaxGreen].
//
// Errors from the forecast are returned unrecovered. The forecast provider is
// only read, never updated.
func DecideGreenTime(state StateSnapshot, forecast ForecastProvider, directionIndex int, cfg KnowledgeConfig) (DecisionRecord, error) {
	pred, err := forecastFor(forecast, directionIndex)
	if err != nil {
		return DecisionRecord{}, err
	}

	label := ClassifyDensity(pred, cfg.DensityThresholds)

	var green int
	switch label {
	case DensityLow:
		green = cfg.MinGreen
	case DensityMedium:
		green = capTruncate(float64(cfg.MinGreen)+cfg.AllocationFactor*pred, cfg.MaxGreen)
	default:
		green = capTruncate(float64(cfg.MinGreen)+cfg.AllocationFactor*pred*highDensityBoost, cfg.MaxGreen)
	}

	if cfg.CycleLimit != nil {
		green = min(green, *cfg.CycleLimit)
	}

	if logrus.IsLevelEnabled(logrus.TraceLevel) && directionIndex < len(state.QueueLengths) {
		logrus.Tracef("direction %d: queue=%d pred=%.2f label=%s base=%d",
			directionIndex, state.QueueLengths[directionIndex], pred, label, green)
	}

	return DecisionRecord{
		GreenTime:   max(cfg.MinGreen, min(green, cfg.MaxGreen)),
		Predicted:   pred,
		Label:       label,
		Explanation: fmt.Sprintf("pred=%.2f, label=%s, base_alloc=%d", pred, label, green),
	}, nil
}

// capTruncate returns min(int(x), limit). Bounds are applied before the
// conversion so extreme forecasts cannot overflow int.
func capTruncate(x float64, limit int) int {
	return int(math.Max(math.Min(x, float64(limit)), math.MinInt32))
}

// forecastFor extracts the horizon-1 forecast for one direction.
func forecastFor(forecast ForecastProvider, directionIndex int) (float64, error) {
	if forecast == nil {
		return 0, fmt.Errorf("%w: no forecast provider", ErrForecastValue)
	}
	preds := forecast.Predict(1)
	if directionIndex < 0 || directionIndex >= len(preds) {
		return 0, fmt.Errorf("%w: index %d, %d forecasts", ErrForecastIndex, directionIndex, len(preds))
	}
	pred := preds[directionIndex]
	if math.IsNaN(pred) || math.IsInf(pred, 0) {
		return 0, fmt.Errorf("%w: direction %d got %v", ErrForecastValue, directionIndex, pred)
	}
	return pred, nil
}
