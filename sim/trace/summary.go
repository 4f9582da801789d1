package trace

import (
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
)

// TraceSummary aggregates statistics from a DecisionTrace.
type TraceSummary struct {
	RunID            string             `json:"run_id"`
	TotalDecisions   int                `json:"total_decisions"`
	LabelCounts      map[string]int     `json:"label_counts"`
	MeanGreen        float64            `json:"mean_green"`
	MinGreen         int                `json:"min_green"`
	MaxGreen         int                `json:"max_green"`
	MeanPredicted    float64            `json:"mean_predicted"`
	GreenByDirection map[string]float64 `json:"mean_green_by_direction"`
	TotalDischarged  int                `json:"total_discharged"`
	FinalQueued      int                `json:"final_queued"` // intersection queue before the last discharge
}

type runningStats struct {
	greens      []float64
	predictions []float64
	labels      map[string]int
	byDirection map[string][]float64
	discharged  int
	lastQueued  int
}

func newRunningStats() *runningStats {
	return &runningStats{
		labels:      make(map[string]int),
		byDirection: make(map[string][]float64),
	}
}

func (s *runningStats) add(r CycleRecord) {
	s.greens = append(s.greens, float64(r.GreenTime))
	s.predictions = append(s.predictions, r.Predicted)
	s.labels[r.Label]++
	s.byDirection[r.Direction] = append(s.byDirection[r.Direction], float64(r.GreenTime))
	s.discharged += r.Discharged
	s.lastQueued = r.TotalQueued
}

// Summarize computes aggregate statistics from a DecisionTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(dt *DecisionTrace) *TraceSummary {
	summary := &TraceSummary{
		LabelCounts:      make(map[string]int),
		GreenByDirection: make(map[string]float64),
	}
	if dt == nil || dt.stats == nil {
		return summary
	}
	s := dt.stats
	summary.RunID = dt.RunID
	summary.TotalDecisions = len(s.greens)
	if summary.TotalDecisions == 0 {
		return summary
	}

	summary.LabelCounts = lo.Assign(s.labels)
	summary.MeanGreen = mean(s.greens)
	summary.MinGreen = int(floats.Min(s.greens))
	summary.MaxGreen = int(floats.Max(s.greens))
	summary.MeanPredicted = mean(s.predictions)
	summary.GreenByDirection = lo.MapValues(s.byDirection, func(g []float64, _ string) float64 {
		return mean(g)
	})
	summary.TotalDischarged = s.discharged
	summary.FinalQueued = s.lastQueued
	return summary
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return floats.Sum(xs) / float64(len(xs))
}
