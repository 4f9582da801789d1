package trace

import (
	"strconv"

	"github.com/google/uuid"
)

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables per-cycle records; the summary still counts decisions.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions keeps every CycleRecord.
	TraceLevelDecisions TraceLevel = "decisions"
)

var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// DecisionTrace collects cycle records during one run.
type DecisionTrace struct {
	RunID   string
	Level   TraceLevel
	Records []CycleRecord

	// running aggregates, maintained at every level
	stats *runningStats
}

// NewDecisionTrace creates a trace whose run identifier is derived from seed,
// so runs with the same seed report the same RunID.
func NewDecisionTrace(level TraceLevel, seed int64) *DecisionTrace {
	if level == "" {
		level = TraceLevelNone
	}
	return &DecisionTrace{
		RunID:   RunIDForSeed(seed),
		Level:   level,
		Records: make([]CycleRecord, 0),
		stats:   newRunningStats(),
	}
}

// RunIDForSeed returns the name-based (SHA-1) UUID identifying runs with seed.
func RunIDForSeed(seed int64) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("adaptive-signal/seed/"+strconv.FormatInt(seed, 10))).String()
}

// RecordCycle folds record into the aggregates and keeps it when the level asks for it.
func (dt *DecisionTrace) RecordCycle(record CycleRecord) {
	dt.stats.add(record)
	if dt.Level == TraceLevelDecisions {
		dt.Records = append(dt.Records, record)
	}
}
