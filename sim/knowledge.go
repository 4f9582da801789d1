package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultKnowledgePath is the knowledge file looked up when no path is given.
const DefaultKnowledgePath = "knowledge.yaml"

// KnowledgeConfig holds the static allocation rules consulted by DecideGreenTime.
// Built once at startup and passed explicitly; never mutated afterwards.
type KnowledgeConfig struct {
	MinGreen          int        `yaml:"min_green" json:"min_green"`
	MaxGreen          int        `yaml:"max_green" json:"max_green"`
	CycleLimit        *int       `yaml:"cycle_limit" json:"cycle_limit"`                    // nil = no limit
	DensityThresholds [2]float64 `yaml:"density_thresholds,flow" json:"density_thresholds"` // [low, high]
	AllocationFactor  float64    `yaml:"allocation_factor" json:"allocation_factor"`
}

// knowledgeFile mirrors KnowledgeConfig with pointer fields so that keys absent
// from the file can be told apart from explicit zeros.
type knowledgeFile struct {
	MinGreen          *int      `yaml:"min_green"`
	MaxGreen          *int      `yaml:"max_green"`
	CycleLimit        *int      `yaml:"cycle_limit"`
	DensityThresholds []float64 `yaml:"density_thresholds"`
	AllocationFactor  *float64  `yaml:"allocation_factor"`
}

// DefaultKnowledge returns the built-in allocation rules used when no knowledge
// file can be loaded. Only this fallback carries a cycle limit; a loaded file
// without a cycle_limit key runs unlimited.
func DefaultKnowledge() KnowledgeConfig {
	cycleLimit := 200
	return KnowledgeConfig{
		MinGreen:          10,
		MaxGreen:          60,
		CycleLimit:        &cycleLimit,
		DensityThresholds: [2]float64{5, 15},
		AllocationFactor:  1.0,
	}
}

// LowThreshold returns the upper bound (inclusive) of the low density band.
func (k KnowledgeConfig) LowThreshold() float64 { return k.DensityThresholds[0] }

// HighThreshold returns the lower bound (inclusive) of the high density band.
func (k KnowledgeConfig) HighThreshold() float64 { return k.DensityThresholds[1] }

// Validate checks bounds and threshold ordering.
func (k KnowledgeConfig) Validate() error {
	if k.MinGreen < 0 {
		return fmt.Errorf("min_green must be non-negative, got %d", k.MinGreen)
	}
	if k.MinGreen >= k.MaxGreen {
		return fmt.Errorf("min_green (%d) must be less than max_green (%d)", k.MinGreen, k.MaxGreen)
	}
	if k.CycleLimit != nil && *k.CycleLimit <= 0 {
		return fmt.Errorf("cycle_limit must be positive when set, got %d", *k.CycleLimit)
	}
	for _, th := range k.DensityThresholds {
		if !isFinite(th) {
			return fmt.Errorf("density_thresholds must be finite, got [%v, %v]", k.LowThreshold(), k.HighThreshold())
		}
	}
	if k.LowThreshold() >= k.HighThreshold() {
		return fmt.Errorf("density_thresholds must be ascending, got [%v, %v]", k.LowThreshold(), k.HighThreshold())
	}
	if k.AllocationFactor < 0 || !isFinite(k.AllocationFactor) {
		return fmt.Errorf("allocation_factor must be finite and non-negative, got %v", k.AllocationFactor)
	}
	return nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// LoadKnowledge reads, parses and validates a knowledge file.
// YAML and JSON documents are both accepted. Unknown keys are rejected;
// keys that are absent keep their default value, except cycle_limit, whose
// absence (or an explicit null) means no limit.
func LoadKnowledge(path string) (KnowledgeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return KnowledgeConfig{}, fmt.Errorf("reading knowledge config: %w", err)
	}
	return ParseKnowledge(data)
}

// ParseKnowledge decodes a knowledge document already held in memory.
func ParseKnowledge(data []byte) (KnowledgeConfig, error) {
	var f knowledgeFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return KnowledgeConfig{}, fmt.Errorf("parsing knowledge config: %w", err)
	}

	k := DefaultKnowledge()
	if f.MinGreen != nil {
		k.MinGreen = *f.MinGreen
	}
	if f.MaxGreen != nil {
		k.MaxGreen = *f.MaxGreen
	}
	k.CycleLimit = f.CycleLimit
	if f.DensityThresholds != nil {
		if len(f.DensityThresholds) != 2 {
			return KnowledgeConfig{}, fmt.Errorf("density_thresholds must have exactly 2 values, got %d", len(f.DensityThresholds))
		}
		k.DensityThresholds = [2]float64{f.DensityThresholds[0], f.DensityThresholds[1]}
	}
	if f.AllocationFactor != nil {
		k.AllocationFactor = *f.AllocationFactor
	}
	if err := k.Validate(); err != nil {
		return KnowledgeConfig{}, fmt.Errorf("invalid knowledge config: %w", err)
	}
	return k, nil
}

// LoadKnowledgeOrDefault loads path and falls back to DefaultKnowledge on any
// failure. A missing, unreadable, malformed or invalid file is treated alike.
func LoadKnowledgeOrDefault(path string) KnowledgeConfig {
	k, err := LoadKnowledge(path)
	if err != nil {
		logrus.Debugf("using default knowledge config: %v", err)
		return DefaultKnowledge()
	}
	return k
}
