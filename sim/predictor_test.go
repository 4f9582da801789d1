package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmaPredictor_InitialStateIsBaseline(t *testing.T) {
	p, err := NewEmaPredictor(4, DefaultAlpha)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 1}, p.State())
	assert.Equal(t, 4, p.Directions())
	assert.Equal(t, 0.3, p.Alpha())
}

func TestNewEmaPredictor_RejectsInvalidArguments(t *testing.T) {
	tests := []struct {
		name       string
		directions int
		alpha      float64
	}{
		{"zero alpha", 4, 0},
		{"negative alpha", 4, -0.1},
		{"alpha above one", 4, 1.5},
		{"NaN alpha", 4, math.NaN()},
		{"negative directions", -1, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEmaPredictor(tt.directions, tt.alpha)
			assert.Error(t, err)
		})
	}
}

func TestEmaPredictor_UpdateThenPredict(t *testing.T) {
	// GIVEN alpha=0.3 and baseline 1.0
	p, err := NewEmaPredictor(1, 0.3)
	require.NoError(t, err)

	// WHEN 10 is observed
	p.Update([]float64{10})

	// THEN ema = 0.3*10 + 0.7*1 = 3.7 and a 2-cycle forecast doubles it
	assert.InDelta(t, 3.7, p.State()[0], 1e-12)
	assert.InDeltaSlice(t, []float64{7.4}, p.Predict(2), 1e-12)
}

func TestEmaPredictor_Update_ExtraAndMissingEntries(t *testing.T) {
	p, err := NewEmaPredictor(3, 0.5)
	require.NoError(t, err)

	// extra entries are ignored
	p.Update([]float64{3, 5, 7, 100, 200})
	assert.Equal(t, []float64{2, 3, 4}, p.State())

	// missing indices keep their value
	p.Update([]float64{0})
	assert.Equal(t, []float64{1, 3, 4}, p.State())

	p.Update(nil)
	assert.Equal(t, []float64{1, 3, 4}, p.State())
}

func TestEmaPredictor_UpdateCounts_MatchesUpdate(t *testing.T) {
	a, _ := NewEmaPredictor(2, 0.4)
	b, _ := NewEmaPredictor(2, 0.4)

	a.UpdateCounts([]int{6, 2})
	b.Update([]float64{6, 2})

	assert.Equal(t, b.State(), a.State())
}

func TestEmaPredictor_PredictHorizonOneEqualsState(t *testing.T) {
	p, _ := NewEmaPredictor(4, 0.3)
	p.Update([]float64{4, 9, 0, 13})
	assert.Equal(t, p.State(), p.Predict(1))
}

func TestEmaPredictor_PredictScalesLinearly(t *testing.T) {
	p, _ := NewEmaPredictor(3, 0.7)
	p.Update([]float64{2, 11, 5})
	base := p.Predict(1)

	for _, h := range []float64{0, 0.5, 1, 3, 10} {
		got := p.Predict(h)
		for i := range base {
			assert.InDelta(t, base[i]*h, got[i], 1e-12, "horizon %v direction %d", h, i)
		}
	}
}

func TestEmaPredictor_ConvergesToConstantObservation(t *testing.T) {
	for _, alpha := range []float64{0.05, 0.3, 0.9, 1} {
		p, _ := NewEmaPredictor(2, alpha)
		for i := 0; i < 2000; i++ {
			p.Update([]float64{8, 8})
		}
		for _, v := range p.State() {
			assert.InDelta(t, 8.0, v, 1e-6, "alpha=%v", alpha)
		}
	}
}

func TestEmaPredictor_StateAndPredictReturnCopies(t *testing.T) {
	p, _ := NewEmaPredictor(2, 0.3)

	s := p.State()
	s[0] = 999
	f := p.Predict(1)
	f[1] = 999

	assert.Equal(t, []float64{1, 1}, p.State())
}

func TestConstantForecast_BroadcastsValue(t *testing.T) {
	c := ConstantForecast{Value: 4, Directions: 3}
	assert.Equal(t, []float64{4, 4, 4}, c.Predict(1))
	assert.Equal(t, []float64{8, 8, 8}, c.Predict(2))
	assert.Empty(t, ConstantForecast{Value: 1}.Predict(1))
}

func TestSequenceForecast_ScalesCopy(t *testing.T) {
	s := SequenceForecast{1, 2.5}
	got := s.Predict(2)
	got[0] = 100
	assert.Equal(t, SequenceForecast{1, 2.5}, s)
	assert.Equal(t, []float64{2, 5}, SequenceForecast{1, 2.5}.Predict(2))
}
