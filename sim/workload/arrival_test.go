package workload

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func sampleIATs(t *testing.T, s ArrivalSampler, seed int64, n int) []float64 {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(s.SampleIAT(rng))
	}
	return out
}

func TestPoissonSampler_MeanHeadwayMatchesRate(t *testing.T) {
	// GIVEN 0.5 vehicles per second
	s, err := NewArrivalSampler("poisson", 0.5, 0)
	require.NoError(t, err)

	// WHEN 20000 headways are sampled
	mean, std := stat.MeanStdDev(sampleIATs(t, s, 42, 20000), nil)

	// THEN mean ≈ 2000 ticks and CV ≈ 1
	assert.InEpsilon(t, 2000.0, mean, 0.05)
	assert.InDelta(t, 1.0, std/mean, 0.1)
}

func TestGammaSampler_HighCVIsBurstier(t *testing.T) {
	gamma, err := NewArrivalSampler("gamma", 0.5, 3)
	require.NoError(t, err)
	poisson, err := NewArrivalSampler("poisson", 0.5, 0)
	require.NoError(t, err)

	gMean, gStd := stat.MeanStdDev(sampleIATs(t, gamma, 42, 20000), nil)
	pMean, pStd := stat.MeanStdDev(sampleIATs(t, poisson, 42, 20000), nil)

	assert.Greater(t, gStd/gMean, 2.0)
	assert.Less(t, pStd/pMean, 1.2)
}

func TestWeibullSampler_MeanHeadwayMatchesRate(t *testing.T) {
	s, err := NewArrivalSampler("weibull", 0.25, 0.5)
	require.NoError(t, err)

	mean, _ := stat.MeanStdDev(sampleIATs(t, s, 9, 20000), nil)
	assert.InEpsilon(t, 4000.0, mean, 0.05)
}

func TestNewArrivalSampler_Errors(t *testing.T) {
	_, err := NewArrivalSampler("uniform", 1, 1)
	assert.Error(t, err)
	_, err = NewArrivalSampler("poisson", -1, 1)
	assert.Error(t, err)
}

func TestNewArrivalSampler_EmptyProcessIsPoisson(t *testing.T) {
	s, err := NewArrivalSampler("", 1, 0)
	require.NoError(t, err)
	assert.IsType(t, &PoissonSampler{}, s)
}

func TestSamplers_AlwaysPositive(t *testing.T) {
	for _, process := range []string{"poisson", "gamma", "weibull"} {
		s, err := NewArrivalSampler(process, 500, 2)
		require.NoError(t, err)
		for _, iat := range sampleIATs(t, s, 1, 1000) {
			assert.GreaterOrEqual(t, iat, 1.0, process)
		}
	}
}

func TestStream_CarriesPendingArrivalAcrossWindows(t *testing.T) {
	s, err := NewArrivalSampler("poisson", 1, 0)
	require.NoError(t, err)

	// GIVEN the same seed consumed in one window or in ten
	whole := NewStream(s, rand.New(rand.NewSource(3))).Advance(100 * TicksPerSecond)

	split := NewStream(s, rand.New(rand.NewSource(3)))
	total := 0
	for w := int64(1); w <= 10; w++ {
		total += split.Advance(w * 10 * TicksPerSecond)
	}

	// THEN the counts agree
	assert.Equal(t, whole, total)
	assert.Positive(t, whole)
}

func TestStream_ZeroRateProducesNoArrivals(t *testing.T) {
	s, err := NewArrivalSampler("poisson", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, NewStream(s, rand.New(rand.NewSource(1))).Advance(3600*TicksPerSecond))
}
