package sim

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

var fourWay = DirectionOrder{"right", "down", "left", "up"}

func TestComputeState_EmptyInput_AllZero(t *testing.T) {
	// GIVEN 4 directions with every lane list empty
	vehicles := VehicleMap{
		"right": {0: {}, 1: {}, 2: {}},
		"down":  {0: {}, 1: {}, 2: {}},
		"left":  {0: {}, 1: {}, 2: {}},
		"up":    {0: {}, 1: {}, 2: {}},
	}

	// WHEN state is computed with 3 lanes
	got := ComputeState(vehicles, fourWay, 3)

	// THEN all counts are zero with the expected shape
	want := StateSnapshot{
		QueueLengths:  []int{0, 0, 0, 0},
		LaneCounts:    [][]int{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}},
		TotalVehicles: 0,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ComputeState mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeState_CountsOnlyQueuedVehicles(t *testing.T) {
	// GIVEN a mix of crossed and waiting vehicles
	vehicles := VehicleMap{
		"right": {
			0: {{ID: "a"}, {ID: "b", Crossed: Crossed}},
			2: {{ID: "c"}, {ID: "d"}},
		},
		"left": {
			1: {{ID: "e", Crossed: Crossed}},
		},
	}

	// WHEN state is computed
	got := ComputeState(vehicles, fourWay, DefaultLanes)

	// THEN crossed vehicles are excluded and missing entries count as zero
	want := StateSnapshot{
		QueueLengths:  []int{3, 0, 0, 0},
		LaneCounts:    [][]int{{1, 0, 2}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}},
		TotalVehicles: 3,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ComputeState mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeState_IgnoresLanesBeyondLaneCount(t *testing.T) {
	// GIVEN vehicles in lane 5 while only 3 lanes are inspected
	vehicles := VehicleMap{"up": {5: {{ID: "x"}}, 1: {{ID: "y"}}}}

	got := ComputeState(vehicles, fourWay, 3)

	assert.Equal(t, []int{0, 0, 0, 1}, got.QueueLengths)
	assert.Equal(t, 1, got.TotalVehicles)
}

func TestComputeState_NilMap_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		got := ComputeState(nil, fourWay, 3)
		assert.Equal(t, 0, got.TotalVehicles)
		assert.Len(t, got.LaneCounts, 4)
	})
}

func TestComputeState_ShapeAndTotals(t *testing.T) {
	// GIVEN several vehicle layouts and lane counts
	layouts := []VehicleMap{
		nil,
		{"right": {0: {{}, {}, {}}}},
		{"down": {0: {{}}, 1: {{}, {Crossed: Crossed}}, 2: {{}, {}}}, "up": {2: {{}}}},
	}
	for _, lanes := range []int{0, 1, 3, 5} {
		for _, v := range layouts {
			got := ComputeState(v, fourWay, lanes)

			// THEN total equals the sum of queue lengths
			sum := 0
			for _, q := range got.QueueLengths {
				sum += q
			}
			assert.Equal(t, sum, got.TotalVehicles)

			// THEN each direction has exactly `lanes` non-negative entries
			for d, lc := range got.LaneCounts {
				assert.Len(t, lc, lanes, "direction %d", d)
				for _, c := range lc {
					assert.GreaterOrEqual(t, c, 0)
				}
			}
		}
	}
}

func TestComputeState_DoesNotMutateInput(t *testing.T) {
	vehicles := VehicleMap{"left": {0: {{ID: "a"}, {ID: "b", Crossed: Crossed}}}}
	want := VehicleMap{"left": {0: {{ID: "a"}, {ID: "b", Crossed: Crossed}}}}

	_ = ComputeState(vehicles, fourWay, 3)

	if diff := cmp.Diff(want, vehicles); diff != "" {
		t.Errorf("input mutated (-want +got):\n%s", diff)
	}
}

func TestCrossState_ZeroValueIsNotCrossed(t *testing.T) {
	var v VehicleRecord
	assert.True(t, v.Queued())
	assert.Equal(t, "not-crossed", v.Crossed.String())
	assert.Equal(t, "crossed", Crossed.String())
}
