package sim

// DefaultLanes is the lane count per direction used by the stock four-way intersection.
const DefaultLanes = 3

// StateSnapshot summarises queue occupancy at one instant.
// Recomputed every cycle; it carries no identity between cycles.
type StateSnapshot struct {
	QueueLengths  []int   // queued vehicles per direction, ordered by DirectionOrder
	LaneCounts    [][]int // LaneCounts[d][l] = queued vehicles in direction d, lane l
	TotalVehicles int     // sum of QueueLengths
}

// ComputeState counts queued vehicles per direction and lane.
// Directions are visited in order; lanes 0..noOfLanes-1 are visited for each.
// Missing directions or lanes count as zero. The input map is never modified.
func ComputeState(vehicles VehicleMap, order DirectionOrder, noOfLanes int) StateSnapshot {
	if noOfLanes < 0 {
		noOfLanes = 0
	}
	state := StateSnapshot{
		QueueLengths: make([]int, len(order)),
		LaneCounts:   make([][]int, len(order)),
	}
	for d, name := range order {
		lanes := make([]int, noOfLanes)
		byLane := vehicles[name] // nil map reads are safe
		for l := 0; l < noOfLanes; l++ {
			for _, v := range byLane[l] {
				if v.Queued() {
					lanes[l]++
				}
			}
			state.QueueLengths[d] += lanes[l]
		}
		state.LaneCounts[d] = lanes
		state.TotalVehicles += state.QueueLengths[d]
	}
	return state
}
