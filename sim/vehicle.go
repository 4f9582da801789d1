// Defines the vehicle records consumed from the surrounding traffic simulation.
// Only the fields the control pipeline reads are modelled here.

package sim

// CrossState records whether a vehicle has left the stop line.
// The zero value is NotCrossed, so a record built without the field still queues.
type CrossState int

const (
	NotCrossed CrossState = iota
	Crossed
)

func (c CrossState) String() string {
	switch c {
	case NotCrossed:
		return "not-crossed"
	case Crossed:
		return "crossed"
	default:
		return "unknown"
	}
}

// VehicleRecord is a single vehicle as reported by the simulation engine.
type VehicleRecord struct {
	ID        string     // Unique identifier for the vehicle
	Direction string     // Approach the vehicle belongs to (e.g. "right")
	Lane      int        // Lane index within the approach, 0-based
	Crossed   CrossState // NotCrossed until the vehicle clears the intersection
}

// Queued reports whether the vehicle still occupies its lane queue.
func (v VehicleRecord) Queued() bool {
	return v.Crossed == NotCrossed
}

// VehicleMap groups vehicle records by direction and then by lane index.
// Directions or lanes may be absent; readers treat missing entries as empty.
type VehicleMap map[string]map[int][]VehicleRecord

// DirectionOrder maps a direction index to its identifier and fixes output ordering.
type DirectionOrder []string
