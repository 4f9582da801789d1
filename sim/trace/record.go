// Package trace provides per-cycle recording of signal allocation decisions.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// CycleRecord captures one green-time decision and its immediate effect.
type CycleRecord struct {
	Cycle          int     `json:"cycle"`
	Direction      string  `json:"direction"`
	DirectionIndex int     `json:"direction_index"`
	PhaseReason    string  `json:"phase_reason"` // why this approach was served
	QueueLength    int     `json:"queue_length"` // queued vehicles on the served approach before discharge
	TotalQueued    int     `json:"total_queued"` // queued vehicles at the whole intersection before discharge
	Predicted      float64 `json:"predicted"`
	Label          string  `json:"label"`
	GreenTime      int     `json:"green_time"`
	Explanation    string  `json:"explanation"`
	Discharged     int     `json:"discharged"` // vehicles that crossed during the green
}
