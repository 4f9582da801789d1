// Package intersection runs the signal decision pipeline against queue-level
// synthetic traffic. It models queues, not vehicle motion: vehicles join a lane
// on arrival and leave it at the saturation flow rate while their approach is green.
package intersection

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/adaptive-signal/adaptive-signal/sim"
	"github.com/adaptive-signal/adaptive-signal/sim/trace"
	"github.com/adaptive-signal/adaptive-signal/sim/workload"
)

// Intersection owns the lane queues and the per-approach forecast for one signal.
// A PhasePolicy picks the served approach; each Step makes one green-time decision.
//
// Thread-safety: NOT thread-safe. Step and Run must be called from one goroutine.
type Intersection struct {
	config    Config
	knowledge sim.KnowledgeConfig
	order     sim.DirectionOrder
	vehicles  sim.VehicleMap
	predictor *sim.EmaPredictor
	phase     PhasePolicy
	rng       *sim.PartitionedRNG
	arrivals  []*workload.Stream
	trace     *trace.DecisionTrace

	clock   int64 // ticks
	cycle   int
	nextID  int
	arrived int
	hasRun  bool
}

// New creates an Intersection with empty queues after validating both configs.
func New(config Config, knowledge sim.KnowledgeConfig) (*Intersection, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("intersection config: %w", err)
	}
	if err := knowledge.Validate(); err != nil {
		return nil, fmt.Errorf("knowledge config: %w", err)
	}
	predictor, err := sim.NewEmaPredictor(len(config.Directions), config.Alpha)
	if err != nil {
		return nil, err
	}
	sampler, err := workload.NewArrivalSampler(config.ArrivalProcess, config.ArrivalRate, config.ArrivalCV)
	if err != nil {
		return nil, err
	}

	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(config.Seed))
	vehicles := make(sim.VehicleMap, len(config.Directions))
	arrivals := make([]*workload.Stream, len(config.Directions))
	for i, d := range config.Directions {
		vehicles[d] = make(map[int][]sim.VehicleRecord, config.Lanes)
		arrivals[i] = workload.NewStream(sampler, rng.ForSubsystem(sim.SubsystemArrivals(d)))
	}

	return &Intersection{
		config:    config,
		knowledge: knowledge,
		order:     sim.DirectionOrder(config.Directions),
		vehicles:  vehicles,
		predictor: predictor,
		phase:     NewPhasePolicy(config.PhasePolicy, config.MaxRepeat),
		rng:       rng,
		arrivals:  arrivals,
		trace:     trace.NewDecisionTrace(trace.TraceLevel(config.TraceLevel), config.Seed),
	}, nil
}

// Step runs one control decision:
//  1. snapshot the queues
//  2. feed queue lengths to the predictor
//  3. pick the served approach and decide its green time
//  4. discharge the served approach and record the cycle
//  5. advance the clock over green plus lost time, admitting arrivals on every approach
//
// A decision error aborts the step before any queue changes.
func (x *Intersection) Step() (trace.CycleRecord, error) {
	state := sim.ComputeState(x.vehicles, x.order, x.config.Lanes)
	x.predictor.UpdateCounts(state.QueueLengths)
	active, reason := x.phase.Next(state)

	decision, err := sim.DecideGreenTime(state, x.predictor, active, x.knowledge)
	if err != nil {
		return trace.CycleRecord{}, fmt.Errorf("cycle %d direction %q: %w", x.cycle, x.order[active], err)
	}

	direction := x.order[active]
	discharged := x.discharge(direction, decision.GreenTime)

	record := trace.CycleRecord{
		Cycle:          x.cycle,
		Direction:      direction,
		DirectionIndex: active,
		PhaseReason:    reason,
		QueueLength:    state.QueueLengths[active],
		TotalQueued:    state.TotalVehicles,
		Predicted:      decision.Predicted,
		Label:          string(decision.Label),
		GreenTime:      decision.GreenTime,
		Explanation:    decision.Explanation,
		Discharged:     discharged,
	}
	x.trace.RecordCycle(record)
	logrus.Debugf("[cycle %d] %s green=%ds (%s) discharged=%d queued=%d",
		x.cycle, direction, decision.GreenTime, decision.Explanation, discharged, state.TotalVehicles)

	x.clock += int64(decision.GreenTime+x.config.LostTime) * workload.TicksPerSecond
	x.admitArrivals()

	x.cycle++
	return record, nil
}

// Run executes Config.Cycles steps and returns the trace summary.
// Stops at the first decision error. Panics if called more than once.
func (x *Intersection) Run() (*trace.TraceSummary, error) {
	if x.hasRun {
		panic("Intersection.Run() called more than once")
	}
	x.hasRun = true

	for i := 0; i < x.config.Cycles; i++ {
		if _, err := x.Step(); err != nil {
			return trace.Summarize(x.trace), err
		}
	}
	logrus.Infof("ran %d cycles over %.0fs of signal time: %d arrived, %d still queued",
		x.cycle, float64(x.clock)/workload.TicksPerSecond, x.arrived, x.Queued())
	return trace.Summarize(x.trace), nil
}

// discharge lets up to floor(green*SaturationFlow) queued vehicles per lane cross,
// in arrival order, and drops crossed vehicles from the queue.
func (x *Intersection) discharge(direction string, green int) int {
	capacity := int(math.Floor(float64(green) * x.config.SaturationFlow))
	total := 0
	for lane, queue := range x.vehicles[direction] {
		served := 0
		for i := range queue {
			if served == capacity {
				break
			}
			if queue[i].Queued() {
				queue[i].Crossed = sim.Crossed
				served++
			}
		}
		total += served
		x.vehicles[direction][lane] = lo.Filter(queue, func(v sim.VehicleRecord, _ int) bool {
			return v.Queued()
		})
	}
	return total
}

// admitArrivals appends vehicles that arrived on each approach before the
// current clock, choosing a lane uniformly at random.
func (x *Intersection) admitArrivals() {
	for i, direction := range x.order {
		n := x.arrivals[i].Advance(x.clock)
		laneRNG := x.rng.ForSubsystem("lanes/" + direction)
		for j := 0; j < n; j++ {
			lane := laneRNG.Intn(x.config.Lanes)
			x.vehicles[direction][lane] = append(x.vehicles[direction][lane], sim.VehicleRecord{
				ID:        fmt.Sprintf("%s-%d", direction, x.nextID),
				Direction: direction,
				Lane:      lane,
			})
			x.nextID++
		}
		x.arrived += n
	}
}

// Queued returns the number of vehicles currently waiting at the intersection.
func (x *Intersection) Queued() int {
	return sim.ComputeState(x.vehicles, x.order, x.config.Lanes).TotalVehicles
}

// Arrived returns the number of vehicles generated so far.
func (x *Intersection) Arrived() int { return x.arrived }

// Clock returns the elapsed signal time in ticks.
func (x *Intersection) Clock() int64 { return x.clock }

// Forecast returns a copy of the predictor's current per-approach averages.
func (x *Intersection) Forecast() []float64 { return x.predictor.State() }

// Trace returns the decision trace collected so far.
func (x *Intersection) Trace() *trace.DecisionTrace { return x.trace }
