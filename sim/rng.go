package sim

import (
	"hash/fnv"
	"math/rand"
)

// SimulationKey identifies a reproducible run. Two runs with the same key and
// configuration produce identical arrivals and therefore identical decisions.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// SubsystemArrivals returns the RNG subsystem name for arrivals on one approach.
func SubsystemArrivals(direction string) string {
	return "arrivals/" + direction
}

// PartitionedRNG hands out one deterministic *rand.Rand per named subsystem so
// that adding a direction does not perturb the arrival stream of the others.
// Each subsystem is seeded with masterSeed XOR fnv1a64(name).
//
// Thread-safety: NOT thread-safe. Must be called from a single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the RNG for name, creating it on first use.
// Repeated calls with the same name return the same instance. Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(int64(p.key) ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
