package engine

import (
	"math/rand"
	"sync"
)

// Source is the randomness used to place and value spawned tiles.
// *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// globalSource draws from the process-wide math/rand generator
type globalSource struct{}

func (globalSource) Intn(n int) int   { return rand.Intn(n) }
func (globalSource) Float64() float64 { return rand.Float64() }

// DefaultSource returns the process-wide random source
func DefaultSource() Source {
	return globalSource{}
}

// NewSeededSource returns a reproducible source for the given seed
func NewSeededSource(seed int64) Source {
	return &lockedSource{r: rand.New(rand.NewSource(seed))}
}

// lockedSource guards a *rand.Rand shared between goroutines
type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// ScriptedSource replays fixed draws. Once a script is exhausted it keeps
// returning 0, which picks the first empty cell and a 2.
type ScriptedSource struct {
	ints   []int
	floats []float64
}

// NewScriptedSource creates a source that returns ints for Intn and floats
// for Float64 in order
func NewScriptedSource(ints []int, floats []float64) *ScriptedSource {
	return &ScriptedSource{ints: ints, floats: floats}
}

// Intn returns the next scripted index, reduced modulo n
func (s *ScriptedSource) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v < 0 {
		v = -v
	}
	return v % n
}

// Float64 returns the next scripted float
func (s *ScriptedSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}
