package selector

import (
	"github.com/wraith4081/2048/game/engine"
)

// Scorer rates the state reached by a simulated move. Higher is better.
type Scorer func(after *engine.GameState) float64

// ResultingScore rates a simulated state by its game score
func ResultingScore(after *engine.GameState) float64 {
	return float64(after.Score)
}

// Outcome is the result of simulating one direction on a snapshot
type Outcome struct {
	Direction engine.Direction `json:"direction"`
	Moved     bool             `json:"moved"`
	Score     float64          `json:"score"`
}

// Decision is the full picture behind a selection
type Decision struct {
	Legal    []engine.Direction `json:"legal"`
	Outcomes []Outcome          `json:"outcomes"`
	Best     engine.Direction   `json:"best"`
	HasMove  bool               `json:"has_move"`
}

// Option configures a Selector
type Option func(*Selector)

// WithScorer replaces the default resulting-score rating
func WithScorer(scorer Scorer) Option {
	return func(s *Selector) {
		if scorer != nil {
			s.scorer = scorer
		}
	}
}

// Selector picks a direction by simulating each candidate one move ahead
type Selector struct {
	scorer Scorer
}

// New creates a selector
func New(opts ...Option) *Selector {
	s := &Selector{scorer: ResultingScore}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate simulates dir on a snapshot of state. The live state is never touched.
func (s *Selector) Evaluate(state *engine.GameState, dir engine.Direction) Outcome {
	snapshot := state.Clone()
	moved := snapshot.Move(dir)
	outcome := Outcome{Direction: dir, Moved: moved}
	if moved {
		outcome.Score = s.scorer(snapshot)
	}
	return outcome
}

// PossibleMoves returns the directions that change the grid, in Left, Right,
// Up, Down order
func (s *Selector) PossibleMoves(state *engine.GameState) []engine.Direction {
	var moves []engine.Direction
	for _, dir := range engine.Directions {
		if state.Clone().Move(dir) {
			moves = append(moves, dir)
		}
	}
	return moves
}

// BestMove returns the legal direction whose simulation scores highest. Only a
// strictly greater score replaces the current best, so ties keep the earlier
// direction. The second result is false when no direction is legal.
func (s *Selector) BestMove(state *engine.GameState) (engine.Direction, bool) {
	decision := s.Analyze(state)
	return decision.Best, decision.HasMove
}

// Analyze enumerates the legal moves, re-simulates each on a fresh snapshot
// and reports the winner alongside every outcome
func (s *Selector) Analyze(state *engine.GameState) Decision {
	decision := Decision{Legal: s.PossibleMoves(state)}

	var bestScore float64
	for _, dir := range decision.Legal {
		outcome := s.Evaluate(state, dir)
		decision.Outcomes = append(decision.Outcomes, outcome)
		if !outcome.Moved {
			continue
		}
		if !decision.HasMove || outcome.Score > bestScore {
			decision.Best = dir
			bestScore = outcome.Score
			decision.HasMove = true
		}
	}

	return decision
}

// MakeMove selects a direction and applies it to the live state exactly once.
// With no legal direction the state is marked game over.
func (s *Selector) MakeMove(state *engine.GameState) (engine.Direction, bool) {
	dir, ok := s.BestMove(state)
	if !ok {
		state.GameOver = true
		return 0, false
	}
	state.Move(dir)
	return dir, true
}

// Play selects a direction for an engine, applies it through the engine's AI
// path and marks the game over when nothing is legal
func (s *Selector) Play(e engine.Engine) (engine.Direction, bool) {
	dir, ok := s.BestMove(e.GetState())
	if !ok {
		e.MarkNoMoves()
		return 0, false
	}
	e.ApplyAIMove(dir)
	return dir, true
}
