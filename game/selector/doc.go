// Package selector chooses moves for the autopilot.
//
// The Selector runs a one-move lookahead: every direction is tried on its own
// deep copy of the game state, and among the directions that change the grid
// the one whose copy rates highest wins. Directions are always tried in
// Left, Right, Up, Down order and only a strictly better rating replaces the
// current choice, so equal ratings resolve to the earliest direction.
//
// With the default rating (the game score after the move) every legal move
// rates the same, which makes the first legal direction the choice. A custom
// Scorer can be supplied with WithScorer without changing the order or the
// tie rule.
//
// Simulated spawns on the copies are discarded. Once a direction is chosen it
// is applied to the live state a single time, drawing its own spawn.
package selector
