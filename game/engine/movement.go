package engine

// NewGameState creates a size x size game and spawns its two opening tiles.
// A nil source falls back to the process-wide generator.
func NewGameState(size int, src Source) *GameState {
	if src == nil {
		src = DefaultSource()
	}
	gs := &GameState{
		Size: size,
		Grid: NewGrid(size),
		rng:  src,
	}
	gs.SpawnTile()
	gs.SpawnTile()
	return gs
}

// SetSource replaces the random source used for future spawns
func (gs *GameState) SetSource(src Source) {
	gs.rng = src
}

func (gs *GameState) source() Source {
	if gs.rng == nil {
		gs.rng = DefaultSource()
	}
	return gs.rng
}

// SpawnTile places a 2 (90%) or a 4 (10%) on a uniformly chosen empty cell.
// With no empty cell the game is over and nothing is placed.
func (gs *GameState) SpawnTile() bool {
	empties := EmptyCells(gs.Grid)
	if len(empties) == 0 {
		gs.GameOver = true
		return false
	}

	src := gs.source()
	pos := empties[src.Intn(len(empties))]
	value := Tile(4)
	if src.Float64() < SpawnTwoProbability {
		value = 2
	}

	gs.Grid[pos.Row][pos.Col] = value
	gs.LastSpawn = &Spawn{Row: pos.Row, Col: pos.Col, Value: value}
	return true
}

// MergeLine compacts a line toward index 0 and merges equal neighbours once.
// Tiles at MaxTileValue never merge. The result holds only the occupied
// tiles, without padding.
func MergeLine(line []Tile) []Tile {
	tiles := make([]Tile, 0, len(line))
	for _, t := range line {
		if t != Empty {
			tiles = append(tiles, t)
		}
	}

	merged := make([]Tile, 0, len(tiles))
	for i := 0; i < len(tiles); i++ {
		if i+1 < len(tiles) && tiles[i] == tiles[i+1] && tiles[i] < MaxTileValue {
			merged = append(merged, tiles[i]*2)
			i++
			continue
		}
		merged = append(merged, tiles[i])
	}
	return merged
}

// slideLeft applies the left merge to every row in place and reports whether
// any cell changed, plus the number of merges performed
func slideLeft(grid Grid) (bool, int) {
	moved := false
	merges := 0
	for i, row := range grid {
		merged := MergeLine(row)
		occupied := 0
		for _, t := range row {
			if t != Empty {
				occupied++
			}
		}
		merges += occupied - len(merged)

		newRow := make([]Tile, len(row))
		copy(newRow, merged)
		for j := range row {
			if row[j] != newRow[j] {
				moved = true
			}
		}
		grid[i] = newRow
	}
	return moved, merges
}

// reverseRows reverses the cells of every row in place
func reverseRows(grid Grid) {
	for _, row := range grid {
		for i, j := 0, len(row)-1; i < j; i, j = i+1, j-1 {
			row[i], row[j] = row[j], row[i]
		}
	}
}

// transpose swaps grid[i][j] with grid[j][i] in place
func transpose(grid Grid) {
	for i := range grid {
		for j := i + 1; j < len(grid); j++ {
			grid[i][j], grid[j][i] = grid[j][i], grid[i][j]
		}
	}
}

// slide moves every tile toward the given edge without scoring or spawning
func slide(grid Grid, dir Direction) (bool, int) {
	switch dir {
	case Left:
		return slideLeft(grid)
	case Right:
		reverseRows(grid)
		moved, merges := slideLeft(grid)
		reverseRows(grid)
		return moved, merges
	case Up:
		transpose(grid)
		moved, merges := slideLeft(grid)
		transpose(grid)
		return moved, merges
	case Down:
		transpose(grid)
		reverseRows(grid)
		moved, merges := slideLeft(grid)
		reverseRows(grid)
		transpose(grid)
		return moved, merges
	default:
		return false, 0
	}
}

// Move slides the grid in dir. When any cell changed the score grows by
// ScorePerMove and exactly one tile spawns; otherwise nothing else happens.
func (gs *GameState) Move(dir Direction) bool {
	moved, _ := gs.move(dir)
	return moved
}

func (gs *GameState) move(dir Direction) (bool, int) {
	moved, merges := slide(gs.Grid, dir)
	if !moved {
		return false, 0
	}
	// Score saturates instead of wrapping
	if gs.Score <= MaxScore-ScorePerMove {
		gs.Score += ScorePerMove
	}
	gs.SpawnTile()
	return true, merges
}

// MoveLeft slides all tiles to the left
func (gs *GameState) MoveLeft() bool { return gs.Move(Left) }

// MoveRight slides all tiles to the right
func (gs *GameState) MoveRight() bool { return gs.Move(Right) }

// MoveUp slides all tiles up
func (gs *GameState) MoveUp() bool { return gs.Move(Up) }

// MoveDown slides all tiles down
func (gs *GameState) MoveDown() bool { return gs.Move(Down) }

// Clone returns an independent copy of the state. The copy shares the
// random source so simulated spawns draw from the same stream.
func (gs *GameState) Clone() *GameState {
	clone := *gs
	clone.Grid = gs.Grid.Clone()
	if gs.LastSpawn != nil {
		spawn := *gs.LastSpawn
		clone.LastSpawn = &spawn
	}
	return &clone
}

// EditCell writes directly to a cell. It bypasses the move pipeline: no
// score change, no spawn, and it is honoured after game over. The caller
// guarantees row and col are in bounds.
func (gs *GameState) EditCell(row, col int, op EditOp, maxValue Tile) {
	if maxValue == 0 {
		maxValue = MaxEditValue
	}
	cell := &gs.Grid[row][col]
	switch op {
	case EditIncrement:
		if *cell == Empty {
			*cell = 2
			return
		}
		doubled := *cell * 2
		if doubled > maxValue {
			doubled = maxValue
		}
		*cell = doubled
	case EditClear:
		*cell = Empty
	}
}
