package engine

import "fmt"

// EmptyCells returns the empty cells in row-major order
func EmptyCells(grid Grid) []Position {
	var empties []Position
	for i, row := range grid {
		for j, cell := range row {
			if cell == Empty {
				empties = append(empties, Position{Row: i, Col: j})
			}
		}
	}
	return empties
}

// CountTiles counts the occupied cells
func CountTiles(grid Grid) int {
	count := 0
	for _, row := range grid {
		for _, cell := range row {
			if cell != Empty {
				count++
			}
		}
	}
	return count
}

// MaxTile returns the largest tile on the grid, or Empty for an empty grid
func MaxTile(grid Grid) Tile {
	var max Tile
	for _, row := range grid {
		for _, cell := range row {
			if cell > max {
				max = cell
			}
		}
	}
	return max
}

// IsPowerOfTwo reports whether t is a positive power of two
func IsPowerOfTwo(t Tile) bool {
	return t != 0 && t&(t-1) == 0
}

// HasAdjacentEqual reports whether two orthogonal neighbours hold the same
// mergeable tile
func HasAdjacentEqual(grid Grid) bool {
	for i, row := range grid {
		for j, cell := range row {
			if cell == Empty || cell >= MaxTileValue {
				continue
			}
			if j+1 < len(row) && row[j+1] == cell {
				return true
			}
			if i+1 < len(grid) && j < len(grid[i+1]) && grid[i+1][j] == cell {
				return true
			}
		}
	}
	return false
}

// ValidateGrid checks that grid is size x size and every tile is a power of
// two no larger than MaxTileValue
func ValidateGrid(grid Grid, size int) error {
	if size < MinGridSize || size > MaxGridSize {
		return fmt.Errorf("size must be between %d and %d, got %d", MinGridSize, MaxGridSize, size)
	}
	if len(grid) != size {
		return fmt.Errorf("grid must have %d rows, got %d", size, len(grid))
	}
	for i, row := range grid {
		if len(row) != size {
			return fmt.Errorf("row %d must have %d cells, got %d", i, size, len(row))
		}
		for j, cell := range row {
			if cell != Empty && !IsPowerOfTwo(cell) {
				return fmt.Errorf("cell (%d, %d) holds %d, which is not a power of two", i, j, cell)
			}
			if cell > MaxTileValue {
				return fmt.Errorf("cell (%d, %d) holds %d, above the largest tile %d", i, j, cell, MaxTileValue)
			}
		}
	}
	return nil
}
