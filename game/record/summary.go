package record

import (
	"sort"

	"github.com/wraith4081/2048/game/engine"
	"github.com/wraith4081/2048/game/selector"
)

// GameSummary condenses the rows of one game
type GameSummary struct {
	GameID     string `json:"game_id"`
	Size       int    `json:"size"`
	Moves      int    `json:"moves"`
	FinalScore int64  `json:"final_score"`
	MaxTile    int32  `json:"max_tile"`
	GameOver   bool   `json:"game_over"`
}

// Aggregate condenses a set of games
type Aggregate struct {
	Games      int           `json:"games"`
	TotalMoves int           `json:"total_moves"`
	MeanScore  float64       `json:"mean_score"`
	BestScore  int64         `json:"best_score"`
	Finished   int           `json:"finished"`
	MaxTiles   map[int32]int `json:"max_tiles"`
}

// Play lets sel drive e until the game ends or maxMoves moves have been made,
// returning one row per move. maxMoves <= 0 means no cap.
func Play(e engine.Engine, sel *selector.Selector, gameID string, maxMoves int) []MoveRow {
	var rows []MoveRow
	for !e.IsGameOver() && (maxMoves <= 0 || len(rows) < maxMoves) {
		dir, ok := sel.Play(e)
		if !ok {
			if n := len(rows); n > 0 {
				rows[n-1].GameOver = true
			}
			break
		}
		rows = append(rows, NewRow(gameID, len(rows)+1, dir, engine.SourceAI, true, e.GetState()))
	}
	return rows
}

// Summarize groups rows by game in first-seen order. Each summary reflects the
// row with the highest move number.
func Summarize(rows []MoveRow) []GameSummary {
	index := make(map[string]int)
	var summaries []GameSummary
	last := make(map[string]int32)

	for _, row := range rows {
		i, ok := index[row.GameID]
		if !ok {
			i = len(summaries)
			index[row.GameID] = i
			summaries = append(summaries, GameSummary{GameID: row.GameID})
			last[row.GameID] = -1
		}

		s := &summaries[i]
		s.Moves++
		if row.MaxTile > s.MaxTile {
			s.MaxTile = row.MaxTile
		}
		if row.GameOver {
			s.GameOver = true
		}
		if row.Move > last[row.GameID] {
			last[row.GameID] = row.Move
			s.FinalScore = row.Score
			s.Size = int(row.Size)
		}
	}
	return summaries
}

// Combine aggregates per-game summaries
func Combine(games []GameSummary) Aggregate {
	agg := Aggregate{Games: len(games), MaxTiles: make(map[int32]int)}
	if len(games) == 0 {
		return agg
	}

	var total int64
	for i, g := range games {
		agg.TotalMoves += g.Moves
		total += g.FinalScore
		if i == 0 || g.FinalScore > agg.BestScore {
			agg.BestScore = g.FinalScore
		}
		if g.GameOver {
			agg.Finished++
		}
		agg.MaxTiles[g.MaxTile]++
	}
	agg.MeanScore = float64(total) / float64(len(games))
	return agg
}

// SortedTiles returns the histogram keys in ascending order
func (a Aggregate) SortedTiles() []int32 {
	tiles := make([]int32, 0, len(a.MaxTiles))
	for tile := range a.MaxTiles {
		tiles = append(tiles, tile)
	}
	sort.Slice(tiles, func(i, j int) bool { return tiles[i] < tiles[j] })
	return tiles
}
