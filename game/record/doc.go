// Package record stores self-play trajectories as parquet files.
//
// Each MoveRow captures one move: the direction, the resulting score and the
// flattened board. Writer streams games into a zstd-compressed file that only
// appears at its final path once Close succeeds; ReadFile loads it back and
// Summarize/Combine reduce the rows to per-game and overall statistics.
package record
