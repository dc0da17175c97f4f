package app

import "strings"

// NormalizeFEN strips move counters and keeps only the structural position:
// <pieces> <side> <castling> <en-passant>
func NormalizeFEN(fen string) string {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		// malformed FEN, return it trimmed
		return strings.TrimSpace(fen)
	}
	return strings.Join(parts[:4], " ")
}

// SplitBatches cuts fens into consecutive batches of at most size entries.
func SplitBatches(fens []string, size int) [][]string {
	if size <= 0 {
		size = len(fens)
	}
	batches := make([][]string, 0, numBatches(len(fens), size))
	for start := 0; start < len(fens); start += size {
		end := min(start+size, len(fens))
		batches = append(batches, fens[start:end])
	}
	return batches
}

func numBatches(total, size int) int {
	if total == 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size // ceil division
}
