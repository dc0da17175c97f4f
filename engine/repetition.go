package engine

// RepetitionTable counts how often each position hash occurs on the current
// search path. Every enter is paired with an exit that restores the old count.
type RepetitionTable struct {
	counts map[uint64]int
}

// NewRepetitionTable returns a table seeded with earlier positions of the game,
// one entry per occurrence.
func NewRepetitionTable(history ...uint64) *RepetitionTable {
	t := &RepetitionTable{counts: make(map[uint64]int, len(history))}
	for _, h := range history {
		t.counts[h]++
	}
	return t
}

func (t *RepetitionTable) Count(hash uint64) int { return t.counts[hash] }

// Len is the number of distinct hashes with a non-zero count.
func (t *RepetitionTable) Len() int { return len(t.counts) }

// Snapshot copies the counts.
func (t *RepetitionTable) Snapshot() map[uint64]int {
	out := make(map[uint64]int, len(t.counts))
	for h, n := range t.counts {
		out[h] = n
	}
	return out
}

// enter records one more visit and returns the previous count for exit.
func (t *RepetitionTable) enter(hash uint64) int {
	prev := t.counts[hash]
	t.counts[hash] = prev + 1
	return prev
}

func (t *RepetitionTable) exit(hash uint64, prev int) {
	if prev == 0 {
		delete(t.counts, hash)
		return
	}
	t.counts[hash] = prev
}
