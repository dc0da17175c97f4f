package app

import (
	"reflect"
	"testing"
)

func TestNormalizeFEN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -"},
		{"  4k3/8/8/8/8/8/8/4K3  b -  -  12 40 ", "4k3/8/8/8/8/8/8/4K3 b - -"},
		{"4k3/8/8/8/8/8/8/4K3 w - e3", "4k3/8/8/8/8/8/8/4K3 w - e3"},
		{" garbage ", "garbage"},
	}
	for _, tt := range tests {
		if got := NormalizeFEN(tt.in); got != tt.want {
			t.Errorf("NormalizeFEN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitBatches(t *testing.T) {
	fens := []string{"a", "b", "c", "d", "e"}
	tests := []struct {
		name string
		size int
		want [][]string
	}{
		{"even", 5, [][]string{{"a", "b", "c", "d", "e"}}},
		{"remainder", 2, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}},
		{"one each", 1, [][]string{{"a"}, {"b"}, {"c"}, {"d"}, {"e"}}},
		{"zero means one batch", 0, [][]string{{"a", "b", "c", "d", "e"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitBatches(fens, tt.size)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("SplitBatches(size=%d) = %v, want %v", tt.size, got, tt.want)
			}
			if n := numBatches(len(fens), max(tt.size, 0)); tt.size > 0 && n != len(got) {
				t.Fatalf("numBatches = %d, want %d", n, len(got))
			}
		})
	}

	if got := SplitBatches(nil, 3); len(got) != 0 {
		t.Fatalf("SplitBatches(nil) = %v, want none", got)
	}
}
