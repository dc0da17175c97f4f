package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"chazz/app/models"
)

func TestJobErrorMapping(t *testing.T) {
	id := "6f1c2a8e-2d4b-4c1e-9a57-0b1d5e3f7a21"
	other := errors.New("connection reset")

	tests := []struct {
		name     string
		err      error
		notFound bool
	}{
		{"foreign key", &pq.Error{Code: "23503", Message: "violates foreign key constraint"}, true},
		{"wrapped foreign key", fmt.Errorf("copy: %w", &pq.Error{Code: "23503"}), true},
		{"bad uuid text", &pq.Error{Code: "22P02"}, true},
		{"unique violation", &pq.Error{Code: "23505"}, false},
		{"not a pq error", other, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := jobError(id, tt.err)
			if errors.Is(got, ErrJobNotFound) != tt.notFound {
				t.Fatalf("jobError(%v) = %v, not found %v", tt.err, got, tt.notFound)
			}
			if !tt.notFound && got != tt.err {
				t.Fatalf("jobError(%v) = %v, want it unchanged", tt.err, got)
			}
		})
	}
}

func TestPostgresStoreRejectsMalformedJobID(t *testing.T) {
	// A malformed id never reaches the database, so no connection is needed.
	s := NewPostgresStore(nil, zerolog.Nop())
	ctx := context.Background()
	results := []models.PositionResult{{FEN: startFEN, BestMove: "e2e4"}}

	if err := s.SaveResults(ctx, "missing", 0, "material", results); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("SaveResults error = %v, want ErrJobNotFound", err)
	}
	if err := s.UpdateJobProgress(ctx, "missing"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("UpdateJobProgress error = %v, want ErrJobNotFound", err)
	}
	if _, err := s.FindResults(ctx, "missing"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("FindResults error = %v, want ErrJobNotFound", err)
	}
	if _, err := s.FindJobStatus(ctx, "missing"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("FindJobStatus error = %v, want ErrJobNotFound", err)
	}
}
