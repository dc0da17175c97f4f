package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
)

func newTestProcess(outputLines []string, keepOpen bool) (*EngineProcess, *strings.Builder) {
	pr, pw := io.Pipe()
	go func() {
		for _, line := range outputLines {
			_, _ = fmt.Fprintln(pw, line)
		}
		if !keepOpen {
			_ = pw.Close()
		}
	}()

	var sb strings.Builder
	e := &EngineProcess{
		in:    bufio.NewWriter(&sb),
		out:   bufio.NewScanner(pr),
		ready: true,
	}
	e.startReader()
	return e, &sb
}

func TestBestMoveSendsPositionAndGo(t *testing.T) {
	e, sb := newTestProcess([]string{"", "e2e4"}, false)

	move, err := e.BestMove(context.Background(), "test-fen")
	if err != nil {
		t.Fatalf("BestMove error: %v", err)
	}
	if move != "e2e4" {
		t.Fatalf("BestMove = %q, want e2e4", move)
	}
	sent := sb.String()
	if !strings.Contains(sent, "position test-fen\n") || !strings.Contains(sent, "go\n") {
		t.Fatalf("BestMove sent %q", sent)
	}
}

func TestBestMoveTimesOutOnSilentEngine(t *testing.T) {
	e, _ := newTestProcess(nil, true)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := e.BestMove(ctx, "fen"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("BestMove error = %v, want DeadlineExceeded", err)
	}
	if _, err := e.BestMove(context.Background(), "fen"); !errors.Is(err, errNotReady) {
		t.Fatalf("BestMove after timeout = %v, want errNotReady", err)
	}
}

func TestBestMoveClosedOutput(t *testing.T) {
	e, _ := newTestProcess(nil, false)
	if _, err := e.BestMove(context.Background(), "fen"); err == nil {
		t.Fatalf("BestMove should fail when the engine exits")
	}
}

func TestBestMoveNotReady(t *testing.T) {
	e := &EngineProcess{}
	if _, err := e.BestMove(context.Background(), "fen"); !errors.Is(err, errNotReady) {
		t.Fatalf("BestMove error = %v, want errNotReady", err)
	}
}

func TestCloseSendsQuit(t *testing.T) {
	e, sb := newTestProcess(nil, false)
	if err := e.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if !strings.Contains(sb.String(), "quit") {
		t.Fatalf("Close sent %q, want quit", sb.String())
	}
}
