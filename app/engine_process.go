package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
)

var errNotReady = errors.New("engine not ready")

// EngineProcess runs an engine binary and speaks the driver protocol over its
// stdin and stdout.
type EngineProcess struct {
	cmd   *exec.Cmd
	in    *bufio.Writer
	out   *bufio.Scanner
	lines chan string
	mu    sync.Mutex
	ready bool
}

// NewEngineProcess starts path with env appended to the current environment and
// waits for the readiness handshake.
func NewEngineProcess(ctx context.Context, path string, env ...string) (*EngineProcess, error) {
	cmd := exec.Command(path)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	e := &EngineProcess{
		cmd: cmd,
		in:  bufio.NewWriter(stdin),
		out: bufio.NewScanner(stdout),
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	e.startReader()

	if err := e.send("isready"); err != nil {
		return nil, err
	}
	for {
		line, err := e.readLine(ctx)
		if err != nil {
			_ = cmd.Process.Kill()
			return nil, fmt.Errorf("handshake with %s: %w", path, err)
		}
		if line == "readyok" {
			break
		}
	}
	e.ready = true
	return e, nil
}

func (e *EngineProcess) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_ = e.send("quit")
	if e.cmd == nil {
		return nil
	}
	return e.cmd.Wait()
}

// BestMove sends the position and waits for one reply line or for ctx to end.
func (e *EngineProcess) BestMove(ctx context.Context, fen string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready {
		return "", errNotReady
	}
	if err := e.send("position " + fen); err != nil {
		return "", err
	}
	if err := e.send("go"); err != nil {
		return "", err
	}

	line, err := e.readLine(ctx)
	if err != nil {
		// A late reply would answer the next request.
		e.ready = false
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// startReader moves scanner output onto a channel so reads can be abandoned
// when a context ends.
func (e *EngineProcess) startReader() {
	e.lines = make(chan string, 16)
	go func() {
		defer close(e.lines)
		for e.out.Scan() {
			line := strings.TrimSpace(e.out.Text())
			if line == "" {
				continue
			}
			e.lines <- line
		}
	}()
}

func (e *EngineProcess) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-e.lines:
		if !ok {
			if err := e.out.Err(); err != nil {
				return "", err
			}
			return "", errors.New("engine closed its output")
		}
		return line, nil
	}
}

func (e *EngineProcess) send(cmd string) error {
	_, err := fmt.Fprintln(e.in, cmd)
	if err != nil {
		return err
	}
	return e.in.Flush()
}
