// Package align runs the external aligner that produces overlap evidence.
package align

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/LRFreeborn/transabyss/internal/evidence"
)

// Aligner aligns the contigs of query against those of target (both FASTA
// paths) and streams the resulting records to emit.
type Aligner interface {
	Align(ctx context.Context, target, query string, emit func(evidence.Record) error) (evidence.ScanStats, error)
}

// Command runs an argv template. Placeholders of the form {name} are replaced
// from Vars plus {target} and {query}.
type Command struct {
	Argv    []string
	Vars    map[string]string
	Decoder evidence.Decoder
	Logger  *log.Logger
}

// NewCommand splits a command line on whitespace.
func NewCommand(cmdline string, vars map[string]string, dec evidence.Decoder, logger *log.Logger) (*Command, error) {
	argv := strings.Fields(cmdline)
	if len(argv) == 0 {
		return nil, errors.New("empty aligner command")
	}
	return &Command{Argv: argv, Vars: vars, Decoder: dec, Logger: logger}, nil
}

// Expand substitutes placeholders for one invocation.
func (c *Command) Expand(target, query string) []string {
	pairs := []string{"{target}", target, "{query}", query}
	for k, v := range c.Vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	r := strings.NewReplacer(pairs...)
	out := make([]string, len(c.Argv))
	for i, a := range c.Argv {
		out[i] = r.Replace(a)
	}
	return out
}

// Align runs the command once. A non-zero exit, a start failure or a broken
// output stream is reported as *evidence.ProducerError; an emit error is
// returned as is after the process has been stopped.
func (c *Command) Align(ctx context.Context, target, query string, emit func(evidence.Record) error) (evidence.ScanStats, error) {
	argv := c.Expand(target, query)
	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stderr := &tailBuffer{max: 4 << 10}
	cmd.Stderr = stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return evidence.ScanStats{}, &evidence.ProducerError{Producer: argv[0], Err: err}
	}
	c.Logger.Debug("starting aligner", "argv", strings.Join(argv, " "))
	if err := cmd.Start(); err != nil {
		return evidence.ScanStats{}, &evidence.ProducerError{Producer: argv[0], Err: err}
	}

	var emitErr error
	st, scanErr := evidence.Scan(ctx, stdout, c.Decoder, c.Logger, func(r evidence.Record) error {
		if err := emit(r); err != nil {
			emitErr = err
			return err
		}
		return nil
	})
	if scanErr != nil {
		cancel()
	}
	waitErr := cmd.Wait()

	switch {
	case emitErr != nil:
		return st, emitErr
	case parent.Err() != nil:
		return st, parent.Err()
	case scanErr != nil:
		return st, &evidence.ProducerError{Producer: argv[0], Err: scanErr, Stderr: stderr.String()}
	case waitErr != nil:
		return st, &evidence.ProducerError{Producer: argv[0], Err: waitErr, Stderr: stderr.String()}
	}
	return st, nil
}

// CheckExecutable verifies that the first word of cmdline is runnable.
func CheckExecutable(cmdline string) (string, error) {
	argv := strings.Fields(cmdline)
	if len(argv) == 0 {
		return "", errors.New("empty aligner command")
	}
	p, err := exec.LookPath(argv[0])
	if err != nil {
		return "", fmt.Errorf("aligner %q not found in PATH: %w", argv[0], err)
	}
	return p, nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Write(p)
	if over := t.buf.Len() - t.max; over > 0 {
		t.buf.Next(over)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(t.buf.String())
}
