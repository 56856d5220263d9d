// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"runtime"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/LRFreeborn/transabyss/internal/align"
	"github.com/LRFreeborn/transabyss/internal/cli"
	"github.com/LRFreeborn/transabyss/internal/config"
	"github.com/LRFreeborn/transabyss/internal/evidence"
	"github.com/LRFreeborn/transabyss/internal/logging"
	"github.com/LRFreeborn/transabyss/internal/merge"
	"github.com/LRFreeborn/transabyss/internal/resolve"
	"github.com/LRFreeborn/transabyss/internal/seqstore"
	"github.com/LRFreeborn/transabyss/internal/version"
	"github.com/LRFreeborn/transabyss/internal/writers"
)

// Exit codes.
const (
	ExitOK        = 0
	ExitUsage     = 2 // bad flags, configuration or input
	ExitRuntime   = 3 // producer, I/O or write failure
	ExitCancelled = 130
)

func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	fs := cli.NewFlagSet("transabyss-merge")
	fs.SetOutput(io.Discard)

	opts, err := cli.ParseArgs(fs, argv)
	if err != nil {
		code := ExitOK
		if !errors.Is(err, flag.ErrHelp) {
			_, _ = fmt.Fprintln(stderr, "error:", err)
			code = ExitUsage
		}
		fs.SetOutput(outw)
		fs.Usage()
		return flush(outw, stderr, code)
	}
	if opts.Version {
		_, _ = fmt.Fprintf(outw, "transabyss-merge version %s\n", version.Version)
		return flush(outw, stderr, ExitOK)
	}

	cfg := config.Defaults()
	if opts.ConfigFile != "" {
		if err := config.Load(opts.ConfigFile, &cfg); err != nil {
			_, _ = fmt.Fprintln(stderr, "error:", err)
			return ExitUsage
		}
	}
	if err := config.FromEnv(&cfg); err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return ExitUsage
	}
	opts.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return ExitUsage
	}
	logger, err := logging.New(stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return ExitUsage
	}

	m := &merger{opts: opts, cfg: cfg, stdout: outw, runID: uuid.NewString()}
	m.log = logger.With("run", m.runID)
	err = m.run(parent)
	if ferr := outw.Flush(); err == nil && ferr != nil && !writers.IsBrokenPipe(ferr) {
		err = ferr
	}
	if err != nil {
		code := exitCode(parent, err)
		if code == ExitCancelled {
			m.log.Warn("cancelled; no output written")
		} else {
			m.log.Error("merge failed", "err", err)
		}
		return code
	}
	return ExitOK
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

// usageError marks failures caused by the user's input rather than the run.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func exitCode(ctx context.Context, err error) int {
	var ue usageError
	switch {
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		return ExitCancelled
	case errors.As(err, &ue):
		return ExitUsage
	default:
		return ExitRuntime
	}
}

type merger struct {
	opts   cli.Options
	cfg    config.Config
	stdout io.Writer
	runID  string
	log    *log.Logger
}

func (m *merger) run(ctx context.Context) error {
	start := time.Now()
	for _, p := range []string{m.opts.Out, m.opts.Report} {
		if p == "" {
			continue
		}
		if err := writers.CheckWritable(p, m.opts.Force); err != nil {
			return usageError{err}
		}
	}

	threads := m.cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	m.log.Info("starting merge",
		"version", version.Version, "strategy", m.cfg.Strategy, "inputs", len(m.opts.Inputs),
		"min_identity", m.cfg.MinIdentity, "max_indels", m.cfg.MaxIndels, "mink", m.cfg.MinK,
		"ss", m.cfg.StrandSpecific, "threads", threads)

	t := time.Now()
	store, err := seqstore.Load(ctx, m.opts.Sources())
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return usageError{fmt.Errorf("load contigs: %w", err)}
	}
	m.log.Info("contigs loaded", "contigs", store.Len(), "sources", len(store.Sources()), "duration_ms", logging.Since(t))

	strategy, cleanup, err := m.strategy()
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			m.log.Warn("cleanup failed", "err", err)
		}
	}()

	r := merge.NewRun(store, m.cfg.Filter(), threads, m.log)
	res, err := strategy.Merge(ctx, r)
	if err != nil {
		return err
	}
	m.log.Debug("ingestion outcomes", "outcomes", r.Ingester.Stats())
	ev := r.Evidence()
	if ev.Malformed > 0 {
		m.log.Warn("malformed evidence records skipped", "count", ev.Malformed)
	}

	ms, err := m.write(store, res)
	if err != nil {
		return err
	}
	if m.opts.Report != "" {
		rep := merge.Report(version.Version, m.runID, strategy, r, res, ms, m.cfg.MinLength)
		err := writers.CommitFile(m.opts.Report, m.opts.Force, m.stdout, func(w io.Writer) error {
			return writers.WriteReport(w, rep)
		})
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	m.log.Info("merge complete",
		"contigs", store.Len(), "classes", len(res.Classes), "written", ms.Written,
		"dropped", ms.Dropped, "edges", r.Graph.Edges(), "duration_ms", logging.Since(start))
	return nil
}

func (m *merger) write(store *seqstore.Store, res *resolve.Result) (writers.MergedStats, error) {
	var ms writers.MergedStats
	err := writers.CommitFile(m.opts.Out, m.opts.Force, m.stdout, func(w io.Writer) error {
		var err error
		ms, err = writers.WriteMerged(w, store, res.Representatives(), m.cfg.MinLength)
		return err
	})
	if err != nil {
		return ms, fmt.Errorf("write %s: %w", m.opts.Out, err)
	}
	return ms, nil
}

// strategy builds the configured evidence strategy. cleanup releases its
// scratch space and is never nil.
func (m *merger) strategy() (merge.Strategy, func() error, error) {
	noop := func() error { return nil }
	dec, err := evidence.Lookup(m.cfg.EvidenceFormat)
	if err != nil {
		return nil, noop, usageError{err}
	}
	if m.cfg.Strategy == config.StrategyPrecomputed {
		if len(m.opts.Evidence) == 0 {
			return nil, noop, usageError{errors.New("--strategy precomputed needs --evidence")}
		}
		return &merge.Precomputed{Files: m.opts.Evidence, Decoder: dec}, noop, nil
	}
	if len(m.opts.Evidence) > 0 {
		m.log.Warn("--evidence ignored", "strategy", m.cfg.Strategy)
	}

	path, err := align.CheckExecutable(m.cfg.Aligner)
	if err != nil {
		return nil, noop, usageError{err}
	}
	m.log.Debug("aligner found", "path", path)
	cmd, err := align.NewCommand(m.cfg.Aligner, map[string]string{
		"mink": strconv.Itoa(m.cfg.MinK),
		"pid":  strconv.FormatFloat(math.Round(m.cfg.MinIdentity*1e4)/100, 'f', -1, 64),
	}, dec, m.log)
	if err != nil {
		return nil, noop, usageError{err}
	}
	ws, err := align.NewWorkspace(m.cfg.TmpDir, m.runID, m.cfg.KeepTemp, m.log)
	if err != nil {
		return nil, noop, err
	}
	switch m.cfg.Strategy {
	case config.StrategyIterative:
		return &merge.Iterative{Aligner: cmd, Workspace: ws, StrandSpecific: m.cfg.StrandSpecific}, ws.Close, nil
	default:
		return &merge.Batch{Aligner: cmd, Workspace: ws}, ws.Close, nil
	}
}

func flush(w *bufio.Writer, stderr io.Writer, code int) int {
	if err := w.Flush(); writers.IsBrokenPipe(err) {
		return ExitOK
	} else if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return ExitRuntime
	}
	return code
}
