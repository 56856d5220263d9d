// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/LRFreeborn/transabyss/internal/config"
	"github.com/LRFreeborn/transabyss/internal/seqstore"
)

// Options holds all CLI flags and arguments. Merge parameters only override
// the configuration when given on the command line (see Apply).
type Options struct {
	// Input / output
	Inputs     []string
	Prefixes   []string
	Out        string
	Report     string
	Evidence   []string
	ConfigFile string
	Force      bool

	// Merge parameters
	MinIdentity    float64
	MaxIndels      int
	MinK           int
	StrandSpecific bool
	MinLength      int
	Threads        int
	Strategy       string
	Aligner        string
	EvidenceFormat string
	TmpDir         string
	KeepTemp       bool

	// Misc
	LogLevel string
	Verbose  bool
	Quiet    bool
	Version  bool

	set map[string]bool
}

// NewFlagSet returns a FlagSet with ContinueOnError and the tool's usage.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	Usage(fs, name)
	return fs
}

// ParseArgs registers and parses all flags, returns an Options struct.
// Flags may follow the FASTA inputs.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool
	def := config.Defaults()

	fs.Var((*listValue)(&opt.Prefixes), "prefixes", "identifier prefix per input (repeatable or comma list)")
	fs.StringVar(&opt.Out, "out", "", "merged FASTA output ('-' for stdout) [*]")
	fs.StringVar(&opt.Out, "o", "", "alias of --out")
	fs.StringVar(&opt.Report, "report", "", "write a JSON class report to this path")
	fs.Var((*listValue)(&opt.Evidence), "evidence", "precomputed evidence file (repeatable)")
	fs.StringVar(&opt.ConfigFile, "config", "", "TOML or YAML configuration file")
	fs.BoolVar(&opt.Force, "force", false, "overwrite existing output files [false]")

	fs.Float64Var(&opt.MinIdentity, "pid", def.MinIdentity, "minimum alignment identity (fraction or percent)")
	fs.IntVar(&opt.MaxIndels, "indel", def.MaxIndels, "maximum indels per alignment")
	fs.IntVar(&opt.MinK, "mink", def.MinK, "smallest assembly k; minimum overlap length")
	fs.BoolVar(&opt.StrandSpecific, "SS", false, "input assemblies are strand-specific [false]")
	fs.IntVar(&opt.MinLength, "length", def.MinLength, "drop merged contigs shorter than this (0 = off)")
	fs.IntVar(&opt.Threads, "threads", def.Threads, "worker threads (0 = all CPUs)")
	fs.IntVar(&opt.Threads, "t", def.Threads, "alias of --threads")
	fs.StringVar(&opt.Strategy, "strategy", def.Strategy, "evidence strategy: batch | iterative | precomputed")
	fs.StringVar(&opt.Aligner, "aligner", def.Aligner, "aligner command template")
	fs.StringVar(&opt.EvidenceFormat, "evidence-format", def.EvidenceFormat, "evidence format: psl | tsv")
	fs.StringVar(&opt.TmpDir, "tmpdir", def.TmpDir, "directory for temporary files")
	fs.BoolVar(&opt.KeepTemp, "keep-temp", false, "keep temporary files [false]")

	fs.StringVar(&opt.LogLevel, "log-level", def.LogLevel, "log level: debug | info | warn | error")
	fs.BoolVar(&opt.Verbose, "verbose", false, "debug logging [false]")
	fs.BoolVar(&opt.Quiet, "quiet", false, "errors only [false]")
	fs.BoolVar(&opt.Quiet, "q", false, "alias of --quiet")
	fs.BoolVar(&opt.Version, "v", false, "print version and exit (shorthand) [false]")
	fs.BoolVar(&opt.Version, "version", false, "print version and exit [false]")
	fs.BoolVar(&help, "h", false, "show this help message (shorthand) [false]")

	flagArgs, posArgs := splitArgs(fs, argv)
	if err := fs.Parse(flagArgs); err != nil {
		return opt, err
	}
	if help {
		return opt, flag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}
	opt.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { opt.set[f.Name] = true })

	inputs, err := expandInputs(append(posArgs, fs.Args()...))
	if err != nil {
		return opt, err
	}
	opt.Inputs = inputs

	// Validation
	if len(opt.Inputs) == 0 {
		return opt, errors.New("at least one input FASTA is required")
	}
	if opt.Out == "" {
		return opt, errors.New("--out is required")
	}
	if len(opt.Prefixes) > 0 && len(opt.Prefixes) != len(opt.Inputs) {
		return opt, fmt.Errorf("--prefixes lists %d labels for %d inputs", len(opt.Prefixes), len(opt.Inputs))
	}
	if opt.Verbose && opt.Quiet {
		return opt, errors.New("--verbose conflicts with --quiet")
	}
	if opt.Report != "" && opt.Report == opt.Out {
		return opt, errors.New("--report and --out name the same file")
	}
	if opt.MinIdentity > 1 {
		opt.MinIdentity /= 100
	}
	return opt, nil
}

// Sources pairs each input with its prefix. Without --prefixes the inputs
// are labeled k1., k2., ... in command-line order.
func (o Options) Sources() []seqstore.Source {
	out := make([]seqstore.Source, len(o.Inputs))
	for i, in := range o.Inputs {
		label := fmt.Sprintf("k%d.", i+1)
		if len(o.Prefixes) > 0 {
			label = o.Prefixes[i]
		}
		out[i] = seqstore.Source{Label: label, Path: in}
	}
	return out
}

// Apply copies the merge parameters given on the command line onto cfg.
func (o Options) Apply(cfg *config.Config) {
	if o.set["pid"] {
		cfg.MinIdentity = o.MinIdentity
	}
	if o.set["indel"] {
		cfg.MaxIndels = o.MaxIndels
	}
	if o.set["mink"] {
		cfg.MinK = o.MinK
	}
	if o.set["SS"] {
		cfg.StrandSpecific = o.StrandSpecific
	}
	if o.set["length"] {
		cfg.MinLength = o.MinLength
	}
	if o.set["threads"] || o.set["t"] {
		cfg.Threads = o.Threads
	}
	if o.set["strategy"] {
		cfg.Strategy = o.Strategy
	}
	if o.set["aligner"] {
		cfg.Aligner = o.Aligner
	}
	if o.set["evidence-format"] {
		cfg.EvidenceFormat = o.EvidenceFormat
	}
	if o.set["tmpdir"] {
		cfg.TmpDir = o.TmpDir
	}
	if o.set["keep-temp"] {
		cfg.KeepTemp = o.KeepTemp
	}
	if o.set["log-level"] {
		cfg.LogLevel = o.LogLevel
	}
	switch {
	case o.Verbose:
		cfg.LogLevel = "debug"
	case o.Quiet:
		cfg.LogLevel = "error"
	}
	if len(o.Evidence) > 0 && !o.set["strategy"] {
		cfg.Strategy = config.StrategyPrecomputed
	}
}

// listValue collects repeatable, comma-separable values.
type listValue []string

func (l *listValue) String() string { return strings.Join(*l, ",") }

func (l *listValue) Set(v string) error {
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			*l = append(*l, p)
		}
	}
	return nil
}
