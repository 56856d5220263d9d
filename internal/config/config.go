// Package config holds the merge parameters and loads them from a TOML or
// YAML file and from TRANSABYSS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/LRFreeborn/transabyss/internal/evidence"
	"github.com/LRFreeborn/transabyss/internal/ingest"
)

// Evidence strategies.
const (
	StrategyBatch       = "batch"
	StrategyIterative   = "iterative"
	StrategyPrecomputed = "precomputed"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TRANSABYSS"

// DefaultAligner is a BLAT invocation writing headerless PSL to stdout.
const DefaultAligner = "blat -noHead -minIdentity={pid} {target} {query} /dev/stdout"

// Config is the merged parameter set. Environment keys are TRANSABYSS_ plus
// the field name in upper snake case (TRANSABYSS_MIN_LENGTH,
// TRANSABYSS_STRAND_SPECIFIC, ...).
type Config struct {
	MinIdentity    float64 `toml:"min_identity" yaml:"min_identity" split_words:"true"`
	MaxIndels      int     `toml:"max_indels" yaml:"max_indels" split_words:"true"`
	MinK           int     `toml:"mink" yaml:"mink" split_words:"true"`
	StrandSpecific bool    `toml:"strand_specific" yaml:"strand_specific" split_words:"true"`
	Threads        int     `toml:"threads" yaml:"threads" split_words:"true"`
	Strategy       string  `toml:"strategy" yaml:"strategy" split_words:"true"`
	MinLength      int     `toml:"min_length" yaml:"min_length" split_words:"true"`

	Aligner        string `toml:"aligner" yaml:"aligner" split_words:"true"`
	EvidenceFormat string `toml:"evidence_format" yaml:"evidence_format" split_words:"true"`
	TmpDir         string `toml:"tmp_dir" yaml:"tmp_dir" split_words:"true"`
	KeepTemp       bool   `toml:"keep_temp" yaml:"keep_temp" split_words:"true"`

	LogLevel  string `toml:"log_level" yaml:"log_level" split_words:"true"`
	LogFormat string `toml:"log_format" yaml:"log_format" split_words:"true"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		MinIdentity:    ingest.DefaultMinIdentity,
		MaxIndels:      ingest.DefaultMaxIndels,
		MinK:           32,
		Strategy:       StrategyBatch,
		Aligner:        DefaultAligner,
		EvidenceFormat: evidence.FormatPSL,
		TmpDir:         os.TempDir(),
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Load overlays the file at path onto cfg. The format follows the extension:
// .toml, .yaml or .yml.
func Load(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse TOML %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config file %s: unsupported extension (want .toml, .yaml or .yml)", path)
	}
	return nil
}

// FromEnv overlays TRANSABYSS_* variables onto cfg. Unset variables leave
// the current values alone.
func FromEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("error processing environment configuration: %w", err)
	}
	return nil
}

// Validate checks bounds and enumerations.
func (c *Config) Validate() error {
	var errs []error
	if c.MinIdentity < ingest.MinPermittedIdentity || c.MinIdentity > 1 {
		errs = append(errs, fmt.Errorf("min identity %.3f outside [%.2f, 1]", c.MinIdentity, ingest.MinPermittedIdentity))
	}
	if c.MaxIndels < 0 {
		errs = append(errs, errors.New("indel tolerance must be ≥ 0"))
	}
	if c.MinK <= 0 {
		errs = append(errs, errors.New("mink must be > 0"))
	}
	if c.Threads < 0 {
		errs = append(errs, errors.New("threads must be ≥ 0"))
	}
	if c.MinLength < 0 {
		errs = append(errs, errors.New("length must be ≥ 0"))
	}
	switch c.Strategy {
	case StrategyBatch, StrategyIterative, StrategyPrecomputed:
	default:
		errs = append(errs, fmt.Errorf("invalid strategy %q", c.Strategy))
	}
	if _, err := evidence.Lookup(c.EvidenceFormat); err != nil {
		errs = append(errs, err)
	}
	if c.Strategy != StrategyPrecomputed && len(strings.Fields(c.Aligner)) == 0 {
		errs = append(errs, errors.New("aligner command is empty"))
	}
	return errors.Join(errs...)
}

// Filter derives the ingestion thresholds.
func (c *Config) Filter() ingest.Filter {
	return ingest.Filter{
		MinIdentity:    c.MinIdentity,
		MaxIndels:      c.MaxIndels,
		MinOverlap:     c.MinK,
		StrandSpecific: c.StrandSpecific,
	}
}
