package cli

import (
	"flag"
	"fmt"

	"github.com/LRFreeborn/transabyss/internal/config"
	"github.com/LRFreeborn/transabyss/internal/version"
)

// Usage installs the help text on fs.
func Usage(fs *flag.FlagSet, name string) {
	fs.Usage = func() {
		out := fs.Output()
		def := func(flagName string) string {
			if f := fs.Lookup(flagName); f != nil {
				return f.DefValue
			}
			return ""
		}

		fmt.Fprintf(out, "%s – merge redundant contigs from multiple assemblies\n\n", name)
		fmt.Fprintf(out, "Version: %s\n\n", version.Version)
		fmt.Fprintf(out, "Usage:\n  %s [flags] --out merged.fa ASSEMBLY.fa [ASSEMBLY.fa ...]\n", name)

		fmt.Fprintln(out, "\nInput / output:")
		fmt.Fprintln(out, "      --prefixes list         Identifier prefix per input, in input order [k1., k2., ...]")
		fmt.Fprintln(out, "  -o, --out file              Merged FASTA ('-' for STDOUT) [*]")
		fmt.Fprintln(out, "      --report file           JSON class report")
		fmt.Fprintln(out, "      --evidence file         Precomputed evidence (repeatable; implies --strategy precomputed)")
		fmt.Fprintln(out, "      --config file           TOML or YAML configuration")
		fmt.Fprintln(out, "      --force                 Overwrite existing outputs")

		fmt.Fprintln(out, "\nMerge:")
		fmt.Fprintf(out, "      --pid float             Minimum alignment identity [%s]\n", def("pid"))
		fmt.Fprintf(out, "      --indel int             Maximum indels per alignment [%s]\n", def("indel"))
		fmt.Fprintf(out, "      --mink int              Smallest assembly k (minimum overlap) [%s]\n", def("mink"))
		fmt.Fprintln(out, "      --SS                    Strand-specific assemblies")
		fmt.Fprintf(out, "      --length int            Drop merged contigs shorter than this (0=off) [%s]\n", def("length"))

		fmt.Fprintln(out, "\nEvidence:")
		fmt.Fprintf(out, "      --strategy string       batch | iterative | precomputed [%s]\n", def("strategy"))
		fmt.Fprintf(out, "      --aligner string        Aligner command; {target} {query} {mink} {pid} are substituted\n                              [%s]\n", def("aligner"))
		fmt.Fprintf(out, "      --evidence-format string  psl | tsv [%s]\n", def("evidence-format"))
		fmt.Fprintf(out, "  -t, --threads int           Worker threads (0=all CPUs) [%s]\n", def("threads"))
		fmt.Fprintf(out, "      --tmpdir dir            Temporary directory [%s]\n", def("tmpdir"))
		fmt.Fprintln(out, "      --keep-temp             Keep temporary files")

		fmt.Fprintln(out, "\nMiscellaneous:")
		fmt.Fprintf(out, "      --log-level string      debug | info | warn | error [%s]\n", def("log-level"))
		fmt.Fprintln(out, "      --verbose               Debug logging")
		fmt.Fprintln(out, "  -q, --quiet                 Errors only")
		fmt.Fprintln(out, "  -v, --version               Print version and exit")
		fmt.Fprintln(out, "  -h, --help                  Show this help and exit")
		fmt.Fprintf(out, "\nSettings are read from defaults, --config, %s_* variables and flags, later ones winning.\n", config.EnvPrefix)
	}
}
