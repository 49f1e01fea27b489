// Command aslc is the ASL compiler core's command-line driver.
//
// Grounded on main.go (hhramberg-go-vslc)'s run(opt) pipeline, with
// util/args.go's hand-rolled flag parser replaced by
// github.com/spf13/cobra + github.com/spf13/pflag — several corpus
// repos (keurnel-assembler, raymyers-ralph-cc-go, CWBudde-go-dws,
// termfx-morfx) reach for cobra for exactly this shape of compiler CLI
// — and go.uber.org/zap standing in for the teacher's ad hoc
// fmt.Printf diagnostics.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"asl/internal/diag"
	"asl/internal/driver"
)

var (
	flagOut     string
	flagVerbose bool
	flagConfig  string
	flagLLVM    bool // -ll: accepted for teacher-compatible CLI shape, always rejected (see DESIGN.md)
)

func main() {
	root := &cobra.Command{
		Use:   "aslc [source.json]",
		Short: "Semantic analysis and code generation core for the ASL compiler",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	root.Flags().StringVarP(&flagOut, "out", "o", "", "path to output listing (default: stdout)")
	root.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "log each pass as it runs")
	root.Flags().StringVarP(&flagConfig, "config", "c", "", "path to a YAML configuration file")
	root.Flags().BoolVar(&flagLLVM, "ll", false, "not supported: only the stack-VM listing is emitted; setting this flag is an error")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "aslc: %s\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if flagLLVM {
		return errors.New("the -ll flag is not supported: this core targets the stack VM only (see DESIGN.md)")
	}

	if flagConfig != "" {
		cfg, err := driver.LoadConfig(flagConfig)
		if err != nil {
			return err
		}
		if cfg.Output != "" && flagOut == "" {
			flagOut = cfg.Output
		}
		if cfg.Verbose {
			flagVerbose = true
		}
	}

	log := newLogger(flagVerbose)
	defer log.Sync() //nolint:errcheck

	f, err := os.Open(args[0])
	if err != nil {
		return errors.Wrap(err, "opening syntax tree file")
	}
	defer f.Close()

	program, err := driver.ReadAST(f)
	if err != nil {
		return err
	}

	result := driver.Compile(program, log)

	out := os.Stdout
	if flagOut != "" {
		o, err := os.Create(flagOut)
		if err != nil {
			return errors.Wrap(err, "creating output file")
		}
		defer o.Close()
		out = o
	}

	diag.Render(os.Stderr, result.Diagnostics)

	if err := driver.Render(out, result); err != nil {
		return err
	}

	if len(result.Diagnostics) > 0 {
		os.Exit(1)
	}
	return nil
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.DisableStacktrace = true
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
