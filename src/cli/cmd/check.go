package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfatm/sparse-crates/src/logging"
	"github.com/alfatm/sparse-crates/src/output"
	"github.com/alfatm/sparse-crates/src/scan"
	"github.com/alfatm/sparse-crates/src/validate"
)

var (
	checkChanged bool
	checkNoCache bool
	checkNoColor bool
)

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Check Cargo.toml dependencies for staleness",
	Long: `Scan for Cargo.toml manifests and compare every dependency
requirement against the latest versions in its registry index.

Exits non-zero when outdated dependencies or errors are found.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkChanged, "changed", false, "only check manifests changed relative to the target branch")
	checkCmd.Flags().BoolVar(&checkNoCache, "no-cache", false, "skip the local cargo registry cache")
	checkCmd.Flags().BoolVar(&checkNoColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	if len(args) > 0 {
		rootDir = args[0]
	}

	log := logging.Nop()
	if verbose {
		log = logging.New(os.Stderr, true)
	}

	paths, err := scan.Manifests(rootDir)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", rootDir, err)
	}
	if checkChanged {
		delta := &scan.Delta{RootDir: rootDir, TargetBranch: cfg.TargetBranch, Log: log}
		paths = delta.Filter(paths)
	}
	if len(paths) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no Cargo.toml manifests found")
		return nil
	}

	if checkNoCache {
		cfg.Registry.UseCache = false
	}

	start := time.Now()
	results := validate.ValidateFiles(context.Background(), paths, cfg, validate.Options{Logger: log})

	color := !checkNoColor && isTerminal(os.Stdout)
	sum := output.Report(cmd.OutOrStdout(), rootDir, results, time.Since(start), color)

	if !sum.Clean() {
		return fmt.Errorf("%d outdated, %d errors", sum.Outdated, sum.Errors)
	}
	return nil
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	st, err := f.Stat()
	if err != nil {
		return false
	}
	return st.Mode()&os.ModeCharDevice != 0
}
