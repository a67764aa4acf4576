package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfatm/sparse-crates/src/badge"
	"github.com/alfatm/sparse-crates/src/logging"
	"github.com/alfatm/sparse-crates/src/scan"
	"github.com/alfatm/sparse-crates/src/validate"
	"github.com/alfatm/sparse-crates/src/vrange"
)

var badgeOutput string

var badgeCmd = &cobra.Command{
	Use:   "badge [path]",
	Short: "Generate an SVG badge for dependency status",
	Long: `Check all Cargo.toml manifests and render a shields.io-style SVG
badge reflecting the worst dependency status found.`,
	RunE: runBadge,
}

func init() {
	badgeCmd.Flags().StringVarP(&badgeOutput, "output", "o", "", "write the badge to a file instead of stdout")

	rootCmd.AddCommand(badgeCmd)
}

func runBadge(cmd *cobra.Command, args []string) error {
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

	results := validate.ValidateFiles(context.Background(), paths, cfg, validate.Options{Logger: log})

	var statuses []vrange.Status
	outdated := 0
	for _, mr := range results {
		if mr.Err != nil || mr.ParseError != nil {
			statuses = append(statuses, vrange.StatusError)
			continue
		}
		for _, r := range mr.Dependencies {
			statuses = append(statuses, r.Status)
			if r.Status != vrange.StatusLatest && r.Status != vrange.StatusError {
				outdated++
			}
		}
	}

	worst := badge.WorstStatus(statuses)
	value := "up to date"
	switch {
	case worst == vrange.StatusError:
		value = "error"
	case outdated > 0:
		value = fmt.Sprintf("%d outdated", outdated)
	}

	metrics := badge.ApproxMetrics()
	if cfg.Badge.Font != "" {
		metrics, err = badge.LoadFontFile(cfg.Badge.Font)
		if err != nil {
			return err
		}
	}

	svg := badge.New(metrics).Generate(badge.Badge{
		Label: cfg.Badge.Label,
		Value: value,
		Color: badge.StatusColor(worst),
	})

	if badgeOutput != "" {
		if err := os.WriteFile(badgeOutput, []byte(svg), 0o644); err != nil {
			return fmt.Errorf("writing badge: %w", err)
		}
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), svg)
	return nil
}
