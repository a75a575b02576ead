package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chapterize/internal/preflight"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

func newCheckCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <audiobook>",
		Short: "Run preflight checks without exporting anything",
		Long: `Check verifies that a run would start: the audiobook is readable, the
output directory is writable, and the external tools for the chosen
detection method resolve.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			results := preflight.RunAll(cfg, preflight.Request{
				Input:     args[0],
				OutputDir: cfg.Output.Dir,
				Method:    cfg.Detection.Method,
			})

			out := cmd.OutOrStdout()
			colorize := !opts.noColor && shouldColorize(out)
			for _, result := range results {
				fmt.Fprintln(out, renderCheckLine(result, colorize))
			}

			if failed := preflight.Failures(results); len(failed) > 0 {
				return fmt.Errorf("%d of %d checks failed", len(failed), len(results))
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.method, "method", "speech", "Detection method to check tools for")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "chapters", "Output directory to check")
	return cmd
}

func renderCheckLine(result preflight.Result, colorize bool) string {
	status, color := "OK", ansiGreen
	if !result.Passed {
		status, color = "FAIL", ansiRed
	}
	line := fmt.Sprintf("  %-18s [%s] %s", result.Name+":", status, result.Detail)
	if colorize {
		return color + line + ansiReset
	}
	return line
}
