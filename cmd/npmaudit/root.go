// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	npmauditlog "github.com/npmaudit/npmaudit/internal/log"
)

// Global flag values.
var (
	verbose bool
	quiet   bool
	noColor bool
)

// rootCmd is the base command for npmaudit.
var rootCmd = &cobra.Command{
	Use:   "npmaudit",
	Short: "Audit an npm package for supply-chain risk before you install it",
	Long: `npmaudit resolves an npm package specifier, extracts its published
artifact, and runs a battery of static scanners — dangerous API usage,
obfuscation, lifecycle-hook abuse, leaked secrets, native binaries,
dependency bloat, typosquatting, and indicators of compromise — plus
optional repository-health and source-diff checks, producing a single
weighted risk score.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		npmauditlog.Setup(verbose, quiet)
		if noColor {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}
