// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/npmaudit/npmaudit/internal/config"
)

var initForce bool

const defaultConfigTemplate = `# npmaudit configuration. See "npmaudit audit --help" for flag equivalents.
output_format: ""   # "json" or "" for human-readable
fail_on: ""          # A-F; empty means never fail the exit code on grade alone
no_github: false
no_diff: false
`

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a starter .npmaudit.yaml in a repository",
	Long: `Write a starter .npmaudit.yaml with commented-out defaults. Skips the
file if it already exists; use --force to overwrite.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing .npmaudit.yaml")
}

func runInit(cmd *cobra.Command, args []string) error {
	repoPath := "."
	if len(args) > 0 {
		repoPath = args[0]
	}

	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return exitError(ExitDanger, "npmaudit: cannot resolve path %q (%v)", repoPath, err)
	}
	info, err := os.Stat(absPath)
	if err != nil || !info.IsDir() {
		return exitError(ExitDanger, "npmaudit: %q is not a directory", repoPath)
	}

	target := filepath.Join(absPath, config.FileName)
	if _, err := os.Stat(target); err == nil && !initForce {
		fmt.Fprintf(cmd.OutOrStdout(), "%s already exists (use --force to overwrite)\n", config.FileName)
		return nil
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return exitError(ExitDanger, "npmaudit: checking %s: %v", config.FileName, err)
	}

	if err := os.WriteFile(target, []byte(defaultConfigTemplate), 0o644); err != nil {
		return exitError(ExitDanger, "npmaudit: writing %s: %v", config.FileName, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", config.FileName)
	return nil
}
