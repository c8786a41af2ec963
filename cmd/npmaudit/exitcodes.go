// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package main

import "fmt"

// Exit codes for the npmaudit CLI (spec section 6, "exit-code contract").
const (
	ExitClean    = 0 // Grade A or B.
	ExitCaution  = 1 // Grade C.
	ExitDanger   = 2 // Grade D or F, or a scanner-pipeline error.
)

// exitCodeError carries a non-zero exit code through cobra's error handling.
type exitCodeError struct {
	code int
	msg  string
}

func (e *exitCodeError) Error() string { return e.msg }

// ExitCode returns the exit code for this error.
func (e *exitCodeError) ExitCode() int { return e.code }

// exitError creates an exitCodeError with a formatted message.
func exitError(code int, format string, args ...any) *exitCodeError {
	return &exitCodeError{code: code, msg: fmt.Sprintf(format, args...)}
}

// gradeExitCode maps a final letter grade to its exit code.
func gradeExitCode(grade string) int {
	switch grade {
	case "A", "B":
		return ExitClean
	case "C":
		return ExitCaution
	default:
		return ExitDanger
	}
}

// failsThreshold reports whether grade is at or below the --fail-on
// threshold grade (A is best, F is worst).
func failsThreshold(grade, threshold string) bool {
	rank := map[string]int{"A": 0, "B": 1, "C": 2, "D": 3, "F": 4}
	gr, ok1 := rank[grade]
	th, ok2 := rank[threshold]
	if !ok1 || !ok2 {
		return false
	}
	return gr >= th
}
