// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package report

import (
	"github.com/fatih/color"
)

// Shared color printers for report rendering.
var (
	colorRed    = color.New(color.FgRed)
	colorYellow = color.New(color.FgYellow)
	colorGreen  = color.New(color.FgGreen)
	colorBold   = color.New(color.Bold)
)

// ColorSeverity colors a finding severity label.
func ColorSeverity(val string) string {
	switch val {
	case "critical":
		return colorRed.Sprint(val)
	case "warning":
		return colorYellow.Sprint(val)
	case "info":
		return val
	default:
		return val
	}
}

// ColorVerdict colors the final verdict label.
func ColorVerdict(val string) string {
	switch val {
	case "DANGER":
		return colorRed.Sprint(val)
	case "CAUTION":
		return colorYellow.Sprint(val)
	case "CLEAN":
		return colorGreen.Sprint(val)
	default:
		return val
	}
}

// ColorGrade colors a letter grade.
func ColorGrade(val string) string {
	switch val {
	case "A", "B":
		return colorGreen.Sprint(val)
	case "C":
		return colorYellow.Sprint(val)
	case "D", "F":
		return colorRed.Sprint(val)
	default:
		return val
	}
}

// ColorPassed colors a scanner's pass/fail status.
func ColorPassed(passed bool) string {
	if passed {
		return colorGreen.Sprint("pass")
	}
	return colorRed.Sprint("fail")
}

// SectionTitle renders a bold section title.
func SectionTitle(title string) string {
	return colorBold.Sprint(title)
}
