// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/npmaudit/npmaudit/internal/finding"
)

// WriteHuman renders rep as a colored terminal report. Every scanner's
// summary line is printed regardless of outcome (section 7's "user-visible
// behavior" requirement).
func WriteHuman(w io.Writer, rep *finding.Report) error {
	fmt.Fprintf(w, "%s %s@%s\n\n", SectionTitle("npmaudit report:"), rep.Package.Name, rep.Package.Version)

	table := NewTable(
		Column{Header: "SCANNER"},
		Column{Header: "STATUS", Color: func(v string) string { return ColorPassed(v == "pass") }},
		Column{Header: "FINDINGS", Align: AlignRight},
		Column{Header: "SUMMARY"},
	)
	for _, sr := range rep.Scanners {
		status := "fail"
		if sr.Passed {
			status = "pass"
		}
		table.AddRow(sr.Scanner, status, strconv.Itoa(len(sr.Findings)), sr.Summary)
	}
	if err := table.Render(w); err != nil {
		return err
	}
	fmt.Fprintln(w)

	for _, sr := range rep.Scanners {
		for _, f := range sr.Findings {
			loc := ""
			if f.File != "" {
				loc = f.File
				if f.Line > 0 {
					loc = fmt.Sprintf("%s:%d", loc, f.Line)
				}
				loc += ": "
			}
			fmt.Fprintf(w, "  [%s] %s %s%s\n", ColorSeverity(string(f.Severity)), sr.Scanner, loc, f.Message)
			if f.Evidence != "" {
				fmt.Fprintf(w, "      %s\n", f.Evidence)
			}
		}
	}

	if rep.Health != nil && rep.Health.Found {
		fmt.Fprintf(w, "\n%s %s/%s — %d stars, archived=%v, publisher match=%v\n",
			SectionTitle("repository:"), rep.Health.Owner, rep.Health.Repo, rep.Health.Stars, rep.Health.Archived, rep.Health.PublisherMatchesOwner)
	}

	if rep.Diff != nil && rep.Diff.Performed {
		fmt.Fprintf(w, "%s %d unexpected, %d build-expected, %d modified\n",
			SectionTitle("source diff:"), len(rep.Diff.UnexpectedFiles), len(rep.Diff.ExpectedBuildFiles), len(rep.Diff.ModifiedFiles))
	}

	fmt.Fprintf(w, "\n%s %d/100  %s  %s\n", SectionTitle("score:"), rep.Score, ColorGrade(rep.Grade), ColorVerdict(rep.Verdict))
	return nil
}
