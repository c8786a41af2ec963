// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

// Package report assembles a finding.Report into the machine-readable JSON
// schema of spec section 6 and the human-readable terminal rendering.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/npmaudit/npmaudit/internal/finding"
)

// reportJSON is the wire shape of spec section 6's "Report schema": the
// top-level duration is an integer count of milliseconds, not a Go
// time.Duration string.
type reportJSON struct {
	Package  finding.PackageMetadata   `json:"package"`
	Scanners []scannerResultJSON       `json:"scanners"`
	GitHub   *finding.RepositoryHealth `json:"github"`
	Diff     *finding.DiffResult       `json:"diff"`
	Score    int                       `json:"score"`
	Grade    string                    `json:"grade"`
	Verdict  string                    `json:"verdict"`
	Duration int64                     `json:"duration"`
}

type scannerResultJSON struct {
	Scanner  string           `json:"scanner"`
	Passed   bool             `json:"passed"`
	Findings []finding.Finding `json:"findings"`
	Summary  string           `json:"summary"`
	Duration int64            `json:"duration"`
}

// WriteJSON marshals rep as indented JSON matching spec section 6 exactly.
func WriteJSON(w io.Writer, rep *finding.Report) error {
	out := toJSON(rep)
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func toJSON(rep *finding.Report) reportJSON {
	scanners := make([]scannerResultJSON, len(rep.Scanners))
	for i, sr := range rep.Scanners {
		findings := sr.Findings
		if findings == nil {
			findings = []finding.Finding{}
		}
		scanners[i] = scannerResultJSON{
			Scanner:  sr.Scanner,
			Passed:   sr.Passed,
			Findings: findings,
			Summary:  sr.Summary,
			Duration: sr.Duration.Milliseconds(),
		}
	}

	return reportJSON{
		Package:  rep.Package,
		Scanners: scanners,
		GitHub:   rep.Health,
		Diff:     rep.Diff,
		Score:    rep.Score,
		Grade:    rep.Grade,
		Verdict:  rep.Verdict,
		Duration: rep.Duration.Milliseconds(),
	}
}
