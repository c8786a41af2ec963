// Copyright 2026 The npmaudit Authors
// SPDX-License-Identifier: MIT

// Package scorer implements the weighted-aggregation scoring arithmetic of
// spec section 4.12: the diminishing-returns deduction law, the per-scanner
// category weights, the repository-health penalty, and the diff penalty.
package scorer

import (
	"math"
	"time"

	"github.com/npmaudit/npmaudit/internal/finding"
)

// categoryWeight carries one scanner's scoring table (spec 4.12).
type categoryWeight struct {
	max      int
	critical int
	warning  int
	info     int
}

// categoryWeights is keyed by scanner identity. Scanners not listed here
// (ioc) contribute no score component — informational by design.
var categoryWeights = map[string]categoryWeight{
	"static":        {max: 25, critical: 15, warning: 5, info: 0},
	"obfuscation":   {max: 15, critical: 10, warning: 10, info: 3},
	"hooks":         {max: 10, critical: 10, warning: 5, info: 0},
	"secrets":       {max: 5, critical: 5, warning: 5, info: 0},
	"binaries":      {max: 5, critical: 3, warning: 3, info: 1},
	"dependencies":  {max: 10, critical: 10, warning: 5, info: 0},
	"typosquatting": {max: 5, critical: 5, warning: 5, info: 0},
}

const (
	maxHealthScore = 15
	maxDiffScore   = 10
	maxTotalScore  = 100

	healthPenaltyArchived         = 10
	healthPenaltyZeroStars        = 5
	healthPenaltyRecentlyCreated  = 5
	healthPenaltyMismatchLowStars = 3
	healthPenaltyMismatchDefault  = 10
	healthMismatchStarThreshold   = 100

	diffDeductionCap  = 8.0
	diffDeductionBase = 3.0
)

// Result carries the scorer's full output: per-category points plus the
// final aggregated score, grade, and verdict.
type Result struct {
	CategoryScores map[string]int
	HealthScore    int
	DiffScore      int
	Total          int
	Grade          string
	Verdict        string
}

// Score aggregates scanner results plus the optional repository-health and
// diff components into a final 0-100 risk score (spec section 4.12).
func Score(results []finding.ScannerResult, health *finding.RepositoryHealth, diff *finding.DiffResult, provenance bool, now time.Time) Result {
	categoryScores := map[string]int{}
	total := 0

	for _, res := range results {
		weight, ok := categoryWeights[res.Scanner]
		if !ok {
			continue
		}
		score := categoryScore(weight, res.Findings)
		categoryScores[res.Scanner] = score
		total += score
	}

	healthScore := scoreHealth(health, provenance, now)
	diffScore := scoreDiff(diff)
	total += healthScore + diffScore
	total = clamp(total, 0, maxTotalScore)

	return Result{
		CategoryScores: categoryScores,
		HealthScore:    healthScore,
		DiffScore:      diffScore,
		Total:          total,
		Grade:          grade(total),
		Verdict:        verdict(grade(total)),
	}
}

func categoryScore(weight categoryWeight, findings []finding.Finding) int {
	var critical, warning, info int
	for _, f := range findings {
		switch f.Severity {
		case finding.SeverityCritical:
			critical++
		case finding.SeverityWarning:
			warning++
		case finding.SeverityInfo:
			info++
		}
	}

	deduction := diminishingDeduction(weight.critical, critical) +
		diminishingDeduction(weight.warning, warning) +
		diminishingDeduction(weight.info, info)

	return clamp(weight.max-int(math.Round(deduction)), 0, weight.max)
}

// diminishingDeduction implements the diminishing-returns law: for n
// findings at base deduction b, total = b * (1 + ln(n)) when n >= 1, else 0.
func diminishingDeduction(base, n int) float64 {
	if n <= 0 || base <= 0 {
		return 0
	}
	return float64(base) * (1 + math.Log(float64(n)))
}

func scoreHealth(health *finding.RepositoryHealth, provenance bool, now time.Time) int {
	if health == nil || !health.Found {
		return 0
	}

	score := maxHealthScore
	if health.Archived {
		score -= healthPenaltyArchived
	}
	if health.Stars == 0 {
		score -= healthPenaltyZeroStars
	}
	if !health.CreatedAt.IsZero() && now.Sub(health.CreatedAt) < 30*24*time.Hour {
		score -= healthPenaltyRecentlyCreated
	}
	if !health.PublisherMatchesOwner {
		switch {
		case provenance:
			// Trusted automated publisher explains the mismatch.
		case health.Stars >= healthMismatchStarThreshold:
			score -= healthPenaltyMismatchLowStars
		default:
			score -= healthPenaltyMismatchDefault
		}
	}
	return clamp(score, 0, maxHealthScore)
}

func scoreDiff(diff *finding.DiffResult) int {
	if diff == nil || !diff.Performed {
		return 0
	}
	u := len(diff.UnexpectedFiles)
	if u == 0 {
		return maxDiffScore
	}
	deduction := math.Min(diffDeductionCap, diffDeductionBase*(1+math.Log(math.Max(1, float64(u)))))
	return clamp(maxDiffScore-int(math.Round(deduction)), 0, maxDiffScore)
}

func grade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

func verdict(g string) string {
	switch g {
	case "A", "B":
		return "CLEAN"
	case "C":
		return "CAUTION"
	default:
		return "DANGER"
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
