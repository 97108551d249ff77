// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/latentspace/match-engine/internal/ranking"
	"github.com/latentspace/match-engine/internal/scoring"
	"github.com/latentspace/match-engine/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintScoreResult outputs a human-readable breakdown of one scored pair.
func (p *Printer) PrintScoreResult(result *scoring.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Candidate: %s\n", result.CandidateID))
	sb.WriteString(fmt.Sprintf("Total:     %.3f", result.Total))
	if result.Disqualified {
		sb.WriteString("  (disqualified)")
	}
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Hard:      %.3f\n", result.Breakdown.Hard))
	sb.WriteString(fmt.Sprintf("Semantic:  %.3f\n", result.Breakdown.Semantic))
	sb.WriteString(fmt.Sprintf("Behavior:  %.3f\n", result.Breakdown.Behavior))

	if len(result.Reasons) > 0 {
		sb.WriteString("\nReasons:\n")
		count := min(len(result.Reasons), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", result.Reasons[i]))
		}
		if len(result.Reasons) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Reasons)-maxItemsToShow))
		}
	}

	if len(result.RiskHints) > 0 {
		sb.WriteString("\nRisk hints:\n")
		for _, hint := range result.RiskHints {
			sb.WriteString(fmt.Sprintf("  ! %s\n", hint))
		}
	}

	p.printBox("SCORE RESULT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRankedMatches outputs the top ranked candidates with their scores.
func (p *Printer) PrintRankedMatches(matches []ranking.RankedCandidate) {
	if len(matches) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total qualified matches: %d\n\n", len(matches)))

	count := min(len(matches), maxItemsToShow)
	for i := 0; i < count; i++ {
		m := matches[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, m.Candidate.UserID))
		sb.WriteString(fmt.Sprintf("    Score: %.3f  Role: %s\n", m.Score.Total, m.Candidate.RoleIntent))
		if len(m.Score.Reasons) > 0 {
			reason := m.Score.Reasons[0]
			if len(reason) > 40 {
				reason = reason[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("    %s\n", reason))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(matches) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more\n", len(matches)-maxItemsToShow))
	}

	p.printBox("RANKED MATCHES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBatchStats outputs a summary of a batch scoring run.
func (p *Printer) PrintBatchStats(stats *ranking.BatchStats) {
	if stats == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Users scored:      %d\n", stats.UsersScored))
	sb.WriteString(fmt.Sprintf("Matches persisted: %d\n", stats.MatchesPersisted))
	sb.WriteString(fmt.Sprintf("Algorithm version: %s", stats.AlgorithmVersion))

	p.printBox("BATCH RUN", sb.String())
}

// PrintConstraints outputs the per-predicate constraint verdicts for a pair.
func (p *Printer) PrintConstraints(result *scoring.Result) {
	if result == nil || len(result.Constraints.Checks) == 0 {
		return
	}

	var sb strings.Builder
	for _, check := range result.Constraints.Checks {
		mark := "✓"
		if !check.Passed {
			mark = "✗"
		}
		sb.WriteString(fmt.Sprintf("%s %s (%s)\n", mark, check.Name, check.Kind))
		if check.Detail != "" && !check.Passed {
			sb.WriteString(fmt.Sprintf("    %s\n", check.Detail))
		}
	}
	sb.WriteString(fmt.Sprintf("\nMust-have satisfaction: %.2f", result.Constraints.MustHaveSatisfaction))
	if result.Constraints.DealBreakerViolated {
		sb.WriteString("\nDeal-breaker violated")
	}

	p.printBox("CONSTRAINTS", sb.String())
}

// PrintProfileSummary outputs a short profile card.
func (p *Printer) PrintProfileSummary(profile *types.UserProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("User:      %s\n", profile.UserID))
	sb.WriteString(fmt.Sprintf("Role:      %s (%s)\n", profile.RoleIntent, profile.Seniority))
	sb.WriteString(fmt.Sprintf("Timezone:  %s\n", profile.Timezone))
	sb.WriteString(fmt.Sprintf("Hours:     %d/week\n", profile.WeeklyHours))
	if len(profile.Skills) > 0 {
		skills := strings.Join(profile.Skills, ", ")
		if len(skills) > 40 {
			skills = skills[:37] + "..."
		}
		sb.WriteString(fmt.Sprintf("Skills:    %s\n", skills))
	}

	p.printBox("PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}
