package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stepwise-org/stepwise/engine"
	"github.com/stepwise-org/stepwise/intent"
	"github.com/stepwise-org/stepwise/tutor"
)

// ============================================================================
// TERMINAL RENDERING — lipgloss-styled derivations
// ============================================================================

var (
	colorAccent  = lipgloss.Color("#7D56F4")
	colorAnswer  = lipgloss.Color("#2CD7C7")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#6C7086")

	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleAnswer = lipgloss.NewStyle().Bold(true).Foreground(colorAnswer)
	styleRule   = lipgloss.NewStyle().Foreground(colorAccent)
	styleWarn   = lipgloss.NewStyle().Foreground(colorWarning)
	styleError  = lipgloss.NewStyle().Foreground(colorError)
	styleMuted  = lipgloss.NewStyle().Foreground(colorMuted)

	styleStepBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)
)

// renderResponse formats one answered request for the terminal.
func renderResponse(resp *tutor.Response, showSteps bool) string {
	var b strings.Builder
	res := resp.Result

	header := fmt.Sprintf("%s %s", resp.Request.Op, res.Input)
	b.WriteString(styleTitle.Render(header))
	b.WriteString("\n\n")

	b.WriteString(styleAnswer.Render(answerLine(resp.Request, res)))
	b.WriteString("\n")
	if res.Exact {
		b.WriteString(styleMuted.Render("exact"))
		b.WriteString("\n")
	}

	for _, w := range res.Warnings {
		b.WriteString(styleWarn.Render("note: " + w))
		b.WriteString("\n")
	}

	if showSteps && len(res.Steps) > 0 {
		b.WriteString("\n")
		b.WriteString(renderSteps(res.Steps))
		b.WriteString("\n")
	}

	b.WriteString(styleMuted.Render("concept: " + resp.Event.Concept))
	b.WriteString("\n")
	return b.String()
}

func answerLine(req *intent.Request, res *engine.Result) string {
	variable := req.Variable
	if variable == "" {
		variable = "x"
	}

	switch req.Op {
	case intent.OpSolve:
		if len(res.Roots) == 0 {
			return "no roots"
		}
		parts := make([]string, len(res.Roots))
		for i, r := range res.Roots {
			parts[i] = fmt.Sprintf("%s = %s", variable, r.Text)
			if r.Multiplicity > 1 {
				parts[i] += fmt.Sprintf(" (multiplicity %d)", r.Multiplicity)
			}
		}
		return strings.Join(parts, ", ")
	case intent.OpFactor:
		return strings.Join(res.FactorTexts, " ")
	case intent.OpGraph:
		return chartSummary(res.Chart)
	case intent.OpProve:
		if res.Identity != nil && res.Identity.Holds {
			return "identity holds"
		}
		if res.Identity != nil {
			return "identity fails, residual " + res.Identity.Residual
		}
		return "identity not evaluated"
	default:
		return res.Text
	}
}

func chartSummary(chart *engine.ChartConfig) string {
	if chart == nil || len(chart.Series) == 0 {
		return "no chart"
	}
	curve := chart.Series[0]
	lo := curve.Data[0].X
	hi := curve.Data[len(curve.Data)-1].X
	extras := make([]string, 0, len(chart.Series)-1)
	for _, s := range chart.Series[1:] {
		extras = append(extras, fmt.Sprintf("%s (%d)", s.Name, len(s.Data)))
	}
	out := fmt.Sprintf("%s sampled %d points over [%g, %g]", curve.Name, len(curve.Data), lo, hi)
	if len(extras) > 0 {
		out += ", marking " + strings.Join(extras, ", ")
	}
	return out
}

func renderSteps(steps []engine.Step) string {
	ruleWidth := 0
	for _, s := range steps {
		if len(s.Rule) > ruleWidth {
			ruleWidth = len(s.Rule)
		}
	}

	lines := make([]string, len(steps))
	for i, s := range steps {
		lines[i] = fmt.Sprintf("%s %s  %s",
			styleMuted.Render(fmt.Sprintf("%2d.", s.Index+1)),
			styleRule.Render(fmt.Sprintf("%-*s", ruleWidth, s.Rule)),
			fmt.Sprintf("%s  %s  %s", s.Before, styleMuted.Render("=>"), s.After))
	}
	return styleStepBox.Render(strings.Join(lines, "\n"))
}
