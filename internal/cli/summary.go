package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/starscape/pkg/catalog"
	"github.com/matzehuels/starscape/pkg/pipeline"
	"github.com/matzehuels/starscape/pkg/stellar"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	tableNumberStyle = tableCellStyle.Foreground(colorCyan).Align(lipgloss.Right)
)

// phaseOrder lists phases in evolutionary order for display.
var phaseOrder = []stellar.Phase{
	stellar.PreMainSequence,
	stellar.MainSequence,
	stellar.WhiteDwarf,
	stellar.NeutronStar,
}

// renderSummary formats a run as a header line and two tables: stars per
// class and phase, and population statistics.
func renderSummary(res *pipeline.Result, sum catalog.Summary) string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Run " + res.RunID))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("seed %d · %d clusters · %d stars · %s",
		res.Options.Seed, res.ClusterCount, sum.Stars, res.Stats.Total().Round(time.Millisecond))))
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(stellar.Classes)+len(phaseOrder))
	for _, c := range stellar.Classes {
		rows = append(rows, []string{"class " + string(c), fmt.Sprint(sum.ByClass[c]), share(sum.ByClass[c], sum.Stars)})
	}
	for _, p := range phaseOrder {
		n := sum.ByPhase[p.String()]
		rows = append(rows, []string{p.String(), fmt.Sprint(n), share(n, sum.Stars)})
	}
	rows = append(rows, []string{"in clusters", fmt.Sprint(sum.Clustered), share(sum.Clustered, sum.Stars)})
	b.WriteString(newTable([]string{"Group", "Stars", "Share"}, rows).Render())
	b.WriteString("\n")

	stats := [][]string{
		statRow("mass (M☉)", sum.Mass, "%.3g"),
		statRow("age (Myr)", scaleStat(sum.Age, 1e-6), "%.4g"),
		statRow("log L (L☉)", sum.LogLum, "%.3f"),
	}
	b.WriteString(newTable([]string{"Quantity", "Min", "Median", "Mean", "Max", "Std dev"}, stats).Render())
	return b.String()
}

func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case col == 0:
				return tableCellStyle
			default:
				return tableNumberStyle
			}
		})
}

func share(n, total int) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(n)/float64(total))
}

func statRow(name string, s catalog.Stat, format string) []string {
	f := func(v float64) string { return fmt.Sprintf(format, v) }
	return []string{name, f(s.Min), f(s.Median), f(s.Mean), f(s.Max), f(s.StdDev)}
}

func scaleStat(s catalog.Stat, k float64) catalog.Stat {
	return catalog.Stat{Min: s.Min * k, Max: s.Max * k, Mean: s.Mean * k, Median: s.Median * k, StdDev: s.StdDev * k}
}
