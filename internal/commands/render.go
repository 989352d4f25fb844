package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/pocketledger/pocketledger/internal/model"
)

var (
	colorIncome  = lipgloss.Color("#a6e3a1")
	colorExpense = lipgloss.Color("#f38ba8")
	colorMuted   = lipgloss.Color("#7f849c")
	colorAccent  = lipgloss.Color("#89b4fa")

	titleStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	incomeStyle  = lipgloss.NewStyle().Foreground(colorIncome)
	expenseStyle = lipgloss.NewStyle().Foreground(colorExpense)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

const barWidth = 30

func money(d decimal.Decimal, currency string) string {
	return d.StringFixed(2) + " " + currency
}

func signedMoney(t model.Transaction, currency string) string {
	if t.Kind == model.KindExpense {
		return expenseStyle.Render("-" + money(t.Amount, currency))
	}
	return incomeStyle.Render("+" + money(t.Amount, currency))
}

func categoryLabel(c model.Category) string {
	name := c.Name
	if name == "" {
		name = "(missing)"
	}
	if c.Icon != "" {
		name = c.Icon + " " + name
	}
	if c.Color == "" {
		return name
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render(name)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func printTable(w io.Writer, t *table.Table) {
	fmt.Fprintln(w, t.Render())
}

// bar renders v as a run of blocks scaled against peak.
func bar(v, peak decimal.Decimal, style lipgloss.Style) string {
	if !peak.IsPositive() || !v.IsPositive() {
		return ""
	}
	n := int(v.Div(peak).Mul(decimal.NewFromInt(barWidth)).Ceil().IntPart())
	return style.Render(strings.Repeat("█", n))
}

func drainAchievements(w io.Writer, next func() (model.Achievement, bool)) {
	for {
		a, ok := next()
		if !ok {
			return
		}
		fmt.Fprintf(w, "%s %s %s\n", titleStyle.Render("Achievement unlocked:"), a.Emoji, a.Name)
	}
}
