package commands

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/pocketledger/pocketledger/internal/model"
)

func newBalanceCommand(g *globalFlags) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the overall balance and recent totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			bal, err := a.TotalBalance(ctx)
			if err != nil {
				return err
			}
			totals, err := a.TotalsForPeriod(ctx, days)
			if err != nil {
				return err
			}

			cur := cfg.Profile.Currency
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", titleStyle.Render("Balance:"), money(bal, cur))
			fmt.Fprintf(out, "Last %d days: %s  %s  net %s\n", days,
				incomeStyle.Render("+"+money(totals.Income, cur)),
				expenseStyle.Render("-"+money(totals.Expense, cur)),
				money(totals.Net(), cur))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "period length in days")
	return cmd
}

func newStatsCommand(g *globalFlags) *cobra.Command {
	var days int
	var kind string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Break a period down by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := model.ParseKind(kind)
			if err != nil {
				return err
			}

			a, cfg, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.CategoryStats(cmd.Context(), days, k)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(stats) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("Nothing recorded in this period."))
				return nil
			}

			t := newTable("Category", "Amount", "Count")
			for _, st := range stats {
				t.Row(
					categoryLabel(model.Category{Name: st.Name, Icon: st.Icon, Color: st.Color}),
					money(st.Amount, cfg.Profile.Currency),
					strconv.Itoa(st.Count),
				)
			}
			printTable(out, t)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "period length in days")
	cmd.Flags().StringVar(&kind, "kind", "expense", "income or expense")
	return cmd
}

func newBarsCommand(g *globalFlags) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "bars",
		Short: "Income and expense per day, week or month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			points, err := a.BarSeries(cmd.Context(), days)
			if err != nil {
				return err
			}

			peak := decimal.Zero
			for _, p := range points {
				peak = decimal.Max(peak, p.Income, p.Expense)
			}

			out := cmd.OutOrStdout()
			for _, p := range points {
				fmt.Fprintf(out, "%-10s %s %s\n", p.Label, bar(p.Income, peak, incomeStyle), money(p.Income, cfg.Profile.Currency))
				fmt.Fprintf(out, "%-10s %s %s\n", "", bar(p.Expense, peak, expenseStyle), money(p.Expense, cfg.Profile.Currency))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "period length in days")
	return cmd
}

func newChartCommand(g *globalFlags) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Daily income and expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			points, err := a.ChartSeries(cmd.Context(), days)
			if err != nil {
				return err
			}

			t := newTable("Date", "Income", "Expense")
			for _, p := range points {
				t.Row(
					p.Date.Format("2006-01-02"),
					money(p.Income, cfg.Profile.Currency),
					money(p.Expense, cfg.Profile.Currency),
				)
			}
			printTable(cmd.OutOrStdout(), t)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 14, "period length in days")
	return cmd
}

func newSummaryCommand(g *globalFlags) *cobra.Command {
	var days int
	var cut string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Spending report with an optional savings plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cutPercent := decimal.Zero
			if cut != "" {
				var err error
				if cutPercent, err = decimal.NewFromString(cut); err != nil {
					return fmt.Errorf("invalid cut %q", cut)
				}
			}

			a, cfg, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.Summary(cmd.Context(), days, cutPercent)
			if err != nil {
				return err
			}

			cur := cfg.Profile.Currency
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", titleStyle.Render(fmt.Sprintf("Spending over %d days (%s to %s)",
				s.Days, s.Start.Format("2006-01-02"), s.End.AddDate(0, 0, -1).Format("2006-01-02"))))
			fmt.Fprintf(out, "Expenses: %s\n", money(s.Expense, cur))
			if s.Income.IsPositive() {
				fmt.Fprintf(out, "Income: %s\n", money(s.Income, cur))
			}
			fmt.Fprintf(out, "Average per day: %s\n", money(s.AvgExpensePerDay, cur))
			if s.HasComparison {
				trend := "up"
				if s.Delta.IsNegative() {
					trend = "down"
				}
				fmt.Fprintf(out, "Versus previous %d days: %s %s (%s%%)\n", s.Days, trend, money(s.Delta.Abs(), cur), s.DeltaPercent.Abs().StringFixed(1))
			}
			if s.Expense.IsPositive() {
				fmt.Fprintf(out, "Low-importance share: %s%%\n", s.LowImportanceShare.StringFixed(1))
			}

			if len(s.TopCategories) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, titleStyle.Render("Top categories"))
				for _, c := range s.TopCategories {
					fmt.Fprintf(out, "  %s: %s (%s%%)\n",
						categoryLabel(model.Category{Name: c.Name, Icon: c.Icon, Color: c.Color}),
						money(c.Amount, cur), c.Share.StringFixed(1))
				}
			}

			if len(s.Biggest) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, titleStyle.Render("Biggest expenses"))
				for _, v := range s.Biggest {
					fmt.Fprintf(out, "  %s %s: %s %s\n", v.OccurredAt.Local().Format("01-02"), categoryLabel(v.Category), v.Title, money(v.Amount, cur))
				}
			}

			if p := s.Plan; p != nil {
				fmt.Fprintln(out)
				fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Savings plan (cut %s%%)", p.CutPercent.String())))
				fmt.Fprintf(out, "  Target: %s\n", money(p.Target, cur))
				fmt.Fprintf(out, "  Savings: %s\n", money(p.Savings, cur))
				for _, c := range p.Cuts {
					fmt.Fprintf(out, "  %s: %s -> %s (save %s)\n", c.Name, money(c.Before, cur), money(c.After, cur), money(c.Saved, cur))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "period length in days")
	cmd.Flags().StringVar(&cut, "cut", "", "percent to cut spending by, between 0 and 100")
	return cmd
}
