package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/pocketledger/pocketledger/internal/model"
)

func newTxCommand(g *globalFlags) *cobra.Command {
	txCmd := &cobra.Command{
		Use:   "tx",
		Short: "Record and inspect transactions",
	}
	txCmd.AddCommand(
		newTxAddCommand(g),
		newTxEditCommand(g),
		newTxDeleteCommand(g),
		newTxListCommand(g),
	)
	return txCmd
}

type txFlags struct {
	title       string
	amount      string
	kind        string
	category    string
	importance  string
	date        string
	description string
}

func (f *txFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "short description")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount, always positive")
	cmd.Flags().StringVar(&f.kind, "kind", "expense", "income or expense")
	cmd.Flags().StringVar(&f.category, "category", "", "category name; unknown names fall back or are created")
	cmd.Flags().StringVar(&f.importance, "importance", "medium", "low, medium, high or critical")
	cmd.Flags().StringVar(&f.date, "date", "", "YYYY-MM-DD or RFC 3339 (default now)")
	cmd.Flags().StringVar(&f.description, "description", "", "free-form note")
}

func parseWhen(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD or RFC 3339", s)
	}
	return t.Add(12 * time.Hour), nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid transaction id %q", s)
	}
	return id, nil
}

func newTxAddCommand(g *globalFlags) *cobra.Command {
	f := &txFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(f.amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q", f.amount)
			}
			kind, err := model.ParseKind(f.kind)
			if err != nil {
				return err
			}
			importance, err := model.ParseImportance(f.importance)
			if err != nil {
				return err
			}
			var when time.Time
			if f.date != "" {
				if when, err = parseWhen(f.date); err != nil {
					return err
				}
			}

			a, cfg, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			cat, err := a.GetOrCreateCategory(ctx, f.category, kind)
			if err != nil {
				return err
			}

			t := model.Transaction{
				Title:       f.title,
				Amount:      amount,
				Kind:        kind,
				CategoryID:  cat.ID,
				Importance:  importance,
				OccurredAt:  when,
				Description: f.description,
			}
			id, err := a.AddOrUpdateTransaction(ctx, &t)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Added #%d %s %s %s\n", id, t.Title, signedMoney(t, cfg.Profile.Currency), categoryLabel(cat))
			drainAchievements(out, a.NextPendingAchievement)
			return nil
		},
	}

	f.register(cmd)
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newTxEditCommand(g *globalFlags) *cobra.Command {
	f := &txFlags{}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, cfg, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			view, err := a.GetTransaction(ctx, id)
			if err != nil {
				return err
			}
			t := view.Transaction
			cat := view.Category

			flags := cmd.Flags()
			if flags.Changed("title") {
				t.Title = f.title
			}
			if flags.Changed("amount") {
				if t.Amount, err = decimal.NewFromString(f.amount); err != nil {
					return fmt.Errorf("invalid amount %q", f.amount)
				}
			}
			if flags.Changed("kind") {
				if t.Kind, err = model.ParseKind(f.kind); err != nil {
					return err
				}
			}
			if flags.Changed("importance") {
				if t.Importance, err = model.ParseImportance(f.importance); err != nil {
					return err
				}
			}
			if flags.Changed("date") {
				if t.OccurredAt, err = parseWhen(f.date); err != nil {
					return err
				}
			}
			if flags.Changed("description") {
				t.Description = f.description
			}
			if flags.Changed("category") || flags.Changed("kind") {
				name := f.category
				if !flags.Changed("category") {
					name = cat.Name
				}
				if cat, err = a.GetOrCreateCategory(ctx, name, t.Kind); err != nil {
					return err
				}
				t.CategoryID = cat.ID
			}

			if _, err := a.AddOrUpdateTransaction(ctx, &t); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Updated #%d %s %s %s\n", t.ID, t.Title, signedMoney(t, cfg.Profile.Currency), categoryLabel(cat))
			drainAchievements(out, a.NextPendingAchievement)
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func newTxDeleteCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, _, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.DeleteTransaction(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d\n", id)
			return nil
		},
	}
}

func newTxListCommand(g *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			var views []model.TransactionView
			if limit > 0 {
				views, err = a.ListRecent(cmd.Context(), limit)
			} else {
				views, err = a.ListTransactions(cmd.Context())
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No transactions yet."))
				return nil
			}

			t := newTable("ID", "Date", "Title", "Amount", "Category", "Importance")
			for _, v := range views {
				t.Row(
					strconv.FormatInt(v.ID, 10),
					v.OccurredAt.Local().Format("2006-01-02"),
					v.Title,
					signedMoney(v.Transaction, cfg.Profile.Currency),
					categoryLabel(v.Category),
					string(v.Importance),
				)
			}
			printTable(out, t)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "show at most this many (0 for all)")
	return cmd
}
