package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newProfileCommand(g *globalFlags) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change the user profile",
	}
	profileCmd.AddCommand(newProfileShowCommand(g), newProfileSetCommand(g), newProfileFriendlinessCommand(g))
	return profileCmd
}

func newProfileShowCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.GetProfile(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", titleStyle.Render("["+p.AvatarInitial+"]"), p.Name)
			fmt.Fprintf(out, "Currency: %s\n", p.Currency)
			fmt.Fprintf(out, "Member since: %s\n", p.CreatedAt.Local().Format("2006-01-02"))
			fmt.Fprintf(out, "Friendliness: %.2f over %d messages\n", p.Friendliness, p.MessagesAnalyzed)
			return nil
		},
	}
}

func newProfileSetCommand(g *globalFlags) *cobra.Command {
	var name, currency string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the profile name or currency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			p, err := a.GetProfile(ctx)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				p.Name = name
			}
			if cmd.Flags().Changed("currency") {
				p.Currency = currency
			}
			if err := a.SaveProfile(ctx, &p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %s (%s)\n", p.Name, p.Currency)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&currency, "currency", "", "ISO 4217 currency code")
	return cmd
}

func newProfileFriendlinessCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "friendliness <score>",
		Short: "Record the friendliness score of one analyzed message (0 to 1)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid score %q", args[0])
			}

			a, _, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.RecordFriendliness(cmd.Context(), score)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Friendliness now %.2f over %d messages\n", p.Friendliness, p.MessagesAnalyzed)
			return nil
		},
	}
}
