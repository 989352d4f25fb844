package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAchievementsCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "List achievements and when they were earned",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			all, err := a.Achievements(cmd.Context())
			if err != nil {
				return err
			}

			t := newTable("", "Achievement", "Description", "Earned")
			for _, ach := range all {
				earned := mutedStyle.Render("locked")
				if ach.Earned && ach.EarnedAt != nil {
					earned = ach.EarnedAt.Local().Format("2006-01-02")
				}
				t.Row(ach.Emoji, ach.Name, ach.Description, earned)
			}
			printTable(cmd.OutOrStdout(), t)
			return nil
		},
	}
}

// newChatAckCommand is called by the chat front end after the user's
// message has been handled by the assistant.
func newChatAckCommand(g *globalFlags) *cobra.Command {
	var score float64

	cmd := &cobra.Command{
		Use:   "chat-ack",
		Short: "Record that a message was sent to the assistant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if _, err := a.CheckFirstAIMessage(ctx); err != nil {
				return err
			}
			if cmd.Flags().Changed("friendliness") {
				if _, err := a.RecordFriendliness(ctx, score); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Message recorded")
			drainAchievements(out, a.NextPendingAchievement)
			return nil
		},
	}

	cmd.Flags().Float64Var(&score, "friendliness", 0, "friendliness score of the message (0 to 1)")
	return cmd
}
