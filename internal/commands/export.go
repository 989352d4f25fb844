package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pocketledger/pocketledger/internal/ledger"
)

func newExportCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write every transaction as CSV (default: stdout)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			views, err := a.ListTransactions(cmd.Context())
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if len(args) == 1 {
				f, err := os.Create(args[0])
				if err != nil {
					return fmt.Errorf("creating %s: %w", args[0], err)
				}
				defer f.Close()
				w = f
			}
			return ledger.WriteCSV(w, views)
		},
	}
}
