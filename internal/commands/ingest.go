package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pocketledger/pocketledger/internal/ingest"
	"github.com/pocketledger/pocketledger/internal/logger"
)

func newIngestCommand(g *globalFlags) *cobra.Command {
	var keep bool

	cmd := &cobra.Command{
		Use:   "ingest [file...]",
		Short: "Import extraction JSON, ledger CSV or bank CSV files (default: the inbox)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			fromInbox := len(args) == 0
			var files []ingest.FileInfo
			if fromInbox {
				if files, err = ingest.Scan(cfg.Ingest.Inbox); err != nil {
					return err
				}
			} else {
				for _, p := range args {
					info, err := os.Stat(p)
					if err != nil {
						return fmt.Errorf("stat %s: %w", p, err)
					}
					format := ingest.FormatFor(p)
					if format == "" {
						return fmt.Errorf("%s: unsupported file type", p)
					}
					files = append(files, ingest.FileInfo{Name: filepath.Base(p), Path: p, Size: info.Size(), Format: format})
				}
			}

			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("Nothing to ingest."))
				return nil
			}

			docs, err := ingest.ParseFiles(cmd.Context(), ingest.DefaultRegistry(), files)
			if err != nil {
				return err
			}

			log := logger.Component(logger.FromContext(cmd.Context()), "ingest")
			in := ingest.NewIngester(a, cfg.Ingest.MinConfidence, cfg.Ingest.AuditLog, log)
			for i, doc := range docs {
				res, err := in.Ingest(cmd.Context(), doc)
				if err != nil {
					return fmt.Errorf("%s: %w", doc.Source, err)
				}
				fmt.Fprintf(out, "%s: %d added, %d skipped, %d rejected (batch %s)\n",
					doc.Source, len(res.Added), res.Skipped, res.Rejected, res.BatchID)
				for _, w := range doc.Warnings {
					fmt.Fprintf(out, "  %s %s\n", mutedStyle.Render("warning:"), w)
				}

				if fromInbox && !keep {
					if err := ingest.MarkProcessed(cfg.Ingest.Inbox, files[i].Name); err != nil {
						return err
					}
				}
			}

			drainAchievements(out, a.NextPendingAchievement)
			return nil
		},
	}

	cmd.Flags().BoolVar(&keep, "keep", false, "leave inbox files in place")
	return cmd
}
