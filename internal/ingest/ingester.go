package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pocketledger/pocketledger/internal/model"
)

// Sink is where accepted candidates go.
type Sink interface {
	GetOrCreateCategory(ctx context.Context, name string, kind model.Kind) (model.Category, error)
	AddOrUpdateTransaction(ctx context.Context, t *model.Transaction) (int64, error)
}

// Result summarizes one ingest run.
type Result struct {
	BatchID  string
	Added    []int64
	Skipped  int
	Rejected int
	Entries  []AuditEntry
}

// Ingester validates candidates and writes the accepted ones to a Sink.
type Ingester struct {
	sink          Sink
	minConfidence float64
	auditPath     string // empty disables the audit log
	now           func() time.Time
	log           zerolog.Logger
}

// NewIngester creates an Ingester. Candidates below minConfidence are skipped.
func NewIngester(sink Sink, minConfidence float64, auditPath string, log zerolog.Logger) *Ingester {
	return &Ingester{sink: sink, minConfidence: minConfidence, auditPath: auditPath, now: time.Now, log: log}
}

// Ingest persists the acceptable candidates of doc. Validation problems are
// recorded per candidate and do not stop the run; a store failure does. The
// decisions made so far are written to the audit log either way.
func (in *Ingester) Ingest(ctx context.Context, doc Document) (Result, error) {
	res := Result{BatchID: uuid.NewString()}
	log := in.log.With().Str("batch", res.BatchID).Str("source", doc.Source).Logger()

	record := func(action, details string, id int64) {
		res.Entries = append(res.Entries, AuditEntry{
			Timestamp:     in.now().UTC(),
			BatchID:       res.BatchID,
			Source:        doc.Source,
			Action:        action,
			Details:       details,
			TransactionID: id,
		})
	}

	for _, w := range doc.Warnings {
		record(ActionWarning, w, 0)
	}

	var runErr error
	for i, c := range doc.Candidates {
		label := fmt.Sprintf("#%d %q %s", i+1, c.Title, c.Amount.String())

		if c.Confidence < in.minConfidence {
			res.Skipped++
			record(ActionSkipped, fmt.Sprintf("%s: confidence %.2f below %.2f", label, c.Confidence, in.minConfidence), 0)
			continue
		}
		if reason := precheck(c); reason != "" {
			res.Rejected++
			record(ActionRejected, label+": "+reason, 0)
			continue
		}

		cat, err := in.sink.GetOrCreateCategory(ctx, c.Category, c.Kind)
		if err != nil {
			runErr = fmt.Errorf("resolving category %q: %w", c.Category, err)
			break
		}

		title := c.Title
		if title == "" {
			title = cat.Name
		}
		tx := model.Transaction{
			Title:       title,
			Amount:      c.Amount,
			Kind:        c.Kind,
			CategoryID:  cat.ID,
			Importance:  c.Importance,
			OccurredAt:  c.Date,
			Description: c.Description,
		}
		id, err := in.sink.AddOrUpdateTransaction(ctx, &tx)
		if isValidation(err) {
			res.Rejected++
			record(ActionRejected, label+": "+err.Error(), 0)
			continue
		}
		if err != nil {
			runErr = fmt.Errorf("saving %s: %w", label, err)
			break
		}

		res.Added = append(res.Added, id)
		record(ActionAdded, fmt.Sprintf("%s -> %s", label, cat.Name), id)
	}

	if in.auditPath != "" {
		if err := AppendAudit(in.auditPath, res.Entries); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}

	log.Info().
		Int("added", len(res.Added)).
		Int("skipped", res.Skipped).
		Int("rejected", res.Rejected).
		Int("warnings", len(doc.Warnings)).
		Msg("ingest finished")
	return res, runErr
}

func precheck(c Candidate) string {
	switch {
	case !c.Amount.IsPositive():
		return "amount must be positive"
	case !c.Kind.Valid():
		return fmt.Sprintf("unknown kind %q", c.Kind)
	case strings.TrimSpace(c.Title) == "" && strings.TrimSpace(c.Category) == "":
		return "neither title nor category given"
	}
	return ""
}

func isValidation(err error) bool {
	for _, target := range []error{
		model.ErrInvalidAmount,
		model.ErrEmptyTitle,
		model.ErrMissingCategory,
		model.ErrInvalidKind,
		model.ErrInvalidImportance,
		model.ErrCategoryKindMismatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
