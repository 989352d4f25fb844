package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocketledger/pocketledger/internal/model"
)

// FormatChase is a Chase checking account CSV export.
const FormatChase = "chase"

// chaseHeaderPrefix starts the first line of every Chase export.
const chaseHeaderPrefix = "Details,Posting Date,Description,Amount"

// ChaseParser parses Chase bank checking CSV exports. Debits become
// expenses and credits income; categories are left for the catalog to
// resolve.
type ChaseParser struct{}

const (
	chaseDateFormat = "01/02/2006"
	chaseNumFields  = 7
	chaseColDate    = 1
	chaseColDesc    = 2
	chaseColAmount  = 3
	chaseColType    = 4
)

// Format returns the parser name.
func (p *ChaseParser) Format() string { return FormatChase }

// Parse reads a Chase CSV. Zero-amount rows are reported as warnings.
func (p *ChaseParser) Parse(r io.Reader) (Document, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = chaseNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return Document{}, fmt.Errorf("reading chase CSV: %w", err)
	}

	if len(records) <= 1 {
		return Document{}, nil
	}

	var doc Document
	for i, rec := range records[1:] {
		c, err := parseChaseRow(rec)
		if err != nil {
			return Document{}, fmt.Errorf("row %d: %w", i+2, err)
		}
		if c.Amount.IsZero() {
			doc.Warnings = append(doc.Warnings, fmt.Sprintf("row %d: zero amount for %q", i+2, c.Title))
			continue
		}
		doc.Candidates = append(doc.Candidates, c)
	}
	return doc, nil
}

func parseChaseRow(rec []string) (Candidate, error) {
	date, err := time.ParseInLocation(chaseDateFormat, rec[chaseColDate], time.Local)
	if err != nil {
		return Candidate{}, fmt.Errorf("parsing date %q: %w", rec[chaseColDate], err)
	}

	amount, err := decimal.NewFromString(rec[chaseColAmount])
	if err != nil {
		return Candidate{}, fmt.Errorf("parsing amount %q: %w", rec[chaseColAmount], err)
	}

	kind := model.KindIncome
	if amount.IsNegative() {
		kind = model.KindExpense
	}

	return Candidate{
		Title:       strings.TrimSpace(rec[chaseColDesc]),
		Amount:      amount.Abs(),
		Kind:        kind,
		Date:        date.Add(12 * time.Hour),
		Description: rec[chaseColType],
		Importance:  model.ImportanceMedium,
		Confidence:  1,
	}, nil
}

// sniffCSVFormat tells a Chase export from a ledger export by its header.
func sniffCSVFormat(r io.Reader) string {
	buf := make([]byte, len(chaseHeaderPrefix))
	n, _ := io.ReadFull(r, buf)
	if string(buf[:n]) == chaseHeaderPrefix {
		return FormatChase
	}
	return FormatCSV
}
