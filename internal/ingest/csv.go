package ingest

import (
	"io"

	"github.com/pocketledger/pocketledger/internal/ledger"
)

// FormatCSV is a ledger CSV export.
const FormatCSV = "csv"

// CSVParser reads a ledger export back in. Every row is fully trusted.
type CSVParser struct{}

func (p *CSVParser) Format() string { return FormatCSV }

func (p *CSVParser) Parse(r io.Reader) (Document, error) {
	rows, err := ledger.ReadCSV(r)
	if err != nil {
		return Document{}, err
	}

	var doc Document
	for _, row := range rows {
		t := row.Transaction
		doc.Candidates = append(doc.Candidates, Candidate{
			Title:       t.Title,
			Amount:      t.Amount,
			Kind:        t.Kind,
			Category:    row.Category,
			Date:        t.OccurredAt,
			Description: t.Description,
			Importance:  t.Importance,
			Confidence:  1,
		})
	}
	return doc, nil
}
