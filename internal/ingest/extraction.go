package ingest

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/pocketledger/pocketledger/internal/model"
)

// FormatExtraction is the assistant's transaction extraction response.
const FormatExtraction = "extraction"

// ExtractionParser reads the assistant's extraction JSON:
//
//	{"transactions": [{"type": "expense", "title": "...", "amount": 450,
//	  "category": "Food", "date": "2025-03-01", "confidence": 0.9}],
//	 "warnings": ["..."]}
//
// Entries that cannot be read become warnings instead of failing the document.
type ExtractionParser struct{}

func (p *ExtractionParser) Format() string { return FormatExtraction }

func (p *ExtractionParser) Parse(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("reading extraction: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return Document{}, errors.New("extraction is not valid JSON")
	}

	root := gjson.ParseBytes(data)
	var doc Document
	for _, w := range root.Get("warnings").Array() {
		if s := strings.TrimSpace(w.String()); s != "" {
			doc.Warnings = append(doc.Warnings, s)
		}
	}

	for i, item := range root.Get("transactions").Array() {
		c, err := parseExtracted(item)
		if err != nil {
			doc.Warnings = append(doc.Warnings, fmt.Sprintf("transaction %d: %v", i+1, err))
			continue
		}
		doc.Candidates = append(doc.Candidates, c)
	}
	return doc, nil
}

func parseExtracted(item gjson.Result) (Candidate, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(item.Get("amount").String()))
	if err != nil {
		return Candidate{}, fmt.Errorf("parsing amount %q: %w", item.Get("amount").Raw, err)
	}

	kind, err := model.ParseKind(item.Get("type").String())
	if err != nil {
		return Candidate{}, err
	}

	importance, err := model.ParseImportance(item.Get("importance").String())
	if err != nil {
		importance = model.ImportanceMedium
	}

	var date time.Time
	if raw := strings.TrimSpace(item.Get("date").String()); raw != "" {
		date, err = parseDate(raw)
		if err != nil {
			return Candidate{}, err
		}
	}

	confidence := 1.0
	if c := item.Get("confidence"); c.Exists() {
		confidence = c.Float()
	}

	return Candidate{
		Title:       strings.TrimSpace(item.Get("title").String()),
		Amount:      amount,
		Kind:        kind,
		Category:    strings.TrimSpace(item.Get("category").String()),
		Date:        date,
		Description: item.Get("description").String(),
		Importance:  importance,
		Confidence:  confidence,
	}, nil
}

// parseDate accepts a bare date or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if len(s) >= 10 {
		if t, err := time.ParseInLocation("2006-01-02", s[:10], time.Local); err == nil {
			return t.Add(12 * time.Hour), nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q", s)
}
