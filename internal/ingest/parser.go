// Package ingest turns structured input (the assistant's extraction JSON,
// a ledger CSV export or a bank statement) into ledger transactions.
package ingest

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocketledger/pocketledger/internal/model"
)

// Candidate is a transaction proposed by an extraction, not yet validated.
type Candidate struct {
	Title       string
	Amount      decimal.Decimal
	Kind        model.Kind
	Category    string
	Date        time.Time // zero means "now"
	Description string
	Importance  model.Importance
	Confidence  float64 // in [0,1]
}

// Document is the parsed content of one extraction.
type Document struct {
	Source     string
	Candidates []Candidate
	Warnings   []string
}

// Parser converts one input format into a Document.
type Parser interface {
	Parse(r io.Reader) (Document, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ExtractionParser{})
	r.Register(&CSVParser{})
	r.Register(&ChaseParser{})
	return r
}

// FormatFor picks the parser format for a file from its extension and, for
// CSV files, its header. It returns "" for files no parser reads.
func FormatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatExtraction
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return FormatCSV
		}
		defer f.Close()
		return sniffCSVFormat(f)
	}
	return ""
}
