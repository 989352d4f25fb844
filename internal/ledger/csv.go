package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocketledger/pocketledger/internal/model"
)

// Header is the CSV header of a ledger export.
const Header = "id,occurred_at,title,amount,kind,category,importance,description"

const (
	numFields     = 8
	colID         = 0
	colOccurred   = 1
	colTitle      = 2
	colAmount     = 3
	colKind       = 4
	colCategory   = 5
	colImportance = 6
	colDesc       = 7
)

// Row is one parsed CSV line. The category is carried by name because ids
// are local to one installation.
type Row struct {
	Transaction model.Transaction
	Category    string
}

// WriteCSV writes transactions (including header).
func WriteCSV(w io.Writer, views []model.TransactionView) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, v := range views {
		if err := cw.Write(MarshalRow(v)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// ReadCSV reads rows from a ledger export.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var rows []Row
	for i, rec := range records[1:] {
		row, err := UnmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// MarshalRow converts a transaction view to a CSV row.
func MarshalRow(v model.TransactionView) []string {
	row := make([]string, numFields)
	row[colID] = strconv.FormatInt(v.ID, 10)
	row[colOccurred] = v.OccurredAt.Format(time.RFC3339)
	row[colTitle] = v.Title
	row[colAmount] = v.Amount.StringFixed(2)
	row[colKind] = string(v.Kind)
	row[colCategory] = v.Category.Name
	row[colImportance] = string(v.Importance)
	row[colDesc] = v.Description
	return row
}

// UnmarshalRow converts a CSV row to a Row. The id column is informational
// and not carried over: imported rows are always new transactions.
func UnmarshalRow(record []string) (Row, error) {
	if len(record) != numFields {
		return Row{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	occurred, err := time.Parse(time.RFC3339, record[colOccurred])
	if err != nil {
		return Row{}, fmt.Errorf("parsing occurred_at %q: %w", record[colOccurred], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return Row{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	kind, err := model.ParseKind(record[colKind])
	if err != nil {
		return Row{}, err
	}

	importance, err := model.ParseImportance(record[colImportance])
	if err != nil {
		return Row{}, err
	}

	return Row{
		Transaction: model.Transaction{
			Title:       record[colTitle],
			Amount:      amount,
			Kind:        kind,
			Importance:  importance,
			OccurredAt:  occurred,
			Description: record[colDesc],
		},
		Category: record[colCategory],
	}, nil
}
