package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Audit actions.
const (
	ActionAdded    = "added"
	ActionSkipped  = "skipped"
	ActionRejected = "rejected"
	ActionWarning  = "warning"
)

// AuditEntry is one row in the ingest audit log.
type AuditEntry struct {
	Timestamp     time.Time
	BatchID       string
	Source        string
	Action        string
	Details       string
	TransactionID int64 // zero unless Action is ActionAdded
}

// AuditHeader is the CSV header of the ingest audit log.
const AuditHeader = "timestamp,batch_id,source,action,details,transaction_id"

const (
	auditFields      = 6
	colTimestamp     = 0
	colBatchID       = 1
	colSource        = 2
	colAction        = 3
	colDetails       = 4
	colTransactionID = 5
)

// MarshalAuditEntry converts an AuditEntry to a CSV row.
func MarshalAuditEntry(e AuditEntry) []string {
	row := make([]string, auditFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colBatchID] = e.BatchID
	row[colSource] = e.Source
	row[colAction] = e.Action
	row[colDetails] = e.Details
	if e.TransactionID != 0 {
		row[colTransactionID] = strconv.FormatInt(e.TransactionID, 10)
	}
	return row
}

// UnmarshalAuditEntry converts a CSV row to an AuditEntry.
func UnmarshalAuditEntry(record []string) (AuditEntry, error) {
	if len(record) != auditFields {
		return AuditEntry{}, fmt.Errorf("expected %d fields, got %d", auditFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return AuditEntry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	var id int64
	if record[colTransactionID] != "" {
		id, err = strconv.ParseInt(record[colTransactionID], 10, 64)
		if err != nil {
			return AuditEntry{}, fmt.Errorf("parsing transaction id %q: %w", record[colTransactionID], err)
		}
	}

	return AuditEntry{
		Timestamp:     ts,
		BatchID:       record[colBatchID],
		Source:        record[colSource],
		Action:        record[colAction],
		Details:       record[colDetails],
		TransactionID: id,
	}, nil
}

// AppendAudit writes entries to the audit log at path, creating the file
// and header if needed.
func AppendAudit(path string, entries []AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating audit log dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(AuditHeader, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalAuditEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	return cw.Error()
}

// ReadAudit returns all entries of the audit log at path.
// Returns an empty slice if the file does not exist.
func ReadAudit(path string) ([]AuditEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	return readAuditEntries(f)
}

func readAuditEntries(r io.Reader) ([]AuditEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = auditFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []AuditEntry
	for i, rec := range records[1:] {
		e, err := UnmarshalAuditEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
