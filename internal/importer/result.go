package importer

import (
	"fmt"
)

// RowError is a failure confined to one input row.
type RowError struct {
	// Row is the 1-based data row number, the header not counted.
	Row    int
	Title  string
	Reason string
}

func (e *RowError) Error() string {
	if e.Title == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("row %d (%s): %s", e.Row, e.Title, e.Reason)
}

// Result is the aggregate outcome of an import. Counters only cover rows
// whose transaction committed.
type Result struct {
	Created           int
	Updated           int
	AuthorsCreated    int
	PublishersCreated int
	Enriched          int
	// Skipped counts rows that produced a RowError.
	Skipped int
	// Total is the number of data rows found by the pre-scan.
	Total int
	// Errors holds RowErrors and, when the cap was hit, one RowLimitError.
	Errors []error
}

// Imported is the number of rows written to the catalog.
func (r *Result) Imported() int {
	return r.Created + r.Updated
}

// FirstErrors returns at most n error messages in input order.
func (r *Result) FirstErrors(n int) []string {
	if n > len(r.Errors) {
		n = len(r.Errors)
	}
	msgs := make([]string, 0, n)
	for _, err := range r.Errors[:n] {
		msgs = append(msgs, err.Error())
	}
	return msgs
}

func (r *Result) rowFailed(row int, title, reason string) {
	r.Skipped++
	r.Errors = append(r.Errors, &RowError{Row: row, Title: title, Reason: reason})
}

// Summary is the serializable form of a Result, as returned by the HTTP
// endpoint and written by --report.
type Summary struct {
	Created           int      `json:"created" yaml:"created"`
	Updated           int      `json:"updated" yaml:"updated"`
	AuthorsCreated    int      `json:"authors_created" yaml:"authors_created"`
	PublishersCreated int      `json:"publishers_created" yaml:"publishers_created"`
	Enriched          int      `json:"enriched" yaml:"enriched"`
	Skipped           int      `json:"skipped" yaml:"skipped"`
	Total             int      `json:"total" yaml:"total"`
	ErrorCount        int      `json:"error_count" yaml:"error_count"`
	Errors            []string `json:"errors" yaml:"errors"`
}

// Summary returns the counters and the first maxErrors error messages.
func (r *Result) Summary(maxErrors int) Summary {
	return Summary{
		Created:           r.Created,
		Updated:           r.Updated,
		AuthorsCreated:    r.AuthorsCreated,
		PublishersCreated: r.PublishersCreated,
		Enriched:          r.Enriched,
		Skipped:           r.Skipped,
		Total:             r.Total,
		ErrorCount:        len(r.Errors),
		Errors:            r.FirstErrors(maxErrors),
	}
}
