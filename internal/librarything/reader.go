package librarything

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	pinerrors "github.com/fabiodalez-dev/Pinakes-sub009/internal/errors"
)

// ErrMalformedRecord marks a record the TSV parser could not read.
var ErrMalformedRecord = errors.New("malformed record")

// Reader reads LibraryThing TSV records from a seekable source. A leading
// byte-order mark (UTF-8 or UTF-16) is skipped.
type Reader struct {
	src    io.ReadSeeker
	csv    *csv.Reader
	header []string
}

// NewReader reads and checks the header. Any failure is a FormatError.
func NewReader(src io.ReadSeeker) (*Reader, error) {
	r := &Reader{src: src}
	if err := r.Rewind(); err != nil {
		return nil, err
	}
	if !IsLibraryThingHeader(r.header) {
		return nil, pinerrors.NewFormatError("file is not a LibraryThing export (expected at least two of Book Id, Title, ISBNs)", nil)
	}
	return r, nil
}

// Header returns the column names of the input.
func (r *Reader) Header() []string {
	return r.header
}

// Rewind restarts reading at the first record after the header.
func (r *Reader) Rewind() error {
	if _, err := r.src.Seek(0, io.SeekStart); err != nil {
		return pinerrors.NewFormatError("cannot rewind input", err)
	}

	decoded := transform.NewReader(r.src, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return pinerrors.NewFormatError("file is empty", nil)
	}
	if err != nil {
		return pinerrors.NewFormatError("cannot read header", err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if isBlank(header) {
		return pinerrors.NewFormatError("header row is empty", nil)
	}

	r.csv = cr
	r.header = header
	return nil
}

// Next returns the next record and the line on which it starts. It returns
// io.EOF after the last record. A malformed record yields a non-EOF error
// and reading may continue with the following one.
func (r *Reader) Next() ([]string, int, error) {
	record, err := r.csv.Read()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, parseErr.StartLine, fmt.Errorf("%w: %v", ErrMalformedRecord, parseErr.Err)
		}
		return nil, 0, err
	}
	line, _ := r.csv.FieldPos(0)
	return record, line, nil
}

// Count reads the remaining records, then rewinds to the first one.
func (r *Reader) Count() (int, error) {
	n := 0
	for {
		_, _, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !errors.Is(err, ErrMalformedRecord) {
			return 0, fmt.Errorf("counting rows: %w", err)
		}
		n++
	}
	if err := r.Rewind(); err != nil {
		return 0, err
	}
	return n, nil
}

// IsBlankRecord reports whether every field of record is empty or whitespace.
func IsBlankRecord(record []string) bool {
	return isBlank(record)
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
