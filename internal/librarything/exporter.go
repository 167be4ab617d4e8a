package librarything

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fabiodalez-dev/Pinakes-sub009/internal/catalog"
)

const utf8BOM = "\ufeff"

// ExportFilename returns the download name of an export taken at t.
func ExportFilename(t time.Time) string {
	return "librarything_export_" + t.Format("20060102_150405") + ".tsv"
}

// FormatRow renders rec as one LibraryThing record in Columns order.
// Columns without a catalog equivalent are empty.
func FormatRow(rec *catalog.ExportRecord) []string {
	b := rec.Book
	values := map[string]string{
		ColBookID:              exportBookID(&b),
		ColTitle:               b.Title,
		ColPublication:         formatPublication(rec.Publisher, b.Year),
		ColReview:              b.Review,
		ColComment:             b.Notes,
		ColPrivateComment:      b.PrivateNotes,
		ColSummary:             b.Description,
		ColMedia:               MediaLabel(b.Format),
		ColPhysicalDescription: b.PhysicalDescription,
		ColWeight:              b.Weight,
		ColHeight:              b.Height,
		ColThickness:           b.Thickness,
		ColLength:              b.Length,
		ColDimensions:          b.Dimensions,
		ColLCCN:                b.LCCN,
		ColAcquired:            b.AcquiredOn,
		ColDateStarted:         b.StartedOn,
		ColDateRead:            b.ReadOn,
		ColBarcode:             b.Barcode,
		ColBCID:                b.BCID,
		ColTags:                b.Keywords,
		ColCollections:         b.Collections,
		ColLanguages:           LanguageLabel(b.Language),
		ColOriginalLanguages:   LanguageLabel(b.OriginalLanguage),
		ColLCClassification:    b.LCClassification,
		ColISBN:                bracketed(firstNonEmpty(b.ISBN13, b.ISBN10)),
		ColISBNs:               bracketed(b.ISBN13, b.ISBN10),
		ColSubjects:            rec.Genre,
		ColDeweyDecimal:        b.DeweyDecimal,
		ColDeweyWording:        b.DeweyWording,
		ColOtherCallNumber:     b.OtherCallNumber,
		ColSource:              b.Source,
		ColEntryDate:           b.EntryDate,
		ColFromWhere:           b.FromWhere,
		ColOCLC:                b.OCLC,
		ColWorkID:              b.WorkID,
		ColLendingPatron:       b.LendingPatron,
		ColLendingStatus:       b.LendingStatus,
		ColLendingStart:        b.LendingStart,
		ColLendingEnd:          b.LendingEnd,
		ColListPrice:           formatPrice(b.Price),
		ColPurchasePrice:       formatPrice(b.PurchasePrice),
		ColValue:               formatPrice(b.Value),
		ColCondition:           b.Condition,
		ColISSN:                b.ISSN,
	}

	if len(rec.Authors) > 0 {
		values[ColPrimaryAuthor] = rec.Authors[0]
		values[ColSecondaryAuthor] = strings.Join(rec.Authors[1:], "; ")
	}
	if b.Year != nil {
		values[ColDate] = strconv.Itoa(*b.Year)
	}
	if b.Rating != nil {
		values[ColRating] = strconv.Itoa(*b.Rating)
	}
	if b.Pages != nil {
		values[ColPageCount] = strconv.Itoa(*b.Pages)
	}
	if b.CopiesTotal > 0 {
		values[ColCopies] = strconv.Itoa(b.CopiesTotal)
	}

	row := make([]string, len(Columns))
	for i, col := range Columns {
		row[i] = values[col]
	}
	return row
}

// Writer writes a LibraryThing TSV export: a UTF-8 byte-order mark, the
// header, then one line per record, all terminated by "\n".
type Writer struct {
	w           *bufio.Writer
	wroteHeader bool
}

// NewWriter creates a Writer on w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteHeader writes the byte-order mark and the column header. Write calls
// it automatically when needed.
func (w *Writer) WriteHeader() error {
	if w.wroteHeader {
		return nil
	}
	w.wroteHeader = true
	if _, err := w.w.WriteString(utf8BOM); err != nil {
		return err
	}
	return w.writeLine(Columns)
}

// Write writes one record.
func (w *Writer) Write(rec *catalog.ExportRecord) error {
	if err := w.WriteHeader(); err != nil {
		return err
	}
	return w.writeLine(FormatRow(rec))
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

func (w *Writer) writeLine(fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.w.WriteByte('\t'); err != nil {
				return err
			}
		}
		if _, err := w.w.WriteString(EscapeField(f)); err != nil {
			return err
		}
	}
	return w.w.WriteByte('\n')
}

// EscapeField quotes a field that contains a tab, a line break or a quote,
// doubling the quotes inside it.
func EscapeField(f string) string {
	if !strings.ContainsAny(f, "\t\n\r\"") {
		return f
	}
	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}

// exportBookID is empty for books that never came from LibraryThing, so a
// re-import cannot mistake an internal id for someone else's LibraryThing id.
func exportBookID(b *catalog.Book) string {
	if b.LibraryThingID == nil {
		return ""
	}
	return strconv.FormatInt(*b.LibraryThingID, 10)
}

func formatPublication(publisher string, year *int) string {
	switch {
	case publisher != "" && year != nil:
		return fmt.Sprintf("%s (%d)", publisher, *year)
	case publisher != "":
		return publisher
	default:
		return ""
	}
}

func formatPrice(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func bracketed(values ...string) string {
	var parts []string
	for _, v := range values {
		if v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
