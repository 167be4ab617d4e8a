package datastore

import (
	"database/sql"
	"strings"

	"github.com/fabiodalez-dev/Pinakes-sub009/internal/catalog"
)

type textColumn struct {
	name string
	ptr  *string
}

type intColumn struct {
	name string
	ptr  **int
}

type floatColumn struct {
	name string
	ptr  **float64
}

// bookColumns lists the writable book columns with pointers into f, so the
// insert, update and scan paths share one column list.
type bookColumns struct {
	text   []textColumn
	ints   []intColumn
	floats []floatColumn
}

func columnsOf(f *catalog.BookFields) bookColumns {
	return bookColumns{
		text: []textColumn{
			{"title", &f.Title},
			{"subtitle", &f.Subtitle},
			{"isbn10", &f.ISBN10},
			{"isbn13", &f.ISBN13},
			{"ean", &f.EAN},
			{"language", &f.Language},
			{"description", &f.Description},
			{"format", (*string)(&f.Format)},
			{"review", &f.Review},
			{"notes", &f.Notes},
			{"private_notes", &f.PrivateNotes},
			{"physical_description", &f.PhysicalDescription},
			{"weight", &f.Weight},
			{"height", &f.Height},
			{"thickness", &f.Thickness},
			{"length", &f.Length},
			{"dimensions", &f.Dimensions},
			{"lccn", &f.LCCN},
			{"acquired_on", &f.AcquiredOn},
			{"started_on", &f.StartedOn},
			{"read_on", &f.ReadOn},
			{"barcode", &f.Barcode},
			{"bcid", &f.BCID},
			{"keywords", &f.Keywords},
			{"collections", &f.Collections},
			{"original_language", &f.OriginalLanguage},
			{"lc_classification", &f.LCClassification},
			{"dewey_decimal", &f.DeweyDecimal},
			{"dewey_wording", &f.DeweyWording},
			{"other_call_number", &f.OtherCallNumber},
			{"source", &f.Source},
			{"entry_date", &f.EntryDate},
			{"from_where", &f.FromWhere},
			{"oclc", &f.OCLC},
			{"work_id", &f.WorkID},
			{"lending_patron", &f.LendingPatron},
			{"lending_status", &f.LendingStatus},
			{"lending_start", &f.LendingStart},
			{"lending_end", &f.LendingEnd},
			{"item_condition", &f.Condition},
			{"issn", &f.ISSN},
		},
		ints: []intColumn{
			{"year", &f.Year},
			{"pages", &f.Pages},
			{"rating", &f.Rating},
		},
		floats: []floatColumn{
			{"price", &f.Price},
			{"purchase_price", &f.PurchasePrice},
			{"value", &f.Value},
		},
	}
}

// names returns the column names, each with the given prefix.
func (c bookColumns) names(prefix string) []string {
	names := make([]string, 0, len(c.text)+len(c.ints)+len(c.floats))
	for _, col := range c.text {
		names = append(names, prefix+col.name)
	}
	for _, col := range c.ints {
		names = append(names, prefix+col.name)
	}
	for _, col := range c.floats {
		names = append(names, prefix+col.name)
	}
	return names
}

// values returns the column values in names order. Absent values are nil.
func (c bookColumns) values() []any {
	values := make([]any, 0, len(c.text)+len(c.ints)+len(c.floats))
	for _, col := range c.text {
		values = append(values, nullString(*col.ptr))
	}
	for _, col := range c.ints {
		values = append(values, nullInt(*col.ptr))
	}
	for _, col := range c.floats {
		values = append(values, nullFloat(*col.ptr))
	}
	return values
}

// scanTargets returns scan destinations in names order and a function that
// copies the scanned values into the fields.
func (c bookColumns) scanTargets() ([]any, func()) {
	texts := make([]sql.NullString, len(c.text))
	ints := make([]sql.NullInt64, len(c.ints))
	floats := make([]sql.NullFloat64, len(c.floats))

	dest := make([]any, 0, len(texts)+len(ints)+len(floats))
	for i := range texts {
		dest = append(dest, &texts[i])
	}
	for i := range ints {
		dest = append(dest, &ints[i])
	}
	for i := range floats {
		dest = append(dest, &floats[i])
	}

	apply := func() {
		for i, col := range c.text {
			*col.ptr = texts[i].String
		}
		for i, col := range c.ints {
			if ints[i].Valid {
				v := int(ints[i].Int64)
				*col.ptr = &v
			}
		}
		for i, col := range c.floats {
			if floats[i].Valid {
				v := floats[i].Float64
				*col.ptr = &v
			}
		}
	}
	return dest, apply
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
