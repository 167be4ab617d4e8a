// Package catalog defines the library catalog records that the import and
// export pipelines move around, along with the persistence contract they
// depend on.
package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Format is the internal media code stored on a book.
type Format string

const (
	FormatPaper     Format = "cartaceo"
	FormatEbook     Format = "ebook"
	FormatAudiobook Format = "audiolibro"
)

// RolePrimary is the only author role the LibraryThing pipeline assigns.
const RolePrimary = "primary"

// BookFields holds every value the import pipeline can write on a book.
// Empty strings and nil pointers mean "not present in the source".
type BookFields struct {
	Title       string   `json:"title" validate:"required"`
	Subtitle    string   `json:"subtitle,omitempty"`
	ISBN10      string   `json:"isbn10,omitempty" validate:"omitempty,len=10"`
	ISBN13      string   `json:"isbn13,omitempty" validate:"omitempty,len=13,numeric"`
	EAN         string   `json:"ean,omitempty"`
	Year        *int     `json:"year,omitempty"`
	Language    string   `json:"language,omitempty"`
	Pages       *int     `json:"pages,omitempty"`
	Description string   `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Format      Format   `json:"format,omitempty"`
	Details
}

// Details are the extended attributes carried over from LibraryThing.
// Date values are normalized to YYYY-MM-DD.
type Details struct {
	Review              string   `json:"review,omitempty"`
	Rating              *int     `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Notes               string   `json:"notes,omitempty"`
	PrivateNotes        string   `json:"private_notes,omitempty"`
	PhysicalDescription string   `json:"physical_description,omitempty"`
	Weight              string   `json:"weight,omitempty"`
	Height              string   `json:"height,omitempty"`
	Thickness           string   `json:"thickness,omitempty"`
	Length              string   `json:"length,omitempty"`
	Dimensions          string   `json:"dimensions,omitempty"`
	LCCN                string   `json:"lccn,omitempty"`
	AcquiredOn          string   `json:"acquired_on,omitempty"`
	StartedOn           string   `json:"started_on,omitempty"`
	ReadOn              string   `json:"read_on,omitempty"`
	Barcode             string   `json:"barcode,omitempty"`
	BCID                string   `json:"bcid,omitempty"`
	Keywords            string   `json:"keywords,omitempty"`
	Collections         string   `json:"collections,omitempty"`
	OriginalLanguage    string   `json:"original_language,omitempty"`
	LCClassification    string   `json:"lc_classification,omitempty"`
	DeweyDecimal        string   `json:"dewey_decimal,omitempty"`
	DeweyWording        string   `json:"dewey_wording,omitempty"`
	OtherCallNumber     string   `json:"other_call_number,omitempty"`
	Source              string   `json:"source,omitempty"`
	EntryDate           string   `json:"entry_date,omitempty"`
	FromWhere           string   `json:"from_where,omitempty"`
	OCLC                string   `json:"oclc,omitempty"`
	WorkID              string   `json:"work_id,omitempty"`
	LendingPatron       string   `json:"lending_patron,omitempty"`
	LendingStatus       string   `json:"lending_status,omitempty"`
	LendingStart        string   `json:"lending_start,omitempty"`
	LendingEnd          string   `json:"lending_end,omitempty"`
	PurchasePrice       *float64 `json:"purchase_price,omitempty"`
	Value               *float64 `json:"value,omitempty"`
	Condition           string   `json:"condition,omitempty"`
	ISSN                string   `json:"issn,omitempty"`
}

// BookWrite is a book insert or update with its resolved references.
type BookWrite struct {
	BookFields
	LibraryThingID *int64
	PublisherID    *int64
	GenreID        *int64
}

// Book is a persisted catalog book.
type Book struct {
	ID             int64
	LibraryThingID *int64
	PublisherID    *int64
	GenreID        *int64
	Cover          string
	CopiesTotal    int
	CopiesLeft     int
	BookFields
}

// BookAuthor is one credited author of a book.
type BookAuthor struct {
	AuthorID int64
	Name     string
	Role     string
	Order    int
}

// Copy is a physical copy of a book.
type Copy struct {
	ID     int64
	BookID int64
	Number string
	Status string
}

// ExportRecord is a book joined with the names it references.
type ExportRecord struct {
	Book
	Authors   []string
	Publisher string
	Genre     string
}

// NormalizeName trims, collapses inner whitespace and NFC-normalizes a
// publisher, author or genre name so the same name typed with different
// Unicode compositions resolves to one row.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.Join(strings.Fields(name), " "))
}

// CopyNumbers returns the inventory numbers for count new copies of a book.
// The base is the ISBN-13, then the ISBN-10, then "LT-<id>". With more than
// one copy every number gets a 1-based "-<n>" suffix.
func CopyNumbers(isbn13, isbn10 string, bookID int64, count int) []string {
	base := isbn13
	if base == "" {
		base = isbn10
	}
	if base == "" {
		base = fmt.Sprintf("LT-%d", bookID)
	}

	if count <= 1 {
		return []string{base}
	}

	numbers := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		numbers = append(numbers, fmt.Sprintf("%s-%d", base, i))
	}
	return numbers
}
