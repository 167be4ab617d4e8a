package librarything

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/fabiodalez-dev/Pinakes-sub009/internal/catalog"
)

// NormalizedBook is a LibraryThing row translated to catalog fields.
type NormalizedBook struct {
	catalog.BookFields

	// Authors in credit order, primary author first.
	Authors   []string `json:"authors,omitempty"`
	Publisher string   `json:"publisher,omitempty"`
	Genre     string   `json:"genre,omitempty"`
	// ExternalID is the LibraryThing Book Id when it is numeric.
	ExternalID *int64 `json:"external_id,omitempty"`
	// Copies is the requested number of physical copies, 1 when unset.
	Copies int `json:"copies"`
}

var (
	yearPattern    = regexp.MustCompile(`(?:^|\D)(\d{4})(?:\D|$)`)
	digitsPattern  = regexp.MustCompile(`\d+`)
	isoDatePattern = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})`)
)

// dateLayouts are tried in order before falling back to isoDatePattern.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// Map translates a LibraryThing row. It never fails: values that cannot be
// parsed are left out of the result.
func Map(row Row) NormalizedBook {
	get := func(col string) string { return strings.TrimSpace(row[col]) }

	b := NormalizedBook{Copies: 1}

	b.Title = get(ColTitle)
	b.Authors = parseAuthors(get(ColPrimaryAuthor), get(ColSecondaryAuthor))

	publisher, pubYear := ParsePublication(get(ColPublication))
	b.Publisher = publisher
	if year, ok := ParseYear(get(ColDate)); ok {
		b.Year = &year
	} else if pubYear != nil {
		b.Year = pubYear
	}

	isbnSource := get(ColISBNs)
	b.ISBN10, b.ISBN13 = ParseISBNs(isbnSource)
	if b.ISBN10 == "" && b.ISBN13 == "" {
		b.ISBN10, b.ISBN13 = ParseISBNs(get(ColISBN))
	}

	if lang := get(ColLanguages); lang != "" {
		b.Language = LanguageName(lang)
	}
	if lang := get(ColOriginalLanguages); lang != "" {
		b.OriginalLanguage = LanguageName(lang)
	}

	b.Format = FormatFromMedia(get(ColMedia))
	b.Price = ParsePrice(get(ColListPrice))
	b.PurchasePrice = ParsePrice(get(ColPurchasePrice))
	b.Value = ParsePrice(get(ColValue))

	if pages := digitsPattern.FindString(get(ColPageCount)); pages != "" {
		if n, err := strconv.Atoi(pages); err == nil && n > 0 {
			b.Pages = &n
		}
	}

	b.Rating = parseRating(get(ColRating))
	b.Genre = firstSubject(get(ColSubjects))

	if id := get(ColBookID); isDigits(id) {
		if n, err := strconv.ParseInt(id, 10, 64); err == nil {
			b.ExternalID = &n
		}
	}
	if copies := get(ColCopies); isDigits(copies) {
		if n, err := strconv.Atoi(copies); err == nil {
			b.Copies = n
		}
	}

	b.Description = get(ColSummary)
	b.Review = get(ColReview)
	b.Notes = get(ColComment)
	b.PrivateNotes = get(ColPrivateComment)
	b.PhysicalDescription = get(ColPhysicalDescription)
	b.Weight = get(ColWeight)
	b.Height = get(ColHeight)
	b.Thickness = get(ColThickness)
	b.Length = get(ColLength)
	b.Dimensions = get(ColDimensions)
	b.LCCN = get(ColLCCN)
	b.Barcode = get(ColBarcode)
	b.BCID = get(ColBCID)
	b.Keywords = get(ColTags)
	b.Collections = get(ColCollections)
	b.LCClassification = get(ColLCClassification)
	b.DeweyDecimal = get(ColDeweyDecimal)
	b.DeweyWording = get(ColDeweyWording)
	b.OtherCallNumber = get(ColOtherCallNumber)
	b.Source = get(ColSource)
	b.FromWhere = get(ColFromWhere)
	b.OCLC = get(ColOCLC)
	b.WorkID = get(ColWorkID)
	b.LendingPatron = get(ColLendingPatron)
	b.LendingStatus = get(ColLendingStatus)
	b.Condition = get(ColCondition)
	b.ISSN = get(ColISSN)

	b.AcquiredOn = ParseDate(get(ColAcquired))
	b.StartedOn = ParseDate(get(ColDateStarted))
	b.ReadOn = ParseDate(get(ColDateRead))
	b.EntryDate = ParseDate(get(ColEntryDate))
	b.LendingStart = ParseDate(get(ColLendingStart))
	b.LendingEnd = ParseDate(get(ColLendingEnd))

	return b
}

// parseAuthors returns the primary author followed by the secondary
// authors. Secondary names are separated by ";" or "|", never by comma
// since "Last, First" is the usual LibraryThing form.
func parseAuthors(primary, secondary string) []string {
	var authors []string
	if primary != "" {
		authors = append(authors, primary)
	}
	for _, name := range strings.FieldsFunc(secondary, func(r rune) bool { return r == ';' || r == '|' }) {
		if name = strings.TrimSpace(name); name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}

// ParsePublication extracts the publisher from a free-text Publication
// value. A pattern only counts as matched when it captures a non-blank
// publisher; otherwise the next pattern is tried, and finally the whole
// field is used verbatim. The year is returned when the matched pattern
// carries one.
func ParsePublication(publication string) (string, *int) {
	if publication == "" {
		return "", nil
	}

	for _, pattern := range publicationPatterns {
		m := pattern.FindStringSubmatch(publication)
		if m == nil {
			continue
		}
		publisher := strings.TrimSpace(m[1])
		if publisher == "" {
			continue
		}
		year, err := strconv.Atoi(m[2])
		if err != nil {
			return publisher, nil
		}
		return publisher, &year
	}

	return publication, nil
}

// ParseYear returns the first run of exactly four digits in s.
func ParseYear(s string) (int, bool) {
	m := yearPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}

// ParseISBNs splits a bracketed, comma or space separated ISBN list and
// returns the first ISBN-10 and the first ISBN-13 found.
func ParseISBNs(raw string) (isbn10, isbn13 string) {
	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '[' || r == ']' || unicode.IsSpace(r)
	})

	for _, tok := range tokens {
		clean := strings.Map(func(r rune) rune {
			switch {
			case r >= '0' && r <= '9':
				return r
			case r == 'X' || r == 'x':
				return 'X'
			}
			return -1
		}, tok)

		switch len(clean) {
		case 13:
			if isbn13 == "" && isDigits(clean) {
				isbn13 = clean
			}
		case 10:
			if isbn10 == "" {
				isbn10 = clean
			}
		}
	}
	return isbn10, isbn13
}

// ParsePrice keeps digits and separators and reads the result as a decimal
// number. When both "," and "." appear the earlier one is taken as the
// thousands separator. Anything that is not a number yields nil.
func ParsePrice(raw string) *float64 {
	clean := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			return r
		}
		return -1
	}, raw)
	if clean == "" {
		return nil
	}

	comma, dot := strings.LastIndex(clean, ","), strings.LastIndex(clean, ".")
	if comma >= 0 && dot >= 0 {
		if comma < dot {
			clean = strings.ReplaceAll(clean, ",", "")
		} else {
			clean = strings.ReplaceAll(clean, ".", "")
		}
	}
	clean = strings.ReplaceAll(clean, ",", ".")

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseDate normalizes a date to YYYY-MM-DD, or returns "" when the value
// is not a recognizable date.
func ParseDate(raw string) string {
	if raw == "" {
		return ""
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}

	m := isoDatePattern.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow, so 2020-02-31 comes back as March 2
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return ""
	}
	return t.Format("2006-01-02")
}

func parseRating(raw string) *int {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return nil
	}
	rating := int(math.Round(v))
	if rating < 1 || rating > 5 {
		return nil
	}
	return &rating
}

func firstSubject(subjects string) string {
	for _, s := range strings.FieldsFunc(subjects, func(r rune) bool { return r == '|' || r == ';' || r == ',' }) {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
