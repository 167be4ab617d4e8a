package librarything

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabiodalez-dev/Pinakes-sub009/internal/catalog"
)

func TestMap_SingleRowExample(t *testing.T) {
	header := []string{ColBookID, ColTitle, ColPrimaryAuthor, ColISBNs}
	row := NewRow(header, []string{"", "1984", "George Orwell", "[9780451524935]"})

	b := Map(row)

	assert.Equal(t, "1984", b.Title)
	assert.Equal(t, []string{"George Orwell"}, b.Authors)
	assert.Equal(t, "9780451524935", b.ISBN13)
	assert.Empty(t, b.ISBN10)
	assert.Nil(t, b.ExternalID)
	assert.Equal(t, 1, b.Copies)
}

func TestMap_FullRow(t *testing.T) {
	row := Row{
		ColBookID:            "123456",
		ColTitle:             "  Il nome della rosa ",
		ColPrimaryAuthor:     "Eco, Umberto",
		ColSecondaryAuthor:   "Weaver, William; Doe, Jane | Roe, Richard",
		ColPublication:       "Milano, Bompiani, 1980",
		ColDate:              "1980",
		ColRating:            "4.5",
		ColComment:           "signed copy",
		ColSummary:           "A mystery in a medieval abbey.",
		ColMedia:             "Hardcover",
		ColPageCount:         "503 p.",
		ColAcquired:          "2021-3-7",
		ColDateRead:          "March 4, 2022",
		ColTags:              "medieval, mystery",
		ColLanguages:         "Italian",
		ColOriginalLanguages: "Latin",
		ColISBNs:             "[8845247414, 9788845247415]",
		ColSubjects:          "Monasteries -- Fiction | Italy -- History",
		ColCopies:            "3",
		ColListPrice:         "12,50 \u20ac",
		ColPurchasePrice:     "$1,234.56",
		ColValue:             "N/A",
	}

	b := Map(row)

	assert.Equal(t, "Il nome della rosa", b.Title)
	assert.Equal(t, []string{"Eco, Umberto", "Weaver, William", "Doe, Jane", "Roe, Richard"}, b.Authors)
	assert.Equal(t, "Bompiani", b.Publisher)
	require.NotNil(t, b.Year)
	assert.Equal(t, 1980, *b.Year)
	require.NotNil(t, b.Rating)
	assert.Equal(t, 5, *b.Rating)
	assert.Equal(t, "signed copy", b.Notes)
	assert.Equal(t, "A mystery in a medieval abbey.", b.Description)
	assert.Equal(t, catalog.FormatPaper, b.Format)
	require.NotNil(t, b.Pages)
	assert.Equal(t, 503, *b.Pages)
	assert.Equal(t, "2021-03-07", b.AcquiredOn)
	assert.Equal(t, "2022-03-04", b.ReadOn)
	assert.Equal(t, "medieval, mystery", b.Keywords)
	assert.Equal(t, "italiano", b.Language)
	assert.Equal(t, "latin", b.OriginalLanguage)
	assert.Equal(t, "8845247414", b.ISBN10)
	assert.Equal(t, "9788845247415", b.ISBN13)
	assert.Equal(t, "Monasteries -- Fiction", b.Genre)
	assert.Equal(t, 3, b.Copies)
	require.NotNil(t, b.ExternalID)
	assert.Equal(t, int64(123456), *b.ExternalID)
	require.NotNil(t, b.Price)
	assert.InDelta(t, 12.50, *b.Price, 0.0001)
	require.NotNil(t, b.PurchasePrice)
	assert.InDelta(t, 1234.56, *b.PurchasePrice, 0.0001)
	assert.Nil(t, b.Value)
}

func TestMap_MissingValuesAreAbsent(t *testing.T) {
	b := Map(Row{ColTitle: "Untitled notes", ColBookID: "LT-9", ColCopies: "two", ColRating: "7"})

	assert.Nil(t, b.ExternalID)
	assert.Equal(t, 1, b.Copies)
	assert.Nil(t, b.Rating)
	assert.Nil(t, b.Year)
	assert.Nil(t, b.Pages)
	assert.Empty(t, b.Format)
	assert.Empty(t, b.Authors)
	assert.Empty(t, b.Publisher)
}

func TestMap_YearFallsBackToPublication(t *testing.T) {
	b := Map(Row{ColTitle: "Dune", ColPublication: "Chilton Books (1965)"})

	assert.Equal(t, "Chilton Books", b.Publisher)
	require.NotNil(t, b.Year)
	assert.Equal(t, 1965, *b.Year)
}

func TestMap_ISBNFallsBackToISBNColumn(t *testing.T) {
	b := Map(Row{ColTitle: "Dune", ColISBN: "[0441013597]"})

	assert.Equal(t, "0441013597", b.ISBN10)
	assert.Empty(t, b.ISBN13)
}

func TestParsePublication(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		publisher string
		year      int
	}{
		{name: "place publisher year", input: "New York, Signet Classics, 1961", publisher: "Signet Classics", year: 1961},
		{name: "publisher with year in parens", input: "Penguin (2004)", publisher: "Penguin", year: 2004},
		{name: "parenthesized imprint", input: "Penguin (UK) (2004)", publisher: "Penguin (UK)", year: 2004},
		{name: "comma in publisher name with parens", input: "Farrar, Straus (1990)", publisher: "Farrar, Straus", year: 1990},
		{name: "free text", input: "Self published", publisher: "Self published"},
		{name: "blank capture falls through", input: "London, , 1999", publisher: "London, , 1999"},
		{name: "empty", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher, year := ParsePublication(tt.input)
			assert.Equal(t, tt.publisher, publisher)
			if tt.year == 0 {
				assert.Nil(t, year)
				return
			}
			require.NotNil(t, year)
			assert.Equal(t, tt.year, *year)
		})
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"2020", 2020, true},
		{"2020-05-01", 2020, true},
		{"c. 1851", 1851, true},
		{"May 12345", 0, false},
		{"", 0, false},
		{"n.d.", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseYear(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseISBNs(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		isbn10 string
		isbn13 string
	}{
		{name: "bracketed pair", input: "[0451524934, 9780451524935]", isbn10: "0451524934", isbn13: "9780451524935"},
		{name: "hyphens and spaces", input: "978-0-451-52493-5 0-451-52493-4", isbn10: "0451524934", isbn13: "9780451524935"},
		{name: "check digit X", input: "[080442957x]", isbn10: "080442957X"},
		{name: "first of each length wins", input: "9780000000001, 9781111111113", isbn13: "9780000000001"},
		{name: "wrong lengths ignored", input: "[12345, 123456789012345]"},
		{name: "thirteen with X is rejected", input: "978045152493X"},
		{name: "empty", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isbn10, isbn13 := ParseISBNs(tt.input)
			assert.Equal(t, tt.isbn10, isbn10)
			assert.Equal(t, tt.isbn13, isbn13)
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"12,50 \u20ac", 12.50, true},
		{"$15.99", 15.99, true},
		{"1.234,56", 1234.56, true},
		{"1,234.56", 1234.56, true},
		{"EUR 7", 7, true},
		{"N/A", 0, false},
		{"", 0, false},
		{"1.2.3", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParsePrice(tt.input)
			if !tt.ok {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, tt.want, *got, 0.0001)
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2021-03-07", "2021-03-07"},
		{"2021-3-7", "2021-03-07"},
		{"2021-03-07T10:00:00Z", "2021-03-07"},
		{"2021/03/07", "2021-03-07"},
		{"March 7, 2021", "2021-03-07"},
		{"Mar 7, 2021", "2021-03-07"},
		{"7 March 2021", "2021-03-07"},
		{"2021-13-01", ""},
		{"2020-02-31", ""},
		{"2020-2-30", ""},
		{"2020-2-29", "2020-02-29"},
		{"sometime", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDate(tt.input))
		})
	}
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"3", 3, true},
		{"4.5", 5, true},
		{"2,4", 2, true},
		{"0", 0, false},
		{"6", 0, false},
		{"great", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseRating(tt.input)
			if !tt.ok {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}
