// Package librarything converts between LibraryThing TSV exports and catalog
// records.
package librarything

// LibraryThing export column names.
const (
	ColBookID               = "Book Id"
	ColTitle                = "Title"
	ColSortCharacter        = "Sort Character"
	ColPrimaryAuthor        = "Primary Author"
	ColPrimaryAuthorRole    = "Primary Author Role"
	ColSecondaryAuthor      = "Secondary Author"
	ColSecondaryAuthorRoles = "Secondary Author Roles"
	ColPublication          = "Publication"
	ColDate                 = "Date"
	ColReview               = "Review"
	ColRating               = "Rating"
	ColComment              = "Comment"
	ColPrivateComment       = "Private Comment"
	ColSummary              = "Summary"
	ColMedia                = "Media"
	ColPhysicalDescription  = "Physical Description"
	ColWeight               = "Weight"
	ColHeight               = "Height"
	ColThickness            = "Thickness"
	ColLength               = "Length"
	ColDimensions           = "Dimensions"
	ColPageCount            = "Page Count"
	ColLCCN                 = "LCCN"
	ColAcquired             = "Acquired"
	ColDateStarted          = "Date Started"
	ColDateRead             = "Date Read"
	ColBarcode              = "Barcode"
	ColBCID                 = "BCID"
	ColTags                 = "Tags"
	ColCollections          = "Collections"
	ColLanguages            = "Languages"
	ColOriginalLanguages    = "Original Languages"
	ColLCClassification     = "LC Classification"
	ColISBN                 = "ISBN"
	ColISBNs                = "ISBNs"
	ColSubjects             = "Subjects"
	ColDeweyDecimal         = "Dewey Decimal"
	ColDeweyWording         = "Dewey Wording"
	ColOtherCallNumber      = "Other Call Number"
	ColCopies               = "Copies"
	ColSource               = "Source"
	ColEntryDate            = "Entry Date"
	ColFromWhere            = "From Where"
	ColOCLC                 = "OCLC"
	ColWorkID               = "Work id"
	ColLendingPatron        = "Lending Patron"
	ColLendingStatus        = "Lending Status"
	ColLendingStart         = "Lending Start"
	ColLendingEnd           = "Lending End"
	ColListPrice            = "List Price"
	ColPurchasePrice        = "Purchase Price"
	ColValue                = "Value"
	ColCondition            = "Condition"
	ColISSN                 = "ISSN"
)

// Columns is the full LibraryThing export header in file order.
var Columns = []string{
	ColBookID, ColTitle, ColSortCharacter, ColPrimaryAuthor, ColPrimaryAuthorRole,
	ColSecondaryAuthor, ColSecondaryAuthorRoles, ColPublication, ColDate, ColReview,
	ColRating, ColComment, ColPrivateComment, ColSummary, ColMedia,
	ColPhysicalDescription, ColWeight, ColHeight, ColThickness, ColLength,
	ColDimensions, ColPageCount, ColLCCN, ColAcquired, ColDateStarted,
	ColDateRead, ColBarcode, ColBCID, ColTags, ColCollections,
	ColLanguages, ColOriginalLanguages, ColLCClassification, ColISBN, ColISBNs,
	ColSubjects, ColDeweyDecimal, ColDeweyWording, ColOtherCallNumber, ColCopies,
	ColSource, ColEntryDate, ColFromWhere, ColOCLC, ColWorkID,
	ColLendingPatron, ColLendingStatus, ColLendingStart, ColLendingEnd, ColListPrice,
	ColPurchasePrice, ColValue, ColCondition, ColISSN,
}

// anchorColumns identify a LibraryThing header; at least two must be present.
var anchorColumns = []string{ColBookID, ColTitle, ColISBNs}

// IsLibraryThingHeader reports whether header looks like a LibraryThing export.
func IsLibraryThingHeader(header []string) bool {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}

	found := 0
	for _, anchor := range anchorColumns {
		if present[anchor] {
			found++
		}
	}
	return found >= 2
}

// Row is one input record keyed by column name.
type Row map[string]string

// NewRow pairs a record with its header. Extra values without a header are
// dropped and missing trailing values stay absent.
func NewRow(header, record []string) Row {
	row := make(Row, len(header))
	for i, name := range header {
		if i < len(record) {
			row[name] = record[i]
		}
	}
	return row
}
