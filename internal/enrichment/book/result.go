package book

// EnricherResult is the answer of a single source.
type EnricherResult struct {
	// Data is nil when the source did not know the book or failed.
	Data *EnrichmentData

	Source   string
	Priority int
}
