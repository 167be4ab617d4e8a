package book

import (
	"slices"
)

// Merger combines the answers of several sources.
type Merger interface {
	Merge(results []EnricherResult) *EnrichmentData
}

// PriorityMerger takes every field from the highest priority source that
// has it. Subjects are unioned.
type PriorityMerger struct{}

// NewPriorityMerger creates a new PriorityMerger.
func NewPriorityMerger() *PriorityMerger {
	return &PriorityMerger{}
}

// Merge returns nil when no source returned data.
func (m *PriorityMerger) Merge(results []EnricherResult) *EnrichmentData {
	sorted := slices.Clone(results)
	slices.SortStableFunc(sorted, func(a, b EnricherResult) int {
		return a.Priority - b.Priority
	})

	var merged *EnrichmentData
	for _, result := range sorted {
		d := result.Data
		if d == nil {
			continue
		}
		if merged == nil {
			merged = &EnrichmentData{}
		}

		firstString(&merged.Title, d.Title)
		firstString(&merged.Description, d.Description)
		firstString(&merged.Publisher, d.Publisher)
		firstString(&merged.CoverURL, d.CoverURL)
		firstString(&merged.PublishDate, d.PublishDate)

		if merged.NumberOfPages == nil && d.NumberOfPages != nil && *d.NumberOfPages > 0 {
			merged.NumberOfPages = d.NumberOfPages
		}
		if len(merged.Authors) == 0 && len(d.Authors) > 0 {
			merged.Authors = d.Authors
		}
		merged.Subjects = mergeStringSlices(merged.Subjects, d.Subjects)
	}

	return merged
}

func firstString(dst **string, src *string) {
	if *dst == nil && src != nil && *src != "" {
		*dst = src
	}
}

// mergeStringSlices appends the values of b missing from a.
func mergeStringSlices(a, b []string) []string {
	for _, s := range b {
		if !slices.Contains(a, s) {
			a = append(a, s)
		}
	}
	return a
}
