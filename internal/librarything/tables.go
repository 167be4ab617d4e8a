package librarything

import (
	"regexp"
	"strings"

	"github.com/fabiodalez-dev/Pinakes-sub009/internal/catalog"
)

// languageNames maps LibraryThing language names to the catalog labels.
var languageNames = map[string]string{
	"italian": "italiano",
	"english": "inglese",
	"french":  "francese",
	"german":  "tedesco",
	"spanish": "spagnolo",
}

// languageLabels is the inverse of languageNames, for export.
var languageLabels = map[string]string{
	"italiano": "Italian",
	"inglese":  "English",
	"francese": "French",
	"tedesco":  "German",
	"spagnolo": "Spanish",
}

// formatRule maps any of its phrases, matched as a case-insensitive
// substring, to a format.
type formatRule struct {
	format  catalog.Format
	phrases []string
}

// formatRules are checked in order and the first match wins. Audio and
// digital phrases come first because "audio book" and "ebook" both contain
// "book".
var formatRules = []formatRule{
	{format: catalog.FormatAudiobook, phrases: []string{"audiobook", "audio book", "audio cd", "audio"}},
	{format: catalog.FormatEbook, phrases: []string{"ebook", "e-book", "kindle", "epub", "pdf", "digital"}},
	{format: catalog.FormatPaper, phrases: []string{"hardcover", "paperback", "paper", "mass market", "book"}},
}

// formatLabels are the LibraryThing media labels written on export.
var formatLabels = map[catalog.Format]string{
	catalog.FormatPaper:     "Paper Book",
	catalog.FormatEbook:     "Ebook",
	catalog.FormatAudiobook: "Audiobook",
}

// publicationPatterns extract the publisher from the Publication field, in
// priority order. Group 1 is the publisher, group 2 the year.
var publicationPatterns = []*regexp.Regexp{
	// "London, Penguin, 2004"
	regexp.MustCompile(`,\s*([^,]+?),\s*(\d{4})`),
	// "Penguin (2004)", "Penguin (UK) (2004)"
	regexp.MustCompile(`^(.+?)\s*\((\d{4})\)\s*$`),
}

// LanguageName translates a LibraryThing language to its catalog label.
func LanguageName(lang string) string {
	key := strings.ToLower(strings.TrimSpace(lang))
	if name, ok := languageNames[key]; ok {
		return name
	}
	return key
}

// LanguageLabel translates a catalog language back to LibraryThing.
func LanguageLabel(lang string) string {
	if label, ok := languageLabels[strings.ToLower(lang)]; ok {
		return label
	}
	return lang
}

// FormatFromMedia maps a LibraryThing media value to a catalog format.
// Present but unrecognized values are paper books.
func FormatFromMedia(media string) catalog.Format {
	media = strings.ToLower(strings.TrimSpace(media))
	if media == "" {
		return ""
	}

	for _, rule := range formatRules {
		for _, phrase := range rule.phrases {
			if strings.Contains(media, phrase) {
				return rule.format
			}
		}
	}
	return catalog.FormatPaper
}

// MediaLabel maps a catalog format to the LibraryThing media label.
func MediaLabel(format catalog.Format) string {
	if label, ok := formatLabels[format]; ok {
		return label
	}
	return string(format)
}
