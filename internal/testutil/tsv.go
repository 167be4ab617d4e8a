package testutil

import "strings"

// TSV renders a header and rows as a LibraryThing style export: tab
// separated, LF line endings, no quoting. Fields must not contain tabs or
// newlines; write the raw text for those cases.
func TSV(header []string, rows ...[]string) string {
	var b strings.Builder
	b.WriteString(strings.Join(header, "\t"))
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteTSV writes TSV(header, rows...) to path inside the environment and
// returns its absolute path.
func (e *TestEnv) WriteTSV(path string, header []string, rows ...[]string) string {
	e.t.Helper()
	return e.WriteFileString(path, TSV(header, rows...))
}
