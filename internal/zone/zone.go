// Package zone parses and rebuilds BIND-style zone files.
//
// The codec works in two phases. Lex classifies every line; Split divides
// the lexed file into a header span (every line before the first record,
// typically $TTL, the SOA block and comments) and a body span. Parse
// returns the body records, Rebuild copies the header verbatim and emits the
// supplied records as freshly formatted lines.
//
// Rebuild replaces the whole body: body lines that are not recognised
// records (stray comments, malformed lines, directives after the first
// record) are dropped. Append adds a single line without touching the rest
// of the file.
//
// The codec never returns errors. Lines it cannot read are skipped.
package zone

import (
	"fmt"
	"strings"
)

// Parse returns the records of text in file order, numbered from zero.
func Parse(text string, class Class) []Record {
	lines := Lex(text, class)
	recs := make([]Record, 0, len(lines))
	for _, l := range lines {
		if l.Kind == LineRecord {
			recs = append(recs, *l.Record)
		}
	}
	return recs
}

// Header returns the verbatim header fragment of text.
func Header(text string, class Class) []string {
	header, _ := Split(Lex(text, class))
	out := make([]string, len(header))
	for i, l := range header {
		out[i] = l.Text
	}
	return out
}

// Rebuild reconstructs a zone file from the header fragment of original and
// records, in the order given. The result is newline-terminated.
func Rebuild(original string, class Class, records []Record) string {
	var b strings.Builder
	for _, line := range Header(original, class) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, r := range records {
		b.WriteString(FormatRecord(r))
		b.WriteByte('\n')
	}
	return b.String()
}

// Append adds r as the last line of text, keeping every existing line.
func Append(text string, r Record) string {
	line := FormatRecord(r) + "\n"
	switch {
	case text == "":
		return line
	case strings.HasSuffix(text, "\n"):
		return text + line
	default:
		return text + "\n" + line
	}
}

// FormatRecord renders r as "<name:20> IN  <kind:10> <value>".
func FormatRecord(r Record) string {
	return fmt.Sprintf("%-20s IN  %-10s %s", r.Name, string(r.Kind), r.Value)
}
