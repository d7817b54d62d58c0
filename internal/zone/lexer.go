package zone

import (
	"strings"
	"unicode"
)

// LineKind classifies one physical line of a zone file.
type LineKind int

const (
	LineBlank LineKind = iota
	LineComment
	LineDirective
	// LineSOA marks the SOA line and every continuation line up to the
	// balancing closing parenthesis.
	LineSOA
	LineRecord
	LineOther
)

// Line is a lexed physical line. Record is set only for LineRecord.
type Line struct {
	Text   string
	Kind   LineKind
	Record *Record
}

// Lex classifies every line of text for the given zone class. Records are
// numbered in file order starting at zero.
func Lex(text string, class Class) []Line {
	raw := splitLines(text)
	out := make([]Line, 0, len(raw))
	depth := 0
	next := 0

	for _, s := range raw {
		trimmed := strings.TrimSpace(s)
		line := Line{Text: s}

		switch {
		case depth > 0:
			line.Kind = LineSOA
			depth += parenDelta(stripComment(trimmed))
		case trimmed == "":
			line.Kind = LineBlank
		case strings.HasPrefix(trimmed, ";"):
			line.Kind = LineComment
		case strings.HasPrefix(trimmed, "$"):
			line.Kind = LineDirective
		case hasSOAToken(trimmed):
			line.Kind = LineSOA
			depth = parenDelta(stripComment(trimmed))
		default:
			if rec, ok := lexRecord(trimmed, class); ok {
				rec.Index = next
				next++
				line.Kind = LineRecord
				line.Record = &rec
			} else {
				line.Kind = LineOther
			}
		}
		if depth < 0 {
			depth = 0
		}
		out = append(out, line)
	}
	return out
}

// Split returns the header span (every line strictly before the first
// record) and the body span.
func Split(lines []Line) (header, body []Line) {
	for i, l := range lines {
		if l.Kind == LineRecord {
			return lines[:i], lines[i:]
		}
	}
	return lines, nil
}

// lexRecord reads "<name> <class> <kind> <value...>". The class token is
// discarded. The value is the rest of the line verbatim, minus a trailing
// comment and outer whitespace, so quoted strings keep their spacing.
func lexRecord(trimmed string, class Class) (Record, bool) {
	fields := strings.Fields(trimmed)
	if len(fields) < 4 {
		return Record{}, false
	}
	kind := Kind(fields[2])
	if !class.Allows(kind) {
		return Record{}, false
	}
	value := strings.TrimSpace(stripComment(skipFields(trimmed, 3)))
	if value == "" {
		return Record{}, false
	}
	return Record{Name: fields[0], Kind: kind, Value: value, TTL: DefaultTTL}, true
}

// skipFields returns s without its first n whitespace-separated fields.
func skipFields(s string, n int) string {
	for ; n > 0; n-- {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		i := strings.IndexFunc(s, unicode.IsSpace)
		if i < 0 {
			return ""
		}
		s = s[i:]
	}
	return s
}

func hasSOAToken(trimmed string) bool {
	for _, f := range strings.Fields(stripComment(trimmed)) {
		if f == string(KindSOA) {
			return true
		}
	}
	return false
}

func parenDelta(s string) int {
	return strings.Count(s, "(") - strings.Count(s, ")")
}

// stripComment cuts s at the first ';' outside double quotes.
func stripComment(s string) string {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			inQuote = !inQuote
		case ';':
			if !inQuote {
				return s[:i]
			}
		}
	}
	return s
}

// splitLines splits on '\n'. A single trailing newline does not produce an
// extra empty line, so rebuilding a file does not grow it.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
