package svg

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"unicode/utf8"
)

const indentUnit = "  "

// Marshal serializes root. Both forms end with a single newline.
func Marshal(root *Element, pretty bool) []byte {
	var buf bytes.Buffer
	if pretty {
		writePretty(&buf, root, 0)
	} else {
		writeCompact(&buf, root)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Write serializes root to w.
func Write(w io.Writer, root *Element, pretty bool) error {
	_, err := w.Write(Marshal(root, pretty))
	return err
}

func writePretty(buf *bytes.Buffer, e *Element, level int) {
	indent := strings.Repeat(indentUnit, level)
	buf.WriteString(indent)
	openTag(buf, e)

	switch {
	case e.empty():
		buf.WriteString("/>\n")
		return
	case e.Name == "style":
		buf.WriteString(">\n")
		inner := indent + indentUnit
		for _, line := range strings.Split(strings.TrimSpace(e.Text), "\n") {
			line = strings.TrimRight(line, " \t\r")
			if line != "" {
				buf.WriteString(inner)
				buf.WriteString(escapeText(line))
			}
			buf.WriteByte('\n')
		}
		buf.WriteString(indent)
	case len(e.Children) == 0 && e.Raw == "":
		buf.WriteByte('>')
		buf.WriteString(escapeText(e.Text))
	default:
		buf.WriteString(">\n")
		inner := indent + indentUnit
		if e.Text != "" {
			buf.WriteString(inner)
			buf.WriteString(escapeText(e.Text))
			buf.WriteByte('\n')
		}
		for _, line := range rawLines(e.Raw) {
			buf.WriteString(inner)
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
		for _, c := range e.Children {
			writePretty(buf, c, level+1)
		}
		buf.WriteString(indent)
	}
	closeTag(buf, e)
	buf.WriteByte('\n')
}

func writeCompact(buf *bytes.Buffer, e *Element) {
	openTag(buf, e)
	if e.empty() {
		buf.WriteString("/>")
		return
	}
	buf.WriteByte('>')
	if e.Name == "style" {
		buf.WriteString(escapeText(collapse(e.Text)))
	} else {
		buf.WriteString(escapeText(e.Text))
	}
	buf.WriteString(strings.Join(rawLines(e.Raw), " "))
	for _, c := range e.Children {
		writeCompact(buf, c)
	}
	closeTag(buf, e)
}

func openTag(buf *bytes.Buffer, e *Element) {
	buf.WriteByte('<')
	buf.WriteString(e.Name)
	for _, a := range e.Attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.Name)
		buf.WriteString(`="`)
		buf.WriteString(EscapeXML(a.Value))
		buf.WriteByte('"')
	}
}

func closeTag(buf *bytes.Buffer, e *Element) {
	buf.WriteString("</")
	buf.WriteString(e.Name)
	buf.WriteByte('>')
}

// EscapeXML escapes s for use in an attribute value.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// escapeText escapes character data. Quotes are left alone so stylesheets
// stay readable; runes XML cannot carry become U+FFFD.
func escapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '&':
			b.WriteString("&amp;")
		case r == '<':
			b.WriteString("&lt;")
		case r == '>':
			b.WriteString("&gt;")
		case !isXMLChar(r):
			b.WriteRune(utf8.RuneError)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isXMLChar reports whether r is in the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

// rawLines splits markup into trimmed, non-blank lines.
func rawLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func collapse(s string) string { return strings.Join(rawLines(s), " ") }
