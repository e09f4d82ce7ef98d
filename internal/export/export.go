// Package export produces the renditions of a finished book: canonical
// text, HTML, structured XML, and EPUB. The canonical text is deliberately
// markdown-shaped (## headings, - bullets, **bold**), so the HTML rendition
// is a straight goldmark conversion.
package export

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/FocuswithJustin/Ouroboros/core/book"
	"github.com/FocuswithJustin/Ouroboros/core/encoding"
)

// Format identifies a rendition.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
	FormatXML  Format = "xml"
	FormatEPUB Format = "epub"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatHTML, FormatXML, FormatEPUB:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Render produces the requested rendition of b.
func Render(b *book.Book, f Format) ([]byte, error) {
	switch f {
	case FormatText:
		return Text(b), nil
	case FormatHTML:
		return HTML(b)
	case FormatXML:
		return XML(b)
	case FormatEPUB:
		return EPUB(b)
	}
	return nil, fmt.Errorf("unknown export format %q", f)
}

// Text returns the canonical rendition, identical to what generation prints
// on stdout.
func Text(b *book.Book) []byte {
	return []byte(b.Text())
}

// HTML converts the canonical text through goldmark and wraps it in a
// minimal page.
func HTML(b *book.Book) ([]byte, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(b.Text()), &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	out.WriteString("<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&out, "<title>%s</title>\n", encoding.EscapeHTML(b.ID))
	out.WriteString("</head>\n<body>\n")
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")
	return out.Bytes(), nil
}

// sectionRef matches in-body section references such as "#12345".
var sectionRef = regexp.MustCompile(`#(\d+)`)

// XML returns the structured rendition: one <section> element per section
// with its heading and body split out, and every in-body "#id" reference
// marked up as <ref target="id"> so the XPath checks can resolve them.
func XML(b *book.Book) ([]byte, error) {
	var out bytes.Buffer
	out.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&out, "<book id=\"%s\" word_count=\"%d\">\n", encoding.EscapeXMLAttr(b.ID), b.WordCount)

	for _, s := range b.Sections {
		heading, body := splitHeading(s.Content.Raw)
		fmt.Fprintf(&out, "  <section id=\"%d\" kind=\"%s\" words=\"%d\">\n",
			s.ID, encoding.EscapeXMLAttr(s.Kind.String()), s.WordCount())
		fmt.Fprintf(&out, "    <heading>%s</heading>\n", markRefs(encoding.EscapeXMLText(heading)))
		fmt.Fprintf(&out, "    <body>%s</body>\n", markRefs(encoding.EscapeXMLText(body)))
		out.WriteString("  </section>\n")
	}

	out.WriteString("</book>\n")
	return out.Bytes(), nil
}

// splitHeading separates the "## ..." heading line from the rest of a
// section's content, stripping the markdown marker.
func splitHeading(raw string) (heading, body string) {
	heading = raw
	if i := strings.IndexByte(raw, '\n'); i >= 0 {
		heading, body = raw[:i], strings.TrimLeft(raw[i:], "\n")
	}
	heading = strings.TrimPrefix(heading, "## ")
	return heading, body
}

// markRefs wraps every "#id" occurrence in already-escaped text with a
// <ref> element. Escaping never touches '#' or digits, so matching after
// escaping is safe.
func markRefs(escaped string) string {
	return sectionRef.ReplaceAllString(escaped, `<ref target="$1">#$1</ref>`)
}
