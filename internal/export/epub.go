package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/FocuswithJustin/Ouroboros/core/book"
	"github.com/FocuswithJustin/Ouroboros/core/encoding"
)

// EPUB builds an EPUB 3 container with one XHTML chapter per section, in
// final registry order. Chapter bodies come from the HTML rendition of each
// section's markdown-shaped content.
func EPUB(b *book.Book) ([]byte, error) {
	if len(b.Sections) == 0 {
		return nil, fmt.Errorf("book has no sections")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	// The mimetype entry must come first and be stored uncompressed.
	mw, err := zw.CreateHeader(&zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	})
	if err != nil {
		return nil, err
	}
	if _, err := mw.Write([]byte("application/epub+zip")); err != nil {
		return nil, err
	}

	if err := addContainerXML(zw); err != nil {
		return nil, err
	}
	if err := addContentOPF(zw, b); err != nil {
		return nil, err
	}
	if err := addNav(zw, b); err != nil {
		return nil, err
	}
	if err := addStyle(zw); err != nil {
		return nil, err
	}
	for i, s := range b.Sections {
		if err := addChapter(zw, i, s); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addContainerXML(zw *zip.Writer) error {
	w, err := zw.Create("META-INF/container.xml")
	if err != nil {
		return err
	}
	container := `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`
	_, err = w.Write([]byte(container))
	return err
}

func addContentOPF(zw *zip.Writer, b *book.Book) error {
	w, err := zw.Create("OEBPS/content.opf")
	if err != nil {
		return err
	}

	var manifest, spine strings.Builder
	manifest.WriteString(`    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>` + "\n")
	manifest.WriteString(`    <item id="style" href="style.css" media-type="text/css"/>` + "\n")
	for i := range b.Sections {
		id := fmt.Sprintf("section%d", i+1)
		manifest.WriteString(fmt.Sprintf(`    <item id="%s" href="text/%s.xhtml" media-type="application/xhtml+xml"/>`, id, id) + "\n")
		spine.WriteString(fmt.Sprintf(`    <itemref idref="%s"/>`, id) + "\n")
	}

	opf := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="BookId">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:identifier id="BookId">urn:uuid:%s</dc:identifier>
    <dc:title>%s</dc:title>
    <dc:creator>%s</dc:creator>
    <dc:language>en</dc:language>
    <dc:date>%s</dc:date>
    <meta property="dcterms:modified">%s</meta>
  </metadata>
  <manifest>
%s  </manifest>
  <spine>
%s  </spine>
</package>`,
		encoding.EscapeXML(b.ID),
		encoding.EscapeXML(epubTitle(b)),
		book.GeneratorName,
		b.CreatedAt.Format("2006-01-02"),
		b.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		manifest.String(),
		spine.String(),
	)
	_, err = w.Write([]byte(opf))
	return err
}

// epubTitle derives a display title from the book's first section heading.
func epubTitle(b *book.Book) string {
	heading, _ := splitHeading(b.Sections[0].Content.Raw)
	return heading
}

func addNav(zw *zip.Writer, b *book.Book) error {
	w, err := zw.Create("OEBPS/nav.xhtml")
	if err != nil {
		return err
	}

	var items strings.Builder
	for i, s := range b.Sections {
		heading, _ := splitHeading(s.Content.Raw)
		items.WriteString(fmt.Sprintf(`      <li><a href="text/section%d.xhtml">%s</a></li>
`, i+1, encoding.EscapeXML(heading)))
	}

	nav := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head>
  <title>Contents</title>
  <link rel="stylesheet" type="text/css" href="style.css"/>
</head>
<body>
  <nav epub:type="toc" id="toc">
    <h1>Contents</h1>
    <ol>
%s    </ol>
  </nav>
</body>
</html>`, items.String())

	_, err = w.Write([]byte(nav))
	return err
}

func addStyle(zw *zip.Writer) error {
	w, err := zw.Create("OEBPS/style.css")
	if err != nil {
		return err
	}
	css := `body {
  font-family: serif;
  margin: 1em;
  line-height: 1.6;
}
h1, h2 {
  font-family: sans-serif;
}
`
	_, err = w.Write([]byte(css))
	return err
}

func addChapter(zw *zip.Writer, index int, s *book.Section) error {
	w, err := zw.Create(fmt.Sprintf("OEBPS/text/section%d.xhtml", index+1))
	if err != nil {
		return err
	}

	var body bytes.Buffer
	if err := goldmark.Convert([]byte(s.Content.Raw), &body); err != nil {
		return fmt.Errorf("render section #%d: %w", s.ID, err)
	}

	heading, _ := splitHeading(s.Content.Raw)
	xhtml := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <title>%s</title>
  <link rel="stylesheet" type="text/css" href="../style.css"/>
</head>
<body>
%s</body>
</html>`,
		encoding.EscapeXML(heading),
		body.String(),
	)
	_, err = w.Write([]byte(xhtml))
	return err
}
