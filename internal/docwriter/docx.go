/**
 * Paginated Word document renderer
 *
 * Emits a minimal WordprocessingML package: one rendered page per backend
 * page with a 1:1 mapping, a title page, per-page headers, and right-to-left
 * paragraph properties (w:bidi) when the run direction is rtl.
 *
 * The document.xml is generated directly because the available docx
 * libraries do not expose bidirectional paragraph properties, which the
 * directionality contract requires.
 */

package docwriter

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/readvision/readvision/internal/config"
	"github.com/readvision/readvision/internal/paginate"
	"github.com/readvision/readvision/internal/textclean"
)

// Font sizes in half-points, spacing in twentieths of a point
const (
	titleSize  = "56"
	bodySize   = "24"
	headerSize = "20"
	paraAfter  = "120"
)

// Writer renders paginated Word documents for one writing direction
type Writer struct {
	direction config.TextDirection
}

// New creates a document writer
func New(direction config.TextDirection) *Writer {
	return &Writer{direction: direction}
}

// DocxPath swaps a text output path's extension for .docx
func DocxPath(textPath string) string {
	return strings.TrimSuffix(textPath, filepath.Ext(textPath)) + ".docx"
}

// WritePagedDocument renders one backend page per document page. Paragraph
// boundaries come from the pre-cleaned page text, since the cleaner
// collapses newline structure; each paragraph is cleaned independently.
func (w *Writer) WritePagedDocument(path string, pageTexts []string, pageNumbers []int) error {
	var body strings.Builder

	w.writeTitlePage(&body, path, pageTexts)

	for i, pageText := range pageTexts {
		displayNumber := i + 1
		if i < len(pageNumbers) {
			displayNumber = pageNumbers[i]
		}

		w.writeHeader(&body, fmt.Sprintf("Page %d", displayNumber))

		for _, paragraph := range strings.Split(pageText, "\n\n") {
			paragraph = textclean.Clean(paragraph)
			if paragraph == "" {
				continue
			}
			w.writeParagraph(&body, paragraph)
		}

		if i < len(pageTexts)-1 {
			writePageBreak(&body)
		}
	}

	return writePackage(path, body.String())
}

// WriteLegacyDocument renders flat text lacking page boundaries, re-chunked
// into fixed-size character pages. Chunking happens before cleanup because
// the cleaner collapses the blank-line boundaries the chunker splits on.
func (w *Writer) WriteLegacyDocument(path string, text string, charsPerPage int) error {
	chunks := paginate.PlanLegacyChunks(text, charsPerPage)

	var body strings.Builder
	w.writeTitlePage(&body, path, chunks)

	for i, chunk := range chunks {
		w.writeHeader(&body, fmt.Sprintf("Page %d", i+1))

		for _, paragraph := range strings.Split(chunk, "\n\n") {
			paragraph = textclean.Clean(paragraph)
			if paragraph == "" {
				continue
			}
			w.writeParagraph(&body, paragraph)
		}

		if i < len(chunks)-1 {
			writePageBreak(&body)
		}
	}

	return writePackage(path, body.String())
}

func (w *Writer) writeTitlePage(body *strings.Builder, path string, pages []string) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	totalChars := 0
	for _, page := range pages {
		totalChars += len([]rune(page))
	}

	writeStyledParagraph(body, "OCR Extracted Text", "center", titleSize, false, false)
	writeStyledParagraph(body, fmt.Sprintf("Source: %s", stem), "center", bodySize, false, false)
	writeStyledParagraph(body, fmt.Sprintf("Total pages: %d", len(pages)), "center", bodySize, false, false)
	writeStyledParagraph(body, fmt.Sprintf("Total characters: %d", totalChars), "center", bodySize, false, false)
	writeStyledParagraph(body, fmt.Sprintf("Text direction: %s", strings.ToUpper(string(w.direction))), "center", bodySize, false, false)
	writePageBreak(body)
}

func (w *Writer) writeHeader(body *strings.Builder, text string) {
	writeStyledParagraph(body, text, w.alignment(), headerSize, true, false)
}

func (w *Writer) writeParagraph(body *strings.Builder, text string) {
	writeStyledParagraph(body, text, w.alignment(), bodySize, false, w.direction == config.DirectionRTL)
}

func (w *Writer) alignment() string {
	if w.direction == config.DirectionRTL {
		return "right"
	}
	return "left"
}

func writeStyledParagraph(body *strings.Builder, text, alignment, size string, italic, bidi bool) {
	body.WriteString(`<w:p><w:pPr>`)
	if bidi {
		body.WriteString(`<w:bidi/>`)
	}
	fmt.Fprintf(body, `<w:jc w:val="%s"/><w:spacing w:after="%s"/>`, alignment, paraAfter)
	body.WriteString(`</w:pPr><w:r><w:rPr>`)
	if italic {
		body.WriteString(`<w:i/>`)
	}
	fmt.Fprintf(body, `<w:sz w:val="%s"/><w:szCs w:val="%s"/>`, size, size)
	body.WriteString(`</w:rPr>`)
	fmt.Fprintf(body, `<w:t xml:space="preserve">%s</w:t>`, escapeXML(text))
	body.WriteString(`</w:r></w:p>`)
}

func writePageBreak(body *strings.Builder) {
	body.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

const documentFooter = `</w:body></w:document>`

func writePackage(path, body string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	zw := zip.NewWriter(f)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", documentHeader + body + documentFooter},
	}

	for _, part := range parts {
		pw, err := zw.Create(part.name)
		if err != nil {
			zw.Close()
			f.Close()
			return fmt.Errorf("failed to add %s: %w", part.name, err)
		}
		if _, err := pw.Write([]byte(part.content)); err != nil {
			zw.Close()
			f.Close()
			return fmt.Errorf("failed to write %s: %w", part.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}

	return f.Close()
}
