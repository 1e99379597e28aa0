// Package output writes the plain-text artifact: cleaned pages joined by a
// literal page-break delimiter, transformed to the requested character
// encoding.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// ReadTextSample reads back at most maxRunes runes of a written artifact,
// decoding from the named encoding.
func ReadTextSample(path, encodingName string, maxRunes int) (string, error) {
	enc, err := ianaindex.IANA.Encoding(encodingName)
	if err != nil || enc == nil {
		return "", fmt.Errorf("unsupported encoding %q", encodingName)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	decoded, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", path, err)
	}

	runes := []rune(string(decoded))
	if len(runes) > maxRunes {
		runes = runes[:maxRunes]
	}
	return string(runes), nil
}

// PageBreakDelimiter separates pages in the plain-text output
const PageBreakDelimiter = "\n\n--- PAGE BREAK ---\n\n"

// TranslatedPath derives the output path for a translated artifact:
// stem_translated_<lang> with the original extension.
func TranslatedPath(path, targetLanguage string) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s_translated_%s%s", stem, targetLanguage, ext)
}

// WriteText writes pages to path in the named character encoding, joined by
// the page-break delimiter.
func WriteText(path string, pages []string, encodingName string) error {
	enc, err := ianaindex.IANA.Encoding(encodingName)
	if err != nil || enc == nil {
		return fmt.Errorf("unsupported encoding %q", encodingName)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := transform.NewWriter(f, enc.NewEncoder())
	if _, err := w.Write([]byte(strings.Join(pages, PageBreakDelimiter))); err != nil {
		w.Close()
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	return f.Close()
}
