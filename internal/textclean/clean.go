// Package textclean normalizes raw OCR output. Clean is pure, applied
// independently per page, and idempotent on already-clean input.
package textclean

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	whitespaceRun     = regexp.MustCompile(`\s+`)
	fusedCase         = regexp.MustCompile(`([a-z])([A-Z])`)
	spaceBeforePunct  = regexp.MustCompile(`\s+([.,;!?])`)
	punctBeforeLetter = regexp.MustCompile(`([.,;!?])([A-Za-z])`)
	newlineRun        = regexp.MustCompile(`\n{3,}`)
)

// Clean applies the OCR cleanup pipeline in fixed order: whitespace
// collapse, pipe-to-I repair, fused-word splitting, non-printable removal,
// punctuation spacing, and line-break normalization.
func Clean(text string) string {
	// Collapse any whitespace run, newlines included, to a single space.
	text = whitespaceRun.ReplaceAllString(text, " ")

	// The backend commonly misreads capital I as a pipe.
	text = strings.ReplaceAll(text, "|", "I")

	// Best-effort split of fused adjacent words at case transitions. Known
	// to occasionally insert unwanted spaces; documented limitation.
	text = fusedCase.ReplaceAllString(text, "$1 $2")

	text = dropNonPrintable(text)

	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	text = punctBeforeLetter.ReplaceAllString(text, "$1 $2")

	text = newlineRun.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

func dropNonPrintable(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
