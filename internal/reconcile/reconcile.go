/**
 * Result Reconciler
 *
 * Recovers true document page order from the unordered, possibly duplicated,
 * possibly gapped stream of per-page recognition results. The union of page
 * numbers across all response units is the authoritative order, not the
 * order of arrival.
 */

package reconcile

import (
	"sort"
	"strings"

	"github.com/readvision/readvision/internal/logging"
	"github.com/readvision/readvision/internal/ocr"
)

// RecognizedPage pairs a resolved page number with its recognized text
type RecognizedPage struct {
	PageNumber int
	Text       string
}

// Document is the canonical ordered view of one recognition run.
// It is computed once and never mutated; rerun Reconcile for a fresh view.
type Document struct {
	// Pages sorted by page number ascending. Duplicate page numbers are
	// retained adjacent to each other in arrival order; dropping them is a
	// caller decision.
	Pages []RecognizedPage

	// HasRange is false for empty input, in which case MinPage and MaxPage
	// are undefined and must not be read.
	HasRange bool
	MinPage  int
	MaxPage  int

	// Duplicates lists distinct page numbers seen more than once, ascending.
	Duplicates []int

	// Missing lists page numbers absent from the contiguous [MinPage,MaxPage]
	// range, ascending.
	Missing []int
}

// Reconcile resolves page numbers, orders the results, and computes
// duplicate/missing diagnostics. Diagnostics are reporting-only and never
// alter the returned sequence.
func Reconcile(units []ocr.RawPageUnit) *Document {
	doc := &Document{
		Pages: make([]RecognizedPage, 0, len(units)),
	}

	for i, unit := range units {
		pageNumber := unit.PageNumber
		if !unit.HasNumber {
			// Provisional fallback: arrival position, 1-based.
			pageNumber = i + 1
		}
		doc.Pages = append(doc.Pages, RecognizedPage{
			PageNumber: pageNumber,
			Text:       unit.Text,
		})
	}

	// Stable sort keeps duplicates in arrival order as the tiebreak.
	sort.SliceStable(doc.Pages, func(a, b int) bool {
		return doc.Pages[a].PageNumber < doc.Pages[b].PageNumber
	})

	if len(doc.Pages) == 0 {
		return doc
	}

	counts := make(map[int]int, len(doc.Pages))
	for _, page := range doc.Pages {
		counts[page.PageNumber]++
	}

	doc.HasRange = true
	doc.MinPage = doc.Pages[0].PageNumber
	doc.MaxPage = doc.Pages[len(doc.Pages)-1].PageNumber

	for number, count := range counts {
		if count > 1 {
			doc.Duplicates = append(doc.Duplicates, number)
		}
	}
	sort.Ints(doc.Duplicates)

	for number := doc.MinPage; number <= doc.MaxPage; number++ {
		if _, ok := counts[number]; !ok {
			doc.Missing = append(doc.Missing, number)
		}
	}

	return doc
}

// Texts returns the page texts in reconciled order
func (d *Document) Texts() []string {
	texts := make([]string, len(d.Pages))
	for i, page := range d.Pages {
		texts[i] = page.Text
	}
	return texts
}

// PageNumbers returns the resolved page numbers in reconciled order
func (d *Document) PageNumbers() []int {
	numbers := make([]int, len(d.Pages))
	for i, page := range d.Pages {
		numbers[i] = page.PageNumber
	}
	return numbers
}

// HasAnomalies reports whether duplicate or missing page numbers were found
func (d *Document) HasAnomalies() bool {
	return len(d.Duplicates) > 0 || len(d.Missing) > 0
}

// DebugPageOrder logs a page-ordering report: totals, range, duplicate and
// missing page numbers, and a short preview of the first pages.
func (d *Document) DebugPageOrder(logger *logging.Logger) {
	logger.Info("page order report", "total_pages", len(d.Pages))

	if !d.HasRange {
		return
	}

	logger.Info("page number range", "min", d.MinPage, "max", d.MaxPage)

	if len(d.Duplicates) > 0 {
		logger.Warn("duplicate page numbers found", "pages", d.Duplicates)
	}

	if len(d.Missing) > 0 {
		logger.Warn("missing page numbers", "pages", d.Missing)
	}

	for i, page := range d.Pages {
		if i >= 3 {
			break
		}
		preview := strings.TrimSpace(page.Text)
		preview = strings.ReplaceAll(preview, "\n", " ")
		if runes := []rune(preview); len(runes) > 100 {
			preview = string(runes[:100])
		}
		logger.Debug("page preview", "page", page.PageNumber, "text", preview)
	}
}
