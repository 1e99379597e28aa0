/**
 * Result Reconciler Tests
 *
 * Validates page-order recovery from unordered recognition results:
 * - Ordering by page number regardless of arrival order
 * - Duplicate retention with arrival-order tiebreak
 * - Missing page detection inside the observed range
 * - Fallback numbering for units without a page hint
 */

package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readvision/readvision/internal/ocr"
)

func unit(number int, text string) ocr.RawPageUnit {
	return ocr.RawPageUnit{PageNumber: number, HasNumber: true, Text: text}
}

func TestReconcileOrdersByPageNumber(t *testing.T) {
	doc := Reconcile([]ocr.RawPageUnit{
		unit(3, "third"),
		unit(1, "first"),
		unit(2, "second"),
	})

	assert.Equal(t, []int{1, 2, 3}, doc.PageNumbers())
	assert.Equal(t, []string{"first", "second", "third"}, doc.Texts())
	assert.False(t, doc.HasAnomalies())
	require.True(t, doc.HasRange)
	assert.Equal(t, 1, doc.MinPage)
	assert.Equal(t, 3, doc.MaxPage)
}

func TestReconcileRetainsDuplicatesInArrivalOrder(t *testing.T) {
	doc := Reconcile([]ocr.RawPageUnit{
		unit(2, "two-a"),
		unit(1, "one"),
		unit(2, "two-b"),
	})

	assert.Equal(t, []int{1, 2, 2}, doc.PageNumbers())
	assert.Equal(t, []string{"one", "two-a", "two-b"}, doc.Texts())
	assert.Equal(t, []int{2}, doc.Duplicates)
	assert.Empty(t, doc.Missing)
	assert.True(t, doc.HasAnomalies())
}

func TestReconcileDetectsMissingPages(t *testing.T) {
	doc := Reconcile([]ocr.RawPageUnit{
		unit(1, "one"),
		unit(2, "two"),
		unit(4, "four"),
	})

	assert.Equal(t, []int{3}, doc.Missing)
	assert.Empty(t, doc.Duplicates)
	assert.True(t, doc.HasAnomalies())
	assert.Equal(t, []int{1, 2, 4}, doc.PageNumbers())
}

func TestReconcileScenarios(t *testing.T) {
	testCases := []struct {
		name        string
		units       []ocr.RawPageUnit
		wantNumbers []int
		wantDupes   []int
		wantMissing []int
	}{
		{
			name: "shuffled with gap and duplicate",
			units: []ocr.RawPageUnit{
				unit(5, "e"),
				unit(1, "a"),
				unit(3, "c-a"),
				unit(3, "c-b"),
			},
			wantNumbers: []int{1, 3, 3, 5},
			wantDupes:   []int{3},
			wantMissing: []int{2, 4},
		},
		{
			name: "range not starting at one",
			units: []ocr.RawPageUnit{
				unit(12, "l"),
				unit(10, "j"),
			},
			wantNumbers: []int{10, 12},
			wantDupes:   nil,
			wantMissing: []int{11},
		},
		{
			name:        "single page",
			units:       []ocr.RawPageUnit{unit(7, "g")},
			wantNumbers: []int{7},
			wantDupes:   nil,
			wantMissing: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := Reconcile(tc.units)
			assert.Equal(t, tc.wantNumbers, doc.PageNumbers())
			assert.Equal(t, tc.wantDupes, doc.Duplicates)
			assert.Equal(t, tc.wantMissing, doc.Missing)
		})
	}
}

func TestReconcileEmptyInput(t *testing.T) {
	doc := Reconcile(nil)

	assert.Empty(t, doc.Pages)
	assert.False(t, doc.HasRange)
	assert.False(t, doc.HasAnomalies())
	assert.Empty(t, doc.Texts())
}

func TestReconcileFallbackNumbering(t *testing.T) {
	doc := Reconcile([]ocr.RawPageUnit{
		{Text: "arrived first"},
		unit(1, "numbered one"),
		{Text: "arrived third"},
	})

	// Units without a hint take their 1-based arrival position, so the
	// first unit collides with the explicitly numbered page 1.
	assert.Equal(t, []int{1, 1, 3}, doc.PageNumbers())
	assert.Equal(t, []string{"arrived first", "numbered one", "arrived third"}, doc.Texts())
	assert.Equal(t, []int{1}, doc.Duplicates)
	assert.Equal(t, []int{2}, doc.Missing)
}
