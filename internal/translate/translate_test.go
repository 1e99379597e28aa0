package translate

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readvision/readvision/internal/logging"
)

// fakeBackend upper-cases input and fails on request
type fakeBackend struct {
	failOn map[string]bool
	calls  int
}

func (f *fakeBackend) Translate(ctx context.Context, text, targetLanguage, sourceLanguage string) (string, string, error) {
	f.calls++
	if f.failOn[text] {
		return "", "", fmt.Errorf("backend unavailable")
	}
	return "translated:" + text, "ar", nil
}

func TestPagesTranslatesInOrder(t *testing.T) {
	backend := &fakeBackend{}
	logger := logging.NewLogger("test")

	results := Pages(context.Background(), backend, []string{"one", "two"}, "en", "", logger)

	require.Len(t, results, 2)
	assert.Equal(t, "translated:one", results[0].Text)
	assert.Equal(t, "translated:two", results[1].Text)
	assert.Equal(t, "one", results[0].Original)
	assert.Equal(t, "ar", results[0].DetectedSource)
	assert.NoError(t, results[0].Err)
}

func TestPagesKeepsOriginalOnFailure(t *testing.T) {
	backend := &fakeBackend{failOn: map[string]bool{"two": true}}
	logger := logging.NewLogger("test")

	results := Pages(context.Background(), backend, []string{"one", "two", "three"}, "en", "ar", logger)

	require.Len(t, results, 3)
	assert.Equal(t, "translated:one", results[0].Text)

	// The failed page falls back to its original text but keeps its slot.
	assert.Equal(t, "two", results[1].Text)
	assert.Equal(t, "two", results[1].Original)
	assert.Error(t, results[1].Err)
	assert.Equal(t, "ar", results[1].DetectedSource)

	assert.Equal(t, "translated:three", results[2].Text)
}

func TestPagesSkipsWhitespaceOnlyPages(t *testing.T) {
	backend := &fakeBackend{}
	logger := logging.NewLogger("test")

	results := Pages(context.Background(), backend, []string{"  \n\t ", "real"}, "en", "", logger)

	require.Len(t, results, 2)
	assert.Equal(t, "", results[0].Text)
	assert.Equal(t, "unknown", results[0].DetectedSource)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "translated:real", results[1].Text)
	assert.Equal(t, 1, backend.calls)
}

func TestPagesEmptyInput(t *testing.T) {
	backend := &fakeBackend{}
	logger := logging.NewLogger("test")

	results := Pages(context.Background(), backend, nil, "en", "", logger)

	assert.Empty(t, results)
	assert.Zero(t, backend.calls)
}

func TestTexts(t *testing.T) {
	results := []Result{
		{Text: "a"},
		{Text: "b"},
	}
	assert.Equal(t, []string{"a", "b"}, Texts(results))
}
