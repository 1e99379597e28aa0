package textclean

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "collapses whitespace runs",
			input: "Hello    world!   Test.",
			want:  "Hello world! Test.",
		},
		{
			name:  "newlines collapse into spaces",
			input: "line one\nline two\n\nline three",
			want:  "line one line two line three",
		},
		{
			name:  "pipe misread becomes capital I",
			input: "|t was |mportant",
			want:  "It was Important",
		},
		{
			name:  "fused words split at case transition",
			input: "helloWorld",
			want:  "hello World",
		},
		{
			name:  "space before punctuation removed",
			input: "wait , what ?",
			want:  "wait, what?",
		},
		{
			name:  "space inserted after punctuation",
			input: "First.Second,third",
			want:  "First. Second, third",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  padded  ",
			want:  "padded",
		},
		{
			name:  "empty input stays empty",
			input: "",
			want:  "",
		},
		{
			name:  "arabic text passes through",
			input: "مرحبا   بالعالم",
			want:  "مرحبا بالعالم",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Clean(tc.input))
		})
	}
}

func TestCleanDropsNonPrintable(t *testing.T) {
	assert.Equal(t, "ab", Clean("a\x00\x07b"))
}

func TestCleanIsIdempotent(t *testing.T) {
	inputs := []string{
		"Hello    world!   Test.",
		"First.Second,third",
		"|t was helloWorld  , yes",
		"مرحبا   بالعالم .",
	}

	for _, input := range inputs {
		once := Clean(input)
		assert.Equal(t, once, Clean(once), "input %q", input)
	}
}
