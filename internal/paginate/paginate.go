// Package paginate decides how a document is dispatched to the recognition
// backend and how flat legacy text is re-chunked into output pages.
package paginate

import "strings"

// Strategy selects the recognition dispatch path
type Strategy int

const (
	// Synchronous sends inline document bytes in a single call. Suitable for
	// small documents that fit within the backend's payload and time limits.
	Synchronous Strategy = iota

	// Asynchronous stages the document through object storage and runs a
	// long-running batch operation, avoiding request-size and timeout limits.
	Asynchronous
)

func (s Strategy) String() string {
	if s == Synchronous {
		return "synchronous"
	}
	return "asynchronous"
}

// ChooseStrategy picks the dispatch strategy from the document page count.
// Documents at or below the limit fit a single synchronous call.
func ChooseStrategy(pageCount, syncPageLimit int) Strategy {
	if pageCount <= syncPageLimit {
		return Synchronous
	}
	return Asynchronous
}

// PlanLegacyChunks splits flat text lacking page boundaries into page-sized
// chunks. Paragraphs (double-newline separated) are accumulated greedily; a
// chunk closes only once it is non-empty, so a single paragraph longer than
// the limit is kept whole in its own chunk, never split mid-paragraph.
//
// This is a fallback for pre-extracted flat text; it must not be used when
// true page-level results exist.
func PlanLegacyChunks(text string, charsPerPage int) []string {
	var chunks []string
	var current []string
	currentChars := 0

	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		if currentChars+len([]rune(paragraph)) > charsPerPage && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n\n"))
			current = []string{paragraph}
			currentChars = len([]rune(paragraph))
			continue
		}

		current = append(current, paragraph)
		currentChars += len([]rune(paragraph))
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n\n"))
	}

	return chunks
}
