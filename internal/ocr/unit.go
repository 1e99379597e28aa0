package ocr

// RawPageUnit is the transport-neutral result of recognizing one logical
// page. Both the synchronous protocol path and the asynchronous JSON path
// converge into this type at the adapter boundary, so downstream stages
// never branch on transport origin.
type RawPageUnit struct {
	// PageNumber is the backend-reported page number hint. Valid only when
	// HasNumber is true; the reconciler assigns an arrival-position fallback
	// otherwise.
	PageNumber int
	HasNumber  bool

	// Text is the raw recognized content. May be empty.
	Text string
}
