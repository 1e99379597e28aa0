package ocr

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The asynchronous path delivers results as JSON-serialized
// AnnotateFileResponse objects. Only the fields the pipeline consumes are
// decoded; everything else in the payload is ignored.

type annotateFileResult struct {
	Responses []annotateImageResult `json:"responses"`
}

type annotateImageResult struct {
	FullTextAnnotation *fullTextAnnotation `json:"fullTextAnnotation"`
	Context            *annotationContext  `json:"context"`
}

type fullTextAnnotation struct {
	Text string `json:"text"`
}

type annotationContext struct {
	PageNumber int `json:"pageNumber"`
}

// IsResultObject reports whether a staged object name holds a result batch
func IsResultObject(name string) bool {
	return strings.HasSuffix(name, ".json")
}

// DecodeResultObject extracts raw page units from one result object. Pages
// without recognized text are skipped; a page number of zero means the
// backend supplied no hint.
func DecodeResultObject(data []byte) ([]RawPageUnit, error) {
	var result annotateFileResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode result object: %w", err)
	}

	var units []RawPageUnit
	for _, page := range result.Responses {
		if page.FullTextAnnotation == nil {
			continue
		}

		unit := RawPageUnit{Text: page.FullTextAnnotation.Text}
		if page.Context != nil && page.Context.PageNumber > 0 {
			unit.PageNumber = page.Context.PageNumber
			unit.HasNumber = true
		}
		units = append(units, unit)
	}

	return units, nil
}
