/**
 * Local Tesseract recognition backend
 *
 * Offline fallback for single-image inputs. The image is recognized as one
 * logical page and flows through the same reconciliation pipeline as the
 * Vision paths.
 */

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/readvision/readvision/internal/logging"
)

// TesseractBackend performs OCR locally through Tesseract
type TesseractBackend struct {
	logger *logging.Logger
}

// NewTesseractBackend creates a local Tesseract backend
func NewTesseractBackend(logger *logging.Logger) *TesseractBackend {
	return &TesseractBackend{logger: logger}
}

// tesseractLanguages maps common locale hints to Tesseract traineddata names
var tesseractLanguages = map[string]string{
	"ar": "ara",
	"en": "eng",
	"fr": "fra",
	"de": "deu",
	"es": "spa",
	"ru": "rus",
	"he": "heb",
	"fa": "fas",
	"tr": "tur",
}

// RecognizeImage runs OCR on inline image bytes and returns a single raw
// page unit numbered 1.
func (t *TesseractBackend) RecognizeImage(ctx context.Context, content []byte, languageHint string) ([]RawPageUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if lang, ok := tesseractLanguages[languageHint]; ok {
		if err := client.SetLanguage(lang); err != nil {
			return nil, fmt.Errorf("failed to set language %q: %w", lang, err)
		}
	}

	if err := client.SetImageFromBytes(content); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("tesseract recognition failed: %w", err)
	}

	t.logger.Debug("local recognition complete", "chars", len(text))

	return []RawPageUnit{
		{PageNumber: 1, HasNumber: true, Text: text},
	}, nil
}
