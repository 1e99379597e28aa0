/**
 * Translation pass over reconciled pages
 *
 * Orchestration only: the Google Cloud Translation backend does the work.
 * A per-page failure never aborts the batch; the page falls back to its
 * original text with an error marker, and alignment between the original
 * and translated sequences is preserved exactly.
 */

package translate

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"

	"github.com/readvision/readvision/internal/logging"
)

// Result is the translation outcome for one page
type Result struct {
	// Text is the translated page text, or the original text when the page
	// failed to translate.
	Text string

	// DetectedSource is the source language reported by the backend, or the
	// caller-supplied source when detection was skipped.
	DetectedSource string

	// Original is the untranslated input text.
	Original string

	// Err marks a per-page failure for diagnostics. The page still carries
	// usable text (the original) when set.
	Err error
}

// Backend is the external translation capability
type Backend interface {
	Translate(ctx context.Context, text, targetLanguage, sourceLanguage string) (translated, detectedSource string, err error)
}

// GoogleBackend implements Backend over the Cloud Translation API
type GoogleBackend struct {
	client *translate.Client
	logger *logging.Logger
}

// NewGoogleBackend creates a translation backend from a credentials file
func NewGoogleBackend(ctx context.Context, credentialsPath string, logger *logging.Logger) (*GoogleBackend, error) {
	client, err := translate.NewClient(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create translate client: %w", err)
	}

	return &GoogleBackend{
		client: client,
		logger: logger,
	}, nil
}

// Translate translates one text. An empty sourceLanguage lets the backend
// auto-detect the source.
func (g *GoogleBackend) Translate(ctx context.Context, text, targetLanguage, sourceLanguage string) (string, string, error) {
	target, err := language.Parse(targetLanguage)
	if err != nil {
		return "", "", fmt.Errorf("invalid target language %q: %w", targetLanguage, err)
	}

	opts := &translate.Options{Format: translate.Text}
	if sourceLanguage != "" {
		source, err := language.Parse(sourceLanguage)
		if err != nil {
			return "", "", fmt.Errorf("invalid source language %q: %w", sourceLanguage, err)
		}
		opts.Source = source
	}

	translations, err := g.client.Translate(ctx, []string{text}, target, opts)
	if err != nil {
		return "", "", fmt.Errorf("translation failed: %w", err)
	}

	if len(translations) == 0 {
		return "", "", fmt.Errorf("backend returned no translations")
	}

	detected := sourceLanguage
	if translations[0].Source != (language.Tag{}) {
		detected = translations[0].Source.String()
	}

	return translations[0].Text, detected, nil
}

// DetectLanguage reports the most likely language of a text and the
// backend's confidence in that call.
func (g *GoogleBackend) DetectLanguage(ctx context.Context, text string) (string, float64, error) {
	detections, err := g.client.DetectLanguage(ctx, []string{text})
	if err != nil {
		return "", 0, fmt.Errorf("language detection failed: %w", err)
	}

	if len(detections) == 0 || len(detections[0]) == 0 {
		return "", 0, fmt.Errorf("backend returned no detections")
	}

	best := detections[0][0]
	return best.Language.String(), best.Confidence, nil
}

// Close releases the underlying client
func (g *GoogleBackend) Close() error {
	return g.client.Close()
}

// Pages translates each page in order. The returned slice always has the
// same length as the input, positionally aligned with it.
func Pages(ctx context.Context, backend Backend, pages []string, targetLanguage, sourceLanguage string, logger *logging.Logger) []Result {
	results := make([]Result, len(pages))

	for i, text := range pages {
		logger.Info("translating page", "page", i+1, "total", len(pages))

		if strings.TrimSpace(text) == "" {
			results[i] = Result{
				Text:           "",
				DetectedSource: fallbackSource(sourceLanguage),
				Original:       text,
			}
			continue
		}

		translated, detected, err := backend.Translate(ctx, text, targetLanguage, sourceLanguage)
		if err != nil {
			logger.Warn("failed to translate page, keeping original text", "page", i+1, "error", err)
			results[i] = Result{
				Text:           text,
				DetectedSource: fallbackSource(sourceLanguage),
				Original:       text,
				Err:            err,
			}
			continue
		}

		results[i] = Result{
			Text:           translated,
			DetectedSource: detected,
			Original:       text,
		}
	}

	return results
}

func fallbackSource(sourceLanguage string) string {
	if sourceLanguage == "" {
		return "unknown"
	}
	return sourceLanguage
}

// Texts returns the translated page texts in order
func Texts(results []Result) []string {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	return texts
}
