/**
 * Google Cloud Vision recognition backend
 *
 * Small documents are sent inline through a single synchronous call; large
 * ones are staged in object storage and recognized by a long-running batch
 * operation whose results land as JSON objects under a staging prefix.
 */

package ocr

import (
	"context"
	"errors"
	"fmt"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"github.com/readvision/readvision/internal/logging"
)

const pdfMimeType = "application/pdf"

// VisionBackend wraps the Vision image annotator client
type VisionBackend struct {
	client *vision.ImageAnnotatorClient
	logger *logging.Logger
}

// NewVisionBackend creates a Vision backend from a credentials file
func NewVisionBackend(ctx context.Context, credentialsPath string, logger *logging.Logger) (*VisionBackend, error) {
	client, err := vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}

	return &VisionBackend{
		client: client,
		logger: logger,
	}, nil
}

// RecognizeSync performs document text detection on inline PDF bytes and
// returns one raw page unit per detected page.
func (b *VisionBackend) RecognizeSync(ctx context.Context, content []byte, languageHint string) ([]RawPageUnit, error) {
	req := &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  content,
					MimeType: pdfMimeType,
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
				ImageContext: &visionpb.ImageContext{
					LanguageHints: []string{languageHint},
				},
			},
		},
	}

	resp, err := b.client.BatchAnnotateFiles(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("batch annotate failed: %w", err)
	}

	if len(resp.Responses) == 0 {
		return nil, fmt.Errorf("backend returned no file responses")
	}

	var units []RawPageUnit
	for _, page := range resp.Responses[0].Responses {
		if page.FullTextAnnotation == nil {
			continue
		}

		unit := RawPageUnit{Text: page.FullTextAnnotation.Text}
		if page.Context != nil && page.Context.PageNumber > 0 {
			unit.PageNumber = int(page.Context.PageNumber)
			unit.HasNumber = true
		}
		units = append(units, unit)
	}

	b.logger.Debug("synchronous recognition complete", "units", len(units))
	return units, nil
}

// Operation is a handle on a running asynchronous recognition batch
type Operation struct {
	op *vision.AsyncBatchAnnotateFilesOperation
}

// RecognizeAsync starts a long-running recognition of a staged document.
// Result objects are written under destinationURI by the backend.
func (b *VisionBackend) RecognizeAsync(ctx context.Context, sourceURI, destinationURI, languageHint string, batchSize int32) (*Operation, error) {
	req := &visionpb.AsyncBatchAnnotateFilesRequest{
		Requests: []*visionpb.AsyncAnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					GcsSource: &visionpb.GcsSource{Uri: sourceURI},
					MimeType:  pdfMimeType,
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
				OutputConfig: &visionpb.OutputConfig{
					GcsDestination: &visionpb.GcsDestination{Uri: destinationURI},
					BatchSize:      batchSize,
				},
				ImageContext: &visionpb.ImageContext{
					LanguageHints: []string{languageHint},
				},
			},
		},
	}

	op, err := b.client.AsyncBatchAnnotateFiles(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to start async annotation: %w", err)
	}

	b.logger.Info("asynchronous recognition started", "source", sourceURI, "destination", destinationURI)
	return &Operation{op: op}, nil
}

// ErrOperationTimeout marks an asynchronous operation that did not finish
// within the bounded wait. Abandoning the wait does not stop the remote
// operation itself.
var ErrOperationTimeout = errors.New("recognition operation timed out")

// AwaitCompletion blocks until the operation finishes or the timeout
// elapses. Timeout is fatal for the run, never silently retried.
func (b *VisionBackend) AwaitCompletion(ctx context.Context, operation *Operation, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, err := operation.op.Wait(waitCtx); err != nil {
		if waitCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%w after %v", ErrOperationTimeout, timeout)
		}
		return fmt.Errorf("async annotation failed: %w", err)
	}

	return nil
}

// RecognizeBatch starts an asynchronous recognition and blocks until it
// completes or the timeout elapses. This is the pipeline's single
// suspension point.
func (b *VisionBackend) RecognizeBatch(ctx context.Context, sourceURI, destinationURI, languageHint string, batchSize int32, timeout time.Duration) error {
	operation, err := b.RecognizeAsync(ctx, sourceURI, destinationURI, languageHint, batchSize)
	if err != nil {
		return err
	}
	return b.AwaitCompletion(ctx, operation, timeout)
}

// Close releases the underlying client
func (b *VisionBackend) Close() error {
	return b.client.Close()
}
