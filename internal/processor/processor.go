/**
 * Document processing pipeline
 *
 * Orchestrates one document run: dispatch strategy selection, recognition,
 * page-order reconciliation, text cleanup, optional translation, and output
 * emission. Each run owns an immutable ProcessingConfig value; the processor
 * itself holds no per-run state, so independent runs can execute in
 * parallel.
 */

package processor

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/readvision/readvision/internal/config"
	"github.com/readvision/readvision/internal/docwriter"
	rverr "github.com/readvision/readvision/internal/errors"
	"github.com/readvision/readvision/internal/logging"
	"github.com/readvision/readvision/internal/ocr"
	"github.com/readvision/readvision/internal/output"
	"github.com/readvision/readvision/internal/paginate"
	"github.com/readvision/readvision/internal/reconcile"
	"github.com/readvision/readvision/internal/staging"
	"github.com/readvision/readvision/internal/textclean"
	"github.com/readvision/readvision/internal/translate"
)

// Backend is the remote recognition capability consumed by the pipeline
type Backend interface {
	RecognizeSync(ctx context.Context, content []byte, languageHint string) ([]ocr.RawPageUnit, error)
	RecognizeBatch(ctx context.Context, sourceURI, destinationURI, languageHint string, batchSize int32, timeout time.Duration) error
}

// ImageRecognizer is the local single-image recognition capability
type ImageRecognizer interface {
	RecognizeImage(ctx context.Context, content []byte, languageHint string) ([]ocr.RawPageUnit, error)
}

// StagingStore is the object staging capability used by the batch path
type StagingStore interface {
	Bucket() string
	URI(objectName string) string
	PutFile(ctx context.Context, objectName, localPath string) (string, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Get(ctx context.Context, objectName string) ([]byte, error)
}

// ProcessorConfig holds pipeline collaborators
type ProcessorConfig struct {
	Backend    Backend
	Local      ImageRecognizer
	Staging    StagingStore
	Translator translate.Backend
	Logger     *logging.Logger
}

// Processor runs the document pipeline
type Processor struct {
	backend    Backend
	local      ImageRecognizer
	staging    StagingStore
	translator translate.Backend
	logger     *logging.Logger

	// pageCount is swappable for tests; defaults to pdfcpu.
	pageCount func(path string) (int, error)
}

// NewProcessor creates a document processor
func NewProcessor(cfg *ProcessorConfig) (*Processor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Processor{
		backend:    cfg.Backend,
		local:      cfg.Local,
		staging:    cfg.Staging,
		translator: cfg.Translator,
		logger:     cfg.Logger,
		pageCount:  api.PageCountFile,
	}, nil
}

// ProcessRequest describes one document run
type ProcessRequest struct {
	// RunID namespaces staged objects; assigned when empty.
	RunID      string
	InputPath  string
	OutputPath string
	Config     config.ProcessingConfig
}

// ProcessResult summarizes one completed run
type ProcessResult struct {
	RunID          string
	Strategy       paginate.Strategy
	SourcePages    int
	PagesProcessed int

	// Reconciliation diagnostics; non-fatal.
	Duplicates []int
	Missing    []int

	TextPath string
	DocxPath string

	TranslatedTextPath string
	TranslatedDocxPath string
	TranslationErrors  int
	DetectedSource     string

	// StagingBucket is set when the run staged objects; the caller owns
	// cleanup of the run namespace.
	StagingBucket string

	Duration time.Duration
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
}

// ProcessDocument runs the full pipeline for one document
func (p *Processor) ProcessDocument(ctx context.Context, req *ProcessRequest) (*ProcessResult, error) {
	started := time.Now()

	if req == nil {
		return nil, fmt.Errorf("request is required")
	}

	cfg := req.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid processing config: %w", err)
	}

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := p.logger.WithRun(runID)

	if _, err := os.Stat(req.InputPath); err != nil {
		return nil, rverr.NewInputMissingError(req.InputPath)
	}

	ext := strings.ToLower(filepath.Ext(req.InputPath))

	// Flat pre-extracted text has no page boundaries; it takes the legacy
	// chars-per-page path and never touches a backend.
	if ext == ".txt" {
		return p.processFlatText(runID, req, started)
	}

	var (
		units       []ocr.RawPageUnit
		sourcePages int
		strategy    = paginate.Synchronous
	)

	switch {
	case ext == ".pdf":
		if _, err := os.Stat(cfg.CredentialsPath); err != nil {
			return nil, rverr.NewCredentialsMissingError(cfg.CredentialsPath)
		}
		if p.backend == nil {
			return nil, fmt.Errorf("recognition backend is required for PDF input")
		}

		pages, err := p.pageCount(req.InputPath)
		if err != nil {
			return nil, rverr.NewRecognitionFailedError(runID, "page-count", err)
		}
		sourcePages = pages
		logger.Info("document opened", "pages", pages)

		strategy = paginate.ChooseStrategy(pages, cfg.SyncPageLimit)
		logger.Info("dispatch strategy selected", "strategy", strategy.String())

		if strategy == paginate.Synchronous {
			units, err = p.recognizeSync(ctx, req.InputPath, cfg, runID)
		} else {
			units, err = p.recognizeBatch(ctx, req.InputPath, cfg, runID, logger)
		}
		if err != nil {
			return nil, err
		}

	case imageExtensions[ext]:
		if p.local == nil {
			return nil, fmt.Errorf("local recognizer is required for image input")
		}

		content, err := os.ReadFile(req.InputPath)
		if err != nil {
			return nil, rverr.NewRecognitionFailedError(runID, "local", err)
		}

		sourcePages = 1
		units, err = p.local.RecognizeImage(ctx, content, cfg.LanguageHint)
		if err != nil {
			return nil, rverr.NewRecognitionFailedError(runID, "local", err)
		}

	default:
		return nil, rverr.NewUnsupportedFormatError(runID, ext)
	}

	doc := reconcile.Reconcile(units)
	p.reportAnomalies(doc, cfg, logger)

	result := &ProcessResult{
		RunID:          runID,
		Strategy:       strategy,
		SourcePages:    sourcePages,
		PagesProcessed: len(doc.Pages),
		Duplicates:     doc.Duplicates,
		Missing:        doc.Missing,
	}
	if strategy == paginate.Asynchronous && p.staging != nil {
		result.StagingBucket = p.staging.Bucket()
	}

	if err := p.emit(ctx, req, cfg, doc, result, logger); err != nil {
		return nil, err
	}

	result.Duration = time.Since(started)
	logger.Info("processing complete",
		"pages", result.PagesProcessed,
		"strategy", strategy.String(),
		"duration", result.Duration)

	return result, nil
}

func (p *Processor) recognizeSync(ctx context.Context, inputPath string, cfg config.ProcessingConfig, runID string) ([]ocr.RawPageUnit, error) {
	content, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, rverr.NewRecognitionFailedError(runID, "synchronous", err)
	}

	units, err := p.backend.RecognizeSync(ctx, content, cfg.LanguageHint)
	if err != nil {
		return nil, rverr.NewRecognitionFailedError(runID, "synchronous", err)
	}

	return units, nil
}

func (p *Processor) recognizeBatch(ctx context.Context, inputPath string, cfg config.ProcessingConfig, runID string, logger *logging.Logger) ([]ocr.RawPageUnit, error) {
	if p.staging == nil {
		return nil, fmt.Errorf("staging store is required for asynchronous processing")
	}

	inputObject := staging.InputObject(runID, filepath.Base(inputPath))
	sourceURI, err := p.staging.PutFile(ctx, inputObject, inputPath)
	if err != nil {
		return nil, rverr.NewStagingFailedError(runID, "upload input", err)
	}

	outputPrefix := staging.OutputPrefix(runID)
	destinationURI := p.staging.URI(outputPrefix)

	logger.Info("waiting for recognition operation", "timeout", cfg.OperationTimeout)
	err = p.backend.RecognizeBatch(ctx, sourceURI, destinationURI, cfg.LanguageHint, config.DefaultResultBatchSize, cfg.OperationTimeout)
	if err != nil {
		if isTimeout(err) {
			return nil, rverr.NewOperationTimeoutError(runID, cfg.OperationTimeout, err)
		}
		return nil, rverr.NewRecognitionFailedError(runID, "asynchronous", err)
	}

	// Result objects are sorted by name before extraction; listing order is
	// not a page-order guarantee.
	names, err := p.staging.List(ctx, outputPrefix)
	if err != nil {
		return nil, rverr.NewStagingFailedError(runID, "list results", err)
	}

	var units []ocr.RawPageUnit
	for _, name := range names {
		if !ocr.IsResultObject(name) {
			continue
		}

		data, err := p.staging.Get(ctx, name)
		if err != nil {
			return nil, rverr.NewStagingFailedError(runID, "download result", err)
		}

		decoded, err := ocr.DecodeResultObject(data)
		if err != nil {
			return nil, rverr.NewRecognitionFailedError(runID, "asynchronous", err)
		}
		units = append(units, decoded...)
	}

	logger.Info("batch results retrieved", "objects", len(names), "units", len(units))
	return units, nil
}

func isTimeout(err error) bool {
	return stderrors.Is(err, ocr.ErrOperationTimeout) || stderrors.Is(err, context.DeadlineExceeded)
}

func (p *Processor) reportAnomalies(doc *reconcile.Document, cfg config.ProcessingConfig, logger *logging.Logger) {
	if len(doc.Duplicates) > 0 {
		logger.Warn("duplicate page numbers found", "pages", doc.Duplicates)
	}
	if len(doc.Missing) > 0 {
		logger.Warn("missing page numbers", "pages", doc.Missing)
	}
	if cfg.Debug {
		doc.DebugPageOrder(logger)
	}
}

// emit writes the text and docx artifacts, plus their translated
// counterparts when a target language is configured.
func (p *Processor) emit(ctx context.Context, req *ProcessRequest, cfg config.ProcessingConfig, doc *reconcile.Document, result *ProcessResult, logger *logging.Logger) error {
	pageTexts := doc.Texts()
	pageNumbers := doc.PageNumbers()

	cleaned := make([]string, len(pageTexts))
	for i, text := range pageTexts {
		cleaned[i] = textclean.Clean(text)
	}

	if err := output.WriteText(req.OutputPath, cleaned, cfg.Encoding); err != nil {
		return rverr.NewOutputFailedError(result.RunID, req.OutputPath, err)
	}
	result.TextPath = req.OutputPath

	docxPath := docwriter.DocxPath(req.OutputPath)
	writer := docwriter.New(cfg.TextDirection)
	if err := writer.WritePagedDocument(docxPath, pageTexts, pageNumbers); err != nil {
		return rverr.NewOutputFailedError(result.RunID, docxPath, err)
	}
	result.DocxPath = docxPath
	logger.Info("output written", "text", req.OutputPath, "docx", docxPath)

	if cfg.TranslateTo == "" {
		return nil
	}

	if p.translator == nil {
		return fmt.Errorf("translation backend is required for translate-to=%s", cfg.TranslateTo)
	}

	logger.Info("starting translation", "target", cfg.TranslateTo)
	translations := translate.Pages(ctx, p.translator, pageTexts, cfg.TranslateTo, cfg.TranslateFrom, logger)

	translatedTexts := translate.Texts(translations)
	translatedCleaned := make([]string, len(translatedTexts))
	for i, text := range translatedTexts {
		translatedCleaned[i] = textclean.Clean(text)
	}
	for _, t := range translations {
		if t.Err != nil {
			result.TranslationErrors++
		}
	}
	if len(translations) > 0 {
		result.DetectedSource = translations[0].DetectedSource
	}

	translatedTextPath := output.TranslatedPath(req.OutputPath, cfg.TranslateTo)
	if err := output.WriteText(translatedTextPath, translatedCleaned, cfg.Encoding); err != nil {
		return rverr.NewOutputFailedError(result.RunID, translatedTextPath, err)
	}
	result.TranslatedTextPath = translatedTextPath

	translatedDocxPath := docwriter.DocxPath(translatedTextPath)
	if err := writer.WritePagedDocument(translatedDocxPath, translatedTexts, pageNumbers); err != nil {
		return rverr.NewOutputFailedError(result.RunID, translatedDocxPath, err)
	}
	result.TranslatedDocxPath = translatedDocxPath

	logger.Info("translation complete",
		"target", cfg.TranslateTo,
		"detected_source", result.DetectedSource,
		"failed_pages", result.TranslationErrors)

	return nil
}

// processFlatText re-chunks flat text into fixed-size character pages. No
// backend is involved.
func (p *Processor) processFlatText(runID string, req *ProcessRequest, started time.Time) (*ProcessResult, error) {
	cfg := req.Config
	logger := p.logger.WithRun(runID)

	raw, err := os.ReadFile(req.InputPath)
	if err != nil {
		return nil, rverr.NewInputMissingError(req.InputPath)
	}

	// Chunk before cleaning: the cleaner collapses the blank-line paragraph
	// boundaries the chunker splits on.
	chunks := paginate.PlanLegacyChunks(string(raw), cfg.CharsPerPage)

	cleaned := make([]string, len(chunks))
	for i, chunk := range chunks {
		cleaned[i] = textclean.Clean(chunk)
	}

	if err := output.WriteText(req.OutputPath, cleaned, cfg.Encoding); err != nil {
		return nil, rverr.NewOutputFailedError(runID, req.OutputPath, err)
	}

	docxPath := docwriter.DocxPath(req.OutputPath)
	writer := docwriter.New(cfg.TextDirection)
	if err := writer.WriteLegacyDocument(docxPath, string(raw), cfg.CharsPerPage); err != nil {
		return nil, rverr.NewOutputFailedError(runID, docxPath, err)
	}

	logger.Info("legacy chunking complete", "chunks", len(chunks), "chars_per_page", cfg.CharsPerPage)

	return &ProcessResult{
		RunID:          runID,
		Strategy:       paginate.Synchronous,
		SourcePages:    1,
		PagesProcessed: len(chunks),
		TextPath:       req.OutputPath,
		DocxPath:       docxPath,
		Duration:       time.Since(started),
	}, nil
}
