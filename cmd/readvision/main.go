/**
 * ReadVision CLI - single-document entry point
 *
 * Runs the full pipeline for one document: recognition, page-order
 * reconciliation, cleanup, optional translation, and text + Word output.
 * The staging namespace created for large documents is garbage-collected
 * after the run unless --keep-staging is set.
 */

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/readvision/readvision/internal/config"
	"github.com/readvision/readvision/internal/docwriter"
	"github.com/readvision/readvision/internal/logging"
	"github.com/readvision/readvision/internal/ocr"
	"github.com/readvision/readvision/internal/output"
	"github.com/readvision/readvision/internal/processor"
	"github.com/readvision/readvision/internal/staging"
	"github.com/readvision/readvision/internal/translate"
)

func main() {
	app := &cli.App{
		Name:      "readvision",
		Usage:     "OCR PDF processor that creates Word documents with page-by-page mapping",
		ArgsUsage: "input_document_path output_text_path",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "credentials",
				Aliases: []string{"c"},
				Value:   config.DefaultCredentialsPath,
				Usage:   "path to Google Cloud credentials JSON file",
			},
			&cli.StringFlag{
				Name:    "bucket",
				Aliases: []string{"b"},
				Usage:   "staging bucket name (a fresh temporary bucket is created when omitted)",
			},
			&cli.IntFlag{
				Name:  "chars-per-page",
				Value: config.DefaultCharsPerPage,
				Usage: "characters per page for legacy text-based splitting",
			},
			&cli.StringFlag{
				Name:    "text-direction",
				Aliases: []string{"d"},
				Value:   string(config.DefaultTextDirection),
				Usage:   "text direction: ltr or rtl",
			},
			&cli.StringFlag{
				Name:    "encoding",
				Aliases: []string{"e"},
				Value:   config.DefaultEncoding,
				Usage:   "text file encoding",
			},
			&cli.StringFlag{
				Name:  "language-hint",
				Value: config.DefaultLanguageHint,
				Usage: "language hint for OCR processing",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug output for page ordering",
			},
			&cli.StringFlag{
				Name:  "translate-to",
				Usage: "target language code for translation",
			},
			&cli.StringFlag{
				Name:  "translate-from",
				Usage: "source language code for translation (auto-detect when omitted)",
			},
			&cli.BoolFlag{
				Name:  "keep-staging",
				Usage: "leave staged objects in place after the run",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 2 {
		cli.ShowAppHelp(c)
		return fmt.Errorf("input and output paths are required")
	}

	inputPath := c.Args().Get(0)
	outputPath := c.Args().Get(1)

	cfg := config.DefaultProcessingConfig()
	cfg.CredentialsPath = c.String("credentials")
	cfg.BucketName = c.String("bucket")
	cfg.CharsPerPage = c.Int("chars-per-page")
	cfg.TextDirection = config.TextDirection(c.String("text-direction"))
	cfg.Encoding = c.String("encoding")
	cfg.LanguageHint = c.String("language-hint")
	cfg.Debug = c.Bool("debug")
	cfg.TranslateTo = c.String("translate-to")
	cfg.TranslateFrom = c.String("translate-from")
	cfg.KeepStaging = c.Bool("keep-staging")

	if err := cfg.Validate(); err != nil {
		return err
	}

	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("input document not found: %s", inputPath)
	}

	if _, err := os.Stat(cfg.CredentialsPath); err != nil {
		return fmt.Errorf("credentials file not found: %s", cfg.CredentialsPath)
	}

	logger := logging.NewLogger("readvision")
	logger.SetDebug(cfg.Debug)

	logger.Info("processing document",
		"input", inputPath,
		"output", outputPath,
		"docx", docwriter.DocxPath(outputPath),
		"direction", strings.ToUpper(string(cfg.TextDirection)),
		"encoding", cfg.Encoding,
		"language_hint", cfg.LanguageHint)

	ctx := context.Background()
	runID := uuid.NewString()

	procCfg := &processor.ProcessorConfig{Logger: logger}

	var store *staging.Store
	ext := strings.ToLower(filepath.Ext(inputPath))
	switch {
	case ext == ".pdf":
		backend, err := ocr.NewVisionBackend(ctx, cfg.CredentialsPath, logger)
		if err != nil {
			return err
		}
		defer backend.Close()
		procCfg.Backend = backend

		store, err = staging.NewStore(ctx, cfg.CredentialsPath, cfg.BucketName, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		procCfg.Staging = store

	case ext == ".txt":
		// Legacy flat-text path; no backend involved.

	default:
		procCfg.Local = ocr.NewTesseractBackend(logger)
	}

	if cfg.TranslateTo != "" {
		translator, err := translate.NewGoogleBackend(ctx, cfg.CredentialsPath, logger)
		if err != nil {
			return err
		}
		defer translator.Close()
		procCfg.Translator = translator
	}

	proc, err := processor.NewProcessor(procCfg)
	if err != nil {
		return err
	}

	// Staged objects belong to the caller: collect the run namespace on the
	// way out, success or failure, unless asked to keep it.
	if store != nil && !cfg.KeepStaging {
		defer func() {
			if err := store.CleanupRun(ctx, runID); err != nil {
				logger.Warn("staging cleanup failed", "run_id", runID, "error", err)
			}
		}()
	}

	result, err := proc.ProcessDocument(ctx, &processor.ProcessRequest{
		RunID:      runID,
		InputPath:  inputPath,
		OutputPath: outputPath,
		Config:     cfg,
	})
	if err != nil {
		return err
	}

	printSummary(result, cfg)
	return nil
}

func printSummary(result *processor.ProcessResult, cfg config.ProcessingConfig) {
	sample, err := output.ReadTextSample(result.TextPath, cfg.Encoding, 500)
	if err == nil {
		fmt.Println("\nSample of extracted text:")
		fmt.Println(strings.Repeat("-", 50))
		fmt.Println(sample)
		fmt.Println(strings.Repeat("-", 50))
	}

	fmt.Printf("\nWord document created: %s\n", result.DocxPath)
	fmt.Println("Each page of the input maps to a page in the Word document.")

	if result.TranslatedTextPath != "" {
		fmt.Printf("Translated files: %s, %s\n", result.TranslatedTextPath, result.TranslatedDocxPath)
		fmt.Printf("Detected source language: %s\n", result.DetectedSource)
	}
}
