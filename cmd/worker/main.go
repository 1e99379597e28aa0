/**
 * ReadVision queue worker
 *
 * Long-running process that consumes document-processing tasks from a
 * Redis-backed queue. Run outcomes are recorded in the PostgreSQL run
 * ledger when DATABASE_URL is configured. The submit command enqueues a
 * task for an already-running worker.
 */

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/readvision/readvision/internal/config"
	"github.com/readvision/readvision/internal/logging"
	"github.com/readvision/readvision/internal/ocr"
	"github.com/readvision/readvision/internal/processor"
	"github.com/readvision/readvision/internal/queue"
	"github.com/readvision/readvision/internal/staging"
	"github.com/readvision/readvision/internal/storage"
	"github.com/readvision/readvision/internal/translate"
)

func main() {
	logger := logging.NewLogger("worker")

	if err := godotenv.Load(); err != nil {
		logger.Warn("no .env file found, using environment variables")
	}

	app := &cli.App{
		Name:  "readvision-worker",
		Usage: "queue worker for document OCR processing",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "start consuming tasks from the queue",
				Action: func(c *cli.Context) error {
					return serve(logger)
				},
			},
			{
				Name:      "submit",
				Usage:     "enqueue one document-processing task",
				ArgsUsage: "input_document_path output_text_path",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "text-direction",
						Value: string(config.DefaultTextDirection),
						Usage: "text direction: ltr or rtl",
					},
					&cli.StringFlag{
						Name:  "language-hint",
						Value: config.DefaultLanguageHint,
						Usage: "language hint for OCR processing",
					},
					&cli.StringFlag{
						Name:  "translate-to",
						Usage: "target language code for translation",
					},
					&cli.StringFlag{
						Name:  "translate-from",
						Usage: "source language code for translation",
					},
				},
				Action: func(c *cli.Context) error {
					return submit(c, logger)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serve(logger *logging.Logger) error {
	cfg, err := config.LoadWorkerConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()

	if err := queue.CheckRedis(ctx, cfg.RedisURL); err != nil {
		return err
	}

	ledger, err := openLedger(cfg, logger)
	if err != nil {
		return err
	}
	if ledger != nil {
		defer ledger.Close()
	}

	backend, err := ocr.NewVisionBackend(ctx, cfg.CredentialsPath, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	store, err := staging.NewStore(ctx, cfg.CredentialsPath, cfg.BucketName, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	translator, err := translate.NewGoogleBackend(ctx, cfg.CredentialsPath, logger)
	if err != nil {
		return err
	}
	defer translator.Close()

	proc, err := processor.NewProcessor(&processor.ProcessorConfig{
		Backend:    backend,
		Local:      ocr.NewTesseractBackend(logger),
		Staging:    store,
		Translator: translator,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	consumer, err := queue.NewConsumer(&queue.ConsumerConfig{
		RedisURL:          cfg.RedisURL,
		QueueName:         cfg.QueueName,
		Concurrency:       cfg.Concurrency,
		ProcessingTimeout: cfg.ProcessingTimeout,
		Processor:         proc,
		Ledger:            ledger,
		Logger:            logger,
	})
	if err != nil {
		return err
	}

	if err := consumer.Start(); err != nil {
		return err
	}

	logger.Info("worker started",
		"queue", cfg.QueueName,
		"concurrency", cfg.Concurrency,
		"ledger", ledger != nil)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logger.Info("shutting down", "signal", sig.String())
	consumer.Stop()
	logger.Info("worker stopped")
	return nil
}

func submit(c *cli.Context, logger *logging.Logger) error {
	if c.NArg() != 2 {
		return fmt.Errorf("input and output paths are required")
	}

	cfg, err := config.LoadWorkerConfig()
	if err != nil {
		return err
	}

	procCfg := config.DefaultProcessingConfig()
	procCfg.CredentialsPath = cfg.CredentialsPath
	procCfg.BucketName = cfg.BucketName
	procCfg.TextDirection = config.TextDirection(c.String("text-direction"))
	procCfg.LanguageHint = c.String("language-hint")
	procCfg.TranslateTo = c.String("translate-to")
	procCfg.TranslateFrom = c.String("translate-from")
	if err := procCfg.Validate(); err != nil {
		return err
	}

	ledger, err := openLedger(cfg, logger)
	if err != nil {
		return err
	}
	if ledger != nil {
		defer ledger.Close()
	}

	enqueuer, err := queue.NewEnqueuer(cfg.RedisURL, cfg.QueueName, ledger, logger)
	if err != nil {
		return err
	}
	defer enqueuer.Close()

	runID, err := enqueuer.Enqueue(context.Background(), &queue.TaskPayload{
		RunID:      uuid.NewString(),
		InputPath:  c.Args().Get(0),
		OutputPath: c.Args().Get(1),
		Config:     procCfg,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Submitted run %s\n", runID)
	return nil
}

func openLedger(cfg *config.WorkerConfig, logger *logging.Logger) (*storage.RunLedger, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, run ledger disabled")
		return nil, nil
	}
	ledger, err := storage.NewRunLedger(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return ledger, nil
}
