/**
 * Queue consumer for worker mode
 *
 * Consumes document-processing tasks from a Redis-backed Asynq queue. Each
 * task is an independent pipeline run holding no shared mutable state, so
 * concurrency is bounded only by the configured worker count.
 */

package queue

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/readvision/readvision/internal/config"
	rverr "github.com/readvision/readvision/internal/errors"
	"github.com/readvision/readvision/internal/logging"
	"github.com/readvision/readvision/internal/processor"
	"github.com/readvision/readvision/internal/storage"
)

// TaskTypeProcess identifies document-processing tasks
const TaskTypeProcess = "ocr:process"

// TaskPayload is the JSON body of one processing task
type TaskPayload struct {
	RunID      string                  `json:"runId"`
	InputPath  string                  `json:"inputPath"`
	OutputPath string                  `json:"outputPath"`
	Config     config.ProcessingConfig `json:"config"`
}

// ConsumerConfig holds consumer configuration
type ConsumerConfig struct {
	RedisURL          string
	QueueName         string
	Concurrency       int
	ProcessingTimeout time.Duration
	Processor         *processor.Processor
	Ledger            *storage.RunLedger
	Logger            *logging.Logger
}

// Consumer handles task consumption from the Redis queue
type Consumer struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor *processor.Processor
	ledger    *storage.RunLedger
	logger    *logging.Logger
	cfg       *ConsumerConfig
}

// NewConsumer creates a new queue consumer
func NewConsumer(cfg *ConsumerConfig) (*Consumer, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("RedisURL is required")
	}

	if cfg.QueueName == "" {
		return nil, fmt.Errorf("QueueName is required")
	}

	if cfg.Processor == nil {
		return nil, fmt.Errorf("Processor is required")
	}

	if cfg.Logger == nil {
		return nil, fmt.Errorf("Logger is required")
	}

	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				cfg.QueueName: 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				cfg.Logger.Error("task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	consumer := &Consumer{
		server:    server,
		mux:       asynq.NewServeMux(),
		processor: cfg.Processor,
		ledger:    cfg.Ledger,
		logger:    cfg.Logger,
		cfg:       cfg,
	}
	consumer.mux.HandleFunc(TaskTypeProcess, consumer.handleProcess)

	return consumer, nil
}

// Start begins consuming tasks
func (c *Consumer) Start() error {
	if err := c.server.Start(c.mux); err != nil {
		return fmt.Errorf("failed to start queue server: %w", err)
	}
	return nil
}

// Stop shuts the consumer down gracefully
func (c *Consumer) Stop() {
	c.server.Shutdown()
}

func (c *Consumer) handleProcess(ctx context.Context, task *asynq.Task) error {
	var payload TaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	c.logger.Info("task received", "run_id", payload.RunID, "input", payload.InputPath)
	c.recordStatus(ctx, &storage.RunRecord{
		RunID:      payload.RunID,
		Status:     storage.StatusRunning,
		InputPath:  payload.InputPath,
		OutputPath: payload.OutputPath,
	})

	runCtx := ctx
	if c.cfg.ProcessingTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.cfg.ProcessingTimeout)
		defer cancel()
	}

	result, err := c.processor.ProcessDocument(runCtx, &processor.ProcessRequest{
		RunID:      payload.RunID,
		InputPath:  payload.InputPath,
		OutputPath: payload.OutputPath,
		Config:     payload.Config,
	})

	if err != nil {
		record := &storage.RunRecord{
			RunID:        payload.RunID,
			Status:       storage.StatusFailed,
			InputPath:    payload.InputPath,
			OutputPath:   payload.OutputPath,
			ErrorMessage: err.Error(),
		}
		var perr *rverr.ProcessingError
		if stderrors.As(err, &perr) {
			record.ErrorCode = string(perr.Code)
		}
		c.recordStatus(ctx, record)
		return err
	}

	c.recordStatus(ctx, &storage.RunRecord{
		RunID:          result.RunID,
		Status:         storage.StatusCompleted,
		InputPath:      payload.InputPath,
		OutputPath:     payload.OutputPath,
		Strategy:       result.Strategy.String(),
		SourcePages:    result.SourcePages,
		PagesProcessed: result.PagesProcessed,
		Duplicates:     result.Duplicates,
		Missing:        result.Missing,
		DurationMs:     result.Duration.Milliseconds(),
	})

	c.logger.Info("task completed", "run_id", result.RunID, "pages", result.PagesProcessed)
	return nil
}

func (c *Consumer) recordStatus(ctx context.Context, record *storage.RunRecord) {
	if c.ledger == nil {
		return
	}
	if err := c.ledger.RecordStatus(ctx, record); err != nil {
		c.logger.Warn("failed to record run status", "run_id", record.RunID, "status", record.Status, "error", err)
	}
}
