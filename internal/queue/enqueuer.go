package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/readvision/readvision/internal/logging"
	"github.com/readvision/readvision/internal/storage"
)

// Enqueuer submits processing tasks to the Redis queue
type Enqueuer struct {
	client *asynq.Client
	queue  string
	ledger *storage.RunLedger
	logger *logging.Logger
}

// NewEnqueuer creates a task submitter. The ledger is optional; when
// present, submitted runs are recorded as queued.
func NewEnqueuer(redisURL, queueName string, ledger *storage.RunLedger, logger *logging.Logger) (*Enqueuer, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("RedisURL is required")
	}

	if queueName == "" {
		return nil, fmt.Errorf("QueueName is required")
	}

	redisOpt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	return &Enqueuer{
		client: asynq.NewClient(redisOpt),
		queue:  queueName,
		ledger: ledger,
		logger: logger,
	}, nil
}

// Enqueue submits one processing task and returns its run ID
func (e *Enqueuer) Enqueue(ctx context.Context, payload *TaskPayload) (string, error) {
	if payload.RunID == "" {
		return "", fmt.Errorf("run ID is required")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TaskTypeProcess, body)
	if _, err := e.client.EnqueueContext(ctx, task, asynq.Queue(e.queue)); err != nil {
		return "", fmt.Errorf("failed to enqueue task: %w", err)
	}

	if e.ledger != nil {
		record := &storage.RunRecord{
			RunID:      payload.RunID,
			Status:     storage.StatusQueued,
			InputPath:  payload.InputPath,
			OutputPath: payload.OutputPath,
		}
		if err := e.ledger.RecordStatus(ctx, record); err != nil {
			e.logger.Warn("failed to record queued run", "run_id", payload.RunID, "error", err)
		}
	}

	e.logger.Info("task enqueued", "run_id", payload.RunID, "input", payload.InputPath)
	return payload.RunID, nil
}

// Close releases the queue client
func (e *Enqueuer) Close() error {
	return e.client.Close()
}
