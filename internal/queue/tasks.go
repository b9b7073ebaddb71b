package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"university-faq-assistant/services"
)

const TaskIngestCorpus = "ingest:run"

// IngestPayload carries one ingestion run request.
type IngestPayload struct {
	RunID   string `json:"run_id"`
	Trigger string `json:"trigger"` // "api", "schedule", "cli"
}

// NewIngestTask creates an ingestion task. No retries: a run is
// all-or-nothing and the pipeline already retries embedding batches
// internally; the prior index survives either way.
func NewIngestTask(trigger string) (*asynq.Task, error) {
	payload, err := json.Marshal(IngestPayload{
		RunID:   uuid.NewString(),
		Trigger: trigger,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskIngestCorpus,
		payload,
		asynq.MaxRetry(0),
		asynq.Timeout(30*time.Minute),
		asynq.Queue("critical"),
	), nil
}

// TaskProcessor handles queued ingestion runs.
type TaskProcessor struct {
	pipeline *services.IngestPipeline
}

func NewTaskProcessor(pipeline *services.IngestPipeline) *TaskProcessor {
	return &TaskProcessor{pipeline: pipeline}
}

// HandleIngest executes one ingestion run. The pipeline serializes
// concurrent runs internally, so overlapping tasks queue up rather than
// corrupting the index.
func (p *TaskProcessor) HandleIngest(ctx context.Context, t *asynq.Task) error {
	var payload IngestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to decode ingest payload: %w", err)
	}

	log.Printf("Ingestion run %s starting (trigger: %s)", payload.RunID, payload.Trigger)

	stats, err := p.pipeline.Run(ctx)
	if err != nil {
		log.Printf("Ingestion run %s failed: %v", payload.RunID, err)
		return err
	}

	log.Printf("Ingestion run %s published: %d documents, %d chunks", payload.RunID, stats.Documents, stats.Chunks)
	return nil
}
