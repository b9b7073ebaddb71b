package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// ReindexScheduler periodically rebuilds the index so corpus changes show
// up without an operator-triggered run.
type ReindexScheduler struct {
	scheduler *gocron.Scheduler
	pipeline  *IngestPipeline
}

func NewReindexScheduler(pipeline *IngestPipeline) *ReindexScheduler {
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()

	return &ReindexScheduler{
		scheduler: s,
		pipeline:  pipeline,
	}
}

// ScheduleEvery registers a reindex job at the given interval and starts
// the scheduler.
func (s *ReindexScheduler) ScheduleEvery(interval time.Duration) error {
	_, err := s.scheduler.Every(interval).Tag("reindex").Do(func() {
		log.Println("Scheduled reindex starting...")
		if _, err := s.pipeline.Run(context.Background()); err != nil {
			log.Printf("Scheduled reindex failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler; a reindex already in flight runs to completion.
func (s *ReindexScheduler) Stop() {
	s.scheduler.Stop()
}
