package app

import (
	"context"
	"time"

	"reactorviz/domain/reactor"
	"reactorviz/internal"
	"reactorviz/internal/errors"
	"reactorviz/ports"
)

// PublishService stores derived datasets as import runs
type PublishService struct {
	pipeline *Pipeline
	repo     ports.RunRepository
	logger   *internal.Logger
}

// NewPublishService creates a publish service
func NewPublishService(pipeline *Pipeline, repo ports.RunRepository, logger *internal.Logger) *PublishService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &PublishService{pipeline: pipeline, repo: repo, logger: logger}
}

// Publish migrates the schema if needed and saves the current dataset.
// Runs are stamped with wall time even when the analysis date is pinned.
func (s *PublishService) Publish(ctx context.Context) (*reactor.ImportRun, error) {
	if s.repo == nil {
		return nil, errors.ConfigInvalid("no publication database configured")
	}
	data, err := s.pipeline.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Migrate(ctx); err != nil {
		return nil, err
	}

	run := &reactor.ImportRun{
		Source:      data.Source,
		Fingerprint: data.Fingerprint.String(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.SaveRun(ctx, run, data.Entries); err != nil {
		return nil, err
	}
	s.logger.Info("[PublishService] Published %d reactors as run %s", run.Count, run.ID)
	return run, nil
}

// Latest returns the newest published run with its entries
func (s *PublishService) Latest(ctx context.Context) (*reactor.ImportRun, []reactor.Entry, error) {
	if s.repo == nil {
		return nil, nil, errors.ConfigInvalid("no publication database configured")
	}
	run, err := s.repo.LatestRun(ctx)
	if err != nil {
		return nil, nil, err
	}
	entries, err := s.repo.ListRun(ctx, run.ID)
	if err != nil {
		return nil, nil, err
	}
	return run, entries, nil
}
