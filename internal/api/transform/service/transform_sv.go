package transformService

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"BiasLens/internal/api/transform"
	"BiasLens/internal/entity"
	contextPkg "BiasLens/pkg/context"
	"BiasLens/pkg/imagemodel"
)

func (s *transformService) StartRun(ctx context.Context, req transform.StartRunRequest) (entity.RunSnapshot, error) {
	requestID := contextPkg.GetRequestID(ctx)

	model, err := validateModel(req.Model)
	if err != nil {
		return entity.RunSnapshot{}, err
	}
	if err := validateOccupations(req.Occupations); err != nil {
		return entity.RunSnapshot{}, err
	}

	set, err := s.imageSets.GetImageSet(ctx, req.ImageSetID)
	if err != nil {
		return entity.RunSnapshot{}, err
	}
	if len(set.Images) == 0 {
		return entity.RunSnapshot{}, transform.ErrEmptyImageSet
	}
	if !set.Validated {
		return entity.RunSnapshot{}, transform.ErrImageSetNotValidated
	}

	runID, err := s.utils.NewULIDFromTimestamp(s.now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate run id")
		return entity.RunSnapshot{}, err
	}

	if !s.reserve(set.ID, runID) {
		return entity.RunSnapshot{}, transform.ErrRunInProgress
	}

	if err := s.prepareOverwrite(ctx, set.ID, req.ConfirmOverwrite); err != nil {
		s.unreserve(set.ID, runID)
		return entity.RunSnapshot{}, err
	}

	r := newRun(runID, set, model, req.Occupations, s.now)
	s.persist(ctx, r.Snapshot())

	s.mu.Lock()
	s.runs[runID] = r
	s.mu.Unlock()

	snapshot := r.begin()
	s.persist(ctx, snapshot)

	s.log.WithFields(logrus.Fields{
		"request_id":   requestID,
		"run_id":       runID,
		"image_set_id": set.ID,
		"model":        model.Name,
		"occupations":  req.Occupations,
		"total":        snapshot.Total,
	}).Info("Transformation run started")

	s.wg.Add(1)
	go s.execute(contextPkg.Detach(ctx), r)

	return snapshot, nil
}

// execute drains the job queue one request at a time. The first failed
// request aborts the whole run.
func (s *transformService) execute(ctx context.Context, r *run) {
	defer s.wg.Done()

	for {
		job, ok := r.next()
		if !ok {
			break
		}

		transformed, err := s.transformer.Transform(ctx, r.model, job.occupation, entity.ImageRef{
			Name: job.image.Name,
			URL:  job.image.URL,
		})
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"run_id":     r.id,
				"occupation": job.occupation,
				"image":      job.image.Name,
				"error":      err.Error(),
			}).Warn("Image transformation failed, halting run")
			s.finish(ctx, r, r.abort(transform.HaltMessage))
			return
		}

		s.persist(ctx, r.resolve(job, transformed))
	}

	if err := s.commit(ctx, r); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"run_id":     r.id,
			"error":      err.Error(),
		}).Error("Failed to commit transformation result")
		s.finish(ctx, r, r.fail(transform.ErrCommitResult.Error()))
		return
	}

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"run_id":     r.id,
	}).Info("Transformation run completed")
	s.finish(ctx, r, r.complete())
}

func (s *transformService) commit(ctx context.Context, r *run) error {
	now := s.now()
	resultID, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return err
	}
	result := r.result(resultID, now)

	client, err := s.repository.NewClient(true)
	if err != nil {
		return err
	}

	if err := client.Results.DeleteByImageSetID(ctx, result.ImageSetID); err != nil {
		client.Rollback()
		return err
	}
	if err := client.Results.CreateResult(ctx, result); err != nil {
		client.Rollback()
		return err
	}

	return client.Commit()
}

// finish persists the terminal snapshot and drops the run from memory once
// readers can find it in the snapshot store.
func (s *transformService) finish(ctx context.Context, r *run, snapshot entity.RunSnapshot) {
	persisted := s.persist(ctx, snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[snapshot.ImageSetID] == r.id {
		delete(s.active, snapshot.ImageSetID)
	}
	if persisted {
		delete(s.runs, r.id)
	}
}

func (s *transformService) persist(ctx context.Context, snapshot entity.RunSnapshot) bool {
	return s.repository.SaveSnapshot(ctx, snapshot) == nil
}

func (s *transformService) reserve(imageSetID, runID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.active[imageSetID]; busy {
		return false
	}
	s.active[imageSetID] = runID
	return true
}

func (s *transformService) unreserve(imageSetID, runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active[imageSetID] == runID {
		delete(s.active, imageSetID)
	}
}

func (s *transformService) running(imageSetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, busy := s.active[imageSetID]
	return busy
}

// prepareOverwrite discards the committed result of the image set, which
// requires explicit confirmation when one exists.
func (s *transformService) prepareOverwrite(ctx context.Context, imageSetID string, confirmed bool) error {
	client, err := s.repository.NewClient(false)
	if err != nil {
		return err
	}

	_, err = client.Results.GetByImageSetID(ctx, imageSetID)
	switch {
	case errors.Is(err, transform.ErrResultNotFound):
		return nil
	case err != nil:
		return err
	case !confirmed:
		return transform.ErrOverwriteNotConfirmed
	}

	return s.deleteResult(ctx, imageSetID)
}

func (s *transformService) DiscardResult(ctx context.Context, imageSetID string) error {
	if s.running(imageSetID) {
		return transform.ErrRunInProgress
	}
	return s.deleteResult(ctx, imageSetID)
}

func (s *transformService) deleteResult(ctx context.Context, imageSetID string) error {
	client, err := s.repository.NewClient(true)
	if err != nil {
		return transform.ErrDiscardResult
	}

	if err := client.Results.DeleteByImageSetID(ctx, imageSetID); err != nil {
		client.Rollback()
		return transform.ErrDiscardResult
	}
	if err := client.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":   contextPkg.GetRequestID(ctx),
			"image_set_id": imageSetID,
			"error":        err.Error(),
		}).Error("Failed to commit result discard")
		return transform.ErrDiscardResult
	}
	return nil
}

func (s *transformService) GetRun(ctx context.Context, runID string) (entity.RunSnapshot, error) {
	s.mu.Lock()
	r, ok := s.runs[runID]
	s.mu.Unlock()

	if ok {
		return r.Snapshot(), nil
	}
	return s.repository.GetSnapshot(ctx, runID)
}

// Subscribe streams snapshots of a run. A run that is no longer in memory
// yields its last stored snapshot and a closed channel.
func (s *transformService) Subscribe(ctx context.Context, runID string) (<-chan entity.RunSnapshot, func(), error) {
	s.mu.Lock()
	r, ok := s.runs[runID]
	s.mu.Unlock()

	if ok {
		ch, cancel := r.Subscribe()
		return ch, cancel, nil
	}

	snapshot, err := s.repository.GetSnapshot(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	ch := make(chan entity.RunSnapshot, 1)
	ch <- snapshot
	close(ch)
	return ch, func() {}, nil
}

func (s *transformService) GetResult(ctx context.Context, imageSetID string) (entity.TransformResult, error) {
	client, err := s.repository.NewClient(false)
	if err != nil {
		return entity.TransformResult{}, err
	}
	return client.Results.GetByImageSetID(ctx, imageSetID)
}

func validateModel(name string) (imagemodel.Info, error) {
	if name == "" {
		return imagemodel.Info{}, transform.ErrModelRequired
	}
	model, ok := imagemodel.Lookup(name)
	if !ok {
		return imagemodel.Info{}, transform.ErrUnknownModel
	}
	return model, nil
}

func validateOccupations(occupations []string) error {
	switch {
	case len(occupations) == 0:
		return transform.ErrNoOccupations
	case len(occupations) > transform.MaxOccupations:
		return transform.ErrTooManyOccupations
	}

	seen := make(map[string]struct{}, len(occupations))
	for _, occ := range occupations {
		if _, dup := seen[occ]; dup {
			return transform.ErrDuplicateOccupation
		}
		seen[occ] = struct{}{}
		if !transform.IsKnownOccupation(occ) {
			return transform.ErrUnknownOccupation
		}
	}
	return nil
}
