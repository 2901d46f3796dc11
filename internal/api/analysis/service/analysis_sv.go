package analysisService

import (
	"context"

	"github.com/sirupsen/logrus"

	"BiasLens/internal/api/analysis"
	"BiasLens/internal/entity"
	contextPkg "BiasLens/pkg/context"
	"BiasLens/pkg/utils"
)

// BuildRequest turns a committed transformation result into the bias service payload.
func BuildRequest(result entity.TransformResult) entity.AnalysisRequest {
	req := entity.AnalysisRequest{
		Gender:      result.Attributes.Gender,
		Age:         result.Attributes.Age,
		Race:        result.Attributes.Race,
		Num:         len(result.Originals),
		Occupations: append([]string{}, result.Occupations...),
		Originals:   make([]entity.ImageRef, 0, len(result.Originals)),
		Transform:   make([]entity.TransformGroup, 0, len(result.Occupations)),
	}

	for _, o := range result.Originals {
		req.Originals = append(req.Originals, entity.ImageRef{Name: o.Name, URL: o.URL})
	}

	for _, occ := range result.Occupations {
		group := entity.TransformGroup{Occupation: occ, Images: []entity.TransformImage{}}
		for _, rec := range result.Records {
			if rec.Occupation != occ {
				continue
			}
			group.Images = append(group.Images, entity.TransformImage{
				Original: utils.FileNameFromURL(rec.Original),
				URL:      rec.Transformed,
			})
		}
		req.Transform = append(req.Transform, group)
	}

	return req
}

func (s *analysisService) CreateAnalysis(ctx context.Context, imageSetID string) (entity.Analysis, error) {
	requestID := contextPkg.GetRequestID(ctx)

	result, err := s.results.GetResult(ctx, imageSetID)
	if err != nil {
		return entity.Analysis{}, err
	}
	if result.Incomplete() {
		s.log.WithFields(logrus.Fields{
			"request_id":   requestID,
			"image_set_id": imageSetID,
		}).Warn("Analysis requested for incomplete transformation result")
		return entity.Analysis{}, analysis.ErrIncompleteResult
	}

	payload, err := s.bias.AnalyzeBias(ctx, BuildRequest(result))
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":   requestID,
			"image_set_id": imageSetID,
			"error":        err.Error(),
		}).Error("Bias analysis request failed")
		return entity.Analysis{}, analysis.ErrBiasServiceFailure
	}

	now := s.now()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return entity.Analysis{}, err
	}

	a := entity.Analysis{
		ID:         id,
		ImageSetID: imageSetID,
		ResultID:   result.ID,
		JobID:      payload.JobID,
		Payload:    *payload,
		CreatedAt:  now,
	}

	client, err := s.repository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":   requestID,
			"image_set_id": imageSetID,
			"error":        err.Error(),
		}).Error("Failed to open analysis repository client")
		return entity.Analysis{}, analysis.ErrSaveAnalysis
	}
	if err := client.Analyses.CreateAnalysis(ctx, a); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":   requestID,
			"analysis_id":  id,
			"image_set_id": imageSetID,
			"error":        err.Error(),
		}).Error("Failed to store bias analysis")
		return entity.Analysis{}, analysis.ErrSaveAnalysis
	}

	s.log.WithFields(logrus.Fields{
		"request_id":   requestID,
		"analysis_id":  id,
		"image_set_id": imageSetID,
		"job_id":       payload.JobID,
		"failures":     len(payload.Failures()),
	}).Info("Bias analysis stored")

	return a, nil
}

func (s *analysisService) GetAnalysis(ctx context.Context, id string) (entity.Analysis, error) {
	client, err := s.repository.NewClient(false)
	if err != nil {
		return entity.Analysis{}, err
	}
	return client.Analyses.GetByID(ctx, id)
}

func (s *analysisService) ListAnalyses(ctx context.Context, imageSetID string) ([]entity.Analysis, error) {
	client, err := s.repository.NewClient(false)
	if err != nil {
		return nil, err
	}
	return client.Analyses.ListByImageSetID(ctx, imageSetID)
}

func (s *analysisService) GetResults(ctx context.Context, id string) (entity.GroupedResult, error) {
	a, err := s.GetAnalysis(ctx, id)
	if err != nil {
		return nil, err
	}
	return GroupResults(&a.Payload), nil
}

func (s *analysisService) GetFailures(ctx context.Context, id string) ([]entity.FailedItem, error) {
	a, err := s.GetAnalysis(ctx, id)
	if err != nil {
		return nil, err
	}
	return FailureQueue(&a.Payload), nil
}

func (s *analysisService) GetStats(ctx context.Context, id string) (entity.BiasStats, error) {
	a, err := s.GetAnalysis(ctx, id)
	if err != nil {
		return entity.BiasStats{}, err
	}
	return ComputeStats(&a.Payload), nil
}

// Export renders the CSV report of a stored analysis. ok is false when the
// analysis has no metrics to export.
func (s *analysisService) Export(ctx context.Context, id string) ([]byte, bool, error) {
	a, err := s.GetAnalysis(ctx, id)
	if err != nil {
		return nil, false, err
	}
	data, ok := ExportCSV(&a.Payload)
	return data, ok, nil
}
