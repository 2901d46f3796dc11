package analysis

import "BiasLens/internal/entity"

// ExportFileName is the attachment name of the CSV report.
const ExportFileName = "bias_results_with_summary.csv"

type CreateAnalysisRequest struct {
	ImageSetID string `json:"image_set_id" validate:"required"`
}

type AnalysisResponse struct {
	ID       string               `json:"id"`
	JobID    string               `json:"job_id"`
	Results  entity.GroupedResult `json:"results"`
	Summary  entity.BiasSummary   `json:"summary"`
	Failures []entity.FailedItem  `json:"failures"`
}

type ResultsResponse struct {
	Results entity.GroupedResult `json:"results"`
}

type FailuresResponse struct {
	Failures []entity.FailedItem `json:"failures"`
}

type StatsResponse struct {
	Stats entity.BiasStats `json:"stats"`
}
