package entity

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

type ImageRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type TransformImage struct {
	Original string `json:"original"`
	URL      string `json:"url"`
}

type TransformGroup struct {
	Occupation string           `json:"occupation"`
	Images     []TransformImage `json:"images"`
}

// AnalysisRequest is the payload posted to the bias service.
type AnalysisRequest struct {
	Gender      string           `json:"gender"`
	Age         string           `json:"age"`
	Race        string           `json:"race"`
	Num         int              `json:"num"`
	Occupations []string         `json:"occupation"`
	Originals   []ImageRef       `json:"originals"`
	Transform   []TransformGroup `json:"transform"`
}

type MetricEntry struct {
	ImageName              ImageName `json:"image_name"`
	OriginalAge            Scalar    `json:"original_age"`
	TransformedAge         Scalar    `json:"transformed_age"`
	AgeDelta               Scalar    `json:"age_delta"`
	OriginalGender         Scalar    `json:"original_gender"`
	TransformedGender      Scalar    `json:"transformed_gender"`
	GenderFlag             Scalar    `json:"gender_flag"`
	OriginalAvgDarkness    Scalar    `json:"original_avg_darkness"`
	TransformedAvgDarkness Scalar    `json:"transformed_avg_darkness"`
}

type BiasSummary struct {
	Attribute  Scalar `json:"attribute"`
	GenderBias Scalar `json:"gender_bias"`
	AgeBias    Scalar `json:"age_bias"`
	RaceBias   Scalar `json:"race_bias"`
}

type FailureRecord struct {
	ImageName  ImageName `json:"image_name"`
	Occupation string    `json:"occupation"`
}

type BiasFailures struct {
	Details []FailureRecord `json:"details"`
}

// AnalysisResult is the bias service payload. Metrics is nil when the service omitted it.
type AnalysisResult struct {
	JobID            string               `json:"job_id"`
	Status           string               `json:"status"`
	Originals        []ImageRef           `json:"originals"`
	Transform        []TransformGroup     `json:"transform"`
	Metrics          *MetricsByOccupation `json:"metrics,omitempty"`
	Consolidated     jsoniter.RawMessage  `json:"consolidated,omitempty"`
	BiasSummary      BiasSummary          `json:"bias_summary"`
	AgeBiasMatrix    []BiasMatrixRow      `json:"age_bias_matrix"`
	GenderBiasMatrix []BiasMatrixRow      `json:"gender_bias_matrix"`
	RaceBiasMatrix   []BiasMatrixRow      `json:"race_bias_matrix"`
	BiasFailures     *BiasFailures        `json:"bias_failures,omitempty"`
}

func (r *AnalysisResult) Failures() []FailureRecord {
	if r.BiasFailures == nil {
		return nil
	}
	return r.BiasFailures.Details
}

// Analysis is a stored bias-service response.
type Analysis struct {
	ID         string         `db:"id" json:"id"`
	ImageSetID string         `db:"image_set_id" json:"image_set_id"`
	ResultID   string         `db:"result_id" json:"result_id"`
	JobID      string         `db:"job_id" json:"job_id"`
	Payload    AnalysisResult `db:"-" json:"payload"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

type ImagePair struct {
	OriginalImage    string `json:"original_image"`
	TransformedImage string `json:"transformed_image"`
}

type GroupedPair struct {
	Occupation        string    `json:"occupation"`
	ImageName         string    `json:"image_name"`
	AgeBias           float64   `json:"age_bias"`
	GenderBias        float64   `json:"gender_bias"`
	RaceBias          float64   `json:"race_bias"`
	OriginalAge       Scalar    `json:"original_age"`
	TransformedAge    Scalar    `json:"transformed_age"`
	OriginalGender    Scalar    `json:"original_gender"`
	TransformedGender Scalar    `json:"transformed_gender"`
	OriginalAPD       Scalar    `json:"original_apd"`
	TransformedAPD    Scalar    `json:"transformed_apd"`
	GenderFlag        Scalar    `json:"gender_flag"`
	ImagePair         ImagePair `json:"image_pair"`
}

type OccupationGroup struct {
	Occupation string        `json:"occupation"`
	Results    []GroupedPair `json:"results"`
}

// GroupedResult keeps occupations in the order they first appear in the transform payload.
type GroupedResult []OccupationGroup

type FailedItem struct {
	ImageURL   string `json:"image_url"`
	Occupation string `json:"occupation"`
	ImageName  string `json:"image_name"`
}

type BiasRange struct {
	Highest *float64 `json:"highest"`
	Lowest  *float64 `json:"lowest"`
}

type OccupationBias struct {
	Occupation string  `json:"occupation"`
	AgeBias    float64 `json:"age_bias"`
	GenderBias float64 `json:"gender_bias"`
	RaceBias   float64 `json:"race_bias"`
}

type BiasStats struct {
	AverageGenderBias float64          `json:"average_gender_bias"`
	AverageAgeBias    float64          `json:"average_age_bias"`
	AverageRaceBias   float64          `json:"average_race_bias"`
	OverallBias       float64          `json:"overall_bias"`
	OverallPercent    string           `json:"overall_percent"`
	Level             string           `json:"level"`
	AgeBiasRange      BiasRange        `json:"age_bias_range"`
	RaceBiasRange     BiasRange        `json:"race_bias_range"`
	ByOccupation      []OccupationBias `json:"by_occupation"`
}
