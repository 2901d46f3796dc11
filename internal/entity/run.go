package entity

import "time"

type RunState string

const (
	RunInit      RunState = "init"
	RunRunning   RunState = "running"
	RunFailed    RunState = "failed"
	RunCompleted RunState = "completed"
)

func (s RunState) Terminal() bool {
	return s == RunFailed || s == RunCompleted
}

// TransformedRecord tracks one (occupation, original image) pair for the lifetime of a run.
type TransformedRecord struct {
	Occupation  string `json:"occupation"`
	Original    string `json:"original"`
	Transformed string `json:"transformed"`
	IsLoading   bool   `json:"is_loading"`
	Failed      bool   `json:"failed"`
	Key         string `json:"key"`
}

// ProgressMap counts completed transformations per occupation.
type ProgressMap map[string]int

type RunSnapshot struct {
	ID           string              `json:"id"`
	ImageSetID   string              `json:"image_set_id"`
	Model        string              `json:"model"`
	Occupations  []string            `json:"occupations"`
	State        RunState            `json:"state"`
	IsGenerating bool                `json:"is_generating"`
	Total        int                 `json:"total"`
	Progress     ProgressMap         `json:"progress"`
	Records      []TransformedRecord `json:"records"`
	Error        string              `json:"error,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	CompletedAt  *time.Time          `json:"completed_at,omitempty"`
}

// TransformResult is the committed outcome of a successful run, stored per image set.
type TransformResult struct {
	ID          string              `db:"id" json:"id"`
	ImageSetID  string              `db:"image_set_id" json:"image_set_id"`
	RunID       string              `db:"run_id" json:"run_id"`
	Model       string              `db:"model" json:"model"`
	Attributes  Attributes          `db:"-" json:"attributes"`
	Occupations []string            `db:"-" json:"occupations"`
	Originals   []OriginalImage     `db:"-" json:"originals"`
	Records     []TransformedRecord `db:"-" json:"records"`
	CreatedAt   time.Time           `db:"created_at" json:"created_at"`
}

// Incomplete reports whether any occupation is missing a transformed image.
func (r *TransformResult) Incomplete() bool {
	done := make(map[string]int, len(r.Occupations))
	for _, rec := range r.Records {
		if rec.Transformed != "" && !rec.Failed && !rec.IsLoading {
			done[rec.Occupation]++
		}
	}
	for _, occ := range r.Occupations {
		if done[occ] < len(r.Originals) {
			return true
		}
	}
	return len(r.Occupations) == 0 || len(r.Originals) == 0
}
