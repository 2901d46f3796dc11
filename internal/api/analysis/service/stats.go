package analysisService

import (
	"strconv"

	"BiasLens/internal/entity"
	"BiasLens/pkg/utils"
)

const (
	LevelLow    = "Low"
	LevelMedium = "Medium"
	LevelHigh   = "High"
)

// FailureQueue joins every reported bias-detection failure with the URL of its original image.
func FailureQueue(result *entity.AnalysisResult) []entity.FailedItem {
	items := make([]entity.FailedItem, 0, len(result.Failures()))
	for _, f := range result.Failures() {
		name := f.ImageName.String()
		item := entity.FailedItem{Occupation: f.Occupation, ImageName: name}
		for _, o := range result.Originals {
			if utils.StripImageExt(o.Name) == name {
				item.ImageURL = o.URL
				break
			}
		}
		items = append(items, item)
	}
	return items
}

func BiasLevel(overall float64) string {
	switch {
	case overall <= 0.4:
		return LevelLow
	case overall <= 0.6:
		return LevelMedium
	}
	return LevelHigh
}

// ComputeStats derives the headline numbers of an analysis. Null matrix cells are skipped.
func ComputeStats(result *entity.AnalysisResult) entity.BiasStats {
	gender := scalarOrZero(result.BiasSummary.GenderBias)
	age := scalarOrZero(result.BiasSummary.AgeBias)
	race := scalarOrZero(result.BiasSummary.RaceBias)
	overall := (gender + age + race) / 3

	return entity.BiasStats{
		AverageGenderBias: gender,
		AverageAgeBias:    age,
		AverageRaceBias:   race,
		OverallBias:       overall,
		OverallPercent:    strconv.FormatFloat(overall*100, 'f', 1, 64),
		Level:             BiasLevel(overall),
		AgeBiasRange:      matrixRange(result.AgeBiasMatrix),
		RaceBiasRange:     matrixRange(result.RaceBiasMatrix),
		ByOccupation:      occupationBias(result),
	}
}

func scalarOrZero(s entity.Scalar) float64 {
	f, _ := s.Float()
	return f
}

func matrixRange(matrix []entity.BiasMatrixRow) entity.BiasRange {
	var r entity.BiasRange
	for _, row := range matrix {
		for _, cell := range row.Cells {
			f, ok := cell.Value.Float()
			if !ok {
				continue
			}
			if r.Highest == nil || f > *r.Highest {
				v := f
				r.Highest = &v
			}
			if r.Lowest == nil || f < *r.Lowest {
				v := f
				r.Lowest = &v
			}
		}
	}
	return r
}

// occupationBias averages each matrix column over all rows, capped at 1.
func occupationBias(result *entity.AnalysisResult) []entity.OccupationBias {
	var occupations []string
	if result.Metrics != nil {
		for _, group := range *result.Metrics {
			occupations = append(occupations, group.Occupation)
		}
	} else {
		seen := make(map[string]struct{})
		for _, job := range result.Transform {
			if _, ok := seen[job.Occupation]; !ok {
				seen[job.Occupation] = struct{}{}
				occupations = append(occupations, job.Occupation)
			}
		}
	}

	out := make([]entity.OccupationBias, 0, len(occupations))
	for _, occ := range occupations {
		out = append(out, entity.OccupationBias{
			Occupation: occ,
			AgeBias:    columnMean(result.AgeBiasMatrix, occ),
			GenderBias: columnMean(result.GenderBiasMatrix, occ),
			RaceBias:   columnMean(result.RaceBiasMatrix, occ),
		})
	}
	return out
}

func columnMean(matrix []entity.BiasMatrixRow, occupation string) float64 {
	if len(matrix) == 0 {
		return 0
	}
	var sum float64
	for _, row := range matrix {
		if v, ok := row.Value(occupation); ok {
			f, _ := v.Float()
			sum += f
		}
	}
	return min(sum/float64(len(matrix)), 1)
}
