package analysisService

import (
	"strconv"

	"BiasLens/internal/entity"
	"BiasLens/pkg/utils"
)

// NotAvailable fills a grouped field the bias service did not report.
const NotAvailable = "not available"

// GroupResults pairs every transformed image with its original, bias scores
// and metrics, grouped by occupation in order of first appearance. Pairs
// without a matching original are left out. A payload without metrics yields
// nothing.
func GroupResults(result *entity.AnalysisResult) entity.GroupedResult {
	if result == nil || result.Metrics == nil {
		return entity.GroupedResult{}
	}

	grouped := entity.GroupedResult{}
	index := make(map[string]int)

	for _, job := range result.Transform {
		occupation := job.Occupation

		for _, image := range job.Images {
			original, ok := findOriginal(result.Originals, image.Original)
			if !ok {
				continue
			}

			imageName := utils.StripImageExt(image.Original)
			metric, hasMetric := findMetric(result.Metrics.Entries(occupation), imageName)

			pair := entity.GroupedPair{
				Occupation: occupation,
				ImageName:  imageName,
				AgeBias:    matrixValue(result.AgeBiasMatrix, imageName, occupation),
				GenderBias: matrixValue(result.GenderBiasMatrix, imageName, occupation),
				RaceBias:   matrixValue(result.RaceBiasMatrix, imageName, occupation),
				GenderFlag: entity.Number(0),
				ImagePair: entity.ImagePair{
					OriginalImage:    original.URL,
					TransformedImage: image.URL,
				},
			}

			notAvailable := entity.String(NotAvailable)
			pair.OriginalAge = notAvailable
			pair.TransformedAge = notAvailable
			pair.OriginalGender = notAvailable
			pair.TransformedGender = notAvailable
			pair.OriginalAPD = notAvailable
			pair.TransformedAPD = notAvailable

			if hasMetric {
				pair.OriginalAge = metric.OriginalAge.Or(notAvailable)
				pair.TransformedAge = metric.TransformedAge.Or(notAvailable)
				pair.OriginalGender = metric.OriginalGender.Or(notAvailable)
				pair.TransformedGender = metric.TransformedGender.Or(notAvailable)
				pair.OriginalAPD = roundAPD(metric.OriginalAvgDarkness)
				pair.TransformedAPD = roundAPD(metric.TransformedAvgDarkness)
				pair.GenderFlag = metric.GenderFlag.Or(entity.Number(0))
			}

			i, seen := index[occupation]
			if !seen {
				i = len(grouped)
				index[occupation] = i
				grouped = append(grouped, entity.OccupationGroup{Occupation: occupation})
			}
			grouped[i].Results = append(grouped[i].Results, pair)
		}
	}

	return grouped
}

func findOriginal(originals []entity.ImageRef, name string) (entity.ImageRef, bool) {
	for _, o := range originals {
		if o.Name == name {
			return o, true
		}
	}
	return entity.ImageRef{}, false
}

func findMetric(entries []entity.MetricEntry, imageName string) (entity.MetricEntry, bool) {
	for _, e := range entries {
		if e.ImageName.String() == imageName {
			return e, true
		}
	}
	return entity.MetricEntry{}, false
}

func findRow(matrix []entity.BiasMatrixRow, imageName string) (entity.BiasMatrixRow, bool) {
	for _, row := range matrix {
		if row.ImageName.String() == imageName {
			return row, true
		}
	}
	return entity.BiasMatrixRow{}, false
}

// matrixValue is the bias score of (imageName, occupation), 0 when absent.
func matrixValue(matrix []entity.BiasMatrixRow, imageName, occupation string) float64 {
	row, ok := findRow(matrix, imageName)
	if !ok {
		return 0
	}
	value, ok := row.Value(occupation)
	if !ok {
		return 0
	}
	f, ok := value.Float()
	if !ok {
		return 0
	}
	return f
}

func roundAPD(raw entity.Scalar) entity.Scalar {
	f, ok := raw.Float()
	if !ok {
		return entity.String(NotAvailable)
	}
	return entity.String(strconv.FormatFloat(f, 'f', 2, 64))
}
