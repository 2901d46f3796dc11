package analysisService

import (
	"bytes"
	"encoding/csv"

	"BiasLens/internal/entity"
	"BiasLens/pkg/utils"
)

const notFound = "Not found"

var exportHeader = []string{
	"Occupation",
	"Original_Image_URL",
	"Transformed_Image_URL",
	"Original_Age",
	"Transformed_Age",
	"Age_Delta",
	"Age_Bias",
	"Original_Gender",
	"Transformed_Gender",
	"Gender_Changed",
	"Gender_Bias",
	"Original_Darkness",
	"Transformed_Darkness",
	"Race_Bias",
	"Status",
}

type pairKey struct {
	image      string
	occupation string
}

// ExportCSV flattens an analysis into the summary block followed by one row
// per metric entry, quoted per RFC 4180 so data URLs survive. It reports
// false when the payload carries no metrics.
func ExportCSV(result *entity.AnalysisResult) ([]byte, bool) {
	if result == nil || result.Metrics == nil {
		return nil, false
	}

	transformed := make(map[pairKey]string)
	for _, job := range result.Transform {
		for _, image := range job.Images {
			transformed[pairKey{utils.StripImageExt(image.Original), job.Occupation}] = image.URL
		}
	}

	originals := make(map[string]string, len(result.Originals))
	for _, o := range result.Originals {
		name := utils.StripImageExt(o.Name)
		if _, ok := originals[name]; !ok {
			originals[name] = o.URL
		}
	}

	ageBias := flattenMatrix(result.AgeBiasMatrix)
	genderBias := flattenMatrix(result.GenderBiasMatrix)
	raceBias := flattenMatrix(result.RaceBiasMatrix)

	failed := make(map[pairKey]struct{})
	for _, f := range result.Failures() {
		failed[pairKey{f.ImageName.String(), f.Occupation}] = struct{}{}
	}

	summary := result.BiasSummary
	records := [][]string{
		{"Overall Bias Summary"},
		{"Attribute", summary.Attribute.String()},
		{"Age Bias", summary.AgeBias.String()},
		{"Gender Bias", summary.GenderBias.String()},
		{"Race Bias", summary.RaceBias.String()},
		{""},
		{"Detailed Results"},
		exportHeader,
	}

	for _, group := range *result.Metrics {
		for _, item := range group.Entries {
			key := pairKey{item.ImageName.String(), group.Occupation}

			status := "Success"
			if _, ok := failed[key]; ok {
				status = "Fail"
			}

			records = append(records, []string{
				group.Occupation,
				lookupOr(originals, item.ImageName.String(), notFound),
				lookupOr(transformed, key, notFound),
				item.OriginalAge.String(),
				item.TransformedAge.String(),
				item.AgeDelta.String(),
				biasCell(ageBias, key),
				item.OriginalGender.String(),
				item.TransformedGender.String(),
				item.GenderFlag.String(),
				biasCell(genderBias, key),
				item.OriginalAvgDarkness.String(),
				item.TransformedAvgDarkness.String(),
				biasCell(raceBias, key),
				status,
			})
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}

func flattenMatrix(matrix []entity.BiasMatrixRow) map[pairKey]entity.Scalar {
	flat := make(map[pairKey]entity.Scalar)
	for _, row := range matrix {
		for _, cell := range row.Cells {
			flat[pairKey{row.ImageName.String(), cell.Occupation}] = cell.Value
		}
	}
	return flat
}

// biasCell renders a missing or null score as an empty cell.
func biasCell(flat map[pairKey]entity.Scalar, key pairKey) string {
	value, ok := flat[key]
	if !ok || value.IsNull() {
		return ""
	}
	return value.String()
}

func lookupOr[K comparable](m map[K]string, key K, fallback string) string {
	if v, ok := m[key]; ok && v != "" {
		return v
	}
	return fallback
}
