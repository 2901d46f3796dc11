package analysis

import (
	"net/http"

	"BiasLens/pkg/response"
)

var (
	ErrAnalysisNotFound   = response.NewError(http.StatusNotFound, "analysis not found")
	ErrIncompleteResult   = response.NewError(http.StatusBadRequest, "Some images failed to transform. Please regenerate before analyzing.")
	ErrBiasServiceFailure = response.NewError(http.StatusBadGateway, "bias analysis service failed")
	ErrSaveAnalysis       = response.NewError(http.StatusInternalServerError, "failed to save analysis")
	ErrCorruptAnalysis    = response.NewError(http.StatusInternalServerError, "stored analysis could not be decoded")
)
