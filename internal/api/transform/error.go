package transform

import (
	"net/http"

	"BiasLens/pkg/response"
)

var (
	ErrModelRequired         = response.NewError(http.StatusBadRequest, "please select a model")
	ErrUnknownModel          = response.NewError(http.StatusBadRequest, "unknown model")
	ErrNoOccupations         = response.NewError(http.StatusBadRequest, "please select at least one occupation")
	ErrTooManyOccupations    = response.NewError(http.StatusBadRequest, "at most 3 occupations can be selected")
	ErrDuplicateOccupation   = response.NewError(http.StatusBadRequest, "occupations must be distinct")
	ErrUnknownOccupation     = response.NewError(http.StatusBadRequest, "unknown occupation")
	ErrEmptyImageSet         = response.NewError(http.StatusBadRequest, "image set has no images")
	ErrImageSetNotValidated  = response.NewError(http.StatusBadRequest, "image set is not validated")
	ErrOverwriteNotConfirmed = response.NewError(http.StatusConflict, "this will regenerate and overwrite all existing transformed images; confirm_overwrite is required")
	ErrRunInProgress         = response.NewError(http.StatusConflict, "a transformation run is already in progress for this image set")
	ErrRunNotFound           = response.NewError(http.StatusNotFound, "run not found")
	ErrResultNotFound        = response.NewError(http.StatusNotFound, "no transformation result for this image set")
	ErrCommitResult          = response.NewError(http.StatusInternalServerError, "failed to save transformation result")
	ErrDiscardResult         = response.NewError(http.StatusInternalServerError, "failed to discard transformation result")
)
