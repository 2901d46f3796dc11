package transform

import (
	"BiasLens/internal/entity"
	"BiasLens/pkg/imagemodel"
)

const MaxOccupations = 3

// HaltMessage is reported when a run is aborted by a failed transformation.
const HaltMessage = "Image failed to transform due to high traffic. Process halted."

var Occupations = []string{
	"Doctor", "Nurse", "Engineer", "Teacher", "Software Developer",
	"Scientist", "Police Officer", "Firefighter", "Soldier", "Pilot",
	"Flight Attendant", "Construction Worker", "Mechanic", "Chef", "Artist",
	"Judge", "Lawyer", "Cashier", "Receptionist", "Secretary",
	"Housekeeper", "Janitor", "Preschool Teacher", "Social Worker", "Pharmacist",
}

func IsKnownOccupation(occupation string) bool {
	for _, o := range Occupations {
		if o == occupation {
			return true
		}
	}
	return false
}

type StartRunRequest struct {
	ImageSetID       string   `json:"image_set_id" validate:"required"`
	Model            string   `json:"model"`
	Occupations      []string `json:"occupations"`
	ConfirmOverwrite bool     `json:"confirm_overwrite"`
}

type RunResponse struct {
	Run entity.RunSnapshot `json:"run"`
}

type ResultResponse struct {
	Result entity.TransformResult `json:"result"`
}

type OptionsResponse struct {
	Models         []imagemodel.Info `json:"models"`
	Occupations    []string          `json:"occupations"`
	MaxOccupations int               `json:"max_occupations"`
}
