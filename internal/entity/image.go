package entity

import "time"

type ImageSetMode string

const (
	ModeDefault ImageSetMode = "default"
	ModeCustom  ImageSetMode = "custom"
)

// UndefinedAttribute fills every attribute of a custom upload set.
const UndefinedAttribute = "undefined"

type OriginalImage struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Key       string `json:"key,omitempty"`
	IsLoading bool   `json:"is_loading"`
	Failed    bool   `json:"failed"`
	HasFace   *bool  `json:"has_face,omitempty"`
}

type Attributes struct {
	Gender string `json:"gender"`
	Age    string `json:"age"`
	Race   string `json:"race"`
}

func UndefinedAttributes() Attributes {
	return Attributes{
		Gender: UndefinedAttribute,
		Age:    UndefinedAttribute,
		Race:   UndefinedAttribute,
	}
}

type ImageSet struct {
	ID         string          `json:"id"`
	Mode       ImageSetMode    `json:"mode"`
	Attributes Attributes      `json:"attributes"`
	Folder     string          `json:"folder,omitempty"`
	Images     []OriginalImage `json:"images"`
	Validated  bool            `json:"validated"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Revalidate recomputes Validated from the current images.
// A custom set needs every image face-checked positive; a default set needs every image resolved.
func (s *ImageSet) Revalidate() bool {
	s.Validated = len(s.Images) > 0
	for _, img := range s.Images {
		switch s.Mode {
		case ModeCustom:
			if img.HasFace == nil || !*img.HasFace {
				s.Validated = false
			}
		default:
			if img.URL == "" || img.IsLoading || img.Failed {
				s.Validated = false
			}
		}
	}
	return s.Validated
}

func (s *ImageSet) ImageByName(name string) (int, bool) {
	for i, img := range s.Images {
		if img.Name == name {
			return i, true
		}
	}
	return -1, false
}
