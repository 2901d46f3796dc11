package acquisition

import "BiasLens/internal/entity"

type RandomImagesRequest struct {
	Gender string `json:"gender" validate:"required"`
	Age    string `json:"age" validate:"required"`
	Race   string `json:"race" validate:"required"`
	Num    int    `json:"num" validate:"required,min=1,max=10"`
}

type UploadImage struct {
	Base64 string `json:"base64" validate:"required"`
}

type UploadImagesRequest struct {
	Images []UploadImage `json:"images" validate:"required,min=1,max=5,dive"`
}

type RefreshImageRequest struct {
	Name string `json:"name" validate:"required"`
}

type ImageSetResponse struct {
	ImageSet entity.ImageSet `json:"image_set"`
	Message  string          `json:"message,omitempty"`
}
