package acquisitionService

import (
	"context"
	"fmt"

	"BiasLens/internal/entity"
	"BiasLens/pkg/biasservice"
	"BiasLens/pkg/gemini"
)

type UploadedImage struct {
	Ref      entity.ImageRef
	MimeType string
	Data     []byte
}

// FaceChecker reports, per image name, whether a human face was found.
type FaceChecker interface {
	CheckFaces(ctx context.Context, images []UploadedImage) (map[string]bool, error)
}

type serviceFaceChecker struct {
	client biasservice.IBiasService
}

func NewServiceFaceChecker(client biasservice.IBiasService) FaceChecker {
	return &serviceFaceChecker{client: client}
}

func (f *serviceFaceChecker) CheckFaces(ctx context.Context, images []UploadedImage) (map[string]bool, error) {
	refs := make([]entity.ImageRef, len(images))
	for i, img := range images {
		refs[i] = img.Ref
	}

	checks, err := f.client.CheckFaces(ctx, refs)
	if err != nil {
		return nil, err
	}

	out := make(map[string]bool, len(checks))
	for _, c := range checks {
		out[c.Name] = c.HasFace
	}
	return out, nil
}

type geminiFaceChecker struct {
	client gemini.IGemini
}

func NewGeminiFaceChecker(client gemini.IGemini) FaceChecker {
	return &geminiFaceChecker{client: client}
}

func (f *geminiFaceChecker) CheckFaces(ctx context.Context, images []UploadedImage) (map[string]bool, error) {
	out := make(map[string]bool, len(images))
	for _, img := range images {
		hasFace, err := f.client.ContainsFace(ctx, img.MimeType, img.Data)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", img.Ref.Name, err)
		}
		out[img.Ref.Name] = hasFace
	}
	return out, nil
}
