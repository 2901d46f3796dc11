package biasservice

import (
	"context"

	"BiasLens/internal/entity"
	"BiasLens/pkg/httpclient"
)

type FaceCheck struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	HasFace bool   `json:"has_face"`
}

type IBiasService interface {
	AnalyzeBias(ctx context.Context, req entity.AnalysisRequest) (*entity.AnalysisResult, error)
	CheckFaces(ctx context.Context, images []entity.ImageRef) ([]FaceCheck, error)
}

type biasService struct {
	client *httpclient.Client
}

func New(client *httpclient.Client) IBiasService {
	return &biasService{client: client}
}

func (b *biasService) AnalyzeBias(ctx context.Context, req entity.AnalysisRequest) (*entity.AnalysisResult, error) {
	var result entity.AnalysisResult
	if err := b.client.PostJSON(ctx, "/analyze_bias", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (b *biasService) CheckFaces(ctx context.Context, images []entity.ImageRef) ([]FaceCheck, error) {
	var checks []FaceCheck
	body := struct {
		Images []entity.ImageRef `json:"images"`
	}{Images: images}

	if err := b.client.PostJSON(ctx, "/check_faces", body, &checks); err != nil {
		return nil, err
	}
	return checks, nil
}
