package gemini

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	jsoniter "github.com/json-iterator/go"
	"google.golang.org/api/option"
)

const faceCheckPrompt = `Does this photo contain at least one clearly visible human face?
Answer with JSON only, in the form {"has_face": true} or {"has_face": false}.`

var ErrEmptyResponse = errors.New("no response from Gemini API")

type IGemini interface {
	AnalyzeImage(ctx context.Context, mimeType string, imgData []byte, prompt string) (string, error)
	ContainsFace(ctx context.Context, mimeType string, imgData []byte) (bool, error)
	Close()
}

type geminiClient struct {
	modelName string
	client    *genai.Client
}

func NewGeminiClient(apiKey, modelName string) (IGemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &geminiClient{
		modelName: modelName,
		client:    client,
	}, nil
}

func (g *geminiClient) AnalyzeImage(ctx context.Context, mimeType string, imgData []byte, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(0)

	format := strings.TrimPrefix(mimeType, "image/")
	if format == "" {
		format = "jpeg"
	}

	res, err := model.GenerateContent(ctx, genai.Text(prompt), genai.ImageData(format, imgData))
	if err != nil {
		return "", err
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	text, ok := res.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", errors.New("unexpected response format from Gemini API")
	}

	return string(text), nil
}

func (g *geminiClient) ContainsFace(ctx context.Context, mimeType string, imgData []byte) (bool, error) {
	text, err := g.AnalyzeImage(ctx, mimeType, imgData, faceCheckPrompt)
	if err != nil {
		return false, err
	}

	return ParseFaceAnswer(text)
}

func (g *geminiClient) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

// ParseFaceAnswer reads {"has_face": bool} out of a model reply, tolerating markdown fences.
func ParseFaceAnswer(text string) (bool, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return false, errors.New("gemini reply has no JSON object")
	}

	var answer struct {
		HasFace *bool `json:"has_face"`
	}
	if err := jsoniter.UnmarshalFromString(text[start:end+1], &answer); err != nil {
		return false, err
	}
	if answer.HasFace == nil {
		return false, errors.New("gemini reply has no has_face field")
	}

	return *answer.HasFace, nil
}
