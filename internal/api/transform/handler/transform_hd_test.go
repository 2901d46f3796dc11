package transformHandler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"BiasLens/internal/api/transform"
	"BiasLens/internal/entity"
	"BiasLens/internal/middleware"
	"BiasLens/pkg/imagemodel"
)

type MockTransformService struct {
	mock.Mock
}

func (m *MockTransformService) StartRun(ctx context.Context, req transform.StartRunRequest) (entity.RunSnapshot, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(entity.RunSnapshot), args.Error(1)
}

func (m *MockTransformService) GetRun(ctx context.Context, runID string) (entity.RunSnapshot, error) {
	args := m.Called(ctx, runID)
	return args.Get(0).(entity.RunSnapshot), args.Error(1)
}

func (m *MockTransformService) Subscribe(ctx context.Context, runID string) (<-chan entity.RunSnapshot, func(), error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(<-chan entity.RunSnapshot), args.Get(1).(func()), args.Error(2)
}

func (m *MockTransformService) GetResult(ctx context.Context, imageSetID string) (entity.TransformResult, error) {
	args := m.Called(ctx, imageSetID)
	return args.Get(0).(entity.TransformResult), args.Error(1)
}

func (m *MockTransformService) DiscardResult(ctx context.Context, imageSetID string) error {
	return m.Called(ctx, imageSetID).Error(0)
}

func (m *MockTransformService) Options() transform.OptionsResponse {
	return m.Called().Get(0).(transform.OptionsResponse)
}

func (m *MockTransformService) Wait() {}

func newTestApp(svc *MockTransformService) *fiber.App {
	log := logrus.New()
	log.SetOutput(io.Discard)

	mw := middleware.New(log)
	app := fiber.New()
	app.Use(mw.NewRequestIDMiddleware())
	New(log, validator.New(), mw, svc).Start(app)
	return app
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, jsoniter.Unmarshal(body, &out))
	return out
}

func TestStartRun(t *testing.T) {
	svc := new(MockTransformService)
	req := transform.StartRunRequest{ImageSetID: "set-1", Model: "Img2Img", Occupations: []string{"Doctor"}}
	svc.On("StartRun", mock.Anything, req).Return(entity.RunSnapshot{ID: "run-1", State: entity.RunRunning, IsGenerating: true}, nil)

	app := newTestApp(svc)
	httpReq := httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader(`{"image_set_id":"set-1","model":"Img2Img","occupations":["Doctor"]}`))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(httpReq)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	body := decode(t, resp)
	run := body["run"].(map[string]any)
	assert.Equal(t, "run-1", run["id"])
	assert.Equal(t, "running", run["state"])
	svc.AssertExpectations(t)
}

func TestStartRunErrors(t *testing.T) {
	svc := new(MockTransformService)
	svc.On("StartRun", mock.Anything, mock.Anything).Return(entity.RunSnapshot{}, transform.ErrRunInProgress)
	app := newTestApp(svc)

	httpReq := httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader(`{"image_set_id":"set-1","model":"Img2Img","occupations":["Doctor"]}`))
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(httpReq)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, transform.ErrRunInProgress.Error(), decode(t, resp)["error"])

	httpReq = httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader(`{"model":"Img2Img"}`))
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(httpReq)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	svc.AssertNumberOfCalls(t, "StartRun", 1)
}

func TestGetRunNotFound(t *testing.T) {
	svc := new(MockTransformService)
	svc.On("GetRun", mock.Anything, "missing").Return(entity.RunSnapshot{}, transform.ErrRunNotFound)

	resp, err := newTestApp(svc).Test(httptest.NewRequest(http.MethodGet, "/runs/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetResult(t *testing.T) {
	svc := new(MockTransformService)
	svc.On("GetResult", mock.Anything, "set-1").Return(entity.TransformResult{ID: "res-1", ImageSetID: "set-1"}, nil)

	resp, err := newTestApp(svc).Test(httptest.NewRequest(http.MethodGet, "/image-sets/set-1/result", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	result := decode(t, resp)["result"].(map[string]any)
	assert.Equal(t, "res-1", result["id"])
}

func TestGetOptions(t *testing.T) {
	svc := new(MockTransformService)
	svc.On("Options").Return(transform.OptionsResponse{
		Models:         imagemodel.Catalog(),
		Occupations:    transform.Occupations,
		MaxOccupations: transform.MaxOccupations,
	})

	resp, err := newTestApp(svc).Test(httptest.NewRequest(http.MethodGet, "/transform/options", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Len(t, body["models"], 3)
	assert.EqualValues(t, 3, body["max_occupations"])
}

func TestStreamRequiresUpgrade(t *testing.T) {
	resp, err := newTestApp(new(MockTransformService)).Test(httptest.NewRequest(http.MethodGet, "/runs/run-1/ws", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
