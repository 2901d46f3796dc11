package acquisitionHandler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"BiasLens/internal/api/acquisition"
	"BiasLens/internal/entity"
	"BiasLens/internal/middleware"
)

type MockAcquisitionService struct {
	mock.Mock
}

func (m *MockAcquisitionService) RandomImages(ctx context.Context, req acquisition.RandomImagesRequest) (entity.ImageSet, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(entity.ImageSet), args.Error(1)
}

func (m *MockAcquisitionService) UploadImages(ctx context.Context, req acquisition.UploadImagesRequest) (entity.ImageSet, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(entity.ImageSet), args.Error(1)
}

func (m *MockAcquisitionService) RefreshImage(ctx context.Context, imageSetID string, name string) (entity.ImageSet, error) {
	args := m.Called(ctx, imageSetID, name)
	return args.Get(0).(entity.ImageSet), args.Error(1)
}

func (m *MockAcquisitionService) RemoveImage(ctx context.Context, imageSetID string, name string) (entity.ImageSet, error) {
	args := m.Called(ctx, imageSetID, name)
	return args.Get(0).(entity.ImageSet), args.Error(1)
}

func (m *MockAcquisitionService) GetImageSet(ctx context.Context, imageSetID string) (entity.ImageSet, error) {
	args := m.Called(ctx, imageSetID)
	return args.Get(0).(entity.ImageSet), args.Error(1)
}

func newTestApp(svc *MockAcquisitionService) *fiber.App {
	log := logrus.New()
	log.SetOutput(io.Discard)

	mw := middleware.New(log)
	app := fiber.New()
	app.Use(mw.NewRequestIDMiddleware())
	New(log, validator.New(), mw, svc).Start(app)
	return app
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRandomImages(t *testing.T) {
	svc := new(MockAcquisitionService)
	req := acquisition.RandomImagesRequest{Gender: "female", Age: "young", Race: "asian", Num: 2}
	svc.On("RandomImages", mock.Anything, req).Return(entity.ImageSet{ID: "set-1", Validated: true}, nil)

	resp, err := newTestApp(svc).Test(jsonRequest(http.MethodPost, "/images/random",
		`{"gender":"female","age":"young","race":"asian","num":2}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"set-1"`)
	svc.AssertExpectations(t)
}

func TestRandomImagesValidation(t *testing.T) {
	svc := new(MockAcquisitionService)

	resp, err := newTestApp(svc).Test(jsonRequest(http.MethodPost, "/images/random",
		`{"gender":"female","age":"young","race":"asian","num":11}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	svc.AssertNotCalled(t, "RandomImages", mock.Anything, mock.Anything)
}

func TestUploadImagesWithoutFace(t *testing.T) {
	svc := new(MockAcquisitionService)
	svc.On("UploadImages", mock.Anything, mock.Anything).Return(entity.ImageSet{ID: "set-2", Validated: false}, nil)

	resp, err := newTestApp(svc).Test(jsonRequest(http.MethodPost, "/images/upload",
		`{"images":[{"base64":"data:image/png;base64,AAAA"}]}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "do not contain a detectable face")
}

func TestRemoveImageUnescapesName(t *testing.T) {
	svc := new(MockAcquisitionService)
	svc.On("RemoveImage", mock.Anything, "set-2", "my photo.png").Return(entity.ImageSet{ID: "set-2"}, nil)

	resp, err := newTestApp(svc).Test(httptest.NewRequest(http.MethodDelete, "/images/set-2/images/my%20photo.png", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestGetImageSetNotFound(t *testing.T) {
	svc := new(MockAcquisitionService)
	svc.On("GetImageSet", mock.Anything, "missing").Return(entity.ImageSet{}, acquisition.ErrImageSetNotFound)

	resp, err := newTestApp(svc).Test(httptest.NewRequest(http.MethodGet, "/images/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
