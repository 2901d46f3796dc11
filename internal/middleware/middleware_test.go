package middleware

import (
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contextPkg "BiasLens/pkg/context"
	"BiasLens/pkg/log"
)

func TestMain(m *testing.M) {
	_ = os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

func TestRequestIDMiddleware(t *testing.T) {
	mw := New(log.NewLogger())
	app := fiber.New()
	app.Use(mw.NewRequestIDMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(mw.GetRequestID(c))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	generated := resp.Header.Get(RequestIDKey)
	assert.Len(t, generated, 26)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDKey, "given-id")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "given-id", resp.Header.Get(RequestIDKey))
}

func TestRateLimiter(t *testing.T) {
	mw := &middleware{rateLimitter: newRateLimiter(0, 2), log: log.NewLogger()}
	app := fiber.New()
	app.Get("/", mw.NewRateLimiter, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}

	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestSanitizeRequestBody(t *testing.T) {
	long := "data:image/png;base64," + strings.Repeat("A", 1000)
	out := sanitizeRequestBody([]byte(`{"images":[{"base64":"` + long + `"}],"num":3}`))

	assert.NotContains(t, out, strings.Repeat("A", 300))
	assert.Contains(t, out, "bytes]")
	assert.Contains(t, out, `"num":3`)

	assert.Equal(t, "[non-JSON body]", sanitizeRequestBody([]byte("not json")))
}

func TestRequestIDOnUserContext(t *testing.T) {
	mw := New(log.NewLogger())
	app := fiber.New()
	app.Use(mw.NewRequestIDMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(contextPkg.GetRequestID(c.UserContext()))
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDKey, strings.Repeat("x", 100))
	resp, err := app.Test(req)
	require.NoError(t, err)

	generated := resp.Header.Get(RequestIDKey)
	assert.Len(t, generated, 26)

	body := make([]byte, 64)
	n, _ := resp.Body.Read(body)
	assert.Equal(t, generated, string(body[:n]))
}

func TestRateLimiterRetryAfter(t *testing.T) {
	mw := New(log.NewLogger(), WithRateLimit(0.5, 1))
	app := fiber.New()
	app.Get("/", mw.NewRateLimiter, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "2", resp.Header.Get(fiber.HeaderRetryAfter))
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	limiter := newRateLimiter(1, 1)
	now := time.Now()
	limiter.now = func() time.Time { return now }

	limiter.GetLimiterFrom("10.0.0.1")
	limiter.GetLimiterFrom("10.0.0.2")
	assert.Equal(t, 2, limiter.size())

	now = now.Add(limiterIdleTTL + time.Minute)
	limiter.GetLimiterFrom("10.0.0.2")
	assert.Equal(t, 1, limiter.size())
}
