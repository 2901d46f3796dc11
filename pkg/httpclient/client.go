package httpclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"

	contextPkg "BiasLens/pkg/context"
)

var ErrEmptyBody = errors.New("empty response body")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, body)
}

type Client struct {
	baseURL string
	timeout time.Duration
}

// New returns a JSON client for baseURL. A zero timeout means no per-request limit.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// PostJSON posts body to path and decodes a 2xx response into out.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a := fiber.Post(c.baseURL + path).
		JSONEncoder(jsoniter.Marshal).
		JSONDecoder(jsoniter.Unmarshal)
	a.JSON(body)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	a.Set("X-Request-ID", contextPkg.GetRequestID(ctx))

	if timeout := c.requestTimeout(ctx); timeout > 0 {
		a.Timeout(timeout)
	}

	code, resp, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("post %s: %w", path, errors.Join(errs...))
	}

	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return &StatusError{Code: code, Body: string(resp)}
	}

	if out == nil {
		return nil
	}
	if len(resp) == 0 {
		return fmt.Errorf("post %s: %w", path, ErrEmptyBody)
	}

	if err := jsoniter.Unmarshal(resp, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}

	return nil
}

func (c *Client) requestTimeout(ctx context.Context) time.Duration {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if timeout == 0 || remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}
