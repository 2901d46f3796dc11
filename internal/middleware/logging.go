package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"

	"BiasLens/pkg/log"
)

const maxLoggedField = 256

func LoggerConfig() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID, ok := c.Locals(RequestIDKey).(string)
		if !ok || requestID == "" {
			requestID = "unknown"
		}

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()

		logFields := log.Fields{
			"request_id":    requestID,
			"method":        c.Method(),
			"path":          c.Path(),
			"status":        status,
			"latency_ms":    latency.Milliseconds(),
			"ip":            c.IP(),
			"user_agent":    c.Get("User-Agent"),
			"response_size": len(c.Response().Body()),
		}

		if body := c.Request().Body(); len(body) > 0 {
			logFields["request_body"] = sanitizeRequestBody(body)
		}

		switch {
		case err != nil || status >= 500:
			log.Error(logFields, "Server error")
		case status >= 400:
			log.Warn(logFields, "Client error")
		default:
			log.Info(logFields, "Success")
		}

		return err
	}
}

// sanitizeRequestBody shortens long string values such as base64 image payloads.
func sanitizeRequestBody(body []byte) string {
	var decoded any
	if err := jsoniter.Unmarshal(body, &decoded); err != nil {
		return "[non-JSON body]"
	}

	sanitized, err := jsoniter.MarshalToString(truncate(decoded))
	if err != nil {
		return "[sanitization-failed]"
	}
	return sanitized
}

func truncate(v any) any {
	switch val := v.(type) {
	case string:
		if len(val) > maxLoggedField {
			return fmt.Sprintf("%s...[%d bytes]", val[:32], len(val))
		}
		return val
	case map[string]any:
		for k, inner := range val {
			val[k] = truncate(inner)
		}
		return val
	case []any:
		for i, inner := range val {
			val[i] = truncate(inner)
		}
		return val
	}
	return v
}
