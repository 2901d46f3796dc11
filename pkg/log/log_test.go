package log

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/net/context"

	contextPkg "BiasLens/pkg/context"
)

func TestMain(m *testing.M) {
	_ = os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

func TestErrorWithTraceIDPrefersRequestID(t *testing.T) {
	id := ErrorWithTraceID(Fields{RequestIDKey: "req-42"}, "boom")
	assert.Equal(t, "req-42", id)
}

func TestErrorWithTraceIDGeneratesOne(t *testing.T) {
	id := ErrorWithTraceID(nil, "boom")
	assert.NotEmpty(t, id)
	assert.NotEqual(t, "unknown", id)
}

func TestWithRequestID(t *testing.T) {
	entry := WithRequestID(contextPkg.WithRequestID(context.Background(), "req-7"))
	assert.Equal(t, "req-7", entry.Data[RequestIDKey])
}
