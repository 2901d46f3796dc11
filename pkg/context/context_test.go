package context

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetRequestID(t *testing.T) {
	assert.Equal(t, "unknown", GetRequestID(context.Background()))
	assert.Equal(t, "abc", GetRequestID(WithRequestID(context.Background(), "abc")))
	assert.Equal(t, "unknown", GetRequestID(WithRequestID(context.Background(), "")))
}

func TestDetachKeepsRequestIDAndDropsDeadline(t *testing.T) {
	parent, cancel := context.WithTimeout(WithRequestID(context.Background(), "req-1"), time.Millisecond)
	cancel()

	detached := Detach(parent)

	assert.Equal(t, "req-1", GetRequestID(detached))
	assert.NoError(t, detached.Err())
	_, hasDeadline := detached.Deadline()
	assert.False(t, hasDeadline)
}
