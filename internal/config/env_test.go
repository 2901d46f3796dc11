package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	cfg, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, FaceCheckService, cfg.FaceCheckProvider)
	assert.Equal(t, 24*time.Hour, cfg.RunSnapshotTTL)
	assert.Zero(t, cfg.ModelRequestTimeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MODEL_REQUEST_TIMEOUT", "90s")
	t.Setenv("FACE_CHECK_PROVIDER", "gemini")
	t.Setenv("REDIS_DB", "2")

	cfg, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.ModelRequestTimeout)
	assert.Equal(t, FaceCheckGemini, cfg.FaceCheckProvider)
	assert.Equal(t, 2, cfg.RedisDB)
}

func TestLoadEnvErrors(t *testing.T) {
	t.Setenv("REDIS_DB", "not-an-int")
	_, err := LoadEnv()
	assert.ErrorContains(t, err, "parse env:")

	t.Setenv("REDIS_DB", "0")
	t.Setenv("FACE_CHECK_PROVIDER", "psychic")
	_, err = LoadEnv()
	assert.ErrorContains(t, err, "FACE_CHECK_PROVIDER")
}
