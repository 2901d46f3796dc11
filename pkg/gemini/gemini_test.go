package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFaceAnswer(t *testing.T) {
	ok, err := ParseFaceAnswer(`{"has_face": true}`)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ParseFaceAnswer("```json\n{\"has_face\": false}\n```")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = ParseFaceAnswer(`Sure. {"has_face":true} Hope that helps.`)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseFaceAnswerRejectsGarbage(t *testing.T) {
	_, err := ParseFaceAnswer("I think so")
	assert.Error(t, err)

	_, err = ParseFaceAnswer(`{"face": true}`)
	assert.Error(t, err)
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient("", "")
	assert.Error(t, err)
}
