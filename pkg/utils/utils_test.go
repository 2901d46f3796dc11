package utils

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewULIDFromTimestamp(t *testing.T) {
	u := New()
	a, err := u.NewULIDFromTimestamp(time.Now())
	require.NoError(t, err)
	b, err := u.NewULIDFromTimestamp(time.Now())
	require.NoError(t, err)

	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}

func TestDecodeImageDataURL(t *testing.T) {
	u := New()
	payload := base64.StdEncoding.EncodeToString([]byte("png-bytes"))

	raw, err := u.DecodeImageDataURL("data:image/png;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), raw)

	_, err = u.DecodeImageDataURL("data:text/plain;base64," + payload)
	assert.ErrorIs(t, err, ErrNotImageData)

	_, err = u.DecodeImageDataURL("data:image/png;base64,%%%")
	assert.ErrorIs(t, err, ErrInvalidBase64)

	_, err = u.DecodeImageDataURL("data:image/png;base64")
	assert.ErrorIs(t, err, ErrInvalidBase64)
}

func TestFileNameFromURL(t *testing.T) {
	cases := map[string]string{
		"https://bucket.s3.amazonaws.com/originals/f_20_white/a1.jpg?X-Amz-Signature=abc": "a1.jpg",
		"https://host/upload/0012.png":   "0012.png",
		"plain.png":                      "plain.png",
		"https://host/dir/":              "",
		"https://host/x/y.jpg#fragment":  "y.jpg",
	}
	for in, want := range cases {
		assert.Equal(t, want, FileNameFromURL(in), in)
	}
}

func TestStripImageExt(t *testing.T) {
	assert.Equal(t, "a1", StripImageExt("a1.jpg"))
	assert.Equal(t, "a1", StripImageExt("a1.JPG"))
	assert.Equal(t, "0012", StripImageExt("0012.png"))
	assert.Equal(t, "a1.jpeg", StripImageExt("a1.jpeg"))
	assert.Equal(t, "12", StripImageExt("12"))
}

func TestIsImageKey(t *testing.T) {
	assert.True(t, IsImageKey("originals/x/a.JPEG"))
	assert.True(t, IsImageKey("a.png"))
	assert.False(t, IsImageKey("originals/x/"))
	assert.False(t, IsImageKey("notes.txt"))
}
