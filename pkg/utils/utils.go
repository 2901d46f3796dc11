package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ErrNotImageData  = errors.New("data is not an image data url")
	ErrInvalidBase64 = errors.New("image data is not valid base64")
	ErrImageTooLarge = errors.New("image exceeds size limit")
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	DecodeImageDataURL(data string) ([]byte, error)
}

type utils struct {
	maxFileSize int
}

func New() IUtils {
	return &utils{
		maxFileSize: 10 * 1024 * 1024,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// DecodeImageDataURL accepts "data:image/<type>;base64,<payload>" and returns the raw bytes.
func (u *utils) DecodeImageDataURL(data string) ([]byte, error) {
	if !strings.HasPrefix(data, "data:image/") {
		return nil, ErrNotImageData
	}

	_, payload, found := strings.Cut(data, ",")
	if !found || payload == "" {
		return nil, ErrInvalidBase64
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidBase64
	}

	if len(raw) > u.maxFileSize {
		return nil, ErrImageTooLarge
	}

	return raw, nil
}

// FileNameFromURL returns the last path segment of a URL, without query string.
func FileNameFromURL(rawURL string) string {
	name := rawURL
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// StripImageExt drops a trailing .jpg or .png, case-insensitively.
func StripImageExt(name string) string {
	ext := path.Ext(name)
	switch strings.ToLower(ext) {
	case ".jpg", ".png":
		return name[:len(name)-len(ext)]
	}
	return name
}

func IsImageKey(key string) bool {
	switch strings.ToLower(path.Ext(key)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}
