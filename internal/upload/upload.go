package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrUnsupportedType = errors.New("unsupported image type")

// Store persists an uploaded file and returns the URL clients use to fetch it.
type Store interface {
	Save(ctx context.Context, originalName, contentType string, r io.Reader) (string, error)
}

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectName random file name keeping an image extension derived from the
// content type (falling back to the client's extension).
func ObjectName(originalName, contentType string) (string, error) {
	ext, ok := imageExt[strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))]
	if !ok {
		ext = strings.ToLower(filepath.Ext(originalName))
		switch ext {
		case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		default:
			return "", ErrUnsupportedType
		}
	}
	return "profile-" + uuid.NewString() + ext, nil
}

// LocalStore writes into a directory served under BaseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

var _ Store = (*LocalStore)(nil)

func (s *LocalStore) Save(ctx context.Context, originalName, contentType string, r io.Reader) (string, error) {
	name, err := ObjectName(originalName, contentType)
	if err != nil {
		return "", err
	}
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close upload file: %w", err)
	}
	return s.baseURL + "/" + name, nil
}

// Handler serves stored files; mount it at BaseURL + "/".
func (s *LocalStore) Handler() http.Handler {
	return http.StripPrefix(s.baseURL+"/", http.FileServer(http.Dir(s.dir)))
}

func (s *LocalStore) BaseURL() string { return s.baseURL }
