package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"marketintel/domain/insights"
	"marketintel/internal/errors"
)

// InsightsFileName is the download name of the exported insight bundle
const InsightsFileName = "insights_report.json"

// FileStore writes rendered reports below a base directory using
// slash-separated keys
type FileStore struct {
	basePath string
}

// NewFileStore creates the base directory if needed
func NewFileStore(basePath string) (*FileStore, error) {
	if basePath == "" {
		basePath = "."
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the directory reports are written to
func (s *FileStore) BasePath() string {
	return s.basePath
}

// Save writes data under key, replacing any previous content. It returns
// the file path written.
func (s *FileStore) Save(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := s.keyToPath(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", key, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return path, nil
}

// Open returns a reader for the stored key
func (s *FileStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := s.keyToPath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("report " + key)
		}
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	return f, nil
}

// Exists reports whether key has been saved
func (s *FileStore) Exists(ctx context.Context, key string) (bool, error) {
	path, err := s.keyToPath(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check file existence: %w", err)
}

// List returns the stored keys with the given prefix, sorted
func (s *FileStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.Walk(s.basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// SaveReport renders the bundle and stores it under the format's file name
func (s *FileStore) SaveReport(ctx context.Context, bundle *insights.Bundle, format Format) (string, error) {
	data, err := Render(bundle, format)
	if err != nil {
		return "", err
	}
	return s.Save(ctx, format.FileName(), data)
}

// SaveInsights stores the bundle as the exported JSON document
func (s *FileStore) SaveInsights(ctx context.Context, bundle *insights.Bundle) (string, error) {
	data, err := bundle.MarshalIndent()
	if err != nil {
		return "", errors.Wrap(err, "failed to encode insights")
	}
	return s.Save(ctx, InsightsFileName, data)
}

func (s *FileStore) keyToPath(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.InvalidInput(fmt.Sprintf("invalid report key %q", key))
	}
	return filepath.Join(s.basePath, clean), nil
}
