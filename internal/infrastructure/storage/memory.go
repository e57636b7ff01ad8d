package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

var _ catalogapp.ImageStorage = (*MemoryImageStorage)(nil)

// MemoryImageStorage keeps uploads in memory. It backs development setups
// without a bucket; URLs point at BaseURL and are not served.
type MemoryImageStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryImageStorage creates an empty store
func NewMemoryImageStorage(baseURL string) *MemoryImageStorage {
	if baseURL == "" {
		baseURL = "http://localhost:8080/static"
	}
	return &MemoryImageStorage{
		BaseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string][]byte),
	}
}

// PutObject stores body under key
func (m *MemoryImageStorage) PutObject(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	data, err := io.ReadAll(io.LimitReader(body, MaxImageSize+1))
	if err != nil {
		return "", err
	}
	if len(data) > MaxImageSize {
		return "", ErrImageTooLarge
	}
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return m.BaseURL + "/" + key, nil
}

// DeleteObject removes key
func (m *MemoryImageStorage) DeleteObject(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// KeyFromURL maps a URL produced by PutObject back to its key
func (m *MemoryImageStorage) KeyFromURL(u string) (string, bool) {
	return keyFromURL(m.BaseURL, u)
}

// Object returns a stored object
func (m *MemoryImageStorage) Object(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[key]
	return b, ok
}
