package storage

import (
	"context"
)

// MockObjectStore is a configurable mock for testing storage consumers.
// Set UploadFunc to control behavior in tests.
type MockObjectStore struct {
	// UploadFunc is called when Upload is invoked.
	// If nil, returns "https://store.test/<key>" and nil error.
	UploadFunc func(ctx context.Context, key, contentType string, body []byte) (string, error)

	// UploadCalls records the keys passed to Upload, in order.
	UploadCalls []string
}

// Upload implements ObjectStore.
func (m *MockObjectStore) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	m.UploadCalls = append(m.UploadCalls, key)
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, key, contentType, body)
	}
	return "https://store.test/" + key, nil
}

// Ensure MockObjectStore implements ObjectStore at compile time.
var _ ObjectStore = (*MockObjectStore)(nil)
