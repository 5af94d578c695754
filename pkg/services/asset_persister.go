package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yardsketch/yardsketch-engine/pkg/storage"
)

// maxAssetBytes caps how much of a generated rendering is read into memory.
const maxAssetBytes = 20 << 20 // 20 MiB

// AssetPersister re-hosts transient generated-image URLs into the object
// store so they remain retrievable after the generative service's links
// expire. Individual failures never sink the batch: the original URL is
// kept in place of any asset that could not be re-hosted.
type AssetPersister struct {
	store      storage.ObjectStore
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAssetPersister creates an asset persister using the given object store.
func NewAssetPersister(store storage.ObjectStore, logger *zap.Logger) *AssetPersister {
	return &AssetPersister{
		store: store,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger.Named("assets"),
	}
}

// Persist fetches each URL and stores its bytes under a key namespaced by
// owner and project, returning durable URLs in input order. On any per-URL
// failure the original URL is emitted at that position instead. Empty
// entries are skipped entirely.
func (p *AssetPersister) Persist(ctx context.Context, urls []string, ownerID, projectID string) []string {
	out := make([]string, 0, len(urls))

	for i, url := range urls {
		if url == "" {
			continue
		}

		durable, err := p.persistOne(ctx, url, ownerID, projectID, i)
		if err != nil {
			p.logger.Warn("failed to persist generated asset, keeping transient URL",
				zap.String("url", url),
				zap.String("project_id", projectID),
				zap.Error(err))
			out = append(out, url)
			continue
		}
		out = append(out, durable)
	}

	return out
}

func (p *AssetPersister) persistOne(ctx context.Context, url, ownerID, projectID string, index int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build fetch request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch asset: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
	if err != nil {
		return "", fmt.Errorf("read asset body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	key := fmt.Sprintf("generated/%s/%s/%d_%d.png", ownerID, projectID, time.Now().UnixMilli(), index)

	durable, err := p.store.Upload(ctx, key, contentType, body)
	if err != nil {
		return "", fmt.Errorf("store asset: %w", err)
	}

	return durable, nil
}
