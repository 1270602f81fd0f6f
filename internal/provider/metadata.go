package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/crowdcue/platform/internal/domain"
	"github.com/crowdcue/platform/internal/guard"
)

const metadataCircuitKey = "metadata_provider"

// MetadataClient fetches display metadata for media from the catalog
// upstream. Lookups are best-effort: any failure, timeout, or open circuit
// yields the default metadata so a bid is never blocked on enrichment.
type MetadataClient struct {
	baseURL string
	logger  *slog.Logger
	client  *http.Client
	breaker *guard.CircuitBreaker
}

// NewMetadataClient creates a metadata client. An empty baseURL disables
// lookups entirely and every fetch returns defaults.
func NewMetadataClient(baseURL string, timeout time.Duration, logger *slog.Logger) *MetadataClient {
	return &MetadataClient{
		baseURL: baseURL,
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
		breaker: guard.NewCircuitBreaker(5, 30*time.Second),
	}
}

// Fetch returns metadata for the given media ID, falling back to defaults
// when the upstream is unavailable.
func (c *MetadataClient) Fetch(ctx context.Context, mediaID string) domain.MediaMetadata {
	if c.baseURL == "" {
		return domain.DefaultMetadata()
	}

	if res := c.breaker.Check(ctx, metadataCircuitKey); !res.Allowed {
		c.logger.Debug("metadata lookup skipped", "reason", res.Reason)
		return domain.DefaultMetadata()
	}

	meta, err := c.fetchFromAPI(ctx, mediaID)
	if err != nil {
		c.breaker.RecordFailure(metadataCircuitKey)
		c.logger.Warn("metadata provider unavailable, using defaults",
			"media_id", mediaID, "error", err)
		return domain.DefaultMetadata()
	}

	c.breaker.RecordSuccess(metadataCircuitKey)
	return meta
}

func (c *MetadataClient) fetchFromAPI(ctx context.Context, mediaID string) (domain.MediaMetadata, error) {
	endpoint := fmt.Sprintf("%s/v1/media/%s", c.baseURL, url.PathEscape(mediaID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.MediaMetadata{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.MediaMetadata{}, fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.MediaMetadata{}, fmt.Errorf("api returned %d", resp.StatusCode)
	}

	var meta domain.MediaMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return domain.MediaMetadata{}, fmt.Errorf("decode response: %w", err)
	}

	if meta.Title == "" {
		meta.Title = domain.DefaultMetadata().Title
	}
	if meta.Artist == "" {
		meta.Artist = domain.DefaultMetadata().Artist
	}
	return meta, nil
}
