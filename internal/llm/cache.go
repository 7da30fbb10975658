package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache stores serialized responses by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachingProvider is a decorator that serves repeated identical requests
// from a Cache. Cache failures never fail the request.
type CachingProvider struct {
	inner Provider
	cache Cache
	ttl   time.Duration
}

// WithCache wraps a Provider with response caching. A nil cache returns p
// unchanged.
func WithCache(p Provider, c Cache, ttl time.Duration) Provider {
	if c == nil {
		return p
	}
	return &CachingProvider{inner: p, cache: c, ttl: ttl}
}

func (c *CachingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	key := CacheKey(c.inner.ModelID(), req)

	if raw, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		var entry cacheEntry
		if json.Unmarshal(raw, &entry) == nil {
			return &Response{
				Content:    json.RawMessage(entry.Content),
				Usage:      entry.Usage,
				Model:      entry.Model,
				StopReason: entry.StopReason,
			}, nil
		}
	}

	resp, err := c.inner.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	entry := cacheEntry{
		Content:    string(resp.Content),
		Usage:      resp.Usage,
		Model:      resp.Model,
		StopReason: resp.StopReason,
	}
	if raw, err := json.Marshal(entry); err == nil {
		_ = c.cache.Set(ctx, key, raw, c.ttl)
	}
	return resp, nil
}

// cacheEntry stores Content as a string since unstructured responses are
// not valid JSON.
type cacheEntry struct {
	Content    string `json:"content"`
	Usage      Usage  `json:"usage"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
}

func (c *CachingProvider) ModelID() string {
	return c.inner.ModelID()
}

// CacheKey derives a stable key from the model and every request field that
// influences the output.
func CacheKey(model string, req Request) string {
	h := sha256.New()
	fmt.Fprintf(h, "model=%s\ntemp=%g\nmax=%d\n", model, req.Temperature, req.MaxTokens)
	fmt.Fprintf(h, "system=%s\n", req.System)
	for _, m := range req.Messages {
		fmt.Fprintf(h, "%s=%s\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		def, _ := json.Marshal(req.Schema.Definition)
		fmt.Fprintf(h, "schema=%s:%s\n", req.Schema.Name, def)
	}
	return "llm:" + hex.EncodeToString(h.Sum(nil))
}
