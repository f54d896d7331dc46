// Package imagecache keeps decoded poster and backdrop images in memory and
// collapses concurrent fetches of the same URL into one network request.
package imagecache

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/gabriel-vasile/mimetype"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"

	"github.com/mmcdole/cinelist/internal/domain"
)

const defaultSize = 256

// Cache maps absolute image URLs to decoded images.
// Failures are never cached, so a later Fetch retries.
type Cache struct {
	fetcher domain.ImageFetcher
	images  *lru.Cache[string, image.Image]
	group   singleflight.Group
	logger  *slog.Logger

	waiting atomic.Int32 // Callers currently waiting on an in-flight fetch
}

// New creates a cache holding up to size decoded images
func New(fetcher domain.ImageFetcher, size int, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if size <= 0 {
		size = defaultSize
	}
	images, err := lru.New[string, image.Image](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create image cache: %w", err)
	}
	return &Cache{fetcher: fetcher, images: images, logger: logger}, nil
}

// Fetch returns the decoded image for rawURL. A hit returns without I/O.
// Concurrent callers for the same URL share one network fetch.
func (c *Cache) Fetch(ctx context.Context, rawURL string) (image.Image, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	if img, ok := c.images.Get(rawURL); ok {
		return img, nil
	}

	// The shared fetch outlives any single caller's cancellation
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(rawURL, func() (any, error) {
		if img, ok := c.images.Get(rawURL); ok {
			return img, nil
		}
		return c.load(fetchCtx, rawURL)
	})

	c.waiting.Add(1)
	defer c.waiting.Add(-1)

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(image.Image), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Peek returns a cached image without fetching
func (c *Cache) Peek(rawURL string) (image.Image, bool) {
	return c.images.Get(rawURL)
}

// Len returns the number of cached images
func (c *Cache) Len() int {
	return c.images.Len()
}

// Purge drops every cached image
func (c *Cache) Purge() {
	c.images.Purge()
}

func (c *Cache) load(ctx context.Context, rawURL string) (image.Image, error) {
	data, err := c.fetcher.FetchImage(ctx, rawURL)
	if err != nil {
		c.logger.Warn("image fetch failed", "url", rawURL, "error", err)
		return nil, err
	}

	img, err := decode(data)
	if err != nil {
		c.logger.Warn("image decode failed", "url", rawURL, "bytes", len(data), "error", err)
		return nil, err
	}

	c.images.Add(rawURL, img)
	c.logger.Debug("image cached", "url", rawURL, "bounds", img.Bounds().String())
	return img, nil
}

func decode(data []byte) (image.Image, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, domain.NewDecodingFailed(fmt.Errorf("unexpected content type %s", mt.String()))
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.NewDecodingFailed(fmt.Errorf("decode %s: %w", mt.String(), err))
	}
	return img, nil
}

func validateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("%w: empty", domain.ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", domain.ErrInvalidURL, rawURL)
	}
	return nil
}
