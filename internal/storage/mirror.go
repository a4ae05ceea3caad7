// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// MaxImageSize caps the featured image download when mirroring.
const MaxImageSize = 10 << 20

// imageExtensions maps accepted content types to object key extensions.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ObjectStore is the subset of *Client the mirror needs.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	FileURL(key string) string
	ExtractKey(rawURL string) (string, bool)
}

// Mirror copies remote featured images into object storage so published
// posts do not hotlink the image search provider. A nil *Mirror keeps
// every URL unchanged.
type Mirror struct {
	store  ObjectStore
	client *http.Client
}

// NewMirror returns a mirror uploading into store, or nil when store is nil.
func NewMirror(store ObjectStore, timeout time.Duration) *Mirror {
	if store == nil {
		return nil
	}
	if c, ok := store.(*Client); ok && c == nil {
		return nil
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Mirror{store: store, client: &http.Client{Timeout: timeout}}
}

// Image returns the URL under which the image at src is served after
// mirroring. On any failure the original URL is returned and the failure
// is logged.
func (m *Mirror) Image(ctx context.Context, src string) string {
	if m == nil || src == "" {
		return src
	}
	if _, ours := m.store.ExtractKey(src); ours {
		return src
	}

	url, err := m.copy(ctx, src)
	if err != nil {
		slog.Warn("featured image mirror failed, keeping original", "url", src, "error", err)
		return src
	}
	slog.Info("featured image mirrored", "from", src, "to", url)
	return url
}

func (m *Mirror) copy(ctx context.Context, src string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("parse content type: %w", err)
	}
	ext, ok := imageExtensions[mediaType]
	if !ok {
		return "", fmt.Errorf("unsupported content type %q", mediaType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(data) > MaxImageSize {
		return "", fmt.Errorf("image exceeds %d bytes", MaxImageSize)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty image body")
	}

	key := "featured/" + uuid.NewString() + ext
	if err := m.store.Upload(ctx, key, mediaType, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", err
	}
	return m.store.FileURL(key), nil
}
