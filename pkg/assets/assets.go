// Package assets turns images and stored blobs into URLs the renderer can
// load: globe textures, bump maps, tile materials and particle sprites.
package assets

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"globewidget/internal/blob"
)

type (
	// Store is the blob backend assets are kept in.
	Store = blob.Store
	// Info describes a stored asset.
	Info = blob.Info
)

// OpenStore selects a backend from GLOBEWIDGET_BLOB_* environment variables.
func OpenStore(ctx context.Context) (Store, error) { return blob.Open(ctx) }

// DataURL encodes data as a base64 data URL. An empty content type is
// sniffed from the data.
func DataURL(contentType string, data []byte) string {
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ImageDataURL encodes img as a PNG data URL.
func ImageDataURL(img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("assets: nil image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("assets: encode png: %w", err)
	}
	return DataURL("image/png", buf.Bytes()), nil
}

// Resolver publishes assets to a Store and turns keys into URLs.
type Resolver struct {
	store  Store
	prefix string
	expiry time.Duration
	// inline caps the size of blobs embedded as data URLs when the store
	// cannot presign.
	inline int64
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPrefix sets the key prefix used by Publish (default "assets").
func WithPrefix(prefix string) Option {
	return func(r *Resolver) { r.prefix = strings.Trim(prefix, "/") }
}

// WithExpiry sets the lifetime of presigned URLs.
func WithExpiry(d time.Duration) Option {
	return func(r *Resolver) { r.expiry = d }
}

// WithInlineLimit caps the size of blobs inlined as data URLs.
func WithInlineLimit(n int64) Option {
	return func(r *Resolver) { r.inline = n }
}

// NewResolver returns a resolver over store.
func NewResolver(store Store, opts ...Option) *Resolver {
	r := &Resolver{store: store, prefix: "assets", expiry: time.Hour, inline: 8 << 20}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ErrTooLarge is returned by URL when a blob cannot be presigned and exceeds
// the inline limit.
var ErrTooLarge = errors.New("assets: blob too large to inline")

// Publish stores data under a content-addressed key and returns the key.
// Publishing identical content twice yields the same key and one blob.
func (r *Resolver) Publish(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	sum := sha256.Sum256(data)
	key := path.Join(r.prefix, hex.EncodeToString(sum[:8]), path.Base("/"+name))
	_, err := r.store.Put(ctx, key, bytes.NewReader(data), blob.PutOptions{ContentType: contentType})
	if err != nil && !errors.Is(err, blob.ErrExists) {
		return "", fmt.Errorf("assets: publish %s: %w", name, err)
	}
	return key, nil
}

// PublishImage encodes img as PNG and publishes it.
func (r *Resolver) PublishImage(ctx context.Context, name string, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("assets: encode png: %w", err)
	}
	return r.Publish(ctx, name, "image/png", buf.Bytes())
}

// URL returns a URL for key: a presigned URL when the store supports it,
// otherwise a data URL embedding the blob.
func (r *Resolver) URL(ctx context.Context, key string) (string, error) {
	u, err := r.store.PresignURL(ctx, key, blob.SignedURLOptions{Expiry: r.expiry})
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, blob.ErrUnsupported) {
		return "", fmt.Errorf("assets: presign %s: %w", key, err)
	}
	info, rc, err := r.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("assets: read %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()
	if info.Size > r.inline {
		return "", fmt.Errorf("%s (%d bytes): %w", key, info.Size, ErrTooLarge)
	}
	data, err := io.ReadAll(io.LimitReader(rc, r.inline+1))
	if err != nil {
		return "", fmt.Errorf("assets: read %s: %w", key, err)
	}
	if int64(len(data)) > r.inline {
		return "", fmt.Errorf("%s: %w", key, ErrTooLarge)
	}
	return DataURL(info.ContentType, data), nil
}
