package assets

import (
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"globewidget/internal/infra/blob/fs"
	"globewidget/internal/infra/blob/memory"
	"globewidget/internal/infra/blob/s3"
)

func TestDataURL(t *testing.T) {
	if got := DataURL("image/svg+xml", []byte("<svg/>")); got != "data:image/svg+xml;base64,PHN2Zy8+" {
		t.Fatalf("unexpected data url %s", got)
	}
	if got := DataURL("", []byte("\x89PNG\r\n\x1a\n")); !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Fatalf("expected sniffed png, got %s", got)
	}
}

func TestImageDataURLDecodesBack(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(1, 0, color.RGBA{R: 255, A: 255})
	u, err := ImageDataURL(img)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(u, "data:image/png;base64,"))
	if err != nil {
		t.Fatalf("base64: %v", err)
	}
	decoded, err := png.Decode(strings.NewReader(string(raw)))
	if err != nil {
		t.Fatalf("png: %v", err)
	}
	if r, _, _, _ := decoded.At(1, 0).RGBA(); r != 0xffff {
		t.Fatalf("pixel lost: %v", decoded.At(1, 0))
	}
	if _, err := ImageDataURL(nil); err == nil {
		t.Fatalf("expected nil image error")
	}
}

func TestResolverPublishIsContentAddressed(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	r := NewResolver(store, WithPrefix("/textures/"))
	k1, err := r.Publish(ctx, "earth.svg", "image/svg+xml", []byte("<svg/>"))
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	k2, err := r.Publish(ctx, "earth.svg", "image/svg+xml", []byte("<svg/>"))
	if err != nil || k1 != k2 {
		t.Fatalf("expected same key, got %s %s %v", k1, k2, err)
	}
	k3, _ := r.Publish(ctx, "../../earth.svg", "", []byte("<svg></svg>"))
	if k3 == k1 || !strings.HasPrefix(k3, "textures/") || strings.Contains(k3, "..") {
		t.Fatalf("unexpected key %s", k3)
	}
	list, _ := store.List(ctx, "textures/")
	if len(list) != 2 {
		t.Fatalf("expected two blobs, got %+v", list)
	}
}

func TestResolverURLFallsBackToDataURL(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(memory.New(), WithInlineLimit(16))
	key, err := r.Publish(ctx, "dot.svg", "image/svg+xml", []byte("<svg/>"))
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	u, err := r.URL(ctx, key)
	if err != nil || u != "data:image/svg+xml;base64,PHN2Zy8+" {
		t.Fatalf("unexpected url %s %v", u, err)
	}
	big, _ := r.Publish(ctx, "big.bin", "application/octet-stream", make([]byte, 32))
	if _, err := r.URL(ctx, big); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if _, err := r.URL(ctx, "missing"); err == nil {
		t.Fatalf("expected missing blob error")
	}
}

func TestResolverURLPresigns(t *testing.T) {
	ctx := context.Background()
	served, err := fs.New(t.TempDir(), fs.WithBaseURL("https://cdn.example.com"))
	if err != nil {
		t.Fatalf("fs: %v", err)
	}
	r := NewResolver(served)
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	key, err := r.PublishImage(ctx, "bump.png", img)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	u, err := r.URL(ctx, key)
	if err != nil || u != "https://cdn.example.com/"+key {
		t.Fatalf("unexpected url %s %v", u, err)
	}

	bucket := NewResolver(s3.NewMockForTests(0), WithExpiry(0))
	key, err = bucket.Publish(ctx, "tile.png", "image/png", []byte("png"))
	if err != nil {
		t.Fatalf("publish s3: %v", err)
	}
	if u, err := bucket.URL(ctx, key); err != nil || !strings.HasPrefix(u, "https://mock.s3.local/mock-bucket/") {
		t.Fatalf("unexpected s3 url %s %v", u, err)
	}
}
