package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"globewidget/internal/blob/core"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	if s.Driver() != core.DriverMemory {
		t.Fatalf("unexpected driver %s", s.Driver())
	}
	meta := map[string]string{"layer": "globe"}
	info, err := s.Put(ctx, "textures/earth.png", strings.NewReader("png"), core.PutOptions{ContentType: "image/png", Metadata: meta})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	meta["layer"] = "changed"
	if info.Size != 3 || info.ContentType != "image/png" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := s.Put(ctx, "textures/earth.png", strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	got, rc, err := s.Get(ctx, "textures/earth.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "png" || got.Metadata["layer"] != "globe" {
		t.Fatalf("unexpected blob %q %+v", body, got)
	}
	if _, err := s.Put(ctx, "particles/dot.png", strings.NewReader("d"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	list, _ := s.List(ctx, "textures/")
	if len(list) != 1 || list[0].Key != "textures/earth.png" {
		t.Fatalf("unexpected list %+v", list)
	}
	all, _ := s.List(ctx, "")
	if len(all) != 2 || all[0].Key != "particles/dot.png" {
		t.Fatalf("expected sorted list, got %+v", all)
	}
	if _, err := s.PresignURL(ctx, "textures/earth.png", core.SignedURLOptions{}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if ok, _ := s.Delete(ctx, "textures/earth.png"); !ok {
		t.Fatalf("expected delete")
	}
	if ok, _ := s.Delete(ctx, "textures/earth.png"); ok {
		t.Fatalf("second delete must report false")
	}
	if _, err := s.Head(ctx, "textures/earth.png"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := s.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Put(ctx, "", strings.NewReader(""), core.PutOptions{}); err == nil {
		t.Fatalf("expected empty key error")
	}
}
