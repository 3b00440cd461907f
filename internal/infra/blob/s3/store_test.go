package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"globewidget/internal/blob/core"
)

func TestStoreMockedBasicFlow(t *testing.T) {
	store := NewMockForTests(0)
	ctx := context.Background()
	if store.Driver() != core.DriverS3 {
		t.Fatalf("expected DriverS3")
	}
	info, err := store.Put(ctx, "textures/earth.png", bytes.NewReader([]byte("hello")), core.PutOptions{
		ContentType: "image/png",
		Metadata:    map[string]string{"layer": "globe"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "textures/earth.png" || info.ContentType != "image/png" || info.Size != 5 || info.ETag != "etag123" {
		t.Fatalf("unexpected info %#v", info)
	}
	if info.Metadata["layer"] != "globe" {
		t.Fatalf("expected metadata round trip, got %v", info.Metadata)
	}
	if _, err := store.Put(ctx, "textures/earth.png", bytes.NewReader([]byte("ignored")), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	_, rc, err := store.Get(ctx, "textures/earth.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "hello" {
		t.Fatalf("get mismatch: %q", string(data))
	}
	url, err := store.PresignURL(ctx, "textures/earth.png", core.SignedURLOptions{Expiry: 30 * time.Second})
	if err != nil || !strings.Contains(url, "mock-bucket/textures/earth.png") || !strings.Contains(url, "X-Amz-Expires=30") {
		t.Fatalf("presign: %v %s", err, url)
	}
	if ok, err := store.Delete(ctx, "textures/earth.png"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, err := store.Delete(ctx, "textures/earth.png"); err != nil || ok {
		t.Fatalf("second delete: %v %v", ok, err)
	}
}

func TestStoreListPaginates(t *testing.T) {
	store := NewMockForTests(2)
	ctx := context.Background()
	for _, key := range []string{"tiles/c.png", "tiles/a.png", "tiles/b.png", "other.png", "tiles/d.png"} {
		if _, err := store.Put(ctx, key, strings.NewReader(key), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	list, err := store.List(ctx, "tiles/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var keys []string
	for _, info := range list {
		keys = append(keys, info.Key)
	}
	if strings.Join(keys, ",") != "tiles/a.png,tiles/b.png,tiles/c.png,tiles/d.png" {
		t.Fatalf("unexpected keys %v", keys)
	}
	if empty, err := store.List(ctx, "none/"); err != nil || len(empty) != 0 {
		t.Fatalf("expected empty list: %v %+v", err, empty)
	}
}

func TestStoreNotFoundAndUnsupported(t *testing.T) {
	store := NewMockForTests(0)
	ctx := context.Background()
	if _, err := store.Head(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from head, got %v", err)
	}
	if _, _, err := store.Get(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from get, got %v", err)
	}
	if _, err := store.PresignURL(ctx, "k", core.SignedURLOptions{Method: "PUT"}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestNewAndOpenFromEnv(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIA")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "SECRET")
	s, err := New(context.Background(), Config{Bucket: "bkt", Endpoint: "https://mock.s3.local", PathStyle: true, HTTPClient: &http.Client{}})
	if err != nil || s.bucket != "bkt" {
		t.Fatalf("New: %v", err)
	}
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for missing bucket")
	}
	t.Setenv("GLOBEWIDGET_BLOB_S3_BUCKET", "")
	if _, err := OpenFromEnv(context.Background()); err == nil {
		t.Fatalf("expected missing bucket error")
	}
	t.Setenv("GLOBEWIDGET_BLOB_S3_BUCKET", "env-bucket")
	t.Setenv("GLOBEWIDGET_BLOB_S3_PATH_STYLE", "TRUE")
	if s, err := OpenFromEnv(context.Background()); err != nil || s.bucket != "env-bucket" {
		t.Fatalf("OpenFromEnv: %v", err)
	}
}

func TestFromHeadNilBranches(t *testing.T) {
	store := NewMockForTests(0)
	etag := `"etagval"`
	info := store.fromHead("k", 10, nil, &etag, map[string]string{"x": "y"}, nil)
	if info.ETag != "etagval" || info.ContentType != "" || info.Key != "k" || info.Size != 10 || info.LastModified.IsZero() {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestDecodeChunked(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"not-chunked", "", false},
		{"5\r\nabc\r\n0\r\n", "", false},
		{"5\r\nhello\r\n0\r\n", "hello", true},
		{"5\r\nhello\r\n0\r\nx-amz-checksum-crc32:AAAA\r\n\r\n", "hello", true},
	}
	for _, tc := range cases {
		got, ok := decodeChunked([]byte(tc.in))
		if ok != tc.ok || string(got) != tc.want {
			t.Fatalf("decodeChunked(%q) = %q,%v", tc.in, got, ok)
		}
	}
}

func TestMockRoundTripperUnsupportedMethod(t *testing.T) {
	rt := &mockRoundTripper{state: make(map[string]mockObj)}
	req, _ := http.NewRequest(http.MethodPatch, "https://mock.s3.local/bucket/key", nil)
	resp, _ := rt.RoundTrip(req)
	if resp.StatusCode != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", resp.StatusCode)
	}
}
