package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	payload := "equipment,accessories,cartridges"
	info, err := store.Put(ctx, "exports/sample.csv", strings.NewReader(payload), PutOptions{
		ContentType: "text/csv",
		Metadata:    map[string]string{"equipment": "3"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "exports/sample.csv" || info.Size != int64(len(payload)) {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.ETag == "" {
		t.Fatal("etag must be computed")
	}

	head, err := store.Head(ctx, "exports/sample.csv")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.ContentType != "text/csv" || head.Metadata["equipment"] != "3" {
		t.Fatalf("metadata lost: %+v", head)
	}

	got, rc, err := store.Get(ctx, "exports/sample.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != payload {
		t.Fatalf("payload corrupted: %q", data)
	}
	if got.ETag != info.ETag {
		t.Fatalf("etag changed between put and get: %q vs %q", got.ETag, info.ETag)
	}

	if _, err := store.Put(ctx, "other/file.txt", strings.NewReader("x"), PutOptions{}); err != nil {
		t.Fatalf("put second: %v", err)
	}
	infos, err := store.List(ctx, "exports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 || infos[0].Key != "exports/sample.csv" {
		t.Fatalf("prefix listing wrong: %+v", infos)
	}

	url, err := store.PresignURL(ctx, "exports/sample.csv", SignedURLOptions{})
	if err != nil || url == "" {
		t.Fatalf("presign: %q %v", url, err)
	}
	if _, err := store.PresignURL(ctx, "exports/sample.csv", SignedURLOptions{Method: "PUT"}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("non-GET presign must be unsupported, got %v", err)
	}

	removed, err := store.Delete(ctx, "exports/sample.csv")
	if err != nil || !removed {
		t.Fatalf("delete: %v removed=%v", err, removed)
	}
	removed, err = store.Delete(ctx, "exports/sample.csv")
	if err != nil || removed {
		t.Fatalf("double delete must be a no-op: %v removed=%v", err, removed)
	}
	if _, err := store.Head(ctx, "exports/sample.csv"); err == nil {
		t.Fatal("head after delete must fail")
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemory())
}

func TestFilesystemStore(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new filesystem store: %v", err)
	}
	testStore(t, store)
}

func TestFilesystemStoreRejectsTraversal(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new filesystem store: %v", err)
	}
	ctx := context.Background()
	if _, err := store.Put(ctx, "../outside.txt", strings.NewReader("x"), PutOptions{}); err == nil {
		t.Fatal("path traversal must be rejected")
	}
	if _, err := store.Put(ctx, "", strings.NewReader("x"), PutOptions{}); err == nil {
		t.Fatal("empty key must be rejected")
	}
}

func TestFilesystemStoreOverwrite(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new filesystem store: %v", err)
	}
	ctx := context.Background()
	if _, err := store.Put(ctx, "exports/a.csv", strings.NewReader("one"), PutOptions{}); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if _, err := store.Put(ctx, "exports/a.csv", strings.NewReader("two"), PutOptions{}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	_, rc, err := store.Get(ctx, "exports/a.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "two" {
		t.Fatalf("overwrite not applied: %q", data)
	}
}
