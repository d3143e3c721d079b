package cart

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type fakeBlobStore struct {
	values map[string]string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{values: map[string]string{}}
}

func (f *fakeBlobStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func (f *fakeBlobStore) Get(_ context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (f *fakeBlobStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

type fakeCartKeyer struct{}

func (fakeCartKeyer) CartKey(sessionID string) string {
	return "mrc:cart:" + sessionID
}

func newTestStore() (*SessionStore, *fakeBlobStore) {
	blobs := newFakeBlobStore()
	return &SessionStore{store: blobs, keyer: fakeCartKeyer{}, ttl: time.Hour}, blobs
}

func TestLoadMissingBlobYieldsEmptyCart(t *testing.T) {
	store, _ := newTestStore()

	c, err := store.Load(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !c.IsEmpty() {
		t.Fatal("expected empty cart for missing blob")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	c := New(map[int64]int{4: 2, 9: 1})
	if err := store.Save(ctx, "sess-1", c); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := store.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	contents := loaded.Contents()
	if contents[4] != 2 || contents[9] != 1 || len(contents) != 2 {
		t.Fatalf("round trip mismatch: %v", contents)
	}
}

func TestSaveEmptyCartClearsBlob(t *testing.T) {
	store, blobs := newTestStore()
	ctx := context.Background()

	if err := store.Save(ctx, "sess-1", New(map[int64]int{1: 1})); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Save(ctx, "sess-1", New(nil)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if len(blobs.values) != 0 {
		t.Fatalf("expected blob removed, found %v", blobs.values)
	}
}

func TestLoadNormalizesLegacyBlob(t *testing.T) {
	store, blobs := newTestStore()
	blobs.values["mrc:cart:sess-1"] = `{"12": 3, "bad": 1, "0": 5}`

	c, err := store.Load(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	contents := c.Contents()
	if len(contents) != 1 || contents[12] != 3 {
		t.Fatalf("unexpected contents: %v", contents)
	}
}
