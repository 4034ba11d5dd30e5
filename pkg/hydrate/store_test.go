package hydrate

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/hydrate/pkg/codec"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestRenderID(t *testing.T) {
	a, b := NewRenderID(), NewRenderID()
	if a == b {
		t.Errorf("two render ids are both %q", a)
	}
	if !ValidRenderID(a) {
		t.Errorf("ValidRenderID(%q) = false", a)
	}
	if ValidRenderID("../etc/passwd") {
		t.Error("accepted a path as a render id")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	store := NewMemoryStore(WithSweepInterval(0), WithClock(clock.Now))
	defer store.Close()
	ctx := context.Background()

	payload := []byte("€a")
	if err := store.Save(ctx, "id", payload, time.Minute); err != nil {
		t.Fatal(err)
	}
	payload[0] = 'x'

	got, err := store.Load(ctx, "id")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("€a")) {
		t.Errorf("Load = %q; the store shares the caller's slice", got)
	}

	clock.Advance(time.Minute)
	if _, err := store.Load(ctx, "id"); !errors.Is(err, ErrPayloadNotFound) {
		t.Errorf("Load after expiry = %v", err)
	}
	if n := store.Len(); n != 0 {
		t.Errorf("Len = %d, want 0", n)
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	store := NewMemoryStore(WithSweepInterval(0), WithClock(clock.Now))
	defer store.Close()

	mustSave(t, store, "short", []byte("1"), time.Second)
	mustSave(t, store, "long", []byte("2"), time.Hour)
	clock.Advance(time.Minute)

	store.sweep()
	if n := store.Len(); n != 1 {
		t.Errorf("Len = %d, want 1", n)
	}
}

func TestMemoryStoreDeleteAndClose(t *testing.T) {
	store := NewMemoryStore(WithSweepInterval(time.Millisecond))
	ctx := context.Background()

	mustSave(t, store, "id", []byte("1"), time.Minute)
	for _, id := range []string{"id", "missing"} {
		if err := store.Delete(ctx, id); err != nil {
			t.Errorf("Delete(%q): %v", id, err)
		}
	}
	if _, err := store.Load(ctx, "id"); !errors.Is(err, ErrPayloadNotFound) {
		t.Errorf("Load after Delete = %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := store.Close(); err != nil {
			t.Fatalf("Close #%d: %v", i+1, err)
		}
	}
	if err := store.Save(ctx, "id", nil, time.Minute); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Save after Close = %v", err)
	}
	if _, err := store.Load(ctx, "id"); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Load after Close = %v", err)
	}
}

func mustSave(t *testing.T, store Store, id string, payload []byte, ttl time.Duration) {
	t.Helper()
	if err := store.Save(context.Background(), id, payload, ttl); err != nil {
		t.Fatalf("Save(%q): %v", id, err)
	}
}

type fakeRedis struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	closed bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Set(_ context.Context, key string, value []byte, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = append([]byte(nil), value...)
	f.ttls[key] = expiration
	return nil
}

func (f *fakeRedis) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return nil, ErrPayloadNotFound
	}
	return v, nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedisStore(t *testing.T) {
	client := newFakeRedis()
	store := NewRedisStore(client, WithRedisPrefix("test:"))
	ctx := context.Background()

	if p := store.Prefix(); p != "test:" {
		t.Errorf("Prefix = %q", p)
	}
	mustSave(t, store, "abc", []byte("payload"), 30*time.Second)
	if _, ok := client.data["test:abc"]; !ok {
		t.Errorf("keys = %v, want test:abc", client.data)
	}
	if ttl := client.ttls["test:abc"]; ttl != 30*time.Second {
		t.Errorf("ttl = %v", ttl)
	}

	got, err := store.Load(ctx, "abc")
	if err != nil || string(got) != "payload" {
		t.Errorf("Load = %q, %v", got, err)
	}

	// A zero TTL deletes.
	mustSave(t, store, "abc", []byte("x"), 0)
	if _, err := store.Load(ctx, "abc"); !errors.Is(err, ErrPayloadNotFound) {
		t.Errorf("Load after zero TTL = %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
	if !client.closed {
		t.Error("client left open")
	}
}

func TestRedisStoreDefaultPrefix(t *testing.T) {
	if p := NewRedisStore(newFakeRedis()).Prefix(); p != "hydrate:payload:" {
		t.Errorf("Prefix = %q", p)
	}
}

func newPayloadServer(t *testing.T, store Store) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Mount(PayloadPath, PayloadHandler(store, nil))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestPublishAndFetch(t *testing.T) {
	store := NewMemoryStore(WithSweepInterval(0))
	defer store.Close()
	srv := newPayloadServer(t, store)
	ctx := context.Background()

	c := NewCollector()
	c.Record(okEnvelope(t, 0, 1, AsciiDeath{Killer: "€a", After: true}))

	id, err := Publish(ctx, store, c, time.Minute)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !ValidRenderID(id) {
		t.Errorf("Publish returned id %q", id)
	}

	envs, err := FetchPayload(ctx, srv.Client(), srv.URL+PayloadURL(PayloadPath, id))
	if err != nil {
		t.Fatalf("FetchPayload: %v", err)
	}
	if len(envs) != 1 {
		t.Fatalf("envelopes = %d, want 1", len(envs))
	}

	seed, err := DecodeEnvelope[AsciiDeath](codec.JSON, envs[0])
	if err != nil {
		t.Fatal(err)
	}
	if seed.Value.Killer != "€a" {
		t.Errorf("killer = %q", seed.Value.Killer)
	}
}

func TestPayloadHandlerStatuses(t *testing.T) {
	store := NewMemoryStore(WithSweepInterval(0))
	defer store.Close()
	srv := newPayloadServer(t, store)

	statuses := map[string]int{
		PayloadPath + "/not-a-uuid":            http.StatusBadRequest,
		PayloadURL(PayloadPath, NewRenderID()): http.StatusNotFound,
	}
	for path, want := range statuses {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Errorf("GET %s = %d, want %d", path, resp.StatusCode, want)
		}
	}
}

func TestFetchPayloadFailures(t *testing.T) {
	store := NewMemoryStore(WithSweepInterval(0))
	defer store.Close()
	srv := newPayloadServer(t, store)
	ctx := context.Background()

	id := NewRenderID()
	mustSave(t, store, id, []byte("HYDR garbage"), time.Minute)

	tests := []struct {
		name string
		url  string
	}{
		{"missing", srv.URL + PayloadURL(PayloadPath, NewRenderID())},
		{"malformed", srv.URL + PayloadURL(PayloadPath, id)},
		{"unreachable", "http://127.0.0.1:1/_hydrate/payload/x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FetchPayload(ctx, nil, tt.url)
			hydrationError(t, err, KindPayload)
		})
	}
}
