package cache

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

var errFatal = errors.New("fatal")

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// LayoutKey should include options in hash
	lk1 := k.LayoutKey("bp123", LayoutKeyOpts{Seed: 1, MaxRebases: 100})
	lk2 := k.LayoutKey("bp123", LayoutKeyOpts{Seed: 2, MaxRebases: 100})
	if lk1 == lk2 {
		t.Error("Different seeds should produce different keys")
	}
	if lk1 != k.LayoutKey("bp123", LayoutKeyOpts{Seed: 1, MaxRebases: 100}) {
		t.Error("LayoutKey should be deterministic")
	}
	if !strings.HasPrefix(lk1, "layout:") {
		t.Errorf("LayoutKey unexpected: %s", lk1)
	}
	if lk1 == k.LayoutKey("bp124", LayoutKeyOpts{Seed: 1, MaxRebases: 100}) {
		t.Error("Different blueprints should produce different keys")
	}
	if digest("bp123", LayoutKeyOpts{}) == digest("bp123", LayoutKeyOpts{Collectables: true}) {
		t.Error("digest should cover every option field")
	}

	// ArtifactKey
	ak1 := k.ArtifactKey("id", ArtifactKeyOpts{Kind: "floor", Floor: 0, Format: "png"})
	ak2 := k.ArtifactKey("id", ArtifactKeyOpts{Kind: "floor", Floor: 1, Format: "png"})
	if ak1 == ak2 {
		t.Error("Different floors should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "api:")

	want := "api:" + inner.LayoutKey("bp", LayoutKeyOpts{Seed: 7})
	if got := scoped.LayoutKey("bp", LayoutKeyOpts{Seed: 7}); got != want {
		t.Errorf("ScopedKeyer LayoutKey = %s, want %s", got, want)
	}

	artifactKey := scoped.ArtifactKey("id", ArtifactKeyOpts{Kind: "graph", Format: "svg"})
	if !strings.HasPrefix(artifactKey, "api:artifact:") {
		t.Errorf("ScopedKeyer ArtifactKey should be prefixed: %s", artifactKey)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.LayoutKey("bp", LayoutKeyOpts{})
	if key != "prefix:"+NewDefaultKeyer().LayoutKey("bp", LayoutKeyOpts{}) {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, hit, _ := c.Get(ctx, "layout:a"); hit {
		t.Error("empty cache should miss")
	}
	if err := c.Set(ctx, "layout:a", []byte("rooms"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "layout:a")
	if err != nil || !hit || string(data) != "rooms" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}

	// Expired entries are misses
	if err := c.Set(ctx, "layout:b", []byte("old"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "layout:b"); hit {
		t.Error("expired entry should miss")
	}

	if err := c.Delete(ctx, "layout:a"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "layout:a"); hit {
		t.Error("deleted entry should miss")
	}
	if err := c.Delete(ctx, "layout:a"); err != nil {
		t.Errorf("Delete of missing key error: %v", err)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) should return nil")
	}
	if err := classify(timeoutErr{}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("network error should be unavailable: %v", err)
	}
	plain := errors.New("WRONGTYPE")
	if classify(plain) != plain {
		t.Error("non-network errors should pass through")
	}
}

func TestRetryPolicy(t *testing.T) {
	ctx := context.Background()
	unavailable := classify(timeoutErr{})
	policy := RetryPolicy{Attempts: 3, Delay: time.Millisecond}

	tests := []struct {
		name      string
		fails     int
		err       error
		wantCalls int
		wantErr   error
	}{
		{"success", 0, nil, 1, nil},
		{"fatal stops at once", 5, errFatal, 1, errFatal},
		{"recovers after retry", 1, unavailable, 2, nil},
		{"gives up after attempts", 5, unavailable, 3, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := policy.do(ctx, func() error {
				calls++
				if calls <= tt.fails {
					return tt.err
				}
				return nil
			})
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryPolicyDefaults(t *testing.T) {
	if got := (RetryPolicy{}).orDefault(); got != DefaultRetryPolicy {
		t.Errorf("zero policy = %+v, want %+v", got, DefaultRetryPolicy)
	}
	custom := RetryPolicy{Attempts: 7, Delay: time.Second}
	if got := custom.orDefault(); got != custom {
		t.Errorf("custom policy changed to %+v", got)
	}
}

func TestRetryPolicyContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryPolicy{Attempts: 5, Delay: time.Hour}.do(ctx, func() error {
		return classify(timeoutErr{})
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("should return context error: %v", err)
	}
}

func TestFileCacheRawEntries(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	png := []byte{0x89, 'P', 'N', 'G', 0, 0, 0xff}
	if err := c.Set(ctx, "artifact:floor-0", png, 0); err != nil {
		t.Fatal(err)
	}
	path := c.(*FileCache).path("artifact:floor-0")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != int64(headerSize+len(png)) {
		t.Errorf("entry size = %d, want header plus data", info.Size())
	}
	if data, hit, _ := c.Get(ctx, "artifact:floor-0"); !hit || !bytes.Equal(data, png) {
		t.Errorf("Get = %v, %v", data, hit)
	}

	if err := os.WriteFile(path, []byte("bad"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "artifact:floor-0"); hit || err != nil {
		t.Errorf("truncated entry should miss, got %v, %v", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("truncated entry should be removed")
	}
}
