package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

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

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	t.Run("miss", func(t *testing.T) {
		_, hit, err := c.Get(ctx, "missing")
		if err != nil || hit {
			t.Errorf("Get(missing) = %v, %v; want miss", hit, err)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		if err := c.Set(ctx, "3.json", []byte(`[["a"]]`), 0); err != nil {
			t.Fatalf("Set: %v", err)
		}
		data, hit, err := c.Get(ctx, "3.json")
		if err != nil || !hit {
			t.Fatalf("Get = %v, %v", hit, err)
		}
		if string(data) != `[["a"]]` {
			t.Errorf("data = %s", data)
		}
	})

	t.Run("expired", func(t *testing.T) {
		if err := c.Set(ctx, "short", []byte("x"), time.Millisecond); err != nil {
			t.Fatalf("Set: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
		if _, hit, _ := c.Get(ctx, "short"); hit {
			t.Error("expired entry should miss")
		}
	})

	t.Run("corrupt entry", func(t *testing.T) {
		if err := os.MkdirAll(filepath.Dir(c.path("bad")), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(c.path("bad"), []byte("{"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
			t.Errorf("corrupt entry should miss, got %v, %v", hit, err)
		}
		if _, err := os.Stat(c.path("bad")); !os.IsNotExist(err) {
			t.Error("corrupt entry should be removed")
		}
	})

	t.Run("delete", func(t *testing.T) {
		_ = c.Set(ctx, "gone", []byte("x"), 0)
		if err := c.Delete(ctx, "gone"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if err := c.Delete(ctx, "gone"); err != nil {
			t.Errorf("second Delete should be a no-op: %v", err)
		}
		if _, hit, _ := c.Get(ctx, "gone"); hit {
			t.Error("deleted entry still present")
		}
	})

	t.Run("clear", func(t *testing.T) {
		_ = c.Set(ctx, "a", []byte("1"), 0)
		_ = c.Set(ctx, "b", []byte("2"), 0)
		n, err := c.Clear()
		if err != nil {
			t.Fatalf("Clear: %v", err)
		}
		if n < 2 {
			t.Errorf("Clear removed %d entries, want >= 2", n)
		}
		if _, hit, _ := c.Get(ctx, "a"); hit {
			t.Error("entry survived Clear")
		}
	})
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	// SHA-256 produces 64 hex chars
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	a := k.AssetKey("https://example.com/vae/", "3.json")
	b := k.AssetKey("https://example.com/vae/", "4.json")
	c := k.AssetKey("/data/vae/", "3.json")
	if a == b {
		t.Error("different assets should produce different keys")
	}
	if a == c {
		t.Error("different sources should produce different keys")
	}
	if !strings.HasPrefix(a, "asset:") || !strings.HasSuffix(a, ":3.json") {
		t.Errorf("unexpected key shape: %s", a)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "widget:demo:")
	key := scoped.AssetKey("src", "defaults.json")
	if !strings.HasPrefix(key, "widget:demo:asset:") {
		t.Errorf("ScopedKeyer key should be prefixed: %s", key)
	}

	// Should use DefaultKeyer when inner is nil
	nilInner := NewScopedKeyer(nil, "p:")
	if nilInner.AssetKey("src", "x") != "p:"+NewDefaultKeyer().AssetKey("src", "x") {
		t.Error("nil inner should fall back to DefaultKeyer")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	c, err := Open(ctx, Options{Backend: "none"})
	if err != nil {
		t.Fatalf("Open(none): %v", err)
	}
	if _, ok := c.(*NullCache); !ok {
		t.Errorf("Open(none) = %T, want *NullCache", c)
	}

	dir := t.TempDir()
	c, err = Open(ctx, Options{Dir: dir})
	if err != nil {
		t.Fatalf("Open(file): %v", err)
	}
	if fc, ok := c.(*FileCache); !ok || fc.Dir() != dir {
		t.Errorf("Open(file) = %T", c)
	}

	if _, err := Open(ctx, Options{Backend: "file"}); err == nil {
		t.Error("file backend without dir should fail")
	}

	if _, err := Open(ctx, Options{Backend: "memcached"}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Open(memcached) error = %v, want ErrUnknownBackend", err)
	}
}
