package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/starscape/pkg/cache"
)

func newTestCLI() *CLI {
	return New(io.Discard, log.InfoLevel)
}

func TestCachePathCommand(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	root := newTestCLI().RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"cache", "path"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("cache path: %v", err)
	}

	want, _ := cacheDir()
	if got := strings.TrimSpace(out.String()); got != want {
		t.Errorf("cache path printed %q, want %q", got, want)
	}
}

func TestCacheClearCommand(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, key := range []string{"field:a", "field:b"} {
		if err := fc.Set(ctx, key, []byte("data"), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	root := newTestCLI().RootCommand()
	root.SetArgs([]string{"cache", "clear"})
	if err := root.ExecuteContext(ctx); err != nil {
		t.Fatalf("cache clear: %v", err)
	}

	if _, hit, _ := fc.Get(ctx, "field:a"); hit {
		t.Error("entries should be removed by cache clear")
	}
}

func TestCacheClearMissingDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", filepath.Join(t.TempDir(), "absent"))

	root := newTestCLI().RootCommand()
	root.SetArgs([]string{"cache", "clear"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Errorf("clearing a missing cache should succeed: %v", err)
	}
}

func TestNewCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c := newTestCLI()
	ctx := context.Background()

	ch, keyer, err := c.newCache(ctx, cacheFlags{noCache: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ch.(cache.NullCache); !ok {
		t.Errorf("--no-cache should give a NullCache, got %T", ch)
	}
	if keyer != nil {
		t.Error("default keyer expected")
	}

	ch, _, err = c.newCache(ctx, cacheFlags{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ch.(*cache.FileCache); !ok {
		t.Errorf("default cache should be a FileCache, got %T", ch)
	}

	// Nothing listens on port 1; the file cache takes over.
	ch, keyer, err = c.newCache(ctx, cacheFlags{redisAddr: "127.0.0.1:1"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ch.(*cache.FileCache); !ok {
		t.Errorf("unreachable redis should fall back to the file cache, got %T", ch)
	}
	if keyer != nil {
		t.Error("fallback should use the default keyer")
	}
}

func TestNewCacheRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	c := newTestCLI()

	ch, keyer, err := c.newCache(context.Background(), cacheFlags{redisAddr: mr.Addr()})
	if err != nil {
		t.Fatal(err)
	}
	defer ch.Close()

	if _, ok := ch.(*cache.RedisCache); !ok {
		t.Fatalf("reachable redis should be used, got %T", ch)
	}
	if _, ok := keyer.(*cache.ScopedKeyer); !ok {
		t.Errorf("redis keys should be scoped by release, got %T", keyer)
	}
}
