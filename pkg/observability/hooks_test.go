package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	f := NoopFetchHooks{}
	f.OnFetchStart(ctx, "defaults.json")
	f.OnFetchComplete(ctx, "defaults.json", 2048, time.Second, nil)
	f.OnLookup(ctx, "loaded")

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "3.json")
	c.OnCacheMiss(ctx, "4.json")
	c.OnCacheSet(ctx, "4.json", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "example.com", "/vae/3.json")
	h.OnResponse(ctx, "GET", "example.com", "/vae/3.json", 200, time.Second)
	h.OnError(ctx, "GET", "example.com", "/vae/3.json", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Fetch().(NoopFetchHooks); !ok {
		t.Error("Fetch() should return NoopFetchHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customFetch := &testFetchHooks{}
	SetFetchHooks(customFetch)
	if Fetch() != customFetch {
		t.Error("SetFetchHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Fetch().(NoopFetchHooks); !ok {
		t.Error("Reset() should restore NoopFetchHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testFetchHooks{}
	SetFetchHooks(custom)
	SetFetchHooks(nil)

	if Fetch() != custom {
		t.Error("SetFetchHooks(nil) should be ignored")
	}
}

type testFetchHooks struct{ NoopFetchHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
