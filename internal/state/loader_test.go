package state

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kk-code-lab/arangr/internal/preview"
)

func TestAsyncPreviewLoaderDelivers(t *testing.T) {
	root := makeTree(t)
	loader := NewAsyncPreviewLoader(preview.NewResolver(preview.DefaultLimits()), 1)

	results := make(chan *preview.Result, 3)
	for i, name := range []string{"a.txt", "b.txt", "c.txt"} {
		loader.Start(PreviewLoadRequest{
			Request:  preview.Request{Path: filepath.Join(root, name), Generation: uint64(i + 1)},
			Callback: func(res *preview.Result) { results <- res },
		})
	}

	seen := map[uint64]string{}
	timeout := time.After(5 * time.Second)
	for len(seen) < 3 {
		select {
		case res := <-results:
			seen[res.Generation] = res.Body()
		case <-timeout:
			t.Fatalf("timed out with %d results", len(seen))
		}
	}
	if seen[2] != "content of b.txt" {
		t.Fatalf("generation 2 body = %q", seen[2])
	}
}

func TestAsyncPreviewLoaderIgnoresInvalidRequests(t *testing.T) {
	loader := NewAsyncPreviewLoader(preview.NewResolver(preview.DefaultLimits()), 0)
	called := make(chan struct{}, 1)
	cb := func(*preview.Result) { called <- struct{}{} }

	loader.Start(PreviewLoadRequest{Request: preview.Request{Path: "x"}, Callback: cb})
	loader.Start(PreviewLoadRequest{Request: preview.Request{Generation: 1}, Callback: cb})
	loader.Start(PreviewLoadRequest{Request: preview.Request{Path: "x", Generation: 1}})
	loader.Cancel(42)

	select {
	case <-called:
		t.Fatal("invalid request should not run")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestAsyncDirectoryLoaderDelivers(t *testing.T) {
	root := makeTree(t)
	loader := NewAsyncDirectoryLoader()

	done := make(chan DirectoryLoadResult, 1)
	loader.Start(DirectoryLoadRequest{
		Token:    7,
		Path:     filepath.Join(root, "alpha"),
		Callback: func(res DirectoryLoadResult) { done <- res },
	})

	select {
	case res := <-done:
		if res.Err != nil || res.Token != 7 || len(res.Snapshot.Entries) != 3 {
			t.Fatalf("unexpected result %+v", res)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
}
