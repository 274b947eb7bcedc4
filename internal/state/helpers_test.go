package state

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/kk-code-lab/arangr/internal/preview"
)

// makeTree builds:
//
//	root/
//	  alpha/        (one.txt, two.txt, three.txt)
//	  beta/         (empty)
//	  a.txt
//	  b.txt
//	  c.txt
func makeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	mustMkdir(t, filepath.Join(root, "alpha"))
	mustMkdir(t, filepath.Join(root, "beta"))
	for _, name := range []string{"one.txt", "two.txt", "three.txt"} {
		mustWrite(t, filepath.Join(root, "alpha", name), name)
	}
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		mustWrite(t, filepath.Join(root, name), "content of "+name)
	}
	return root
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
}

// newSyncState returns a state started at path with no loaders, so every
// action completes before Reduce returns.
func newSyncState(t *testing.T, path string) (*AppState, *StateReducer) {
	t.Helper()
	state := NewAppState(path, false)
	state.ScreenWidth = 120
	state.ScreenHeight = 40
	reducer := NewStateReducer()
	if err := reducer.Start(state, path); err != nil {
		t.Fatalf("Start(%s) error = %v", path, err)
	}
	return state, reducer
}

func mustReduce(t *testing.T, r *StateReducer, state *AppState, action Action) {
	t.Helper()
	if _, err := r.Reduce(state, action); err != nil {
		t.Fatalf("Reduce(%T) error = %v", action, err)
	}
}

func entryNames(state *AppState) []string {
	names := make([]string, 0, len(state.Snapshot.Entries))
	for _, e := range state.Snapshot.Entries {
		names = append(names, e.Name)
	}
	return names
}

func selectedName(state *AppState) string {
	if f := state.CurrentFile(); f != nil {
		return f.Name
	}
	return ""
}

// manualPreviewLoader records requests and lets tests deliver results in any
// order.
type manualPreviewLoader struct {
	started   []PreviewLoadRequest
	cancelled []uint64
}

func (l *manualPreviewLoader) Start(req PreviewLoadRequest) {
	l.started = append(l.started, req)
}

func (l *manualPreviewLoader) Cancel(generation uint64) {
	l.cancelled = append(l.cancelled, generation)
}

func (l *manualPreviewLoader) last() PreviewLoadRequest {
	return l.started[len(l.started)-1]
}

// manualDirectoryLoader records requests without reading anything.
type manualDirectoryLoader struct {
	started   []DirectoryLoadRequest
	cancelled []int
}

func (l *manualDirectoryLoader) Start(req DirectoryLoadRequest) {
	l.started = append(l.started, req)
}

func (l *manualDirectoryLoader) Cancel(token int) {
	l.cancelled = append(l.cancelled, token)
}

func resolveNow(t *testing.T, req preview.Request) *preview.Result {
	t.Helper()
	return preview.NewResolver(preview.DefaultLimits()).Resolve(context.Background(), req)
}

var errFake = errors.New("fake failure")
