package app

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/arangr/internal/config"
	"github.com/kk-code-lab/arangr/internal/preview"
	statepkg "github.com/kk-code-lab/arangr/internal/state"
)

func newTestApp(t *testing.T, startPath string) *Application {
	t.Helper()
	scr := tcell.NewSimulationScreen("")
	if err := scr.Init(); err != nil {
		t.Fatalf("init simulation screen: %v", err)
	}
	scr.SetSize(160, 40)

	cfg := config.Default()
	cfg.Browse.Watch = false
	app, err := newApplication(scr, Options{Config: cfg, StartPath: startPath})
	if err != nil {
		scr.Fini()
		t.Fatalf("newApplication: %v", err)
	}
	t.Cleanup(func() {
		_ = app.Close()
	})
	return app
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// pump feeds queued actions back through the app until cond holds.
func pump(t *testing.T, app *Application, cond func() bool) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for !cond() {
		select {
		case action := <-app.actionCh:
			app.handleAction(action)
		case <-deadline:
			t.Fatal("condition not reached before timeout")
		}
	}
}

func TestNewApplicationLoadsStartDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.txt"), "hello")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	app := newTestApp(t, dir)
	state := app.State()

	if state.CurrentPath != dir {
		t.Fatalf("CurrentPath = %q, want %q", state.CurrentPath, dir)
	}
	if len(state.Files()) != 2 || state.Files()[0].Name != "sub" {
		t.Fatalf("unexpected listing %+v", state.Files())
	}
	if state.PreviewState != preview.StateDisplayed {
		t.Fatalf("initial preview should be ready, got %v", state.PreviewState)
	}
	if state.ScreenWidth != 160 || state.ScreenHeight != 40 {
		t.Fatalf("screen size not recorded: %dx%d", state.ScreenWidth, state.ScreenHeight)
	}
}

func TestNewApplicationFailsForMissingPath(t *testing.T) {
	scr := tcell.NewSimulationScreen("")
	if err := scr.Init(); err != nil {
		t.Fatalf("init simulation screen: %v", err)
	}
	defer scr.Fini()

	cfg := config.Default()
	cfg.Browse.Watch = false
	_, err := newApplication(scr, Options{Config: cfg, StartPath: filepath.Join(t.TempDir(), "missing")})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestSelectionPreviewArrivesAsynchronously(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "first")
	writeFile(t, filepath.Join(dir, "b.txt"), "second")

	app := newTestApp(t, dir)
	app.handleAction(statepkg.NavigateDownAction{})

	if app.state.PreviewState != preview.StateLoading {
		t.Fatalf("expected loading state right after the move, got %v", app.state.PreviewState)
	}
	pump(t, app, func() bool { return app.state.PreviewState == preview.StateDisplayed })
	if body := app.state.Preview.Body(); body != "second" {
		t.Fatalf("preview body = %q, want second", body)
	}
}

func TestDirectoryChangeRefreshesOnlyCurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "a")
	app := newTestApp(t, dir)

	writeFile(t, filepath.Join(dir, "b.txt"), "b")

	if app.handleAction(directoryChangedAction{Dir: filepath.Join(dir, "elsewhere")}) {
		t.Fatal("change in another directory should be ignored")
	}
	if len(app.state.Files()) != 1 {
		t.Fatalf("listing changed unexpectedly: %+v", app.state.Files())
	}

	app.handleAction(directoryChangedAction{Dir: dir})
	pump(t, app, func() bool { return len(app.state.Files()) == 2 && !app.state.DirectoryLoading() })
	if got := app.state.CurrentFile(); got == nil || got.Name != "a.txt" {
		t.Fatalf("refresh should keep the selection on a.txt, got %+v", got)
	}
}

type panickyPreviewLoader struct{}

func (panickyPreviewLoader) Start(statepkg.PreviewLoadRequest) { panic("boom") }
func (panickyPreviewLoader) Cancel(uint64)                     {}

func TestReduceRecoversFromPanic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "a")
	writeFile(t, filepath.Join(dir, "b.txt"), "b")
	app := newTestApp(t, dir)
	app.state.PreviewLoader = panickyPreviewLoader{}

	app.handleAction(statepkg.NavigateDownAction{})

	if app.state.LastError == nil {
		t.Fatal("expected panic to surface as LastError")
	}
}

func TestKeyPressClearsStatusAndError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "a")
	app := newTestApp(t, dir)
	app.state.LastError = errors.New("old failure")
	app.state.Status = "Renamed x to y"

	app.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'j', 0))

	if app.state.LastError != nil || app.state.Status != "" {
		t.Fatalf("key press should clear status, got %v / %q", app.state.LastError, app.state.Status)
	}
}

func TestQuitKeyStopsLoop(t *testing.T) {
	app := newTestApp(t, t.TempDir())
	app.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', 0))
	if !app.shouldQuit {
		t.Fatal("expected shouldQuit after q")
	}
}

func TestNavigationErrorLandsInLastError(t *testing.T) {
	app := newTestApp(t, t.TempDir())
	app.handleAction(statepkg.GoToPathAction{Path: filepath.Join(t.TempDir(), "missing")})
	if app.state.LastError == nil {
		t.Fatal("expected navigation failure to be reported")
	}
}

func TestBuildBreadcrumbPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix paths")
	}
	tests := []struct {
		segments []string
		idx      int
		expect   string
	}{
		{[]string{"/", "home", "me"}, 0, "/"},
		{[]string{"/", "home", "me"}, 1, "/home"},
		{[]string{"/", "home", "me"}, 2, "/home/me"},
		{[]string{"/", "home"}, 5, ""},
	}

	for _, tt := range tests {
		if got := buildBreadcrumbPath(tt.segments, tt.idx); got != tt.expect {
			t.Fatalf("%v@%d: expected %q, got %q", tt.segments, tt.idx, tt.expect, got)
		}
	}
}
