package state

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	fsutil "github.com/kk-code-lab/arangr/internal/fs"
	"github.com/kk-code-lab/arangr/internal/preview"
)

func TestStartListsFoldersFirst(t *testing.T) {
	root := makeTree(t)
	state, _ := newSyncState(t, root)

	want := []string{"alpha", "beta", "a.txt", "b.txt", "c.txt"}
	if got := entryNames(state); !reflect.DeepEqual(got, want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}
	if state.SelectedIndex != 0 {
		t.Fatalf("SelectedIndex = %d, want 0", state.SelectedIndex)
	}
	if state.PreviewState != preview.StateDisplayed {
		t.Fatalf("PreviewState = %v, want Displayed", state.PreviewState)
	}
	if !reflect.DeepEqual(state.History, []string{root}) || state.HistoryIndex != 0 {
		t.Fatalf("history = %v@%d", state.History, state.HistoryIndex)
	}
}

func TestStartWithFileSelectsIt(t *testing.T) {
	root := makeTree(t)
	state, _ := newSyncState(t, filepath.Join(root, "b.txt"))

	if state.CurrentPath != root {
		t.Fatalf("CurrentPath = %q, want %q", state.CurrentPath, root)
	}
	if got := selectedName(state); got != "b.txt" {
		t.Fatalf("selected = %q, want b.txt", got)
	}
	if body := state.Preview.Body(); body != "content of b.txt" {
		t.Fatalf("preview body = %q", body)
	}
}

func TestStartMissingPath(t *testing.T) {
	state := NewAppState(t.TempDir(), false)
	err := NewStateReducer().Start(state, filepath.Join(t.TempDir(), "nope"))
	var listErr *fsutil.ListError
	if !errors.As(err, &listErr) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ListError wrapping ErrNotExist, got %v", err)
	}
}

func TestNavigateDownAndUpClamp(t *testing.T) {
	root := makeTree(t)
	state, reducer := newSyncState(t, root)

	gen := state.PreviewGeneration()
	mustReduce(t, reducer, state, NavigateUpAction{})
	if state.SelectedIndex != 0 || state.PreviewGeneration() != gen {
		t.Fatalf("up at top should be a no-op, got index %d gen %d", state.SelectedIndex, state.PreviewGeneration())
	}

	for i := 0; i < 10; i++ {
		mustReduce(t, reducer, state, NavigateDownAction{})
	}
	if got := selectedName(state); got != "c.txt" {
		t.Fatalf("selected = %q, want c.txt", got)
	}
	if state.PreviewGeneration() != gen+4 {
		t.Fatalf("expected one preview per real move, generation %d -> %d", gen, state.PreviewGeneration())
	}

	mustReduce(t, reducer, state, NavigateHomeAction{})
	if got := selectedName(state); got != "alpha" {
		t.Fatalf("home selected %q", got)
	}
	mustReduce(t, reducer, state, NavigateEndAction{})
	if got := selectedName(state); got != "c.txt" {
		t.Fatalf("end selected %q", got)
	}
}

func TestScrollFollowsSelection(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 30; i++ {
		mustWrite(t, filepath.Join(dir, string(rune('a'+i%26))+string(rune('a'+i/26))+".txt"), "x")
	}
	state, reducer := newSyncState(t, dir)
	mustReduce(t, reducer, state, ResizeAction{Width: 80, Height: 12})

	visible := state.ListHeight()
	for i := 0; i < visible+3; i++ {
		mustReduce(t, reducer, state, NavigateDownAction{})
	}
	if state.SelectedIndex < state.ScrollOffset || state.SelectedIndex >= state.ScrollOffset+visible {
		t.Fatalf("selection %d outside viewport [%d,%d)", state.SelectedIndex, state.ScrollOffset, state.ScrollOffset+visible)
	}

	mustReduce(t, reducer, state, NavigatePageUpAction{})
	mustReduce(t, reducer, state, NavigatePageUpAction{})
	if state.SelectedIndex != 0 || state.ScrollOffset != 0 {
		t.Fatalf("page up should reach the top, got index %d offset %d", state.SelectedIndex, state.ScrollOffset)
	}
}

func TestEnterDirectoryAndGoUpSelectsOrigin(t *testing.T) {
	root := makeTree(t)
	state, reducer := newSyncState(t, root)

	mustReduce(t, reducer, state, EnterDirectoryAction{})
	alpha := filepath.Join(root, "alpha")
	if state.CurrentPath != alpha {
		t.Fatalf("CurrentPath = %q, want %q", state.CurrentPath, alpha)
	}
	if got := entryNames(state); !reflect.DeepEqual(got, []string{"one.txt", "three.txt", "two.txt"}) {
		t.Fatalf("entries = %v", got)
	}

	mustReduce(t, reducer, state, GoUpAction{})
	if state.CurrentPath != root {
		t.Fatalf("CurrentPath = %q, want %q", state.CurrentPath, root)
	}
	if got := selectedName(state); got != "alpha" {
		t.Fatalf("selected = %q, want alpha", got)
	}
}

func TestEnterDirectoryIgnoresFiles(t *testing.T) {
	root := makeTree(t)
	state, reducer := newSyncState(t, filepath.Join(root, "a.txt"))

	mustReduce(t, reducer, state, EnterDirectoryAction{})
	if state.CurrentPath != root {
		t.Fatalf("entering a file must not navigate, now at %q", state.CurrentPath)
	}
}

func TestEnterEmptyDirectoryClearsPreview(t *testing.T) {
	root := makeTree(t)
	state, reducer := newSyncState(t, root)
	mustReduce(t, reducer, state, NavigateDownAction{}) // beta

	mustReduce(t, reducer, state, EnterDirectoryAction{})
	if state.SelectedIndex != -1 || state.CurrentFile() != nil {
		t.Fatalf("empty directory should have no selection, got %d", state.SelectedIndex)
	}
	if state.Preview != nil || state.AIContext != "" {
		t.Fatalf("empty directory should have no preview, got %+v", state.Preview)
	}
}

func TestNavigationFailureKeepsState(t *testing.T) {
	root := makeTree(t)
	state, reducer := newSyncState(t, root)
	mustReduce(t, reducer, state, NavigateDownAction{}) // beta

	if err := os.Remove(filepath.Join(root, "beta")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	before := entryNames(state)

	_, err := reducer.Reduce(state, EnterDirectoryAction{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
	if state.CurrentPath != root || !reflect.DeepEqual(entryNames(state), before) {
		t.Fatalf("state changed after failed navigation: %q %v", state.CurrentPath, entryNames(state))
	}
	if got := selectedName(state); got != "beta" {
		t.Fatalf("selection changed to %q", got)
	}
	if len(state.History) != 1 {
		t.Fatalf("failed navigation must not touch history: %v", state.History)
	}

	if _, err := reducer.Reduce(state, GoToPathAction{Path: filepath.Join(root, "missing")}); err == nil {
		t.Fatal("expected error for missing path")
	}
	if state.CurrentPath != root {
		t.Fatalf("CurrentPath = %q after failed GoToPath", state.CurrentPath)
	}
}

func TestGoToPathFileAndDirectory(t *testing.T) {
	root := makeTree(t)
	state, reducer := newSyncState(t, filepath.Join(root, "alpha"))

	mustReduce(t, reducer, state, GoToPathAction{Path: filepath.Join(root, "c.txt")})
	if state.CurrentPath != root || selectedName(state) != "c.txt" {
		t.Fatalf("GoToPath(file) -> %q / %q", state.CurrentPath, selectedName(state))
	}

	mustReduce(t, reducer, state, GoToPathAction{Path: filepath.Join(root, "a.txt")})
	if selectedName(state) != "a.txt" {
		t.Fatalf("GoToPath within the same directory should move selection, got %q", selectedName(state))
	}
	if !reflect.DeepEqual(state.History, []string{filepath.Join(root, "alpha"), root}) {
		t.Fatalf("history = %v", state.History)
	}
}

func TestGoHome(t *testing.T) {
	root := makeTree(t)
	home := filepath.Join(root, "alpha")
	orig := userHomeDirFn
	userHomeDirFn = func() (string, error) { return home, nil }
	t.Cleanup(func() { userHomeDirFn = orig })

	state, reducer := newSyncState(t, root)
	mustReduce(t, reducer, state, GoHomeAction{})
	if state.CurrentPath != home {
		t.Fatalf("CurrentPath = %q, want %q", state.CurrentPath, home)
	}

	userHomeDirFn = func() (string, error) { return "", errors.New("no home") }
	if _, err := reducer.Reduce(state, GoHomeAction{}); err == nil {
		t.Fatal("expected error when home cannot be resolved")
	}
}

func TestToggleHiddenFiles(t *testing.T) {
	root := makeTree(t)
	mustWrite(t, filepath.Join(root, ".hidden"), "secret")
	state, reducer := newSyncState(t, root)
	mustReduce(t, reducer, state, NavigateDownAction{}) // beta

	if state.Snapshot.IndexOf(".hidden") != -1 {
		t.Fatal("hidden file listed by default")
	}

	mustReduce(t, reducer, state, ToggleHiddenFilesAction{})
	if !state.ShowHidden || state.Snapshot.IndexOf(".hidden") == -1 {
		t.Fatalf("hidden file should be listed after toggle: %v", entryNames(state))
	}
	if got := selectedName(state); got != "beta" {
		t.Fatalf("toggle should keep the selection, got %q", got)
	}

	mustReduce(t, reducer, state, ToggleHiddenFilesAction{})
	if state.ShowHidden || state.Snapshot.IndexOf(".hidden") != -1 {
		t.Fatal("hidden file should be gone after second toggle")
	}
}

func TestRefreshKeepsSelectionAndSkipsUnchangedPreview(t *testing.T) {
	root := makeTree(t)
	state, reducer := newSyncState(t, filepath.Join(root, "b.txt"))
	gen := state.PreviewGeneration()

	mustWrite(t, filepath.Join(root, "0-new.txt"), "new")
	mustReduce(t, reducer, state, RefreshDirectoryAction{})

	if got := selectedName(state); got != "b.txt" {
		t.Fatalf("selected = %q, want b.txt", got)
	}
	if state.Snapshot.IndexOf("0-new.txt") == -1 {
		t.Fatal("refresh did not pick up the new file")
	}
	if state.PreviewGeneration() != gen {
		t.Fatal("unchanged selection should keep its preview")
	}

	if err := os.Remove(filepath.Join(root, "b.txt")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	mustReduce(t, reducer, state, RefreshDirectoryAction{})
	if state.CurrentFile() == nil {
		t.Fatal("selection should fall back to a neighbour")
	}
	if state.PreviewGeneration() == gen {
		t.Fatal("preview should be rebuilt when the selected entry disappeared")
	}
}

func TestSelectIndexIgnoresOutOfRange(t *testing.T) {
	root := makeTree(t)
	state, reducer := newSyncState(t, root)

	mustReduce(t, reducer, state, SelectIndexAction{Index: 3})
	if got := selectedName(state); got != "b.txt" {
		t.Fatalf("selected = %q, want b.txt", got)
	}
	gen := state.PreviewGeneration()
	mustReduce(t, reducer, state, SelectIndexAction{Index: 42})
	if got := selectedName(state); got != "b.txt" || state.PreviewGeneration() != gen {
		t.Fatalf("out-of-range click changed selection to %q", got)
	}
}
