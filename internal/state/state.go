package state

import (
	"path/filepath"

	"github.com/kk-code-lab/arangr/internal/assistant"
	fsutil "github.com/kk-code-lab/arangr/internal/fs"
	"github.com/kk-code-lab/arangr/internal/imageview"
	"github.com/kk-code-lab/arangr/internal/preview"
)

// FileEntry mirrors fs.PathEntry so UI/state code can rely on a stable type.
type FileEntry = fsutil.PathEntry

// PromptKind identifies what a line of typed input is for.
type PromptKind int

const (
	PromptNone PromptKind = iota
	PromptRename
	PromptAsk
)

// Prompt is the single-line input shown in the status bar.
type Prompt struct {
	Kind  PromptKind
	Input []rune
}

// Active reports whether the prompt is accepting input.
func (p Prompt) Active() bool { return p.Kind != PromptNone }

// AppState is the single source of truth. It is owned by the UI loop; loaders
// only reach it through dispatched actions.
type AppState struct {
	// Navigation & filesystem
	CurrentPath  string
	Snapshot     fsutil.Snapshot
	History      []string
	HistoryIndex int
	ShowHidden   bool

	// Selection & viewport
	SelectedIndex int
	ScrollOffset  int

	// Preview
	Preview             *preview.Result
	PreviewState        preview.State
	PreviewScrollOffset int
	// AIContext is the excerpt offered to the assistant. It is empty while a
	// preview is loading or after one failed.
	AIContext string
	// Assistant answers questions about the selected file.
	Assistant      assistant.Asker
	AssistantReply string

	Prompt      Prompt
	HelpVisible bool

	// Dimensions
	ScreenWidth  int
	ScreenHeight int

	// Status line
	Status    string
	LastError error

	// Async loaders; nil means the reducer works synchronously.
	DirectoryLoader DirectoryLoader
	PreviewLoader   PreviewLoader
	dispatchAction  func(Action)

	directoryLoadSeq     int
	directoryLoadToken   int
	directoryLoadingPath string

	previewGeneration uint64
	pendingFit        bool
}

// NewAppState returns a state rooted at path with an empty listing.
func NewAppState(path string, showHidden bool) *AppState {
	path = filepath.Clean(path)
	return &AppState{
		CurrentPath:   path,
		Snapshot:      fsutil.Snapshot{Dir: path},
		History:       []string{path},
		ShowHidden:    showHidden,
		SelectedIndex: -1,
		Assistant:     assistant.Unconfigured{},
	}
}

// SetDispatch exposes the reducer dispatch hook to other packages.
func (s *AppState) SetDispatch(fn func(Action)) {
	s.dispatchAction = fn
}

func (s *AppState) getDispatch() func(Action) {
	return s.dispatchAction
}

// Files returns the entries of the current listing.
func (s *AppState) Files() []FileEntry {
	return s.Snapshot.Entries
}

// CurrentFile returns the selected entry, or nil.
func (s *AppState) CurrentFile() *FileEntry {
	if s.SelectedIndex < 0 || s.SelectedIndex >= len(s.Snapshot.Entries) {
		return nil
	}
	return &s.Snapshot.Entries[s.SelectedIndex]
}

// CurrentFilePath returns the full path of the selected entry, or "".
func (s *AppState) CurrentFilePath() string {
	if f := s.CurrentFile(); f != nil {
		return f.FullPath
	}
	return ""
}

// PreviewImage returns the image handle of the displayed preview, if any.
func (s *AppState) PreviewImage() *imageview.Handle {
	if s.PreviewState != preview.StateDisplayed {
		return nil
	}
	return s.Preview.Image()
}

// PreviewGeneration is the generation stamped on the live preview request.
func (s *AppState) PreviewGeneration() uint64 {
	return s.previewGeneration
}

func (s *AppState) nextPreviewGeneration() uint64 {
	s.previewGeneration++
	return s.previewGeneration
}

// DirectoryLoading reports whether a directory read is in flight.
func (s *AppState) DirectoryLoading() bool {
	return s.directoryLoadToken != 0
}

// ActiveDirectoryLoadToken returns the token of the in-flight directory read.
func (s *AppState) ActiveDirectoryLoadToken() int {
	return s.directoryLoadToken
}

func (s *AppState) nextDirectoryLoadToken() int {
	s.directoryLoadSeq++
	return s.directoryLoadSeq
}

func (s *AppState) setDirectoryLoadInFlight(token int, path string) {
	s.directoryLoadToken = token
	s.directoryLoadingPath = path
}

func (s *AppState) clearDirectoryLoadingState() {
	s.directoryLoadToken = 0
	s.directoryLoadingPath = ""
}

// navigationPath is the directory the user is heading to: the in-flight
// load target, or the current directory.
func (s *AppState) navigationPath() string {
	if s.directoryLoadingPath != "" {
		return s.directoryLoadingPath
	}
	return s.CurrentPath
}

// applySnapshot replaces the listing wholesale and resets the viewport.
func (s *AppState) applySnapshot(snap fsutil.Snapshot) {
	s.CurrentPath = snap.Dir
	s.Snapshot = snap
	s.ScrollOffset = 0
	if len(snap.Entries) > 0 {
		s.SelectedIndex = 0
	} else {
		s.SelectedIndex = -1
	}
}

func (s *AppState) selectName(name string) bool {
	idx := s.Snapshot.IndexOf(name)
	if idx < 0 {
		return false
	}
	s.SelectedIndex = idx
	return true
}
