package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/kk-code-lab/arangr/internal/assistant"
	fsutil "github.com/kk-code-lab/arangr/internal/fs"
	"github.com/kk-code-lab/arangr/internal/imageview"
	"github.com/kk-code-lab/arangr/internal/logging"
	"github.com/kk-code-lab/arangr/internal/preview"
)

var (
	userHomeDirFn        = os.UserHomeDir
	openWithDefaultAppFn = fsutil.OpenWithDefaultApp
)

type directoryPostLoadFunc func(r *StateReducer, state *AppState) error

// ===== REDUCER =====

// StateReducer applies actions to state
type StateReducer struct {
	selectionHistory   map[string]int // path -> selected index
	directoryCallbacks map[int][]directoryPostLoadFunc
	resolver           *preview.Resolver
	log                *logging.Logger
}

// ReducerOption configures a StateReducer.
type ReducerOption func(*StateReducer)

// WithResolver sets the resolver used for synchronous previews.
func WithResolver(resolver *preview.Resolver) ReducerOption {
	return func(r *StateReducer) { r.resolver = resolver }
}

// NewStateReducer creates a new reducer
func NewStateReducer(opts ...ReducerOption) *StateReducer {
	r := &StateReducer{
		selectionHistory:   make(map[string]int),
		directoryCallbacks: make(map[int][]directoryPostLoadFunc),
		log:                logging.Get("state"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.resolver == nil {
		r.resolver = preview.NewResolver(preview.DefaultLimits())
	}
	return r
}

// Start loads the initial listing synchronously. When path names a file, its
// directory is listed and the file selected.
func (r *StateReducer) Start(state *AppState, path string) error {
	dir, name, err := resolveTarget(path)
	if err != nil {
		return err
	}
	snap, err := listDirectory(dir, state.ShowHidden)
	if err != nil {
		return err
	}
	state.applySnapshot(snap)
	if name != "" {
		state.selectName(name)
	}
	state.History = []string{state.CurrentPath}
	state.HistoryIndex = 0
	state.centerScrollOnSelection()
	return r.generatePreview(state)
}

func resolveTarget(path string) (dir, name string, err error) {
	path = filepath.Clean(path)
	info, err := os.Stat(path)
	if err != nil {
		return "", "", &fsutil.ListError{Path: path, Err: err}
	}
	if info.IsDir() {
		return path, "", nil
	}
	return filepath.Dir(path), norm.NFC.String(filepath.Base(path)), nil
}

func listDirectory(dir string, showHidden bool) (fsutil.Snapshot, error) {
	return fsutil.List(context.Background(), dir, fsutil.ListOptions{IncludeHidden: showHidden})
}

func (r *StateReducer) enqueueDirectoryCallback(token int, fn directoryPostLoadFunc) {
	if token == 0 || fn == nil {
		return
	}
	r.directoryCallbacks[token] = append(r.directoryCallbacks[token], fn)
}

func (r *StateReducer) dropDirectoryCallbacks(token int) {
	if token == 0 {
		return
	}
	delete(r.directoryCallbacks, token)
}

func (r *StateReducer) runDirectoryCallbacks(state *AppState, token int) (bool, error) {
	callbacks, ok := r.directoryCallbacks[token]
	if !ok || len(callbacks) == 0 {
		return false, nil
	}
	delete(r.directoryCallbacks, token)

	for _, cb := range callbacks {
		if err := cb(r, state); err != nil {
			return true, err
		}
	}
	return true, nil
}

func (r *StateReducer) completeDirectoryChange(state *AppState, loading bool, fn directoryPostLoadFunc) (*AppState, error) {
	if fn == nil {
		if loading {
			return state, nil
		}
		return state, r.generatePreview(state)
	}

	if loading {
		r.enqueueDirectoryCallback(state.ActiveDirectoryLoadToken(), fn)
		return state, nil
	}

	if err := fn(r, state); err != nil {
		return state, err
	}
	return state, nil
}

// changeDirectoryWithStatus lists path and replaces the snapshot. It reports
// whether the listing continues asynchronously. A failed synchronous listing
// leaves state untouched.
func (r *StateReducer) changeDirectoryWithStatus(state *AppState, path string, showHidden bool) (bool, error) {
	dirPath := path
	if dirPath == "" {
		dirPath = state.navigationPath()
	}
	dirPath = filepath.Clean(dirPath)

	loader := state.DirectoryLoader
	dispatch := state.getDispatch()
	if loader == nil || dispatch == nil {
		snap, err := listDirectory(dirPath, showHidden)
		if err != nil {
			return false, err
		}
		state.applySnapshot(snap)
		return false, nil
	}

	prevToken := state.ActiveDirectoryLoadToken()
	if prevToken != 0 {
		loader.Cancel(prevToken)
		r.dropDirectoryCallbacks(prevToken)
	}

	token := state.nextDirectoryLoadToken()
	state.setDirectoryLoadInFlight(token, dirPath)

	loader.Start(DirectoryLoadRequest{
		Token:      token,
		Path:       dirPath,
		ShowHidden: showHidden,
		Callback: func(result DirectoryLoadResult) {
			dispatch(DirectoryLoadResultAction(result))
		},
	})

	return true, nil
}

// navigate leaves the current directory for path and runs post once the new
// listing is in place.
func (r *StateReducer) navigate(state *AppState, path string, post directoryPostLoadFunc) (*AppState, error) {
	r.selectionHistory[state.CurrentPath] = state.SelectedIndex
	loading, err := r.changeDirectoryWithStatus(state, path, state.ShowHidden)
	if err != nil {
		return state, err
	}
	return r.completeDirectoryChange(state, loading, post)
}

// restoreSelection selects the index remembered for path, if still valid.
func (r *StateReducer) restoreSelection(state *AppState, path string) {
	if savedIdx, ok := r.selectionHistory[path]; ok && savedIdx >= 0 && savedIdx < len(state.Snapshot.Entries) {
		state.SelectedIndex = savedIdx
	}
}

// Reduce applies an action to state and returns new state
func (r *StateReducer) Reduce(state *AppState, action Action) (*AppState, error) {
	switch a := action.(type) {

	// ===== NAVIGATION =====

	case NavigateDownAction:
		return state, r.moveSelection(state, state.SelectedIndex+1)

	case NavigateUpAction:
		if state.SelectedIndex < 0 {
			return state, r.moveSelection(state, len(state.Snapshot.Entries)-1)
		}
		return state, r.moveSelection(state, state.SelectedIndex-1)

	case NavigatePageDownAction:
		return state, r.moveSelection(state, state.SelectedIndex+state.ListHeight())

	case NavigatePageUpAction:
		return state, r.moveSelection(state, state.SelectedIndex-state.ListHeight())

	case NavigateHomeAction:
		return state, r.moveSelection(state, 0)

	case NavigateEndAction:
		return state, r.moveSelection(state, len(state.Snapshot.Entries)-1)

	case SelectIndexAction:
		if a.Index < 0 || a.Index >= len(state.Snapshot.Entries) {
			return state, nil
		}
		return state, r.moveSelection(state, a.Index)

	case EnterDirectoryAction:
		file := state.CurrentFile()
		if file == nil || !file.IsDir {
			return state, nil
		}
		newPath := file.FullPath

		return r.navigate(state, newPath, func(r *StateReducer, state *AppState) error {
			r.restoreSelection(state, newPath)
			state.centerScrollOnSelection()
			r.addToHistory(state, newPath)
			return r.generatePreview(state)
		})

	case GoUpAction:
		currentPath := state.navigationPath()
		parent := filepath.Dir(currentPath)
		if parent == currentPath {
			return state, nil // Already at root
		}
		currentDirName := norm.NFC.String(filepath.Base(currentPath))

		return r.navigate(state, parent, func(r *StateReducer, state *AppState) error {
			// Select the directory we just came from
			if !state.selectName(currentDirName) {
				r.restoreSelection(state, parent)
			}
			state.centerScrollOnSelection()
			r.addToHistory(state, parent)
			return r.generatePreview(state)
		})

	case GoToPathAction:
		if a.Path == "" {
			return state, nil
		}
		target, name, err := resolveTarget(a.Path)
		if err != nil {
			return state, err
		}
		if target == state.navigationPath() {
			if name != "" && state.selectName(name) {
				state.centerScrollOnSelection()
			}
			return state, r.generatePreview(state)
		}

		return r.navigate(state, target, func(r *StateReducer, state *AppState) error {
			if name == "" || !state.selectName(name) {
				r.restoreSelection(state, target)
			}
			state.centerScrollOnSelection()
			r.addToHistory(state, target)
			return r.generatePreview(state)
		})

	case GoHomeAction:
		homeDir, err := userHomeDirFn()
		if err != nil {
			return state, fmt.Errorf("cannot resolve home directory: %w", err)
		}
		if homeDir == "" {
			return state, fmt.Errorf("home directory not available")
		}

		homeDir = filepath.Clean(homeDir)
		if homeDir == state.navigationPath() {
			return state, nil
		}

		return r.navigate(state, homeDir, func(r *StateReducer, state *AppState) error {
			r.restoreSelection(state, homeDir)
			state.centerScrollOnSelection()
			r.addToHistory(state, homeDir)
			return r.generatePreview(state)
		})

	case GoToHistoryAction:
		index := state.HistoryIndex
		switch a.Direction {
		case "back":
			index--
		case "forward":
			index++
		default:
			return state, nil
		}
		if index < 0 || index >= len(state.History) {
			return state, nil
		}
		path := state.History[index]

		// The index moves only once the listing succeeded.
		return r.navigate(state, path, func(r *StateReducer, state *AppState) error {
			state.HistoryIndex = index
			r.restoreSelection(state, path)
			state.centerScrollOnSelection()
			return r.generatePreview(state)
		})

	case RefreshDirectoryAction:
		return r.refresh(state, state.ShowHidden, "")

	case ToggleHiddenFilesAction:
		return r.refresh(state, !state.ShowHidden, "")

	case DirectoryLoadResultAction:
		if a.Token != state.ActiveDirectoryLoadToken() {
			return state, nil
		}

		state.clearDirectoryLoadingState()

		if a.Err != nil {
			state.LastError = a.Err
			r.dropDirectoryCallbacks(a.Token)
			return state, nil
		}

		state.applySnapshot(a.Snapshot)

		ran, err := r.runDirectoryCallbacks(state, a.Token)
		if err != nil {
			return state, err
		}
		if !ran {
			return state, r.generatePreview(state)
		}
		return state, nil

	// ===== PREVIEW =====

	case PreviewLoadResultAction:
		res := a.Result
		if res == nil {
			return state, nil
		}
		if res.Generation != state.previewGeneration || res.Path != state.CurrentFilePath() {
			r.log.Debug("dropping superseded preview",
				"path", res.Path, "generation", res.Generation, "live", state.previewGeneration)
			return state, nil
		}
		r.applyPreviewResult(state, res)
		return state, nil

	case HelpToggleAction:
		state.HelpVisible = !state.HelpVisible
		return state, nil

	case HelpHideAction:
		state.HelpVisible = false
		return state, nil

	case PreviewScrollDownAction:
		state.scrollPreview(1)
		return state, nil

	case PreviewScrollUpAction:
		state.scrollPreview(-1)
		return state, nil

	case PreviewPageDownAction:
		state.scrollPreview(state.previewPageSize())
		return state, nil

	case PreviewPageUpAction:
		state.scrollPreview(-state.previewPageSize())
		return state, nil

	case ResizeAction:
		state.ScreenWidth = a.Width
		state.ScreenHeight = a.Height
		state.updateScrollVisibility()
		if state.pendingFit {
			if img := state.PreviewImage(); img != nil {
				r.fitImage(state, img)
			}
		}
		return state, nil

	// ===== IMAGE =====

	case ImageZoomInAction:
		if img := state.PreviewImage(); img != nil {
			img.ZoomIn()
		}
		return state, nil

	case ImageZoomOutAction:
		if img := state.PreviewImage(); img != nil {
			img.ZoomOut()
		}
		return state, nil

	case ImageFitAction:
		if img := state.PreviewImage(); img != nil {
			r.fitImage(state, img)
		}
		return state, nil

	case ImageRotateAction:
		if img := state.PreviewImage(); img != nil {
			img.Rotate()
		}
		return state, nil

	// ===== FILE OPERATIONS =====

	case RenameAction:
		file := state.CurrentFile()
		if file == nil {
			return state, nil
		}
		oldName := file.Name
		newPath, err := fsutil.Rename(file.FullPath, a.NewName)
		if err != nil {
			return state, err
		}
		newName := norm.NFC.String(filepath.Base(newPath))
		if newName == oldName {
			return state, nil
		}
		r.log.Info("renamed", "from", file.FullPath, "to", newPath)
		state.Status = fmt.Sprintf("Renamed %s to %s", oldName, newName)
		return r.refresh(state, state.ShowHidden, newName)

	case OpenFileAction:
		file := state.CurrentFile()
		if file == nil {
			return state, nil
		}
		if err := openWithDefaultAppFn(file.FullPath); err != nil {
			return state, fmt.Errorf("cannot open %s: %w", file.Name, err)
		}
		state.Status = "Opened " + file.Name
		return state, nil

	// ===== PROMPT =====

	case PromptStartAction:
		switch a.Kind {
		case PromptRename:
			file := state.CurrentFile()
			if file == nil {
				return state, nil
			}
			state.Prompt = Prompt{Kind: PromptRename, Input: []rune(file.Name)}
		case PromptAsk:
			state.Prompt = Prompt{Kind: PromptAsk}
		}
		return state, nil

	case PromptCharAction:
		if state.Prompt.Active() {
			state.Prompt.Input = append(state.Prompt.Input, a.Char)
		}
		return state, nil

	case PromptBackspaceAction:
		if n := len(state.Prompt.Input); state.Prompt.Active() && n > 0 {
			state.Prompt.Input = state.Prompt.Input[:n-1]
		}
		return state, nil

	case PromptCancelAction:
		state.Prompt = Prompt{}
		return state, nil

	case PromptSubmitAction:
		prompt := state.Prompt
		state.Prompt = Prompt{}
		text := string(prompt.Input)
		switch prompt.Kind {
		case PromptRename:
			if strings.TrimSpace(text) == "" {
				return state, nil
			}
			return r.Reduce(state, RenameAction{NewName: text})
		case PromptAsk:
			return r.Reduce(state, AskAssistantAction{Question: text})
		}
		return state, nil

	// ===== ASSISTANT =====

	case AskAssistantAction:
		q := r.assistantQuestion(state, a.Question)
		asker := state.Assistant
		gen := state.previewGeneration
		dispatch := state.getDispatch()
		if dispatch == nil {
			state.AssistantReply = assistant.Reply(context.Background(), asker, q)
			return state, nil
		}
		state.AssistantReply = "🤔 Thinking..."
		go func() {
			dispatch(AssistantReplyAction{
				Generation: gen,
				Reply:      assistant.Reply(context.Background(), asker, q),
			})
		}()
		return state, nil

	case AssistantReplyAction:
		if a.Generation == state.previewGeneration {
			state.AssistantReply = a.Reply
		}
		return state, nil
	}

	return state, nil
}

// moveSelection selects idx, clamped to the listing, and requests a new
// preview when the selection actually changed.
func (r *StateReducer) moveSelection(state *AppState, idx int) error {
	n := len(state.Snapshot.Entries)
	if n == 0 {
		return nil
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	if idx == state.SelectedIndex {
		return nil
	}
	state.SelectedIndex = idx
	state.updateScrollVisibility()
	return r.generatePreview(state)
}

// refresh re-lists the current directory. The selection follows selectName
// when given, otherwise the previously selected name, otherwise its index.
// The preview is rebuilt only if the selected entry changed.
func (r *StateReducer) refresh(state *AppState, showHidden bool, selectName string) (*AppState, error) {
	prev := state.CurrentFile()
	var prevEntry FileEntry
	if prev != nil {
		prevEntry = *prev
	}
	prevIndex := state.SelectedIndex
	prevScroll := state.ScrollOffset
	if selectName == "" {
		selectName = prevEntry.Name
	}

	loading, err := r.changeDirectoryWithStatus(state, state.CurrentPath, showHidden)
	if err != nil {
		return state, err
	}

	post := func(r *StateReducer, state *AppState) error {
		state.ShowHidden = showHidden
		if selectName == "" || !state.selectName(selectName) {
			switch n := len(state.Snapshot.Entries); {
			case n == 0:
				state.SelectedIndex = -1
			case prevIndex >= n:
				state.SelectedIndex = n - 1
			case prevIndex >= 0:
				state.SelectedIndex = prevIndex
			}
		}
		state.ScrollOffset = prevScroll
		state.updateScrollVisibility()

		cur := state.CurrentFile()
		if cur != nil && prev != nil && sameEntry(*cur, prevEntry) &&
			state.Preview != nil && state.Preview.Path == cur.FullPath {
			return nil
		}
		return r.generatePreview(state)
	}

	return r.completeDirectoryChange(state, loading, post)
}

func sameEntry(a, b FileEntry) bool {
	return a.FullPath == b.FullPath && a.IsDir == b.IsDir &&
		a.Size == b.Size && a.Modified.Equal(b.Modified)
}

// ===== PRIVATE HELPER METHODS =====

// addToHistory adds path to history, removing forward history if needed
func (r *StateReducer) addToHistory(state *AppState, path string) {
	// If target matches previous entry, just move back in history (no mutation).
	if state.HistoryIndex > 0 && state.History[state.HistoryIndex-1] == path {
		state.HistoryIndex--
		return
	}

	// If target matches next entry, move forward in history.
	if state.HistoryIndex < len(state.History)-1 && state.History[state.HistoryIndex+1] == path {
		state.HistoryIndex++
		return
	}

	// If not at end of history and target is a new branch, truncate forward.
	if state.HistoryIndex < len(state.History)-1 {
		state.History = state.History[:state.HistoryIndex+1]
	}

	// Add new path if different from current
	if len(state.History) == 0 || state.History[len(state.History)-1] != path {
		state.History = append(state.History, path)
		state.HistoryIndex = len(state.History) - 1
	}
}

func (r *StateReducer) cancelPreviewLoad(state *AppState) {
	if state.PreviewState != preview.StateLoading || state.PreviewLoader == nil {
		return
	}
	state.PreviewLoader.Cancel(state.previewGeneration)
}

// generatePreview requests the preview of the selected entry under a fresh
// generation. Whatever was displayed is replaced by a loading placeholder
// and the assistant excerpt is cleared until the result arrives.
func (r *StateReducer) generatePreview(state *AppState) error {
	r.cancelPreviewLoad(state)
	gen := state.nextPreviewGeneration()

	state.AIContext = ""
	state.AssistantReply = ""
	state.PreviewScrollOffset = 0
	state.pendingFit = false

	file := state.CurrentFile()
	if file == nil {
		state.Preview = nil
		state.PreviewState = preview.StateRequested
		return nil
	}

	req := preview.Request{Path: file.FullPath, Generation: gen}
	state.Preview = &preview.Result{
		Path:       file.FullPath,
		Generation: gen,
		Name:       file.Name,
		Size:       file.Size,
		Modified:   file.Modified,
		IsDir:      file.IsDir,
	}
	state.PreviewState = preview.StateLoading

	loader := state.PreviewLoader
	dispatch := state.getDispatch()
	if loader == nil || dispatch == nil {
		r.applyPreviewResult(state, r.resolver.Resolve(context.Background(), req))
		return nil
	}

	loader.Start(PreviewLoadRequest{
		Request: req,
		Callback: func(res *preview.Result) {
			dispatch(PreviewLoadResultAction{Result: res})
		},
	})
	return nil
}

// GeneratePreview exposes the preview-building helper to other packages.
func (r *StateReducer) GeneratePreview(state *AppState) error {
	return r.generatePreview(state)
}

func (r *StateReducer) applyPreviewResult(state *AppState, res *preview.Result) {
	state.Preview = res
	state.PreviewScrollOffset = 0
	if res.Failed() {
		state.PreviewState = preview.StateFailed
		state.AIContext = ""
		r.log.Debug("preview failed", "path", res.Path, "kind", res.Err.Kind)
		return
	}
	state.PreviewState = preview.StateDisplayed
	state.AIContext = res.AIContext
	if img := res.Image(); img != nil {
		r.fitImage(state, img)
	}
}

// fitImage fits img to the picture area. A viewport that is not laid out yet
// is retried on the next resize.
func (r *StateReducer) fitImage(state *AppState, img *imageview.Handle) {
	vw, vh := state.ImageViewport()
	err := img.Fit(vw, vh)
	state.pendingFit = errors.Is(err, imageview.ErrViewportNotReady)
}

func (r *StateReducer) assistantQuestion(state *AppState, text string) assistant.Question {
	file := state.CurrentFile()
	if file == nil || state.AIContext == "" {
		return assistant.Question{Text: text}
	}
	if strings.TrimSpace(text) == "" {
		return assistant.AnalysisQuestion(file.FullPath, state.AIContext)
	}
	return assistant.Question{Text: text, FileName: file.Name, Excerpt: state.AIContext}
}

func (s *AppState) previewPageSize() int {
	n := s.BodyHeight() - previewHeaderRows
	if n < 1 {
		return 1
	}
	return n
}

func (s *AppState) scrollPreview(delta int) {
	if s.Preview == nil || s.PreviewImage() != nil {
		return
	}
	lines := strings.Count(s.Preview.Body(), "\n") + 1
	offset := s.PreviewScrollOffset + delta
	if offset > lines-1 {
		offset = lines - 1
	}
	if offset < 0 {
		offset = 0
	}
	s.PreviewScrollOffset = offset
}
