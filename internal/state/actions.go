package state

import "github.com/kk-code-lab/arangr/internal/preview"

// Action is the base interface for all state mutations
type Action interface{}

// ===== NAVIGATION ACTIONS =====

type NavigateUpAction struct{}
type NavigateDownAction struct{}
type NavigatePageUpAction struct{}
type NavigatePageDownAction struct{}
type NavigateHomeAction struct{}
type NavigateEndAction struct{}
type SelectIndexAction struct {
	Index int
}
type EnterDirectoryAction struct{}
type GoUpAction struct{}
type GoHomeAction struct{}
type GoToPathAction struct {
	Path string
}
type GoToHistoryAction struct {
	Direction string // "back" or "forward"
}
type RefreshDirectoryAction struct{}
type ToggleHiddenFilesAction struct{}

// ===== VIEW ACTIONS =====

type ResizeAction struct {
	Width  int
	Height int
}

type HelpToggleAction struct{}
type HelpHideAction struct{}

type PreviewScrollUpAction struct{}
type PreviewScrollDownAction struct{}
type PreviewPageUpAction struct{}
type PreviewPageDownAction struct{}

// ===== IMAGE ACTIONS =====

type ImageZoomInAction struct{}
type ImageZoomOutAction struct{}
type ImageFitAction struct{}
type ImageRotateAction struct{}

// ===== FILE ACTIONS =====

type RenameAction struct {
	NewName string
}
type OpenFileAction struct{}

// ===== PROMPT ACTIONS =====

type PromptStartAction struct {
	Kind PromptKind
}
type PromptCharAction struct {
	Char rune
}
type PromptBackspaceAction struct{}
type PromptCancelAction struct{}
type PromptSubmitAction struct{}

// ===== ASSISTANT ACTIONS =====

type AskAssistantAction struct {
	Question string
}
type AssistantReplyAction struct {
	Generation uint64
	Reply      string
}

// ===== LOADER RESULTS =====

type DirectoryLoadResultAction DirectoryLoadResult

type PreviewLoadResultAction struct {
	Result *preview.Result
}

// ===== APPLICATION ACTIONS =====

type QuitAction struct{}

// SuspendAction hands the terminal back to the shell; the application
// handles it without touching state.
type SuspendAction struct{}
