package input

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	statepkg "github.com/kk-code-lab/arangr/internal/state"
)

// InputHandler converts tcell events to Actions
type InputHandler struct {
	actionChan chan statepkg.Action
	state      *statepkg.AppState // Reference to current state for mode checking
}

// NewInputHandler creates a new input handler
func NewInputHandler(actionChan chan statepkg.Action) *InputHandler {
	return &InputHandler{
		actionChan: actionChan,
	}
}

// SetState sets the state reference for mode checking
func (ih *InputHandler) SetState(state *statepkg.AppState) {
	ih.state = state
}

// ProcessEvent converts a tcell event into an Action. It returns false once
// the user asked to quit.
func (ih *InputHandler) ProcessEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return ih.processKeyEvent(ev)
	case *tcell.EventResize:
		w, h := ev.Size()
		ih.actionChan <- statepkg.ResizeAction{Width: w, Height: h}
		return true
	default:
		return true
	}
}

// processKeyEvent handles keyboard input. Help and prompt modes capture
// keys before the browsing bindings see them.
func (ih *InputHandler) processKeyEvent(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		ih.actionChan <- statepkg.QuitAction{}
		return false
	}

	if ih.state != nil && ih.state.HelpVisible {
		switch ev.Key() {
		case tcell.KeyEscape:
			ih.actionChan <- statepkg.HelpHideAction{}
		case tcell.KeyRune:
			r := ev.Rune()
			if r == '?' || r == 'q' || r == 'Q' {
				ih.actionChan <- statepkg.HelpHideAction{}
			}
		}
		return true
	}

	if ih.state != nil && ih.state.Prompt.Active() {
		ih.processPromptKey(ev)
		return true
	}

	switch ev.Key() {
	case tcell.KeyUp:
		ih.actionChan <- statepkg.NavigateUpAction{}
	case tcell.KeyDown:
		ih.actionChan <- statepkg.NavigateDownAction{}
	case tcell.KeyEnter, tcell.KeyRight:
		ih.actionChan <- statepkg.EnterDirectoryAction{}
	case tcell.KeyLeft, tcell.KeyBackspace, tcell.KeyBackspace2:
		ih.actionChan <- statepkg.GoUpAction{}
	case tcell.KeyHome:
		ih.actionChan <- statepkg.NavigateHomeAction{}
	case tcell.KeyEnd:
		ih.actionChan <- statepkg.NavigateEndAction{}
	case tcell.KeyCtrlB:
		ih.actionChan <- statepkg.NavigatePageUpAction{}
	case tcell.KeyCtrlF:
		ih.actionChan <- statepkg.NavigatePageDownAction{}
	case tcell.KeyPgUp:
		ih.actionChan <- statepkg.PreviewPageUpAction{}
	case tcell.KeyPgDn:
		ih.actionChan <- statepkg.PreviewPageDownAction{}
	case tcell.KeyF2:
		ih.actionChan <- statepkg.PromptStartAction{Kind: statepkg.PromptRename}
	case tcell.KeyCtrlZ:
		ih.actionChan <- statepkg.SuspendAction{}
	case tcell.KeyCtrlR:
		ih.actionChan <- statepkg.RefreshDirectoryAction{}
	case tcell.KeyRune:
		return ih.processRune(ev.Rune())
	}
	return true
}

func (ih *InputHandler) processRune(r rune) bool {
	switch r {
	case 'q', 'Q':
		ih.actionChan <- statepkg.QuitAction{}
		return false
	case 'k':
		ih.actionChan <- statepkg.NavigateUpAction{}
	case 'j':
		ih.actionChan <- statepkg.NavigateDownAction{}
	case 'l':
		ih.actionChan <- statepkg.EnterDirectoryAction{}
	case 'h':
		ih.actionChan <- statepkg.GoUpAction{}
	case 'g':
		ih.actionChan <- statepkg.NavigateHomeAction{}
	case 'G':
		ih.actionChan <- statepkg.NavigateEndAction{}
	case 'K':
		ih.actionChan <- statepkg.PreviewScrollUpAction{}
	case 'J':
		ih.actionChan <- statepkg.PreviewScrollDownAction{}
	case '[':
		ih.actionChan <- statepkg.GoToHistoryAction{Direction: "back"}
	case ']':
		ih.actionChan <- statepkg.GoToHistoryAction{Direction: "forward"}
	case '~':
		ih.actionChan <- statepkg.GoHomeAction{}
	case '.':
		ih.actionChan <- statepkg.ToggleHiddenFilesAction{}
	case 'r':
		ih.actionChan <- statepkg.RefreshDirectoryAction{}
	case '+', '=':
		ih.actionChan <- statepkg.ImageZoomInAction{}
	case '-', '_':
		ih.actionChan <- statepkg.ImageZoomOutAction{}
	case 'f':
		ih.actionChan <- statepkg.ImageFitAction{}
	case 'o':
		ih.actionChan <- statepkg.ImageRotateAction{}
	case 'O':
		ih.actionChan <- statepkg.OpenFileAction{}
	case 'R':
		ih.actionChan <- statepkg.PromptStartAction{Kind: statepkg.PromptRename}
	case 'a':
		ih.actionChan <- statepkg.PromptStartAction{Kind: statepkg.PromptAsk}
	case '?':
		ih.actionChan <- statepkg.HelpToggleAction{}
	}
	return true
}

func (ih *InputHandler) processPromptKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		ih.actionChan <- statepkg.PromptCancelAction{}
	case tcell.KeyEnter:
		ih.actionChan <- statepkg.PromptSubmitAction{}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		ih.actionChan <- statepkg.PromptBackspaceAction{}
	case tcell.KeyRune:
		if r := ev.Rune(); unicode.IsPrint(r) {
			ih.actionChan <- statepkg.PromptCharAction{Char: r}
		}
	}
}
