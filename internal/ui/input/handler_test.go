package input

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	statepkg "github.com/kk-code-lab/arangr/internal/state"
)

func emit(t *testing.T, state *statepkg.AppState, ev tcell.Event) (statepkg.Action, bool) {
	t.Helper()
	actionChan := make(chan statepkg.Action, 1)
	handler := NewInputHandler(actionChan)
	handler.SetState(state)

	keepRunning := handler.ProcessEvent(ev)

	select {
	case action := <-actionChan:
		return action, keepRunning
	default:
		return nil, keepRunning
	}
}

func TestBrowsingKeyBindings(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want statepkg.Action
	}{
		{"up arrow", tcell.NewEventKey(tcell.KeyUp, 0, 0), statepkg.NavigateUpAction{}},
		{"k", tcell.NewEventKey(tcell.KeyRune, 'k', 0), statepkg.NavigateUpAction{}},
		{"down arrow", tcell.NewEventKey(tcell.KeyDown, 0, 0), statepkg.NavigateDownAction{}},
		{"j", tcell.NewEventKey(tcell.KeyRune, 'j', 0), statepkg.NavigateDownAction{}},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, 0), statepkg.EnterDirectoryAction{}},
		{"right arrow", tcell.NewEventKey(tcell.KeyRight, 0, 0), statepkg.EnterDirectoryAction{}},
		{"left arrow", tcell.NewEventKey(tcell.KeyLeft, 0, 0), statepkg.GoUpAction{}},
		{"backspace", tcell.NewEventKey(tcell.KeyBackspace2, 0, 0), statepkg.GoUpAction{}},
		{"home", tcell.NewEventKey(tcell.KeyHome, 0, 0), statepkg.NavigateHomeAction{}},
		{"end", tcell.NewEventKey(tcell.KeyEnd, 0, 0), statepkg.NavigateEndAction{}},
		{"history back", tcell.NewEventKey(tcell.KeyRune, '[', 0), statepkg.GoToHistoryAction{Direction: "back"}},
		{"history forward", tcell.NewEventKey(tcell.KeyRune, ']', 0), statepkg.GoToHistoryAction{Direction: "forward"}},
		{"tilde", tcell.NewEventKey(tcell.KeyRune, '~', 0), statepkg.GoHomeAction{}},
		{"dot", tcell.NewEventKey(tcell.KeyRune, '.', 0), statepkg.ToggleHiddenFilesAction{}},
		{"refresh", tcell.NewEventKey(tcell.KeyRune, 'r', 0), statepkg.RefreshDirectoryAction{}},
		{"page down", tcell.NewEventKey(tcell.KeyPgDn, 0, 0), statepkg.PreviewPageDownAction{}},
		{"page up", tcell.NewEventKey(tcell.KeyPgUp, 0, 0), statepkg.PreviewPageUpAction{}},
		{"zoom in", tcell.NewEventKey(tcell.KeyRune, '+', 0), statepkg.ImageZoomInAction{}},
		{"zoom out", tcell.NewEventKey(tcell.KeyRune, '-', 0), statepkg.ImageZoomOutAction{}},
		{"fit", tcell.NewEventKey(tcell.KeyRune, 'f', 0), statepkg.ImageFitAction{}},
		{"rotate", tcell.NewEventKey(tcell.KeyRune, 'o', 0), statepkg.ImageRotateAction{}},
		{"open", tcell.NewEventKey(tcell.KeyRune, 'O', 0), statepkg.OpenFileAction{}},
		{"rename", tcell.NewEventKey(tcell.KeyRune, 'R', 0), statepkg.PromptStartAction{Kind: statepkg.PromptRename}},
		{"rename F2", tcell.NewEventKey(tcell.KeyF2, 0, 0), statepkg.PromptStartAction{Kind: statepkg.PromptRename}},
		{"ask", tcell.NewEventKey(tcell.KeyRune, 'a', 0), statepkg.PromptStartAction{Kind: statepkg.PromptAsk}},
		{"help", tcell.NewEventKey(tcell.KeyRune, '?', 0), statepkg.HelpToggleAction{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, keepRunning := emit(t, &statepkg.AppState{}, tt.ev)
			if !keepRunning {
				t.Fatalf("key should not quit")
			}
			if got != tt.want {
				t.Fatalf("expected %#v, got %#v", tt.want, got)
			}
		})
	}
}

func TestQuitKeysStopTheLoop(t *testing.T) {
	for _, ev := range []*tcell.EventKey{
		tcell.NewEventKey(tcell.KeyRune, 'q', 0),
		tcell.NewEventKey(tcell.KeyCtrlC, 0, 0),
	} {
		got, keepRunning := emit(t, &statepkg.AppState{}, ev)
		if keepRunning {
			t.Fatalf("expected quit for %v", ev.Name())
		}
		if _, ok := got.(statepkg.QuitAction); !ok {
			t.Fatalf("expected QuitAction, got %T", got)
		}
	}
}

func TestEscapeHidesHelp(t *testing.T) {
	got, _ := emit(t, &statepkg.AppState{HelpVisible: true}, tcell.NewEventKey(tcell.KeyEscape, 0, 0))
	if _, ok := got.(statepkg.HelpHideAction); !ok {
		t.Fatalf("Expected HelpHideAction, got %T", got)
	}
}

func TestQClosesHelpWithoutQuitting(t *testing.T) {
	got, keepRunning := emit(t, &statepkg.AppState{HelpVisible: true}, tcell.NewEventKey(tcell.KeyRune, 'q', 0))
	if !keepRunning {
		t.Fatal("q with help visible should not quit")
	}
	if _, ok := got.(statepkg.HelpHideAction); !ok {
		t.Fatalf("Expected HelpHideAction, got %T", got)
	}
}

func TestHelpSwallowsBrowsingKeys(t *testing.T) {
	got, _ := emit(t, &statepkg.AppState{HelpVisible: true}, tcell.NewEventKey(tcell.KeyDown, 0, 0))
	if got != nil {
		t.Fatalf("expected no action while help is visible, got %T", got)
	}
}

func TestPromptCapturesRunes(t *testing.T) {
	state := &statepkg.AppState{Prompt: statepkg.Prompt{Kind: statepkg.PromptRename}}

	got, keepRunning := emit(t, state, tcell.NewEventKey(tcell.KeyRune, 'q', 0))
	if !keepRunning {
		t.Fatal("typing q into a prompt should not quit")
	}
	if got != (statepkg.PromptCharAction{Char: 'q'}) {
		t.Fatalf("expected PromptCharAction{q}, got %#v", got)
	}
}

func TestPromptEditingKeys(t *testing.T) {
	state := &statepkg.AppState{Prompt: statepkg.Prompt{Kind: statepkg.PromptAsk}}

	tests := []struct {
		ev   *tcell.EventKey
		want statepkg.Action
	}{
		{tcell.NewEventKey(tcell.KeyEnter, 0, 0), statepkg.PromptSubmitAction{}},
		{tcell.NewEventKey(tcell.KeyEscape, 0, 0), statepkg.PromptCancelAction{}},
		{tcell.NewEventKey(tcell.KeyBackspace2, 0, 0), statepkg.PromptBackspaceAction{}},
	}
	for _, tt := range tests {
		if got, _ := emit(t, state, tt.ev); got != tt.want {
			t.Fatalf("%s: expected %#v, got %#v", tt.ev.Name(), tt.want, got)
		}
	}
}

func TestResizeEmitsResizeAction(t *testing.T) {
	got, _ := emit(t, nil, tcell.NewEventResize(120, 40))
	if got != (statepkg.ResizeAction{Width: 120, Height: 40}) {
		t.Fatalf("unexpected action %#v", got)
	}
}
