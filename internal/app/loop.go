package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	statepkg "github.com/kk-code-lab/arangr/internal/state"
	renderui "github.com/kk-code-lab/arangr/internal/ui/render"
)

const doubleClickThreshold = 300 * time.Millisecond

// Run drives the event loop until the user quits or ctx is cancelled.
func (app *Application) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	app.runWatcher(ctx)

	app.renderer.Render(app.state)
	renderPending := false

	eventChan := make(chan tcell.Event)
	go func() {
		for {
			ev := app.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	var sigContCh chan os.Signal
	if sigs := contSignals(); len(sigs) > 0 {
		sigContCh = make(chan os.Signal, 1)
		signal.Notify(sigContCh, sigs...)
		defer signal.Stop(sigContCh)
	}

	for !app.shouldQuit {
		if renderPending {
			app.renderer.Render(app.state)
			renderPending = false
		}

		select {
		case <-ctx.Done():
			return
		case ev := <-eventChan:
			if app.handleEvent(ev) {
				renderPending = true
			}
		case action := <-app.actionCh:
			if app.handleAction(action) {
				renderPending = true
			}
		case <-sigContCh:
			if app.resumeAfterStop() {
				renderPending = true
			}
		}

		if app.processActions() {
			renderPending = true
		}
	}
}

func (app *Application) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		// A key press acknowledges whatever the status line was showing.
		app.state.LastError = nil
		app.state.Status = ""
		if !app.input.ProcessEvent(ev) {
			app.shouldQuit = true
		}
	case *tcell.EventResize:
		app.screen.Sync()
		app.input.ProcessEvent(ev)
	case *tcell.EventMouse:
		app.handleMouse(ev)
	case *tcell.EventInterrupt:
		return true
	default:
		return false
	}
	return true
}

// handleMouse maps primary clicks on the listing to selection, double
// clicks to entering, wheel over the preview to scrolling and clicks on the
// breadcrumb to jumps.
func (app *Application) handleMouse(ev *tcell.EventMouse) {
	state := app.state
	if state.HelpVisible || state.Prompt.Active() {
		return
	}
	x, y := ev.Position()
	listWidth := statepkg.ListWidth(state.ScreenWidth)
	inPreview := x > listWidth

	switch {
	case ev.Buttons()&tcell.WheelUp != 0:
		if inPreview {
			app.actionCh <- statepkg.PreviewScrollUpAction{}
		} else {
			app.actionCh <- statepkg.NavigateUpAction{}
		}
		return
	case ev.Buttons()&tcell.WheelDown != 0:
		if inPreview {
			app.actionCh <- statepkg.PreviewScrollDownAction{}
		} else {
			app.actionCh <- statepkg.NavigateDownAction{}
		}
		return
	case ev.Buttons()&tcell.Button1 == 0:
		return
	}

	if y == 0 {
		app.handleBreadcrumbClick(x)
		return
	}
	if inPreview || y > state.BodyHeight() {
		return
	}

	idx := state.ScrollOffset + y - 1
	if idx < 0 || idx >= len(state.Files()) {
		return
	}

	clickKey := fmt.Sprintf("list-%d", idx)
	doubleClick := app.lastClickKey == clickKey && time.Since(app.lastClickTime) <= doubleClickThreshold
	app.lastClickKey = clickKey
	app.lastClickTime = time.Now()

	app.actionCh <- statepkg.SelectIndexAction{Index: idx}
	if doubleClick {
		app.actionCh <- statepkg.EnterDirectoryAction{}
	}
}

func (app *Application) handleBreadcrumbClick(x int) {
	pos := runewidth.StringWidth(renderui.AppTitle) + 1
	if x < pos {
		return
	}
	segments := renderui.FormatBreadcrumbSegments(app.state.CurrentPath)
	sepW := runewidth.StringWidth(renderui.BreadcrumbSeparator)

	// If the breadcrumb was shortened the columns no longer map to segments.
	total := 0
	for i, s := range segments {
		if i > 0 {
			total += sepW
		}
		total += runewidth.StringWidth(s)
	}
	if total > app.state.ScreenWidth-pos {
		return
	}

	currentX := pos
	for i, s := range segments {
		if i > 0 {
			if x < currentX+sepW {
				app.actionCh <- statepkg.GoToPathAction{Path: buildBreadcrumbPath(segments, i-1)}
				return
			}
			currentX += sepW
		}
		segW := runewidth.StringWidth(s)
		if x < currentX+segW {
			app.actionCh <- statepkg.GoToPathAction{Path: buildBreadcrumbPath(segments, i)}
			return
		}
		currentX += segW
	}
}

func buildBreadcrumbPath(segments []string, idx int) string {
	if idx < 0 || idx >= len(segments) {
		return ""
	}
	path := ""
	for i := 0; i <= idx; i++ {
		seg := segments[i]
		switch {
		case seg == "/":
			path = string(filepath.Separator)
		case i == 0 && filepath.VolumeName(seg) == seg:
			path = seg + string(filepath.Separator)
		default:
			path = filepath.Join(path, seg)
		}
	}
	return path
}

func (app *Application) processActions() bool {
	changed := false
	for {
		select {
		case action := <-app.actionCh:
			if app.handleAction(action) {
				changed = true
			}
		default:
			return changed
		}
	}
}

func (app *Application) handleAction(action statepkg.Action) bool {
	if action == nil {
		return false
	}

	switch a := action.(type) {
	case statepkg.QuitAction:
		app.shouldQuit = true
		return false
	case statepkg.SuspendAction:
		app.suspendToShell()
		app.resumeAfterStop()
		return true
	case directoryChangedAction:
		if a.Dir != app.state.CurrentPath || app.state.DirectoryLoading() {
			return false
		}
		app.log.Debug("directory changed on disk", "path", a.Dir)
		action = statepkg.RefreshDirectoryAction{}
	}

	app.reduce(action)
	app.syncWatcher()
	return true
}

// reduce applies action, turning reducer errors and panics into the status
// line error so one bad file cannot take the session down.
func (app *Application) reduce(action statepkg.Action) {
	defer func() {
		if r := recover(); r != nil {
			app.log.Error("panic while handling action", "action", fmt.Sprintf("%T", action), "panic", r, "stack", string(debug.Stack()))
			app.state.LastError = fmt.Errorf("internal error handling %T: %v", action, r)
		}
	}()

	if _, err := app.reducer.Reduce(app.state, action); err != nil {
		app.log.Debug("action failed", "action", fmt.Sprintf("%T", action), "err", err)
		app.state.LastError = err
	}
}
