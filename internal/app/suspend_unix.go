//go:build !windows

package app

import (
	"syscall"

	"github.com/gdamore/tcell/v2"

	statepkg "github.com/kk-code-lab/arangr/internal/state"
)

func (app *Application) suspendToShell() {
	// Return terminal control to the shell before stopping the process.
	_ = app.screen.Suspend()
	// Stop only this process; the process group may include the shell that
	// launched us.
	_ = syscall.Kill(syscall.Getpid(), syscall.SIGTSTP)
}

func (app *Application) resumeAfterStop() bool {
	if err := app.screen.Resume(); err != nil {
		app.log.Warn("resume failed", "err", err)
		return false
	}
	app.screen.EnableMouse()
	app.screen.Sync()
	_ = app.screen.PostEvent(tcell.NewEventInterrupt("resume"))
	if w, h := app.screen.Size(); w > 0 && h > 0 {
		app.reduce(statepkg.ResizeAction{Width: w, Height: h})
	}
	return true
}
