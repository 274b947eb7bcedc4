package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/arangr/internal/assistant"
	"github.com/kk-code-lab/arangr/internal/config"
	"github.com/kk-code-lab/arangr/internal/logging"
	"github.com/kk-code-lab/arangr/internal/office"
	"github.com/kk-code-lab/arangr/internal/preview"
	statepkg "github.com/kk-code-lab/arangr/internal/state"
	inputui "github.com/kk-code-lab/arangr/internal/ui/input"
	renderui "github.com/kk-code-lab/arangr/internal/ui/render"
	"github.com/kk-code-lab/arangr/internal/watch"
)

// Options configures a new Application.
type Options struct {
	Config *config.Config
	// StartPath is a directory to open or a file to select. Empty means
	// browse.start_path, then the working directory.
	StartPath string
	Assistant assistant.Asker
}

// Application represents the running app.
type Application struct {
	screen   tcell.Screen
	state    *statepkg.AppState
	reducer  *statepkg.StateReducer
	renderer *renderui.Renderer
	input    *inputui.InputHandler
	actionCh chan statepkg.Action
	watcher  *watch.Watcher
	log      *logging.Logger

	shouldQuit    bool
	lastClickKey  string
	lastClickTime time.Time
}

// directoryChangedAction is posted by the watcher. It is handled here rather
// than by the reducer because it only turns into a refresh when dir is still
// the directory on screen.
type directoryChangedAction struct {
	Dir string
}

// NewApplication opens the terminal and loads the start directory.
func NewApplication(opts Options) (*Application, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()

	app, err := newApplication(screen, opts)
	if err != nil {
		screen.Fini()
		return nil, err
	}
	return app, nil
}

func newApplication(screen tcell.Screen, opts Options) (*Application, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	limits, err := cfg.Limits()
	if err != nil {
		return nil, err
	}
	resolver := preview.NewResolver(limits, preview.WithExtractor(office.New(cfg.ExtractorOptions()...)))

	startPath, err := resolveStartPath(opts.StartPath, cfg.Browse.StartPath)
	if err != nil {
		return nil, err
	}

	state := statepkg.NewAppState(startPath, cfg.Browse.ShowHidden)
	state.ScreenWidth, state.ScreenHeight = screen.Size()
	if opts.Assistant != nil {
		state.Assistant = opts.Assistant
	}

	reducer := statepkg.NewStateReducer(statepkg.WithResolver(resolver))
	if err := reducer.Start(state, startPath); err != nil {
		return nil, err
	}

	actionCh := make(chan statepkg.Action, 64)
	dispatch := func(action statepkg.Action) {
		select {
		case actionCh <- action:
		default:
			go func() { actionCh <- action }()
		}
	}
	state.SetDispatch(dispatch)
	state.DirectoryLoader = statepkg.NewAsyncDirectoryLoader()
	state.PreviewLoader = statepkg.NewAsyncPreviewLoader(resolver, cfg.Preview.Workers)

	inputHandler := inputui.NewInputHandler(actionCh)
	inputHandler.SetState(state)

	app := &Application{
		screen:   screen,
		state:    state,
		reducer:  reducer,
		renderer: renderui.NewRenderer(screen),
		input:    inputHandler,
		actionCh: actionCh,
		log:      logging.Get("app"),
	}

	if cfg.Browse.Watch {
		w, err := watch.New(func(dir string) {
			dispatch(directoryChangedAction{Dir: dir})
		})
		if err != nil {
			app.log.Warn("directory watching disabled", "err", err)
		} else {
			app.watcher = w
			app.syncWatcher()
		}
	}

	app.log.Info("started", "path", state.CurrentPath, "workers", cfg.Preview.Workers)
	return app, nil
}

func resolveStartPath(candidates ...string) (string, error) {
	for _, p := range candidates {
		if p != "" {
			abs, err := filepath.Abs(p)
			if err != nil {
				return "", fmt.Errorf("cannot resolve %s: %w", p, err)
			}
			return abs, nil
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("cannot determine working directory: %w", err)
	}
	return cwd, nil
}

// State exposes the current state, mainly for the CLI to report where the
// session ended.
func (app *Application) State() *statepkg.AppState {
	return app.state
}

// Close releases the watcher and the terminal.
func (app *Application) Close() error {
	var err error
	if app.watcher != nil {
		err = app.watcher.Close()
	}
	app.screen.Fini()
	return err
}

// syncWatcher points the watcher at the directory on screen.
func (app *Application) syncWatcher() {
	if app.watcher == nil || app.state.DirectoryLoading() {
		return
	}
	if app.watcher.Dir() == app.state.CurrentPath {
		return
	}
	if err := app.watcher.Watch(app.state.CurrentPath); err != nil {
		app.log.Warn("cannot watch directory", "path", app.state.CurrentPath, "err", err)
	}
}

func (app *Application) runWatcher(ctx context.Context) {
	if app.watcher != nil {
		go app.watcher.Run(ctx)
	}
}
