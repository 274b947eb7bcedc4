package render

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	fsutil "github.com/kk-code-lab/arangr/internal/fs"
	"github.com/kk-code-lab/arangr/internal/imageview"
	"github.com/kk-code-lab/arangr/internal/preview"
	statepkg "github.com/kk-code-lab/arangr/internal/state"
)

func TestTruncateTextToWidth(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		width  int
		expect string
	}{
		{name: "fits without truncation", text: "file.txt", width: 20, expect: "file.txt"},
		{name: "adds ellipsis when needed", text: "verylongname", width: 6, expect: "veryl…"},
		{name: "only ellipsis when width too small", text: "example", width: 1, expect: "…"},
		{name: "multi-byte characters respected", text: "你好世界", width: 5, expect: "你好…"},
		{name: "returns empty when width is zero", text: "anything", width: 0, expect: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if actual := truncateTextToWidth(tt.text, tt.width); actual != tt.expect {
				t.Fatalf("expected %q, got %q (width %d)", tt.expect, actual, tt.width)
			}
		})
	}
}

func TestTruncateLeftKeepsTail(t *testing.T) {
	if got := truncateLeft("/home/user/projects", 10); got != "…/projects" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncateLeft("short", 10); got != "short" {
		t.Fatalf("expected untouched text, got %q", got)
	}
}

func TestSanitizeLine(t *testing.T) {
	if got := sanitizeLine("a\tb"); got != "a   b" {
		t.Fatalf("tab not expanded: %q", got)
	}
	if got := sanitizeLine("bell\x07"); got != "bell?" {
		t.Fatalf("control char not replaced: %q", got)
	}
	if got := sanitizeLine("evil\u202etxt.exe"); got != "evil⟪RLO⟫txt.exe" {
		t.Fatalf("bidi override not labelled: %q", got)
	}
	if got := sanitizeLine("crlf\r"); got != "crlf" {
		t.Fatalf("carriage return not dropped: %q", got)
	}
}

func TestWrapLine(t *testing.T) {
	got := wrapLine("abcdefgh", 3)
	want := []string{"abc", "def", "gh"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := wrapLine("", 3); len(got) != 1 || got[0] != "" {
		t.Fatalf("empty line should stay one row, got %v", got)
	}
}

func TestFormatBreadcrumbSegments(t *testing.T) {
	got := FormatBreadcrumbSegments("/home/user/docs")
	want := []string{"/", "home", "user", "docs"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := FormatBreadcrumbSegments(""); len(got) != 1 || got[0] != "/" {
		t.Fatalf("empty path should render root, got %v", got)
	}
}

func newTestScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(w, h)
	return screen
}

func rowText(screen tcell.Screen, y int) string {
	w, _ := screen.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		mainc, _, _, _ := screen.GetContent(x, y)
		if mainc == 0 {
			mainc = ' '
		}
		b.WriteRune(mainc)
	}
	return b.String()
}

func screenContains(screen tcell.Screen, text string) bool {
	_, h := screen.Size()
	for y := 0; y < h; y++ {
		if strings.Contains(rowText(screen, y), text) {
			return true
		}
	}
	return false
}

func testState(t *testing.T, w, h int) *statepkg.AppState {
	t.Helper()
	dir := t.TempDir()
	now := time.Now()
	state := statepkg.NewAppState(dir, false)
	state.ScreenWidth, state.ScreenHeight = w, h
	state.Snapshot = fsutil.Snapshot{
		Dir: dir,
		Entries: []fsutil.PathEntry{
			{Name: "docs", FullPath: filepath.Join(dir, "docs"), IsDir: true, Modified: now},
			{Name: "notes.txt", FullPath: filepath.Join(dir, "notes.txt"), Size: 12, Modified: now, Extension: ".txt"},
		},
	}
	state.SelectedIndex = 1
	return state
}

func TestRenderDrawsHeaderListingAndStatus(t *testing.T) {
	screen := newTestScreen(t, 100, 20)
	state := testState(t, 100, 20)
	state.Status = "Renamed a to b"

	NewRenderer(screen).Render(state)

	if header := rowText(screen, 0); !strings.HasPrefix(header, AppTitle) {
		t.Fatalf("header should start with title, got %q", header)
	}
	if !strings.Contains(rowText(screen, 1), "docs/") {
		t.Fatalf("expected directory row, got %q", rowText(screen, 1))
	}
	if !strings.Contains(rowText(screen, 2), "notes.txt") {
		t.Fatalf("expected file row, got %q", rowText(screen, 2))
	}
	if status := rowText(screen, 19); !strings.Contains(status, "Renamed a to b") {
		t.Fatalf("status line missing message: %q", status)
	}

	_, _, style, _ := screen.GetContent(1, 2)
	_, bg, _ := style.Decompose()
	if bg != GetColorTheme().SelectionBg {
		t.Fatalf("selected row should use selection background, got %v", bg)
	}
}

func TestRenderShowsErrorOverStatus(t *testing.T) {
	screen := newTestScreen(t, 100, 20)
	state := testState(t, 100, 20)
	state.Status = "ignored"
	state.LastError = errors.New("cannot read directory /nope")

	NewRenderer(screen).Render(state)

	status := rowText(screen, 19)
	if !strings.Contains(status, "cannot read directory /nope") || strings.Contains(status, "ignored") {
		t.Fatalf("expected error on status line, got %q", status)
	}
}

func TestRenderShowsPrompt(t *testing.T) {
	screen := newTestScreen(t, 100, 20)
	state := testState(t, 100, 20)
	state.Prompt = statepkg.Prompt{Kind: statepkg.PromptRename, Input: []rune("report.md")}

	NewRenderer(screen).Render(state)

	if status := rowText(screen, 19); !strings.Contains(status, "Rename: report.md") {
		t.Fatalf("expected rename prompt, got %q", status)
	}
}

func TestRenderShowsPreviewBodyFromScrollOffset(t *testing.T) {
	screen := newTestScreen(t, 100, 20)
	state := testState(t, 100, 20)
	state.Preview = &preview.Result{
		Path:    filepath.Join(state.CurrentPath, "notes.txt"),
		Name:    "notes.txt",
		Size:    12,
		Content: preview.TextBody{Body: "first line\nsecond line\nthird line"},
	}
	state.PreviewState = preview.StateDisplayed
	state.PreviewScrollOffset = 1

	NewRenderer(screen).Render(state)

	if screenContains(screen, "first line") {
		t.Fatalf("scrolled-away line should not be drawn")
	}
	if !screenContains(screen, "second line") || !screenContains(screen, "third line") {
		t.Fatalf("expected remaining body lines on screen")
	}
}

func TestRenderShowsAssistantReply(t *testing.T) {
	screen := newTestScreen(t, 100, 24)
	state := testState(t, 100, 24)
	state.Preview = &preview.Result{Name: "notes.txt", Content: preview.TextBody{Body: "body"}}
	state.PreviewState = preview.StateDisplayed
	state.AssistantReply = "This file lists chores."

	NewRenderer(screen).Render(state)

	if !screenContains(screen, "AI Assistant") || !screenContains(screen, "This file lists chores.") {
		t.Fatalf("assistant reply not rendered")
	}
}

func TestRenderLoadingPreview(t *testing.T) {
	screen := newTestScreen(t, 100, 20)
	state := testState(t, 100, 20)
	state.Preview = &preview.Result{Name: "notes.txt"}
	state.PreviewState = preview.StateLoading

	NewRenderer(screen).Render(state)

	if !screenContains(screen, "Loading preview") {
		t.Fatalf("expected loading placeholder")
	}
}

func TestRenderHelpOverlay(t *testing.T) {
	screen := newTestScreen(t, 100, 30)
	state := testState(t, 100, 30)
	state.HelpVisible = true

	NewRenderer(screen).Render(state)

	if !screenContains(screen, "Help") || !screenContains(screen, "Navigation") {
		t.Fatalf("help overlay not drawn")
	}
	if screenContains(screen, "notes.txt") {
		t.Fatalf("overlay should cover the listing")
	}
}

func TestHelpOverlayReflectsHiddenToggle(t *testing.T) {
	state := statepkg.NewAppState("/", true)
	joined := strings.Join(buildHelpOverlayLines(state), "\n")
	if !strings.Contains(joined, "Hide hidden files") {
		t.Fatalf("expected hide hint when hidden files are shown")
	}
}

func TestDrawImageUsesHalfBlocks(t *testing.T) {
	screen := newTestScreen(t, 10, 10)
	r := NewRenderer(screen)

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	img.Set(0, 0, red)
	img.Set(1, 0, red)
	img.Set(0, 1, blue)
	img.Set(1, 1, blue)

	r.drawImage(img, 0, 0, 2, 1)

	mainc, _, style, _ := screen.GetContent(0, 0)
	if mainc != '▀' {
		t.Fatalf("expected half block, got %q", mainc)
	}
	fg, bg, _ := style.Decompose()
	if fg != tcell.NewRGBColor(255, 0, 0) || bg != tcell.NewRGBColor(0, 0, 255) {
		t.Fatalf("unexpected colors fg=%v bg=%v", fg, bg)
	}
}

func TestCenterSpan(t *testing.T) {
	if src, dst := centerSpan(10, 4); src != 3 || dst != 0 {
		t.Fatalf("crop: got %d,%d", src, dst)
	}
	if src, dst := centerSpan(4, 10); src != 0 || dst != 3 {
		t.Fatalf("pad: got %d,%d", src, dst)
	}
}

func TestRenderedImageIsBoundedByPane(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 200, 100))
	path := filepath.Join(t.TempDir(), "wide.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, src); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	h, err := imageview.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	h.Scale = 20

	r := NewRenderer(newTestScreen(t, 10, 10))
	img := r.renderedImage(h, 30, 8)
	if b := img.Bounds(); b.Dx() != 30 || b.Dy() != 16 {
		t.Fatalf("rendered %dx%d, want 30x16", b.Dx(), b.Dy())
	}
	if again := r.renderedImage(h, 30, 8); again != img {
		t.Fatal("unchanged pane should reuse the cached bitmap")
	}
	if b := r.renderedImage(h, 20, 8).Bounds(); b.Dx() != 20 {
		t.Fatalf("resized pane rendered width %d, want 20", b.Dx())
	}
}
