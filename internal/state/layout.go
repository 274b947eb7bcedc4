package state

// Screen layout shared by the reducer (image fitting, scrolling) and the
// renderer. Row 0 is the path header, the last row the status line.
const (
	headerRows = 1
	statusRows = 1

	minListWidth = 24
	maxListWidth = 60

	// previewHeaderRows is the header block above preview content plus a gap.
	previewHeaderRows = 6
	// imageInfoRows is the image information block under the picture.
	imageInfoRows = 8
)

// BodyHeight is the number of rows between the header and the status line.
func (s *AppState) BodyHeight() int {
	h := s.ScreenHeight - headerRows - statusRows
	if h < 1 {
		return 1
	}
	return h
}

// ListHeight is the number of listing rows visible at once.
func (s *AppState) ListHeight() int {
	return s.BodyHeight()
}

// ListWidth is the width of the listing column; the preview pane takes the
// rest after a one-column separator.
func ListWidth(screenWidth int) int {
	if screenWidth < 2*minListWidth {
		return screenWidth / 2
	}
	w := screenWidth * 2 / 5
	if w < minListWidth {
		w = minListWidth
	}
	if w > maxListWidth {
		w = maxListWidth
	}
	return w
}

// PreviewPane returns the preview pane size in cells.
func (s *AppState) PreviewPane() (cols, rows int) {
	cols = s.ScreenWidth - ListWidth(s.ScreenWidth) - 1
	if cols < 0 {
		cols = 0
	}
	return cols, s.BodyHeight()
}

// ImageRows is the number of pane rows given to the picture.
func (s *AppState) ImageRows() int {
	_, rows := s.PreviewPane()
	rows -= previewHeaderRows + imageInfoRows
	if rows < 0 {
		return 0
	}
	return rows
}

// ImageViewport is the picture area in pixels. Each cell shows two pixels
// stacked vertically.
func (s *AppState) ImageViewport() (w, h int) {
	cols, _ := s.PreviewPane()
	return cols, s.ImageRows() * 2
}

func (s *AppState) updateScrollVisibility() {
	visible := s.ListHeight()
	if s.SelectedIndex < 0 {
		s.ScrollOffset = 0
		return
	}
	if s.SelectedIndex < s.ScrollOffset {
		s.ScrollOffset = s.SelectedIndex
	} else if s.SelectedIndex >= s.ScrollOffset+visible {
		s.ScrollOffset = s.SelectedIndex - visible + 1
	}
	s.clampScroll()
}

func (s *AppState) centerScrollOnSelection() {
	if s.SelectedIndex < 0 {
		s.ScrollOffset = 0
		return
	}
	s.ScrollOffset = s.SelectedIndex - s.ListHeight()/2
	s.clampScroll()
}

func (s *AppState) clampScroll() {
	maxOffset := len(s.Snapshot.Entries) - s.ListHeight()
	if maxOffset < 0 {
		maxOffset = 0
	}
	if s.ScrollOffset > maxOffset {
		s.ScrollOffset = maxOffset
	}
	if s.ScrollOffset < 0 {
		s.ScrollOffset = 0
	}
}
