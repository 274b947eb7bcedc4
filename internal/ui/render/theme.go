package render

import "github.com/gdamore/tcell/v2"

// ColorTheme defines application colors.
type ColorTheme struct {
	Background  tcell.Color
	Foreground  tcell.Color
	HeaderBg    tcell.Color
	HeaderFg    tcell.Color
	SelectionBg tcell.Color
	SelectionFg tcell.Color
	DirectoryFg tcell.Color
	SymlinkFg   tcell.Color
	FileFg      tcell.Color
	HiddenFg    tcell.Color
	SeparatorFg tcell.Color
	StatusBg    tcell.Color
	StatusFg    tcell.Color
	ErrorFg     tcell.Color
	NoticeFg    tcell.Color
	DimFg       tcell.Color
	PromptFg    tcell.Color
}

// GetColorTheme returns the default color scheme.
func GetColorTheme() ColorTheme {
	return ColorTheme{
		Background:  tcell.ColorDefault,
		Foreground:  tcell.ColorDefault,
		HeaderBg:    tcell.ColorDefault,
		HeaderFg:    tcell.ColorDefault,
		SelectionBg: tcell.Color33,
		SelectionFg: tcell.ColorWhite,
		DirectoryFg: tcell.Color33,
		SymlinkFg:   tcell.Color51,
		FileFg:      tcell.ColorDefault,
		HiddenFg:    tcell.ColorLightSlateGray,
		SeparatorFg: tcell.Color240,
		StatusBg:    tcell.Color236,
		StatusFg:    tcell.Color252,
		ErrorFg:     tcell.Color203,
		NoticeFg:    tcell.Color214,
		DimFg:       tcell.Color245,
		PromptFg:    tcell.Color118,
	}
}
