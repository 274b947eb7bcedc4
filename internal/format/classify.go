// Package format decides how a file should be previewed and how it is
// labelled in listings.
package format

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kk-code-lab/arangr/internal/fs"
)

// Classification selects the content-rendering strategy for a file.
type Classification int

const (
	Binary Classification = iota
	Text
	Image
	OfficeWord
	OfficeExcel
	OfficePowerPoint
	Pdf
)

func (c Classification) String() string {
	switch c {
	case Text:
		return "text"
	case Image:
		return "image"
	case OfficeWord:
		return "word"
	case OfficeExcel:
		return "excel"
	case OfficePowerPoint:
		return "powerpoint"
	case Pdf:
		return "pdf"
	default:
		return "binary"
	}
}

// IsOffice reports whether c is handled by the office extractor.
func (c Classification) IsOffice() bool {
	switch c {
	case OfficeWord, OfficeExcel, OfficePowerPoint, Pdf:
		return true
	}
	return false
}

var extensionTable = map[string]Classification{
	// text and source code
	".txt": Text, ".md": Text, ".markdown": Text, ".rst": Text, ".log": Text,
	".csv": Text, ".tsv": Text, ".json": Text, ".xml": Text, ".yaml": Text,
	".yml": Text, ".toml": Text, ".ini": Text, ".cfg": Text, ".conf": Text,
	".properties": Text, ".env": Text, ".gitignore": Text, ".dockerfile": Text,
	".html": Text, ".htm": Text, ".css": Text, ".scss": Text, ".sass": Text,
	".less": Text, ".svg": Text, ".sql": Text,
	".py": Text, ".js": Text, ".jsx": Text, ".ts": Text, ".tsx": Text,
	".vue": Text, ".go": Text, ".rs": Text, ".c": Text, ".h": Text,
	".cpp": Text, ".hpp": Text, ".cs": Text, ".java": Text, ".kt": Text,
	".scala": Text, ".swift": Text, ".rb": Text, ".php": Text, ".pl": Text,
	".lua": Text, ".dart": Text, ".r": Text, ".hs": Text, ".clj": Text,
	".sh": Text, ".bash": Text, ".zsh": Text, ".bat": Text, ".ps1": Text,
	".gradle": Text, ".rtf": Text,

	// images the loader can decode
	".jpg": Image, ".jpeg": Image, ".png": Image, ".gif": Image,
	".bmp": Image, ".tif": Image, ".tiff": Image, ".webp": Image,

	// office documents
	".docx": OfficeWord, ".doc": OfficeWord,
	".xlsx": OfficeExcel, ".xlsm": OfficeExcel, ".xls": OfficeExcel,
	".pptx": OfficePowerPoint, ".ppt": OfficePowerPoint,
	".pdf": Pdf,

	// opaque binaries
	".ico": Binary, ".psd": Binary, ".raw": Binary, ".heic": Binary,
	".mp3": Binary, ".wav": Binary, ".flac": Binary, ".aac": Binary,
	".ogg": Binary, ".m4a": Binary, ".wma": Binary,
	".mp4": Binary, ".avi": Binary, ".mov": Binary, ".mkv": Binary,
	".wmv": Binary, ".webm": Binary, ".flv": Binary, ".m4v": Binary,
	".zip": Binary, ".rar": Binary, ".7z": Binary, ".tar": Binary,
	".gz": Binary, ".bz2": Binary, ".xz": Binary, ".dmg": Binary,
	".exe": Binary, ".msi": Binary, ".dll": Binary, ".so": Binary,
	".dylib": Binary, ".deb": Binary, ".rpm": Binary, ".pkg": Binary,
	".iso": Binary, ".bin": Binary,
}

var textFileNames = map[string]struct{}{
	"readme": {}, "license": {}, "changelog": {}, "authors": {},
	"contributors": {}, "makefile": {}, "dockerfile": {}, "vagrantfile": {},
	"gemfile": {}, "rakefile": {},
}

// Classify decides how path should be previewed. A known extension is
// authoritative; otherwise up to fs.SniffSampleSize bytes are inspected.
// Errors while probing classify as Binary. Callers handle directories
// themselves; a directory classifies as Binary without being read.
func Classify(path string) Classification {
	ext := strings.ToLower(filepath.Ext(path))
	if c, ok := extensionTable[ext]; ok {
		return c
	}
	if _, ok := textFileNames[strings.ToLower(filepath.Base(path))]; ok {
		return Text
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Binary
	}
	if info.Size() == 0 {
		return Text
	}
	sample, err := fs.ReadTextSample(path)
	if err != nil {
		return Binary
	}
	if fs.SniffText(sample) {
		return Text
	}
	return Binary
}

// KnownExtension reports whether ext (with leading dot) is in the static table.
func KnownExtension(ext string) bool {
	_, ok := extensionTable[strings.ToLower(ext)]
	return ok
}
