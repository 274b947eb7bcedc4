package format

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kk-code-lab/arangr/internal/fs"
)

const (
	FolderIconDefault = "📁"
	FolderIconImages  = "🖼️"
	FolderIconVideos  = "🎬"
	FolderIconMusic   = "🎵"
	FolderIconCode    = "💻"

	fileIconDefault = "📄"
	fileIconEmpty   = "📝"

	// imageFolderThreshold is the image count a folder must exceed to get
	// the image folder icon.
	imageFolderThreshold = 5
	// hintWindow is how many entries are inspected for video, music and code hints.
	hintWindow = 10
)

var fileIcons = map[string]string{
	".py": "🐍", ".js": "🟨", ".ts": "🔷", ".html": "🌐", ".css": "🎨",
	".json": "📋", ".xml": "🗂️", ".yaml": "⚙️", ".yml": "⚙️",
	".cpp": "⚡", ".c": "🔧", ".java": "☕", ".php": "🐘", ".go": "🐹",
	".rs": "🦀", ".swift": "🐦", ".kt": "🔶", ".rb": "💎", ".sql": "🗄️",

	".txt": "📄", ".md": "📝", ".doc": "📘", ".docx": "📘",
	".rtf": "📝", ".pdf": "📕", ".odt": "📄",

	".xls": "📊", ".xlsx": "📊", ".csv": "📈", ".ods": "📊", ".tsv": "📋",

	".ppt": "📽️", ".pptx": "📽️", ".odp": "🎞️",

	".jpg": "🖼️", ".jpeg": "🖼️", ".png": "🖼️", ".gif": "🎞️",
	".bmp": "🖼️", ".svg": "🎨", ".ico": "🔷", ".webp": "🖼️",
	".tif": "🖼️", ".tiff": "🖼️", ".raw": "📷", ".psd": "🎨",

	".mp3": "🎵", ".wav": "🎼", ".flac": "🎼", ".aac": "🎵",
	".ogg": "🎵", ".m4a": "🎵", ".wma": "🎵",
	".mp4": "🎬", ".avi": "📹", ".mov": "🎬", ".mkv": "🎬",
	".wmv": "📹", ".webm": "🎬", ".flv": "📹", ".m4v": "🎬",

	".zip": "🗜️", ".rar": "📦", ".7z": "🗜️", ".tar": "📦",
	".gz": "📦", ".bz2": "📦", ".xz": "📦", ".dmg": "💿",

	".exe": "⚙️", ".msi": "📦", ".bat": "⚙️", ".sh": "🐚",
	".deb": "📦", ".rpm": "📦", ".pkg": "📦",

	".log": "📋", ".ini": "⚙️", ".cfg": "⚙️", ".conf": "⚙️",
	".dll": "🔧", ".so": "🔧", ".dylib": "🔧", ".lib": "📚",
	".gitignore": "🚫", ".env": "🔐", ".dockerfile": "🐳",
}

var specialFolders = map[string]string{
	"documents":    "📂",
	"downloads":    "📥",
	"pictures":     "🖼️",
	"music":        "🎵",
	"videos":       "🎬",
	"desktop":      "🖥️",
	"trash":        "🗑️",
	"recycle bin":  "🗑️",
	".git":         "📚",
	"node_modules": "📦",
	"build":        "🔨",
	"dist":         "📦",
	"src":          "💻",
	"assets":       "🎨",
	"images":       "🖼️",
	"img":          "🖼️",
	"photos":       "📷",
	"audio":        "🎵",
	"docs":         "📚",
	"config":       "⚙️",
	"backup":       "💾",
	"temp":         "🗂️",
	"cache":        "💾",
}

var (
	iconImageExts = []string{".jpg", ".png", ".gif", ".jpeg"}
	iconVideoExts = []string{".mp4", ".avi", ".mov", ".mkv"}
	iconMusicExts = []string{".mp3", ".wav", ".flac", ".m4a"}
	iconCodeExts  = []string{".py", ".js", ".html", ".css", ".java", ".go"}
)

// Icon returns the listing icon for entry.
func Icon(entry fs.PathEntry) string {
	if entry.IsDir {
		return FolderIcon(entry.FullPath)
	}
	return FileIcon(entry)
}

// FileIcon returns the icon for a regular file. Empty files get their own icon.
func FileIcon(entry fs.PathEntry) string {
	if entry.Size == 0 {
		return fileIconEmpty
	}
	ext := entry.Extension
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(entry.Name))
	}
	if icon, ok := fileIcons[ext]; ok {
		return icon
	}
	return fileIconDefault
}

// FolderIcon returns a content-aware icon for the directory at path. A folder
// with an image among its first entries and more than five images overall
// gets the image icon; otherwise the first entries hint at video, music or
// code; otherwise well-known names decide.
// Unreadable folders fall back to name rules.
func FolderIcon(path string) string {
	if entries, err := os.ReadDir(path); err == nil {
		if icon := iconFromContents(entries); icon != "" {
			return icon
		}
	}
	if icon, ok := specialFolders[strings.ToLower(filepath.Base(path))]; ok {
		return icon
	}
	return FolderIconDefault
}

func iconFromContents(entries []os.DirEntry) string {
	window := entries
	if len(window) > hintWindow {
		window = window[:hintWindow]
	}

	if anyExt(window, iconImageExts) {
		images := 0
		for _, e := range entries {
			if hasExt(e.Name(), iconImageExts) {
				images++
			}
		}
		if images > imageFolderThreshold {
			return FolderIconImages
		}
	}

	switch {
	case anyExt(window, iconVideoExts):
		return FolderIconVideos
	case anyExt(window, iconMusicExts):
		return FolderIconMusic
	case anyExt(window, iconCodeExts):
		return FolderIconCode
	}
	return ""
}

func anyExt(entries []os.DirEntry, exts []string) bool {
	for _, e := range entries {
		if hasExt(e.Name(), exts) {
			return true
		}
	}
	return false
}

func hasExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, candidate := range exts {
		if ext == candidate {
			return true
		}
	}
	return false
}
