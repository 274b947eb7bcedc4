package format

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var descriptions = map[string]string{
	".py":   "Python Script",
	".js":   "JavaScript File",
	".ts":   "TypeScript File",
	".go":   "Go Source File",
	".html": "HTML Document",
	".css":  "CSS Stylesheet",
	".json": "JSON Data",
	".xml":  "XML Document",
	".yaml": "YAML Configuration",
	".yml":  "YAML Configuration",

	".txt":  "Text Document",
	".md":   "Markdown Document",
	".pdf":  "PDF Document",
	".docx": "Word Document",
	".doc":  "Word Document (Legacy)",
	".rtf":  "Rich Text Document",

	".xlsx": "Excel Spreadsheet",
	".xls":  "Excel Spreadsheet (Legacy)",
	".csv":  "CSV Data File",
	".ods":  "OpenDocument Spreadsheet",

	".pptx": "PowerPoint Presentation",
	".ppt":  "PowerPoint Presentation (Legacy)",
	".odp":  "OpenDocument Presentation",

	".jpg":  "JPEG Image",
	".jpeg": "JPEG Image",
	".png":  "PNG Image",
	".gif":  "GIF Animation",
	".svg":  "SVG Vector Image",
	".mp3":  "MP3 Audio",
	".wav":  "WAV Audio",
	".flac": "FLAC Audio (Lossless)",
	".mp4":  "MP4 Video",
	".avi":  "AVI Video",
	".mov":  "QuickTime Video",

	".zip": "ZIP Archive",
	".rar": "RAR Archive",
	".7z":  "7-Zip Archive",
	".tar": "TAR Archive",

	".exe": "Windows Executable",
	".msi": "Windows Installer",
	".app": "macOS Application",
	".deb": "Debian Package",
	".rpm": "RPM Package",
}

// Describe returns a human-readable type for path. Directories are described
// by their item count.
func Describe(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		entries, err := os.ReadDir(path)
		switch {
		case err != nil:
			return "Folder"
		case len(entries) == 0:
			return "Empty Folder"
		case len(entries) == 1:
			return "Folder (1 item)"
		default:
			return "Folder (" + strconv.Itoa(len(entries)) + " items)"
		}
	}
	return DescribeExtension(filepath.Ext(path))
}

// DescribeExtension returns the type description for ext alone.
func DescribeExtension(ext string) string {
	ext = strings.ToLower(ext)
	if d, ok := descriptions[ext]; ok {
		return d
	}
	if ext == "" || ext == "." {
		return "File"
	}
	return strings.ToUpper(ext[1:]) + " File"
}

var binaryLabels = map[string]string{
	".exe":  "⚙️ Windows Executable",
	".dll":  "🔧 Dynamic Link Library",
	".zip":  "🗜️ ZIP Archive",
	".rar":  "📦 RAR Archive",
	".7z":   "🗜️ 7-Zip Archive",
	".mp3":  "🎵 MP3 Audio File",
	".mp4":  "🎬 MP4 Video File",
	".avi":  "📹 AVI Video File",
	".mov":  "🎬 QuickTime Video",
	".wav":  "🎼 WAV Audio File",
	".flac": "🎼 FLAC Audio File (Lossless)",
}

var (
	mediaExtensions = map[string]struct{}{
		".mp3": {}, ".mp4": {}, ".avi": {}, ".mov": {}, ".wav": {}, ".flac": {},
		".mkv": {}, ".webm": {}, ".m4a": {}, ".ogg": {},
	}
	archiveExtensions = map[string]struct{}{
		".zip": {}, ".rar": {}, ".7z": {}, ".tar": {}, ".gz": {}, ".bz2": {}, ".xz": {},
	}
	executableExtensions = map[string]struct{}{
		".exe": {}, ".msi": {},
	}
)

// BinaryLabel is the static type label shown for files without a preview.
func BinaryLabel(ext string) string {
	ext = strings.ToLower(ext)
	if l, ok := binaryLabels[ext]; ok {
		return l
	}
	if ext == "" {
		return "🔒 Binary File"
	}
	return "🔒 Binary File (" + strings.ToUpper(ext) + ")"
}

// BinaryHint suggests what to do with a binary file, or "" when there is
// nothing specific to say.
func BinaryHint(ext string) string {
	ext = strings.ToLower(ext)
	if IsMedia(ext) {
		return "🎵 Media file detected - use media player to view content"
	}
	if _, ok := archiveExtensions[ext]; ok {
		return "📦 Archive file detected - extract to view contents"
	}
	if _, ok := executableExtensions[ext]; ok {
		return "⚙️ Executable file - scan for viruses before running"
	}
	return ""
}

// IsMedia reports whether ext is an audio or video container.
func IsMedia(ext string) bool {
	_, ok := mediaExtensions[strings.ToLower(ext)]
	return ok
}
