package fs

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const (
	// SniffSampleSize is the number of leading bytes inspected when an
	// extension does not decide whether a file is text.
	SniffSampleSize = 1024

	DefaultReadCeiling int64 = 10 << 20
	DefaultTextPrefix  int64 = 1 << 20
)

type unicodeEncoding int

const (
	encodingUnknown unicodeEncoding = iota
	encodingUTF8BOM
	encodingUTF16LE
	encodingUTF16BE
)

// Fallback selects how bytes that are not valid UTF-8 are decoded.
type Fallback int

const (
	// FallbackReplace decodes as UTF-8, replacing invalid sequences with U+FFFD.
	FallbackReplace Fallback = iota
	// FallbackWindows1252 decodes invalid UTF-8 input as Windows-1252.
	FallbackWindows1252
)

// ParseFallback maps a configuration value onto a Fallback.
func ParseFallback(s string) (Fallback, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "replace", "utf-8", "utf8":
		return FallbackReplace, nil
	case "windows-1252", "cp1252", "latin-1", "latin1":
		return FallbackWindows1252, nil
	default:
		return FallbackReplace, fmt.Errorf("unknown text fallback %q", s)
	}
}

// DecodeOptions bounds the work done by DecodeFile.
type DecodeOptions struct {
	// ReadCeiling is the size above which only Prefix bytes are read.
	ReadCeiling int64
	Prefix      int64
	Fallback    Fallback
}

func (o DecodeOptions) withDefaults() DecodeOptions {
	if o.ReadCeiling <= 0 {
		o.ReadCeiling = DefaultReadCeiling
	}
	if o.Prefix <= 0 {
		o.Prefix = DefaultTextPrefix
	}
	if o.Prefix > o.ReadCeiling {
		o.Prefix = o.ReadCeiling
	}
	return o
}

// Decoded is the textual rendering of a file.
type Decoded struct {
	Content   string
	Truncated bool
	Size      int64
	Encoding  string
}

// ReadError reports a file that could not be opened or read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// DecodeFile reads path as text. Files above the read ceiling are cut to a
// prefix and carry a truncation marker; everything else is read whole. The
// decode itself never fails: only opening or reading the file can.
func DecodeFile(path string, opts DecodeOptions) (Decoded, error) {
	opts = opts.withDefaults()

	f, err := os.Open(path)
	if err != nil {
		return Decoded{}, &ReadError{Path: path, Err: err}
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		return Decoded{}, &ReadError{Path: path, Err: err}
	}
	size := info.Size()

	if size > opts.ReadCeiling {
		raw, err := io.ReadAll(io.LimitReader(f, opts.Prefix))
		if err != nil {
			return Decoded{}, &ReadError{Path: path, Err: err}
		}
		content, enc := decodeBytes(trimPartialRune(raw), opts.Fallback)
		content += fmt.Sprintf("\n\n... [File truncated - showing first %s of %s]",
			humanize.IBytes(uint64(opts.Prefix)), humanize.IBytes(uint64(size)))
		return Decoded{Content: content, Truncated: true, Size: size, Encoding: enc}, nil
	}

	raw, err := io.ReadAll(f)
	if err != nil {
		return Decoded{}, &ReadError{Path: path, Err: err}
	}
	content, enc := decodeBytes(raw, opts.Fallback)
	return Decoded{Content: content, Size: size, Encoding: enc}, nil
}

// SniffText reports whether a leading sample looks like text: a Unicode BOM,
// or no NUL byte and a successful UTF-8 or Latin-1 decode.
func SniffText(sample []byte) bool {
	if len(sample) == 0 {
		return true
	}
	if detectUnicodeEncoding(sample) != encodingUnknown {
		return true
	}
	if bytes.IndexByte(sample, 0x00) != -1 {
		return false
	}
	if utf8.Valid(sample) {
		return true
	}
	_, err := charmap.ISO8859_1.NewDecoder().Bytes(sample)
	return err == nil
}

// ReadFileHead returns up to limit bytes from the beginning of path.
func ReadFileHead(path string, limit int64) ([]byte, error) {
	if limit <= 0 {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	return io.ReadAll(io.LimitReader(f, limit))
}

// ReadTextSample returns a small sample of the file for text/binary sniffing.
func ReadTextSample(path string) ([]byte, error) {
	return ReadFileHead(path, SniffSampleSize)
}

// NormalizeTextContent converts known Unicode BOM-encoded content into UTF-8 strings.
func NormalizeTextContent(content []byte) string {
	s, _ := decodeBytes(content, FallbackReplace)
	return s
}

func decodeBytes(content []byte, fallback Fallback) (string, string) {
	if len(content) == 0 {
		return "", "utf-8"
	}

	switch detectUnicodeEncoding(content) {
	case encodingUTF8BOM:
		return replaceInvalidUTF8(content[3:]), "utf-8-sig"
	case encodingUTF16LE:
		return decodeUTF16(content, unicode.LittleEndian), "utf-16le"
	case encodingUTF16BE:
		return decodeUTF16(content, unicode.BigEndian), "utf-16be"
	}

	if utf8.Valid(content) {
		return string(content), "utf-8"
	}
	if fallback == FallbackWindows1252 {
		if out, err := charmap.Windows1252.NewDecoder().Bytes(content); err == nil {
			return string(out), "windows-1252"
		}
	}
	return replaceInvalidUTF8(content), "utf-8"
}

func replaceInvalidUTF8(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(content)
	if err != nil {
		return strings.ToValidUTF8(string(content), "\uFFFD")
	}
	return string(out)
}

// trimPartialRune drops an incomplete UTF-8 sequence cut off at the end of a
// prefix read so the cut does not show up as a replacement character.
func trimPartialRune(b []byte) []byte {
	if detectUnicodeEncoding(b) == encodingUTF16LE || detectUnicodeEncoding(b) == encodingUTF16BE {
		return b[:len(b)&^1]
	}
	for i := 1; i <= utf8.UTFMax && i <= len(b); i++ {
		start := len(b) - i
		if !utf8.RuneStart(b[start]) {
			continue
		}
		if !utf8.FullRune(b[start:]) {
			return b[:start]
		}
		break
	}
	return b
}

func detectUnicodeEncoding(sample []byte) unicodeEncoding {
	if len(sample) >= 3 && sample[0] == 0xEF && sample[1] == 0xBB && sample[2] == 0xBF {
		return encodingUTF8BOM
	}
	if len(sample) >= 2 {
		switch {
		case sample[0] == 0xFF && sample[1] == 0xFE:
			return encodingUTF16LE
		case sample[0] == 0xFE && sample[1] == 0xFF:
			return encodingUTF16BE
		}
	}
	return encodingUnknown
}

func decodeUTF16(content []byte, endian unicode.Endianness) string {
	decoder := unicode.UTF16(endian, unicode.ExpectBOM).NewDecoder()
	out, err := decoder.Bytes(content)
	if err != nil {
		return string(content)
	}
	return string(out)
}

// TruncateRunes returns the first limit characters of s and true, or s and
// false when s is not longer than limit. A non-positive limit never cuts.
func TruncateRunes(s string, limit int) (string, bool) {
	if limit <= 0 || len(s) <= limit {
		return s, false
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i], true
		}
		n++
	}
	return s, false
}

// IsTextFile sniffs the head of path. Unreadable files are not text.
func IsTextFile(path string) bool {
	sample, err := ReadTextSample(path)
	if err != nil {
		return false
	}
	return SniffText(sample)
}
