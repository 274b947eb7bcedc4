// Package assistant defines the collaborator that answers questions about the
// selected file. Transport and credentials live behind the Asker interface.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kk-code-lab/arangr/internal/fs"
	"github.com/kk-code-lab/arangr/internal/logging"
)

// MaxExcerptChars bounds how much of the file excerpt is embedded in a prompt.
const MaxExcerptChars = 4000

// ErrNotConfigured is returned by askers that have no backend.
var ErrNotConfigured = errors.New("AI assistant not configured")

// Question is one request to the assistant. FileName and Excerpt are optional
// and only used together.
type Question struct {
	Text     string
	FileName string
	Excerpt  string
}

// Asker answers questions.
type Asker interface {
	Ask(ctx context.Context, q Question) (string, error)
}

// Unconfigured is the Asker used when no backend has been set up.
type Unconfigured struct{}

func (Unconfigured) Ask(context.Context, Question) (string, error) {
	return "", ErrNotConfigured
}

// BuildPrompt renders q as a single prompt. With a file attached, the first
// MaxExcerptChars characters of the excerpt are embedded in a fenced block.
func BuildPrompt(q Question) string {
	if q.FileName == "" || q.Excerpt == "" {
		return q.Text
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I have a file named %q with the following content:\n\n", q.FileName)
	b.WriteString("```\n")
	excerpt, _ := fs.TruncateRunes(q.Excerpt, MaxExcerptChars)
	b.WriteString(excerpt)
	b.WriteString("\n```\n\n")
	b.WriteString("Question: ")
	b.WriteString(q.Text)
	b.WriteString("\n\nPlease provide a helpful analysis or answer based on the file content.")
	return b.String()
}

// AnalysisQuestion builds the canned "analyze this file" question, phrased by
// file type.
func AnalysisQuestion(path, excerpt string) Question {
	var text string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".js", ".go", ".html", ".css":
		text = fmt.Sprintf("Analyze this %s code file and provide insights about its structure, purpose, and any suggestions for improvement.", strings.ToLower(filepath.Ext(path)))
	case ".txt", ".md":
		text = "Analyze this text document and provide a summary of its content and key points."
	case ".csv", ".xlsx":
		text = "Analyze this data file and describe its structure and what insights can be gained from it."
	default:
		text = "Analyze this file and provide useful insights about its content and purpose."
	}
	return Question{Text: text, FileName: filepath.Base(path), Excerpt: excerpt}
}

// Reply asks a and turns any failure into a displayable message.
func Reply(ctx context.Context, a Asker, q Question) string {
	if a == nil {
		a = Unconfigured{}
	}
	answer, err := a.Ask(ctx, q)
	switch {
	case errors.Is(err, ErrNotConfigured):
		return "❌ AI Assistant not configured. Please set up your API key first."
	case err != nil:
		logging.Get("assistant").Warn("ask failed", "file", q.FileName, "err", err)
		return fmt.Sprintf("❌ Error communicating with AI: %v", err)
	}
	return answer
}
