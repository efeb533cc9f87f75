// Package report renders the image usage table for export and parses it
// back for import.
package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fakeyudi/storydrill/internal/catalog"
)

// Version is written into every rendered report.
const Version = 1

// Report is an exported snapshot of the usage table.
type Report struct {
	Version    int                   `json:"version"`
	ExportedAt time.Time             `json:"exportedAt"`
	Images     []catalog.ImageRecord `json:"images"`
}

// New returns a report of images taken at now.
func New(images []catalog.ImageRecord, now time.Time) *Report {
	return &Report{Version: Version, ExportedAt: now.UTC().Truncate(time.Second), Images: images}
}

// Supported format names.
const (
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
)

// Renderer serializes a Report to bytes.
type Renderer interface {
	Render(r *Report) ([]byte, error)
}

// Parser deserializes a rendered Report.
type Parser interface {
	Parse(data []byte) (*Report, error)
}

// RendererFor returns the renderer for format.
func RendererFor(format string) (Renderer, error) {
	switch normalize(format) {
	case FormatJSON:
		return &JSONRenderer{}, nil
	case FormatYAML:
		return &YAMLRenderer{}, nil
	case FormatMarkdown:
		return &MarkdownRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (supported: json, yaml, markdown)", format)
	}
}

// ParserFor returns the parser for format.
func ParserFor(format string) (Parser, error) {
	switch normalize(format) {
	case FormatJSON:
		return &JSONParser{}, nil
	case FormatYAML:
		return &YAMLParser{}, nil
	case FormatMarkdown:
		return &MarkdownParser{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (supported: json, yaml, markdown)", format)
	}
}

// FormatFromPath guesses the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatJSON
	}
}

func normalize(format string) string {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "yml":
		return FormatYAML
	case "md":
		return FormatMarkdown
	default:
		return f
	}
}

// FormatTime renders whole seconds as mm:ss. Minutes are not wrapped at 60.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatTimestamp renders t in local time, or "Never" for the zero time.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "Never"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
