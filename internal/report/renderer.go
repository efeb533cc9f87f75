package report

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fakeyudi/storydrill/internal/catalog"
	"github.com/fakeyudi/storydrill/internal/clock"
)

// JSONRenderer renders a Report as indented JSON. Images use the same layout
// as the persisted usage table.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(rep *Report) ([]byte, error) {
	return json.MarshalIndent(rep, "", "  ")
}

// yamlReport mirrors Report with YAML tags; timestamps stay in epoch
// milliseconds so a YAML export carries the same values as a JSON one.
type yamlReport struct {
	Version    int         `yaml:"version"`
	ExportedAt string      `yaml:"exportedAt"`
	Images     []yamlImage `yaml:"images"`
}

type yamlImage struct {
	ID          string `yaml:"id"`
	Path        string `yaml:"path"`
	ShowCount   int    `yaml:"showCount"`
	LastShownAt *int64 `yaml:"lastShownAt"`
}

// YAMLRenderer renders a Report as YAML.
type YAMLRenderer struct{}

func (r *YAMLRenderer) Render(rep *Report) ([]byte, error) {
	out := yamlReport{
		Version:    rep.Version,
		ExportedAt: rep.ExportedAt.Format("2006-01-02T15:04:05Z07:00"),
		Images:     make([]yamlImage, len(rep.Images)),
	}
	for i, img := range rep.Images {
		out.Images[i] = yamlImage{ID: img.ID, Path: img.Path, ShowCount: img.ShowCount}
		if img.Shown() {
			ms := clock.Millis(img.LastShownAt)
			out.Images[i].LastShownAt = &ms
		}
	}
	return yaml.Marshal(out)
}

const (
	markdownSentinel    = "<!-- storydrill-report-version: 1 -->"
	markdownDataPrefix  = "<!-- storydrill-data: "
	markdownDataSuffix  = " -->"
	markdownTimeLayout  = "2006-01-02 15:04:05 MST"
	markdownEmptyNotice = "_No images in the catalog._\n"
)

// MarkdownRenderer renders a Report as a Markdown table with an embedded
// base64 JSON payload so the file can be imported again.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(rep *Report) ([]byte, error) {
	jsonBytes, err := json.Marshal(rep)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(jsonBytes)

	var sb strings.Builder
	sb.WriteString(markdownSentinel + "\n")
	fmt.Fprintf(&sb, "%s%s%s\n\n", markdownDataPrefix, encoded, markdownDataSuffix)

	fmt.Fprintf(&sb, "# Image usage (%s)\n\n", rep.ExportedAt.Format(markdownTimeLayout))

	total := 0
	for _, img := range rep.Images {
		total += img.ShowCount
	}
	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- Images: %d\n", len(rep.Images))
	fmt.Fprintf(&sb, "- Total shows: %d\n", total)
	fmt.Fprintf(&sb, "- Never shown: %d\n\n", neverShown(rep.Images))

	sb.WriteString("## Images\n\n")
	if len(rep.Images) == 0 {
		sb.WriteString(markdownEmptyNotice)
		return []byte(sb.String()), nil
	}
	sb.WriteString("| Image | Path | Shown | Last shown |\n")
	sb.WriteString("|-------|------|------:|------------|\n")
	for _, img := range rep.Images {
		fmt.Fprintf(&sb, "| %s | %s | %d | %s |\n",
			escapeCell(img.ID), escapeCell(img.Path), img.ShowCount, FormatTimestamp(img.LastShownAt))
	}
	return []byte(sb.String()), nil
}

func neverShown(images []catalog.ImageRecord) int {
	n := 0
	for _, img := range images {
		if !img.Shown() {
			n++
		}
	}
	return n
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
