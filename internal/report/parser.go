package report

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fakeyudi/storydrill/internal/catalog"
	"github.com/fakeyudi/storydrill/internal/clock"
)

// JSONParser parses a JSON report. A bare array in the persisted usage-table
// layout is accepted too.
type JSONParser struct{}

func (p *JSONParser) Parse(data []byte) (*Report, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var images []catalog.ImageRecord
		if err := json.Unmarshal(trimmed, &images); err != nil {
			return nil, fmt.Errorf("failed to parse JSON report: %w", err)
		}
		return validate(&Report{Version: Version, Images: images})
	}
	var rep Report
	if err := json.Unmarshal(trimmed, &rep); err != nil {
		return nil, fmt.Errorf("failed to parse JSON report: %w", err)
	}
	return validate(&rep)
}

// YAMLParser parses a YAML report.
type YAMLParser struct{}

func (p *YAMLParser) Parse(data []byte) (*Report, error) {
	var in yamlReport
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse YAML report: %w", err)
	}
	rep := &Report{Version: in.Version, Images: make([]catalog.ImageRecord, len(in.Images))}
	if in.ExportedAt != "" {
		at, err := time.Parse(time.RFC3339, in.ExportedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML report: exportedAt: %w", err)
		}
		rep.ExportedAt = at
	}
	for i, img := range in.Images {
		rep.Images[i] = catalog.ImageRecord{ID: img.ID, Path: img.Path, ShowCount: img.ShowCount}
		if img.LastShownAt != nil {
			rep.Images[i].LastShownAt = clock.FromMillis(*img.LastShownAt)
		}
	}
	return validate(rep)
}

// MarkdownParser recovers a report from the payload embedded by
// MarkdownRenderer.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(data []byte) (*Report, error) {
	content := string(data)
	if !strings.Contains(content, markdownSentinel) {
		return nil, errors.New("not a storydrill report: missing version sentinel")
	}
	start := strings.Index(content, markdownDataPrefix)
	if start == -1 {
		return nil, errors.New("not a storydrill report: missing data payload")
	}
	start += len(markdownDataPrefix)
	end := strings.Index(content[start:], markdownDataSuffix)
	if end == -1 {
		return nil, errors.New("not a storydrill report: malformed data payload")
	}
	jsonBytes, err := base64.StdEncoding.DecodeString(content[start : start+end])
	if err != nil {
		return nil, fmt.Errorf("not a storydrill report: corrupted base64 payload: %w", err)
	}
	var rep Report
	if err := json.Unmarshal(jsonBytes, &rep); err != nil {
		return nil, fmt.Errorf("not a storydrill report: failed to parse embedded JSON: %w", err)
	}
	return validate(&rep)
}

// validate rejects records an import must not write into the usage table.
func validate(rep *Report) (*Report, error) {
	if rep.Version > Version {
		return nil, fmt.Errorf("report version %d is newer than supported version %d", rep.Version, Version)
	}
	seen := make(map[string]bool, len(rep.Images))
	for i, img := range rep.Images {
		switch {
		case img.ID == "":
			return nil, fmt.Errorf("image %d: missing id", i)
		case img.ShowCount < 0:
			return nil, fmt.Errorf("image %s: negative show count %d", img.ID, img.ShowCount)
		case seen[img.ID]:
			return nil, fmt.Errorf("image %s: duplicate id", img.ID)
		}
		seen[img.ID] = true
	}
	return rep, nil
}
