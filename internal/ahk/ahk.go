package ahk

import (
	"strconv"
	"strings"

	"github.com/seanblong/ahkfinder/pkg/models"
)

// v2Marker also matches the "#Requires AutoHotkey v2" directive.
const v2Marker = "AutoHotkey v2"

// DefaultPreviewLines is the number of lines kept by Preview when n <= 0.
const DefaultPreviewLines = 6

// Classify reports the dialect of a script by looking for the v2 marker.
// It is a heuristic: a v1 script that mentions v2 in a comment is reported as v2.
func Classify(content string) models.Language {
	return VersionOf(content).Language()
}

// VersionOf is Classify expressed as a stored version.
func VersionOf(content string) models.Version {
	if strings.Contains(content, v2Marker) {
		return models.VersionV2
	}
	return models.VersionV1
}

// Preview returns the first n lines of content.
func Preview(content string, n int) string {
	if n <= 0 {
		n = DefaultPreviewLines
	}
	lines := strings.SplitN(content, "\n", n+1)
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}

// Header holds the metadata found in the leading comment block of a script.
type Header struct {
	Name          string
	Description   string
	Tags          []string
	DownloadCount *int
}

// ParseHeader reads "; Key: value" lines from the leading comment block.
// Parsing stops at the first line that is neither blank nor a ";" comment.
func ParseHeader(content string) Header {
	var h Header
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, ";") {
			break
		}
		key, value, ok := strings.Cut(strings.TrimSpace(strings.TrimLeft(line, ";")), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "name":
			h.Name = value
		case "description":
			h.Description = value
		case "tags":
			h.Tags = SplitTags(value)
		case "downloads":
			if n, err := strconv.Atoi(value); err == nil && n >= 0 {
				h.DownloadCount = &n
			}
		}
	}
	return h
}

// SplitTags splits a comma separated tag list.
func SplitTags(s string) []string {
	return NormalizeTags(strings.Split(s, ","))
}

// NormalizeTags trims tags, drops empty ones and removes duplicates while
// keeping the first occurrence order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
