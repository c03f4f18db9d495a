package ahk

import (
	"reflect"
	"testing"

	"github.com/seanblong/ahkfinder/pkg/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected models.Language
	}{
		{"requires directive", "#Requires AutoHotkey v2.0\nMsgBox \"hi\"", models.LanguageV2},
		{"marker in comment", "; written for AutoHotkey v2\nx := 1", models.LanguageV2},
		{"v1 script", "#NoEnv\nSendMode Input\nF1::Click", models.LanguageV1},
		{"empty content", "", models.LanguageV1},
		{"lowercase marker is not matched", "autohotkey v2", models.LanguageV1},
		{"v1 directive", "#Requires AutoHotkey v1.1", models.LanguageV1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.content); got != tt.expected {
				t.Errorf("Classify() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestVersionOf(t *testing.T) {
	if got := VersionOf("#Requires AutoHotkey v2.0"); got != models.VersionV2 {
		t.Errorf("Expected v2, got %q", got)
	}
	if got := VersionOf("MsgBox, hi"); got != models.VersionV1 {
		t.Errorf("Expected v1, got %q", got)
	}
}

func TestPreview(t *testing.T) {
	content := "1\n2\n3\n4\n5\n6\n7\n8"

	tests := []struct {
		name     string
		n        int
		content  string
		expected string
	}{
		{"default line count", 0, content, "1\n2\n3\n4\n5\n6"},
		{"explicit line count", 3, content, "1\n2\n3"},
		{"fewer lines than limit", 10, "a\nb", "a\nb"},
		{"empty content", 6, "", ""},
		{"exact line count", 2, "a\nb", "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Preview(tt.content, tt.n); got != tt.expected {
				t.Errorf("Preview() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParseHeader(t *testing.T) {
	content := `; Name: Anti AFK
; Description: Presses space every minute
;Tags: Roblox, AFK , Roblox,
; Downloads: 42
; Free text line without a key

#SingleInstance Force
; Name: ignored after code starts
`
	h := ParseHeader(content)

	if h.Name != "Anti AFK" {
		t.Errorf("Expected name 'Anti AFK', got %q", h.Name)
	}
	if h.Description != "Presses space every minute" {
		t.Errorf("Unexpected description %q", h.Description)
	}
	if !reflect.DeepEqual(h.Tags, []string{"Roblox", "AFK"}) {
		t.Errorf("Unexpected tags %v", h.Tags)
	}
	if h.DownloadCount == nil || *h.DownloadCount != 42 {
		t.Errorf("Expected download count 42, got %v", h.DownloadCount)
	}
}

func TestParseHeader_NoHeader(t *testing.T) {
	h := ParseHeader("F1::Click\n; Name: too late")
	if h.Name != "" || h.Description != "" || len(h.Tags) != 0 || h.DownloadCount != nil {
		t.Errorf("Expected empty header, got %+v", h)
	}
}

func TestParseHeader_InvalidDownloads(t *testing.T) {
	h := ParseHeader("; Downloads: lots\n; Downloads: -1")
	if h.DownloadCount != nil {
		t.Errorf("Expected nil download count, got %d", *h.DownloadCount)
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" gaming ", "", "gaming", "macro", "  "})
	want := []string{"gaming", "macro"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeTags() = %v, want %v", got, want)
	}

	if got := NormalizeTags(nil); got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", got)
	}
}
