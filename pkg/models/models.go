package models

import "time"

// Language is the AutoHotkey dialect reported for a search hit.
type Language string

const (
	LanguageV1 Language = "AHK v1"
	LanguageV2 Language = "AHK v2"
)

// Version is the AutoHotkey dialect stored with a script.
type Version string

const (
	VersionV1 Version = "v1"
	VersionV2 Version = "v2"
)

// Language maps a stored version to the label used in search results.
func (v Version) Language() Language {
	if v == VersionV2 {
		return LanguageV2
	}
	return LanguageV1
}

type SearchResult struct {
	ID          string   `json:"id"`
	Repository  string   `json:"repository"`
	Owner       string   `json:"owner"`
	FileName    string   `json:"fileName"`
	FilePath    string   `json:"filePath"`
	Stars       int      `json:"stars"`
	Description string   `json:"description"`
	CodePreview string   `json:"codePreview"`
	URL         string   `json:"url"`
	DownloadURL string   `json:"downloadUrl"`
	Language    Language `json:"language"`
}

type Script struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Tags          []string  `json:"tags"`
	DownloadCount *int      `json:"downloadCount,omitempty"`
	Content       string    `json:"content"`
	Version       Version   `json:"version"`
	IsPersonal    bool      `json:"isPersonal"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ScriptInput is the user-submitted form for a personal script.
type ScriptInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Content     string   `json:"content"`
	Version     Version  `json:"version"`
}
