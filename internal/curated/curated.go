package curated

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/rs/zerolog/log"

	"github.com/seanblong/ahkfinder/internal/ahk"
	"github.com/seanblong/ahkfinder/pkg/models"
)

const DefaultDescription = "Curated AutoHotkey script"

// FileSystemWalker defines the interface for walking directories
type FileSystemWalker interface {
	Walk(root string, options *godirwalk.Options) error
}

// FileReader defines the interface for reading files
type FileReader interface {
	ReadFile(filename string) ([]byte, error)
}

// DefaultFileSystemWalker implements FileSystemWalker using godirwalk
type DefaultFileSystemWalker struct{}

func (d *DefaultFileSystemWalker) Walk(root string, options *godirwalk.Options) error {
	return godirwalk.Walk(root, options)
}

// DefaultFileReader implements FileReader using os
type DefaultFileReader struct{}

func (d *DefaultFileReader) ReadFile(filename string) ([]byte, error) {
	return os.ReadFile(filename)
}

// Loader turns a directory of .ahk files into curated scripts.
type Loader struct {
	Root       string
	Walker     FileSystemWalker
	FileReader FileReader
}

func New(root string) *Loader {
	return &Loader{
		Root:       root,
		Walker:     &DefaultFileSystemWalker{},
		FileReader: &DefaultFileReader{},
	}
}

// NewWithDependencies creates a Loader with custom dependencies for testing
func NewWithDependencies(root string, walker FileSystemWalker, fileReader FileReader) *Loader {
	return &Loader{Root: root, Walker: walker, FileReader: fileReader}
}

// Load walks Root and returns one curated script per .ahk file, sorted by name.
// Unreadable files are logged and skipped.
func (l *Loader) Load(ctx context.Context) ([]models.Script, error) {
	out := []models.Script{}
	err := l.Walker.Walk(l.Root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if de != nil && de.IsDir() {
				if path != l.Root && skipDir(de.Name()) {
					return godirwalk.SkipThis
				}
				return nil
			}
			if !isScript(path) || shouldSkip(rel(l.Root, path)) {
				return nil
			}

			b, err := l.FileReader.ReadFile(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("failed to read curated script")
				return nil
			}
			out = append(out, toScript(rel(l.Root, path), string(b)))
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	log.Debug().Str("root", l.Root).Int("scripts", len(out)).Msg("loaded curated scripts")
	return out, nil
}

func toScript(relPath, content string) models.Script {
	h := ahk.ParseHeader(content)
	name := h.Name
	if name == "" {
		base := filepath.Base(relPath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	desc := h.Description
	if desc == "" {
		desc = DefaultDescription
	}
	tags := h.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.Script{
		ID:            scriptID(relPath),
		Name:          name,
		Description:   desc,
		Tags:          tags,
		DownloadCount: h.DownloadCount,
		Content:       content,
		Version:       ahk.VersionOf(content),
		IsPersonal:    false,
	}
}

// scriptID is stable for a given path so reseeding a fresh store keeps ids.
func scriptID(relPath string) string {
	h := sha1.Sum([]byte(filepath.ToSlash(relPath)))
	return "curated-" + hex.EncodeToString(h[:])[:16]
}

func isScript(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".ahk")
}

func skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch strings.ToLower(name) {
	case "vendor", "node_modules", "lib", "build", "dist":
		return true
	}
	return false
}

// shouldSkip reports whether a path relative to the root lives under a skipped directory.
func shouldSkip(relPath string) bool {
	parts := strings.Split(filepath.ToSlash(relPath), "/")
	for _, p := range parts[:len(parts)-1] {
		if skipDir(p) {
			return true
		}
	}
	return false
}

func rel(root, p string) string {
	r, err := filepath.Rel(root, p)
	if err != nil {
		return p
	}
	return r
}
