package github

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/seanblong/ahkfinder/internal/ahk"
	"github.com/seanblong/ahkfinder/pkg/models"
)

// ContentFetcher downloads raw file content.
type ContentFetcher interface {
	FetchContent(ctx context.Context, contentURL string) (string, error)
}

// Enricher turns code search hits into search results by fetching each file.
type Enricher struct {
	Fetcher      ContentFetcher
	PreviewLines int
	// Concurrency caps parallel fetches; <= 0 means one goroutine per hit.
	Concurrency int

	cache *lru.Cache[string, string]
}

// NewEnricher creates an Enricher. cacheSize <= 0 disables the content cache.
func NewEnricher(f ContentFetcher, previewLines, concurrency, cacheSize int) (*Enricher, error) {
	e := &Enricher{
		Fetcher:      f,
		PreviewLines: previewLines,
		Concurrency:  concurrency,
	}
	if cacheSize > 0 {
		c, err := lru.New[string, string](cacheSize)
		if err != nil {
			return nil, err
		}
		e.cache = c
	}
	return e, nil
}

// Enrich builds one result per item, in item order. Fetch failures leave the
// preview empty and never fail the call. Items not yet fetched when ctx is
// cancelled are returned without a preview.
func (e *Enricher) Enrich(ctx context.Context, items []CodeItem) []models.SearchResult {
	out := make([]models.SearchResult, len(items))

	var g errgroup.Group
	if e.Concurrency > 0 {
		g.SetLimit(e.Concurrency)
	}
	for i := range items {
		g.Go(func() error {
			out[i] = e.enrichOne(ctx, items[i])
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (e *Enricher) enrichOne(ctx context.Context, item CodeItem) models.SearchResult {
	res := baseResult(item)

	if ctx.Err() != nil {
		return res
	}
	content, err := e.content(ctx, item)
	if err != nil {
		log.Warn().Err(err).Str("path", item.Path).Str("repository", item.Repository.FullName).Msg("failed to fetch file content")
		return res
	}

	res.CodePreview = ahk.Preview(content, e.PreviewLines)
	res.Language = ahk.Classify(content)
	return res
}

func (e *Enricher) content(ctx context.Context, item CodeItem) (string, error) {
	if e.cache != nil && item.SHA != "" {
		if c, ok := e.cache.Get(item.SHA); ok {
			return c, nil
		}
	}
	c, err := e.Fetcher.FetchContent(ctx, item.URL)
	if err != nil {
		return "", err
	}
	if e.cache != nil && item.SHA != "" {
		e.cache.Add(item.SHA, c)
	}
	return c, nil
}

func baseResult(item CodeItem) models.SearchResult {
	desc := ""
	if item.Repository.Description != nil {
		desc = *item.Repository.Description
	}
	stars := item.Repository.Stars
	if stars < 0 {
		stars = 0
	}
	download := item.DownloadURL
	if download == "" {
		download = "https://raw.githubusercontent.com/" + item.Repository.FullName + "/" +
			item.Repository.DefaultBranch + "/" + item.Path
	}
	return models.SearchResult{
		ID:          item.SHA,
		Repository:  item.Repository.Name,
		Owner:       item.Repository.Owner.Login,
		FileName:    item.Name,
		FilePath:    item.Path,
		Stars:       stars,
		Description: desc,
		URL:         item.HTMLURL,
		DownloadURL: download,
		Language:    models.LanguageV1,
	}
}
