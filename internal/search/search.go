package search

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/seanblong/ahkfinder/internal/github"
	"github.com/seanblong/ahkfinder/pkg/models"
)

const (
	DefaultPerPage = 30
	MaxPerPage     = 100
)

var ErrEmptyQuery = errors.New("query is required")

// CodeSearcher runs a GitHub code search.
type CodeSearcher interface {
	SearchCode(ctx context.Context, query string, page, perPage int) (github.CodeSearchResult, error)
}

// ResultEnricher turns search hits into search results.
type ResultEnricher interface {
	Enrich(ctx context.Context, items []github.CodeItem) []models.SearchResult
}

type Request struct {
	Query   string `json:"query"`
	Page    int    `json:"page"`
	PerPage int    `json:"perPage"`
}

type Response struct {
	Results    []models.SearchResult `json:"results"`
	Total      int                   `json:"total"`
	TotalCount int                   `json:"totalCount"`
}

type Service struct {
	Searcher       CodeSearcher
	Enricher       ResultEnricher
	DefaultPerPage int
}

// NewService creates a new search service with the provided searcher and enricher
func NewService(searcher CodeSearcher, enricher ResultEnricher, defaultPerPage int) *Service {
	if defaultPerPage <= 0 || defaultPerPage > MaxPerPage {
		defaultPerPage = DefaultPerPage
	}
	return &Service{
		Searcher:       searcher,
		Enricher:       enricher,
		DefaultPerPage: defaultPerPage,
	}
}

func (s *Service) Search(ctx context.Context, req Request) (Response, error) {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return Response{}, ErrEmptyQuery
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	perPage := req.PerPage
	if perPage <= 0 {
		perPage = s.DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	found, err := s.Searcher.SearchCode(ctx, q, page, perPage)
	if err != nil {
		return Response{}, err
	}
	log.Debug().Str("q", q).Int("page", page).Int("items", len(found.Items)).Int("total_count", found.TotalCount).Msg("code search")

	if len(found.Items) == 0 {
		return Response{Results: []models.SearchResult{}, TotalCount: found.TotalCount}, nil
	}

	results := s.Enricher.Enrich(ctx, found.Items)
	total := found.TotalCount
	if total == 0 {
		total = len(results)
	}
	return Response{
		Results:    results,
		Total:      len(results),
		TotalCount: total,
	}, nil
}
