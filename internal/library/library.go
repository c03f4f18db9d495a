package library

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/seanblong/ahkfinder/internal/ahk"
	"github.com/seanblong/ahkfinder/internal/store"
	"github.com/seanblong/ahkfinder/pkg/models"
)

var (
	ErrNotFound      = errors.New("script not found")
	ErrInvalidScript = errors.New("invalid script")
)

// ValidationError lists the fields of a ScriptInput that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range []string{"name", "content", "version"} {
		if msg, ok := e.Fields[f]; ok {
			parts = append(parts, f+": "+msg)
		}
	}
	return "invalid script: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidScript }

// Service manages the personal collection and the curated library.
type Service struct {
	Store store.ScriptStore
	newID func() string
}

func NewService(st store.ScriptStore) *Service {
	return &Service{Store: st, newID: uuid.NewString}
}

func (s *Service) ListPersonal(ctx context.Context) ([]models.Script, error) {
	return s.Store.ListScripts(ctx, true)
}

func (s *Service) ListCurated(ctx context.Context) ([]models.Script, error) {
	return s.Store.ListScripts(ctx, false)
}

// Validate checks a personal script submission.
func Validate(in models.ScriptInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "required"
	}
	if strings.TrimSpace(in.Content) == "" {
		fields["content"] = "required"
	}
	switch in.Version {
	case "", models.VersionV1, models.VersionV2:
	default:
		fields["version"] = fmt.Sprintf("must be %q or %q", models.VersionV1, models.VersionV2)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// CreatePersonal validates the input and stores it as a personal script.
func (s *Service) CreatePersonal(ctx context.Context, in models.ScriptInput) (models.Script, error) {
	if err := Validate(in); err != nil {
		return models.Script{}, err
	}
	version := in.Version
	if version == "" {
		version = ahk.VersionOf(in.Content)
	}
	sc := models.Script{
		ID:          s.newID(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Tags:        ahk.NormalizeTags(in.Tags),
		Content:     in.Content,
		Version:     version,
		IsPersonal:  true,
	}
	created, err := s.Store.CreateScript(ctx, sc)
	if err != nil {
		return models.Script{}, fmt.Errorf("create script: %w", err)
	}
	return created, nil
}

// DeletePersonal removes a personal script. Curated scripts are never matched.
func (s *Service) DeletePersonal(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}
	ok, err := s.Store.DeleteScript(ctx, id, true)
	if err != nil {
		return fmt.Errorf("delete script: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// SeedCurated inserts the given curated scripts when the curated library is
// empty and returns how many were inserted.
func (s *Service) SeedCurated(ctx context.Context, scripts []models.Script) (int, error) {
	n, err := s.Store.CountScripts(ctx, false)
	if err != nil {
		return 0, fmt.Errorf("count curated scripts: %w", err)
	}
	if n > 0 {
		log.Info().Int("existing", n).Msg("curated scripts already initialized")
		return 0, nil
	}

	inserted := 0
	for _, sc := range scripts {
		sc.IsPersonal = false
		if sc.ID == "" {
			sc.ID = s.newID()
		}
		if sc.Version == "" {
			sc.Version = ahk.VersionOf(sc.Content)
		}
		sc.Tags = ahk.NormalizeTags(sc.Tags)
		if _, err := s.Store.CreateScript(ctx, sc); err != nil {
			return inserted, fmt.Errorf("seed %q: %w", sc.Name, err)
		}
		inserted++
	}
	log.Info().Int("inserted", inserted).Msg("initialized curated scripts")
	return inserted, nil
}
