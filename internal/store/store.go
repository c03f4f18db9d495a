package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/seanblong/ahkfinder/pkg/models"
)

// ScriptStore defines the methods that a script backend must implement.
// The personal flag selects between the personal collection and the curated library.
type ScriptStore interface {
	Migrate(ctx context.Context) error
	ListScripts(ctx context.Context, personal bool) ([]models.Script, error)
	CreateScript(ctx context.Context, s models.Script) (models.Script, error)
	DeleteScript(ctx context.Context, id string, personal bool) (bool, error)
	CountScripts(ctx context.Context, personal bool) (int, error)
	Close()
}

// Store provides methods to interact with the database.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a new Store instance connected to the given database URL.
func New(ctx context.Context, url string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{pool: p}, nil
}

func (s *Store) Close() { s.pool.Close() }

// Migrate applies necessary database migrations and schema setup.
func (s *Store) Migrate(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS scripts (
  id             TEXT PRIMARY KEY,
  name           TEXT NOT NULL,
  description    TEXT NOT NULL DEFAULT '',
  tags           TEXT[] NOT NULL DEFAULT '{}',
  download_count INT,
  content        TEXT NOT NULL,
  version        TEXT NOT NULL DEFAULT 'v1',
  is_personal    BOOLEAN NOT NULL DEFAULT false,
  created_at     TIMESTAMP WITH TIME ZONE DEFAULT now()
);

CREATE INDEX IF NOT EXISTS scripts_personal_created_idx
  ON scripts (is_personal, created_at);
`
	_, err := s.pool.Exec(ctx, q)
	return err
}

// ListScripts returns all personal or all curated scripts, oldest first.
func (s *Store) ListScripts(ctx context.Context, personal bool) ([]models.Script, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, tags, download_count, content, version, is_personal, created_at
		FROM scripts
		WHERE is_personal = $1
		ORDER BY created_at, id`, personal)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Script{}
	for rows.Next() {
		var sc models.Script
		var version string
		if err := rows.Scan(
			&sc.ID, &sc.Name, &sc.Description, &sc.Tags, &sc.DownloadCount,
			&sc.Content, &version, &sc.IsPersonal, &sc.CreatedAt,
		); err != nil {
			return nil, err
		}
		sc.Version = models.Version(version)
		if sc.Tags == nil {
			sc.Tags = []string{}
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// CreateScript inserts a script and returns it with the stored creation time.
func (s *Store) CreateScript(ctx context.Context, sc models.Script) (models.Script, error) {
	if sc.Tags == nil {
		sc.Tags = []string{}
	}
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = time.Now().UTC()
	}
	const q = `
		INSERT INTO scripts (
			id, name, description, tags, download_count, content, version, is_personal, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at`

	err := s.pool.QueryRow(ctx, q,
		sc.ID, sc.Name, sc.Description, sc.Tags, sc.DownloadCount,
		sc.Content, string(sc.Version), sc.IsPersonal, sc.CreatedAt,
	).Scan(&sc.CreatedAt)
	if err != nil {
		return models.Script{}, err
	}
	return sc, nil
}

// DeleteScript removes a script by id within the selected collection.
// It reports false when no such script exists.
func (s *Store) DeleteScript(ctx context.Context, id string, personal bool) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM scripts WHERE id = $1 AND is_personal = $2`, id, personal)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CountScripts returns the number of scripts in the selected collection.
func (s *Store) CountScripts(ctx context.Context, personal bool) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM scripts WHERE is_personal = $1`, personal).Scan(&n)
	return n, err
}

// Ping checks the database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
