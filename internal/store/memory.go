package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/seanblong/ahkfinder/pkg/models"
)

// ErrDuplicateID is returned when a script id is already stored.
var ErrDuplicateID = errors.New("script id already exists")

// MemoryStore keeps scripts in process memory. It is used when no database
// URL is configured; contents are lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	seq  int64
	byID map[string]memoryEntry
}

type memoryEntry struct {
	script models.Script
	seq    int64
}

func NewMemory() *MemoryStore {
	return &MemoryStore{byID: make(map[string]memoryEntry)}
}

func (m *MemoryStore) Migrate(ctx context.Context) error { return nil }

func (m *MemoryStore) Close() {}

func (m *MemoryStore) ListScripts(ctx context.Context, personal bool) ([]models.Script, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]memoryEntry, 0, len(m.byID))
	for _, e := range m.byID {
		if e.script.IsPersonal == personal {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	out := make([]models.Script, 0, len(entries))
	for _, e := range entries {
		out = append(out, cloneScript(e.script))
	}
	return out, nil
}

func (m *MemoryStore) CreateScript(ctx context.Context, s models.Script) (models.Script, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[s.ID]; ok {
		return models.Script{}, fmt.Errorf("%w: %s", ErrDuplicateID, s.ID)
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	m.seq++
	m.byID[s.ID] = memoryEntry{script: cloneScript(s), seq: m.seq}
	return cloneScript(s), nil
}

func (m *MemoryStore) DeleteScript(ctx context.Context, id string, personal bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.byID[id]
	if !ok || e.script.IsPersonal != personal {
		return false, nil
	}
	delete(m.byID, id)
	return true, nil
}

func (m *MemoryStore) CountScripts(ctx context.Context, personal bool) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, e := range m.byID {
		if e.script.IsPersonal == personal {
			n++
		}
	}
	return n, nil
}

// cloneScript copies the slice and pointer fields so callers cannot mutate stored state.
func cloneScript(s models.Script) models.Script {
	s.Tags = append([]string{}, s.Tags...)
	if s.DownloadCount != nil {
		n := *s.DownloadCount
		s.DownloadCount = &n
	}
	return s
}
