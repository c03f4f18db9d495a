package library

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/seanblong/ahkfinder/internal/store"
	"github.com/seanblong/ahkfinder/pkg/models"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.Disabled)
}

// MockScriptStore implements store.ScriptStore and counts calls
type MockScriptStore struct {
	CreateCalls int
	CreateFunc  func(ctx context.Context, s models.Script) (models.Script, error)
	DeleteFunc  func(ctx context.Context, id string, personal bool) (bool, error)
	CountFunc   func(ctx context.Context, personal bool) (int, error)
}

func (m *MockScriptStore) Migrate(ctx context.Context) error { return nil }
func (m *MockScriptStore) Close()                            {}

func (m *MockScriptStore) ListScripts(ctx context.Context, personal bool) ([]models.Script, error) {
	return []models.Script{}, nil
}

func (m *MockScriptStore) CreateScript(ctx context.Context, s models.Script) (models.Script, error) {
	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, s)
	}
	return s, nil
}

func (m *MockScriptStore) DeleteScript(ctx context.Context, id string, personal bool) (bool, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, personal)
	}
	return false, nil
}

func (m *MockScriptStore) CountScripts(ctx context.Context, personal bool) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx, personal)
	}
	return 0, nil
}

func TestCreatePersonal_ValidationRejectsBeforeStore(t *testing.T) {
	tests := []struct {
		name   string
		input  models.ScriptInput
		fields []string
	}{
		{"missing name", models.ScriptInput{Content: "F1::Click"}, []string{"name"}},
		{"blank name", models.ScriptInput{Name: "   ", Content: "F1::Click"}, []string{"name"}},
		{"missing content", models.ScriptInput{Name: "clicker"}, []string{"content"}},
		{"bad version", models.ScriptInput{Name: "clicker", Content: "x", Version: "v3"}, []string{"version"}},
		{"everything missing", models.ScriptInput{}, []string{"name", "content"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &MockScriptStore{}
			svc := NewService(st)

			_, err := svc.CreatePersonal(context.Background(), tt.input)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !errors.Is(err, ErrInvalidScript) {
				t.Errorf("Expected ErrInvalidScript, got %v", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Expected *ValidationError, got %T", err)
			}
			for _, f := range tt.fields {
				if _, ok := ve.Fields[f]; !ok {
					t.Errorf("Expected field %q in validation error, got %v", f, ve.Fields)
				}
				if !strings.Contains(err.Error(), f) {
					t.Errorf("Expected error message to mention %q: %s", f, err.Error())
				}
			}
			if st.CreateCalls != 0 {
				t.Errorf("Expected store not to be called, got %d calls", st.CreateCalls)
			}
		})
	}
}

func TestCreatePersonal_Normalizes(t *testing.T) {
	st := &MockScriptStore{}
	svc := NewService(st)
	svc.newID = func() string { return "fixed-id" }

	got, err := svc.CreatePersonal(context.Background(), models.ScriptInput{
		Name:        "  Anti AFK  ",
		Description: " keeps you online ",
		Tags:        []string{"roblox", " roblox", "", "afk"},
		Content:     "#Requires AutoHotkey v2.0\nLoop {\n}",
	})
	if err != nil {
		t.Fatalf("CreatePersonal failed: %v", err)
	}

	if got.ID != "fixed-id" {
		t.Errorf("Expected id 'fixed-id', got %q", got.ID)
	}
	if got.Name != "Anti AFK" || got.Description != "keeps you online" {
		t.Errorf("Expected trimmed fields, got %q / %q", got.Name, got.Description)
	}
	if !reflect.DeepEqual(got.Tags, []string{"roblox", "afk"}) {
		t.Errorf("Unexpected tags %v", got.Tags)
	}
	if got.Version != models.VersionV2 {
		t.Errorf("Expected derived version v2, got %q", got.Version)
	}
	if !got.IsPersonal {
		t.Error("Expected IsPersonal to be true")
	}
}

func TestCreatePersonal_KeepsExplicitVersion(t *testing.T) {
	svc := NewService(&MockScriptStore{})

	got, err := svc.CreatePersonal(context.Background(), models.ScriptInput{
		Name: "x", Content: "#Requires AutoHotkey v2.0", Version: models.VersionV1,
	})
	if err != nil {
		t.Fatalf("CreatePersonal failed: %v", err)
	}
	if got.Version != models.VersionV1 {
		t.Errorf("Expected explicit v1 to win, got %q", got.Version)
	}
}

func TestCreatePersonal_GeneratesUniqueIDs(t *testing.T) {
	svc := NewService(store.NewMemory())
	in := models.ScriptInput{Name: "x", Content: "y"}

	a, err := svc.CreatePersonal(context.Background(), in)
	if err != nil {
		t.Fatalf("CreatePersonal failed: %v", err)
	}
	b, _ := svc.CreatePersonal(context.Background(), in)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("Expected distinct generated ids, got %q and %q", a.ID, b.ID)
	}
}

func TestCreatePersonal_StoreError(t *testing.T) {
	st := &MockScriptStore{CreateFunc: func(ctx context.Context, s models.Script) (models.Script, error) {
		return models.Script{}, errors.New("db down")
	}}
	_, err := NewService(st).CreatePersonal(context.Background(), models.ScriptInput{Name: "x", Content: "y"})
	if err == nil || !strings.Contains(err.Error(), "db down") {
		t.Errorf("Expected wrapped store error, got %v", err)
	}
	if errors.Is(err, ErrInvalidScript) {
		t.Error("Store failures must not be reported as validation errors")
	}
}

func TestDeletePersonal(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemory())

	if err := svc.DeletePersonal(ctx, "does-not-exist"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown id, got %v", err)
	}
	if err := svc.DeletePersonal(ctx, " "); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for blank id, got %v", err)
	}

	created, err := svc.CreatePersonal(ctx, models.ScriptInput{Name: "x", Content: "y"})
	if err != nil {
		t.Fatalf("CreatePersonal failed: %v", err)
	}

	if list, _ := svc.ListPersonal(ctx); len(list) != 1 {
		t.Fatalf("Expected 1 script before delete, got %d", len(list))
	}
	if err := svc.DeletePersonal(ctx, created.ID); err != nil {
		t.Fatalf("DeletePersonal failed: %v", err)
	}
	list, _ := svc.ListPersonal(ctx)
	for _, s := range list {
		if s.ID == created.ID {
			t.Errorf("Deleted script %s still listed", created.ID)
		}
	}
	if err := svc.DeletePersonal(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDeletePersonal_CannotDeleteCurated(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := NewService(st)

	if _, err := svc.SeedCurated(ctx, []models.Script{{ID: "c1", Name: "curated", Content: "x"}}); err != nil {
		t.Fatalf("SeedCurated failed: %v", err)
	}
	if err := svc.DeletePersonal(ctx, "c1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if list, _ := svc.ListCurated(ctx); len(list) != 1 {
		t.Errorf("Expected curated script to remain, got %d", len(list))
	}
}

func TestSeedCurated(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemory())

	scripts := []models.Script{
		{Name: "Fisch Macro", Content: "#SingleInstance Force", Tags: []string{"Roblox", "Roblox"}},
		{Name: "V2 Tool", Content: "#Requires AutoHotkey v2.0", IsPersonal: true},
	}

	n, err := svc.SeedCurated(ctx, scripts)
	if err != nil {
		t.Fatalf("SeedCurated failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 inserted, got %d", n)
	}

	curated, _ := svc.ListCurated(ctx)
	if len(curated) != 2 {
		t.Fatalf("Expected 2 curated scripts, got %d", len(curated))
	}
	if curated[0].ID == "" {
		t.Error("Expected generated id")
	}
	if !reflect.DeepEqual(curated[0].Tags, []string{"Roblox"}) {
		t.Errorf("Expected deduplicated tags, got %v", curated[0].Tags)
	}
	if curated[1].IsPersonal {
		t.Error("Seeded scripts must be curated")
	}
	if curated[1].Version != models.VersionV2 {
		t.Errorf("Expected derived v2, got %q", curated[1].Version)
	}

	// second run is a no-op
	n, err = svc.SeedCurated(ctx, scripts)
	if err != nil {
		t.Fatalf("SeedCurated failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 inserted on second run, got %d", n)
	}
	if personal, _ := svc.ListPersonal(ctx); len(personal) != 0 {
		t.Errorf("Expected no personal scripts, got %d", len(personal))
	}
}

func TestSeedCurated_CountError(t *testing.T) {
	st := &MockScriptStore{CountFunc: func(ctx context.Context, personal bool) (int, error) {
		return 0, errors.New("no table")
	}}
	if _, err := NewService(st).SeedCurated(context.Background(), []models.Script{{Name: "x"}}); err == nil {
		t.Error("Expected error")
	}
	if st.CreateCalls != 0 {
		t.Errorf("Expected no inserts, got %d", st.CreateCalls)
	}
}
