package storage_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mbuchner/linkhaven/internal/model"
	"github.com/mbuchner/linkhaven/internal/storage"
)

func sampleState() *model.State {
	state := model.NewState()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	state.Bookmarks = []model.Bookmark{
		{
			ID:           "b1",
			URL:          "https://example.com",
			Title:        "Example",
			CollectionID: model.CollectionUnsorted,
			Tags:         []string{"t1"},
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
	state.Tags = []model.Tag{{ID: "t1", Name: "reference", Color: "#ff0000"}}
	state.SortOption = model.SortTitleAsc
	state.ActiveSection = model.SectionFavorites
	return state
}

func TestJSONAdapter_SaveAndLoad(t *testing.T) {
	adapter := storage.NewJSONAdapter(t.TempDir())

	if err := adapter.Save(storage.StateKey, sampleState()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	loaded, ok, err := adapter.Load(storage.StateKey)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if !ok {
		t.Fatal("expected state to be present")
	}

	if len(loaded.Bookmarks) != 1 {
		t.Errorf("expected 1 bookmark, got %d", len(loaded.Bookmarks))
	}
	if loaded.Bookmarks[0].Tags[0] != "t1" {
		t.Errorf("expected tag t1, got %q", loaded.Bookmarks[0].Tags[0])
	}
	if loaded.SortOption != model.SortTitleAsc {
		t.Errorf("expected persisted sort option, got %q", loaded.SortOption)
	}
	if loaded.ActiveSection != model.SectionFavorites {
		t.Errorf("expected persisted active section, got %q", loaded.ActiveSection)
	}
}

func TestJSONAdapter_LoadMissingKey(t *testing.T) {
	adapter := storage.NewJSONAdapter(t.TempDir())

	state, ok, err := adapter.Load("absent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || state != nil {
		t.Error("missing key should be reported as absent, not as state")
	}
}

func TestJSONAdapter_Clear(t *testing.T) {
	adapter := storage.NewJSONAdapter(t.TempDir())

	if err := adapter.Save(storage.StateKey, sampleState()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	if err := adapter.Clear(storage.StateKey); err != nil {
		t.Fatalf("failed to clear: %v", err)
	}

	_, ok, err := adapter.Load(storage.StateKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("state should be gone after Clear")
	}

	// Clearing an absent key is not an error
	if err := adapter.Clear(storage.StateKey); err != nil {
		t.Errorf("clearing absent key: %v", err)
	}
}

func TestJSONAdapter_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	adapter := storage.NewJSONAdapter(dir)

	if err := os.WriteFile(filepath.Join(dir, "state.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, _, err := adapter.Load(storage.StateKey)
	if err == nil {
		t.Error("expected an error for corrupt state file")
	}
}

func TestSQLiteAdapter_SaveAndLoad(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "linkhaven.db")

	adapter, err := storage.NewSQLiteAdapter(dbPath)
	if err != nil {
		t.Fatalf("failed to create adapter: %v", err)
	}
	defer adapter.Close()

	if err := adapter.Save(storage.StateKey, sampleState()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	// Overwrite with a second save to exercise the upsert
	state := sampleState()
	state.Bookmarks[0].Title = "Example v2"
	if err := adapter.Save(storage.StateKey, state); err != nil {
		t.Fatalf("failed to re-save: %v", err)
	}

	loaded, ok, err := adapter.Load(storage.StateKey)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if !ok {
		t.Fatal("expected state to be present")
	}
	if loaded.Bookmarks[0].Title != "Example v2" {
		t.Errorf("expected overwritten title, got %q", loaded.Bookmarks[0].Title)
	}

	if err := adapter.Clear(storage.StateKey); err != nil {
		t.Fatalf("failed to clear: %v", err)
	}
	if _, ok, _ := adapter.Load(storage.StateKey); ok {
		t.Error("state should be gone after Clear")
	}
}

func TestDemoGuard_SuppressesClear(t *testing.T) {
	inner := storage.NewJSONAdapter(t.TempDir())
	guarded := storage.WithDemoGuard(inner)

	if err := guarded.Save(storage.StateKey, sampleState()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	if err := guarded.Clear(storage.StateKey); err != nil {
		t.Fatalf("guarded clear should not error: %v", err)
	}

	// The underlying data must survive the suppressed clear.
	_, ok, err := inner.Load(storage.StateKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("demo mode must not wipe the cached dataset")
	}
}

func TestLoadConfig_CreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	config, err := storage.LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.MaxImportRecords != 2500 {
		t.Errorf("expected default import limit 2500, got %d", config.MaxImportRecords)
	}
	if config.DemoMode {
		t.Error("demo mode should default to off")
	}

	// The file should now exist with the defaults written
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected config file to be created: %v", err)
	}
}
