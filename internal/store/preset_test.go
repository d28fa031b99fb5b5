package store

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestPresetRepository_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Presets()

	preset := &Preset{
		ID:     uuid.New().String(),
		Name:   "calm",
		Config: json.RawMessage(`{"sphere_radius":0.8,"color_blend":0.03}`),
	}

	if err := repo.Create(preset); err != nil {
		t.Fatalf("failed to create preset: %v", err)
	}
	if preset.CreatedAt.IsZero() {
		t.Error("Create should set CreatedAt")
	}

	got, err := repo.GetByID(preset.ID)
	if err != nil {
		t.Fatalf("failed to get preset: %v", err)
	}
	if got.Name != "calm" {
		t.Errorf("expected name %q, got %q", "calm", got.Name)
	}

	var cfg map[string]float64
	if err := json.Unmarshal(got.Config, &cfg); err != nil {
		t.Fatalf("failed to parse stored config: %v", err)
	}
	if cfg["sphere_radius"] != 0.8 {
		t.Errorf("expected sphere_radius 0.8, got %f", cfg["sphere_radius"])
	}
}

func TestPresetRepository_NilConfigDefaultsToEmpty(t *testing.T) {
	s := newTestStore(t)
	repo := s.Presets()

	preset := &Preset{ID: uuid.New().String(), Name: "bare"}
	if err := repo.Create(preset); err != nil {
		t.Fatalf("failed to create preset: %v", err)
	}

	got, err := repo.GetByID(preset.ID)
	if err != nil {
		t.Fatalf("failed to get preset: %v", err)
	}
	if string(got.Config) != "{}" {
		t.Errorf("expected empty JSON object, got %s", got.Config)
	}
}

func TestPresetRepository_GetByName(t *testing.T) {
	s := newTestStore(t)
	repo := s.Presets()

	preset := &Preset{ID: uuid.New().String(), Name: "energetic"}
	if err := repo.Create(preset); err != nil {
		t.Fatalf("failed to create preset: %v", err)
	}

	got, err := repo.GetByName("energetic")
	if err != nil {
		t.Fatalf("failed to get preset by name: %v", err)
	}
	if got.ID != preset.ID {
		t.Errorf("expected ID %s, got %s", preset.ID, got.ID)
	}

	_, err = repo.GetByName("no-such-preset")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPresetRepository_DuplicateNameFails(t *testing.T) {
	s := newTestStore(t)
	repo := s.Presets()

	if err := repo.Create(&Preset{ID: uuid.New().String(), Name: "dup"}); err != nil {
		t.Fatalf("failed to create preset: %v", err)
	}

	err := repo.Create(&Preset{ID: uuid.New().String(), Name: "dup"})
	if err == nil {
		t.Error("expected error creating preset with duplicate name")
	}
}

func TestPresetRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Presets()

	for _, name := range []string{"a", "b"} {
		if err := repo.Create(&Preset{ID: uuid.New().String(), Name: name}); err != nil {
			t.Fatalf("failed to create preset %q: %v", name, err)
		}
	}

	presets, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list presets: %v", err)
	}
	if len(presets) != 2 {
		t.Errorf("expected 2 presets, got %d", len(presets))
	}
}

func TestPresetRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Presets()

	preset := &Preset{ID: uuid.New().String(), Name: "gone"}
	if err := repo.Create(preset); err != nil {
		t.Fatalf("failed to create preset: %v", err)
	}

	if err := repo.Delete(preset.ID); err != nil {
		t.Fatalf("failed to delete preset: %v", err)
	}

	if err := repo.Delete(preset.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
