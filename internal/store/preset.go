package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Preset represents a named formation tuning preset stored in the database.
type Preset struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Config    json.RawMessage `json:"config"`
	CreatedAt time.Time       `json:"created_at"`
}

// PresetRepository provides CRUD operations for tuning presets.
type PresetRepository struct {
	db *sql.DB
}

// Presets returns the preset repository for this store.
func (s *Store) Presets() *PresetRepository {
	return &PresetRepository{db: s.db}
}

// Create inserts a new preset into the database.
func (r *PresetRepository) Create(p *Preset) error {
	p.CreatedAt = time.Now()

	config := p.Config
	if config == nil {
		config = json.RawMessage("{}")
	}

	_, err := r.db.Exec(
		`INSERT INTO presets (id, name, config, created_at)
		 VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, string(config), p.CreatedAt,
	)
	return err
}

// GetByID retrieves a preset by its ID.
func (r *PresetRepository) GetByID(id string) (*Preset, error) {
	p := &Preset{}
	var config string

	err := r.db.QueryRow(
		`SELECT id, name, config, created_at FROM presets WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.Name, &config, &p.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	p.Config = json.RawMessage(config)
	return p, nil
}

// GetByName retrieves a preset by its unique name.
func (r *PresetRepository) GetByName(name string) (*Preset, error) {
	p := &Preset{}
	var config string

	err := r.db.QueryRow(
		`SELECT id, name, config, created_at FROM presets WHERE name = ?`,
		name,
	).Scan(&p.ID, &p.Name, &config, &p.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	p.Config = json.RawMessage(config)
	return p, nil
}

// List retrieves all presets, most recent first.
func (r *PresetRepository) List() ([]*Preset, error) {
	rows, err := r.db.Query(
		`SELECT id, name, config, created_at FROM presets ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []*Preset
	for rows.Next() {
		p := &Preset{}
		var config string

		if err := rows.Scan(&p.ID, &p.Name, &config, &p.CreatedAt); err != nil {
			return nil, err
		}

		p.Config = json.RawMessage(config)
		presets = append(presets, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return presets, nil
}

// Delete removes a preset from the database by its ID.
func (r *PresetRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM presets WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
