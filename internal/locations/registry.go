// Package locations is the registry of named fishing spots, kept in sqlite.
package locations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/ngmaloney/fishing-log/internal/models"
)

// Registry handles CRUD for fishing locations.
//
// Names are unique. Add rejects an existing name, and Update rejects a rename
// onto a third entry rather than overwriting it. List returns entries in
// insertion order; an updated entry is re-inserted and so moves to the end.
type Registry struct {
	db *sql.DB
}

// NewRegistry creates a registry over an open database
func NewRegistry(db *sql.DB) *Registry {
	return &Registry{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Add inserts a new location
func (r *Registry) Add(ctx context.Context, loc models.Location) (*models.Location, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	exists, err := nameExists(ctx, r.db, loc.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %q", models.ErrDuplicateName, loc.Name)
	}
	if err := insert(ctx, r.db, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// Update replaces the location named oldName with loc inside one transaction.
func (r *Registry) Update(ctx context.Context, oldName string, loc models.Location) (*models.Location, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := nameExists(ctx, tx, oldName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: location %q", models.ErrNotFound, oldName)
	}
	if loc.Name != oldName {
		clash, err := nameExists(ctx, tx, loc.Name)
		if err != nil {
			return nil, err
		}
		if clash {
			return nil, fmt.Errorf("%w: cannot rename %q to %q", models.ErrDuplicateName, oldName, loc.Name)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM locations WHERE name = ?", oldName); err != nil {
		return nil, fmt.Errorf("removing location: %w", err)
	}
	if err := insert(ctx, tx, &loc); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing update: %w", err)
	}
	return &loc, nil
}

// Remove deletes a location by name
func (r *Registry) Remove(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM locations WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting location: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: location %q", models.ErrNotFound, name)
	}
	return nil
}

// Get retrieves a single location by name
func (r *Registry) Get(ctx context.Context, name string) (*models.Location, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, latitude, longitude, sub_locations, parking FROM locations WHERE name = ?", name)
	loc, err := scanLocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: location %q", models.ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return loc, nil
}

// List returns all locations in insertion order
func (r *Registry) List(ctx context.Context) ([]models.Location, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, latitude, longitude, sub_locations, parking FROM locations ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying locations: %w", err)
	}
	defer rows.Close()

	var locs []models.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locs = append(locs, *loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating locations: %w", err)
	}
	return locs, nil
}

// Names returns location names in insertion order
func (r *Registry) Names(ctx context.Context) ([]string, error) {
	locs, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(locs))
	for i, l := range locs {
		names[i] = l.Name
	}
	return names, nil
}

func nameExists(ctx context.Context, q execer, name string) (bool, error) {
	var count int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM locations WHERE name = ?", name).Scan(&count); err != nil {
		return false, fmt.Errorf("checking location name: %w", err)
	}
	return count > 0, nil
}

func insert(ctx context.Context, q execer, loc *models.Location) error {
	subs, err := json.Marshal(nonNilStrings(loc.SubLocations))
	if err != nil {
		return fmt.Errorf("encoding sub-locations: %w", err)
	}
	parking, err := json.Marshal(nonNilCoords(loc.Parking))
	if err != nil {
		return fmt.Errorf("encoding parking: %w", err)
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO locations (name, latitude, longitude, sub_locations, parking)
		VALUES (?, ?, ?, ?, ?)
	`, loc.Name, loc.Coordinates.Lat, loc.Coordinates.Lon, string(subs), string(parking))
	if err != nil {
		return fmt.Errorf("saving location: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	loc.ID = id
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanLocation(s scanner) (*models.Location, error) {
	var loc models.Location
	var subs, parking string
	if err := s.Scan(&loc.ID, &loc.Name, &loc.Coordinates.Lat, &loc.Coordinates.Lon, &subs, &parking); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning location: %w", err)
	}
	if err := json.Unmarshal([]byte(subs), &loc.SubLocations); err != nil {
		return nil, fmt.Errorf("decoding sub-locations for %q: %w", loc.Name, err)
	}
	if err := json.Unmarshal([]byte(parking), &loc.Parking); err != nil {
		return nil, fmt.Errorf("decoding parking for %q: %w", loc.Name, err)
	}
	return &loc, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilCoords(c []models.Coordinate) []models.Coordinate {
	if c == nil {
		return []models.Coordinate{}
	}
	return c
}
