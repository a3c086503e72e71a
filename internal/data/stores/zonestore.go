package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/colonyops/spotcheck/internal/core/zone"
	"github.com/colonyops/spotcheck/internal/data/db"
	"github.com/colonyops/spotcheck/pkg/randid"
)

// ZoneStore implements zone.Store using SQLite.
type ZoneStore struct {
	db *db.DB
}

var _ zone.Store = (*ZoneStore)(nil)

// NewZoneStore creates a new SQLite-backed zone store.
func NewZoneStore(db *db.DB) *ZoneStore {
	return &ZoneStore{db: db}
}

const zoneColumns = `id, name, display_name, camera_entity, enabled, update_frequency, max_tasks, created_at`

// Create persists a new zone. Generates an ID if not set. Returns
// ErrDuplicate when the name is already taken.
func (s *ZoneStore) Create(ctx context.Context, z *zone.Zone) error {
	if z.ID == "" {
		z.ID = randid.Generate(8)
	}
	if z.CreatedAt.IsZero() {
		z.CreatedAt = time.Now()
	}

	_, err := s.db.Conn().ExecContext(ctx,
		`INSERT INTO zones (`+zoneColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		z.ID, z.Name, z.DisplayName, z.CameraEntity, boolToInt(z.Enabled),
		int64(z.UpdateFrequency.Seconds()), z.MaxTasksPerAnalysis, z.CreatedAt.UnixNano())
	if err != nil {
		if isUniqueConstraintError(err) {
			return zone.ErrDuplicate
		}
		return fmt.Errorf("create zone: %w", err)
	}

	return nil
}

// Get returns a zone by ID.
func (s *ZoneStore) Get(ctx context.Context, id string) (zone.Zone, error) {
	row := s.db.Conn().QueryRowContext(ctx,
		`SELECT `+zoneColumns+` FROM zones WHERE id = ?`, id)
	return s.scanOne(row, "get zone")
}

// GetByName returns a zone by its unique name.
func (s *ZoneStore) GetByName(ctx context.Context, name string) (zone.Zone, error) {
	row := s.db.Conn().QueryRowContext(ctx,
		`SELECT `+zoneColumns+` FROM zones WHERE name = ?`, name)
	return s.scanOne(row, "get zone by name")
}

// List returns all zones ordered by name.
func (s *ZoneStore) List(ctx context.Context) ([]zone.Zone, error) {
	return s.list(ctx, `SELECT `+zoneColumns+` FROM zones ORDER BY name`)
}

// ListEnabled returns enabled zones ordered by name.
func (s *ZoneStore) ListEnabled(ctx context.Context) ([]zone.Zone, error) {
	return s.list(ctx, `SELECT `+zoneColumns+` FROM zones WHERE enabled = 1 ORDER BY name`)
}

// SetEnabled flips the enabled flag.
func (s *ZoneStore) SetEnabled(ctx context.Context, id string, enabled bool) error {
	res, err := s.db.Conn().ExecContext(ctx,
		`UPDATE zones SET enabled = ? WHERE id = ?`, boolToInt(enabled), id)
	if err != nil {
		return fmt.Errorf("set zone enabled: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set zone enabled: %w", err)
	}
	if n == 0 {
		return zone.ErrNotFound
	}
	return nil
}

// Delete removes a zone. Tasks, thresholds, rules, outcomes and history
// cascade via foreign keys.
func (s *ZoneStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM zones WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete zone: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete zone: %w", err)
	}
	if n == 0 {
		return zone.ErrNotFound
	}
	return nil
}

func (s *ZoneStore) list(ctx context.Context, query string) ([]zone.Zone, error) {
	rows, err := s.db.Conn().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var zones []zone.Zone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("scan zone: %w", err)
		}
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate zones: %w", err)
	}

	return zones, nil
}

func (s *ZoneStore) scanOne(row *sql.Row, op string) (zone.Zone, error) {
	z, err := scanZone(row)
	if IsNotFoundError(err) {
		return zone.Zone{}, zone.ErrNotFound
	}
	if err != nil {
		return zone.Zone{}, fmt.Errorf("%s: %w", op, err)
	}
	return z, nil
}

func scanZone(row rowScanner) (zone.Zone, error) {
	var z zone.Zone
	var enabled int64
	var freqSeconds int64
	var createdAt int64

	err := row.Scan(&z.ID, &z.Name, &z.DisplayName, &z.CameraEntity,
		&enabled, &freqSeconds, &z.MaxTasksPerAnalysis, &createdAt)
	if err != nil {
		return zone.Zone{}, err
	}

	z.Enabled = enabled != 0
	z.UpdateFrequency = time.Duration(freqSeconds) * time.Second
	z.CreatedAt = time.Unix(0, createdAt)
	return z, nil
}
