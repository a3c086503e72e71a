package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/spotcheck/internal/core/analysis"
	"github.com/colonyops/spotcheck/internal/data/db"
	"github.com/colonyops/spotcheck/pkg/randid"
)

// AnalysisStore implements analysis.Store using SQLite.
type AnalysisStore struct {
	db *db.DB
}

var _ analysis.Store = (*AnalysisStore)(nil)

// NewAnalysisStore creates a new SQLite-backed analysis history store.
func NewAnalysisStore(db *db.DB) *AnalysisStore {
	return &AnalysisStore{db: db}
}

const analysisColumns = `id, zone_id, cycle_id, detected, created_count, reinforced, auto_completed, cleanliness_score, duration_ns, created_at`

// Create persists a new analysis record. Generates an ID if not set.
func (s *AnalysisStore) Create(ctx context.Context, r *analysis.Record) error {
	if r.ID == "" {
		r.ID = randid.Generate(8)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	_, err := s.db.Conn().ExecContext(ctx,
		`INSERT INTO analyses (`+analysisColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ZoneID, r.CycleID, r.Detected, r.Created, r.Reinforced,
		r.AutoCompleted, r.CleanlinessScore, int64(r.Duration), r.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("create analysis: %w", err)
	}

	return nil
}

// List returns a zone's records newest first, up to limit (0 = unlimited).
func (s *AnalysisStore) List(ctx context.Context, zoneID string, limit int) ([]analysis.Record, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE zone_id = ? ORDER BY created_at DESC`
	args := []any{zoneID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []analysis.Record
	for rows.Next() {
		r, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}

	return records, nil
}

// Latest returns the zone's most recent record.
func (s *AnalysisStore) Latest(ctx context.Context, zoneID string) (analysis.Record, error) {
	row := s.db.Conn().QueryRowContext(ctx,
		`SELECT `+analysisColumns+` FROM analyses
		 WHERE zone_id = ? ORDER BY created_at DESC LIMIT 1`, zoneID)

	r, err := scanAnalysis(row)
	if IsNotFoundError(err) {
		return analysis.Record{}, analysis.ErrNotFound
	}
	if err != nil {
		return analysis.Record{}, fmt.Errorf("latest analysis: %w", err)
	}
	return r, nil
}

func scanAnalysis(row rowScanner) (analysis.Record, error) {
	var r analysis.Record
	var durationNs, createdAt int64

	err := row.Scan(&r.ID, &r.ZoneID, &r.CycleID, &r.Detected, &r.Created,
		&r.Reinforced, &r.AutoCompleted, &r.CleanlinessScore, &durationNs, &createdAt)
	if err != nil {
		return analysis.Record{}, err
	}

	r.Duration = time.Duration(durationNs)
	r.CreatedAt = time.Unix(0, createdAt)
	return r, nil
}
