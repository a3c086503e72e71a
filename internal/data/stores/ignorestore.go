package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/colonyops/spotcheck/internal/core/ignore"
	"github.com/colonyops/spotcheck/internal/data/db"
	"github.com/colonyops/spotcheck/pkg/randid"
)

// IgnoreStore implements ignore.Store using SQLite.
type IgnoreStore struct {
	db *db.DB
}

var _ ignore.Store = (*IgnoreStore)(nil)

// NewIgnoreStore creates a new SQLite-backed ignore rule store.
func NewIgnoreStore(db *db.DB) *IgnoreStore {
	return &IgnoreStore{db: db}
}

const ignoreColumns = `id, zone_id, rule_type, rule_value, enabled, case_sensitive, match_partial, usage_count, created_at`

// Create persists a new rule. Generates an ID if not set.
func (s *IgnoreStore) Create(ctx context.Context, r *ignore.Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = randid.Generate(8)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	_, err := s.db.Conn().ExecContext(ctx,
		`INSERT INTO ignore_rules (`+ignoreColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ZoneID, string(r.Type), r.Value, boolToInt(r.Enabled),
		boolToInt(r.CaseSensitive), boolToInt(r.MatchPartial), r.UsageCount, r.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("create ignore rule: %w", err)
	}

	return nil
}

// Get returns a rule by ID.
func (s *IgnoreStore) Get(ctx context.Context, id string) (ignore.Rule, error) {
	row := s.db.Conn().QueryRowContext(ctx,
		`SELECT `+ignoreColumns+` FROM ignore_rules WHERE id = ?`, id)

	r, err := scanIgnoreRule(row)
	if IsNotFoundError(err) {
		return ignore.Rule{}, ignore.ErrNotFound
	}
	if err != nil {
		return ignore.Rule{}, fmt.Errorf("get ignore rule: %w", err)
	}
	return r, nil
}

// List returns a zone's rules ordered by created_at ASC.
func (s *IgnoreStore) List(ctx context.Context, zoneID string) ([]ignore.Rule, error) {
	return s.list(ctx,
		`SELECT `+ignoreColumns+` FROM ignore_rules WHERE zone_id = ? ORDER BY created_at ASC`,
		zoneID)
}

// ListEnabled returns a zone's enabled rules ordered by created_at ASC.
func (s *IgnoreStore) ListEnabled(ctx context.Context, zoneID string) ([]ignore.Rule, error) {
	return s.list(ctx,
		`SELECT `+ignoreColumns+` FROM ignore_rules WHERE zone_id = ? AND enabled = 1 ORDER BY created_at ASC`,
		zoneID)
}

// IncrementUsage bumps the rule's usage counter.
func (s *IgnoreStore) IncrementUsage(ctx context.Context, id string) error {
	res, err := s.db.Conn().ExecContext(ctx,
		`UPDATE ignore_rules SET usage_count = usage_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("increment rule usage: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment rule usage: %w", err)
	}
	if n == 0 {
		return ignore.ErrNotFound
	}
	return nil
}

// Delete removes a rule.
func (s *IgnoreStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM ignore_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete ignore rule: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete ignore rule: %w", err)
	}
	if n == 0 {
		return ignore.ErrNotFound
	}
	return nil
}

func (s *IgnoreStore) list(ctx context.Context, query string, args ...any) ([]ignore.Rule, error) {
	rows, err := s.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ignore rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []ignore.Rule
	for rows.Next() {
		r, err := scanIgnoreRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ignore rule: %w", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ignore rules: %w", err)
	}

	return rules, nil
}

func scanIgnoreRule(row rowScanner) (ignore.Rule, error) {
	var r ignore.Rule
	var ruleType string
	var enabled, caseSensitive, matchPartial sql.NullInt64
	var createdAt int64

	err := row.Scan(&r.ID, &r.ZoneID, &ruleType, &r.Value,
		&enabled, &caseSensitive, &matchPartial, &r.UsageCount, &createdAt)
	if err != nil {
		return ignore.Rule{}, err
	}

	r.Type = ignore.Type(ruleType)
	r.Enabled = enabled.Int64 != 0
	r.CaseSensitive = caseSensitive.Int64 != 0
	r.MatchPartial = matchPartial.Int64 != 0
	r.CreatedAt = time.Unix(0, createdAt)
	return r, nil
}
