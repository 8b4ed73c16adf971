package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS weight_profiles (
	context_type    TEXT NOT NULL,
	is_candidate    INTEGER NOT NULL,
	symbolic_weight REAL NOT NULL,
	neural_weight   REAL NOT NULL,
	sample_count    INTEGER NOT NULL DEFAULT 0,
	last_updated    TEXT NOT NULL,
	metadata        TEXT,
	PRIMARY KEY (context_type, is_candidate)
);

CREATE TABLE IF NOT EXISTS learning_log (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id     TEXT NOT NULL,
	trigger_type TEXT NOT NULL,
	context_type TEXT NOT NULL,
	context_json TEXT,
	new_seeds    INTEGER NOT NULL DEFAULT 0,
	impact       REAL NOT NULL DEFAULT 0,
	created_at   TEXT NOT NULL
);
`
// #endregion schema

// #region store-struct
// Store is the SQLite-backed parameter store: one logical table of weight
// profiles keyed (context_type, is_candidate), plus the learning log.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion db-accessor

// #region get
// GetProduction reads the production row for a context type.
// Returns ErrNotFound when the row does not exist.
func (s *Store) GetProduction(ctx context.Context, contextType string) (WeightProfile, error) {
	return s.get(ctx, contextType, false)
}

// GetCandidate reads the candidate row for a context type.
// Returns ErrNotFound when the row does not exist.
func (s *Store) GetCandidate(ctx context.Context, contextType string) (WeightProfile, error) {
	return s.get(ctx, contextType, true)
}

func (s *Store) get(ctx context.Context, contextType string, isCandidate bool) (WeightProfile, error) {
	p := WeightProfile{ContextType: contextType}
	err := s.db.QueryRowContext(ctx,
		`SELECT symbolic_weight, neural_weight, sample_count
		 FROM weight_profiles WHERE context_type = ? AND is_candidate = ?`,
		contextType, boolToInt(isCandidate),
	).Scan(&p.SymbolicWeight, &p.NeuralWeight, &p.SampleCount)
	if err == sql.ErrNoRows {
		return WeightProfile{}, ErrNotFound
	}
	if err != nil {
		return WeightProfile{}, fmt.Errorf("get profile %s: %w", contextType, err)
	}
	return p, nil
}
// #endregion get

// #region put-production
// PutProduction upserts the production row for a profile.
func (s *Store) PutProduction(ctx context.Context, p WeightProfile, metadata map[string]string) error {
	metaJSON, err := marshalMetadata(metadata)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO weight_profiles (context_type, is_candidate, symbolic_weight, neural_weight, sample_count, last_updated, metadata)
		 VALUES (?, 0, ?, ?, ?, ?, ?)
		 ON CONFLICT (context_type, is_candidate) DO UPDATE SET
		   symbolic_weight = excluded.symbolic_weight,
		   neural_weight   = excluded.neural_weight,
		   sample_count    = excluded.sample_count,
		   last_updated    = excluded.last_updated,
		   metadata        = excluded.metadata`,
		p.ContextType, p.SymbolicWeight, p.NeuralWeight, p.SampleCount,
		time.Now().UTC().Format(time.RFC3339Nano), metaJSON,
	)
	if err != nil {
		return fmt.Errorf("put production %s: %w", p.ContextType, err)
	}
	return nil
}
// #endregion put-production

// #region save-candidate
// SaveCandidate upserts the candidate row with the shifted weights and
// atomically increments its sample count in the same statement, returning
// the count after the increment. The atomic increment avoids the lost-update
// race between two feedback events doing read-then-write on the counter.
func (s *Store) SaveCandidate(ctx context.Context, p WeightProfile) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO weight_profiles (context_type, is_candidate, symbolic_weight, neural_weight, sample_count, last_updated)
		 VALUES (?, 1, ?, ?, 1, ?)
		 ON CONFLICT (context_type, is_candidate) DO UPDATE SET
		   symbolic_weight = excluded.symbolic_weight,
		   neural_weight   = excluded.neural_weight,
		   sample_count    = weight_profiles.sample_count + 1,
		   last_updated    = excluded.last_updated
		 RETURNING sample_count`,
		p.ContextType, p.SymbolicWeight, p.NeuralWeight,
		time.Now().UTC().Format(time.RFC3339Nano),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("save candidate %s: %w", p.ContextType, err)
	}
	return count, nil
}
// #endregion save-candidate

// #region promote
// Promote copies the candidate weights for a context type into the production
// row and resets the candidate sample count so the next accumulation cycle
// starts fresh. Promoting a context type with no candidate row is an error.
func (s *Store) Promote(ctx context.Context, contextType string) error {
	candidate, err := s.GetCandidate(ctx, contextType)
	if err != nil {
		return fmt.Errorf("promote %s: %w", contextType, err)
	}
	promoted := WeightProfile{
		SymbolicWeight: candidate.SymbolicWeight,
		NeuralWeight:   candidate.NeuralWeight,
		ContextType:    contextType,
		SampleCount:    candidate.SampleCount,
	}
	meta := map[string]string{
		"promoted_at":           time.Now().UTC().Format(time.RFC3339Nano),
		"previous_sample_count": fmt.Sprintf("%d", candidate.SampleCount),
	}
	if err := s.PutProduction(ctx, promoted, meta); err != nil {
		return fmt.Errorf("promote %s: %w", contextType, err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE weight_profiles SET sample_count = 0, last_updated = ?
		 WHERE context_type = ? AND is_candidate = 1`,
		time.Now().UTC().Format(time.RFC3339Nano), contextType,
	)
	if err != nil {
		return fmt.Errorf("promote %s: reset candidate: %w", contextType, err)
	}
	return nil
}
// #endregion promote

// #region list
// ListProfiles returns all stored rows, production before candidate,
// ordered by context type. Used by inspection tooling.
func (s *Store) ListProfiles(ctx context.Context) ([]ProfileRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT context_type, is_candidate, symbolic_weight, neural_weight, sample_count, last_updated, metadata
		 FROM weight_profiles ORDER BY context_type, is_candidate`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []ProfileRow
	for rows.Next() {
		var (
			r         ProfileRow
			candidate int
			updatedAt string
			metaJSON  sql.NullString
		)
		if err := rows.Scan(&r.Profile.ContextType, &candidate, &r.Profile.SymbolicWeight,
			&r.Profile.NeuralWeight, &r.Profile.SampleCount, &updatedAt, &metaJSON); err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}
		r.IsCandidate = candidate != 0
		if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
			r.LastUpdated = t
		}
		if metaJSON.Valid && metaJSON.String != "" {
			if err := json.Unmarshal([]byte(metaJSON.String), &r.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata for %s: %w", r.Profile.ContextType, err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
// #endregion list

// #region helpers
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func marshalMetadata(metadata map[string]string) (interface{}, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return string(raw), nil
}
// #endregion helpers
