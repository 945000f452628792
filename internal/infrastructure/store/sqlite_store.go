// Package store persists solution attempts. The primary backend is a SQLite
// database; a JSONL file store serves as a fallback when the database cannot
// be opened.
package store

import (
	"database/sql"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/osai-go/internal/domain"
	"github.com/doeshing/osai-go/internal/pkg/filesystem"
	"github.com/doeshing/osai-go/internal/ports"
)

// SQLiteStore persists solution records in a SQLite database.
type SQLiteStore struct {
	db       *sql.DB
	path     string
	fallback *FileStore
	mu       sync.Mutex
}

// NewSQLiteStore creates (or opens) the solutions database. An empty path
// resolves to ~/.osai/solutions/solutions.db. When the database cannot be
// opened or initialized, the store degrades to a JSONL file next to it.
func NewSQLiteStore(path string) *SQLiteStore {
	if path == "" {
		path = filesystem.AppDir("solutions", "solutions.db")
	}
	fallback := NewFileStore(strings.TrimSuffix(path, ".db") + ".jsonl")
	if err := ensureParentDir(path); err != nil {
		return &SQLiteStore{path: path, fallback: fallback}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &SQLiteStore{path: path, fallback: fallback}
	}
	s := &SQLiteStore{db: db, path: path, fallback: fallback}
	if err := s.init(); err != nil {
		_ = db.Close()
		return &SQLiteStore{path: path, fallback: fallback}
	}
	return s
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS solutions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		instruction TEXT NOT NULL,
		script TEXT NOT NULL,
		model TEXT,
		executed INTEGER NOT NULL,
		success INTEGER NOT NULL,
		verified INTEGER,
		error_text TEXT,
		feedback TEXT,
		duration_ms INTEGER
	);`)
	return err
}

// Save implements ports.SolutionStore.
func (s *SQLiteStore) Save(record domain.SolutionRecord) error {
	if s.db == nil {
		return s.fallback.Save(record)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO solutions
		(run_id, timestamp, instruction, script, model, executed, success, verified, error_text, feedback, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.RunID,
		record.Timestamp.Format(time.RFC3339),
		record.Instruction,
		record.Script,
		record.Model,
		boolToInt(record.Executed),
		boolToInt(record.Success),
		nullableBool(record.Verified),
		record.ErrorText,
		record.Feedback,
		record.DurationMS,
	)
	return err
}

// Records returns solution records, newest first (limit/search optional).
func (s *SQLiteStore) Records(limit int, search string) ([]domain.SolutionRecord, error) {
	if s.db == nil {
		return s.fallback.Records(limit, search)
	}
	builder := strings.Builder{}
	builder.WriteString(selectColumns + " FROM solutions")
	var args []interface{}
	if search != "" {
		builder.WriteString(" WHERE instruction LIKE ? OR script LIKE ?")
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	builder.WriteString(" ORDER BY datetime(timestamp) DESC, id DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// LatestSuccessful implements the recall query used to bias prompts: the
// newest executed and successful attempt for the exact instruction whose
// verification did not fail.
func (s *SQLiteStore) LatestSuccessful(instruction string) (domain.SolutionRecord, bool, error) {
	if s.db == nil {
		return s.fallback.LatestSuccessful(instruction)
	}
	rows, err := s.db.Query(selectColumns+` FROM solutions
		WHERE instruction = ? AND executed = 1 AND success = 1
		AND (verified IS NULL OR verified = 1)
		ORDER BY datetime(timestamp) DESC, id DESC LIMIT 1`, instruction)
	if err != nil {
		return domain.SolutionRecord{}, false, err
	}
	defer rows.Close()
	records, err := scanRecords(rows)
	if err != nil || len(records) == 0 {
		return domain.SolutionRecord{}, false, err
	}
	return records[0], true, nil
}

// Stats aggregates store-wide counters.
func (s *SQLiteStore) Stats() (domain.SolutionStats, error) {
	if s.db == nil {
		return s.fallback.Stats()
	}
	var stats domain.SolutionStats
	row := s.db.QueryRow(`SELECT COUNT(*),
		COALESCE(SUM(executed), 0),
		COALESCE(SUM(success), 0),
		COALESCE(SUM(CASE WHEN verified = 1 THEN 1 ELSE 0 END), 0)
		FROM solutions`)
	if err := row.Scan(&stats.Total, &stats.Executed, &stats.Succeeded, &stats.Verified); err != nil {
		return domain.SolutionStats{}, err
	}
	return stats, nil
}

// ExportJSON writes all records to a JSONL file.
func (s *SQLiteStore) ExportJSON(dest string) error {
	records, err := s.Records(0, "")
	if err != nil {
		return err
	}
	return writeJSONL(dest, records)
}

// Clear deletes all records.
func (s *SQLiteStore) Clear() error {
	if s.db == nil {
		return s.fallback.Clear()
	}
	_, err := s.db.Exec("DELETE FROM solutions")
	return err
}

// Prune removes records older than the given number of days and reports how
// many were deleted.
func (s *SQLiteStore) Prune(days int) (int, error) {
	if s.db == nil {
		return s.fallback.Prune(days)
	}
	cutoff := time.Now().AddDate(0, 0, -days).Format(time.RFC3339)
	res, err := s.db.Exec("DELETE FROM solutions WHERE datetime(timestamp) < datetime(?)", cutoff)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	return int(affected), err
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

const selectColumns = "SELECT run_id, timestamp, instruction, script, model, executed, success, verified, error_text, feedback, duration_ms"

func scanRecords(rows *sql.Rows) ([]domain.SolutionRecord, error) {
	var records []domain.SolutionRecord
	for rows.Next() {
		var rec domain.SolutionRecord
		var ts string
		var executed, success int
		var verified sql.NullInt64
		if err := rows.Scan(&rec.RunID, &ts, &rec.Instruction, &rec.Script, &rec.Model,
			&executed, &success, &verified, &rec.ErrorText, &rec.Feedback, &rec.DurationMS); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.Timestamp = t
		}
		rec.Executed = executed == 1
		rec.Success = success == 1
		if verified.Valid {
			v := verified.Int64 == 1
			rec.Verified = &v
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableBool(b *bool) interface{} {
	if b == nil {
		return nil
	}
	return boolToInt(*b)
}

var _ ports.SolutionStore = (*SQLiteStore)(nil)
