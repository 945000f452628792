package store

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/doeshing/osai-go/internal/domain"
	"github.com/doeshing/osai-go/internal/pkg/filesystem"
	"github.com/doeshing/osai-go/internal/ports"
)

// FileStore appends solution records to a JSONL file. It backs the SQLite
// store when the database is unavailable and can be used standalone.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store writing to the given path. An empty path
// resolves to ~/.osai/solutions/solutions.jsonl.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = filesystem.AppDir("solutions", "solutions.jsonl")
	}
	return &FileStore{path: path}
}

// Save implements ports.SolutionStore.
func (f *FileStore) Save(record domain.SolutionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ensureParentDir(f.path); err != nil {
		return err
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = file.Write(data)
	return err
}

// Records loads records, newest first (limit/search optional, best-effort).
func (f *FileStore) Records(limit int, search string) ([]domain.SolutionRecord, error) {
	all, err := f.load()
	if err != nil {
		return nil, err
	}
	var records []domain.SolutionRecord
	for i := len(all) - 1; i >= 0; i-- {
		rec := all[i]
		if search != "" && !matches(rec, search) {
			continue
		}
		records = append(records, rec)
		if limit > 0 && len(records) >= limit {
			break
		}
	}
	return records, nil
}

// LatestSuccessful scans for the newest reusable attempt.
func (f *FileStore) LatestSuccessful(instruction string) (domain.SolutionRecord, bool, error) {
	all, err := f.load()
	if err != nil {
		return domain.SolutionRecord{}, false, err
	}
	for i := len(all) - 1; i >= 0; i-- {
		rec := all[i]
		if rec.Instruction != instruction || !rec.Executed || !rec.Success {
			continue
		}
		if rec.Verified != nil && !*rec.Verified {
			continue
		}
		return rec, true, nil
	}
	return domain.SolutionRecord{}, false, nil
}

// Stats aggregates counters over all records.
func (f *FileStore) Stats() (domain.SolutionStats, error) {
	all, err := f.load()
	if err != nil {
		return domain.SolutionStats{}, err
	}
	var stats domain.SolutionStats
	for _, rec := range all {
		stats.Total++
		if rec.Executed {
			stats.Executed++
		}
		if rec.Success {
			stats.Succeeded++
		}
		if rec.Verified != nil && *rec.Verified {
			stats.Verified++
		}
	}
	return stats, nil
}

// ExportJSON copies all records to another JSONL file.
func (f *FileStore) ExportJSON(dest string) error {
	records, err := f.Records(0, "")
	if err != nil {
		return err
	}
	return writeJSONL(dest, records)
}

// Clear removes the backing file.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Prune rewrites the file keeping only records newer than the cutoff.
func (f *FileStore) Prune(days int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all, err := f.load()
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	var kept []domain.SolutionRecord
	for _, rec := range all {
		if rec.Timestamp.After(cutoff) {
			kept = append(kept, rec)
		}
	}
	removed := len(all) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := writeJSONL(f.path, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) load() ([]domain.SolutionRecord, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	var records []domain.SolutionRecord
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		var rec domain.SolutionRecord
		if err := json.Unmarshal(line, &rec); err == nil {
			records = append(records, rec)
		}
	}
	return records, nil
}

func matches(rec domain.SolutionRecord, search string) bool {
	return strings.Contains(rec.Instruction, search) || strings.Contains(rec.Script, search)
}

func writeJSONL(dest string, records []domain.SolutionRecord) error {
	if err := ensureParentDir(dest); err != nil {
		return err
	}
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()
	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := file.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}

func ensureParentDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
}

var _ ports.SolutionStore = (*FileStore)(nil)
