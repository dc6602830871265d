package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrRunNotFound is returned when no persisted report exists for a run id.
var ErrRunNotFound = errors.New("engine: run not found")

// Repository persists run reports.
type Repository interface {
	Save(RunReport) error
	Load(runID string) (RunReport, error)
	List() ([]string, error)
}

// FSRepository stores one JSON file per run under a directory.
type FSRepository struct {
	dir string
}

// NewFSRepository creates a repository rooted at dir. The directory is
// created lazily on first save.
func NewFSRepository(dir string) *FSRepository {
	return &FSRepository{dir: dir}
}

// Dir returns the directory backing this repository.
func (r *FSRepository) Dir() string {
	return r.dir
}

// Save writes the report as indented JSON under <dir>/<run-id>.json.
func (r *FSRepository) Save(report RunReport) error {
	if strings.TrimSpace(report.RunID) == "" {
		return fmt.Errorf("engine: run report is missing a run id")
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path(report.RunID), append(encoded, '\n'), 0o644)
}

// Load reads the persisted report for a run id.
func (r *FSRepository) Load(runID string) (RunReport, error) {
	data, err := os.ReadFile(r.path(runID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return RunReport{}, fmt.Errorf("engine: run %q: %w", runID, ErrRunNotFound)
		}
		return RunReport{}, err
	}
	var report RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return RunReport{}, fmt.Errorf("engine: decode run %q: %w", runID, err)
	}
	return report, nil
}

// List returns the persisted run ids in lexical order.
func (r *FSRepository) List() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *FSRepository) path(runID string) string {
	return filepath.Join(r.dir, runID+".json")
}
