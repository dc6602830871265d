package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// Store manages report IO rooted at the run's output directory. Writes from
// concurrently executing providers are serialized.
type Store struct {
	root string
	now  func() time.Time
	mu   sync.Mutex
}

// StoreOption customizes a Store during construction.
type StoreOption func(*Store)

// WithClock overrides the clock used for metadata timestamps.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = clock
	}
}

// NewStore builds a store rooted at the output directory.
func NewStore(root string, opts ...StoreOption) *Store {
	store := &Store{
		root: filepath.Clean(root),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Root returns the output directory the store writes under.
func (s *Store) Root() string {
	return s.root
}

// Path resolves the absolute location of a report artifact.
func (s *Store) Path(ref Ref) string {
	if ref.Rel == "" {
		return ""
	}
	return filepath.Join(s.root, filepath.FromSlash(ref.Rel))
}

// Check inspects the report on disk and returns its status and metadata.
func (s *Store) Check(ref Ref) (CheckResult, error) {
	path := s.Path(ref)
	if path == "" {
		err := fmt.Errorf("report: %s path could not be resolved", ref.ID)
		return CheckResult{Ref: ref, Path: path, State: StateError, Err: err}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return CheckResult{Ref: ref, Path: path, State: StateMissing}, nil
		}
		return CheckResult{Ref: ref, Path: path, State: StateError, Err: err}, err
	}
	switch ref.Kind {
	case KindDirectory:
		if !info.IsDir() {
			return invalidResult(ref, path, fmt.Errorf("report: expected directory"))
		}
		return CheckResult{Ref: ref, Path: path, State: StateReady}, nil
	case KindJSON:
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return CheckResult{Ref: ref, Path: path, State: StateError, Err: readErr}, readErr
		}
		meta, metaErr := parseJSONMetadata(data)
		if metaErr != nil {
			return invalidResult(ref, path, metaErr)
		}
		if meta.ReportID != ref.ID {
			return invalidResult(ref, path, fmt.Errorf("report: metadata id %s does not match %s", meta.ReportID, ref.ID))
		}
		return CheckResult{Ref: ref, Path: path, State: StateReady, Metadata: &meta}, nil
	default:
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return CheckResult{Ref: ref, Path: path, State: StateError, Err: readErr}, readErr
		}
		meta, _, metaErr := ParseFrontMatter(data)
		if metaErr != nil {
			return invalidResult(ref, path, metaErr)
		}
		if meta.ReportID != ref.ID {
			return invalidResult(ref, path, fmt.Errorf("report: metadata id %s does not match %s", meta.ReportID, ref.ID))
		}
		return CheckResult{Ref: ref, Path: path, State: StateReady, Metadata: &meta}, nil
	}
}

// Write persists the report contents and metadata based on its kind.
func (s *Store) Write(ref Ref, body []byte, meta Metadata) error {
	path := s.Path(ref)
	if path == "" {
		return fmt.Errorf("report: %s path could not be resolved", ref.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch ref.Kind {
	case KindDirectory:
		return os.MkdirAll(path, 0o755)
	case KindJSON:
		return s.writeJSON(path, ref, body, meta)
	default:
		return s.writeMarkdown(path, ref, body, meta)
	}
}

// Read returns the body and metadata of a previously written report.
func (s *Store) Read(ref Ref) ([]byte, Metadata, error) {
	path := s.Path(ref)
	if path == "" {
		return nil, Metadata{}, fmt.Errorf("report: %s path could not be resolved", ref.ID)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Metadata{}, err
	}
	switch ref.Kind {
	case KindJSON:
		meta, metaErr := parseJSONMetadata(data)
		if metaErr != nil {
			return nil, Metadata{}, metaErr
		}
		return data, meta, nil
	default:
		meta, body, metaErr := ParseFrontMatter(data)
		if metaErr != nil {
			return nil, Metadata{}, metaErr
		}
		return body, meta, nil
	}
}

func (s *Store) writeMarkdown(path string, ref Ref, body []byte, meta Metadata) error {
	if body == nil {
		body = []byte{}
	}
	prepared := meta.WithDefaults(ref, s.now())
	if err := prepared.ValidateFor(ref); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	content, err := WriteFrontMatter(prepared, body)
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}

func (s *Store) writeJSON(path string, ref Ref, body []byte, meta Metadata) error {
	if body == nil {
		body = []byte("{}")
	}
	prepared := meta.WithDefaults(ref, s.now())
	if err := prepared.ValidateFor(ref); err != nil {
		return err
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("report: invalid json body for %s: %w", ref.ID, err)
	}
	payload["_windup"] = metadataToJSON(prepared)
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("report: encode json for %s: %w", ref.ID, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(encoded, '\n'), 0o644)
}

func invalidResult(ref Ref, path string, err error) (CheckResult, error) {
	return CheckResult{Ref: ref, Path: path, State: StateInvalid, Err: err}, err
}

func parseJSONMetadata(data []byte) (Metadata, error) {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return Metadata{}, fmt.Errorf("report: parse json metadata: %w", err)
	}
	raw, ok := payload["_windup"]
	if !ok {
		return Metadata{}, fmt.Errorf("report: missing _windup metadata")
	}
	metaMap, ok := raw.(map[string]any)
	if !ok {
		return Metadata{}, fmt.Errorf("report: invalid _windup metadata structure")
	}
	return metadataFromMap(metaMap)
}

func metadataToJSON(meta Metadata) map[string]any {
	return map[string]any{
		"report":    meta.ReportID,
		"run":       meta.RunID,
		"provider":  meta.Provider,
		"version":   meta.Version,
		"generated": meta.GeneratedAt.UTC().Format(timeLayout),
	}
}

func metadataFromMap(values map[string]any) (Metadata, error) {
	reportID := stringValue(values["report"])
	runID := stringValue(values["run"])
	providerID := stringValue(values["provider"])
	if reportID == "" || runID == "" || providerID == "" {
		return Metadata{}, fmt.Errorf("report: incomplete metadata")
	}
	generated := stringValue(values["generated"])
	if generated == "" {
		return Metadata{}, fmt.Errorf("report: metadata missing generated timestamp")
	}
	timeValue, err := parseTime(generated)
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{
		ReportID:    reportID,
		RunID:       runID,
		Provider:    providerID,
		Version:     stringValue(values["version"]),
		GeneratedAt: timeValue,
	}, nil
}

func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}
