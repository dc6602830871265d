package analysis

import (
	"sort"
	"sync"
)

// Finding categories recorded by the built-in providers.
const (
	CategoryFile          = "file"
	CategoryArchive       = "archive"
	CategoryTypeReference = "java-type-reference"
	CategoryXMLResource   = "xml-resource"
)

// Finding is one observation a provider records against the source tree.
// Line zero means the finding concerns the whole file.
type Finding struct {
	Provider string   `json:"provider"`
	Category string   `json:"category"`
	Path     string   `json:"path"`
	Line     int      `json:"line,omitempty"`
	Message  string   `json:"message"`
	Tags     []string `json:"tags,omitempty"`
}

// FindingSet collects findings from concurrently executing providers.
type FindingSet struct {
	mu       sync.Mutex
	findings []Finding
}

// NewFindingSet returns an empty set.
func NewFindingSet() *FindingSet {
	return &FindingSet{}
}

// Add records findings.
func (s *FindingSet) Add(findings ...Finding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findings = append(s.findings, findings...)
}

// All returns every finding ordered by path, line, category, then provider.
func (s *FindingSet) All() []Finding {
	s.mu.Lock()
	out := append([]Finding{}, s.findings...)
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Provider < out[j].Provider
	})
	return out
}

// ByCategory returns the findings in one category, ordered as All.
func (s *FindingSet) ByCategory(category string) []Finding {
	all := s.All()
	out := make([]Finding, 0, len(all))
	for _, f := range all {
		if f.Category == category {
			out = append(out, f)
		}
	}
	return out
}

// Count returns the number of recorded findings.
func (s *FindingSet) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.findings)
}

// CountByCategory tallies findings per category.
func (s *FindingSet) CountByCategory() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int, 4)
	for _, f := range s.findings {
		counts[f.Category]++
	}
	return counts
}
