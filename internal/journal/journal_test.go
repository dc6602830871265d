package journal

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.log")
	j, err := New(path)
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}
	for i := 0; i < 5; i++ {
		j.Info("entry-%d", i)
	}
	lines, total := j.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestNilJournalIsSilent(t *testing.T) {
	var j *Journal
	j.Info("dropped")
	j.Warn("dropped")
	j.Error("dropped")
	if lines, total := j.Tail(10); lines != nil || total != 0 {
		t.Fatalf("nil journal Tail = %v, %d", lines, total)
	}
	if j.Path() != "" {
		t.Fatalf("nil journal path = %q", j.Path())
	}
}

func TestLevelsAppearInEntries(t *testing.T) {
	j, err := New(filepath.Join(t.TempDir(), "journal.log"))
	if err != nil {
		t.Fatalf("new journal: %v", err)
	}
	j.Warn("schedule warning: %s", "ghost")
	j.Error("provider failed: %s", "java-imports")
	lines, _ := j.Tail(2)
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "WARN") || !strings.Contains(lines[0], "ghost") {
		t.Fatalf("warn line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "ERROR") || !strings.Contains(lines[1], "java-imports") {
		t.Fatalf("error line = %q", lines[1])
	}
}
