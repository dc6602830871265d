package report

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func fixedClock() func() time.Time {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	return func() time.Time { return at }
}

func TestWriteAndReadMarkdown(t *testing.T) {
	store := NewStore(t.TempDir(), WithClock(fixedClock()))
	ref := Ref{ID: "summary", Name: "Summary", Kind: KindMarkdown, Rel: "summary.md"}
	meta := Metadata{RunID: "run-1", Provider: "analysis-report"}

	if err := store.Write(ref, []byte("# Findings\n"), meta); err != nil {
		t.Fatalf("Write: %v", err)
	}
	body, got, err := store.Read(ref)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(body) != "# Findings\n" {
		t.Fatalf("body = %q", string(body))
	}
	if got.ReportID != "summary" || got.RunID != "run-1" || got.Provider != "analysis-report" {
		t.Fatalf("metadata = %+v", got)
	}
	if got.GeneratedAt != fixedClock()() {
		t.Fatalf("generated = %v", got.GeneratedAt)
	}
}

func TestWriteJSONAppendsEnvelope(t *testing.T) {
	store := NewStore(t.TempDir(), WithClock(fixedClock()))
	ref := Ref{ID: "findings", Kind: KindJSON, Rel: "findings.json"}
	meta := Metadata{RunID: "run-1", Provider: "analysis-report"}

	if err := store.Write(ref, []byte(`{"total": 3}`), meta); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, got, err := store.Read(ref)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !strings.Contains(string(data), "\"_windup\"") {
		t.Fatalf("missing _windup block in %s", data)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Fatalf("json artifact should end with a newline")
	}
	if got.ReportID != "findings" {
		t.Fatalf("metadata = %+v", got)
	}
}

func TestCheckStates(t *testing.T) {
	store := NewStore(t.TempDir(), WithClock(fixedClock()))
	ref := Ref{ID: "summary", Kind: KindMarkdown, Rel: "summary.md"}

	result, err := store.Check(ref)
	if err != nil {
		t.Fatalf("Check missing: %v", err)
	}
	if result.State != StateMissing {
		t.Fatalf("state = %s, want missing", result.State)
	}

	if err := store.Write(ref, []byte("body\n"), Metadata{RunID: "r", Provider: "p"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	result, err = store.Check(ref)
	if err != nil {
		t.Fatalf("Check ready: %v", err)
	}
	if result.State != StateReady {
		t.Fatalf("state = %s, want ready", result.State)
	}

	// A different ref pointing at the same file must be flagged.
	other := Ref{ID: "other", Kind: KindMarkdown, Rel: "summary.md"}
	result, _ = store.Check(other)
	if result.State != StateInvalid {
		t.Fatalf("state = %s, want invalid", result.State)
	}
}

func TestWriteRejectsIncompleteMetadata(t *testing.T) {
	store := NewStore(t.TempDir())
	ref := Ref{ID: "summary", Kind: KindMarkdown, Rel: "summary.md"}
	if err := store.Write(ref, nil, Metadata{}); err == nil {
		t.Fatal("expected error for metadata without run or provider")
	}
}

func TestFrontMatterBodyRoundTrip(t *testing.T) {
	meta := Metadata{
		ReportID:    "summary",
		RunID:       "run-1",
		Provider:    "analysis-report",
		GeneratedAt: fixedClock()(),
	}
	// The separator blank line after the closing fence and a body opening
	// with its own newline must both survive a write/read cycle intact.
	for _, body := range []string{"# Findings\n", "\nleading newline\n", ""} {
		encoded, err := WriteFrontMatter(meta, []byte(body))
		if err != nil {
			t.Fatalf("WriteFrontMatter(%q): %v", body, err)
		}
		got, decoded, err := ParseFrontMatter(encoded)
		if err != nil {
			t.Fatalf("ParseFrontMatter(%q): %v", body, err)
		}
		if string(decoded) != body {
			t.Fatalf("body = %q, want %q", decoded, body)
		}
		if got.ReportID != meta.ReportID || got.GeneratedAt != meta.GeneratedAt {
			t.Fatalf("metadata = %+v", got)
		}
	}
}

func TestParseFrontMatterErrors(t *testing.T) {
	if _, _, err := ParseFrontMatter(nil); !errors.Is(err, ErrMissingFrontMatter) {
		t.Fatalf("empty content: %v", err)
	}
	if _, _, err := ParseFrontMatter([]byte("no fences here")); !errors.Is(err, ErrMissingFrontMatter) {
		t.Fatalf("plain content: %v", err)
	}
	if _, _, err := ParseFrontMatter([]byte("---\nwindup:\n  report: x\n")); !errors.Is(err, ErrMalformedFrontMatter) {
		t.Fatalf("unterminated fence: %v", err)
	}
}
