package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingFrontMatter indicates the document did not start with a YAML fence.
	ErrMissingFrontMatter = errors.New("report: missing frontmatter")
	// ErrMalformedFrontMatter indicates the YAML block could not be parsed.
	ErrMalformedFrontMatter = errors.New("report: malformed frontmatter")
)

var (
	openingFence = []byte("---")
	closingFence = []byte("\n---\n")
)

// ParseFrontMatter splits a fenced document into its metadata envelope and
// body. The blank line the writer leaves after the closing fence belongs to
// the envelope, not the body, so a write/read cycle returns the body
// byte-for-byte.
func ParseFrontMatter(content []byte) (Metadata, []byte, error) {
	header, rest, found := bytes.Cut(normalizeNewlines(content), []byte("\n"))
	if !found || !bytes.Equal(header, openingFence) {
		return Metadata{}, nil, ErrMissingFrontMatter
	}
	metaBytes, body, found := bytes.Cut(rest, closingFence)
	if !found {
		return Metadata{}, nil, ErrMalformedFrontMatter
	}
	body = bytes.TrimPrefix(body, []byte("\n"))
	var envelope windupEnvelope
	if err := yaml.Unmarshal(metaBytes, &envelope); err != nil {
		return Metadata{}, nil, fmt.Errorf("report: parse frontmatter: %w", err)
	}
	meta, err := envelope.toMetadata()
	if err != nil {
		return Metadata{}, nil, err
	}
	return meta, body, nil
}

// WriteFrontMatter renders the fenced envelope followed by a blank line and
// the body.
func WriteFrontMatter(meta Metadata, body []byte) ([]byte, error) {
	if meta.ReportID == "" {
		return nil, fmt.Errorf("report: metadata missing report id")
	}
	var envelope windupEnvelope
	envelope.fromMetadata(meta)
	data, err := yaml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("report: encode frontmatter: %w", err)
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n%s%s\n", openingFence, bytes.TrimRight(data, "\n"), closingFence)
	buf.Write(body)
	return buf.Bytes(), nil
}

type windupEnvelope struct {
	Windup windupMetadata `yaml:"windup"`
}

type windupMetadata struct {
	Report    string `yaml:"report"`
	Run       string `yaml:"run"`
	Provider  string `yaml:"provider"`
	Version   string `yaml:"version"`
	Generated string `yaml:"generated"`
}

func (e windupEnvelope) toMetadata() (Metadata, error) {
	if e.Windup.Report == "" || e.Windup.Run == "" || e.Windup.Provider == "" {
		return Metadata{}, ErrMalformedFrontMatter
	}
	generated, err := parseTime(e.Windup.Generated)
	if err != nil {
		return Metadata{}, fmt.Errorf("report: parse generated timestamp: %w", err)
	}
	return Metadata{
		ReportID:    e.Windup.Report,
		RunID:       e.Windup.Run,
		Provider:    e.Windup.Provider,
		Version:     e.Windup.Version,
		GeneratedAt: generated,
	}, nil
}

func (e *windupEnvelope) fromMetadata(meta Metadata) {
	e.Windup.Report = meta.ReportID
	e.Windup.Run = meta.RunID
	e.Windup.Provider = meta.Provider
	e.Windup.Version = meta.Version
	e.Windup.Generated = meta.GeneratedAt.UTC().Format(timeLayout)
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func parseTime(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, fmt.Errorf("report: empty generated timestamp")
	}
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func normalizeNewlines(content []byte) []byte {
	return bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
}
