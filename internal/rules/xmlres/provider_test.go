package xmlres

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathanvila/windup/internal/analysis"
)

func TestExecuteClassifiesRootElements(t *testing.T) {
	source := t.TempDir()
	files := map[string]string{
		"web.xml":    `<?xml version="1.0"?><web-app xmlns="http://java.sun.com/xml/ns/javaee"></web-app>`,
		"plain.xml":  `<beans></beans>`,
		"notes.txt":  `<ignored/>`,
		"broken.xml": `<unclosed`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(source, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	run := analysis.NewRun("run-1", source, nil, nil)
	if err := New().Execute(context.Background(), run); err != nil {
		t.Fatalf("execute: %v", err)
	}
	findings := run.Findings.ByCategory(analysis.CategoryXMLResource)
	if len(findings) != 3 {
		t.Fatalf("findings = %+v", findings)
	}
	byPath := map[string]analysis.Finding{}
	for _, f := range findings {
		byPath[f.Path] = f
	}
	if got := byPath["web.xml"].Message; got != `root element <web-app> (xmlns http://java.sun.com/xml/ns/javaee)` {
		t.Fatalf("web.xml message = %q", got)
	}
	if got := byPath["plain.xml"].Message; got != "root element <beans>" {
		t.Fatalf("plain.xml message = %q", got)
	}
	if !strings.HasPrefix(byPath["broken.xml"].Message, "malformed xml") {
		t.Fatalf("broken.xml finding = %+v", byPath["broken.xml"])
	}
}
