package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/parley/internal/composer"
)

const sampleScript = `
characters:
  - name: Sarah
    voice:
      formality: 0.3
      verbosity: 0.7
  - name: Marcus
scene:
  setting: abandoned warehouse
  mood: tense
  tension: 8
  characters: [Sarah, Marcus]
lines:
  - speaker: Sarah
    text: You can't judge a book by its cover, Marcus.
  - speaker: Marcus
    text: Fine. Let's go.
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestAnalyzeCommand(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("PARLEY_PATTERNS_FILE", "")
	path := writeFile(t, "scene.yaml", sampleScript)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"analyze", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	var rep composer.Report
	if err := json.Unmarshal(out.Bytes(), &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if rep.TotalLines != 2 || rep.CharactersAnalyzed != 2 {
		t.Errorf("expected 2 lines and 2 characters, got %d and %d", rep.TotalLines, rep.CharactersAnalyzed)
	}
	if rep.Overall.ClicheFrequency["you can't judge a book by its cover"] != 1 {
		t.Errorf("unexpected cliche frequency: %v", rep.Overall.ClicheFrequency)
	}
}

func TestAnalyzeCommandMissingFile(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"analyze", filepath.Join(t.TempDir(), "missing.yaml")})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error for missing script")
	}
}

func TestAnalyzeCommandRequiresArg(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"analyze"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error without a script argument")
	}
}

func TestReportsCommandRequiresDatabaseURL(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DATABASE_URL", "")
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"reports", "5f0c6a8e-9a43-4d8e-bb0e-1d2f3a4b5c6d"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}
}

func TestReportsCommandInvalidSessionID(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DATABASE_URL", "postgres://localhost:1/parley")
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"reports", "not-a-uuid"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "session id") {
		t.Fatalf("expected invalid session id error, got %v", err)
	}
}
