package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m3rciful/hallbot/core/buildinfo"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	questionsPath := filepath.Join(dir, "questions.json")
	doc := `{
  // written by an older deployment
  "42": {"question": "Где парковка?", "username": "@anna", "created_at": "2026-01-02T10:00:00", "admin_ready_to_reply": false, "answered": false},
  "7": "Есть гардероб?",
  "9": {"question": "done", "answered": true}
}`
	if err := os.WriteFile(questionsPath, []byte(doc), 0o644); err != nil {
		t.Fatalf("write questions: %v", err)
	}
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := "telegram:\n  token: \"123:TEST\"\nstorage:\n  driver: file\n  path: " + questionsPath + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	orig := buildinfo.Version
	buildinfo.Version = "1.2.3"
	defer func() { buildinfo.Version = orig }()

	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(out, "hallbot 1.2.3 (local)") {
		t.Errorf("unexpected version output: %s", out)
	}
}

func TestQuestionsStatsCmd(t *testing.T) {
	out, err := run(t, "--config", writeFixture(t), "questions", "stats")
	if err != nil {
		t.Fatalf("questions stats failed: %v", err)
	}
	for _, want := range []string{"Всего вопросов: 3", "Ожидают ответа: 2", "Отвечено: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %s", want, out)
		}
	}
}

func TestQuestionsListCmd(t *testing.T) {
	out, err := run(t, "-c", writeFixture(t), "questions", "list", "--limit", "1")
	if err != nil {
		t.Fatalf("questions list failed: %v", err)
	}
	if !strings.Contains(out, "🆔 7 (ID7)") {
		t.Errorf("oldest question (no timestamp) should come first: %s", out)
	}
	if !strings.Contains(out, "... и еще 1 вопросов") {
		t.Errorf("expected overflow line: %s", out)
	}
}

func TestMigrateRequiresPostgres(t *testing.T) {
	if _, err := run(t, "-c", writeFixture(t), "migrate"); err == nil {
		t.Fatal("migrate should refuse the file backend")
	}
}

func TestRootCmdHelp(t *testing.T) {
	out, err := run(t, "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, sub := range []string{"serve", "questions", "migrate", "version"} {
		if !strings.Contains(out, sub) {
			t.Errorf("help lacks %q: %s", sub, out)
		}
	}
}
