package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/checkcard/internal/config"
)

type cliEnv struct {
	dir    string
	config string
	store  string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("CHECKCARD_AI_API_KEY", "")
	return cliEnv{
		dir:    dir,
		config: filepath.Join(dir, "config.toml"),
		store:  filepath.Join(dir, "checkcard.db"),
	}
}

func (e cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--config", e.config, "--store-path", e.store))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestImportThenDeck(t *testing.T) {
	env := newCLIEnv(t)
	csvPath := filepath.Join(env.dir, "deck.csv")
	content := "frente,gabarito,verso\n\"What is 2+2? A) 3 B) 4\",b,Basic math\n"
	if err := os.WriteFile(csvPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := env.run(t, "import", csvPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Imported 1 cards from deck.csv") {
		t.Fatalf("unexpected import output %q", out)
	}

	out, err = env.run(t, "deck")
	if err != nil {
		t.Fatalf("deck: %v", err)
	}
	if !strings.Contains(out, "1 cards (imported)") || !strings.Contains(out, "What is 2+2?") {
		t.Fatalf("unexpected deck output %q", out)
	}

	out, err = env.run(t, "deck", "--reset")
	if err != nil {
		t.Fatalf("deck --reset: %v", err)
	}
	if !strings.Contains(out, "2 default cards") {
		t.Fatalf("unexpected reset output %q", out)
	}
}

func TestImportRejectsExtension(t *testing.T) {
	env := newCLIEnv(t)
	if _, err := env.run(t, "import", filepath.Join(env.dir, "notes.pdf")); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}

func TestHistoryEmptyAndClear(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "Nenhuma sessão registrada ainda.") {
		t.Fatalf("unexpected history output %q", out)
	}

	out, err = env.run(t, "history", "--clear", "--yes")
	if err != nil {
		t.Fatalf("history --clear: %v", err)
	}
	if !strings.Contains(out, "Histórico apagado.") {
		t.Fatalf("unexpected clear output %q", out)
	}
}

func TestRemindWithoutHistory(t *testing.T) {
	env := newCLIEnv(t)
	if _, err := env.run(t, "remind"); err == nil {
		t.Fatalf("expected error without sessions")
	}
}

func TestDefaultConfigTemplateLoads(t *testing.T) {
	env := newCLIEnv(t)
	if err := os.WriteFile(env.config, []byte(defaultConfigTemplate()), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := config.Load(env.config, nil)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.Store.Driver != config.DefaultDriver || cfg.AI.Model != config.DefaultModel {
		t.Fatalf("unexpected config %+v", cfg)
	}
}
