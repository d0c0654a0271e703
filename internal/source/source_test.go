package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	cases := map[string]Kind{
		"deck.csv":                              KindFile,
		"/tmp/some#file.txt":                    KindFile,
		"https://example.com/deck.csv":          KindHTTP,
		"HTTP://example.com/deck.csv#frag":      KindHTTP,
		"https://github.com/u/r.git#decks/a.py": KindGit,
		"git@github.com:u/r#a.csv":              KindGit,
		"file:///srv/repo#a.csv":                KindGit,
		dir + "#cards.csv":                      KindGit,
		"https://github.com/u/r.git#":           KindHTTP,
	}
	for target, want := range cases {
		require.Equal(t, want, Classify(target), target)
	}
}

func TestName(t *testing.T) {
	require.Equal(t, "deck.csv", Name("/a/b/deck.csv"))
	require.Equal(t, "deck.txt", Name("https://example.com/x/deck.txt?raw=1"))
	require.Equal(t, "a.py", Name("https://example.com/r.git#decks/a.py"))
}

func TestResolveLocalFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "deck.csv")
	require.NoError(t, os.WriteFile(p, []byte("frente,gabarito\nq,B\n"), 0o644))

	doc, err := NewResolver("", nil).Resolve(context.Background(), "  "+p+"  ")
	require.NoError(t, err)
	require.Equal(t, Document{Name: "deck.csv", Content: "frente,gabarito\nq,B\n"}, doc)
}

func TestResolveErrors(t *testing.T) {
	r := NewResolver("", nil)
	_, err := r.Resolve(context.Background(), "")
	require.Error(t, err)
	_, err = r.Resolve(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	_, err = r.Resolve(context.Background(), "https://example.com/r.git#a.csv")
	require.ErrorContains(t, err, "cache directory")
}

func TestResolveTooLarge(t *testing.T) {
	p := filepath.Join(t.TempDir(), "big.txt")
	require.NoError(t, os.WriteFile(p, []byte(strings.Repeat("x", MaxBytes+1)), 0o644))
	_, err := NewResolver("", nil).Resolve(context.Background(), p)
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestResolveHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/decks/math.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("question,answer\n1+1?,B\n"))
	}))
	t.Cleanup(srv.Close)

	r := NewResolver("", nil)
	doc, err := r.Resolve(context.Background(), srv.URL+"/decks/math.csv")
	require.NoError(t, err)
	require.Equal(t, "math.csv", doc.Name)
	require.Equal(t, "question,answer\n1+1?,B\n", doc.Content)

	_, err = r.Resolve(context.Background(), srv.URL+"/missing.csv")
	require.ErrorContains(t, err, "404")
}

func TestResolveGitUsesCachedCheckout(t *testing.T) {
	cache := t.TempDir()
	r := NewResolver(cache, nil)
	remote := "https://example.invalid/team/decks.git"

	local := r.cloneDir(remote)
	require.True(t, strings.HasPrefix(filepath.Base(local), "decks-"))
	_, err := git.PlainInit(local, false)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(local, "sets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(local, "sets", "bio.txt"), []byte("cells"), 0o644))

	doc, err := r.Resolve(context.Background(), remote+"#sets/bio.txt")
	require.NoError(t, err)
	require.Equal(t, Document{Name: "bio.txt", Content: "cells"}, doc)

	// Paths cannot escape the checkout.
	_, err = r.Resolve(context.Background(), remote+"#../../../etc/hostname")
	require.Error(t, err)
}

func TestCloneDirIsStable(t *testing.T) {
	r := NewResolver("/cache", nil)
	a := r.cloneDir("https://example.com/a.git")
	require.Equal(t, a, r.cloneDir("https://example.com/a.git"))
	require.NotEqual(t, a, r.cloneDir("https://example.org/a.git"))
	require.Equal(t, "/cache", filepath.Dir(a))
}
