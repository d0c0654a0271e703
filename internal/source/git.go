package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// splitGitTarget splits "<repo>#<path>" when repo looks like a git remote or
// a local repository.
func splitGitTarget(target string) (string, string, bool) {
	idx := strings.LastIndex(target, "#")
	if idx <= 0 || idx == len(target)-1 {
		return "", "", false
	}
	repo, p := target[:idx], target[idx+1:]
	if !looksLikeRepo(repo) {
		return "", "", false
	}
	return repo, p, true
}

func looksLikeRepo(repo string) bool {
	lower := strings.ToLower(repo)
	for _, prefix := range []string{"git@", "ssh://", "git://", "file://"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	if strings.HasSuffix(lower, ".git") {
		return true
	}
	info, err := os.Stat(filepath.Join(repo, ".git"))
	return err == nil && info.IsDir()
}

// cloneDir is a stable per-remote directory under the cache.
func (r *Resolver) cloneDir(repo string) string {
	sum := sha256.Sum256([]byte(repo))
	name := strings.TrimSuffix(path.Base(strings.TrimRight(repo, "/")), ".git")
	return filepath.Join(r.CacheDir, name+"-"+hex.EncodeToString(sum[:6]))
}

// sync clones repo into the cache, or pulls it when already cloned.
func (r *Resolver) sync(ctx context.Context, repo string) (string, error) {
	if r.CacheDir == "" {
		return "", fmt.Errorf("repository cache directory is not configured")
	}
	local := r.cloneDir(repo)
	_, err := os.Stat(local)
	switch {
	case errors.Is(err, os.ErrNotExist):
		r.logger().Info("cloning repository", "url", repo, "path", local)
		if err := os.MkdirAll(r.CacheDir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create cache dir: %w", err)
		}
		if _, err := git.PlainCloneContext(ctx, local, false, &git.CloneOptions{URL: repo}); err != nil {
			_ = os.RemoveAll(local)
			return "", fmt.Errorf("failed to clone repo %s: %w", repo, err)
		}
	case err == nil:
		r.logger().Info("pulling repository", "url", repo, "path", local)
		gitRepo, err := git.PlainOpen(local)
		if err != nil {
			return "", fmt.Errorf("failed to open existing repo at %s: %w", local, err)
		}
		worktree, err := gitRepo.Worktree()
		if err != nil {
			return "", fmt.Errorf("failed to get worktree for repo at %s: %w", local, err)
		}
		err = worktree.PullContext(ctx, &git.PullOptions{RemoteName: "origin", Force: true})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			// A stale cache is still usable.
			r.logger().Warn("pull failed, using cached checkout", "url", repo, "error", err)
		}
	default:
		return "", fmt.Errorf("error checking path %s: %w", local, err)
	}
	return local, nil
}

func (r *Resolver) fromGit(ctx context.Context, repo, inRepo string) (Document, error) {
	local, err := r.sync(ctx, repo)
	if err != nil {
		return Document{}, err
	}
	// Cleaning from a rooted path keeps the file inside the checkout.
	rel := filepath.Clean(string(filepath.Separator) + filepath.FromSlash(inRepo))
	doc, err := readFile(filepath.Join(local, rel))
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}
