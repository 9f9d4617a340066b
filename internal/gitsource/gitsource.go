package gitsource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// Sync makes localPath a shallow checkout of the pack repository at repoURL:
// it clones when the path does not exist and pulls otherwise.
func Sync(ctx context.Context, repoURL, localPath string) error {
	_, err := os.Stat(localPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Info("Cloning question pack repository", "url", repoURL, "path", localPath)
		_, err := git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{
			URL:   repoURL,
			Depth: 1,
		})
		if err != nil {
			return fmt.Errorf("failed to clone repo %s: %w", repoURL, err)
		}
	case err == nil:
		slog.Info("Pulling question pack repository", "path", localPath)
		repo, err := git.PlainOpen(localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing repo at %s: %w", localPath, err)
		}
		worktree, err := repo.Worktree()
		if err != nil {
			return fmt.Errorf("failed to get worktree for repo at %s: %w", localPath, err)
		}
		err = worktree.PullContext(ctx, &git.PullOptions{RemoteName: "origin", Depth: 1})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return fmt.Errorf("failed to pull changes for repo at %s: %w", localPath, err)
		}
	default:
		return fmt.Errorf("error checking path %s: %w", localPath, err)
	}
	return nil
}

// IsRemote reports whether source looks like a git URL rather than a local path.
func IsRemote(source string) bool {
	if strings.HasPrefix(source, "git@") {
		return true
	}
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "ssh", "git", "file":
		return true
	}
	return false
}

// LocalPath maps a repository URL to a directory under baseDir, for example
// https://github.com/acme/trivia.git to baseDir/github.com/acme/trivia.
// URLs whose host or path would leave baseDir are rejected.
func LocalPath(baseDir, repoURL string) (string, error) {
	if rest, ok := strings.CutPrefix(repoURL, "git@"); ok {
		host, repoPath, found := strings.Cut(rest, ":")
		if !found || host == "" || repoPath == "" {
			return "", fmt.Errorf("could not parse git URL: %s", repoURL)
		}
		return underBase(baseDir, repoURL, host, strings.TrimSuffix(repoPath, ".git"))
	}

	u, err := url.Parse(repoURL)
	if err != nil {
		return "", fmt.Errorf("could not parse git URL %s: %w", repoURL, err)
	}
	host := u.Host
	if host == "" {
		host = "local"
	}
	repoPath := strings.TrimSuffix(strings.Trim(u.Path, "/"), ".git")
	if repoPath == "" {
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}
	return underBase(baseDir, repoURL, host, repoPath)
}

func underBase(baseDir, repoURL, host, repoPath string) (string, error) {
	host, repoPath = filepath.FromSlash(host), filepath.FromSlash(repoPath)
	if !filepath.IsLocal(host) || !filepath.IsLocal(repoPath) {
		return "", fmt.Errorf("git URL %s escapes the pack cache directory", repoURL)
	}
	return filepath.Join(baseDir, host, repoPath), nil
}
