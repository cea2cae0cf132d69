package project

import (
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
)

// maxStatusFiles limits the untracked and modified path lists in the git
// context section.
const maxStatusFiles = 10

// loadGitContext folds in the .gitignore and, when the project is a git
// repository, the current branch with capped untracked/modified lists.
func (a *Aggregator) loadGitContext() string {
	var sections []string

	if content := readTrimmed(filepath.Join(a.projectRoot, ".gitignore")); content != "" {
		sections = append(sections, "--- .gitignore ---\n"+content)
	}

	if status := a.gitStatus(); status != "" {
		sections = append(sections, "--- Git Status ---\n"+status)
	}

	return strings.Join(sections, "\n\n")
}

func (a *Aggregator) gitStatus() string {
	repo, err := git.PlainOpen(a.projectRoot)
	if err != nil {
		return ""
	}

	branch := "HEAD (detached)"
	if head, err := repo.Head(); err == nil && head.Name().IsBranch() {
		branch = head.Name().Short()
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return ""
	}
	status, err := worktree.Status()
	if err != nil {
		return ""
	}

	var untracked, modified []string
	for path, s := range status {
		switch {
		case s.Worktree == git.Untracked:
			untracked = append(untracked, path)
		case s.Worktree == git.Modified || s.Staging == git.Modified:
			modified = append(modified, path)
		}
	}
	sort.Strings(untracked)
	sort.Strings(modified)
	if len(untracked) > maxStatusFiles {
		untracked = untracked[:maxStatusFiles]
	}
	if len(modified) > maxStatusFiles {
		modified = modified[:maxStatusFiles]
	}

	var b strings.Builder
	b.WriteString("Current branch: " + branch + "\n")
	if len(untracked) > 0 {
		b.WriteString("Untracked files: " + strings.Join(untracked, ", ") + "\n")
	}
	if len(modified) > 0 {
		b.WriteString("Modified files: " + strings.Join(modified, ", ") + "\n")
	}
	return b.String()
}
