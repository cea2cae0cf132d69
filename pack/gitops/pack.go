// Package gitops provides the git_operations tool backed by go-git.
package gitops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/zkhudr/gemini-agent/domain/tool"
)

const usage = `Git Operations Tool:
- status: Get repository status
- log: Get commit history
- diff: Get current diff
- commit: Commit changes
- create_branch: Create new branch
- switch_branch: Switch to branch

Parameters:
- operation: The git operation to perform
- repo_path: Repository path (optional, defaults to current directory)
- message: Commit message (for commit operation)
- files: List of files to commit (optional, defaults to all)
- branch_name: Branch name (for branch operations)
- limit: Number of commits to show (for log operation)`

// Config configures the git tool.
type Config struct {
	// DefaultRepoPath is used when a call omits repo_path.
	DefaultRepoPath string

	// AuthorName and AuthorEmail sign commits made by the tool.
	AuthorName  string
	AuthorEmail string
}

// Option configures the git tool.
type Option func(*Config)

// WithAuthor sets the commit author.
func WithAuthor(name, email string) Option {
	return func(c *Config) {
		c.AuthorName = name
		c.AuthorEmail = email
	}
}

type params struct {
	Operation  string   `json:"operation"`
	RepoPath   string   `json:"repo_path,omitempty"`
	Message    string   `json:"message,omitempty"`
	Files      []string `json:"files,omitempty"`
	BranchName string   `json:"branch_name,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

// New creates the git_operations tool rooted at defaultRepoPath.
func New(defaultRepoPath string, opts ...Option) tool.Tool {
	cfg := Config{
		DefaultRepoPath: defaultRepoPath,
		AuthorName:      "gemini-agent",
		AuthorEmail:     "agent@local",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return tool.NewBuilder("git_operations").
		WithDescription("Inspect and modify a git repository").
		WithUsage(usage).
		Moderate().
		WithHandler(func(_ context.Context, raw json.RawMessage) (tool.Result, error) {
			var in params
			if err := json.Unmarshal(raw, &in); err != nil {
				return tool.NewErrorResult(err), nil
			}

			repoPath := in.RepoPath
			if repoPath == "" {
				repoPath = cfg.DefaultRepoPath
			}
			repo, err := git.PlainOpen(repoPath)
			if err != nil {
				return tool.NewErrorResultf("Not a valid Git repository"), nil
			}

			switch in.Operation {
			case "status":
				return status(repo), nil
			case "log":
				limit := in.Limit
				if limit <= 0 {
					limit = 10
				}
				return log(repo, limit), nil
			case "diff":
				return diff(repo), nil
			case "commit":
				return commit(repo, &cfg, in.Message, in.Files), nil
			case "create_branch":
				return createBranch(repo, in.BranchName), nil
			case "switch_branch":
				return switchBranch(repo, in.BranchName), nil
			default:
				return tool.NewErrorResult(fmt.Errorf("%w: %s", tool.ErrUnsupportedOperation, in.Operation)), nil
			}
		}).
		MustBuild()
}

type statusInfo struct {
	CurrentBranch  string   `json:"current_branch"`
	UntrackedFiles []string `json:"untracked_files"`
	ModifiedFiles  []string `json:"modified_files"`
	StagedFiles    []string `json:"staged_files"`
}

func status(repo *git.Repository) tool.Result {
	worktree, err := repo.Worktree()
	if err != nil {
		return tool.NewErrorResult(err)
	}
	wtStatus, err := worktree.Status()
	if err != nil {
		return tool.NewErrorResult(err)
	}

	info := statusInfo{
		CurrentBranch:  currentBranch(repo),
		UntrackedFiles: []string{},
		ModifiedFiles:  []string{},
		StagedFiles:    []string{},
	}
	for path, s := range wtStatus {
		if s.Worktree == git.Untracked {
			info.UntrackedFiles = append(info.UntrackedFiles, path)
			continue
		}
		if s.Worktree != git.Unmodified {
			info.ModifiedFiles = append(info.ModifiedFiles, path)
		}
		if s.Staging != git.Unmodified && s.Staging != git.Untracked {
			info.StagedFiles = append(info.StagedFiles, path)
		}
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return tool.NewErrorResult(err)
	}
	return tool.NewResult(string(data))
}

func currentBranch(repo *git.Repository) string {
	head, err := repo.Head()
	if err != nil || !head.Name().IsBranch() {
		return "HEAD (detached)"
	}
	return head.Name().Short()
}

type commitEntry struct {
	Hash    string `json:"hash"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	Message string `json:"message"`
}

var errLogLimitReached = errors.New("limit reached")

func log(repo *git.Repository, limit int) tool.Result {
	iter, err := repo.Log(&git.LogOptions{})
	if err != nil {
		return tool.NewErrorResult(err)
	}
	defer iter.Close()

	commits := make([]commitEntry, 0, limit)
	err = iter.ForEach(func(c *object.Commit) error {
		if len(commits) >= limit {
			return errLogLimitReached
		}
		commits = append(commits, commitEntry{
			Hash:    c.Hash.String()[:8],
			Author:  fmt.Sprintf("%s <%s>", c.Author.Name, c.Author.Email),
			Date:    c.Author.When.Format(time.RFC3339),
			Message: strings.TrimSpace(c.Message),
		})
		return nil
	})
	if err != nil && !errors.Is(err, errLogLimitReached) {
		return tool.NewErrorResult(err)
	}

	data, err := json.MarshalIndent(commits, "", "  ")
	if err != nil {
		return tool.NewErrorResult(err)
	}
	return tool.NewResult(string(data))
}

func diff(repo *git.Repository) tool.Result {
	worktree, err := repo.Worktree()
	if err != nil {
		return tool.NewErrorResult(err)
	}
	wtStatus, err := worktree.Status()
	if err != nil {
		return tool.NewErrorResult(err)
	}

	var b strings.Builder
	for path, s := range wtStatus {
		if s.Worktree == git.Unmodified && s.Staging == git.Unmodified {
			continue
		}
		code := s.Worktree
		if code == git.Unmodified {
			code = s.Staging
		}
		fmt.Fprintf(&b, "%c %s\n", byte(code), path)
	}
	return tool.NewResult(b.String())
}

func commit(repo *git.Repository, cfg *Config, message string, files []string) tool.Result {
	if message == "" {
		return tool.NewErrorResultf("Commit message is required")
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return tool.NewErrorResult(err)
	}

	if len(files) > 0 {
		for _, f := range files {
			if _, err := worktree.Add(f); err != nil {
				return tool.NewErrorResult(err)
			}
		}
	} else {
		// No explicit files stages all changes.
		if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
			return tool.NewErrorResult(err)
		}
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  cfg.AuthorName,
			Email: cfg.AuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return tool.NewErrorResult(err)
	}
	return tool.NewResult(fmt.Sprintf("Committed: %s - %s", hash.String()[:8], message))
}

func createBranch(repo *git.Repository, name string) tool.Result {
	if name == "" {
		return tool.NewErrorResultf("Branch name is required")
	}
	head, err := repo.Head()
	if err != nil {
		return tool.NewErrorResult(err)
	}
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), head.Hash())
	if err := repo.Storer.SetReference(ref); err != nil {
		return tool.NewErrorResult(err)
	}
	return tool.NewResult("Created branch: " + name)
}

func switchBranch(repo *git.Repository, name string) tool.Result {
	if name == "" {
		return tool.NewErrorResultf("Branch name is required")
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return tool.NewErrorResult(err)
	}
	err = worktree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
	})
	if err != nil {
		return tool.NewErrorResult(err)
	}
	return tool.NewResult("Switched to branch: " + name)
}
