// Package fileops provides the file_operations tool.
package fileops

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/zkhudr/gemini-agent/domain/tool"
)

const usage = `File Operations Tool:
- read: Read file content
- write: Write content to file
- create_directory: Create directory
- list_directory: List directory contents
- search: Search for files matching pattern

Parameters:
- operation: The operation to perform
- path: File or directory path
- content: Content to write (for write operation)
- pattern: Search pattern (for search operation)`

type params struct {
	Operation string `json:"operation"`
	Path      string `json:"path"`
	Content   string `json:"content,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
}

// New creates the file_operations tool.
func New() tool.Tool {
	return tool.NewBuilder("file_operations").
		WithDescription("Read, write and search files and directories").
		WithUsage(usage).
		Moderate().
		WithHandler(func(_ context.Context, raw json.RawMessage) (tool.Result, error) {
			var in params
			if err := json.Unmarshal(raw, &in); err != nil {
				return tool.NewErrorResult(err), nil
			}

			switch in.Operation {
			case "read":
				return readFile(in.Path), nil
			case "write":
				return writeFile(in.Path, in.Content), nil
			case "create_directory":
				return createDirectory(in.Path), nil
			case "list_directory":
				return listDirectory(in.Path), nil
			case "search":
				return searchFiles(in.Path, in.Pattern), nil
			default:
				return tool.NewErrorResult(fmt.Errorf("%w: %s", tool.ErrUnsupportedOperation, in.Operation)), nil
			}
		}).
		MustBuild()
}

func readFile(path string) tool.Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return tool.NewErrorResult(err)
	}
	return tool.NewResultWithMetadata(string(data), map[string]any{
		"file_size": len(data),
	})
}

func writeFile(path, content string) tool.Result {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return tool.NewErrorResult(err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return tool.NewErrorResult(err)
	}
	return tool.NewResult(fmt.Sprintf("Successfully wrote %d characters to %s", len(content), path))
}

func createDirectory(path string) tool.Result {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return tool.NewErrorResult(err)
	}
	return tool.NewResult("Directory created: " + path)
}

type dirEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	Path string `json:"path"`
}

func listDirectory(path string) tool.Result {
	entries, err := os.ReadDir(path)
	if err != nil {
		return tool.NewErrorResult(err)
	}

	items := make([]dirEntry, 0, len(entries))
	for _, e := range entries {
		item := dirEntry{
			Name: e.Name(),
			Type: "file",
			Path: filepath.Join(path, e.Name()),
		}
		if e.IsDir() {
			item.Type = "directory"
		} else if info, err := e.Info(); err == nil {
			item.Size = info.Size()
		}
		items = append(items, item)
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return tool.NewErrorResult(err)
	}
	return tool.NewResult(string(data))
}

func searchFiles(root, pattern string) tool.Result {
	if pattern == "" {
		return tool.NewErrorResultf("no search pattern provided")
	}

	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		if ok, _ := filepath.Match(pattern, d.Name()); ok && !d.IsDir() {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return tool.NewErrorResult(err)
	}

	data, err := json.MarshalIndent(matches, "", "  ")
	if err != nil {
		return tool.NewErrorResult(err)
	}
	return tool.NewResult(string(data))
}
