// Package memory provides persistent implementations of the scoped
// key-value memory store.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zkhudr/gemini-agent/domain/memory"
)

const storeDirName = ".gemini"

// FileStore persists each scope as one JSON document mapping record key to
// record. Session and project scopes live under the project root; user and
// global scopes under the injected home root, shared across projects.
// Whole-file read-modify-write is serialized per scope and writes replace
// the file atomically.
type FileStore struct {
	paths map[memory.Scope]string
	locks map[memory.Scope]*sync.Mutex
}

// NewFileStore creates a store rooted at projectDir (session, project) and
// homeDir (user, global). The roots are injected so tests can isolate state.
func NewFileStore(projectDir, homeDir string) *FileStore {
	paths := map[memory.Scope]string{
		memory.ScopeSession: filepath.Join(projectDir, storeDirName, "session_memory.json"),
		memory.ScopeProject: filepath.Join(projectDir, storeDirName, "project_memory.json"),
		memory.ScopeUser:    filepath.Join(homeDir, storeDirName, "user_memory.json"),
		memory.ScopeGlobal:  filepath.Join(homeDir, storeDirName, "global_memory.json"),
	}
	locks := make(map[memory.Scope]*sync.Mutex, len(paths))
	for scope := range paths {
		locks[scope] = &sync.Mutex{}
	}
	return &FileStore{paths: paths, locks: locks}
}

// Remember upserts a record into the scope's document.
func (s *FileStore) Remember(ctx context.Context, key, content string, scope memory.Scope, tags ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !scope.Valid() {
		return fmt.Errorf("%w: %s", memory.ErrInvalidScope, scope)
	}

	s.locks[scope].Lock()
	defer s.locks[scope].Unlock()

	records, err := s.load(scope)
	if err != nil {
		return err
	}
	if tags == nil {
		tags = []string{}
	}
	records[key] = memory.Record{
		Content:   content,
		Source:    "user_memory_" + string(scope),
		Priority:  1,
		Scope:     scope,
		Tags:      tags,
		Timestamp: time.Now(),
	}
	return s.save(scope, records)
}

// Recall returns the first record found for key across the given scopes, or
// the fixed search order when none are given.
func (s *FileStore) Recall(ctx context.Context, key string, scopes ...memory.Scope) (memory.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return memory.Record{}, false, err
	}
	for _, scope := range scopeList(scopes) {
		if !scope.Valid() {
			return memory.Record{}, false, fmt.Errorf("%w: %s", memory.ErrInvalidScope, scope)
		}
		s.locks[scope].Lock()
		records, err := s.load(scope)
		s.locks[scope].Unlock()
		if err != nil {
			return memory.Record{}, false, err
		}
		if rec, ok := records[key]; ok {
			return rec, true, nil
		}
	}
	return memory.Record{}, false, nil
}

// Search matches query case-insensitively against record content and tags.
func (s *FileStore) Search(ctx context.Context, query string, scopes ...memory.Scope) ([]memory.SearchHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	var hits []memory.SearchHit

	for _, scope := range scopeList(scopes) {
		s.locks[scope].Lock()
		records, err := s.load(scope)
		s.locks[scope].Unlock()
		if err != nil {
			return nil, err
		}
		for _, key := range sortedKeys(records) {
			rec := records[key]
			if matches(rec, needle) {
				hits = append(hits, memory.SearchHit{
					Key:     key,
					Scope:   scope,
					Content: memory.TruncateContent(rec.Content),
					Tags:    rec.Tags,
				})
			}
		}
	}
	return hits, nil
}

// All returns every record grouped by scope. Scopes with no records are
// omitted.
func (s *FileStore) All(ctx context.Context, scopes ...memory.Scope) (map[memory.Scope]map[string]memory.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[memory.Scope]map[string]memory.Record)
	for _, scope := range scopeList(scopes) {
		s.locks[scope].Lock()
		records, err := s.load(scope)
		s.locks[scope].Unlock()
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			out[scope] = records
		}
	}
	return out, nil
}

// Clear empties exactly that scope's document.
func (s *FileStore) Clear(ctx context.Context, scope memory.Scope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !scope.Valid() {
		return fmt.Errorf("%w: %s", memory.ErrInvalidScope, scope)
	}
	s.locks[scope].Lock()
	defer s.locks[scope].Unlock()
	return s.save(scope, map[string]memory.Record{})
}

func (s *FileStore) load(scope memory.Scope) (map[string]memory.Record, error) {
	data, err := os.ReadFile(s.paths[scope])
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]memory.Record), nil
		}
		return nil, fmt.Errorf("read %s memory: %w", scope, err)
	}
	records := make(map[string]memory.Record)
	if err := json.Unmarshal(data, &records); err != nil {
		// A corrupt scope file is treated as empty rather than fatal.
		return make(map[string]memory.Record), nil
	}
	return records, nil
}

func (s *FileStore) save(scope memory.Scope, records map[string]memory.Record) error {
	path := s.paths[scope]
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create memory dir: %w", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s memory: %w", scope, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".memory-*")
	if err != nil {
		return fmt.Errorf("write %s memory: %w", scope, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s memory: %w", scope, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s memory: %w", scope, err)
	}
	return os.Rename(tmp.Name(), path)
}

func scopeList(scopes []memory.Scope) []memory.Scope {
	if len(scopes) == 0 {
		return memory.SearchOrder()
	}
	return scopes
}

func sortedKeys(records map[string]memory.Record) []string {
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func matches(rec memory.Record, needle string) bool {
	if strings.Contains(strings.ToLower(rec.Content), needle) {
		return true
	}
	for _, tag := range rec.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

var _ memory.Store = (*FileStore)(nil)
