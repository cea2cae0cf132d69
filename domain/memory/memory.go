// Package memory provides the domain model for the scoped key-value memory.
package memory

import (
	"context"
	"errors"
	"time"
)

// Scope is one of four independent partitions of the memory store.
type Scope string

const (
	ScopeSession Scope = "session"
	ScopeProject Scope = "project"
	ScopeUser    Scope = "user"
	ScopeGlobal  Scope = "global"
)

// SearchOrder is the fixed scope order used when no scope is given:
// narrowest lifetime first.
func SearchOrder() []Scope {
	return []Scope{ScopeSession, ScopeProject, ScopeUser, ScopeGlobal}
}

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	switch s {
	case ScopeSession, ScopeProject, ScopeUser, ScopeGlobal:
		return true
	}
	return false
}

// Record is a single memory entry. Records are created or overwritten by
// Remember and removed only by clearing an entire scope.
type Record struct {
	Content   string    `json:"content"`
	Source    string    `json:"source"`
	Priority  int       `json:"priority"`
	Scope     Scope     `json:"scope"`
	Tags      []string  `json:"tags"`
	Timestamp time.Time `json:"timestamp"`
}

// SearchHit is one match returned by Search. Content is truncated to
// PreviewLimit characters with an ellipsis marker when longer.
type SearchHit struct {
	Key     string   `json:"key"`
	Scope   Scope    `json:"scope"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// PreviewLimit is the maximum content length returned in a SearchHit.
const PreviewLimit = 200

// Store is the scoped persistent key-value store. Scopes are independent: a
// key in one scope never shadows the same key in another except through the
// fixed SearchOrder used by Recall.
type Store interface {
	// Remember upserts a record, overwriting any existing record with the
	// same key in that scope.
	Remember(ctx context.Context, key, content string, scope Scope, tags ...string) error

	// Recall looks up a key. With scopes given it searches only those, in
	// order; with none it searches SearchOrder and returns the first hit.
	Recall(ctx context.Context, key string, scopes ...Scope) (Record, bool, error)

	// Search matches query case-insensitively against content or any tag
	// across the requested scopes (or all four if none given).
	Search(ctx context.Context, query string, scopes ...Scope) ([]SearchHit, error)

	// All returns every record grouped by scope.
	All(ctx context.Context, scopes ...Scope) (map[Scope]map[string]Record, error)

	// Clear empties exactly that scope, leaving the other three untouched.
	Clear(ctx context.Context, scope Scope) error
}

// ErrInvalidScope indicates an unknown scope name.
var ErrInvalidScope = errors.New("invalid memory scope")

// TruncateContent applies the search preview limit to content.
func TruncateContent(content string) string {
	if len(content) <= PreviewLimit {
		return content
	}
	return content[:PreviewLimit] + "..."
}
