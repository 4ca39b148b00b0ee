// Package engagement holds the client-side state for reviews, replies and
// likes on a recommendation: paged comment collections, optimistic writes
// with rollback, and the shared like cache.
//
// Nothing in this package is safe for concurrent use except Cache and
// Allocator. Everything else is owned by the UI event loop; remote work is
// handed out as Task values and settled back on the loop.
package engagement

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// IDKind tells server-assigned identifiers apart from client placeholders
type IDKind uint8

const (
	KindServer IDKind = iota
	KindLocal
)

// ID identifies a comment or a recommendation. The zero value means "none".
type ID struct {
	Kind IDKind
	N    int64
}

// ServerID wraps an identifier returned by the server
func ServerID(n int64) ID {
	return ID{Kind: KindServer, N: n}
}

// LocalID wraps a client placeholder. Only the Allocator should mint these.
func LocalID(n int64) ID {
	return ID{Kind: KindLocal, N: n}
}

// ParseID parses a server identifier as typed by a user or read from JSON
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return ID{}, fmt.Errorf("invalid id %q", s)
	}
	return ServerID(n), nil
}

func (id ID) IsZero() bool {
	return id.N == 0
}

// IsLocal reports whether the id is a placeholder not yet confirmed by the server
func (id ID) IsLocal() bool {
	return id.Kind == KindLocal && id.N != 0
}

// IsServer reports whether the id is authoritative
func (id ID) IsServer() bool {
	return id.Kind == KindServer && id.N > 0
}

func (id ID) String() string {
	if id.IsLocal() {
		return "local-" + strconv.FormatInt(id.N, 10)
	}
	return strconv.FormatInt(id.N, 10)
}

// Allocator hands out local identifiers for optimistically created entities.
// Every allocated id is greater than all previously allocated ones and than
// every server id passed to Observe.
type Allocator struct {
	mu       sync.Mutex
	last     int64
	observed int64
}

// NewAllocator seeds the counter from the wall clock so ids stay unique
// across allocator instances within a session.
func NewAllocator() *Allocator {
	return &Allocator{last: time.Now().UnixMilli()}
}

// Observe records a server id seen in a response
func (a *Allocator) Observe(id ID) {
	if !id.IsServer() {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if id.N > a.observed {
		a.observed = id.N
	}
}

// Allocate returns a fresh local id
func (a *Allocator) Allocate() ID {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.last + 1
	if a.observed >= next {
		next = a.observed + 1
	}
	a.last = next
	return LocalID(next)
}
