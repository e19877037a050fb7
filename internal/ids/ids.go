// Package ids generates the opaque identifiers shared by every collection.
package ids

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator produces unique, never-reused identifiers.
type Generator interface {
	Next() string
}

// Func adapts a plain function to Generator.
type Func func() string

func (f Func) Next() string { return f() }

// ULID generates lexically sortable ids: a millisecond timestamp followed by
// 80 random bits. Ids minted within the same millisecond stay ordered.
type ULID struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// NewULID returns a generator seeded from crypto/rand.
func NewULID() *ULID {
	return &ULID{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

func (g *ULID) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy).String()
}
