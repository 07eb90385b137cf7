// Package zid generates unique, lexicographically sortable note identifiers
// from timestamps.
package zid

import (
	"fmt"
	"regexp"
	"sync"
	"time"
)

// DefaultFormat is the timestamp layout for ids: 20060102T150405.
const DefaultFormat = "20060102T150405"

// maxSeq bounds the same-second collision counter; the three-digit suffix
// keeps ids sortable, so the generator holds for the next second past it.
const maxSeq = 999

var idPattern = regexp.MustCompile(`^\d{8}T\d{6}(-\d{3})?$`)

// Valid reports whether s is a well-formed note id.
func Valid(s string) bool {
	return idPattern.MatchString(s)
}

// Generator produces timestamp ids. When several ids are requested within
// the same second, a zero-padded counter suffix keeps them distinct and
// still sortable. Safe for concurrent use.
type Generator struct {
	mu     sync.Mutex
	format string
	now    func() time.Time
	last   string
	seq    int
}

// New creates a Generator with the given timestamp layout.
// An empty format falls back to DefaultFormat.
func New(format string) *Generator {
	if format == "" {
		format = DefaultFormat
	}
	return &Generator{format: format, now: time.Now}
}

// Generate returns the next id. exists is consulted so that an id already
// present in the file store is never handed out twice; a collision is a
// retried local condition, not an error.
func (g *Generator) Generate(exists func(id string) bool) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	for {
		base := g.now().Format(g.format)
		if base != g.last {
			g.last = base
			g.seq = 0
		}
		if g.seq > maxSeq {
			// Suffix space for this second is spent; wait out the clock so
			// ids stay well-formed and sortable.
			continue
		}

		id := base
		if g.seq > 0 {
			id = fmt.Sprintf("%s-%03d", base, g.seq)
		}
		g.seq++

		if exists != nil && exists(id) {
			continue
		}
		return id
	}
}
