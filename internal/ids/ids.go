// Package ids mints the ULIDs carried by notifications and activity events.
package ids

import (
	crand "crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Source mints ULIDs that sort in minting order, including ids minted within
// the same millisecond.
type Source struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy *ulid.MonotonicEntropy
}

// NewSource reads randomness from seed and timestamps from now.
func NewSource(now func() time.Time, seed io.Reader) *Source {
	return &Source{now: now, entropy: ulid.Monotonic(seed, 0)}
}

// Next returns the next id.
func (s *Source) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}

var std = NewSource(time.Now, crand.Reader)

// Notification ids order the notification queue.
func Notification() string { return std.Next() }

// Event ids let consumers of the activity queue drop redeliveries.
func Event() string { return std.Next() }
