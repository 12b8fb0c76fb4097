// Package notify holds the per-session notification queue.  Entries are
// appended in call order, expire on their own after a fixed interval and
// can be dismissed by the user before that.
package notify

import (
	"sync"
	"time"

	"github.com/iliyamo/philharmonic-console/internal/ids"
)

// Level is the visual severity of a notification.
type Level string

const (
	Info    Level = "info"
	Success Level = "success"
	Error   Level = "error"
)

// DefaultTTL is the auto-dismiss interval.
const DefaultTTL = 5 * time.Second

// Notification is one entry of the queue.  Detail carries additional lines
// such as per-field validation messages.
type Notification struct {
	ID        string
	Level     Level
	Message   string
	Detail    []string
	ExpiresAt time.Time
}

// Notifier is what components need to surface a message to the user.
type Notifier interface {
	Notify(level Level, message string, detail ...string)
}

// Queue is safe for concurrent use.
type Queue struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items []Notification
}

// NewQueue returns a queue whose entries live for ttl (DefaultTTL when ttl
// is not positive).
func NewQueue(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{ttl: ttl, now: time.Now}
}

// Notify appends a notification.  Identical messages are not merged.
func (q *Queue) Notify(level Level, message string, detail ...string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, Notification{
		ID:        ids.Notification(),
		Level:     level,
		Message:   message,
		Detail:    append([]string(nil), detail...),
		ExpiresAt: q.now().Add(q.ttl),
	})
}

// Active drops expired entries and returns the remaining ones in insertion
// order.
func (q *Queue) Active() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	kept := q.items[:0]
	for _, n := range q.items {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	q.items = kept
	return append([]Notification(nil), kept...)
}

// Dismiss removes the notification with the given id.  It reports whether
// one was found.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
}
