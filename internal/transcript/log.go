package transcript

// Package transcript holds the in-memory conversation log for the active
// session. The log is append-only: entries are addressed by index, never
// removed or reordered, and the single mutation path besides Append is
// patching media references onto an existing entry.

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zadescoxp/Sahayak/internal/logger"
)

// ErrIndexInvalid is returned by Patch when the target index is out of
// bounds. The log never shrinks, so this indicates a sequencing bug in the
// caller rather than a benign race.
var ErrIndexInvalid = errors.New("transcript: index out of bounds")

// Log is the ordered message store. Safe for concurrent use.
type Log struct {
	mu       sync.Mutex
	messages []Message
}

// New returns an empty log.
func New() *Log {
	return &Log{}
}

// Append adds a message to the end of the log and returns its assigned
// index, which equals the log length before the call. It never fails.
func (l *Log) Append(msg Message) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	l.messages = append(l.messages, msg)
	return len(l.messages) - 1
}

// Patch merges the non-empty fields of p into the entry at index. An
// AudioRef, once set, is never overwritten; a duplicate patch is ignored.
func (l *Log) Patch(index int, p Patch) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.messages) {
		logger.L.Error("transcript patch targets nonexistent entry", "index", index, "len", len(l.messages))
		return fmt.Errorf("%w: %d (len %d)", ErrIndexInvalid, index, len(l.messages))
	}
	m := &l.messages[index]
	if p.AudioRef != "" && m.AudioRef == "" {
		m.AudioRef = p.AudioRef
	}
	if p.ImageRef != "" && m.ImageRef == "" {
		m.ImageRef = p.ImageRef
	}
	return nil
}

// Snapshot returns a point-in-time copy of all messages in append order.
func (l *Log) Snapshot() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len returns the current number of messages.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}
