package spawn

import (
	"time"

	"github.com/google/uuid"
)

// TeleportLog remembers when the engine last teleported each online player.
type TeleportLog struct {
	now     func() time.Time
	entries map[uuid.UUID]time.Time
}

// NewTeleportLog uses now as its clock, or time.Now when nil.
func NewTeleportLog(now func() time.Time) *TeleportLog {
	if now == nil {
		now = time.Now
	}
	return &TeleportLog{now: now, entries: make(map[uuid.UUID]time.Time)}
}

func (l *TeleportLog) Record(id uuid.UUID) {
	l.entries[id] = l.now()
}

// Recent reports whether id was teleported less than window ago.
func (l *TeleportLog) Recent(id uuid.UUID, window time.Duration) bool {
	at, ok := l.entries[id]
	if !ok {
		return false
	}
	return l.now().Sub(at) < window
}

func (l *TeleportLog) Forget(id uuid.UUID) {
	delete(l.entries, id)
}

func (l *TeleportLog) Len() int { return len(l.entries) }
