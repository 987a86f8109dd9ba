// Package stats tracks dispatch counters by message type, process-wide and
// per caller session.
//
// Counter mutation uses per-key atomic increments over sync.Map so unbounded
// concurrent dispatchers never serialize on a whole-structure lock. Snapshot
// reads return copies; callers never observe a partially updated map.
package stats

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// counterSet holds one counter map per message category. Each counter is an
// independent atomic; creating a missing counter races benignly through
// LoadOrStore.
type counterSet struct {
	queries       sync.Map // string -> *atomic.Int64
	commands      sync.Map // string -> *atomic.Int64
	notifications sync.Map // string -> *atomic.Int64
}

func (c *counterSet) increment(m *sync.Map, typeName string) {
	counter, ok := m.Load(typeName)
	if !ok {
		counter, _ = m.LoadOrStore(typeName, &atomic.Int64{})
	}
	counter.(*atomic.Int64).Add(1)
}

func snapshotMap(m *sync.Map) map[string]int64 {
	out := make(map[string]int64)
	m.Range(func(key, value interface{}) bool {
		out[key.(string)] = value.(*atomic.Int64).Load()
		return true
	})
	return out
}

// session is the per-caller counter set plus its activity timestamp.
type session struct {
	counterSet
	lastActivity atomic.Int64 // unix nanoseconds
}

// Snapshot is an immutable copy of one counter set.
type Snapshot struct {
	Queries       map[string]int64 `json:"queries"`
	Commands      map[string]int64 `json:"commands"`
	Notifications map[string]int64 `json:"notifications"`
}

// Total returns the sum of every counter in the snapshot.
func (s Snapshot) Total() int64 {
	var total int64
	for _, n := range s.Queries {
		total += n
	}
	for _, n := range s.Commands {
		total += n
	}
	for _, n := range s.Notifications {
		total += n
	}
	return total
}

// SessionSnapshot is an immutable copy of one session's counters.
type SessionSnapshot struct {
	SessionID    string    `json:"sessionId"`
	LastActivity time.Time `json:"lastActivity"`
	Snapshot
}

// Tracker counts dispatched messages globally and per session. Sessions are
// created lazily on first tracked call and removed by the cleanup sweep once
// idle past the caller's threshold; global counters live for the process
// lifetime.
type Tracker struct {
	global   counterSet
	sessions sync.Map // string -> *session
	logger   *slog.Logger
	now      func() time.Time
}

// TrackerOption configures the Tracker
type TrackerOption func(*Tracker)

// WithTrackerLogger sets the logger
func WithTrackerLogger(logger *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// WithClock sets the time source, used by tests
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		t.now = now
	}
}

// NewTracker creates a new tracker
func NewTracker(options ...TrackerOption) *Tracker {
	t := &Tracker{
		logger: slog.Default(),
		now:    time.Now,
	}

	for _, opt := range options {
		opt(t)
	}

	return t
}

// TrackQuery counts one query dispatch. The global counter is always
// incremented; the session counter only when sessionID is non-empty.
func (t *Tracker) TrackQuery(typeName, sessionID string) {
	t.global.increment(&t.global.queries, typeName)
	if s := t.session(sessionID); s != nil {
		s.increment(&s.queries, typeName)
	}
}

// TrackCommand counts one command dispatch.
func (t *Tracker) TrackCommand(typeName, sessionID string) {
	t.global.increment(&t.global.commands, typeName)
	if s := t.session(sessionID); s != nil {
		s.increment(&s.commands, typeName)
	}
}

// TrackNotification counts one notification publish.
func (t *Tracker) TrackNotification(typeName, sessionID string) {
	t.global.increment(&t.global.notifications, typeName)
	if s := t.session(sessionID); s != nil {
		s.increment(&s.notifications, typeName)
	}
}

// GlobalStatistics returns an immutable snapshot of the process-wide counters.
func (t *Tracker) GlobalStatistics() Snapshot {
	return Snapshot{
		Queries:       snapshotMap(&t.global.queries),
		Commands:      snapshotMap(&t.global.commands),
		Notifications: snapshotMap(&t.global.notifications),
	}
}

// SessionStatistics returns an immutable snapshot of one session's counters.
// The second return value is false when the session is unknown or already
// evicted.
func (t *Tracker) SessionStatistics(sessionID string) (SessionSnapshot, bool) {
	value, ok := t.sessions.Load(sessionID)
	if !ok {
		return SessionSnapshot{}, false
	}
	s := value.(*session)

	return SessionSnapshot{
		SessionID:    sessionID,
		LastActivity: time.Unix(0, s.lastActivity.Load()),
		Snapshot: Snapshot{
			Queries:       snapshotMap(&s.queries),
			Commands:      snapshotMap(&s.commands),
			Notifications: snapshotMap(&s.notifications),
		},
	}, true
}

// SessionCount returns the number of live sessions.
func (t *Tracker) SessionCount() int {
	count := 0
	t.sessions.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	return count
}

// SessionIDs returns the identifiers of every live session.
func (t *Tracker) SessionIDs() []string {
	var ids []string
	t.sessions.Range(func(key, _ interface{}) bool {
		ids = append(ids, key.(string))
		return true
	})
	return ids
}

// CleanupInactiveSessions removes every session whose last activity is
// strictly older than maxAge and returns the number removed. The scheduler
// collaborator calls this periodically; the tracker never schedules itself.
func (t *Tracker) CleanupInactiveSessions(maxAge time.Duration) int {
	cutoff := t.now().Add(-maxAge).UnixNano()
	removed := 0

	t.sessions.Range(func(key, value interface{}) bool {
		s := value.(*session)
		if s.lastActivity.Load() < cutoff {
			t.sessions.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		t.logger.Info("evicted inactive sessions", "count", removed, "maxAge", maxAge)
	}
	return removed
}

// session returns the live session for the id, creating it lazily, and
// refreshes its activity timestamp. Anonymous callers get nil.
func (t *Tracker) session(sessionID string) *session {
	if sessionID == "" {
		return nil
	}

	value, ok := t.sessions.Load(sessionID)
	if !ok {
		value, _ = t.sessions.LoadOrStore(sessionID, &session{})
	}
	s := value.(*session)
	s.lastActivity.Store(t.now().UnixNano())
	return s
}
