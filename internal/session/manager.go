// Package session hosts many independent analysis sessions, each owning its
// own composer. Calls into one session are serialized.
package session

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/parley/internal/composer"
	"github.com/MikeSquared-Agency/parley/internal/errs"
	"github.com/MikeSquared-Agency/parley/internal/observe"
	"github.com/MikeSquared-Agency/parley/internal/patterns"
)

// Session is one writer's workspace.
type Session struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	mu       sync.Mutex
	composer *composer.Composer
}

// Do runs fn with exclusive access to the session's composer.
func (s *Session) Do(fn func(c *composer.Composer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.composer)
}

// Manager owns the open sessions. The pattern table is shared read-only by
// every session.
type Manager struct {
	table   *patterns.Table
	metrics *observe.Metrics
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewManager returns an empty manager. metrics may be nil.
func NewManager(table *patterns.Table, metrics *observe.Metrics, logger *slog.Logger) *Manager {
	if table == nil {
		table = patterns.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		table:    table,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Create opens a new session.
func (m *Manager) Create(ctx context.Context) *Session {
	s := &Session{
		ID:        uuid.New(),
		CreatedAt: m.now().UTC(),
	}
	s.composer = composer.New(
		composer.WithTable(m.table),
		composer.WithLogger(m.logger.With("session", s.ID.String())),
		composer.WithClock(m.now),
	)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.ActiveSessions.Add(ctx, 1)
	}
	m.logger.Info("session created", "session", s.ID.String())
	return s
}

// Get returns the session with id.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, errs.NotFound("session %s not found", id)
	}
	return s, nil
}

// Lookup parses a textual id and returns the session. A malformed id is a
// validation error.
func (m *Manager) Lookup(id string) (*Session, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, errs.Validation("invalid session id %q", id)
	}
	return m.Get(parsed)
}

// Delete closes the session with id.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return errs.NotFound("session %s not found", id)
	}

	if m.metrics != nil {
		m.metrics.ActiveSessions.Add(ctx, -1)
	}
	m.logger.Info("session closed", "session", id.String())
	return nil
}

// IDs returns the open session ids in creation order.
func (m *Manager) IDs() []uuid.UUID {
	m.mu.RLock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.RUnlock()

	slices.SortFunc(all, func(a, b *Session) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	ids := make([]uuid.UUID, len(all))
	for i, s := range all {
		ids[i] = s.ID
	}
	return ids
}

// Len is the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Analyze runs one line through the session's composer and records metrics.
func (m *Manager) Analyze(ctx context.Context, s *Session, speaker, text, note string) (composer.AnalysisResult, error) {
	return m.AnalyzeWith(ctx, s, nil, speaker, text, note)
}

// AnalyzeWith is Analyze with prepare run first under the same session lock.
// If prepare fails the line is not analyzed. prepare must leave the composer
// untouched when it returns an error.
func (m *Manager) AnalyzeWith(ctx context.Context, s *Session, prepare func(c *composer.Composer) error, speaker, text, note string) (composer.AnalysisResult, error) {
	var res composer.AnalysisResult
	start := time.Now()
	err := s.Do(func(c *composer.Composer) error {
		if prepare != nil {
			if err := prepare(c); err != nil {
				return err
			}
		}
		var err error
		res, err = c.AnalyzeDialogueLine(speaker, text, note)
		return err
	})
	if err != nil {
		return composer.AnalysisResult{}, err
	}
	if m.metrics != nil {
		m.metrics.RecordAnalysis(ctx, res.EmotionalTone, res.ClichesDetected, time.Since(start).Seconds())
	}
	return res, nil
}

// Report exports the session's analysis report.
func (m *Manager) Report(s *Session) composer.Report {
	var rep composer.Report
	_ = s.Do(func(c *composer.Composer) error {
		rep = c.ExportAnalysisReport()
		return nil
	})
	return rep
}
