package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/99minutos/timeclock/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory clock store: statuses + ledger + transactor
// ---------------------------------------------------------------------------

type memStore struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	statuses map[string]*domain.ClockStatus
	shifts   []domain.ShiftRecord

	appendErr error // if set, Append returns this error
	getErr    error // if set, Get returns this error
	conflicts int   // number of upcoming Save calls forced to conflict
	saves     int
	queries   int
}

func newMemStore() *memStore {
	return &memStore{statuses: make(map[string]*domain.ClockStatus)}
}

func (m *memStore) Create(_ context.Context, s *domain.ClockStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.statuses[s.UserID]; ok {
		return domain.ErrProfileExists
	}
	m.statuses[s.UserID] = s.Clone()
	return nil
}

func (m *memStore) Get(_ context.Context, userID string) (*domain.ClockStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	s, ok := m.statuses[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return s.Clone(), nil
}

func (m *memStore) Save(_ context.Context, s *domain.ClockStatus, expected int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.conflicts > 0 {
		m.conflicts--
		return domain.ErrVersionConflict
	}
	stored, ok := m.statuses[s.UserID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	if stored.Version != expected {
		return domain.ErrVersionConflict
	}
	s.Version = expected + 1
	m.statuses[s.UserID] = s.Clone()
	return nil
}

func (m *memStore) Append(_ context.Context, r *domain.ShiftRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, m.appendErr)
	}
	m.shifts = append(m.shifts, *r)
	return nil
}

func (m *memStore) QueryByDateRange(_ context.Context, userID string, from, to time.Time) ([]domain.ShiftRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	var out []domain.ShiftRecord
	for _, r := range m.shifts {
		if r.UserID == userID && !r.Start.Before(from) && r.Start.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

// WithinTx serialises transactions and restores the previous state when fn
// fails, mirroring a real rollback.
func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	statuses := make(map[string]*domain.ClockStatus, len(m.statuses))
	for k, v := range m.statuses {
		statuses[k] = v.Clone()
	}
	shifts := append([]domain.ShiftRecord(nil), m.shifts...)
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.statuses = statuses
		m.shifts = shifts
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) status(userID string) *domain.ClockStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.statuses[userID]; ok {
		return s.Clone()
	}
	return nil
}

func (m *memStore) shiftCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.shifts)
}

// noTx runs fn without isolation, leaving concurrency control to the
// repository's version check.
type noTx struct{}

func (noTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ---------------------------------------------------------------------------
// Audit + cache stubs
// ---------------------------------------------------------------------------

type stubEvents struct {
	mu     sync.Mutex
	events []domain.ClockEvent
	err    error
}

func (s *stubEvents) InsertEvent(_ context.Context, e *domain.ClockEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, *e)
	return nil
}

type stubCache struct {
	entries     map[string]domain.ClockedHours
	invalidated []string
	getErr      error
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]domain.ClockedHours)}
}

func (c *stubCache) Get(_ context.Context, userID, field string) (*domain.ClockedHours, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	h, ok := c.entries[userID+":"+field]
	if !ok {
		return nil, false, nil
	}
	return &h, true, nil
}

func (c *stubCache) Set(_ context.Context, userID, field string, h domain.ClockedHours) error {
	c.entries[userID+":"+field] = h
	return nil
}

func (c *stubCache) Invalidate(_ context.Context, userID string) error {
	c.invalidated = append(c.invalidated, userID)
	return nil
}

// ---------------------------------------------------------------------------
// Clock
// ---------------------------------------------------------------------------

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		panic(err)
	}
	return t
}
