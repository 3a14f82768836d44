package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/timeclock/internal/core/domain"
	"github.com/99minutos/timeclock/internal/core/ports"
)

const testUser = "user-1"

func newClockSvc(t *testing.T, store *memStore, clock *fakeClock, opts ...ClockOption) *ClockService {
	t.Helper()
	opts = append([]ClockOption{WithNow(clock.Now)}, opts...)
	svc := NewClockService(store, store, store, zerolog.Nop(), opts...)
	_, err := svc.CreateUserProfile(context.Background(), testUser)
	require.NoError(t, err)
	return svc
}

func TestClockService_CreateUserProfile_SecondCallErrors(t *testing.T) {
	store := newMemStore()
	svc := newClockSvc(t, store, newFakeClock(mustTime("2024-01-01T08:00:00Z")))

	_, err := svc.CreateUserProfile(context.Background(), testUser)
	require.ErrorIs(t, err, domain.ErrProfileExists)
	assert.Len(t, store.statuses, 1)

	status := store.status(testUser)
	assert.False(t, status.Active)
	assert.Nil(t, status.ClockedIn)
}

func TestClockService_ClockIn_Success(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock(mustTime("2024-01-01T09:00:00.750Z"))
	svc := newClockSvc(t, store, clock)

	res, err := svc.ClockIn(context.Background(), testUser)
	require.NoError(t, err)
	require.NotNil(t, res.Status.ClockedIn)

	assert.True(t, res.Status.Active)
	assert.Equal(t, mustTime("2024-01-01T09:00:00Z"), *res.Status.ClockedIn)
	assert.Nil(t, res.Status.ClockedOut)
	assert.Nil(t, res.Shift)
	assert.True(t, store.status(testUser).Active)
}

func TestClockService_ClockIn_WhileActive(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock(mustTime("2024-01-01T09:00:00Z"))
	svc := newClockSvc(t, store, clock)

	_, err := svc.ClockIn(context.Background(), testUser)
	require.NoError(t, err)
	before := store.status(testUser)

	clock.Set(mustTime("2024-01-01T10:00:00Z"))
	_, err = svc.ClockIn(context.Background(), testUser)
	require.ErrorIs(t, err, domain.ErrAlreadyClockedIn)

	assert.Equal(t, before, store.status(testUser))
}

func TestClockService_ClockOut_WhileIdle(t *testing.T) {
	store := newMemStore()
	svc := newClockSvc(t, store, newFakeClock(mustTime("2024-01-01T09:00:00Z")))
	before := store.status(testUser)

	_, err := svc.ClockOut(context.Background(), testUser)
	require.ErrorIs(t, err, domain.ErrNotClockedIn)

	assert.Equal(t, before, store.status(testUser))
	assert.Zero(t, store.shiftCount())
}

func TestClockService_ClockOut_AppendsOneShift(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock(mustTime("2024-01-01T09:00:00Z"))
	svc := newClockSvc(t, store, clock)

	_, err := svc.ClockIn(context.Background(), testUser)
	require.NoError(t, err)

	clock.Set(mustTime("2024-01-01T17:00:00Z"))
	res, err := svc.ClockOut(context.Background(), testUser)
	require.NoError(t, err)

	assert.False(t, res.Status.Active)
	require.NotNil(t, res.Status.ClockedOut)
	assert.Equal(t, mustTime("2024-01-01T17:00:00Z"), *res.Status.ClockedOut)

	require.Equal(t, 1, store.shiftCount())
	shift := store.shifts[0]
	assert.Equal(t, testUser, shift.UserID)
	assert.Equal(t, mustTime("2024-01-01T09:00:00Z"), shift.Start)
	assert.Equal(t, int64(28800), shift.DurationSeconds)
	assert.Equal(t, int64(8), shift.RoundedHours())
	assert.NotEmpty(t, shift.ID)
	assert.Equal(t, shift, *res.Shift)
}

func TestClockService_ClockOut_TruncatesAtCapture(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock(mustTime("2024-01-01T09:00:00.900Z"))
	svc := newClockSvc(t, store, clock)

	_, err := svc.ClockIn(context.Background(), testUser)
	require.NoError(t, err)

	clock.Set(mustTime("2024-01-01T09:00:10.100Z"))
	res, err := svc.ClockOut(context.Background(), testUser)
	require.NoError(t, err)

	assert.Equal(t, int64(10), res.Shift.DurationSeconds)
}

func TestClockService_ClockOut_NegativeDurationIsIntegrityFault(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock(mustTime("2024-01-01T09:00:00Z"))
	svc := newClockSvc(t, store, clock)

	_, err := svc.ClockIn(context.Background(), testUser)
	require.NoError(t, err)
	before := store.status(testUser)

	clock.Set(mustTime("2024-01-01T08:59:00Z"))
	_, err = svc.ClockOut(context.Background(), testUser)
	require.ErrorIs(t, err, domain.ErrDataIntegrity)

	assert.Equal(t, before, store.status(testUser))
	assert.Zero(t, store.shiftCount())
}

func TestClockService_ClockOut_AppendFailureRollsBack(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock(mustTime("2024-01-01T09:00:00Z"))
	svc := newClockSvc(t, store, clock)

	_, err := svc.ClockIn(context.Background(), testUser)
	require.NoError(t, err)
	before := store.status(testUser)

	store.appendErr = errors.New("disk full")
	clock.Set(mustTime("2024-01-01T12:00:00Z"))
	_, err = svc.ClockOut(context.Background(), testUser)
	require.ErrorIs(t, err, domain.ErrStorage)

	assert.Equal(t, before, store.status(testUser), "status flip must not survive a failed append")
	assert.Zero(t, store.shiftCount())
}

func TestClockService_UnknownUser(t *testing.T) {
	store := newMemStore()
	svc := newClockSvc(t, store, newFakeClock(mustTime("2024-01-01T09:00:00Z")))

	_, err := svc.ClockIn(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)

	_, err = svc.ClockOut(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)

	_, err = svc.CurrentStatus(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestClockService_CurrentStatus(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock(mustTime("2024-01-01T09:00:00Z"))
	svc := newClockSvc(t, store, clock)

	_, err := svc.CurrentStatus(context.Background(), testUser)
	require.ErrorIs(t, err, domain.ErrNoActiveSession)

	_, err = svc.ClockIn(context.Background(), testUser)
	require.NoError(t, err)

	status, err := svc.CurrentStatus(context.Background(), testUser)
	require.NoError(t, err)
	assert.True(t, status.Active)
	assert.Equal(t, mustTime("2024-01-01T09:00:00Z"), *status.ClockedIn)

	clock.Set(mustTime("2024-01-01T10:00:00Z"))
	_, err = svc.ClockOut(context.Background(), testUser)
	require.NoError(t, err)

	_, err = svc.CurrentStatus(context.Background(), testUser)
	assert.ErrorIs(t, err, domain.ErrNoActiveSession)
}

func TestClockService_ClockInAfterClockOut_ClearsClockedOut(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock(mustTime("2024-01-01T09:00:00Z"))
	svc := newClockSvc(t, store, clock)

	_, err := svc.ClockIn(context.Background(), testUser)
	require.NoError(t, err)
	clock.Set(mustTime("2024-01-01T10:00:00Z"))
	_, err = svc.ClockOut(context.Background(), testUser)
	require.NoError(t, err)

	clock.Set(mustTime("2024-01-01T11:00:00Z"))
	res, err := svc.ClockIn(context.Background(), testUser)
	require.NoError(t, err)
	assert.Nil(t, res.Status.ClockedOut)
	assert.Equal(t, int64(3), res.Status.Version)
}

func TestClockService_ReClockInWithinSameSecond(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock(mustTime("2024-01-01T09:00:00Z"))
	svc := newClockSvc(t, store, clock)
	ctx := context.Background()

	_, err := svc.ClockIn(ctx, testUser)
	require.NoError(t, err)
	_, err = svc.ClockOut(ctx, testUser)
	require.NoError(t, err)

	clock.Set(mustTime("2024-01-01T09:00:00.900Z"))
	_, err = svc.ClockIn(ctx, testUser)
	require.ErrorIs(t, err, domain.ErrClockInTooSoon)
	assert.False(t, store.status(testUser).Active)

	// The user is not stuck: the next second opens and closes a shift normally.
	clock.Set(mustTime("2024-01-01T09:00:01Z"))
	_, err = svc.ClockIn(ctx, testUser)
	require.NoError(t, err)
	clock.Set(mustTime("2024-01-01T10:00:00Z"))
	res, err := svc.ClockOut(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, mustTime("2024-01-01T09:00:01Z"), res.Shift.Start)
	assert.Equal(t, 2, store.shiftCount())
}

func TestClockService_RetriesAfterVersionConflict(t *testing.T) {
	store := newMemStore()
	svc := newClockSvc(t, store, newFakeClock(mustTime("2024-01-01T09:00:00Z")))

	store.conflicts = 1
	res, err := svc.ClockIn(context.Background(), testUser)
	require.NoError(t, err)
	assert.True(t, res.Status.Active)
	assert.Equal(t, 2, store.saves)
}

func TestClockService_GivesUpAfterRepeatedConflicts(t *testing.T) {
	store := newMemStore()
	svc := newClockSvc(t, store, newFakeClock(mustTime("2024-01-01T09:00:00Z")))

	store.conflicts = maxSaveAttempts
	_, err := svc.ClockIn(context.Background(), testUser)
	require.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.False(t, store.status(testUser).Active)
}

func TestClockService_ConcurrentClockOut_ExactlyOneWins(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock(mustTime("2024-01-01T09:00:00Z"))
	svc := NewClockService(store, store, noTx{}, zerolog.Nop(), WithNow(clock.Now))
	_, err := svc.CreateUserProfile(context.Background(), testUser)
	require.NoError(t, err)
	_, err = svc.ClockIn(context.Background(), testUser)
	require.NoError(t, err)
	clock.Set(mustTime("2024-01-01T17:00:00Z"))

	const callers = 8
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, callers)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.ClockOut(context.Background(), testUser)
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, notClockedIn int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrNotClockedIn):
			notClockedIn++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, callers-1, notClockedIn)
	assert.Equal(t, 1, store.shiftCount())
}

func TestClockService_ClockOut_InvalidatesCacheAndAudits(t *testing.T) {
	store := newMemStore()
	clock := newFakeClock(mustTime("2024-01-01T09:00:00Z"))
	cache := newStubCache()
	events := &stubEvents{}
	svc := newClockSvc(t, store, clock, WithHoursCache(cache), WithEventRepository(events))

	ctx := ports.WithRequestID(context.Background(), "req-42")
	_, err := svc.ClockIn(ctx, testUser)
	require.NoError(t, err)
	clock.Set(mustTime("2024-01-01T10:00:00Z"))
	_, err = svc.ClockOut(ctx, testUser)
	require.NoError(t, err)

	assert.Equal(t, []string{testUser}, cache.invalidated)
	require.Len(t, events.events, 2)
	assert.Equal(t, domain.ActionClockIn, events.events[0].Action)
	assert.Equal(t, domain.ActionClockOut, events.events[1].Action)
	assert.Equal(t, "req-42", events.events[1].RequestID)
	assert.Equal(t, mustTime("2024-01-01T10:00:00Z"), events.events[1].At)
}

func TestClockService_AuditFailureIsNotFatal(t *testing.T) {
	store := newMemStore()
	events := &stubEvents{err: errors.New("audit down")}
	svc := newClockSvc(t, store, newFakeClock(mustTime("2024-01-01T09:00:00Z")), WithEventRepository(events))

	_, err := svc.ClockIn(context.Background(), testUser)
	require.NoError(t, err)
	assert.True(t, store.status(testUser).Active)
}

func TestClockService_RejectedTransitionsSkipSideEffects(t *testing.T) {
	store := newMemStore()
	cache := newStubCache()
	events := &stubEvents{}
	svc := newClockSvc(t, store, newFakeClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)),
		WithHoursCache(cache), WithEventRepository(events))

	_, err := svc.ClockOut(context.Background(), testUser)
	require.ErrorIs(t, err, domain.ErrNotClockedIn)
	assert.Empty(t, cache.invalidated)
	assert.Empty(t, events.events)
}
