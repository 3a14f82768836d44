package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/timeclock/internal/core/domain"
	"github.com/99minutos/timeclock/internal/core/ports"
	"github.com/99minutos/timeclock/internal/pkg/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// ErrDispatcherStopped is returned for commands submitted after shutdown.
var ErrDispatcherStopped = errors.New("clock dispatcher stopped")

type commandResult struct {
	result *ports.ClockResult
	err    error
}

type clockCommand struct {
	ctx    context.Context
	userID string
	action domain.ClockAction
	reply  chan commandResult
}

// Dispatcher routes clock commands to a fixed set of workers using consistent
// hashing on the user ID. Every user maps to exactly one worker, so a user's
// transitions run one at a time and in arrival order.
type Dispatcher struct {
	workers []chan clockCommand
	service ports.ClockCommander
	log     zerolog.Logger
	done    chan struct{}
	wg      sync.WaitGroup
}

var _ ports.ClockCommander = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.ClockCommander, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan clockCommand, numWorkers),
		service: service,
		log:     log,
		done:    make(chan struct{}),
	}
	for i := range d.workers {
		d.workers[i] = make(chan clockCommand, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled;
// Wait blocks until they have returned.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
	go func() {
		<-ctx.Done()
		close(d.done)
	}()
}

// Wait blocks until every worker has exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// ClockIn submits a clock-in for userID and waits for its outcome.
func (d *Dispatcher) ClockIn(ctx context.Context, userID string) (*ports.ClockResult, error) {
	return d.submit(ctx, userID, domain.ActionClockIn)
}

// ClockOut submits a clock-out for userID and waits for its outcome.
func (d *Dispatcher) ClockOut(ctx context.Context, userID string) (*ports.ClockResult, error) {
	return d.submit(ctx, userID, domain.ActionClockOut)
}

func (d *Dispatcher) submit(ctx context.Context, userID string, action domain.ClockAction) (*ports.ClockResult, error) {
	cmd := clockCommand{
		ctx:    ctx,
		userID: userID,
		action: action,
		reply:  make(chan commandResult, 1),
	}

	idx := d.shardIndex(userID)
	select {
	case d.workers[idx] <- cmd:
		metrics.ClockQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-d.done:
		return nil, ErrDispatcherStopped
	}

	// The worker checks cmd.ctx before running, and the service aborts its
	// transaction on a cancelled context, so giving up here never leaves a
	// half-applied transition.
	select {
	case res := <-cmd.reply:
		return res.result, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-d.done:
		return nil, ErrDispatcherStopped
	}
}

// shardIndex maps a user ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan clockCommand) {
	defer d.wg.Done()
	workerID := strconv.Itoa(id)
	d.log.Debug().Int("worker_id", id).Msg("clock worker started")
	for {
		select {
		case <-ctx.Done():
			d.log.Debug().Int("worker_id", id).Msg("clock worker stopped")
			return
		case cmd, ok := <-ch:
			if !ok {
				return
			}
			metrics.ClockQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
			cmd.reply <- d.execute(cmd)
		}
	}
}

// execute runs one command and records its metrics. Failures are logged by
// the service, which has the transition context.
func (d *Dispatcher) execute(cmd clockCommand) commandResult {
	if err := cmd.ctx.Err(); err != nil {
		return commandResult{err: err}
	}

	start := time.Now()
	var (
		res *ports.ClockResult
		err error
	)
	switch cmd.action {
	case domain.ActionClockIn:
		res, err = d.service.ClockIn(cmd.ctx, cmd.userID)
	case domain.ActionClockOut:
		res, err = d.service.ClockOut(cmd.ctx, cmd.userID)
	default:
		err = errors.New("unknown clock action " + string(cmd.action))
	}

	action := string(cmd.action)
	metrics.ClockCommandDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
	metrics.ClockTransitionsTotal.WithLabelValues(action, outcome(err)).Inc()

	if err == nil && res != nil && res.Shift != nil {
		metrics.ShiftsRecordedTotal.Inc()
		metrics.ShiftDurationSeconds.Observe(float64(res.Shift.DurationSeconds))
	}
	return commandResult{result: res, err: err}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrAlreadyClockedIn):
		return "already_clocked_in"
	case errors.Is(err, domain.ErrNotClockedIn):
		return "not_clocked_in"
	case errors.Is(err, domain.ErrClockInTooSoon):
		return "too_soon"
	case errors.Is(err, domain.ErrVersionConflict):
		return "conflict"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
