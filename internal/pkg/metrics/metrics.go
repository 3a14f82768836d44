// Package metrics defines and registers all custom Prometheus metrics for the
// timeclock API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "timeclock"

// ── Clock metrics ─────────────────────────────────────────────────────────────

// ClockTransitionsTotal counts clock commands by outcome.
// Labels:
//   - action: "clock_in" or "clock_out"
//   - result: "ok", "already_clocked_in", "not_clocked_in", "too_soon", "conflict", "cancelled" or "error"
var ClockTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clock_transitions_total",
		Help:      "Total number of clock-in/clock-out commands, labelled by outcome.",
	},
	[]string{"action", "result"},
)

// ClockCommandDuration measures a clock command from dequeue to commit.
var ClockCommandDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "clock_command_duration_seconds",
		Help:      "Duration of clock command processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"action"},
)

// ClockQueueDepth tracks the commands waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ClockQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "clock_queue_depth",
		Help:      "Current number of clock commands pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Shift metrics ─────────────────────────────────────────────────────────────

// ShiftsRecordedTotal counts shift records appended to the ledger.
var ShiftsRecordedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shifts_recorded_total",
		Help:      "Total number of completed shifts appended to the ledger.",
	},
)

// ShiftDurationSeconds observes the length of completed shifts.
var ShiftDurationSeconds = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "shift_duration_seconds",
		Help:      "Duration of completed shifts.",
		Buckets:   []float64{900, 1800, 3600, 2 * 3600, 4 * 3600, 6 * 3600, 8 * 3600, 10 * 3600, 12 * 3600},
	},
)

// ── Hours metrics ─────────────────────────────────────────────────────────────

// HoursCacheTotal counts hours cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var HoursCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "hours_cache_total",
		Help:      "Total number of hours cache lookups, labelled by result.",
	},
	[]string{"result"},
)
