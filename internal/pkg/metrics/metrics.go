// Package metrics holds the domain Prometheus collectors for parcels, the
// ledger and notifications. Collectors are registered on the default registry
// when the package loads; HTTP request metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "courier"

// ── Parcel metrics ────────────────────────────────────────────────────────────

// ParcelsCreatedTotal counts newly created parcels.
var ParcelsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "parcels_created_total",
		Help:      "Total number of parcels created.",
	},
)

// ParcelTransitionsTotal counts committed status transitions.
// Label:
//   - status: the status the parcel entered
var ParcelTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "parcel_transitions_total",
		Help:      "Total number of parcel status transitions, by target status.",
	},
	[]string{"status"},
)

// OrphanedParcelsRepairedTotal counts parcels whose missing delivery fee was posted by reconciliation.
var OrphanedParcelsRepairedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orphaned_parcels_repaired_total",
		Help:      "Total number of parcels repaired by the ledger reconciliation pass.",
	},
)

// ── Ledger metrics ────────────────────────────────────────────────────────────

// LedgerEntriesTotal counts appended ledger entries.
// Label:
//   - type: delivery_fee, withdrawal, bonus or penalty
var LedgerEntriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_entries_total",
		Help:      "Total number of ledger entries appended, by type.",
	},
	[]string{"type"},
)

// WalletDivergenceTotal counts cached wallets found to disagree with the ledger.
var WalletDivergenceTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wallet_cache_divergence_total",
		Help:      "Total number of cached wallet balances that disagreed with the ledger.",
	},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// SMSDispatchTotal counts gateway calls.
// Labels:
//   - provider: "mock" or "africastalking"
//   - result: "ok" or "error"
var SMSDispatchTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sms_dispatch_total",
		Help:      "Total number of SMS gateway calls, by provider and result.",
	},
	[]string{"provider", "result"},
)

// NotificationsDedupTotal counts deduplication decisions.
// Label:
//   - result: "hit" (already notified, skipped) or "miss" (sent)
var NotificationsDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dedup_total",
		Help:      "Total number of notification deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// EventsQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of lifecycle events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EventHandlingDuration measures how long a lifecycle event takes to handle.
// Label:
//   - status: the parcel status of the event, or "error" on failure
var EventHandlingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_handling_duration_seconds",
		Help:      "Duration of lifecycle event handling, from dequeue to gateway response.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"status"},
)
