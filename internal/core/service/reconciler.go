package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/courierpwa/courier-ops/internal/core/domain"
	"github.com/courierpwa/courier-ops/internal/core/ports"
	"github.com/courierpwa/courier-ops/internal/pkg/metrics"
)

const reconcileBatch = 100

// Reconciler posts delivery fees for parcels whose ledger write failed after the
// parcel was stored.
type Reconciler struct {
	parcels      ports.ParcelRepository
	destinations ports.DestinationRepository
	ledger       ports.LedgerService
	logger       zerolog.Logger
	now          func() time.Time
}

func NewReconciler(parcels ports.ParcelRepository, destinations ports.DestinationRepository, ledger ports.LedgerService, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		parcels:      parcels,
		destinations: destinations,
		ledger:       ledger,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Run repairs every unposted parcel created more than olderThan ago and returns
// how many were repaired. Parcels that cannot be repaired are logged and left
// for the next pass.
func (r *Reconciler) Run(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := r.now().Add(-olderThan)
	repaired := 0
	skipped := make(map[string]struct{})

	for {
		batch, err := r.parcels.ListUnposted(ctx, cutoff, reconcileBatch+len(skipped))
		if err != nil {
			return repaired, domain.Storage("reconcile: list unposted", err)
		}

		progressed := false
		for _, p := range batch {
			if _, ok := skipped[p.ID]; ok {
				continue
			}
			if err := ctx.Err(); err != nil {
				return repaired, err
			}
			if err := r.repair(ctx, p); err != nil {
				r.logger.Error().Err(err).Str("parcel_id", p.ID).Msg("reconcile: parcel not repaired")
				skipped[p.ID] = struct{}{}
				continue
			}
			repaired++
			progressed = true
		}
		if !progressed || len(batch) < reconcileBatch+len(skipped) {
			break
		}
	}

	if repaired > 0 || len(skipped) > 0 {
		r.logger.Info().Int("repaired", repaired).Int("failed", len(skipped)).Msg("ledger reconciliation finished")
	}
	return repaired, nil
}

func (r *Reconciler) repair(ctx context.Context, p *domain.Parcel) error {
	dest, err := r.destinations.FindByID(ctx, p.DestinationID)
	if err != nil {
		return domain.Storage("reconcile: find destination", err)
	}
	entry, err := r.ledger.PostDeliveryFee(ctx, p, dest.BaseFee)
	if err != nil {
		return err
	}
	if err := r.parcels.MarkLedgerPosted(ctx, p.ID); err != nil {
		return domain.Storage("reconcile: mark posted", err)
	}
	metrics.OrphanedParcelsRepairedTotal.Inc()
	r.logger.Warn().
		Str("parcel_id", p.ID).
		Str("tracking_code", p.TrackingCode).
		Str("entry_id", entry.ID).
		Msg("orphaned parcel repaired")
	return nil
}

// Start runs a reconciliation pass every interval until ctx is cancelled.
// A non-positive interval disables the loop.
func (r *Reconciler) Start(ctx context.Context, interval, grace time.Duration) {
	if interval <= 0 {
		r.logger.Info().Msg("ledger reconciliation loop disabled")
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := r.Run(ctx, grace); err != nil && ctx.Err() == nil {
					r.logger.Error().Err(err).Msg("ledger reconciliation failed")
				}
			}
		}
	}()
}
