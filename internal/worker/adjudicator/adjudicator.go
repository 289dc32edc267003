// Package adjudicator runs the background claims processor: it polls for
// pending claims one at a time, enriches them with catalog pricing, sends
// them to the assessment oracle and commits the verdict.
package adjudicator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhisverify/nhisverify/internal/domain/catalog"
	"github.com/nhisverify/nhisverify/internal/domain/claim"
	"github.com/nhisverify/nhisverify/internal/platform/httperr"
	"github.com/nhisverify/nhisverify/internal/platform/oracle"
)

// DefaultPollInterval matches the cadence the processor idles at when the
// queue is empty.
const DefaultPollInterval = 20 * time.Second

// CatalogLookup resolves drug and service codes against the pricing
// catalogs.
type CatalogLookup interface {
	GetMedicine(ctx context.Context, code string) (*catalog.Medicine, error)
	GetTariff(ctx context.Context, code string) (*catalog.ServiceTariff, error)
}

// Worker is the single-consumer claims processor. Run one per deployment:
// the pending queue is drained oldest first and each claim is committed
// before the next is picked up.
type Worker struct {
	claims   claim.Repository
	catalog  CatalogLookup
	assessor oracle.Assessor
	interval time.Duration
	log      zerolog.Logger
}

func New(claims claim.Repository, cat CatalogLookup, assessor oracle.Assessor, interval time.Duration, log zerolog.Logger) *Worker {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Worker{
		claims:   claims,
		catalog:  cat,
		assessor: assessor,
		interval: interval,
		log:      log.With().Str("component", "adjudicator").Logger(),
	}
}

// Run polls until the context is cancelled. Claims are processed back to
// back while the queue has work; the interval only paces an empty queue.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("claims processor started")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		for {
			processed, err := w.ProcessOne(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("claim processing failed, leaving claim pending")
				break
			}
			if !processed {
				break
			}
		}
		select {
		case <-ctx.Done():
			w.log.Info().Msg("claims processor stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ProcessOne takes the oldest pending claim through assessment and commits
// the verdict. It reports false when the queue is empty. An error is
// returned only when the commit itself failed; assessment failures fall
// back to a flagged verdict with a zero payout.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	c, err := w.claims.NextPending(ctx)
	if err != nil {
		if errors.Is(err, httperr.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	verdict := w.assess(ctx, c)

	status := strings.ToLower(verdict.Status)
	if err := w.claims.CommitVerdict(ctx, c.EncounterToken, status, verdict.FinalPayout, verdict.Reason); err != nil {
		return false, fmt.Errorf("commit verdict for %s: %w", c.EncounterToken, err)
	}
	if err := w.claims.BumpNotification(ctx, status); err != nil {
		// The verdict is already committed, so a counter failure is not
		// worth retrying the claim for.
		w.log.Warn().Err(err).Str("status", status).Msg("notification counter update failed")
	}

	w.log.Info().
		Str("encounter_token", c.EncounterToken).
		Str("status", status).
		Float64("total_payout", verdict.FinalPayout).
		Msg("claim adjudicated")
	return true, nil
}

// assess enriches and scores a claim. Every failure path collapses into the
// fallback verdict so a broken oracle can never wedge the queue.
func (w *Worker) assess(ctx context.Context, c *claim.Claim) oracle.Verdict {
	enriched, err := w.enrich(ctx, c)
	if err != nil {
		w.log.Error().Err(err).Str("encounter_token", c.EncounterToken).Msg("claim enrichment failed")
		return fallbackVerdict(err)
	}
	payload, err := json.Marshal(enriched)
	if err != nil {
		return fallbackVerdict(err)
	}

	verdict, err := w.assessor.Assess(ctx, payload)
	if err != nil {
		w.log.Error().Err(err).Str("encounter_token", c.EncounterToken).Msg("claim assessment failed")
		return fallbackVerdict(err)
	}
	if err := verdict.Validate(); err != nil {
		return fallbackVerdict(err)
	}
	return verdict
}

func fallbackVerdict(err error) oracle.Verdict {
	return oracle.Verdict{
		Status:      oracle.StatusFlagged,
		FinalPayout: 0,
		Reason:      fmt.Sprintf("Error processing claim: %v. Manual review required.", err),
	}
}
