// Package reconcile re-validates a bet slip's snapshot odds against the
// live odds feed at placement time. Material drift requires explicit user
// confirmation before the coupon is submitted; cosmetic floating-point
// differences below the epsilon are absorbed silently.
package reconcile

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/betpulse/live-gate/internal/model"
)

// DriftEpsilon is the minimum |current − snapshot| difference that counts
// as drift. Chosen to absorb display-rounding noise, not to hide real
// price movement.
var DriftEpsilon = decimal.NewFromFloat(0.005)

// OddsFetcher returns the current market table for one match. The feed
// client implements this; tests inject fakes.
type OddsFetcher interface {
	FetchOdds(ctx context.Context, matchID string) ([]model.Market, error)
}

// Service compares slip selections against freshly fetched odds.
type Service struct {
	fetcher OddsFetcher
}

// New creates a reconciliation service around the given fetcher.
func New(fetcher OddsFetcher) *Service {
	return &Service{fetcher: fetcher}
}

// Reconcile fetches current odds once per distinct match referenced by the
// selections (N selections across M matches issue exactly M fetches, in
// parallel) and returns the selections whose current odds drifted beyond
// the epsilon, in slip order.
//
// A failed fetch is logged and that match's selections are skipped — one
// unreachable upstream call must not block the rest of the placement flow.
// A selection whose market or option vanished upstream is likewise treated
// as "no drift detected". A canceled or expired context returns its error
// with no drift list: the caller abandoned the attempt and must discard it
// rather than treat it as reconciled.
func (s *Service) Reconcile(ctx context.Context, selections []model.Selection) ([]model.OddsDrift, error) {
	matchIDs := distinctMatchIDs(selections)
	if len(matchIDs) == 0 {
		return nil, nil
	}

	// key: matchID + "\x00" + marketName + "\x00" + optionLabel
	current := make(map[string]decimal.Decimal)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, matchID := range matchIDs {
		wg.Add(1)
		go func(matchID string) {
			defer wg.Done()
			markets, err := s.fetcher.FetchOdds(ctx, matchID)
			if err != nil {
				slog.Warn("odds fetch failed, skipping match in reconciliation",
					"match_id", matchID, "err", err)
				return
			}
			mu.Lock()
			for _, market := range markets {
				for _, opt := range market.Options {
					current[lookupKey(matchID, market.Name, opt.Label)] = opt.Value
				}
			}
			mu.Unlock()
		}(matchID)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		// Caller navigated away or the deadline passed; discard results.
		return nil, err
	}

	var drifts []model.OddsDrift
	for _, sel := range selections {
		now, ok := current[lookupKey(sel.MatchID, sel.MarketName, sel.Option)]
		if !ok {
			continue
		}
		if now.Sub(sel.SnapshotOdds).Abs().GreaterThan(DriftEpsilon) {
			drifts = append(drifts, model.OddsDrift{Selection: sel, CurrentOdds: now})
		}
	}
	return drifts, nil
}

func distinctMatchIDs(selections []model.Selection) []string {
	seen := make(map[string]bool, len(selections))
	var ids []string
	for _, sel := range selections {
		if !seen[sel.MatchID] {
			seen[sel.MatchID] = true
			ids = append(ids, sel.MatchID)
		}
	}
	return ids
}

func lookupKey(matchID, marketName, optionLabel string) string {
	return matchID + "\x00" + marketName + "\x00" + optionLabel
}
