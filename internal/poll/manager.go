// Package poll runs the per-match polling subscriptions that keep lock
// verdicts current. Events and statistics are fetched on independent fixed
// intervals; every cycle re-runs the decision engine and publishes the
// verdict. Subscriptions are explicit and cancellable so that no ticker
// outlives the match it watches.
package poll

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/betpulse/live-gate/internal/feed"
	"github.com/betpulse/live-gate/internal/lockengine"
	"github.com/betpulse/live-gate/internal/metrics"
	"github.com/betpulse/live-gate/internal/model"
	"github.com/betpulse/live-gate/internal/tracker"
)

// Source supplies the raw upstream feeds for one match. The feed client
// implements this; tests inject fakes.
type Source interface {
	FetchPhase(ctx context.Context, matchID string) (model.MatchPhase, error)
	FetchEvents(ctx context.Context, matchID string) ([]map[string]any, error)
	FetchStatistics(ctx context.Context, matchID string) ([]map[string]any, error)
}

// ChangeFunc is invoked whenever a match's verdict transitions.
type ChangeFunc func(matchID string, verdict model.LockVerdict)

// Manager owns one polling subscription per watched match.
type Manager struct {
	source      Source
	engine      *lockengine.Engine
	trk         *tracker.Tracker
	verdicts    *Verdicts
	onChange    ChangeFunc
	eventsEvery time.Duration
	statsEvery  time.Duration

	mu   sync.Mutex
	subs map[string]*subscription
}

// NewManager creates a polling manager. onChange may be nil. Non-positive
// intervals fall back to the observed production cadence (events 12s,
// statistics 30s).
func NewManager(source Source, engine *lockengine.Engine, trk *tracker.Tracker, verdicts *Verdicts, onChange ChangeFunc, eventsEvery, statsEvery time.Duration) *Manager {
	if eventsEvery <= 0 {
		eventsEvery = 12 * time.Second
	}
	if statsEvery <= 0 {
		statsEvery = 30 * time.Second
	}
	return &Manager{
		source:      source,
		engine:      engine,
		trk:         trk,
		verdicts:    verdicts,
		onChange:    onChange,
		eventsEvery: eventsEvery,
		statsEvery:  statsEvery,
		subs:        make(map[string]*subscription),
	}
}

// Watch starts polling a match. Watching an already-watched match is a
// no-op.
func (m *Manager) Watch(matchID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.subs[matchID]; ok {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := &subscription{cancel: cancel, done: make(chan struct{})}
	m.subs[matchID] = sub
	go m.run(ctx, matchID, sub)
	slog.Info("watching match", "match_id", matchID)
}

// Unwatch stops polling a match, waits for its loop to exit, and clears
// its verdict and tracker state. Unknown matches are a no-op.
func (m *Manager) Unwatch(matchID string) {
	m.mu.Lock()
	sub, ok := m.subs[matchID]
	if ok {
		delete(m.subs, matchID)
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	sub.cancel()
	<-sub.done
	if m.verdicts.Get(matchID).Locked {
		metrics.LockedMatches.Dec()
	}
	m.verdicts.drop(matchID)
	m.trk.Forget(matchID)
	slog.Info("stopped watching match", "match_id", matchID)
}

// Watched returns the ids of currently watched matches.
func (m *Manager) Watched() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	return ids
}

// StopAll cancels every subscription and waits for the loops to exit.
func (m *Manager) StopAll() {
	m.mu.Lock()
	subs := m.subs
	m.subs = make(map[string]*subscription)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.cancel()
	}
	for _, sub := range subs {
		<-sub.done
	}
}

type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// run is one match's polling loop. Statistics refresh on their own slower
// interval and are carried between event cycles.
func (m *Manager) run(ctx context.Context, matchID string, sub *subscription) {
	defer close(sub.done)

	eventsTicker := time.NewTicker(m.eventsEvery)
	defer eventsTicker.Stop()
	statsTicker := time.NewTicker(m.statsEvery)
	defer statsTicker.Stop()

	stats := m.fetchStats(ctx, matchID)
	m.evaluate(ctx, matchID, stats)

	for {
		select {
		case <-ctx.Done():
			return
		case <-statsTicker.C:
			stats = m.fetchStats(ctx, matchID)
		case <-eventsTicker.C:
			m.evaluate(ctx, matchID, stats)
		}
	}
}

func (m *Manager) fetchStats(ctx context.Context, matchID string) []model.StatLine {
	raws, err := m.source.FetchStatistics(ctx, matchID)
	if err != nil {
		if ctx.Err() == nil {
			metrics.FeedFetchErrors.WithLabelValues("statistics").Inc()
			slog.Warn("statistics fetch failed", "match_id", matchID, "err", err)
		}
		return nil
	}
	return feed.NormalizeStatistics(raws)
}

// evaluate runs one poll cycle: phase + events, then the decision engine.
// Fetch failures leave the previous verdict in place rather than flapping
// the gate on upstream hiccups.
func (m *Manager) evaluate(ctx context.Context, matchID string, stats []model.StatLine) {
	phase, err := m.source.FetchPhase(ctx, matchID)
	if err != nil {
		if ctx.Err() == nil {
			metrics.FeedFetchErrors.WithLabelValues("phase").Inc()
			slog.Warn("phase fetch failed", "match_id", matchID, "err", err)
		}
		return
	}

	rawEvents, err := m.source.FetchEvents(ctx, matchID)
	if err != nil {
		if ctx.Err() == nil {
			metrics.FeedFetchErrors.WithLabelValues("events").Inc()
			slog.Warn("events fetch failed", "match_id", matchID, "err", err)
		}
		return
	}

	events := feed.ClassifyEvents(rawEvents)
	verdict := m.engine.Decide(phase, events, stats, matchID, time.Now())

	reason := verdict.Reason
	if !verdict.Locked {
		reason = "unlocked"
	}
	metrics.LockVerdictsTotal.WithLabelValues(reason).Inc()

	wasLocked := m.verdicts.Get(matchID).Locked
	if !m.verdicts.Set(matchID, verdict) {
		return
	}

	if verdict.Locked && !wasLocked {
		metrics.LockedMatches.Inc()
	} else if !verdict.Locked && wasLocked {
		metrics.LockedMatches.Dec()
	}

	slog.Info("lock verdict changed",
		"match_id", matchID,
		"locked", verdict.Locked,
		"reason", verdict.Reason,
	)
	if m.onChange != nil {
		m.onChange(matchID, verdict)
	}
}
