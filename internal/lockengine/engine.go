// Package lockengine decides whether live betting on a match must be
// temporarily locked. Locking protects the book against users exploiting
// the latency around goals and dangerous play: the moment something
// material happens on the pitch, new selections are refused until the odds
// feed has caught up.
package lockengine

import (
	"time"

	"github.com/betpulse/live-gate/internal/feed"
	"github.com/betpulse/live-gate/internal/model"
	"github.com/betpulse/live-gate/internal/tracker"
)

// Lock reasons, in priority order. The engine returns on the first rule
// that fires.
const (
	ReasonRecentGoal      = "goal scored in the last 30 seconds"
	ReasonDangerousEvent  = "dangerous position in play"
	ReasonSustainedAttack = "dangerous attack situation"
	ReasonCriticalMoment  = "match in critical moment"
)

// dangerousKinds are the discrete event kinds that trigger the
// dangerous-event rule.
var dangerousKinds = map[model.EventKind]bool{
	model.KindCorner:          true,
	model.KindFreeKick:        true,
	model.KindPenalty:         true,
	model.KindShotOnTarget:    true,
	model.KindDangerousAttack: true,
}

// Config holds the engine's tunable thresholds.
type Config struct {
	// RecencyWindow bounds how long after a goal or dangerous event betting
	// stays locked.
	RecencyWindow time.Duration

	// AttackThreshold is the combined home+away statistics sum at which
	// sustained pressure locks the match.
	AttackThreshold int

	// CriticalMinute and CriticalMargin define the late-match rule: locked
	// from CriticalMinute onward while the score margin is at most
	// CriticalMargin.
	CriticalMinute int
	CriticalMargin int
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		RecencyWindow:   30 * time.Second,
		AttackThreshold: 2,
		CriticalMinute:  80,
		CriticalMargin:  1,
	}
}

// Engine combines normalized events, statistics and tracker state into a
// lock verdict. Decide never returns an error: malformed input degrades to
// "rule does not fire" and evaluation continues.
type Engine struct {
	cfg Config
	trk *tracker.Tracker
}

// New creates an engine around the given tracker. Zero config fields fall
// back to the defaults.
func New(trk *tracker.Tracker, cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.RecencyWindow <= 0 {
		cfg.RecencyWindow = def.RecencyWindow
	}
	if cfg.AttackThreshold <= 0 {
		cfg.AttackThreshold = def.AttackThreshold
	}
	if cfg.CriticalMinute <= 0 {
		cfg.CriticalMinute = def.CriticalMinute
	}
	if cfg.CriticalMargin < 0 {
		cfg.CriticalMargin = def.CriticalMargin
	}
	return &Engine{cfg: cfg, trk: trk}
}

// Decide evaluates the lock rules for one match at instant now.
//
// Evaluating the goal and dangerous-event rules also observes the tracker:
// each call is a poll observation, so an immediate re-evaluation with
// unchanged counts will not re-report a fresh occurrence.
func (e *Engine) Decide(phase model.MatchPhase, events []model.MatchEvent, stats []model.StatLine, matchID string, now time.Time) model.LockVerdict {
	// Locking only applies to live wagering.
	if !phase.IsLive {
		return model.LockVerdict{}
	}

	if e.recentOccurrence(matchID, tracker.CategoryGoal, goalEvents(events), now) {
		return model.LockVerdict{Locked: true, Reason: ReasonRecentGoal}
	}

	if e.recentOccurrence(matchID, tracker.CategoryDangerousEvent, dangerousEvents(events), now) {
		return model.LockVerdict{Locked: true, Reason: ReasonDangerousEvent}
	}

	if feed.SumStat(stats, model.StatDangerousAttacks) >= e.cfg.AttackThreshold ||
		feed.SumStat(stats, model.StatShotsOnTarget) >= e.cfg.AttackThreshold {
		return model.LockVerdict{Locked: true, Reason: ReasonSustainedAttack}
	}

	if e.criticalMoment(phase) {
		return model.LockVerdict{Locked: true, Reason: ReasonCriticalMoment}
	}

	return model.LockVerdict{}
}

// recentOccurrence reports whether the latest of the given events happened
// within the recency window. An authoritative timestamp on the event is
// preferred; without one the tracker infers recency from the count delta
// between this observation and the previous one.
func (e *Engine) recentOccurrence(matchID, category string, events []model.MatchEvent, now time.Time) bool {
	if len(events) == 0 {
		return false
	}

	latest := latestByMinute(events)
	if latest.Timestamp != nil {
		return now.Sub(*latest.Timestamp) < e.cfg.RecencyWindow
	}
	return e.trk.Observe(matchID, category, len(events), now, e.cfg.RecencyWindow)
}

func (e *Engine) criticalMoment(phase model.MatchPhase) bool {
	if phase.Minute == nil || *phase.Minute < e.cfg.CriticalMinute {
		return false
	}
	// A missing score counts as zero.
	home, away := 0, 0
	if phase.HomeScore != nil {
		home = *phase.HomeScore
	}
	if phase.AwayScore != nil {
		away = *phase.AwayScore
	}
	diff := home - away
	if diff < 0 {
		diff = -diff
	}
	return diff <= e.cfg.CriticalMargin
}

func goalEvents(events []model.MatchEvent) []model.MatchEvent {
	var out []model.MatchEvent
	for _, ev := range events {
		if ev.Kind == model.KindGoal {
			out = append(out, ev)
		}
	}
	return out
}

func dangerousEvents(events []model.MatchEvent) []model.MatchEvent {
	var out []model.MatchEvent
	for _, ev := range events {
		if dangerousKinds[ev.Kind] {
			out = append(out, ev)
		}
	}
	return out
}

// latestByMinute picks the event with the highest match minute; ties keep
// the earlier upstream position.
func latestByMinute(events []model.MatchEvent) model.MatchEvent {
	latest := events[0]
	for _, ev := range events[1:] {
		if ev.Minute > latest.Minute {
			latest = ev
		}
	}
	return latest
}
