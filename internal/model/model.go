// Package model defines the core domain types shared across the live gate.
// All odds and monetary values use shopspring/decimal — never float64 for money.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventKind is the canonical classification of a live match event.
type EventKind string

const (
	KindGoal            EventKind = "goal"
	KindYellowCard      EventKind = "yellow_card"
	KindRedCard         EventKind = "red_card"
	KindSubstitution    EventKind = "substitution"
	KindCorner          EventKind = "corner"
	KindFreeKick        EventKind = "free_kick"
	KindPenalty         EventKind = "penalty"
	KindShotOnTarget    EventKind = "shot_on_target"
	KindDangerousAttack EventKind = "dangerous_attack"
	KindOffside         EventKind = "offside"
	KindOther           EventKind = "other"
)

// MatchEvent is the canonical shape extracted from heterogeneous upstream
// event records. Zero values mean "not supplied by the feed".
type MatchEvent struct {
	Kind      EventKind  `json:"kind"`
	Minute    int        `json:"minute"`
	Timestamp *time.Time `json:"timestamp,omitempty"` // authoritative when present
	Team      string     `json:"team,omitempty"`
	Player    string     `json:"player,omitempty"`
	PlayerOut string     `json:"player_out,omitempty"`
	PlayerIn  string     `json:"player_in,omitempty"`
}

// StatCategory is the canonical classification of a statistics row.
type StatCategory string

const (
	StatPossession       StatCategory = "possession"
	StatShotsOnTarget    StatCategory = "shots_on_target"
	StatDangerousAttacks StatCategory = "dangerous_attacks"
	StatOther            StatCategory = "other"
)

// StatLine is one home/away statistic pair. Present is false when neither
// value could be parsed from the feed; the zero values still participate in
// threshold sums.
type StatLine struct {
	Category StatCategory `json:"category"`
	Home     int          `json:"home"`
	Away     int          `json:"away"`
	Present  bool         `json:"present"`
}

// MatchPhase is the live/not-live status of a match plus clock and score.
// Nil pointers mean the feed did not supply the field.
type MatchPhase struct {
	IsLive    bool `json:"is_live"`
	Minute    *int `json:"minute,omitempty"`
	HomeScore *int `json:"home_score,omitempty"`
	AwayScore *int `json:"away_score,omitempty"`
}

// LockVerdict is the decision engine's output for one match. Reason is empty
// when the match is unlocked.
type LockVerdict struct {
	Locked bool   `json:"locked"`
	Reason string `json:"reason,omitempty"`
}

// Selection is one user-selected odds entry in a bet slip. SnapshotOdds is
// fixed at insertion time and never mutated; Odds is only rewritten when the
// user explicitly accepts a reconciliation.
type Selection struct {
	SelectionID  string          `json:"selection_id"`
	MatchID      string          `json:"match_id"`
	MatchName    string          `json:"match_name"`
	League       string          `json:"league,omitempty"`
	MarketName   string          `json:"market_name"`
	Option       string          `json:"option"`
	Odds         decimal.Decimal `json:"odds"`
	SnapshotOdds decimal.Decimal `json:"snapshot_odds"`
	IsLive       bool            `json:"is_live"`
	FixtureID    string          `json:"fixture_id,omitempty"`
}

// OddsDrift reports a material difference between a selection's snapshot
// odds and the odds in effect at placement time.
type OddsDrift struct {
	Selection   Selection       `json:"selection"`
	CurrentOdds decimal.Decimal `json:"current_odds"`
}

// MarketOption is one priced outcome within a market.
type MarketOption struct {
	Label   string          `json:"label"`
	Value   decimal.Decimal `json:"value"`
	Stopped bool            `json:"stopped"` // stopped/suspended/unavailable upstream
}

// Market is the canonical shape of one betting market from the odds feed.
type Market struct {
	Name    string         `json:"name"`
	Options []MarketOption `json:"options"`
}

// Coupon is an immutable record of a placed bet. Once created, coupons are
// never modified or deleted.
type Coupon struct {
	ID           string          `json:"id" db:"id"`
	UserID       string          `json:"user_id" db:"user_id"`
	Selections   []Selection     `json:"selections" db:"selections"`
	Stake        decimal.Decimal `json:"stake" db:"stake"`
	TotalOdds    decimal.Decimal `json:"total_odds" db:"total_odds"`
	PotentialWin decimal.Decimal `json:"potential_win" db:"potential_win"`
	PlacedAt     time.Time       `json:"placed_at" db:"placed_at"`
}
