// Package betslip holds a user's in-memory bet selections between the
// first click and checkout. At most one selection exists per (match,
// market); selecting a second option in the same market replaces the
// first, and re-selecting the identical option removes it.
package betslip

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/betpulse/live-gate/internal/model"
)

// AddOutcome describes what AddSelection did with the incoming selection.
type AddOutcome int

const (
	// OutcomeAdded means the selection was appended to the slip.
	OutcomeAdded AddOutcome = iota

	// OutcomeReplaced means an existing selection in the same market was
	// replaced in place, preserving its list position.
	OutcomeReplaced

	// OutcomeRemoved means the identical selection already existed and was
	// toggled off.
	OutcomeRemoved

	// OutcomeRejectedLocked means the match is lock-gated and the selection
	// was not applied.
	OutcomeRejectedLocked

	// OutcomeRejectedStopped means the market option is flagged stopped or
	// suspended upstream and the selection was not applied.
	OutcomeRejectedStopped
)

// Slip is one user's ordered selection list plus stake. All mutations run
// under the slip's lock against the latest committed state, so two rapid
// identical adds resolve to add-then-toggle-off rather than a double add.
type Slip struct {
	mu         sync.Mutex
	selections []model.Selection
	stake      decimal.Decimal
	version    uint64
}

// New creates an empty slip.
func New() *Slip {
	return &Slip{}
}

// AddSelection applies toggle/replace semantics for the given selection.
// A locked match or a stopped market option rejects the add as a no-op.
// SnapshotOdds is fixed from the selection's odds at insertion time.
func (s *Slip) AddSelection(sel model.Selection, locked, stopped bool) AddOutcome {
	if locked {
		return OutcomeRejectedLocked
	}
	if stopped {
		return OutcomeRejectedStopped
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.selections {
		if existing.MatchID != sel.MatchID || existing.MarketName != sel.MarketName {
			continue
		}
		if existing.Option == sel.Option {
			s.selections = append(s.selections[:i], s.selections[i+1:]...)
			s.version++
			return OutcomeRemoved
		}
		sel.SelectionID = newSelectionID(sel.SelectionID)
		sel.SnapshotOdds = sel.Odds
		s.selections[i] = sel
		s.version++
		return OutcomeReplaced
	}

	sel.SelectionID = newSelectionID(sel.SelectionID)
	sel.SnapshotOdds = sel.Odds
	s.selections = append(s.selections, sel)
	s.version++
	return OutcomeAdded
}

// RemoveSelection removes the selection for (matchID, marketName); absent
// selections are a no-op.
func (s *Slip) RemoveSelection(matchID, marketName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.selections {
		if existing.MatchID == matchID && existing.MarketName == marketName {
			s.selections = append(s.selections[:i], s.selections[i+1:]...)
			s.version++
			return
		}
	}
}

// Clear empties the slip and resets the stake to zero.
func (s *Slip) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections = nil
	s.stake = decimal.Zero
	s.version++
}

// IsSelected reports whether the exact (matchID, marketName, option)
// selection is on the slip.
func (s *Slip) IsSelected(matchID, marketName, option string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.selections {
		if existing.MatchID == matchID && existing.MarketName == marketName && existing.Option == option {
			return true
		}
	}
	return false
}

// SetStake stores the raw stake value. Validation happens at the checkout
// boundary, not here.
func (s *Slip) SetStake(amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stake = amount
	s.version++
}

// Stake returns the current stake.
func (s *Slip) Stake() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stake
}

// Selections returns a copy of the selection list in insertion order.
func (s *Slip) Selections() []model.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Selection, len(s.selections))
	copy(out, s.selections)
	return out
}

// Len returns the number of selections on the slip.
func (s *Slip) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selections)
}

// Version returns the mutation counter. Checkout snapshots the version
// before reconciling and discards the attempt if the slip changed while
// fetches were in flight.
func (s *Slip) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// TotalOdds is the product of all selection odds; an empty slip yields 1.
// Always recomputed from current state, never cached.
func (s *Slip) TotalOdds() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalOddsLocked(s.selections)
}

// PotentialWin is stake × total odds.
func (s *Slip) PotentialWin() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stake.Mul(totalOddsLocked(s.selections))
}

// ApplyDrifts rewrites the odds of drifted selections after the user
// accepted the new prices. It refuses to touch the slip if its version no
// longer matches expectedVersion (the slip mutated during reconciliation).
// Snapshot odds are preserved. Reports whether the update was applied.
func (s *Slip) ApplyDrifts(drifts []model.OddsDrift, expectedVersion uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.version != expectedVersion {
		return false
	}
	for _, drift := range drifts {
		for i, existing := range s.selections {
			if existing.MatchID == drift.Selection.MatchID &&
				existing.MarketName == drift.Selection.MarketName &&
				existing.Option == drift.Selection.Option {
				s.selections[i].Odds = drift.CurrentOdds
			}
		}
	}
	s.version++
	return true
}

func totalOddsLocked(selections []model.Selection) decimal.Decimal {
	total := decimal.NewFromInt(1)
	for _, sel := range selections {
		total = total.Mul(sel.Odds)
	}
	return total
}

func newSelectionID(existing string) string {
	if existing != "" {
		return existing
	}
	return uuid.New().String()
}
