package betslip

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/betpulse/live-gate/internal/model"
)

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func sel(matchID, market, option string, odds float64) model.Selection {
	return model.Selection{
		MatchID:    matchID,
		MatchName:  "Home vs Away",
		MarketName: market,
		Option:     option,
		Odds:       d(odds),
		IsLive:     true,
	}
}

func TestAddSelection_Add(t *testing.T) {
	s := New()

	if got := s.AddSelection(sel("m1", "1X2", "1", 1.80), false, false); got != OutcomeAdded {
		t.Fatalf("outcome = %v, want OutcomeAdded", got)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}

	stored := s.Selections()[0]
	if stored.SelectionID == "" {
		t.Error("SelectionID not assigned")
	}
	if !stored.SnapshotOdds.Equal(d(1.80)) {
		t.Errorf("SnapshotOdds = %s, want 1.8", stored.SnapshotOdds)
	}
}

func TestAddSelection_Toggle(t *testing.T) {
	s := New()

	s.AddSelection(sel("m1", "1X2", "1", 1.80), false, false)
	if got := s.AddSelection(sel("m1", "1X2", "1", 1.80), false, false); got != OutcomeRemoved {
		t.Fatalf("outcome = %v, want OutcomeRemoved", got)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d after toggle, want 0", s.Len())
	}
	if s.IsSelected("m1", "1X2", "1") {
		t.Error("toggled-off selection still reported selected")
	}
}

func TestAddSelection_ToggleIgnoresOddsChange(t *testing.T) {
	s := New()

	s.AddSelection(sel("m1", "1X2", "1", 1.80), false, false)
	// Same option at a new price still identifies the same selection.
	if got := s.AddSelection(sel("m1", "1X2", "1", 1.95), false, false); got != OutcomeRemoved {
		t.Errorf("outcome = %v, want OutcomeRemoved", got)
	}
}

func TestAddSelection_ReplaceKeepsPosition(t *testing.T) {
	s := New()

	s.AddSelection(sel("m1", "1X2", "1", 1.80), false, false)
	s.AddSelection(sel("m2", "1X2", "2", 4.10), false, false)

	if got := s.AddSelection(sel("m1", "1X2", "X", 3.40), false, false); got != OutcomeReplaced {
		t.Fatalf("outcome = %v, want OutcomeReplaced", got)
	}

	sels := s.Selections()
	if len(sels) != 2 {
		t.Fatalf("Len() = %d, want 2", len(sels))
	}
	if sels[0].Option != "X" || sels[0].MatchID != "m1" {
		t.Errorf("replaced selection not in original position: %+v", sels[0])
	}
	if !sels[0].SnapshotOdds.Equal(d(3.40)) {
		t.Errorf("replacement SnapshotOdds = %s, want 3.4", sels[0].SnapshotOdds)
	}
}

func TestAddSelection_DifferentMarketsCoexist(t *testing.T) {
	s := New()

	s.AddSelection(sel("m1", "1X2", "1", 1.80), false, false)
	if got := s.AddSelection(sel("m1", "Total Goals", "Over 2.5", 1.95), false, false); got != OutcomeAdded {
		t.Errorf("outcome = %v, want OutcomeAdded", got)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestAddSelection_Rejections(t *testing.T) {
	s := New()

	if got := s.AddSelection(sel("m1", "1X2", "1", 1.80), true, false); got != OutcomeRejectedLocked {
		t.Errorf("locked outcome = %v, want OutcomeRejectedLocked", got)
	}
	if got := s.AddSelection(sel("m1", "1X2", "1", 1.80), false, true); got != OutcomeRejectedStopped {
		t.Errorf("stopped outcome = %v, want OutcomeRejectedStopped", got)
	}
	if s.Len() != 0 {
		t.Errorf("rejected adds mutated the slip: Len() = %d", s.Len())
	}
	if s.Version() != 0 {
		t.Errorf("rejected adds bumped version to %d", s.Version())
	}
}

func TestSnapshotOddsSurviveDrift(t *testing.T) {
	s := New()
	s.AddSelection(sel("m1", "1X2", "1", 1.80), false, false)

	version := s.Version()
	drifts := []model.OddsDrift{{Selection: s.Selections()[0], CurrentOdds: d(1.95)}}
	if !s.ApplyDrifts(drifts, version) {
		t.Fatal("ApplyDrifts refused a matching version")
	}

	stored := s.Selections()[0]
	if !stored.Odds.Equal(d(1.95)) {
		t.Errorf("Odds = %s, want 1.95", stored.Odds)
	}
	if !stored.SnapshotOdds.Equal(d(1.80)) {
		t.Errorf("SnapshotOdds = %s, want original 1.8", stored.SnapshotOdds)
	}
}

func TestApplyDrifts_VersionMismatch(t *testing.T) {
	s := New()
	s.AddSelection(sel("m1", "1X2", "1", 1.80), false, false)

	version := s.Version()
	s.SetStake(d(50)) // concurrent mutation

	drifts := []model.OddsDrift{{Selection: s.Selections()[0], CurrentOdds: d(1.95)}}
	if s.ApplyDrifts(drifts, version) {
		t.Fatal("ApplyDrifts applied over a stale version")
	}
	if !s.Selections()[0].Odds.Equal(d(1.80)) {
		t.Errorf("odds mutated despite refusal: %s", s.Selections()[0].Odds)
	}
}

func TestTotalOddsAndPotentialWin(t *testing.T) {
	s := New()

	if !s.TotalOdds().Equal(d(1)) {
		t.Errorf("empty TotalOdds = %s, want 1", s.TotalOdds())
	}

	s.AddSelection(sel("m1", "1X2", "1", 1.80), false, false)
	s.AddSelection(sel("m2", "1X2", "2", 4.00), false, false)
	s.SetStake(d(100))

	if !s.TotalOdds().Equal(d(7.20)) {
		t.Errorf("TotalOdds = %s, want 7.2", s.TotalOdds())
	}
	if !s.PotentialWin().Equal(d(720)) {
		t.Errorf("PotentialWin = %s, want 720", s.PotentialWin())
	}
}

func TestClearResetsStake(t *testing.T) {
	s := New()
	s.AddSelection(sel("m1", "1X2", "1", 1.80), false, false)
	s.SetStake(d(250))

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", s.Len())
	}
	if !s.Stake().IsZero() {
		t.Errorf("Stake() = %s after Clear, want 0", s.Stake())
	}
}

func TestRemoveSelection(t *testing.T) {
	s := New()
	s.AddSelection(sel("m1", "1X2", "1", 1.80), false, false)
	s.AddSelection(sel("m2", "1X2", "X", 3.10), false, false)

	s.RemoveSelection("m1", "1X2")
	if s.Len() != 1 || s.IsSelected("m1", "1X2", "1") {
		t.Errorf("removal failed: %+v", s.Selections())
	}

	before := s.Version()
	s.RemoveSelection("missing", "1X2")
	if s.Version() != before {
		t.Error("no-op removal bumped the version")
	}
}

func TestVersionTracksMutations(t *testing.T) {
	s := New()

	s.AddSelection(sel("m1", "1X2", "1", 1.80), false, false) // 1
	s.SetStake(d(10))                                         // 2
	s.AddSelection(sel("m1", "1X2", "1", 1.80), false, false) // 3, toggle off
	s.Clear()                                                 // 4

	if got := s.Version(); got != 4 {
		t.Errorf("Version() = %d, want 4", got)
	}
}

func TestManagerReturnsSameSlipPerUser(t *testing.T) {
	m := NewManager()

	a := m.Slip("user-1")
	a.AddSelection(sel("m1", "1X2", "1", 1.80), false, false)

	if got := m.Slip("user-1"); got.Len() != 1 {
		t.Error("manager returned a fresh slip for an existing user")
	}
	if got := m.Slip("user-2"); got.Len() != 0 {
		t.Error("slips leaked across users")
	}
}
