package tracker

import (
	"testing"
	"time"
)

func TestObserve_FirstObservationIsQuiet(t *testing.T) {
	trk := New()
	now := time.Now()

	if trk.Observe("m1", CategoryGoal, 3, now, DefaultWindow) {
		t.Error("first observation should never report a fresh occurrence")
	}
}

func TestObserve_IncreaseWithinWindow(t *testing.T) {
	trk := New()
	now := time.Now()

	trk.Observe("m1", CategoryGoal, 1, now, DefaultWindow)
	if !trk.Observe("m1", CategoryGoal, 2, now.Add(10*time.Second), DefaultWindow) {
		t.Error("count increase inside the window should report an occurrence")
	}
}

func TestObserve_IncreaseOutsideWindow(t *testing.T) {
	trk := New()
	now := time.Now()

	trk.Observe("m1", CategoryGoal, 1, now, DefaultWindow)
	if trk.Observe("m1", CategoryGoal, 2, now.Add(31*time.Second), DefaultWindow) {
		t.Error("stale baseline should not report an occurrence")
	}
}

func TestObserve_UnchangedCount(t *testing.T) {
	trk := New()
	now := time.Now()

	trk.Observe("m1", CategoryDangerousEvent, 4, now, DefaultWindow)
	if trk.Observe("m1", CategoryDangerousEvent, 4, now.Add(time.Second), DefaultWindow) {
		t.Error("unchanged count should not report an occurrence")
	}
}

func TestObserve_BaselineRefreshesEveryCall(t *testing.T) {
	trk := New()
	now := time.Now()

	trk.Observe("m1", CategoryGoal, 1, now, DefaultWindow)
	// Quiet call inside the window still refreshes the baseline time.
	trk.Observe("m1", CategoryGoal, 1, now.Add(25*time.Second), DefaultWindow)

	// 50s after the original observation, but only 25s after the refresh.
	if !trk.Observe("m1", CategoryGoal, 2, now.Add(50*time.Second), DefaultWindow) {
		t.Error("refreshed baseline should keep the window alive")
	}
}

func TestObserve_CountDecreaseOverwrites(t *testing.T) {
	trk := New()
	now := time.Now()

	trk.Observe("m1", CategoryGoal, 5, now, DefaultWindow)
	if trk.Observe("m1", CategoryGoal, 2, now.Add(time.Second), DefaultWindow) {
		t.Error("count decrease should not report an occurrence")
	}
	// The lower count becomes the new baseline.
	if !trk.Observe("m1", CategoryGoal, 3, now.Add(2*time.Second), DefaultWindow) {
		t.Error("increase over the corrected baseline should report an occurrence")
	}
}

func TestObserve_MatchesAndCategoriesAreIndependent(t *testing.T) {
	trk := New()
	now := time.Now()

	trk.Observe("m1", CategoryGoal, 1, now, DefaultWindow)
	if trk.Observe("m2", CategoryGoal, 2, now.Add(time.Second), DefaultWindow) {
		t.Error("a different match must start from its own baseline")
	}
	if trk.Observe("m1", CategoryDangerousEvent, 2, now.Add(time.Second), DefaultWindow) {
		t.Error("a different category must start from its own baseline")
	}
}

func TestForget(t *testing.T) {
	trk := New()
	now := time.Now()

	trk.Observe("m1", CategoryGoal, 1, now, DefaultWindow)
	trk.Observe("m1", CategoryDangerousEvent, 1, now, DefaultWindow)
	trk.Observe("m2", CategoryGoal, 1, now, DefaultWindow)

	trk.Forget("m1")
	if got := trk.Len(); got != 1 {
		t.Errorf("Len() = %d after Forget, want 1", got)
	}
	if trk.Observe("m1", CategoryGoal, 2, now.Add(time.Second), DefaultWindow) {
		t.Error("forgotten match should behave like a first observation")
	}
}
