// Package bets provides the HTTP handlers for the live-betting gate: lock
// verdict queries, bet slip operations, and the checkout flow that
// reconciles snapshot odds before a coupon is placed.
//
// All odds and monetary values use shopspring/decimal — never float64 for money.
package bets

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/betpulse/live-gate/internal/betslip"
	"github.com/betpulse/live-gate/internal/metrics"
	"github.com/betpulse/live-gate/internal/model"
	"github.com/betpulse/live-gate/internal/poll"
	"github.com/betpulse/live-gate/internal/reconcile"
	"github.com/betpulse/live-gate/internal/risk"
	"github.com/betpulse/live-gate/internal/store"
)

// Service handles slip and checkout operations.
type Service struct {
	store    store.Store
	slips    *betslip.Manager
	verdicts *poll.Verdicts
	recon    *reconcile.Service
	fetcher  reconcile.OddsFetcher
	limiter  *risk.StakeLimiter
	poller   *poll.Manager
	wsHub    *WSHub // optional WebSocket hub for real-time broadcasts
}

// NewService creates a new bets service. Pass nil for hub if WebSocket
// broadcasting is not needed.
func NewService(st store.Store, slips *betslip.Manager, verdicts *poll.Verdicts, recon *reconcile.Service, fetcher reconcile.OddsFetcher, limiter *risk.StakeLimiter, poller *poll.Manager, hub *WSHub) *Service {
	return &Service{
		store:    st,
		slips:    slips,
		verdicts: verdicts,
		recon:    recon,
		fetcher:  fetcher,
		limiter:  limiter,
		poller:   poller,
		wsHub:    hub,
	}
}

// --- Request/Response types ---

// AddSelectionRequest is the JSON body for POST /slip/{userID}/selections.
type AddSelectionRequest struct {
	MatchID    string          `json:"match_id"`
	MatchName  string          `json:"match_name"`
	League     string          `json:"league"`
	MarketName string          `json:"market_name"`
	Option     string          `json:"option"`
	Odds       decimal.Decimal `json:"odds"`
	IsLive     bool            `json:"is_live"`
	FixtureID  string          `json:"fixture_id"`
}

// StakeRequest is the JSON body for PUT /slip/{userID}/stake.
type StakeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// CheckoutRequest is the JSON body for POST /slip/{userID}/checkout.
// AcceptDrift confirms that the user has seen and accepted the drifted
// prices from a previous checkout attempt.
type CheckoutRequest struct {
	AcceptDrift bool `json:"accept_drift"`
}

// SlipResponse is the slip snapshot returned from slip endpoints.
type SlipResponse struct {
	Selections   []model.Selection `json:"selections"`
	Stake        decimal.Decimal   `json:"stake"`
	TotalOdds    decimal.Decimal   `json:"total_odds"`
	PotentialWin decimal.Decimal   `json:"potential_win"`
}

// DriftResponse is returned with HTTP 409 when checkout detects odds drift
// that the user has not yet accepted.
type DriftResponse struct {
	Error  string            `json:"error"`
	Drifts []model.OddsDrift `json:"drifts"`
}

// --- HTTP Handlers ---

// GetLock handles GET /api/v1/matches/{matchID}/lock
func (s *Service) GetLock(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	writeJSON(w, http.StatusOK, s.verdicts.Get(matchID))
}

// WatchMatch handles POST /api/v1/matches/{matchID}/watch
func (s *Service) WatchMatch(w http.ResponseWriter, r *http.Request) {
	s.poller.Watch(chi.URLParam(r, "matchID"))
	w.WriteHeader(http.StatusNoContent)
}

// UnwatchMatch handles DELETE /api/v1/matches/{matchID}/watch
func (s *Service) UnwatchMatch(w http.ResponseWriter, r *http.Request) {
	s.poller.Unwatch(chi.URLParam(r, "matchID"))
	w.WriteHeader(http.StatusNoContent)
}

// GetSlip handles GET /api/v1/slip/{userID}
func (s *Service) GetSlip(w http.ResponseWriter, r *http.Request) {
	slip := s.slips.Slip(chi.URLParam(r, "userID"))
	writeJSON(w, http.StatusOK, slipResponse(slip))
}

// AddSelection handles POST /api/v1/slip/{userID}/selections
//
// The add is gated twice: by the match's current lock verdict, and by the
// upstream stopped/suspended flag on the targeted market option.
func (s *Service) AddSelection(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req AddSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.MatchID == "" || req.MarketName == "" || req.Option == "" {
		writeError(w, "match_id, market_name and option are required", http.StatusBadRequest)
		return
	}

	verdict := s.verdicts.Get(req.MatchID)
	stopped := s.optionStopped(r.Context(), req.MatchID, req.MarketName, req.Option)

	slip := s.slips.Slip(userID)
	outcome := slip.AddSelection(model.Selection{
		MatchID:    req.MatchID,
		MatchName:  req.MatchName,
		League:     req.League,
		MarketName: req.MarketName,
		Option:     req.Option,
		Odds:       req.Odds,
		IsLive:     req.IsLive,
		FixtureID:  req.FixtureID,
	}, verdict.Locked, stopped)

	switch outcome {
	case betslip.OutcomeRejectedLocked:
		metrics.SelectionsRejected.WithLabelValues("locked").Inc()
		writeError(w, "betting is temporarily locked: "+verdict.Reason, http.StatusConflict)
		return
	case betslip.OutcomeRejectedStopped:
		metrics.SelectionsRejected.WithLabelValues("stopped").Inc()
		writeError(w, "market option is suspended", http.StatusConflict)
		return
	}

	slog.Info("slip updated",
		"user", userID,
		"match_id", req.MatchID,
		"market", req.MarketName,
		"option", req.Option,
		"outcome", outcomeLabel(outcome),
	)
	writeJSON(w, http.StatusOK, slipResponse(slip))
}

// RemoveSelection handles DELETE /api/v1/slip/{userID}/selections/{matchID}/{marketName}
func (s *Service) RemoveSelection(w http.ResponseWriter, r *http.Request) {
	slip := s.slips.Slip(chi.URLParam(r, "userID"))
	slip.RemoveSelection(chi.URLParam(r, "matchID"), chi.URLParam(r, "marketName"))
	writeJSON(w, http.StatusOK, slipResponse(slip))
}

// ClearSlip handles DELETE /api/v1/slip/{userID}
func (s *Service) ClearSlip(w http.ResponseWriter, r *http.Request) {
	slip := s.slips.Slip(chi.URLParam(r, "userID"))
	slip.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// SetStake handles PUT /api/v1/slip/{userID}/stake
func (s *Service) SetStake(w http.ResponseWriter, r *http.Request) {
	var req StakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	slip := s.slips.Slip(chi.URLParam(r, "userID"))
	slip.SetStake(req.Amount)
	writeJSON(w, http.StatusOK, slipResponse(slip))
}

// Checkout handles POST /api/v1/slip/{userID}/checkout
//
// Reconciles the slip's snapshot odds against the live feed. Detected
// drift returns 409 with the drifted selections; the client re-submits
// with accept_drift once the user confirms. If the slip mutates while
// reconciliation fetches are in flight the attempt is discarded.
func (s *Service) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, "user id is required", http.StatusBadRequest)
		return
	}

	var req CheckoutRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	ctx := r.Context()
	slip := s.slips.Slip(userID)

	// --- Boundary validation ---
	selections := slip.Selections()
	if len(selections) == 0 {
		writeError(w, "bet slip is empty", http.StatusBadRequest)
		return
	}
	stake := slip.Stake()
	if !stake.IsPositive() {
		writeError(w, "stake must be positive", http.StatusBadRequest)
		return
	}

	// --- Stake limit check ---
	existing, err := s.store.ListCouponsByUser(ctx, userID)
	if err != nil {
		writeError(w, "failed to check stake limits", http.StatusInternalServerError)
		return
	}
	if err := s.limiter.CheckStake(stake, selections, risk.ExposuresFromCoupons(existing)); err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}

	// --- Odds reconciliation ---
	version := slip.Version()
	drifts, err := s.recon.Reconcile(ctx, selections)
	if err != nil {
		// The caller went away mid-checkout; the slip stays as it was.
		writeError(w, "checkout canceled", http.StatusConflict)
		return
	}
	if slip.Version() != version {
		writeError(w, "bet slip changed during reconciliation", http.StatusConflict)
		return
	}

	if len(drifts) > 0 {
		metrics.OddsDriftsTotal.Add(float64(len(drifts)))
		if !req.AcceptDrift {
			writeJSON(w, http.StatusConflict, DriftResponse{
				Error:  "odds changed since selection",
				Drifts: drifts,
			})
			return
		}
		if !slip.ApplyDrifts(drifts, version) {
			writeError(w, "bet slip changed during reconciliation", http.StatusConflict)
			return
		}
		selections = slip.Selections()
	}

	coupon := &model.Coupon{
		ID:           uuid.New().String(),
		UserID:       userID,
		Selections:   selections,
		Stake:        stake,
		TotalOdds:    slip.TotalOdds(),
		PotentialWin: slip.PotentialWin(),
		PlacedAt:     time.Now().UTC(),
	}

	if err := s.store.InsertCoupon(ctx, coupon); err != nil {
		writeError(w, "failed to record coupon", http.StatusInternalServerError)
		return
	}
	slip.Clear()
	metrics.CouponsPlaced.Inc()

	slog.Info("coupon placed",
		"coupon_id", coupon.ID,
		"user", userID,
		"selections", len(coupon.Selections),
		"stake", coupon.Stake.String(),
		"total_odds", coupon.TotalOdds.String(),
		"drifted", len(drifts),
	)

	if s.wsHub != nil {
		s.wsHub.Broadcast(WSMessage{
			Type:      "coupon_placed",
			CouponID:  coupon.ID,
			UserID:    userID,
			TotalOdds: coupon.TotalOdds.String(),
		})
	}

	writeJSON(w, http.StatusCreated, coupon)
}

// ListCoupons handles GET /api/v1/coupons/{userID}
func (s *Service) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := s.store.ListCouponsByUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, "failed to list coupons", http.StatusInternalServerError)
		return
	}
	if coupons == nil {
		coupons = []model.Coupon{}
	}
	writeJSON(w, http.StatusOK, coupons)
}

// GetCoupon handles GET /api/v1/coupons/{userID}/{couponID}
func (s *Service) GetCoupon(w http.ResponseWriter, r *http.Request) {
	coupon, err := s.store.GetCoupon(r.Context(), chi.URLParam(r, "couponID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, "coupon not found", http.StatusNotFound)
			return
		}
		writeError(w, "failed to load coupon", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, coupon)
}

// optionStopped checks the upstream stopped/suspended flag for one market
// option. An unreachable odds feed degrades to "not stopped" so that a
// single bad upstream call does not block unrelated slip operations.
func (s *Service) optionStopped(ctx context.Context, matchID, marketName, option string) bool {
	markets, err := s.fetcher.FetchOdds(ctx, matchID)
	if err != nil {
		metrics.FeedFetchErrors.WithLabelValues("odds").Inc()
		slog.Warn("odds fetch failed during selection gate", "match_id", matchID, "err", err)
		return false
	}
	for _, market := range markets {
		if market.Name != marketName {
			continue
		}
		for _, opt := range market.Options {
			if opt.Label == option {
				return opt.Stopped
			}
		}
	}
	return false
}

func slipResponse(slip *betslip.Slip) SlipResponse {
	return SlipResponse{
		Selections:   slip.Selections(),
		Stake:        slip.Stake(),
		TotalOdds:    slip.TotalOdds(),
		PotentialWin: slip.PotentialWin(),
	}
}

func outcomeLabel(outcome betslip.AddOutcome) string {
	switch outcome {
	case betslip.OutcomeAdded:
		return "added"
	case betslip.OutcomeReplaced:
		return "replaced"
	case betslip.OutcomeRemoved:
		return "removed"
	default:
		return "rejected"
	}
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
