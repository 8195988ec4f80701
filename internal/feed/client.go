package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/betpulse/live-gate/internal/model"
)

// Client talks to the upstream live-match and odds feeds over HTTP. The
// wire payloads are decoded into raw maps and handed to the normalizers in
// this package; callers only ever see canonical types.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a feed client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchEvents returns the raw event records for a match, newest last.
func (c *Client) FetchEvents(ctx context.Context, matchID string) ([]map[string]any, error) {
	var raws []map[string]any
	if err := c.getJSON(ctx, "/matches/"+url.PathEscape(matchID)+"/events", &raws); err != nil {
		return nil, fmt.Errorf("fetch events for match %s: %w", matchID, err)
	}
	return raws, nil
}

// FetchStatistics returns the raw statistics records for a match.
func (c *Client) FetchStatistics(ctx context.Context, matchID string) ([]map[string]any, error) {
	var raws []map[string]any
	if err := c.getJSON(ctx, "/matches/"+url.PathEscape(matchID)+"/statistics", &raws); err != nil {
		return nil, fmt.Errorf("fetch statistics for match %s: %w", matchID, err)
	}
	return raws, nil
}

// FetchPhase returns the match phase (live flag, minute, score).
func (c *Client) FetchPhase(ctx context.Context, matchID string) (model.MatchPhase, error) {
	var raw map[string]any
	if err := c.getJSON(ctx, "/matches/"+url.PathEscape(matchID), &raw); err != nil {
		return model.MatchPhase{}, fmt.Errorf("fetch phase for match %s: %w", matchID, err)
	}
	return NormalizePhase(raw), nil
}

// FetchOdds returns the normalized market list for a match. Implements the
// reconcile.OddsFetcher contract.
func (c *Client) FetchOdds(ctx context.Context, matchID string) ([]model.Market, error) {
	var raws []map[string]any
	if err := c.getJSON(ctx, "/matches/"+url.PathEscape(matchID)+"/odds", &raws); err != nil {
		return nil, fmt.Errorf("fetch odds for match %s: %w", matchID, err)
	}
	return NormalizeMarkets(raws), nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("upstream returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// NormalizePhase extracts a canonical MatchPhase from a raw match record.
// Live status is accepted as a boolean is_live/live flag or a textual
// status field ("live", "inplay").
func NormalizePhase(raw map[string]any) model.MatchPhase {
	var phase model.MatchPhase
	if raw == nil {
		return phase
	}

	phase.IsLive = boolAt(raw, "is_live", "isLive", "live")
	if !phase.IsLive {
		switch stringAt(raw, "status", "state") {
		case "live", "inplay", "in_play", "playing":
			phase.IsLive = true
		}
	}

	if m, ok := intAt(raw, "minute", "time", "elapsed"); ok {
		phase.Minute = &m
	}
	if h, ok := intAt(raw, "home_score", "homeScore", "score_home"); ok {
		phase.HomeScore = &h
	}
	if a, ok := intAt(raw, "away_score", "awayScore", "score_away"); ok {
		phase.AwayScore = &a
	}
	return phase
}
