package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client reads externally visible game state from the ledger gateway. One
// Client is shared by the whole fleet; the gateway rate-limits it as a unit,
// so callers wrap reads in the retry combinator rather than hammering it.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) GetShip(ctx context.Context, captain string) (Ship, error) {
	var ship Ship
	if err := c.fetchJSON(ctx, "/v1/ships/"+captain, &ship); err != nil {
		if isMissing(err) {
			return Ship{}, ErrNoShip
		}
		return Ship{}, err
	}
	return ship, nil
}

func (c *Client) GetCaptainRecord(ctx context.Context, captain string) (CaptainRecord, error) {
	var record CaptainRecord
	if err := c.fetchJSON(ctx, "/v1/captains/"+captain, &record); err != nil {
		if isMissing(err) {
			return CaptainRecord{}, ErrNotRegistered
		}
		return CaptainRecord{}, err
	}
	return record, nil
}

// ListOpenChallenges returns open challenges excluding ones self created;
// those are the tracker's business, not decision input.
func (c *Client) ListOpenChallenges(ctx context.Context, self string) ([]Challenge, error) {
	var challenges []Challenge
	if err := c.fetchJSON(ctx, "/v1/challenges?status=open", &challenges); err != nil {
		return nil, err
	}
	out := challenges[:0]
	for _, ch := range challenges {
		if ch.Creator == self {
			continue
		}
		out = append(out, ch)
	}
	return out, nil
}

func (c *Client) GetChallenge(ctx context.Context, id uint64) (Challenge, error) {
	var ch Challenge
	if err := c.fetchJSON(ctx, fmt.Sprintf("/v1/challenges/%d", id), &ch); err != nil {
		return Challenge{}, err
	}
	return ch, nil
}

// ListRecentChallenges returns the newest challenges regardless of status,
// used for orphan recovery at startup.
func (c *Client) ListRecentChallenges(ctx context.Context, limit int) ([]Challenge, error) {
	var challenges []Challenge
	if err := c.fetchJSON(ctx, fmt.Sprintf("/v1/challenges/recent?limit=%d", limit), &challenges); err != nil {
		return nil, err
	}
	return challenges, nil
}

func (c *Client) GetLeaderboard(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	if err := c.fetchJSON(ctx, fmt.Sprintf("/v1/leaderboard?limit=%d", n), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) GetRecentTaunts(ctx context.Context, window int) ([]Taunt, error) {
	var taunts []Taunt
	if err := c.fetchJSON(ctx, fmt.Sprintf("/v1/taunts?limit=%d", window), &taunts); err != nil {
		return nil, err
	}
	return taunts, nil
}

func (c *Client) fetchJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg := ""
		if body, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil {
			msg = strings.TrimSpace(string(body))
		}
		return &apiError{Status: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return err
	}
	return nil
}

func isMissing(err error) bool {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae.Status == http.StatusNotFound
	}
	return false
}
