package ledger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetShipParsesAmounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/ships/sea1abc", r.URL.Path)
		w.Write([]byte(`{
			"captain": "sea1abc",
			"health": 80,
			"max_health": 100,
			"gold": "1500000000000000000",
			"gold_per_minute": "2000000000000000",
			"unclaimed_gold": "0",
			"zone": "kraken_deep",
			"in_port": false,
			"can_repair": true
		}`))
	}))
	defer srv.Close()

	ship, err := NewClient(srv.URL).GetShip(context.Background(), "sea1abc")
	require.NoError(t, err)

	assert.Equal(t, 80, ship.Health)
	assert.InDelta(t, 1.5, ship.Gold.Gold(), 1e-9)
	assert.True(t, ship.UnclaimedGold.IsZero())
	assert.Equal(t, "kraken_deep", ship.Zone)
	assert.True(t, ship.CanRepair)
}

func TestGetShipMissingIsErrNoShip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such ship", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetShip(context.Background(), "sea1abc")
	assert.ErrorIs(t, err, ErrNoShip)
}

func TestGetCaptainRecordMissingIsErrNotRegistered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown captain", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetCaptainRecord(context.Background(), "sea1abc")
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestThrottledReadIsRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetLeaderboard(context.Background(), 3)
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.False(t, IsRaceLoss(err))
}

func TestListOpenChallengesFiltersSelfCreated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "open", r.URL.Query().Get("status"))
		w.Write([]byte(`[
			{"id": 1, "creator": "sea1self", "wager": "100", "status": "open"},
			{"id": 2, "creator": "sea1rival", "wager": "200", "status": "open"}
		]`))
	}))
	defer srv.Close()

	challenges, err := NewClient(srv.URL).ListOpenChallenges(context.Background(), "sea1self")
	require.NoError(t, err)
	require.Len(t, challenges, 1)
	assert.Equal(t, uint64(2), challenges[0].ID)
}

func TestIsRaceLossMatchesGatewayMessages(t *testing.T) {
	for _, msg := range []string{
		"challenge already accepted",
		"battle already completed",
		"Already Settled",
	} {
		assert.True(t, IsRaceLoss(&apiError{Status: http.StatusConflict, Message: msg}), msg)
	}
	assert.False(t, IsRaceLoss(&apiError{Status: http.StatusConflict, Message: "insufficient bankroll"}))
	assert.False(t, IsRaceLoss(errors.New("already accepted"))) // plain errors carry no gateway status
}

func TestIsRateLimitedByMessage(t *testing.T) {
	assert.True(t, IsRateLimited(&apiError{Status: http.StatusServiceUnavailable, Message: "rate limit exceeded"}))
	assert.False(t, IsRateLimited(errors.New("rate limit exceeded")))
}

func TestChallengeInvolves(t *testing.T) {
	ch := Challenge{Creator: "sea1a", Acceptor: "sea1b"}
	assert.True(t, ch.Involves("sea1a"))
	assert.True(t, ch.Involves("sea1b"))
	assert.False(t, ch.Involves("sea1c"))
}
