package brain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flack-404/SevenSeasProtocol-sub000/internal/ledger"
)

// healthySnapshot is a captain with nothing urgent: full health, no
// unclaimed income, bankroll comfortably above the floor.
func healthySnapshot() Snapshot {
	return Snapshot{
		Self: "sea1self",
		Ship: ledger.Ship{
			Health:    100,
			MaxHealth: 100,
			InPort:    false,
		},
		Record: ledger.CaptainRecord{
			Bankroll: ledger.GoldToAmount(10),
			Active:   true,
		},
		BankrollFloor: ledger.GoldToAmount(1),
		MinWager:      ledger.GoldToAmount(0.01),
		MaxWager:      ledger.GoldToAmount(5),
	}
}

func TestFallbackRepairsDisabledShip(t *testing.T) {
	s := healthySnapshot()
	s.Ship.Health = 0
	s.Ship.CanRepair = true
	s.Ship.InPort = true

	d := Fallback(s, rand.New(rand.NewSource(1)))
	assert.Equal(t, ActionRepair, d.Action)
}

func TestFallbackNeverRepairsAtSea(t *testing.T) {
	s := healthySnapshot()
	s.Ship.Health = 0
	s.Ship.CanRepair = true
	s.Ship.InPort = false

	for seed := int64(0); seed < 20; seed++ {
		d := Fallback(s, rand.New(rand.NewSource(seed)))
		assert.NotEqual(t, ActionRepair, d.Action, "repair is port-only")
	}
}

func TestFallbackClaimsBeforeAnythingElse(t *testing.T) {
	s := healthySnapshot()
	s.Ship.UnclaimedGold = ledger.GoldToAmount(0.25)

	d := Fallback(s, rand.New(rand.NewSource(1)))
	assert.Equal(t, ActionClaimGPM, d.Action)
}

func TestFallbackTopsUpBelowFloor(t *testing.T) {
	s := healthySnapshot()
	s.Record.Bankroll = ledger.GoldToAmount(0.5)

	d := Fallback(s, rand.New(rand.NewSource(1)))
	require.Equal(t, ActionTopUp, d.Action)
	assert.InDelta(t, 2.0, d.Amount, 1e-9)
}

func TestFallbackCreatesWhenNothingOpen(t *testing.T) {
	s := healthySnapshot()

	d := Fallback(s, rand.New(rand.NewSource(1)))
	require.Equal(t, ActionCreateChallenge, d.Action)
	assert.InDelta(t, 0.5, d.Amount, 1e-9) // bankroll/20
}

func TestFallbackIdlesWithChallengeAlreadyOpen(t *testing.T) {
	s := healthySnapshot()
	s.HasOpenCreated = true

	// No open challenges from others, so accept never triggers.
	d := Fallback(s, rand.New(rand.NewSource(1)))
	assert.Equal(t, ActionIdle, d.Action)
}

func TestFallbackDeterministicForSeed(t *testing.T) {
	s := healthySnapshot()
	s.OpenChallenges = []ChallengeView{
		{Challenge: ledger.Challenge{ID: 3, Creator: "sea1rival", Wager: ledger.GoldToAmount(2)}},
	}

	a := Fallback(s, rand.New(rand.NewSource(99)))
	b := Fallback(s, rand.New(rand.NewSource(99)))
	assert.Equal(t, a, b)
}

func TestFallbackAcceptsCheapestAffordableSometimes(t *testing.T) {
	s := healthySnapshot()
	s.HasOpenCreated = true // keep create out of the way
	s.OpenChallenges = []ChallengeView{
		{Challenge: ledger.Challenge{ID: 3, Creator: "sea1a", Wager: ledger.GoldToAmount(2)}},
		{Challenge: ledger.Challenge{ID: 9, Creator: "sea1b", Wager: ledger.GoldToAmount(0.5)}},
		{Challenge: ledger.Challenge{ID: 4, Creator: "sea1c", Wager: ledger.GoldToAmount(500)}}, // unaffordable
	}

	accepts := 0
	for seed := int64(0); seed < 200; seed++ {
		d := Fallback(s, rand.New(rand.NewSource(seed)))
		switch d.Action {
		case ActionAcceptChallenge:
			accepts++
			assert.Equal(t, uint64(9), d.ChallengeID, "must pick the cheapest affordable")
		case ActionIdle:
		default:
			t.Fatalf("unexpected action %q", d.Action)
		}
	}
	// Accept probability is 0.4; over 200 seeds both branches must show up.
	assert.Greater(t, accepts, 40)
	assert.Less(t, accepts, 160)
}

func TestAffordableChallengeSkipsTooExpensive(t *testing.T) {
	s := healthySnapshot()
	s.OpenChallenges = []ChallengeView{
		{Challenge: ledger.Challenge{ID: 1, Creator: "sea1a", Wager: ledger.GoldToAmount(50)}},
	}

	_, ok := affordableChallenge(s)
	assert.False(t, ok)
}
