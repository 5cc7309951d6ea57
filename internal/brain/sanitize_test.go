package brain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flack-404/SevenSeasProtocol-sub000/internal/ledger"
)

func TestSanitizePassesValidDecision(t *testing.T) {
	s := healthySnapshot()
	s.Ship.UnclaimedGold = ledger.GoldToAmount(1)

	d, why := Sanitize(Decision{Action: ActionClaimGPM}, s, rand.New(rand.NewSource(1)))
	assert.Empty(t, why)
	assert.Equal(t, ActionClaimGPM, d.Action)
}

func TestSanitizeRejectsClaimWithNothingAccrued(t *testing.T) {
	s := healthySnapshot()

	d, why := Sanitize(Decision{Action: ActionClaimGPM}, s, rand.New(rand.NewSource(1)))
	assert.NotEmpty(t, why)
	assert.NotEqual(t, ActionClaimGPM, d.Action, "substitute must come from the fallback")
}

func TestSanitizeRejectsPortActionsAtSea(t *testing.T) {
	s := healthySnapshot()
	s.Ship.InPort = false

	for _, action := range []string{ActionRepair, ActionHireCrew, ActionBuyUpgrade} {
		d, why := Sanitize(Decision{Action: action}, s, rand.New(rand.NewSource(1)))
		assert.NotEmpty(t, why, "action %q", action)
		assert.NotEqual(t, action, d.Action, "action %q", action)
	}
}

func TestSanitizeSubstituteForRepairAtSeaIsNotRepair(t *testing.T) {
	s := healthySnapshot()
	s.Ship.Health = 0
	s.Ship.CanRepair = true
	s.Ship.InPort = false

	for seed := int64(0); seed < 20; seed++ {
		d, why := Sanitize(Decision{Action: ActionRepair}, s, rand.New(rand.NewSource(seed)))
		assert.NotEmpty(t, why)
		assert.NotEqual(t, ActionRepair, d.Action, "substitute must honor the same gate")
	}
}

func TestSanitizeAllowsPortActionsInPort(t *testing.T) {
	s := healthySnapshot()
	s.Ship.InPort = true

	d, why := Sanitize(Decision{Action: ActionHireCrew}, s, rand.New(rand.NewSource(1)))
	assert.Empty(t, why)
	assert.Equal(t, ActionHireCrew, d.Action)
}

func TestSanitizeRejectsEmptyTaunt(t *testing.T) {
	s := healthySnapshot()

	_, why := Sanitize(Decision{Action: ActionTaunt, Target: "sea1rival"}, s, rand.New(rand.NewSource(1)))
	assert.NotEmpty(t, why)
}

func TestSanitizeRejectsTauntOverLimit(t *testing.T) {
	s := healthySnapshot()
	s.MyRecentTaunts = TauntSelfLimit

	_, why := Sanitize(Decision{Action: ActionTaunt, Message: "Your hull leaks!"}, s, rand.New(rand.NewSource(1)))
	assert.NotEmpty(t, why)
}

func TestSanitizeRejectsSecondOpenChallenge(t *testing.T) {
	s := healthySnapshot()
	s.HasOpenCreated = true

	d, why := Sanitize(Decision{Action: ActionCreateChallenge, Amount: 1}, s, rand.New(rand.NewSource(1)))
	assert.NotEmpty(t, why)
	assert.NotEqual(t, ActionCreateChallenge, d.Action)
}
