package brain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flack-404/SevenSeasProtocol-sub000/internal/ledger"
)

func TestRenderNamesTauntersByProfile(t *testing.T) {
	s := healthySnapshot()
	s.TauntsAtMe = []ledger.Taunt{{From: "sea1rival", Target: s.Self, Message: "Your hull leaks!"}}

	out := s.Render()
	assert.Contains(t, out, "Taunt at you from sea1rival", "bare address without a profile")

	s.Taunters = map[string]*OpponentProfile{
		"sea1rival": {Captain: "sea1rival", Alias: "Red Morgan", Rating: 1400, Wins: 3, Losses: 1},
	}
	out = s.Render()
	assert.Contains(t, out, "Red Morgan (rating 1400, 3W/1L)")
}
