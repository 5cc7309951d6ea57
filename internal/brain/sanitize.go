package brain

import (
	"math/rand"
)

// Sanitize applies hard overrides to a produced decision before execution.
// The reasoning service hallucinates preconditions from stale context; a
// rejected decision is replaced by the fallback, never aborted.
func Sanitize(d Decision, s Snapshot, rng *rand.Rand) (Decision, string) {
	switch d.Action {
	case ActionClaimGPM:
		if s.Ship.UnclaimedGold.IsZero() {
			return Fallback(s, rng), "claim with zero unclaimed income"
		}
	case ActionRepair, ActionHireCrew, ActionBuyUpgrade:
		if !s.Ship.InPort {
			return Fallback(s, rng), "port-only action while at sea"
		}
	case ActionTaunt:
		if d.Message == "" {
			return Fallback(s, rng), "empty taunt message"
		}
		if s.MyRecentTaunts >= TauntSelfLimit {
			return Fallback(s, rng), "taunt limit reached"
		}
	case ActionCreateChallenge:
		if s.HasOpenCreated {
			return Fallback(s, rng), "already one unaccepted challenge open"
		}
	}
	return d, ""
}
