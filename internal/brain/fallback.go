package brain

import (
	"math/rand"
)

const (
	acceptProbability = 0.4
	bankrollFraction  = 20 // create wagers at bankroll/20
)

// Fallback is the deterministic liveness backstop: a total function of the
// snapshot and the supplied random source, no network. The fleet keeps
// moving on this alone when the reasoning service is down.
func Fallback(s Snapshot, rng *rand.Rand) Decision {
	// Repair is port-only; the gate here must match the sanitizer's or a
	// rejected repair would be substituted with itself.
	if s.Ship.Health == 0 && s.Ship.CanRepair && s.Ship.InPort {
		return Decision{Action: ActionRepair, Reason: "fallback: ship disabled"}
	}
	if !s.Ship.UnclaimedGold.IsZero() {
		return Decision{Action: ActionClaimGPM, Reason: "fallback: unclaimed income"}
	}
	if s.Record.Bankroll.Cmp(&s.BankrollFloor.Int) < 0 {
		return Decision{
			Action: ActionTopUp,
			Amount: s.BankrollFloor.Gold() * 2,
			Reason: "fallback: bankroll below floor",
		}
	}

	if ch, ok := affordableChallenge(s); ok && rng.Float64() < acceptProbability {
		return Decision{
			Action:      ActionAcceptChallenge,
			ChallengeID: ch.ID,
			Reason:      "fallback: accepting affordable challenge",
		}
	}
	if !s.HasOpenCreated && s.Record.Bankroll.Cmp(&s.MinWager.Int) >= 0 {
		return Decision{
			Action: ActionCreateChallenge,
			Amount: s.Record.Bankroll.Gold() / bankrollFraction,
			Reason: "fallback: posting a challenge",
		}
	}
	return Decision{Action: ActionIdle, Reason: "fallback: nothing worth doing"}
}

// affordableChallenge picks the cheapest open challenge the bankroll covers.
func affordableChallenge(s Snapshot) (ChallengeView, bool) {
	best := ChallengeView{}
	found := false
	for _, ch := range s.OpenChallenges {
		if ch.Wager == nil || ch.Wager.Cmp(&s.Record.Bankroll.Int) > 0 {
			continue
		}
		if !found || ch.Wager.Cmp(&best.Wager.Int) < 0 {
			best = ch
			found = true
		}
	}
	return best, found
}
