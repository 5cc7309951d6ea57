package brain

import (
	"fmt"
	"strings"

	"github.com/flack-404/SevenSeasProtocol-sub000/internal/ledger"
	"github.com/flack-404/SevenSeasProtocol-sub000/internal/persona"
)

// Context caps. The reasoning service gets a deliberately small window:
// enough to act on, cheap to render, hard to confuse.
const (
	MaxContextChallenges = 3
	MaxLeaderboard       = 3
	MaxTauntsAtSelf      = 2
	TauntSelfLimit       = 3
)

// OpponentProfile is a point-in-time snapshot of a rival's public record.
// Fetched fresh each cycle, never persisted.
type OpponentProfile struct {
	Captain  string
	Alias    string
	Rating   int
	Wins     int
	Losses   int
	Bankroll *ledger.Amount
}

type ChallengeView struct {
	ledger.Challenge
	Opponent *OpponentProfile
}

// Snapshot is everything one decision sees: the already-read state of the
// world plus the bounds the fallback needs to stay a pure function.
type Snapshot struct {
	Self           string
	Persona        persona.Persona
	Ship           ledger.Ship
	Record         ledger.CaptainRecord
	OpenChallenges []ChallengeView
	Leaderboard    []ledger.LeaderboardEntry
	TauntsAtMe     []ledger.Taunt
	Taunters       map[string]*OpponentProfile
	MyRecentTaunts int
	HasOpenCreated bool

	BankrollFloor *ledger.Amount
	MinWager      *ledger.Amount
	MaxWager      *ledger.Amount
}

// Render formats the snapshot into the compact textual context handed to
// the reasoning service.
func (s Snapshot) Render() string {
	var sb strings.Builder

	port := "at sea"
	if s.Ship.InPort {
		port = "in port"
	}
	repair := "repair not ready"
	if s.Ship.CanRepair {
		repair = "repair ready"
	}
	fmt.Fprintf(&sb, "You are %s (%s).\n", s.Persona.Alias, s.Persona.Archetype)
	fmt.Fprintf(&sb, "Ship: health %d/%d, zone %s (%s, %s), gold %.2f, +%.4f gold/min, unclaimed %.4f.\n",
		s.Ship.Health, s.Ship.MaxHealth, s.Ship.Zone, port, repair,
		s.Ship.Gold.Gold(), s.Ship.GoldPerMinute.Gold(), s.Ship.UnclaimedGold.Gold())
	fmt.Fprintf(&sb, "Record: rating %d, %dW/%dL, bankroll %.2f gold, total wagered %.2f.\n",
		s.Record.Rating, s.Record.Wins, s.Record.Losses, s.Record.Bankroll.Gold(), s.Record.TotalWagered.Gold())

	if len(s.OpenChallenges) == 0 {
		sb.WriteString("Open challenges: none.\n")
	} else {
		sb.WriteString("Open challenges:\n")
		for _, ch := range s.OpenChallenges {
			who := ch.Creator
			if ch.Opponent != nil {
				who = fmt.Sprintf("%s (rating %d, %dW/%dL, bankroll %.2f)",
					ch.Opponent.Alias, ch.Opponent.Rating, ch.Opponent.Wins, ch.Opponent.Losses, ch.Opponent.Bankroll.Gold())
			}
			fmt.Fprintf(&sb, "  #%d by %s, wager %.2f gold\n", ch.ID, who, ch.Wager.Gold())
		}
	}

	if len(s.Leaderboard) > 0 {
		parts := make([]string, 0, len(s.Leaderboard))
		for i, entry := range s.Leaderboard {
			parts = append(parts, fmt.Sprintf("%d. %s rating %d (%dW/%dL)", i+1, entry.Alias, entry.Rating, entry.Wins, entry.Losses))
		}
		fmt.Fprintf(&sb, "Leaderboard: %s.\n", strings.Join(parts, "; "))
	}

	for _, taunt := range s.TauntsAtMe {
		who := taunt.From
		if p := s.Taunters[taunt.From]; p != nil {
			who = fmt.Sprintf("%s (rating %d, %dW/%dL)", p.Alias, p.Rating, p.Wins, p.Losses)
		}
		fmt.Fprintf(&sb, "Taunt at you from %s: %q\n", who, taunt.Message)
	}
	fmt.Fprintf(&sb, "You have sent %d taunts recently; stop at %d.\n", s.MyRecentTaunts, TauntSelfLimit)
	if s.HasOpenCreated {
		sb.WriteString("You already have an unaccepted challenge of your own open; do not create another.\n")
	}
	fmt.Fprintf(&sb, "Wagers must stay between %.2f and %.2f gold.\n", s.MinWager.Gold(), s.MaxWager.Gold())
	sb.WriteString("Choose one action now.")
	return sb.String()
}

// SystemPrompt is the persona instruction set plus the response protocol.
func (s Snapshot) SystemPrompt() string {
	return s.Persona.Prompt + "\n\n" +
		"You may write short commentary in character, but your reply MUST end with one final line " +
		"containing a single JSON object, nothing after it. Schema: " +
		`{"action": "repair|claim_gpm|hire_crew|buy_upgrade|checkin|create_challenge|accept_challenge|` +
		`settle_challenge|cancel_challenge|join_tournament|place_bet|claim_bet|top_up|taunt|idle", ` +
		`"amount"?: number (gold), "challenge_id"?: number, "tournament_id"?: number, "prediction_id"?: number, ` +
		`"side"?: "creator"|"acceptor", "target"?: string, "message"?: string, "reason"?: string}.`
}
