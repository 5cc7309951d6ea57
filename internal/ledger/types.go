package ledger

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// Amount is a ledger balance in the smallest unit (18 decimals per gold).
// The gateway serializes amounts as decimal strings to avoid float drift.
type Amount struct {
	big.Int
}

func NewAmount(v int64) *Amount {
	a := &Amount{}
	a.SetInt64(v)
	return a
}

// GoldToAmount converts a whole-gold quantity to smallest units.
func GoldToAmount(gold float64) *Amount {
	f := new(big.Float).SetFloat64(gold)
	f.Mul(f, big.NewFloat(1e18))
	a := &Amount{}
	f.Int(&a.Int)
	return a
}

func ParseAmount(s string) (*Amount, error) {
	a := &Amount{}
	if _, ok := a.SetString(strings.TrimSpace(s), 10); !ok {
		return nil, fmt.Errorf("invalid amount: %q", s)
	}
	return a, nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		a.SetInt64(0)
		return nil
	}
	if _, ok := a.SetString(raw, 10); !ok {
		return fmt.Errorf("invalid amount: %q", raw)
	}
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// Gold renders the amount in whole gold for logs and prompts. Safe on a
// nil receiver so omitted ledger fields read as zero.
func (a *Amount) Gold() float64 {
	if a == nil {
		return 0
	}
	f := new(big.Float).SetInt(&a.Int)
	f.Quo(f, big.NewFloat(1e18))
	v, _ := f.Float64()
	return v
}

func (a *Amount) IsZero() bool {
	return a == nil || a.Sign() == 0
}

// Ship is a captain's vessel as the ledger reports it. The daemon never
// mutates it directly, only observes it between cycles.
type Ship struct {
	Captain       string  `json:"captain"`
	Health        int     `json:"health"`
	MaxHealth     int     `json:"max_health"`
	Gold          *Amount `json:"gold"`
	GoldPerMinute *Amount `json:"gold_per_minute"`
	UnclaimedGold *Amount `json:"unclaimed_gold"`
	Zone          string  `json:"zone"`
	InPort        bool    `json:"in_port"`
	CanRepair     bool    `json:"can_repair"`
}

// CaptainRecord is the competitive-ranking view of one captain.
type CaptainRecord struct {
	Captain      string  `json:"captain"`
	Alias        string  `json:"alias"`
	Rating       int     `json:"rating"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	TotalWagered *Amount `json:"total_wagered"`
	Bankroll     *Amount `json:"bankroll"`
	Active       bool    `json:"active"`
}

const (
	ChallengeOpen      = "open"
	ChallengeAccepted  = "accepted"
	ChallengeSettled   = "settled"
	ChallengeCancelled = "cancelled"
)

// Challenge is a wagered two-captain battle in flight. AcceptedAt is the
// ledger's own timestamp; the tracker keeps its own local acceptance clock.
type Challenge struct {
	ID         uint64  `json:"id"`
	Creator    string  `json:"creator"`
	Acceptor   string  `json:"acceptor"`
	Wager      *Amount `json:"wager"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"created_at"`
	AcceptedAt string  `json:"accepted_at,omitempty"`
}

func (c Challenge) Involves(captain string) bool {
	return c.Creator == captain || c.Acceptor == captain
}

type LeaderboardEntry struct {
	Captain  string  `json:"captain"`
	Alias    string  `json:"alias"`
	Rating   int     `json:"rating"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	Bankroll *Amount `json:"bankroll"`
}

// Taunt is a public broadcast. Empty Target means addressed to everyone.
type Taunt struct {
	From    string `json:"from"`
	Target  string `json:"target,omitempty"`
	Message string `json:"message"`
	Time    string `json:"time"`
}
