package brain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Action names form a closed set. Anything the reasoning service emits
// outside this set is treated as unusable output, never executed.
const (
	ActionRepair          = "repair"
	ActionClaimGPM        = "claim_gpm"
	ActionHireCrew        = "hire_crew"
	ActionBuyUpgrade      = "buy_upgrade"
	ActionCheckin         = "checkin"
	ActionCreateChallenge = "create_challenge"
	ActionAcceptChallenge = "accept_challenge"
	ActionSettleChallenge = "settle_challenge"
	ActionCancelChallenge = "cancel_challenge"
	ActionJoinTournament  = "join_tournament"
	ActionPlaceBet        = "place_bet"
	ActionClaimBet        = "claim_bet"
	ActionTopUp           = "top_up"
	ActionTaunt           = "taunt"
	ActionIdle            = "idle"
)

// Decision is one cycle's chosen move. Amount is the raw numeric the model
// produced, in whole gold or smallest units; the executor normalizes and
// clamps it before anything reaches the ledger.
type Decision struct {
	Action       string  `json:"action"`
	Amount       float64 `json:"amount,omitempty"`
	ChallengeID  uint64  `json:"challenge_id,omitempty"`
	TournamentID uint64  `json:"tournament_id,omitempty"`
	PredictionID uint64  `json:"prediction_id,omitempty"`
	Side         string  `json:"side,omitempty"`
	Target       string  `json:"target,omitempty"`
	Message      string  `json:"message,omitempty"`
	Reason       string  `json:"reason,omitempty"`
}

func knownAction(action string) bool {
	switch action {
	case ActionRepair, ActionClaimGPM, ActionHireCrew, ActionBuyUpgrade,
		ActionCheckin, ActionCreateChallenge, ActionAcceptChallenge,
		ActionSettleChallenge, ActionCancelChallenge, ActionJoinTournament,
		ActionPlaceBet, ActionClaimBet, ActionTopUp, ActionTaunt, ActionIdle:
		return true
	}
	return false
}

// ParseResponse splits a reasoning-service reply into commentary and the
// structured final line. The commentary is for logs only; the final
// non-empty line must hold exactly one JSON object naming the action.
func ParseResponse(raw string) (Decision, string, error) {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	last := -1
	for i := len(lines) - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || trimmed == "```" || trimmed == "```json" {
			continue
		}
		last = i
		break
	}
	if last < 0 {
		return Decision{}, "", fmt.Errorf("empty response")
	}

	commentary := strings.TrimSpace(strings.Join(lines[:last], "\n"))

	final := strings.TrimSpace(lines[last])
	start := strings.Index(final, "{")
	end := strings.LastIndex(final, "}")
	if start < 0 || end <= start {
		return Decision{}, commentary, fmt.Errorf("final line has no JSON object: %q", trimDetail(final, 80))
	}

	var d Decision
	if err := json.Unmarshal([]byte(final[start:end+1]), &d); err != nil {
		return Decision{}, commentary, fmt.Errorf("final line: %w", err)
	}
	normalize(&d)
	if !knownAction(d.Action) {
		return Decision{}, commentary, fmt.Errorf("unknown action: %q", d.Action)
	}
	return d, commentary, nil
}

func normalize(d *Decision) {
	clean := strings.ToLower(strings.TrimSpace(d.Action))
	clean = strings.ReplaceAll(clean, " ", "_")
	clean = strings.ReplaceAll(clean, "-", "_")
	switch clean {
	case "claim", "claim_gold", "claim_income", "claim_accrual":
		clean = ActionClaimGPM
	case "challenge", "new_challenge", "create":
		clean = ActionCreateChallenge
	case "accept", "take_challenge":
		clean = ActionAcceptChallenge
	case "settle", "resolve":
		clean = ActionSettleChallenge
	case "cancel":
		clean = ActionCancelChallenge
	case "bet", "wager":
		clean = ActionPlaceBet
	case "broadcast", "trash_talk":
		clean = ActionTaunt
	case "wait", "noop", "nothing", "hold":
		clean = ActionIdle
	}
	d.Action = clean
	d.Side = strings.ToLower(strings.TrimSpace(d.Side))
	d.Target = strings.TrimSpace(d.Target)
	d.Message = strings.TrimSpace(d.Message)
	d.Reason = strings.TrimSpace(d.Reason)
}

func trimDetail(text string, max int) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= max || max <= 3 {
		return trimmed
	}
	return trimmed[:max-3] + "..."
}
