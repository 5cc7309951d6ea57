// Package executor maps one validated decision to one ledger write. It is
// the last gate before money moves: amounts get normalized and clamped,
// spending authorizations are topped up first, and failures are classified
// rather than retried (a funds-moving write is never re-submitted within
// the same cycle).
package executor

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/rs/zerolog"

	"github.com/flack-404/SevenSeasProtocol-sub000/internal/brain"
	"github.com/flack-404/SevenSeasProtocol-sub000/internal/ledger"
	"github.com/flack-404/SevenSeasProtocol-sub000/internal/tracker"
)

// Counterparty contracts that pull funds and therefore need a spending
// authorization before the primary operation.
const (
	EscrowContract  = "challenge_escrow"
	BettingContract = "prediction_market"
	ArenaContract   = "battle_arena"
)

// Outcome classification for logs and the decision store.
const (
	StatusExecuted = "executed"
	StatusBlocked  = "blocked"
	StatusRaceLost = "race_lost"
	StatusFailed   = "failed"
	StatusIdle     = "idle"
)

// WholeUnitThreshold separates "the model meant whole gold" from "the
// model already speaks smallest units". 1e15 is far above any sane whole
// gold wager and far below one gold in smallest units (1e18).
const WholeUnitThreshold = 1e15

// NormalizeWager turns an untrusted numeric from the reasoning service
// into a ledger amount: scale whole-gold values up by 1e18, then clamp
// into [min, max]. The clamp is idempotent.
func NormalizeWager(raw float64, min, max *ledger.Amount) *ledger.Amount {
	if raw < 0 {
		raw = 0
	}
	f := new(big.Float).SetFloat64(raw)
	if raw < WholeUnitThreshold {
		f.Mul(f, big.NewFloat(1e18))
	}
	out := &ledger.Amount{}
	f.Int(&out.Int)
	if out.Cmp(&min.Int) < 0 {
		out.Set(&min.Int)
	}
	if out.Cmp(&max.Int) > 0 {
		out.Set(&max.Int)
	}
	return out
}

type Executor struct {
	Tx      *ledger.TxClient
	Tracker *tracker.Tracker
	Log     zerolog.Logger

	MinWager *ledger.Amount
	MaxWager *ledger.Amount

	// approvals is the locally known spending authorization per
	// counterparty contract. Only ever increased, never re-read down.
	approvals map[string]*ledger.Amount
}

func New(tx *ledger.TxClient, tr *tracker.Tracker, min, max *ledger.Amount, log zerolog.Logger) *Executor {
	return &Executor{
		Tx:        tx,
		Tracker:   tr,
		Log:       log,
		MinWager:  min,
		MaxWager:  max,
		approvals: map[string]*ledger.Amount{},
	}
}

// Execute submits the single write the decision calls for and returns the
// outcome classification plus a short detail string.
func (e *Executor) Execute(ctx context.Context, d brain.Decision, snap brain.Snapshot) (string, string) {
	switch d.Action {
	case brain.ActionIdle:
		return StatusIdle, ""

	case brain.ActionRepair:
		if !snap.Ship.CanRepair {
			return StatusBlocked, "repair not ready"
		}
		return e.submit(ctx, d, func() (ledger.Receipt, error) {
			return e.Tx.Repair(ctx)
		})

	case brain.ActionClaimGPM:
		if snap.Ship.UnclaimedGold.IsZero() {
			return StatusBlocked, "nothing to claim"
		}
		return e.submit(ctx, d, func() (ledger.Receipt, error) {
			return e.Tx.ClaimGPM(ctx)
		})

	case brain.ActionHireCrew:
		return e.submit(ctx, d, func() (ledger.Receipt, error) {
			return e.Tx.HireCrew(ctx)
		})

	case brain.ActionBuyUpgrade:
		return e.submit(ctx, d, func() (ledger.Receipt, error) {
			return e.Tx.BuyUpgrade(ctx)
		})

	case brain.ActionCheckin:
		return e.submit(ctx, d, func() (ledger.Receipt, error) {
			return e.Tx.Checkin(ctx)
		})

	case brain.ActionCreateChallenge:
		if snap.HasOpenCreated {
			return StatusBlocked, "one unaccepted challenge already open"
		}
		wager := NormalizeWager(d.Amount, e.MinWager, e.MaxWager)
		if err := e.ensureAllowance(ctx, EscrowContract, wager); err != nil {
			return StatusFailed, trimDetail(err)
		}
		receipt, err := e.Tx.CreateChallenge(ctx, wager)
		if err != nil {
			return e.classify(d, err)
		}
		if receipt.ChallengeID != 0 {
			e.Tracker.Track(receipt.ChallengeID)
		}
		e.Log.Info().
			Uint64("challenge", receipt.ChallengeID).
			Str("wager", wager.String()).
			Msg("challenge posted, waiting for a taker")
		return StatusExecuted, receipt.TxHash

	case brain.ActionAcceptChallenge:
		if d.ChallengeID == 0 {
			return StatusBlocked, "no challenge id"
		}
		wager := e.wagerFor(d.ChallengeID, snap)
		if err := e.ensureAllowance(ctx, EscrowContract, wager); err != nil {
			return StatusFailed, trimDetail(err)
		}
		receipt, err := e.Tx.AcceptChallenge(ctx, d.ChallengeID)
		if err != nil {
			return e.classify(d, err)
		}
		e.Tracker.Adopt(d.ChallengeID)
		e.Log.Info().Uint64("challenge", d.ChallengeID).Msg("challenge accepted, observation window open")
		return StatusExecuted, receipt.TxHash

	case brain.ActionSettleChallenge:
		if d.ChallengeID == 0 {
			return StatusBlocked, "no challenge id"
		}
		receipt, err := e.Tx.SettleChallenge(ctx, d.ChallengeID)
		if err != nil {
			return e.classify(d, err)
		}
		e.Tracker.Drop(d.ChallengeID)
		e.Log.Info().Uint64("challenge", d.ChallengeID).Msg("challenge settled")
		return StatusExecuted, receipt.TxHash

	case brain.ActionCancelChallenge:
		if d.ChallengeID == 0 {
			return StatusBlocked, "no challenge id"
		}
		receipt, err := e.Tx.CancelChallenge(ctx, d.ChallengeID)
		if err != nil {
			return e.classify(d, err)
		}
		e.Tracker.Drop(d.ChallengeID)
		e.Log.Info().Uint64("challenge", d.ChallengeID).Msg("challenge cancelled")
		return StatusExecuted, receipt.TxHash

	case brain.ActionJoinTournament:
		if d.TournamentID == 0 {
			return StatusBlocked, "no tournament id"
		}
		return e.submit(ctx, d, func() (ledger.Receipt, error) {
			return e.Tx.JoinTournament(ctx, d.TournamentID)
		})

	case brain.ActionPlaceBet:
		if d.PredictionID == 0 {
			return StatusBlocked, "no prediction id"
		}
		if d.Side != "creator" && d.Side != "acceptor" {
			return StatusBlocked, fmt.Sprintf("invalid side %q", d.Side)
		}
		amount := NormalizeWager(d.Amount, e.MinWager, e.MaxWager)
		if err := e.ensureAllowance(ctx, BettingContract, amount); err != nil {
			return StatusFailed, trimDetail(err)
		}
		return e.submit(ctx, d, func() (ledger.Receipt, error) {
			return e.Tx.PlaceBet(ctx, d.PredictionID, d.Side, amount)
		})

	case brain.ActionClaimBet:
		if d.PredictionID == 0 {
			return StatusBlocked, "no prediction id"
		}
		return e.submit(ctx, d, func() (ledger.Receipt, error) {
			return e.Tx.ClaimBet(ctx, d.PredictionID)
		})

	case brain.ActionTopUp:
		amount := NormalizeWager(d.Amount, e.MinWager, e.MaxWager)
		if err := e.ensureAllowance(ctx, ArenaContract, amount); err != nil {
			return StatusFailed, trimDetail(err)
		}
		return e.submit(ctx, d, func() (ledger.Receipt, error) {
			return e.Tx.TopUp(ctx, amount)
		})

	case brain.ActionTaunt:
		if d.Message == "" {
			return StatusBlocked, "empty taunt"
		}
		return e.submit(ctx, d, func() (ledger.Receipt, error) {
			return e.Tx.Taunt(ctx, d.Target, d.Message)
		})
	}
	return StatusBlocked, fmt.Sprintf("unknown action %q", d.Action)
}

func (e *Executor) submit(ctx context.Context, d brain.Decision, op func() (ledger.Receipt, error)) (string, string) {
	receipt, err := op()
	if err != nil {
		return e.classify(d, err)
	}
	e.Log.Info().Str("action", d.Action).Str("tx", receipt.TxHash).Msg("confirmed")
	return StatusExecuted, receipt.TxHash
}

// classify separates the expected race loss from a real write failure.
// Both are benign for the cycle: the next state read reconciles. The log
// carries enough to distinguish "lost the race" from "acted on stale
// local state" after the fact.
func (e *Executor) classify(d brain.Decision, err error) (string, string) {
	if ledger.IsRaceLoss(err) {
		localState := "untracked"
		if entry, ok := e.Tracker.Get(d.ChallengeID); ok {
			if entry.State == tracker.StateAccepted {
				localState = "accepted"
			} else {
				localState = "waiting"
			}
		}
		e.Log.Info().
			Str("action", d.Action).
			Uint64("challenge", d.ChallengeID).
			Str("local_state", localState).
			Str("ledger_says", trimDetail(err)).
			Msg("lost the race, moving on")
		return StatusRaceLost, trimDetail(err)
	}
	if errors.Is(err, context.Canceled) {
		return StatusFailed, "cancelled"
	}
	e.Log.Warn().Str("action", d.Action).Str("err", trimDetail(err)).Msg("write failed")
	return StatusFailed, trimDetail(err)
}

// ensureAllowance guarantees the counterparty contract may pull at least
// amount, approving with 10x headroom so authorizations stay rare. The
// known allowance only ever grows.
func (e *Executor) ensureAllowance(ctx context.Context, spender string, amount *ledger.Amount) error {
	if current, ok := e.approvals[spender]; ok && current.Cmp(&amount.Int) >= 0 {
		return nil
	}
	granted := &ledger.Amount{}
	granted.Mul(&amount.Int, big.NewInt(10))
	if _, err := e.Tx.Approve(ctx, spender, granted); err != nil {
		return fmt.Errorf("approve %s: %w", spender, err)
	}
	e.approvals[spender] = granted
	e.Log.Debug().Str("spender", spender).Str("amount", granted.String()).Msg("spending authorization raised")
	return nil
}

// wagerFor looks up the challenge wager from the snapshot so the escrow
// authorization covers it; unknown ids fall back to the max wager.
func (e *Executor) wagerFor(id uint64, snap brain.Snapshot) *ledger.Amount {
	for _, ch := range snap.OpenChallenges {
		if ch.ID == id && ch.Wager != nil {
			return ch.Wager
		}
	}
	return e.MaxWager
}

func trimDetail(err error) string {
	msg := err.Error()
	if len(msg) > 160 {
		msg = msg[:157] + "..."
	}
	return msg
}
