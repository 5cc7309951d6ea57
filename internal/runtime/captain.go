// Package runtime runs one captain's read → decide → sanitize → execute
// cycle. Every captain owns its loop, tracker, and timers outright; loops
// share nothing mutable, only the rate-limited read client.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/flack-404/SevenSeasProtocol-sub000/internal/brain"
	"github.com/flack-404/SevenSeasProtocol-sub000/internal/executor"
	"github.com/flack-404/SevenSeasProtocol-sub000/internal/ledger"
	"github.com/flack-404/SevenSeasProtocol-sub000/internal/persona"
	"github.com/flack-404/SevenSeasProtocol-sub000/internal/retry"
	"github.com/flack-404/SevenSeasProtocol-sub000/internal/store"
	"github.com/flack-404/SevenSeasProtocol-sub000/internal/tracker"
)

const (
	orphanScanLimit  = 50
	tauntFeedWindow  = 120
	cycleWriteBudget = 45 * time.Second
)

// Profiles are fetched for challenge creators and for captains taunting us,
// so the per-cycle read cap covers both sets.
const maxProfileReads = brain.MaxContextChallenges + brain.MaxTauntsAtSelf

type Captain struct {
	Persona persona.Persona
	Address string

	Reads   *ledger.Client
	Tx      *ledger.TxClient
	Brain   *brain.Engine
	Exec    *executor.Executor
	Tracker *tracker.Tracker
	Store   *store.Store
	Log     zerolog.Logger

	Interval        time.Duration
	BankrollFloor   *ledger.Amount
	MinWager        *ledger.Amount
	MaxWager        *ledger.Amount
	InitialBankroll *ledger.Amount

	retryCfg retry.Config
}

func (c *Captain) Run(ctx context.Context) error {
	c.retryCfg = retry.DefaultConfig(ledger.IsRateLimited)

	c.recoverOrphans(ctx)

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	c.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.cycle(ctx)
		}
	}
}

// recoverOrphans adopts challenges left in flight by a previous process:
// accepted-but-unsettled ones restart their observation window from now.
func (c *Captain) recoverOrphans(ctx context.Context) {
	recent, err := retry.Do(ctx, c.retryCfg, func(ctx context.Context) ([]ledger.Challenge, error) {
		return c.Reads.ListRecentChallenges(ctx, orphanScanLimit)
	})
	if err != nil {
		c.Log.Warn().Err(err).Msg("orphan scan failed, starting with empty tracker")
		return
	}
	adopted := c.Tracker.Recover(c.Address, recent)
	if len(adopted) > 0 {
		c.Log.Info().Uints64("challenges", adopted).Msg("adopted in-flight challenges from before restart")
	}
}

// cycle runs one full pass. A shutdown signal between cycles stops the
// loop; a signal during a cycle lets the cycle finish. In-flight writes
// are never abandoned half-submitted, so ledger calls run on their own
// bounded context rather than the loop's.
func (c *Captain) cycle(parent context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), cycleWriteBudget)
	defer cancel()

	ship, err := retry.Do(ctx, c.retryCfg, func(ctx context.Context) (ledger.Ship, error) {
		return c.Reads.GetShip(ctx, c.Address)
	})
	if errors.Is(err, ledger.ErrNoShip) {
		c.remediate(ctx, "no ship on ledger", func() (ledger.Receipt, error) {
			return c.Tx.CreateShip(ctx)
		})
		return
	}
	if err != nil {
		c.Log.Warn().Err(err).Msg("ship read failed, skipping cycle")
		return
	}

	record, err := retry.Do(ctx, c.retryCfg, func(ctx context.Context) (ledger.CaptainRecord, error) {
		return c.Reads.GetCaptainRecord(ctx, c.Address)
	})
	if errors.Is(err, ledger.ErrNotRegistered) {
		c.remediate(ctx, "not registered for battle", func() (ledger.Receipt, error) {
			return c.Tx.Register(ctx, c.Persona.Archetype, c.InitialBankroll, c.Persona.Alias)
		})
		return
	}
	if err != nil {
		c.Log.Warn().Err(err).Msg("record read failed, skipping cycle")
		return
	}
	if !record.Active || record.Bankroll == nil || record.Bankroll.Cmp(&c.BankrollFloor.Int) < 0 {
		c.Log.Info().Str("why", "bankroll below floor").Msg("remediating before normal play")
		d := brain.Decision{
			Action: brain.ActionTopUp,
			Amount: c.BankrollFloor.Gold() * 2,
			Reason: "bankroll below floor",
		}
		status, detail := c.Exec.Execute(ctx, d, brain.Snapshot{})
		c.record(ctx, d, status, detail, "")
		return
	}

	c.advancePending(ctx)

	snap, err := c.gather(ctx, ship, record)
	if err != nil {
		c.Log.Warn().Err(err).Msg("context gather failed, skipping decision")
		return
	}

	decision := c.Brain.Decide(ctx, snap)
	sanitized, rejected := brain.Sanitize(decision, snap, c.Brain.Rand)
	if rejected != "" {
		c.Log.Info().
			Str("rejected", decision.Action).
			Str("substituted", sanitized.Action).
			Str("why", rejected).
			Msg("sanitizer override")
	}

	status, detail := c.Exec.Execute(ctx, sanitized, snap)
	c.record(ctx, sanitized, status, detail, rejected)
}

// remediate is the distinct branch for business-meaningful "you don't
// exist yet" states: one repair write, then back to sleep. No battle
// decisions until the ledger recognizes the captain again.
func (c *Captain) remediate(ctx context.Context, why string, op func() (ledger.Receipt, error)) {
	c.Log.Info().Str("why", why).Msg("remediating before normal play")
	receipt, err := op()
	if err != nil {
		c.Log.Warn().Err(err).Str("why", why).Msg("remediation failed, will retry next cycle")
		return
	}
	c.Log.Info().Str("tx", receipt.TxHash).Str("why", why).Msg("remediation submitted")
	c.record(ctx, brain.Decision{Action: "remediate", Reason: why}, executor.StatusExecuted, receipt.TxHash, "")
}

// advancePending moves every tracked challenge one step: stamp newly
// observed acceptances, settle the ones whose window elapsed, drop the
// finished. Settlement goes through the executor so race losses get the
// normal benign treatment.
func (c *Captain) advancePending(ctx context.Context) {
	for _, id := range c.Tracker.IDs() {
		ch, err := retry.Do(ctx, c.retryCfg, func(ctx context.Context) (ledger.Challenge, error) {
			return c.Reads.GetChallenge(ctx, id)
		})
		if err != nil {
			c.Log.Warn().Err(err).Uint64("challenge", id).Msg("challenge read failed")
			continue
		}
		switch ch.Status {
		case ledger.ChallengeOpen:
			// still waiting for a counterparty
		case ledger.ChallengeAccepted:
			if entry, ok := c.Tracker.Get(id); ok && entry.State == tracker.StateWaiting {
				c.Tracker.MarkAccepted(id)
				c.Log.Info().Uint64("challenge", id).Msg("acceptance observed, window started")
			}
		case ledger.ChallengeSettled, ledger.ChallengeCancelled:
			c.Tracker.Drop(id)
		}
	}

	for _, id := range c.Tracker.SettleDue() {
		d := brain.Decision{Action: brain.ActionSettleChallenge, ChallengeID: id, Reason: "observation window elapsed"}
		status, detail := c.Exec.Execute(ctx, d, brain.Snapshot{})
		c.record(ctx, d, status, detail, "")
	}
}

// gather pulls the decision context: open challenges enriched with fresh
// opponent profiles, the top of the leaderboard, and the taunt feed. The
// profile cache lives exactly one cycle.
func (c *Captain) gather(ctx context.Context, ship ledger.Ship, record ledger.CaptainRecord) (brain.Snapshot, error) {
	snap := brain.Snapshot{
		Self:           c.Address,
		Persona:        c.Persona,
		Ship:           ship,
		Record:         record,
		HasOpenCreated: c.Tracker.HasOpenCreated(),
		BankrollFloor:  c.BankrollFloor,
		MinWager:       c.MinWager,
		MaxWager:       c.MaxWager,
	}

	open, err := retry.Do(ctx, c.retryCfg, func(ctx context.Context) ([]ledger.Challenge, error) {
		return c.Reads.ListOpenChallenges(ctx, c.Address)
	})
	if err != nil {
		return brain.Snapshot{}, fmt.Errorf("open challenges: %w", err)
	}
	if len(open) > brain.MaxContextChallenges {
		open = open[:brain.MaxContextChallenges]
	}

	profiles := map[string]*brain.OpponentProfile{}
	reads := 0
	profileFor := func(addr string) *brain.OpponentProfile {
		if addr == "" || addr == c.Address {
			return nil
		}
		if p, ok := profiles[addr]; ok {
			return p
		}
		if reads >= maxProfileReads {
			return nil
		}
		reads++
		rec, err := retry.Do(ctx, c.retryCfg, func(ctx context.Context) (ledger.CaptainRecord, error) {
			return c.Reads.GetCaptainRecord(ctx, addr)
		})
		if err != nil {
			profiles[addr] = nil
			return nil
		}
		p := &brain.OpponentProfile{
			Captain:  addr,
			Alias:    rec.Alias,
			Rating:   rec.Rating,
			Wins:     rec.Wins,
			Losses:   rec.Losses,
			Bankroll: rec.Bankroll,
		}
		profiles[addr] = p
		return p
	}

	for _, ch := range open {
		snap.OpenChallenges = append(snap.OpenChallenges, brain.ChallengeView{
			Challenge: ch,
			Opponent:  profileFor(ch.Creator),
		})
	}

	board, err := retry.Do(ctx, c.retryCfg, func(ctx context.Context) ([]ledger.LeaderboardEntry, error) {
		return c.Reads.GetLeaderboard(ctx, brain.MaxLeaderboard)
	})
	if err != nil {
		c.Log.Debug().Err(err).Msg("leaderboard unavailable this cycle")
	} else {
		snap.Leaderboard = board
	}

	taunts, err := retry.Do(ctx, c.retryCfg, func(ctx context.Context) ([]ledger.Taunt, error) {
		return c.Reads.GetRecentTaunts(ctx, tauntFeedWindow)
	})
	if err != nil {
		c.Log.Debug().Err(err).Msg("taunt feed unavailable this cycle")
	} else {
		for _, taunt := range taunts {
			if taunt.From == c.Address {
				snap.MyRecentTaunts++
				continue
			}
			if taunt.Target == c.Address && len(snap.TauntsAtMe) < brain.MaxTauntsAtSelf {
				snap.TauntsAtMe = append(snap.TauntsAtMe, taunt)
			}
		}
		for _, taunt := range snap.TauntsAtMe {
			if p := profileFor(taunt.From); p != nil {
				if snap.Taunters == nil {
					snap.Taunters = map[string]*brain.OpponentProfile{}
				}
				snap.Taunters[taunt.From] = p
			}
		}
	}

	return snap, nil
}

func (c *Captain) record(ctx context.Context, d brain.Decision, status, detail, rejected string) {
	if c.Store == nil {
		return
	}
	reason := d.Reason
	if rejected != "" {
		reason = "sanitized (" + rejected + "): " + reason
	}
	row := store.Row{
		Captain:     c.Address,
		Action:      d.Action,
		Amount:      strconv.FormatFloat(d.Amount, 'f', -1, 64),
		ChallengeID: d.ChallengeID,
		Status:      status,
		Detail:      detail,
		Reason:      reason,
	}
	if err := c.Store.Record(ctx, row); err != nil {
		c.Log.Debug().Err(err).Msg("decision log write failed")
	}
}
