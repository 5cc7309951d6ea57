// Package tracker follows this captain's challenges across cycles:
// waiting for a counterparty, accepted and inside the observation window,
// then due for settlement. State lives in memory but is reconstructable
// from the ledger, so a crash between acceptance and settlement only costs
// one fresh observation window.
package tracker

import (
	"sort"
	"time"

	"github.com/flack-404/SevenSeasProtocol-sub000/internal/ledger"
)

type State int

const (
	StateWaiting State = iota
	StateAccepted
)

type Entry struct {
	ID    uint64
	State State
	// AcceptedAt is when THIS process observed acceptance, not the
	// ledger's timestamp. The observation window runs from local
	// discovery to tolerate clock and latency skew.
	AcceptedAt time.Time
}

// Tracker is owned by exactly one captain loop; no locking.
type Tracker struct {
	Window time.Duration
	Now    func() time.Time

	entries map[uint64]*Entry
}

func New(window time.Duration) *Tracker {
	return &Tracker{
		Window:  window,
		Now:     time.Now,
		entries: map[uint64]*Entry{},
	}
}

// Track registers a freshly created challenge. Re-tracking an id already
// known is a no-op: the tracker reconciles, it never duplicates intent.
func (t *Tracker) Track(id uint64) {
	if _, ok := t.entries[id]; ok {
		return
	}
	t.entries[id] = &Entry{ID: id, State: StateWaiting}
}

// Adopt registers a challenge already observed as accepted, stamping the
// acceptance clock at now. Used at startup orphan recovery and when a
// cycle first sees one of its waiting challenges accepted.
func (t *Tracker) Adopt(id uint64) {
	if e, ok := t.entries[id]; ok {
		if e.State == StateWaiting {
			e.State = StateAccepted
			e.AcceptedAt = t.Now()
		}
		return
	}
	t.entries[id] = &Entry{ID: id, State: StateAccepted, AcceptedAt: t.Now()}
}

func (t *Tracker) MarkAccepted(id uint64) {
	t.Adopt(id)
}

func (t *Tracker) Drop(id uint64) {
	delete(t.entries, id)
}

func (t *Tracker) Get(id uint64) (Entry, bool) {
	e, ok := t.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

func (t *Tracker) Len() int {
	return len(t.entries)
}

// IDs returns tracked ids in ascending order for deterministic iteration.
func (t *Tracker) IDs() []uint64 {
	ids := make([]uint64, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// HasOpenCreated reports whether a self-created challenge is still waiting
// for a counterparty. At most one such commitment may be outstanding.
func (t *Tracker) HasOpenCreated() bool {
	for _, e := range t.entries {
		if e.State == StateWaiting {
			return true
		}
	}
	return false
}

// SettleDue lists accepted challenges whose observation window has fully
// elapsed. A challenge accepted at local time T settles at T+Window or
// later, never before.
func (t *Tracker) SettleDue() []uint64 {
	now := t.Now()
	due := []uint64{}
	for _, e := range t.entries {
		if e.State != StateAccepted {
			continue
		}
		if !now.Before(e.AcceptedAt.Add(t.Window)) {
			due = append(due, e.ID)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i] < due[j] })
	return due
}

// Recover scans a recent window of ledger challenges and adopts everything
// this captain is party to that is still in flight: accepted-but-unsettled
// ones get a fresh observation window from discovery, open self-created
// ones resume waiting. Returns the adopted accepted ids.
func (t *Tracker) Recover(self string, challenges []ledger.Challenge) []uint64 {
	adopted := []uint64{}
	for _, ch := range challenges {
		if !ch.Involves(self) {
			continue
		}
		switch ch.Status {
		case ledger.ChallengeAccepted:
			if _, ok := t.entries[ch.ID]; !ok {
				t.Adopt(ch.ID)
				adopted = append(adopted, ch.ID)
			}
		case ledger.ChallengeOpen:
			if ch.Creator == self {
				t.Track(ch.ID)
			}
		}
	}
	sort.Slice(adopted, func(i, j int) bool { return adopted[i] < adopted[j] })
	return adopted
}
