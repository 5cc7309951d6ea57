package brain

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/flack-404/SevenSeasProtocol-sub000/internal/llm"
)

const decisionTimeout = 30 * time.Second

// Engine turns one state snapshot into one decision. The reasoning service
// is advisory: any failure, timeout, or unusable output collapses to the
// deterministic fallback so the loop never stalls on it.
type Engine struct {
	LLM  llm.Client
	Rand *rand.Rand
	Log  zerolog.Logger
}

func NewEngine(client llm.Client, rng *rand.Rand, log zerolog.Logger) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{LLM: client, Rand: rng, Log: log}
}

func (e *Engine) Decide(ctx context.Context, snap Snapshot) Decision {
	if e.LLM == nil {
		return Fallback(snap, e.Rand)
	}

	prompt := llm.Prompt{
		System: snap.SystemPrompt(),
		User:   snap.Render(),
	}

	genCtx, cancel := context.WithTimeout(ctx, decisionTimeout)
	defer cancel()
	raw, err := e.LLM.Generate(genCtx, prompt)
	if err != nil {
		e.Log.Warn().Err(err).
			Str("provider", e.LLM.Provider()).
			Str("model", e.LLM.Model()).
			Msg("reasoning service unavailable, using fallback")
		return Fallback(snap, e.Rand)
	}

	decision, commentary, err := ParseResponse(raw)
	if commentary != "" {
		e.Log.Debug().Str("commentary", commentary).Msg("persona commentary")
	}
	if err != nil {
		e.Log.Warn().Err(err).
			Str("raw", trimDetail(raw, 200)).
			Msg("unusable reasoning output, using fallback")
		return Fallback(snap, e.Rand)
	}
	e.Log.Info().
		Str("action", decision.Action).
		Str("reason", decision.Reason).
		Msg("decision")
	return decision
}
