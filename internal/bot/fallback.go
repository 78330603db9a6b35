package bot

import (
	"context"
	"math/rand"
	"time"

	"gooseduck/internal/app"
	"gooseduck/internal/domain"
)

// FallbackBrain is a rule-based stand-in used when no LLM endpoint is
// configured. Good players work tasks and wander, killers strike when
// alone with a victim, and everyone votes skip.
type FallbackBrain struct {
	rng *rand.Rand
}

// NewFallbackBrain builds a rule-based brain. A nil rng gets a
// time-seeded source.
func NewFallbackBrain(rng *rand.Rand) *FallbackBrain {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &FallbackBrain{rng: rng}
}

func (b *FallbackBrain) Decide(ctx context.Context, obs app.Observation) (app.Action, error) {
	if obs.Phase == domain.PhaseVoting {
		return app.Action{Kind: app.ActionVote, Target: app.VoteSkipTarget}, nil
	}

	pick := func(kind app.ActionKind) (app.Action, bool) {
		var matches []app.ActionOption
		for _, opt := range obs.AvailableActions {
			if opt.Kind == kind {
				matches = append(matches, opt)
			}
		}
		if len(matches) == 0 {
			return app.Action{}, false
		}
		opt := matches[b.rng.Intn(len(matches))]
		return app.Action{Kind: opt.Kind, Target: opt.Target}, true
	}

	// Killers take an opening when one presents itself.
	if obs.CanKill && obs.Role.Team == domain.TeamEvil && len(obs.PeopleHere) == 1 {
		if act, ok := pick(app.ActionKill); ok {
			return act, nil
		}
	}
	if act, ok := pick(app.ActionReport); ok {
		return act, nil
	}
	if act, ok := pick(app.ActionTask); ok {
		return act, nil
	}
	if act, ok := pick(app.ActionMove); ok {
		return act, nil
	}
	return app.Action{Kind: app.ActionWait}, nil
}

func (b *FallbackBrain) Speak(ctx context.Context, obs app.Observation) (string, error) {
	lines := []string{
		"I was just doing my tasks, nothing unusual on my end.",
		"I didn't see anything suspicious this round.",
		"Someone should explain where they were.",
	}
	return lines[b.rng.Intn(len(lines))], nil
}

func (b *FallbackBrain) Reply(ctx context.Context, obs app.Observation) (app.Reply, error) {
	return app.Reply{Text: "Nothing to report. I should get back to my tasks.", End: true}, nil
}
