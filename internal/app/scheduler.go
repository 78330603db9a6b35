package app

import (
	"context"

	"gooseduck/internal/domain"
)

// processTurns drains AI turns until the next human actor, the end of the
// round, a phase change, or an open conversation. Execution is strictly
// sequential: one participant resolves one action at a time, and a phase
// change triggered mid-resolution halts the remaining AI turns for this
// call.
func (g *Game) processTurns(ctx context.Context) {
	for {
		if g.state.Phase != domain.PhaseFreeRoam {
			g.logger.Debug("turn processing stopped, phase is %s", g.state.Phase)
			return
		}
		if g.state.Conversation.Active {
			g.logger.Debug("turn processing stopped, conversation active")
			return
		}

		if !g.anyPending() {
			g.startNewRound()
			// The human sits at the front of the order and acts first in
			// the fresh round; wait for their submission.
			return
		}

		next := g.nextPending()
		if next == nil {
			return
		}
		if next.IsHuman {
			return // wait for external input
		}
		g.takeAITurn(ctx, next)
	}
}

// AdvanceUnattended drives pending AI turns once the human can no longer
// submit actions. With the human dead the remaining participants keep
// playing until a team wins; each call drains at most one free-roam
// round so the hosting tick loop can pace it. It reports whether the
// game advanced.
func (g *Game) AdvanceUnattended(ctx context.Context) bool {
	human := g.players[HumanID]
	if human == nil || human.Alive() {
		return false
	}
	if g.state.Phase != domain.PhaseFreeRoam {
		return false
	}

	round := g.state.Round
	g.processTurns(ctx)
	return g.state.Round != round || g.state.Phase != domain.PhaseFreeRoam
}

// anyPending reports whether any living participant has yet to act this
// round.
func (g *Game) anyPending() bool {
	for _, id := range g.turnOrder {
		p := g.players[id]
		if p != nil && p.Alive() && !p.HasActed {
			return true
		}
	}
	return false
}

// nextPending walks the fixed permutation from the cursor to the next
// living, not-yet-acted participant. Dead participants are skipped.
func (g *Game) nextPending() *domain.Participant {
	length := len(g.turnOrder)
	for i := 0; i < length; i++ {
		g.turnIndex = (g.turnIndex + 1) % length
		candidate := g.players[g.turnOrder[g.turnIndex]]
		if candidate != nil && candidate.Alive() && !candidate.HasActed {
			return candidate
		}
	}
	return nil
}

// takeAITurn consults the Brain for one action and applies it through the
// resolver. Any failure, from the Brain or the resolver, degrades to the
// inert wait action; it never propagates.
func (g *Game) takeAITurn(ctx context.Context, p *domain.Participant) {
	p.HasActed = true

	act, err := g.brain.Decide(ctx, g.buildObservation(p))
	if err != nil {
		g.logger.Warn("brain decide failed for %s: %v", p.ID, err)
		act = Action{Kind: ActionWait}
	}
	g.logger.Debug("npc %s acts: %s -> %s", p.Name, act.Kind, act.Target)

	if err := g.applyAIAction(ctx, p, act); err != nil {
		g.logger.Debug("npc %s action %s rejected: %v", p.Name, act.Kind, err)
		p.LastAction = "Waiting"
	}
}

// applyAIAction dispatches an AI decision through the same resolvers the
// human uses.
func (g *Game) applyAIAction(ctx context.Context, p *domain.Participant, act Action) error {
	switch act.Kind {
	case ActionMove:
		return g.resolveMove(p, act.Target)
	case ActionTask:
		return g.resolveTask(p, act.Target)
	case ActionKill:
		return g.resolveKill(ctx, p, act.Target)
	case ActionReport:
		return g.resolveReport(ctx, p, act.Target)
	case ActionEmergency:
		return g.resolveEmergency(ctx, p)
	case ActionVote:
		return g.resolveVote(p, act.Target)
	case ActionTalk:
		_, err := g.resolveTalk(ctx, p, act.Target, true)
		return err
	default:
		p.LastAction = "Waiting"
		return nil
	}
}

// startNewRound advances the round counter and rearms every participant's
// turn flag.
func (g *Game) startNewRound() {
	g.state.Round++
	g.turnIndex = 0
	g.resetTurnFlags()
	g.logger.Debug("round %d begins", g.state.Round)
}
