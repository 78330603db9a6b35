package app

import (
	"gooseduck/internal/domain"
)

// resolveVotes tallies the cast votes, applies the ejection rules and runs
// the win evaluator. A tie or an all-skip round ejects nobody. The game
// returns to free roam with a fresh round unless a team has won.
func (g *Game) resolveVotes() {
	counts := make(map[string]int)
	for _, target := range g.state.Votes {
		if target != domain.VoteSkip {
			counts[target]++
		}
	}

	switch {
	case len(counts) == 0:
		g.appendEvent(domain.NewEvent(domain.EventSystem,
			"Voting result: No one was ejected", g.state.Round))

	default:
		max := 0
		for _, n := range counts {
			if n > max {
				max = n
			}
		}
		var top []string
		for id, n := range counts {
			if n == max {
				top = append(top, id)
			}
		}

		if len(top) > 1 {
			g.appendEvent(domain.NewEvent(domain.EventSystem,
				"Voting result: Tie, no one was ejected", g.state.Round))
			break
		}

		ejected := g.players[top[0]]
		ejected.Identity.Alive = false
		g.appendEvent(domain.NewEvent(domain.EventCritical,
			ejected.Name+" was ejected! Their identity is: "+ejected.Identity.Role.Name, g.state.Round).
			With(domain.MetaVictim, ejected.ID))

		if ejected.Identity.Role.WinCondition == domain.WinVotedOut {
			g.state.Winner = domain.TeamNeutral
			g.state.WinnerReason = ejected.Identity.Role.Name + " " + ejected.Name + " was successfully ejected and wins!"
			g.state.Phase = domain.PhaseGameOver
			return
		}
	}

	g.checkWinCondition()

	if g.state.Phase != domain.PhaseGameOver {
		g.state.Phase = domain.PhaseFreeRoam
		g.state.Round++
		g.resetTurnFlags()
	}
}
