package app

import (
	"context"
	"errors"
	"testing"

	"gooseduck/internal/domain"
)

func TestRoundAdvancesAfterEveryoneActs(t *testing.T) {
	g := newTestGame(t, nil)
	ctx := context.Background()

	if _, err := g.ExecuteAction(ctx, HumanID, Action{Kind: ActionWait}); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	// All three AI participants acted behind the human, the round rolled
	// over, and the fresh round pauses on the human again.
	if g.state.Round != 2 {
		t.Fatalf("Round = %d, want 2", g.state.Round)
	}
	for id, p := range g.players {
		if p.HasActed {
			t.Errorf("Participant %q flag not rearmed for the new round", id)
		}
	}
}

func TestSchedulerSkipsDead(t *testing.T) {
	decided := make(map[string]int)
	brain := &scriptBrain{
		decide: func(obs Observation) Action {
			decided[obs.ActorID]++
			return Action{Kind: ActionWait}
		},
	}
	g := newTestGame(t, brain)
	ctx := context.Background()
	setRole(t, g, "npc_c", domain.RoleAssassin)
	g.players["npc_a"].Identity.Alive = false

	if _, err := g.ExecuteAction(ctx, HumanID, Action{Kind: ActionWait}); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	if decided["npc_a"] != 0 {
		t.Errorf("Dead participant was consulted %d times", decided["npc_a"])
	}
	if decided["npc_b"] != 1 || decided["npc_c"] != 1 {
		t.Errorf("Living AI decisions = %v, want one each", decided)
	}
}

func TestBrainFailureDegradesToWait(t *testing.T) {
	g := newTestGame(t, &scriptBrain{err: errors.New("model unavailable")})
	ctx := context.Background()

	if _, err := g.ExecuteAction(ctx, HumanID, Action{Kind: ActionWait}); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if g.state.Round != 2 {
		t.Fatalf("Round = %d, want the round to roll over despite brain errors", g.state.Round)
	}
}

func TestRejectedAIActionBecomesWait(t *testing.T) {
	brain := &scriptBrain{
		decide: func(obs Observation) Action {
			// Not reachable from anywhere but storage and medbay.
			return Action{Kind: ActionMove, Target: "nowhere"}
		},
	}
	g := newTestGame(t, brain)
	ctx := context.Background()

	if _, err := g.ExecuteAction(ctx, HumanID, Action{Kind: ActionWait}); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	for _, id := range []string{"npc_a", "npc_b", "npc_c"} {
		if got := g.players[id].LastAction; got != "Waiting" {
			t.Errorf("Participant %q LastAction = %q, want Waiting", id, got)
		}
	}
	if g.state.Round != 2 {
		t.Fatalf("Round = %d, want 2", g.state.Round)
	}
}

// With the human dead no action submission will ever arrive; the
// unattended driver keeps the remaining AI playing round by round.
func TestUnattendedAdvanceAfterHumanDeath(t *testing.T) {
	decided := 0
	brain := &scriptBrain{
		decide: func(obs Observation) Action {
			decided++
			return Action{Kind: ActionWait}
		},
	}
	g := newTestGame(t, brain)
	ctx := context.Background()
	setRole(t, g, "npc_a", domain.RoleAssassin)

	if g.AdvanceUnattended(ctx) {
		t.Fatalf("Advanced while the human can still act")
	}

	if err := g.resolveKill(ctx, g.players["npc_a"], HumanID); err != nil {
		t.Fatalf("Kill failed: %v", err)
	}
	// One duck against two geese: the game goes on without a driver.
	if g.Phase() != domain.PhaseFreeRoam {
		t.Fatalf("Phase = %s, want %s", g.Phase(), domain.PhaseFreeRoam)
	}

	round := g.state.Round
	if !g.AdvanceUnattended(ctx) {
		t.Fatalf("Expected the unattended driver to advance the game")
	}
	if g.state.Round != round+1 {
		t.Errorf("Round = %d, want %d", g.state.Round, round+1)
	}
	if decided != 3 {
		t.Errorf("Living AI decisions = %d, want one per living participant", decided)
	}

	g.state.Phase = domain.PhaseGameOver
	if g.AdvanceUnattended(ctx) {
		t.Errorf("Advanced a finished game")
	}
}

func TestAIKillCanEndTheRoundEarly(t *testing.T) {
	brain := &scriptBrain{
		decide: func(obs Observation) Action {
			if obs.CanKill && len(obs.PeopleHere) > 0 {
				return Action{Kind: ActionKill, Target: obs.PeopleHere[0].ID}
			}
			return Action{Kind: ActionWait}
		},
	}
	g := newTestGame(t, brain)
	ctx := context.Background()
	setRole(t, g, "npc_a", domain.RoleAssassin)
	setRole(t, g, "npc_b", domain.RoleAssassin)

	// Two ducks against two geese: the first AI kill flips the win
	// condition and turn processing halts at game over.
	if _, err := g.ExecuteAction(ctx, HumanID, Action{Kind: ActionWait}); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if g.Phase() != domain.PhaseGameOver {
		t.Fatalf("Phase = %s, want %s", g.Phase(), domain.PhaseGameOver)
	}
	if g.state.Winner != domain.TeamEvil {
		t.Errorf("Winner = %s, want %s", g.state.Winner, domain.TeamEvil)
	}
}
