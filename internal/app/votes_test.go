package app

import (
	"context"
	"testing"

	"gooseduck/internal/domain"
)

// enterVoting forces the game straight into the voting phase.
func enterVoting(t *testing.T, g *Game) {
	t.Helper()
	g.state.Phase = domain.PhaseVoting
	g.state.Votes = make(map[string]string)
}

func castVote(t *testing.T, g *Game, voterID, target string) {
	t.Helper()
	if err := g.resolveVote(g.players[voterID], target); err != nil {
		t.Fatalf("Vote by %s failed: %v", voterID, err)
	}
}

func TestVoteEjectsSingleMax(t *testing.T) {
	g := newTestGame(t, nil)
	setRole(t, g, "npc_c", domain.RoleAssassin)
	enterVoting(t, g)

	castVote(t, g, HumanID, "npc_a")
	castVote(t, g, "npc_b", "npc_a")
	castVote(t, g, "npc_c", HumanID)
	castVote(t, g, "npc_a", VoteSkipTarget)

	if g.players["npc_a"].Alive() {
		t.Fatalf("Majority target survived")
	}
	// The ejection reveal carries the victim and the role name.
	last := g.events[len(g.events)-1]
	if last.Type != domain.EventCritical || last.Metadata[domain.MetaVictim] != "npc_a" {
		t.Errorf("Reveal event = %+v", last)
	}
	// One duck versus two geese: the game goes on in a fresh round.
	if g.Phase() != domain.PhaseFreeRoam {
		t.Fatalf("Phase = %s, want %s", g.Phase(), domain.PhaseFreeRoam)
	}
	for id, p := range g.players {
		if p.HasActed {
			t.Errorf("Participant %q turn flag not rearmed", id)
		}
	}
}

func TestVoteTieEjectsNobody(t *testing.T) {
	g := newTestGame(t, nil)
	setRole(t, g, "npc_c", domain.RoleAssassin)
	enterVoting(t, g)

	castVote(t, g, HumanID, "npc_a")
	castVote(t, g, "npc_b", "npc_c")
	castVote(t, g, "npc_c", "npc_a")
	castVote(t, g, "npc_a", "npc_c")

	for id, p := range g.players {
		if !p.Alive() {
			t.Errorf("Participant %q died in a tie", id)
		}
	}
	if g.Phase() != domain.PhaseFreeRoam {
		t.Fatalf("Phase = %s, want %s", g.Phase(), domain.PhaseFreeRoam)
	}
}

func TestVoteAllSkip(t *testing.T) {
	g := newTestGame(t, nil)
	setRole(t, g, "npc_c", domain.RoleAssassin)
	enterVoting(t, g)
	round := g.state.Round

	for _, id := range []string{HumanID, "npc_a", "npc_b", "npc_c"} {
		castVote(t, g, id, VoteSkipTarget)
	}

	for id, p := range g.players {
		if !p.Alive() {
			t.Errorf("Participant %q died on all-skip", id)
		}
	}
	if g.Phase() != domain.PhaseFreeRoam {
		t.Fatalf("Phase = %s, want %s", g.Phase(), domain.PhaseFreeRoam)
	}
	if g.state.Round != round+1 {
		t.Errorf("Round = %d, want %d", g.state.Round, round+1)
	}
}

func TestVoteOverwriteCountsOnce(t *testing.T) {
	g := newTestGame(t, nil)
	setRole(t, g, "npc_c", domain.RoleAssassin)
	enterVoting(t, g)

	castVote(t, g, HumanID, "npc_a")
	castVote(t, g, HumanID, "npc_b")

	if len(g.state.Votes) != 1 {
		t.Fatalf("Vote map size = %d, want 1", len(g.state.Votes))
	}
	if g.state.Votes[HumanID] != "npc_b" {
		t.Errorf("Recorded vote = %q, want npc_b", g.state.Votes[HumanID])
	}
	if g.Phase() != domain.PhaseVoting {
		t.Fatalf("Tally resolved early")
	}
}

func TestVoteRejectsDeadTarget(t *testing.T) {
	g := newTestGame(t, nil)
	setRole(t, g, "npc_c", domain.RoleAssassin)
	g.players["npc_a"].Identity.Alive = false
	enterVoting(t, g)

	if err := g.resolveVote(g.players[HumanID], "npc_a"); err == nil {
		t.Fatalf("Expected vote for the dead to fail")
	}
}

func TestDodoEjectionWinsNeutral(t *testing.T) {
	g := newTestGame(t, nil)
	setRole(t, g, "npc_a", domain.RoleDodo)
	setRole(t, g, "npc_c", domain.RoleAssassin)
	enterVoting(t, g)

	castVote(t, g, HumanID, "npc_a")
	castVote(t, g, "npc_b", "npc_a")
	castVote(t, g, "npc_c", "npc_a")
	castVote(t, g, "npc_a", VoteSkipTarget)

	if g.Phase() != domain.PhaseGameOver {
		t.Fatalf("Phase = %s, want %s", g.Phase(), domain.PhaseGameOver)
	}
	if g.state.Winner != domain.TeamNeutral {
		t.Errorf("Winner = %s, want %s", g.state.Winner, domain.TeamNeutral)
	}
}

// The tally-completing ballot hands the fresh round to the human: no AI
// free-roam turns run inside the vote call and no turn flag is consumed.
func TestVoteResolutionLeavesHumanFirstToAct(t *testing.T) {
	decisions := 0
	brain := &scriptBrain{
		decide: func(obs Observation) Action {
			decisions++
			return Action{Kind: ActionVote, Target: VoteSkipTarget}
		},
	}
	g := newTestGame(t, brain)
	setRole(t, g, "npc_c", domain.RoleAssassin)
	ctx := context.Background()
	round := g.state.Round

	if _, err := g.ExecuteAction(ctx, HumanID, Action{Kind: ActionEmergency}); err != nil {
		t.Fatalf("Emergency failed: %v", err)
	}
	if _, err := g.AddDiscussionMessage(ctx, HumanID, "Something is off."); err != nil {
		t.Fatalf("Discussion message failed: %v", err)
	}
	if g.Phase() != domain.PhaseVoting {
		t.Fatalf("Phase = %s, want %s", g.Phase(), domain.PhaseVoting)
	}
	aiBallots := decisions // the three NPC votes are already cast here

	if _, err := g.ExecuteAction(ctx, HumanID, Action{Kind: ActionVote, Target: VoteSkipTarget}); err != nil {
		t.Fatalf("Vote failed: %v", err)
	}

	if g.Phase() != domain.PhaseFreeRoam {
		t.Fatalf("Phase = %s, want %s", g.Phase(), domain.PhaseFreeRoam)
	}
	if g.state.Round != round+1 {
		t.Errorf("Round = %d, want %d", g.state.Round, round+1)
	}
	if decisions != aiBallots {
		t.Errorf("AI took %d turns during the human's vote call", decisions-aiBallots)
	}
	for id, p := range g.players {
		if p.HasActed {
			t.Errorf("Participant %q turn flag consumed before the new round", id)
		}
	}
}

func TestVoteEjectionEndsGameWhenEvilWins(t *testing.T) {
	g := newTestGame(t, nil)
	setRole(t, g, "npc_c", domain.RoleAssassin)
	g.players["npc_b"].Identity.Alive = false
	enterVoting(t, g)

	// Ejecting a goose leaves one duck against one goose.
	castVote(t, g, HumanID, "npc_a")
	castVote(t, g, "npc_c", "npc_a")
	castVote(t, g, "npc_a", VoteSkipTarget)

	if g.Phase() != domain.PhaseGameOver {
		t.Fatalf("Phase = %s, want %s", g.Phase(), domain.PhaseGameOver)
	}
	if g.state.Winner != domain.TeamEvil {
		t.Errorf("Winner = %s, want %s", g.state.Winner, domain.TeamEvil)
	}
}
