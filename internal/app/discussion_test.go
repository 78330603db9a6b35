package app

import (
	"context"
	"testing"

	"gooseduck/internal/domain"
)

func TestSpeakerOrderStartsAtReporter(t *testing.T) {
	g := newTestGame(t, nil)
	ctx := context.Background()

	g.startDiscussion(ctx, "npc_b", true, "")

	if len(g.state.SpeakerOrder) != 4 {
		t.Fatalf("Speaker order size = %d, want 4", len(g.state.SpeakerOrder))
	}
	if g.state.SpeakerOrder[0] != "npc_b" {
		t.Errorf("First speaker = %q, want the reporter", g.state.SpeakerOrder[0])
	}
}

func TestDiscussionSkipsDeadSpeakers(t *testing.T) {
	brain := &scriptBrain{
		speak: func(obs Observation) string { return obs.ActorName + " speaks" },
	}
	g := newTestGame(t, brain)
	ctx := context.Background()
	setRole(t, g, "npc_c", domain.RoleAssassin)
	g.players["npc_a"].Identity.Alive = false

	// An NPC reporter: the rotation runs through every living AI speaker
	// and then pauses on the human.
	g.startDiscussion(ctx, "npc_b", true, "")

	for _, m := range g.state.Discussion {
		if m.SpeakerID == "npc_a" {
			t.Fatalf("Dead speaker took a turn")
		}
	}
	if g.Phase() != domain.PhaseDiscussion {
		t.Fatalf("Phase = %s, want discussion paused on the human", g.Phase())
	}
	current := g.state.SpeakerOrder[g.state.SpeakerIndex]
	if current != HumanID {
		t.Errorf("Current speaker = %q, want human", current)
	}
}

func TestMeetingRelocatesTheLiving(t *testing.T) {
	g := newTestGame(t, nil)
	ctx := context.Background()
	g.players["npc_a"].Location = "storage"
	g.players["npc_b"].Location = "medbay"
	g.players["npc_b"].Identity.Alive = false

	g.startDiscussion(ctx, HumanID, true, "")

	if g.players["npc_a"].Location != "cafeteria" {
		t.Errorf("Living participant not gathered: %q", g.players["npc_a"].Location)
	}
	if g.players["npc_b"].Location != "medbay" {
		t.Errorf("Corpse was moved to %q", g.players["npc_b"].Location)
	}
}

// TestMeetingFullCycle drives emergency meeting, discussion, and all-skip
// voting end to end through the public surface.
func TestMeetingFullCycle(t *testing.T) {
	brain := &scriptBrain{
		speak: func(obs Observation) string { return "I saw nothing." },
		decide: func(obs Observation) Action {
			if obs.Phase == domain.PhaseVoting {
				return Action{Kind: ActionVote, Target: VoteSkipTarget}
			}
			return Action{Kind: ActionWait}
		},
	}
	g := newTestGame(t, brain)
	ctx := context.Background()
	setRole(t, g, "npc_c", domain.RoleAssassin)

	if _, err := g.ExecuteAction(ctx, HumanID, Action{Kind: ActionEmergency}); err != nil {
		t.Fatalf("Emergency failed: %v", err)
	}
	// The human reported, so the rotation waits for their speech.
	if g.Phase() != domain.PhaseDiscussion {
		t.Fatalf("Phase = %s, want %s", g.Phase(), domain.PhaseDiscussion)
	}

	ds, err := g.AddDiscussionMessage(ctx, HumanID, "Someone is acting strange.")
	if err != nil {
		t.Fatalf("AddDiscussionMessage failed: %v", err)
	}
	if len(ds.Messages) != 4 {
		t.Fatalf("Transcript size = %d, want 4", len(ds.Messages))
	}
	if ds.Messages[0].SpeakerID != HumanID {
		t.Errorf("First speaker = %q", ds.Messages[0].SpeakerID)
	}

	// The AI votes are in; only the human's is pending.
	if g.Phase() != domain.PhaseVoting {
		t.Fatalf("Phase = %s, want %s", g.Phase(), domain.PhaseVoting)
	}
	if len(g.state.Votes) != 3 {
		t.Fatalf("AI votes = %d, want 3", len(g.state.Votes))
	}

	round := g.state.Round
	if _, err := g.ExecuteAction(ctx, HumanID, Action{Kind: ActionVote, Target: VoteSkipTarget}); err != nil {
		t.Fatalf("Human vote failed: %v", err)
	}

	// All skipped: nobody dies and free roam resumes in a fresh round.
	for id, p := range g.players {
		if !p.Alive() {
			t.Errorf("Participant %q died", id)
		}
	}
	if g.Phase() != domain.PhaseFreeRoam {
		t.Fatalf("Phase = %s, want %s", g.Phase(), domain.PhaseFreeRoam)
	}
	if g.state.Round <= round {
		t.Errorf("Round = %d, want past %d", g.state.Round, round)
	}
}

func TestAddDiscussionMessage_WrongPhase(t *testing.T) {
	g := newTestGame(t, nil)
	if _, err := g.AddDiscussionMessage(context.Background(), HumanID, "hello"); err == nil {
		t.Fatalf("Expected failure outside discussion")
	}
}

func TestSpeakFailureDegradesToSilence(t *testing.T) {
	brain := &scriptBrain{err: context.DeadlineExceeded}
	g := newTestGame(t, brain)
	ctx := context.Background()
	setRole(t, g, "npc_c", domain.RoleAssassin)

	g.startDiscussion(ctx, "npc_a", true, "")

	found := false
	for _, m := range g.state.Discussion {
		if m.Content == "(silence)" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Expected silent filler speeches, got %+v", g.state.Discussion)
	}
}
