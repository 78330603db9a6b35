package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gooseduck/internal/app"
	"gooseduck/internal/domain"
)

// fakeCompleter returns a canned response and records the prompt.
type fakeCompleter struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func freeRoamObservation() app.Observation {
	role, _ := domain.RoleByType(domain.RoleAssassin)
	return app.Observation{
		ActorID:   "npc_a",
		ActorName: "Alpha",
		Phase:     domain.PhaseFreeRoam,
		Round:     2,
		Role:      role,
		AvailableActions: []app.ActionOption{
			{Kind: app.ActionMove, Target: "storage", Label: "Go to Storage"},
			{Kind: app.ActionKill, Target: "npc_b", Label: "Kill Beta"},
			{Kind: app.ActionWait, Label: "Wait"},
		},
	}
}

func votingObservation() app.Observation {
	role, _ := domain.RoleByType(domain.RoleGoose)
	return app.Observation{
		ActorID:   "npc_a",
		ActorName: "Alpha",
		Phase:     domain.PhaseVoting,
		Role:      role,
		AvailableActions: []app.ActionOption{
			{Kind: app.ActionVote, Target: "npc_b", Label: "Vote for Beta"},
			{Kind: app.ActionVote, Target: "player", Label: "Vote for Player"},
			{Kind: app.ActionVote, Target: app.VoteSkipTarget, Label: "Skip vote"},
		},
	}
}

func TestParseDecision(t *testing.T) {
	obs := freeRoamObservation()

	tests := []struct {
		name string
		text string
		want app.Action
	}{
		{
			name: "ValidMove",
			text: `{"action": "move", "target": "storage", "reason": "patrol"}`,
			want: app.Action{Kind: app.ActionMove, Target: "storage"},
		},
		{
			name: "JSONWrappedInProse",
			text: "Sure! Here is my decision:\n```json\n{\"action\": \"kill\", \"target\": \"npc_b\", \"reason\": \"alone\"}\n```",
			want: app.Action{Kind: app.ActionKill, Target: "npc_b"},
		},
		{
			name: "IllegalTarget",
			text: `{"action": "move", "target": "reactor"}`,
			want: app.Action{Kind: app.ActionWait},
		},
		{
			name: "UnknownAction",
			text: `{"action": "teleport", "target": "storage"}`,
			want: app.Action{Kind: app.ActionWait},
		},
		{
			name: "Garbage",
			text: "I think I'll just walk around for a bit.",
			want: app.Action{Kind: app.ActionWait},
		},
		{
			name: "ExplicitWait",
			text: `{"action": "wait"}`,
			want: app.Action{Kind: app.ActionWait},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := ParseDecision(test.text, obs); got != test.want {
				t.Fatalf("ParseDecision() = %+v, want %+v", got, test.want)
			}
		})
	}
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name string
		text string
		want app.Reply
	}{
		{
			name: "JSONReply",
			text: `{"content": "I was in medbay.", "end": false}`,
			want: app.Reply{Text: "I was in medbay.", End: false},
		},
		{
			name: "JSONEnd",
			text: `{"content": "Gotta go.", "end": true}`,
			want: app.Reply{Text: "Gotta go.", End: true},
		},
		{
			name: "RawText",
			text: "  Just doing tasks.  ",
			want: app.Reply{Text: "Just doing tasks."},
		},
		{
			name: "Empty",
			text: "   ",
			want: app.Reply{Text: "..."},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := ParseReply(test.text); got != test.want {
				t.Fatalf("ParseReply() = %+v, want %+v", got, test.want)
			}
		})
	}
}

func TestParseVote(t *testing.T) {
	obs := votingObservation()

	tests := []struct {
		name   string
		text   string
		target string
	}{
		{name: "ByID", text: "npc_b", target: "npc_b"},
		{name: "ByName", text: "Beta", target: "npc_b"},
		{name: "Quoted", text: `"npc_b".`, target: "npc_b"},
		{name: "Skip", text: "skip", target: app.VoteSkipTarget},
		{name: "Empty", text: "", target: app.VoteSkipTarget},
		{name: "Unknown", text: "Zeta", target: app.VoteSkipTarget},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			got := ParseVote(test.text, obs)
			if got.Kind != app.ActionVote || got.Target != test.target {
				t.Fatalf("ParseVote(%q) = %+v, want target %q", test.text, got, test.target)
			}
		})
	}
}

func TestLLMBrainDecide(t *testing.T) {
	completer := &fakeCompleter{response: `{"action": "move", "target": "storage", "reason": "tasks"}`}
	brain := NewLLMBrain(completer, nil)

	act, err := brain.Decide(context.Background(), freeRoamObservation())
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if act.Kind != app.ActionMove || act.Target != "storage" {
		t.Fatalf("Decide() = %+v", act)
	}
	if len(completer.prompts) != 1 || !strings.Contains(completer.prompts[0], "Alpha") {
		t.Errorf("Decision prompt missing actor context")
	}
}

func TestLLMBrainDecide_VotingUsesVotePrompt(t *testing.T) {
	completer := &fakeCompleter{response: "Beta"}
	brain := NewLLMBrain(completer, nil)

	act, err := brain.Decide(context.Background(), votingObservation())
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if act.Kind != app.ActionVote || act.Target != "npc_b" {
		t.Fatalf("Decide() = %+v", act)
	}
	if !strings.Contains(completer.prompts[0], "voting phase") {
		t.Errorf("Expected the vote prompt, got: %.80s", completer.prompts[0])
	}
}

func TestLLMBrainDecide_PropagatesError(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("upstream down")}
	brain := NewLLMBrain(completer, nil)

	if _, err := brain.Decide(context.Background(), freeRoamObservation()); err == nil {
		t.Fatalf("Expected completer error to propagate")
	}
}

func TestLLMBrainSpeak(t *testing.T) {
	completer := &fakeCompleter{response: "  I was with Beta all round.  "}
	brain := NewLLMBrain(completer, nil)

	speech, err := brain.Speak(context.Background(), freeRoamObservation())
	if err != nil {
		t.Fatalf("Speak failed: %v", err)
	}
	if speech != "I was with Beta all round." {
		t.Errorf("Speak() = %q", speech)
	}

	completer.response = "   "
	speech, err = brain.Speak(context.Background(), freeRoamObservation())
	if err != nil {
		t.Fatalf("Speak failed: %v", err)
	}
	if speech != "(silence)" {
		t.Errorf("Empty speech = %q, want silence filler", speech)
	}
}

func TestLLMBrainReply(t *testing.T) {
	completer := &fakeCompleter{response: `{"content": "See you.", "end": true}`}
	brain := NewLLMBrain(completer, nil)

	reply, err := brain.Reply(context.Background(), freeRoamObservation())
	if err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if reply.Text != "See you." || !reply.End {
		t.Fatalf("Reply() = %+v", reply)
	}
}

func TestFallbackBrain(t *testing.T) {
	brain := NewFallbackBrain(nil)
	ctx := context.Background()

	act, err := brain.Decide(ctx, votingObservation())
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if act.Kind != app.ActionVote || act.Target != app.VoteSkipTarget {
		t.Fatalf("Voting fallback = %+v, want skip", act)
	}

	act, err = brain.Decide(ctx, freeRoamObservation())
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if act.Kind != app.ActionMove {
		t.Fatalf("Free-roam fallback = %+v, want the move option", act)
	}

	reply, err := brain.Reply(ctx, freeRoamObservation())
	if err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if !reply.End || reply.Text == "" {
		t.Errorf("Fallback reply = %+v", reply)
	}
}
