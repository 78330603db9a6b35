package bot

import (
	"context"
	"encoding/json"
	"strings"

	"gooseduck/internal/app"
	"gooseduck/internal/domain"
)

// Logger is the printf-style logging surface the brain uses, satisfied by
// nakama's runtime.Logger.
type Logger interface {
	Debug(format string, v ...interface{})
	Warn(format string, v ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

// LLMBrain implements app.Brain on top of a Completer. Every response goes
// through a lenient parse step; anything unusable degrades to the inert
// default for that call site (wait, empty speech, filler reply, skip vote).
type LLMBrain struct {
	completer Completer
	logger    Logger
}

// NewLLMBrain wraps a completer. A nil logger is replaced with a no-op.
func NewLLMBrain(completer Completer, logger Logger) *LLMBrain {
	if logger == nil {
		logger = nopLogger{}
	}
	return &LLMBrain{completer: completer, logger: logger}
}

// Decide picks one action. Voting observations use the dedicated vote
// prompt; everything else uses the free-roam decision prompt.
func (b *LLMBrain) Decide(ctx context.Context, obs app.Observation) (app.Action, error) {
	if obs.Phase == domain.PhaseVoting {
		return b.decideVote(ctx, obs)
	}

	response, err := b.completer.Complete(ctx, BuildDecisionPrompt(obs), 256)
	if err != nil {
		return app.Action{}, err
	}
	return ParseDecision(response, obs), nil
}

func (b *LLMBrain) decideVote(ctx context.Context, obs app.Observation) (app.Action, error) {
	response, err := b.completer.Complete(ctx, BuildVotePrompt(obs), 64)
	if err != nil {
		return app.Action{}, err
	}
	return ParseVote(response, obs), nil
}

// Speak produces a discussion speech. The model output is free text.
func (b *LLMBrain) Speak(ctx context.Context, obs app.Observation) (string, error) {
	response, err := b.completer.Complete(ctx, BuildMeetingPrompt(obs), 120)
	if err != nil {
		return "", err
	}
	response = strings.TrimSpace(response)
	if response == "" {
		response = "(silence)"
	}
	return response, nil
}

// Reply produces the next conversation message.
func (b *LLMBrain) Reply(ctx context.Context, obs app.Observation) (app.Reply, error) {
	response, err := b.completer.Complete(ctx, BuildChatPrompt(obs), 120)
	if err != nil {
		return app.Reply{}, err
	}
	return ParseReply(response), nil
}

// decisionResponse is the strict schema expected from a decision prompt.
type decisionResponse struct {
	Action string `json:"action"`
	Target string `json:"target"`
	Reason string `json:"reason"`
}

// ParseDecision leniently parses a decision response and validates it
// against the observation's legal actions. Anything that fails parsing or
// validation becomes the wait action.
func ParseDecision(text string, obs app.Observation) app.Action {
	var resp decisionResponse
	if err := json.Unmarshal([]byte(extractJSON(text)), &resp); err != nil {
		return app.Action{Kind: app.ActionWait}
	}

	kind := app.ActionKind(resp.Action)
	if kind == app.ActionWait {
		return app.Action{Kind: app.ActionWait}
	}
	for _, opt := range obs.AvailableActions {
		if opt.Kind != kind {
			continue
		}
		if opt.Target == resp.Target {
			return app.Action{Kind: kind, Target: resp.Target}
		}
	}
	return app.Action{Kind: app.ActionWait}
}

// chatResponse is the strict schema expected from a chat prompt.
type chatResponse struct {
	Content string `json:"content"`
	End     bool   `json:"end"`
}

// ParseReply leniently parses a conversation reply. Non-JSON output is
// treated as the message itself; an empty result becomes a filler line.
func ParseReply(text string) app.Reply {
	var resp chatResponse
	if err := json.Unmarshal([]byte(extractJSON(text)), &resp); err == nil && resp.Content != "" {
		return app.Reply{Text: resp.Content, End: resp.End}
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		trimmed = "..."
	}
	return app.Reply{Text: trimmed}
}

// ParseVote maps a vote response (a participant name, ID, or "skip") onto
// the observation's vote options. Unrecognized output skips.
func ParseVote(text string, obs app.Observation) app.Action {
	choice := strings.TrimSpace(strings.Trim(strings.TrimSpace(text), `"'.`))
	if choice == "" || strings.EqualFold(choice, app.VoteSkipTarget) {
		return app.Action{Kind: app.ActionVote, Target: app.VoteSkipTarget}
	}
	for _, opt := range obs.AvailableActions {
		if opt.Kind != app.ActionVote || opt.Target == app.VoteSkipTarget {
			continue
		}
		if strings.EqualFold(opt.Target, choice) ||
			strings.Contains(strings.ToLower(opt.Label), strings.ToLower(choice)) {
			return app.Action{Kind: app.ActionVote, Target: opt.Target}
		}
	}
	return app.Action{Kind: app.ActionVote, Target: app.VoteSkipTarget}
}

// extractJSON pulls the first top-level JSON object out of model output
// that may wrap it in prose or code fences.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return text
	}
	return text[start : end+1]
}
