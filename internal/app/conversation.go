package app

import (
	"context"
	"fmt"
	"strings"

	"gooseduck/internal/domain"
)

// resolveTalk opens a private conversation between two co-located living
// participants and raises the conversation gate. The initiator counts as
// having acted. Talks involving the human suspend until the human supplies
// a message or ends the chat; AI-to-AI talks auto-run a bounded exchange.
// Returns whether the gate is still up when the call returns.
func (g *Game) resolveTalk(ctx context.Context, speaker *domain.Participant, targetID string, auto bool) (bool, error) {
	if g.state.Phase != domain.PhaseFreeRoam {
		return false, fmt.Errorf("%w: cannot talk during %s", ErrIllegalState, g.state.Phase)
	}
	if g.state.Conversation.Active {
		return false, fmt.Errorf("%w: a conversation is already in progress", ErrIllegalState)
	}
	target := g.players[targetID]
	if target == nil {
		return false, fmt.Errorf("%w: participant %q does not exist", ErrInvalidTarget, targetID)
	}
	if target.ID == speaker.ID {
		return false, fmt.Errorf("%w: cannot talk to yourself", ErrInvalidTarget)
	}
	if !speaker.Alive() || !target.Alive() {
		return false, fmt.Errorf("%w: both parties must be alive", ErrInvalidTarget)
	}
	if speaker.Location != target.Location {
		return false, fmt.Errorf("%w: must be in the same room to converse", ErrInvalidTarget)
	}

	g.state.Conversation = domain.Conversation{
		Active:       true,
		Participants: []string{speaker.ID, targetID},
		Room:         speaker.Location,
	}
	speaker.HasActed = true
	speaker.LastAction = "Talked with " + target.Name
	g.logger.Debug("conversation start: %s <-> %s @ %s", speaker.ID, targetID, speaker.Location)

	if auto && !speaker.IsHuman && !target.IsHuman {
		g.autoRunChat(ctx, speaker.ID, targetID)
		return false, nil
	}
	// A human is involved: the gate stays up until the human writes or
	// ends the conversation. No auto-reply crosses the human/AI boundary.
	return true, nil
}

// AddChatMessage appends a message from a conversation participant. An AI
// partner replies through the Brain; an End flag from the reply closes the
// conversation.
func (g *Game) AddChatMessage(ctx context.Context, speakerID, content string) (*ChatState, error) {
	if !g.state.Conversation.Active {
		return nil, fmt.Errorf("%w: no active conversation", ErrIllegalState)
	}
	if !g.state.Conversation.Includes(speakerID) {
		return nil, fmt.Errorf("%w: not part of this conversation", ErrIllegalState)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty message", ErrInvalidTarget)
	}

	speaker := g.players[speakerID]
	g.state.Conversation.Messages = append(g.state.Conversation.Messages, domain.ChatMessage{
		SpeakerID:   speakerID,
		SpeakerName: speaker.Name,
		Content:     content,
		Round:       g.state.Round,
		Room:        g.state.Conversation.Room,
	})

	partnerID := g.state.Conversation.Other(speakerID)
	partner := g.players[partnerID]
	if partner != nil && !partner.IsHuman && g.state.Conversation.Active {
		g.chatReply(ctx, partner, speaker, true)
	}
	return g.ChatState(), nil
}

// EndChat closes the conversation on the human's request and resumes the
// turn loop.
func (g *Game) EndChat(ctx context.Context) (*ChatState, error) {
	if !g.state.Conversation.Active {
		return g.ChatState(), nil
	}
	g.finalizeChat(ctx, true)
	return g.ChatState(), nil
}

// chatReply asks the Brain for the AI side of the exchange. Failures
// degrade to a silent filler instead of propagating.
func (g *Game) chatReply(ctx context.Context, npc, partner *domain.Participant, resumeTurns bool) {
	obs := g.buildObservation(npc)
	obs.PartnerName = partner.Name
	obs.ChatHistory = recentChat(g.state.Conversation.Messages, 10)

	reply, err := g.brain.Reply(ctx, obs)
	if err != nil {
		g.logger.Warn("brain reply failed for %s: %v", npc.ID, err)
		reply = Reply{Text: "..."}
	}
	if reply.Text == "" {
		reply.Text = "..."
	}

	g.state.Conversation.Messages = append(g.state.Conversation.Messages, domain.ChatMessage{
		SpeakerID:   npc.ID,
		SpeakerName: npc.Name,
		Content:     reply.Text,
		Round:       g.state.Round,
		Room:        g.state.Conversation.Room,
	})
	if reply.End {
		g.finalizeChat(ctx, resumeTurns)
	}
}

// autoRunChat plays an AI-to-AI conversation up to the configured exchange
// cap, then force-ends it.
func (g *Game) autoRunChat(ctx context.Context, initiatorID, targetID string) {
	speakerID, partnerID := initiatorID, targetID
	for turns := 0; g.state.Conversation.Active && turns < g.scenario.Game.ChatTurnLimit; turns++ {
		g.chatReply(ctx, g.players[speakerID], g.players[partnerID], false)
		speakerID, partnerID = partnerID, speakerID
	}
	if g.state.Conversation.Active {
		g.finalizeChat(ctx, false)
	}
}

// finalizeChat lowers the gate, records a room-scoped summary event plus
// participant memories, and optionally re-enters the turn loop.
func (g *Game) finalizeChat(ctx context.Context, resumeTurns bool) {
	if summary := g.chatSummary(); summary != "" {
		g.appendEvent(domain.NewEvent(domain.EventPlayerAction, summary, g.state.Round).
			At(g.state.Conversation.Room))
		for _, id := range g.state.Conversation.Participants {
			if p := g.players[id]; p != nil {
				p.Remember(summary)
			}
		}
	}

	g.state.Conversation = domain.Conversation{}
	if resumeTurns {
		g.processTurns(ctx)
	}
}

// chatSummary condenses the tail of the exchange into one memory line.
func (g *Game) chatSummary() string {
	conv := &g.state.Conversation
	if len(conv.Participants) < 2 {
		return ""
	}
	p1 := g.players[conv.Participants[0]]
	p2 := g.players[conv.Participants[1]]
	if p1 == nil || p2 == nil {
		return ""
	}

	var lines []string
	for _, m := range recentChat(conv.Messages, 6) {
		lines = append(lines, m.SpeakerName+": "+m.Content)
	}
	return fmt.Sprintf("Round %d, %s and %s conversation in %s: %s",
		g.state.Round, p1.Name, p2.Name, g.world.RoomName(conv.Room), strings.Join(lines, "; "))
}

// ChatState is the conversation view served to the port layer.
type ChatState struct {
	Active       bool                 `json:"active"`
	Room         string               `json:"room,omitempty"`
	RoomName     string               `json:"room_name,omitempty"`
	Messages     []domain.ChatMessage `json:"messages,omitempty"`
	Participants []PersonView         `json:"participants,omitempty"`
}

// ChatState snapshots the conversation sub-state.
func (g *Game) ChatState() *ChatState {
	conv := &g.state.Conversation
	if !conv.Active {
		return &ChatState{}
	}
	var participants []PersonView
	for _, id := range conv.Participants {
		if p := g.players[id]; p != nil {
			participants = append(participants, PersonView{ID: p.ID, Name: p.Name, Alive: p.Alive()})
		}
	}
	return &ChatState{
		Active:       true,
		Room:         conv.Room,
		RoomName:     g.world.RoomName(conv.Room),
		Messages:     conv.Messages,
		Participants: participants,
	}
}

func recentChat(msgs []domain.ChatMessage, n int) []domain.ChatMessage {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}
