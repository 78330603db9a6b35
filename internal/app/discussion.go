package app

import (
	"context"

	"gooseduck/internal/domain"
)

// startDiscussion flips the phase to discussion, builds the speaker order
// starting from the reporter, gathers everyone in the meeting room and
// auto-advances AI speakers.
func (g *Game) startDiscussion(ctx context.Context, reporterID string, emergency bool, bodyID string) {
	g.state.Phase = domain.PhaseDiscussion
	g.state.Reporter = reporterID
	g.state.Discussion = nil
	g.state.Votes = make(map[string]string)
	g.state.SpeakerIndex = 0
	g.state.BodyLocation = ""

	// Speaker order: living participants in turn order, rotated so the
	// reporter speaks first.
	var alive []string
	for _, id := range g.turnOrder {
		if p := g.players[id]; p != nil && p.Alive() {
			alive = append(alive, id)
		}
	}
	g.state.SpeakerOrder = alive
	for i, id := range alive {
		if id == reporterID {
			g.state.SpeakerOrder = append(append([]string(nil), alive[i:]...), alive[:i]...)
			break
		}
	}
	g.logger.Debug("discussion starts, speaker order %v", g.state.SpeakerOrder)

	reporter := g.players[reporterID]
	if emergency {
		g.appendEvent(domain.NewEvent(domain.EventCritical,
			reporter.Name+" called an emergency meeting!", g.state.Round).By(reporterID))
		g.recordMemoryForAll(reporter.Name + " called an emergency meeting")
	} else if body := g.players[bodyID]; body != nil {
		g.state.BodyLocation = body.Location
		g.appendEvent(domain.NewEvent(domain.EventCritical,
			reporter.Name+" found "+body.Name+"'s body!", g.state.Round).
			By(reporterID).
			With(domain.MetaVictim, body.ID))
		g.recordMemoryForAll(reporter.Name + " reported " + body.Name + "'s body")
	}

	// Everyone alive gathers in the meeting room for the duration.
	for _, p := range g.players {
		if p.Alive() {
			p.Location = g.world.MeetingRoom
		}
	}

	g.AdvanceDiscussion(ctx)
}

// AdvanceDiscussion cycles the speaker rotation: dead speakers are
// skipped, AI speakers speak through the Brain, a human speaker pauses the
// rotation, and an exhausted order hands off to voting.
func (g *Game) AdvanceDiscussion(ctx context.Context) {
	if g.state.Phase != domain.PhaseDiscussion {
		return
	}

	for {
		if g.state.SpeakerIndex >= len(g.state.SpeakerOrder) {
			g.StartVoting(ctx)
			return
		}

		speakerID := g.state.SpeakerOrder[g.state.SpeakerIndex]
		speaker := g.players[speakerID]
		if speaker == nil || !speaker.Alive() {
			g.state.SpeakerIndex++
			continue
		}

		if speaker.IsHuman {
			return // wait for the human's message
		}

		obs := g.buildObservation(speaker)
		obs.Discussion = recentDiscussion(g.state.Discussion, 10)
		content, err := g.brain.Speak(ctx, obs)
		if err != nil {
			g.logger.Warn("brain speak failed for %s: %v", speakerID, err)
			content = "(silence)"
		}
		g.state.Discussion = append(g.state.Discussion, domain.DiscussionMessage{
			SpeakerID:   speakerID,
			SpeakerName: speaker.Name,
			Content:     content,
		})
		g.state.SpeakerIndex++
	}
}

// AddDiscussionMessage appends a human speech to the transcript and
// resumes the AI rotation.
func (g *Game) AddDiscussionMessage(ctx context.Context, speakerID, content string) (*DiscussionState, error) {
	speaker := g.players[speakerID]
	if speaker == nil {
		return nil, ErrInvalidTarget
	}
	if g.state.Phase != domain.PhaseDiscussion {
		return nil, ErrIllegalState
	}

	g.state.Discussion = append(g.state.Discussion, domain.DiscussionMessage{
		SpeakerID:   speakerID,
		SpeakerName: speaker.Name,
		Content:     content,
	})
	if g.state.SpeakerIndex < len(g.state.SpeakerOrder) && g.state.SpeakerOrder[g.state.SpeakerIndex] == speakerID {
		g.state.SpeakerIndex++
	}
	g.AdvanceDiscussion(ctx)
	return g.DiscussionState(), nil
}

// StartVoting enters the voting phase and collects AI votes through the
// Brain. The tally resolves on its own once every living participant has
// voted, which can happen inside this pass when no human vote is pending.
func (g *Game) StartVoting(ctx context.Context) {
	if g.state.Phase == domain.PhaseGameOver {
		return
	}
	g.state.Phase = domain.PhaseVoting
	g.state.Votes = make(map[string]string)
	g.appendEvent(domain.NewEvent(domain.EventSystem,
		"Discussion ended, voting begins!", g.state.Round))
	g.logger.Debug("voting begins")

	for _, id := range g.state.SpeakerOrder {
		if g.state.Phase != domain.PhaseVoting {
			return // the tally already resolved
		}
		voter := g.players[id]
		if voter == nil || voter.IsHuman || !voter.Alive() {
			continue
		}
		if _, voted := g.state.Votes[id]; voted {
			continue
		}

		obs := g.buildObservation(voter)
		obs.Discussion = recentDiscussion(g.state.Discussion, 10)
		act, err := g.brain.Decide(ctx, obs)
		if err != nil || act.Kind != ActionVote {
			if err != nil {
				g.logger.Warn("brain vote failed for %s: %v", id, err)
			}
			act = Action{Kind: ActionVote, Target: VoteSkipTarget}
		}
		if err := g.resolveVote(voter, act.Target); err != nil {
			g.logger.Debug("npc %s vote rejected, skipping: %v", id, err)
			_ = g.resolveVote(voter, VoteSkipTarget)
		}
	}
}

// DiscussionState is the transcript view served to the port layer.
type DiscussionState struct {
	Phase          domain.Phase               `json:"phase"`
	Reporter       string                     `json:"reporter"`
	BodyLocation   string                     `json:"body_location,omitempty"`
	Messages       []domain.DiscussionMessage `json:"messages"`
	CurrentSpeaker string                     `json:"current_speaker,omitempty"`
	Votes          map[string]string          `json:"votes"`
}

// DiscussionState snapshots the meeting sub-state.
func (g *Game) DiscussionState() *DiscussionState {
	current := ""
	if g.state.SpeakerIndex < len(g.state.SpeakerOrder) {
		current = g.state.SpeakerOrder[g.state.SpeakerIndex]
	}
	votes := make(map[string]string, len(g.state.Votes))
	for k, v := range g.state.Votes {
		votes[k] = v
	}
	return &DiscussionState{
		Phase:          g.state.Phase,
		Reporter:       g.state.Reporter,
		BodyLocation:   g.state.BodyLocation,
		Messages:       g.state.Discussion,
		CurrentSpeaker: current,
		Votes:          votes,
	}
}

func recentDiscussion(msgs []domain.DiscussionMessage, n int) []domain.DiscussionMessage {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}
