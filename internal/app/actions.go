package app

import (
	"context"
	"fmt"

	"gooseduck/internal/domain"
)

// ActionKind is the closed set of discrete actions the resolver accepts.
type ActionKind string

const (
	ActionMove      ActionKind = "move"
	ActionTask      ActionKind = "task"
	ActionKill      ActionKind = "kill"
	ActionReport    ActionKind = "report"
	ActionEmergency ActionKind = "emergency"
	ActionVote      ActionKind = "vote"
	ActionTalk      ActionKind = "talk"
	// ActionWait is the inert action; it resolves to nothing and is the
	// safe default for unusable Brain responses.
	ActionWait ActionKind = "wait"
)

// Action is one discrete action with its payload.
type Action struct {
	Kind   ActionKind `json:"type"`
	Target string     `json:"target,omitempty"`
}

// ActionOption is one legal action offered to a participant.
type ActionOption struct {
	Kind   ActionKind `json:"type"`
	Target string     `json:"target,omitempty"`
	Label  string     `json:"label"`
}

// VoteSkipTarget is the wire encoding of an explicit skip vote.
const VoteSkipTarget = "skip"

// ExecuteAction validates and applies exactly one action for the actor,
// then drains pending AI turns. A rejected action leaves all state
// untouched and returns a typed error; it never half-applies.
func (g *Game) ExecuteAction(ctx context.Context, actorID string, act Action) (*Snapshot, error) {
	actor := g.players[actorID]
	if actor == nil {
		return nil, fmt.Errorf("%w: participant %q does not exist", ErrInvalidTarget, actorID)
	}
	if g.state.Phase == domain.PhaseGameOver {
		return nil, fmt.Errorf("%w: game is over", ErrIllegalState)
	}
	if !actor.Alive() {
		return nil, fmt.Errorf("%w: dead participants cannot act", ErrIllegalState)
	}
	if g.state.Conversation.Active && act.Kind != ActionTalk {
		return nil, fmt.Errorf("%w: a conversation is in progress", ErrIllegalState)
	}

	g.logger.Debug("action %s/%s by %s in phase %s", act.Kind, act.Target, actorID, g.state.Phase)

	phaseBefore := g.state.Phase
	var err error
	chatStarted := false
	switch act.Kind {
	case ActionMove:
		err = g.resolveMove(actor, act.Target)
	case ActionTask:
		err = g.resolveTask(actor, act.Target)
	case ActionKill:
		err = g.resolveKill(ctx, actor, act.Target)
	case ActionReport:
		err = g.resolveReport(ctx, actor, act.Target)
	case ActionEmergency:
		err = g.resolveEmergency(ctx, actor)
	case ActionVote:
		err = g.resolveVote(actor, act.Target)
	case ActionTalk:
		chatStarted, err = g.resolveTalk(ctx, actor, act.Target, false)
	case ActionWait:
		actor.LastAction = "Waiting"
	default:
		err = fmt.Errorf("%w: unknown action kind %q", ErrInvalidTarget, act.Kind)
	}
	if err != nil {
		return nil, err
	}

	if chatStarted {
		// The conversation gate holds the turn loop; do not advance.
		return g.Snapshot(actorID)
	}

	if g.state.Phase != phaseBefore {
		// The resolver owned the transition (meeting, tally, game over).
		// Turn flags belong to the new phase; in a fresh round the human
		// acts first, so no AI drain happens here.
		return g.Snapshot(actorID)
	}

	actor.HasActed = true
	g.processTurns(ctx)
	return g.Snapshot(actorID)
}

// AvailableActions lists every action the participant may legally take
// right now. Dead participants have none.
func (g *Game) AvailableActions(actorID string) []ActionOption {
	p := g.players[actorID]
	if p == nil || !p.Alive() {
		return nil
	}

	var opts []ActionOption
	room := g.world.Room(p.Location)

	switch g.state.Phase {
	case domain.PhaseFreeRoam:
		if room != nil {
			for _, conn := range room.Connections {
				target := g.world.Room(conn)
				if target == nil {
					continue
				}
				opts = append(opts, ActionOption{Kind: ActionMove, Target: conn, Label: "Go to " + target.Name})
			}
		}

		for _, id := range g.turnOrder {
			other := g.players[id]
			if other.ID == p.ID || other.Location != p.Location || !other.Alive() {
				continue
			}
			opts = append(opts, ActionOption{Kind: ActionTalk, Target: other.ID, Label: "Talk with " + other.Name})
			if p.Identity != nil && p.Identity.CanUseKill() {
				opts = append(opts, ActionOption{Kind: ActionKill, Target: other.ID, Label: "Kill " + other.Name})
			}
		}

		if room != nil && room.MeetingRoom && p.EmergencyMeetingsLeft > 0 {
			opts = append(opts, ActionOption{Kind: ActionEmergency, Label: "Call emergency meeting"})
		}

		for _, id := range g.turnOrder {
			other := g.players[id]
			if other.Location == p.Location && !other.Alive() {
				opts = append(opts, ActionOption{Kind: ActionReport, Target: other.ID, Label: "Report " + other.Name + "'s body"})
				break
			}
		}

		if room != nil {
			for _, task := range room.Tasks {
				if progress := p.TasksProgress[task]; progress < domain.TaskSteps {
					opts = append(opts, ActionOption{
						Kind:   ActionTask,
						Target: task,
						Label:  fmt.Sprintf("%s (%d/%d)", task, progress, domain.TaskSteps),
					})
				}
			}
		}

	case domain.PhaseVoting:
		for _, id := range g.turnOrder {
			other := g.players[id]
			if other.ID != p.ID && other.Alive() {
				opts = append(opts, ActionOption{Kind: ActionVote, Target: other.ID, Label: "Vote for " + other.Name})
			}
		}
		opts = append(opts, ActionOption{Kind: ActionVote, Target: VoteSkipTarget, Label: "Skip vote"})
	}

	return opts
}

// resolveMove relocates the actor along a map connection and leaves
// room-scoped traces at both ends.
func (g *Game) resolveMove(actor *domain.Participant, roomID string) error {
	if g.state.Phase != domain.PhaseFreeRoam {
		return fmt.Errorf("%w: cannot move during %s", ErrIllegalState, g.state.Phase)
	}
	target := g.world.Room(roomID)
	if target == nil {
		return fmt.Errorf("%w: room %q does not exist", ErrInvalidTarget, roomID)
	}
	current := g.world.Room(actor.Location)
	if current == nil || !current.ConnectsTo(roomID) {
		return fmt.Errorf("%w: room %q is not reachable from %q", ErrInvalidTarget, roomID, actor.Location)
	}

	old := actor.Location
	actor.Location = roomID
	actor.LastAction = "Moved to " + target.Name

	g.appendEvent(domain.NewEvent(domain.EventPlayerAction,
		actor.Name+" left the room", g.state.Round).At(old).By(actor.ID))
	g.appendEvent(domain.NewEvent(domain.EventPlayerAction,
		actor.Name+" moved to "+target.Name, g.state.Round).At(roomID).By(actor.ID))
	g.recordMemoryForRoom(roomID, actor.Name+" arrived at "+target.Name)
	return nil
}

// resolveTask advances the actor's progress on a task in their room by one
// step. Progress is atomic per call; a finished task rejects further work.
func (g *Game) resolveTask(actor *domain.Participant, task string) error {
	if g.state.Phase != domain.PhaseFreeRoam {
		return fmt.Errorf("%w: cannot work tasks during %s", ErrIllegalState, g.state.Phase)
	}
	room := g.world.Room(actor.Location)
	if room == nil || !room.HasTask(task) {
		return fmt.Errorf("%w: no task %q here", ErrInvalidTarget, task)
	}
	if actor.TasksProgress[task] >= domain.TaskSteps {
		return fmt.Errorf("%w: task %q already complete", ErrConflictResolved, task)
	}

	actor.TasksProgress[task]++
	progress := actor.TasksProgress[task]
	actor.LastAction = fmt.Sprintf("Doing task %s (%d/%d)", task, progress, domain.TaskSteps)
	if progress >= domain.TaskSteps {
		completed := false
		for _, t := range actor.TasksCompleted {
			if t == task {
				completed = true
				break
			}
		}
		if !completed {
			actor.TasksCompleted = append(actor.TasksCompleted, task)
		}
	}
	g.recordMemoryForRoom(actor.Location,
		fmt.Sprintf("%s is doing task %s (%d/%d)", actor.Name, task, progress, domain.TaskSteps))
	return nil
}

// resolveKill applies the kill ability: shields block it, the sheriff dies
// with a good victim, and a canadian victim forces the killer to report.
// The win condition is evaluated after every kill.
func (g *Game) resolveKill(ctx context.Context, killer *domain.Participant, victimID string) error {
	if g.state.Phase != domain.PhaseFreeRoam {
		return fmt.Errorf("%w: cannot kill during %s", ErrIllegalState, g.state.Phase)
	}
	victim := g.players[victimID]
	if victim == nil {
		return fmt.Errorf("%w: participant %q does not exist", ErrInvalidTarget, victimID)
	}
	if killer.Identity == nil || !killer.Identity.CanUseKill() {
		return fmt.Errorf("%w: kill", ErrAbilityUnavailable)
	}
	if killer.Location != victim.Location {
		return fmt.Errorf("%w: target is not in the same room", ErrInvalidTarget)
	}
	if !victim.Alive() {
		return fmt.Errorf("%w: target is already dead", ErrConflictResolved)
	}

	if victim.Identity.Protected {
		// The shield is consumed and the kill is blocked, visibly to all.
		victim.Identity.Protected = false
		g.appendEvent(domain.NewEvent(domain.EventSystem,
			"Someone tried to attack "+victim.Name+", but they were protected!", g.state.Round))
		return nil
	}

	victim.Identity.Alive = false
	killer.Identity.UseKill()
	killer.LastAction = "Killed " + victim.Name
	victim.LastAction = "Killed by " + killer.Name

	g.appendEvent(domain.NewEvent(domain.EventCrime,
		victim.Name+" was found dead in "+g.world.RoomName(victim.Location)+"!", g.state.Round).
		At(victim.Location).
		With(domain.MetaVictim, victim.ID).
		With(domain.MetaKiller, killer.ID))
	g.recordMemoryForRoom(victim.Location, victim.Name+" was killed by "+killer.Name)

	// Mutual destruction resolves before the forced report: a sheriff who
	// kills a good-team victim dies too, and a dead killer cannot report.
	if killer.Identity.Role.Type == domain.RoleSheriff && victim.Identity.Role.Team == domain.TeamGood {
		killer.Identity.Alive = false
		g.appendEvent(domain.NewEvent(domain.EventCritical,
			killer.Name+" mistakenly killed a goose and died together with "+victim.Name+"!", g.state.Round).
			At(victim.Location).
			With(domain.MetaVictim, killer.ID))
	}

	forcedReport := victim.Identity.Role.Type == domain.RoleCanadian && killer.Identity.Alive

	g.checkWinCondition()

	if g.state.Phase != domain.PhaseGameOver && forcedReport {
		g.startDiscussion(ctx, killer.ID, false, victim.ID)
	}
	return nil
}

// resolveReport starts a discussion over the given corpse.
func (g *Game) resolveReport(ctx context.Context, reporter *domain.Participant, bodyID string) error {
	if g.state.Phase != domain.PhaseFreeRoam {
		return fmt.Errorf("%w: cannot report during %s", ErrIllegalState, g.state.Phase)
	}
	body := g.players[bodyID]
	if body == nil {
		return fmt.Errorf("%w: participant %q does not exist", ErrInvalidTarget, bodyID)
	}
	if body.Alive() {
		return fmt.Errorf("%w: %s is not dead", ErrInvalidTarget, body.Name)
	}
	reporter.LastAction = "Reported " + body.Name + "'s body"
	g.startDiscussion(ctx, reporter.ID, false, bodyID)
	return nil
}

// resolveEmergency spends one emergency meeting to force a discussion.
// Only legal from the meeting room.
func (g *Game) resolveEmergency(ctx context.Context, caller *domain.Participant) error {
	if g.state.Phase != domain.PhaseFreeRoam {
		return fmt.Errorf("%w: cannot call a meeting during %s", ErrIllegalState, g.state.Phase)
	}
	room := g.world.Room(caller.Location)
	if room == nil || !room.MeetingRoom {
		return fmt.Errorf("%w: the emergency button is not in this room", ErrIllegalState)
	}
	if caller.EmergencyMeetingsLeft <= 0 {
		return fmt.Errorf("%w: no emergency meetings left", ErrAbilityUnavailable)
	}

	caller.EmergencyMeetingsLeft--
	caller.LastAction = "Called emergency meeting"
	g.startDiscussion(ctx, caller.ID, true, "")
	return nil
}

// resolveVote records or overwrites the voter's choice. When the vote map
// covers every living participant the tally resolves immediately.
func (g *Game) resolveVote(voter *domain.Participant, targetID string) error {
	if g.state.Phase != domain.PhaseVoting {
		return fmt.Errorf("%w: not in voting phase", ErrIllegalState)
	}

	if targetID == VoteSkipTarget || targetID == "" {
		g.state.Votes[voter.ID] = domain.VoteSkip
		voter.LastAction = "Skipped vote"
		g.appendEvent(domain.NewEvent(domain.EventSystem,
			voter.Name+" chose to skip vote", g.state.Round).By(voter.ID))
		g.recordMemoryForAll(voter.Name + " chose to skip vote")
	} else {
		target := g.players[targetID]
		if target == nil {
			return fmt.Errorf("%w: participant %q does not exist", ErrInvalidTarget, targetID)
		}
		if !target.Alive() {
			return fmt.Errorf("%w: cannot vote for the dead", ErrInvalidTarget)
		}
		g.state.Votes[voter.ID] = targetID
		voter.LastAction = "Voted for " + target.Name
		g.appendEvent(domain.NewEvent(domain.EventSystem,
			voter.Name+" voted for "+target.Name, g.state.Round).By(voter.ID))
		g.recordMemoryForAll(voter.Name + " voted for " + target.Name)
	}

	if len(g.state.Votes) >= g.livingCount() {
		g.logger.Debug("all votes collected, resolving")
		g.resolveVotes()
	}
	return nil
}
