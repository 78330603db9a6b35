package app

import (
	"context"

	"gooseduck/internal/domain"
)

// PersonView is what an observer knows about a co-located participant:
// name and alive flag only, never the role.
type PersonView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Alive bool   `json:"is_alive"`
}

// TaskView is one task with the observer's own progress.
type TaskView struct {
	Name     string `json:"name"`
	Progress int    `json:"progress"`
	Required int    `json:"required"`
	RoomID   string `json:"room_id"`
	RoomName string `json:"room_name"`
}

// Observation is the per-participant view handed to a Brain. It contains
// the participant's own role and nothing about anyone else's.
type Observation struct {
	ActorID   string
	ActorName string

	Phase domain.Phase
	Round int

	Room        *domain.Room
	Connections []string
	PeopleHere  []PersonView

	Role         domain.Role
	CanKill      bool
	RoleHint     string
	WinCondition string
	Personality  string

	Memories         []string
	AvailableActions []ActionOption
	Tasks            []TaskView

	// Discussion context, set for Speak and voting decisions.
	Discussion []domain.DiscussionMessage

	// Conversation context, set for Reply.
	PartnerName string
	ChatHistory []domain.ChatMessage
}

// Reply is a Brain's answer inside a conversation.
type Reply struct {
	Text string
	End  bool
}

// Brain is the external decision-making capability consulted for AI
// participants. Implementations may block on network calls; the scheduler
// suspends at these invocations. A failed or unparsable response must
// degrade to the inert defaults (wait, empty speech, empty reply) inside
// the implementation or be returned as an error, which the caller maps to
// the same defaults.
type Brain interface {
	// Decide picks one action during free roam or voting.
	Decide(ctx context.Context, obs Observation) (Action, error)
	// Speak produces a free-text discussion speech.
	Speak(ctx context.Context, obs Observation) (string, error)
	// Reply produces the next conversation message.
	Reply(ctx context.Context, obs Observation) (Reply, error)
}

// Logger is the subset of nakama's runtime.Logger the game core uses.
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// NopLogger discards everything; handy default for tests.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}

// buildObservation assembles the filtered view of the game for one
// participant.
func (g *Game) buildObservation(p *domain.Participant) Observation {
	room := g.world.Room(p.Location)
	var connections []string
	if room != nil {
		connections = room.Connections
	}

	var people []PersonView
	for _, id := range g.turnOrder {
		other := g.players[id]
		if other == nil || other.ID == p.ID || other.Location != p.Location {
			continue
		}
		people = append(people, PersonView{ID: other.ID, Name: other.Name, Alive: other.Alive()})
	}

	var tasks []TaskView
	for _, task := range p.TasksAssigned {
		roomID := g.world.TaskLocations[task]
		tasks = append(tasks, TaskView{
			Name:     task,
			Progress: p.TasksProgress[task],
			Required: domain.TaskSteps,
			RoomID:   roomID,
			RoomName: g.world.RoomName(roomID),
		})
	}

	obs := Observation{
		ActorID:          p.ID,
		ActorName:        p.Name,
		Phase:            g.state.Phase,
		Round:            g.state.Round,
		Room:             room,
		Connections:      connections,
		PeopleHere:       people,
		Memories:         p.RecentMemories(8),
		AvailableActions: g.AvailableActions(p.ID),
		Tasks:            tasks,
		Personality:      p.Personality,
	}
	if p.Identity != nil {
		obs.Role = p.Identity.Role
		obs.CanKill = p.Identity.CanUseKill()
		obs.RoleHint = g.scenario.RoleHint(p.Identity.Role.Type)
		obs.WinCondition = g.scenario.WinText(p.Identity.Role)
	}
	return obs
}
