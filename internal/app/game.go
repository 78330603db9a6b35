// Package app contains the orchestration core: the Game aggregate, the
// action resolver, the turn scheduler, the discussion controller and the
// vote resolver. All shared mutable state is owned here; external callers
// only reach it through the exported entry points.
package app

import (
	"context"
	"math/rand"
	"time"

	"gooseduck/internal/config"
	"gooseduck/internal/domain"
)

// Game is one game instance. It is constructed explicitly by the hosting
// process and injected into request handlers; there is no package-level
// instance.
type Game struct {
	scenario *config.Scenario
	world    *domain.World

	players map[string]*domain.Participant

	// turnOrder is a fixed random permutation with the human first;
	// turnIndex is the rotating cursor over it.
	turnOrder []string
	turnIndex int

	state  *domain.GameState
	events []domain.GameEvent

	brain  Brain
	logger Logger
	rng    *rand.Rand
}

// HumanID is the reserved participant ID of the human player.
const HumanID = "player"

// NewGame constructs a lobby-phase game over the given scenario. A nil rng
// falls back to a time-seeded source.
func NewGame(scn *config.Scenario, brain Brain, logger Logger, rng *rand.Rand) *Game {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = NopLogger{}
	}
	return &Game{
		scenario: scn,
		world:    scn.World(),
		players:  make(map[string]*domain.Participant),
		state:    domain.NewGameState(),
		brain:    brain,
		logger:   logger,
		rng:      rng,
	}
}

// Start deals roles and enters free roam. Round one begins with the human
// to act.
func (g *Game) Start(ctx context.Context) (*Snapshot, error) {
	if g.state.Phase != domain.PhaseLobby {
		return nil, ErrIllegalState
	}
	g.initPlayers()
	g.assignRoles()

	g.state.Phase = domain.PhaseFreeRoam
	g.state.Round = 1
	g.resetTurnFlags()

	g.appendEvent(domain.NewEvent(domain.EventSystem,
		"Game started! Find the ducks hidden among the crew!", g.state.Round))
	g.logger.Info("game started with %d participants", len(g.players))
	return g.Snapshot(HumanID)
}

// Reset drops all game state back to an empty lobby.
func (g *Game) Reset() {
	g.players = make(map[string]*domain.Participant)
	g.turnOrder = nil
	g.turnIndex = 0
	g.state = domain.NewGameState()
	g.events = nil
	g.logger.Info("game reset")
}

// initPlayers builds the roster from the scenario: the human first, then
// the configured NPCs, all at the spawn room with the full task list.
func (g *Game) initPlayers() {
	allTasks := g.world.AllTasks()

	add := func(id, name, personality, avatar string, human bool) {
		progress := make(map[string]int, len(allTasks))
		for _, t := range allTasks {
			progress[t] = 0
		}
		g.players[id] = &domain.Participant{
			ID:                    id,
			Name:                  name,
			IsHuman:               human,
			Location:              g.world.SpawnRoom,
			Personality:           personality,
			Avatar:                avatar,
			LastAction:            "idle",
			TasksAssigned:         append([]string(nil), allTasks...),
			TasksProgress:         progress,
			EmergencyMeetingsLeft: g.scenario.Game.EmergencyMeetings,
		}
		g.turnOrder = append(g.turnOrder, id)
	}

	add(HumanID, g.scenario.Game.Player.Name, "", "", true)
	for _, npc := range g.scenario.Game.NPCs {
		add(npc.ID, npc.Name, npc.Personality, npc.Avatar, false)
	}

	// Random turn order with the human moved to the front.
	g.rng.Shuffle(len(g.turnOrder), func(i, j int) {
		g.turnOrder[i], g.turnOrder[j] = g.turnOrder[j], g.turnOrder[i]
	})
	for i, id := range g.turnOrder {
		if id == HumanID {
			copy(g.turnOrder[1:i+1], g.turnOrder[:i])
			g.turnOrder[0] = HumanID
			break
		}
	}
	g.turnIndex = 0
}

// assignRoles shuffles the configured role multiset across the roster.
// The assignment is a bijection: one role entry per participant.
func (g *Game) assignRoles() {
	roles := g.scenario.RoleMultiset()
	g.rng.Shuffle(len(roles), func(i, j int) {
		roles[i], roles[j] = roles[j], roles[i]
	})

	i := 0
	for _, id := range g.turnOrder {
		if i >= len(roles) {
			break
		}
		role, ok := domain.RoleByType(roles[i])
		if !ok {
			continue
		}
		g.players[id].Identity = domain.NewIdentity(role)
		i++
	}
}

func (g *Game) appendEvent(e domain.GameEvent) {
	g.events = append(g.events, e)
}

// recordMemoryForRoom writes the text into the memory of every participant
// standing in the room.
func (g *Game) recordMemoryForRoom(roomID, text string) {
	for _, p := range g.players {
		if p.Location == roomID {
			p.Remember(text)
		}
	}
}

// recordMemoryForAll writes the text into every participant's memory;
// used for public happenings like meetings and votes.
func (g *Game) recordMemoryForAll(text string) {
	for _, p := range g.players {
		p.Remember(text)
	}
}

func (g *Game) resetTurnFlags() {
	for _, p := range g.players {
		p.HasActed = false
	}
}

func (g *Game) livingCount() int {
	n := 0
	for _, p := range g.players {
		if p.Alive() {
			n++
		}
	}
	return n
}

// checkWinCondition evaluates team victory and may flip the phase to game
// over. Evil wins when it matches or outnumbers good; good wins when no
// evil remains.
func (g *Game) checkWinCondition() {
	goodAlive, evilAlive := 0, 0
	for _, p := range g.players {
		if !p.Alive() || p.Identity == nil {
			continue
		}
		switch p.Identity.Role.Team {
		case domain.TeamGood:
			goodAlive++
		case domain.TeamEvil:
			evilAlive++
		}
	}

	switch {
	case evilAlive >= goodAlive && evilAlive > 0:
		g.state.Winner = domain.TeamEvil
		g.state.WinnerReason = "Duck count reached or exceeded good players, duck team wins!"
		g.state.Phase = domain.PhaseGameOver
	case evilAlive == 0:
		g.state.Winner = domain.TeamGood
		g.state.WinnerReason = "All ducks have been found, good team wins!"
		g.state.Phase = domain.PhaseGameOver
	}
}

// Phase exposes the current phase for the port layer.
func (g *Game) Phase() domain.Phase { return g.state.Phase }
