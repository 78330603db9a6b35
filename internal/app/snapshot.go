package app

import (
	"fmt"

	"gooseduck/internal/domain"
)

// RoleView is the revealed shape of a role, shown only for the observer's
// own identity or in the admin overview.
type RoleView struct {
	Type        domain.RoleType `json:"role_type"`
	Team        domain.Team     `json:"team"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Abilities   []string        `json:"abilities"`
	CanKill     bool            `json:"can_kill"`
	KillUses    int             `json:"kill_uses,omitempty"`
}

// PlayerView is the masked public shape of a participant.
type PlayerView struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	IsHuman        bool      `json:"is_human"`
	Location       string    `json:"location"`
	Avatar         string    `json:"avatar,omitempty"`
	Alive          bool      `json:"is_alive"`
	LastAction     string    `json:"last_action"`
	TasksCompleted int       `json:"tasks_completed"`
	TasksTotal     int       `json:"tasks_total"`
	Role           *RoleView `json:"role,omitempty"` // only when revealed
}

// RoomView is the public shape of a room.
type RoomView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Connections []string `json:"connections"`
	Tasks       []string `json:"tasks"`
	MeetingRoom bool     `json:"is_meeting_room"`
	Dangerous   bool     `json:"is_dangerous"`
	Position    []int    `json:"position,omitempty"`
}

// DeathView is one known death in an observer's feed.
type DeathView struct {
	Name         string `json:"name"`
	Location     string `json:"location,omitempty"`
	LocationName string `json:"location_name,omitempty"`
	Text         string `json:"text"`
}

// SelfView is the observer's own full state including their role.
type SelfView struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Location string     `json:"location"`
	Alive    bool       `json:"is_alive"`
	Role     *RoleView  `json:"role,omitempty"`
	CanKill  bool       `json:"can_kill"`
	Tasks    []TaskView `json:"tasks"`
}

// Snapshot is the per-participant projection of the game: the observer's
// own role, masked roles for everyone else, and only the events their
// position lets them witness.
type Snapshot struct {
	Phase              domain.Phase       `json:"phase"`
	Round              int                `json:"round"`
	Player             SelfView           `json:"player"`
	CurrentRoom        *RoomView          `json:"current_room,omitempty"`
	PlayersHere        []PlayerView       `json:"players_here"`
	AvailableActions   []ActionOption     `json:"available_actions"`
	Events             []domain.GameEvent `json:"events"`
	AllPlayers         []PlayerView       `json:"all_players"`
	KnownDeaths        []DeathView        `json:"known_deaths"`
	ConversationActive bool               `json:"conversation_active"`
	AliveCount         int                `json:"alive_count"`
	DeadCount          int                `json:"dead_count"`
	Winner             domain.Team        `json:"winner,omitempty"`
	WinnerReason       string             `json:"winner_reason,omitempty"`
}

// Snapshot builds the filtered view for one participant.
func (g *Game) Snapshot(observerID string) (*Snapshot, error) {
	observer := g.players[observerID]
	if observer == nil {
		return nil, fmt.Errorf("%w: participant %q does not exist", ErrInvalidTarget, observerID)
	}

	snap := &Snapshot{
		Phase:              g.state.Phase,
		Round:              g.state.Round,
		AvailableActions:   g.AvailableActions(observerID),
		ConversationActive: g.state.Conversation.Active,
		Winner:             g.state.Winner,
		WinnerReason:       g.state.WinnerReason,
	}

	snap.Player = SelfView{
		ID:       observer.ID,
		Name:     observer.Name,
		Location: observer.Location,
		Alive:    observer.Alive(),
	}
	if observer.Identity != nil {
		snap.Player.Role = roleView(observer.Identity.Role)
		snap.Player.CanKill = observer.Identity.CanUseKill()
	}
	for _, task := range observer.TasksAssigned {
		roomID := g.world.TaskLocations[task]
		snap.Player.Tasks = append(snap.Player.Tasks, TaskView{
			Name:     task,
			Progress: observer.TasksProgress[task],
			Required: domain.TaskSteps,
			RoomID:   roomID,
			RoomName: g.world.RoomName(roomID),
		})
	}

	if room := g.world.Room(observer.Location); room != nil {
		snap.CurrentRoom = roomView(room)
	}

	for _, id := range g.turnOrder {
		p := g.players[id]
		view := playerView(p, false)
		snap.AllPlayers = append(snap.AllPlayers, view)
		if p.ID != observerID && p.Location == observer.Location && p.Alive() {
			snap.PlayersHere = append(snap.PlayersHere, view)
		}
		if p.Alive() {
			snap.AliveCount++
		} else {
			snap.DeadCount++
		}
	}

	visible := domain.VisibleEvents(g.events, observer.Location, g.players, g.state.Round)
	if len(visible) > 10 {
		visible = visible[len(visible)-10:]
	}
	snap.Events = visible

	for _, d := range domain.KnownDeaths(visible) {
		view := DeathView{Location: d.Location, Text: d.Text, LocationName: g.world.RoomName(d.Location)}
		if victim := g.players[d.VictimID]; victim != nil {
			view.Name = victim.Name
		}
		snap.KnownDeaths = append(snap.KnownDeaths, view)
	}

	return snap, nil
}

// MapInfo is the full map with per-room occupancy, used by the map fetch
// and the admin overview.
type MapInfo struct {
	Rooms       map[string]*MapRoom `json:"rooms"`
	SpawnRoom   string              `json:"spawn_room"`
	MeetingRoom string              `json:"meeting_room"`
}

// MapRoom is one room plus everyone standing in it.
type MapRoom struct {
	RoomView
	Players []PlayerView `json:"players"`
}

// MapInfo builds the whole-map view.
func (g *Game) MapInfo() *MapInfo {
	info := &MapInfo{
		Rooms:       make(map[string]*MapRoom, len(g.world.Rooms)),
		SpawnRoom:   g.world.SpawnRoom,
		MeetingRoom: g.world.MeetingRoom,
	}
	for id, room := range g.world.Rooms {
		mr := &MapRoom{RoomView: *roomView(room)}
		for _, pid := range g.turnOrder {
			if p := g.players[pid]; p != nil && p.Location == id {
				mr.Players = append(mr.Players, playerView(p, false))
			}
		}
		info.Rooms[id] = mr
	}
	return info
}

// AdminOverview reveals the whole game for observability: all roles, all
// events, the discussion sub-state and the vote map.
type AdminOverview struct {
	Phase        domain.Phase       `json:"phase"`
	Round        int                `json:"round"`
	Players      []PlayerView       `json:"players"`
	Events       []domain.GameEvent `json:"events"`
	Discussion   *DiscussionState   `json:"discussion"`
	Winner       domain.Team        `json:"winner,omitempty"`
	WinnerReason string             `json:"winner_reason,omitempty"`
}

// AdminOverview builds the unmasked administrative view.
func (g *Game) AdminOverview() *AdminOverview {
	overview := &AdminOverview{
		Phase:        g.state.Phase,
		Round:        g.state.Round,
		Events:       append([]domain.GameEvent(nil), g.events...),
		Discussion:   g.DiscussionState(),
		Winner:       g.state.Winner,
		WinnerReason: g.state.WinnerReason,
	}
	for _, id := range g.turnOrder {
		overview.Players = append(overview.Players, playerView(g.players[id], true))
	}
	return overview
}

func roleView(role domain.Role) *RoleView {
	return &RoleView{
		Type:        role.Type,
		Team:        role.Team,
		Name:        role.Name,
		Description: role.Description,
		Abilities:   role.Abilities,
		CanKill:     role.CanKill,
		KillUses:    role.KillUses,
	}
}

func roomView(room *domain.Room) *RoomView {
	view := &RoomView{
		ID:          room.ID,
		Name:        room.Name,
		Description: room.Description,
		Connections: room.Connections,
		Tasks:       room.Tasks,
		MeetingRoom: room.MeetingRoom,
		Dangerous:   room.Dangerous,
	}
	if room.HasPosition {
		view.Position = []int{room.Position[0], room.Position[1]}
	}
	return view
}

func playerView(p *domain.Participant, revealRole bool) PlayerView {
	view := PlayerView{
		ID:             p.ID,
		Name:           p.Name,
		IsHuman:        p.IsHuman,
		Location:       p.Location,
		Avatar:         p.Avatar,
		Alive:          p.Alive(),
		LastAction:     p.LastAction,
		TasksCompleted: len(p.TasksCompleted),
		TasksTotal:     len(p.TasksAssigned),
	}
	if revealRole && p.Identity != nil {
		view.Role = roleView(p.Identity.Role)
	}
	return view
}
