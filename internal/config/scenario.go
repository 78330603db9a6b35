// Package config loads the static scenario a game is played on: the room
// graph, the role multiset and the participant roster. Scenarios are loaded
// once before game start and are immutable for the lifetime of a game.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"gooseduck/internal/domain"
)

// File names expected inside a settings directory.
const (
	MapFile   = "map.yaml"
	RolesFile = "roles.yaml"
	GameFile  = "config.yaml"
)

// RoomConfig describes one room of the map file.
type RoomConfig struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Connections []string `yaml:"connections"`
	Tasks       []string `yaml:"tasks"`
	MeetingRoom bool     `yaml:"is_meeting_room"`
	Dangerous   bool     `yaml:"is_dangerous"`
	Position    []int    `yaml:"position"`
}

// MapConfig is the parsed map.yaml.
type MapConfig struct {
	SpawnRoom   string                `yaml:"spawn_room"`
	MeetingRoom string                `yaml:"emergency_button_room"`
	Rooms       map[string]RoomConfig `yaml:"rooms"`
}

// RoleCount is one entry of the role multiset.
type RoleCount struct {
	Role  string `yaml:"role"`
	Count int    `yaml:"count"`
}

// RolesConfig is the parsed roles.yaml.
type RolesConfig struct {
	Setup struct {
		Roles []RoleCount `yaml:"roles"`
	} `yaml:"default_setup"`
	Hints         map[string]string `yaml:"hints"`          // role type -> prompt hint
	WinConditions map[string]string `yaml:"win_conditions"` // role type or team -> text
}

// NPCConfig is one AI-controlled participant of the roster.
type NPCConfig struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Personality string `yaml:"personality"`
	Avatar      string `yaml:"avatar"`
}

// GameConfig is the parsed config.yaml.
type GameConfig struct {
	Player struct {
		Name string `yaml:"name"`
	} `yaml:"player"`
	NPCs []NPCConfig `yaml:"npcs"`

	EmergencyMeetings int `yaml:"emergency_meetings"`
	ChatTurnLimit     int `yaml:"chat_turn_limit"`
}

// Scenario bundles the three configuration files.
type Scenario struct {
	Map   MapConfig
	Roles RolesConfig
	Game  GameConfig
}

// Load reads and validates a scenario from the given settings directory.
func Load(dir string) (*Scenario, error) {
	var scn Scenario
	if err := readYAML(filepath.Join(dir, MapFile), &scn.Map); err != nil {
		return nil, err
	}
	if err := readYAML(filepath.Join(dir, RolesFile), &scn.Roles); err != nil {
		return nil, err
	}
	if err := readYAML(filepath.Join(dir, GameFile), &scn.Game); err != nil {
		return nil, err
	}
	scn.applyDefaults()
	if err := scn.Validate(); err != nil {
		return nil, err
	}
	return &scn, nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read scenario file: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (s *Scenario) applyDefaults() {
	if s.Game.Player.Name == "" {
		s.Game.Player.Name = "Player"
	}
	if s.Game.EmergencyMeetings == 0 {
		s.Game.EmergencyMeetings = 1
	}
	if s.Game.ChatTurnLimit == 0 {
		s.Game.ChatTurnLimit = 6
	}
}

// Validate checks graph consistency and the role multiset against the
// roster size.
func (s *Scenario) Validate() error {
	if len(s.Map.Rooms) == 0 {
		return fmt.Errorf("scenario has no rooms")
	}
	if _, ok := s.Map.Rooms[s.Map.SpawnRoom]; !ok {
		return fmt.Errorf("spawn room %q is not on the map", s.Map.SpawnRoom)
	}
	if _, ok := s.Map.Rooms[s.Map.MeetingRoom]; !ok {
		return fmt.Errorf("meeting room %q is not on the map", s.Map.MeetingRoom)
	}
	for id, room := range s.Map.Rooms {
		for _, conn := range room.Connections {
			if _, ok := s.Map.Rooms[conn]; !ok {
				return fmt.Errorf("room %q connects to unknown room %q", id, conn)
			}
		}
	}

	total := 0
	for _, rc := range s.Roles.Setup.Roles {
		if _, ok := domain.RoleByType(domain.RoleType(rc.Role)); !ok {
			return fmt.Errorf("unknown role %q in setup", rc.Role)
		}
		if rc.Count < 0 {
			return fmt.Errorf("role %q has negative count", rc.Role)
		}
		total += rc.Count
	}
	if roster := len(s.Game.NPCs) + 1; total != roster {
		return fmt.Errorf("role multiset size %d does not match roster size %d", total, roster)
	}

	seen := map[string]bool{"player": true}
	for _, npc := range s.Game.NPCs {
		if npc.ID == "" {
			return fmt.Errorf("npc without id")
		}
		if seen[npc.ID] {
			return fmt.Errorf("duplicate participant id %q", npc.ID)
		}
		seen[npc.ID] = true
	}
	return nil
}

// World builds the immutable room graph from the map config.
func (s *Scenario) World() *domain.World {
	rooms := make([]*domain.Room, 0, len(s.Map.Rooms))
	for id, rc := range s.Map.Rooms {
		room := &domain.Room{
			ID:          id,
			Name:        rc.Name,
			Description: rc.Description,
			Connections: rc.Connections,
			Tasks:       rc.Tasks,
			MeetingRoom: rc.MeetingRoom,
			Dangerous:   rc.Dangerous,
		}
		if room.Name == "" {
			room.Name = id
		}
		if len(rc.Position) == 2 {
			room.Position = [2]int{rc.Position[0], rc.Position[1]}
			room.HasPosition = true
		}
		rooms = append(rooms, room)
	}
	return domain.NewWorld(rooms, s.Map.SpawnRoom, s.Map.MeetingRoom)
}

// RoleMultiset expands the configured setup into a flat role list.
func (s *Scenario) RoleMultiset() []domain.RoleType {
	var roles []domain.RoleType
	for _, rc := range s.Roles.Setup.Roles {
		for i := 0; i < rc.Count; i++ {
			roles = append(roles, domain.RoleType(rc.Role))
		}
	}
	return roles
}

// RoleHint returns the scenario prompt hint for a role, if any.
func (s *Scenario) RoleHint(t domain.RoleType) string {
	return s.Roles.Hints[string(t)]
}

// WinText returns the win condition text for a role, preferring a
// role-specific entry over the team entry.
func (s *Scenario) WinText(role domain.Role) string {
	if text, ok := s.Roles.WinConditions[string(role.Type)]; ok {
		return text
	}
	if text, ok := s.Roles.WinConditions[string(role.Team)]; ok {
		return text
	}
	switch role.Team {
	case domain.TeamGood:
		return "Complete all tasks or eliminate all evil players."
	case domain.TeamEvil:
		return "Evil count reaches or exceeds good count."
	default:
		return "Meet your special win condition."
	}
}
