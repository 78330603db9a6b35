package domain

import "sort"

// Room is a single location on the game map. Rooms are immutable after the
// world is loaded.
type Room struct {
	ID          string
	Name        string
	Description string
	Connections []string // reachable room IDs
	Tasks       []string // task IDs located in this room
	MeetingRoom bool
	Dangerous   bool
	Position    [2]int // (x, y) layout hint for map rendering
	HasPosition bool
}

// ConnectsTo reports whether target is directly reachable from this room.
func (r *Room) ConnectsTo(target string) bool {
	for _, id := range r.Connections {
		if id == target {
			return true
		}
	}
	return false
}

// HasTask reports whether the task is located in this room.
func (r *Room) HasTask(task string) bool {
	for _, t := range r.Tasks {
		if t == task {
			return true
		}
	}
	return false
}

// World is the static room graph plus task placement. Built once from the
// scenario configuration and never mutated during a game.
type World struct {
	Rooms         map[string]*Room
	TaskLocations map[string]string // task ID -> room ID
	SpawnRoom     string
	MeetingRoom   string // room with the emergency button
}

// NewWorld indexes the given rooms and task locations.
func NewWorld(rooms []*Room, spawn, meeting string) *World {
	w := &World{
		Rooms:         make(map[string]*Room, len(rooms)),
		TaskLocations: make(map[string]string),
		SpawnRoom:     spawn,
		MeetingRoom:   meeting,
	}
	for _, r := range rooms {
		w.Rooms[r.ID] = r
		for _, task := range r.Tasks {
			w.TaskLocations[task] = r.ID
		}
	}
	return w
}

// Room returns the room with the given ID, or nil.
func (w *World) Room(id string) *Room {
	return w.Rooms[id]
}

// RoomName returns the display name for a room ID, falling back to the ID
// itself for unknown rooms.
func (w *World) RoomName(id string) string {
	if r := w.Rooms[id]; r != nil {
		return r.Name
	}
	return id
}

// AllTasks returns every task ID on the map, sorted so callers see a
// stable ordering across runs.
func (w *World) AllTasks() []string {
	tasks := make([]string, 0, len(w.TaskLocations))
	for task := range w.TaskLocations {
		tasks = append(tasks, task)
	}
	sort.Strings(tasks)
	return tasks
}
