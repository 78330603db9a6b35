package domain

// MemoryLimit bounds the per-participant memory log; oldest entries drop.
const MemoryLimit = 20

// TaskSteps is how many times a task must be worked to complete it.
const TaskSteps = 2

// Participant is a human- or AI-controlled actor. It owns one Identity.
type Participant struct {
	ID          string
	Name        string
	IsHuman     bool
	Location    string // current room ID
	Personality string
	Avatar      string
	LastAction  string

	Memories []string // most-recent-N free text observations
	HasActed bool     // reset at the start of every round

	TasksAssigned  []string
	TasksProgress  map[string]int // task ID -> 0..TaskSteps
	TasksCompleted []string

	EmergencyMeetingsLeft int

	Identity *Identity
}

// Alive reports whether the participant is still in play. Participants
// without an assigned identity (lobby) count as alive.
func (p *Participant) Alive() bool {
	if p.Identity == nil {
		return true
	}
	return p.Identity.Alive
}

// Remember appends a memory entry, dropping the oldest past MemoryLimit.
func (p *Participant) Remember(text string) {
	p.Memories = append(p.Memories, text)
	if len(p.Memories) > MemoryLimit {
		p.Memories = p.Memories[len(p.Memories)-MemoryLimit:]
	}
}

// RecentMemories returns up to n most recent memory entries.
func (p *Participant) RecentMemories(n int) []string {
	if len(p.Memories) <= n {
		return p.Memories
	}
	return p.Memories[len(p.Memories)-n:]
}

// TaskDone reports whether the task reached the completion step count.
func (p *Participant) TaskDone(task string) bool {
	return p.TasksProgress[task] >= TaskSteps
}
