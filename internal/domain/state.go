package domain

// Phase represents the top-level game mode.
type Phase string

const (
	// PhaseLobby is the pre-game state before roles are dealt.
	PhaseLobby Phase = "lobby"
	// PhaseFreeRoam is one-action-per-round movement and ability play.
	PhaseFreeRoam Phase = "free_roam"
	// PhaseDiscussion is the forced meeting after a report or emergency.
	PhaseDiscussion Phase = "discussion"
	// PhaseVoting collects one vote per living participant.
	PhaseVoting Phase = "voting"
	// PhaseGameOver is terminal; no further actions are accepted.
	PhaseGameOver Phase = "game_over"
)

// VoteSkip is the recorded target for an explicit skip vote.
const VoteSkip = ""

// DiscussionMessage is one speech in the meeting transcript.
type DiscussionMessage struct {
	SpeakerID   string `json:"speaker_id"`
	SpeakerName string `json:"speaker_name"`
	Content     string `json:"content"`
}

// ChatMessage is one line of a private two-party conversation.
type ChatMessage struct {
	SpeakerID   string `json:"speaker_id"`
	SpeakerName string `json:"speaker_name"`
	Content     string `json:"content"`
	Round       int    `json:"round"`
	Room        string `json:"room"`
}

// Conversation is the paused sub-mode that suspends the turn loop for a
// private exchange. While Active is set no other action resolves.
type Conversation struct {
	Active       bool
	Participants []string // exactly two IDs when active
	Messages     []ChatMessage
	Room         string
}

// Other returns the conversation partner of the given participant.
func (c *Conversation) Other(id string) string {
	for _, pid := range c.Participants {
		if pid != id {
			return pid
		}
	}
	return ""
}

// Includes reports whether the participant is part of the conversation.
func (c *Conversation) Includes(id string) bool {
	for _, pid := range c.Participants {
		if pid == id {
			return true
		}
	}
	return false
}

// GameState is the mutable orchestration state. Exactly one phase is active
// at a time; it is owned exclusively by the game aggregate.
type GameState struct {
	Phase Phase
	Round int

	Conversation Conversation

	// Discussion / voting sub-state
	Reporter     string
	BodyLocation string
	SpeakerOrder []string
	SpeakerIndex int
	Discussion   []DiscussionMessage
	Votes        map[string]string // voter ID -> target ID, VoteSkip for skip

	Winner       Team
	WinnerReason string
}

// NewGameState returns a lobby-phase state.
func NewGameState() *GameState {
	return &GameState{
		Phase: PhaseLobby,
		Votes: make(map[string]string),
	}
}
