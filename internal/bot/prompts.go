package bot

import (
	"fmt"
	"strings"

	"gooseduck/internal/app"
	"gooseduck/internal/domain"
)

// teamGoal is the one-line objective shown for each team.
func teamGoal(team domain.Team) string {
	switch team {
	case domain.TeamGood:
		return "Complete tasks or find and eliminate all ducks."
	case domain.TeamEvil:
		return "Disguise and eliminate good players or make duck count reach good player count, avoid revealing identity."
	default:
		return "Act according to your special win condition."
	}
}

func roleLine(obs app.Observation) string {
	abilities := strings.Join(obs.Role.Abilities, ", ")
	if abilities == "" {
		abilities = "None"
	}
	return fmt.Sprintf("%s (Team: %s), Abilities: %s", obs.Role.Name, obs.Role.Team, abilities)
}

func memoryBlock(memories []string) string {
	if len(memories) == 0 {
		return "(No recent memories)"
	}
	return strings.Join(memories, "\n")
}

// BuildDecisionPrompt renders the free-roam action prompt for one AI
// participant from its observation.
func BuildDecisionPrompt(obs app.Observation) string {
	roomName, roomDesc := "Unknown", ""
	if obs.Room != nil {
		roomName, roomDesc = obs.Room.Name, obs.Room.Description
	}

	var people []string
	for _, p := range obs.PeopleHere {
		if p.Alive {
			people = append(people, p.Name)
		} else {
			people = append(people, p.Name+" (dead)")
		}
	}
	peopleText := strings.Join(people, ", ")
	if peopleText == "" {
		peopleText = "No one"
	}

	var actions []string
	for _, a := range obs.AvailableActions {
		actions = append(actions, fmt.Sprintf("- %s -> %s (%s)", a.Kind, a.Target, a.Label))
	}
	actionsText := strings.Join(actions, "\n")
	if actionsText == "" {
		actionsText = "No available actions"
	}

	var tasks []string
	for _, t := range obs.Tasks {
		tasks = append(tasks, fmt.Sprintf("- %s @ %s : %d/%d", t.Name, t.RoomName, t.Progress, t.Required))
	}
	tasksText := strings.Join(tasks, "\n")
	if tasksText == "" {
		tasksText = "No task information"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s. You are playing a Goose Duck game.\n", obs.ActorName)
	if obs.Personality != "" {
		fmt.Fprintf(&b, "Your personality: %s\n", obs.Personality)
	}
	b.WriteString("[Game Objectives]\n")
	fmt.Fprintf(&b, "- Your team goal: %s\n", teamGoal(obs.Role.Team))
	fmt.Fprintf(&b, "- Your identity: %s\n", roleLine(obs))
	fmt.Fprintf(&b, "- Role hint: %s\n", obs.RoleHint)
	fmt.Fprintf(&b, "- Your win condition: %s\n", obs.WinCondition)
	b.WriteString("[Current Information]\n")
	fmt.Fprintf(&b, "- Phase: %s  Round: %d\n", obs.Phase, obs.Round)
	fmt.Fprintf(&b, "- Current location: %s\n", roomName)
	fmt.Fprintf(&b, "- Room description: %s\n", roomDesc)
	fmt.Fprintf(&b, "- Reachable rooms: %s\n", strings.Join(obs.Connections, ", "))
	fmt.Fprintf(&b, "- People here: %s\n", peopleText)
	fmt.Fprintf(&b, "- Available actions:\n%s\n", actionsText)
	fmt.Fprintf(&b, "- Task progress:\n%s\n", tasksText)
	fmt.Fprintf(&b, "\n[Your Memories]\n%s\n", memoryBlock(obs.Memories))
	b.WriteString("\n[Note]\nIf you are a good player, prioritize completing tasks first. Do not call an emergency meeting before you can confirm identities.\n")
	b.WriteString("\n[Goal]\nMake your next action based on your team and identity. Choose the most reasonable action.\n")
	b.WriteString("Respond only in JSON format, no other content:\n")
	b.WriteString(`{"action": "move|task|kill|report|emergency|talk|wait", "target": "room_id or player_id or task_id or null", "reason": "brief reason"}`)
	return b.String()
}

// BuildMeetingPrompt renders the discussion speech prompt.
func BuildMeetingPrompt(obs app.Observation) string {
	var msgs []string
	for _, m := range obs.Discussion {
		msgs = append(msgs, fmt.Sprintf("- %s: %s", m.SpeakerName, m.Content))
	}
	msgText := strings.Join(msgs, "\n")
	if msgText == "" {
		msgText = "(No speeches yet)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, you are playing a Goose Duck game and currently in a discussion meeting.\n", obs.ActorName)
	fmt.Fprintf(&b, "[Your Identity] %s\n", roleLine(obs))
	fmt.Fprintf(&b, "[Your Win Condition] %s\n", obs.WinCondition)
	fmt.Fprintf(&b, "[Team Goal] %s\n", teamGoal(obs.Role.Team))
	fmt.Fprintf(&b, "[Your Current Memories (only you can see)]\n%s\n", memoryBlock(obs.Memories))
	fmt.Fprintf(&b, "[Current Meeting Discussion Record]\n%s\n", msgText)
	b.WriteString("\nPlease give a brief speech, combining your memories and the meeting content to achieve your team's goals, while maintaining the reasonableness of your identity. Output the speech content directly, no JSON.")
	return b.String()
}

// BuildChatPrompt renders the private conversation reply prompt.
func BuildChatPrompt(obs app.Observation) string {
	var history []string
	for _, m := range obs.ChatHistory {
		history = append(history, fmt.Sprintf("- %s: %s", m.SpeakerName, m.Content))
	}
	historyText := strings.Join(history, "\n")
	if historyText == "" {
		historyText = "(No conversation history)"
	}

	var tasks []string
	for _, t := range obs.Tasks {
		tasks = append(tasks, fmt.Sprintf("- %s@%s %d/%d", t.Name, t.RoomName, t.Progress, t.Required))
	}
	tasksText := strings.Join(tasks, "\n")
	if tasksText == "" {
		tasksText = "(No task information)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, currently conversing with %s in a Goose Duck game.\n", obs.ActorName, obs.PartnerName)
	fmt.Fprintf(&b, "Your identity: %s\n", roleLine(obs))
	fmt.Fprintf(&b, "Your win condition: %s\n", obs.WinCondition)
	fmt.Fprintf(&b, "Team goal: %s\n", teamGoal(obs.Role.Team))
	fmt.Fprintf(&b, "Role hint: %s\n", obs.RoleHint)
	fmt.Fprintf(&b, "\nTask progress:\n%s\n", tasksText)
	fmt.Fprintf(&b, "\nYour memories (recent events):\n%s\n", memoryBlock(obs.Memories))
	fmt.Fprintf(&b, "\nCurrent conversation history:\n%s\n", historyText)
	b.WriteString("\nPlease reply briefly (1-2 sentences), keep it conversational and aligned with your identity and motivation. You can choose to continue the conversation or end it if there's no more information.\n")
	b.WriteString("Respond only in JSON format, no additional explanations:\n")
	b.WriteString(`{"content": "your reply", "end": false}` + "\n")
	b.WriteString("If you want to end the conversation, set end to true and provide a closing statement.")
	return b.String()
}

// BuildVotePrompt renders the voting prompt. The expected output is a bare
// candidate name or "skip".
func BuildVotePrompt(obs app.Observation) string {
	var msgs []string
	for _, m := range obs.Discussion {
		msgs = append(msgs, fmt.Sprintf("- %s: %s", m.SpeakerName, m.Content))
	}
	msgText := strings.Join(msgs, "\n")
	if msgText == "" {
		msgText = "No speeches"
	}

	var candidates []string
	for _, opt := range obs.AvailableActions {
		if opt.Kind == app.ActionVote && opt.Target != app.VoteSkipTarget {
			candidates = append(candidates, opt.Target)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, currently in the voting phase.\n", obs.ActorName)
	fmt.Fprintf(&b, "[Your Identity] %s\n", roleLine(obs))
	fmt.Fprintf(&b, "[Your Win Condition] %s\n", obs.WinCondition)
	fmt.Fprintf(&b, "[Team Goal] %s\n", teamGoal(obs.Role.Team))
	fmt.Fprintf(&b, "[Meeting Speech Summary]\n%s\n", msgText)
	fmt.Fprintf(&b, "[Candidates] %s\n", strings.Join(candidates, ", "))
	b.WriteString("\nPlease choose the most suspicious person from the candidates to vote for (or choose to skip vote). Only output the candidate's id or \"skip\", without other explanations.")
	return b.String()
}
