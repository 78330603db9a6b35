package domain

// VisibleWindow is the trailing slice of the event log a projection scans.
const VisibleWindow = 50

// VisibleEvents projects the event log for an observer standing in the given
// room: global events, events scoped to that room, and a synthesized "body
// found" entry for every corpse currently sharing the room. The projection
// is read-only; the underlying log is never touched.
func VisibleEvents(log []GameEvent, room string, participants map[string]*Participant, round int) []GameEvent {
	window := log
	if len(window) > VisibleWindow {
		window = window[len(window)-VisibleWindow:]
	}

	var visible []GameEvent
	for _, e := range window {
		if e.Location == "" || e.Location == room {
			visible = append(visible, e)
		}
	}

	if room != "" {
		for _, p := range participants {
			if p.Alive() || p.Location != room {
				continue
			}
			visible = append(visible, NewEvent(EventCrime, "Body found: "+p.Name, round).
				At(room).
				With(MetaVictim, p.ID))
		}
	}
	return visible
}

// Death is what an observer knows about one victim, extracted from their
// visible event feed.
type Death struct {
	VictimID string
	Location string
	Text     string
}

// KnownDeaths collects the deaths an observer can infer from a projected
// feed. Crime and critical events tagged with a victim count; duplicate
// sightings of the same victim collapse to the first.
func KnownDeaths(visible []GameEvent) []Death {
	seen := make(map[string]bool)
	var deaths []Death
	for _, e := range visible {
		if e.Type != EventCrime && e.Type != EventCritical {
			continue
		}
		victim := e.Metadata[MetaVictim]
		if victim == "" || seen[victim] {
			continue
		}
		seen[victim] = true
		deaths = append(deaths, Death{
			VictimID: victim,
			Location: e.Location,
			Text:     e.Text,
		})
	}
	return deaths
}
