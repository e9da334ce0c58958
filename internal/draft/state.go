package draft

import (
	"sort"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/models"
)

// State is the set of drafted catalog ids for one draft session.
//
// State is a value: ApplyPicks returns a new State and never mutates its receiver,
// so the caller (a session, a CLI invocation) owns exactly one current value.
// A zero State is valid and empty.
type State struct {
	drafted map[string]models.PickEvent
}

// NewState returns an empty draft state
func NewState() State {
	return State{drafted: make(map[string]models.PickEvent)}
}

// ApplyPicks unions the event ids into the drafted set. Re-applying events that are
// already present is a no-op, so overlapping pick history from repeated polls is safe.
// When the same id arrives with different picks the earliest pick number is kept.
// Ids not present in the catalog are still recorded.
func (s State) ApplyPicks(events []models.PickEvent) State {
	next := make(map[string]models.PickEvent, len(s.drafted)+len(events))
	for id, ev := range s.drafted {
		next[id] = ev
	}
	for _, ev := range events {
		if ev.RemotePlayerID == "" {
			continue
		}
		if prev, ok := next[ev.RemotePlayerID]; ok && prev.PickNumber <= ev.PickNumber {
			continue
		}
		next[ev.RemotePlayerID] = ev
	}
	return State{drafted: next}
}

// IsAvailable reports whether id has not been drafted. The empty id (an unmatched
// ranked player) is always available since it cannot be confirmed drafted.
func (s State) IsAvailable(remoteID string) bool {
	if remoteID == "" {
		return true
	}
	_, drafted := s.drafted[remoteID]
	return !drafted
}

// Len returns the number of drafted ids
func (s State) Len() int {
	return len(s.drafted)
}

// Pick returns the pick that drafted id
func (s State) Pick(remoteID string) (models.PickEvent, bool) {
	ev, ok := s.drafted[remoteID]
	return ev, ok
}

// DraftedIDs returns the drafted ids in ascending order
func (s State) DraftedIDs() []string {
	ids := make([]string, 0, len(s.drafted))
	for id := range s.drafted {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Picks returns the recorded picks ordered by pick number
func (s State) Picks() []models.PickEvent {
	picks := make([]models.PickEvent, 0, len(s.drafted))
	for _, ev := range s.drafted {
		picks = append(picks, ev)
	}
	sort.Slice(picks, func(i, j int) bool {
		if picks[i].PickNumber != picks[j].PickNumber {
			return picks[i].PickNumber < picks[j].PickNumber
		}
		return picks[i].RemotePlayerID < picks[j].RemotePlayerID
	})
	return picks
}

// UnknownTargets returns picks whose id is missing from the catalog index, in pick order.
// They stay recorded but cannot affect availability until a match references them.
func (s State) UnknownTargets(catalog map[string]models.RemotePlayer) []models.PickEvent {
	var unknown []models.PickEvent
	for _, ev := range s.Picks() {
		if _, ok := catalog[ev.RemotePlayerID]; !ok {
			unknown = append(unknown, ev)
		}
	}
	return unknown
}
