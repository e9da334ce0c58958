package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidPlayer is returned when a player record is missing a required field
var ErrInvalidPlayer = errors.New("invalid player")

// Position represents a fantasy football roster position
type Position string

const (
	PositionQB  Position = "QB"
	PositionRB  Position = "RB"
	PositionWR  Position = "WR"
	PositionTE  Position = "TE"
	PositionK   Position = "K"
	PositionDST Position = "DST"
)

// BoardPositions are the positions shown on the draft board, in display order
var BoardPositions = []Position{PositionRB, PositionWR, PositionQB, PositionTE}

// ParsePosition normalizes a position label. Sleeper reports team defenses as DEF,
// FantasyPros as DST.
func ParsePosition(s string) Position {
	p := strings.ToUpper(strings.TrimSpace(s))
	switch p {
	case "DEF", "D/ST":
		return PositionDST
	case "PK":
		return PositionK
	}
	return Position(p)
}

// PlayerStatus represents the roster/injury status reported by the remote catalog
type PlayerStatus string

const (
	StatusActive       PlayerStatus = "active"
	StatusInjured      PlayerStatus = "injured"
	StatusQuestionable PlayerStatus = "questionable"
	StatusDoubtful     PlayerStatus = "doubtful"
	StatusOut          PlayerStatus = "out"
	StatusIR           PlayerStatus = "ir"
	StatusInactive     PlayerStatus = "inactive"
	StatusUnknown      PlayerStatus = "unknown"
)

// ParseStatus maps a catalog status or injury label onto a PlayerStatus
func ParseStatus(s string) PlayerStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return StatusActive
	case "injured", "injured reserve":
		return StatusInjured
	case "questionable", "q":
		return StatusQuestionable
	case "doubtful", "d":
		return StatusDoubtful
	case "out", "o":
		return StatusOut
	case "ir", "pup":
		return StatusIR
	case "inactive":
		return StatusInactive
	}
	return StatusUnknown
}

// RankedPlayer is one row of the uploaded rankings
type RankedPlayer struct {
	Name         string   `json:"name"`
	Position     Position `json:"position"`
	Team         string   `json:"team"`
	Rank         int      `json:"rank"`
	PositionRank int      `json:"positionRank,omitempty"`
	Tier         int      `json:"tier,omitempty"`
	ByeWeek      int      `json:"byeWeek,omitempty"`
	SOS          string   `json:"sos,omitempty"`
	ECRvsADP     int      `json:"ecrVsAdp,omitempty"`
}

// NewRankedPlayer validates and builds a RankedPlayer
func NewRankedPlayer(name string, position Position, team string, rank int) (RankedPlayer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return RankedPlayer{}, fmt.Errorf("%w: missing name", ErrInvalidPlayer)
	}
	if position == "" {
		return RankedPlayer{}, fmt.Errorf("%w: missing position for %q", ErrInvalidPlayer, name)
	}
	if rank < 1 {
		return RankedPlayer{}, fmt.Errorf("%w: rank %d for %q must be positive", ErrInvalidPlayer, rank, name)
	}
	return RankedPlayer{
		Name:     name,
		Position: position,
		Team:     strings.ToUpper(strings.TrimSpace(team)),
		Rank:     rank,
	}, nil
}

// RemotePlayer is a player record from the live catalog
type RemotePlayer struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	FirstName    string       `json:"firstName,omitempty"`
	LastName     string       `json:"lastName,omitempty"`
	Position     Position     `json:"position"`
	Team         string       `json:"team"`
	Status       PlayerStatus `json:"status"`
	InjuryStatus string       `json:"injuryStatus,omitempty"`
	InjuryNotes  string       `json:"injuryNotes,omitempty"`
}

// NewRemotePlayer validates and builds a RemotePlayer
func NewRemotePlayer(id, name string, position Position, team string, status PlayerStatus) (RemotePlayer, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return RemotePlayer{}, fmt.Errorf("%w: missing id for %q", ErrInvalidPlayer, name)
	}
	if name == "" {
		return RemotePlayer{}, fmt.Errorf("%w: missing name for id %s", ErrInvalidPlayer, id)
	}
	if status == "" {
		status = StatusUnknown
	}
	return RemotePlayer{
		ID:       id,
		Name:     name,
		Position: position,
		Team:     strings.ToUpper(strings.TrimSpace(team)),
		Status:   status,
	}, nil
}

// IndexCatalog keys a catalog by player id
func IndexCatalog(catalog []RemotePlayer) map[string]RemotePlayer {
	index := make(map[string]RemotePlayer, len(catalog))
	for _, p := range catalog {
		index[p.ID] = p
	}
	return index
}

// MatchMethod records which matching step produced a MatchResult
type MatchMethod string

const (
	MethodExact   MatchMethod = "exact"
	MethodFuzzy   MatchMethod = "fuzzy"
	MethodSurname MatchMethod = "surname"
	MethodNone    MatchMethod = "none"
)

// MatchResult reconciles one ranked player to zero or one catalog player.
// Confidence is 0 exactly when Remote is nil.
type MatchResult struct {
	Ranked     RankedPlayer  `json:"ranked"`
	Remote     *RemotePlayer `json:"remote,omitempty"`
	Confidence float64       `json:"confidence"`
	Method     MatchMethod   `json:"method"`
}

// Unmatched builds the explicit no-match outcome for p
func Unmatched(p RankedPlayer) MatchResult {
	return MatchResult{Ranked: p, Method: MethodNone}
}

// Matched reports whether a catalog player was found
func (m MatchResult) Matched() bool {
	return m.Remote != nil
}

// RemoteID returns the matched catalog id, or "" when unmatched
func (m MatchResult) RemoteID() string {
	if m.Remote == nil {
		return ""
	}
	return m.Remote.ID
}

// PickEvent records that a catalog player was drafted
type PickEvent struct {
	RemotePlayerID string `json:"remotePlayerId"`
	PickNumber     int    `json:"pickNumber"`
	Round          int    `json:"round,omitempty"`
	DraftedBy      string `json:"draftedBy,omitempty"`
}

// DraftedPlayer pairs a ranked player with the pick that took it
type DraftedPlayer struct {
	Player RankedPlayer `json:"player"`
	Pick   PickEvent    `json:"pick"`
}

// League is a saved draft the user can switch back to
type League struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	DraftURL  string    `json:"draftUrl"`
	DraftID   string    `json:"draftId"`
	CreatedAt time.Time `json:"createdAt"`
	LastUsed  time.Time `json:"lastUsed"`
}

// ADPEntry is the average draft position of a catalog player across recorded drafts
type ADPEntry struct {
	RemotePlayerID string  `json:"remotePlayerId"`
	AveragePick    float64 `json:"averagePick"`
	Drafts         int     `json:"drafts"`
}
