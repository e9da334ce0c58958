package session

import (
	"context"
	"time"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/models"
)

// PositionBoard is the top available players at one position
type PositionBoard struct {
	Position models.Position       `json:"position"`
	Players  []models.RankedPlayer `json:"players"`
}

// SearchHit is a search result with its availability
type SearchHit struct {
	Player     models.RankedPlayer `json:"player"`
	RemoteID   string              `json:"remoteId,omitempty"`
	Confidence float64             `json:"confidence"`
	Available  bool                `json:"available"`
}

// Summary counts what the session holds
type Summary struct {
	SessionID   string    `json:"sessionId"`
	DraftID     string    `json:"draftId,omitempty"`
	DraftStatus string    `json:"draftStatus,omitempty"`
	Ranked      int       `json:"ranked"`
	Matched     int       `json:"matched"`
	Unmatched   int       `json:"unmatched"`
	Drafted     int       `json:"drafted"`
	Available   int       `json:"available"`
	CatalogSize int       `json:"catalogSize"`
	LastRefresh time.Time `json:"lastRefresh,omitempty"`
}

// ADPRow is an ADP entry joined with the catalog
type ADPRow struct {
	models.ADPEntry
	Name     string          `json:"name,omitempty"`
	Position models.Position `json:"position,omitempty"`
	Team     string          `json:"team,omitempty"`
}

func (s *Session) requireRankingsLocked() error {
	if len(s.ranked) == 0 {
		return ErrNoRankings
	}
	return nil
}

// Board returns the top n available players for each of RB, WR, QB and TE
func (s *Session) Board(n int) ([]PositionBoard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.requireRankingsLocked(); err != nil {
		return nil, err
	}

	board := make([]PositionBoard, 0, len(models.BoardPositions))
	for _, pos := range models.BoardPositions {
		board = append(board, PositionBoard{Position: pos, Players: s.state.TopByPosition(s.matches, pos, n)})
	}
	return board, nil
}

func (s *Session) TopByPosition(pos models.Position, n int) ([]models.RankedPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.requireRankingsLocked(); err != nil {
		return nil, err
	}
	return s.state.TopByPosition(s.matches, pos, n), nil
}

func (s *Session) TopOverall(n int) ([]models.RankedPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.requireRankingsLocked(); err != nil {
		return nil, err
	}
	return s.state.TopOverall(s.matches, n), nil
}

// Available returns every available player in rank order
func (s *Session) Available() ([]models.RankedPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.requireRankingsLocked(); err != nil {
		return nil, err
	}
	return s.state.AvailablePlayers(s.matches), nil
}

// Search finds ranked players by name, drafted or not
func (s *Session) Search(query string) ([]SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.requireRankingsLocked(); err != nil {
		return nil, err
	}

	found := s.matcher.Search(s.matches, query)
	hits := make([]SearchHit, 0, len(found))
	for _, m := range found {
		hits = append(hits, SearchHit{
			Player:     m.Ranked,
			RemoteID:   m.RemoteID(),
			Confidence: m.Confidence,
			Available:  s.state.IsAvailable(m.RemoteID()),
		})
	}
	return hits, nil
}

// Drafted returns ranked players already taken, best rank first
func (s *Session) Drafted() []models.DraftedPlayer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.DraftedPlayers(s.matches)
}

// UnmatchedDrafted returns drafted catalog players none of the rankings point at
func (s *Session) UnmatchedDrafted() []models.RemotePlayer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.remoteIndex == nil {
		return nil
	}
	return s.state.UnmatchedDrafted(s.matches, s.remoteIndex)
}

// Matches returns a copy of the match results in rank order
func (s *Session) Matches() []models.MatchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.MatchResult(nil), s.matches...)
}

func (s *Session) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched, unmatched := s.matchCountsLocked()
	sum := Summary{
		SessionID:   s.ID,
		DraftID:     s.draftID,
		Ranked:      len(s.ranked),
		Matched:     matched,
		Unmatched:   unmatched,
		Drafted:     s.state.Len(),
		Available:   len(s.state.AvailableMatches(s.matches)),
		CatalogSize: len(s.remote),
		LastRefresh: s.lastRefresh,
	}
	if s.draftInfo != nil {
		sum.DraftStatus = s.draftInfo.Status
	}
	return sum
}

// ADP returns average draft positions joined with catalog names; nil without a store
func (s *Session) ADP(ctx context.Context) ([]ADPRow, error) {
	if s.adp == nil {
		return nil, nil
	}
	entries, err := s.adp.AverageDraftPositions(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]ADPRow, 0, len(entries))
	for _, e := range entries {
		row := ADPRow{ADPEntry: e}
		if p, ok := s.remoteIndex[e.RemotePlayerID]; ok {
			row.Name = p.Name
			row.Position = p.Position
			row.Team = p.Team
		}
		rows = append(rows, row)
	}
	return rows, nil
}
