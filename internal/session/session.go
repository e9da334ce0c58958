package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/draft"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/match"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/models"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/pubsub"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/rankings"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/sleeper"
)

var (
	ErrNoRankings = errors.New("no rankings loaded")
	ErrNoDraftID  = errors.New("no draft id set")
)

// CatalogSource fetches the remote player catalog
type CatalogSource interface {
	FetchPlayers(ctx context.Context) ([]models.RemotePlayer, error)
}

// CatalogInvalidator is implemented by catalog sources that keep a cached copy
type CatalogInvalidator interface {
	Invalidate(ctx context.Context) error
}

// PickSource fetches draft metadata and the picks made so far
type PickSource interface {
	FetchDraft(ctx context.Context, draftID string) (*sleeper.Draft, error)
	FetchPicks(ctx context.Context, draftID string) ([]models.PickEvent, error)
}

// Publisher receives board change events
type Publisher interface {
	Publish(pubsub.Event)
}

// ADPStore records picks and aggregates average draft position
type ADPStore interface {
	RecordPicks(ctx context.Context, draftID string, picks []models.PickEvent) error
	AverageDraftPositions(ctx context.Context) ([]models.ADPEntry, error)
}

// Config wires a Session to its collaborators. Events and ADP are optional.
type Config struct {
	Matcher *match.Matcher
	Catalog CatalogSource
	Picks   PickSource
	Events  Publisher
	ADP     ADPStore
}

// Session is one user's draft board: their rankings, the matched catalog and the
// picks seen so far. Safe for concurrent use.
type Session struct {
	ID string

	matcher *match.Matcher
	catalog CatalogSource
	picks   PickSource
	events  Publisher
	adp     ADPStore

	mu          sync.RWMutex
	ranked      []models.RankedPlayer
	remote      []models.RemotePlayer
	remoteIndex map[string]models.RemotePlayer
	matches     []models.MatchResult
	state       draft.State
	draftID     string
	draftInfo   *sleeper.Draft
	lastRefresh time.Time
}

// New creates an empty session
func New(cfg Config) *Session {
	m := cfg.Matcher
	if m == nil {
		m = match.New()
	}
	return &Session{
		ID:      uuid.NewString(),
		matcher: m,
		catalog: cfg.Catalog,
		picks:   cfg.Picks,
		events:  cfg.Events,
		adp:     cfg.ADP,
		state:   draft.NewState(),
	}
}

func (s *Session) publish(eventType string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payload["sessionId"] = s.ID
	s.events.Publish(pubsub.NewEvent(eventType, payload))
}

// LoadRankings replaces the ranked list and re-runs matching against the current catalog
func (s *Session) LoadRankings(players []models.RankedPlayer) {
	s.mu.Lock()
	s.ranked = append([]models.RankedPlayer(nil), players...)
	s.rematchLocked()
	matched, unmatched := s.matchCountsLocked()
	s.mu.Unlock()

	logger.Info("Rankings loaded", "session", s.ID, "players", len(players), "matched", matched, "unmatched", unmatched)
	s.publish(pubsub.EventRankingsLoad, map[string]interface{}{"players": len(players), "matched": matched})
}

// LoadRankingsCSV parses a rankings CSV and loads it
func (s *Session) LoadRankingsCSV(r io.Reader) (*rankings.Result, error) {
	res, err := rankings.Load(r)
	if err != nil {
		return nil, err
	}
	if len(res.Players) == 0 {
		return res, fmt.Errorf("%w: file contained no valid players", ErrNoRankings)
	}
	s.LoadRankings(res.Players)
	return res, nil
}

// LoadCatalog fetches the remote catalog and re-runs matching
func (s *Session) LoadCatalog(ctx context.Context) (int, error) {
	if s.catalog == nil {
		return 0, errors.New("no catalog source configured")
	}
	players, err := s.catalog.FetchPlayers(ctx)
	if err != nil {
		return 0, fmt.Errorf("load catalog: %w", err)
	}

	s.mu.Lock()
	s.remote = players
	s.remoteIndex = models.IndexCatalog(players)
	s.rematchLocked()
	matched, unmatched := s.matchCountsLocked()
	unknown := s.state.UnknownTargets(s.remoteIndex)
	draftID := s.draftID
	s.mu.Unlock()

	logger.Info("Catalog loaded", "session", s.ID, "players", len(players), "matched", matched, "unmatched", unmatched)
	// picks applied before the catalog arrived are checked here once
	for _, u := range unknown {
		logger.Warn("Pick references unknown player", "draft_id", draftID, "player_id", u.RemotePlayerID, "pick", u.PickNumber)
	}
	s.publish(pubsub.EventCatalogLoad, map[string]interface{}{"players": len(players), "matched": matched})
	return len(players), nil
}

// ReloadCatalog drops any cached catalog before loading, so the source is consulted
// even when a cached copy has not expired
func (s *Session) ReloadCatalog(ctx context.Context) (int, error) {
	if inv, ok := s.catalog.(CatalogInvalidator); ok {
		if err := inv.Invalidate(ctx); err != nil {
			return 0, fmt.Errorf("invalidate catalog: %w", err)
		}
		logger.Info("Catalog cache invalidated", "session", s.ID)
	}
	return s.LoadCatalog(ctx)
}

// rematchLocked rebuilds matches. Without a catalog every ranked player is unmatched,
// which keeps the whole list available.
func (s *Session) rematchLocked() {
	if len(s.remote) == 0 {
		s.matches = make([]models.MatchResult, len(s.ranked))
		for i, p := range s.ranked {
			s.matches[i] = models.Unmatched(p)
		}
		return
	}

	s.matches = s.matcher.MatchAll(s.ranked, s.remote)
	for _, m := range s.matches {
		if m.Matched() {
			continue
		}
		if near, score, ok := s.matcher.Nearest(m.Ranked, s.remote); ok {
			logger.Info("No catalog match", "player", m.Ranked.Name, "position", m.Ranked.Position,
				"nearest", near.Name, "nearest_id", near.ID, "score", score)
		} else {
			logger.Info("No catalog match", "player", m.Ranked.Name, "position", m.Ranked.Position)
		}
	}
}

func (s *Session) matchCountsLocked() (matched, unmatched int) {
	for _, m := range s.matches {
		if m.Matched() {
			matched++
		} else {
			unmatched++
		}
	}
	return matched, unmatched
}

// SetDraftID accepts a draft id or URL. Switching to a different draft clears the picks;
// setting the current id again keeps them.
func (s *Session) SetDraftID(ctx context.Context, raw string) (string, error) {
	id := sleeper.ParseDraftID(raw)
	if id == "" {
		return "", ErrNoDraftID
	}

	var info *sleeper.Draft
	if s.picks != nil {
		d, err := s.picks.FetchDraft(ctx, id)
		if err != nil {
			return "", fmt.Errorf("draft %s: %w", id, err)
		}
		info = d
	}

	s.mu.Lock()
	if id != s.draftID {
		s.state = draft.NewState()
		s.lastRefresh = time.Time{}
	}
	s.draftID = id
	s.draftInfo = info
	s.mu.Unlock()

	logger.Info("Draft id set", "session", s.ID, "draft_id", id)
	s.publish(pubsub.EventDraftSet, map[string]interface{}{"draftId": id})
	return id, nil
}

// DraftID returns the current draft id
func (s *Session) DraftID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draftID
}

// RefreshResult reports what a refresh changed
type RefreshResult struct {
	DraftID  string `json:"draftId"`
	Fetched  int    `json:"fetched"`
	NewPicks int    `json:"newPicks"`
	Drafted  int    `json:"drafted"`
	Unknown  int    `json:"unknown"`
}

// Refresh pulls the pick history of the current draft and applies it. Applying the
// same history again changes nothing.
func (s *Session) Refresh(ctx context.Context) (*RefreshResult, error) {
	s.mu.RLock()
	id := s.draftID
	s.mu.RUnlock()
	if id == "" {
		return nil, ErrNoDraftID
	}
	if s.picks == nil {
		return nil, errors.New("no pick source configured")
	}

	events, err := s.picks.FetchPicks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("refresh draft %s: %w", id, err)
	}

	s.mu.Lock()
	if s.draftID != id {
		s.mu.Unlock()
		return nil, fmt.Errorf("draft changed from %s to %s during refresh", id, s.draftID)
	}
	prev := s.state
	before := prev.Len()
	s.state = s.state.ApplyPicks(events)
	s.lastRefresh = time.Now().UTC()
	res := &RefreshResult{DraftID: id, Fetched: len(events), NewPicks: s.state.Len() - before, Drafted: s.state.Len()}

	var unknown []models.PickEvent
	if s.remoteIndex != nil {
		unknown = s.state.UnknownTargets(s.remoteIndex)
	}
	s.mu.Unlock()

	res.Unknown = len(unknown)
	for _, u := range unknown {
		// earlier refreshes or the catalog load already reported the rest
		if _, seen := prev.Pick(u.RemotePlayerID); seen {
			continue
		}
		logger.Warn("Pick references unknown player", "draft_id", id, "player_id", u.RemotePlayerID, "pick", u.PickNumber)
	}

	if s.adp != nil && res.NewPicks > 0 {
		if err := s.adp.RecordPicks(ctx, id, events); err != nil {
			logger.Warn("Failed to record picks for ADP", "draft_id", id, "error", err)
		}
	}

	logger.Debug("Draft refreshed", "session", s.ID, "draft_id", id, "new_picks", res.NewPicks, "drafted", res.Drafted)
	if res.NewPicks > 0 {
		s.publish(pubsub.EventDraftRefresh, map[string]interface{}{"draftId": id, "newPicks": res.NewPicks, "drafted": res.Drafted})
	}
	return res, nil
}
