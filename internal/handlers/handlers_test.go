package handlers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/auth"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/cache"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/dal"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/models"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/pubsub"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/rankings"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/session"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/sleeper"
)

func init() {
	logger.Init()
}

type stubSleeper struct {
	players []models.RemotePlayer
	picks   map[string][]models.PickEvent
}

func (s *stubSleeper) FetchPlayers(ctx context.Context) ([]models.RemotePlayer, error) {
	return s.players, nil
}

func (s *stubSleeper) FetchDraft(ctx context.Context, id string) (*sleeper.Draft, error) {
	if _, ok := s.picks[id]; !ok {
		return nil, sleeper.ErrNotFound
	}
	return &sleeper.Draft{DraftID: id, Status: "drafting"}, nil
}

func (s *stubSleeper) FetchPicks(ctx context.Context, id string) ([]models.PickEvent, error) {
	return s.picks[id], nil
}

const rankingsCSV = `RK,TIERS,PLAYER NAME,TEAM,POS,BYE WEEK
1,1,Justin Jefferson,MIN,WR1,6
2,1,Bijan Robinson,ATL,RB1,5
3,1,Josh Allen,BUF,QB1,7
4,2,Travis Kelce,KC,TE1,6
`

type testServer struct {
	mux     *http.ServeMux
	session *session.Session
	leagues *dal.MemoryDAL
	events  *pubsub.PubSub
}

func newTestServer(t *testing.T, provider auth.AuthProvider) testServer {
	t.Helper()
	src := &stubSleeper{
		players: []models.RemotePlayer{
			{ID: "10", Name: "Justin Jefferson", Position: models.PositionWR, Team: "MIN"},
			{ID: "20", Name: "Bijan Robinson", Position: models.PositionRB, Team: "ATL"},
			{ID: "30", Name: "Josh Allen", Position: models.PositionQB, Team: "BUF"},
			{ID: "40", Name: "Travis Kelce", Position: models.PositionTE, Team: "KC"},
		},
		picks: map[string][]models.PickEvent{
			"555": {{RemotePlayerID: "10", PickNumber: 1, Round: 1}},
			"777": nil,
		},
	}
	ps := pubsub.New()
	t.Cleanup(ps.Close)

	ts := testServer{
		mux:     http.NewServeMux(),
		session: session.New(session.Config{Catalog: src, Picks: src, Events: ps}),
		leagues: dal.NewMemoryDAL(),
		events:  ps,
	}
	NewAPIHandlers(ts.session, ts.leagues, ps).Register(ts.mux, provider)
	return ts
}

func (ts testServer) do(method, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" && strings.HasPrefix(body, "{") {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.mux.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestViewsBeforeRankingsConflict(t *testing.T) {
	ts := newTestServer(t, nil)
	for _, path := range []string{"/api/board", "/api/available", "/api/top", "/api/search?q=allen"} {
		w := ts.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusConflict, w.Code, path)
	}

	w := ts.do(http.MethodGet, "/api/summary", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRankingsUploadAndBoard(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPost, "/api/rankings", rankingsCSV)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var loaded map[string]int
	decode(t, w, &loaded)
	assert.Equal(t, 4, loaded["loaded"])
	assert.Equal(t, 0, loaded["matched"], "no catalog yet")

	w = ts.do(http.MethodPost, "/api/catalog/load", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &loaded)
	assert.Equal(t, 4, loaded["players"])
	assert.Equal(t, 4, loaded["matched"])

	w = ts.do(http.MethodGet, "/api/board?n=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var board []session.PositionBoard
	decode(t, w, &board)
	require.Len(t, board, 4)
	assert.Equal(t, models.PositionRB, board[0].Position)
	assert.Equal(t, "Bijan Robinson", board[0].Players[0].Name)

	w = ts.do(http.MethodGet, "/api/top?position=qb", "")
	require.Equal(t, http.StatusOK, w.Code)
	var top []models.RankedPlayer
	decode(t, w, &top)
	require.Len(t, top, 1)
	assert.Equal(t, "Josh Allen", top[0].Name)
}

func TestRankingsUploadMultipart(t *testing.T) {
	ts := newTestServer(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "rankings.csv")
	require.NoError(t, err)
	_, _ = part.Write([]byte(rankingsCSV))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/rankings", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	ts.mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 4, ts.session.Summary().Ranked)
}

func TestRankingsUploadRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing columns", "RK,TEAM\n1,MIN\n"},
		{"header only", "PLAYER NAME,POS\n"},
		{"empty body", ""},
		{"unterminated quote", "PLAYER NAME,POS\n\"Justin Jefferson,WR1\n"},
		{"bare quote", "PLAYER NAME,POS\nJa\"Marr Chase,WR2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			w := ts.do(http.MethodPost, "/api/rankings", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestDraftFlow(t *testing.T) {
	ts := newTestServer(t, nil)
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/rankings", rankingsCSV).Code)
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/catalog/load", "").Code)

	w := ts.do(http.MethodPost, "/api/draft/refresh", "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "no draft id yet")

	w = ts.do(http.MethodPost, "/api/draft/id", `{"draftId":"404"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodPost, "/api/draft/id", `{"url":"https://sleeper.com/draft/nfl/555"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var set map[string]string
	decode(t, w, &set)
	assert.Equal(t, "555", set["draftId"])

	w = ts.do(http.MethodPost, "/api/draft/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)
	var res session.RefreshResult
	decode(t, w, &res)
	assert.Equal(t, 1, res.NewPicks)

	w = ts.do(http.MethodGet, "/api/available", "")
	var avail []models.RankedPlayer
	decode(t, w, &avail)
	assert.Len(t, avail, 3)

	w = ts.do(http.MethodGet, "/api/search?q=jefferson", "")
	var hits []session.SearchHit
	decode(t, w, &hits)
	require.Len(t, hits, 1)
	assert.False(t, hits[0].Available)

	w = ts.do(http.MethodGet, "/api/drafted", "")
	var drafted []models.DraftedPlayer
	decode(t, w, &drafted)
	require.Len(t, drafted, 1)
	assert.Equal(t, 1, drafted[0].Pick.PickNumber)

	w = ts.do(http.MethodGet, "/api/adp", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", strings.TrimSpace(w.Body.String()))
}

func TestLeagueCRUD(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPost, "/api/leagues", `{"name":"Work","draftUrl":"https://sleeper.com/draft/nfl/555"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var league models.League
	decode(t, w, &league)
	assert.Equal(t, "555", league.DraftID)

	w = ts.do(http.MethodPost, "/api/leagues", `{"name":"Work","draftId":"777"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(http.MethodPost, "/api/leagues", `{"name":"NoDraft"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPut, "/api/leagues/Work", `{"draftId":"777"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodGet, "/api/leagues/Work", "")
	decode(t, w, &league)
	assert.Equal(t, "777", league.DraftID)

	w = ts.do(http.MethodPost, "/api/leagues/Work/use", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "777", ts.session.DraftID())

	w = ts.do(http.MethodGet, "/api/leagues/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	exported := w.Body.String()
	assert.Contains(t, exported, "Work")

	w = ts.do(http.MethodDelete, "/api/leagues/Work", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do(http.MethodGet, "/api/leagues/Work", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodPost, "/api/leagues/import", exported)
	require.Equal(t, http.StatusOK, w.Code)
	var imported map[string]int
	decode(t, w, &imported)
	assert.Equal(t, 1, imported["imported"])

	w = ts.do(http.MethodPost, "/api/leagues/import", "not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeagueWritesRequireLogin(t *testing.T) {
	ts := newTestServer(t, auth.NewMockAuth())

	w := ts.do(http.MethodPost, "/api/leagues", `{"name":"Work","draftId":"555"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(http.MethodGet, "/api/leagues", "")
	assert.Equal(t, http.StatusOK, w.Code, "reads stay open")

	w = ts.do(http.MethodGet, "/auth/login", "")
	require.Equal(t, http.StatusSeeOther, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodPost, "/api/leagues", strings.NewReader(`{"name":"Work","draftId":"555"}`))
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	ts.mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestHealthProbes(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, "ready", body["status"])
}

func TestBoardPage(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No rankings loaded")

	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/rankings", rankingsCSV).Code)
	w = ts.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Bijan Robinson")

	w = ts.do(http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventsSSE(t *testing.T) {
	ts := newTestServer(t, nil)
	srv := httptest.NewServer(ts.mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `"connected"`)

	require.Eventually(t, func() bool { return ts.events.SubscriberCount() == 1 }, time.Second, 10*time.Millisecond)
	ts.events.Publish(pubsub.NewEvent(pubsub.EventDraftRefresh, map[string]interface{}{"newPicks": 1}))

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event:") {
			assert.Equal(t, "event: draft:refresh\n", line)
			break
		}
	}
}

type countingSleeper struct {
	*stubSleeper
	calls atomic.Int32
}

func (c *countingSleeper) FetchPlayers(ctx context.Context) ([]models.RemotePlayer, error) {
	c.calls.Add(1)
	return c.stubSleeper.FetchPlayers(ctx)
}

func TestLoadCatalogForce(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantCalls int32
	}{
		{"cached", "/api/catalog/load", 1},
		{"force", "/api/catalog/load?force=1", 2},
		{"force true", "/api/catalog/load?force=true", 2},
		{"force garbage is ignored", "/api/catalog/load?force=maybe", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &countingSleeper{stubSleeper: &stubSleeper{players: []models.RemotePlayer{
				{ID: "10", Name: "Justin Jefferson", Position: models.PositionWR, Team: "MIN"},
			}}}
			catalog := cache.NewCachedCatalog(src, cache.NewMemoryStore(), time.Hour)
			s := session.New(session.Config{Catalog: catalog})
			mux := http.NewServeMux()
			NewAPIHandlers(s, dal.NewMemoryDAL(), nil).Register(mux, nil)

			for i := 0; i < 2; i++ {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, tt.path, nil))
				require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			}
			assert.Equal(t, tt.wantCalls, src.calls.Load())
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(session.ErrNoRankings))
	assert.Equal(t, http.StatusNotFound, statusFor(dal.ErrLeagueNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(dal.ErrLeagueExists))
	assert.Equal(t, http.StatusBadRequest, statusFor(fmt.Errorf("upload: %w", rankings.ErrMalformed)))
	assert.Equal(t, http.StatusBadRequest, statusFor(rankings.ErrMissingColumn))
	assert.Equal(t, http.StatusRequestEntityTooLarge, statusFor(fmt.Errorf("read header: %w", &http.MaxBytesError{Limit: 1})))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
