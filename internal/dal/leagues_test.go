package dal

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newClock() *clock {
	return &clock{t: time.Date(2025, 8, 20, 18, 0, 0, 0, time.UTC)}
}

func forEachDAL(t *testing.T, fn func(t *testing.T, d LeagueDAL)) {
	t.Run("memory", func(t *testing.T) {
		m := NewMemoryDAL()
		m.now = newClock().now
		fn(t, m)
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := NewSQLiteDAL(filepath.Join(t.TempDir(), "leagues.sqlite"))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		s.now = newClock().now
		fn(t, s)
	})
}

func TestAddAndGetLeague(t *testing.T) {
	forEachDAL(t, func(t *testing.T, d LeagueDAL) {
		l, err := d.AddLeague("Home League", "https://sleeper.app/draft/nfl/123", "123")
		require.NoError(t, err)
		assert.NotEmpty(t, l.ID)
		assert.Equal(t, l.CreatedAt, l.LastUsed)

		got, err := d.GetLeague("Home League")
		require.NoError(t, err)
		assert.Equal(t, "123", got.DraftID)
		assert.Equal(t, l.ID, got.ID)

		_, err = d.AddLeague("Home League", "", "456")
		assert.True(t, errors.Is(err, ErrLeagueExists))

		_, err = d.GetLeague("Work League")
		assert.True(t, errors.Is(err, ErrLeagueNotFound))

		_, err = d.AddLeague("  ", "", "")
		assert.Error(t, err)
	})
}

func TestUpdateAndDeleteLeague(t *testing.T) {
	forEachDAL(t, func(t *testing.T, d LeagueDAL) {
		orig, err := d.AddLeague("Home League", "", "123")
		require.NoError(t, err)

		updated, err := d.UpdateLeague("Home League", "https://sleeper.app/draft/nfl/999", "999")
		require.NoError(t, err)
		assert.Equal(t, "999", updated.DraftID)
		assert.True(t, updated.LastUsed.After(orig.LastUsed))

		_, err = d.UpdateLeague("Nope", "", "1")
		assert.True(t, errors.Is(err, ErrLeagueNotFound))

		require.NoError(t, d.DeleteLeague("Home League"))
		assert.True(t, errors.Is(d.DeleteLeague("Home League"), ErrLeagueNotFound))
	})
}

func TestListLeaguesMostRecentFirst(t *testing.T) {
	forEachDAL(t, func(t *testing.T, d LeagueDAL) {
		for _, name := range []string{"A", "B", "C"} {
			_, err := d.AddLeague(name, "", name)
			require.NoError(t, err)
		}
		require.NoError(t, d.MarkUsed("A"))
		assert.True(t, errors.Is(d.MarkUsed("Z"), ErrLeagueNotFound))

		leagues, err := d.ListLeagues()
		require.NoError(t, err)
		require.Len(t, leagues, 3)
		assert.Equal(t, "A", leagues[0].Name)
		assert.Equal(t, "C", leagues[1].Name)
		assert.Equal(t, "B", leagues[2].Name)
	})
}

func TestExportImportRoundTrip(t *testing.T) {
	forEachDAL(t, func(t *testing.T, d LeagueDAL) {
		_, err := d.AddLeague("Home League", "https://sleeper.app/draft/nfl/123", "123")
		require.NoError(t, err)

		data, err := d.Export()
		require.NoError(t, err)

		var decoded map[string]map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Contains(t, decoded, "Home League")

		fresh := NewMemoryDAL()
		n, err := fresh.Import(data)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		got, err := fresh.GetLeague("Home League")
		require.NoError(t, err)
		assert.Equal(t, "123", got.DraftID)
	})
}

func TestImportLegacyFormat(t *testing.T) {
	legacy := `{
	  "Dynasty": {"name": "Dynasty", "draft_url": "https://sleeper.app/draft/nfl/42", "draft_id": "42",
	              "created_at": "2024-08-01T10:00:00.123456", "last_used": "2024-08-02T10:00:00"},
	  "Keeper":  {"draft_url": "", "draft_id": "77"}
	}`
	forEachDAL(t, func(t *testing.T, d LeagueDAL) {
		_, err := d.AddLeague("Dynasty", "", "old")
		require.NoError(t, err)

		n, err := d.Import([]byte(legacy))
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		dyn, err := d.GetLeague("Dynasty")
		require.NoError(t, err)
		assert.Equal(t, "42", dyn.DraftID, "import overwrites by name")
		assert.Equal(t, 2024, dyn.LastUsed.Year())

		keeper, err := d.GetLeague("Keeper")
		require.NoError(t, err)
		assert.Equal(t, "77", keeper.DraftID)

		_, err = d.Import([]byte("not json"))
		assert.Error(t, err)
	})
}

func TestOpen(t *testing.T) {
	d, err := Open("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryDAL{}, d)

	d, err = Open("sqlite", filepath.Join(t.TempDir(), "x.sqlite"))
	require.NoError(t, err)
	defer d.Close()
	assert.IsType(t, &SQLiteDAL{}, d)

	_, err = Open("postgres", "")
	assert.Error(t, err)

	_, err = Open("mongo", "")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	s := &sqlStore{dollar: true}
	assert.Equal(t, "UPDATE t SET a = $1 WHERE b = $2", s.rebind("UPDATE t SET a = ? WHERE b = ?"))
	s.dollar = false
	assert.Equal(t, "a = ?", s.rebind("a = ?"))
}
