package dal

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/models"
)

// sqlStore holds the league queries shared by the SQLite and Postgres DALs.
// Queries are written with ? placeholders and rebound for drivers that need $N.
type sqlStore struct {
	db     *sql.DB
	dollar bool
	now    func() time.Time
}

const leagueSchema = `
	CREATE TABLE IF NOT EXISTS leagues (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		draft_url TEXT NOT NULL DEFAULT '',
		draft_id TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL,
		last_used BIGINT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_leagues_last_used ON leagues (last_used DESC);
`

const leagueColumns = `id, name, draft_url, draft_id, created_at, last_used`

func (s *sqlStore) rebind(query string) string {
	if !s.dollar {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) initSchema() error {
	if _, err := s.db.Exec(leagueSchema); err != nil {
		return fmt.Errorf("failed to create leagues schema: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLeague(row rowScanner) (models.League, error) {
	var l models.League
	var created, lastUsed int64
	if err := row.Scan(&l.ID, &l.Name, &l.DraftURL, &l.DraftID, &created, &lastUsed); err != nil {
		return models.League{}, err
	}
	l.CreatedAt = time.UnixMilli(created).UTC()
	l.LastUsed = time.UnixMilli(lastUsed).UTC()
	return l, nil
}

func (s *sqlStore) ListLeagues() ([]models.League, error) {
	rows, err := s.db.Query(`SELECT ` + leagueColumns + ` FROM leagues ORDER BY last_used DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	defer rows.Close()

	var leagues []models.League
	for rows.Next() {
		l, err := scanLeague(rows)
		if err != nil {
			return nil, fmt.Errorf("scan league: %w", err)
		}
		leagues = append(leagues, l)
	}
	return leagues, rows.Err()
}

func (s *sqlStore) GetLeague(name string) (*models.League, error) {
	row := s.db.QueryRow(s.rebind(`SELECT `+leagueColumns+` FROM leagues WHERE name = ?`), strings.TrimSpace(name))
	l, err := scanLeague(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLeagueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	}
	return &l, nil
}

func (s *sqlStore) AddLeague(name, draftURL, draftID string) (*models.League, error) {
	l, err := newLeague(name, draftURL, draftID, s.now())
	if err != nil {
		return nil, err
	}

	res, err := s.db.Exec(s.rebind(`
		INSERT INTO leagues (`+leagueColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO NOTHING`),
		l.ID, l.Name, l.DraftURL, l.DraftID, l.CreatedAt.UnixMilli(), l.LastUsed.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("add league: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrLeagueExists
	}
	return &l, nil
}

func (s *sqlStore) UpdateLeague(name, draftURL, draftID string) (*models.League, error) {
	res, err := s.db.Exec(s.rebind(`UPDATE leagues SET draft_url = ?, draft_id = ?, last_used = ? WHERE name = ?`),
		strings.TrimSpace(draftURL), strings.TrimSpace(draftID), s.now().UnixMilli(), strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("update league: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrLeagueNotFound
	}
	return s.GetLeague(name)
}

func (s *sqlStore) DeleteLeague(name string) error {
	res, err := s.db.Exec(s.rebind(`DELETE FROM leagues WHERE name = ?`), strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("delete league: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrLeagueNotFound
	}
	return nil
}

func (s *sqlStore) MarkUsed(name string) error {
	res, err := s.db.Exec(s.rebind(`UPDATE leagues SET last_used = ? WHERE name = ?`), s.now().UnixMilli(), strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("mark league used: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrLeagueNotFound
	}
	return nil
}

func (s *sqlStore) Export() ([]byte, error) {
	leagues, err := s.ListLeagues()
	if err != nil {
		return nil, err
	}
	return exportLeagues(leagues)
}

func (s *sqlStore) Import(data []byte) (int, error) {
	leagues, err := parseImport(data, s.now())
	if err != nil {
		return 0, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(s.rebind(`
		INSERT INTO leagues (` + leagueColumns + `) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			draft_url = excluded.draft_url,
			draft_id = excluded.draft_id,
			created_at = excluded.created_at,
			last_used = excluded.last_used`))
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	for _, l := range leagues {
		if _, err := stmt.Exec(l.ID, l.Name, l.DraftURL, l.DraftID, l.CreatedAt.UnixMilli(), l.LastUsed.UnixMilli()); err != nil {
			return 0, fmt.Errorf("import league %q: %w", l.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(leagues), nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
