package dal

import (
	"errors"
	"fmt"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/models"
)

var (
	ErrLeagueNotFound = errors.New("league not found")
	ErrLeagueExists   = errors.New("league already exists")
)

// LeagueDAL defines the interface for saved league storage. Leagues are keyed by name.
type LeagueDAL interface {
	// ListLeagues returns leagues most recently used first
	ListLeagues() ([]models.League, error)
	GetLeague(name string) (*models.League, error)
	AddLeague(name, draftURL, draftID string) (*models.League, error)
	UpdateLeague(name, draftURL, draftID string) (*models.League, error)
	DeleteLeague(name string) error
	MarkUsed(name string) error
	// Export returns every league as a name-keyed JSON object
	Export() ([]byte, error)
	// Import upserts leagues from a name-keyed JSON object and returns how many were stored
	Import(data []byte) (int, error)
	Close() error
}

// Open returns the LeagueDAL for driver: "memory", "sqlite" (dsn is a file path) or "postgres" (dsn is a URL)
func Open(driver, dsn string) (LeagueDAL, error) {
	switch driver {
	case "", "memory":
		return NewMemoryDAL(), nil
	case "sqlite":
		if dsn == "" {
			dsn = "dev.sqlite"
		}
		return NewSQLiteDAL(dsn)
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for postgres driver")
		}
		return NewPostgresDAL(dsn)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}
}
