package cli

import (
	"context"
	"fmt"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/auth"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/cache"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/clickhouse"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/config"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/dal"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/match"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/mocks"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/pubsub"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/session"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/sleeper"
)

// Event bus modes for --events
const (
	eventsAuto     = "auto"
	eventsEmbedded = "embedded"
	eventsNATS     = "nats"
	eventsMemory   = "memory"
)

func newMatcher(c config.MatchConfig) *match.Matcher {
	return match.New(
		match.WithThreshold(c.Threshold),
		match.WithSearchThreshold(c.SearchThreshold),
		match.WithSurnameFallback(c.SurnameFallback),
	)
}

func newSleeperClient(c config.SleeperConfig) *sleeper.Client {
	return sleeper.NewClient(sleeper.Options{
		BaseURL:   c.BaseURL,
		RateLimit: c.RateLimit,
		Timeout:   c.Timeout,
	})
}

// refreshCatalog is bound to --refresh-catalog on every command that loads the catalog
var refreshCatalog bool

// loadSessionCatalog loads the catalog into s, dropping the cached copy first when
// --refresh-catalog is set
func loadSessionCatalog(ctx context.Context, s *session.Session) (int, error) {
	if refreshCatalog {
		return s.ReloadCatalog(ctx)
	}
	return s.LoadCatalog(ctx)
}

// newCatalog wraps the Sleeper catalog in Redis when REDIS_ADDR is set, in memory otherwise
func newCatalog(ctx context.Context, c config.RedisConfig, source cache.CatalogSource) (*cache.CachedCatalog, func(), error) {
	if c.Addr == "" {
		logger.Info("Using in-memory catalog cache")
		return cache.NewCachedCatalog(source, cache.NewMemoryStore(), c.CatalogTTL), func() {}, nil
	}

	store, err := cache.NewRedisStore(ctx, cache.RedisOptions{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Connected to Redis catalog cache", "addr", c.Addr)
	return cache.NewCachedCatalog(source, store, c.CatalogTTL), func() { _ = store.Close() }, nil
}

// openLeagues opens the league store. Postgres without a URL in development runs on SQLite.
func openLeagues(c *config.Config) (dal.LeagueDAL, error) {
	if c.Database.Driver == "postgres" && c.Database.URL == "" && !c.IsProduction() {
		store, err := mocks.NewMockPostgresDAL(c.Database.SQLiteFile)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := dal.Open(c.Database.Driver, c.Database.DSN())
	if err != nil {
		return nil, err
	}
	logger.Info("League store ready", "driver", c.Database.Driver)
	return store, nil
}

// eventBus is a pubsub.Bus that owns resources
type eventBus interface {
	pubsub.Bus
	Close()
}

// newEventBus picks the event transport. auto uses NATS_URL when set, the embedded
// server in development and fails in production without a URL.
func newEventBus(c *config.Config, mode string) (eventBus, error) {
	if mode == eventsAuto {
		switch {
		case c.NATS.URL != "":
			mode = eventsNATS
		case c.IsProduction():
			return nil, fmt.Errorf("NATS_URL is required in production")
		default:
			mode = eventsEmbedded
		}
	}

	switch mode {
	case eventsNATS:
		bus, err := pubsub.NewNATSPubSub(c.NATS.URL, c.NATS.Subject)
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to NATS", "url", c.NATS.URL, "subject", c.NATS.Subject)
		return bus, nil
	case eventsEmbedded:
		opts := pubsub.DefaultEmbeddedNATSOptions()
		opts.Subject = c.NATS.Subject
		bus, err := pubsub.NewEmbeddedNATSPubSub(opts)
		if err != nil {
			return nil, err
		}
		logger.Info("Embedded NATS server ready", "url", bus.ServerURL())
		return bus, nil
	case eventsMemory:
		return mocks.NewMockNATSPubSub(), nil
	}
	return nil, fmt.Errorf("unknown events mode %q (valid: auto, embedded, nats, memory)", mode)
}

// adpStore is a session.ADPStore that owns a connection
type adpStore interface {
	session.ADPStore
	Close() error
}

// newADPStore uses ClickHouse when CLICKHOUSE_ADDR is set, the in-memory store otherwise
func newADPStore(c config.ClickHouseConfig) (adpStore, error) {
	if c.Addr == "" {
		logger.Info("Using in-memory ADP store")
		return mocks.NewMockADPStore(), nil
	}
	client, err := clickhouse.NewClient(c.Addr, c.Database, c.User, c.Password)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to ClickHouse", "address", c.Addr, "database", c.Database)
	return client, nil
}

// newAuthProvider uses Authentik when configured and the mock login otherwise
func newAuthProvider(c *config.Config) auth.AuthProvider {
	if !c.Authentik.Enabled() {
		logger.Info("Using mock authentication for local development")
		return auth.NewMockAuth()
	}
	redirect := c.Authentik.RedirectURL
	if redirect == "" {
		redirect = "http://localhost:" + c.Port + "/auth/callback"
	}
	logger.Info("Using Authentik authentication", "url", c.Authentik.BaseURL)
	return auth.NewAuthentikAuth(&auth.AuthentikConfig{
		BaseURL:      c.Authentik.BaseURL,
		ClientID:     c.Authentik.ClientID,
		ClientSecret: c.Authentik.ClientSecret,
		RedirectURL:  redirect,
	})
}
