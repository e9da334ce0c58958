package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	grpcserver "github.com/Billy-Davies-2/fantasy-draft-aid/internal/grpc"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/handlers"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and gRPC servers",
	Long: `Runs the draft board over HTTP (JSON API, SSE and an HTML board) and gRPC.

Backends follow the environment: DB_DRIVER for leagues, REDIS_ADDR for the catalog
cache, CLICKHOUSE_ADDR for ADP and NATS_URL for events. Anything unset falls back
to an in-process implementation in development.

Example:
  draftaid serve
  draftaid serve --rankings rankings.csv --draft-id 1124851234567890 --refresh-interval 15s`,
	RunE: runServe,
}

var (
	serveRankings        string
	serveDraftID         string
	serveEvents          string
	serveLoadCatalog     bool
	serveRefreshInterval time.Duration
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveRankings, "rankings", "", "rankings CSV to load at startup")
	serveCmd.Flags().StringVar(&serveDraftID, "draft-id", "", "Sleeper draft id or URL to follow")
	serveCmd.Flags().StringVar(&serveEvents, "events", eventsAuto, "event bus (auto|embedded|nats|memory)")
	serveCmd.Flags().BoolVar(&serveLoadCatalog, "catalog", true, "load the Sleeper catalog at startup")
	serveCmd.Flags().BoolVar(&refreshCatalog, "refresh-catalog", false, "ignore the cached catalog at startup")
	serveCmd.Flags().DurationVar(&serveRefreshInterval, "refresh-interval", 0, "poll the draft on this interval (0 disables)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting draft aid", "environment", cfg.Env)

	leagues, err := openLeagues(cfg)
	if err != nil {
		return err
	}
	defer leagues.Close()

	events, err := newEventBus(cfg, serveEvents)
	if err != nil {
		return err
	}
	defer events.Close()

	adp, err := newADPStore(cfg.ClickHouse)
	if err != nil {
		return err
	}
	defer adp.Close()

	client := newSleeperClient(cfg.Sleeper)
	catalog, closeCatalog, err := newCatalog(ctx, cfg.Redis, client)
	if err != nil {
		return err
	}
	defer closeCatalog()

	s := session.New(session.Config{
		Matcher: newMatcher(cfg.Match),
		Catalog: catalog,
		Picks:   client,
		Events:  events,
		ADP:     adp,
	})
	if err := preload(ctx, s); err != nil {
		return err
	}

	mux := http.NewServeMux()
	handlers.NewAPIHandlers(s, leagues, events).Register(mux, newAuthProvider(cfg))
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return err
	}
	grpcServer := grpc.NewServer()
	grpcserver.Register(grpcServer, grpcserver.NewServer(s, events))

	errCh := make(chan error, 2)
	go func() {
		logger.Info("gRPC server listening", "port", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()
	go func() {
		logger.Info("HTTP server listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	if serveRefreshInterval > 0 {
		go pollDraft(ctx, s, serveRefreshInterval)
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err = <-errCh:
		logger.Error("Server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := httpServer.Shutdown(shutdownCtx); serr != nil {
		logger.Warn("HTTP shutdown", "error", serr)
	}
	grpcServer.GracefulStop()
	return err
}

// preload applies the startup flags. A catalog failure is logged, not fatal.
func preload(ctx context.Context, s *session.Session) error {
	if serveLoadCatalog {
		if _, err := loadSessionCatalog(ctx, s); err != nil {
			logger.Warn("Catalog not loaded at startup", "error", err)
		}
	}
	if serveRankings != "" {
		f, err := os.Open(serveRankings)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := s.LoadRankingsCSV(f); err != nil {
			return err
		}
	}
	if serveDraftID != "" {
		if _, err := s.SetDraftID(ctx, serveDraftID); err != nil {
			return err
		}
	}
	return nil
}

// pollDraft refreshes the current draft until ctx ends
func pollDraft(ctx context.Context, s *session.Session, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.DraftID() == "" {
				continue
			}
			if _, err := s.Refresh(ctx); err != nil {
				logger.Warn("Scheduled refresh failed", "error", err)
			}
		}
	}
}
