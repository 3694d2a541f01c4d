package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/propscan/propscan/internal/books"
	"github.com/propscan/propscan/internal/books/draftkings"
	"github.com/propscan/propscan/internal/books/fanduel"
	"github.com/propscan/propscan/internal/compare"
	"github.com/propscan/propscan/internal/domain"
	"github.com/propscan/propscan/internal/ingest"
	"github.com/propscan/propscan/internal/server"
	"github.com/propscan/propscan/internal/server/handler"
	"github.com/propscan/propscan/internal/service"
)

// services bundles the mode-independent service layer built on top of the
// wired dependencies.
type services struct {
	registry    *books.Registry
	analysisSvc *service.AnalysisService
	refreshSvc  *service.RefreshService
}

// buildServices constructs the scraper registry, ingestion coordinator, and
// the analysis and refresh services from the wired dependencies.
func (a *App) buildServices(deps *Dependencies) (*services, error) {
	registry := books.NewRegistry()
	if a.cfg.Books.DraftKings.Enabled {
		dk := draftkings.NewClient(draftkings.ClientConfig{
			Site:     a.cfg.Books.DraftKings.Site,
			LeagueID: a.cfg.Books.DraftKings.LeagueID,
			Throttle: a.cfg.Books.DraftKings.Throttle.Duration,
		}, a.logger)
		if err := registry.Register(dk); err != nil {
			return nil, fmt.Errorf("app: register draftkings: %w", err)
		}
	}
	if a.cfg.Books.FanDuel.Enabled {
		fd := fanduel.NewClient(fanduel.ClientConfig{
			APIKey:    a.cfg.Books.FanDuel.APIKey,
			Region:    a.cfg.Books.FanDuel.Region,
			PageID:    a.cfg.Books.FanDuel.PageID,
			DaysAhead: a.cfg.Books.FanDuel.DaysAhead,
			Throttle:  a.cfg.Books.FanDuel.Throttle.Duration,
		}, a.logger)
		if err := registry.Register(fd); err != nil {
			return nil, fmt.Errorf("app: register fanduel: %w", err)
		}
	}

	coordinator := ingest.NewCoordinator(deps.PropStore, a.logger)
	if deps.LockManager != nil {
		coordinator = coordinator.WithLockManager(deps.LockManager, a.cfg.Ingest.LockTTL.Duration)
	}
	if deps.BlobWriter != nil {
		coordinator = coordinator.WithArchiver(ingest.NewArchiver(deps.BlobWriter, a.cfg.S3.Prefix))
	}

	engine := compare.NewEngine(a.logger)
	analysisSvc := service.NewAnalysisService(deps.PropStore, engine, service.Thresholds{
		MinProfitPercent: a.cfg.Compare.MinProfitPercent,
		MinLineDiff:      a.cfg.Compare.MinLineDiff,
		MinOddsDiff:      a.cfg.Compare.MinOddsDiff,
	}, a.logger)
	if deps.AnalysisCache != nil {
		analysisSvc = analysisSvc.WithCache(deps.AnalysisCache, a.cfg.Compare.CacheTTL.Duration)
	}
	if deps.Notifier != nil {
		analysisSvc = analysisSvc.WithNotifier(deps.Notifier)
	}

	refreshSvc := service.NewRefreshService(registry, coordinator, a.logger)
	if deps.AnalysisCache != nil {
		refreshSvc = refreshSvc.WithCache(deps.AnalysisCache)
	}

	return &services{
		registry:    registry,
		analysisSvc: analysisSvc,
		refreshSvc:  refreshSvc,
	}, nil
}

// ServeMode runs the HTTP API only. Refreshes happen on demand through
// POST /api/refresh.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	svcs, err := a.buildServices(deps)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps, svcs)
	return g.Wait()
}

// ScrapeMode runs one scrape-and-replace cycle across every enabled
// sportsbook and exits.
func (a *App) ScrapeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scrape mode")

	svcs, err := a.buildServices(deps)
	if err != nil {
		return err
	}

	results, err := svcs.refreshSvc.RefreshAll(ctx)
	for _, res := range results {
		a.logger.InfoContext(ctx, "book refreshed",
			slog.String("book", res.Book.String()),
			slog.Any("dates", res.Dates),
			slog.Int("inserted", res.Inserted),
			slog.Int("deleted", res.Deleted),
			slog.Int("dropped", res.Dropped),
		)
	}
	if err != nil {
		return fmt.Errorf("scrape mode: %w", err)
	}

	a.analyzeRefreshed(ctx, svcs, results)
	return nil
}

// analyzeRefreshed runs the arbitrage detector over every date a refresh
// touched. The analysis service pushes any finds to the configured alert
// channels.
func (a *App) analyzeRefreshed(ctx context.Context, svcs *services, results []domain.RefreshResult) {
	seen := make(map[string]bool)
	for _, res := range results {
		for _, date := range res.Dates {
			if seen[date] {
				continue
			}
			seen[date] = true

			opps, err := svcs.analysisSvc.Arbitrage(ctx, date)
			if err != nil {
				a.logger.WarnContext(ctx, "post-refresh arbitrage scan failed",
					slog.String("game_date", date),
					slog.String("error", err.Error()),
				)
				continue
			}
			a.logger.InfoContext(ctx, "post-refresh arbitrage scan",
				slog.String("game_date", date),
				slog.Int("opportunities", len(opps)),
			)
		}
	}
}

// AnalyzeMode runs the three detectors over today's stored board, logs the
// summary, and exits. It never scrapes; it analyzes whatever the last refresh
// stored.
func (a *App) AnalyzeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting analyze mode")

	svcs, err := a.buildServices(deps)
	if err != nil {
		return err
	}

	today := time.Now().In(a.location()).Format(domain.GameDateLayout)
	summary, err := svcs.analysisSvc.Summary(ctx, today)
	if err != nil {
		return fmt.Errorf("analyze mode: %w", err)
	}

	a.logger.InfoContext(ctx, "analysis summary",
		slog.String("game_date", summary.GameDate),
		slog.Int("records", summary.TotalRecords),
		slog.Int("players", summary.DistinctPlayers),
		slog.Int("arbitrage", summary.Arbitrage),
		slog.Int("discrepancies", summary.Discrepancies),
		slog.Int("best_odds_edges", summary.BestOddsEdges),
	)
	return nil
}

// FullMode runs the HTTP API plus a periodic scrape loop. Every cycle
// refreshes all enabled books and the detectors pick up the new board on the
// next request.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode",
		slog.Duration("scrape_interval", a.cfg.Books.ScrapeInterval.Duration),
	)

	svcs, err := a.buildServices(deps)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		runOnce := func() {
			results, err := svcs.refreshSvc.RefreshAll(ctx)
			if err != nil {
				a.logger.ErrorContext(ctx, "scheduled refresh failed",
					slog.String("error", err.Error()),
				)
			}
			a.analyzeRefreshed(ctx, svcs, results)
		}

		runOnce()
		ticker := time.NewTicker(a.cfg.Books.ScrapeInterval.Duration)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				runOnce()
			}
		}
	})

	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, svcs)
	}

	return g.Wait()
}

// startHTTPServer adds the API server and its shutdown watcher to the given
// errgroup.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, svcs *services) {
	handlers := server.Handlers{
		Health:   handler.NewHealthHandler(a.logger),
		Props:    handler.NewPropsHandler(svcs.analysisSvc, a.location(), a.logger),
		Analysis: handler.NewAnalysisHandler(svcs.analysisSvc, a.logger),
		Refresh:  handler.NewRefreshHandler(svcs.refreshSvc, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
		RateLimit:   a.cfg.Server.RateLimit,
	}, handlers, deps.RateLimiter, a.logger)

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}

// location returns the calendar that decides which game date counts as
// "today". NBA slates are keyed to US Eastern time.
func (a *App) location() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}
