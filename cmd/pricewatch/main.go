package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/priceduck/pricewatch/internal/api"
	"github.com/priceduck/pricewatch/internal/browser"
	"github.com/priceduck/pricewatch/internal/capture"
	"github.com/priceduck/pricewatch/internal/catalog"
	"github.com/priceduck/pricewatch/internal/config"
	"github.com/priceduck/pricewatch/internal/database"
	"github.com/priceduck/pricewatch/internal/events"
	"github.com/priceduck/pricewatch/internal/fetcher"
	"github.com/priceduck/pricewatch/internal/models"
	"github.com/priceduck/pricewatch/internal/orchestrator"
	"github.com/priceduck/pricewatch/internal/proxy"
	"github.com/priceduck/pricewatch/internal/ratelimit"
	"github.com/priceduck/pricewatch/internal/region"
	"github.com/priceduck/pricewatch/internal/sink"
	"github.com/priceduck/pricewatch/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		productID    = flag.String("product", "", "restrict the run to one product id")
		regionValue  = flag.String("region", "", "restrict the run to one region (code or alias)")
		noProxy      = flag.Bool("no-proxy", false, "fetch directly even when a proxy is configured")
		debugCapture = flag.Bool("debug-capture", false, "persist fetched documents for inspection")
		concurrency  = flag.Int("concurrency", 0, "worker count, overrides SCRAPER_CONCURRENCY")
		serve        = flag.Bool("serve", false, "expose run status over HTTP while scraping")
		catalogPath  = flag.String("catalog", "", "catalog file path, overrides CATALOG_PATH")
	)
	flag.Parse()

	// Missing .env is fine; the environment may be set by the supervisor.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	if *concurrency > 0 {
		cfg.Scraper.Concurrency = *concurrency
	}
	if *catalogPath != "" {
		cfg.Catalog.Source = "file"
		cfg.Catalog.Path = *catalogPath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		return 1
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *database.DB
	if cfg.Database.Host != "" {
		db, err = database.New(ctx, database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			return 1
		}
		defer db.Close()
	}

	cat, err := buildCatalog(cfg, db)
	if err != nil {
		log.Error("failed to open catalog", "error", err)
		return 1
	}

	products, err := cat.Products(ctx)
	if err != nil {
		log.Error("failed to load products", "error", err)
		return 1
	}

	regionCode, err := resolveRegion(ctx, cat, *regionValue)
	if err != nil {
		log.Error("failed to resolve region", "region", *regionValue, "error", err)
		return 1
	}

	sinks := []sink.Sink{sink.NewLogSink(log)}
	if db != nil {
		sinks = append(sinks, sink.NewPostgresSink(db))
	}
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		publisher := events.NewPublisher(client, cfg.Redis.Stream, log)
		defer publisher.Close()
		sinks = append(sinks, publisher)
	}

	pageFetcher, closeBrowser, err := buildFetcher(cfg, products, log)
	if err != nil {
		log.Error("failed to build fetcher", "error", err)
		return 1
	}
	defer closeBrowser()

	limiter := ratelimit.NewIntervalLimiter(cfg.Scraper.AttemptDelayMin, cfg.Scraper.AttemptDelayMax)

	orch := orchestrator.New(pageFetcher, sink.NewMulti(sinks...), limiter, log, orchestrator.Options{
		Concurrency:      cfg.Scraper.Concurrency,
		ProductID:        *productID,
		RegionCode:       regionCode,
		ChallengeTimeout: cfg.Scraper.ChallengeTimeout,
		RenderTimeout:    cfg.Scraper.RenderTimeout,
	})

	if cfg.Proxy.Server != "" && !*noProxy {
		pool, err := proxy.NewPool(proxy.Config{
			Server:   cfg.Proxy.Server,
			Username: cfg.Proxy.Username,
			Password: cfg.Proxy.Password,
		})
		if err != nil {
			log.Error("failed to build proxy pool", "error", err)
			return 1
		}
		orch.WithProxyPool(pool)
	}

	if *debugCapture {
		store, err := capture.NewStore(cfg.Scraper.CaptureDir)
		if err != nil {
			log.Error("failed to open capture store", "error", err)
			return 1
		}
		orch.WithCaptureStore(store)
	}

	if *serve {
		srv := api.NewServer(cfg.Server.Port, orch.Summary(), log)
		go func() {
			if err := srv.Start(); err != nil {
				log.Error("status server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("status server shutdown failed", "error", err)
			}
		}()
	}

	snap, err := orch.Run(ctx, products)
	if err != nil {
		log.Error("run ended with error", "error", err)
	}

	if snap.Succeeded == 0 {
		log.Error("no attempt succeeded", "attempts", snap.Attempts)
		return 1
	}
	return 0
}

func buildCatalog(cfg *config.Config, db *database.DB) (catalog.Catalog, error) {
	if cfg.Catalog.Source == "postgres" {
		if db == nil {
			return nil, fmt.Errorf("postgres catalog requires a database connection")
		}
		return catalog.NewPostgresCatalog(db), nil
	}
	return catalog.NewFileCatalog(cfg.Catalog.Path)
}

// resolveRegion maps the -region flag through the catalog's alias table so
// operators can pass vendor strings like "uk" or "sa_en".
func resolveRegion(ctx context.Context, cat catalog.Catalog, value string) (string, error) {
	if value == "" {
		return "", nil
	}
	regions, err := cat.Regions(ctx)
	if err != nil {
		return "", err
	}
	if len(regions) == 0 {
		return strings.ToUpper(value), nil
	}
	code, ok := region.NewAliasResolver(regions).Resolve(value)
	if !ok {
		return "", fmt.Errorf("unknown region %q", value)
	}
	return code, nil
}

// buildFetcher launches the browser only when some scheduled product needs
// the scripted path. Static-only runs stay browser-free.
func buildFetcher(cfg *config.Config, products []models.ProductSpec, log *slog.Logger) (fetcher.Fetcher, func(), error) {
	userAgent := cfg.Browser.UserAgent
	if userAgent == "" {
		userAgent = browser.DefaultOptions().UserAgent
	}
	static := fetcher.NewStaticFetcher(userAgent, log)

	if !needsBrowser(products) {
		return fetcher.NewPageFetcher(static, static), func() {}, nil
	}

	opts := browser.DefaultOptions()
	opts.Headless = cfg.Browser.Headless
	opts.Timeout = cfg.Browser.Timeout
	opts.ViewportWidth = cfg.Browser.ViewportWidth
	opts.ViewportHeight = cfg.Browser.ViewportHeight
	opts.Locale = cfg.Browser.Locale
	opts.TimezoneID = cfg.Browser.TimezoneID
	if cfg.Browser.UserAgent != "" {
		opts.UserAgent = cfg.Browser.UserAgent
	}

	b, err := browser.New(opts, log)
	if err != nil {
		return nil, func() {}, err
	}

	scripted := fetcher.NewScriptedFetcher(b, browser.NewChallengeResolver(log), region.NewNavigator(log), log)
	closeBrowser := func() {
		if err := b.Close(); err != nil {
			log.Warn("failed to close browser", "error", err)
		}
	}
	return fetcher.NewPageFetcher(static, scripted), closeBrowser, nil
}

func needsBrowser(products []models.ProductSpec) bool {
	for _, p := range products {
		if p.RenderingMode == models.RenderingScripted {
			return true
		}
		rc := p.RegionConfig
		if rc.HasRegions() && (rc.SwitchType == models.SwitchDropdown || rc.SwitchType == models.SwitchButton) {
			return true
		}
	}
	return false
}
