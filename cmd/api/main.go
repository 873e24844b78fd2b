package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/passbi/transport_catalogue/internal/api"
	"github.com/passbi/transport_catalogue/internal/cache"
	"github.com/passbi/transport_catalogue/internal/catalogue"
	"github.com/passbi/transport_catalogue/internal/config"
	"github.com/passbi/transport_catalogue/internal/db"
	"github.com/passbi/transport_catalogue/internal/handler"
	"github.com/passbi/transport_catalogue/internal/logging"
	"github.com/passbi/transport_catalogue/internal/middleware"
	"github.com/passbi/transport_catalogue/internal/reader"
	"github.com/passbi/transport_catalogue/internal/store"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yml")
	flag.Parse()

	logging.Init()
	log.Println("Starting Transport Catalogue API server...")

	var paths []string
	if *configPath != "" {
		paths = append(paths, *configPath)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var catalogueOpts []catalogue.Option
	if cfg.Network.RejectDuplicates {
		catalogueOpts = append(catalogueOpts, catalogue.WithDuplicatePolicy(catalogue.RejectDuplicates))
	}

	var serverOpts []api.Option
	var h *handler.Handler
	var fingerprint string

	switch cfg.Network.Source {
	case config.SourcePostgres:
		pool, err := db.GetDB()
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Println("✓ Database connection established")

		cat := catalogue.New(catalogueOpts...)
		if _, err := store.LoadCatalogue(context.Background(), pool, cat); err != nil {
			log.Fatalf("Failed to load network: %v", err)
		}
		h, err = handler.New(cat, handler.WithRouting(cfg.Routing))
		if err != nil {
			log.Fatalf("Failed to prepare queries: %v", err)
		}
		// each load gets its own cache namespace
		fingerprint = cache.Fingerprint([]byte(fmt.Sprintf("postgres:%d", time.Now().UnixNano())))
		serverOpts = append(serverOpts, api.WithHealthCheck("database", db.HealthCheck))

	default:
		data, err := os.ReadFile(cfg.Network.DocumentPath)
		if err != nil {
			log.Fatalf("Failed to read network document: %v", err)
		}
		doc, err := reader.Decode(bytes.NewReader(data))
		if err != nil {
			log.Fatalf("Failed to decode network document: %v", err)
		}
		// the service routing config wins over the document's
		doc.RoutingSettings = &cfg.Routing
		h, err = reader.Build(doc, catalogueOpts)
		if err != nil {
			log.Fatalf("Failed to load network: %v", err)
		}
		fingerprint = cache.Fingerprint(data)
	}
	log.Printf("✓ Network loaded (%d stops, %d buses)", h.Catalogue().StopCount(), h.Catalogue().BusCount())
	if router := h.Router(); router != nil {
		settings := router.Settings()
		log.Printf("✓ Routing graph ready (wait %d min, velocity %.1f km/h)", settings.BusWaitTime, settings.BusVelocity)
	}

	appConfig := api.AppConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		AccessLog:    true,
	}
	if cfg.Auth.Enabled {
		appConfig.Auth = middleware.AuthMiddleware(cfg.Auth.KeyHashes)
		log.Printf("✓ API key auth enabled (%d keys)", len(cfg.Auth.KeyHashes))
	}

	if cfg.Cache.Enabled || cfg.RateLimit.Enabled {
		rdb, err := cache.GetClient()
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer cache.Close()
		log.Println("✓ Redis connection established")
		serverOpts = append(serverOpts,
			api.WithHealthCheck("redis", cache.HealthCheck),
			api.WithHealthDetail("redis", cache.Stats),
		)

		if cfg.Cache.Enabled {
			redisConfig := cache.LoadConfigFromEnv()
			serverOpts = append(serverOpts, api.WithCache(cache.NewStore(rdb, fingerprint, cfg.Cache.TTL, redisConfig.MutexTTL)))
		}
		if cfg.RateLimit.Enabled {
			appConfig.RateLimiter = middleware.RateLimitMiddleware(rdb, middleware.RateLimitConfig{
				PerSecond: cfg.RateLimit.RequestsPerSecond,
				PerDay:    cfg.RateLimit.RequestsPerDay,
				KeyFunc:   middleware.ClientKey,
			})
		}
	}

	app := api.NewApp(api.NewServer(h, serverOpts...), appConfig)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("🚀 Server listening on http://localhost%s", addr)
	log.Printf("📍 Route: http://localhost%s/v1/route?from=STOP&to=STOP", addr)
	log.Printf("❤️  Health check: http://localhost%s/health", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
