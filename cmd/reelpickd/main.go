package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/time/rate"

	"reelpick/api"
	"reelpick/config"
	"reelpick/handlers"
	"reelpick/models"
	"reelpick/services/enrich"
	"reelpick/services/match"
	"reelpick/services/plex"
	"reelpick/services/sampler"
	"reelpick/services/sessions"
	"reelpick/utils"
)

func main() {
	log.Printf("[main] reelpick starting")

	cfg := config.Load()
	if !cfg.CatalogConfigured() {
		log.Fatalf("[main] PLEX_URL and PLEX_TOKEN are required")
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[main] open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := db.PingContext(ctx); err != nil {
		log.Printf("[main] database unreachable, room features will fail until it recovers err=%v", err)
	}
	store := match.NewStore(db)
	if err := store.Migrate(ctx); err != nil {
		log.Printf("[main] migration failed err=%v", err)
	}
	cancel()

	catalog := plex.NewClient(cfg.PlexURL, cfg.PlexToken)

	// The machine identifier is only needed for watch deeplinks; start
	// without it if the server is down and retry lazily at first use.
	machineID := ""
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	if id, err := catalog.MachineID(ctx); err == nil {
		machineID = id
	} else {
		log.Printf("[main] machine identifier fetch failed err=%v", err)
	}
	cancel()

	providerClient := &http.Client{Timeout: cfg.ProviderTimeout}
	enrichSvc := enrich.NewService(catalog, machineID, enrich.Options{
		Placeholder:   models.Image{URL: cfg.PlaceholderImageURL, ContentType: "image/jpeg"},
		FallbackChain: enrich.DefaultFallbackChain(providerClient),
		CacheDir:      cfg.ImageCacheDir,
		CacheTTLHours: cfg.ImageCacheTTLHours,
		HTTPClient:    providerClient,
	})

	samplerSvc := sampler.New(catalog)
	swipeCache := match.NewSwipeCache(store, cfg.SwipeCacheTTL)

	sessionsSvc, err := sessions.NewService(os.Getenv("SESSIONS_DIR"), cfg.SessionDuration)
	if err != nil {
		log.Fatalf("[main] sessions service: %v", err)
	}

	suggestHandler := handlers.NewSuggestHandler(samplerSvc, catalog, enrichSvc, cfg.PlexLibrary)
	suggestHandler.MaxAttempts = cfg.SuggestMaxAttempts
	librariesHandler := handlers.NewLibrariesHandler(catalog)
	roomsHandler := handlers.NewRoomsHandler(store, swipeCache, samplerSvc, catalog, enrichSvc, sessionsSvc)
	roomsHandler.MaxAttempts = cfg.SamplerMaxAttempts
	imageHandler := handlers.NewImageProxyHandler(catalog, cfg.PlaceholderImageURL)

	router := utils.NewRouter()

	// Join is the entry point before a session exists, so it is rate
	// limited per IP instead of authenticated.
	joinLimiter := api.NewIPRateLimiter(rate.Every(12*time.Second), 5)

	router.HandleFunc("/api/suggest", suggestHandler.Suggest).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/libraries", librariesHandler.List).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/image", imageHandler.Serve).Methods(http.MethodGet, http.MethodOptions)

	router.HandleFunc("/api/rooms", api.RateLimitHandlerFunc(joinLimiter, roomsHandler.Create)).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/rooms", roomsHandler.List).Methods(http.MethodGet)
	router.HandleFunc("/api/rooms/{roomID}", roomsHandler.Get).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/rooms/{roomID}/join", api.RateLimitHandlerFunc(joinLimiter, roomsHandler.Join)).Methods(http.MethodPost, http.MethodOptions)

	authed := router.PathPrefix("/api/rooms/{roomID}").Subrouter()
	authed.Use(api.SessionAuthMiddleware(sessionsSvc))
	authed.HandleFunc("/next", roomsHandler.Next).Methods(http.MethodGet, http.MethodOptions)
	authed.HandleFunc("/swipe", roomsHandler.Swipe).Methods(http.MethodPost, http.MethodOptions)
	authed.HandleFunc("/matches", roomsHandler.Matches).Methods(http.MethodGet, http.MethodOptions)

	httpServer := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on :%d", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("[main] shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
}
