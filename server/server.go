package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Tracklab/config"
	"Tracklab/core/catalog"
	"Tracklab/core/ledger"
	"Tracklab/core/tracker"
	"Tracklab/db"
	"Tracklab/logger"
	"Tracklab/repository"
	"Tracklab/storage"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputPath: cfg.LogOutput,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	store, cleanup, err := openStore(cfg)
	if err != nil {
		logger.Fatal("Failed to open storage backend",
			logger.String("backend", cfg.StorageBackend), logger.ErrorField(err))
	}
	defer cleanup()

	// Redis is optional; without it catalog searches just skip the cache.
	var searchCache *redis.Client
	if err := db.ConnectRedis(cfg); err != nil {
		logger.Warn("Redis unavailable, catalog caching disabled", logger.ErrorField(err))
	} else {
		searchCache = db.RedisClient
		defer db.CloseRedis()
	}

	if err := storage.InitMinio(cfg); err != nil {
		logger.Fatal("Failed to initialize MinIO", logger.ErrorField(err))
	}

	versionLedger := ledger.New(store)
	service := tracker.NewService(store, versionLedger)
	searcher := catalog.NewSearcher(searchCache,
		catalog.NewSpotifyClient(cfg.SpotifyClientID, cfg.SpotifyClientSecret),
		catalog.NewYouTubeClient(cfg.YouTubeAPIKey),
	)
	apiHandler := NewAPIHandler(service, searcher)
	router := newRouter(apiHandler)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting",
			logger.String("addr", cfg.ServerAddr),
			logger.String("backend", cfg.StorageBackend))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", logger.ErrorField(err))
	}
	logger.Info("Server stopped")
}

// newRouter builds the API route table.
func newRouter(apiHandler *APIHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)

	// Albums
	router.HandleFunc("/api/albums", apiHandler.ListAlbumsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/albums", apiHandler.CreateAlbumHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/albums/{id}", apiHandler.GetAlbumHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/albums/{id}", apiHandler.UpdateAlbumHandler).Methods(http.MethodPut)
	router.HandleFunc("/api/albums/{id}", apiHandler.DeleteAlbumHandler).Methods(http.MethodDelete)
	router.HandleFunc("/api/albums/{id}/duplicate", apiHandler.DuplicateAlbumHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/albums/{id}/songs", apiHandler.CreateSongHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/albums/{id}/reorder", apiHandler.ReorderSongsHandler).Methods(http.MethodPut)

	// Songs
	router.HandleFunc("/api/songs/{id}", apiHandler.GetSongHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/songs/{id}", apiHandler.UpdateSongHandler).Methods(http.MethodPut)
	router.HandleFunc("/api/songs/{id}", apiHandler.DeleteSongHandler).Methods(http.MethodDelete)

	// Version history
	router.HandleFunc("/api/songs/{id}/versions", apiHandler.ListVersionsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/songs/{id}/versions/{versionId}/restore", apiHandler.RestoreVersionHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/songs/{id}/versions/{versionId}/user", apiHandler.UpdateVersionUserHandler).Methods(http.MethodPut)

	// Files
	router.HandleFunc("/api/songs/{id}/files", apiHandler.UploadFileHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/songs/{id}/files/{fileId}", apiHandler.DeleteFileHandler).Methods(http.MethodDelete)

	// References
	router.HandleFunc("/api/songs/{id}/references", apiHandler.AddReferenceHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/songs/{id}/references/{referenceId}", apiHandler.DeleteReferenceHandler).Methods(http.MethodDelete)

	// Comments
	router.HandleFunc("/api/songs/{id}/comments", apiHandler.AddCommentHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/songs/{id}/comments/{commentId}", apiHandler.UpdateCommentHandler).Methods(http.MethodPut)
	router.HandleFunc("/api/songs/{id}/comments/{commentId}", apiHandler.DeleteCommentHandler).Methods(http.MethodDelete)

	// Catalog search
	router.HandleFunc("/api/catalog/search", apiHandler.SearchCatalogHandler).Methods(http.MethodGet)

	return router
}

// openStore builds the configured storage backend and returns it together
// with its teardown function.
func openStore(cfg *config.Config) (repository.Store, func(), error) {
	switch cfg.StorageBackend {
	case "jsonfile":
		store, err := repository.NewJSONStore(cfg.DataFile)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Error("Failed to close store", logger.ErrorField(err))
			}
		}, nil
	default:
		if err := db.ConnectDB(cfg); err != nil {
			return nil, nil, err
		}
		if err := repository.Migrate(db.GormDB); err != nil {
			return nil, nil, err
		}
		return repository.NewGormStore(db.GormDB), func() {
			if err := db.CloseDB(); err != nil {
				logger.Error("Failed to close database", logger.ErrorField(err))
			}
		}, nil
	}
}

// corsMiddleware allows the web client to call the API from another origin.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
