// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"card-bank-api/config"
	"card-bank-api/db"
	"card-bank-api/handler"
	"card-bank-api/logger"
	"card-bank-api/repository"
	"card-bank-api/router"
	"card-bank-api/security"
	"card-bank-api/service"
	"card-bank-api/worker"
)

// App is the fully wired application without any running goroutines.
type App struct {
	Router  http.Handler
	Sweeper *worker.ExpirySweeper
}

// Build wires repositories, services and handlers on top of database.
// cache may be nil to run without Redis.
func Build(database *sql.DB, cache service.ICacheClient) (*App, error) {
	cipher, err := security.NewCardCipher(config.AppConfig.Card.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid card encryption key: %w", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository(database)
	cardRepo := repository.NewCardRepository(database)
	transactionRepo := repository.NewTransactionRepository(database)

	// Services
	authService := service.NewAuthService(userRepo, tokenRepo)
	userService := service.NewUserService(userRepo)
	cardService := service.NewCardService(cardRepo, userRepo, cipher, cache)
	transactionService := service.NewTransactionService(database, cardRepo, transactionRepo, cache)

	// Handlers
	r := router.NewRouter(
		handler.NewAuthHandler(authService),
		handler.NewCardHandler(cardService),
		handler.NewTransactionHandler(transactionService),
		handler.NewAdminHandler(cardService, userService),
		handler.NewHealthHandler(database),
	)

	return &App{
		Router:  r,
		Sweeper: worker.NewExpirySweeper(cardService, config.AppConfig.Expiry.Interval),
	}, nil
}

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if config.AppConfig.Database.AutoMigrate {
		if err := db.Migrate(database); err != nil {
			logger.Log.Fatalf("Error applying database migrations: %v", err)
		}
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	var cache service.ICacheClient
	redisClient, err := db.ConnectRedis(rootCtx)
	if err != nil {
		logger.Log.WithError(err).Warn("Redis unavailable, card lists will not be cached")
	} else {
		defer redisClient.Close()
		cache = redisClient
	}

	application, err := Build(database, cache)
	if err != nil {
		logger.Log.Fatalf("Error building application: %v", err)
	}

	var sweeperDone <-chan struct{}
	if config.AppConfig.Expiry.Enabled {
		sweeperDone = application.Sweeper.Start(rootCtx)
	}

	// --- Start the Server with Graceful Shutdown ---
	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	timeout := config.AppConfig.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Errorf("Server forced to shutdown: %v", err)
	}

	stop()
	if sweeperDone != nil {
		<-sweeperDone
	}

	logger.Log.Info("Server exited properly")
}
