package internal

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"account-core/internal/config"
	"account-core/internal/managers"
	"account-core/internal/repositories"
	"account-core/internal/routing"
	"account-core/internal/services"
	"account-core/internal/utils"
)

func Init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading configuration: ", err)
	}
	utils.SetLogLevel(cfg.LogLevel)

	ctx := context.Background()

	// Connect to database
	pool := initializeDatabase(ctx, cfg)
	defer pool.Close()

	databaseMgr := managers.NewDatabaseManager(pool)

	if err := repositories.EnsureSchema(ctx, databaseMgr.GetPool()); err != nil {
		log.Fatal("Error creating schema: ", err)
	}
	if err := repositories.SeedAuthorities(ctx, databaseMgr.GetPool()); err != nil {
		log.Fatal("Error seeding authorities: ", err)
	}

	if cfg.VerifyEmailMX {
		if err := utils.EnableEmailVerification(cfg.ContactEmail); err != nil {
			log.Warn("Email verification disabled: ", err)
		}
	}

	mailMgr := managers.NewMailManager(cfg)
	jwtMgr := managers.NewJWTManager([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.TokenTTL)
	credentialMgr := managers.NewCredentialManager(cfg.BcryptCost, cfg.HashWorkers)
	authorizationMgr := managers.NewAuthorizationManager(repositories.NewAuthorityDirectory(databaseMgr.GetPool()))

	accountService := services.NewAccountService(
		repositories.NewAccountDirectory(databaseMgr.GetPool()),
		authorizationMgr,
		credentialMgr,
		jwtMgr,
		mailMgr,
		cfg.BaseWebClientURL,
	)

	r := routing.InitRouter(cfg, databaseMgr, accountService)
	utils.LogMessage("info", "Initialized router")

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		utils.LogMessage("info", "Starting server on port "+cfg.Port+"...")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Error starting server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	utils.LogMessage("info", "Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down server: ", err)
	}

	accountService.WaitForNotifications()
	utils.LogMessage("info", "Server stopped")
}

func initializeDatabase(ctx context.Context, cfg *config.Config) *pgxpool.Pool {
	log.Info("Initializing database")

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		log.Fatal("error configuring database: ", err)
	}

	poolConfig.MinConns = cfg.DBMinConns
	poolConfig.MaxConns = cfg.DBMaxConns
	poolConfig.MaxConnIdleTime = time.Minute * 2
	poolConfig.HealthCheckPeriod = time.Minute * 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("error connecting to database: ", err)
	}
	log.Info("Connected to database")
	return pool
}
