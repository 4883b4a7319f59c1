package main

import (
	"context"
	"log"

	"focusgarden/backend/internal/alarm"
	"focusgarden/backend/internal/config"
	"focusgarden/backend/internal/db"
	"focusgarden/backend/internal/handler"
	"focusgarden/backend/internal/notify"
	"focusgarden/backend/internal/repository"
	"focusgarden/backend/internal/router"
	"focusgarden/backend/internal/service"
)

func main() {
	cfg := config.Load()

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(database)
	kvRepo := repository.NewKVRepository(database)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	dataService := service.NewDataService(kvRepo)

	var sessionService *service.SessionService
	sched := alarm.NewScheduler(func(name string) { sessionService.HandleAlarm(name) })
	defer sched.Stop()
	sessionService = service.NewSessionService(kvRepo, sched, notify.LogNotifier{}, notify.LogPlayer{})

	ctx := context.Background()
	if err := dataService.Bootstrap(ctx); err != nil {
		log.Fatalf("bootstrap storage: %v", err)
	}
	// Load failure here is terminal: booting with fabricated empty state
	// would look like the user's session and history were deleted.
	if err := sessionService.Recover(ctx); err != nil {
		log.Fatalf("recover session state: %v", err)
	}

	authHandler := handler.NewAuthHandler(authService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	dataHandler := handler.NewDataHandler(dataService)

	engine := router.New(authService, authHandler, sessionHandler, dataHandler, cfg.CORSOrigins)
	log.Printf("backend listening on :%s", cfg.Port)
	if err := engine.Run(":" + cfg.Port); err != nil {
		log.Fatalf("run server: %v", err)
	}
}
