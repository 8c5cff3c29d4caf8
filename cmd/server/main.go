package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/coworking-desk-booking/internal/config"
	"github.com/iliyamo/coworking-desk-booking/internal/database"
	"github.com/iliyamo/coworking-desk-booking/internal/engine"
	"github.com/iliyamo/coworking-desk-booking/internal/handler"
	"github.com/iliyamo/coworking-desk-booking/internal/queue"
	"github.com/iliyamo/coworking-desk-booking/internal/repository"
	"github.com/iliyamo/coworking-desk-booking/internal/router"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the public rate limiter and response cache.  A nil
	// client disables both middlewares rather than failing startup.
	rdb := config.NewRedisClient()

	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	deskRepo := repository.NewDeskRepo(db)
	catalogRepo := repository.NewCatalogRepo(db)
	sessionRepo := repository.NewSessionRepo(db)

	eng := engine.New(db, deskRepo, catalogRepo, sessionRepo,
		engine.NewClassifier(cfg.HourSKU, cfg.CoffeeSKU))

	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	ownerHandler := handler.NewOwnerHandler(cfg, deskRepo, catalogRepo)
	sessionHandler := handler.NewSessionHandler(eng, sessionRepo,
		engine.NewClassifier(cfg.HourSKU, cfg.CoffeeSKU))
	checkinHandler := handler.NewCheckinHandler(eng, deskRepo, sessionRepo)
	receiptHandler := handler.NewReceiptHandler(sessionRepo)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterOwner(e, ownerHandler, cfg.JWTSecret)
	router.RegisterSessions(e, sessionHandler, cfg.JWTSecret)
	router.RegisterPublic(e, checkinHandler, receiptHandler, rdb)

	// The SMS notification consumer reconnects on its own; a missing
	// broker only disables notifications.
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
