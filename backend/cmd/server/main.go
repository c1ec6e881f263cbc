package main

import (
	"context"
	"flag"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/user/brokerage/backend/internal/auth"
	"github.com/user/brokerage/backend/internal/config"
	"github.com/user/brokerage/backend/internal/database"
	"github.com/user/brokerage/backend/internal/handlers"
	"github.com/user/brokerage/backend/internal/middleware"
	"github.com/user/brokerage/backend/internal/service"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().Msg("connected to database")

	store := database.NewPostgresStore(pool)
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	accounts := service.NewAccountService(store, log)
	holdings := service.NewHoldingService(store, log)
	orders := service.NewOrderService(store, log)

	authHandler := handlers.NewAuthHandler(accounts, issuer, log)
	customerHandler := handlers.NewCustomerHandler(accounts, log)
	holdingHandler := handlers.NewHoldingHandler(holdings, log)
	orderHandler := handlers.NewOrderHandler(orders, log)

	app := fiber.New()

	api := app.Group("/api")

	// Health check (Public)
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("Brokerage API is healthy!")
	})

	// Auth routes (Public)
	authGroup := api.Group("/auth")
	authGroup.Post("/signup/customer", authHandler.SignupCustomer)
	authGroup.Post("/signup/admin", authHandler.SignupAdmin)
	authGroup.Post("/login", authHandler.Login)

	// Everything below requires a valid token.
	api.Use(middleware.Protected(issuer))

	customersGroup := api.Group("/customers")
	customersGroup.Get("/:id", customerHandler.GetCustomer)
	customersGroup.Post("/:id/deposit", customerHandler.Deposit)
	customersGroup.Post("/:id/withdraw", customerHandler.Withdraw)
	customersGroup.Get("/:id/holdings", holdingHandler.ListHoldings)
	customersGroup.Post("/:id/holdings", holdingHandler.SeedHolding) // admin seeding
	customersGroup.Get("/:id/orders", orderHandler.ListOrders)

	ordersGroup := api.Group("/orders")
	ordersGroup.Post("/", orderHandler.CreateOrder)
	ordersGroup.Post("/:id/match", orderHandler.MatchOrder)
	ordersGroup.Delete("/:id", orderHandler.CancelOrder)

	log.Info().Str("addr", cfg.ListenAddr).Msg("starting server")
	if err := app.Listen(cfg.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
