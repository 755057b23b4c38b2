package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-retreat-store/internal/cache"
	"go-retreat-store/internal/config"
	"go-retreat-store/internal/handler"
	applog "go-retreat-store/internal/logger"
	"go-retreat-store/internal/middleware"
	"go-retreat-store/internal/model"
	"go-retreat-store/internal/repository"
	"go-retreat-store/internal/service"
	"go-retreat-store/internal/ws"
	"go-retreat-store/pkg/database"
	"go-retreat-store/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := applog.Setup(cfg.Log)

	// 2. Setup Database
	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// 3. Seed teams, sample catalog and admin user
	seed(context.Background(), db, cfg.Seed, log)

	// 4. Setup WebSocket Hub and catalog cache
	wsHub := ws.NewHub(log)
	go wsHub.Run()

	productCache := service.NoopCache()
	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedisProductCacheFromURL(cfg.Redis.URL, cfg.Redis.TTL, log)
		if err != nil {
			log.Warn("redis disabled", "error", err)
		} else {
			if err := redisCache.Ping(context.Background()); err != nil {
				log.Warn("redis unreachable, catalog reads go to the database", "error", err)
			}
			defer redisCache.Close()
			productCache = redisCache
		}
	}

	// 5. Dependency Injection (Wiring Layers)
	tokens := jwt.NewManager(cfg.Jwt.Secret, cfg.Jwt.Expiry)

	userRepo := repository.NewUserRepo(db)
	teamRepo := repository.NewTeamRepo(db)
	productRepo := repository.NewProductRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	codeRepo := repository.NewMoneyCodeRepo(db)
	inventoryRepo := repository.NewInventoryRepo(db)
	donationRepo := repository.NewDonationRepo(db)

	inventoryService := service.NewInventoryService(inventoryRepo)
	authService := service.NewAuthService(userRepo, tokens, log)
	codeService := service.NewMoneyCodeService(db, codeRepo, userRepo, txRepo, wsHub, log)
	purchaseService := service.NewPurchaseService(db, productRepo, userRepo, orderRepo, txRepo, inventoryService, wsHub, productCache, log)
	donationService := service.NewDonationService(db, productRepo, userRepo, teamRepo, donationRepo, txRepo, inventoryService, wsHub, productCache, log)
	productService := service.NewProductService(db, productRepo, orderRepo, inventoryRepo, wsHub, productCache, log)
	rankingService := service.NewRankingService(txRepo, userRepo)
	orderService := service.NewOrderService(orderRepo)
	userService := service.NewUserService(db, userRepo, teamRepo, txRepo, log)
	teamService := service.NewTeamService(db, teamRepo, userRepo, log)
	resetService := service.NewResetService(db, repository.NewResetRepo(), wsHub, productCache, log)

	handlers := handler.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Store:   handler.NewStoreHandler(productService, purchaseService, donationService, orderService, inventoryService),
		Account: handler.NewAccountHandler(codeService, rankingService, orderService, inventoryService, donationService),
		Users:   handler.NewUserHandler(userService),
		Admin:   handler.NewAdminHandler(rankingService, teamService, codeService, productService, orderService, donationService, resetService),
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Retreat Store v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	handler.RegisterRoutes(app, handlers, middleware.RequireAuth(userRepo, tokens), handler.RedeemLimit{
		MaxRequests: cfg.RateLimit.MaxRequests,
		Window:      cfg.RateLimit.Window,
	})
	app.Use("/ws", ws.Upgrade)
	app.Get("/ws", wsHub.Handler())

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
			log.Error("server stopped", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited")
}

// seed creates the default teams, the sample catalog and an admin user if they don't exist
func seed(ctx context.Context, db *gorm.DB, cfg *config.Seed, log *slog.Logger) {
	teamRepo := repository.NewTeamRepo(db)
	productRepo := repository.NewProductRepo(db)
	userRepo := repository.NewUserRepo(db)

	// 1. Seed teams first
	if err := teamRepo.SeedDefaults(ctx); err != nil {
		log.Warn("failed to seed teams", "error", err)
	}

	// 2. Seed products
	if err := productRepo.SeedDefaults(ctx); err != nil {
		log.Warn("failed to seed products", "error", err)
	}

	// 3. Create default admin user
	_, err := userRepo.FindByUsername(ctx, "admin")
	if err == nil {
		return
	}
	if !errors.Is(err, repository.ErrNotFound) {
		log.Warn("failed to look up admin user", "error", err)
		return
	}

	admin := &model.User{Username: "admin", Role: model.RoleAdmin}
	if err := admin.SetPassword(cfg.AdminPassword); err != nil {
		log.Warn("failed to hash admin password", "error", err)
		return
	}
	if err := userRepo.Create(db.WithContext(ctx), admin); err != nil {
		log.Warn("failed to create admin user", "error", err)
		return
	}
	log.Info("admin user created", "username", admin.Username)
}
