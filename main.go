// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"go-storefront/chat"
	"go-storefront/config"
	"go-storefront/controllers"
	"go-storefront/middleware"
	"go-storefront/orderview"
	"go-storefront/repository"
	"go-storefront/routes"
	"go-storefront/utils"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	logger, err := utils.NewLogger(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	// Set the JWT secret key
	utils.JwtKey = []byte(cfg.JWTSecret)

	ctx := context.Background()

	// Connect to MongoDB
	client, err := utils.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error("Failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	store := repository.NewMongo(client, cfg.MongoDatabase)
	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create indexes", zap.Error(err))
	}

	// Chat history is optional
	var sessions repository.ChatSessions
	rdb, err := utils.ConnectRedis(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to connect to Redis, chat runs without history", zap.Error(err))
	} else {
		defer rdb.Close()
		sessions = repository.NewRedisChatSessions(rdb, cfg.AI.SessionTTL, cfg.AI.MaxTurns)
	}

	// Initialize EmailService
	emailService, err := utils.NewEmailService(cfg.Email, logger)
	if err != nil {
		logger.Fatal("Failed to configure email", zap.Error(err))
	}

	assistant := chat.NewAssistant(chat.NewOpenAIResponder(cfg.AI.APIKey, cfg.AI.Model), logger)
	logger.Info("Chat assistant ready", zap.String("provider", assistant.Provider()))

	// Initialize controllers
	common := controllers.NewCommon(logger, cfg.RequestTimeout)
	handlers := routes.Controllers{
		Users:    controllers.NewUserController(common, store.Users, emailService),
		Products: controllers.NewProductController(common, store.Products, store.Users),
		Carts:    controllers.NewCartController(common, store.Carts, store.Products),
		Orders: controllers.NewOrderController(common, controllers.OrderStores{
			Orders:         store.Orders,
			Carts:          store.Carts,
			Products:       store.Products,
			Addresses:      store.Addresses,
			PaymentMethods: store.PaymentMethods,
		}, emailService, orderview.ParseNumberFormat(cfg.OrderNumberFormat)),
		Addresses:      controllers.NewAddressController(common, store.Addresses),
		PaymentMethods: controllers.NewPaymentController(common, store.PaymentMethods),
		Wishlists:      controllers.NewWishlistController(common, store.Wishlists, store.Products),
		Chat:           controllers.NewChatController(common, sessions, assistant),
		Health:         controllers.NewHealthController(common, store),
	}

	// Set up the router
	router := mux.NewRouter()
	router.Use(middleware.Recover(logger))
	router.Use(middleware.Logger(logger))
	routes.RegisterRoutes(router, handlers)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()
	logger.Info("Server is running", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-srvErr:
		logger.Error("Server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
	logger.Info("Server stopped")
}
