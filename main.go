package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Arihant25/Treasure-Trove/handlers"
	"github.com/Arihant25/Treasure-Trove/internal/auth"
	"github.com/Arihant25/Treasure-Trove/internal/cart"
	"github.com/Arihant25/Treasure-Trove/internal/chat"
	"github.com/Arihant25/Treasure-Trove/internal/consul"
	"github.com/Arihant25/Treasure-Trove/internal/items"
	"github.com/Arihant25/Treasure-Trove/internal/orders"
	"github.com/Arihant25/Treasure-Trove/internal/reviews"
	"github.com/Arihant25/Treasure-Trove/internal/stores/kafka"
	"github.com/Arihant25/Treasure-Trove/internal/stores/postgres"
	"github.com/Arihant25/Treasure-Trove/internal/users"
	"github.com/Arihant25/Treasure-Trove/pkg/logkey"

	"github.com/joho/godotenv"
)

const serviceName = "treasure-trove"

func main() {
	if err := startApp(); err != nil {
		slog.Error("service stopped", slog.String(logkey.ERROR, err.Error()))
		os.Exit(1)
	}
}

func startApp() error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on the environment")
	}

	// JWT keys
	privatePEM, err := os.ReadFile(envOr("JWT_PRIVATE_KEY_PATH", "private.pem"))
	if err != nil {
		return err
	}
	publicPEM, err := os.ReadFile(envOr("JWT_PUBLIC_KEY_PATH", "pubkey.pem"))
	if err != nil {
		return err
	}
	keys, err := auth.ParseKeys(privatePEM, publicPEM)
	if err != nil {
		return err
	}

	// Database
	db, err := postgres.OpenDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		return err
	}
	slog.Info("migrations applied")

	// Stores
	usersConf, err := users.NewConf(db)
	if err != nil {
		return err
	}
	itemsConf, err := items.NewConf(db)
	if err != nil {
		return err
	}
	cartConf, err := cart.NewConf(db)
	if err != nil {
		return err
	}
	ordersConf, err := orders.NewConf(db)
	if err != nil {
		return err
	}
	reviewsConf, err := reviews.NewConf(db)
	if err != nil {
		return err
	}

	chatConf, err := chat.NewConf()
	if err != nil {
		return err
	}

	kafkaConf, err := kafka.NewConf()
	if err != nil {
		return err
	}
	defer kafkaConf.Close()

	// Service registration
	port, err := strconv.Atoi(envOr("APP_PORT", "5000"))
	if err != nil {
		return err
	}
	consulClient, err := consul.NewClient()
	if err != nil {
		return err
	}
	registrationId, err := consul.RegisterService(consulClient, serviceName, port)
	if err != nil {
		return err
	}
	defer func() {
		if err := consul.DeregisterService(consulClient, registrationId); err != nil {
			slog.Error("failed to deregister service", slog.String(logkey.ERROR, err.Error()))
		}
	}()

	api := handlers.API(keys, usersConf, itemsConf, cartConf, ordersConf, reviewsConf, chatConf, kafkaConf)

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      api,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("server started", slog.String("Address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return err
	case sig := <-shutdown:
		slog.Info("shutdown started", slog.String("Signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			if er := server.Close(); er != nil {
				return er
			}
			return err
		}
	}

	return nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
