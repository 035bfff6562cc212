package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop-crud/internal/client"
	"shop-crud/internal/logger"
	"shop-crud/internal/version"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// clientConfig is read from the environment like the server's, under its own names.
type clientConfig struct {
	Target    string `envconfig:"SHOP_API_URL" default:"http://localhost:3000"`
	TimeoutMs int64  `envconfig:"SHOP_API_TIMEOUT_MS" default:"3000"`
}

func main() {
	log := logger.Instance()

	_ = godotenv.Load()
	var cfg clientConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Error("Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("shop-crud smoke client",
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("target", cfg.Target),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shop := client.NewShopClient(client.NewHTTPClient(cfg.Target, time.Duration(cfg.TimeoutMs)*time.Millisecond))
	if err := run(ctx, shop); err != nil {
		log.Error("Smoke run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("Smoke run passed")
}

// run walks one product through its whole lifecycle and checks each answer.
func run(ctx context.Context, shop *client.ShopClient) error {
	name := fmt.Sprintf("smoke-%d", time.Now().UnixNano())

	created, err := shop.CreateProduct(ctx, map[string]any{"name": name, "price": 10, "stock": 1, "description": "smoke test lamp"})
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	id := created.ID.Hex()
	logger.Info(ctx, "Created product", slog.String("id", id))

	found, err := shop.ListProducts(ctx, url.Values{"pricegte": {"10"}, "pricelte": {"10"}, "keywords": {name}})
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	if len(found) != 1 || found[0].ID != created.ID {
		return fmt.Errorf("list: expected only %s, got %d products", id, len(found))
	}

	if _, err := shop.UpdateProduct(ctx, id, map[string]any{"price": -1}); !isStatus(err, http.StatusBadRequest) {
		return fmt.Errorf("invalid update: expected 400, got %v", err)
	}

	updated, err := shop.UpdateProduct(ctx, id, map[string]any{"stock": 5})
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if updated.Stock != 5 || *updated.Price != 10 {
		return fmt.Errorf("update: unexpected record stock=%d price=%v", updated.Stock, *updated.Price)
	}

	if err := shop.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if err := shop.DeleteProduct(ctx, id); !isStatus(err, http.StatusNotFound) {
		return fmt.Errorf("second delete: expected 404, got %v", err)
	}
	if _, err := shop.GetProduct(ctx, "not-an-id"); !isStatus(err, http.StatusNotFound) {
		return fmt.Errorf("malformed id: expected 404, got %v", err)
	}
	return nil
}

func isStatus(err error, status int) bool {
	var apiErr *client.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
