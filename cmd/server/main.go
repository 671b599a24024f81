package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"order-batch-service/internal/adapters/cache"
	"order-batch-service/internal/adapters/pos"
	"order-batch-service/internal/adapters/repositories"
	"order-batch-service/internal/api"
	"order-batch-service/internal/config"
	"order-batch-service/internal/platform/db"
	"order-batch-service/internal/ports"
	"order-batch-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQLite or Postgres, POS, Redis) behind ports
// and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")

	posToken := os.Getenv("POS_ACCESS_TOKEN")
	if strings.TrimSpace(posToken) == "" {
		log.Fatal("POS_ACCESS_TOKEN is required")
	}

	store, closeDB, err := openStore()
	if err != nil {
		log.Fatal(err)
	}
	defer closeDB()

	// Short-lived Redis availability cache keeps repeated stock lookups
	// off the POS rate limit. Optional for local runs.
	var availabilityCache ports.AvailabilityCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		availabilityCache = cache.NewRedisAvailabilityCache(client)
		log.Printf("Availability cache enabled addr=%s", addr)
	}

	depotID, err := strconv.ParseInt(config.Get("POS_DEPOT_ID", "0"), 10, 64)
	if err != nil {
		log.Fatalf("POS_DEPOT_ID must be an integer: %v", err)
	}
	posClient, err := pos.NewClient(pos.Config{
		BaseURL:     config.Get("POS_BASE_URL", "https://pos.pages.fm/api/v1"),
		AppID:       os.Getenv("POS_APP_ID"),
		BusinessID:  os.Getenv("POS_BUSINESS_ID"),
		AccessToken: posToken,
		DepotID:     depotID,
		Cache:       availabilityCache,
	})
	if err != nil {
		log.Fatal(err)
	}

	generator := services.NewGenerator(store, posClient)
	planner := services.NewAdjustmentPlanner(store, posClient)
	dispatcher := services.NewDispatcher(store, posClient)

	router := api.NewRouter(store, generator, planner, dispatcher)

	// Write timeout covers a full generation run (synthesis plus chunked
	// persistence) on large snapshots.
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// openStore picks Postgres when DATABASE_URL is set, otherwise a local
// SQLite file whose schema is initialized on startup.
func openStore() (ports.OrderStore, func(), error) {
	if databaseURL := os.Getenv("DATABASE_URL"); strings.TrimSpace(databaseURL) != "" {
		pg, err := db.Open(databaseURL)
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewSQLOrderStore(pg), func() { pg.Close() }, nil
	}

	dbPath := config.Get("DB_PATH", "data/orders.db")
	lite, err := openSqlite(dbPath)
	if err != nil {
		return nil, nil, err
	}
	if err := repositories.InitSchema(lite); err != nil {
		lite.Close()
		return nil, nil, err
	}
	return repositories.NewSqliteOrderStore(lite), func() { lite.Close() }, nil
}

func openSqlite(dbPath string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return conn, nil
}
