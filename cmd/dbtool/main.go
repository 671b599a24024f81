package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"

	"order-batch-service/internal/adapters/pos"
	"order-batch-service/internal/adapters/repositories"
	"order-batch-service/internal/config"
	"order-batch-service/internal/platform/db"
	"order-batch-service/internal/ports"
	"order-batch-service/internal/services"
)

// dbtool initializes the Postgres schema and optionally generates a
// batch from local roster and inventory JSON files:
//
//	dbtool init
//	dbtool generate <start> <end>   (dates as YYYY-MM-DD)
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	if len(os.Args) < 2 {
		log.Fatal("usage: dbtool init | dbtool generate <start> <end>")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	switch os.Args[1] {
	case "init":
		log.Println("Initializing database schema...")
		if err := repositories.InitSchemaPostgres(conn); err != nil {
			log.Fatalf("schema initialization failed: %v", err)
		}
		log.Println("Schema ready.")

	case "generate":
		if len(os.Args) != 4 {
			log.Fatal("usage: dbtool generate <start> <end>")
		}
		start, err := time.Parse("2006-01-02", os.Args[2])
		if err != nil {
			log.Fatalf("invalid start date: %v", err)
		}
		end, err := time.Parse("2006-01-02", os.Args[3])
		if err != nil {
			log.Fatalf("invalid end date: %v", err)
		}

		customers, err := repositories.LoadCustomersJSON(config.Get("CUSTOMERS_PATH", "data/seeds/customers.json"))
		if err != nil {
			log.Fatal(err)
		}
		products, err := repositories.LoadProductsJSON(config.Get("PRODUCTS_PATH", "data/seeds/products.json"))
		if err != nil {
			log.Fatal(err)
		}

		// Assign the concrete client only when configured, so the
		// generator sees a nil interface rather than a typed nil.
		var oracle ports.StockOracle
		if token := os.Getenv("POS_ACCESS_TOKEN"); token != "" {
			client, err := pos.NewClient(pos.Config{
				BaseURL:     config.Get("POS_BASE_URL", "https://pos.pages.fm/api/v1"),
				AppID:       os.Getenv("POS_APP_ID"),
				BusinessID:  os.Getenv("POS_BUSINESS_ID"),
				AccessToken: token,
			})
			if err != nil {
				log.Fatal(err)
			}
			oracle = client
		}

		store := repositories.NewSQLOrderStore(conn)
		gen := services.NewGenerator(store, oracle)

		result, err := gen.GenerateBatch(context.Background(), services.GenerateRequest{
			Start:             start,
			End:               end,
			Customers:         customers,
			Products:          products,
			CheckAvailability: oracle != nil,
		})
		if err != nil {
			log.Fatalf("generation failed: %v", err)
		}
		log.Printf("Batch created id=%s target=%d generated=%d", result.BatchID, result.TargetCount, result.Generated)
		for _, w := range result.Warnings {
			log.Printf("warning: %s", w)
		}

	default:
		log.Fatalf("unknown command %q", os.Args[1])
	}
}
