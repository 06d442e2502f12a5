// File: cmd/e2e-setup/main.go
package main

import (
	"context"
	"flag"
	"log"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"course-affiliate-engine/internal/config"
	"course-affiliate-engine/internal/infra/db/postgres"
	"course-affiliate-engine/internal/infra/redis"
)

// This script sets up a clean, predictable database state for manual
// end-to-end testing.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	// --- Connect to Postgres ---
	pool, err := postgres.NewPgxPool(ctx, cfg.Database.URL, 5)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer pool.Close()

	// --- Connect to Redis ---
	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer redisClient.Close()

	log.Println("--- Starting E2E Environment Setup ---")

	// 1. Make sure the schema exists before anything touches it.
	log.Println("[1/4] Ensuring schema...")
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}

	// 2. Clean the Redis cache to remove any stale data.
	log.Println("[2/4] Wiping Redis cache...")
	if err := redisClient.FlushDB(ctx); err != nil {
		log.Fatalf("failed to flush redis: %v", err)
	}

	// 3. Clean the database completely.
	log.Println("[3/4] Wiping all existing database data...")
	_, err = pool.Exec(ctx, `
		TRUNCATE
			coupon_types, coupons, coupon_assignments, commissions,
			payout_requests, agents, courses, enrollments
		RESTART IDENTITY CASCADE;
	`)
	if err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}

	// 4. Seed the marketplace rows the engine reads through its directory ports.
	log.Println("[4/4] Seeding agents, courses, and coupon types...")
	seedMarketplace(ctx, pool)

	log.Println("--- E2E Environment Setup Complete ---")
}

func seedMarketplace(ctx context.Context, pool *pgxpool.Pool) {
	rate := decimal.NewFromInt(10)
	_, err := pool.Exec(ctx, `
		INSERT INTO agents (id, agent_code, commission_rate, telegram_chat_id, is_active)
		VALUES ('11111111-1111-1111-1111-111111111111', 'JD001', $1, 0, TRUE)
	`, rate.String())
	if err != nil {
		log.Printf("failed to seed agent: %v", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO courses (id, title, price, has_admin_discount, admin_discount_amount) VALUES
		('22222222-2222-2222-2222-222222222222', 'Vedic Astrology 101', 80000, FALSE, 0),
		('33333333-3333-3333-3333-333333333333', 'Palmistry Basics', 50000, TRUE, 5000)
	`)
	if err != nil {
		log.Printf("failed to seed courses: %v", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO coupon_types (id, type_code, type_name, discount_kind, max_discount_limit, is_active, created_at, updated_at) VALUES
		('44444444-4444-4444-4444-444444444444', 'SPR', 'Spring Sale', 'percentage', 30, TRUE, NOW(), NOW()),
		('55555555-5555-5555-5555-555555555555', 'FST', 'Festival', 'fixed_amount', 1000, TRUE, NOW(), NOW())
	`)
	if err != nil {
		log.Printf("failed to seed coupon types: %v", err)
	}
}
