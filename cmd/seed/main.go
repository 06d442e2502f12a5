// File: cmd/seed/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"course-affiliate-engine/internal/config"
	"course-affiliate-engine/internal/domain/model"
	pg "course-affiliate-engine/internal/infra/db/postgres"
	"course-affiliate-engine/internal/infra/logging"
	"course-affiliate-engine/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if err := pg.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	logger := logging.New(cfg.Log, true)
	typeUC := usecase.NewCouponTypeUseCase(pg.NewCouponTypeRepo(pool), logger)

	// If coupon types already exist, do nothing
	types, err := typeUC.List(ctx)
	if err != nil {
		log.Fatalf("list types: %v", err)
	}
	if len(types) > 0 {
		fmt.Printf("%d coupon types already present. No changes.\n", len(types))
		for _, ct := range types {
			fmt.Printf("  - %s %s (kind=%s, max=%d)\n", ct.TypeCode, ct.TypeName, ct.Kind, ct.MaxDiscountLimit)
		}
		return
	}

	// Seed a few sample types for testing the coupon flow
	seed := []struct {
		Code string
		Name string
		Kind model.DiscountKind
		Max  int64
	}{
		{"SPR", "Spring Sale", model.DiscountPercentage, 30},
		{"FST", "Festival", model.DiscountFixedAmount, 1000},
		{"WEL", "Welcome", model.DiscountPercentage, 15},
	}

	for _, s := range seed {
		ct, err := typeUC.Create(ctx, s.Code, s.Name, s.Kind, s.Max)
		if err != nil {
			log.Fatalf("create type %q: %v", s.Code, err)
		}
		fmt.Printf("seeded: %s %s (id=%s, kind=%s, max=%d)\n", ct.TypeCode, ct.TypeName, ct.ID, ct.Kind, ct.MaxDiscountLimit)
	}

	fmt.Println("Seeding complete.")
}
