package main

import (
	"context"
	"flag"
	"log"

	"agent-chatbot-be/internal/bootstrap"
	"agent-chatbot-be/internal/config"
	"agent-chatbot-be/pkg/database"

	"github.com/google/uuid"
)

// Rebuilds vector collections outside the request path. Reindex one tenant
// with -tenant, or every tenant that has active categories with -all.
func main() {
	tenantFlag := flag.String("tenant", "", "tenant (agent) id to reindex")
	allFlag := flag.Bool("all", false, "reindex every tenant with active categories")
	flag.Parse()

	if *tenantFlag == "" && !*allFlag {
		log.Fatal("Error: pass -tenant=<uuid> or -all")
	}

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)
	ctx := context.Background()

	var tenants []uuid.UUID
	if *allFlag {
		tenants, err = container.Categories.ListTenants(ctx)
		if err != nil {
			log.Fatalf("Failed to list tenants: %v", err)
		}
		log.Printf("Reindexing %d tenants...", len(tenants))
	} else {
		tenantID, err := uuid.Parse(*tenantFlag)
		if err != nil {
			log.Fatalf("Invalid tenant id %q: %v", *tenantFlag, err)
		}
		tenants = []uuid.UUID{tenantID}
	}

	failures := 0
	for _, tenantID := range tenants {
		report, err := container.Indexer.ReindexTenant(ctx, tenantID)
		if err != nil {
			log.Printf("[ERROR] Reindex failed for tenant %s: %v", tenantID, err)
			failures++
			continue
		}
		log.Printf("[OK] Tenant %s: %d categories, %d units (%d docs)",
			tenantID, report.Categories, report.Units, report.Total)
	}

	if failures > 0 {
		log.Fatalf("Reindex finished with %d failures", failures)
	}
	log.Println("✅ Reindex finished")
}
