package main

import (
	"context"
	"log"
	"os"

	"agent-chatbot-be/internal/entity"
	"agent-chatbot-be/internal/repository/implementation"
	"agent-chatbot-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Fixed ids keep the seeder idempotent: rerunning updates nothing and
// creates nothing twice.
var (
	demoTenantID   = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	faqCategoryID  = uuid.MustParse("22222222-2222-2222-2222-222222222201")
	hoursCatID     = uuid.MustParse("22222222-2222-2222-2222-222222222202")
	billingCatID   = uuid.MustParse("22222222-2222-2222-2222-222222222203")
	hoursUnitID    = uuid.MustParse("33333333-3333-3333-3333-333333333301")
	holidayUnitID  = uuid.MustParse("33333333-3333-3333-3333-333333333302")
	refundUnitID   = uuid.MustParse("33333333-3333-3333-3333-333333333303")
	invoiceUnitID  = uuid.MustParse("33333333-3333-3333-3333-333333333304")
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	ctx := context.Background()
	categories := implementation.NewCategoryRepository(db)
	contents := implementation.NewContentRepository(db)

	log.Printf("Seeding demo knowledge base for tenant %s...", demoTenantID)

	faqID := faqCategoryID
	seedCategories := []*entity.CategoryNode{
		{Id: faqCategoryID, TenantId: demoTenantID, Name: "FAQ", Description: "Frequently asked questions", Active: true},
		{Id: hoursCatID, TenantId: demoTenantID, ParentId: &faqID, Name: "Opening Hours", Active: true},
		{Id: billingCatID, TenantId: demoTenantID, ParentId: &faqID, Name: "Billing", Active: true},
	}
	for _, category := range seedCategories {
		existing, err := categories.GetByID(ctx, category.Id)
		if err != nil {
			log.Fatalf("Error: category lookup failed: %v", err)
		}
		if existing != nil {
			log.Printf("Category %q already exists, skipping", category.Name)
			continue
		}
		if err := categories.Create(ctx, category); err != nil {
			log.Fatalf("Error: failed to seed category %q: %v", category.Name, err)
		}
		log.Printf("Seeded category %q", category.Name)
	}

	seedUnits := []*entity.ContentUnit{
		{
			Id: hoursUnitID, TenantId: demoTenantID, CategoryId: hoursCatID,
			Title:    "Weekday opening hours",
			Body:     "We are open Monday through Friday from 9:00 to 18:00.",
			Keywords: "hours, schedule, weekday",
			Priority: 8, State: entity.StateActive,
		},
		{
			Id: holidayUnitID, TenantId: demoTenantID, CategoryId: hoursCatID,
			Title:    "Holiday closures",
			Body:     "We are closed on national holidays. Support resumes the next business day.",
			Keywords: "holiday, closed",
			Priority: 5, State: entity.StateActive,
		},
		{
			Id: refundUnitID, TenantId: demoTenantID, CategoryId: billingCatID,
			Title:    "Refund policy",
			Body:     "Refunds are available within 30 days of purchase with proof of payment.",
			Keywords: "refund, money back, return",
			Priority: 9, State: entity.StateActive,
		},
		{
			Id: invoiceUnitID, TenantId: demoTenantID, CategoryId: billingCatID,
			Title:    "Requesting an invoice",
			Body:     "Invoices can be requested from the billing portal under Account > Invoices.",
			Keywords: "invoice, billing portal",
			Priority: 4, State: entity.StateDraft,
		},
	}
	for _, unit := range seedUnits {
		state, err := contents.GetUnitState(ctx, unit.Id)
		if err != nil {
			log.Fatalf("Error: content lookup failed: %v", err)
		}
		if state != nil {
			log.Printf("Content unit %q already exists, skipping", unit.Title)
			continue
		}
		if err := contents.Create(ctx, unit); err != nil {
			log.Fatalf("Error: failed to seed content unit %q: %v", unit.Title, err)
		}
		log.Printf("Seeded content unit %q", unit.Title)
	}

	log.Println("✅ Seeding completed. Run cmd/reindex to build the vector index.")
}
