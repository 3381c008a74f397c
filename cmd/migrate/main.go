package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"handyhub/config"
	"handyhub/internal/repository"
	"handyhub/internal/services"
	"handyhub/pkg/database"
	"handyhub/pkg/logger"
)

const usage = `
HandyHub Chat - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up                     Create or update the chat tables
  status                 Show database connection status and row counts
  seed-dev               Seed demo customers, providers and conversations
  rebuild-conversations  Recompute the conversations table from messages
  reset                  Drop all chat tables and re-create them (DANGEROUS)
  truncate               Delete every row of the chat tables (DANGEROUS)

Flags:
  -password string   Password for seeded users (default "Handy@123!")
  -batch int         Messages per batch for rebuild-conversations (default 500)

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go seed-dev
  go run cmd/migrate/main.go rebuild-conversations -batch 1000
`

func main() {
	password := flag.String("password", database.DefaultSeedConfig().Password, "Password for seeded users")
	batch := flag.Int("batch", 500, "Messages per batch for rebuild-conversations")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	ctx := context.Background()

	// Load config and connect to database
	cfg := config.LoadConfig()
	if _, err := database.Connect(cfg); err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer func() { _ = database.Close() }()

	switch command {
	case "up":
		runMigrationsUp()
	case "status":
		showStatus(ctx)
	case "seed-dev":
		runSeedDevelopment(ctx, cfg, *password)
	case "rebuild-conversations":
		runRebuild(ctx, cfg, *batch)
	case "reset":
		runReset()
	case "truncate":
		runTruncate()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp() {
	log.Println("🚀 Running migrations UP...")

	if err := repository.InitSchema(database.DB); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	log.Println("✅ Migrations completed successfully!")
}

func showStatus(ctx context.Context) {
	log.Println("🔍 Checking database status...")

	if err := database.HealthCheck(ctx); err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	log.Println("✅ Database connection: OK")

	counts, err := repository.TableCounts(database.DB)
	if err != nil {
		log.Fatalf("❌ Counting rows failed: %v", err)
	}
	tables := make([]string, 0, len(counts))
	for table := range counts {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		if counts[table] < 0 {
			log.Printf("❌ Table %-20s does not exist", table)
			continue
		}
		log.Printf("✅ Table %-20s exists (%d rows)", table, counts[table])
	}
}

func runSeedDevelopment(ctx context.Context, cfg *config.Config, password string) {
	log.Println("🌱 Seeding database (development mode)...")

	seedCfg := database.DefaultSeedConfig()
	seedCfg.Password = password
	result, err := database.Seed(ctx, repository.NewStore(database.DB), seedCfg)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("📊 Seed Summary:")
	auth := services.NewAuthService(cfg)
	for _, u := range result.Users {
		log.Printf("   - %-9s %-20s id=%d email=%s", u.Role, u.Name, u.ID, u.Email)
		if auth.Enabled() {
			token, err := auth.IssueAccessToken(u.ID, u.Role)
			if err != nil {
				log.Fatalf("❌ Issuing token failed: %v", err)
			}
			log.Printf("     token: %s", token)
		}
	}
	log.Printf("   - Messages: %d", result.Messages)
	log.Println("✅ Development seeding completed!")
}

func runRebuild(ctx context.Context, cfg *config.Config, batch int) {
	log.Println("🔁 Rebuilding conversations from the message log...")

	l := logger.New(cfg.LogMode)
	defer l.Sync()
	conversations := services.NewConversationService(repository.NewStore(database.DB), cfg.ConversationSource, l)
	n, err := conversations.Rebuild(ctx, batch)
	if err != nil {
		log.Fatalf("❌ Rebuild failed: %v", err)
	}

	log.Printf("✅ Rebuilt %d conversations", n)
}

func runReset() {
	log.Println("⚠️  WARNING: This will DROP all chat tables and re-create them!")

	log.Println("🗑️  Dropping all tables...")
	if err := repository.DropSchema(database.DB); err != nil {
		log.Fatalf("❌ Failed to drop tables: %v", err)
	}

	log.Println("🚀 Running migrations...")
	if err := repository.InitSchema(database.DB); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	log.Println("✅ Database reset completed!")
}

func runTruncate() {
	log.Println("⚠️  WARNING: This will TRUNCATE all tables!")

	if err := repository.TruncateAll(database.DB); err != nil {
		log.Fatalf("❌ Truncate failed: %v", err)
	}

	log.Println("✅ All tables truncated!")
}
