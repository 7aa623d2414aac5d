// Command migrate applies the schema to the configured database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"postboard/internal/config"
	"postboard/internal/database"

	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <up|status>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = database.Close(db) }()

	ctx := context.Background()
	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "up":
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Println("schema applied")
	case "status":
		return status(db)
	default:
		return usage()
	}
	return nil
}

// status reports which model tables exist.
func status(db *gorm.DB) error {
	migrator := db.Migrator()
	missing := 0
	for _, model := range database.PersistentModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("parse %T: %w", model, err)
		}
		state := "present"
		if !migrator.HasTable(model) {
			state = "missing"
			missing++
		}
		log.Printf("%-10s %s", stmt.Schema.Table, state)
	}
	if missing > 0 {
		log.Printf("%d table(s) missing, run: go run ./cmd/migrate up", missing)
	}
	return nil
}
