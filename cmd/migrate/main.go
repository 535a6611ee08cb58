package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const usage = "up, up-by-one, down, redo, reset, status, version, create"

func main() {
	var (
		command = flag.String("command", "up", "Migration command: "+usage)
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	loadEnvFiles()
	dir := migrationsDir()

	if *command == "create" {
		if *name == "" {
			log.Fatal("Name is required for 'create' command")
		}
		if err := goose.Create(nil, dir, *name, "sql"); err != nil {
			log.Fatalf("Failed to create migration: %v", err)
		}
		fmt.Printf("Migration created: %s\n", *name)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("Failed to set dialect: %v", err)
	}

	switch *command {
	case "up":
		err = goose.UpContext(ctx, db, dir)
	case "up-by-one":
		err = goose.UpByOneContext(ctx, db, dir)
	case "down":
		err = goose.DownContext(ctx, db, dir)
	case "redo":
		err = goose.RedoContext(ctx, db, dir)
	case "reset":
		err = goose.ResetContext(ctx, db, dir)
	case "status":
		err = goose.StatusContext(ctx, db, dir)
	case "version":
		err = goose.VersionContext(ctx, db, dir)
	default:
		log.Fatalf("Unknown command: %s. Use: %s", *command, usage)
	}
	if err != nil {
		log.Fatalf("migrate %s failed: %v", *command, err)
	}
	fmt.Printf("migrate %s: done\n", *command)
}
