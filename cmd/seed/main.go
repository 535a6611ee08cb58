package main

import (
	"context"
	"log"
	"os"
	"time"

	"bookcollect/internal/admin"
	"bookcollect/internal/collection"
	"bookcollect/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	login, password := os.Getenv("ADMIN_LOGIN"), os.Getenv("ADMIN_PASSWORD")
	if login == "" || password == "" {
		log.Fatal("ADMIN_LOGIN and ADMIN_PASSWORD are required")
	}

	admins := admin.NewService(cfg.JWTSecret, cfg.SessionTTL, admin.NewPostgresRepo(pool, cfg.DBTimeout))
	id, err := admins.EnsureAdmin(ctx, login, password)
	if err != nil {
		log.Fatalf("Failed to create administrator: %v", err)
	}
	log.Printf("Administrator %q ready (id=%d)", login, id)

	repo := collection.NewPostgresRepo(pool, cfg.DBTimeout)
	existing, err := repo.List(ctx)
	if err != nil {
		log.Fatalf("Failed to list collections: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("Collections already present (%d), skipping samples", len(existing))
		return
	}

	for _, c := range sampleCollections() {
		c := c
		if err := repo.Create(ctx, &c); err != nil {
			log.Fatalf("Failed to insert collection %q: %v", c.Title, err)
		}
		log.Printf("Inserted collection %d: %s", c.ID, c.Title)
	}
}

func sampleCollections() []collection.Collection {
	str := func(s string) *string { return &s }
	num := func(n int) *int { return &n }
	return []collection.Collection{
		{
			Title:         "Вопросы филологии",
			ReleaseYear:   num(2024),
			ReleaseNumber: num(1),
			Description:   str("Сборник статей по русскому языку и литературе."),
		},
		{
			Title:           "Вопросы филологии",
			ReleaseYear:     num(2024),
			ReleaseNumber:   num(2),
			PublicationLink: str("https://example.org/vf-2024-2"),
		},
		{
			Title:       "Молодая наука",
			ReleaseYear: num(2025),
		},
	}
}
