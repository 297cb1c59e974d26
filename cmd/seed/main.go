package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/vendora/marketplace-api/config"
	"github.com/vendora/marketplace-api/internal/domain/entity"
	"github.com/vendora/marketplace-api/pkg/helpers"
)

func main() {
	email := flag.String("email", "admin@vendora.dev", "admin email")
	password := flag.String("password", "adminpass123", "admin password")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	hash, err := helpers.HashPassword(*password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	// Seed an approved admin. Rerunning refreshes the password hash.
	var id string
	err = db.QueryRow(`
		INSERT INTO users (id, email, password_hash, role, status, email_verified, onboarding_completed)
		VALUES ($1, $2, $3, $4, $5, true, true)
		ON CONFLICT (lower(email)) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    updated_at    = now()
		RETURNING id
	`, uuid.NewString(), *email, hash, string(entity.RoleAdmin), string(entity.StatusApproved)).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s\n", id, *email)
}
