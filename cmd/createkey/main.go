package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/borrzu/verify-service/internal/domain/secretkey"
	"github.com/borrzu/verify-service/internal/storage/postgres"
	"github.com/borrzu/verify-service/internal/util"
)

// Operational tool: issue a secret key for a user directly against the
// database, bypassing the admin API and its cooldown.
func main() {
	userID := flag.Int64("user", 0, "Site user id to issue a key for")
	flag.Parse()

	if *userID <= 0 {
		log.Fatal("A positive -user id is required")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	value, err := util.GenerateSecretKey()
	if err != nil {
		log.Fatalf("Failed to generate secret key: %v", err)
	}

	logger, _ := zap.NewDevelopment()
	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer pool.Close()

	repo := postgres.NewSecretKeyRepository(pool, logger)

	key := &secretkey.SecretKey{
		UserID:      *userID,
		Value:       value,
		GeneratedAt: time.Now().UTC(),
	}

	if err := repo.Upsert(context.Background(), key); err != nil {
		log.Fatalf("Failed to save secret key: %v", err)
	}

	fmt.Printf("Secret key for user %d (SAVE THIS securely!):\n%s\n", *userID, value)
}
