// Command seed provisions the initial ADMIN account so the portal can be
// logged into on a fresh database.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/college-portal-api/internal/models"
	"github.com/noah-isme/college-portal-api/internal/repository"
	"github.com/noah-isme/college-portal-api/pkg/config"
	"github.com/noah-isme/college-portal-api/pkg/database"
)

func main() {
	email := flag.String("email", "admin@college.local", "admin email")
	password := flag.String("password", "", "admin password (required)")
	name := flag.String("name", "Portal Administrator", "admin full name")
	flag.Parse()

	if *password == "" {
		log.Fatal("missing -password")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := repository.NewUserRepository(db)
	if _, err := users.FindByEmail(ctx, *email); err == nil {
		log.Fatalf("account %s already exists", *email)
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Fatalf("failed to check account: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	admin := &models.User{
		Email:        *email,
		PasswordHash: string(hash),
		FullName:     *name,
		Role:         models.RoleAdmin,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatalf("failed to create admin account: %v", err)
	}

	fmt.Printf("created admin account %s (%s)\n", *email, admin.ID)
}
