package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"crucible/internal/api/security"
	"crucible/internal/config"
	"crucible/internal/database"
	"crucible/internal/models"

	"github.com/google/uuid"
)

// issue-token prints a bearer token for the user with the given e-mail,
// creating the user first if needed. Intended for local development.
func main() {
	if len(os.Args) != 3 {
		fmt.Println("Usage: issue-token <username> <email>")
		os.Exit(1)
	}
	username, email := os.Args[1], strings.ToLower(os.Args[2])

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewGormConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run auto-migration: %v", err)
	}

	ctx := context.Background()
	users := database.NewUserRepository(db)

	user, err := users.GetUserByEmail(ctx, email)
	if err != nil {
		log.Fatalf("Failed to look up user: %v", err)
	}
	if user == nil {
		user = &models.User{ID: uuid.New(), Username: username, Email: email}
		if err := users.CreateUser(ctx, user); err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Created user %s (ID: %s)\n", user.Username, user.ID)
	}

	token, err := security.GenerateToken(security.NewTokenAuth(cfg.Auth.JWTSecret), user.ID, cfg.Auth.TokenTTL())
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
