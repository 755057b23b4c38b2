package main

import (
	"context"
	"flag"
	"log"

	"go-retreat-store/internal/config"
	"go-retreat-store/internal/repository"
	"go-retreat-store/pkg/database"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	username := flag.String("username", "admin", "account to reset")
	newPassword := flag.String("password", "", "new password (min 6 characters)")
	flag.Parse()

	if len(*newPassword) < 6 {
		log.Fatal("❌ -password must be at least 6 characters")
	}

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// 2. Setup Database
	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	// 3. Find user
	ctx := context.Background()
	userRepo := repository.NewUserRepo(db)
	user, err := userRepo.FindByUsername(ctx, *username)
	if err != nil {
		log.Fatalf("❌ User %s not found in database: %v", *username, err)
	}

	// 4. Hash new password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*newPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}

	// 5. Update
	if err := userRepo.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		log.Fatalf("❌ Failed to update password in DB: %v", err)
	}

	log.Printf("✅ Success! Password for %s has been reset", user.Username)
}
