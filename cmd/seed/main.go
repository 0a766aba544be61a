// Command seed fills the users database with fake accounts for development.
package main

import (
	"context"
	"flag"
	"log"

	"patisson-users/internal/config"
	"patisson-users/internal/database"
	"patisson-users/internal/password"
	"patisson-users/internal/repository"
	"patisson-users/internal/seed"
	"patisson-users/internal/service"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	libraries := flag.Int("libraries", 3, "Library entries per user")
	randSeed := flag.Int64("seed", 0, "Random seed, 0 for a random run")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	hasher, err := password.NewHasher(cfg.PasswordHashCost)
	if err != nil {
		log.Fatalf("Failed to create password hasher: %v", err)
	}

	s := seed.NewSeeder(
		service.NewUserService(db, repository.NewUserRepository(db), hasher, nil),
		service.NewLibraryService(db, repository.NewLibraryRepository(db)),
	)
	users, err := s.Run(ctx, seed.Options{Users: *numUsers, LibrariesPerUser: *libraries, Seed: *randSeed})
	if err != nil {
		log.Fatalf("Seeding failed after %d users: %v", len(users), err)
	}

	log.Printf("Created %d users, all with the password %s", len(users), seed.DefaultPassword)
}
