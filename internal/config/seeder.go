package config

import (
	"context"
	"log"

	"join-finance-api/internal/adapters/persistence/models"
	"join-finance-api/internal/adapters/persistence/repositories"
	"join-finance-api/internal/pkg/password"
)

// Seeder handles database seeding
type Seeder struct {
	userRepo repositories.UserRepository
}

// NewSeeder creates a new seeder instance
func NewSeeder(userRepo repositories.UserRepository) *Seeder {
	return &Seeder{userRepo: userRepo}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(context.Background()); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds the default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser(ctx context.Context) error {
	exists, err := s.userRepo.ExistsByUsername(ctx, "admin")
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hashedPassword, err := password.Hash("admin123")
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: "admin",
		Password: hashedPassword,
		Email:    "admin@joinfinance.com",
		FullName: "Administrator",
		Role:     models.RoleAdmin,
		IsActive: true,
	}

	if err := s.userRepo.Create(ctx, admin); err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}
