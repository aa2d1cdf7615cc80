package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/servesync/backend/internal/adapters/database"
	"github.com/servesync/backend/internal/domain/entities"
	"github.com/servesync/backend/internal/infrastructure/clients/postgres"
	"github.com/servesync/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	userRepo := database.NewUserAdapter(pgClient)
	serviceRepo := database.NewServiceAdapter(pgClient)
	bookingRepo := database.NewBookingAdapter(pgClient)

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				reviews,
				bookings,
				services,
				users
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	now := time.Now()

	// 1. Seed users, one per role
	users := []*entities.User{
		{ID: "user-1", Name: "John Doe", Email: "user@servesync.com", Role: entities.RoleUser, Phone: "+1234567890", CreatedAt: now, UpdatedAt: now},
		{ID: "provider-1", Name: "Jane Smith", Email: "provider@servesync.com", Role: entities.RoleProvider, Phone: "+1234567891", Rating: 4.8, CompletedJobs: 156, CreatedAt: now, UpdatedAt: now},
		{ID: "admin-1", Name: "Admin User", Email: "admin@servesync.com", Role: entities.RoleAdmin, Phone: "+1234567892", CreatedAt: now, UpdatedAt: now},
	}
	for _, user := range users {
		if err := userRepo.Create(ctx, user); err != nil {
			log.Printf("Skipping user %s: %v", user.Email, err)
		}
	}
	log.Printf("Seeded %d users", len(users))

	// 2. Seed the service catalog
	services := []*entities.Service{
		{ID: "service-1", Name: "Home Cleaning", Description: "Professional home cleaning service", Price: 89, Duration: "2-3 hours", Rating: 4.8, ReviewCount: 245, Category: "Cleaning", ProviderID: "provider-1"},
		{ID: "service-2", Name: "Plumbing Repair", Description: "Expert plumbing repair and installation", Price: 120, Duration: "1-2 hours", Rating: 4.9, ReviewCount: 189, Category: "Repair", ProviderID: "provider-1"},
		{ID: "service-3", Name: "Electrical Work", Description: "Licensed electrical services", Price: 150, Duration: "2-4 hours", Rating: 4.7, ReviewCount: 156, Category: "Repair", ProviderID: "provider-1"},
		{ID: "service-4", Name: "AC Maintenance", Description: "Air conditioning service and repair", Price: 95, Duration: "1-2 hours", Rating: 4.6, ReviewCount: 134, Category: "Maintenance", ProviderID: "provider-1"},
		{ID: "service-5", Name: "Pest Control", Description: "Safe and effective pest control", Price: 75, Duration: "1 hour", Rating: 4.9, ReviewCount: 201, Category: "Cleaning", ProviderID: "provider-1"},
		{ID: "service-6", Name: "Gardening", Description: "Garden maintenance and landscaping", Price: 65, Duration: "2-3 hours", Rating: 4.5, ReviewCount: 98, Category: "Maintenance", ProviderID: "provider-1"},
	}
	for _, service := range services {
		service.CreatedAt = now
		service.UpdatedAt = now
		if err := serviceRepo.Create(ctx, service); err != nil {
			log.Printf("Skipping service %s: %v", service.Name, err)
		}
	}
	log.Printf("Seeded %d services", len(services))

	// 3. Seed bookings in a spread of lifecycle states
	completedAt := now.Add(-72 * time.Hour)
	bookings := []*entities.Booking{
		{ID: "booking-1", ServiceID: "service-1", CustomerID: "user-1", ProviderID: "provider-1", Date: "2024-03-25", Time: "10:00", Status: entities.BookingStatusPending, Amount: 89, Address: "123 Main St, Apt 4B"},
		{ID: "booking-2", ServiceID: "service-2", CustomerID: "user-1", ProviderID: "provider-1", Date: "2024-03-20", Time: "14:00", Status: entities.BookingStatusCompleted, Amount: 120, Address: "123 Main St, Apt 4B", CompletedAt: &completedAt},
		{ID: "booking-3", ServiceID: "service-3", CustomerID: "user-1", ProviderID: "provider-1", Date: "2024-03-28", Time: "11:00", Status: entities.BookingStatusConfirmed, Amount: 150, Address: "123 Main St, Apt 4B"},
	}
	for _, booking := range bookings {
		booking.CreatedAt = now
		booking.UpdatedAt = now
		if err := bookingRepo.Create(ctx, booking); err != nil {
			log.Printf("Skipping booking %s: %v", booking.ID, err)
		}
	}
	log.Printf("Seeded %d bookings", len(bookings))

	log.Println("Seeding complete")
}
