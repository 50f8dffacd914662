// Command main runs the database seeder for CampusWall.
package main

import (
	"flag"
	"log"

	"campuswall/internal/config"
	"campuswall/internal/database"
	"campuswall/internal/seed"
)

func main() {
	numSessions := flag.Int("sessions", 50, "Number of anonymous sessions to create")
	numConfessions := flag.Int("confessions", 200, "Number of confessions to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("CampusWall Database Seeder")
	log.Printf("Target: %d sessions, %d confessions, clean=%v", *numSessions, *numConfessions, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumSessions:    *numSessions,
		NumConfessions: *numConfessions,
		ShouldClean:    *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
