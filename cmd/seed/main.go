package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medibook/clinic-appointments/internal/auth"
	"github.com/medibook/clinic-appointments/internal/db"
)

// All seeded accounts share this password so local testing stays simple.
const seedPassword = "password123"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	// Hash once, reuse; bcrypt per row makes seeding crawl.
	passwordHash, err := auth.HashPassword(seedPassword)
	if err != nil {
		log.Fatalf("hash seed password: %v", err)
	}

	if err := seedDoctors(context.Background(), pool, passwordHash, 50); err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	if err := seedPatients(context.Background(), pool, passwordHash, 2000); err != nil {
		log.Fatalf("seed patients: %v", err)
	}

	log.Println("seed complete")
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, passwordHash string, count int) error {
	log.Printf("seeding %d doctors", count)

	specializations := []string{
		"Dermatology",
		"Cardiology",
		"General Medicine",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}

	councils := []string{
		"Kerala Medical Council",
		"Karnataka Medical Council",
		"Tamil Nadu Medical Council",
		"Maharashtra Medical Council",
		"Delhi Medical Council",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		id := uuid.New()
		name := "Dr. " + gofakeit.Name()
		registration := fmt.Sprintf("MCI-%05d", gofakeit.Number(10000, 99999))
		spec := specializations[gofakeit.Number(0, len(specializations)-1)]
		council := councils[gofakeit.Number(0, len(councils)-1)]
		experience := fmt.Sprintf("%d years", gofakeit.Number(2, 35))
		mobile := fmt.Sprintf("9%09d", gofakeit.Number(0, 999999999))

		_, err := tx.Exec(ctx, `
			INSERT INTO doctors (id, name, registration_number, password_hash, specialization,
				qualification, experience, mobile_number, city, medical_council, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
			ON CONFLICT (registration_number) DO NOTHING
		`, id, name, registration, passwordHash, spec, "MBBS, MD", experience, mobile, gofakeit.City(), council)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("doctors seeded")
	return nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, passwordHash string, count int) error {
	log.Printf("seeding %d patients", count)

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			id := uuid.New()
			name := gofakeit.Name()
			aadhaar := fmt.Sprintf("%04d%04d%04d",
				gofakeit.Number(1000, 9999),
				gofakeit.Number(0, 9999),
				gofakeit.Number(0, 9999))

			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, name, aadhaar, password_hash, created_at, updated_at)
				VALUES ($1, $2, $3, $4, now(), now())
				ON CONFLICT (aadhaar) DO NOTHING
			`, id, name, aadhaar, passwordHash)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Printf("patients seeded: %d/%d", end, count)
	}

	log.Println("patients seeded")
	return nil
}
