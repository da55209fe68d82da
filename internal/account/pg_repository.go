package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor

	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.RegistrationNumber,
		&d.PasswordHash,
		&d.Specialization,
		&d.Qualification,
		&d.Experience,
		&d.MobileNumber,
		&d.City,
		&d.MedicalCouncil,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	return &d, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Aadhaar,
		&p.PasswordHash,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// Interface methods

const doctorColumns = `id, name, registration_number, password_hash, specialization,
	qualification, experience, mobile_number, city, medical_council, created_at, updated_at`

func (r *PgRepository) CreateDoctor(ctx context.Context, d *Doctor) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctors (id, name, registration_number, password_hash, specialization,
			qualification, experience, mobile_number, city, medical_council, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
	`, d.ID, d.Name, d.RegistrationNumber, d.PasswordHash, d.Specialization,
		d.Qualification, d.Experience, d.MobileNumber, d.City, d.MedicalCouncil)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateRegistration
		}
		return err
	}
	return nil
}

func (r *PgRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgRepository) GetDoctorByRegistration(ctx context.Context, registrationNumber string) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		WHERE registration_number = $1
	`, registrationNumber)
	return scanDoctor(row)
}

func (r *PgRepository) ListDoctors(ctx context.Context) ([]Doctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) UpdateDoctorProfile(ctx context.Context, id uuid.UUID, profile DoctorProfile) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE doctors
		SET name = $2,
		    specialization = $3,
		    qualification = $4,
		    experience = $5,
		    mobile_number = $6,
		    city = $7,
		    medical_council = $8,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+doctorColumns+`
	`, id, profile.Name, profile.Specialization, profile.Qualification,
		profile.Experience, profile.MobileNumber, profile.City, profile.MedicalCouncil)
	return scanDoctor(row)
}

func (r *PgRepository) CreatePatient(ctx context.Context, p *Patient) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patients (id, name, aadhaar, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
	`, p.ID, p.Name, p.Aadhaar, p.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAadhaar
		}
		return err
	}
	return nil
}

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, aadhaar, password_hash, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) GetPatientByAadhaar(ctx context.Context, aadhaar string) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, aadhaar, password_hash, created_at, updated_at
		FROM patients
		WHERE aadhaar = $1
	`, aadhaar)
	return scanPatient(row)
}
