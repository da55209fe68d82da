package review

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanReview(row pgx.Row) (*Review, error) {
	var r Review

	err := row.Scan(
		&r.ID,
		&r.DoctorName,
		&r.DoctorRegistrationNumber,
		&r.PatientName,
		&r.Comment,
		&r.Stars,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

func (r *PgRepository) Create(ctx context.Context, rv *Review) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO reviews (id, doctor_name, doctor_registration_number, patient_name, comment, stars, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING id, doctor_name, doctor_registration_number, patient_name, comment, stars, created_at
	`, rv.ID, rv.DoctorName, rv.DoctorRegistrationNumber, rv.PatientName, rv.Comment, rv.Stars)

	created, err := scanReview(row)
	if err != nil {
		return err
	}

	*rv = *created
	return nil
}

func (r *PgRepository) ListByDoctorName(ctx context.Context, doctorName string) ([]Review, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, doctor_name, doctor_registration_number, patient_name, comment, stars, created_at
		FROM reviews
		WHERE doctor_name = $1
		ORDER BY created_at DESC
	`, doctorName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rv)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
