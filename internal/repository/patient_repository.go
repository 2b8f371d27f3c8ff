package repository

import (
	"context"

	"clinic-assistant/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var patientColumns = []string{"id", "email", "full_name", "password_hash", "created_at", "updated_at"}

type PatientRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPatientRepository(db *pgxpool.Pool, logger *zap.Logger) *PatientRepository {
	return &PatientRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores the patient and fills in the generated id.
func (r *PatientRepository) Create(ctx context.Context, patient *models.Patient) error {
	query := squirrel.Insert("patients").
		Columns("email", "full_name", "password_hash", "created_at", "updated_at").
		Values(patient.Email, patient.FullName, patient.PasswordHash, patient.CreatedAt, patient.UpdatedAt).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx, sql, args...).Scan(&patient.ID)
}

func (r *PatientRepository) GetByEmail(ctx context.Context, email string) (*models.Patient, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

func (r *PatientRepository) GetByID(ctx context.Context, id int64) (*models.Patient, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *PatientRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.Patient, error) {
	query := squirrel.Select(patientColumns...).
		From("patients").
		Where(where).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var p models.Patient
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&p.ID, &p.Email, &p.FullName, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}
