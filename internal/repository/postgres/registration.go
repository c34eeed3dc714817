package postgres

import (
	"context"
	"database/sql"

	"volunhub-backend/internal/domain"
	"volunhub-backend/internal/repository"
)

type registrationRepository struct {
	db *sql.DB
}

func NewRegistrationRepository(db *sql.DB) repository.RegistrationRepository {
	return &registrationRepository{db: db}
}

const registrationColumns = `r.id, r.user_id, r.event_id, r.status, r.registration_date, r.cancel_at, r.approved_by`

func scanRegistration(row interface{ Scan(...interface{}) error }, reg *domain.EventRegistration) error {
	return row.Scan(&reg.ID, &reg.UserID, &reg.EventID, &reg.Status, &reg.RegistrationDate, &reg.CancelAt, &reg.ApprovedBy)
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.EventRegistration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Share-lock the event row so the insert blocks against a concurrent
	// Complete; once the lock is granted the status re-check is authoritative.
	if err := lockApprovedEvent(ctx, tx, reg.EventID); err != nil {
		return err
	}

	// The (user_id, event_id) unique index is the authoritative duplicate
	// guard; two concurrent inserts for the same pair yield exactly one
	// success and one conflict.
	query := `INSERT INTO event_registrations (user_id, event_id, status, registration_date)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	err = tx.QueryRowContext(ctx, query, reg.UserID, reg.EventID, reg.Status, reg.RegistrationDate).Scan(&reg.ID)
	if isUniqueViolation(err) {
		return domain.Conflict("USER_ALREADY_REGISTERED_EVENT", "you have already registered for this event")
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}

// lockApprovedEvent takes a share lock on the event row, blocking against the
// exclusive lock held by an in-flight Complete, and verifies the event is
// still open once the lock is granted.
func lockApprovedEvent(ctx context.Context, tx *sql.Tx, eventID int32) error {
	var status domain.EventStatus
	err := tx.QueryRowContext(ctx, `SELECT status FROM events WHERE id = $1 FOR SHARE`, eventID).Scan(&status)
	if err != nil {
		return notFoundOr(err, domain.NotFound("EVENT_NOT_FOUND", "event not found"))
	}
	if status != domain.EventStatusApproved {
		return domain.InvalidState("EVENT_NOT_APPROVED", "the event is no longer open")
	}
	return nil
}

func (r *registrationRepository) Review(ctx context.Context, reg *domain.EventRegistration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockApprovedEvent(ctx, tx, reg.EventID); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE event_registrations SET status=$1, approved_by=$2 WHERE id=$3 AND status=$4`,
		reg.Status, reg.ApprovedBy, reg.ID, domain.RegistrationStatusPending)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.InvalidState("REGISTRATION_ALREADY_RESOLVED", "only a pending registration can be approved or rejected")
	}
	return tx.Commit()
}

func (r *registrationRepository) GetByID(ctx context.Context, id int32) (*domain.EventRegistration, error) {
	reg := &domain.EventRegistration{}
	query := `SELECT ` + registrationColumns + ` FROM event_registrations r WHERE r.id = $1`
	if err := scanRegistration(r.db.QueryRowContext(ctx, query, id), reg); err != nil {
		return nil, notFoundOr(err, domain.NotFound("REGISTRATION_NOT_FOUND", "registration not found"))
	}
	return reg, nil
}

func (r *registrationRepository) GetByUserAndEvent(ctx context.Context, userID, eventID int32) (*domain.EventRegistration, error) {
	reg := &domain.EventRegistration{}
	query := `SELECT ` + registrationColumns + ` FROM event_registrations r WHERE r.user_id = $1 AND r.event_id = $2`
	if err := scanRegistration(r.db.QueryRowContext(ctx, query, userID, eventID), reg); err != nil {
		return nil, notFoundOr(err, domain.NotFound("REGISTRATION_NOT_FOUND", "registration not found"))
	}
	return reg, nil
}

func (r *registrationRepository) Update(ctx context.Context, reg *domain.EventRegistration) error {
	query := `UPDATE event_registrations SET status=$1, cancel_at=$2, approved_by=$3 WHERE id=$4`
	_, err := r.db.ExecContext(ctx, query, reg.Status, reg.CancelAt, reg.ApprovedBy, reg.ID)
	return err
}

func (r *registrationRepository) ExistsFor(ctx context.Context, userID, eventID int32) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM event_registrations WHERE user_id = $1 AND event_id = $2)`
	err := r.db.QueryRowContext(ctx, query, userID, eventID).Scan(&exists)
	return exists, err
}

func (r *registrationRepository) ListByUser(ctx context.Context, userID int32) ([]domain.EventRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations r WHERE r.user_id = $1 ORDER BY r.registration_date DESC`
	return r.queryRegistrations(ctx, query, userID)
}

func (r *registrationRepository) ListByEvent(ctx context.Context, eventID int32) ([]domain.EventRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations r WHERE r.event_id = $1 ORDER BY r.registration_date`
	return r.queryRegistrations(ctx, query, eventID)
}

func (r *registrationRepository) queryRegistrations(ctx context.Context, query string, args ...interface{}) ([]domain.EventRegistration, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []domain.EventRegistration
	for rows.Next() {
		var reg domain.EventRegistration
		if err := scanRegistration(rows, &reg); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}
