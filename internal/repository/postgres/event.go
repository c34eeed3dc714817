package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"volunhub-backend/internal/domain"
	"volunhub-backend/internal/repository"
)

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) repository.EventRepository {
	return &eventRepository{db: db}
}

const eventColumns = `e.id, e.title, COALESCE(e.description, ''), e.category_id, e.address, COALESCE(e.city, ''), COALESCE(e.district, ''), COALESCE(e.ward, ''), e.start_at, e.end_at, e.created_by, e.status, e.created_on, e.updated_on`

func scanEvent(row interface{ Scan(...interface{}) error }, e *domain.Event) error {
	return row.Scan(&e.ID, &e.Title, &e.Description, &e.CategoryID, &e.Address, &e.City, &e.District, &e.Ward, &e.StartAt, &e.EndAt, &e.CreatedBy, &e.Status, &e.CreatedOn, &e.UpdatedOn)
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `INSERT INTO events (title, description, category_id, address, city, district, ward, start_at, end_at, created_by, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	now := time.Now()
	e.CreatedOn = now
	e.UpdatedOn = now
	return r.db.QueryRowContext(ctx, query, e.Title, e.Description, e.CategoryID, e.Address, e.City, e.District, e.Ward, e.StartAt, e.EndAt, e.CreatedBy, e.Status, e.CreatedOn, e.UpdatedOn).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id int32) (*domain.Event, error) {
	e := &domain.Event{}
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id = $1`
	if err := scanEvent(r.db.QueryRowContext(ctx, query, id), e); err != nil {
		return nil, notFoundOr(err, domain.NotFound("EVENT_NOT_FOUND", "event not found"))
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `UPDATE events SET title=$1, description=$2, category_id=$3, address=$4, city=$5, district=$6, ward=$7, start_at=$8, end_at=$9, status=$10, updated_on=$11 WHERE id=$12`
	e.UpdatedOn = time.Now()
	_, err := r.db.ExecContext(ctx, query, e.Title, e.Description, e.CategoryID, e.Address, e.City, e.District, e.Ward, e.StartAt, e.EndAt, e.Status, e.UpdatedOn, e.ID)
	return err
}

func (r *eventRepository) Delete(ctx context.Context, id int32) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.NotFound("EVENT_NOT_FOUND", "event not found")
	}
	return nil
}

func (r *eventRepository) CountRegistrations(ctx context.Context, eventID int32) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM event_registrations WHERE event_id = $1`
	err := r.db.QueryRowContext(ctx, query, eventID).Scan(&count)
	return count, err
}

func (r *eventRepository) List(ctx context.Context, filter repository.EventFilter, page, pageSize int32) ([]domain.Event, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + eventColumns + ` FROM events e JOIN categories c ON e.category_id = c.id WHERE 1=1`

	var args []interface{}
	argIdx := 1
	addFilter := func(clause, value string) {
		if value != "" {
			query += fmt.Sprintf(clause, argIdx)
			args = append(args, value)
			argIdx++
		}
	}
	addFilter(" AND c.name = $%d", filter.Category)
	addFilter(" AND e.city = $%d", filter.City)
	addFilter(" AND e.district = $%d", filter.District)
	addFilter(" AND e.ward = $%d", filter.Ward)
	addFilter(" AND e.status = $%d", string(filter.Status))

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY e.start_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	events, err := r.queryEvents(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return events, count, nil
}

func (r *eventRepository) ListAll(ctx context.Context) ([]domain.Event, error) {
	return r.queryEvents(ctx, `SELECT `+eventColumns+` FROM events e ORDER BY e.id`)
}

func (r *eventRepository) Complete(ctx context.Context, eventID int32) (int32, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// Lock the event row so a racing registration or approval either sees the
	// terminal status after commit or lands before the sweep below.
	var status domain.EventStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&status)
	if err != nil {
		return 0, notFoundOr(err, domain.NotFound("EVENT_NOT_FOUND", "event not found"))
	}
	if status != domain.EventStatusApproved {
		return 0, domain.InvalidState("EVENT_NOT_COMPLETABLE", "only an approved event can be completed")
	}

	_, err = tx.ExecContext(ctx, `UPDATE events SET status = $1, updated_on = $2 WHERE id = $3`, domain.EventStatusCompleted, time.Now(), eventID)
	if err != nil {
		return 0, err
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE event_registrations SET status = $1 WHERE event_id = $2 AND status = $3`,
		domain.RegistrationStatusCompleted, eventID, domain.RegistrationStatusApproved)
	if err != nil {
		return 0, err
	}
	swept, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int32(swept), nil
}

func (r *eventRepository) ListUpcoming(ctx context.Context, limit int32) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e
	          WHERE e.status = $1 AND e.start_at > $2 ORDER BY e.start_at LIMIT $3`
	return r.queryEvents(ctx, query, domain.EventStatusApproved, time.Now(), limit)
}

func (r *eventRepository) ListMostRegistered(ctx context.Context, limit int32) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e
	          JOIN event_registrations reg ON reg.event_id = e.id
	          WHERE e.status = $1
	          GROUP BY e.id ORDER BY count(reg.id) DESC LIMIT $2`
	return r.queryEvents(ctx, query, domain.EventStatusApproved, limit)
}

func (r *eventRepository) ListRecentlyPosted(ctx context.Context, limit int32) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e
	          JOIN posts p ON p.event_id = e.id
	          WHERE e.status = $1
	          GROUP BY e.id ORDER BY max(p.created_date) DESC LIMIT $2`
	return r.queryEvents(ctx, query, domain.EventStatusApproved, limit)
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...interface{}) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
