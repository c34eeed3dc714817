package postgres

import (
	"database/sql"
	"errors"

	"volunhub-backend/internal/domain"
	"volunhub-backend/internal/repository"

	"github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.CategoryRepository
	repository.EventRepository
	repository.RegistrationRepository
	repository.NotificationRepository
	repository.PostRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		UserRepository:         NewUserRepository(db),
		CategoryRepository:     NewCategoryRepository(db),
		EventRepository:        NewEventRepository(db),
		RegistrationRepository: NewRegistrationRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		PostRepository:         NewPostRepository(db),
	}
}

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a postgres duplicate-key error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// notFoundOr converts the driver's empty-result sentinel into the given
// domain error so services never see sql.ErrNoRows.
func notFoundOr(err error, notFound *domain.Error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return err
}
