package repository

import (
	"context"

	"volunhub-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id int32) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
}

// EventFilter narrows event listings. Zero values mean "no constraint".
type EventFilter struct {
	Category string
	City     string
	District string
	Ward     string
	Status   domain.EventStatus
}

type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id int32) (*domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id int32) error
	CountRegistrations(ctx context.Context, eventID int32) (int32, error)
	List(ctx context.Context, filter EventFilter, page, pageSize int32) ([]domain.Event, int32, error)
	ListAll(ctx context.Context) ([]domain.Event, error)

	// Complete flips an APPROVED event to COMPLETED and sweeps its APPROVED
	// registrations to COMPLETED in one transaction, serialized on the event
	// row. It returns the number of registrations swept. Registration writers
	// share-lock the same row, so a concurrent Create or Review either
	// commits before the sweep and is covered by it, or blocks and then
	// observes the terminal status.
	Complete(ctx context.Context, eventID int32) (int32, error)

	// Dashboard projections.
	ListUpcoming(ctx context.Context, limit int32) ([]domain.Event, error)
	ListMostRegistered(ctx context.Context, limit int32) ([]domain.Event, error)
	ListRecentlyPosted(ctx context.Context, limit int32) ([]domain.Event, error)
}

type RegistrationRepository interface {
	// Create inserts a new registration inside a transaction that share-locks
	// the event row and re-checks it is still APPROVED, so a racing Complete
	// either sees the new row in its sweep or this call fails InvalidState.
	// A duplicate (user, event) pair in any historical status fails with a
	// domain Conflict error, backed by the storage unique index rather than a
	// check-then-insert.
	Create(ctx context.Context, reg *domain.EventRegistration) error
	GetByID(ctx context.Context, id int32) (*domain.EventRegistration, error)
	GetByUserAndEvent(ctx context.Context, userID, eventID int32) (*domain.EventRegistration, error)
	Update(ctx context.Context, reg *domain.EventRegistration) error
	// Review persists an approve/reject verdict with the same event share
	// lock as Create, and only moves the row off PENDING; a registration
	// resolved or swept in the meantime fails InvalidState.
	Review(ctx context.Context, reg *domain.EventRegistration) error
	ExistsFor(ctx context.Context, userID, eventID int32) (bool, error)
	ListByUser(ctx context.Context, userID int32) ([]domain.EventRegistration, error)
	ListByEvent(ctx context.Context, eventID int32) ([]domain.EventRegistration, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
	CountUnread(ctx context.Context, userID int32) (int32, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id int32) (*domain.Post, error)
	ListByEvent(ctx context.Context, eventID int32) ([]domain.Post, error)

	CreateComment(ctx context.Context, comment *domain.Comment) error
	ListCommentsByPost(ctx context.Context, postID int32) ([]domain.Comment, error)

	HasLike(ctx context.Context, postID, userID int32) (bool, error)
	AddLike(ctx context.Context, postID, userID int32) error
	RemoveLike(ctx context.Context, postID, userID int32) error
}
