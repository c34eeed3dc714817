package service

import (
	"context"
	"time"

	"volunhub-backend/internal/domain"
	"volunhub-backend/internal/repository"
)

// EventCreateInput carries the fields of a new event. StartAt and EndAt are
// RFC 3339 strings from the wire; the service parses and validates them.
type EventCreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CategoryID  int32  `json:"category_id"`
	Address     string `json:"address"`
	City        string `json:"city"`
	District    string `json:"district"`
	Ward        string `json:"ward"`
	StartAt     string `json:"start_at"`
	EndAt       string `json:"end_at"`
}

// EventUpdateInput carries a partial update. Nil means "field absent"; a
// present but blank optional text field is treated as no change. Present
// timestamps are always re-validated for format.
type EventUpdateInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CategoryID  *int32  `json:"category_id"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	District    *string `json:"district"`
	Ward        *string `json:"ward"`
	StartAt     *string `json:"start_at"`
	EndAt       *string `json:"end_at"`
}

// EventDetail is the read projection of one event for the current actor.
type EventDetail struct {
	domain.Event
	CategoryName      string `json:"category_name"`
	CreatedByName     string `json:"created_by_name"`
	RegistrationCount int32  `json:"registration_count"`
	IsRegistered      bool   `json:"is_registered"`
	CanRegister       bool   `json:"can_register"`
}

// Dashboard aggregates the landing-page projections for one user.
type Dashboard struct {
	UpcomingEvents      []domain.Event `json:"upcoming_events"`
	HotEvents           []domain.Event `json:"hot_events"`
	NewPostsEvents      []domain.Event `json:"new_posts_events"`
	UnreadNotifications int32          `json:"unread_notifications"`
}

type EventService interface {
	Create(ctx context.Context, actor domain.Actor, input EventCreateInput) (*domain.Event, error)
	Update(ctx context.Context, actor domain.Actor, eventID int32, input EventUpdateInput) (*domain.Event, error)
	AdminReview(ctx context.Context, actor domain.Actor, eventID int32, action string) (*domain.Event, error)
	Close(ctx context.Context, actor domain.Actor, eventID int32, action string) (*domain.Event, error)
	Delete(ctx context.Context, actor domain.Actor, eventID int32) error
	List(ctx context.Context, actor domain.Actor, filter repository.EventFilter, page, pageSize int32) ([]EventDetail, int32, error)
	GetDetail(ctx context.Context, actor domain.Actor, eventID int32) (*EventDetail, error)
	Dashboard(ctx context.Context, actor domain.Actor) (*Dashboard, error)
	Export(ctx context.Context, actor domain.Actor, format string) (string, error)
}

// RegistrationDetail joins a registration with its volunteer for manager
// listings.
type RegistrationDetail struct {
	domain.EventRegistration
	EventTitle    string `json:"event_title"`
	VolunteerName string `json:"volunteer_name"`
	Email         string `json:"email"`
}

type RegistrationService interface {
	Register(ctx context.Context, actor domain.Actor, eventID int32) (*domain.EventRegistration, error)
	Cancel(ctx context.Context, actor domain.Actor, eventID int32) (*domain.EventRegistration, error)
	ApproveOrReject(ctx context.Context, actor domain.Actor, regID int32, action string) (*domain.EventRegistration, error)
	MyRegistrations(ctx context.Context, actor domain.Actor) ([]domain.EventRegistration, error)
	ListByEvent(ctx context.Context, actor domain.Actor, eventID int32) ([]RegistrationDetail, error)
}

type SignupInput struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (access, refresh string, user *domain.User, err error)
	Refresh(ctx context.Context, refreshToken string) (access, refresh string, err error)
}

type AdminService interface {
	ListUsers(ctx context.Context, actor domain.Actor) ([]domain.User, error)
	SetUserLock(ctx context.Context, actor domain.Actor, email string, lock bool) error
	ChangeUserRole(ctx context.Context, actor domain.Actor, email string, role string) error
	ExportUsersByRole(ctx context.Context, actor domain.Actor, role string) (string, error)
	CreateCategory(ctx context.Context, actor domain.Actor, name string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

type PostService interface {
	CreatePost(ctx context.Context, actor domain.Actor, eventID int32, content string) (*domain.Post, error)
	AddComment(ctx context.Context, actor domain.Actor, postID int32, content string) (*domain.Comment, error)
	ToggleLike(ctx context.Context, actor domain.Actor, postID int32) (bool, error)
	ListPostsByEvent(ctx context.Context, eventID int32) ([]domain.Post, error)
	ListComments(ctx context.Context, postID int32) ([]domain.Comment, error)
}

type NotificationService interface {
	List(ctx context.Context, actor domain.Actor, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, actor domain.Actor, notificationID int32) error
	CountUnread(ctx context.Context, actor domain.Actor) (int32, error)
}

// Notifier delivers a message to a user. Delivery is best-effort and
// at-most-once: implementations never return an error to the caller and a
// failed delivery never rolls back the state change that triggered it.
type Notifier interface {
	Notify(ctx context.Context, userID int32, message string)
}

// EmailSender is one optional delivery channel behind the Notifier.
type EmailSender interface {
	Send(ctx context.Context, toEmail, toName, subject, body string) error
}

// PushSender is one optional delivery channel behind the Notifier.
type PushSender interface {
	Send(ctx context.Context, userID int32, message string) error
}

// Clock lets tests pin "now" for the time-window rules.
type Clock func() time.Time
