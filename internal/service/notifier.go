package service

import (
	"context"

	"volunhub-backend/internal/domain"
	"volunhub-backend/internal/logger"
	"volunhub-backend/internal/repository"
)

// notifier fans one message out to the notification store and the optional
// email and push channels. Failures are logged and dropped; nothing here may
// fail the state change that triggered the notification.
type notifier struct {
	noteRepo repository.NotificationRepository
	userRepo repository.UserRepository
	email    EmailSender
	push     PushSender
}

// NewNotifier builds the best-effort notification fan-out. email and push may
// be nil when the corresponding channel is not configured.
func NewNotifier(noteRepo repository.NotificationRepository, userRepo repository.UserRepository, email EmailSender, push PushSender) Notifier {
	return &notifier{
		noteRepo: noteRepo,
		userRepo: userRepo,
		email:    email,
		push:     push,
	}
}

func (n *notifier) Notify(ctx context.Context, userID int32, message string) {
	note := &domain.Notification{
		UserID:  userID,
		Message: message,
	}
	if err := n.noteRepo.Create(ctx, note); err != nil {
		logger.Error("Failed to store notification", "user_id", userID, "error", err)
	}

	if n.email != nil {
		user, err := n.userRepo.GetByID(ctx, userID)
		if err != nil {
			logger.Error("Failed to load notification recipient", "user_id", userID, "error", err)
		} else if err := n.email.Send(ctx, user.Email, user.FullName, "VolunHub notification", message); err != nil {
			logger.Error("Failed to send notification email", "user_id", userID, "error", err)
		}
	}

	if n.push != nil {
		if err := n.push.Send(ctx, userID, message); err != nil {
			logger.Error("Failed to send push notification", "user_id", userID, "error", err)
		}
	}
}

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) List(ctx context.Context, actor domain.Actor, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	return s.noteRepo.List(ctx, actor.ID, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, actor domain.Actor, notificationID int32) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID, actor.ID)
}

func (s *notificationService) CountUnread(ctx context.Context, actor domain.Actor) (int32, error) {
	return s.noteRepo.CountUnread(ctx, actor.ID)
}
