package service

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// fcmSender delivers web push notifications through Firebase Cloud Messaging.
// Clients subscribe to their own per-user topic after login, so no device
// token bookkeeping is needed server-side.
type fcmSender struct {
	client *messaging.Client
}

// NewFCMSender initializes the Firebase push channel from a service account
// credentials file.
func NewFCMSender(ctx context.Context, credentialsFile string) (PushSender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fcm client: %w", err)
	}
	return &fcmSender{client: client}, nil
}

func (s *fcmSender) Send(ctx context.Context, userID int32, message string) error {
	msg := &messaging.Message{
		Topic: fmt.Sprintf("user-%d", userID),
		Notification: &messaging.Notification{
			Title: "VolunHub",
			Body:  message,
		},
	}
	if _, err := s.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send push message: %w", err)
	}
	return nil
}
