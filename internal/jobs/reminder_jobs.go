package jobs

import (
	"context"
	"fmt"
	"time"

	"volunhub-backend/internal/logger"
)

// SendEventReminders notifies approved registrants of events starting within
// the cancellation window. Each registration is reminded at most once.
func (jr *JobRunner) SendEventReminders() {
	jr.runWithRecovery("SendEventReminders", func() {
		ctx := context.Background()

		query := `
			SELECT r.id, r.user_id, e.id, e.title, e.start_at
			FROM event_registrations r
			JOIN events e ON r.event_id = e.id
			WHERE r.status = 'APPROVED'
			  AND e.status = 'APPROVED'
			  AND e.start_at > $1
			  AND e.start_at <= $2
			  AND r.reminder_sent_at IS NULL
		`

		now := time.Now().UTC()
		horizon := now.Add(jr.config.CancelCutoff())

		rows, err := jr.db.QueryContext(ctx, query, now, horizon)
		if err != nil {
			logger.Error("Failed to query upcoming registrations", "error", err)
			return
		}
		defer rows.Close()

		type reminder struct {
			regID   int32
			userID  int32
			eventID int32
			title   string
			startAt time.Time
		}

		var pending []reminder
		for rows.Next() {
			var rem reminder
			if err := rows.Scan(&rem.regID, &rem.userID, &rem.eventID, &rem.title, &rem.startAt); err != nil {
				logger.Error("Failed to scan upcoming registration", "error", err)
				continue
			}
			pending = append(pending, rem)
		}
		if err := rows.Err(); err != nil {
			logger.Error("Error iterating upcoming registrations", "error", err)
			return
		}

		count := 0
		for _, rem := range pending {
			message := fmt.Sprintf("Reminder: the event %q starts at %s. See you there!",
				rem.title, rem.startAt.Format(time.RFC1123))
			jr.notifier.Notify(ctx, rem.userID, message)

			_, err := jr.db.ExecContext(ctx,
				`UPDATE event_registrations SET reminder_sent_at = $1 WHERE id = $2`,
				now, rem.regID)
			if err != nil {
				logger.Error("Failed to mark reminder sent",
					"registration_id", rem.regID,
					"error", err)
				continue
			}

			count++
			logger.Debug("Sent event reminder",
				"registration_id", rem.regID,
				"user_id", rem.userID,
				"event_id", rem.eventID)
		}

		logger.Info("Event reminders sent", "count", count)
	})
}
