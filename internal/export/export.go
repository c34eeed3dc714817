package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"volunhub-backend/internal/domain"
)

// EventsCSV renders all events with their registration counts.
func EventsCSV(events []domain.Event, registrationCounts map[int32]int32) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	_ = w.Write([]string{"ID", "Title", "City", "Status", "Registrations"})
	for _, e := range events {
		_ = w.Write([]string{
			fmt.Sprintf("%d", e.ID),
			e.Title,
			e.City,
			string(e.Status),
			fmt.Sprintf("%d", registrationCounts[e.ID]),
		})
	}
	w.Flush()
	return sb.String()
}

type eventExportRow struct {
	ID            int32              `json:"id"`
	Title         string             `json:"title"`
	City          string             `json:"city"`
	Status        domain.EventStatus `json:"status"`
	Registrations int32              `json:"registrations"`
}

// EventsJSON renders the same projection as EventsCSV as a JSON array.
func EventsJSON(events []domain.Event, registrationCounts map[int32]int32) (string, error) {
	rows := make([]eventExportRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, eventExportRow{
			ID:            e.ID,
			Title:         e.Title,
			City:          e.City,
			Status:        e.Status,
			Registrations: registrationCounts[e.ID],
		})
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// UsersCSV renders a user roster for offline coordination.
func UsersCSV(users []domain.User) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	_ = w.Write([]string{"Full name", "Email", "Phone number"})
	for _, u := range users {
		_ = w.Write([]string{u.FullName, u.Email, u.PhoneNumber})
	}
	w.Flush()
	return sb.String()
}
