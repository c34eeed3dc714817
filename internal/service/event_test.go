package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"volunhub-backend/internal/domain"
	"volunhub-backend/internal/service"
)

func fixedClock(t time.Time) service.Clock {
	return func() time.Time { return t }
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newEventService(eventRepo *MockEventRepo, categoryRepo *MockCategoryRepo, userRepo *MockUserRepo, regRepo *MockRegistrationRepo, noteRepo *MockNotificationRepo, notifier *MockNotifier) service.EventService {
	return service.NewEventService(eventRepo, categoryRepo, userRepo, regRepo, noteRepo, notifier, fixedClock(testNow))
}

func TestEventService_Create(t *testing.T) {
	ctx := context.Background()
	manager := domain.Actor{ID: 10, Role: domain.RoleManager}

	input := service.EventCreateInput{
		Title:      "Beach Cleanup",
		CategoryID: 1,
		Address:    "12 Shore Rd",
		City:       "Da Nang",
		StartAt:    testNow.Add(48 * time.Hour).Format(time.RFC3339),
		EndAt:      testNow.Add(52 * time.Hour).Format(time.RFC3339),
	}

	t.Run("Success", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		categoryRepo := new(MockCategoryRepo)
		notifier := new(MockNotifier)
		svc := newEventService(eventRepo, categoryRepo, new(MockUserRepo), new(MockRegistrationRepo), new(MockNotificationRepo), notifier)

		categoryRepo.On("GetByID", ctx, int32(1)).Return(&domain.Category{ID: 1, Name: "Environment"}, nil)
		eventRepo.On("Create", ctx, mock.AnythingOfType("*domain.Event")).Return(nil)
		notifier.On("Notify", ctx, manager.ID, mock.AnythingOfType("string")).Return()

		event, err := svc.Create(ctx, manager, input)
		assert.NoError(t, err)
		assert.Equal(t, domain.EventStatusPending, event.Status)
		assert.Equal(t, manager.ID, event.CreatedBy)
		eventRepo.AssertExpectations(t)
	})

	t.Run("Volunteer is forbidden", func(t *testing.T) {
		svc := newEventService(new(MockEventRepo), new(MockCategoryRepo), new(MockUserRepo), new(MockRegistrationRepo), new(MockNotificationRepo), new(MockNotifier))

		volunteer := domain.Actor{ID: 3, Role: domain.RoleVolunteer}
		event, err := svc.Create(ctx, volunteer, input)
		assert.Nil(t, event)
		assert.True(t, domain.IsKind(err, domain.KindForbidden))
	})

	t.Run("Start in the past", func(t *testing.T) {
		svc := newEventService(new(MockEventRepo), new(MockCategoryRepo), new(MockUserRepo), new(MockRegistrationRepo), new(MockNotificationRepo), new(MockNotifier))

		past := input
		past.StartAt = testNow.Add(-time.Hour).Format(time.RFC3339)
		event, err := svc.Create(ctx, manager, past)
		assert.Nil(t, event)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})

	t.Run("End before start", func(t *testing.T) {
		svc := newEventService(new(MockEventRepo), new(MockCategoryRepo), new(MockUserRepo), new(MockRegistrationRepo), new(MockNotificationRepo), new(MockNotifier))

		bad := input
		bad.EndAt = testNow.Add(47 * time.Hour).Format(time.RFC3339)
		event, err := svc.Create(ctx, manager, bad)
		assert.Nil(t, event)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})

	t.Run("Malformed timestamp", func(t *testing.T) {
		svc := newEventService(new(MockEventRepo), new(MockCategoryRepo), new(MockUserRepo), new(MockRegistrationRepo), new(MockNotificationRepo), new(MockNotifier))

		bad := input
		bad.StartAt = "next tuesday"
		event, err := svc.Create(ctx, manager, bad)
		assert.Nil(t, event)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})
}

func TestEventService_Update(t *testing.T) {
	ctx := context.Background()
	owner := domain.Actor{ID: 10, Role: domain.RoleManager}

	pendingEvent := func() *domain.Event {
		return &domain.Event{
			ID:        5,
			Title:     "Beach Cleanup",
			CreatedBy: 10,
			Status:    domain.EventStatusPending,
			StartAt:   testNow.Add(48 * time.Hour),
			EndAt:     testNow.Add(52 * time.Hour),
		}
	}

	t.Run("Owner edits pending event", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockCategoryRepo), new(MockUserRepo), new(MockRegistrationRepo), new(MockNotificationRepo), new(MockNotifier))

		eventRepo.On("GetByID", ctx, int32(5)).Return(pendingEvent(), nil)
		eventRepo.On("Update", ctx, mock.AnythingOfType("*domain.Event")).Return(nil)

		title := "Beach Cleanup (extended)"
		event, err := svc.Update(ctx, owner, 5, service.EventUpdateInput{Title: &title})
		assert.NoError(t, err)
		assert.Equal(t, title, event.Title)
	})

	t.Run("Non-owner manager is forbidden", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockCategoryRepo), new(MockUserRepo), new(MockRegistrationRepo), new(MockNotificationRepo), new(MockNotifier))

		eventRepo.On("GetByID", ctx, int32(5)).Return(pendingEvent(), nil)

		other := domain.Actor{ID: 11, Role: domain.RoleManager}
		title := "hijacked"
		event, err := svc.Update(ctx, other, 5, service.EventUpdateInput{Title: &title})
		assert.Nil(t, event)
		assert.True(t, domain.IsKind(err, domain.KindForbidden))
	})

	t.Run("Approved event is not editable", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockCategoryRepo), new(MockUserRepo), new(MockRegistrationRepo), new(MockNotificationRepo), new(MockNotifier))

		approved := pendingEvent()
		approved.Status = domain.EventStatusApproved
		eventRepo.On("GetByID", ctx, int32(5)).Return(approved, nil)

		title := "too late"
		event, err := svc.Update(ctx, owner, 5, service.EventUpdateInput{Title: &title})
		assert.Nil(t, event)
		assert.True(t, domain.IsKind(err, domain.KindInvalidState))
	})

	t.Run("Blank optional field keeps old value", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockCategoryRepo), new(MockUserRepo), new(MockRegistrationRepo), new(MockNotificationRepo), new(MockNotifier))

		eventRepo.On("GetByID", ctx, int32(5)).Return(pendingEvent(), nil)
		eventRepo.On("Update", ctx, mock.AnythingOfType("*domain.Event")).Return(nil)

		blank := ""
		event, err := svc.Update(ctx, owner, 5, service.EventUpdateInput{Title: &blank})
		assert.NoError(t, err)
		assert.Equal(t, "Beach Cleanup", event.Title)
	})
}

func TestEventService_AdminReview(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: 1, Role: domain.RoleAdmin}

	pendingEvent := func() *domain.Event {
		return &domain.Event{ID: 5, Title: "Beach Cleanup", CreatedBy: 10, Status: domain.EventStatusPending}
	}

	t.Run("Approve", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		notifier := new(MockNotifier)
		svc := newEventService(eventRepo, new(MockCategoryRepo), new(MockUserRepo), new(MockRegistrationRepo), new(MockNotificationRepo), notifier)

		eventRepo.On("GetByID", ctx, int32(5)).Return(pendingEvent(), nil)
		eventRepo.On("Update", ctx, mock.AnythingOfType("*domain.Event")).Return(nil)
		notifier.On("Notify", ctx, int32(10), mock.AnythingOfType("string")).Return()

		event, err := svc.AdminReview(ctx, admin, 5, "approve")
		assert.NoError(t, err)
		assert.Equal(t, domain.EventStatusApproved, event.Status)
		notifier.AssertExpectations(t)
	})

	t.Run("Manager cannot review", func(t *testing.T) {
		svc := newEventService(new(MockEventRepo), new(MockCategoryRepo), new(MockUserRepo), new(MockRegistrationRepo), new(MockNotificationRepo), new(MockNotifier))

		manager := domain.Actor{ID: 10, Role: domain.RoleManager}
		event, err := svc.AdminReview(ctx, manager, 5, "APPROVE")
		assert.Nil(t, event)
		assert.True(t, domain.IsKind(err, domain.KindForbidden))
	})

	t.Run("Already reviewed", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockCategoryRepo), new(MockUserRepo), new(MockRegistrationRepo), new(MockNotificationRepo), new(MockNotifier))

		approved := pendingEvent()
		approved.Status = domain.EventStatusApproved
		eventRepo.On("GetByID", ctx, int32(5)).Return(approved, nil)

		event, err := svc.AdminReview(ctx, admin, 5, "REJECT")
		assert.Nil(t, event)
		assert.True(t, domain.IsKind(err, domain.KindInvalidState))
	})

	t.Run("Unknown action", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockCategoryRepo), new(MockUserRepo), new(MockRegistrationRepo), new(MockNotificationRepo), new(MockNotifier))

		eventRepo.On("GetByID", ctx, int32(5)).Return(pendingEvent(), nil)

		event, err := svc.AdminReview(ctx, admin, 5, "postpone")
		assert.Nil(t, event)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})
}

func TestEventService_Close(t *testing.T) {
	ctx := context.Background()
	owner := domain.Actor{ID: 10, Role: domain.RoleManager}

	approvedEvent := func() *domain.Event {
		return &domain.Event{ID: 5, Title: "Beach Cleanup", CreatedBy: 10, Status: domain.EventStatusApproved}
	}

	t.Run("Complete sweeps registrations", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		notifier := new(MockNotifier)
		svc := newEventService(eventRepo, new(MockCategoryRepo), new(MockUserRepo), new(MockRegistrationRepo), new(MockNotificationRepo), notifier)

		eventRepo.On("GetByID", ctx, int32(5)).Return(approvedEvent(), nil)
		eventRepo.On("Complete", ctx, int32(5)).Return(int32(3), nil)
		notifier.On("Notify", ctx, int32(10), mock.AnythingOfType("string")).Return()

		event, err := svc.Close(ctx, owner, 5, "COMPLETE")
		assert.NoError(t, err)
		assert.Equal(t, domain.EventStatusCompleted, event.Status)
		eventRepo.AssertExpectations(t)
	})

	t.Run("Cancel pending event", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		notifier := new(MockNotifier)
		svc := newEventService(eventRepo, new(MockCategoryRepo), new(MockUserRepo), new(MockRegistrationRepo), new(MockNotificationRepo), notifier)

		pending := approvedEvent()
		pending.Status = domain.EventStatusPending
		eventRepo.On("GetByID", ctx, int32(5)).Return(pending, nil)
		eventRepo.On("Update", ctx, mock.AnythingOfType("*domain.Event")).Return(nil)
		notifier.On("Notify", ctx, int32(10), mock.AnythingOfType("string")).Return()

		event, err := svc.Close(ctx, owner, 5, "cancel")
		assert.NoError(t, err)
		assert.Equal(t, domain.EventStatusCancelled, event.Status)
	})

	t.Run("Completed event cannot be cancelled", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockCategoryRepo), new(MockUserRepo), new(MockRegistrationRepo), new(MockNotificationRepo), new(MockNotifier))

		done := approvedEvent()
		done.Status = domain.EventStatusCompleted
		eventRepo.On("GetByID", ctx, int32(5)).Return(done, nil)

		event, err := svc.Close(ctx, owner, 5, "CANCEL")
		assert.Nil(t, event)
		assert.True(t, domain.IsKind(err, domain.KindInvalidState))
		var de *domain.Error
		assert.ErrorAs(t, err, &de)
		assert.Equal(t, "EVENT_NOT_CANCELLABLE", de.Code)
	})

	t.Run("Ownership beats bad action", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockCategoryRepo), new(MockUserRepo), new(MockRegistrationRepo), new(MockNotificationRepo), new(MockNotifier))

		eventRepo.On("GetByID", ctx, int32(5)).Return(approvedEvent(), nil)

		other := domain.Actor{ID: 11, Role: domain.RoleManager}
		event, err := svc.Close(ctx, other, 5, "garbage")
		assert.Nil(t, event)
		assert.True(t, domain.IsKind(err, domain.KindForbidden))
	})
}

func TestEventService_Delete(t *testing.T) {
	ctx := context.Background()
	owner := domain.Actor{ID: 10, Role: domain.RoleManager}

	t.Run("Success with no registrations", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockCategoryRepo), new(MockUserRepo), new(MockRegistrationRepo), new(MockNotificationRepo), new(MockNotifier))

		eventRepo.On("GetByID", ctx, int32(5)).Return(&domain.Event{ID: 5, CreatedBy: 10, Status: domain.EventStatusPending}, nil)
		eventRepo.On("CountRegistrations", ctx, int32(5)).Return(int32(0), nil)
		eventRepo.On("Delete", ctx, int32(5)).Return(nil)

		assert.NoError(t, svc.Delete(ctx, owner, 5))
		eventRepo.AssertExpectations(t)
	})

	t.Run("Refused when registrations exist", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockCategoryRepo), new(MockUserRepo), new(MockRegistrationRepo), new(MockNotificationRepo), new(MockNotifier))

		eventRepo.On("GetByID", ctx, int32(5)).Return(&domain.Event{ID: 5, CreatedBy: 10, Status: domain.EventStatusApproved}, nil)
		eventRepo.On("CountRegistrations", ctx, int32(5)).Return(int32(2), nil)

		err := svc.Delete(ctx, owner, 5)
		assert.True(t, domain.IsKind(err, domain.KindInvalidState))
	})
}

func TestEventService_Dashboard(t *testing.T) {
	ctx := context.Background()
	actor := domain.Actor{ID: 3, Role: domain.RoleVolunteer}

	eventRepo := new(MockEventRepo)
	noteRepo := new(MockNotificationRepo)
	svc := newEventService(eventRepo, new(MockCategoryRepo), new(MockUserRepo), new(MockRegistrationRepo), noteRepo, new(MockNotifier))

	upcoming := []domain.Event{{ID: 1}}
	hot := []domain.Event{{ID: 2}}
	posted := []domain.Event{{ID: 3}}
	eventRepo.On("ListUpcoming", ctx, int32(5)).Return(upcoming, nil)
	eventRepo.On("ListMostRegistered", ctx, int32(5)).Return(hot, nil)
	eventRepo.On("ListRecentlyPosted", ctx, int32(5)).Return(posted, nil)
	noteRepo.On("CountUnread", ctx, actor.ID).Return(int32(4), nil)

	dashboard, err := svc.Dashboard(ctx, actor)
	assert.NoError(t, err)
	assert.Equal(t, upcoming, dashboard.UpcomingEvents)
	assert.Equal(t, hot, dashboard.HotEvents)
	assert.Equal(t, posted, dashboard.NewPostsEvents)
	assert.Equal(t, int32(4), dashboard.UnreadNotifications)
}

func TestEventService_Export(t *testing.T) {
	ctx := context.Background()
	manager := domain.Actor{ID: 10, Role: domain.RoleManager}

	t.Run("CSV includes header and rows", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockCategoryRepo), new(MockUserRepo), new(MockRegistrationRepo), new(MockNotificationRepo), new(MockNotifier))

		eventRepo.On("ListAll", ctx).Return([]domain.Event{{ID: 1, Title: "Beach Cleanup", City: "Da Nang", Status: domain.EventStatusApproved}}, nil)
		eventRepo.On("CountRegistrations", ctx, int32(1)).Return(int32(7), nil)

		data, err := svc.Export(ctx, manager, "csv")
		assert.NoError(t, err)
		assert.Contains(t, data, "Beach Cleanup")
		assert.Contains(t, data, "7")
	})

	t.Run("Volunteer is forbidden", func(t *testing.T) {
		svc := newEventService(new(MockEventRepo), new(MockCategoryRepo), new(MockUserRepo), new(MockRegistrationRepo), new(MockNotificationRepo), new(MockNotifier))

		volunteer := domain.Actor{ID: 3, Role: domain.RoleVolunteer}
		_, err := svc.Export(ctx, volunteer, "csv")
		assert.True(t, domain.IsKind(err, domain.KindForbidden))
	})

	t.Run("Unknown format", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newEventService(eventRepo, new(MockCategoryRepo), new(MockUserRepo), new(MockRegistrationRepo), new(MockNotificationRepo), new(MockNotifier))

		eventRepo.On("ListAll", ctx).Return([]domain.Event{}, nil)

		_, err := svc.Export(ctx, manager, "xml")
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})
}
