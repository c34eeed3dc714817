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

func newRegistrationService(regRepo *MockRegistrationRepo, eventRepo *MockEventRepo, userRepo *MockUserRepo, notifier *MockNotifier) service.RegistrationService {
	return service.NewRegistrationService(regRepo, eventRepo, userRepo, notifier, domain.CancelCutoff, fixedClock(testNow))
}

func TestRegistrationService_Register(t *testing.T) {
	ctx := context.Background()
	volunteer := domain.Actor{ID: 3, Role: domain.RoleVolunteer}

	approvedEvent := &domain.Event{
		ID:        5,
		Title:     "Beach Cleanup",
		CreatedBy: 10,
		Status:    domain.EventStatusApproved,
		StartAt:   testNow.Add(72 * time.Hour),
	}

	t.Run("Success", func(t *testing.T) {
		regRepo := new(MockRegistrationRepo)
		eventRepo := new(MockEventRepo)
		userRepo := new(MockUserRepo)
		notifier := new(MockNotifier)
		svc := newRegistrationService(regRepo, eventRepo, userRepo, notifier)

		eventRepo.On("GetByID", ctx, int32(5)).Return(approvedEvent, nil)
		regRepo.On("Create", ctx, mock.AnythingOfType("*domain.EventRegistration")).Return(nil)
		userRepo.On("GetByID", ctx, volunteer.ID).Return(&domain.User{ID: 3, FullName: "An Nguyen"}, nil)
		notifier.On("Notify", ctx, volunteer.ID, mock.AnythingOfType("string")).Return()
		notifier.On("Notify", ctx, int32(10), mock.AnythingOfType("string")).Return()

		reg, err := svc.Register(ctx, volunteer, 5)
		assert.NoError(t, err)
		assert.Equal(t, domain.RegistrationStatusPending, reg.Status)
		assert.Equal(t, volunteer.ID, reg.UserID)
		notifier.AssertExpectations(t)
	})

	t.Run("Manager cannot register", func(t *testing.T) {
		svc := newRegistrationService(new(MockRegistrationRepo), new(MockEventRepo), new(MockUserRepo), new(MockNotifier))

		manager := domain.Actor{ID: 10, Role: domain.RoleManager}
		reg, err := svc.Register(ctx, manager, 5)
		assert.Nil(t, reg)
		assert.True(t, domain.IsKind(err, domain.KindForbidden))
	})

	t.Run("Event not approved", func(t *testing.T) {
		eventRepo := new(MockEventRepo)
		svc := newRegistrationService(new(MockRegistrationRepo), eventRepo, new(MockUserRepo), new(MockNotifier))

		pending := *approvedEvent
		pending.Status = domain.EventStatusPending
		eventRepo.On("GetByID", ctx, int32(5)).Return(&pending, nil)

		reg, err := svc.Register(ctx, volunteer, 5)
		assert.Nil(t, reg)
		assert.True(t, domain.IsKind(err, domain.KindInvalidState))
	})

	t.Run("Duplicate registration conflicts", func(t *testing.T) {
		regRepo := new(MockRegistrationRepo)
		eventRepo := new(MockEventRepo)
		svc := newRegistrationService(regRepo, eventRepo, new(MockUserRepo), new(MockNotifier))

		eventRepo.On("GetByID", ctx, int32(5)).Return(approvedEvent, nil)
		regRepo.On("Create", ctx, mock.AnythingOfType("*domain.EventRegistration")).
			Return(domain.Conflict("USER_ALREADY_REGISTERED_EVENT", "already registered"))

		reg, err := svc.Register(ctx, volunteer, 5)
		assert.Nil(t, reg)
		assert.True(t, domain.IsKind(err, domain.KindConflict))
	})
}

func TestRegistrationService_Cancel(t *testing.T) {
	ctx := context.Background()
	volunteer := domain.Actor{ID: 3, Role: domain.RoleVolunteer}

	eventStartingIn := func(d time.Duration) *domain.Event {
		return &domain.Event{ID: 5, Title: "Beach Cleanup", CreatedBy: 10, Status: domain.EventStatusApproved, StartAt: testNow.Add(d)}
	}

	t.Run("Approved registration outside the window", func(t *testing.T) {
		regRepo := new(MockRegistrationRepo)
		eventRepo := new(MockEventRepo)
		notifier := new(MockNotifier)
		svc := newRegistrationService(regRepo, eventRepo, new(MockUserRepo), notifier)

		eventRepo.On("GetByID", ctx, int32(5)).Return(eventStartingIn(72*time.Hour), nil)
		regRepo.On("GetByUserAndEvent", ctx, volunteer.ID, int32(5)).
			Return(&domain.EventRegistration{ID: 9, UserID: 3, EventID: 5, Status: domain.RegistrationStatusApproved}, nil)
		regRepo.On("Update", ctx, mock.AnythingOfType("*domain.EventRegistration")).Return(nil)
		notifier.On("Notify", ctx, volunteer.ID, mock.AnythingOfType("string")).Return()

		reg, err := svc.Cancel(ctx, volunteer, 5)
		assert.NoError(t, err)
		assert.Equal(t, domain.RegistrationStatusCancelled, reg.Status)
		assert.NotNil(t, reg.CancelAt)
		assert.Equal(t, testNow, *reg.CancelAt)
	})

	t.Run("Approved registration inside the window", func(t *testing.T) {
		regRepo := new(MockRegistrationRepo)
		eventRepo := new(MockEventRepo)
		svc := newRegistrationService(regRepo, eventRepo, new(MockUserRepo), new(MockNotifier))

		eventRepo.On("GetByID", ctx, int32(5)).Return(eventStartingIn(12*time.Hour), nil)
		regRepo.On("GetByUserAndEvent", ctx, volunteer.ID, int32(5)).
			Return(&domain.EventRegistration{ID: 9, UserID: 3, EventID: 5, Status: domain.RegistrationStatusApproved}, nil)

		reg, err := svc.Cancel(ctx, volunteer, 5)
		assert.Nil(t, reg)
		assert.True(t, domain.IsKind(err, domain.KindInvalidState))
		var de *domain.Error
		assert.ErrorAs(t, err, &de)
		assert.Equal(t, "CANCELLATION_TOO_LATE", de.Code)
	})

	t.Run("Pending registration inside the window still cancels", func(t *testing.T) {
		regRepo := new(MockRegistrationRepo)
		eventRepo := new(MockEventRepo)
		notifier := new(MockNotifier)
		svc := newRegistrationService(regRepo, eventRepo, new(MockUserRepo), notifier)

		eventRepo.On("GetByID", ctx, int32(5)).Return(eventStartingIn(time.Hour), nil)
		regRepo.On("GetByUserAndEvent", ctx, volunteer.ID, int32(5)).
			Return(&domain.EventRegistration{ID: 9, UserID: 3, EventID: 5, Status: domain.RegistrationStatusPending}, nil)
		regRepo.On("Update", ctx, mock.AnythingOfType("*domain.EventRegistration")).Return(nil)
		notifier.On("Notify", ctx, volunteer.ID, mock.AnythingOfType("string")).Return()

		reg, err := svc.Cancel(ctx, volunteer, 5)
		assert.NoError(t, err)
		assert.Equal(t, domain.RegistrationStatusCancelled, reg.Status)
	})

	t.Run("Rejected registration is not cancellable", func(t *testing.T) {
		regRepo := new(MockRegistrationRepo)
		eventRepo := new(MockEventRepo)
		svc := newRegistrationService(regRepo, eventRepo, new(MockUserRepo), new(MockNotifier))

		eventRepo.On("GetByID", ctx, int32(5)).Return(eventStartingIn(72*time.Hour), nil)
		regRepo.On("GetByUserAndEvent", ctx, volunteer.ID, int32(5)).
			Return(&domain.EventRegistration{ID: 9, UserID: 3, EventID: 5, Status: domain.RegistrationStatusRejected}, nil)

		reg, err := svc.Cancel(ctx, volunteer, 5)
		assert.Nil(t, reg)
		assert.True(t, domain.IsKind(err, domain.KindInvalidState))
	})
}

func TestRegistrationService_ApproveOrReject(t *testing.T) {
	ctx := context.Background()
	owner := domain.Actor{ID: 10, Role: domain.RoleManager}

	event := &domain.Event{ID: 5, Title: "Beach Cleanup", CreatedBy: 10, Status: domain.EventStatusApproved}
	pendingReg := func() *domain.EventRegistration {
		return &domain.EventRegistration{ID: 9, UserID: 3, EventID: 5, Status: domain.RegistrationStatusPending}
	}

	t.Run("Approve stamps the reviewer", func(t *testing.T) {
		regRepo := new(MockRegistrationRepo)
		eventRepo := new(MockEventRepo)
		notifier := new(MockNotifier)
		svc := newRegistrationService(regRepo, eventRepo, new(MockUserRepo), notifier)

		regRepo.On("GetByID", ctx, int32(9)).Return(pendingReg(), nil)
		eventRepo.On("GetByID", ctx, int32(5)).Return(event, nil)
		regRepo.On("Review", ctx, mock.AnythingOfType("*domain.EventRegistration")).Return(nil)
		notifier.On("Notify", ctx, int32(3), mock.AnythingOfType("string")).Return()

		reg, err := svc.ApproveOrReject(ctx, owner, 9, "APPROVE")
		assert.NoError(t, err)
		assert.Equal(t, domain.RegistrationStatusApproved, reg.Status)
		assert.NotNil(t, reg.ApprovedBy)
		assert.Equal(t, owner.ID, *reg.ApprovedBy)
	})

	t.Run("Non-owner manager is forbidden", func(t *testing.T) {
		regRepo := new(MockRegistrationRepo)
		eventRepo := new(MockEventRepo)
		svc := newRegistrationService(regRepo, eventRepo, new(MockUserRepo), new(MockNotifier))

		regRepo.On("GetByID", ctx, int32(9)).Return(pendingReg(), nil)
		eventRepo.On("GetByID", ctx, int32(5)).Return(event, nil)

		other := domain.Actor{ID: 11, Role: domain.RoleManager}
		reg, err := svc.ApproveOrReject(ctx, other, 9, "APPROVE")
		assert.Nil(t, reg)
		assert.True(t, domain.IsKind(err, domain.KindForbidden))
	})

	t.Run("Closed event freezes its registrations", func(t *testing.T) {
		regRepo := new(MockRegistrationRepo)
		eventRepo := new(MockEventRepo)
		svc := newRegistrationService(regRepo, eventRepo, new(MockUserRepo), new(MockNotifier))

		completed := *event
		completed.Status = domain.EventStatusCompleted
		regRepo.On("GetByID", ctx, int32(9)).Return(pendingReg(), nil)
		eventRepo.On("GetByID", ctx, int32(5)).Return(&completed, nil)

		reg, err := svc.ApproveOrReject(ctx, owner, 9, "APPROVE")
		assert.Nil(t, reg)
		assert.True(t, domain.IsKind(err, domain.KindInvalidState))
	})

	t.Run("Event completed between read and write surfaces InvalidState", func(t *testing.T) {
		regRepo := new(MockRegistrationRepo)
		eventRepo := new(MockEventRepo)
		notifier := new(MockNotifier)
		svc := newRegistrationService(regRepo, eventRepo, new(MockUserRepo), notifier)

		regRepo.On("GetByID", ctx, int32(9)).Return(pendingReg(), nil)
		eventRepo.On("GetByID", ctx, int32(5)).Return(event, nil)
		regRepo.On("Review", ctx, mock.AnythingOfType("*domain.EventRegistration")).
			Return(domain.InvalidState("EVENT_NOT_APPROVED", "the event is no longer open"))

		reg, err := svc.ApproveOrReject(ctx, owner, 9, "APPROVE")
		assert.Nil(t, reg)
		assert.True(t, domain.IsKind(err, domain.KindInvalidState))
		notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Resolved registration cannot be re-reviewed", func(t *testing.T) {
		regRepo := new(MockRegistrationRepo)
		eventRepo := new(MockEventRepo)
		svc := newRegistrationService(regRepo, eventRepo, new(MockUserRepo), new(MockNotifier))

		resolved := pendingReg()
		resolved.Status = domain.RegistrationStatusRejected
		regRepo.On("GetByID", ctx, int32(9)).Return(resolved, nil)
		eventRepo.On("GetByID", ctx, int32(5)).Return(event, nil)

		reg, err := svc.ApproveOrReject(ctx, owner, 9, "APPROVE")
		assert.Nil(t, reg)
		assert.True(t, domain.IsKind(err, domain.KindInvalidState))
	})

	t.Run("Unknown action", func(t *testing.T) {
		regRepo := new(MockRegistrationRepo)
		eventRepo := new(MockEventRepo)
		svc := newRegistrationService(regRepo, eventRepo, new(MockUserRepo), new(MockNotifier))

		regRepo.On("GetByID", ctx, int32(9)).Return(pendingReg(), nil)
		eventRepo.On("GetByID", ctx, int32(5)).Return(event, nil)

		reg, err := svc.ApproveOrReject(ctx, owner, 9, "maybe")
		assert.Nil(t, reg)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
	})
}

func TestRegistrationService_ListByEvent(t *testing.T) {
	ctx := context.Background()
	owner := domain.Actor{ID: 10, Role: domain.RoleManager}

	event := &domain.Event{ID: 5, Title: "Beach Cleanup", CreatedBy: 10}

	t.Run("Owner sees volunteer details", func(t *testing.T) {
		regRepo := new(MockRegistrationRepo)
		eventRepo := new(MockEventRepo)
		userRepo := new(MockUserRepo)
		svc := newRegistrationService(regRepo, eventRepo, userRepo, new(MockNotifier))

		eventRepo.On("GetByID", ctx, int32(5)).Return(event, nil)
		regRepo.On("ListByEvent", ctx, int32(5)).Return([]domain.EventRegistration{
			{ID: 9, UserID: 3, EventID: 5, Status: domain.RegistrationStatusPending},
		}, nil)
		userRepo.On("GetByID", ctx, int32(3)).Return(&domain.User{ID: 3, FullName: "An Nguyen", Email: "an@test.com"}, nil)

		details, err := svc.ListByEvent(ctx, owner, 5)
		assert.NoError(t, err)
		assert.Len(t, details, 1)
		assert.Equal(t, "An Nguyen", details[0].VolunteerName)
		assert.Equal(t, "Beach Cleanup", details[0].EventTitle)
	})

	t.Run("Non-owner is forbidden", func(t *testing.T) {
		regRepo := new(MockRegistrationRepo)
		eventRepo := new(MockEventRepo)
		svc := newRegistrationService(regRepo, eventRepo, new(MockUserRepo), new(MockNotifier))

		eventRepo.On("GetByID", ctx, int32(5)).Return(event, nil)

		other := domain.Actor{ID: 11, Role: domain.RoleManager}
		details, err := svc.ListByEvent(ctx, other, 5)
		assert.Nil(t, details)
		assert.True(t, domain.IsKind(err, domain.KindForbidden))
	})
}
