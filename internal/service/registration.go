package service

import (
	"context"
	"fmt"
	"time"

	"volunhub-backend/internal/domain"
	"volunhub-backend/internal/repository"
)

type registrationService struct {
	regRepo      repository.RegistrationRepository
	eventRepo    repository.EventRepository
	userRepo     repository.UserRepository
	notifier     Notifier
	cancelCutoff time.Duration
	now          Clock
}

func NewRegistrationService(
	regRepo repository.RegistrationRepository,
	eventRepo repository.EventRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
	cancelCutoff time.Duration,
	now Clock,
) RegistrationService {
	if cancelCutoff <= 0 {
		cancelCutoff = domain.CancelCutoff
	}
	if now == nil {
		now = time.Now
	}
	return &registrationService{
		regRepo:      regRepo,
		eventRepo:    eventRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		cancelCutoff: cancelCutoff,
		now:          now,
	}
}

func (s *registrationService) Register(ctx context.Context, actor domain.Actor, eventID int32) (*domain.EventRegistration, error) {
	if actor.Role != domain.RoleVolunteer {
		return nil, domain.Forbidden("VOLUNTEER_ROLE_REQUIRED", "only volunteers can register for events")
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != domain.EventStatusApproved {
		return nil, domain.InvalidState("EVENT_NOT_APPROVED", "the event is not open for registration")
	}

	reg := &domain.EventRegistration{
		UserID:           actor.ID,
		EventID:          eventID,
		Status:           domain.RegistrationStatusPending,
		RegistrationDate: s.now(),
	}
	// A duplicate for this (user, event) pair in any historical status is
	// rejected; the storage unique index also serializes concurrent attempts.
	if err := s.regRepo.Create(ctx, reg); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, actor.ID, fmt.Sprintf("Successfully registered for event %q", event.Title))
	if volunteer, err := s.userRepo.GetByID(ctx, actor.ID); err == nil {
		s.notifier.Notify(ctx, event.CreatedBy, fmt.Sprintf("Volunteer %s registered for your event %q", volunteer.FullName, event.Title))
	}
	return reg, nil
}

func (s *registrationService) Cancel(ctx context.Context, actor domain.Actor, eventID int32) (*domain.EventRegistration, error) {
	if actor.Role != domain.RoleVolunteer {
		return nil, domain.Forbidden("VOLUNTEER_ROLE_REQUIRED", "only volunteers can cancel registrations")
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	reg, err := s.regRepo.GetByUserAndEvent(ctx, actor.ID, eventID)
	if err != nil {
		return nil, err
	}

	if verr := reg.CheckCancellable(event.StartAt, s.now(), s.cancelCutoff); verr != nil {
		return nil, verr
	}

	cancelAt := s.now()
	reg.Status = domain.RegistrationStatusCancelled
	reg.CancelAt = &cancelAt
	if err := s.regRepo.Update(ctx, reg); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, actor.ID, fmt.Sprintf("Registration for event %q has been cancelled", event.Title))
	return reg, nil
}

func (s *registrationService) ApproveOrReject(ctx context.Context, actor domain.Actor, regID int32, action string) (*domain.EventRegistration, error) {
	if actor.Role != domain.RoleManager {
		return nil, domain.Forbidden("MANAGER_ROLE_REQUIRED", "only managers can review registrations")
	}

	reg, err := s.regRepo.GetByID(ctx, regID)
	if err != nil {
		return nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, reg.EventID)
	if err != nil {
		return nil, err
	}
	if !event.OwnedBy(actor.ID) {
		return nil, domain.Forbidden("NOT_EVENT_OWNER", "you are not the creator of this event")
	}
	// A closed event's registrations are frozen; reviewing one here would
	// leave it stranded against a terminal event.
	if event.Status != domain.EventStatusApproved {
		return nil, domain.InvalidState("EVENT_NOT_APPROVED", "registrations can only be reviewed while the event is approved")
	}

	verdict, ok := domain.ParseReviewAction(action)
	if !ok {
		return nil, domain.Validation("INVALID_ACTION", "registration action must be APPROVE or REJECT")
	}

	next := domain.RegistrationStatusApproved
	if verdict == domain.ReviewReject {
		next = domain.RegistrationStatusRejected
	}
	if !reg.Status.CanTransitionTo(next) {
		return nil, domain.InvalidState("REGISTRATION_ALREADY_RESOLVED", "only a pending registration can be approved or rejected")
	}

	approvedBy := actor.ID
	reg.Status = next
	reg.ApprovedBy = &approvedBy
	// Review re-checks the event under its row lock, so a Complete that lands
	// between the read above and this write turns into InvalidState here
	// instead of an approved registration under a closed event.
	if err := s.regRepo.Review(ctx, reg); err != nil {
		return nil, err
	}

	if next == domain.RegistrationStatusApproved {
		s.notifier.Notify(ctx, reg.UserID, fmt.Sprintf("Your registration for event %q has been approved", event.Title))
	} else {
		s.notifier.Notify(ctx, reg.UserID, fmt.Sprintf("Your registration for event %q has been rejected", event.Title))
	}
	return reg, nil
}

func (s *registrationService) MyRegistrations(ctx context.Context, actor domain.Actor) ([]domain.EventRegistration, error) {
	return s.regRepo.ListByUser(ctx, actor.ID)
}

func (s *registrationService) ListByEvent(ctx context.Context, actor domain.Actor, eventID int32) ([]RegistrationDetail, error) {
	if actor.Role != domain.RoleManager {
		return nil, domain.Forbidden("MANAGER_ROLE_REQUIRED", "only managers can list an event's registrations")
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.OwnedBy(actor.ID) {
		return nil, domain.Forbidden("NOT_EVENT_OWNER", "you are not the creator of this event")
	}

	regs, err := s.regRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	details := make([]RegistrationDetail, 0, len(regs))
	for _, reg := range regs {
		volunteer, err := s.userRepo.GetByID(ctx, reg.UserID)
		if err != nil {
			return nil, err
		}
		details = append(details, RegistrationDetail{
			EventRegistration: reg,
			EventTitle:        event.Title,
			VolunteerName:     volunteer.FullName,
			Email:             volunteer.Email,
		})
	}
	return details, nil
}
