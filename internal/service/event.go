package service

import (
	"context"
	"fmt"
	"time"

	"volunhub-backend/internal/domain"
	"volunhub-backend/internal/export"
	"volunhub-backend/internal/repository"
)

const dashboardLimit = 5

type eventService struct {
	eventRepo    repository.EventRepository
	categoryRepo repository.CategoryRepository
	userRepo     repository.UserRepository
	regRepo      repository.RegistrationRepository
	noteRepo     repository.NotificationRepository
	notifier     Notifier
	now          Clock
}

func NewEventService(
	eventRepo repository.EventRepository,
	categoryRepo repository.CategoryRepository,
	userRepo repository.UserRepository,
	regRepo repository.RegistrationRepository,
	noteRepo repository.NotificationRepository,
	notifier Notifier,
	now Clock,
) EventService {
	if now == nil {
		now = time.Now
	}
	return &eventService{
		eventRepo:    eventRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		regRepo:      regRepo,
		noteRepo:     noteRepo,
		notifier:     notifier,
		now:          now,
	}
}

func (s *eventService) Create(ctx context.Context, actor domain.Actor, input EventCreateInput) (*domain.Event, error) {
	if actor.Role != domain.RoleManager {
		return nil, domain.Forbidden("MANAGER_ROLE_REQUIRED", "only managers can create events")
	}

	if input.Title == "" {
		return nil, domain.Validation("EVENT_TITLE_REQUIRED", "event title is required")
	}
	if input.Address == "" {
		return nil, domain.Validation("EVENT_ADDRESS_REQUIRED", "event address is required")
	}

	startAt, err := parseEventTime(input.StartAt, "start_at")
	if err != nil {
		return nil, err
	}
	endAt, err := parseEventTime(input.EndAt, "end_at")
	if err != nil {
		return nil, err
	}
	if verr := domain.ValidateEventWindow(startAt, endAt, s.now()); verr != nil {
		return nil, verr
	}

	if _, err := s.categoryRepo.GetByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	event := &domain.Event{
		Title:       input.Title,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		Address:     input.Address,
		City:        input.City,
		District:    input.District,
		Ward:        input.Ward,
		StartAt:     startAt,
		EndAt:       endAt,
		CreatedBy:   actor.ID,
		Status:      domain.EventStatusPending,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, actor.ID, fmt.Sprintf("Event %q has been created and is awaiting approval", event.Title))
	return event, nil
}

func (s *eventService) Update(ctx context.Context, actor domain.Actor, eventID int32, input EventUpdateInput) (*domain.Event, error) {
	if actor.Role != domain.RoleManager {
		return nil, domain.Forbidden("MANAGER_ROLE_REQUIRED", "only managers can update events")
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.OwnedBy(actor.ID) {
		return nil, domain.Forbidden("NOT_EVENT_OWNER", "you are not the creator of this event")
	}
	if event.Status != domain.EventStatusPending {
		return nil, domain.InvalidState("EVENT_NOT_EDITABLE", "an event can only be edited while it is awaiting approval")
	}

	if err := s.applyUpdate(ctx, event, input); err != nil {
		return nil, err
	}
	if !event.EndAt.After(event.StartAt) {
		return nil, domain.Validation("EVENT_END_BEFORE_START", "event end time must be after its start time")
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// applyUpdate copies the present fields of input onto event. Blank optional
// text fields mean "no change"; present timestamps are re-validated for
// format.
func (s *eventService) applyUpdate(ctx context.Context, event *domain.Event, input EventUpdateInput) error {
	setText := func(dst *string, src *string) {
		if src != nil && *src != "" {
			*dst = *src
		}
	}
	setText(&event.Title, input.Title)
	setText(&event.Description, input.Description)
	setText(&event.Address, input.Address)
	setText(&event.City, input.City)
	setText(&event.District, input.District)
	setText(&event.Ward, input.Ward)

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *input.CategoryID); err != nil {
			return err
		}
		event.CategoryID = *input.CategoryID
	}
	if input.StartAt != nil && *input.StartAt != "" {
		startAt, err := parseEventTime(*input.StartAt, "start_at")
		if err != nil {
			return err
		}
		event.StartAt = startAt
	}
	if input.EndAt != nil && *input.EndAt != "" {
		endAt, err := parseEventTime(*input.EndAt, "end_at")
		if err != nil {
			return err
		}
		event.EndAt = endAt
	}
	return nil
}

func (s *eventService) AdminReview(ctx context.Context, actor domain.Actor, eventID int32, action string) (*domain.Event, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.Forbidden("ADMIN_ROLE_REQUIRED", "only admins can review events")
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != domain.EventStatusPending {
		return nil, domain.InvalidState("EVENT_ALREADY_REVIEWED", "only a pending event can be reviewed")
	}

	verdict, ok := domain.ParseReviewAction(action)
	if !ok {
		return nil, domain.Validation("INVALID_ACTION", "review action must be APPROVE or REJECT")
	}

	event.Status = verdict.Status()
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}

	if verdict == domain.ReviewApprove {
		s.notifier.Notify(ctx, event.CreatedBy, fmt.Sprintf("Event %q has been approved", event.Title))
	} else {
		s.notifier.Notify(ctx, event.CreatedBy, fmt.Sprintf("Event %q has been rejected", event.Title))
	}
	return event, nil
}

func (s *eventService) Close(ctx context.Context, actor domain.Actor, eventID int32, action string) (*domain.Event, error) {
	if actor.Role != domain.RoleManager {
		return nil, domain.Forbidden("MANAGER_ROLE_REQUIRED", "only managers can close events")
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.OwnedBy(actor.ID) {
		return nil, domain.Forbidden("NOT_EVENT_OWNER", "you are not the creator of this event")
	}

	verb, ok := domain.ParseCloseAction(action)
	if !ok {
		return nil, domain.Validation("INVALID_ACTION", "close action must be CANCEL or COMPLETE")
	}

	switch verb {
	case domain.CloseCancel:
		if !event.Status.CanTransitionTo(domain.EventStatusCancelled) {
			return nil, domain.InvalidState("EVENT_NOT_CANCELLABLE", "a closed event cannot be cancelled")
		}
		event.Status = domain.EventStatusCancelled
		if err := s.eventRepo.Update(ctx, event); err != nil {
			return nil, err
		}
		s.notifier.Notify(ctx, event.CreatedBy, fmt.Sprintf("Event %q has been cancelled", event.Title))

	case domain.CloseComplete:
		// Complete runs the event flip and the approved-registration sweep in
		// one transaction serialized on the event row.
		if _, err := s.eventRepo.Complete(ctx, eventID); err != nil {
			return nil, err
		}
		event.Status = domain.EventStatusCompleted
		s.notifier.Notify(ctx, event.CreatedBy, fmt.Sprintf("Event %q has been completed", event.Title))
	}
	return event, nil
}

func (s *eventService) Delete(ctx context.Context, actor domain.Actor, eventID int32) error {
	if actor.Role != domain.RoleManager {
		return domain.Forbidden("MANAGER_ROLE_REQUIRED", "only managers can delete events")
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if !event.OwnedBy(actor.ID) {
		return domain.Forbidden("NOT_EVENT_OWNER", "you are not the creator of this event")
	}

	count, err := s.eventRepo.CountRegistrations(ctx, eventID)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.InvalidState("EVENT_HAS_REGISTRATIONS", "an event with registrations cannot be deleted")
	}

	return s.eventRepo.Delete(ctx, eventID)
}

func (s *eventService) List(ctx context.Context, actor domain.Actor, filter repository.EventFilter, page, pageSize int32) ([]EventDetail, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	events, count, err := s.eventRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	details := make([]EventDetail, 0, len(events))
	for i := range events {
		detail, err := s.toDetail(ctx, &events[i], actor)
		if err != nil {
			return nil, 0, err
		}
		details = append(details, *detail)
	}
	return details, count, nil
}

func (s *eventService) GetDetail(ctx context.Context, actor domain.Actor, eventID int32) (*EventDetail, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.toDetail(ctx, event, actor)
}

func (s *eventService) Dashboard(ctx context.Context, actor domain.Actor) (*Dashboard, error) {
	upcoming, err := s.eventRepo.ListUpcoming(ctx, dashboardLimit)
	if err != nil {
		return nil, err
	}
	hot, err := s.eventRepo.ListMostRegistered(ctx, dashboardLimit)
	if err != nil {
		return nil, err
	}
	posted, err := s.eventRepo.ListRecentlyPosted(ctx, dashboardLimit)
	if err != nil {
		return nil, err
	}
	unread, err := s.noteRepo.CountUnread(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		UpcomingEvents:      upcoming,
		HotEvents:           hot,
		NewPostsEvents:      posted,
		UnreadNotifications: unread,
	}, nil
}

func (s *eventService) Export(ctx context.Context, actor domain.Actor, format string) (string, error) {
	if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleManager {
		return "", domain.Forbidden("MANAGER_ROLE_REQUIRED", "only managers and admins can export events")
	}

	events, err := s.eventRepo.ListAll(ctx)
	if err != nil {
		return "", err
	}

	counts := make(map[int32]int32, len(events))
	for _, e := range events {
		count, err := s.eventRepo.CountRegistrations(ctx, e.ID)
		if err != nil {
			return "", err
		}
		counts[e.ID] = count
	}

	switch format {
	case "csv":
		return export.EventsCSV(events, counts), nil
	case "json":
		return export.EventsJSON(events, counts)
	default:
		return "", domain.Validation("INVALID_EXPORT_FORMAT", "export format must be csv or json")
	}
}

func (s *eventService) toDetail(ctx context.Context, event *domain.Event, actor domain.Actor) (*EventDetail, error) {
	category, err := s.categoryRepo.GetByID(ctx, event.CategoryID)
	if err != nil {
		return nil, err
	}
	creator, err := s.userRepo.GetByID(ctx, event.CreatedBy)
	if err != nil {
		return nil, err
	}
	count, err := s.eventRepo.CountRegistrations(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	isRegistered, err := s.regRepo.ExistsFor(ctx, actor.ID, event.ID)
	if err != nil {
		return nil, err
	}

	return &EventDetail{
		Event:             *event,
		CategoryName:      category.Name,
		CreatedByName:     creator.FullName,
		RegistrationCount: count,
		IsRegistered:      isRegistered,
		CanRegister:       event.Status == domain.EventStatusApproved,
	}, nil
}

func parseEventTime(value, field string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, domain.Validation("INVALID_TIME_FORMAT", fmt.Sprintf("%s must be an RFC 3339 timestamp", field))
	}
	return t, nil
}
