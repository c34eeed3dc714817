package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"volunhub-backend/internal/domain"
	"volunhub-backend/internal/repository"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.User), args.Error(1)
}
func (m *MockUserRepo) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockCategoryRepo
type MockCategoryRepo struct {
	mock.Mock
}

func (m *MockCategoryRepo) Create(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}
func (m *MockCategoryRepo) GetByID(ctx context.Context, id int32) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}
func (m *MockCategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

// MockEventRepo
type MockEventRepo struct {
	mock.Mock
}

func (m *MockEventRepo) Create(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
func (m *MockEventRepo) GetByID(ctx context.Context, id int32) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}
func (m *MockEventRepo) Update(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
func (m *MockEventRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockEventRepo) CountRegistrations(ctx context.Context, eventID int32) (int32, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockEventRepo) List(ctx context.Context, filter repository.EventFilter, page, pageSize int32) ([]domain.Event, int32, error) {
	args := m.Called(ctx, filter, page, pageSize)
	return args.Get(0).([]domain.Event), args.Get(1).(int32), args.Error(2)
}
func (m *MockEventRepo) ListAll(ctx context.Context) ([]domain.Event, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Event), args.Error(1)
}
func (m *MockEventRepo) Complete(ctx context.Context, eventID int32) (int32, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockEventRepo) ListUpcoming(ctx context.Context, limit int32) ([]domain.Event, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Event), args.Error(1)
}
func (m *MockEventRepo) ListMostRegistered(ctx context.Context, limit int32) ([]domain.Event, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Event), args.Error(1)
}
func (m *MockEventRepo) ListRecentlyPosted(ctx context.Context, limit int32) ([]domain.Event, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Event), args.Error(1)
}

// MockRegistrationRepo
type MockRegistrationRepo struct {
	mock.Mock
}

func (m *MockRegistrationRepo) Create(ctx context.Context, reg *domain.EventRegistration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}
func (m *MockRegistrationRepo) GetByID(ctx context.Context, id int32) (*domain.EventRegistration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EventRegistration), args.Error(1)
}
func (m *MockRegistrationRepo) GetByUserAndEvent(ctx context.Context, userID, eventID int32) (*domain.EventRegistration, error) {
	args := m.Called(ctx, userID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EventRegistration), args.Error(1)
}
func (m *MockRegistrationRepo) Update(ctx context.Context, reg *domain.EventRegistration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}
func (m *MockRegistrationRepo) Review(ctx context.Context, reg *domain.EventRegistration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}
func (m *MockRegistrationRepo) ExistsFor(ctx context.Context, userID, eventID int32) (bool, error) {
	args := m.Called(ctx, userID, eventID)
	return args.Bool(0), args.Error(1)
}
func (m *MockRegistrationRepo) ListByUser(ctx context.Context, userID int32) ([]domain.EventRegistration, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.EventRegistration), args.Error(1)
}
func (m *MockRegistrationRepo) ListByEvent(ctx context.Context, eventID int32) ([]domain.EventRegistration, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]domain.EventRegistration), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}
func (m *MockNotificationRepo) CountUnread(ctx context.Context, userID int32) (int32, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int32), args.Error(1)
}

// MockPostRepo
type MockPostRepo struct {
	mock.Mock
}

func (m *MockPostRepo) Create(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}
func (m *MockPostRepo) GetByID(ctx context.Context, id int32) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}
func (m *MockPostRepo) ListByEvent(ctx context.Context, eventID int32) ([]domain.Post, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]domain.Post), args.Error(1)
}
func (m *MockPostRepo) CreateComment(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}
func (m *MockPostRepo) ListCommentsByPost(ctx context.Context, postID int32) ([]domain.Comment, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).([]domain.Comment), args.Error(1)
}
func (m *MockPostRepo) HasLike(ctx context.Context, postID, userID int32) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}
func (m *MockPostRepo) AddLike(ctx context.Context, postID, userID int32) error {
	args := m.Called(ctx, postID, userID)
	return args.Error(0)
}
func (m *MockPostRepo) RemoveLike(ctx context.Context, postID, userID int32) error {
	args := m.Called(ctx, postID, userID)
	return args.Error(0)
}

// MockNotifier records deliveries without any channel fan-out.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID int32, message string) {
	m.Called(ctx, userID, message)
}
