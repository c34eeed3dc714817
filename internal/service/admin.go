package service

import (
	"context"

	"volunhub-backend/internal/domain"
	"volunhub-backend/internal/export"
	"volunhub-backend/internal/repository"
)

type adminService struct {
	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
	notifier     Notifier
}

func NewAdminService(userRepo repository.UserRepository, categoryRepo repository.CategoryRepository, notifier Notifier) AdminService {
	return &adminService{
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		notifier:     notifier,
	}
}

func (s *adminService) requireAdmin(actor domain.Actor) error {
	if actor.Role != domain.RoleAdmin {
		return domain.Forbidden("ADMIN_ROLE_REQUIRED", "only admins can perform this action")
	}
	return nil
}

func (s *adminService) ListUsers(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx)
}

func (s *adminService) SetUserLock(ctx context.Context, actor domain.Actor, email string, lock bool) error {
	if err := s.requireAdmin(actor); err != nil {
		return err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if lock {
		user.Status = domain.UserStatusLocked
	} else {
		user.Status = domain.UserStatusActive
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	if lock {
		s.notifier.Notify(ctx, user.ID, "Your account has been locked by an administrator")
	} else {
		s.notifier.Notify(ctx, user.ID, "Your account has been unlocked")
	}
	return nil
}

func (s *adminService) ChangeUserRole(ctx context.Context, actor domain.Actor, email string, roleName string) error {
	if err := s.requireAdmin(actor); err != nil {
		return err
	}

	role, ok := domain.ParseRole(roleName)
	if !ok {
		return domain.Validation("INVALID_ROLE", "role must be VOLUNTEER, MANAGER or ADMIN")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	user.Role = role
	return s.userRepo.Update(ctx, user)
}

func (s *adminService) ExportUsersByRole(ctx context.Context, actor domain.Actor, roleName string) (string, error) {
	if err := s.requireAdmin(actor); err != nil {
		return "", err
	}

	role, ok := domain.ParseRole(roleName)
	if !ok {
		return "", domain.Validation("INVALID_ROLE", "role must be VOLUNTEER, MANAGER or ADMIN")
	}

	users, err := s.userRepo.ListByRole(ctx, role)
	if err != nil {
		return "", err
	}
	return export.UsersCSV(users), nil
}

func (s *adminService) CreateCategory(ctx context.Context, actor domain.Actor, name string) (*domain.Category, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, domain.Validation("CATEGORY_NAME_REQUIRED", "category name is required")
	}

	category := &domain.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *adminService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categoryRepo.List(ctx)
}
