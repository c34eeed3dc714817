package postgres

import (
	"context"
	"database/sql"
	"time"

	"volunhub-backend/internal/domain"
	"volunhub-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `u.id, u.role, u.full_name, u.email, COALESCE(u.phone_number, ''), u.password_hash, u.status, u.created_at`

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (role, full_name, email, phone_number, password_hash, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	u.CreatedAt = time.Now()
	err := r.db.QueryRowContext(ctx, query, u.Role, u.FullName, u.Email, u.PhoneNumber, u.PasswordHash, u.Status, u.CreatedAt).Scan(&u.ID)
	if isUniqueViolation(err) {
		return domain.Conflict("EMAIL_ALREADY_EXISTS", "a user with this email already exists")
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Role, &u.FullName, &u.Email, &u.PhoneNumber, &u.PasswordHash, &u.Status, &u.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, domain.NotFound("USER_NOT_FOUND", "user not found"))
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT ` + userColumns + ` FROM users u WHERE LOWER(u.email) = LOWER($1)`
	err := r.db.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.Role, &u.FullName, &u.Email, &u.PhoneNumber, &u.PasswordHash, &u.Status, &u.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, domain.NotFound("USER_NOT_FOUND", "user not found"))
	}
	return u, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	return exists, err
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET role=$1, full_name=$2, phone_number=$3, password_hash=$4, status=$5 WHERE id=$6`
	_, err := r.db.ExecContext(ctx, query, u.Role, u.FullName, u.PhoneNumber, u.PasswordHash, u.Status, u.ID)
	return err
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u ORDER BY u.created_at DESC`
	return r.queryUsers(ctx, query)
}

func (r *userRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.role = $1 ORDER BY u.full_name`
	return r.queryUsers(ctx, query, role)
}

func (r *userRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Role, &u.FullName, &u.Email, &u.PhoneNumber, &u.PasswordHash, &u.Status, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
