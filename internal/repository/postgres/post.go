package postgres

import (
	"context"
	"database/sql"

	"volunhub-backend/internal/domain"
	"volunhub-backend/internal/repository"
)

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) repository.PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, p *domain.Post) error {
	query := `INSERT INTO posts (event_id, created_by, content, created_date)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	return r.db.QueryRowContext(ctx, query, p.EventID, p.CreatedBy, p.Content, p.CreatedDate).Scan(&p.ID)
}

func (r *postRepository) GetByID(ctx context.Context, id int32) (*domain.Post, error) {
	p := &domain.Post{}
	query := `SELECT p.id, p.event_id, p.created_by, p.content, p.created_date,
	                 (SELECT count(*) FROM post_likes l WHERE l.post_id = p.id)
	          FROM posts p WHERE p.id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.EventID, &p.CreatedBy, &p.Content, &p.CreatedDate, &p.LikeCount)
	if err != nil {
		return nil, notFoundOr(err, domain.NotFound("POST_NOT_FOUND", "post not found"))
	}
	return p, nil
}

func (r *postRepository) ListByEvent(ctx context.Context, eventID int32) ([]domain.Post, error) {
	query := `SELECT p.id, p.event_id, p.created_by, p.content, p.created_date,
	                 (SELECT count(*) FROM post_likes l WHERE l.post_id = p.id)
	          FROM posts p WHERE p.event_id = $1 ORDER BY p.created_date DESC`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.EventID, &p.CreatedBy, &p.Content, &p.CreatedDate, &p.LikeCount); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *postRepository) CreateComment(ctx context.Context, c *domain.Comment) error {
	query := `INSERT INTO comments (post_id, commented_by, content, created_at)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	return r.db.QueryRowContext(ctx, query, c.PostID, c.CommentedBy, c.Content, c.CreatedAt).Scan(&c.ID)
}

func (r *postRepository) ListCommentsByPost(ctx context.Context, postID int32) ([]domain.Comment, error) {
	query := `SELECT id, post_id, commented_by, content, created_at
	          FROM comments WHERE post_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.CommentedBy, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *postRepository) HasLike(ctx context.Context, postID, userID int32) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM post_likes WHERE post_id = $1 AND user_id = $2)`
	err := r.db.QueryRowContext(ctx, query, postID, userID).Scan(&exists)
	return exists, err
}

func (r *postRepository) AddLike(ctx context.Context, postID, userID int32) error {
	query := `INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, postID, userID)
	return err
}

func (r *postRepository) RemoveLike(ctx context.Context, postID, userID int32) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	return err
}
