package domain

import "time"

// Post is a participant update on an approved event's wall.
type Post struct {
	ID          int32     `json:"id"`
	EventID     int32     `json:"event_id"`
	CreatedBy   int32     `json:"created_by"`
	Content     string    `json:"content"`
	CreatedDate time.Time `json:"created_date"`
	LikeCount   int32     `json:"like_count"`
}

type Comment struct {
	ID          int32     `json:"id"`
	PostID      int32     `json:"post_id"`
	CommentedBy int32     `json:"commented_by"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// PostLike records one user's like of one post; liking again removes it.
type PostLike struct {
	PostID int32 `json:"post_id"`
	UserID int32 `json:"user_id"`
}
