package service

import (
	"context"
	"time"

	"volunhub-backend/internal/domain"
	"volunhub-backend/internal/repository"
)

type postService struct {
	postRepo  repository.PostRepository
	eventRepo repository.EventRepository
	now       Clock
}

func NewPostService(postRepo repository.PostRepository, eventRepo repository.EventRepository, now Clock) PostService {
	if now == nil {
		now = time.Now
	}
	return &postService{
		postRepo:  postRepo,
		eventRepo: eventRepo,
		now:       now,
	}
}

// requireApprovedEvent gates all wall activity on the event being live.
func (s *postService) requireApprovedEvent(ctx context.Context, eventID int32) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != domain.EventStatusApproved {
		return nil, domain.InvalidState("EVENT_NOT_APPROVED", "the event wall is only open while the event is approved")
	}
	return event, nil
}

func (s *postService) CreatePost(ctx context.Context, actor domain.Actor, eventID int32, content string) (*domain.Post, error) {
	if content == "" {
		return nil, domain.Validation("POST_CONTENT_REQUIRED", "post content is required")
	}
	if _, err := s.requireApprovedEvent(ctx, eventID); err != nil {
		return nil, err
	}

	post := &domain.Post{
		EventID:     eventID,
		CreatedBy:   actor.ID,
		Content:     content,
		CreatedDate: s.now(),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) AddComment(ctx context.Context, actor domain.Actor, postID int32, content string) (*domain.Comment, error) {
	if content == "" {
		return nil, domain.Validation("COMMENT_CONTENT_REQUIRED", "comment content is required")
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireApprovedEvent(ctx, post.EventID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		PostID:      postID,
		CommentedBy: actor.ID,
		Content:     content,
		CreatedAt:   s.now(),
	}
	if err := s.postRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ToggleLike flips the actor's like on a post and reports the new state.
func (s *postService) ToggleLike(ctx context.Context, actor domain.Actor, postID int32) (bool, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return false, err
	}
	if _, err := s.requireApprovedEvent(ctx, post.EventID); err != nil {
		return false, err
	}

	liked, err := s.postRepo.HasLike(ctx, postID, actor.ID)
	if err != nil {
		return false, err
	}
	if liked {
		return false, s.postRepo.RemoveLike(ctx, postID, actor.ID)
	}
	return true, s.postRepo.AddLike(ctx, postID, actor.ID)
}

func (s *postService) ListPostsByEvent(ctx context.Context, eventID int32) ([]domain.Post, error) {
	if _, err := s.requireApprovedEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.postRepo.ListByEvent(ctx, eventID)
}

func (s *postService) ListComments(ctx context.Context, postID int32) ([]domain.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.postRepo.ListCommentsByPost(ctx, postID)
}
