package http

import (
	"net/http"

	"volunhub-backend/internal/service"
)

type PostHandler struct {
	postSvc service.PostService
}

func NewPostHandler(postSvc service.PostService) *PostHandler {
	return &PostHandler{postSvc: postSvc}
}

type contentRequest struct {
	Content string `json:"content"`
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	eventID, err := pathID(r, "eventId")
	if err != nil {
		writeError(w, err)
		return
	}
	var req contentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	post, err := h.postSvc.CreatePost(r.Context(), actor, eventID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (h *PostHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	eventID, err := pathID(r, "eventId")
	if err != nil {
		writeError(w, err)
		return
	}

	posts, err := h.postSvc.ListPostsByEvent(r.Context(), eventID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	postID, err := pathID(r, "postId")
	if err != nil {
		writeError(w, err)
		return
	}
	var req contentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	comment, err := h.postSvc.AddComment(r.Context(), actor, postID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *PostHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	postID, err := pathID(r, "postId")
	if err != nil {
		writeError(w, err)
		return
	}

	comments, err := h.postSvc.ListComments(r.Context(), postID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	postID, err := pathID(r, "postId")
	if err != nil {
		writeError(w, err)
		return
	}

	liked, err := h.postSvc.ToggleLike(r.Context(), actor, postID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}
