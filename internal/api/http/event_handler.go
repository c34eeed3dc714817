package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"volunhub-backend/internal/domain"
	"volunhub-backend/internal/repository"
	"volunhub-backend/internal/service"
)

type EventHandler struct {
	eventSvc service.EventService
	regSvc   service.RegistrationService
}

func NewEventHandler(eventSvc service.EventService, regSvc service.RegistrationService) *EventHandler {
	return &EventHandler{eventSvc: eventSvc, regSvc: regSvc}
}

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.Validation("INVALID_ID", name+" must be a positive integer")
	}
	return int32(id), nil
}

func queryInt(r *http.Request, name string, fallback int32) int32 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v <= 0 {
		return fallback
	}
	return int32(v)
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	filter := repository.EventFilter{
		Category: r.URL.Query().Get("category"),
		City:     r.URL.Query().Get("city"),
		District: r.URL.Query().Get("district"),
		Ward:     r.URL.Query().Get("ward"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := domain.ParseEventStatus(raw)
		if !ok {
			writeError(w, domain.Validation("INVALID_STATUS", "unknown event status filter"))
			return
		}
		filter.Status = status
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 20)

	events, total, err := h.eventSvc.List(r.Context(), actor, filter, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"total":  total,
		"page":   page,
	})
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	eventID, err := pathID(r, "eventId")
	if err != nil {
		writeError(w, err)
		return
	}

	detail, err := h.eventSvc.GetDetail(r.Context(), actor, eventID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var input service.EventCreateInput
	if !decodeBody(w, r, &input) {
		return
	}

	event, err := h.eventSvc.Create(r.Context(), actor, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	eventID, err := pathID(r, "eventId")
	if err != nil {
		writeError(w, err)
		return
	}
	var input service.EventUpdateInput
	if !decodeBody(w, r, &input) {
		return
	}

	event, err := h.eventSvc.Update(r.Context(), actor, eventID, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	eventID, err := pathID(r, "eventId")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.eventSvc.Delete(r.Context(), actor, eventID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "event deleted"})
}

type actionRequest struct {
	Action string `json:"action"`
}

func (h *EventHandler) Review(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	eventID, err := pathID(r, "eventId")
	if err != nil {
		writeError(w, err)
		return
	}
	var req actionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	event, err := h.eventSvc.AdminReview(r.Context(), actor, eventID, req.Action)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Close(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	eventID, err := pathID(r, "eventId")
	if err != nil {
		writeError(w, err)
		return
	}
	var req actionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	event, err := h.eventSvc.Close(r.Context(), actor, eventID, req.Action)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	dashboard, err := h.eventSvc.Dashboard(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (h *EventHandler) Export(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	data, err := h.eventSvc.Export(r.Context(), actor, format)
	if err != nil {
		writeError(w, err)
		return
	}

	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="events.csv"`)
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(data))
}

func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	eventID, err := pathID(r, "eventId")
	if err != nil {
		writeError(w, err)
		return
	}

	reg, err := h.regSvc.Register(r.Context(), actor, eventID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

func (h *EventHandler) CancelRegistration(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	eventID, err := pathID(r, "eventId")
	if err != nil {
		writeError(w, err)
		return
	}

	reg, err := h.regSvc.Cancel(r.Context(), actor, eventID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

func (h *EventHandler) MyRegistrations(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	regs, err := h.regSvc.MyRegistrations(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, regs)
}

func (h *EventHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	eventID, err := pathID(r, "eventId")
	if err != nil {
		writeError(w, err)
		return
	}

	regs, err := h.regSvc.ListByEvent(r.Context(), actor, eventID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, regs)
}

func (h *EventHandler) ReviewRegistration(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	regID, err := pathID(r, "registrationId")
	if err != nil {
		writeError(w, err)
		return
	}
	var req actionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	reg, err := h.regSvc.ApproveOrReject(r.Context(), actor, regID, req.Action)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}
