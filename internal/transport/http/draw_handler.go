package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"competition-service/internal/app"
	"competition-service/internal/domain"
	"go.uber.org/zap"
)

// DrawHandler exposes draws over plain JSON HTTP.
type DrawHandler struct {
	service *app.DrawService
	log     *zap.Logger
}

func NewDrawHandler(service *app.DrawService, log *zap.Logger) *DrawHandler {
	return &DrawHandler{service: service, log: log}
}

type drawRequest struct {
	Winners int `json:"winners"`
}

// Register mounts the draw routes on mux.
func (h *DrawHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /competitions/{id}/draw", h.RunDraw)
	mux.HandleFunc("GET /competitions/{id}/draw", h.GetDraw)
	mux.HandleFunc("GET /competitions/{id}/draw/verify", h.VerifyDraw)
}

func (h *DrawHandler) RunDraw(w http.ResponseWriter, r *http.Request) {
	var req drawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Winners < 0 {
		writeError(w, http.StatusBadRequest, "winners must not be negative")
		return
	}

	result, err := h.service.RunDraw(r.Context(), r.PathValue("id"), req.Winners)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *DrawHandler) GetDraw(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetDraw(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *DrawHandler) VerifyDraw(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.VerifyDraw(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *DrawHandler) writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("draw request failed", zap.Error(err))
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrCompetitionNotFound), errors.Is(err, domain.ErrDrawNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDrawAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoEligibleCandidates),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrUnknownWeightMode),
		errors.Is(err, domain.ErrUnknownDecayFunction):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorPayload{Message: message})
}
