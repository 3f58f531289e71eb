package handlers

import (
	"net/http"
	"time"

	"github.com/diewo77/bespoke-tuition/httpx"
	"github.com/diewo77/bespoke-tuition/internal/services"
)

type LessonHandler struct {
	lessons *services.LessonService
}

func NewLessonHandler(lessons *services.LessonService) *LessonHandler {
	return &LessonHandler{lessons: lessons}
}

type updateLessonRequest struct {
	ProductID   uint      `json:"product_id"`
	LessonStart time.Time `json:"lesson_start" validate:"required"`
	LessonEnd   time.Time `json:"lesson_end" validate:"required"`
}

func (h *LessonHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateLessonRequest
	if !decode(w, r, &req) {
		return
	}
	lesson, err := h.lessons.Update(r.Context(), id, req.ProductID, req.LessonStart, req.LessonEnd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lesson)
}

func (h *LessonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.lessons.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
