package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/diewo77/bespoke-tuition/httpx"
	"github.com/diewo77/bespoke-tuition/internal/services"
)

type StudentHandler struct {
	clients *services.ClientService
	lessons *services.LessonService
	now     Clock
}

func NewStudentHandler(clients *services.ClientService, lessons *services.LessonService, now Clock) *StudentHandler {
	return &StudentHandler{clients: clients, lessons: lessons, now: now}
}

type createStudentRequest struct {
	Forename    string `json:"forename" validate:"required,max=100"`
	Surname     string `json:"surname" validate:"max=100"`
	DateOfBirth *Date  `json:"date_of_birth"`
	SchoolYear  *int   `json:"school_year"`
	Parents     []uint `json:"parents"`
}

func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.clients.ListStudents(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, students)
}

func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createStudentRequest
	if !decode(w, r, &req) {
		return
	}
	student, err := h.clients.CreateStudent(r.Context(), services.StudentInput{
		Forename:    strings.TrimSpace(req.Forename),
		Surname:     strings.TrimSpace(req.Surname),
		DateOfBirth: req.DateOfBirth.ptr(),
		SchoolYear:  req.SchoolYear,
		ParentIDs:   req.Parents,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, student)
}

func (h *StudentHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	student, err := h.clients.GetStudent(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, student)
}

func (h *StudentHandler) AddTuitionAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req addressRequest
	if !decode(w, r, &req) {
		return
	}
	addr, err := h.clients.AddTuitionAddress(r.Context(), id, req.postal(), h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, addr)
}

type lessonRequest struct {
	ProductID   uint      `json:"product_id" validate:"required"`
	TermID      uint      `json:"term_id"`
	LessonStart time.Time `json:"lesson_start" validate:"required"`
	LessonEnd   time.Time `json:"lesson_end" validate:"required"`
}

// BookLesson creates a lesson for the student in the path.
func (h *StudentHandler) BookLesson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req lessonRequest
	if !decode(w, r, &req) {
		return
	}
	lesson, err := h.lessons.Create(r.Context(), services.LessonInput{
		StudentID:   id,
		ProductID:   req.ProductID,
		TermID:      req.TermID,
		LessonStart: req.LessonStart,
		LessonEnd:   req.LessonEnd,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, lesson)
}

func (h *StudentHandler) Lessons(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	lessons, err := h.lessons.ListForStudent(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lessons)
}
