package api

import (
	"net/http"

	"github.com/iammorganparry/pof-dashboard/internal/dashboard"
	"github.com/iammorganparry/pof-dashboard/internal/models"
)

// QuestionHandler carries questions from agents to the operator and
// answers back to whoever polls for them.
type QuestionHandler struct {
	svc *dashboard.Service
}

func NewQuestionHandler(svc *dashboard.Service) *QuestionHandler {
	return &QuestionHandler{svc: svc}
}

// Ask handles POST /api/question
func (h *QuestionHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.QuestionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	id, err := h.svc.PostQuestion(req, r.URL.Query().Get("session"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.QuestionResponse{OK: true, ID: id})
}

// Answer handles POST /api/answer
func (h *QuestionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req models.AnswerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if _, err := h.svc.PostAnswer(req); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.OKResponse{OK: true})
}

// Answered handles GET /api/answers
func (h *QuestionHandler) Answered(w http.ResponseWriter, r *http.Request) {
	questions, err := h.svc.ListAnswered(r.URL.Query().Get("session"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, questions)
}
