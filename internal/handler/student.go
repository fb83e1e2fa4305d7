package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/pavelanni/exitsurvey/internal/feedback"
	appI18n "github.com/pavelanni/exitsurvey/internal/i18n"
	"github.com/pavelanni/exitsurvey/internal/model"
)

type statusResponse struct {
	RollNo       string           `json:"roll_no"`
	Name         string           `json:"name"`
	Department   model.Department `json:"department"`
	HasSubmitted bool             `json:"has_submitted"`
}

type submitResponse struct {
	ID          string    `json:"id"`
	SubmittedAt time.Time `json:"submitted_at"`
	Message     string    `json:"message"`
}

func studentSession(r *http.Request) model.StudentSession {
	sess, _ := model.SessionFromContext(r.Context()).(model.StudentSession)
	return sess
}

func (h *Handler) handleStudentStatus(w http.ResponseWriter, r *http.Request) {
	sess := studentSession(r)
	done, err := h.Feedback.HasSubmitted(r.Context(), sess.RollNo)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, statusResponse{
		RollNo:       sess.RollNo,
		Name:         sess.Name,
		Department:   sess.Department,
		HasSubmitted: done,
	})
}

func (h *Handler) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var form feedback.Form
	if err := render.DecodeJSON(r.Body, &form); err != nil {
		h.respondError(w, r, http.StatusBadRequest, appI18n.T(r.Context(), "ErrBadRequest"))
		return
	}

	sub, err := h.Feedback.SubmitFor(r.Context(), studentSession(r), form)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, submitResponse{
		ID:          sub.ID,
		SubmittedAt: sub.SubmittedAt,
		Message:     appI18n.T(r.Context(), "FeedbackThanks"),
	})
}
