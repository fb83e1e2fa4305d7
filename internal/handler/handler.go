package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/pavelanni/exitsurvey/internal/analytics"
	"github.com/pavelanni/exitsurvey/internal/auth"
	"github.com/pavelanni/exitsurvey/internal/feedback"
	appI18n "github.com/pavelanni/exitsurvey/internal/i18n"
	"github.com/pavelanni/exitsurvey/internal/metrics"
	"github.com/pavelanni/exitsurvey/internal/model"
	"github.com/pavelanni/exitsurvey/internal/roster"
	"github.com/pavelanni/exitsurvey/internal/store"
)

// RosterReader lists the whole roster.
type RosterReader interface {
	Students(ctx context.Context) ([]model.Student, error)
}

// Deps are the services the handlers drive.
type Deps struct {
	Gate      *auth.Gate
	Feedback  *feedback.Service
	Analytics *analytics.Service
	Importer  *roster.Importer
	Roster    RosterReader
	Metrics   *metrics.Metrics // optional
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	Deps
	config model.ServerConfig
}

// New creates a new Handler.
func New(deps Deps, cfg model.ServerConfig) (*Handler, error) {
	if deps.Gate == nil || deps.Feedback == nil || deps.Analytics == nil || deps.Importer == nil || deps.Roster == nil {
		return nil, errors.New("handler: missing dependency")
	}
	return &Handler{Deps: deps, config: cfg}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
		r.Get("/questions", h.handleQuestions)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Get("/me", h.handleMe)

			r.Route("/student", func(r chi.Router) {
				r.Use(requireRole(model.RoleStudent))
				r.Get("/status", h.handleStudentStatus)
				r.Post("/feedback", h.handleSubmitFeedback)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireRole(model.RoleAdmin))
				r.Get("/analytics", h.handleAnalytics)
				r.Get("/students", h.handleListStudents)
				r.Post("/students/import", h.handleImportStudents)
				r.Get("/stats/{section}/{questionID}", h.handleQuestionStats)
				r.Get("/reports/{dept}", h.handleReport)
			})
		})
	})

	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())
	}
}

// path prefixes p with the configured base path.
func (h *Handler) path(p string) string {
	return h.config.BasePath + p
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: msg})
}

// writeError maps a service error to its HTTP status and localized message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	var incomplete *feedback.IncompleteError
	var rowErr *roster.RowError

	switch {
	case errors.As(err, &incomplete):
		h.respondError(w, r, http.StatusUnprocessableEntity, appI18n.T(ctx, incompleteMessage(incomplete.Section)))
	case errors.As(err, &rowErr):
		h.respondError(w, r, http.StatusUnprocessableEntity, appI18n.Td(ctx, "ErrInvalidRoster", map[string]any{"Reason": rowErr.Error()}))
	case errors.Is(err, feedback.ErrInvalidSubmission):
		h.respondError(w, r, http.StatusUnprocessableEntity, appI18n.T(ctx, "ErrInvalidSubmission"))
	case errors.Is(err, feedback.ErrAlreadySubmitted):
		h.respondError(w, r, http.StatusConflict, appI18n.T(ctx, "ErrAlreadySubmitted"))
	case errors.Is(err, feedback.ErrUnknownStudent):
		h.respondError(w, r, http.StatusForbidden, appI18n.T(ctx, "ErrUnknownStudent"))
	case errors.Is(err, auth.ErrNoSession):
		h.respondError(w, r, http.StatusUnauthorized, appI18n.T(ctx, "ErrNotLoggedIn"))
	case errors.Is(err, auth.ErrUnknownRole):
		h.respondError(w, r, http.StatusBadRequest, appI18n.T(ctx, "ErrUnknownRole"))
	case errors.Is(err, analytics.ErrUnknownDepartment):
		h.respondError(w, r, http.StatusNotFound, appI18n.T(ctx, "ErrUnknownDepartment"))
	case errors.Is(err, analytics.ErrUnknownQuestion):
		h.respondError(w, r, http.StatusNotFound, appI18n.T(ctx, "ErrUnknownQuestion"))
	case errors.Is(err, store.ErrConflict):
		h.respondError(w, r, http.StatusConflict, appI18n.T(ctx, "ErrConflict"))
	case errors.Is(err, store.ErrStoreUnavailable):
		slog.Error("store unavailable", "path", r.URL.Path, "error", err)
		h.respondError(w, r, http.StatusServiceUnavailable, appI18n.T(ctx, "ErrUnavailable"))
	default:
		slog.Error("request failed", "path", r.URL.Path, "error", err)
		h.respondError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func incompleteMessage(section model.Section) string {
	switch section {
	case model.SectionParticipation:
		return "ErrIncompleteParticipation"
	case model.SectionAccomplishment:
		return "ErrIncompleteAccomplishment"
	default:
		return "ErrIncompleteFacilities"
	}
}

type ratingLabel struct {
	Rating int    `json:"rating"`
	Label  string `json:"label"`
}

type questionsResponse struct {
	Facilities     []model.Question `json:"facilities"`
	Participation  []model.Question `json:"participation"`
	Accomplishment []model.Question `json:"accomplishment"`
	RatingLabels   []ratingLabel    `json:"rating_labels"`
}

var ratingMessages = map[int]string{
	model.RatingVeryGood:     "RatingVeryGood",
	model.RatingGood:         "RatingGood",
	model.RatingAverage:      "RatingAverage",
	model.RatingBelowAverage: "RatingBelowAverage",
}

func (h *Handler) handleQuestions(w http.ResponseWriter, r *http.Request) {
	resp := questionsResponse{
		Facilities:     model.FacilityQuestions,
		Participation:  model.ParticipationQuestions,
		Accomplishment: model.AccomplishmentQuestions,
	}
	for _, l := range model.RatingLabels {
		resp.RatingLabels = append(resp.RatingLabels, ratingLabel{
			Rating: l.Rating,
			Label:  appI18n.T(r.Context(), ratingMessages[l.Rating]),
		})
	}
	render.JSON(w, r, resp)
}
