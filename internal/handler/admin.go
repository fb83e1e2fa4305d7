package handler

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	appI18n "github.com/pavelanni/exitsurvey/internal/i18n"
	"github.com/pavelanni/exitsurvey/internal/model"
	"github.com/pavelanni/exitsurvey/internal/report"
	"github.com/pavelanni/exitsurvey/internal/roster"
)

const maxImportSize = 10 << 20

// studentView is a roster entry without its password.
type studentView struct {
	RollNo       string           `json:"roll_no"`
	Name         string           `json:"name"`
	Department   model.Department `json:"department"`
	DOB          string           `json:"dob"`
	HasSubmitted bool             `json:"has_submitted"`
}

type importResponse struct {
	roster.Result
	Message string `json:"message"`
}

func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Analytics.Summary(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, sum)
}

func (h *Handler) handleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.Roster.Students(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	filtered := roster.Filter(students, r.URL.Query().Get("dept"), r.URL.Query().Get("q"))

	views := make([]studentView, 0, len(filtered))
	for _, s := range filtered {
		views = append(views, studentView{
			RollNo:       s.RollNo,
			Name:         s.Name,
			Department:   s.Department,
			DOB:          s.DOB,
			HasSubmitted: s.HasSubmitted,
		})
	}
	render.JSON(w, r, views)
}

// handleImportStudents accepts a CSV body or a multipart upload in field "file".
func (h *Handler) handleImportStudents(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	var src io.Reader = r.Body
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			h.respondError(w, r, http.StatusBadRequest, appI18n.T(r.Context(), "ErrBadRequest"))
			return
		}
		defer file.Close()
		slog.Info("roster upload", "filename", header.Filename, "size", header.Size)
		src = file
	}

	students, err := roster.ParseCSV(src)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.Importer.Import(r.Context(), students)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, importResponse{Result: res, Message: appI18n.Tp(r.Context(), "StudentsImported", res.Added)})
}

func (h *Handler) handleQuestionStats(w http.ResponseWriter, r *http.Request) {
	section := model.Section(chi.URLParam(r, "section"))
	questionID, err := strconv.Atoi(chi.URLParam(r, "questionID"))
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, appI18n.T(r.Context(), "ErrBadRequest"))
		return
	}
	dept := model.Department(strings.ToUpper(r.URL.Query().Get("dept")))

	if section == model.SectionParticipation {
		stat, err := h.Analytics.Participation(r.Context(), dept, questionID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		render.JSON(w, r, stat)
		return
	}
	stat, err := h.Analytics.QuestionStats(r.Context(), dept, section, questionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, stat)
}

// handleReport serves /reports/{dept}, /reports/{dept}.pdf and /reports/{dept}.csv.
func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	name, format, _ := strings.Cut(chi.URLParam(r, "dept"), ".")
	dept := model.Department(strings.ToUpper(name))

	rep, err := h.Analytics.Report(r.Context(), dept)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("exit-survey-%s.%s", strings.ToLower(string(dept)), format)
	switch strings.ToLower(format) {
	case "":
		render.JSON(w, r, rep)
	case "pdf":
		data, err := report.PDF(rep, report.Options{
			Institution: h.config.Institution,
			Term:        h.config.Term,
			Date:        time.Now(),
			T:           appI18n.Translator(r.Context()),
		})
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeFile(w, "application/pdf", filename, data)
	case "csv":
		data, err := report.CSV(rep)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeFile(w, "text/csv; charset=utf-8", filename, data)
	default:
		h.respondError(w, r, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	}
}

func writeFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		slog.Error("write response", "error", err)
	}
}
