package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/pavelanni/exitsurvey/internal/analytics"
)

// Options controls the printed header and headings of a PDF report.
type Options struct {
	Institution string
	Term        string
	Date        time.Time
	// T translates a heading message ID. Nil prints the IDs.
	T func(msgID string) string
}

const (
	leftMargin   = 10.0
	pageWidth    = 190.0
	lineHeight   = 5.0
	bottomMargin = 25.0
)

type pdfWriter struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
	t   func(string) string
}

// PDF renders the printable department report.
func PDF(r analytics.Report, opts Options) ([]byte, error) {
	if opts.T == nil {
		opts.T = func(id string) string { return id }
	}
	if opts.Date.IsZero() {
		opts.Date = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(leftMargin, 15, leftMargin)
	pdf.SetCreationDate(opts.Date)
	pdf.SetTitle(opts.T("ReportTitle")+" - "+r.DepartmentName, true)
	pdf.AddPage()
	w := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), t: opts.T}

	w.header(r, opts)
	w.ratedTable(opts.T("SectionFacilities"), opts.T("ColCriteria"), r.Facilities, r.Responses)
	w.participationTable(r)
	w.ratedTable(opts.T("SectionAccomplishment"), opts.T("ColCriteria"), r.Accomplishment, r.Responses)
	w.comments(r)
	w.footer(r, opts)

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *pdfWriter) header(r analytics.Report, opts Options) {
	p := w.pdf
	if opts.Institution != "" {
		p.SetFont("Arial", "B", 14)
		p.CellFormat(0, 8, w.tr(opts.Institution), "", 1, "C", false, 0, "")
	}
	p.SetFont("Arial", "B", 13)
	p.CellFormat(0, 8, w.tr(strings.ToUpper(w.t("ReportTitle"))), "", 1, "C", false, 0, "")

	parts := []string{w.t("ReportDepartment") + ": " + r.DepartmentName}
	if opts.Term != "" {
		parts = append(parts, w.t("ReportTerm")+": "+opts.Term)
	}
	parts = append(parts, w.t("ReportResponses")+": "+strconv.Itoa(r.Responses))
	p.SetFont("Arial", "", 10)
	p.CellFormat(0, 6, w.tr(strings.Join(parts, "  |  ")), "", 1, "C", false, 0, "")
	p.Ln(4)
}

func (w *pdfWriter) heading(text string) {
	w.pdf.SetFont("Arial", "B", 11)
	w.pdf.CellFormat(0, 7, w.tr(text), "", 1, "L", false, 0, "")
}

func (w *pdfWriter) ratedTable(title, criteria string, rows []analytics.QuestionRow, responses int) {
	w.heading(title)
	widths := []float64{10, 80, 20, 20, 20, 20, 20}
	aligns := []string{"C", "L", "C", "C", "C", "C", "C"}
	w.tableHeader(widths, []string{
		"#", criteria,
		w.t("RatingVeryGood") + " (4)", w.t("RatingGood") + " (3)",
		w.t("RatingAverage") + " (2)", w.t("RatingBelowAverage") + " (1)",
		w.t("ColTotal"),
	})
	w.pdf.SetFont("Arial", "", 8)
	for _, row := range rows {
		w.tableRow(widths, aligns, []string{
			strconv.Itoa(row.Question.ID), row.Question.Text,
			strconv.Itoa(row.Counts[0]), strconv.Itoa(row.Counts[1]),
			strconv.Itoa(row.Counts[2]), strconv.Itoa(row.Counts[3]),
			strconv.Itoa(responses),
		})
	}
	w.pdf.Ln(4)
}

func (w *pdfWriter) participationTable(r analytics.Report) {
	w.heading(w.t("SectionParticipation"))
	widths := []float64{10, 120, 20, 20, 20}
	aligns := []string{"C", "L", "C", "C", "C"}
	w.tableHeader(widths, []string{"#", w.t("ColQuestion"), w.t("ColYes"), w.t("ColNo"), w.t("ColTotal")})
	w.pdf.SetFont("Arial", "", 8)
	for _, row := range r.Participation {
		w.tableRow(widths, aligns, []string{
			strconv.Itoa(row.Question.ID), row.Question.Text,
			strconv.Itoa(row.Yes), strconv.Itoa(row.No), strconv.Itoa(r.Responses),
		})
	}
	w.pdf.Ln(4)
}

func (w *pdfWriter) comments(r analytics.Report) {
	w.heading(w.t("ReportComments"))
	widths := []float64{pageWidth / 2, pageWidth / 2}
	aligns := []string{"L", "L"}
	w.tableHeader(widths, []string{w.t("ColStrengths"), w.t("ColImprovements")})
	w.pdf.SetFont("Arial", "", 8)
	for _, c := range r.Comments {
		w.tableRow(widths, aligns, []string{orDash(c.Strengths), orDash(c.Improvements)})
	}
	w.pdf.Ln(4)
}

func (w *pdfWriter) footer(r analytics.Report, opts Options) {
	p := w.pdf
	p.SetFont("Arial", "", 8)
	p.CellFormat(pageWidth/2, 5, w.tr(w.t("ReportDate")+": "+opts.Date.Format("02/01/2006")), "", 0, "L", false, 0, "")
	p.CellFormat(pageWidth/2, 5, w.tr(w.t("ReportTitle")+" - "+r.DepartmentName), "", 1, "R", false, 0, "")
	p.Ln(18)

	y := p.GetY()
	left, right := 15.0, 145.0
	p.Line(left, y, left+40, y)
	p.Line(right, y, right+40, y)
	p.SetXY(left, y+1)
	p.CellFormat(40, 5, w.tr(w.t("SignatureHOD")), "", 0, "C", false, 0, "")
	p.SetXY(right, y+1)
	p.CellFormat(40, 5, w.tr(w.t("SignaturePrincipal")), "", 1, "C", false, 0, "")
}

func (w *pdfWriter) tableHeader(widths []float64, cells []string) {
	w.pdf.SetFont("Arial", "B", 8)
	w.pdf.SetFillColor(230, 230, 230)
	aligns := make([]string, len(cells))
	for i := range aligns {
		aligns[i] = "C"
	}
	w.row(widths, aligns, cells, true)
}

func (w *pdfWriter) tableRow(widths []float64, aligns []string, cells []string) {
	w.row(widths, aligns, cells, false)
}

// row draws one table row, wrapping every cell to the height of the tallest.
func (w *pdfWriter) row(widths []float64, aligns []string, cells []string, fill bool) {
	p := w.pdf
	lines := 1
	for i, c := range cells {
		if n := len(p.SplitLines([]byte(w.tr(c)), widths[i]-2)); n > lines {
			lines = n
		}
	}
	h := float64(lines) * lineHeight

	_, pageHeight := p.GetPageSize()
	if p.GetY()+h > pageHeight-bottomMargin {
		p.AddPage()
	}

	x, y := p.GetXY()
	for i, c := range cells {
		p.Rect(x, y, widths[i], h, rectStyle(fill))
		p.SetXY(x, y)
		p.MultiCell(widths[i], lineHeight, w.tr(c), "", aligns[i], false)
		x += widths[i]
	}
	p.SetXY(leftMargin, y+h)
}

func rectStyle(fill bool) string {
	if fill {
		return "FD"
	}
	return "D"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
