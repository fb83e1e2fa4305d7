// Package report renders department reports as PDF and CSV.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/pavelanni/exitsurvey/internal/analytics"
)

var csvHeaders = []string{
	"section", "question_id", "question",
	"very_good", "good", "average", "below_average",
	"yes", "no", "responses", "mean",
}

// CSV renders the question tables of a report, one row per question.
func CSV(r analytics.Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}

	responses := strconv.Itoa(r.Responses)
	rated := func(rows []analytics.QuestionRow) error {
		for _, row := range rows {
			record := []string{
				string(row.Question.Section), strconv.Itoa(row.Question.ID), row.Question.Text,
				strconv.Itoa(row.Counts[0]), strconv.Itoa(row.Counts[1]),
				strconv.Itoa(row.Counts[2]), strconv.Itoa(row.Counts[3]),
				"", "", responses, strconv.FormatFloat(row.Average, 'f', 2, 64),
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
		return nil
	}

	if err := rated(r.Facilities); err != nil {
		return nil, err
	}
	for _, row := range r.Participation {
		record := []string{
			string(row.Question.Section), strconv.Itoa(row.Question.ID), row.Question.Text,
			"", "", "", "",
			strconv.Itoa(row.Yes), strconv.Itoa(row.No), responses, "",
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	if err := rated(r.Accomplishment); err != nil {
		return nil, err
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
