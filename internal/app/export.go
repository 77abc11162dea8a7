package app

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"live-quiz-service/internal/domain"
)

// renderSummaryCSV writes the export table: a fixed header plus one Q<id>
// column per catalog question. An empty session yields a header-only file,
// still valid CSV.
func renderSummaryCSV(questions []domain.Question, rows []domain.ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"player_name", "total_questions", "attempted", "correct", "total_time"}
	for _, q := range questions {
		header = append(header, "Q"+strconv.Itoa(q.ID))
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, row := range rows {
		record := []string{
			row.Name,
			strconv.Itoa(row.TotalQuestions),
			strconv.Itoa(row.Attempted),
			strconv.Itoa(row.Correct),
			formatSeconds(row.TotalTime),
		}
		record = append(record, row.Cells...)
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
