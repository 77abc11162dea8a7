package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"live-quiz-service/internal/domain"
)

// FileLoader reads the catalog from a JSON file: an array of questions with
// id, prompt, options and answer_index fields.
type FileLoader struct {
	path string
}

func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

func (l *FileLoader) Load(_ context.Context) ([]domain.Question, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}
	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("parse questions file: %w", err)
	}
	return questions, nil
}
