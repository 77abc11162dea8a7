package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"live-quiz-service/internal/domain"
)

func TestNewValidates(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name      string
		questions []domain.Question
	}{
		{"empty catalog", nil},
		{"no options", []domain.Question{{ID: 1, Prompt: "p"}}},
		{"index out of range", []domain.Question{{ID: 1, Prompt: "p", Options: []string{"a"}, CorrectIndex: 3}}},
		{"negative index", []domain.Question{{ID: 1, Prompt: "p", Options: []string{"a"}, CorrectIndex: -1}}},
		{"duplicate ids", []domain.Question{
			{ID: 1, Prompt: "p", Options: []string{"a"}, CorrectIndex: 0},
			{ID: 1, Prompt: "q", Options: []string{"b"}, CorrectIndex: 0},
		}},
	}
	for _, tc := range cases {
		if _, err := New(ctx, NewStaticLoader(tc.questions)); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestCatalogLookups(t *testing.T) {
	cat, err := New(context.Background(), NewStaticLoader([]domain.Question{
		{ID: 1, Prompt: "First", Options: []string{"a", "b"}, CorrectIndex: 1},
		{ID: 5, Prompt: "Fifth", Options: []string{"x", "y", "z"}, CorrectIndex: 0},
	}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if cat.Len() != 2 {
		t.Fatalf("expected 2 questions, got %d", cat.Len())
	}
	q, ok := cat.Get(5)
	if !ok || q.Prompt != "Fifth" {
		t.Fatalf("expected question 5, got %+v ok=%v", q, ok)
	}
	if _, ok := cat.Get(999); ok {
		t.Fatalf("expected miss for unknown id")
	}

	views := cat.Views()
	if len(views) != 2 || views[0].ID != 1 || views[1].ID != 5 {
		t.Fatalf("views must keep load order, got %+v", views)
	}
}

func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	content := `[
		{"id": 1, "prompt": "What is 2 + 2?", "options": ["3", "4"], "answer_index": 1},
		{"id": 2, "prompt": "Pick A", "options": ["A", "B"], "answer_index": 0}
	]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	cat, err := New(context.Background(), NewFileLoader(path))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	q, ok := cat.Get(1)
	if !ok || q.CorrectIndex != 1 {
		t.Fatalf("unexpected question %+v ok=%v", q, ok)
	}
}

func TestFileLoaderMissingFile(t *testing.T) {
	if _, err := New(context.Background(), NewFileLoader("does-not-exist.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
