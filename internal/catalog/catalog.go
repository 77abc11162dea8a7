package catalog

import (
	"context"
	"fmt"

	"live-quiz-service/internal/domain"
)

// Loader fetches question content from a backing store (file, Postgres, ...).
type Loader interface {
	Load(ctx context.Context) ([]domain.Question, error)
}

// Catalog is the immutable, validated question set for one run of the
// service. It is built once at startup and safe for concurrent reads.
type Catalog struct {
	questions []domain.Question
	byID      map[int]domain.Question
}

// New loads and validates the catalog. A load or validation failure here is
// the only abort-worthy error the service has.
func New(ctx context.Context, loader Loader) (*Catalog, error) {
	questions, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	byID := make(map[int]domain.Question, len(questions))
	for _, q := range questions {
		if _, dup := byID[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %d", q.ID)
		}
		if len(q.Options) == 0 {
			return nil, fmt.Errorf("question %d has no options", q.ID)
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return nil, fmt.Errorf("question %d: correct index %d out of range", q.ID, q.CorrectIndex)
		}
		byID[q.ID] = q
	}
	return &Catalog{questions: questions, byID: byID}, nil
}

// Get returns the question with the given ID.
func (c *Catalog) Get(id int) (domain.Question, bool) {
	q, ok := c.byID[id]
	return q, ok
}

// Len reports the number of questions.
func (c *Catalog) Len() int {
	return len(c.questions)
}

// Questions returns the full catalog in load order. The slice is a copy;
// callers may not see the answer key unless they hold a Question directly.
func (c *Catalog) Questions() []domain.Question {
	out := make([]domain.Question, len(c.questions))
	copy(out, c.questions)
	return out
}

// Views returns the player-facing catalog in load order, answer keys stripped.
func (c *Catalog) Views() []domain.QuestionView {
	views := make([]domain.QuestionView, 0, len(c.questions))
	for _, q := range c.questions {
		views = append(views, q.View())
	}
	return views
}

// StaticLoader serves a fixed question slice (useful for tests/demos).
type StaticLoader struct {
	questions []domain.Question
}

func NewStaticLoader(questions []domain.Question) *StaticLoader {
	return &StaticLoader{questions: questions}
}

func (l *StaticLoader) Load(_ context.Context) ([]domain.Question, error) {
	return l.questions, nil
}
