package app

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"live-quiz-service/internal/audit"
	"live-quiz-service/internal/catalog"
	"live-quiz-service/internal/domain"
)

// Broadcaster fans one event out to every live subscriber. Implementations
// must never block on a slow peer; delivery failures are theirs to absorb.
type Broadcaster interface {
	Broadcast(event any)
}

// Service wires the session, catalog, fan-out hub and audit sink into the
// quiz use cases. Handlers hold a Service instance; nothing here is global.
type Service struct {
	catalog *catalog.Catalog
	session *Session
	hub     Broadcaster
	audit   audit.Recorder
	logger  *slog.Logger

	export singleflight.Group
}

func NewService(cat *catalog.Catalog, session *Session, hub Broadcaster, rec audit.Recorder, logger *slog.Logger) *Service {
	if rec == nil {
		rec = audit.Noop{}
	}
	return &Service{
		catalog: cat,
		session: session,
		hub:     hub,
		audit:   rec,
		logger:  logger,
	}
}

// Questions returns the player-facing catalog, answer keys stripped.
func (s *Service) Questions() []domain.QuestionView {
	return s.catalog.Views()
}

// StartQuestion activates a question and announces it to all subscribers.
func (s *Service) StartQuestion(_ context.Context, questionID int) error {
	view, err := s.session.ActivateQuestion(questionID)
	if err != nil {
		return err
	}
	s.hub.Broadcast(domain.QuestionStartEvent{Type: domain.EventQuestionStart, Question: view})
	s.logger.Info("question started", "qid", questionID)
	return nil
}

// SubmitAnswer grades one submission, records it, and pushes the result and
// the refreshed leaderboard to all subscribers. The state mutation happens
// inside the session; both broadcasts run after its lock is released.
func (s *Service) SubmitAnswer(ctx context.Context, name string, questionID, chosenIndex int, elapsedSeconds float64) (domain.AnswerResultEvent, error) {
	outcome, err := s.session.RecordAnswer(name, questionID, chosenIndex, elapsedSeconds)
	if err != nil {
		return domain.AnswerResultEvent{}, err
	}

	if err := s.audit.Record(ctx, audit.Entry{
		Player:      outcome.Name,
		QuestionID:  questionID,
		ChosenIndex: chosenIndex,
		Correct:     outcome.Correct,
		Elapsed:     elapsedSeconds,
	}); err != nil {
		// Audit is fire-and-forget; the submission already succeeded.
		s.logger.Warn("audit record failed", "error", err)
	}

	question, _ := s.catalog.Get(questionID)
	result := domain.AnswerResultEvent{
		Type:         domain.EventAnswerResult,
		Name:         outcome.Name,
		QuestionID:   questionID,
		Correct:      outcome.Correct,
		CorrectIndex: question.CorrectIndex,
		CorrectText:  question.Options[question.CorrectIndex],
		TimeTaken:    elapsedSeconds,
		CurrentScore: outcome.NewScore,
	}
	s.hub.Broadcast(result)
	s.hub.Broadcast(domain.LeaderboardUpdateEvent{
		Type:        domain.EventLeaderboardUpdate,
		Leaderboard: s.session.SnapshotLeaderboard(),
	})
	return result, nil
}

// Leaderboard returns the current frozen leaderboard.
func (s *Service) Leaderboard() []domain.LeaderboardEntry {
	return s.session.SnapshotLeaderboard()
}

// ExportSummary renders the per-player summary table as CSV. Concurrent
// requests coalesce onto one snapshot; each caller gets the same bytes.
func (s *Service) ExportSummary(_ context.Context) ([]byte, error) {
	v, err, _ := s.export.Do("summary", func() (interface{}, error) {
		return renderSummaryCSV(s.catalog.Questions(), s.session.SnapshotForExport())
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
