package app

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"live-quiz-service/internal/catalog"
	"live-quiz-service/internal/domain"
)

// AnonymousName replaces empty or whitespace-only player names.
const AnonymousName = "anonymous"

// sentinelCell marks a question the player never answered in export rows.
const sentinelCell = "0|0|0"

// answerRecord is a player's latest submission for one question. A record
// exists iff the player submitted; re-submission overwrites it.
type answerRecord struct {
	correct bool
	chosen  int
	elapsed float64
	points  int
}

type playerState struct {
	score   int
	answers map[int]answerRecord
}

type activeQuestion struct {
	questionID int
	startedAt  time.Time
}

// Session holds the authoritative mutable state for one run of the quiz:
// per-player scores and answer logs plus the currently active question.
// All mutation happens under one short-lived mutex; snapshots are frozen
// copies so callers never broadcast or serialize while the lock is held.
type Session struct {
	catalog *catalog.Catalog
	scorer  Scorer
	now     func() time.Time

	mu      sync.Mutex
	players map[string]*playerState
	active  *activeQuestion
}

func NewSession(cat *catalog.Catalog, scorer Scorer) *Session {
	return NewSessionWithClock(cat, scorer, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(cat *catalog.Catalog, scorer Scorer, now func() time.Time) *Session {
	return &Session{
		catalog: cat,
		scorer:  scorer,
		now:     now,
		players: make(map[string]*playerState),
	}
}

// NormalizeName trims a player name, coercing empty input to AnonymousName.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return AnonymousName
	}
	return name
}

// SubmissionOutcome summarizes one applied submission.
type SubmissionOutcome struct {
	Name     string
	Delta    int
	Correct  bool
	NewScore int
}

// RecordAnswer grades and applies one submission. Re-submission for the same
// question overwrites the prior record and backs its points out first, so the
// score always reflects exactly one scoring application per question.
// A chosen index outside the option range is graded as incorrect, not
// rejected.
func (s *Session) RecordAnswer(name string, questionID, chosenIndex int, elapsedSeconds float64) (SubmissionOutcome, error) {
	question, ok := s.catalog.Get(questionID)
	if !ok {
		return SubmissionOutcome{}, domain.ErrUnknownQuestion
	}
	if elapsedSeconds < 0 || math.IsNaN(elapsedSeconds) || math.IsInf(elapsedSeconds, 0) {
		return SubmissionOutcome{}, domain.ErrInvalidPayload
	}

	name = NormalizeName(name)
	correct := chosenIndex == question.CorrectIndex
	points := s.scorer.Score(correct, elapsedSeconds)

	s.mu.Lock()
	player, ok := s.players[name]
	if !ok {
		player = &playerState{answers: make(map[int]answerRecord)}
		s.players[name] = player
	}
	if prior, resubmit := player.answers[questionID]; resubmit {
		player.score -= prior.points
	}
	player.answers[questionID] = answerRecord{
		correct: correct,
		chosen:  chosenIndex,
		elapsed: elapsedSeconds,
		points:  points,
	}
	player.score += points
	newScore := player.score
	s.mu.Unlock()

	return SubmissionOutcome{Name: name, Delta: points, Correct: correct, NewScore: newScore}, nil
}

// ActivateQuestion makes the given question current, implicitly ending any
// prior one, and returns the player-facing view for the start announcement.
func (s *Session) ActivateQuestion(questionID int) (domain.QuestionView, error) {
	question, ok := s.catalog.Get(questionID)
	if !ok {
		return domain.QuestionView{}, domain.ErrUnknownQuestion
	}

	s.mu.Lock()
	s.active = &activeQuestion{questionID: questionID, startedAt: s.now()}
	s.mu.Unlock()

	return question.View(), nil
}

// Active reports the currently open question, if any.
func (s *Session) Active() (questionID int, startedAt time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return 0, time.Time{}, false
	}
	return s.active.questionID, s.active.startedAt, true
}

// SnapshotLeaderboard returns a frozen, totally ordered leaderboard: score
// descending, then name ascending. Names are unique keys, so the order is
// deterministic.
func (s *Session) SnapshotLeaderboard() []domain.LeaderboardEntry {
	s.mu.Lock()
	entries := make([]domain.LeaderboardEntry, 0, len(s.players))
	for name, player := range s.players {
		entries = append(entries, domain.LeaderboardEntry{Name: name, Score: player.score})
	}
	s.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// SnapshotForExport flattens every player's answer log into summary rows,
// ordered like the leaderboard. It copies state under the lock and builds
// rows outside it, so a slow export never stalls submissions.
func (s *Session) SnapshotForExport() []domain.ExportRow {
	type playerCopy struct {
		name    string
		score   int
		answers map[int]answerRecord
	}

	s.mu.Lock()
	copies := make([]playerCopy, 0, len(s.players))
	for name, player := range s.players {
		answers := make(map[int]answerRecord, len(player.answers))
		for qid, rec := range player.answers {
			answers[qid] = rec
		}
		copies = append(copies, playerCopy{name: name, score: player.score, answers: answers})
	}
	s.mu.Unlock()

	sort.Slice(copies, func(i, j int) bool {
		if copies[i].score != copies[j].score {
			return copies[i].score > copies[j].score
		}
		return copies[i].name < copies[j].name
	})

	questions := s.catalog.Questions()
	rows := make([]domain.ExportRow, 0, len(copies))
	for _, p := range copies {
		row := domain.ExportRow{
			Name:           p.name,
			TotalQuestions: len(questions),
			Attempted:      len(p.answers),
			Cells:          make([]string, 0, len(questions)),
		}
		for _, rec := range p.answers {
			if rec.correct {
				row.Correct++
			}
			row.TotalTime += rec.elapsed
		}
		row.TotalTime = round3(row.TotalTime)
		for _, q := range questions {
			rec, attempted := p.answers[q.ID]
			if !attempted {
				row.Cells = append(row.Cells, sentinelCell)
				continue
			}
			correct := 0
			if rec.correct {
				correct = 1
			}
			row.Cells = append(row.Cells, fmt.Sprintf("%d|%d|%s", rec.chosen, correct, formatSeconds(rec.elapsed)))
		}
		rows = append(rows, row)
	}
	return rows
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(round3(v), 'f', -1, 64)
}
