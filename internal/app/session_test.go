package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"live-quiz-service/internal/catalog"
	"live-quiz-service/internal/domain"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(context.Background(), catalog.NewStaticLoader([]domain.Question{
		{ID: 1, Prompt: "First", Options: []string{"right", "wrong"}, CorrectIndex: 0},
		{ID: 2, Prompt: "Second", Options: []string{"wrong", "right"}, CorrectIndex: 1},
	}))
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return cat
}

func TestRecordAnswerFlatRule(t *testing.T) {
	session := NewSession(testCatalog(t), FlatScorer{})

	out, err := session.RecordAnswer("Ann", 1, 0, 2.0)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !out.Correct || out.Delta != 1 || out.NewScore != 1 {
		t.Fatalf("expected correct +1, got %+v", out)
	}

	out, err = session.RecordAnswer("Ann", 2, 1, 1.5)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if out.NewScore != 2 {
		t.Fatalf("expected score 2 after both answers, got %d", out.NewScore)
	}

	lb := session.SnapshotLeaderboard()
	if len(lb) != 1 || lb[0].Name != "Ann" || lb[0].Score != 2 {
		t.Fatalf("expected [(Ann, 2)], got %+v", lb)
	}
}

func TestRecordAnswerUnknownQuestion(t *testing.T) {
	session := NewSession(testCatalog(t), FlatScorer{})

	before := session.SnapshotLeaderboard()
	_, err := session.RecordAnswer("Ann", 999, 0, 1.0)
	if !errors.Is(err, domain.ErrUnknownQuestion) {
		t.Fatalf("expected ErrUnknownQuestion, got %v", err)
	}
	after := session.SnapshotLeaderboard()
	if len(after) != len(before) {
		t.Fatalf("leaderboard changed after rejected submission: %+v", after)
	}
}

func TestRecordAnswerInvalidElapsed(t *testing.T) {
	session := NewSession(testCatalog(t), FlatScorer{})
	if _, err := session.RecordAnswer("Ann", 1, 0, -1.0); !errors.Is(err, domain.ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload for negative elapsed, got %v", err)
	}
}

func TestRecordAnswerOutOfRangeIndexIsIncorrect(t *testing.T) {
	session := NewSession(testCatalog(t), FlatScorer{})

	out, err := session.RecordAnswer("Ann", 1, 7, 1.0)
	if err != nil {
		t.Fatalf("out-of-range index must not be rejected: %v", err)
	}
	if out.Correct || out.Delta != 0 {
		t.Fatalf("out-of-range index must score as incorrect, got %+v", out)
	}
}

func TestRecordAnswerCoercesEmptyName(t *testing.T) {
	session := NewSession(testCatalog(t), FlatScorer{})

	out, err := session.RecordAnswer("   ", 1, 0, 1.0)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if out.Name != AnonymousName {
		t.Fatalf("expected placeholder name, got %q", out.Name)
	}
}

func TestResubmissionLastWriteWins(t *testing.T) {
	session := NewSession(testCatalog(t), FlatScorer{})

	if _, err := session.RecordAnswer("Ann", 1, 1, 3.0); err != nil {
		t.Fatalf("first submission: %v", err)
	}
	out, err := session.RecordAnswer("Ann", 1, 0, 5.0)
	if err != nil {
		t.Fatalf("second submission: %v", err)
	}
	if !out.Correct || out.NewScore != 1 {
		t.Fatalf("expected score 1 after overwrite, got %+v", out)
	}

	// And the reverse: a correct answer replayed incorrectly erases the point.
	out, err = session.RecordAnswer("Ann", 1, 1, 1.0)
	if err != nil {
		t.Fatalf("third submission: %v", err)
	}
	if out.Correct || out.NewScore != 0 {
		t.Fatalf("expected score 0 after incorrect overwrite, got %+v", out)
	}

	rows := session.SnapshotForExport()
	if len(rows) != 1 || rows[0].Attempted != 1 {
		t.Fatalf("expected a single record for the question, got %+v", rows)
	}
	if rows[0].Cells[0] != "1|0|1" {
		t.Fatalf("record should reflect only the last submission, got %q", rows[0].Cells[0])
	}
}

func TestConcurrentSubmissionsDistinctPlayers(t *testing.T) {
	session := NewSession(testCatalog(t), FlatScorer{})

	const n = 64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			name := "player-" + string(rune('A'+i%26)) + "-" + string(rune('a'+i/26))
			if _, err := session.RecordAnswer(name, 1, 0, 1.0); err != nil {
				t.Errorf("record: %v", err)
			}
		}(i)
	}
	wg.Wait()

	total := 0
	for _, entry := range session.SnapshotLeaderboard() {
		total += entry.Score
	}
	if total != n {
		t.Fatalf("expected total score %d across concurrent submissions, got %d", n, total)
	}
}

func TestLeaderboardTotalOrder(t *testing.T) {
	session := NewSession(testCatalog(t), FlatScorer{})

	// zed and amy tie on one point; bob stays on zero.
	if _, err := session.RecordAnswer("zed", 1, 0, 1.0); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := session.RecordAnswer("amy", 1, 0, 1.0); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := session.RecordAnswer("bob", 1, 1, 1.0); err != nil {
		t.Fatalf("record: %v", err)
	}

	lb := session.SnapshotLeaderboard()
	want := []string{"amy", "zed", "bob"}
	for i, name := range want {
		if lb[i].Name != name {
			t.Fatalf("expected order %v, got %+v", want, lb)
		}
	}
}

func TestActivateQuestionStripsAnswerKey(t *testing.T) {
	now := time.Date(2025, 8, 29, 12, 0, 0, 0, time.UTC)
	session := NewSessionWithClock(testCatalog(t), FlatScorer{}, func() time.Time { return now })

	view, err := session.ActivateQuestion(2)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if view.ID != 2 || len(view.Options) != 2 {
		t.Fatalf("unexpected view %+v", view)
	}

	qid, startedAt, ok := session.Active()
	if !ok || qid != 2 || !startedAt.Equal(now) {
		t.Fatalf("expected active question 2 at %v, got qid=%d at=%v ok=%v", now, qid, startedAt, ok)
	}

	// Activating another question replaces the first with no queueing.
	if _, err := session.ActivateQuestion(1); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if qid, _, _ := session.Active(); qid != 1 {
		t.Fatalf("expected active question 1, got %d", qid)
	}
}

func TestActivateUnknownQuestion(t *testing.T) {
	session := NewSession(testCatalog(t), FlatScorer{})
	if _, err := session.ActivateQuestion(999); !errors.Is(err, domain.ErrUnknownQuestion) {
		t.Fatalf("expected ErrUnknownQuestion, got %v", err)
	}
}

func TestSnapshotForExportCompleteness(t *testing.T) {
	session := NewSession(testCatalog(t), FlatScorer{})

	// P1 answers everything correctly; P2 submits one wrong answer so it
	// appears in the log but has a sentinel for the untouched question.
	if _, err := session.RecordAnswer("p1", 1, 0, 2.0); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := session.RecordAnswer("p1", 2, 1, 1.5); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := session.RecordAnswer("p2", 1, 1, 4.0); err != nil {
		t.Fatalf("record: %v", err)
	}

	rows := session.SnapshotForExport()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	p1 := rows[0]
	if p1.Name != "p1" || p1.Attempted != 2 || p1.Correct != 2 || p1.TotalQuestions != 2 {
		t.Fatalf("unexpected p1 row %+v", p1)
	}
	if p1.TotalTime != 3.5 {
		t.Fatalf("expected total time 3.5, got %v", p1.TotalTime)
	}
	if p1.Cells[0] != "0|1|2" || p1.Cells[1] != "1|1|1.5" {
		t.Fatalf("unexpected p1 cells %v", p1.Cells)
	}

	p2 := rows[1]
	if p2.Attempted != 1 || p2.Correct != 0 {
		t.Fatalf("unexpected p2 row %+v", p2)
	}
	if p2.Cells[0] != "1|0|4" || p2.Cells[1] != "0|0|0" {
		t.Fatalf("unexpected p2 cells %v", p2.Cells)
	}
}

func TestSnapshotForExportEmptySession(t *testing.T) {
	session := NewSession(testCatalog(t), FlatScorer{})
	if rows := session.SnapshotForExport(); len(rows) != 0 {
		t.Fatalf("expected no rows for empty session, got %+v", rows)
	}
}
