package domain

// Event type tags carried in every broadcast frame.
const (
	EventQuestionStart     = "question_start"
	EventLeaderboardUpdate = "leaderboard_update"
	EventAnswerResult      = "answer_result"
)

// QuestionStartEvent announces the newly activated question to all subscribers.
type QuestionStartEvent struct {
	Type     string       `json:"type"`
	Question QuestionView `json:"question"`
}

// LeaderboardUpdateEvent carries a frozen leaderboard snapshot.
type LeaderboardUpdateEvent struct {
	Type        string             `json:"type"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// AnswerResultEvent reports a graded submission. It fans out to every
// subscriber; recipients filter by the Name field.
type AnswerResultEvent struct {
	Type         string  `json:"type"`
	Name         string  `json:"name"`
	QuestionID   int     `json:"qid"`
	Correct      bool    `json:"correct"`
	CorrectIndex int     `json:"correct_index"`
	CorrectText  string  `json:"correct_text"`
	TimeTaken    float64 `json:"time_taken"`
	CurrentScore int     `json:"current_score"`
}
