package domain

// Question is one catalog entry with its answer key. CorrectIndex must not
// reach a player before grading; use View for outbound payloads.
type Question struct {
	ID           int      `json:"id"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"answer_index"`
}

// QuestionView is the player-facing projection of a Question with the
// correct index stripped.
type QuestionView struct {
	ID      int      `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// View strips the answer key.
func (q Question) View() QuestionView {
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	return QuestionView{ID: q.ID, Prompt: q.Prompt, Options: options}
}

// LeaderboardEntry is a snapshot-friendly view of one player's standing.
type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// ExportRow is one player's flattened summary. Cells holds one
// "chosen|correct|time" cell per catalog question, in catalog order, with
// "0|0|0" standing in for questions the player never answered.
type ExportRow struct {
	Name           string
	TotalQuestions int
	Attempted      int
	Correct        int
	TotalTime      float64
	Cells          []string
}
