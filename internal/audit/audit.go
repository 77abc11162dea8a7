package audit

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"sync"
	"time"
)

// Entry is one raw submission, logged for offline analysis only. The live
// system never reads audit data back.
type Entry struct {
	Timestamp   time.Time `json:"timestamp"`
	Player      string    `json:"player"`
	QuestionID  int       `json:"qid"`
	ChosenIndex int       `json:"chosen_index"`
	Correct     bool      `json:"correct"`
	Elapsed     float64   `json:"elapsed"`
}

// Recorder appends submissions to an audit sink.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Noop discards everything; the default when no sink is configured.
type Noop struct{}

func (Noop) Record(context.Context, Entry) error { return nil }

// FileRecorder appends CSV lines to a local file.
type FileRecorder struct {
	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

func NewFileRecorder(path string) (*FileRecorder, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileRecorder{f: f, w: csv.NewWriter(f)}, nil
}

func (r *FileRecorder) Record(_ context.Context, e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	correct := "0"
	if e.Correct {
		correct = "1"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.w.Write([]string{
		e.Timestamp.UTC().Format(time.RFC3339),
		e.Player,
		strconv.Itoa(e.QuestionID),
		strconv.Itoa(e.ChosenIndex),
		correct,
		strconv.FormatFloat(e.Elapsed, 'f', -1, 64),
	}); err != nil {
		return err
	}
	r.w.Flush()
	return r.w.Error()
}

func (r *FileRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.w.Flush()
	return r.f.Close()
}
