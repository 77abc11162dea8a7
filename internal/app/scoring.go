package app

import "math"

// Scorer maps a graded submission to a point delta. Implementations must be
// pure functions of their arguments: no clock reads, no catalog lookups.
// That purity is what lets the session apply scores inside one short
// critical section.
type Scorer interface {
	Score(correct bool, elapsedSeconds float64) int
}

// FlatScorer awards one point per correct answer. This is the service's
// primary rule: scores stay recoverable by replaying the answer log.
type FlatScorer struct{}

func (FlatScorer) Score(correct bool, _ float64) int {
	if correct {
		return 1
	}
	return 0
}

// Speed-bonus defaults, overridable via config.
const (
	DefaultSpeedBase  = 1000
	DefaultSpeedRate  = 200
	DefaultSpeedFloor = 100
)

// SpeedScorer awards Base minus Rate points per elapsed second, never below
// Floor. Incorrect answers score zero. The delta is never negative.
type SpeedScorer struct {
	Base  int
	Rate  int
	Floor int
}

func (s SpeedScorer) Score(correct bool, elapsedSeconds float64) int {
	if !correct {
		return 0
	}
	points := s.Base - int(math.Floor(elapsedSeconds*float64(s.Rate)))
	if points < s.Floor {
		points = s.Floor
	}
	if points < 0 {
		points = 0
	}
	return points
}
