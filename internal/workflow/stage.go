// Package workflow implements the stage-gated bookmark cleanup engine:
// selection and soft-deletion over a working record set, folder and move
// management, a bounded invertible operation history, and a resumable
// session.
package workflow

import "fmt"

// Stage identifies a cleanup workflow stage. Stages form a linear order;
// jumps in either direction are legal since no stage enforces
// prerequisite completion.
type Stage string

const (
	StageReview   Stage = "review"
	StageOrganize Stage = "organize"
	StagePreview  Stage = "preview"
)

var stageOrder = []Stage{StageReview, StageOrganize, StagePreview}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	return s.index() >= 0
}

func (s Stage) index() int {
	for i, stage := range stageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

// Next returns the following stage, clamped at preview.
func (s Stage) Next() Stage {
	i := s.index()
	if i < 0 || i == len(stageOrder)-1 {
		return s
	}
	return stageOrder[i+1]
}

// Prev returns the preceding stage, clamped at review.
func (s Stage) Prev() Stage {
	i := s.index()
	if i <= 0 {
		return s
	}
	return stageOrder[i-1]
}

// NextStage advances the session one stage if not already terminal.
func (s *Session) NextStage() {
	s.stage = s.stage.Next()
}

// PrevStage retreats the session one stage if not already initial.
func (s *Session) PrevStage() {
	s.stage = s.stage.Prev()
}

// SetStage jumps directly to any stage.
func (s *Session) SetStage(stage Stage) error {
	if !stage.Valid() {
		return fmt.Errorf("unknown stage %q", stage)
	}
	s.stage = stage
	return nil
}

// Stage returns the session's current stage.
func (s *Session) Stage() Stage {
	return s.stage
}
