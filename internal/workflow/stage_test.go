package workflow_test

import (
	"testing"

	"github.com/nikbrunner/bmtidy/internal/workflow"
)

func TestStage_NextPrevClamp(t *testing.T) {
	session, _ := newTestSession(t)

	// Prev at the first stage stays put
	session.PrevStage()
	if session.Stage() != workflow.StageReview {
		t.Errorf("prev at review must stay at review, got %q", session.Stage())
	}

	session.NextStage()
	if session.Stage() != workflow.StageOrganize {
		t.Errorf("expected organize, got %q", session.Stage())
	}

	session.NextStage()
	if session.Stage() != workflow.StagePreview {
		t.Errorf("expected preview, got %q", session.Stage())
	}

	// Next at the last stage stays put
	session.NextStage()
	if session.Stage() != workflow.StagePreview {
		t.Errorf("next at preview must stay at preview, got %q", session.Stage())
	}

	session.PrevStage()
	if session.Stage() != workflow.StageOrganize {
		t.Errorf("expected organize after prev, got %q", session.Stage())
	}
}

func TestSetStage_RejectsUnknown(t *testing.T) {
	session, _ := newTestSession(t)

	if err := session.SetStage(workflow.Stage("launch")); err == nil {
		t.Fatal("expected error for unknown stage")
	}
	if session.Stage() != workflow.StageReview {
		t.Errorf("failed SetStage must not change the stage, got %q", session.Stage())
	}

	if err := session.SetStage(workflow.StagePreview); err != nil {
		t.Fatalf("SetStage failed: %v", err)
	}
	if session.Stage() != workflow.StagePreview {
		t.Errorf("expected preview, got %q", session.Stage())
	}
}

func TestStage_Valid(t *testing.T) {
	for _, stage := range []workflow.Stage{workflow.StageReview, workflow.StageOrganize, workflow.StagePreview} {
		if !stage.Valid() {
			t.Errorf("%q should be valid", stage)
		}
	}
	if workflow.Stage("").Valid() {
		t.Error("empty stage should be invalid")
	}
}
