package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates exam attempt states. The state machine is
// two-state: an attempt is IN_PROGRESS from start() until submit(), then
// SUBMITTED forever.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "IN_PROGRESS"
	AttemptStatusSubmitted  AttemptStatus = "SUBMITTED"
)

// ViolationType classifies a proctoring violation reported against an
// in-progress attempt. The set is open on the wire: unrecognized values are
// accepted and take the default trust delta.
type ViolationType string

const (
	ViolationFaceNotDetected ViolationType = "FACE_NOT_DETECTED"
	ViolationMultipleFaces   ViolationType = "MULTIPLE_FACES"
	ViolationLookingAway     ViolationType = "LOOKING_AWAY"
	ViolationTabSwitch       ViolationType = "TAB_SWITCH"
	ViolationFullscreenExit  ViolationType = "FULLSCREEN_EXIT"
	ViolationPhoneDetected   ViolationType = "PHONE_DETECTED"
	ViolationAudioAnomaly    ViolationType = "AUDIO_ANOMALY"
)

// TrustDelta returns the trust-score impact of a violation. Every known
// classification has a deliberate value; anything else falls through to -1.
func (t ViolationType) TrustDelta() int {
	switch t {
	case ViolationFaceNotDetected:
		return -3
	case ViolationMultipleFaces:
		return -10
	case ViolationLookingAway:
		return -1
	case ViolationTabSwitch:
		return -2
	case ViolationFullscreenExit:
		return -2
	case ViolationPhoneDetected:
		return -5
	case ViolationAudioAnomaly:
		return -1
	default:
		return -1
	}
}

// Violation is a single proctoring event recorded against an attempt.
// Append-only; Reviewed supports a manual audit workflow outside this
// service.
type Violation struct {
	ID         int64         `json:"id"`
	AttemptID  uuid.UUID     `json:"attempt_id"`
	Type       ViolationType `json:"type"`
	OccurredAt time.Time     `json:"occurred_at"`
	Screenshot *string       `json:"screenshot,omitempty"`
	Confidence *float64      `json:"confidence,omitempty"`
	Reviewed   bool          `json:"reviewed"`
}

// Answer is a graded answer, created only at submission. QuestionIndex
// refers to the exam's canonical question order, not the shuffled display
// order.
type Answer struct {
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
	IsCorrect     bool   `json:"is_correct"`
	Points        int    `json:"points"`
}

// ExamAttempt is one user's attempt at one exam. QuestionOrder is the
// permutation of canonical question indices fixed at creation; Score and
// IsPassed are set exactly once, at submission.
type ExamAttempt struct {
	ID             uuid.UUID     `json:"id"`
	ExamID         uuid.UUID     `json:"exam_id"`
	UserID         uuid.UUID     `json:"user_id"`
	StartedAt      time.Time     `json:"started_at"`
	SubmittedAt    *time.Time    `json:"submitted_at,omitempty"`
	Status         AttemptStatus `json:"status"`
	QuestionOrder  []int         `json:"question_order"`
	Answers        []Answer      `json:"answers,omitempty"`
	Violations     []Violation   `json:"violations,omitempty"`
	ViolationCount int           `json:"violation_count"`
	Score          *int          `json:"score,omitempty"`
	IsPassed       *bool         `json:"is_passed,omitempty"`
	IPAddress      string        `json:"ip_address,omitempty"`
	UserAgent      string        `json:"user_agent,omitempty"`
}

// AnswerSubmission is one entry of a submit payload.
type AnswerSubmission struct {
	QuestionIndex int    `json:"question_index" binding:"min=0"`
	Answer        string `json:"answer"`
}

// SubmitAttemptRequest is the payload for submitting an attempt.
type SubmitAttemptRequest struct {
	Answers []AnswerSubmission `json:"answers" binding:"required,dive"`
}

// ReportViolationRequest is the payload for reporting a proctoring
// violation. Type is deliberately unconstrained beyond presence.
type ReportViolationRequest struct {
	Type       ViolationType `json:"type" binding:"required,min=1,max=100"`
	Screenshot *string       `json:"screenshot" binding:"omitempty,max=500"`
	Confidence *float64      `json:"confidence" binding:"omitempty,min=0,max=1"`
}
