package models

// SubmissionState represents where a login form is in its submit lifecycle
type SubmissionState string

const (
	SubmissionStateIdle       SubmissionState = "idle"
	SubmissionStateSubmitting SubmissionState = "submitting"
)

// IsSubmitting returns true while a submission is in flight
func (s SubmissionState) IsSubmitting() bool {
	return s == SubmissionStateSubmitting
}

// SubmitLabel returns the visible label for the primary submit control
func (s SubmissionState) SubmitLabel() string {
	if s.IsSubmitting() {
		return "Logging in..."
	}
	return "Log in"
}

// SubmissionOutcome classifies how a submit attempt ended, used for logging and metrics
type SubmissionOutcome string

const (
	OutcomeInvalid   SubmissionOutcome = "invalid"   // validation failed, nothing started
	OutcomeRejected  SubmissionOutcome = "rejected"  // a submission was already in flight
	OutcomeSucceeded SubmissionOutcome = "succeeded" // callback invoked
	OutcomeFailed    SubmissionOutcome = "failed"    // error or panic during the operation
)
