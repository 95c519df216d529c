// Package login implements the login form: schema validation, the idle/submitting
// state machine and the simulated submit operation.
package login

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shindakun/loginpage/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrSubmissionInProgress is returned when the form is submitted while a previous
// submission has not finished
var ErrSubmissionInProgress = errors.New("login: submission already in progress")

// CompletionFunc is invoked once per successful submission with the validated credentials
type CompletionFunc func(creds models.Credentials)

// Recorder receives submission events, typically for metrics
type Recorder interface {
	SubmissionStarted()
	SubmissionFinished(outcome models.SubmissionOutcome, elapsed time.Duration)
	SubmissionRefused(outcome models.SubmissionOutcome)
	SignUpClicked()
}

type nopRecorder struct{}

func (nopRecorder) SubmissionStarted()                                          {}
func (nopRecorder) SubmissionFinished(models.SubmissionOutcome, time.Duration) {}
func (nopRecorder) SubmissionRefused(models.SubmissionOutcome)                  {}
func (nopRecorder) SignUpClicked()                                              {}

// Option configures a Form
type Option func(*Form)

// WithOnSuccess sets the completion callback
func WithOnSuccess(fn CompletionFunc) Option {
	return func(f *Form) { f.onSuccess = fn }
}

// WithAuthenticator replaces the simulated authenticator
func WithAuthenticator(a Authenticator) Option {
	return func(f *Form) { f.auth = a }
}

// WithValidator shares a validator between forms
func WithValidator(v *Validator) Option {
	return func(f *Form) { f.validator = v }
}

// WithLogger sets the logger
func WithLogger(l logrus.FieldLogger) Option {
	return func(f *Form) { f.logger = l }
}

// WithRecorder sets the event recorder
func WithRecorder(r Recorder) Option {
	return func(f *Form) { f.recorder = r }
}

// WithClass sets the caller supplied class override for the form card
func WithClass(class string) Option {
	return func(f *Form) { f.class = class }
}

// View is a snapshot of everything needed to render the form
type View struct {
	Username string
	Errors   models.FieldErrors
	State    models.SubmissionState
	Class    string
}

type observer struct {
	fn func(models.SubmissionState)
}

// Form holds the field values, validation errors and submission state of one login form.
// It is safe for concurrent use.
type Form struct {
	mu        sync.Mutex
	state     models.SubmissionState
	username  string
	errors    models.FieldErrors
	observers []*observer

	validator *Validator
	auth      Authenticator
	onSuccess CompletionFunc
	recorder  Recorder
	logger    logrus.FieldLogger
	class     string
}

// New creates an idle form
func New(opts ...Option) *Form {
	f := &Form{
		state:    models.SubmissionStateIdle,
		auth:     SimulatedAuthenticator{Delay: DefaultSimulatedDelay},
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.validator == nil {
		f.validator = NewValidator()
	}
	if f.logger == nil {
		f.logger = logrus.StandardLogger().WithField("component", "login")
	}
	return f
}

// State returns the current submission state
func (f *Form) State() models.SubmissionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// View returns a render snapshot of the form
func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs models.FieldErrors
	if len(f.errors) > 0 {
		errs = make(models.FieldErrors, len(f.errors))
		for k, v := range f.errors {
			errs[k] = v
		}
	}

	return View{
		Username: f.username,
		Errors:   errs,
		State:    f.state,
		Class:    f.class,
	}
}

// Subscribe registers fn to be called after every state transition.
// The returned function removes the subscription.
func (f *Form) Subscribe(fn func(models.SubmissionState)) func() {
	o := &observer{fn: fn}

	f.mu.Lock()
	f.observers = append(f.observers, o)
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, existing := range f.observers {
			if existing == o {
				f.observers = append(f.observers[:i], f.observers[i+1:]...)
				return
			}
		}
	}
}

// transition must be called with f.mu held; observers run after the lock is released
func (f *Form) transition(to models.SubmissionState) []*observer {
	f.state = to
	return append([]*observer(nil), f.observers...)
}

func notify(observers []*observer, state models.SubmissionState) {
	for _, o := range observers {
		o.fn(state)
	}
}

// Begin validates values and, if they pass, moves the form to submitting.
// Invalid values return field errors and leave the form idle. A form that is
// already submitting returns ErrSubmissionInProgress without validating.
func (f *Form) Begin(values Values) (*Submission, models.FieldErrors, error) {
	f.mu.Lock()

	if f.state.IsSubmitting() {
		f.mu.Unlock()
		f.recorder.SubmissionRefused(models.OutcomeRejected)
		f.logger.WithField("username", values.Username).Warn("Login submission ignored, previous submission still in flight")
		return nil, nil, ErrSubmissionInProgress
	}

	f.username = values.Username

	if fieldErrors := f.validator.Validate(values); !fieldErrors.Empty() {
		f.errors = fieldErrors
		f.mu.Unlock()
		f.recorder.SubmissionRefused(models.OutcomeInvalid)
		f.logger.WithField("fields", len(fieldErrors)).Debug("Login form failed validation")
		return nil, fieldErrors, nil
	}

	f.errors = nil
	observers := f.transition(models.SubmissionStateSubmitting)
	f.mu.Unlock()

	f.recorder.SubmissionStarted()
	notify(observers, models.SubmissionStateSubmitting)

	return &Submission{
		form:    f,
		creds:   values.Credentials(),
		started: time.Now(),
	}, nil, nil
}

// Submit is Begin followed by a synchronous Run
func (f *Form) Submit(ctx context.Context, values Values) (models.FieldErrors, error) {
	sub, fieldErrors, err := f.Begin(values)
	if err != nil || sub == nil {
		return fieldErrors, err
	}
	sub.Run(ctx)
	return nil, nil
}

// SignUp handles the secondary sign-up control. It only logs.
func (f *Form) SignUp() {
	f.recorder.SignUpClicked()
	f.logger.Info("Navigate to Sign Up page")
}

// Submission is one in-flight login attempt, created by Form.Begin
type Submission struct {
	form    *Form
	creds   models.Credentials
	started time.Time

	ran      atomic.Bool
	finished sync.Once
}

// Credentials returns the credentials being submitted
func (s *Submission) Credentials() models.Credentials {
	return s.creds
}

// Run performs the authenticate step, invokes the completion callback on success and
// always returns the form to idle. Errors and panics are logged, never returned.
// Only the first call does anything.
func (s *Submission) Run(ctx context.Context) {
	if !s.ran.CompareAndSwap(false, true) {
		return
	}

	f := s.form
	logger := f.logger.WithField("username", s.creds.Username)
	outcome := models.OutcomeFailed

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error("Login failed")
			outcome = models.OutcomeFailed
		}
		s.finish(outcome)
	}()

	logger.Info("Login form submitted")

	if err := f.auth.Authenticate(ctx, s.creds); err != nil {
		logger.WithError(err).Error("Login failed")
		return
	}

	if f.onSuccess != nil {
		f.onSuccess(s.creds)
	}
	outcome = models.OutcomeSucceeded
}

func (s *Submission) finish(outcome models.SubmissionOutcome) {
	s.finished.Do(func() {
		f := s.form

		f.mu.Lock()
		observers := f.transition(models.SubmissionStateIdle)
		f.mu.Unlock()

		f.recorder.SubmissionFinished(outcome, time.Since(s.started))
		notify(observers, models.SubmissionStateIdle)
	})
}
