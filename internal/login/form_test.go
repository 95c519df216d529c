package login

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shindakun/loginpage/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gateAuthenticator blocks until released so tests can observe the submitting state
type gateAuthenticator struct {
	entered chan struct{}
	release chan error
	calls   int
	mu      sync.Mutex
}

func newGateAuthenticator() *gateAuthenticator {
	return &gateAuthenticator{
		entered: make(chan struct{}, 4),
		release: make(chan error, 4),
	}
}

func (g *gateAuthenticator) Authenticate(ctx context.Context, _ models.Credentials) error {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	g.entered <- struct{}{}
	return <-g.release
}

func (g *gateAuthenticator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type countingRecorder struct {
	mu       sync.Mutex
	started  int
	finished map[models.SubmissionOutcome]int
	refused  map[models.SubmissionOutcome]int
	signups  int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		finished: map[models.SubmissionOutcome]int{},
		refused:  map[models.SubmissionOutcome]int{},
	}
}

func (c *countingRecorder) SubmissionStarted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started++
}

func (c *countingRecorder) SubmissionFinished(outcome models.SubmissionOutcome, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finished[outcome]++
}

func (c *countingRecorder) SubmissionRefused(outcome models.SubmissionOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refused[outcome]++
}

func (c *countingRecorder) SignUpClicked() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signups++
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type callbackSpy struct {
	mu    sync.Mutex
	calls []models.Credentials
}

func (s *callbackSpy) fn(creds models.Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, creds)
}

func (s *callbackSpy) Calls() []models.Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Credentials(nil), s.calls...)
}

func TestFormSubmitValid(t *testing.T) {
	gate := newGateAuthenticator()
	spy := &callbackSpy{}
	rec := newCountingRecorder()
	form := New(
		WithAuthenticator(gate),
		WithOnSuccess(spy.fn),
		WithRecorder(rec),
		WithLogger(quietLogger()),
	)

	var transitions []models.SubmissionState
	var tmu sync.Mutex
	form.Subscribe(func(s models.SubmissionState) {
		tmu.Lock()
		defer tmu.Unlock()
		transitions = append(transitions, s)
	})

	sub, fieldErrors, err := form.Begin(Values{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	require.Nil(t, fieldErrors)
	require.NotNil(t, sub)

	done := make(chan struct{})
	go func() {
		sub.Run(context.Background())
		close(done)
	}()

	<-gate.entered
	view := form.View()
	assert.Equal(t, models.SubmissionStateSubmitting, view.State)
	assert.Equal(t, "Logging in...", view.State.SubmitLabel())
	assert.Empty(t, spy.Calls(), "callback must wait for the operation")

	gate.release <- nil
	<-done

	assert.Equal(t, models.SubmissionStateIdle, form.State())
	assert.Equal(t, "Log in", form.State().SubmitLabel())
	require.Len(t, spy.Calls(), 1)
	assert.Equal(t, models.Credentials{Username: "alice", Password: "secret"}, spy.Calls()[0])
	assert.Empty(t, form.View().Errors)

	tmu.Lock()
	assert.Equal(t, []models.SubmissionState{
		models.SubmissionStateSubmitting,
		models.SubmissionStateIdle,
	}, transitions)
	tmu.Unlock()

	assert.Equal(t, 1, rec.started)
	assert.Equal(t, 1, rec.finished[models.OutcomeSucceeded])
}

func TestFormSubmitInvalid(t *testing.T) {
	tests := []struct {
		name   string
		values Values
		want   models.FieldErrors
	}{
		{
			name:   "empty username",
			values: Values{Username: "", Password: "secret"},
			want:   models.FieldErrors{FieldUsername: "Username is required."},
		},
		{
			name:   "empty password",
			values: Values{Username: "alice", Password: ""},
			want:   models.FieldErrors{FieldPassword: "Password is required."},
		},
		{
			name:   "both empty",
			values: Values{},
			want: models.FieldErrors{
				FieldUsername: "Username is required.",
				FieldPassword: "Password is required.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := newGateAuthenticator()
			spy := &callbackSpy{}
			rec := newCountingRecorder()
			form := New(
				WithAuthenticator(gate),
				WithOnSuccess(spy.fn),
				WithRecorder(rec),
				WithLogger(quietLogger()),
			)

			var transitions int
			form.Subscribe(func(models.SubmissionState) { transitions++ })

			fieldErrors, err := form.Submit(context.Background(), tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, fieldErrors)

			assert.Equal(t, models.SubmissionStateIdle, form.State())
			assert.Empty(t, spy.Calls())
			assert.Equal(t, 0, gate.Calls())
			assert.Equal(t, 0, transitions, "submitting flag must never be set")
			assert.Equal(t, tt.want, form.View().Errors)
			assert.Equal(t, tt.values.Username, form.View().Username)
			assert.Equal(t, 1, rec.refused[models.OutcomeInvalid])
		})
	}
}

func TestFormCorrectsErrorsOnNextSubmit(t *testing.T) {
	form := New(
		WithAuthenticator(SimulatedAuthenticator{}),
		WithLogger(quietLogger()),
	)

	fieldErrors, err := form.Submit(context.Background(), Values{Password: "secret"})
	require.NoError(t, err)
	require.True(t, fieldErrors.Has(FieldUsername))

	fieldErrors, err = form.Submit(context.Background(), Values{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Nil(t, fieldErrors)
	assert.Empty(t, form.View().Errors)
}

func TestFormRejectsDoubleSubmit(t *testing.T) {
	gate := newGateAuthenticator()
	spy := &callbackSpy{}
	rec := newCountingRecorder()
	form := New(
		WithAuthenticator(gate),
		WithOnSuccess(spy.fn),
		WithRecorder(rec),
		WithLogger(quietLogger()),
	)

	sub, _, err := form.Begin(Values{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		sub.Run(context.Background())
		close(done)
	}()
	<-gate.entered

	second, fieldErrors, err := form.Begin(Values{Username: "alice", Password: "secret"})
	assert.ErrorIs(t, err, ErrSubmissionInProgress)
	assert.Nil(t, second)
	assert.Nil(t, fieldErrors)

	// Invalid values while submitting are refused the same way
	_, err = form.Submit(context.Background(), Values{})
	assert.ErrorIs(t, err, ErrSubmissionInProgress)

	gate.release <- nil
	<-done

	assert.Equal(t, 1, gate.Calls(), "only one simulated delay may run")
	assert.Len(t, spy.Calls(), 1)
	assert.Equal(t, 2, rec.refused[models.OutcomeRejected])

	// Running the same submission again is a no-op
	sub.Run(context.Background())
	assert.Equal(t, 1, gate.Calls())
	assert.Len(t, spy.Calls(), 1)
}

func TestFormCleanupRunsExactlyOnce(t *testing.T) {
	tests := []struct {
		name     string
		auth     Authenticator
		callback CompletionFunc
		outcome  models.SubmissionOutcome
		wantCall bool
	}{
		{
			name:     "success",
			auth:     SimulatedAuthenticator{},
			outcome:  models.OutcomeSucceeded,
			wantCall: true,
		},
		{
			name: "operation error",
			auth: AuthenticatorFunc(func(context.Context, models.Credentials) error {
				return errors.New("backend unavailable")
			}),
			outcome: models.OutcomeFailed,
		},
		{
			name: "operation panic",
			auth: AuthenticatorFunc(func(context.Context, models.Credentials) error {
				panic("boom")
			}),
			outcome: models.OutcomeFailed,
		},
		{
			name: "callback panic",
			auth: SimulatedAuthenticator{},
			callback: func(models.Credentials) {
				panic("callback boom")
			},
			outcome:  models.OutcomeFailed,
			wantCall: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &callbackSpy{}
			callback := tt.callback
			if callback == nil {
				callback = spy.fn
			} else {
				inner := callback
				callback = func(c models.Credentials) {
					spy.fn(c)
					inner(c)
				}
			}

			rec := newCountingRecorder()
			form := New(
				WithAuthenticator(tt.auth),
				WithOnSuccess(callback),
				WithRecorder(rec),
				WithLogger(quietLogger()),
			)

			var idle int
			form.Subscribe(func(s models.SubmissionState) {
				if s == models.SubmissionStateIdle {
					idle++
				}
			})

			assert.NotPanics(t, func() {
				fieldErrors, err := form.Submit(context.Background(), Values{Username: "alice", Password: "secret"})
				assert.NoError(t, err)
				assert.Nil(t, fieldErrors)
			})

			assert.Equal(t, models.SubmissionStateIdle, form.State())
			assert.Equal(t, 1, idle)
			assert.Equal(t, 1, rec.finished[tt.outcome])
			if tt.wantCall {
				assert.Len(t, spy.Calls(), 1)
			} else {
				assert.Empty(t, spy.Calls())
			}

			// The form accepts a new submission afterwards
			_, err := form.Submit(context.Background(), Values{Username: "bob", Password: "pw"})
			assert.NoError(t, err)
		})
	}
}

func TestFormWithoutCallback(t *testing.T) {
	form := New(
		WithAuthenticator(SimulatedAuthenticator{}),
		WithLogger(quietLogger()),
	)

	fieldErrors, err := form.Submit(context.Background(), Values{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Nil(t, fieldErrors)
	assert.Equal(t, models.SubmissionStateIdle, form.State())
}

func TestFormSignUpIsInert(t *testing.T) {
	spy := &callbackSpy{}
	rec := newCountingRecorder()
	form := New(
		WithAuthenticator(SimulatedAuthenticator{}),
		WithOnSuccess(spy.fn),
		WithRecorder(rec),
		WithLogger(quietLogger()),
	)

	var transitions int
	form.Subscribe(func(models.SubmissionState) { transitions++ })

	form.SignUp()
	form.SignUp()

	assert.Empty(t, spy.Calls())
	assert.Equal(t, 0, transitions)
	assert.Equal(t, models.SubmissionStateIdle, form.State())
	assert.Equal(t, 2, rec.signups)
	assert.Equal(t, 0, rec.started)
}

func TestFormUnsubscribe(t *testing.T) {
	form := New(
		WithAuthenticator(SimulatedAuthenticator{}),
		WithLogger(quietLogger()),
	)

	var calls int
	unsubscribe := form.Subscribe(func(models.SubmissionState) { calls++ })

	_, err := form.Submit(context.Background(), Values{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	unsubscribe()
	_, err = form.Submit(context.Background(), Values{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestFormViewCopiesErrors(t *testing.T) {
	form := New(WithLogger(quietLogger()), WithClass("mt-4"))

	_, err := form.Submit(context.Background(), Values{})
	require.NoError(t, err)

	view := form.View()
	view.Errors[FieldUsername] = "changed"
	assert.Equal(t, "Username is required.", form.View().Errors[FieldUsername])
	assert.Equal(t, "mt-4", view.Class)
}

func TestSimulatedAuthenticator(t *testing.T) {
	t.Run("waits for the delay", func(t *testing.T) {
		a := SimulatedAuthenticator{Delay: 20 * time.Millisecond}
		start := time.Now()
		require.NoError(t, a.Authenticate(context.Background(), models.Credentials{}))
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("honors context", func(t *testing.T) {
		a := SimulatedAuthenticator{Delay: time.Minute}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, a.Authenticate(ctx, models.Credentials{}), context.Canceled)
	})
}
