package login

import (
	"context"
	"time"

	"github.com/shindakun/loginpage/internal/models"
)

// DefaultSimulatedDelay stands in for a network round-trip to an auth backend
const DefaultSimulatedDelay = time.Second

// Authenticator performs the asynchronous part of a login submission.
// Real backends plug in here; the form only cares whether it returned an error.
type Authenticator interface {
	Authenticate(ctx context.Context, creds models.Credentials) error
}

// AuthenticatorFunc adapts a function to the Authenticator interface
type AuthenticatorFunc func(ctx context.Context, creds models.Credentials) error

// Authenticate calls f(ctx, creds)
func (f AuthenticatorFunc) Authenticate(ctx context.Context, creds models.Credentials) error {
	return f(ctx, creds)
}

// SimulatedAuthenticator accepts every credential pair after a fixed delay.
// There is no network call.
type SimulatedAuthenticator struct {
	Delay time.Duration
}

// Authenticate waits for the configured delay and returns nil
func (a SimulatedAuthenticator) Authenticate(ctx context.Context, _ models.Credentials) error {
	if a.Delay <= 0 {
		return nil
	}

	timer := time.NewTimer(a.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
