package transcription

import (
	"context"
	"errors"

	"github.com/kbukum/whispersrt/provider"
)

// ErrInvalidAPIKey is returned by providers when the backend rejects the credential.
var ErrInvalidAPIKey = errors.New("invalid API key")

// Provider is a speech-to-text backend.
type Provider interface {
	provider.Provider
	// Transcribe converts the audio file named in req into timed text.
	Transcribe(ctx context.Context, req Request) (*Response, error)
}

// Middleware wraps the Transcribe call of a Provider.
type Middleware = provider.Middleware[Request, *Response]

// Instrument wraps p with the given middlewares; the first is outermost.
func Instrument(p Provider, mws ...Middleware) Provider {
	if len(mws) == 0 {
		return p
	}
	return &unwrapped{inner: provider.Chain(mws...)(&adapted{p: p})}
}

// adapted exposes a Provider as a provider.RequestResponse.
type adapted struct {
	p Provider
}

func (a *adapted) Name() string                         { return a.p.Name() }
func (a *adapted) IsAvailable(ctx context.Context) bool { return a.p.IsAvailable(ctx) }
func (a *adapted) Execute(ctx context.Context, req Request) (*Response, error) {
	return a.p.Transcribe(ctx, req)
}

// unwrapped turns a wrapped RequestResponse back into a Provider.
type unwrapped struct {
	inner provider.RequestResponse[Request, *Response]
}

func (u *unwrapped) Name() string                         { return u.inner.Name() }
func (u *unwrapped) IsAvailable(ctx context.Context) bool { return u.inner.IsAvailable(ctx) }
func (u *unwrapped) Transcribe(ctx context.Context, req Request) (*Response, error) {
	return u.inner.Execute(ctx, req)
}
