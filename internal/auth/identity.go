package auth

import (
	"context"
	"errors"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is the caller behind a request. The zero value is Anonymous.
type Identity struct {
	Subject string `json:"sub"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
}

var Anonymous = Identity{}

func (i Identity) IsAnonymous() bool { return i.Subject == "" }

// Verifier turns a raw bearer token into an identity.
type Verifier interface {
	Verify(ctx context.Context, raw string) (Identity, error)
}

// Chain tries each verifier in order and returns the first success.
type Chain []Verifier

func (c Chain) Verify(ctx context.Context, raw string) (Identity, error) {
	err := error(ErrInvalidToken)
	for _, v := range c {
		id, verr := v.Verify(ctx, raw)
		if verr == nil {
			return id, nil
		}
		err = verr
	}
	return Anonymous, err
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored in ctx, or Anonymous.
func FromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(ctxKey{}).(Identity); ok {
		return id
	}
	return Anonymous
}
