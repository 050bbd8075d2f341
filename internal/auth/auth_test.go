package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret-32-bytes-should-be-long-enough"

func TestJWTVerifier_RoundTrip(t *testing.T) {
	want := Identity{Subject: "user-123", Name: "Ada", Email: "ada@example.com"}
	tok, err := IssueToken(secret, want, time.Minute)
	require.NoError(t, err)

	got, err := NewJWTVerifier(secret).Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestJWTVerifier_Rejects(t *testing.T) {
	ctx := context.Background()
	v := NewJWTVerifier(secret)

	expired, err := IssueToken(secret, Identity{Subject: "u"}, -time.Minute)
	require.NoError(t, err)
	other, err := IssueToken("another-secret-32-bytes-longgggg", Identity{Subject: "u"}, time.Minute)
	require.NoError(t, err)
	noSub, err := IssueToken(secret, Identity{}, time.Minute)
	require.NoError(t, err)
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u"}).SignedString([]byte(secret))
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "u", "exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"expired": expired, "wrong secret": other, "no subject": noSub,
		"no expiry": noExp, "wrong algorithm": hs512, "garbage": "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			id, err := v.Verify(ctx, raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.True(t, id.IsAnonymous())
		})
	}

	_, err = NewJWTVerifier("").Verify(ctx, expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueToken_EmptySecret(t *testing.T) {
	_, err := IssueToken("", Identity{Subject: "u"}, time.Minute)
	assert.Error(t, err)
}

func TestOIDCVerifier_RejectsGarbage(t *testing.T) {
	ks := &oidc.StaticKeySet{}
	v := NewOIDCVerifierFrom(oidc.NewVerifier("https://issuer.example.com", ks, &oidc.Config{ClientID: "resume"}))
	_, err := v.Verify(context.Background(), "a.b.c")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

type verifierFunc func(context.Context, string) (Identity, error)

func (f verifierFunc) Verify(ctx context.Context, raw string) (Identity, error) { return f(ctx, raw) }

func TestChain(t *testing.T) {
	fail := verifierFunc(func(context.Context, string) (Identity, error) {
		return Anonymous, errors.Join(ErrInvalidToken, errors.New("nope"))
	})
	ok := verifierFunc(func(_ context.Context, raw string) (Identity, error) {
		return Identity{Subject: raw}, nil
	})

	id, err := Chain{fail, ok}.Verify(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", id.Subject)

	_, err = Chain{fail}.Verify(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = Chain{}.Verify(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	assert.True(t, FromContext(ctx).IsAnonymous())

	ctx = WithIdentity(ctx, Identity{Subject: "u1"})
	assert.Equal(t, "u1", FromContext(ctx).Subject)
}
