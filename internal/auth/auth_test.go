package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoshBaneyCS/betanito/internal/users"
)

const testSecret = "test-secret-at-least-16"

type fixture struct {
	users    *users.MemoryStore
	sessions *MemorySessionStore
	tokens   *TokenService
	service  *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:    users.NewMemoryStore(),
		sessions: NewMemorySessionStore(),
		tokens:   NewTokenService(testSecret, time.Hour),
	}
	svc, err := NewService(f.users, f.sessions, f.tokens, NewHasher(4))
	require.NoError(t, err)
	f.service = svc
	return f
}

func validForm() RegisterForm {
	return RegisterForm{
		Name:            "Ana",
		Surname:         "Rojas",
		User:            "anita",
		Birth:           "1990-05-17",
		RUT:             "12.345.678-5",
		Mail:            "Ana@Example.cl",
		Password:        "s3creta",
		PasswordConfirm: "s3creta",
	}
}

// -----------------------------------------------------------------------------
// Hasher
// -----------------------------------------------------------------------------

func TestHasher(t *testing.T) {
	h := NewHasher(4)

	a, err := h.Hash("pw")
	require.NoError(t, err)
	b, err := h.Hash("pw")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "digests are salted")
	assert.True(t, h.Verify("pw", a))
	assert.False(t, h.Verify("PW", a))
	assert.False(t, h.Verify("pw", "not-a-bcrypt-digest"))
}

func TestHasher_BadCost(t *testing.T) {
	_, err := NewHasher(99).Hash("pw")
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------
// Tokens
// -----------------------------------------------------------------------------

func TestTokenService_RoundTrip(t *testing.T) {
	tokens := NewTokenService(testSecret, time.Hour)
	userID, sessionID := uuid.New(), uuid.New()
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	token, err := tokens.Issue(userID, sessionID, exp)
	require.NoError(t, err)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, sessionID, claims.SessionID)
	assert.True(t, exp.Equal(claims.ExpiresAt))
}

func TestTokenService_Rejects(t *testing.T) {
	tokens := NewTokenService(testSecret, time.Hour)
	good, err := tokens.Issue(uuid.New(), uuid.New(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	other, err := tokens.Issue(uuid.New(), uuid.New(), time.Now().Add(time.Hour))
	require.NoError(t, err)

	// Signature of one token over the claims of another.
	goodParts, otherParts := strings.Split(good, "."), strings.Split(other, ".")
	tampered := goodParts[0] + "." + otherParts[1] + "." + goodParts[2]

	expired, err := tokens.Issue(uuid.New(), uuid.New(), time.Now().Add(-time.Minute))
	require.NoError(t, err)

	otherKey, err := NewTokenService("another-secret-of-length", time.Hour).
		Issue(uuid.New(), uuid.New(), time.Now().Add(time.Hour))
	require.NoError(t, err)

	tests := map[string]string{
		"empty":       "",
		"garbage":     "not.a.token",
		"raw user id": uuid.NewString(),
		"tampered":    tampered,
		"expired":     expired,
		"wrong key":   otherKey,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.Parse(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

// -----------------------------------------------------------------------------
// Sessions
// -----------------------------------------------------------------------------

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()
	now := time.Now()

	live := &Session{ID: uuid.New(), UserID: uuid.New(), IssuedAt: now, ExpiresAt: now.Add(time.Hour)}
	stale := &Session{ID: uuid.New(), UserID: uuid.New(), IssuedAt: now, ExpiresAt: now.Add(-time.Second)}
	require.NoError(t, store.Save(ctx, stale))
	require.NoError(t, store.Save(ctx, live))

	got, err := store.Get(ctx, live.ID)
	require.NoError(t, err)
	assert.Equal(t, live.UserID, got.UserID)

	_, err = store.Get(ctx, stale.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 1, store.Len(), "expired sessions are evicted on save")

	require.NoError(t, store.Delete(ctx, live.ID))
	require.NoError(t, store.Delete(ctx, live.ID))
	_, err = store.Get(ctx, live.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

// -----------------------------------------------------------------------------
// Register
// -----------------------------------------------------------------------------

func TestService_Register(t *testing.T) {
	f := newFixture(t)

	user, err := f.service.Register(context.Background(), validForm())
	require.NoError(t, err)

	assert.Equal(t, "12345678-5", user.RUT)
	assert.Equal(t, "ana@example.cl", user.Mail)
	assert.Equal(t, "anita", user.DisplayName)
	require.NotNil(t, user.Birth)
	assert.NotEqual(t, "s3creta", user.PasswordHash)
	assert.Equal(t, 1, f.users.Len())
}

func TestService_Register_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterForm)
		want   error
	}{
		{"password mismatch", func(f *RegisterForm) { f.PasswordConfirm = "otra" }, users.ErrPasswordMismatch},
		{"mismatch wins over missing rut", func(f *RegisterForm) { f.RUT = ""; f.PasswordConfirm = "x" }, users.ErrPasswordMismatch},
		{"missing rut", func(f *RegisterForm) { f.RUT = " " }, users.ErrMissingField},
		{"missing mail", func(f *RegisterForm) { f.Mail = "" }, users.ErrMissingField},
		{"missing password", func(f *RegisterForm) { f.Password = ""; f.PasswordConfirm = "" }, users.ErrMissingField},
		{"bad birth", func(f *RegisterForm) { f.Birth = "17/05/1990" }, users.ErrInvalidBirth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			form := validForm()
			tt.mutate(&form)

			_, err := f.service.Register(context.Background(), form)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 0, f.users.Len())
		})
	}
}

func TestService_Register_Duplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Register(ctx, validForm())
	require.NoError(t, err)

	again := validForm()
	again.User = "impostor"
	again.Mail = "otra@example.cl"
	_, err = f.service.Register(ctx, again)
	require.ErrorIs(t, err, users.ErrDuplicateKey)

	stored, err := f.users.FindByRUT(ctx, first.RUT)
	require.NoError(t, err)
	assert.Equal(t, "anita", stored.DisplayName)
	assert.Equal(t, first.PasswordHash, stored.PasswordHash)
}

// -----------------------------------------------------------------------------
// Login / Authenticate / Logout
// -----------------------------------------------------------------------------

func TestService_LoginAuthenticateLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registered, err := f.service.Register(ctx, validForm())
	require.NoError(t, err)

	issued, err := f.service.Login(ctx, " 12345678-5 ", "s3creta")
	require.NoError(t, err)
	assert.Equal(t, "anita", issued.DisplayName)
	assert.Equal(t, registered.ID, issued.Session.UserID)

	user, session, err := f.service.Authenticate(ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, issued.Session.ID, session.ID)

	require.NoError(t, f.service.Logout(ctx, issued.Token))
	_, _, err = f.service.Authenticate(ctx, issued.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Logging out twice, or with junk, is fine.
	assert.NoError(t, f.service.Logout(ctx, issued.Token))
	assert.NoError(t, f.service.Logout(ctx, "junk"))
}

func TestService_Login_InvalidCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.service.Register(ctx, validForm())
	require.NoError(t, err)

	_, err = f.service.Login(ctx, "1-9", "s3creta")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.service.Login(ctx, "12345678-5", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.Equal(t, 0, f.sessions.Len())
}

func TestService_Authenticate_DeletedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registered, err := f.service.Register(ctx, validForm())
	require.NoError(t, err)
	issued, err := f.service.Login(ctx, "12345678-5", "s3creta")
	require.NoError(t, err)

	f.users.Delete(registered.ID)

	_, _, err = f.service.Authenticate(ctx, issued.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.sessions.Get(ctx, issued.Session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound, "orphaned session is revoked")
}

func TestService_Authenticate_SessionUserMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session := &Session{ID: uuid.New(), UserID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, f.sessions.Save(ctx, session))

	token, err := f.tokens.Issue(uuid.New(), session.ID, session.ExpiresAt)
	require.NoError(t, err)

	_, _, err = f.service.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

type failingUsers struct{ users.Store }

func (failingUsers) FindByID(context.Context, uuid.UUID) (*users.User, error) {
	return nil, errors.New("connection refused")
}

func (failingUsers) FindByRUT(context.Context, string) (*users.User, error) {
	return nil, errors.New("connection refused")
}

func TestService_StoreErrorsAreInternal(t *testing.T) {
	sessions := NewMemorySessionStore()
	tokens := NewTokenService(testSecret, time.Hour)
	svc, err := NewService(failingUsers{}, sessions, tokens, NewHasher(4))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Login(ctx, "1-9", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)

	session := &Session{ID: uuid.New(), UserID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, sessions.Save(ctx, session))
	token, err := tokens.Issue(session.UserID, session.ID, session.ExpiresAt)
	require.NoError(t, err)

	_, _, err = svc.Authenticate(ctx, token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}
