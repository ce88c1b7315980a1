// =============================================================================
// SERVICE.GO - REGISTRATION, LOGIN AND SESSION CHECKS
// =============================================================================
// Service ties the credential store, the password hasher, the token signer
// and the session index together. Handlers and the access gate only talk to
// Service; none of them touch bcrypt, JWTs or the session store directly.
//
// Error taxonomy returned to callers:
//   users.ErrPasswordMismatch, users.ErrMissingField,
//   users.ErrInvalidBirth, users.ErrDuplicateKey  - registration form errors
//   ErrInvalidCredentials                          - unknown RUT or bad password
//   ErrInvalidToken, ErrSessionNotFound            - token no longer honoured
//   anything else                                  - internal error
// =============================================================================

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JoshBaneyCS/betanito/internal/users"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// RegisterForm is the raw registration form.
type RegisterForm struct {
	Name            string
	Surname         string
	User            string
	Birth           string
	RUT             string
	Mail            string
	Password        string
	PasswordConfirm string
}

// Issued is the result of a successful login: the signed token for the
// usuario_id cookie and the display name for the username cookie.
type Issued struct {
	Token       string
	DisplayName string
	ExpiresAt   time.Time
	Session     *Session
}

// Service implements the account flows.
type Service struct {
	users    users.Store
	sessions SessionStore
	tokens   *TokenService
	hasher   *Hasher

	// dummyDigest is verified against when the RUT is unknown so that a
	// missing account costs the same bcrypt work as a wrong password.
	dummyDigest string

	now func() time.Time
}

func NewService(userStore users.Store, sessions SessionStore, tokens *TokenService, hasher *Hasher) (*Service, error) {
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}

	return &Service{
		users:       userStore,
		sessions:    sessions,
		tokens:      tokens,
		hasher:      hasher,
		dummyDigest: dummy,
		now:         time.Now,
	}, nil
}

// -----------------------------------------------------------------------------
// Registration
// -----------------------------------------------------------------------------

// Register validates the form and creates the user. The password check runs
// before anything else and a mismatch never reaches the store.
func (s *Service) Register(ctx context.Context, form RegisterForm) (*users.User, error) {
	if form.Password != form.PasswordConfirm {
		return nil, users.ErrPasswordMismatch
	}

	rut := users.NormalizeRUT(form.RUT)
	mail := users.NormalizeMail(form.Mail)
	if rut == "" || mail == "" || form.Password == "" {
		return nil, users.ErrMissingField
	}

	birth, err := users.ParseBirth(form.Birth)
	if err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(form.Password)
	if err != nil {
		return nil, err
	}

	user := &users.User{
		Name:         strings.TrimSpace(form.Name),
		Surname:      strings.TrimSpace(form.Surname),
		DisplayName:  strings.TrimSpace(form.User),
		Birth:        birth,
		RUT:          rut,
		Mail:         mail,
		PasswordHash: digest,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// -----------------------------------------------------------------------------
// Login / logout
// -----------------------------------------------------------------------------

// Login checks the credentials and opens a new session.
func (s *Service) Login(ctx context.Context, rut, password string) (*Issued, error) {
	user, err := s.users.FindByRUT(ctx, users.NormalizeRUT(rut))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			s.hasher.Verify(password, s.dummyDigest)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	session := &Session{
		ID:          uuid.New(),
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.tokens.TTL()),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, session.ID, session.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Issued{
		Token:       token,
		DisplayName: user.DisplayName,
		ExpiresAt:   session.ExpiresAt,
		Session:     session,
	}, nil
}

// Logout revokes the session behind token. Tokens that do not parse have
// nothing to revoke and are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Session check
// -----------------------------------------------------------------------------

// Authenticate resolves a token to its live session and user. A session whose
// user has disappeared is revoked on the spot.
func (s *Service) Authenticate(ctx context.Context, token string) (*users.User, *Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("get session: %w", err)
	}
	if session.UserID != claims.UserID {
		return nil, nil, ErrSessionNotFound
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			if err := s.sessions.Delete(ctx, session.ID); err != nil {
				return nil, nil, fmt.Errorf("revoke orphaned session: %w", err)
			}
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	return user, session, nil
}
