// =============================================================================
// TOKEN.GO - SIGNED IDENTITY TOKEN
// =============================================================================
// The usuario_id cookie carries an HS256 JWT:
//   sub - the user's UUID
//   jti - the server-side session ID (see session.go)
//   exp - expiry, equal to the session TTL
//
// A valid signature only proves the token was issued here. The gate still
// checks that the session behind jti exists, so logout revokes the token.
// =============================================================================

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "betanito"

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims identifies a user and the session the token was issued for.
type Claims struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
	ExpiresAt time.Time
}

// TokenService signs and parses identity tokens.
type TokenService struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewTokenService creates a token service. secret must be kept private;
// anyone holding it can mint tokens for any user.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secretKey: []byte(secret),
		ttl:       ttl,
		now:       time.Now,
	}
}

// TTL is the lifetime of tokens issued by this service.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for the given session.
func (s *TokenService) Issue(userID, sessionID uuid.UUID, expiresAt time.Time) (string, error) {
	now := s.now()

	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		ID:        sessionID.String(),
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// Parse validates the signature, issuer and expiry of tokenString.
func (s *TokenService) Parse(tokenString string) (*Claims, error) {
	var registered jwt.RegisteredClaims

	token, err := jwt.ParseWithClaims(tokenString, &registered, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(registered.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	sessionID, err := uuid.Parse(registered.ID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Claims{
		UserID:    userID,
		SessionID: sessionID,
		ExpiresAt: registered.ExpiresAt.Time,
	}, nil
}
