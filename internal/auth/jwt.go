package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes for the short-lived, single-intent token kinds. The
// purpose tag keeps a password-reset token from being replayed as an
// email-verification token and vice versa.
const (
	PurposeEmailVerify   = "email_verify"
	PurposePasswordReset = "password_reset"
)

var (
	// ErrTokenExpired marks a token past its expiry.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenInvalid marks a malformed token, a bad signature, or a
	// purpose mismatch.
	ErrTokenInvalid = errors.New("could not validate token")
)

// AccessClaims are the claims of a long-lived access token.
type AccessClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// PurposeClaims are the claims of a purpose-scoped token.
type PurposeClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Manager encapsulates JWT generation and validation for all three token
// kinds.
type Manager struct {
	secret       []byte
	issuer       string
	accessExpiry time.Duration
	verifyExpiry time.Duration
	resetExpiry  time.Duration
}

// NewManager creates a new JWT manager.
func NewManager(secret, issuer string, accessExpiry, verifyExpiry, resetExpiry time.Duration) (*Manager, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if accessExpiry <= 0 {
		accessExpiry = 30 * time.Minute
	}
	if verifyExpiry <= 0 {
		verifyExpiry = 72 * time.Hour
	}
	if resetExpiry <= 0 {
		resetExpiry = 24 * time.Hour
	}
	if strings.TrimSpace(issuer) == "" {
		issuer = "teamspace"
	}
	return &Manager{
		secret:       []byte(trimmed),
		issuer:       issuer,
		accessExpiry: accessExpiry,
		verifyExpiry: verifyExpiry,
		resetExpiry:  resetExpiry,
	}, nil
}

// GenerateAccessToken issues a signed access token for the given user id.
func (m *Manager) GenerateAccessToken(userID string) (string, time.Time, error) {
	if m == nil {
		return "", time.Time{}, errors.New("jwt manager is nil")
	}
	if strings.TrimSpace(userID) == "" {
		return "", time.Time{}, errors.New("invalid user for token generation")
	}
	now := time.Now().UTC()
	expiry := now.Add(m.accessExpiry)

	claims := AccessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiry, nil
}

// ParseAccessToken validates an access token and returns the embedded
// user id. It returns ErrTokenExpired past expiry and ErrTokenInvalid
// for anything else; callers treat both as unauthenticated.
func (m *Manager) ParseAccessToken(tokenString string) (string, error) {
	if m == nil {
		return "", errors.New("jwt manager is nil")
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", ErrTokenInvalid
	}
	return claims.UserID, nil
}

// GeneratePurposeToken issues a signed token binding an email address to
// a single intent (email verification or password reset).
func (m *Manager) GeneratePurposeToken(email, purpose string) (string, error) {
	if m == nil {
		return "", errors.New("jwt manager is nil")
	}
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", errors.New("email must not be empty")
	}

	var expiry time.Duration
	switch purpose {
	case PurposeEmailVerify:
		expiry = m.verifyExpiry
	case PurposePasswordReset:
		expiry = m.resetExpiry
	default:
		return "", errors.New("unknown token purpose")
	}

	now := time.Now().UTC()
	claims := PurposeClaims{
		Email:   normalized,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   normalized,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParsePurposeToken validates a purpose token and returns the embedded
// email only when signature, expiry and purpose all match.
func (m *Manager) ParsePurposeToken(tokenString, expectedPurpose string) (string, error) {
	if m == nil {
		return "", errors.New("jwt manager is nil")
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenString, &PurposeClaims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	claims, ok := token.Claims.(*PurposeClaims)
	if !ok || !token.Valid || claims.Email == "" {
		return "", ErrTokenInvalid
	}
	if claims.Purpose != expectedPurpose {
		return "", ErrTokenInvalid
	}
	return claims.Email, nil
}
