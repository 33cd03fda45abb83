package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "room-reservations"

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AdminCredentials identifies the single administrator account.
type AdminCredentials struct {
	Username     string
	PasswordHash string
}

// AuthService checks admin credentials and issues signed session tokens.
type AuthService struct {
	credentials    AdminCredentials
	secret         []byte
	verifyPassword PasswordVerifier
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(credentials AdminCredentials, secret []byte, verify PasswordVerifier, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(credentials, secret, verify, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(credentials AdminCredentials, secret []byte, verify PasswordVerifier, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyPassword
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	return &AuthService{
		credentials:    credentials,
		secret:         secret,
		verifyPassword: verify,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Login checks the admin username and password and issues a token.
func (s *AuthService) Login(ctx context.Context, username, password string) (session AdminSession, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	username = strings.TrimSpace(username)
	logger := s.loggerWith(ctx, "Login", "username", username)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "admin login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "admin login succeeded", "expires_at", session.ExpiresAt)
	}()

	if username == "" || password == "" || len(s.secret) == 0 {
		err = ErrInvalidCredentials
		return
	}

	userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(s.credentials.Username)) == 1
	if verifyErr := s.verifyPassword(s.credentials.PasswordHash, password); verifyErr != nil || !userMatch {
		if verifyErr != nil && !errors.Is(verifyErr, ErrInvalidCredentials) {
			logger.ErrorContext(ctx, "stored admin password hash unusable", "error", verifyErr)
		}
		err = ErrInvalidCredentials
		return
	}

	issued := s.now()
	expires := issued.Add(s.sessionTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   s.credentials.Username,
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(expires),
	})

	var signed string
	signed, err = token.SignedString(s.secret)
	if err != nil {
		err = fmt.Errorf("sign session token: %w", err)
		return
	}

	session = AdminSession{
		Token:     signed,
		ExpiresAt: expires,
		Principal: Principal{UserID: s.credentials.Username, IsAdmin: true},
	}
	return
}

// ValidateSession verifies a token issued by Login and returns its principal.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	token = strings.TrimSpace(token)
	if token == "" {
		err = ErrInvalidCredentials
		return
	}

	claims := &jwt.RegisteredClaims{}
	_, parseErr := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if parseErr != nil {
		s.loggerWith(ctx, "ValidateSession").DebugContext(ctx, "session token rejected", "error", parseErr)
		err = ErrInvalidCredentials
		return
	}
	if subtle.ConstantTimeCompare([]byte(claims.Subject), []byte(s.credentials.Username)) != 1 {
		err = ErrInvalidCredentials
		return
	}

	principal = Principal{UserID: claims.Subject, IsAdmin: true}
	return
}
