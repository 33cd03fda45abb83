package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

var testPasswordParams = PasswordParams{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  8,
	KeyLength:   16,
}

func newTestAuthService(t *testing.T, now func() time.Time) *AuthService {
	t.Helper()
	hash, err := HashPassword("con123", testPasswordParams)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return NewAuthService(AdminCredentials{Username: "admin", PasswordHash: hash}, []byte("test-secret"), nil, now, time.Hour)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestAuthService(t, func() time.Time { return current })

	t.Run("issues a token that validates", func(t *testing.T) {
		session, err := svc.Login(ctx, "admin", "con123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if session.Token == "" || !session.ExpiresAt.Equal(current.Add(time.Hour)) {
			t.Fatalf("unexpected session %+v", session)
		}
		principal, err := svc.ValidateSession(ctx, session.Token)
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if principal.UserID != "admin" || !principal.IsAdmin {
			t.Fatalf("unexpected principal %+v", principal)
		}
	})

	cases := []struct {
		name     string
		username string
		password string
	}{
		{name: "wrong password", username: "admin", password: "nope"},
		{name: "wrong user", username: "root", password: "con123"},
		{name: "empty", username: "", password: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tc.username, tc.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}

	t.Run("malformed stored hash is rejected", func(t *testing.T) {
		broken := NewAuthService(AdminCredentials{Username: "admin", PasswordHash: "plain"}, []byte("k"), nil, nil, 0)
		if _, err := broken.Login(ctx, "admin", "con123"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestAuthService(t, func() time.Time { return current })

	session, err := svc.Login(ctx, "admin", "con123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	t.Run("tampered token", func(t *testing.T) {
		parts := strings.Split(session.Token, ".")
		tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
		if _, err := svc.ValidateSession(ctx, tampered); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewAuthService(AdminCredentials{Username: "admin"}, []byte("different"), nil, func() time.Time { return current }, time.Hour)
		if _, err := other.ValidateSession(ctx, session.Token); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		current = current.Add(2 * time.Hour)
		defer func() { current = current.Add(-2 * time.Hour) }()
		if _, err := svc.ValidateSession(ctx, session.Token); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("blank token", func(t *testing.T) {
		if _, err := svc.ValidateSession(ctx, "  "); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if _, err := svc.ValidateSession(ctx, strings.Repeat("a", 40)); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestPasswordHash(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3cret", testPasswordParams)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected encoding %q", hash)
	}
	if err := CheckPasswordHash(hash); err != nil {
		t.Fatalf("expected well-formed hash, got %v", err)
	}
	if err := VerifyPassword(hash, "s3cret"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := VerifyPassword(hash, "other"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := CheckPasswordHash("$argon2i$v=19$m=1,t=1,p=1$a$b"); !errors.Is(err, ErrInvalidPasswordHash) {
		t.Fatalf("expected ErrInvalidPasswordHash, got %v", err)
	}
	if err := CheckPasswordHash("$argon2id$v=18$m=1,t=1,p=1$YQ$Yg"); !errors.Is(err, ErrIncompatiblePasswordVersion) {
		t.Fatalf("expected ErrIncompatiblePasswordVersion, got %v", err)
	}
}
