package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewManager_RejectsEmptySecret(t *testing.T) {
	for _, secret := range []string{"", "   "} {
		if _, err := NewManager(secret); !errors.Is(err, ErrMissingSecret) {
			t.Fatalf("secret %q: expected ErrMissingSecret, got %v", secret, err)
		}
	}
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	m, err := NewManager("test-secret-key")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	tok, err := m.Issue("user-1", "a@x.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if claims.UserID != "user-1" || claims.Email != "a@x.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != TokenTTL {
		t.Fatalf("validity window %v, want %v", got, TokenTTL)
	}
}

func TestVerify_ValidForWholeWindowThenExpires(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	base, _ := NewManager("test-secret-key")
	tok, err := base.WithClock(fixedClock(issuedAt)).Issue("user-1", "a@x.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name    string
		at      time.Time
		wantErr bool
	}{
		{name: "just_issued", at: issuedAt},
		{name: "six_days_later", at: issuedAt.Add(6 * 24 * time.Hour)},
		{name: "one_second_before_expiry", at: issuedAt.Add(TokenTTL - time.Second)},
		{name: "one_second_after_expiry", at: issuedAt.Add(TokenTTL + time.Second), wantErr: true},
		{name: "a_month_later", at: issuedAt.Add(30 * 24 * time.Hour), wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := base.WithClock(fixedClock(tt.at)).Verify(tok)

			if tt.wantErr {
				if !errors.Is(err, ErrInvalidToken) {
					t.Fatalf("expected ErrInvalidToken, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestVerify_RejectsAlteredSignature(t *testing.T) {
	m, _ := NewManager("test-secret-key")

	tokA, _ := m.Issue("user-a", "a@x.com")
	tokB, _ := m.Issue("user-b", "b@x.com")

	a := strings.Split(tokA, ".")
	b := strings.Split(tokB, ".")

	// payload of B carried with the signature of A
	forged := a[0] + "." + b[1] + "." + a[2]

	if _, err := m.Verify(forged); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for forged token, got %v", err)
	}
}

func TestVerify_RejectsOtherSecret(t *testing.T) {
	m, _ := NewManager("test-secret-key")
	other, _ := NewManager("another-secret")

	tok, _ := other.Issue("user-1", "a@x.com")

	if _, err := m.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_RejectsMalformedAndUnsigned(t *testing.T) {
	m, _ := NewManager("test-secret-key")

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	noneTok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	for _, tok := range []string{"", "garbage", "a.b.c", noneTok} {
		if _, err := m.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", tok, err)
		}
	}
}
