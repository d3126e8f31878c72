package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(t *testing.T) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	return New("test-secret", string(hash))
}

func TestLoginAndValidate(t *testing.T) {
	svc := newTestAuth(t)

	token, err := svc.Login("alice", "hunter2")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Operator != "alice" {
		t.Errorf("Expected operator alice, got %q", claims.Operator)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestAuth(t)

	if _, err := svc.Login("alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login("", ""); err == nil {
		t.Fatal("Expected error for empty credentials")
	}
}

func TestLoginDisabledWithoutHash(t *testing.T) {
	svc := New("test-secret", "")

	if _, err := svc.Login("alice", "hunter2"); !errors.Is(err, ErrTokensDisabled) {
		t.Fatalf("Expected ErrTokensDisabled, got %v", err)
	}
}

func TestValidateTokenRejectsOtherSecret(t *testing.T) {
	token, err := New("secret-a", "").CreateToken("alice")
	if err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}

	if _, err := New("secret-b", "").ValidateToken(token); err == nil {
		t.Fatal("token signed with another secret was accepted")
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !verifyPassword("hunter2", hash) || verifyPassword("hunter3", hash) {
		t.Fatal("hash does not verify correctly")
	}
}
