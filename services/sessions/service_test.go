package sessions

import (
	"testing"
	"time"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(t.TempDir(), DefaultSessionDuration)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

func setupTestServiceWithDuration(t *testing.T, duration time.Duration) *Service {
	t.Helper()
	svc, err := NewService(t.TempDir(), duration)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

func TestNewService_DefaultDuration(t *testing.T) {
	svc, err := NewService(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	if svc.sessionDuration != DefaultSessionDuration {
		t.Errorf("expected default duration %v, got %v", DefaultSessionDuration, svc.sessionDuration)
	}
}

func TestNewService_InMemoryOnly(t *testing.T) {
	svc, err := NewService("", DefaultSessionDuration)
	if err != nil {
		t.Fatalf("NewService with empty dir failed: %v", err)
	}
	if svc.path != "" {
		t.Error("expected empty path for in-memory service")
	}
}

func TestCreate_GeneratesValidToken(t *testing.T) {
	svc := setupTestService(t)

	session, err := svc.Create("user-1", "room-1", "alice")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if session.Token == "" {
		t.Error("expected non-empty token")
	}
	if len(session.Token) < 40 {
		t.Errorf("expected token length >= 40, got %d", len(session.Token))
	}
}

func TestCreate_StoresSessionFields(t *testing.T) {
	svc := setupTestService(t)

	session, err := svc.Create("user-1", "room-1", "alice")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if session.UserID != "user-1" {
		t.Errorf("expected UserID 'user-1', got %q", session.UserID)
	}
	if session.RoomID != "room-1" {
		t.Errorf("expected RoomID 'room-1', got %q", session.RoomID)
	}
	if session.Username != "alice" {
		t.Errorf("expected Username 'alice', got %q", session.Username)
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		t.Error("expected ExpiresAt to be after CreatedAt")
	}
}

func TestCreate_UniqueTokens(t *testing.T) {
	svc := setupTestService(t)

	tokens := make(map[string]bool)
	for i := 0; i < 100; i++ {
		session, err := svc.Create("user", "room", "")
		if err != nil {
			t.Fatalf("Create failed on iteration %d: %v", i, err)
		}
		if tokens[session.Token] {
			t.Fatalf("duplicate token generated on iteration %d", i)
		}
		tokens[session.Token] = true
	}
}

func TestValidate_ValidToken(t *testing.T) {
	svc := setupTestService(t)

	created, err := svc.Create("user-1", "room-1", "alice")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	validated, err := svc.Validate(created.Token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if validated.UserID != created.UserID || validated.RoomID != created.RoomID {
		t.Errorf("expected identity to round-trip, got %+v", validated)
	}
}

func TestValidate_InvalidToken(t *testing.T) {
	svc := setupTestService(t)

	if _, err := svc.Validate("nonexistent-token"); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestValidate_EmptyToken(t *testing.T) {
	svc := setupTestService(t)

	if _, err := svc.Validate(""); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	svc := setupTestServiceWithDuration(t, 1*time.Millisecond)

	created, err := svc.Create("user-1", "room-1", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := svc.Validate(created.Token); err != ErrSessionExpired {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
	if svc.Count() != 0 {
		t.Errorf("expected 0 sessions after expiration cleanup, got %d", svc.Count())
	}
}

func TestRevoke_Success(t *testing.T) {
	svc := setupTestService(t)

	session, err := svc.Create("user-1", "room-1", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Revoke(session.Token); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if _, err := svc.Validate(session.Token); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound after revoke, got %v", err)
	}
}

func TestRevoke_NonexistentToken(t *testing.T) {
	svc := setupTestService(t)

	if err := svc.Revoke("nonexistent-token"); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRevokeRoom_MultipleSessions(t *testing.T) {
	svc := setupTestService(t)

	s1, _ := svc.Create("user-1", "room-1", "alice")
	s2, _ := svc.Create("user-2", "room-1", "bob")
	s3, _ := svc.Create("user-3", "room-2", "carol")

	count := svc.RevokeRoom("room-1")
	if count != 2 {
		t.Errorf("expected 2 sessions revoked, got %d", count)
	}

	for _, token := range []string{s1.Token, s2.Token} {
		if _, err := svc.Validate(token); err != ErrSessionNotFound {
			t.Errorf("expected ErrSessionNotFound for revoked session, got %v", err)
		}
	}
	if _, err := svc.Validate(s3.Token); err != nil {
		t.Errorf("expected room-2 session to survive, got %v", err)
	}
}

func TestCleanup_RemovesExpiredSessions(t *testing.T) {
	svc := setupTestServiceWithDuration(t, 1*time.Millisecond)

	svc.Create("user-1", "room-1", "")
	svc.Create("user-2", "room-1", "")
	svc.Create("user-3", "room-1", "")

	time.Sleep(10 * time.Millisecond)

	if cleaned := svc.Cleanup(); cleaned != 3 {
		t.Errorf("expected 3 sessions cleaned, got %d", cleaned)
	}
	if svc.Count() != 0 {
		t.Errorf("expected 0 sessions after cleanup, got %d", svc.Count())
	}
}

func TestCleanup_KeepsValidSessions(t *testing.T) {
	svc := setupTestServiceWithDuration(t, 1*time.Hour)

	svc.Create("user-1", "room-1", "")
	svc.Create("user-2", "room-1", "")

	if cleaned := svc.Cleanup(); cleaned != 0 {
		t.Errorf("expected 0 sessions cleaned, got %d", cleaned)
	}
	if svc.Count() != 2 {
		t.Errorf("expected 2 sessions after cleanup, got %d", svc.Count())
	}
}

func TestPersistence_LoadsExistingSessions(t *testing.T) {
	tmpDir := t.TempDir()

	svc1, err := NewService(tmpDir, DefaultSessionDuration)
	if err != nil {
		t.Fatalf("failed to create first service: %v", err)
	}
	session, err := svc1.Create("user-1", "room-1", "alice")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	svc2, err := NewService(tmpDir, DefaultSessionDuration)
	if err != nil {
		t.Fatalf("failed to create second service: %v", err)
	}

	validated, err := svc2.Validate(session.Token)
	if err != nil {
		t.Fatalf("expected session to be loaded from disk: %v", err)
	}
	if validated.UserID != "user-1" {
		t.Errorf("expected UserID 'user-1', got %q", validated.UserID)
	}
}

func TestPersistence_DoesNotLoadExpired(t *testing.T) {
	tmpDir := t.TempDir()

	svc1, err := NewService(tmpDir, 1*time.Millisecond)
	if err != nil {
		t.Fatalf("failed to create first service: %v", err)
	}
	if _, err := svc1.Create("user-1", "room-1", ""); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	svc2, err := NewService(tmpDir, DefaultSessionDuration)
	if err != nil {
		t.Fatalf("failed to create second service: %v", err)
	}
	if svc2.Count() != 0 {
		t.Errorf("expected 0 sessions (expired filtered), got %d", svc2.Count())
	}
}

func TestGenerateToken_Uniqueness(t *testing.T) {
	tokens := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token, err := generateToken()
		if err != nil {
			t.Fatalf("generateToken failed on iteration %d: %v", i, err)
		}
		if tokens[token] {
			t.Fatalf("duplicate token generated on iteration %d", i)
		}
		tokens[token] = true
	}
}
