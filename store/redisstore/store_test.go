package redisstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	sessionauth "github.com/interviewly/sessionauth"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, "authtest")
}

func seedUser(t *testing.T, store *Store, username, email string) sessionauth.UserRecord {
	t.Helper()
	created, err := store.CreateUser(context.Background(), sessionauth.UserRecord{
		Username:     username,
		Email:        email,
		FullName:     "Test User",
		Role:         "candidate",
		PasswordHash: "$argon2id$v=19$m=65536,t=2,p=2$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
	})
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	return created
}

func TestCreateAndGetUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := seedUser(t, store, "alice", "alice@example.com")
	if created.ID == "" {
		t.Fatal("expected generated user ID")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}

	got, err := store.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUserByID error: %v", err)
	}
	if got.Username != "alice" || got.Email != "alice@example.com" || got.Role != "candidate" {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.RefreshToken != "" {
		t.Fatalf("new user should have no refresh token, got %q", got.RefreshToken)
	}
}

func TestCreateDuplicate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedUser(t, store, "alice", "alice@example.com")

	_, err := store.CreateUser(ctx, sessionauth.UserRecord{
		Username: "alice", Email: "other@example.com", PasswordHash: "x",
	})
	if !errors.Is(err, sessionauth.ErrUserExists) {
		t.Fatalf("duplicate username: got %v, want ErrUserExists", err)
	}

	_, err = store.CreateUser(ctx, sessionauth.UserRecord{
		Username: "bob", Email: "alice@example.com", PasswordHash: "x",
	})
	if !errors.Is(err, sessionauth.ErrUserExists) {
		t.Fatalf("duplicate email: got %v, want ErrUserExists", err)
	}
}

func TestGetUserByIdentifier(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := seedUser(t, store, "alice", "alice@example.com")

	byName, err := store.GetUserByIdentifier(ctx, "alice")
	if err != nil {
		t.Fatalf("lookup by username error: %v", err)
	}
	if byName.ID != created.ID {
		t.Fatalf("lookup by username returned ID %q, want %q", byName.ID, created.ID)
	}

	byEmail, err := store.GetUserByIdentifier(ctx, "ALICE@example.com")
	if err != nil {
		t.Fatalf("lookup by email error: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("lookup by email returned ID %q, want %q", byEmail.ID, created.ID)
	}

	if _, err := store.GetUserByIdentifier(ctx, "nobody"); !errors.Is(err, sessionauth.ErrUserNotFound) {
		t.Fatalf("unknown identifier: got %v, want ErrUserNotFound", err)
	}
}

func TestRefreshTokenLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := seedUser(t, store, "alice", "alice@example.com")

	if err := store.SetRefreshToken(ctx, created.ID, "r1"); err != nil {
		t.Fatalf("SetRefreshToken error: %v", err)
	}

	token, err := store.GetRefreshToken(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetRefreshToken error: %v", err)
	}
	if token != "r1" {
		t.Fatalf("stored token = %q, want r1", token)
	}

	if err := store.ClearRefreshToken(ctx, created.ID); err != nil {
		t.Fatalf("ClearRefreshToken error: %v", err)
	}
	token, err = store.GetRefreshToken(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetRefreshToken after clear error: %v", err)
	}
	if token != "" {
		t.Fatalf("token after clear = %q, want empty", token)
	}

	if _, err := store.GetRefreshToken(ctx, "missing"); !errors.Is(err, sessionauth.ErrUserNotFound) {
		t.Fatalf("missing user: got %v, want ErrUserNotFound", err)
	}
}

func TestRotateRefreshToken(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := seedUser(t, store, "alice", "alice@example.com")

	if err := store.SetRefreshToken(ctx, created.ID, "r1"); err != nil {
		t.Fatalf("SetRefreshToken error: %v", err)
	}

	if err := store.RotateRefreshToken(ctx, created.ID, "r1", "r2"); err != nil {
		t.Fatalf("rotate error: %v", err)
	}
	token, err := store.GetRefreshToken(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetRefreshToken error: %v", err)
	}
	if token != "r2" {
		t.Fatalf("token after rotate = %q, want r2", token)
	}

	// Presenting the superseded token again must be rejected.
	if err := store.RotateRefreshToken(ctx, created.ID, "r1", "r3"); !errors.Is(err, sessionauth.ErrTokenReused) {
		t.Fatalf("reuse: got %v, want ErrTokenReused", err)
	}

	// A user with no live session cannot rotate.
	if err := store.ClearRefreshToken(ctx, created.ID); err != nil {
		t.Fatalf("ClearRefreshToken error: %v", err)
	}
	if err := store.RotateRefreshToken(ctx, created.ID, "r2", "r3"); !errors.Is(err, sessionauth.ErrTokenReused) {
		t.Fatalf("rotate after clear: got %v, want ErrTokenReused", err)
	}

	if err := store.RotateRefreshToken(ctx, "missing", "r1", "r2"); !errors.Is(err, sessionauth.ErrUserNotFound) {
		t.Fatalf("missing user: got %v, want ErrUserNotFound", err)
	}
}

func TestRotateConcurrentSingleWinner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := seedUser(t, store, "alice", "alice@example.com")
	if err := store.SetRefreshToken(ctx, created.ID, "r1"); err != nil {
		t.Fatalf("SetRefreshToken error: %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	results := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = store.RotateRefreshToken(ctx, created.ID, "r1", "next-"+string(rune('a'+i)))
		}(i)
	}
	wg.Wait()

	var wins, reuses int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, sessionauth.ErrTokenReused):
			reuses++
		default:
			t.Fatalf("unexpected rotate error: %v", err)
		}
	}
	if wins != 1 || reuses != workers-1 {
		t.Fatalf("wins=%d reuses=%d, want 1 and %d", wins, reuses, workers-1)
	}
}

func TestUpdatePasswordHash(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := seedUser(t, store, "alice", "alice@example.com")
	if err := store.UpdatePasswordHash(ctx, created.ID, "newhash"); err != nil {
		t.Fatalf("UpdatePasswordHash error: %v", err)
	}

	got, err := store.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUserByID error: %v", err)
	}
	if got.PasswordHash != "newhash" {
		t.Fatalf("hash = %q, want newhash", got.PasswordHash)
	}

	if err := store.UpdatePasswordHash(ctx, "missing", "x"); !errors.Is(err, sessionauth.ErrUserNotFound) {
		t.Fatalf("missing user: got %v, want ErrUserNotFound", err)
	}
}
