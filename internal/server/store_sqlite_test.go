package server

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/globetrotter-game/api/internal/database"
	"github.com/globetrotter-game/api/internal/migrations"
)

func setupStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()

	// File-backed DB so concurrent connections share state.
	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return NewSQLiteStore(db)
}

func TestRegisterCreatesParty(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	user, party, err := store.RegisterUser(ctx, "alice", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if user.Username != "alice" {
		t.Errorf("username = %q, want alice", user.Username)
	}
	if user.Score.Correct != 0 || user.Score.Incorrect != 0 {
		t.Errorf("score = %+v, want zeroes", user.Score)
	}
	if user.PartyID == "" || user.PartyID != party.ID {
		t.Errorf("user partyID %q does not match party %q", user.PartyID, party.ID)
	}
	if party.CreatedBy != "alice" {
		t.Errorf("createdBy = %q, want alice", party.CreatedBy)
	}
	if len(party.Members) != 1 || party.Members[0].Username != "alice" {
		t.Fatalf("members = %+v, want just alice", party.Members)
	}

	// Round trip: the returned party ID resolves.
	got, err := store.GetParty(ctx, party.ID)
	if err != nil {
		t.Fatalf("get party: %v", err)
	}
	if len(got.Members) != 1 || got.Members[0].ID != user.UserID {
		t.Fatalf("resolved members = %+v, want just alice", got.Members)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if _, _, err := store.RegisterUser(ctx, "alice", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := store.RegisterUser(ctx, "alice", ""); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("err = %v, want ErrUsernameTaken", err)
	}
}

func TestRegisterUnknownPartyRejected(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, _, err := store.RegisterUser(ctx, "alice", "nonexistent")
	if !errors.Is(err, ErrPartyNotFound) {
		t.Fatalf("err = %v, want ErrPartyNotFound", err)
	}

	// The failed registration must not leave a user behind.
	if _, _, err := store.RegisterUser(ctx, "alice", ""); err != nil {
		t.Fatalf("register after failed attempt: %v", err)
	}
}

func TestRegisterJoinsExistingParty(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, party, err := store.RegisterUser(ctx, "alice", "")
	if err != nil {
		t.Fatalf("register alice: %v", err)
	}

	bob, bobParty, err := store.RegisterUser(ctx, "bob", party.ID)
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}
	if bob.PartyID != party.ID {
		t.Errorf("bob partyID = %q, want %q", bob.PartyID, party.ID)
	}
	if len(bobParty.Members) != 2 {
		t.Fatalf("members = %d, want 2", len(bobParty.Members))
	}
}

func TestApplyAnswer(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	alice, party, err := store.RegisterUser(ctx, "alice", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user, err := store.ApplyAnswer(ctx, alice.UserID, true)
	if err != nil {
		t.Fatalf("apply answer: %v", err)
	}
	if user.Score.Correct != 1 || user.Score.Incorrect != 0 {
		t.Errorf("score = %+v, want {1 0}", user.Score)
	}

	user, err = store.ApplyAnswer(ctx, alice.UserID, false)
	if err != nil {
		t.Fatalf("apply answer: %v", err)
	}
	if user.Score.Correct != 1 || user.Score.Incorrect != 1 {
		t.Errorf("score = %+v, want {1 1}", user.Score)
	}

	// The party's read-through view reflects the new score immediately.
	got, err := store.GetParty(ctx, party.ID)
	if err != nil {
		t.Fatalf("get party: %v", err)
	}
	if got.Members[0].Score != (Score{Correct: 1, Incorrect: 1}) {
		t.Errorf("party member score = %+v, want {1 1}", got.Members[0].Score)
	}

	if _, err := store.ApplyAnswer(ctx, "nope", true); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestApplyAnswerConcurrent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	alice, _, err := store.RegisterUser(ctx, "alice", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.ApplyAnswer(ctx, alice.UserID, true); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent apply answer: %v", err)
	}

	user, err := store.GetUser(ctx, alice.UserID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Score.Correct != n {
		t.Fatalf("score.correct = %d after %d concurrent answers, want %d", user.Score.Correct, n, n)
	}
}

func TestJoinAndLeaveLifecycle(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	alice, party, err := store.RegisterUser(ctx, "alice", "")
	if err != nil {
		t.Fatalf("register alice: %v", err)
	}
	bob, _, err := store.RegisterUser(ctx, "bob", party.ID)
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}

	// Bob is already a member.
	if _, err := store.JoinParty(ctx, party.ID, bob.UserID); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("err = %v, want ErrAlreadyMember", err)
	}

	// Alice leaves; the party survives with bob.
	result, err := store.LeaveParty(ctx, party.ID, alice.UserID)
	if err != nil {
		t.Fatalf("alice leave: %v", err)
	}
	if result.Deleted {
		t.Fatal("party should not be deleted while bob remains")
	}
	if len(result.Party.Members) != 1 || result.Party.Members[0].Username != "bob" {
		t.Fatalf("members after leave = %+v, want just bob", result.Party.Members)
	}

	aliceNow, err := store.GetUser(ctx, alice.UserID)
	if err != nil {
		t.Fatalf("get alice: %v", err)
	}
	if aliceNow.PartyID != "" {
		t.Errorf("alice partyID = %q after leaving, want empty", aliceNow.PartyID)
	}

	// Leaving twice is a conflict.
	if _, err := store.LeaveParty(ctx, party.ID, alice.UserID); !errors.Is(err, ErrNotAMember) {
		t.Fatalf("err = %v, want ErrNotAMember", err)
	}

	// Bob leaves; the emptied party is deleted.
	result, err = store.LeaveParty(ctx, party.ID, bob.UserID)
	if err != nil {
		t.Fatalf("bob leave: %v", err)
	}
	if !result.Deleted {
		t.Fatal("party should be deleted when its last member leaves")
	}
	if _, err := store.GetParty(ctx, party.ID); !errors.Is(err, ErrPartyNotFound) {
		t.Fatalf("err = %v, want ErrPartyNotFound", err)
	}
}

func TestJoinSwitchesParty(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, partyA, err := store.RegisterUser(ctx, "alice", "")
	if err != nil {
		t.Fatalf("register alice: %v", err)
	}
	bob, partyB, err := store.RegisterUser(ctx, "bob", "")
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}

	// Bob switches from his own solo party to alice's.
	joined, err := store.JoinParty(ctx, partyA.ID, bob.UserID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if len(joined.Members) != 2 {
		t.Fatalf("members = %d, want 2", len(joined.Members))
	}

	bobNow, err := store.GetUser(ctx, bob.UserID)
	if err != nil {
		t.Fatalf("get bob: %v", err)
	}
	if bobNow.PartyID != partyA.ID {
		t.Errorf("bob partyID = %q, want %q", bobNow.PartyID, partyA.ID)
	}

	// Bob's old solo party was emptied by the switch and garbage-collected.
	if _, err := store.GetParty(ctx, partyB.ID); !errors.Is(err, ErrPartyNotFound) {
		t.Fatalf("err = %v, want ErrPartyNotFound for bob's old party", err)
	}
}

func TestJoinLeaveErrors(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	alice, party, err := store.RegisterUser(ctx, "alice", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := store.JoinParty(ctx, "nope", alice.UserID); !errors.Is(err, ErrPartyNotFound) {
		t.Fatalf("err = %v, want ErrPartyNotFound", err)
	}
	if _, err := store.JoinParty(ctx, party.ID, "nope"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
	if _, err := store.LeaveParty(ctx, "nope", alice.UserID); !errors.Is(err, ErrPartyNotFound) {
		t.Fatalf("err = %v, want ErrPartyNotFound", err)
	}
	if _, err := store.LeaveParty(ctx, party.ID, "nope"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestGetUserIdempotent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	alice, _, err := store.RegisterUser(ctx, "alice", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	first, err := store.GetUser(ctx, alice.UserID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	second, err := store.GetUser(ctx, alice.UserID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if first != second {
		t.Errorf("repeated reads differ: %+v vs %+v", first, second)
	}
}
