package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/vpetrenko/accountd/internal/common"
	"github.com/vpetrenko/accountd/internal/server/models"
	"github.com/vpetrenko/accountd/internal/server/repositories/repomanager"
	"github.com/vpetrenko/accountd/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// newIdentityService wires the service to an in-memory user store; the
// sqlmock handle only provides the transaction boundaries Register opens.
func newIdentityService(t *testing.T) (*IdentityService, *users.InMemoryRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	rm := repomanager.NewInMemoryRepositoryManager()
	repo, ok := rm.Users(nil).(*users.InMemoryRepository)
	if !ok {
		t.Fatalf("expected in-memory users repository")
	}
	return NewIdentityService(db, rm), repo, mock
}

func seedUser(t *testing.T, repo *users.InMemoryRepository, u *models.User) *models.User {
	t.Helper()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	created, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return created
}

func strPtr(s string) *string { return &s }

// --- Register ---

func TestRegister_AssignsTokenStatusAndDate(t *testing.T) {
	s, repo, mock := newIdentityService(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	before := time.Now()
	u, err := s.Register(context.Background(), "alice", "Alice A", "secret")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if u.ID == 0 {
		t.Fatalf("expected store-assigned id, got %d", u.ID)
	}
	if u.Token == "" {
		t.Fatalf("expected non-empty token")
	}
	if u.Status != models.StatusOnline {
		t.Fatalf("expected status ONLINE, got %s", u.Status)
	}
	if u.CreatedAt.Before(before) {
		t.Fatalf("creation date not set: %v", u.CreatedAt)
	}

	stored, err := repo.GetByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if stored.Username != "alice" || stored.Token != u.Token {
		t.Fatalf("unexpected stored user: %+v", stored)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRegister_DuplicateUsername_ConflictAndStoreUnchanged(t *testing.T) {
	s, repo, mock := newIdentityService(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	if _, err := s.Register(context.Background(), "alice", "Alice A", "secret"); err != nil {
		t.Fatalf("first Register error: %v", err)
	}

	_, err := s.Register(context.Background(), "alice", "Another Alice", "other")
	if !errors.Is(err, common.ErrorConflict) {
		t.Fatalf("want ErrorConflict, got %v", err)
	}

	all, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("store changed by failed registration: %d users", len(all))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRegister_TokensAreUnique(t *testing.T) {
	s, _, mock := newIdentityService(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	u1, err := s.Register(context.Background(), "alice", "Alice", "pw")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	u2, err := s.Register(context.Background(), "bob", "Bob", "pw")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if u1.Token == u2.Token {
		t.Fatalf("tokens must differ: %q", u1.Token)
	}
}

// --- Login ---

func TestLogin_Success_SetsOnline(t *testing.T) {
	s, repo, _ := newIdentityService(t)
	seeded := seedUser(t, repo, &models.User{
		Username: "alice", Name: "Alice", Password: "secret",
		Token: "tok-1", Status: models.StatusOffline,
	})

	u, err := s.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if u.Status != models.StatusOnline {
		t.Fatalf("expected ONLINE after login, got %s", u.Status)
	}
	if u.Token != seeded.Token {
		t.Fatalf("token must be stable across login: %q vs %q", u.Token, seeded.Token)
	}

	stored, _ := repo.GetByID(context.Background(), seeded.ID)
	if stored.Status != models.StatusOnline {
		t.Fatalf("login must persist ONLINE, stored %s", stored.Status)
	}
}

func TestLogin_IsIdempotentWhenAlreadyOnline(t *testing.T) {
	s, repo, _ := newIdentityService(t)
	seeded := seedUser(t, repo, &models.User{
		Username: "alice", Name: "Alice", Password: "secret",
		Token: "tok-1", Status: models.StatusOnline,
	})

	u, err := s.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if u.Status != models.StatusOnline || u.ID != seeded.ID {
		t.Fatalf("unexpected user after repeat login: %+v", u)
	}
}

func TestLogin_WrongPassword_UnauthorizedAndUnchanged(t *testing.T) {
	s, repo, _ := newIdentityService(t)
	seeded := seedUser(t, repo, &models.User{
		Username: "alice", Name: "Alice", Password: "secret",
		Token: "tok-1", Status: models.StatusOffline,
	})

	_, err := s.Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want ErrorUnauthorized, got %v", err)
	}

	stored, _ := repo.GetByID(context.Background(), seeded.ID)
	if stored.Status != models.StatusOffline {
		t.Fatalf("failed login must not change status, stored %s", stored.Status)
	}
}

func TestLogin_UnknownUsername_NotFound(t *testing.T) {
	s, _, _ := newIdentityService(t)

	_, err := s.Login(context.Background(), "ghost", "pw")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

// --- GetByToken ---

func TestGetByToken_ResolvesUser(t *testing.T) {
	s, repo, _ := newIdentityService(t)
	seeded := seedUser(t, repo, &models.User{
		Username: "alice", Name: "Alice", Password: "secret",
		Token: "tok-1", Status: models.StatusOnline,
	})

	u, err := s.GetByToken(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("GetByToken error: %v", err)
	}
	if u.ID != seeded.ID {
		t.Fatalf("resolved wrong user: %+v", u)
	}
}

func TestGetByToken_UnknownAndEmpty_NotFound(t *testing.T) {
	s, repo, _ := newIdentityService(t)
	seedUser(t, repo, &models.User{
		Username: "alice", Name: "Alice", Password: "secret",
		Token: "tok-1", Status: models.StatusOnline,
	})

	for _, token := range []string{"bogus", ""} {
		_, err := s.GetByToken(context.Background(), token)
		if !errors.Is(err, common.ErrorNotFound) {
			t.Fatalf("token %q: want ErrorNotFound, got %v", token, err)
		}
	}
}

// --- GetByID / List ---

func TestGetByID_NotFound(t *testing.T) {
	s, _, _ := newIdentityService(t)

	_, err := s.GetByID(context.Background(), 12345)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestList_ReturnsAllUsers(t *testing.T) {
	s, repo, _ := newIdentityService(t)
	seedUser(t, repo, &models.User{Username: "alice", Name: "A", Password: "p", Token: "t1", Status: models.StatusOnline})
	seedUser(t, repo, &models.User{Username: "bob", Name: "B", Password: "p", Token: "t2", Status: models.StatusOffline})

	all, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 users, got %d", len(all))
	}
}

// --- Edit ---

func TestEdit_NilPatch_InvalidArgument(t *testing.T) {
	s, repo, _ := newIdentityService(t)
	seeded := seedUser(t, repo, &models.User{
		Username: "alice", Name: "Alice", Password: "p", Token: "t1", Status: models.StatusOnline,
	})

	_, err := s.Edit(context.Background(), seeded, nil)
	if !errors.Is(err, common.ErrorInvalidArgument) {
		t.Fatalf("want ErrorInvalidArgument, got %v", err)
	}
}

func TestEdit_SameUsernameNewBirthday(t *testing.T) {
	s, repo, _ := newIdentityService(t)
	seeded := seedUser(t, repo, &models.User{
		Username: "alice", Name: "Alice", Password: "p", Token: "t1", Status: models.StatusOnline,
	})

	birthday := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)
	u, err := s.Edit(context.Background(), seeded, &models.UserPatch{
		Username: strPtr("alice"),
		Birthday: &birthday,
	})
	if err != nil {
		t.Fatalf("Edit error: %v", err)
	}
	if u.Username != "alice" {
		t.Fatalf("username must be unchanged, got %q", u.Username)
	}
	if u.Birthday == nil || !u.Birthday.Equal(birthday) {
		t.Fatalf("birthday not applied: %v", u.Birthday)
	}

	stored, _ := repo.GetByID(context.Background(), seeded.ID)
	if stored.Birthday == nil || !stored.Birthday.Equal(birthday) {
		t.Fatalf("birthday not persisted: %v", stored.Birthday)
	}
}

func TestEdit_BirthdayOnlyPatch(t *testing.T) {
	s, repo, _ := newIdentityService(t)
	seeded := seedUser(t, repo, &models.User{
		Username: "alice", Name: "Alice", Password: "p", Token: "t1", Status: models.StatusOnline,
	})

	birthday := time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC)
	u, err := s.Edit(context.Background(), seeded, &models.UserPatch{Birthday: &birthday})
	if err != nil {
		t.Fatalf("Edit error: %v", err)
	}
	if u.Username != "alice" || u.Birthday == nil {
		t.Fatalf("unexpected result: %+v", u)
	}
}

func TestEdit_TakenUsername_InvalidArgumentAndUnchanged(t *testing.T) {
	s, repo, _ := newIdentityService(t)
	seedUser(t, repo, &models.User{Username: "alice", Name: "A", Password: "p", Token: "t1", Status: models.StatusOnline})
	bob := seedUser(t, repo, &models.User{Username: "bob", Name: "B", Password: "p", Token: "t2", Status: models.StatusOnline})

	_, err := s.Edit(context.Background(), bob, &models.UserPatch{Username: strPtr("alice")})
	if !errors.Is(err, common.ErrorInvalidArgument) {
		t.Fatalf("want ErrorInvalidArgument, got %v", err)
	}

	stored, _ := repo.GetByID(context.Background(), bob.ID)
	if stored.Username != "bob" {
		t.Fatalf("failed edit must not change the record, got %q", stored.Username)
	}
}

func TestEdit_RenameToFreeUsername(t *testing.T) {
	s, repo, _ := newIdentityService(t)
	seeded := seedUser(t, repo, &models.User{
		Username: "alice", Name: "Alice", Password: "p", Token: "t1", Status: models.StatusOnline,
	})

	u, err := s.Edit(context.Background(), seeded, &models.UserPatch{Username: strPtr("alice2")})
	if err != nil {
		t.Fatalf("Edit error: %v", err)
	}
	if u.Username != "alice2" {
		t.Fatalf("rename not applied: %q", u.Username)
	}

	stored, _ := repo.GetByID(context.Background(), seeded.ID)
	if stored.Username != "alice2" {
		t.Fatalf("rename not persisted: %q", stored.Username)
	}
}

func TestEdit_BlankUsername_InvalidArgument(t *testing.T) {
	s, repo, _ := newIdentityService(t)
	seeded := seedUser(t, repo, &models.User{
		Username: "alice", Name: "Alice", Password: "p", Token: "t1", Status: models.StatusOnline,
	})

	// Blank after trimming is rejected even though it collides with nothing.
	for _, blank := range []string{"", "   "} {
		_, err := s.Edit(context.Background(), seeded, &models.UserPatch{Username: strPtr(blank)})
		if !errors.Is(err, common.ErrorInvalidArgument) {
			t.Fatalf("username %q: want ErrorInvalidArgument, got %v", blank, err)
		}
	}

	stored, _ := repo.GetByID(context.Background(), seeded.ID)
	if stored.Username != "alice" {
		t.Fatalf("failed edit must not change the record, got %q", stored.Username)
	}
}

// --- Logout ---

func TestLogout_SetsOffline(t *testing.T) {
	s, repo, _ := newIdentityService(t)
	seeded := seedUser(t, repo, &models.User{
		Username: "alice", Name: "Alice", Password: "p", Token: "t1", Status: models.StatusOnline,
	})

	if err := s.Logout(context.Background(), seeded); err != nil {
		t.Fatalf("Logout error: %v", err)
	}

	stored, _ := repo.GetByID(context.Background(), seeded.ID)
	if stored.Status != models.StatusOffline {
		t.Fatalf("expected OFFLINE after logout, stored %s", stored.Status)
	}
}

func TestLogout_UnknownUser_NotFound(t *testing.T) {
	s, _, _ := newIdentityService(t)

	err := s.Logout(context.Background(), &models.User{ID: 999, Username: "ghost"})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}
