// Package services contains server-side business logic. This file implements
// IdentityService, which owns registration, credential checks, session token
// resolution, profile edits, and the ONLINE/OFFLINE status transitions.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vpetrenko/accountd/internal/common"
	"github.com/vpetrenko/accountd/internal/dbx"
	"github.com/vpetrenko/accountd/internal/server/models"
	"github.com/vpetrenko/accountd/internal/server/repositories/repomanager"
)

// IdentityService provides the account operations:
//   - Register: create users, enforce username uniqueness, issue tokens
//   - Login: verify credentials and flip status to ONLINE
//   - GetByToken: resolve a session token (the gate primitive)
//   - Edit / Logout: profile updates and status OFFLINE
//
// It holds no state of its own; every call reads and writes the user store.
type IdentityService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

// NewIdentityService constructs an IdentityService over the given store.
func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager) *IdentityService {
	return &IdentityService{db: db, repos: m}
}

// Register creates a new user. The store assigns the id; the service assigns
// a fresh opaque token, status ONLINE, and the creation timestamp. A taken
// username fails with ErrorConflict and leaves the store unchanged. The
// uniqueness check and the insert run in one store transaction.
func (s *IdentityService) Register(ctx context.Context, username, name, password string) (*models.User, error) {
	user := &models.User{
		Username:  username,
		Name:      name,
		Password:  password,
		Token:     uuid.NewString(),
		Status:    models.StatusOnline,
		CreatedAt: time.Now(),
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Users(tx)

		_, err := repo.GetByUsername(ctx, username)
		if err == nil {
			return fmt.Errorf("%w: the username provided is not unique", common.ErrorConflict)
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return common.ErrorInternal
		}

		created, err := repo.Create(ctx, user)
		if err != nil {
			if errors.Is(err, common.ErrorConflict) {
				return fmt.Errorf("%w: the username provided is not unique", common.ErrorConflict)
			}
			return fmt.Errorf("error creating user: %w", err)
		}
		user = created
		return nil
	}); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies the password for the given username and, on success,
// persists status ONLINE and returns the user. Unknown usernames fail with
// ErrorNotFound, wrong passwords with ErrorUnauthorized; neither touches
// the stored record.
func (s *IdentityService) Login(ctx context.Context, username, password string) (*models.User, error) {
	repo := s.repos.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	if !s.checkPassword(user.Password, password) {
		return nil, fmt.Errorf("%w: password not correct", common.ErrorUnauthorized)
	}

	user.Status = models.StatusOnline
	if _, err := repo.Update(ctx, user); err != nil {
		return nil, common.ErrorInternal
	}

	return user, nil
}

// GetByToken resolves a session token to its user. An empty or unknown token
// yields ErrorNotFound; callers decide whether that is fatal.
func (s *IdentityService) GetByToken(ctx context.Context, token string) (*models.User, error) {
	user, err := s.repos.Users(s.db).GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// GetByID returns the user with the given id or ErrorNotFound.
func (s *IdentityService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repos.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// List returns all users in store order. No ordering is guaranteed.
func (s *IdentityService) List(ctx context.Context) ([]*models.User, error) {
	result, err := s.repos.Users(s.db).List(ctx)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return result, nil
}

// Edit applies a profile patch to target and persists the result in a single
// write. The collision check runs before the blank check, and the blank check
// fires for any present username even when the collision check renamed
// nothing. On failure the stored record stays untouched.
func (s *IdentityService) Edit(ctx context.Context, target *models.User, patch *models.UserPatch) (*models.User, error) {
	if patch == nil {
		return nil, fmt.Errorf("%w: user data cannot be nil", common.ErrorInvalidArgument)
	}

	repo := s.repos.Users(s.db)

	if patch.Username != nil && *patch.Username != target.Username {
		existing, err := repo.GetByUsername(ctx, *patch.Username)
		if err == nil && existing.ID != target.ID {
			return nil, fmt.Errorf("%w: username exists already", common.ErrorInvalidArgument)
		}
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInternal
		}
	}

	if patch.Username != nil && strings.TrimSpace(*patch.Username) == "" {
		return nil, fmt.Errorf("%w: username cannot be empty", common.ErrorInvalidArgument)
	}

	updated := *target
	if patch.Username != nil {
		updated.Username = *patch.Username
	}
	if patch.Birthday != nil {
		b := *patch.Birthday
		updated.Birthday = &b
	}

	saved, err := repo.Update(ctx, &updated)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, fmt.Errorf("%w: username exists already", common.ErrorInvalidArgument)
		}
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	return saved, nil
}

// Logout persists status OFFLINE for the user. Whether the caller is allowed
// to end this session is decided at the boundary by comparing tokens.
func (s *IdentityService) Logout(ctx context.Context, user *models.User) error {
	updated := *user
	updated.Status = models.StatusOffline

	if _, err := s.repos.Users(s.db).Update(ctx, &updated); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}

	return nil
}

func (s *IdentityService) checkPassword(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}
