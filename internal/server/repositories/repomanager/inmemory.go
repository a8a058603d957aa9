package repomanager

import (
	"context"
	"database/sql"

	"github.com/vpetrenko/accountd/internal/dbx"
	"github.com/vpetrenko/accountd/internal/server/repositories/users"
)

// InMemoryRepositoryManager vends a single shared in-memory user repository.
// The DBTX argument is ignored; the map store has no transactions.
type InMemoryRepositoryManager struct {
	users *users.InMemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{users: users.NewInMemoryRepository()}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return m.users
}
