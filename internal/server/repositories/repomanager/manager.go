package repomanager

import (
	"context"
	"database/sql"

	"github.com/vpetrenko/accountd/internal/dbx"
	"github.com/vpetrenko/accountd/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a database handle, so the
// same repository code runs against *sql.DB or an open transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
