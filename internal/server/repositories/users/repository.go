package users

import (
	"context"

	"github.com/vpetrenko/accountd/internal/server/models"
)

// Repository is the durable user store. It persists and retrieves records
// keyed by id, username, and token; it enforces nothing beyond the schema's
// own uniqueness constraints.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByToken(ctx context.Context, token string) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}
