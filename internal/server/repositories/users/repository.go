package users

import (
	"context"

	"github.com/dmitrijs2005/premio/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsernameOrEmail(ctx context.Context, key string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	CountNonAdmin(ctx context.Context) (int64, error)
	PromoteToAdmin(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}
