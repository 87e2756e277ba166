package predictions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/premio/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Prediction) (*models.Prediction, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]*models.Prediction, error)
	ListRecentForUser(ctx context.Context, userID int64, limit int) ([]*models.Prediction, error)
	ListAll(ctx context.Context) ([]*models.PredictionWithUsername, error)
	Count(ctx context.Context) (int64, error)
	AveragePremium(ctx context.Context) (float64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}
