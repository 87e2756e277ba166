package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/premio/internal/server/models"
	"github.com/dmitrijs2005/premio/internal/server/predictor"
	"github.com/dmitrijs2005/premio/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/premio/internal/validation"
)

// recentWindow is the lookback used for the dashboard's recent activity count.
const recentWindow = 30 * 24 * time.Hour

// PredictionService estimates premiums for submitted attribute sets and
// keeps the per-user prediction history.
type PredictionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	predictor   predictor.Predictor
}

// NewPredictionService constructs a PredictionService around the given
// estimator.
func NewPredictionService(db *sql.DB, m repomanager.RepositoryManager, p predictor.Predictor) *PredictionService {
	return &PredictionService{db: db, repomanager: m, predictor: p}
}

// Record validates the attribute set, estimates the premium, and appends the
// result to the user's history. Validation failures are returned before the
// estimator is ever consulted.
func (s *PredictionService) Record(ctx context.Context, userID int64, attrs models.AttributeSet) (*models.Prediction, error) {
	if errs := validation.Attributes(attrs); len(errs) > 0 {
		// first violation wins, matching the submission form's field order
		return nil, errs[0]
	}

	premium, err := s.predictor.Predict(ctx, attrs)
	if err != nil {
		return nil, fmt.Errorf("error estimating premium: %w", err)
	}

	p := &models.Prediction{
		UserID:           userID,
		Age:              attrs.Age,
		Gender:           attrs.Gender,
		BMI:              attrs.BMI,
		Children:         attrs.Children,
		Smoker:           attrs.Smoker,
		Region:           attrs.Region,
		PredictedPremium: premium,
	}

	repo := s.repomanager.Predictions(s.db)
	saved, err := repo.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("error saving prediction: %w", err)
	}
	return saved, nil
}

// ListForUser returns the user's predictions in chronological order.
// A limit of 0 returns the full history.
func (s *PredictionService) ListForUser(ctx context.Context, userID int64, limit int) ([]*models.Prediction, error) {
	repo := s.repomanager.Predictions(s.db)
	return repo.ListForUser(ctx, userID, limit)
}

// ListAll returns every prediction with its owner's username, newest first.
func (s *PredictionService) ListAll(ctx context.Context) ([]*models.PredictionWithUsername, error) {
	repo := s.repomanager.Predictions(s.db)
	return repo.ListAll(ctx)
}

// ProfileSummary is the per-user history digest shown on the profile page.
type ProfileSummary struct {
	TotalPredictions int                `json:"total_predictions"`
	AveragePremium   float64            `json:"avg_premium"`
	Latest           *models.Prediction `json:"latest_prediction,omitempty"`
}

// Profile assembles the user's history digest from the full history.
func (s *PredictionService) Profile(ctx context.Context, userID int64) (*ProfileSummary, error) {
	repo := s.repomanager.Predictions(s.db)
	history, err := repo.ListForUser(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	summary := &ProfileSummary{TotalPredictions: len(history)}
	if len(history) == 0 {
		return summary, nil
	}

	var total float64
	for _, p := range history {
		total += p.PredictedPremium
	}
	summary.AveragePremium = total / float64(len(history))
	summary.Latest = history[len(history)-1]
	return summary, nil
}

// Stats assembles the admin dashboard snapshot: non-admin account count,
// total predictions, average premium, and activity over the last 30 days.
func (s *PredictionService) Stats(ctx context.Context) (*models.Stats, error) {
	usersRepo := s.repomanager.Users(s.db)
	predsRepo := s.repomanager.Predictions(s.db)

	totalUsers, err := usersRepo.CountNonAdmin(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting users: %w", err)
	}
	totalPredictions, err := predsRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting predictions: %w", err)
	}
	avg, err := predsRepo.AveragePremium(ctx)
	if err != nil {
		return nil, fmt.Errorf("error averaging premiums: %w", err)
	}
	recent, err := predsRepo.CountSince(ctx, time.Now().Add(-recentWindow))
	if err != nil {
		return nil, fmt.Errorf("error counting recent predictions: %w", err)
	}

	return &models.Stats{
		TotalUsers:        totalUsers,
		TotalPredictions:  totalPredictions,
		AveragePremium:    avg,
		RecentPredictions: recent,
	}, nil
}
