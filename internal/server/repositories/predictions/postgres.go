// Package predictions provides the PostgreSQL-backed repository for the
// append-only prediction log. Rows are inserted once and never updated.
package predictions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/premio/internal/common"
	"github.com/dmitrijs2005/premio/internal/dbx"
	"github.com/dmitrijs2005/premio/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgForeignKeyViolation = "23503"

// PostgresRepository implements prediction storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Prediction) (*models.Prediction, error) {

	query :=
		`INSERT INTO predictions (user_id, age, gender, bmi, children, smoker, region, predicted_premium)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		p.UserID, p.Age, p.Gender, p.BMI, p.Children, p.Smoker, p.Region, p.PredictedPremium).
		Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, common.ErrorForeignKeyViolation
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

// ListForUser returns the user's predictions in non-decreasing created_at
// order (idx_user_predictions serves the lookup). limit <= 0 means no limit.
func (r *PostgresRepository) ListForUser(ctx context.Context, userID int64, limit int) ([]*models.Prediction, error) {
	query :=
		`SELECT id, user_id, age, gender, bmi, children, smoker, region, predicted_premium, created_at
		 FROM predictions
		 WHERE user_id = $1
		 ORDER BY created_at, id
		 `

	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Prediction
	for rows.Next() {
		var item models.Prediction
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Age, &item.Gender, &item.BMI,
			&item.Children, &item.Smoker, &item.Region, &item.PredictedPremium, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListRecentForUser returns the user's newest predictions first. Serves the
// admin activity feed, so the window is capped by limit.
func (r *PostgresRepository) ListRecentForUser(ctx context.Context, userID int64, limit int) ([]*models.Prediction, error) {
	query :=
		`SELECT id, user_id, age, gender, bmi, children, smoker, region, predicted_premium, created_at
		 FROM predictions
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Prediction
	for rows.Next() {
		var item models.Prediction
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Age, &item.Gender, &item.BMI,
			&item.Children, &item.Smoker, &item.Region, &item.PredictedPremium, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListAll returns every prediction joined with its owner's username,
// newest first (idx_created_at serves the ordering).
func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.PredictionWithUsername, error) {
	query :=
		`SELECT p.id, p.user_id, u.username, p.age, p.gender, p.bmi, p.children, p.smoker, p.region, p.predicted_premium, p.created_at
		 FROM predictions p
		 JOIN users u ON p.user_id = u.id
		 ORDER BY p.created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.PredictionWithUsername
	for rows.Next() {
		var item models.PredictionWithUsername
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Username, &item.Age, &item.Gender, &item.BMI,
			&item.Children, &item.Smoker, &item.Region, &item.PredictedPremium, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM predictions`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) AveragePremium(ctx context.Context) (float64, error) {
	var avg float64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(AVG(predicted_premium), 0) FROM predictions`).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return avg, nil
}

func (r *PostgresRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM predictions WHERE created_at >= $1`, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
