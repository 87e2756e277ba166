package models

import "time"

// Prediction is one premium estimate recorded for a user. Rows are
// append-only and never updated.
type Prediction struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	Age              int       `json:"age"`
	Gender           string    `json:"gender"`
	BMI              float64   `json:"bmi"`
	Children         int       `json:"children"`
	Smoker           string    `json:"smoker"`
	Region           string    `json:"region"`
	PredictedPremium float64   `json:"predicted_premium"`
	CreatedAt        time.Time `json:"created_at"`
}

// AttributeSet carries the six prediction attributes as submitted, before
// a premium has been estimated for them.
type AttributeSet struct {
	Age      int     `json:"age"`
	Gender   string  `json:"gender"`
	BMI      float64 `json:"bmi"`
	Children int     `json:"children"`
	Smoker   string  `json:"smoker"`
	Region   string  `json:"region"`
}

// PredictionWithUsername augments a prediction with the owner's username
// for the admin feed.
type PredictionWithUsername struct {
	Prediction
	Username string `json:"username"`
}

// Stats is the aggregate snapshot shown on the admin dashboard.
type Stats struct {
	TotalUsers        int64   `json:"total_users"`
	TotalPredictions  int64   `json:"total_predictions"`
	AveragePremium    float64 `json:"average_premium"`
	RecentPredictions int64   `json:"recent_predictions"`
}
