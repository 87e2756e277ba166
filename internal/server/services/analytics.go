package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dmitrijs2005/premio/internal/server/models"
)

// activityLimit caps the per-user activity feed.
const activityLimit = 50

// trendDays is the number of daily points on the premium trend chart.
const trendDays = 7

// maxInsights caps the insight list shown on the analytics dashboard.
const maxInsights = 4

// topUserLimit caps the leaderboard on the analytics dashboard.
const topUserLimit = 5

// AnalyticsBasicStats is the headline row of the analytics dashboard.
type AnalyticsBasicStats struct {
	TotalRevenue     float64 `json:"total_revenue"`
	TotalUsers       int64   `json:"total_users"`
	TotalPredictions int     `json:"total_predictions"`
	AveragePremium   float64 `json:"average_premium"`
}

// RiskDistribution counts predictions per premium risk band.
type RiskDistribution struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// PremiumTrends is a daily average premium series. Labels are MM/DD dates;
// days without data are padded in front as "No Data" with a zero value.
type PremiumTrends struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// TopUser is one leaderboard row, aggregated per account.
type TopUser struct {
	Username        string  `json:"username"`
	PredictionCount int     `json:"prediction_count"`
	AvgPremium      float64 `json:"avg_premium"`
	TotalPremium    float64 `json:"total_premium"`
}

// Insight is one narrative observation derived from the portfolio.
type Insight struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AnalyticsReport is the full analytics dashboard payload.
type AnalyticsReport struct {
	BasicStats       AnalyticsBasicStats `json:"basic_stats"`
	PremiumRanges    map[string]int      `json:"premium_ranges"`
	AgeDistribution  map[string]int      `json:"age_distribution"`
	RegionalData     map[string]int      `json:"regional_data"`
	RiskDistribution RiskDistribution    `json:"risk_distribution"`
	PremiumTrends    PremiumTrends       `json:"premium_trends"`
	TopUsers         []TopUser           `json:"top_users"`
	Insights         []Insight           `json:"insights"`
}

// Analytics assembles the dashboard report in a single pass over the
// prediction log. With no predictions recorded the report carries the
// non-admin user count and empty breakdowns.
func (s *PredictionService) Analytics(ctx context.Context) (*AnalyticsReport, error) {
	usersRepo := s.repomanager.Users(s.db)
	predsRepo := s.repomanager.Predictions(s.db)

	totalUsers, err := usersRepo.CountNonAdmin(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting users: %w", err)
	}
	rows, err := predsRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing predictions: %w", err)
	}

	report := &AnalyticsReport{
		PremiumRanges:   map[string]int{},
		AgeDistribution: map[string]int{},
		RegionalData:    map[string]int{},
		PremiumTrends:   PremiumTrends{Labels: []string{}, Data: []float64{}},
		TopUsers:        []TopUser{},
		Insights:        []Insight{},
	}
	report.BasicStats.TotalUsers = totalUsers
	if len(rows) == 0 {
		return report, nil
	}

	report.BasicStats.TotalPredictions = len(rows)

	var revenue, ageSum float64
	var smokers int
	byUser := map[int64]*TopUser{}
	activeUsers := map[int64]struct{}{}
	activeSince := time.Now().Add(-recentWindow)

	for _, p := range rows {
		revenue += p.PredictedPremium
		ageSum += float64(p.Age)
		if p.Smoker == "yes" {
			smokers++
		}

		report.PremiumRanges[premiumRangeLabel(p.PredictedPremium)]++
		report.AgeDistribution[ageGroupLabel(p.Age)]++
		report.RegionalData[p.Region]++

		switch {
		case p.PredictedPremium < 8000:
			report.RiskDistribution.Low++
		case p.PredictedPremium < 16000:
			report.RiskDistribution.Medium++
		default:
			report.RiskDistribution.High++
		}

		u := byUser[p.UserID]
		if u == nil {
			u = &TopUser{Username: p.Username}
			byUser[p.UserID] = u
		}
		u.PredictionCount++
		u.TotalPremium += p.PredictedPremium

		if p.CreatedAt.After(activeSince) {
			activeUsers[p.UserID] = struct{}{}
		}
	}

	avg := revenue / float64(len(rows))
	report.BasicStats.TotalRevenue = round2(revenue)
	report.BasicStats.AveragePremium = round2(avg)

	report.PremiumTrends = premiumTrends(rows)
	report.TopUsers = topUsers(byUser)

	smokingRate := float64(smokers) / float64(len(rows)) * 100
	avgAge := ageSum / float64(len(rows))
	report.Insights = portfolioInsights(avg, totalUsers, int64(len(activeUsers)), smokingRate, avgAge)

	return report, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func premiumRangeLabel(premium float64) string {
	switch {
	case premium < 5000:
		return "Under $5K"
	case premium < 10000:
		return "$5K - $10K"
	case premium < 15000:
		return "$10K - $15K"
	case premium < 20000:
		return "$15K - $20K"
	default:
		return "Over $20K"
	}
}

func ageGroupLabel(age int) string {
	switch {
	case age < 25:
		return "18-24"
	case age < 35:
		return "25-34"
	case age < 45:
		return "35-44"
	case age < 55:
		return "45-54"
	default:
		return "55+"
	}
}

// premiumTrends averages premiums per calendar day over the most recent
// trendDays days that have data.
func premiumTrends(rows []*models.PredictionWithUsername) PremiumTrends {
	daily := map[string][]float64{}
	for _, p := range rows {
		day := p.CreatedAt.Format("2006-01-02")
		daily[day] = append(daily[day], p.PredictedPremium)
	}

	days := make([]string, 0, len(daily))
	for d := range daily {
		days = append(days, d)
	}
	sort.Strings(days)
	if len(days) > trendDays {
		days = days[len(days)-trendDays:]
	}

	trends := PremiumTrends{Labels: []string{}, Data: []float64{}}
	for _, day := range days {
		d, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		var sum float64
		for _, v := range daily[day] {
			sum += v
		}
		trends.Labels = append(trends.Labels, d.Format("01/02"))
		trends.Data = append(trends.Data, round2(sum/float64(len(daily[day]))))
	}

	for len(trends.Labels) < trendDays {
		trends.Labels = append([]string{"No Data"}, trends.Labels...)
		trends.Data = append([]float64{0}, trends.Data...)
	}
	return trends
}

func topUsers(byUser map[int64]*TopUser) []TopUser {
	out := make([]TopUser, 0, len(byUser))
	for _, u := range byUser {
		u.AvgPremium = round2(u.TotalPremium / float64(u.PredictionCount))
		u.TotalPremium = round2(u.TotalPremium)
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PredictionCount != out[j].PredictionCount {
			return out[i].PredictionCount > out[j].PredictionCount
		}
		return out[i].Username < out[j].Username
	})
	if len(out) > topUserLimit {
		out = out[:topUserLimit]
	}
	return out
}

func portfolioInsights(avgPremium float64, totalUsers, activeUsers int64, smokingRate, avgAge float64) []Insight {
	var out []Insight

	switch {
	case avgPremium > 12000:
		out = append(out, Insight{Type: "warning", Title: "High Average Premium",
			Description: fmt.Sprintf("Average premium is $%.2f, indicating higher risk profiles", avgPremium)})
	case avgPremium > 8000:
		out = append(out, Insight{Type: "info", Title: "Moderate Premium Range",
			Description: fmt.Sprintf("Average premium is $%.2f, within normal range", avgPremium)})
	default:
		out = append(out, Insight{Type: "success", Title: "Low Average Premium",
			Description: fmt.Sprintf("Average premium is $%.2f, indicating lower risk profiles", avgPremium)})
	}

	if totalUsers > 0 {
		rate := float64(activeUsers) / float64(totalUsers) * 100
		if rate > 70 {
			out = append(out, Insight{Type: "success", Title: "High User Engagement",
				Description: fmt.Sprintf("%.1f%% of users are active in the last 30 days", rate)})
		} else {
			out = append(out, Insight{Type: "warning", Title: "Low User Engagement",
				Description: fmt.Sprintf("Only %.1f%% of users are active in the last 30 days", rate)})
		}
	}

	switch {
	case smokingRate > 30:
		out = append(out, Insight{Type: "danger", Title: "High Smoking Rate",
			Description: fmt.Sprintf("%.1f%% of submissions are for smokers, raising premium costs", smokingRate)})
	case smokingRate > 15:
		out = append(out, Insight{Type: "warning", Title: "Moderate Smoking Rate",
			Description: fmt.Sprintf("%.1f%% of submissions are for smokers", smokingRate)})
	default:
		out = append(out, Insight{Type: "success", Title: "Low Smoking Rate",
			Description: fmt.Sprintf("Only %.1f%% of submissions are for smokers", smokingRate)})
	}

	switch {
	case avgAge > 45:
		out = append(out, Insight{Type: "info", Title: "Mature User Base",
			Description: fmt.Sprintf("Average applicant age is %.1f years", avgAge)})
	case avgAge < 30:
		out = append(out, Insight{Type: "success", Title: "Young User Base",
			Description: fmt.Sprintf("Average applicant age is %.1f years", avgAge)})
	default:
		out = append(out, Insight{Type: "info", Title: "Balanced Age Demographics",
			Description: fmt.Sprintf("Average applicant age is %.1f years", avgAge)})
	}

	if len(out) > maxInsights {
		out = out[:maxInsights]
	}
	return out
}

// ActivityEntry is one row of the per-user activity feed.
type ActivityEntry struct {
	Date    time.Time `json:"date"`
	Premium float64   `json:"premium"`
	Age     int       `json:"age"`
	BMI     float64   `json:"bmi"`
	Smoker  string    `json:"smoker"`
	Region  string    `json:"region"`
}

// Activity returns the user's newest predictions as a flat feed for the
// admin user detail view. Unknown accounts yield common.ErrorNotFound.
func (s *PredictionService) Activity(ctx context.Context, userID int64) ([]ActivityEntry, error) {
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := s.repomanager.Predictions(s.db).ListRecentForUser(ctx, userID, activityLimit)
	if err != nil {
		return nil, fmt.Errorf("error listing activity: %w", err)
	}

	out := make([]ActivityEntry, 0, len(rows))
	for _, p := range rows {
		out = append(out, ActivityEntry{
			Date:    p.CreatedAt,
			Premium: p.PredictedPremium,
			Age:     p.Age,
			BMI:     p.BMI,
			Smoker:  p.Smoker,
			Region:  p.Region,
		})
	}
	return out, nil
}
