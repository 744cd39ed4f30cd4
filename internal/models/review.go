package models

import "time"

const (
	// MinRating и MaxRating задают допустимый диапазон оценки.
	MinRating = 1
	MaxRating = 5
)

// Review неизменяемая оценка техники пользователем.
type Review struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	TechniqueID     string    `json:"technique_id"`
	TechniqueName   string    `json:"technique_name"`
	Rating          int       `json:"rating"`
	Comment         string    `json:"comment"`
	SessionDuration int       `json:"session_duration"`
	UserPremium     bool      `json:"user_premium"`
	CreatedAt       time.Time `json:"created_at"`
}

// ReviewInput данные для создания отзыва.
type ReviewInput struct {
	TechniqueID     string
	Rating          int
	Comment         string
	SessionDuration int
}

// ReviewStats агрегаты по набору отзывов. Для пустого набора все поля нулевые.
type ReviewStats struct {
	Total       int     `json:"total_reviews"`
	Positive    int     `json:"positive_reviews"`
	Neutral     int     `json:"neutral_reviews"`
	Negative    int     `json:"negative_reviews"`
	Average     float64 `json:"average_rating"`
	PositivePct float64 `json:"positive_percentage"`
	NegativePct float64 `json:"negative_percentage"`
}

// TechniqueReviewStats агрегаты по одной технике с последними отзывами.
type TechniqueReviewStats struct {
	TechniqueID   string   `json:"technique_id"`
	TechniqueName string   `json:"technique_name"`
	ReviewStats            // встроенные счётчики
	LatestReviews []Review `json:"latest_reviews"`
}

// DailyReviews разбивка отзывов за один календарный день (UTC).
type DailyReviews struct {
	Date     string  `json:"date"`
	Total    int     `json:"total"`
	Positive int     `json:"positive"`
	Negative int     `json:"negative"`
	Average  float64 `json:"average"`
}

// ReviewTrends производные показатели окна аналитики.
type ReviewTrends struct {
	MostCommonRating int `json:"most_common_rating"`
}

// ReviewAnalytics панель аналитики отзывов за окно в днях.
type ReviewAnalytics struct {
	WindowDays        int                    `json:"window_days"`
	OverallStats      ReviewStats            `json:"overall_stats"`
	DailyReviews      []DailyReviews         `json:"daily_reviews"`
	TechniqueRankings []TechniqueReviewStats `json:"technique_rankings"`
	RecentFeedback    []Review               `json:"recent_feedback"`
	Trends            ReviewTrends           `json:"trends"`
}

// ReviewFilter ограничивает выборку отзывов. Пустые поля не фильтруют.
type ReviewFilter struct {
	TechniqueID string
	UserID      string
	Since       *time.Time
	Limit       int
}
