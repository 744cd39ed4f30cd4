package review

import (
	"math"
	"sort"
	"time"

	"github.com/magabrotheeeer/zenpress/internal/models"
)

// Корзины оценок.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

const dateLayout = "2006-01-02"

// Sentiment относит оценку к корзине: 4-5 положительные, 3 нейтральная, 1-2 отрицательные.
func Sentiment(rating int) string {
	switch {
	case rating >= 4:
		return SentimentPositive
	case rating == 3:
		return SentimentNeutral
	default:
		return SentimentNegative
	}
}

// ComputeStats считает агрегаты ровно по переданному набору.
// Пустой набор даёт нулевые значения.
func ComputeStats(reviews []*models.Review) models.ReviewStats {
	var st models.ReviewStats
	if len(reviews) == 0 {
		return st
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
		switch Sentiment(r.Rating) {
		case SentimentPositive:
			st.Positive++
		case SentimentNeutral:
			st.Neutral++
		default:
			st.Negative++
		}
	}
	st.Total = len(reviews)
	total := float64(st.Total)
	st.Average = round(float64(sum)/total, 2)
	st.PositivePct = round(float64(st.Positive)/total*100, 1)
	st.NegativePct = round(float64(st.Negative)/total*100, 1)
	return st
}

// WindowStart возвращает начало окна: полночь UTC дня now-(days-1).
func WindowStart(now time.Time, days int) time.Time {
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -(days - 1))
}

// DailyBreakdown возвращает ровно days записей, по одной на календарный
// день UTC, от старого к новому. Дни без отзывов дают нулевые записи.
func DailyBreakdown(reviews []*models.Review, days int, now time.Time) []models.DailyReviews {
	start := WindowStart(now, days)
	buckets := make(map[string][]*models.Review, days)
	for _, r := range reviews {
		key := r.CreatedAt.UTC().Format(dateLayout)
		buckets[key] = append(buckets[key], r)
	}

	result := make([]models.DailyReviews, 0, days)
	for i := range days {
		date := start.AddDate(0, 0, i).Format(dateLayout)
		st := ComputeStats(buckets[date])
		result = append(result, models.DailyReviews{
			Date:     date,
			Total:    st.Total,
			Positive: st.Positive,
			Negative: st.Negative,
			Average:  st.Average,
		})
	}
	return result
}

// Rankings группирует отзывы по технике и сортирует по средней оценке
// по убыванию, при равенстве по ID техники. В каждой записи не более
// latest последних отзывов.
func Rankings(reviews []*models.Review, latest int) []models.TechniqueReviewStats {
	groups := make(map[string][]*models.Review)
	for _, r := range reviews {
		groups[r.TechniqueID] = append(groups[r.TechniqueID], r)
	}

	result := make([]models.TechniqueReviewStats, 0, len(groups))
	for id, group := range groups {
		result = append(result, TechniqueStats(id, group[0].TechniqueName, group, latest))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Average != result[j].Average {
			return result[i].Average > result[j].Average
		}
		return result[i].TechniqueID < result[j].TechniqueID
	})
	return result
}

// TechniqueStats собирает агрегаты одной техники.
func TechniqueStats(id, name string, reviews []*models.Review, latest int) models.TechniqueReviewStats {
	return models.TechniqueReviewStats{
		TechniqueID:   id,
		TechniqueName: name,
		ReviewStats:   ComputeStats(reviews),
		LatestReviews: Latest(reviews, latest),
	}
}

// Latest возвращает не более n самых новых отзывов. Порядок входа не важен.
func Latest(reviews []*models.Review, n int) []models.Review {
	sorted := make([]*models.Review, len(reviews))
	copy(sorted, reviews)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	result := make([]models.Review, 0, len(sorted))
	for _, r := range sorted {
		result = append(result, *r)
	}
	return result
}

// MostCommonRating возвращает самую частую оценку; при равенстве выше оценка.
// Для пустого набора 0.
func MostCommonRating(reviews []*models.Review) int {
	var counts [models.MaxRating + 1]int
	for _, r := range reviews {
		if r.Rating >= models.MinRating && r.Rating <= models.MaxRating {
			counts[r.Rating]++
		}
	}
	best := 0
	for rating := models.MaxRating; rating >= models.MinRating; rating-- {
		if counts[rating] > counts[best] {
			best = rating
		}
	}
	return best
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
