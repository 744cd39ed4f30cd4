// Package practice журналирует сессии практики и считает статистику пользователя.
package practice

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/zenpress/internal/lib/apperr"
	"github.com/magabrotheeeer/zenpress/internal/models"
)

const (
	listLimit  = 100
	statsLimit = 1000

	complaintsLimit = 10
	trendWindowDays = 7
)

// Repository хранилище сессий.
type Repository interface {
	CreateSession(ctx context.Context, session models.PracticeSession) error
	ListSessions(ctx context.Context, userID string, limit int) ([]*models.PracticeSession, error)
	ComplaintCounts(ctx context.Context, recentSince, previousSince time.Time, limit int) ([]models.ComplaintCount, error)
}

// TechniqueLookup проверяет, что техника существует.
type TechniqueLookup interface {
	Lookup(ctx context.Context, id string) (*models.Technique, error)
}

// FavoriteLister отдаёт ID избранных техник.
type FavoriteLister interface {
	IDs(ctx context.Context, userID string) ([]string, error)
}

// SessionInput данные новой сессии.
type SessionInput struct {
	TechniqueID string
	Complaint   string
	Duration    int
	Rating      *int
}

// Service реализует запись сессий и статистику.
type Service struct {
	repo       Repository
	techniques TechniqueLookup
	favorites  FavoriteLister
	now        func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService создаёт Service.
func NewService(repo Repository, techniques TechniqueLookup, favorites FavoriteLister, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		techniques: techniques,
		favorites:  favorites,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create сохраняет сессию пользователя.
func (s *Service) Create(ctx context.Context, userID string, in SessionInput) (*models.PracticeSession, error) {
	const op = "practice.Create"

	if in.Duration <= 0 {
		return nil, apperr.New(apperr.ErrValidation, "duration must be positive")
	}
	if in.Rating != nil && (*in.Rating < models.MinRating || *in.Rating > models.MaxRating) {
		return nil, apperr.New(apperr.ErrValidation, "rating must be between 1 and 5")
	}

	technique, err := s.techniques.Lookup(ctx, in.TechniqueID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	session := models.PracticeSession{
		ID:            uuid.NewString(),
		UserID:        userID,
		TechniqueID:   technique.ID,
		TechniqueName: technique.Name,
		Complaint:     in.Complaint,
		Duration:      in.Duration,
		Rating:        in.Rating,
		Date:          s.now().UTC(),
	}
	if err = s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &session, nil
}

// List возвращает последние сессии пользователя.
func (s *Service) List(ctx context.Context, userID string) ([]*models.PracticeSession, error) {
	const op = "practice.List"

	sessions, err := s.repo.ListSessions(ctx, userID, listLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sessions, nil
}

// Stats считает статистику практики пользователя.
func (s *Service) Stats(ctx context.Context, userID string) (*models.UserStats, error) {
	const op = "practice.Stats"

	sessions, err := s.repo.ListSessions(ctx, userID, statsLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	favorites, err := s.favorites.IDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	st := ComputeStats(sessions, s.now())
	st.FavoriteTechniques = favorites
	return &st, nil
}

// ComplaintStats возвращает до десяти самых частых жалоб по всем пользователям.
func (s *Service) ComplaintStats(ctx context.Context) ([]models.ComplaintStats, error) {
	const op = "practice.ComplaintStats"

	now := s.now().UTC()
	recentSince := now.AddDate(0, 0, -trendWindowDays)
	previousSince := recentSince.AddDate(0, 0, -trendWindowDays)

	counts, err := s.repo.ComplaintCounts(ctx, recentSince, previousSince, complaintsLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]models.ComplaintStats, 0, len(counts))
	for _, c := range counts {
		result = append(result, models.ComplaintStats{
			Complaint: c.Complaint,
			Count:     c.Total,
			Trending:  c.Recent > c.Previous,
		})
	}
	return result, nil
}

// ComputeStats считает агрегаты по сессиям. Средняя оценка берётся только
// по сессиям с оценкой.
func ComputeStats(sessions []*models.PracticeSession, now time.Time) models.UserStats {
	st := models.UserStats{FavoriteTechniques: []string{}}
	if len(sessions) == 0 {
		return st
	}

	var (
		ratingSum, rated int
		complaints       = make(map[string]int)
	)
	for _, sess := range sessions {
		st.TotalTimePracticed += sess.Duration
		complaints[sess.Complaint]++
		if sess.Rating != nil {
			ratingSum += *sess.Rating
			rated++
		}
	}
	st.TotalSessions = len(sessions)
	if rated > 0 {
		st.AvgRating = math.Round(float64(ratingSum)/float64(rated)*10) / 10
	}
	st.MostUsedComplaint = mostUsed(complaints)
	st.StreakDays = Streak(sessions, now)
	return st
}

// mostUsed выбирает самую частую жалобу; при равенстве первую по алфавиту.
func mostUsed(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best, bestCount := "", 0
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best
}

// Streak число подряд идущих дней UTC с хотя бы одной сессией, заканчивающихся
// сегодня или вчера. Пропуск больше суток обнуляет серию.
func Streak(sessions []*models.PracticeSession, now time.Time) int {
	days := make(map[string]struct{}, len(sessions))
	for _, sess := range sessions {
		days[sess.Date.UTC().Format(time.DateOnly)] = struct{}{}
	}

	y, m, d := now.UTC().Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if _, ok := days[day.Format(time.DateOnly)]; !ok {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for {
		if _, ok := days[day.Format(time.DateOnly)]; !ok {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}
