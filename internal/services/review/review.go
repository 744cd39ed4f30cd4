// Package review записывает отзывы о техниках и считает по ним статистику.
//
// Отзывы только добавляются; повторная оценка той же техники создаёт новую
// запись. Агрегаты пересчитываются сканированием при каждом запросе.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/zenpress/internal/lib/apperr"
	"github.com/magabrotheeeer/zenpress/internal/lib/metrics"
	"github.com/magabrotheeeer/zenpress/internal/lib/sl"
	"github.com/magabrotheeeer/zenpress/internal/models"
	"github.com/magabrotheeeer/zenpress/internal/services/access"
)

const (
	// DefaultWindowDays окно аналитики по умолчанию.
	DefaultWindowDays = 30
	// MaxWindowDays наибольшее окно аналитики.
	MaxWindowDays = 365

	defaultSessionDuration = 60
	techniqueLatest        = 5
	rankingLatest          = 3
	recentFeedback         = 10
	myReviewsLimit         = 100
)

// Repository хранилище отзывов.
type Repository interface {
	CreateReview(ctx context.Context, review models.Review) error
	GetReview(ctx context.Context, id string) (*models.Review, error)
	DeleteReview(ctx context.Context, id string) error
	ListReviews(ctx context.Context, filter models.ReviewFilter) ([]*models.Review, error)
}

// TechniqueLookup проверяет, что техника существует.
type TechniqueLookup interface {
	Lookup(ctx context.Context, id string) (*models.Technique, error)
}

// Service реализует запись, статистику и удаление отзывов.
type Service struct {
	repo       Repository
	techniques TechniqueLookup
	log        *slog.Logger
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
func NewService(repo Repository, techniques TechniqueLookup, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		techniques: techniques,
		log:        log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record сохраняет отзыв автора user.
func (s *Service) Record(ctx context.Context, user *models.User, in models.ReviewInput) (*models.Review, error) {
	const op = "review.Record"

	if in.Rating < models.MinRating || in.Rating > models.MaxRating {
		return nil, apperr.New(apperr.ErrValidation, "rating must be between 1 and 5")
	}
	if in.SessionDuration < 0 {
		return nil, apperr.New(apperr.ErrValidation, "session_duration must not be negative")
	}
	if in.SessionDuration == 0 {
		in.SessionDuration = defaultSessionDuration
	}

	technique, err := s.techniques.Lookup(ctx, in.TechniqueID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	r := models.Review{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		TechniqueID:     technique.ID,
		TechniqueName:   technique.Name,
		Rating:          in.Rating,
		Comment:         in.Comment,
		SessionDuration: in.SessionDuration,
		UserPremium:     access.EffectivePremium(user, now),
		CreatedAt:       now,
	}
	if err = s.repo.CreateReview(ctx, r); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.ReviewsRecorded.WithLabelValues(Sentiment(r.Rating)).Inc()
	s.log.Info("review recorded",
		sl.Op(op),
		slog.String("review_id", r.ID),
		slog.String("technique_id", r.TechniqueID),
		slog.Int("rating", r.Rating),
	)
	return &r, nil
}

// Stats возвращает агрегаты по всем отзывам.
func (s *Service) Stats(ctx context.Context) (models.ReviewStats, error) {
	const op = "review.Stats"

	reviews, err := s.repo.ListReviews(ctx, models.ReviewFilter{})
	if err != nil {
		return models.ReviewStats{}, fmt.Errorf("%s: %w", op, err)
	}
	return ComputeStats(reviews), nil
}

// TechniqueStats возвращает агрегаты одной техники и её последние отзывы.
func (s *Service) TechniqueStats(ctx context.Context, techniqueID string) (*models.TechniqueReviewStats, error) {
	const op = "review.TechniqueStats"

	technique, err := s.techniques.Lookup(ctx, techniqueID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	reviews, err := s.repo.ListReviews(ctx, models.ReviewFilter{TechniqueID: techniqueID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	st := TechniqueStats(technique.ID, technique.Name, reviews, techniqueLatest)
	return &st, nil
}

// Analytics собирает панель аналитики за последние days дней.
func (s *Service) Analytics(ctx context.Context, days int) (*models.ReviewAnalytics, error) {
	const op = "review.Analytics"

	if days < 1 || days > MaxWindowDays {
		return nil, apperr.New(apperr.ErrValidation, fmt.Sprintf("days must be between 1 and %d", MaxWindowDays))
	}

	all, err := s.repo.ListReviews(ctx, models.ReviewFilter{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	start := WindowStart(now, days)
	window, err := s.repo.ListReviews(ctx, models.ReviewFilter{Since: &start})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.ReviewAnalytics{
		WindowDays:        days,
		OverallStats:      ComputeStats(all),
		DailyReviews:      DailyBreakdown(window, days, now),
		TechniqueRankings: Rankings(window, rankingLatest),
		RecentFeedback:    Latest(window, recentFeedback),
		Trends: models.ReviewTrends{
			MostCommonRating: MostCommonRating(window),
		},
	}, nil
}

// ListMine возвращает отзывы пользователя, новые первыми.
func (s *Service) ListMine(ctx context.Context, userID string) ([]*models.Review, error) {
	const op = "review.ListMine"

	reviews, err := s.repo.ListReviews(ctx, models.ReviewFilter{UserID: userID, Limit: myReviewsLimit})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reviews, nil
}

// Delete удаляет отзыв. Удалить может только автор или администратор.
func (s *Service) Delete(ctx context.Context, user *models.User, reviewID string) error {
	const op = "review.Delete"

	r, err := s.repo.GetReview(ctx, reviewID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.New(apperr.ErrNotFound, "review not found")
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if r.UserID != user.ID && !user.IsAdmin() {
		return apperr.New(apperr.ErrForbidden, "only the author can delete this review")
	}

	if err = s.repo.DeleteReview(ctx, reviewID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.New(apperr.ErrNotFound, "review not found")
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("review deleted", sl.Op(op), slog.String("review_id", reviewID), slog.String("by", user.ID))
	return nil
}
