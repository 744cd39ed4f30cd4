// Package access решает, кто обращается к сервису и что ему доступно.
//
// Каждый запрос получает одно из трёх решений: аноним, аутентифицированный
// пользователь или отказ. Премиум вычисляется по сроку действия на каждом
// запросе; сохранённый флаг с истёкшим сроком сбрасывается лениво, на пути,
// где премиум обязателен.
package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/zenpress/internal/lib/apperr"
	"github.com/magabrotheeeer/zenpress/internal/lib/jwt"
	"github.com/magabrotheeeer/zenpress/internal/lib/metrics"
	"github.com/magabrotheeeer/zenpress/internal/lib/sl"
	"github.com/magabrotheeeer/zenpress/internal/models"
)

// UserRepository источник учётных записей для гейта.
type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// DowngradePremium сбрасывает премиум, только если в хранилище он всё ещё
	// истёк к моменту now. false означает, что сбрасывать было нечего.
	DowngradePremium(ctx context.Context, id string, now time.Time) (bool, error)
}

// TokenVerifier проверяет bearer-токен и возвращает ID пользователя.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Outcome исход проверки доступа.
type Outcome int

const (
	Anonymous Outcome = iota
	Authenticated
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Decision результат проверки. User заполнен только для Authenticated,
// Err только для Rejected.
type Decision struct {
	Outcome Outcome
	User    *models.User
	Err     error
}

func anonymous() Decision { return Decision{Outcome: Anonymous} }

func authenticated(u *models.User) Decision {
	return Decision{Outcome: Authenticated, User: u}
}

func rejected(err error) Decision { return Decision{Outcome: Rejected, Err: err} }

// Gate проверяет токены и премиум-доступ.
type Gate struct {
	users  UserRepository
	tokens TokenVerifier
	log    *slog.Logger
	now    func() time.Time
}

// Option настраивает Gate.
type Option func(*Gate)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		g.now = now
	}
}

// NewGate создаёт Gate.
func NewGate(users UserRepository, tokens TokenVerifier, log *slog.Logger, opts ...Option) *Gate {
	g := &Gate{
		users:  users,
		tokens: tokens,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Now возвращает текущее время гейта.
func (g *Gate) Now() time.Time {
	return g.now()
}

// Resolve определяет вызывающего по токену. При requireAuth отсутствующий
// или невалидный токен и неизвестный пользователь дают отказ 401; иначе
// такие запросы считаются анонимными.
func (g *Gate) Resolve(ctx context.Context, token string, requireAuth bool) Decision {
	d := g.resolve(ctx, token, requireAuth)
	metrics.AccessDecisions.WithLabelValues(d.Outcome.String()).Inc()
	return d
}

func (g *Gate) resolve(ctx context.Context, token string, requireAuth bool) Decision {
	const op = "access.Resolve"

	if token == "" {
		if requireAuth {
			return rejected(apperr.New(apperr.ErrUnauthorized, "missing bearer token"))
		}
		return anonymous()
	}

	userID, err := g.tokens.Verify(token)
	if err != nil {
		g.log.Debug("bearer token rejected", sl.Op(op), slog.Bool("expired", jwt.IsExpired(err)))
		if requireAuth {
			return rejected(apperr.New(apperr.ErrUnauthorized, "could not validate credentials"))
		}
		return anonymous()
	}

	user, err := g.users.GetUserByID(ctx, userID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		if requireAuth {
			return rejected(apperr.New(apperr.ErrUnauthorized, "user not found"))
		}
		return anonymous()
	case err != nil:
		return rejected(fmt.Errorf("%s: %w", op, err))
	}
	return authenticated(user)
}

// RequirePremium пропускает только пользователей с действующим премиумом.
// Если флаг стоит, а срок истёк, флаг сбрасывается в хранилище перед отказом;
// ошибка записи только логируется. Сброс не трогает запись, продлённую
// после того, как user был прочитан; в этом случае решение принимается
// по свежей записи.
func (g *Gate) RequirePremium(ctx context.Context, user *models.User) error {
	const op = "access.RequirePremium"

	now := g.now()
	if EffectivePremium(user, now) {
		return nil
	}
	if !user.IsPremium {
		return apperr.New(apperr.ErrForbidden, "premium subscription required")
	}

	log := g.log.With(sl.Op(op), slog.String("user_id", user.ID))
	downgraded, err := g.users.DowngradePremium(ctx, user.ID, now)
	switch {
	case err != nil:
		log.Warn("failed to downgrade expired premium", sl.Err(err))
	case downgraded:
		metrics.PremiumDowngrades.Inc()
		log.Info("expired premium downgraded")
	default:
		fresh, err := g.users.GetUserByID(ctx, user.ID)
		if err != nil {
			log.Warn("failed to reload user after skipped downgrade", sl.Err(err))
		} else if EffectivePremium(fresh, now) {
			log.Debug("premium renewed concurrently, downgrade skipped")
			return nil
		}
	}
	return apperr.New(apperr.ErrForbidden, "premium subscription expired")
}

// EffectivePremium вычисляет премиум с учётом срока действия.
func EffectivePremium(user *models.User, now time.Time) bool {
	if user == nil || !user.IsPremium {
		return false
	}
	return user.PremiumExpiresAt == nil || user.PremiumExpiresAt.After(now)
}

// CanView сообщает, может ли вызывающий видеть технику. user может быть nil.
func CanView(user *models.User, technique *models.Technique, now time.Time) bool {
	return !technique.IsPremium || EffectivePremium(user, now)
}

// FilterVisible оставляет только видимые вызывающему техники, сохраняя порядок.
func FilterVisible(user *models.User, techniques []*models.Technique, now time.Time) []*models.Technique {
	premium := EffectivePremium(user, now)
	result := make([]*models.Technique, 0, len(techniques))
	for _, t := range techniques {
		if premium || !t.IsPremium {
			result = append(result, t)
		}
	}
	return result
}

// Present возвращает копию пользователя, где премиум показан с учётом срока.
// Хранилище не изменяется.
func Present(user *models.User, now time.Time) *models.User {
	u := *user
	if !EffectivePremium(user, now) {
		u.IsPremium = false
	}
	return &u
}
