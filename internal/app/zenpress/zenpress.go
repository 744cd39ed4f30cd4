package zenpress

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/zenpress/internal/cache"
	"github.com/magabrotheeeer/zenpress/internal/config"
	"github.com/magabrotheeeer/zenpress/internal/http/middlewarectx"
	"github.com/magabrotheeeer/zenpress/internal/lib/jwt"
	"github.com/magabrotheeeer/zenpress/internal/lib/password"
	"github.com/magabrotheeeer/zenpress/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/zenpress/internal/lib/sl"
	"github.com/magabrotheeeer/zenpress/internal/migrations"
	"github.com/magabrotheeeer/zenpress/internal/services/access"
	"github.com/magabrotheeeer/zenpress/internal/services/auth"
	"github.com/magabrotheeeer/zenpress/internal/services/favorite"
	"github.com/magabrotheeeer/zenpress/internal/services/practice"
	"github.com/magabrotheeeer/zenpress/internal/services/review"
	"github.com/magabrotheeeer/zenpress/internal/services/subscription"
	"github.com/magabrotheeeer/zenpress/internal/services/technique"
	"github.com/magabrotheeeer/zenpress/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// App HTTP-приложение со всеми внешними ресурсами.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключает хранилище, применяет миграции, подключает Redis и RabbitMQ
// и собирает маршруты. Недоступные Redis и RabbitMQ не мешают старту:
// каталог читается из базы, события не публикуются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{logger: logger, db: db}

	var catalogCache technique.Cache
	if c, err := cache.InitServer(ctx, cfg.RedisConnection); err != nil {
		logger.Warn("redis unavailable, catalog cache disabled", sl.Err(err))
	} else {
		app.cache = c
		catalogCache = c
	}

	var events subscription.EventPublisher
	if conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay); err != nil {
		logger.Warn("rabbitmq unavailable, subscription events disabled", sl.Err(err))
	} else if ch, err := rabbitmq.SetupChannel(conn, rabbitmq.PaymentTopology(cfg.RabbitMQ)); err != nil {
		logger.Warn("rabbitmq channel setup failed, subscription events disabled", sl.Err(err))
		_ = conn.Close()
	} else {
		app.conn, app.ch = conn, ch
		events = rabbitmq.NewPublisher(ch, cfg.RabbitMQ.EventsExchange)
	}

	tokens := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	techniques := technique.NewService(db, catalogCache, cfg.CatalogTTL, logger)
	favorites := favorite.NewService(db, techniques)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Services{
		Gate:          access.NewGate(db, tokens, logger),
		Auth:          auth.NewService(db, password.NewHasher(cfg.BcryptCost), tokens, logger),
		Techniques:    techniques,
		Reviews:       review.NewService(db, techniques, logger),
		Favorites:     favorites,
		Practice:      practice.NewService(db, techniques, favorites),
		Subscriptions: subscription.NewService(db, events, logger),
		Health:        db,
		AuthLimiter: middlewarectx.NewIPLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst,
			middlewarectx.WithIdleTTL(cfg.RateLimit.IdleTTL),
			middlewarectx.WithMaxClients(cfg.RateLimit.MaxClients)),
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run запускает сервер и блокируется до отмены ctx или ошибки сервера.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	a.close()
	return err
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
