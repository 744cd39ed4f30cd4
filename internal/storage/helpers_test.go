package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/zenpress/internal/migrations"
	"github.com/magabrotheeeer/zenpress/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(3*time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(ctx, connStr)
	require.NoError(t, err, "failed to create storage")
	require.NoError(t, migrations.Run(storage.DB), "failed to apply migrations")

	cleanup := func() {
		_ = storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}

// testDataFactory создаёт тестовые записи через публичные методы Storage.
type testDataFactory struct {
	storage *Storage
}

func (f *testDataFactory) createUser(t *testing.T, email string, premiumUntil *time.Time) *models.User {
	t.Helper()
	u := models.User{
		ID:               uuid.NewString(),
		Name:             "Ana",
		Email:            email,
		PasswordHash:     "hashedpassword",
		Role:             models.RoleUser,
		IsPremium:        premiumUntil != nil,
		PremiumExpiresAt: premiumUntil,
		CreatedAt:        time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, f.storage.CreateUser(context.Background(), u))
	return &u
}

func (f *testDataFactory) createReview(t *testing.T, userID, techniqueID string, rating int, at time.Time) *models.Review {
	t.Helper()
	r := models.Review{
		ID:              uuid.NewString(),
		UserID:          userID,
		TechniqueID:     techniqueID,
		TechniqueName:   "Yintang",
		Rating:          rating,
		Comment:         "ok",
		SessionDuration: 60,
		CreatedAt:       at.UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, f.storage.CreateReview(context.Background(), r))
	return &r
}

func (f *testDataFactory) createSession(t *testing.T, userID, complaint string, at time.Time) *models.PracticeSession {
	t.Helper()
	s := models.PracticeSession{
		ID:            uuid.NewString(),
		UserID:        userID,
		TechniqueID:   "tech-hegu",
		TechniqueName: "Hegu",
		Complaint:     complaint,
		Duration:      60,
		Date:          at.UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, f.storage.CreateSession(context.Background(), s))
	return &s
}
