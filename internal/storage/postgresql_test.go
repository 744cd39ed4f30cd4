package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/zenpress/internal/lib/apperr"
	"github.com/magabrotheeeer/zenpress/internal/models"
)

func TestStorage_Users(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := &testDataFactory{storage: storage}

	user := factory.createUser(t, "ana@example.com", nil)

	t.Run("get by email and id", func(t *testing.T) {
		byEmail, err := storage.GetUserByEmail(ctx, "ana@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
		assert.Equal(t, models.RoleUser, byEmail.Role)
		assert.Nil(t, byEmail.PremiumExpiresAt)

		byID, err := storage.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", byID.Email)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		dup := *user
		dup.ID = uuid.NewString()
		err := storage.CreateUser(ctx, dup)
		require.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		_, err := storage.GetUserByID(ctx, "missing")
		require.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestStorage_DowngradePremiumIsIdempotent(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := &testDataFactory{storage: storage}

	past := time.Now().Add(-time.Hour).UTC()
	user := factory.createUser(t, "expired@example.com", &past)

	for i, want := range []bool{true, false} {
		downgraded, err := storage.DowngradePremium(ctx, user.ID, time.Now())
		require.NoError(t, err)
		assert.Equal(t, want, downgraded, "call %d", i)
		got, err := storage.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.False(t, got.IsPremium)
		assert.Nil(t, got.PremiumExpiresAt)
	}
}

func TestStorage_DowngradePremiumKeepsRenewedSubscription(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := &testDataFactory{storage: storage}

	now := time.Now().UTC().Truncate(time.Microsecond)
	past := now.Add(-time.Hour)
	user := factory.createUser(t, "renewed@example.com", &past)

	stale, err := storage.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, stale.IsPremium)

	monthly, ok := models.LookupPlan(models.PlanMonthly)
	require.True(t, ok)
	require.NoError(t, storage.ActivatePremium(ctx, models.Subscription{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Plan:        monthly.Name,
		Status:      models.SubscriptionStatusActive,
		Provider:    models.ProviderDirect,
		StartedAt:   now,
		ExpiresAt:   now.Add(monthly.Duration),
		AmountCents: monthly.AmountCents,
		Currency:    monthly.Currency,
	}))

	downgraded, err := storage.DowngradePremium(ctx, stale.ID, now)
	require.NoError(t, err)
	assert.False(t, downgraded)

	got, err := storage.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPremium)
	require.NotNil(t, got.PremiumExpiresAt)
	assert.True(t, now.Add(monthly.Duration).Equal(*got.PremiumExpiresAt))
}

func TestStorage_ActivatePremium(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := &testDataFactory{storage: storage}

	user := factory.createUser(t, "buyer@example.com", nil)
	now := time.Now().UTC().Truncate(time.Microsecond)
	paymentID := "pay-1"
	monthly, ok := models.LookupPlan(models.PlanMonthly)
	require.True(t, ok)
	yearly, ok := models.LookupPlan(models.PlanYearly)
	require.True(t, ok)
	sub := models.Subscription{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Plan:        monthly.Name,
		Status:      models.SubscriptionStatusActive,
		Provider:    models.ProviderStripe,
		PaymentID:   &paymentID,
		StartedAt:   now,
		ExpiresAt:   now.Add(monthly.Duration),
		AmountCents: monthly.AmountCents,
		Currency:    monthly.Currency,
	}

	require.NoError(t, storage.ActivatePremium(ctx, sub))

	got, err := storage.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPremium)
	require.NotNil(t, got.PremiumExpiresAt)
	assert.True(t, sub.ExpiresAt.Equal(*got.PremiumExpiresAt))

	latest, err := storage.LatestSubscription(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, latest.ID)
	assert.Equal(t, models.ProviderStripe, latest.Provider)

	t.Run("duplicate payment id rolls back", func(t *testing.T) {
		again := sub
		again.ID = uuid.NewString()
		again.ExpiresAt = now.Add(yearly.Duration)
		err := storage.ActivatePremium(ctx, again)
		require.ErrorIs(t, err, apperr.ErrConflict)

		got, err := storage.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, sub.ExpiresAt.Equal(*got.PremiumExpiresAt), "expiry must not move on conflict")
	})

	t.Run("unknown user", func(t *testing.T) {
		orphan := sub
		orphan.ID = uuid.NewString()
		orphan.UserID = "missing"
		orphan.PaymentID = nil
		err := storage.ActivatePremium(ctx, orphan)
		require.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestStorage_Techniques(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	all, err := storage.ListTechniques(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	mtc, err := storage.ListTechniques(ctx, "mtc")
	require.NoError(t, err)
	for _, tech := range mtc {
		assert.Equal(t, "mtc", tech.Category)
	}

	byIDs, err := storage.ListTechniquesByIDs(ctx, []string{"tech-hegu", "tech-yintang", "nope"})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)

	_, err = storage.GetTechnique(ctx, "nope")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStorage_Favorites(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := &testDataFactory{storage: storage}
	user := factory.createUser(t, "fav@example.com", nil)

	fav := models.Favorite{ID: uuid.NewString(), UserID: user.ID, TechniqueID: "tech-hegu", CreatedAt: time.Now().UTC()}
	require.NoError(t, storage.AddFavorite(ctx, fav))

	fav.ID = uuid.NewString()
	require.ErrorIs(t, storage.AddFavorite(ctx, fav), apperr.ErrConflict)

	ids, err := storage.ListFavoriteIDs(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"tech-hegu"}, ids)

	require.NoError(t, storage.RemoveFavorite(ctx, user.ID, "tech-hegu"))
	require.ErrorIs(t, storage.RemoveFavorite(ctx, user.ID, "tech-hegu"), apperr.ErrNotFound)
}

func TestStorage_ListReviews(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := &testDataFactory{storage: storage}

	now := time.Now().UTC()
	old := factory.createReview(t, "u1", "tech-hegu", 5, now.Add(-10*24*time.Hour))
	factory.createReview(t, "u1", "tech-yintang", 2, now.Add(-time.Hour))
	newest := factory.createReview(t, "u2", "tech-hegu", 4, now)

	since := now.Add(-2 * 24 * time.Hour)
	tests := []struct {
		name    string
		filter  models.ReviewFilter
		wantIDs int
		first   string
	}{
		{name: "all", filter: models.ReviewFilter{}, wantIDs: 3, first: newest.ID},
		{name: "by technique", filter: models.ReviewFilter{TechniqueID: "tech-hegu"}, wantIDs: 2, first: newest.ID},
		{name: "by user", filter: models.ReviewFilter{UserID: "u2"}, wantIDs: 1, first: newest.ID},
		{name: "since", filter: models.ReviewFilter{Since: &since}, wantIDs: 2, first: newest.ID},
		{name: "limit", filter: models.ReviewFilter{Limit: 1}, wantIDs: 1, first: newest.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := storage.ListReviews(ctx, tt.filter)
			require.NoError(t, err)
			require.Len(t, got, tt.wantIDs)
			assert.Equal(t, tt.first, got[0].ID)
		})
	}

	require.NoError(t, storage.DeleteReview(ctx, old.ID))
	require.ErrorIs(t, storage.DeleteReview(ctx, old.ID), apperr.ErrNotFound)
}

func TestStorage_Sessions(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := &testDataFactory{storage: storage}

	now := time.Now().UTC()
	factory.createSession(t, "u1", "stress", now.Add(-48*time.Hour))
	newest := factory.createSession(t, "u1", "insomnia", now)
	factory.createSession(t, "u2", "stress", now)

	got, err := storage.ListSessions(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newest.ID, got[0].ID)
	assert.Nil(t, got[0].Rating)

	limited, err := storage.ListSessions(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStorage_ComplaintCounts(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := &testDataFactory{storage: storage}

	now := time.Now().UTC()
	recentSince := now.AddDate(0, 0, -7)
	previousSince := now.AddDate(0, 0, -14)

	for i := 0; i < 3; i++ {
		factory.createSession(t, "u1", "stress", now.Add(-time.Duration(i)*time.Hour))
	}
	factory.createSession(t, "u2", "stress", now.AddDate(0, 0, -10))
	factory.createSession(t, "u1", "insomnia", now.AddDate(0, 0, -9))
	factory.createSession(t, "u2", "insomnia", now.AddDate(0, 0, -30))
	factory.createSession(t, "u3", "headache", now.AddDate(0, 0, -1))

	got, err := storage.ComplaintCounts(ctx, recentSince, previousSince, 10)
	require.NoError(t, err)
	assert.Equal(t, []models.ComplaintCount{
		{Complaint: "stress", Total: 4, Recent: 3, Previous: 1},
		{Complaint: "insomnia", Total: 2, Recent: 0, Previous: 1},
		{Complaint: "headache", Total: 1, Recent: 1, Previous: 0},
	}, got)

	limited, err := storage.ComplaintCounts(ctx, recentSince, previousSince, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "stress", limited[0].Complaint)
}

func TestStorage_CanceledContext(t *testing.T) {
	s := &Storage{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GetUserByID(ctx, "x")
	require.ErrorIs(t, err, context.Canceled)
}
