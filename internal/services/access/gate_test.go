package access_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/zenpress/internal/lib/apperr"
	"github.com/magabrotheeeer/zenpress/internal/lib/jwt"
	"github.com/magabrotheeeer/zenpress/internal/models"
	"github.com/magabrotheeeer/zenpress/internal/services/access"
)

type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) DowngradePremium(ctx context.Context, id string, now time.Time) (bool, error) {
	args := m.Called(ctx, id, now)
	return args.Bool(0), args.Error(1)
}

type VerifierMock struct {
	mock.Mock
}

func (m *VerifierMock) Verify(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

func TestGate_Resolve(t *testing.T) {
	user := &models.User{ID: "u1", Name: "Ana"}

	tests := []struct {
		name        string
		token       string
		requireAuth bool
		setup       func(u *UserRepoMock, v *VerifierMock)
		wantOutcome access.Outcome
		wantStatus  int
	}{
		{
			name:        "no token optional",
			setup:       func(*UserRepoMock, *VerifierMock) {},
			wantOutcome: access.Anonymous,
		},
		{
			name:        "no token required",
			requireAuth: true,
			setup:       func(*UserRepoMock, *VerifierMock) {},
			wantOutcome: access.Rejected,
			wantStatus:  401,
		},
		{
			name:  "invalid token optional is anonymous",
			token: "garbage",
			setup: func(_ *UserRepoMock, v *VerifierMock) {
				v.On("Verify", "garbage").Return("", jwt.ErrInvalidToken).Once()
			},
			wantOutcome: access.Anonymous,
		},
		{
			name:        "invalid token required",
			token:       "garbage",
			requireAuth: true,
			setup: func(_ *UserRepoMock, v *VerifierMock) {
				v.On("Verify", "garbage").Return("", jwt.ErrInvalidToken).Once()
			},
			wantOutcome: access.Rejected,
			wantStatus:  401,
		},
		{
			name:        "valid token known user",
			token:       "good",
			requireAuth: true,
			setup: func(u *UserRepoMock, v *VerifierMock) {
				v.On("Verify", "good").Return("u1", nil).Once()
				u.On("GetUserByID", mock.Anything, "u1").Return(user, nil).Once()
			},
			wantOutcome: access.Authenticated,
		},
		{
			name:        "stale token of deleted user",
			token:       "stale",
			requireAuth: true,
			setup: func(u *UserRepoMock, v *VerifierMock) {
				v.On("Verify", "stale").Return("gone", nil).Once()
				u.On("GetUserByID", mock.Anything, "gone").Return(nil, apperr.ErrNotFound).Once()
			},
			wantOutcome: access.Rejected,
			wantStatus:  401,
		},
		{
			name:  "stale token optional is anonymous",
			token: "stale",
			setup: func(u *UserRepoMock, v *VerifierMock) {
				v.On("Verify", "stale").Return("gone", nil).Once()
				u.On("GetUserByID", mock.Anything, "gone").Return(nil, apperr.ErrNotFound).Once()
			},
			wantOutcome: access.Anonymous,
		},
		{
			name:  "store failure is rejected",
			token: "good",
			setup: func(u *UserRepoMock, v *VerifierMock) {
				v.On("Verify", "good").Return("u1", nil).Once()
				u.On("GetUserByID", mock.Anything, "u1").Return(nil, errors.New("db down")).Once()
			},
			wantOutcome: access.Rejected,
			wantStatus:  500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			verifier := new(VerifierMock)
			tt.setup(repo, verifier)
			gate := access.NewGate(repo, verifier, newLogger(), access.WithClock(func() time.Time { return fixedNow }))

			d := gate.Resolve(context.Background(), tt.token, tt.requireAuth)

			assert.Equal(t, tt.wantOutcome, d.Outcome)
			switch d.Outcome {
			case access.Authenticated:
				assert.Equal(t, user, d.User)
				assert.NoError(t, d.Err)
			case access.Rejected:
				require.Error(t, d.Err)
				assert.Nil(t, d.User)
				assert.Equal(t, tt.wantStatus, apperr.HTTPStatus(d.Err))
			default:
				assert.Nil(t, d.User)
				assert.NoError(t, d.Err)
			}
			repo.AssertExpectations(t)
			verifier.AssertExpectations(t)
		})
	}
}

func TestEffectivePremium(t *testing.T) {
	tests := []struct {
		name string
		user *models.User
		want bool
	}{
		{name: "nil user", user: nil, want: false},
		{name: "free user", user: &models.User{}, want: false},
		{name: "premium without expiry", user: &models.User{IsPremium: true}, want: true},
		{name: "premium in future", user: &models.User{IsPremium: true, PremiumExpiresAt: ptr(fixedNow.Add(time.Second))}, want: true},
		{name: "expires exactly now", user: &models.User{IsPremium: true, PremiumExpiresAt: ptr(fixedNow)}, want: false},
		{name: "expired a second ago", user: &models.User{IsPremium: true, PremiumExpiresAt: ptr(fixedNow.Add(-time.Second))}, want: false},
		{name: "flag off with future expiry", user: &models.User{PremiumExpiresAt: ptr(fixedNow.Add(time.Hour))}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, access.EffectivePremium(tt.user, fixedNow))
		})
	}
}

func TestEffectivePremium_MonotonicInTime(t *testing.T) {
	user := &models.User{IsPremium: true, PremiumExpiresAt: ptr(fixedNow)}
	for offset := -3; offset <= 3; offset++ {
		now := fixedNow.Add(time.Duration(offset) * time.Second)
		assert.Equal(t, offset < 0, access.EffectivePremium(user, now), "offset %ds", offset)
	}
}

func TestGate_RequirePremium(t *testing.T) {
	expired := &models.User{ID: "u1", IsPremium: true, PremiumExpiresAt: ptr(fixedNow.Add(-time.Second))}
	renewed := &models.User{ID: "u1", IsPremium: true, PremiumExpiresAt: ptr(fixedNow.Add(30 * 24 * time.Hour))}

	tests := []struct {
		name    string
		user    *models.User
		setup   func(r *UserRepoMock)
		wantErr bool
	}{
		{name: "active premium passes", user: &models.User{ID: "u1", IsPremium: true, PremiumExpiresAt: ptr(fixedNow.Add(time.Hour))}},
		{name: "lifetime premium passes", user: &models.User{ID: "u1", IsPremium: true}},
		{name: "free user is forbidden without write", user: &models.User{ID: "u1"}, wantErr: true},
		{
			name: "expired premium is downgraded",
			user: expired,
			setup: func(r *UserRepoMock) {
				r.On("DowngradePremium", mock.Anything, "u1", fixedNow).Return(true, nil).Once()
			},
			wantErr: true,
		},
		{
			name: "downgrade failure still rejects",
			user: expired,
			setup: func(r *UserRepoMock) {
				r.On("DowngradePremium", mock.Anything, "u1", fixedNow).Return(false, errors.New("db down")).Once()
			},
			wantErr: true,
		},
		{
			name: "renewal after the read is honoured",
			user: expired,
			setup: func(r *UserRepoMock) {
				r.On("DowngradePremium", mock.Anything, "u1", fixedNow).Return(false, nil).Once()
				r.On("GetUserByID", mock.Anything, "u1").Return(renewed, nil).Once()
			},
		},
		{
			name: "skipped downgrade without renewal rejects",
			user: expired,
			setup: func(r *UserRepoMock) {
				r.On("DowngradePremium", mock.Anything, "u1", fixedNow).Return(false, nil).Once()
				r.On("GetUserByID", mock.Anything, "u1").Return(&models.User{ID: "u1"}, nil).Once()
			},
			wantErr: true,
		},
		{
			name: "reload failure rejects",
			user: expired,
			setup: func(r *UserRepoMock) {
				r.On("DowngradePremium", mock.Anything, "u1", fixedNow).Return(false, nil).Once()
				r.On("GetUserByID", mock.Anything, "u1").Return(nil, errors.New("db down")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			if tt.setup != nil {
				tt.setup(repo)
			}
			gate := access.NewGate(repo, new(VerifierMock), newLogger(), access.WithClock(func() time.Time { return fixedNow }))

			err := gate.RequirePremium(context.Background(), tt.user)
			if tt.wantErr {
				require.ErrorIs(t, err, apperr.ErrForbidden)
				assert.Equal(t, 403, apperr.HTTPStatus(err))
			} else {
				require.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

// memUsers хранит пользователей в памяти для проверки итогового состояния.
type memUsers struct {
	mu    sync.Mutex
	users map[string]models.User
}

func (m *memUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) DowngradePremium(_ context.Context, id string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || !u.IsPremium || u.PremiumExpiresAt == nil || u.PremiumExpiresAt.After(now) {
		return false, nil
	}
	u.IsPremium = false
	u.PremiumExpiresAt = nil
	m.users[id] = u
	return true, nil
}

func (m *memUsers) renew(id string, until time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[id]
	u.IsPremium, u.PremiumExpiresAt = true, &until
	m.users[id] = u
}

func TestGate_ConcurrentDowngradeIsIdempotent(t *testing.T) {
	store := &memUsers{users: map[string]models.User{
		"u1": {ID: "u1", IsPremium: true, PremiumExpiresAt: ptr(fixedNow.Add(-time.Second))},
	}}
	gate := access.NewGate(store, new(VerifierMock), newLogger(), access.WithClock(func() time.Time { return fixedNow }))

	stale, err := store.GetUserByID(context.Background(), "u1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snapshot := *stale
			errs[i] = gate.RequirePremium(context.Background(), &snapshot)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	}
	after, err := store.GetUserByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, after.IsPremium)
	assert.Nil(t, after.PremiumExpiresAt)
}

func TestGate_StaleDowngradeKeepsRenewal(t *testing.T) {
	store := &memUsers{users: map[string]models.User{
		"u1": {ID: "u1", IsPremium: true, PremiumExpiresAt: ptr(fixedNow.Add(-time.Hour))},
	}}
	gate := access.NewGate(store, new(VerifierMock), newLogger(), access.WithClock(func() time.Time { return fixedNow }))

	stale, err := store.GetUserByID(context.Background(), "u1")
	require.NoError(t, err)
	store.renew("u1", fixedNow.Add(30*24*time.Hour))

	require.NoError(t, gate.RequirePremium(context.Background(), stale))

	after, err := store.GetUserByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, after.IsPremium)
	require.NotNil(t, after.PremiumExpiresAt)
	assert.True(t, fixedNow.Add(30*24*time.Hour).Equal(*after.PremiumExpiresAt))
}

func TestFilterVisible(t *testing.T) {
	catalog := []*models.Technique{
		{ID: "a", IsPremium: false},
		{ID: "b", IsPremium: true},
		{ID: "c", IsPremium: false},
	}
	expired := &models.User{IsPremium: true, PremiumExpiresAt: ptr(fixedNow.Add(-time.Minute))}
	active := &models.User{IsPremium: true}

	ids := func(ts []*models.Technique) []string {
		out := make([]string, 0, len(ts))
		for _, t := range ts {
			out = append(out, t.ID)
		}
		return out
	}

	assert.Equal(t, []string{"a", "c"}, ids(access.FilterVisible(nil, catalog, fixedNow)))
	assert.Equal(t, []string{"a", "c"}, ids(access.FilterVisible(expired, catalog, fixedNow)))
	assert.Equal(t, []string{"a", "b", "c"}, ids(access.FilterVisible(active, catalog, fixedNow)))
	assert.False(t, access.CanView(nil, catalog[1], fixedNow))
	assert.True(t, access.CanView(nil, catalog[0], fixedNow))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "anonymous", access.Anonymous.String())
	assert.Equal(t, "authenticated", access.Authenticated.String())
	assert.Equal(t, "rejected", access.Rejected.String())
}

func TestPresent(t *testing.T) {
	expiry := fixedNow.Add(-time.Minute)
	stored := &models.User{ID: "u1", IsPremium: true, PremiumExpiresAt: &expiry}

	shown := access.Present(stored, fixedNow)

	assert.False(t, shown.IsPremium)
	assert.True(t, stored.IsPremium, "stored record must stay untouched")
}
