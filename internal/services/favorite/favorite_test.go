package favorite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/zenpress/internal/lib/apperr"
	"github.com/magabrotheeeer/zenpress/internal/models"
	"github.com/magabrotheeeer/zenpress/internal/services/favorite"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) AddFavorite(ctx context.Context, fav models.Favorite) error {
	return m.Called(ctx, fav).Error(0)
}

func (m *RepoMock) RemoveFavorite(ctx context.Context, userID, techniqueID string) error {
	return m.Called(ctx, userID, techniqueID).Error(0)
}

func (m *RepoMock) ListFavoriteIDs(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *RepoMock) ListTechniquesByIDs(ctx context.Context, ids []string) ([]*models.Technique, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Technique), args.Error(1)
}

type TechniquesMock struct {
	mock.Mock
}

func (m *TechniquesMock) Lookup(ctx context.Context, id string) (*models.Technique, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Technique), args.Error(1)
}

func TestService_Add(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(r *RepoMock, tm *TechniquesMock)
		wantStatus int
	}{
		{
			name: "added",
			setup: func(r *RepoMock, tm *TechniquesMock) {
				tm.On("Lookup", mock.Anything, "T1").Return(&models.Technique{ID: "T1"}, nil).Once()
				r.On("AddFavorite", mock.Anything, mock.MatchedBy(func(f models.Favorite) bool {
					return f.UserID == "u1" && f.TechniqueID == "T1" && f.ID != ""
				})).Return(nil).Once()
			},
		},
		{
			name: "duplicate is a conflict",
			setup: func(r *RepoMock, tm *TechniquesMock) {
				tm.On("Lookup", mock.Anything, "T1").Return(&models.Technique{ID: "T1"}, nil).Once()
				r.On("AddFavorite", mock.Anything, mock.Anything).Return(apperr.ErrConflict).Once()
			},
			wantStatus: 400,
		},
		{
			name: "unknown technique",
			setup: func(_ *RepoMock, tm *TechniquesMock) {
				tm.On("Lookup", mock.Anything, "T1").Return(nil, apperr.New(apperr.ErrNotFound, "technique not found")).Once()
			},
			wantStatus: 404,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			techs := new(TechniquesMock)
			tt.setup(repo, techs)
			svc := favorite.NewService(repo, techs)

			fav, err := svc.Add(context.Background(), "u1", "T1")
			if tt.wantStatus != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantStatus, apperr.HTTPStatus(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "T1", fav.TechniqueID)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Remove(t *testing.T) {
	tests := []struct {
		name       string
		repoErr    error
		wantStatus int
	}{
		{name: "removed", repoErr: nil, wantStatus: 200},
		{name: "absent", repoErr: apperr.ErrNotFound, wantStatus: 404},
		{name: "store failure", repoErr: errors.New("db down"), wantStatus: 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("RemoveFavorite", mock.Anything, "u1", "T1").Return(tt.repoErr).Once()
			svc := favorite.NewService(repo, new(TechniquesMock))

			err := svc.Remove(context.Background(), "u1", "T1")
			assert.Equal(t, tt.wantStatus, apperr.HTTPStatus(err))
		})
	}
}

func TestService_ListHidesPremiumForFreeUser(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListFavoriteIDs", mock.Anything, "u1").Return([]string{"T1", "T2"}, nil).Once()
	repo.On("ListTechniquesByIDs", mock.Anything, []string{"T1", "T2"}).Return([]*models.Technique{
		{ID: "T1"},
		{ID: "T2", IsPremium: true},
	}, nil).Once()
	svc := favorite.NewService(repo, new(TechniquesMock))

	got, err := svc.List(context.Background(), &models.User{ID: "u1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "T1", got[0].ID)
}
