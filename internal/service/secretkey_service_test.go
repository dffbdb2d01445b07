package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/borrzu/verify-service/internal/domain/admin"
	"github.com/borrzu/verify-service/internal/domain/secretkey"
	"github.com/borrzu/verify-service/internal/ierr"
)

type fakeKeyRepo struct {
	keys map[int64]*secretkey.SecretKey
}

func newFakeKeyRepo() *fakeKeyRepo {
	return &fakeKeyRepo{keys: make(map[int64]*secretkey.SecretKey)}
}

func (r *fakeKeyRepo) Upsert(_ context.Context, key *secretkey.SecretKey) error {
	copied := *key
	r.keys[key.UserID] = &copied
	return nil
}

func (r *fakeKeyRepo) FindByUserID(_ context.Context, userID int64) (*secretkey.SecretKey, error) {
	key, ok := r.keys[userID]
	if !ok {
		return nil, secretkey.ErrNotFound
	}
	copied := *key
	return &copied, nil
}

func (r *fakeKeyRepo) FindByValue(_ context.Context, value string) (*secretkey.SecretKey, error) {
	for _, key := range r.keys {
		if key.Value == value {
			copied := *key
			return &copied, nil
		}
	}
	return nil, secretkey.ErrNotFound
}

func (r *fakeKeyRepo) Delete(_ context.Context, userID int64) error {
	delete(r.keys, userID)
	return nil
}

func (r *fakeKeyRepo) CountActive(_ context.Context) (int64, error) {
	return int64(len(r.keys)), nil
}

type fakeLimiter struct {
	allow bool
	calls int
}

func (l *fakeLimiter) Allow(_ context.Context, _ int64) (bool, error) {
	l.calls++
	return l.allow, nil
}

func TestGenerateStoresFreshKey(t *testing.T) {
	repo := newFakeKeyRepo()
	limiter := &fakeLimiter{allow: true}
	svc := NewSecretKeyService(repo, limiter, zap.NewNop())
	actor := Actor{Role: admin.RoleAdmin}

	key, err := svc.Generate(context.Background(), actor, 5)
	require.NoError(t, err)
	require.Len(t, key.Value, secretkey.KeyLength)
	require.Equal(t, 1, limiter.calls, "the cooldown gate must run on the generation path")

	stored, err := repo.FindByUserID(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, key.Value, stored.Value)
}

func TestRegenerateReplacesValueAndOnlyNewestAuthenticates(t *testing.T) {
	repo := newFakeKeyRepo()
	svc := NewSecretKeyService(repo, &fakeLimiter{allow: true}, zap.NewNop())
	actor := Actor{Role: admin.RoleAdmin}
	ctx := context.Background()

	first, err := svc.Generate(ctx, actor, 5)
	require.NoError(t, err)

	second, err := svc.Generate(ctx, actor, 5)
	require.NoError(t, err)
	require.NotEqual(t, first.Value, second.Value)

	_, err = svc.VerifyValue(ctx, first.Value)
	require.ErrorIs(t, err, secretkey.ErrNotFound, "the overwritten value must no longer authenticate")

	key, err := svc.VerifyValue(ctx, second.Value)
	require.NoError(t, err)
	require.Equal(t, int64(5), key.UserID)
}

func TestGenerateDeniedByPermissions(t *testing.T) {
	repo := newFakeKeyRepo()
	limiter := &fakeLimiter{allow: true}
	svc := NewSecretKeyService(repo, limiter, zap.NewNop())

	// A plain account may only manage its own key.
	actor := Actor{Role: admin.RoleUser, SiteUserID: 3}

	_, err := svc.Generate(context.Background(), actor, 5)
	require.ErrorIs(t, err, ierr.ErrForbidden)
	require.Zero(t, limiter.calls, "the limiter must not record a denied attempt")
	require.Empty(t, repo.keys)

	_, err = svc.Generate(context.Background(), actor, 3)
	require.NoError(t, err)
}

func TestGenerateDeniedByCooldown(t *testing.T) {
	repo := newFakeKeyRepo()
	svc := NewSecretKeyService(repo, &fakeLimiter{allow: false}, zap.NewNop())

	_, err := svc.Generate(context.Background(), Actor{Role: admin.RoleAdmin}, 5)
	require.ErrorIs(t, err, secretkey.ErrCooldown)
	require.Empty(t, repo.keys)
}

func TestGenerateThenDeleteLeavesNoKey(t *testing.T) {
	repo := newFakeKeyRepo()
	svc := NewSecretKeyService(repo, &fakeLimiter{allow: true}, zap.NewNop())
	actor := Actor{Role: admin.RoleAdmin}
	ctx := context.Background()

	_, err := svc.Generate(ctx, actor, 9)
	require.NoError(t, err)

	count, _ := repo.CountActive(ctx)
	require.Equal(t, int64(1), count)

	require.NoError(t, svc.Delete(ctx, actor, 9))

	_, err = svc.Get(ctx, actor, 9)
	require.ErrorIs(t, err, secretkey.ErrNotFound)

	count, _ = repo.CountActive(ctx)
	require.Zero(t, count)

	// Deleting again is a no-op, not an error.
	require.NoError(t, svc.Delete(ctx, actor, 9))
}

func TestDeleteDeniedByPermissions(t *testing.T) {
	repo := newFakeKeyRepo()
	svc := NewSecretKeyService(repo, &fakeLimiter{allow: true}, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Generate(ctx, Actor{Role: admin.RoleAdmin}, 5)
	require.NoError(t, err)

	err = svc.Delete(ctx, Actor{Role: admin.RoleUser, SiteUserID: 8}, 5)
	require.ErrorIs(t, err, ierr.ErrForbidden)

	var gone error
	_, gone = repo.FindByUserID(ctx, 5)
	require.False(t, errors.Is(gone, secretkey.ErrNotFound), "the key must survive a forbidden delete")
}
