package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"storefront-service/internal/model"
	"storefront-service/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestResolveCart_SameIdentitySameCart(t *testing.T) {
	db := testutil.DB(t)
	resolver := NewResolver(NewRepository(db, zap.NewNop()))
	ctx := context.Background()

	for _, identity := range []Identity{User(7), Anonymous("a1b2c3d4e5f6")} {
		t.Run(identity.Kind(), func(t *testing.T) {
			first, err := resolver.ResolveCart(ctx, identity)
			require.NoError(t, err)
			second, err := resolver.ResolveCart(ctx, identity)
			require.NoError(t, err)

			assert.NotZero(t, first.ID)
			assert.Equal(t, first.ID, second.ID)
			assert.Empty(t, second.Items)
		})
	}

	var count int64
	require.NoError(t, db.Model(&model.Cart{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestResolveCart_DistinctIdentities(t *testing.T) {
	db := testutil.DB(t)
	resolver := NewResolver(NewRepository(db, zap.NewNop()))
	ctx := context.Background()

	userCart, err := resolver.ResolveCart(ctx, User(1))
	require.NoError(t, err)
	otherUser, err := resolver.ResolveCart(ctx, User(2))
	require.NoError(t, err)
	sessionCart, err := resolver.ResolveCart(ctx, Anonymous("tok-1"))
	require.NoError(t, err)

	assert.NotEqual(t, userCart.ID, otherUser.ID)
	assert.NotEqual(t, userCart.ID, sessionCart.ID)

	require.NotNil(t, userCart.UserID)
	assert.Nil(t, userCart.SessionToken)
	require.NotNil(t, sessionCart.SessionToken)
	assert.Nil(t, sessionCart.UserID)
	assert.Equal(t, "tok-1", *sessionCart.SessionToken)
}

func TestResolveCart_ConcurrentFirstRequests(t *testing.T) {
	db := testutil.DB(t)
	resolver := NewResolver(NewRepository(db, zap.NewNop()))

	const workers = 8
	ids := make([]uint, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := resolver.ResolveCart(context.Background(), Anonymous("shared-token"))
			errs[i] = err
			if err == nil {
				ids[i] = c.ID
			}
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	var count int64
	require.NoError(t, db.Model(&model.Cart{}).Where("session_token = ?", "shared-token").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestResolveCart_RequiresIdentity(t *testing.T) {
	resolver := NewResolver(NewRepository(testutil.DB(t), zap.NewNop()))
	_, err := resolver.ResolveCart(context.Background(), Identity{})
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestRepository_FindOrCreateReturnsExisting(t *testing.T) {
	db := testutil.DB(t)
	repo := NewRepository(db, zap.NewNop())

	token := "existing"
	require.NoError(t, db.Create(&model.Cart{SessionToken: &token}).Error)

	cart, created, err := repo.FindOrCreate(context.Background(), Anonymous(token))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, token, *cart.SessionToken)
}

func TestRepository_InsertLosesRaceFindsWinner(t *testing.T) {
	db := testutil.DB(t)
	repo := NewRepository(db, zap.NewNop())
	token := "raced"

	// Another request inserts the same cart after our lookup missed but
	// before our insert runs.
	var winnerID int64
	raced := false
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:concurrent_cart", func(tx *gorm.DB) {
		if raced {
			return
		}
		if _, ok := tx.Statement.Dest.(*model.Cart); !ok {
			return
		}
		raced = true
		now := time.Now()
		res, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
			"INSERT INTO carts (session_token, created_at, updated_at) VALUES (?, ?, ?)", token, now, now)
		require.NoError(t, err)
		winnerID, err = res.LastInsertId()
		require.NoError(t, err)
	}))

	cart, created, err := repo.FindOrCreate(context.Background(), Anonymous(token))
	require.NoError(t, err)
	require.True(t, raced, "competing insert ran")
	assert.False(t, created, "the losing insert must not report creation")
	assert.Equal(t, uint(winnerID), cart.ID)

	var count int64
	require.NoError(t, db.Model(&model.Cart{}).Where("session_token = ?", token).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
