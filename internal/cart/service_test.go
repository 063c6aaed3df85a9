package cart

import (
	"context"
	"testing"

	"storefront-service/internal/catalog"
	"storefront-service/internal/model"
	"storefront-service/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type serviceFixture struct {
	db       *gorm.DB
	repo     Repository
	resolver *Resolver
	service  *Service
	category *model.Category
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	db := testutil.DB(t)
	repo := NewRepository(db, zap.NewNop())
	return &serviceFixture{
		db:       db,
		repo:     repo,
		resolver: NewResolver(repo),
		service:  NewService(repo, catalog.NewStore(db, zap.NewNop(), 4)),
		category: testutil.Category(t, db, "Shirts"),
	}
}

func (f *serviceFixture) cart(t *testing.T, identity Identity) *model.Cart {
	t.Helper()
	c, err := f.resolver.ResolveCart(context.Background(), identity)
	require.NoError(t, err)
	return c
}

func (f *serviceFixture) itemCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.CartItem{}).Count(&n).Error)
	return n
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAddItem_MergesRepeatedAdds(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	shirt := testutil.Product(t, f.db, f.category, "Oxford Shirt", "10.00")
	c := f.cart(t, User(1))

	summary, err := f.service.AddItem(ctx, c, shirt, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalItems)

	summary, err = f.service.AddItem(ctx, c, shirt, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.TotalItems)
	assert.True(t, dec("50.00").Equal(summary.TotalPrice))

	assert.Equal(t, int64(1), f.itemCount(t))
	loaded, err := f.repo.Load(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 5, loaded.Items[0].Quantity)
}

func TestAddItem_Totals(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	a := testutil.Product(t, f.db, f.category, "Tee", "10.00")
	b := testutil.Product(t, f.db, f.category, "Socks", "5.50")
	c := f.cart(t, Anonymous("sess-1"))

	_, err := f.service.AddItem(ctx, c, a, 2)
	require.NoError(t, err)
	summary, err := f.service.AddItem(ctx, c, b, 3)
	require.NoError(t, err)

	assert.Equal(t, c.ID, summary.CartID)
	assert.Equal(t, 5, summary.TotalItems)
	assert.True(t, dec("36.50").Equal(summary.TotalPrice), "got %s", summary.TotalPrice)
}

func TestAvailableProduct(t *testing.T) {
	f := newServiceFixture(t)
	shirt := testutil.Product(t, f.db, f.category, "Oxford Shirt", "10.00")
	hidden := testutil.Product(t, f.db, f.category, "Old Shirt", "10.00", testutil.Unavailable())

	product, err := f.service.AvailableProduct(context.Background(), shirt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oxford Shirt", product.Name)

	_, err = f.service.AvailableProduct(context.Background(), hidden.ID)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	_, err = f.service.AvailableProduct(context.Background(), 9999)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestAddItem_QuantityLimit(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	shirt := testutil.Product(t, f.db, f.category, "Oxford Shirt", "10.00")
	c := f.cart(t, User(1))

	for _, qty := range []int{0, -1, model.MaxItemQuantity + 1} {
		_, err := f.service.AddItem(ctx, c, shirt, qty)
		assert.ErrorIs(t, err, ErrInvalidQuantity, "qty %d", qty)
	}
	assert.Zero(t, f.itemCount(t))

	summary, err := f.service.AddItem(ctx, c, shirt, 600)
	require.NoError(t, err)
	assert.Equal(t, 600, summary.TotalItems)

	_, err = f.service.AddItem(ctx, c, shirt, 400)
	assert.ErrorIs(t, err, ErrQuantityLimit)

	loaded, err := f.repo.Load(ctx, c.ID)
	require.NoError(t, err, "cart stays readable")
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 600, loaded.Items[0].Quantity, "merge refused without touching the line")

	summary, err = f.service.AddItem(ctx, c, shirt, 399)
	require.NoError(t, err)
	assert.Equal(t, model.MaxItemQuantity, summary.TotalItems, "exactly at the cap is allowed")
}

func TestUpdateQuantity_AboveLimit(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	shirt := testutil.Product(t, f.db, f.category, "Oxford Shirt", "10.00")
	c := f.cart(t, User(1))
	_, err := f.service.AddItem(ctx, c, shirt, 2)
	require.NoError(t, err)
	item := firstItem(t, f, c.ID)

	_, err = f.service.UpdateQuantity(ctx, item.ID, User(1), model.MaxItemQuantity+1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, 2, firstItem(t, f, c.ID).Quantity)
}

func TestAddItem_IgnoresStock(t *testing.T) {
	f := newServiceFixture(t)
	p := testutil.Product(t, f.db, f.category, "Rare Shirt", "10.00")
	require.NoError(t, f.db.Model(p).Update("stock", 0).Error)
	c := f.cart(t, User(1))

	summary, err := f.service.AddItem(context.Background(), c, p, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalItems)
}

func TestTotalsFollowLivePrice(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	p := testutil.Product(t, f.db, f.category, "Polo", "20.00")
	c := f.cart(t, User(1))

	_, err := f.service.AddItem(ctx, c, p, 2)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(p).Update("price", dec("15.00")).Error)

	loaded, err := f.resolver.ResolveCart(ctx, User(1))
	require.NoError(t, err)
	assert.True(t, dec("30.00").Equal(loaded.TotalPrice()))
}

func TestUpdateQuantity(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	p := testutil.Product(t, f.db, f.category, "Polo", "12.50")
	owner := Anonymous("owner-token")
	c := f.cart(t, owner)
	_, err := f.service.AddItem(ctx, c, p, 4)
	require.NoError(t, err)
	item := firstItem(t, f, c.ID)

	res, err := f.service.UpdateQuantity(ctx, item.ID, owner, 2)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, res.Outcome)
	assert.Equal(t, 2, res.Summary.TotalItems, "absolute set, not increment")
	assert.True(t, dec("25.00").Equal(res.ItemTotal))
	assert.True(t, dec("25.00").Equal(res.Summary.TotalPrice))
}

func TestUpdateQuantity_NonPositiveDeletes(t *testing.T) {
	for _, qty := range []int{0, -3} {
		f := newServiceFixture(t)
		ctx := context.Background()
		p := testutil.Product(t, f.db, f.category, "Polo", "12.50")
		c := f.cart(t, User(3))
		_, err := f.service.AddItem(ctx, c, p, 1)
		require.NoError(t, err)
		item := firstItem(t, f, c.ID)

		res, err := f.service.UpdateQuantity(ctx, item.ID, User(3), qty)
		require.NoError(t, err)
		assert.Equal(t, OutcomeRemoved, res.Outcome)
		assert.Zero(t, res.Summary.TotalItems)
		assert.True(t, res.ItemTotal.IsZero())

		_, err = f.repo.FindItem(ctx, item.ID)
		assert.ErrorIs(t, err, ErrItemNotFound)

		res, err = f.service.UpdateQuantity(ctx, item.ID, User(3), 1)
		require.NoError(t, err)
		assert.Equal(t, OutcomeNotFound, res.Outcome)
		assert.Nil(t, res.Summary)
	}
}

func TestRemoveItem(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	a := testutil.Product(t, f.db, f.category, "Tee", "10.00")
	b := testutil.Product(t, f.db, f.category, "Socks", "5.50")
	c := f.cart(t, User(1))
	_, err := f.service.AddItem(ctx, c, a, 2)
	require.NoError(t, err)
	_, err = f.service.AddItem(ctx, c, b, 3)
	require.NoError(t, err)
	item := firstItem(t, f, c.ID)

	res, err := f.service.RemoveItem(ctx, item.ID, User(1))
	require.NoError(t, err)
	assert.Equal(t, OutcomeRemoved, res.Outcome)
	assert.Equal(t, 3, res.Summary.TotalItems)
	assert.True(t, dec("16.50").Equal(res.Summary.TotalPrice))

	res, err = f.service.RemoveItem(ctx, item.ID, User(1))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, res.Outcome)
}

func TestRemoveItem_NotOwnerLeavesCartUnchanged(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	p := testutil.Product(t, f.db, f.category, "Tee", "10.00")
	owner := Anonymous("victim-token")
	c := f.cart(t, owner)
	_, err := f.service.AddItem(ctx, c, p, 2)
	require.NoError(t, err)
	item := firstItem(t, f, c.ID)

	for _, intruder := range []Identity{Anonymous("attacker-token"), User(99)} {
		res, err := f.service.RemoveItem(ctx, item.ID, intruder)
		require.NoError(t, err)
		assert.Equal(t, OutcomeNotOwner, res.Outcome)
		assert.Nil(t, res.Summary)

		res, err = f.service.UpdateQuantity(ctx, item.ID, intruder, 0)
		require.NoError(t, err)
		assert.Equal(t, OutcomeNotOwner, res.Outcome)
	}

	loaded, err := f.resolver.ResolveCart(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.TotalItems())
	assert.Equal(t, int64(1), f.itemCount(t))
}

func TestMutations_RequireIdentity(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.service.RemoveItem(context.Background(), 1, Identity{})
	assert.ErrorIs(t, err, ErrNoIdentity)
	_, err = f.service.UpdateQuantity(context.Background(), 1, Identity{}, 1)
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestCascadeOnProductDelete(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	p := testutil.Product(t, f.db, f.category, "Tee", "10.00")
	c := f.cart(t, User(1))
	_, err := f.service.AddItem(ctx, c, p, 1)
	require.NoError(t, err)

	require.NoError(t, f.db.Delete(&model.Product{}, p.ID).Error)
	assert.Zero(t, f.itemCount(t))
}

func firstItem(t *testing.T, f *serviceFixture, cartID uint) model.CartItem {
	t.Helper()
	loaded, err := f.repo.Load(context.Background(), cartID)
	require.NoError(t, err)
	require.NotEmpty(t, loaded.Items)
	return loaded.Items[0]
}
