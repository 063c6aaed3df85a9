package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/model"
	"storefront-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrItemNotFound is returned when a cart item id does not exist
	ErrItemNotFound = errors.New("cart item not found")
	// ErrQuantityLimit is returned when a merge would push a line past model.MaxItemQuantity
	ErrQuantityLimit = errors.New("cart line quantity limit reached")
)

// Repository is the cart data-access interface
type Repository interface {
	// FindOrCreate returns the identity's cart, creating it if absent.
	// created is true only for the call whose insert won.
	FindOrCreate(ctx context.Context, identity Identity) (cart *model.Cart, created bool, err error)
	// Load returns a cart with its items and their products
	Load(ctx context.Context, cartID uint) (*model.Cart, error)
	// UpsertItem adds quantity to the (cart, product) line, creating it if
	// needed. The line is left untouched and ErrQuantityLimit returned when the
	// merged quantity would exceed model.MaxItemQuantity.
	UpsertItem(ctx context.Context, cartID, productID uint, quantity int) (*model.CartItem, error)
	// FindItem returns an item with its cart and product
	FindItem(ctx context.Context, itemID uint) (*model.CartItem, error)
	SetItemQuantity(ctx context.Context, itemID uint, quantity int) error
	DeleteItem(ctx context.Context, itemID uint) error
}

type gormRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewRepository returns a Repository backed by db
func NewRepository(db *gorm.DB, log *zap.Logger) Repository {
	return &gormRepository{db: db, log: log.Named("cart_repo")}
}

func (r *gormRepository) find(ctx context.Context, identity Identity) (*model.Cart, error) {
	query := r.db.WithContext(ctx)
	if identity.IsAuthenticated() {
		query = query.Where("user_id = ?", identity.UserID())
	} else {
		query = query.Where("session_token = ?", identity.SessionToken())
	}

	var cart model.Cart
	if err := query.First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *gormRepository) FindOrCreate(ctx context.Context, identity Identity) (*model.Cart, bool, error) {
	defer prometheus.TrackDBOperation("cart_find_or_create")(time.Now())

	if !identity.Valid() {
		return nil, false, ErrNoIdentity
	}

	cart, err := r.find(ctx, identity)
	if err == nil {
		return cart, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("find cart for %s: %w", identity, err)
	}

	// A concurrent request may insert between the lookup and here; the unique
	// index turns our insert into a no-op and the second lookup finds theirs.
	fresh := identity.newCart()
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&fresh)
	if result.Error != nil {
		return nil, false, fmt.Errorf("create cart for %s: %w", identity, result.Error)
	}
	if result.RowsAffected == 1 {
		r.log.Debug("Cart created", zap.Uint("cart_id", fresh.ID), zap.Stringer("identity", identity))
		return &fresh, true, nil
	}

	cart, err = r.find(ctx, identity)
	if err != nil {
		return nil, false, fmt.Errorf("find cart for %s after conflict: %w", identity, err)
	}
	return cart, false, nil
}

func (r *gormRepository) Load(ctx context.Context, cartID uint) (*model.Cart, error) {
	defer prometheus.TrackDBOperation("cart_load")(time.Now())

	var cart model.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id ASC") }).
		Preload("Items.Product").
		First(&cart, cartID).Error
	if err != nil {
		return nil, fmt.Errorf("load cart %d: %w", cartID, err)
	}
	return &cart, nil
}

func (r *gormRepository) UpsertItem(ctx context.Context, cartID, productID uint, quantity int) (*model.CartItem, error) {
	defer prometheus.TrackDBOperation("cart_upsert_item")(time.Now())

	item := model.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("cart_items.quantity + excluded.quantity"),
			}),
			// DO UPDATE ... WHERE: a merge past the cap updates nothing
			Where: clause.Where{Exprs: []clause.Expression{
				gorm.Expr("cart_items.quantity + excluded.quantity <= ?", model.MaxItemQuantity),
			}},
		}).
		Create(&item)
	if result.Error != nil {
		return nil, fmt.Errorf("upsert item product=%d cart=%d: %w", productID, cartID, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrQuantityLimit
	}

	var stored model.CartItem
	if err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&stored).Error; err != nil {
		return nil, fmt.Errorf("reload item product=%d cart=%d: %w", productID, cartID, err)
	}
	return &stored, nil
}

func (r *gormRepository) FindItem(ctx context.Context, itemID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Preload("Cart").
		Preload("Product").
		First(&item, itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find item %d: %w", itemID, err)
	}
	return &item, nil
}

func (r *gormRepository) SetItemQuantity(ctx context.Context, itemID uint, quantity int) error {
	defer prometheus.TrackDBOperation("cart_set_quantity")(time.Now())

	result := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity)
	if result.Error != nil {
		return fmt.Errorf("set quantity of item %d: %w", itemID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *gormRepository) DeleteItem(ctx context.Context, itemID uint) error {
	defer prometheus.TrackDBOperation("cart_delete_item")(time.Now())

	result := r.db.WithContext(ctx).Delete(&model.CartItem{}, itemID)
	if result.Error != nil {
		return fmt.Errorf("delete item %d: %w", itemID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}
