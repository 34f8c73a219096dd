package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"yeniliko/api/models"
)

// CartStore holds each user's current cart snapshot in Redis as a JSON
// list under cart:<userID>. The snapshot is live state, not history;
// the activity log keeps its own cart_add/cart_remove records.
type CartStore struct {
	rdb *redis.Client
}

func NewCartStore(rdb *redis.Client) *CartStore {
	return &CartStore{rdb: rdb}
}

func cartKey(userID string) string {
	return "cart:" + userID
}

// GetCart returns the user's current cart items. A missing key is an
// empty cart, not an error.
func (s *CartStore) GetCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	data, err := s.rdb.Get(ctx, cartKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart for user %s: %w", userID, err)
	}

	var items []models.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode cart for user %s: %w", userID, err)
	}
	return items, nil
}

// AddItem adds the item to the cart, merging quantities when the product
// is already present.
func (s *CartStore) AddItem(ctx context.Context, userID string, item models.CartItem) ([]models.CartItem, error) {
	items, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	merged := false
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, item)
	}

	if err := s.setCart(ctx, userID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// RemoveItem drops the product from the cart entirely. Removing a
// product that is not in the cart is a no-op.
func (s *CartStore) RemoveItem(ctx context.Context, userID, productID string) ([]models.CartItem, error) {
	items, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := items[:0]
	for _, it := range items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}

	if err := s.setCart(ctx, userID, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

func (s *CartStore) setCart(ctx context.Context, userID string, items []models.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart for user %s: %w", userID, err)
	}
	if err := s.rdb.Set(ctx, cartKey(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write cart for user %s: %w", userID, err)
	}
	return nil
}
