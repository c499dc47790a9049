// Package catalog holds the purchasable entries of the canteen: single items
// and independently priced combos.
package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for catalog lookups and writes.
var (
	ErrItemNotFound  = errors.New("item not found")
	ErrComboNotFound = errors.New("combo not found")
	ErrInvalidInput  = errors.New("invalid catalog input")
)

// Category classifies an item on the menu.
type Category string

const (
	CategoryMeal    Category = "MEAL"
	CategorySnacks  Category = "SNACKS"
	CategoryDrinks  Category = "DRINKS"
	CategoryBiscuit Category = "BISCUIT"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryMeal, CategorySnacks, CategoryDrinks, CategoryBiscuit:
		return true
	}
	return false
}

// Item is a single purchasable catalog entry. Identity is immutable; name,
// category, price and image may change after creation.
type Item struct {
	ID        string
	Name      string
	Category  Category
	Price     decimal.Decimal
	Image     string
	CreatedAt time.Time
}

// ItemPatch is a partial update: only non-nil fields are applied.
type ItemPatch struct {
	Name     *string
	Category *Category
	Price    *decimal.Decimal
	Image    *string
}

// Empty reports whether the patch changes nothing.
func (p ItemPatch) Empty() bool {
	return p.Name == nil && p.Category == nil && p.Price == nil && p.Image == nil
}

// ItemRepository defines persistence operations for items.
type ItemRepository interface {
	List(ctx context.Context) ([]Item, error)
	GetByID(ctx context.Context, id string) (*Item, error)
	Create(ctx context.Context, item *Item) error
	Update(ctx context.Context, id string, patch ItemPatch) (*Item, error)
	Delete(ctx context.Context, id string) error
}

// ValidateNewItem checks the create-time constraints for an item: name and
// category present, category known, price positive.
func ValidateNewItem(it *Item) error {
	if it.Name == "" {
		return errors.Wrap(ErrInvalidInput, "name required")
	}
	if !it.Category.Valid() {
		return errors.Wrapf(ErrInvalidInput, "unknown category %q", it.Category)
	}
	if !it.Price.IsPositive() {
		return errors.Wrap(ErrInvalidInput, "price must be greater than 0")
	}
	return nil
}
