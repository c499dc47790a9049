package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Combo is a priced bundle referencing multiple items. The bundle price is
// independent of the constituent item prices, and item references are not
// revalidated after creation: deleting an item leaves referencing combos
// untouched.
type Combo struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	ItemIDs   []string
	Image     string
	CreatedAt time.Time
}

// ComboPatch is a partial update: only non-nil fields are applied.
type ComboPatch struct {
	Name    *string
	Price   *decimal.Decimal
	ItemIDs []string
	Image   *string
}

// Empty reports whether the patch changes nothing.
func (p ComboPatch) Empty() bool {
	return p.Name == nil && p.Price == nil && p.ItemIDs == nil && p.Image == nil
}

// ComboRepository defines persistence operations for combos.
type ComboRepository interface {
	List(ctx context.Context) ([]Combo, error)
	GetByID(ctx context.Context, id string) (*Combo, error)
	Create(ctx context.Context, combo *Combo) error
	Update(ctx context.Context, id string, patch ComboPatch) (*Combo, error)
	Delete(ctx context.Context, id string) error
}

// ValidateNewCombo checks the create-time constraints for a combo: name
// present, price positive, at least one referenced item id.
func ValidateNewCombo(c *Combo) error {
	if c.Name == "" {
		return errors.Wrap(ErrInvalidInput, "name required")
	}
	if !c.Price.IsPositive() {
		return errors.Wrap(ErrInvalidInput, "price must be greater than 0")
	}
	if len(c.ItemIDs) == 0 {
		return errors.Wrap(ErrInvalidInput, "itemIds must not be empty")
	}
	for _, id := range c.ItemIDs {
		if id == "" {
			return errors.Wrap(ErrInvalidInput, "itemIds must not contain empty ids")
		}
	}
	return nil
}
