package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/snsu-canteen/internal/domain/catalog"
)

const (
	listItemsSQL = `SELECT id, name, category, price, COALESCE(image, ''), created_at
		FROM items ORDER BY created_at DESC`

	getItemByIDSQL = `SELECT id, name, category, price, COALESCE(image, ''), created_at
		FROM items WHERE id = $1`

	createItemSQL = `INSERT INTO items (id, name, category, price, image)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')) RETURNING created_at`

	deleteItemSQL = `DELETE FROM items WHERE id = $1`
)

var _ catalog.ItemRepository = (*ItemRepository)(nil)

// ItemRepository implements catalog.ItemRepository backed by PostgreSQL.
type ItemRepository struct {
	pool *pgxpool.Pool
}

// NewItemRepository returns an ItemRepository that uses the given pool.
func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

// List returns all items, newest first.
func (r *ItemRepository) List(ctx context.Context) ([]catalog.Item, error) {
	rows, err := r.pool.Query(ctx, listItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return pgx.CollectRows(rows, scanItem)
}

// GetByID returns a single item by its identifier.
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*catalog.Item, error) {
	rows, err := r.pool.Query(ctx, getItemByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting item %q: %w", id, err)
	}

	it, err := pgx.CollectExactlyOneRow(rows, scanItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrItemNotFound
		}
		return nil, fmt.Errorf("getting item %q: %w", id, err)
	}
	return &it, nil
}

// Create persists a new item and fills its creation timestamp.
func (r *ItemRepository) Create(ctx context.Context, item *catalog.Item) error {
	err := r.pool.QueryRow(ctx, createItemSQL,
		item.ID, item.Name, string(item.Category), item.Price, item.Image,
	).Scan(&item.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating item %q: %w", item.ID, err)
	}
	return nil
}

// Update applies a partial patch: only non-nil fields change. It returns
// catalog.ErrItemNotFound when no row matches.
func (r *ItemRepository) Update(ctx context.Context, id string, patch catalog.ItemPatch) (*catalog.Item, error) {
	set := make([]string, 0, 4)
	args := make([]any, 0, 5)

	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Category != nil {
		add("category", string(*patch.Category))
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Image != nil {
		add("image", *patch.Image)
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE items SET %s WHERE id = $%d
			RETURNING id, name, category, price, COALESCE(image, ''), created_at`,
		strings.Join(set, ", "), len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating item %q: %w", id, err)
	}
	it, err := pgx.CollectExactlyOneRow(rows, scanItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrItemNotFound
		}
		return nil, fmt.Errorf("updating item %q: %w", id, err)
	}
	return &it, nil
}

// Delete removes an item unconditionally. Existing combos and historical
// orders keep their references; deleting an unknown id is a no-op.
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, deleteItemSQL, id); err != nil {
		return fmt.Errorf("deleting item %q: %w", id, err)
	}
	return nil
}

func scanItem(row pgx.CollectableRow) (catalog.Item, error) {
	var (
		it       catalog.Item
		category string
	)
	err := row.Scan(&it.ID, &it.Name, &category, &it.Price, &it.Image, &it.CreatedAt)
	it.Category = catalog.Category(category)
	return it, err
}
