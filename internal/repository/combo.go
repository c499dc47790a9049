package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/snsu-canteen/internal/domain/catalog"
)

const (
	listCombosSQL = `SELECT id, name, price, item_ids, COALESCE(image, ''), created_at
		FROM combos ORDER BY created_at DESC`

	getComboByIDSQL = `SELECT id, name, price, item_ids, COALESCE(image, ''), created_at
		FROM combos WHERE id = $1`

	createComboSQL = `INSERT INTO combos (id, name, price, item_ids, image)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')) RETURNING created_at`

	deleteComboSQL = `DELETE FROM combos WHERE id = $1`
)

var _ catalog.ComboRepository = (*ComboRepository)(nil)

// ComboRepository implements catalog.ComboRepository backed by PostgreSQL.
// Item id references are stored as a JSONB array and never validated against
// the items table after creation.
type ComboRepository struct {
	pool *pgxpool.Pool
}

// NewComboRepository returns a ComboRepository that uses the given pool.
func NewComboRepository(pool *pgxpool.Pool) *ComboRepository {
	return &ComboRepository{pool: pool}
}

// List returns all combos, newest first.
func (r *ComboRepository) List(ctx context.Context) ([]catalog.Combo, error) {
	rows, err := r.pool.Query(ctx, listCombosSQL)
	if err != nil {
		return nil, fmt.Errorf("listing combos: %w", err)
	}
	return pgx.CollectRows(rows, scanCombo)
}

// GetByID returns a single combo by its identifier.
func (r *ComboRepository) GetByID(ctx context.Context, id string) (*catalog.Combo, error) {
	rows, err := r.pool.Query(ctx, getComboByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting combo %q: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCombo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrComboNotFound
		}
		return nil, fmt.Errorf("getting combo %q: %w", id, err)
	}
	return &c, nil
}

// Create persists a new combo and fills its creation timestamp.
func (r *ComboRepository) Create(ctx context.Context, combo *catalog.Combo) error {
	itemIDs, err := json.Marshal(combo.ItemIDs)
	if err != nil {
		return fmt.Errorf("marshaling combo item ids: %w", err)
	}

	err = r.pool.QueryRow(ctx, createComboSQL,
		combo.ID, combo.Name, combo.Price, itemIDs, combo.Image,
	).Scan(&combo.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating combo %q: %w", combo.ID, err)
	}
	return nil
}

// Update applies a partial patch: only non-nil fields change. It returns
// catalog.ErrComboNotFound when no row matches.
func (r *ComboRepository) Update(ctx context.Context, id string, patch catalog.ComboPatch) (*catalog.Combo, error) {
	set := make([]string, 0, 4)
	args := make([]any, 0, 5)

	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.ItemIDs != nil {
		itemIDs, err := json.Marshal(patch.ItemIDs)
		if err != nil {
			return nil, fmt.Errorf("marshaling combo item ids: %w", err)
		}
		add("item_ids", itemIDs)
	}
	if patch.Image != nil {
		add("image", *patch.Image)
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE combos SET %s WHERE id = $%d
			RETURNING id, name, price, item_ids, COALESCE(image, ''), created_at`,
		strings.Join(set, ", "), len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating combo %q: %w", id, err)
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanCombo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrComboNotFound
		}
		return nil, fmt.Errorf("updating combo %q: %w", id, err)
	}
	return &c, nil
}

// Delete removes a combo unconditionally; deleting an unknown id is a no-op.
func (r *ComboRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, deleteComboSQL, id); err != nil {
		return fmt.Errorf("deleting combo %q: %w", id, err)
	}
	return nil
}

func scanCombo(row pgx.CollectableRow) (catalog.Combo, error) {
	var (
		c       catalog.Combo
		itemIDs []byte
	)
	err := row.Scan(&c.ID, &c.Name, &c.Price, &itemIDs, &c.Image, &c.CreatedAt)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(itemIDs, &c.ItemIDs); err != nil {
		return c, fmt.Errorf("unmarshaling combo item ids: %w", err)
	}
	return c, nil
}
