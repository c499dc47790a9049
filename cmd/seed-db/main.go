// Command seed-db loads a catalog definition file into the database and
// optionally registers an admin API key. Seeding is idempotent: catalog rows
// are upserted by id and the key insert is skipped when the hash exists.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/snsu-canteen/internal/repository"
)

const (
	upsertItemSQL = `INSERT INTO items (id, name, category, price, image)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, category = EXCLUDED.category,
			price = EXCLUDED.price, image = EXCLUDED.image`

	upsertComboSQL = `INSERT INTO combos (id, name, price, item_ids, image)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, price = EXCLUDED.price,
			item_ids = EXCLUDED.item_ids, image = EXCLUDED.image`

	insertAPIKeySQL = `INSERT INTO api_keys (id, key_hash, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (key_hash) DO NOTHING`

	seedWorkers = 4
)

// seedItem mirrors one entry of the catalog file's "items" array.
type seedItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
}

// seedCombo mirrors one entry of the catalog file's "combos" array.
type seedCombo struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	ItemIDs []string        `json:"itemIds"`
	Image   string          `json:"image"`
}

// seedFile is the top-level catalog definition document.
type seedFile struct {
	Items  []seedItem  `json:"items"`
	Combos []seedCombo `json:"combos"`
}

func main() {
	var (
		catalogPath string
		databaseURL string
		adminKey    string
		pepper      string
	)

	flag.StringVar(&catalogPath, "catalog", "db/seed/catalog.json", "path to the catalog seed file")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&adminKey, "admin-key", "", "plaintext admin API key to register (optional)")
	flag.StringVar(&pepper, "pepper", "", "HMAC pepper for API key hashing (or CANTEEN_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if pepper == "" {
		pepper = os.Getenv("CANTEEN_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, catalogPath, databaseURL, adminKey, pepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, catalogPath, databaseURL, adminKey, pepper string) error {
	seed, err := loadSeedFile(catalogPath)
	if err != nil {
		return errors.Wrap(err, "load catalog file")
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Items first so combos never reference ids that are still in flight.
	if err := seedItems(ctx, pool, seed.Items); err != nil {
		return errors.Wrap(err, "seed items")
	}
	if err := seedCombos(ctx, pool, seed.Combos); err != nil {
		return errors.Wrap(err, "seed combos")
	}

	if adminKey != "" {
		if err := registerAdminKey(ctx, pool, adminKey, pepper); err != nil {
			return errors.Wrap(err, "register admin key")
		}
	}

	return nil
}

func loadSeedFile(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return &seed, nil
}

// seedItems upserts all items concurrently with a bounded worker group.
func seedItems(ctx context.Context, pool *pgxpool.Pool, items []seedItem) error {
	slog.Info("seeding items", slog.Int("count", len(items)))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(seedWorkers)
	for _, it := range items {
		g.Go(func() error {
			_, err := pool.Exec(ctx, upsertItemSQL,
				it.ID, it.Name, it.Category, it.Price, it.Image,
			)
			return errors.Wrapf(err, "upsert item %s", it.ID)
		})
	}
	return g.Wait()
}

// seedCombos upserts all combos concurrently with a bounded worker group.
func seedCombos(ctx context.Context, pool *pgxpool.Pool, combos []seedCombo) error {
	slog.Info("seeding combos", slog.Int("count", len(combos)))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(seedWorkers)
	for _, c := range combos {
		g.Go(func() error {
			ids, err := json.Marshal(c.ItemIDs)
			if err != nil {
				return errors.Wrapf(err, "marshal item ids for combo %s", c.ID)
			}
			_, err = pool.Exec(ctx, upsertComboSQL,
				c.ID, c.Name, c.Price, ids, c.Image,
			)
			return errors.Wrapf(err, "upsert combo %s", c.ID)
		})
	}
	return g.Wait()
}

// registerAdminKey stores the HMAC-SHA256 hash of the plaintext key. The
// plaintext itself never touches the database.
func registerAdminKey(ctx context.Context, pool *pgxpool.Pool, key, pepper string) error {
	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(key))
	hash := hex.EncodeToString(mac.Sum(nil))

	tag, err := pool.Exec(ctx, insertAPIKeySQL, uuid.New().String(), hash, "admin")
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		slog.Info("admin key already registered")
		return nil
	}

	slog.Info("admin key registered")
	return nil
}
