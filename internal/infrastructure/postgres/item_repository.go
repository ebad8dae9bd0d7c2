package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-marketplace-api/internal/domain/entity"
	"github.com/oksasatya/go-marketplace-api/internal/domain/repository"
)

type ItemRepository struct {
	pool *pgxpool.Pool
}

func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

const itemColumns = `id, owner_id, title, descr, category, location, images, price, date, delivery_type, name, tel`

func scanItem(row pgx.Row) (*entity.Item, error) {
	it := &entity.Item{}
	if err := row.Scan(&it.ID, &it.OwnerID, &it.Title, &it.Desc, &it.Category, &it.Location,
		&it.Images, &it.Price, &it.Date, &it.DeliveryType, &it.Name, &it.Tel); err != nil {
		return nil, err
	}
	if it.Images == nil {
		it.Images = []string{}
	}
	return it, nil
}

func (r *ItemRepository) Create(it *entity.Item) error {
	ctx := context.Background()
	if it.Images == nil {
		it.Images = []string{}
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO items (owner_id, title, descr, category, location, images, price, date, delivery_type, name, tel)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, it.OwnerID, it.Title, it.Desc, it.Category, it.Location, it.Images, it.Price, it.Date, it.DeliveryType, it.Name, it.Tel)
	return row.Scan(&it.ID)
}

func (r *ItemRepository) FindByID(id int64) (*entity.Item, error) {
	ctx := context.Background()
	it, err := scanItem(r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return it, nil
}

func (r *ItemRepository) ListAll() ([]*entity.Item, error) {
	ctx := context.Background()
	return r.queryItems(ctx, `SELECT `+itemColumns+` FROM items ORDER BY id`)
}

// Update loads the row under a lock, merges the partial fields in
// application code so every backend shares the same merge semantics,
// and writes the row back.
func (r *ItemRepository) Update(id int64, fields map[string]any) (*entity.Item, error) {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	it, err := scanItem(tx.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if it.ApplyPartial(fields) == 0 {
		return nil, repository.ErrNoFieldsModified
	}
	_, err = tx.Exec(ctx, `
		UPDATE items
		SET title = $1, descr = $2, category = $3, location = $4, images = $5,
		    price = $6, date = $7, delivery_type = $8, name = $9, tel = $10
		WHERE id = $11
	`, it.Title, it.Desc, it.Category, it.Location, it.Images, it.Price, it.Date, it.DeliveryType, it.Name, it.Tel, it.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return it, nil
}

func (r *ItemRepository) Delete(id int64) (bool, error) {
	ctx := context.Background()
	res, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *ItemRepository) Search(field, keyword string) ([]*entity.Item, error) {
	if !entity.SearchFields[field] {
		return nil, repository.ErrUnsupportedField
	}
	// field is whitelisted above, safe to splice into the query
	col := map[string]string{"category": "category", "location": "location", "date": "date"}[field]
	ctx := context.Background()
	return r.queryItems(ctx, `SELECT `+itemColumns+` FROM items WHERE `+col+` ILIKE '%' || $1 || '%' ORDER BY id`, keyword)
}

func (r *ItemRepository) queryItems(ctx context.Context, sql string, args ...any) ([]*entity.Item, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*entity.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

var _ repository.ItemRepository = (*ItemRepository)(nil)
