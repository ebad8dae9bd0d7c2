package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-marketplace-api/internal/domain/entity"
	"github.com/oksasatya/go-marketplace-api/internal/domain/repository"
)

const (
	keyItemSeq    = "seq:items"
	keyItemsIndex = "items:index"
)

func keyItem(id int64) string { return "item:" + strconv.FormatInt(id, 10) }

type ItemRepository struct {
	rdb *redis.Client
}

func NewItemRepository(rdb *redis.Client) *ItemRepository {
	return &ItemRepository{rdb: rdb}
}

func (r *ItemRepository) Create(it *entity.Item) error {
	ctx := context.Background()
	id, err := r.rdb.Incr(ctx, keyItemSeq).Result()
	if err != nil {
		return err
	}
	it.ID = id
	if it.Images == nil {
		it.Images = []string{}
	}
	b, err := json.Marshal(it)
	if err != nil {
		return err
	}
	pipe := r.rdb.Pipeline()
	pipe.Set(ctx, keyItem(id), b, 0)
	pipe.RPush(ctx, keyItemsIndex, id)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *ItemRepository) FindByID(id int64) (*entity.Item, error) {
	return r.get(keyItem(id))
}

func (r *ItemRepository) ListAll() ([]*entity.Item, error) {
	ctx := context.Background()
	ids, err := r.rdb.LRange(ctx, keyItemsIndex, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Item, 0, len(ids))
	for _, id := range ids {
		it, err := r.get("item:" + id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

func (r *ItemRepository) Update(id int64, fields map[string]any) (*entity.Item, error) {
	ctx := context.Background()
	it, err := r.get(keyItem(id))
	if err != nil {
		return nil, err
	}
	if it.ApplyPartial(fields) == 0 {
		return nil, repository.ErrNoFieldsModified
	}
	b, err := json.Marshal(it)
	if err != nil {
		return nil, err
	}
	if err := r.rdb.Set(ctx, keyItem(id), b, 0).Err(); err != nil {
		return nil, err
	}
	return it, nil
}

func (r *ItemRepository) Delete(id int64) (bool, error) {
	ctx := context.Background()
	n, err := r.rdb.Del(ctx, keyItem(id)).Result()
	if err != nil {
		return false, err
	}
	r.rdb.LRem(ctx, keyItemsIndex, 0, id)
	return n > 0, nil
}

func (r *ItemRepository) Search(field, keyword string) ([]*entity.Item, error) {
	if !entity.SearchFields[field] {
		return nil, repository.ErrUnsupportedField
	}
	all, err := r.ListAll()
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Item, 0)
	for _, it := range all {
		if it.Matches(field, keyword) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *ItemRepository) get(key string) (*entity.Item, error) {
	ctx := context.Background()
	b, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	it := &entity.Item{}
	if err := json.Unmarshal(b, it); err != nil {
		return nil, err
	}
	if it.Images == nil {
		it.Images = []string{}
	}
	return it, nil
}

var _ repository.ItemRepository = (*ItemRepository)(nil)
