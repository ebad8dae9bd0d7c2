// Package redisrepo stores users and items as JSON values in Redis,
// with INCR-backed id counters and list keys preserving insertion
// order. It is an alternative backend for single-instance deployments
// that want cheap durability without Postgres.
package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-marketplace-api/internal/domain/entity"
	"github.com/oksasatya/go-marketplace-api/internal/domain/repository"
)

const (
	keyUserSeq    = "seq:users"
	keyUsersIndex = "users:index"
)

func keyUser(id int64) string       { return "user:" + strconv.FormatInt(id, 10) }
func keyUserByName(n string) string { return "user:byname:" + n }

type UserRepository struct {
	rdb *redis.Client
}

func NewUserRepository(rdb *redis.Client) *UserRepository {
	return &UserRepository{rdb: rdb}
}

func (r *UserRepository) Create(u *entity.User) error {
	ctx := context.Background()
	id, err := r.rdb.Incr(ctx, keyUserSeq).Result()
	if err != nil {
		return err
	}
	u.ID = id
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	// claim the username first so duplicates never shadow each other
	ok, err := r.rdb.SetNX(ctx, keyUserByName(u.Username), id, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrDuplicateUsername
	}
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	pipe := r.rdb.Pipeline()
	pipe.Set(ctx, keyUser(id), b, 0)
	pipe.RPush(ctx, keyUsersIndex, id)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *UserRepository) FindByID(id int64) (*entity.User, error) {
	return r.get(keyUser(id))
}

func (r *UserRepository) FindByUsername(username string) (*entity.User, error) {
	ctx := context.Background()
	id, err := r.rdb.Get(ctx, keyUserByName(username)).Int64()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.get(keyUser(id))
}

func (r *UserRepository) ListAll() ([]*entity.User, error) {
	ctx := context.Background()
	ids, err := r.rdb.LRange(ctx, keyUsersIndex, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*entity.User, 0, len(ids))
	for _, id := range ids {
		u, err := r.get("user:" + id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *UserRepository) get(key string) (*entity.User, error) {
	ctx := context.Background()
	b, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u := &entity.User{}
	if err := json.Unmarshal(b, u); err != nil {
		return nil, err
	}
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
