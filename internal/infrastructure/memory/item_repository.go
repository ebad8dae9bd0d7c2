package memory

import (
	"sync"

	"github.com/oksasatya/go-marketplace-api/internal/domain/entity"
	"github.com/oksasatya/go-marketplace-api/internal/domain/repository"
)

// ItemRepository keeps listings in process memory, in insertion order,
// with counter-assigned ids that are never reused after a delete.
type ItemRepository struct {
	mu     sync.RWMutex
	items  []*entity.Item
	nextID int64
}

func NewItemRepository() *ItemRepository {
	return &ItemRepository{}
}

func clone(it *entity.Item) *entity.Item {
	cp := *it
	cp.Images = append([]string(nil), it.Images...)
	return &cp
}

func (r *ItemRepository) Create(it *entity.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	it.ID = r.nextID
	if it.Images == nil {
		it.Images = []string{}
	}
	r.items = append(r.items, clone(it))
	return nil
}

func (r *ItemRepository) FindByID(id int64) (*entity.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.items {
		if e.ID == id {
			return clone(e), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *ItemRepository) ListAll() ([]*entity.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Item, 0, len(r.items))
	for _, e := range r.items {
		out = append(out, clone(e))
	}
	return out, nil
}

func (r *ItemRepository) Update(id int64, fields map[string]any) (*entity.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.items {
		if e.ID == id {
			if e.ApplyPartial(fields) == 0 {
				return nil, repository.ErrNoFieldsModified
			}
			return clone(e), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *ItemRepository) Delete(id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.items {
		if e.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *ItemRepository) Search(field, keyword string) ([]*entity.Item, error) {
	if !entity.SearchFields[field] {
		return nil, repository.ErrUnsupportedField
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Item, 0)
	for _, e := range r.items {
		if e.Matches(field, keyword) {
			out = append(out, clone(e))
		}
	}
	return out, nil
}

var _ repository.ItemRepository = (*ItemRepository)(nil)
