package repository

import "github.com/oksasatya/go-marketplace-api/internal/domain/entity"

// ItemRepository is the listing store. ListAll preserves insertion
// order. Update performs a field-level merge and returns
// ErrNoFieldsModified when no key from fields could be applied.
// Search returns ErrUnsupportedField for fields outside the searchable
// set; an empty result is not an error at this layer.
type ItemRepository interface {
	Create(it *entity.Item) error
	FindByID(id int64) (*entity.Item, error)
	ListAll() ([]*entity.Item, error)
	Update(id int64, fields map[string]any) (*entity.Item, error)
	Delete(id int64) (bool, error)
	Search(field, keyword string) ([]*entity.Item, error)
}
