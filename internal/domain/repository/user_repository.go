package repository

import (
	"errors"

	"github.com/oksasatya/go-marketplace-api/internal/domain/entity"
)

// Storage errors shared by every backend implementation.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrNoFieldsModified  = errors.New("no matching fields to modify")
	ErrUnsupportedField  = errors.New("unsupported search field")
)

// UserRepository is the credential store. Create assigns the next id
// from a per-collection counter; ids are never reused.
type UserRepository interface {
	Create(u *entity.User) error
	FindByID(id int64) (*entity.User, error)
	FindByUsername(username string) (*entity.User, error)
	ListAll() ([]*entity.User, error)
}
