package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-marketplace-api/internal/domain/entity"
	"github.com/oksasatya/go-marketplace-api/internal/domain/repository"
)

func TestUserRepository_CreateAssignsSequentialIDs(t *testing.T) {
	r := NewUserRepository()

	a := &entity.User{Username: "a", Email: "a@example.com", Password: "hash"}
	b := &entity.User{Username: "b", Email: "b@example.com", Password: "hash"}
	require.NoError(t, r.Create(a))
	require.NoError(t, r.Create(b))
	require.EqualValues(t, 1, a.ID)
	require.EqualValues(t, 2, b.ID)

	all, err := r.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "a", all[0].Username)
	require.Equal(t, "b", all[1].Username)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	r := NewUserRepository()
	require.NoError(t, r.Create(&entity.User{Username: "ossi", Email: "1@example.com"}))

	err := r.Create(&entity.User{Username: "ossi", Email: "2@example.com"})
	require.True(t, errors.Is(err, repository.ErrDuplicateUsername))
}

func TestUserRepository_Find(t *testing.T) {
	r := NewUserRepository()
	u := &entity.User{Username: "ossi", Email: "ossi@example.com"}
	require.NoError(t, r.Create(u))

	byName, err := r.FindByUsername("ossi")
	require.NoError(t, err)
	require.Equal(t, u.ID, byName.ID)

	byID, err := r.FindByID(u.ID)
	require.NoError(t, err)
	require.Equal(t, "ossi", byID.Username)

	_, err = r.FindByUsername("nobody")
	require.True(t, errors.Is(err, repository.ErrNotFound))
}
