package users

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepository_SaveAndFind(t *testing.T) {
	r := NewInMemoryRepository()
	ctx := context.Background()

	a, err := r.Save(ctx, &models.Account{UserName: "alice", Email: "Alice@Example.com", PasswordHash: "h1"})
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero())

	byName, err := r.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, a.ID, byName.ID)

	byEmail, err := r.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, byEmail.ID)

	_, err = r.FindByUsername(ctx, "bob")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
	_, err = r.FindByEmail(ctx, "bob@example.com")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestInMemoryRepository_ReturnsCopies(t *testing.T) {
	r := NewInMemoryRepository()
	ctx := context.Background()

	_, err := r.Save(ctx, &models.Account{UserName: "alice", Email: "a@example.com", PasswordHash: "h1"})
	require.NoError(t, err)

	got, err := r.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	got.PasswordHash = "tampered"

	again, err := r.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h1", again.PasswordHash)
}

func TestInMemoryRepository_Uniqueness(t *testing.T) {
	r := NewInMemoryRepository()
	ctx := context.Background()

	_, err := r.Save(ctx, &models.Account{UserName: "alice", Email: "a@example.com"})
	require.NoError(t, err)

	_, err = r.Save(ctx, &models.Account{UserName: "alice", Email: "other@example.com"})
	assert.True(t, errors.Is(err, common.ErrorAlreadyExists))

	_, err = r.Save(ctx, &models.Account{UserName: "bob", Email: "A@EXAMPLE.com"})
	assert.True(t, errors.Is(err, common.ErrorAlreadyExists))
}

func TestInMemoryRepository_Update(t *testing.T) {
	r := NewInMemoryRepository()
	ctx := context.Background()

	a, err := r.Save(ctx, &models.Account{UserName: "alice", Email: "a@example.com", PasswordHash: "h1"})
	require.NoError(t, err)

	a.PasswordHash = "h2"
	a.Email = "new@example.com"
	_, err = r.Save(ctx, a)
	require.NoError(t, err)

	got, err := r.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h2", got.PasswordHash)

	_, err = r.FindByEmail(ctx, "a@example.com")
	assert.True(t, errors.Is(err, common.ErrorNotFound), "old email index must be dropped")

	_, err = r.Save(ctx, &models.Account{ID: "missing", UserName: "zed", Email: "zed@example.com"})
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestInMemoryRepository_Concurrent(t *testing.T) {
	r := NewInMemoryRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Save(ctx, &models.Account{UserName: "same", Email: "same@example.com"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
		} else {
			assert.True(t, errors.Is(err, common.ErrorAlreadyExists))
		}
	}
	assert.Equal(t, 1, ok)
}
