package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
)

func runUserRepositoryTest(t *testing.T, newRepo repositoryFactory) {
	t.Helper()

	t.Run("Ensure is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := fmt.Sprintf("user-%d", time.Now().UnixNano())
		first, err := repo.User().Ensure(ctx, id)
		gt.NoError(t, err).Required()
		gt.S(t, first.ID).Equal(id)

		second, err := repo.User().Ensure(ctx, id)
		gt.NoError(t, err).Required()
		gt.B(t, second.CreatedAt.Equal(first.CreatedAt)).True()

		got, err := repo.User().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.S(t, got.ID).Equal(id)
	})

	t.Run("Get returns ErrNotFound for unknown user", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.User().Get(context.Background(), fmt.Sprintf("ghost-%d", time.Now().UnixNano()))
		gt.Error(t, err).Is(model.ErrNotFound)
	})
}

func TestUserRepository(t *testing.T) {
	forEachBackend(t, runUserRepositoryTest)
}
