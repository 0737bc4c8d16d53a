package repository_test

import (
	"context"
	"math/rand/v2"
	"os"
	"testing"

	"github.com/secmon-lab/foodrec/pkg/domain/interfaces"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
	"github.com/secmon-lab/foodrec/pkg/repository/firestore"
	"github.com/secmon-lab/foodrec/pkg/repository/memory"
	"github.com/secmon-lab/foodrec/pkg/repository/postgres"
)

type repositoryFactory func(t *testing.T) interfaces.Repository

func newMemoryRepository(t *testing.T) interfaces.Repository {
	return memory.New()
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	// Use standard collection names (no prefix) to utilize existing Firestore indexes
	// Test data isolation is achieved through random IDs in test data
	repo, err := firestore.New(ctx, projectID, databaseID)
	if err != nil {
		t.Fatalf("failed to create firestore repository: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("failed to close firestore repository: %v", err)
		}
	})
	return repo
}

func newPostgresRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	repo, err := postgres.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("failed to create postgres repository: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("failed to close postgres repository: %v", err)
		}
	})
	return repo
}

func forEachBackend(t *testing.T, run func(t *testing.T, newRepo repositoryFactory)) {
	t.Run("memory", func(t *testing.T) { run(t, newMemoryRepository) })
	t.Run("firestore", func(t *testing.T) { run(t, newFirestoreRepository) })
	t.Run("postgres", func(t *testing.T) { run(t, newPostgresRepository) })
}

// randomEmbedding returns a random unit-free vector. Random dense vectors are close to orthogonal,
// so data left by other test runs in shared databases does not interfere with similarity ordering.
func randomEmbedding() []float32 {
	v := make([]float32, model.EmbeddingDimension)
	for i := range v {
		v[i] = rand.Float32()*2 - 1
	}
	return v
}

// perturb returns a copy of v with small noise added
func perturb(v []float32, scale float32) []float32 {
	out := make([]float32, len(v))
	for i := range v {
		out[i] = v[i] + (rand.Float32()*2-1)*scale
	}
	return out
}
