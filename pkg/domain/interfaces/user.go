package interfaces

import (
	"context"

	"github.com/secmon-lab/foodrec/pkg/domain/model"
)

// UserRepository defines the interface for User data persistence
type UserRepository interface {
	// Ensure creates the user if it does not exist and returns the stored record
	Ensure(ctx context.Context, id string) (*model.User, error)

	Get(ctx context.Context, id string) (*model.User, error)
}
