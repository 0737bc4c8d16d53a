package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type userDoc struct {
	ID        string    `firestore:"ID"`
	CreatedAt time.Time `firestore:"CreatedAt"`
}

type userRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newUserRepository(client *firestore.Client) *userRepository {
	return &userRepository{
		client: client,
	}
}

func (r *userRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + UsersCollection)
}

func (r *userRepository) Ensure(ctx context.Context, id string) (*model.User, error) {
	docRef := r.collection().Doc(id)
	// Firestore stores timestamps with microsecond precision
	doc := &userDoc{ID: id, CreatedAt: time.Now().UTC().Truncate(time.Microsecond)}

	_, err := docRef.Create(ctx, doc)
	if err == nil {
		return &model.User{ID: doc.ID, CreatedAt: doc.CreatedAt}, nil
	}
	if status.Code(err) != codes.AlreadyExists {
		return nil, goerr.Wrap(err, "failed to create user", goerr.V(model.UserIDKey, id))
	}

	return r.Get(ctx, id)
}

func (r *userRepository) Get(ctx context.Context, id string) (*model.User, error) {
	snap, err := r.collection().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "user not found", goerr.V(model.UserIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V(model.UserIDKey, id))
	}

	var d userDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V(model.UserIDKey, id))
	}

	return &model.User{ID: d.ID, CreatedAt: d.CreatedAt}, nil
}
